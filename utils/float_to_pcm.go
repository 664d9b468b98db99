// SPDX-License-Identifier: EPL-2.0

package utils

// FloatToPCM converts x in [-1,1] to a PCM sample of the given bit depth
// (8 to 32) and returns its bit pattern in the low bits of the result.
// Values outside the range are clamped. Signed samples are two's
// complement; unsigned ones are offset by half the range.
func FloatToPCM(x float32, bits int, signed bool) uint32 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	// Scale by the positive maximum so +1 and -1 are symmetric and never
	// overflow.
	maxPos := float64(int64(1)<<(bits-1) - 1)
	v := int64(float64(x) * maxPos)
	if !signed {
		v += int64(1) << (bits - 1)
	}

	mask := uint64(1)<<bits - 1
	return uint32(uint64(v) & mask)
}
