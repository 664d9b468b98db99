// SPDX-License-Identifier: EPL-2.0

package audio

import "github.com/ik5/audstream/utils"

// Packer turns float32 samples into little-endian PCM bytes. Unsigned
// layouts use offset binary, so silence sits at the midpoint.
type Packer struct {
	bytes  int
	signed bool
}

func NewPacker(bytesPerSample int, signed bool) (Packer, error) {
	if bytesPerSample < 1 || bytesPerSample > 4 {
		return Packer{}, ErrInvalidSampleSize
	}
	return Packer{bytes: bytesPerSample, signed: signed}, nil
}

// BytesPerSample returns the packed width of one sample.
func (p Packer) BytesPerSample() int { return p.bytes }

// Pack writes as many samples from src as fit into dst and returns the
// number of bytes written.
func (p Packer) Pack(dst []byte, src []float32) int {
	n := min(len(src), len(dst)/p.bytes)
	bits := p.bytes * 8

	switch p.bytes {
	case 2:
		for i, x := range src[:n] {
			v := utils.FloatToPCM(x, bits, p.signed)
			dst[2*i] = byte(v)
			dst[2*i+1] = byte(v >> 8)
		}
	default:
		for i, x := range src[:n] {
			v := utils.FloatToPCM(x, bits, p.signed)
			o := i * p.bytes
			for b := range p.bytes {
				dst[o+b] = byte(v >> (8 * b))
			}
		}
	}

	return n * p.bytes
}
