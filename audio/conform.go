// SPDX-License-Identifier: EPL-2.0

package audio

// Conform wraps src so that it yields samples at rate with the given
// channel count. Stages that would not change anything are skipped, so a
// source that already matches is returned as is.
func Conform(src Source, rate, channels int) (Source, error) {
	if rate <= 0 {
		return nil, ErrInvalidRate
	}
	if channels <= 0 {
		return nil, ErrInvalidChannels
	}

	out := src
	// Mix down before resampling so the resampler works on fewer channels.
	if channels < out.Channels() {
		out = NewChannelMapper(out, channels)
	}
	if out.SampleRate() != rate {
		out = NewResampler(out, rate)
	}
	if channels > out.Channels() {
		out = NewChannelMapper(out, channels)
	}

	return out, nil
}
