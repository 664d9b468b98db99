// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/audstream/utils"
)

// readFrames is the number of source frames pulled per refill.
const readFrames = 1024

// Resampler converts src to another sample rate with Catmull-Rom cubic
// interpolation over a four frame window. Channel count is preserved.
// When downsampling a one-pole low-pass filter is applied to the input.
type Resampler struct {
	src      Source
	rate     int
	channels int
	step     float64 // source frames per output frame

	// window[1] and window[2] bracket the output position; window[0] and
	// window[3] are the outer support points.
	window [4][]float32
	real   [4]bool
	pos    float64
	primed bool

	in       []float32
	inPos    int
	inLen    int
	srcDone  bool
	srcErr   error
	lowpass  []float32
	alpha    float32
	filtered bool
	seeded   bool
}

func NewResampler(src Source, rate int) *Resampler {
	channels := src.Channels()
	step := float64(src.SampleRate()) / float64(rate)

	r := &Resampler{
		src:      src,
		rate:     rate,
		channels: channels,
		step:     step,
		in:       make([]float32, readFrames*channels),
	}
	for i := range r.window {
		r.window[i] = make([]float32, channels)
	}
	if step > 1 {
		r.filtered = true
		r.alpha = float32(1 / step)
		r.lowpass = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.rate }
func (r *Resampler) Channels() int   { return r.channels }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// pull copies the next source frame into dst. It reports false once the
// source is exhausted.
func (r *Resampler) pull(dst []float32) bool {
	for r.inPos >= r.inLen {
		if r.srcDone {
			return false
		}
		n, err := r.src.ReadSamples(r.in)
		r.inPos, r.inLen = 0, n-n%r.channels
		if err != nil {
			r.srcDone = true
			if err != io.EOF {
				r.srcErr = err
			}
		} else if n == 0 {
			// A source that returns nothing without an error is treated as
			// finished to avoid spinning.
			r.srcDone = true
		}
	}

	copy(dst, r.in[r.inPos:r.inPos+r.channels])
	r.inPos += r.channels

	if r.filtered {
		if !r.seeded {
			// Start the filter at the first sample to avoid a fade in.
			copy(r.lowpass, dst)
			r.seeded = true
		}
		for c := range dst {
			r.lowpass[c] += r.alpha * (dst[c] - r.lowpass[c])
			dst[c] = r.lowpass[c]
		}
	}
	return true
}

// shift advances the window by one source frame, padding with the last
// real frame once the source runs dry.
func (r *Resampler) shift() {
	r.window[0], r.window[1], r.window[2], r.window[3] = r.window[1], r.window[2], r.window[3], r.window[0]
	r.real[0], r.real[1], r.real[2] = r.real[1], r.real[2], r.real[3]

	r.real[3] = r.pull(r.window[3])
	if !r.real[3] {
		copy(r.window[3], r.window[2])
	}
}

func (r *Resampler) prime() bool {
	if !r.pull(r.window[1]) {
		return false
	}
	copy(r.window[0], r.window[1])
	r.real[0], r.real[1] = true, true

	r.real[2] = r.pull(r.window[2])
	if !r.real[2] {
		copy(r.window[2], r.window[1])
	}
	r.real[3] = r.pull(r.window[3])
	if !r.real[3] {
		copy(r.window[3], r.window[2])
	}
	r.primed = true
	return true
}

// ReadSamples produces interleaved samples at the target rate.
// len(dst) must be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if !r.primed && !r.prime() {
		return 0, r.endErr()
	}

	frames := len(dst) / r.channels
	written := 0
	for written < frames {
		for r.pos >= 1 {
			r.pos--
			r.shift()
		}
		if !r.real[1] {
			break
		}

		x := float32(r.pos)
		out := dst[written*r.channels : (written+1)*r.channels]
		for c := range out {
			out[c] = utils.CubicInterpolate(r.window[0][c], r.window[1][c], r.window[2][c], r.window[3][c], x)
		}
		written++
		r.pos += r.step
	}

	if written < frames {
		return written * r.channels, r.endErr()
	}
	return written * r.channels, nil
}

func (r *Resampler) endErr() error {
	if r.srcErr != nil {
		return fmt.Errorf("resampling: %w", r.srcErr)
	}
	return io.EOF
}
