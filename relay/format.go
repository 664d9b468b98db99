// SPDX-License-Identifier: EPL-2.0

package relay

import (
	"fmt"
	"time"
)

// Format describes the PCM layout of the samples that flow through a Relay.
// The relay never interprets sample values; the layout is only used to
// compute channel offsets, silence sizes and chunk durations.
type Format struct {
	BytesPerSample int
	Signed         bool
	Channels       int
	SampleRate     int
}

// BitsPerSample is the sample depth derived from BytesPerSample.
func (f Format) BitsPerSample() int { return f.BytesPerSample * 8 }

// FrameSize is the number of bytes holding one sample for every channel.
func (f Format) FrameSize() int { return f.BytesPerSample * f.Channels }

// Duration returns how long n bytes of interleaved frames play at the
// format's sample rate.
func (f Format) Duration(n int) time.Duration {
	if f.SampleRate <= 0 || f.FrameSize() <= 0 {
		return 0
	}
	frames := n / f.FrameSize()
	return time.Duration(frames) * time.Second / time.Duration(f.SampleRate)
}

// Validate reports ErrInvalidFormat for layouts the relay cannot slice.
func (f Format) Validate() error {
	if f.BytesPerSample < 1 || f.BytesPerSample > 4 {
		return fmt.Errorf("%w: bytes per sample %d not in 1..4", ErrInvalidFormat, f.BytesPerSample)
	}
	if f.Channels < 1 {
		return fmt.Errorf("%w: channel count %d", ErrInvalidFormat, f.Channels)
	}
	if f.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidFormat, f.SampleRate)
	}
	return nil
}

func (f Format) String() string {
	sign := "unsigned"
	if f.Signed {
		sign = "signed"
	}
	return fmt.Sprintf("%d-bit %s, %d ch, %d Hz", f.BitsPerSample(), sign, f.Channels, f.SampleRate)
}
