// SPDX-License-Identifier: EPL-2.0

// Package pcmint adapts go-audio integer PCM decoders to float32 sources.
package pcmint

import (
	"io"

	goaudio "github.com/go-audio/audio"
)

// Reader is the part of the go-audio wav and aiff decoders a Source needs.
type Reader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// Source converts integer samples of bitDepth bits into float32 in [-1,1].
type Source struct {
	dec        Reader
	sampleRate int
	channels   int
	offset     int     // subtracted before scaling, non-zero for unsigned 8-bit
	scale      float32 // 1 / 2^(bitDepth-1)
	buf        *goaudio.IntBuffer
	done       bool
}

// New builds a Source. unsigned marks offset-binary samples, as used by
// 8-bit WAV.
func New(dec Reader, sampleRate, channels, bitDepth int, unsigned bool) *Source {
	s := &Source{
		dec:        dec,
		sampleRate: sampleRate,
		channels:   channels,
		scale:      1 / float32(int64(1)<<(bitDepth-1)),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
	}
	if unsigned {
		s.offset = 1 << (bitDepth - 1)
	}
	return s
}

func (s *Source) SampleRate() int { return s.sampleRate }
func (s *Source) Channels() int   { return s.channels }
func (s *Source) Close() error    { return nil }

func (s *Source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if s.done {
		return 0, io.EOF
	}

	if cap(s.buf.Data) < len(dst) {
		s.buf.Data = make([]int, len(dst))
	}
	s.buf.Data = s.buf.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(s.buf)
	for i, v := range s.buf.Data[:n] {
		dst[i] = float32(v-s.offset) * s.scale
	}

	if err != nil && err != io.EOF {
		return n, err
	}
	if n == 0 || err == io.EOF {
		s.done = true
		if n == 0 {
			return 0, io.EOF
		}
		return n, io.EOF
	}
	return n, nil
}
