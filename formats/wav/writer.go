// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Writer stores little-endian integer PCM bytes as a WAV file. It accepts
// the byte layout a relay hands out, so partial samples may span calls to
// Write.
type Writer struct {
	enc      *wav.Encoder
	bytes    int
	channels int
	signed   bool
	carry    []byte
	buf      *goaudio.IntBuffer
}

// NewWriter starts a WAV file on w. Samples of 8 bits are written unsigned
// as WAV requires; signed input is converted.
func NewWriter(w io.WriteSeeker, sampleRate, bytesPerSample, channels int, signed bool) (*Writer, error) {
	if bytesPerSample < 1 || bytesPerSample > 4 {
		return nil, fmt.Errorf("%w: %d bytes", ErrUnsupportedBitDepth, bytesPerSample)
	}
	if channels < 1 || sampleRate < 1 {
		return nil, ErrInvalidHeader
	}

	return &Writer{
		enc:      wav.NewEncoder(w, sampleRate, bytesPerSample*8, channels, wavFormatPCM),
		bytes:    bytesPerSample,
		channels: channels,
		signed:   signed,
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: bytesPerSample * 8,
		},
	}, nil
}

func (w *Writer) Write(p []byte) (int, error) {
	total := len(p)
	if len(w.carry) > 0 {
		need := w.bytes - len(w.carry)
		if len(p) < need {
			w.carry = append(w.carry, p...)
			return total, nil
		}
		w.carry = append(w.carry, p[:need]...)
		p = p[need:]
	}

	samples := (len(w.carry) + len(p)) / w.bytes
	if cap(w.buf.Data) < samples {
		w.buf.Data = make([]int, samples)
	}
	w.buf.Data = w.buf.Data[:0]

	if len(w.carry) == w.bytes {
		w.buf.Data = append(w.buf.Data, w.decode(w.carry))
		w.carry = w.carry[:0]
	}
	for len(p) >= w.bytes {
		w.buf.Data = append(w.buf.Data, w.decode(p[:w.bytes]))
		p = p[w.bytes:]
	}
	w.carry = append(w.carry, p...)

	if len(w.buf.Data) == 0 {
		return total, nil
	}
	if err := w.enc.Write(w.buf); err != nil {
		return 0, fmt.Errorf("wav: %w", err)
	}
	return total, nil
}

// decode turns one little-endian sample into the integer go-audio expects.
func (w *Writer) decode(b []byte) int {
	var u uint32
	switch w.bytes {
	case 1:
		u = uint32(b[0])
	case 2:
		u = uint32(binary.LittleEndian.Uint16(b))
	case 3:
		u = uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
	default:
		u = binary.LittleEndian.Uint32(b)
	}

	bits := uint(w.bytes * 8)
	half := int64(1) << (bits - 1)

	var v int64
	if w.signed {
		v = int64(u)
		if v >= half {
			v -= half << 1
		}
	} else {
		v = int64(u) - half
	}

	if w.bytes == 1 {
		// WAV stores 8-bit samples offset by 128.
		return int(v + half)
	}
	return int(v)
}

// Close finishes the WAV header. A trailing partial sample is dropped.
func (w *Writer) Close() error {
	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	return nil
}
