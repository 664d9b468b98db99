// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/ik5/audstream/audio"
)

type mockVorbis struct {
	rate     int
	channels int
	data     []float32
	err      error
}

func (m *mockVorbis) SampleRate() int { return m.rate }
func (m *mockVorbis) Channels() int   { return m.channels }

func (m *mockVorbis) Read(p []float32) (int, error) {
	if len(m.data) == 0 {
		if m.err != nil {
			return 0, m.err
		}
		return 0, io.EOF
	}
	n := copy(p, m.data)
	m.data = m.data[n:]
	return n, nil
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader([]byte("OggS but not really")))
	if !errors.Is(err, ErrNotVorbisFile) {
		t.Errorf("Decode() error = %v, want ErrNotVorbisFile", err)
	}
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	src := &source{dec: &mockVorbis{rate: 48000, channels: 2, data: []float32{0.1, -0.1, 0.2, -0.2, 0.3, -0.3}}}
	if src.SampleRate() != 48000 || src.Channels() != 2 {
		t.Fatalf("metadata = %d Hz %d ch", src.SampleRate(), src.Channels())
	}

	// Five slots hold two whole frames.
	dst := make([]float32, 5)
	n, err := src.ReadSamples(dst)
	if err != nil || n != 4 {
		t.Fatalf("ReadSamples() = %d, %v, want 4, nil", n, err)
	}
	if dst[2] != 0.2 || dst[3] != -0.2 {
		t.Errorf("dst = %v", dst[:n])
	}

	n, err = src.ReadSamples(dst)
	if err != nil || n != 2 {
		t.Fatalf("ReadSamples() = %d, %v, want 2, nil", n, err)
	}
	if n, err := src.ReadSamples(dst); n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() at end = %d, %v, want 0, io.EOF", n, err)
	}
	if n, err := src.ReadSamples(dst); n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() after end = %d, %v, want 0, io.EOF", n, err)
	}
}

func TestSource_ShortDestination(t *testing.T) {
	t.Parallel()

	src := &source{dec: &mockVorbis{rate: 8000, channels: 2, data: []float32{1, 1}}}
	if _, err := src.ReadSamples(make([]float32, 1)); !errors.Is(err, audio.ErrInvalidDstSize) {
		t.Errorf("ReadSamples() error = %v, want ErrInvalidDstSize", err)
	}
}

func TestSource_ReadError(t *testing.T) {
	t.Parallel()

	boom := errors.New("bad packet")
	src := &source{dec: &mockVorbis{rate: 8000, channels: 1, err: boom}}
	if _, err := src.ReadSamples(make([]float32, 4)); !errors.Is(err, boom) {
		t.Errorf("ReadSamples() error = %v, want wrapped bad packet", err)
	}
}
