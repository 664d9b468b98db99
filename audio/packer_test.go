// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"bytes"
	"errors"
	"testing"
)

func TestPacker_Pack(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		bytes  int
		signed bool
		in     []float32
		want   []byte
	}{
		{name: "s8", bytes: 1, signed: true, in: []float32{0, 1, -1}, want: []byte{0x00, 0x7f, 0x81}},
		{name: "u8", bytes: 1, signed: false, in: []float32{0, 1, -1}, want: []byte{0x80, 0xff, 0x01}},
		{name: "s16", bytes: 2, signed: true, in: []float32{0, 1, -1}, want: []byte{0, 0, 0xff, 0x7f, 0x01, 0x80}},
		{name: "u16", bytes: 2, signed: false, in: []float32{0}, want: []byte{0x00, 0x80}},
		{name: "s24", bytes: 3, signed: true, in: []float32{1}, want: []byte{0xff, 0xff, 0x7f}},
		{name: "s32", bytes: 4, signed: true, in: []float32{-1}, want: []byte{0x01, 0x00, 0x00, 0x80}},
		{name: "clamped", bytes: 2, signed: true, in: []float32{2}, want: []byte{0xff, 0x7f}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, err := NewPacker(tt.bytes, tt.signed)
			if err != nil {
				t.Fatalf("NewPacker() error = %v", err)
			}
			dst := make([]byte, len(tt.want))
			if n := p.Pack(dst, tt.in); n != len(tt.want) {
				t.Errorf("Pack() n = %d, want %d", n, len(tt.want))
			}
			if !bytes.Equal(dst, tt.want) {
				t.Errorf("Pack() = % x, want % x", dst, tt.want)
			}
		})
	}
}

func TestPacker_ShortDst(t *testing.T) {
	t.Parallel()

	p, _ := NewPacker(2, true)
	dst := make([]byte, 5)
	if n := p.Pack(dst, []float32{0.5, 0.5, 0.5}); n != 4 {
		t.Errorf("Pack() n = %d, want 4", n)
	}
}

func TestNewPacker_Invalid(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 5} {
		if _, err := NewPacker(n, true); !errors.Is(err, ErrInvalidSampleSize) {
			t.Errorf("NewPacker(%d) error = %v, want ErrInvalidSampleSize", n, err)
		}
	}
}
