// SPDX-License-Identifier: EPL-2.0

package sink

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ik5/audstream/relay"
)

var stereo16 = relay.Format{BytesPerSample: 2, Signed: true, Channels: 2, SampleRate: 8000}

func newRelay(t *testing.T, f relay.Format, persistent bool) *relay.Relay {
	t.Helper()

	r, err := relay.New(f, persistent)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func mustQueue(t *testing.T, r *relay.Relay, buf []byte) {
	t.Helper()

	ok, err := r.Queue(buf)
	if err != nil || !ok {
		t.Fatalf("Queue() = %v, %v, want true, nil", ok, err)
	}
}

func TestSink_StopsOnDone(t *testing.T) {
	t.Parallel()

	r := newRelay(t, stereo16, false)
	buf := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	mustQueue(t, r, buf)

	var out bytes.Buffer
	s, err := New(r, &out, Config{})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !bytes.Equal(out.Bytes(), buf) {
		t.Errorf("output = %v, want %v", out.Bytes(), buf)
	}
	st := s.Stats()
	if st.Chunks != 2 || st.Underruns != 1 || st.Bytes != uint64(len(buf)) {
		t.Errorf("Stats() = %+v, want 2 chunks, 1 underrun, %d bytes", st, len(buf))
	}
}

func TestSink_KeepSilence(t *testing.T) {
	t.Parallel()

	r := newRelay(t, stereo16, false)
	mustQueue(t, r, []byte{9, 9, 9, 9})

	var out bytes.Buffer
	s, err := New(r, &out, Config{KeepSilence: true})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []byte{9, 9, 9, 9, 0, 0, 0, 0, 0, 0, 0, 0}
	if !bytes.Equal(out.Bytes(), want) {
		t.Errorf("output = %v, want %v", out.Bytes(), want)
	}
}

func TestSink_SingleChannel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		channel int
		want    []byte
	}{
		{0, []byte{0x10, 0x11, 0x30, 0x31}},
		{1, []byte{0x20, 0x21, 0x40, 0x41}},
		{3, []byte{0x20, 0x21, 0x40, 0x41}},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			t.Parallel()

			r := newRelay(t, stereo16, false)
			mustQueue(t, r, []byte{0x10, 0x11, 0x20, 0x21, 0x30, 0x31, 0x40, 0x41})

			var out bytes.Buffer
			s, err := New(r, &out, Config{SingleChannel: true, Channel: tt.channel})
			if err != nil {
				t.Fatal(err)
			}
			if err := s.Run(context.Background()); err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if !bytes.Equal(out.Bytes(), tt.want) {
				t.Errorf("channel %d output = %x, want %x", tt.channel, out.Bytes(), tt.want)
			}
		})
	}
}

func TestSink_Drain(t *testing.T) {
	t.Parallel()

	r := newRelay(t, stereo16, true)
	buf := []byte{1, 0, 2, 0}
	mustQueue(t, r, buf)

	drain := make(chan struct{})
	close(drain)

	var out bytes.Buffer
	s, err := New(r, &out, Config{Drain: drain})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !bytes.Equal(out.Bytes(), buf) {
		t.Errorf("output = %v, want %v", out.Bytes(), buf)
	}
	if got := s.Stats().Underruns; got != 0 {
		t.Errorf("Stats().Underruns = %d, want 0", got)
	}
}

func TestSink_PersistentRunsUntilCancel(t *testing.T) {
	t.Parallel()

	r := newRelay(t, stereo16, true)

	var out bytes.Buffer
	s, err := New(r, &out, Config{})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := s.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run() error = %v, want context.DeadlineExceeded", err)
	}
	if out.Len() != 0 {
		t.Errorf("wrote %d bytes of silence without KeepSilence", out.Len())
	}
	if s.Stats().Underruns == 0 {
		t.Error("Stats().Underruns = 0, want underruns")
	}
}

func TestSink_Paced(t *testing.T) {
	t.Parallel()

	// 400 stereo frames at 8 kHz play for 50ms.
	r := newRelay(t, stereo16, false)
	mustQueue(t, r, make([]byte, 400*4))

	s, err := New(r, &bytes.Buffer{}, Config{Paced: true})
	if err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 45*time.Millisecond {
		t.Errorf("paced run took %s, want at least 50ms", elapsed)
	}
}

type failWriter struct{}

var errDisk = errors.New("disk full")

func (failWriter) Write([]byte) (int, error) { return 0, errDisk }

func TestSink_WriteError(t *testing.T) {
	t.Parallel()

	r := newRelay(t, stereo16, false)
	mustQueue(t, r, []byte{1, 2, 3, 4})

	s, err := New(r, failWriter{}, Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Run(context.Background()); !errors.Is(err, errDisk) {
		t.Errorf("Run() error = %v, want disk full", err)
	}
}

func TestSink_RelayDeinit(t *testing.T) {
	t.Parallel()

	r := newRelay(t, stereo16, true)
	s, err := New(r, &bytes.Buffer{}, Config{})
	if err != nil {
		t.Fatal(err)
	}
	r.Deinit()

	if err := s.Run(context.Background()); !errors.Is(err, relay.ErrInvalidState) {
		t.Errorf("Run() error = %v, want relay.ErrInvalidState", err)
	}
	if _, err := New(r, &bytes.Buffer{}, Config{}); !errors.Is(err, relay.ErrInvalidState) {
		t.Errorf("New() error = %v, want relay.ErrInvalidState", err)
	}
}

func TestNew_NegativeChannel(t *testing.T) {
	t.Parallel()

	r := newRelay(t, stereo16, true)
	if _, err := New(r, &bytes.Buffer{}, Config{SingleChannel: true, Channel: -1}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("New() error = %v, want ErrInvalidConfig", err)
	}
}
