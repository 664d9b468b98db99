// SPDX-License-Identifier: EPL-2.0

package sink

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/ik5/audstream/relay"
	"github.com/rs/zerolog"
)

type Config struct {
	SingleChannel bool
	Channel       int
	// Paced makes the sink take each chunk's playing time, as a device
	// would. Substituted silence is always paced.
	Paced bool
	// KeepSilence writes substituted silence to the output.
	KeepSilence bool
	// Drain is closed by the producer once it has queued its last buffer.
	Drain  <-chan struct{}
	Logger *zerolog.Logger
}

type Stats struct {
	Chunks    uint64
	Bytes     uint64
	Underruns uint64
}

// Sink is a software stand-in for an audio driver. It pulls chunks from a
// relay the way a DMA interrupt would and writes them to an io.Writer.
type Sink struct {
	relay *relay.Relay
	w     io.Writer
	cfg   Config
	log   zerolog.Logger

	bytesPerSample int
	frameSize      int
	out            []byte

	chunks    atomic.Uint64
	bytes     atomic.Uint64
	underruns atomic.Uint64
}

func New(r *relay.Relay, w io.Writer, cfg Config) (*Sink, error) {
	if cfg.Channel < 0 {
		return nil, fmt.Errorf("%w: channel %d", ErrInvalidConfig, cfg.Channel)
	}

	f, err := r.Format()
	if err != nil {
		return nil, err
	}

	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = cfg.Logger.With().Str("component", "sink").Logger()
	}

	frameSize := f.FrameSize()
	if cfg.SingleChannel {
		frameSize = f.BytesPerSample
	}

	return &Sink{
		relay:          r,
		w:              w,
		cfg:            cfg,
		log:            log,
		bytesPerSample: f.BytesPerSample,
		frameSize:      frameSize,
	}, nil
}

// Run plays the relay until it reports Done, the drain channel is closed
// and the relay runs dry, or ctx ends.
func (s *Sink) Run(ctx context.Context) error {
	layout, err := s.relay.BufferStructure(s.cfg.SingleChannel)
	if err != nil {
		return err
	}
	s.log.Debug().
		Bool("single_channel", s.cfg.SingleChannel).
		Int("spacing", layout.Spacing).
		Msg("sink started")

	next := time.Now()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		drained := s.drained()

		c, err := s.relay.NextChunk(s.cfg.SingleChannel, s.cfg.Channel)
		if err != nil {
			return err
		}

		if c.Silence {
			if drained {
				s.log.Debug().Uint64("chunks", s.chunks.Load()).Msg("drained")
				return nil
			}
			s.underruns.Add(1)
		}

		data := c.Data
		if s.cfg.SingleChannel {
			data = s.pick(c.Data, layout.Spacing)
		}

		if !c.Silence || s.cfg.KeepSilence {
			if _, err := s.w.Write(data); err != nil {
				return fmt.Errorf("sink: %w", err)
			}
			s.bytes.Add(uint64(len(data)))
		}
		s.chunks.Add(1)

		if s.cfg.Paced || c.Silence {
			next = next.Add(s.duration(len(data), c.SampleRate))
			if err := sleepUntil(ctx, next); err != nil {
				return err
			}
		} else {
			next = time.Now()
		}

		if c.Status == relay.Done {
			s.log.Debug().Uint64("chunks", s.chunks.Load()).Msg("done")
			return nil
		}
	}
}

func (s *Sink) drained() bool {
	if s.cfg.Drain == nil {
		return false
	}
	select {
	case <-s.cfg.Drain:
		return true
	default:
		return false
	}
}

// pick copies every spacing-th sample of data, starting with the first.
func (s *Sink) pick(data []byte, spacing int) []byte {
	s.out = s.out[:0]
	stride := spacing * s.bytesPerSample
	for i := 0; i+s.bytesPerSample <= len(data); i += stride {
		s.out = append(s.out, data[i:i+s.bytesPerSample]...)
	}
	return s.out
}

func (s *Sink) duration(n, rate int) time.Duration {
	if rate <= 0 || s.frameSize <= 0 {
		return 0
	}
	frames := n / s.frameSize
	return time.Duration(frames) * time.Second / time.Duration(rate)
}

func sleepUntil(ctx context.Context, t time.Time) error {
	d := time.Until(t)
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Sink) Stats() Stats {
	return Stats{
		Chunks:    s.chunks.Load(),
		Bytes:     s.bytes.Load(),
		Underruns: s.underruns.Load(),
	}
}
