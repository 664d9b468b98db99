// SPDX-License-Identifier: EPL-2.0

package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ik5/audstream/audio"
	"github.com/ik5/audstream/relay"
	"github.com/rs/zerolog"
)

const (
	DefaultChunkFrames  = 1024
	DefaultBuffers      = 3
	DefaultPollInterval = 2 * time.Millisecond
)

type Config struct {
	// ChunkFrames is the number of frames packed into each queued buffer.
	ChunkFrames int
	// Buffers is the ring size. Two is the minimum: one buffer may be
	// playing while the next one is pending.
	Buffers      int
	PollInterval time.Duration
	// Released, when set, is the channel given to relay.WithReleaseNotify.
	// The feeder then wakes up on releases instead of waiting a full poll.
	Released <-chan []byte
	Logger   *zerolog.Logger
}

func (c *Config) setDefaults() {
	if c.ChunkFrames == 0 {
		c.ChunkFrames = DefaultChunkFrames
	}
	if c.Buffers == 0 {
		c.Buffers = DefaultBuffers
	}
	if c.PollInterval == 0 {
		c.PollInterval = DefaultPollInterval
	}
}

type Stats struct {
	Chunks  uint64
	Bytes   uint64
	Retries uint64 // Queue calls that found the slot occupied
}

// Feeder pulls samples from a source, packs them in the relay format and
// queues them. It is the single producer of its relay.
type Feeder struct {
	relay  *relay.Relay
	src    audio.Source
	cfg    Config
	packer audio.Packer
	log    zerolog.Logger

	ring    [][]byte
	seqs    []uint64 // relay sequence of the buffer in each slot, 0 when free
	samples []float32

	primed    chan struct{}
	primeOnce sync.Once

	chunks  atomic.Uint64
	bytes   atomic.Uint64
	retries atomic.Uint64
}

// New checks that src already matches the relay layout; use audio.Conform
// to adapt it first.
func New(r *relay.Relay, src audio.Source, cfg Config) (*Feeder, error) {
	cfg.setDefaults()
	if cfg.ChunkFrames < 1 || cfg.Buffers < 2 || cfg.PollInterval < 0 {
		return nil, fmt.Errorf("%w: chunk frames %d, buffers %d, poll %s",
			ErrInvalidConfig, cfg.ChunkFrames, cfg.Buffers, cfg.PollInterval)
	}

	f, err := r.Format()
	if err != nil {
		return nil, err
	}
	if src.Channels() != f.Channels || src.SampleRate() != f.SampleRate {
		return nil, fmt.Errorf("%w: source %d ch %d Hz, relay %s",
			ErrFormatMismatch, src.Channels(), src.SampleRate(), f)
	}

	packer, err := audio.NewPacker(f.BytesPerSample, f.Signed)
	if err != nil {
		return nil, fmt.Errorf("feed: %w", err)
	}

	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = cfg.Logger.With().Str("component", "feed").Logger()
	}

	fd := &Feeder{
		relay:   r,
		src:     src,
		cfg:     cfg,
		packer:  packer,
		log:     log,
		ring:    make([][]byte, cfg.Buffers),
		seqs:    make([]uint64, cfg.Buffers),
		samples: make([]float32, cfg.ChunkFrames*f.Channels),
		primed:  make(chan struct{}),
	}
	for i := range fd.ring {
		fd.ring[i] = make([]byte, len(fd.samples)*packer.BytesPerSample())
	}

	return fd, nil
}

// Primed is closed once the first chunk has been queued, or when Run
// returns without queueing anything. A consumer started earlier would find
// the relay empty.
func (f *Feeder) Primed() <-chan struct{} { return f.primed }

func (f *Feeder) markPrimed() {
	f.primeOnce.Do(func() { close(f.primed) })
}

// Run feeds until the source is exhausted and its last chunk is queued,
// the context ends, or the relay is deinitialized.
func (f *Feeder) Run(ctx context.Context) error {
	defer f.markPrimed()

	f.log.Debug().
		Int("chunk_frames", f.cfg.ChunkFrames).
		Int("buffers", f.cfg.Buffers).
		Msg("feeding")

	for slot := 0; ; slot = (slot + 1) % len(f.ring) {
		if err := f.wait(ctx, func() bool { return f.reusable(slot) }); err != nil {
			return err
		}

		n, eof, err := f.fill()
		if err != nil {
			return err
		}
		if n == 0 {
			f.log.Debug().Uint64("chunks", f.chunks.Load()).Msg("source exhausted")
			return nil
		}

		size := f.packer.Pack(f.ring[slot], f.samples[:n])
		if err := f.queue(ctx, f.ring[slot][:size]); err != nil {
			return err
		}
		f.seqs[slot] = f.relay.Enqueued()
		f.markPrimed()
		f.chunks.Add(1)
		f.bytes.Add(uint64(size))

		if eof {
			f.log.Debug().Uint64("chunks", f.chunks.Load()).Msg("source exhausted")
			return nil
		}
	}
}

// reusable reports whether the buffer in slot has left the relay.
func (f *Feeder) reusable(slot int) bool {
	return f.seqs[slot] == 0 || f.relay.Released() >= f.seqs[slot]
}

// fill reads one chunk of whole frames from the source.
func (f *Feeder) fill() (int, bool, error) {
	total := 0
	for total < len(f.samples) {
		n, err := f.src.ReadSamples(f.samples[total:])
		total += n
		if errors.Is(err, io.EOF) {
			return total - total%f.src.Channels(), true, nil
		}
		if err != nil {
			return 0, false, fmt.Errorf("feed: reading source: %w", err)
		}
		if n == 0 {
			return total - total%f.src.Channels(), true, nil
		}
	}
	return total, false, nil
}

func (f *Feeder) queue(ctx context.Context, buf []byte) error {
	var qerr error
	err := f.wait(ctx, func() bool {
		ok, err := f.relay.Queue(buf)
		if err != nil {
			qerr = err
			return true
		}
		if !ok {
			f.retries.Add(1)
		}
		return ok
	})
	if err != nil {
		return err
	}
	return qerr
}

// wait returns once done reports true, checking again on every poll tick
// and every release notification.
func (f *Feeder) wait(ctx context.Context, done func() bool) error {
	if done() {
		return nil
	}

	ticker := time.NewTicker(f.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case <-f.cfg.Released:
		}
		if done() {
			return nil
		}
	}
}

func (f *Feeder) Stats() Stats {
	return Stats{
		Chunks:  f.chunks.Load(),
		Bytes:   f.bytes.Load(),
		Retries: f.retries.Load(),
	}
}
