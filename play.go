// SPDX-License-Identifier: EPL-2.0

package audstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/ik5/audstream/audio"
	"github.com/ik5/audstream/feed"
	"github.com/ik5/audstream/relay"
	"github.com/ik5/audstream/sink"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	ChunkFrames  int
	Buffers      int
	PollInterval time.Duration
	// Released is the channel passed to relay.WithReleaseNotify, if any.
	Released <-chan []byte

	SingleChannel bool
	Channel       int
	// Paced plays in real time. Playback through a one-shot relay is
	// always paced, since an unpaced consumer outruns any producer and
	// would stop at the first underrun.
	Paced       bool
	KeepSilence bool

	Logger *zerolog.Logger
}

// Play streams src through r into w. The source is converted to the relay
// format, a feeder and a software sink run concurrently, and the relay is
// deinitialized when both have stopped. src is closed on return.
func Play(ctx context.Context, src audio.Source, r *relay.Relay, w io.Writer, opts Options) error {
	defer r.Deinit()

	f, err := r.Format()
	if err != nil {
		src.Close()
		return err
	}

	conformed, err := audio.Conform(src, f.SampleRate, f.Channels)
	if err != nil {
		src.Close()
		return fmt.Errorf("audstream: %w", err)
	}
	defer conformed.Close()

	feeder, err := feed.New(r, conformed, feed.Config{
		ChunkFrames:  opts.ChunkFrames,
		Buffers:      opts.Buffers,
		PollInterval: opts.PollInterval,
		Released:     opts.Released,
		Logger:       opts.Logger,
	})
	if err != nil {
		return err
	}

	drain := make(chan struct{})
	player, err := sink.New(r, w, sink.Config{
		SingleChannel: opts.SingleChannel,
		Channel:       opts.Channel,
		Paced:         opts.Paced || !r.Persistent(),
		KeepSilence:   opts.KeepSilence,
		Drain:         drain,
		Logger:        opts.Logger,
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	fctx, stopFeed := context.WithCancel(gctx)
	defer stopFeed()

	var sinkDone atomic.Bool
	g.Go(func() error {
		defer close(drain)

		err := feeder.Run(fctx)
		if errors.Is(err, context.Canceled) && sinkDone.Load() && ctx.Err() == nil {
			return ErrStoppedEarly
		}
		return err
	})
	g.Go(func() error {
		// The relay must hold data before the consumer starts, or a
		// one-shot relay ends on its first request.
		select {
		case <-feeder.Primed():
		case <-gctx.Done():
			return gctx.Err()
		}

		err := player.Run(gctx)
		if err == nil {
			sinkDone.Store(true)
			stopFeed()
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}
	// A last chunk queued after the consumer stopped was never played.
	if st := r.Stats(); st.Served < st.Queued {
		return ErrStoppedEarly
	}

	if opts.Logger != nil {
		fs, ss := feeder.Stats(), player.Stats()
		opts.Logger.Info().
			Uint64("chunks", fs.Chunks).
			Uint64("bytes", ss.Bytes).
			Uint64("underruns", ss.Underruns).
			Msg("playback finished")
	}
	return nil
}
