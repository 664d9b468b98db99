// SPDX-License-Identifier: EPL-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ik5/audstream"
	"github.com/ik5/audstream/formats/wav"
	"github.com/ik5/audstream/metrics"
	"github.com/ik5/audstream/relay"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var playFlags struct {
	out           string
	sampleRate    int
	channels      int
	bytes         int
	oneShot       bool
	paced         bool
	singleChannel bool
	channel       int
	metrics       bool
}

var playCmd = &cobra.Command{
	Use:   "play <input>",
	Short: "Stream an audio file through a relay and capture what the consumer plays",
	Long: `Decode the input, convert it to the stream format and play it through a
relay. A software sink stands in for the audio device and the chunks it
plays are written to the --out WAV file.

Flags override the matching config values.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	f := playCmd.Flags()
	f.StringVarP(&playFlags.out, "out", "o", "", "output WAV file (required)")
	f.IntVarP(&playFlags.sampleRate, "rate", "r", 0, "stream sample rate in Hz")
	f.IntVar(&playFlags.channels, "channels", 0, "stream channel count")
	f.IntVar(&playFlags.bytes, "bytes", 0, "bytes per sample, 1 to 4")
	f.BoolVar(&playFlags.oneShot, "one-shot", false, "stop at the first underrun")
	f.BoolVar(&playFlags.paced, "paced", false, "play in real time")
	f.BoolVar(&playFlags.singleChannel, "single-channel", false, "capture one channel only")
	f.IntVar(&playFlags.channel, "channel", 0, "channel captured with --single-channel")
	f.BoolVar(&playFlags.metrics, "metrics", false, "serve Prometheus metrics while playing")
	_ = playCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(playCmd)
}

// applyPlayFlags copies explicitly set flags over the config.
func applyPlayFlags(cmd *cobra.Command) error {
	f := cmd.Flags()
	if f.Changed("rate") {
		cfg.Stream.SampleRate = playFlags.sampleRate
	}
	if f.Changed("channels") {
		cfg.Stream.Channels = playFlags.channels
	}
	if f.Changed("bytes") {
		cfg.Stream.BytesPerSample = playFlags.bytes
	}
	if f.Changed("one-shot") {
		cfg.Stream.OneShot = playFlags.oneShot
	}
	if f.Changed("paced") {
		cfg.Sink.Paced = playFlags.paced
	}
	if f.Changed("single-channel") {
		cfg.Sink.SingleChannel = playFlags.singleChannel
	}
	if f.Changed("channel") {
		cfg.Sink.Channel = playFlags.channel
	}
	if f.Changed("metrics") {
		cfg.Metrics.Enabled = playFlags.metrics
	}
	return cfg.Validate()
}

func runPlay(cmd *cobra.Command, args []string) error {
	if err := applyPlayFlags(cmd); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, in, err := openSource(args[0])
	if err != nil {
		return err
	}
	defer in.Close()

	format := cfg.Stream.Format()
	released := make(chan []byte, cfg.Feed.Buffers)
	r, err := relay.New(format, !cfg.Stream.OneShot,
		relay.WithLogger(log),
		relay.WithReleaseNotify(released))
	if err != nil {
		src.Close()
		return err
	}

	out, err := os.Create(playFlags.out)
	if err != nil {
		src.Close()
		return err
	}
	defer out.Close()

	channels := format.Channels
	if cfg.Sink.SingleChannel {
		channels = 1
	}
	capture, err := wav.NewWriter(out, format.SampleRate, format.BytesPerSample, channels, format.Signed)
	if err != nil {
		src.Close()
		return err
	}

	log.Info().
		Str("input", args[0]).
		Int("source_rate", src.SampleRate()).
		Int("source_channels", src.Channels()).
		Stringer("stream", format).
		Bool("persistent", r.Persistent()).
		Msg("playing")

	g, gctx := errgroup.WithContext(ctx)
	mctx, stopMetrics := context.WithCancel(gctx)
	defer stopMetrics()

	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(metrics.NewCollector("play", r))
		srv := metrics.NewServer(cfg.Metrics.Address, cfg.Metrics.Path, reg, log)
		g.Go(func() error { return srv.Run(mctx) })
	}

	g.Go(func() error {
		defer stopMetrics()
		return audstream.Play(gctx, src, r, capture, audstream.Options{
			ChunkFrames:   cfg.Feed.ChunkFrames,
			Buffers:       cfg.Feed.Buffers,
			PollInterval:  cfg.Feed.PollInterval,
			Released:      released,
			SingleChannel: cfg.Sink.SingleChannel,
			Channel:       cfg.Sink.Channel,
			Paced:         cfg.Sink.Paced,
			KeepSilence:   cfg.Sink.KeepSilence,
			Logger:        &log,
		})
	})

	playErr := g.Wait()
	if err := capture.Close(); err != nil && playErr == nil {
		playErr = err
	}
	if errors.Is(playErr, audstream.ErrStoppedEarly) {
		log.Warn().Msg("relay ran dry before the input ended; the capture is truncated")
		return nil
	}
	if playErr != nil {
		return fmt.Errorf("play: %w", playErr)
	}

	log.Info().Str("out", playFlags.out).Msg("capture written")
	return nil
}
