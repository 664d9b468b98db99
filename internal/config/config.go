// SPDX-License-Identifier: EPL-2.0

// Package config holds the audstream settings and loads them from a YAML,
// JSON or TOML file plus AUDSTREAM_ environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ik5/audstream/relay"
	"github.com/kkyr/fig"
)

const (
	EnvPrefix = "AUDSTREAM"
	FileName  = "audstream.yaml"
)

// Booleans default to false because fig cannot tell an explicit false from
// an unset field.
type Config struct {
	Stream  Stream  `fig:"stream"`
	Feed    Feed    `fig:"feed"`
	Sink    Sink    `fig:"sink"`
	Metrics Metrics `fig:"metrics"`
	Log     Log     `fig:"log"`
}

type Stream struct {
	BytesPerSample int  `fig:"bytes_per_sample" default:"2"`
	Unsigned       bool `fig:"unsigned"`
	Channels       int  `fig:"channels" default:"2"`
	SampleRate     int  `fig:"sample_rate" default:"44100"`
	// OneShot ends playback at the first underrun instead of playing
	// silence.
	OneShot bool `fig:"one_shot"`
}

type Feed struct {
	ChunkFrames  int           `fig:"chunk_frames" default:"1024"`
	Buffers      int           `fig:"buffers" default:"3"`
	PollInterval time.Duration `fig:"poll_interval" default:"2ms"`
}

type Sink struct {
	SingleChannel bool `fig:"single_channel"`
	Channel       int  `fig:"channel"`
	Paced         bool `fig:"paced"`
	KeepSilence   bool `fig:"keep_silence"`
}

type Metrics struct {
	Enabled bool   `fig:"enabled"`
	Address string `fig:"address" default:":9090"`
	Path    string `fig:"path" default:"/metrics"`
}

type Log struct {
	Level   string `fig:"level" default:"info"`
	JSON    bool   `fig:"json"`
	NoColor bool   `fig:"no_color"`
}

// Format returns the relay format described by s.
func (s Stream) Format() relay.Format {
	return relay.Format{
		BytesPerSample: s.BytesPerSample,
		Signed:         !s.Unsigned,
		Channels:       s.Channels,
		SampleRate:     s.SampleRate,
	}
}

// Load reads path, or FileName from the usual directories when path is
// empty. A missing default file is not an error; defaults and environment
// variables still apply.
func Load(path string) (*Config, error) {
	cfg := new(Config)

	if path != "" {
		err := fig.Load(cfg,
			fig.File(filepath.Base(path)),
			fig.Dirs(filepath.Dir(path)),
			fig.UseEnv(EnvPrefix))
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		return cfg, cfg.Validate()
	}

	dirs := []string{".", "configs"}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", "audstream"))
	}

	err := fig.Load(cfg, fig.File(FileName), fig.Dirs(dirs...), fig.UseEnv(EnvPrefix))
	if errors.Is(err, fig.ErrFileNotFound) {
		cfg = new(Config)
		err = fig.Load(cfg, fig.IgnoreFile(), fig.UseEnv(EnvPrefix))
	}
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, cfg.Validate()
}

// Validate checks values fig cannot express as defaults.
func (c *Config) Validate() error {
	if err := c.Stream.Format().Validate(); err != nil {
		return fmt.Errorf("config: stream: %w", err)
	}
	if c.Feed.ChunkFrames < 1 {
		return fmt.Errorf("config: feed.chunk_frames must be positive, got %d", c.Feed.ChunkFrames)
	}
	if c.Feed.Buffers < 2 {
		return fmt.Errorf("config: feed.buffers must be at least 2, got %d", c.Feed.Buffers)
	}
	if c.Feed.PollInterval <= 0 {
		return fmt.Errorf("config: feed.poll_interval must be positive, got %s", c.Feed.PollInterval)
	}
	if c.Sink.Channel < 0 {
		return fmt.Errorf("config: sink.channel must not be negative, got %d", c.Sink.Channel)
	}
	if c.Metrics.Enabled && c.Metrics.Address == "" {
		return errors.New("config: metrics.address is required when metrics are enabled")
	}
	return nil
}
