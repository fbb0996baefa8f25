// Package config reads process configuration from BLAZE_* environment
// variables, with command-line flags taking precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full process configuration.
type Config struct {
	Headless bool   `env:"BLAZE_HEADLESS"`
	Hz       int    `env:"BLAZE_HZ" envDefault:"60"`
	Ticks    uint64 `env:"BLAZE_TICKS"`
	Width    int    `env:"BLAZE_WIDTH" envDefault:"960"`
	Height   int    `env:"BLAZE_HEIGHT" envDefault:"540"`
	Title    string `env:"BLAZE_TITLE" envDefault:"blaze"`

	// Terminal reads raw keys from stdin in headless mode.
	Terminal bool `env:"BLAZE_TERMINAL"`

	// Snapshot writes the last headless frame as a PNG.
	Snapshot string `env:"BLAZE_SNAPSHOT"`

	Music      string `env:"BLAZE_MUSIC"`
	SampleRate int    `env:"BLAZE_SAMPLE_RATE" envDefault:"48000"`
	FFTSize    int    `env:"BLAZE_FFT_SIZE" envDefault:"128"`

	Preset         string        `env:"BLAZE_PRESET"`
	WatchPreset    bool          `env:"BLAZE_WATCH_PRESET" envDefault:"true"`
	PresetDebounce time.Duration `env:"BLAZE_PRESET_DEBOUNCE" envDefault:"250ms"`
	Script         string        `env:"BLAZE_SCRIPT"`

	MetricsAddr string `env:"BLAZE_METRICS_ADDR"`

	Environment string `env:"BLAZE_ENV" envDefault:"production"`
	LogLevel    string `env:"BLAZE_LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"BLAZE_LOG_FORMAT" envDefault:"json"`
}

var ErrInvalid = errors.New("config: invalid value")

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// RegisterFlags binds flags to c. The current values of c become the flag
// defaults, so flags override the environment.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.Headless, "headless", c.Headless, "Run without a window.")
	fs.IntVar(&c.Hz, "hz", c.Hz, "Tick rate in headless mode.")
	fs.Uint64Var(&c.Ticks, "ticks", c.Ticks, "Stop after N ticks in headless mode (0 = run forever).")
	fs.IntVar(&c.Width, "width", c.Width, "Window or framebuffer width.")
	fs.IntVar(&c.Height, "height", c.Height, "Window or framebuffer height.")
	fs.BoolVar(&c.Terminal, "terminal", c.Terminal, "Read keys from the terminal in headless mode.")
	fs.StringVar(&c.Snapshot, "snapshot", c.Snapshot, "Write the last headless frame to this PNG file.")
	fs.StringVar(&c.Music, "music", c.Music, "Soundtrack (mp3 or wav).")
	fs.StringVar(&c.Preset, "preset", c.Preset, "YAML preset to load at startup.")
	fs.BoolVar(&c.WatchPreset, "watch-preset", c.WatchPreset, "Reload the preset when it changes.")
	fs.StringVar(&c.Script, "script", c.Script, "Lua keyframe script.")
	fs.StringVar(&c.MetricsAddr, "metrics-addr", c.MetricsAddr, "Serve Prometheus metrics on this address.")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "debug, info, warn or error.")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "json or console.")
}

// Validate checks ranges that would otherwise fail deep inside startup.
func (c Config) Validate() error {
	var errs []error
	if c.Hz <= 0 {
		errs = append(errs, fmt.Errorf("%w: hz must be positive, got %d", ErrInvalid, c.Hz))
	}
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("%w: size must be positive, got %dx%d", ErrInvalid, c.Width, c.Height))
	}
	if c.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalid, c.SampleRate))
	}
	if c.FFTSize < 32 || c.FFTSize&(c.FFTSize-1) != 0 {
		errs = append(errs, fmt.Errorf("%w: fft size must be a power of two >= 32, got %d", ErrInvalid, c.FFTSize))
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		errs = append(errs, fmt.Errorf("%w: log format %q", ErrInvalid, c.LogFormat))
	}
	if c.Snapshot != "" && !c.Headless {
		errs = append(errs, fmt.Errorf("%w: snapshot needs headless mode", ErrInvalid))
	}
	return errors.Join(errs...)
}
