// Package config provides configuration loading from YAML files.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/tejashwikalptaru/jamclip/internal/logger"
)

// Backend kinds.
const (
	BackendEbiten = "ebiten"
	BackendMock   = "mock"
)

// Config represents the application configuration.
type Config struct {
	Playback PlaybackConfig `yaml:"playback"`
	Backend  BackendConfig  `yaml:"backend"`
	Log      LogConfig      `yaml:"log"`
}

// PlaybackConfig represents playback configuration.
type PlaybackConfig struct {
	ProgressInterval time.Duration `yaml:"progress_interval" default:"16ms" validate:"gte=1ms,lte=1s"`
	HTML5            *bool         `yaml:"html5" default:"true"`
}

// BackendConfig selects and tunes the audio backend.
type BackendConfig struct {
	Kind       string `yaml:"kind" default:"ebiten" validate:"oneof=ebiten mock"`
	SampleRate int    `yaml:"sample_rate" default:"44100" validate:"oneof=22050 44100 48000"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn warning error"`
	Format string `yaml:"format" default:"text" validate:"oneof=text json"`
}

// Load loads configuration from a YAML file.
// An empty path yields the defaults. Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read config file")
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	}

	if err := cfg.overrideFromEnv(); err != nil {
		return nil, err
	}

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// Default returns the default configuration with environment overrides applied.
func Default() (*Config, error) {
	return Load("")
}

// overrideFromEnv overrides config values with JAMCLIP_* environment variables.
func (c *Config) overrideFromEnv() error {
	if v := os.Getenv("JAMCLIP_PROGRESS_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrap(err, "failed to parse JAMCLIP_PROGRESS_INTERVAL")
		}
		c.Playback.ProgressInterval = d
	}
	if v := os.Getenv("JAMCLIP_HTML5"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrap(err, "failed to parse JAMCLIP_HTML5")
		}
		c.Playback.HTML5 = &b
	}
	if v := os.Getenv("JAMCLIP_BACKEND"); v != "" {
		c.Backend.Kind = v
	}
	if v := os.Getenv("JAMCLIP_SAMPLE_RATE"); v != "" {
		rate, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(err, "failed to parse JAMCLIP_SAMPLE_RATE")
		}
		c.Backend.SampleRate = rate
	}
	if v := os.Getenv(logger.LevelEnv); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("JAMCLIP_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}

// UseHTML5 reports whether streaming playback is requested.
func (c *Config) UseHTML5() bool {
	return c.Playback.HTML5 == nil || *c.Playback.HTML5
}

// Logger returns the logger configuration.
func (c *Config) Logger() logger.Config {
	return logger.Config{
		Level:  logger.ParseLevel(c.Log.Level, slog.LevelInfo),
		Format: c.Log.Format,
	}
}
