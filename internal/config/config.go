// Package config loads the editor's settings from YAML and the
// environment.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PHOTO_EDITOR_"

// Config is the full editor configuration.
type Config struct {
	Export   ExportConfig  `yaml:"export"`
	Preview  PreviewConfig `yaml:"preview"`
	Source   SourceConfig  `yaml:"source"`
	Crop     CropConfig    `yaml:"crop"`
	LogLevel string        `yaml:"logLevel" validate:"oneof=debug info warn error"`
}

// ExportConfig bounds the saved image.
type ExportConfig struct {
	MaxDimension int     `yaml:"maxDimension" validate:"min=16,max=16384"`
	Quality      float64 `yaml:"quality" validate:"gt=0,lte=1"`
	Format       string  `yaml:"format" validate:"oneof=webp jpeg"`
}

// PreviewConfig controls the interactive preview.
type PreviewConfig struct {
	MaxDimension int `yaml:"maxDimension" validate:"min=64,max=4096"`
	RefreshHz    int `yaml:"refreshHz" validate:"min=1,max=240"`
}

// SourceConfig limits how sources are fetched.
type SourceConfig struct {
	FetchTimeout time.Duration `yaml:"fetchTimeout" validate:"gt=0"`
	MaxBytes     int64         `yaml:"maxBytes" validate:"gt=0"`
}

// CropConfig tunes crop interaction.
type CropConfig struct {
	HandleRadius float64 `yaml:"handleRadius" validate:"min=0.5,max=20"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Export: ExportConfig{
			MaxDimension: 1920,
			Quality:      0.92,
			Format:       "webp",
		},
		Preview: PreviewConfig{
			MaxDimension: 1200,
			RefreshHz:    60,
		},
		Source: SourceConfig{
			FetchTimeout: 30 * time.Second,
			MaxBytes:     64 << 20,
		},
		Crop: CropConfig{
			HandleRadius: 3,
		},
		LogLevel: "info",
	}
}

// Load builds the configuration from the defaults, the YAML file at path
// (skipped when path is empty) and PHOTO_EDITOR_* environment variables, in
// that order, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, fmt.Errorf("invalid environment override: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every field against its declared bounds.
func (c *Config) Validate() error {
	c.Export.Format = strings.ToLower(c.Export.Format)
	c.LogLevel = strings.ToLower(c.LogLevel)
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func applyEnv(c *Config) error {
	var err error
	if c.Export.MaxDimension, err = envInt("EXPORT_MAX_DIMENSION", c.Export.MaxDimension); err != nil {
		return err
	}
	if c.Export.Quality, err = envFloat("EXPORT_QUALITY", c.Export.Quality); err != nil {
		return err
	}
	c.Export.Format = env("EXPORT_FORMAT", c.Export.Format)
	if c.Preview.MaxDimension, err = envInt("PREVIEW_MAX_DIMENSION", c.Preview.MaxDimension); err != nil {
		return err
	}
	if c.Preview.RefreshHz, err = envInt("PREVIEW_REFRESH_HZ", c.Preview.RefreshHz); err != nil {
		return err
	}
	if c.Source.FetchTimeout, err = envDuration("FETCH_TIMEOUT", c.Source.FetchTimeout); err != nil {
		return err
	}
	maxBytes, err := envInt("MAX_SOURCE_BYTES", int(c.Source.MaxBytes))
	if err != nil {
		return err
	}
	c.Source.MaxBytes = int64(maxBytes)
	c.LogLevel = env("LOG_LEVEL", c.LogLevel)
	return nil
}

func env(key, fallback string) string {
	value, ok := os.LookupEnv(EnvPrefix + key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}

func envInt(key string, fallback int) (int, error) {
	value := env(key, "")
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback, fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	return n, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	value := env(key, "")
	if value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback, fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	return f, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := env(key, "")
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback, fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	return d, nil
}

// SlogLevel maps LogLevel to a slog level. Unknown names map to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger returns a text logger writing to w at the configured level.
// Servers pass os.Stderr so stdout stays free for protocol traffic.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.SlogLevel()}))
}
