// Package config loads viewer settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"drawing-viewer/internal/viewport"
)

// Environment overrides.
const (
	EnvMetadata       = "DRAWINGS_METADATA"
	EnvDrawingsDir    = "DRAWINGS_DIR"
	EnvLocalRevisions = "DRAWINGS_LOCAL_DB"
	EnvLogLevel       = "DRAWINGS_LOG_LEVEL"
	EnvLogFormat      = "DRAWINGS_LOG_FORMAT"
	EnvReporter       = "DRAWINGS_REPORTER"
)

// ViewportConfig mirrors viewport.Limits.
type ViewportConfig struct {
	MinScale   float64 `yaml:"min_scale"`
	MaxScale   float64 `yaml:"max_scale"`
	ZoomFactor float64 `yaml:"zoom_factor"`
	FitPadding float64 `yaml:"fit_padding"`
}

// Limits converts the section to controller limits.
func (v ViewportConfig) Limits() viewport.Limits {
	return viewport.Limits{
		MinScale:   v.MinScale,
		MaxScale:   v.MaxScale,
		ZoomFactor: v.ZoomFactor,
		FitPadding: v.FitPadding,
	}
}

// LogConfig selects the logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config holds every viewer setting.
type Config struct {
	// Metadata is the path of metadata.json.
	Metadata string `yaml:"metadata"`
	// DrawingsDir is where image file names are resolved. Defaults to the
	// directory holding the metadata file.
	DrawingsDir string `yaml:"drawings_dir"`
	// LocalRevisions is the SQLite file for uploaded revisions. Empty keeps
	// them in memory.
	LocalRevisions string `yaml:"local_revisions"`
	// Reporter is stamped on new issue pins.
	Reporter string `yaml:"reporter"`
	// ImageCache is the number of decoded rasters kept in memory.
	ImageCache int `yaml:"image_cache"`
	// WatchInterval is how often metadata.json is polled for changes. Zero
	// disables watching.
	WatchInterval time.Duration `yaml:"watch_interval"`

	Viewport ViewportConfig `yaml:"viewport"`
	Log      LogConfig      `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() *Config {
	l := viewport.DefaultLimits()
	return &Config{
		Metadata:      "metadata.json",
		Reporter:      "viewer",
		ImageCache:    16,
		WatchInterval: 2 * time.Second,
		Viewport: ViewportConfig{
			MinScale:   l.MinScale,
			MaxScale:   l.MaxScale,
			ZoomFactor: l.ZoomFactor,
			FitPadding: l.FitPadding,
		},
		Log: LogConfig{Level: "info", Format: "console"},
	}
}

// Load reads path over the defaults and applies environment overrides. A
// missing file is not an error when path is empty.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ImageDir returns the directory image file names resolve against.
func (c *Config) ImageDir() string {
	if c.DrawingsDir != "" {
		return c.DrawingsDir
	}
	return filepath.Dir(c.Metadata)
}

func (c *Config) applyEnv() error {
	c.Metadata = getEnv(EnvMetadata, c.Metadata)
	c.DrawingsDir = getEnv(EnvDrawingsDir, c.DrawingsDir)
	c.LocalRevisions = getEnv(EnvLocalRevisions, c.LocalRevisions)
	c.Log.Level = getEnv(EnvLogLevel, c.Log.Level)
	c.Log.Format = getEnv(EnvLogFormat, c.Log.Format)
	c.Reporter = getEnv(EnvReporter, c.Reporter)
	if v := os.Getenv("DRAWINGS_IMAGE_CACHE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid DRAWINGS_IMAGE_CACHE %q: %w", v, err)
		}
		c.ImageCache = n
	}
	return nil
}

// Validate checks the settings that cannot be normalized.
func (c *Config) Validate() error {
	if c.Metadata == "" {
		return errors.New("metadata path is required")
	}
	if c.ImageCache < 1 {
		return fmt.Errorf("image_cache must be positive, got %d", c.ImageCache)
	}
	if c.Viewport.MinScale < 0 || c.Viewport.MaxScale < 0 {
		return errors.New("viewport scales must not be negative")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
