// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

// Config holds the application configuration.
type Config struct {
	Schedule ScheduleConfig `toml:"schedule"`
	Storage  StorageConfig  `toml:"storage"`
	Playback PlaybackConfig `toml:"playback"`
	Log      LogConfig      `toml:"log"`
	UI       UIConfig       `toml:"ui"`
}

// ScheduleConfig holds slot editing defaults.
// The repeat range bounds week-scope repeats, in slot indexes.
type ScheduleConfig struct {
	DefaultStep     int      `toml:"default_step" env:"SPOTGRID_DEFAULT_STEP"`
	RepeatStartSlot int      `toml:"repeat_start_slot" env:"SPOTGRID_REPEAT_START_SLOT"`
	RepeatEndSlot   int      `toml:"repeat_end_slot" env:"SPOTGRID_REPEAT_END_SLOT"`
	WarningInterval Duration `toml:"warning_interval" env:"SPOTGRID_WARNING_INTERVAL"`
}

// Duration is a time.Duration written as text, e.g. "2s".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DBPath string `toml:"db_path" env:"SPOTGRID_DB_PATH"`
}

// PlaybackConfig holds preview playback settings.
type PlaybackConfig struct {
	StreamBaseURL string `toml:"stream_base_url" env:"SPOTGRID_STREAM_BASE_URL"` // e.g., "http://localhost:8000/media"
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level      string `toml:"level" env:"SPOTGRID_LOG_LEVEL"` // "debug", "info", "warn", "error"
	File       string `toml:"file" env:"SPOTGRID_LOG_FILE"`   // empty logs to stderr
	MaxSizeMB  int    `toml:"max_size_mb" env:"SPOTGRID_LOG_MAX_SIZE_MB"`
	MaxBackups int    `toml:"max_backups" env:"SPOTGRID_LOG_MAX_BACKUPS"`
	MaxAgeDays int    `toml:"max_age_days" env:"SPOTGRID_LOG_MAX_AGE_DAYS"`
}

// UIConfig holds terminal output settings.
type UIConfig struct {
	Color string `toml:"color" env:"SPOTGRID_COLOR"` // "auto", "always", "never"
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Schedule: ScheduleConfig{
			DefaultStep:     2,
			RepeatStartSlot: 12, // 06:00
			RepeatEndSlot:   45, // 22:30
			WarningInterval: Duration{2 * time.Second},
		},
		Storage: StorageConfig{
			DBPath: defaultDBPath(),
		},
		Playback: PlaybackConfig{
			StreamBaseURL: "http://localhost:8000/media",
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		UI: UIConfig{
			Color: "auto",
		},
	}
}

// defaultDBPath returns the default database path.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "spotgrid.db"
	}
	return filepath.Join(home, ".local", "share", "spotgrid", "spotgrid.db")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "spotgrid", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	// Try to load from file (not an error if it doesn't exist)
	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)
	cfg.Log.File = expandPath(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Schedule.DefaultStep {
	case 1, 2, 4:
	default:
		return fmt.Errorf("default_step must be 1, 2 or 4, got %d", c.Schedule.DefaultStep)
	}
	if err := validateSlot(c.Schedule.RepeatStartSlot, "repeat_start_slot"); err != nil {
		return err
	}
	if err := validateSlot(c.Schedule.RepeatEndSlot, "repeat_end_slot"); err != nil {
		return err
	}
	if c.Schedule.RepeatStartSlot > c.Schedule.RepeatEndSlot {
		return errors.New("repeat_start_slot must not be after repeat_end_slot")
	}
	if c.Schedule.WarningInterval.Duration < 0 {
		return errors.New("warning_interval cannot be negative")
	}

	if c.Storage.DBPath == "" {
		return errors.New("db_path must be set")
	}

	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		return errors.New("log rotation settings cannot be negative")
	}

	switch c.UI.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("color must be auto, always or never, got %q", c.UI.Color)
	}
	return nil
}

// validateSlot checks that a slot index is within a day.
func validateSlot(index int, field string) error {
	if index < 0 || index > 47 {
		return fmt.Errorf("%s must be between 0 and 47, got %d", field, index)
	}
	return nil
}

var validLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
