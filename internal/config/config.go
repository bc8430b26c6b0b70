// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/pimirror/internal/capture"
	"github.com/jmylchreest/pimirror/internal/scale"
)

// Default configuration values. The defaults mirror the first screen
// display onto /dev/fb1 at ten frames per second.
const (
	DefaultSourceDisplay = 0
	DefaultFramebuffer   = 1
	DefaultFPS           = 10
	DefaultScaleFilter   = string(scale.FilterNearest)
	DefaultLogLevel      = "info"
	DefaultStatsInterval = Duration(30 * time.Second)
)

// Config is the pimirror configuration.
type Config struct {
	Source SourceConfig `toml:"source"`
	Output OutputConfig `toml:"output"`
	Daemon DaemonConfig `toml:"daemon"`
	Stats  StatsConfig  `toml:"stats"`
	Log    LogConfig    `toml:"log"`
}

// SourceConfig selects what to capture.
type SourceConfig struct {
	Display int    `toml:"display"` // display index for the screen backend, device number for fb
	Backend string `toml:"backend"` // auto, screen or fb
}

// OutputConfig selects where frames go and how fast.
type OutputConfig struct {
	Framebuffer int    `toml:"framebuffer"`  // destination /dev/fb<n>
	FPS         int    `toml:"fps"`          // target frames per second
	ScaleFilter string `toml:"scale_filter"` // nearest, bilinear or catmullrom
}

// DaemonConfig controls background operation.
type DaemonConfig struct {
	PIDFile string `toml:"pidfile"` // empty disables the pid file
}

// StatsConfig controls periodic statistics logging.
type StatsConfig struct {
	Enabled  bool     `toml:"enabled"`
	Interval Duration `toml:"interval"` // e.g. "30s", "5m"
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn or error
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Display: DefaultSourceDisplay,
			Backend: string(capture.BackendAuto),
		},
		Output: OutputConfig{
			Framebuffer: DefaultFramebuffer,
			FPS:         DefaultFPS,
			ScaleFilter: DefaultScaleFilter,
		},
		Daemon: DaemonConfig{
			PIDFile: "", // No pid file unless asked for
		},
		Stats: StatsConfig{
			Enabled:  true,
			Interval: DefaultStatsInterval,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "pimirror", "config.toml")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if the file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	// Start with defaults
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// No config file, use defaults
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path, creating parent
// directories if needed. The write goes through a temp file so a crash
// cannot leave a half-written config behind.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Validation errors.
var (
	ErrInvalidSourceDisplay = errors.New("source display must be 0 or greater")
	ErrInvalidFramebuffer   = errors.New("destination framebuffer must be 0 or greater")
)

// Normalize replaces values that have a safe fallback. A frame rate of
// zero or below falls back to the default rather than failing, so a
// misconfigured rate cannot keep the mirror from starting.
func (c *Config) Normalize() {
	if c.Output.FPS <= 0 {
		c.Output.FPS = DefaultFPS
	}
	if c.Stats.Interval <= 0 {
		c.Stats.Interval = DefaultStatsInterval
	}
}

// Validate checks the fields that have no safe fallback.
func (c *Config) Validate() error {
	if c.Source.Display < 0 {
		return ErrInvalidSourceDisplay
	}
	if c.Output.Framebuffer < 0 {
		return ErrInvalidFramebuffer
	}

	validBackend := false
	for _, b := range capture.ValidBackends() {
		if c.Source.Backend == string(b) {
			validBackend = true
			break
		}
	}
	if !validBackend {
		return fmt.Errorf("invalid capture backend %q, must be one of: %v", c.Source.Backend, capture.ValidBackends())
	}

	if _, err := scale.ParseFilter(c.Output.ScaleFilter); err != nil {
		return err
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q, must be one of: [debug info warn error]", c.Log.Level)
	}

	return nil
}

// LogLevel maps the configured level onto slog.
func (c *Config) LogLevel() slog.Level {
	switch c.Log.Level {
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
