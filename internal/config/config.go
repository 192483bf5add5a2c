// Package config handles configuration management using Viper
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	// Wayland connection settings
	Wayland WaylandConfig `mapstructure:"wayland"`

	// Capture defaults
	Capture CaptureConfig `mapstructure:"capture"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`
}

// WaylandConfig contains Wayland connection settings
type WaylandConfig struct {
	Display        string `mapstructure:"display"`         // WAYLAND_DISPLAY override, empty uses the environment
	RoundtripLimit int    `mapstructure:"roundtrip_limit"` // Max roundtrips to wait for initial protocol state
	TimeoutSeconds int    `mapstructure:"timeout_seconds"` // Deadline for probe and listing operations
}

// CaptureConfig contains capture session defaults
type CaptureConfig struct {
	PaintCursors bool `mapstructure:"paint_cursors"` // Composite the cursor into captured frames
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	LogLevel string `mapstructure:"log_level"` // Override WLCAPTURE_LOG_LEVEL env var
}

var (
	// DefaultConfig provides sensible defaults
	DefaultConfig = Config{
		Wayland: WaylandConfig{
			Display:        "",
			RoundtripLimit: 4,
			TimeoutSeconds: 5,
		},
		Capture: CaptureConfig{
			PaintCursors: false,
		},
		Logging: LoggingConfig{
			LogLevel: "", // Empty means use WLCAPTURE_LOG_LEVEL env var
		},
	}

	// Global config instance
	cfg *Config

	// Override config path if set
	configPathOverride string
)

// SetConfigPath allows overriding the config path
func SetConfigPath(path string) {
	configPathOverride = path
}

// Init initializes the configuration system
func Init() error {
	viper.SetConfigName("wlcapture")
	viper.SetConfigType("toml")

	// If a specific path is set, use only that
	if configPathOverride != "" {
		viper.SetConfigFile(configPathOverride)
	} else {
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			viper.AddConfigPath(filepath.Join(xdg, "wlcapture"))
		} else if home := os.Getenv("HOME"); home != "" {
			viper.AddConfigPath(filepath.Join(home, ".config", "wlcapture"))
		}
		viper.AddConfigPath(".") // Current directory (lowest priority)
	}

	// Set defaults - need to set individual fields for proper merging
	viper.SetDefault("wayland.display", DefaultConfig.Wayland.Display)
	viper.SetDefault("wayland.roundtrip_limit", DefaultConfig.Wayland.RoundtripLimit)
	viper.SetDefault("wayland.timeout_seconds", DefaultConfig.Wayland.TimeoutSeconds)

	viper.SetDefault("capture.paint_cursors", DefaultConfig.Capture.PaintCursors)

	viper.SetDefault("logging.log_level", DefaultConfig.Logging.LogLevel)

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, use defaults
	}

	// Unmarshal config
	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	return nil
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		// Return defaults if not initialized
		return &DefaultConfig
	}
	return cfg
}

// Set sets the current configuration (for testing)
func Set(c *Config) {
	cfg = c
}
