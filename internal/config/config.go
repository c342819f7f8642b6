// Package config loads the server settings from the environment and an
// optional YAML file. File values override the environment.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/edge-filter-mcp/internal/filter"
)

// Environment variables read by Load.
const (
	EnvLogLevel = "IMAGE_MCP_LOG_LEVEL"
	EnvPresets  = "IMAGE_MCP_PRESETS"
	EnvWorkers  = "IMAGE_MCP_WORKERS"
	EnvTileSize = "IMAGE_MCP_TILE_SIZE"
)

// DefaultTileSize is the tile edge length used when nothing is configured.
const DefaultTileSize = 256

// Config holds the server settings.
type Config struct {
	// LogLevel is a logrus level name.
	LogLevel string `yaml:"log_level"`

	// PresetsPath points to a YAML preset file. Empty means no presets.
	PresetsPath string `yaml:"presets"`

	// Workers bounds the tiles processed at once by filter_apply.
	Workers int `yaml:"workers"`

	// TileSize is the tile edge length; 0 or less disables tiling.
	TileSize int `yaml:"tile_size"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Workers:  runtime.NumCPU(),
		TileSize: DefaultTileSize,
	}
}

// Load builds the configuration from the defaults, the environment and, if
// path is not empty, the YAML file at path.
func Load(path string) (*Config, error) {
	cfg := Default()
	cfg.applyEnv()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.LogLevel = getEnv(EnvLogLevel, c.LogLevel)
	c.PresetsPath = getEnv(EnvPresets, c.PresetsPath)
	c.Workers = getEnvInt(EnvWorkers, c.Workers)
	c.TileSize = getEnvInt(EnvTileSize, c.TileSize)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return nil
}

// Level returns the parsed log level, falling back to info.
func (c *Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// Debug reports whether debug logging is enabled.
func (c *Config) Debug() bool {
	return c.Level() >= logrus.DebugLevel
}

// Tiles returns the tiling options for filter runs.
func (c *Config) Tiles() filter.TileOptions {
	return filter.TileOptions{Size: c.TileSize, Workers: c.Workers}
}

// Presets loads the preset file, or returns empty presets if none is set.
func (c *Config) Presets() (filter.Presets, error) {
	if c.PresetsPath == "" {
		return filter.Presets{}, nil
	}
	return filter.LoadPresetFile(c.PresetsPath)
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
