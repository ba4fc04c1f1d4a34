// Package config handles service configuration: the TOML config file
// and the optional per-collection view manifest.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the service configuration loaded from config.toml.
type Config struct {
	Storage  StorageConfig  `toml:"storage"`
	Lexicons LexiconsConfig `toml:"lexicons"`
	Serve    ServeConfig    `toml:"serve"`
	Log      LogConfig      `toml:"log"`
}

// StorageConfig selects and addresses the SQL backend.
type StorageConfig struct {
	// Dialect is "sqlite" or "postgres".
	Dialect string `toml:"dialect"`
	// Path is the SQLite database file (":memory:" for in-memory).
	Path string `toml:"path"`
	// DSN is the PostgreSQL connection string.
	DSN string `toml:"dsn"`
}

// LexiconsConfig locates schema input.
type LexiconsConfig struct {
	// Dir is the directory of lexicon JSON documents, walked recursively.
	Dir string `toml:"dir"`
	// Views is the optional view manifest path (views.yaml).
	Views string `toml:"views"`
}

// ServeConfig bounds list queries.
type ServeConfig struct {
	DefaultPageSize int `toml:"default_page_size"`
	MaxPageSize     int `toml:"max_page_size"`
}

// LogConfig controls logging.
type LogConfig struct {
	// Level is debug, info, warn, or error.
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Storage:  StorageConfig{Dialect: "sqlite", Path: "loom.db"},
		Lexicons: LexiconsConfig{Dir: "lexicons"},
		Serve:    ServeConfig{DefaultPageSize: 50, MaxPageSize: 100},
		Log:      LogConfig{Level: "info"},
	}
}

// Load reads the config file at path, filling unset values with
// defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if cfg.Serve.DefaultPageSize <= 0 {
		cfg.Serve.DefaultPageSize = 50
	}
	if cfg.Serve.MaxPageSize <= 0 {
		cfg.Serve.MaxPageSize = 100
	}
	return cfg, nil
}

// SlogLevel maps the configured level name to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
