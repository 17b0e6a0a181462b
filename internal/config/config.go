// Package config loads todo's TOML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/fentz26/todo/internal/models"
)

// Config defines the user configuration.
type Config struct {
	// DataFile is the JSON document holding all tasks.
	DataFile string `toml:"data_file"`
	// DefaultPriority is used by add when --priority is not given.
	DefaultPriority string `toml:"default_priority"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`
	// DueSoonDays is the window of the "soon" due filter.
	DueSoonDays int `toml:"due_soon_days"`
	// FuzzyTags folds near-duplicate tags onto existing ones.
	FuzzyTags bool `toml:"fuzzy_tags"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		DataFile:        DefaultDataFile(),
		DefaultPriority: string(models.PriorityMedium),
		LogLevel:        "info",
		DueSoonDays:     7,
		FuzzyTags:       true,
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/todo/config.toml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "todo", "config.toml")
}

// DefaultDataFile returns $XDG_DATA_HOME/todo/todos.json.
func DefaultDataFile() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "todo", "todos.json")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "todo", "todos.json")
}

// Load reads configuration in priority order:
// 1. Defaults
// 2. Config file at path (missing file is fine)
// 3. Environment variables
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	loadFromEnv(cfg)
	cfg.DataFile = expandHome(cfg.DataFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("TODO_DATA_FILE"); v != "" {
		cfg.DataFile = v
	}
	if v := os.Getenv("TODO_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

// Validate rejects values the rest of the program cannot use.
func (c *Config) Validate() error {
	if c.DataFile == "" {
		return fmt.Errorf("data_file is empty")
	}
	if _, err := models.ParsePriority(c.DefaultPriority); err != nil {
		return fmt.Errorf("default_priority: %w", err)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level: invalid value %q (want debug, info, warn or error)", c.LogLevel)
	}
	if c.DueSoonDays < 0 {
		return fmt.Errorf("due_soon_days: must not be negative, got %d", c.DueSoonDays)
	}
	return nil
}
