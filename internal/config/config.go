// Package config loads and saves the application configuration from the
// user config directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// AppName names the config and data directories.
const AppName = "decklist"

// Config represents the application configuration.
type Config struct {
	// UseDatabase disables all reference-database features when false:
	// no downloads, no fuzzy matching, every missing card reported as-is.
	UseDatabase bool `toml:"use_database"`

	// DatabasePath is the on-disk snapshot directory.
	DatabasePath string `toml:"database_path"`

	// DatabaseAgeLimit is the staleness threshold in days.
	DatabaseAgeLimit int `toml:"database_age_limit"`

	// DatabaseNum is how many snapshots to retain after a refresh.
	DatabaseNum int `toml:"database_num"`

	// CollectionPath is a collection file to load automatically.
	CollectionPath string `toml:"collection_path"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		UseDatabase:      true,
		DatabasePath:     defaultDataDir(),
		DatabaseAgeLimit: 7,
		DatabaseNum:      3,
		CollectionPath:   "",
	}
}

// defaultDataDir is where snapshots land unless configured otherwise.
func defaultDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", AppName, "data")
	}
	return filepath.Join(base, AppName, "data")
}

// Path returns the path to the configuration file, creating the config
// directory if needed.
func Path() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get user config directory: %w", err)
	}
	dir := filepath.Join(base, AppName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads the configuration from disk. A missing file is not an
// error: defaults are returned.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile loads the configuration from an explicit path, falling back
// to defaults when the file does not exist.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return config, nil
}

// Save writes the configuration to disk.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks configuration values.
func (c *Config) Validate() error {
	if c.DatabaseAgeLimit < 0 {
		return fmt.Errorf("database age limit cannot be negative: %d", c.DatabaseAgeLimit)
	}
	if c.DatabaseNum < 0 {
		return fmt.Errorf("database retention count cannot be negative: %d", c.DatabaseNum)
	}
	if c.UseDatabase && c.DatabasePath == "" {
		return fmt.Errorf("database path is required when use_database is enabled")
	}
	return nil
}
