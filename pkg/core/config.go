// pkg/core/config.go
package core

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds shellpin configuration
type Config struct {
	CacheURL       string `yaml:"cache_url"`       // Binary cache for catalog packages
	StoreRoot      string `yaml:"store_root"`      // Root of the local store and profiles
	CatalogURL     string `yaml:"catalog_url"`     // Git repository with catalog metadata
	HydraURL       string `yaml:"hydra_url"`       // Build farm queried when locking
	TimeoutSeconds int    `yaml:"timeout_seconds"` // Timeout for network operations
	Debug          bool   `yaml:"debug"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		CacheURL:       "https://cache.nixos.org",
		StoreRoot:      defaultStoreRoot(),
		CatalogURL:     "https://github.com/shellpin/catalog",
		HydraURL:       "https://hydra.nixos.org",
		TimeoutSeconds: 120,
		Debug:          false,
	}
}

// Timeout returns the configured network timeout as a duration
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 2 * time.Minute
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LoadConfig loads configuration from file, falling back to defaults
// when no file exists
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return DefaultConfig(), nil
		}
		path = filepath.Join(home, ".config", "shellpin", "config.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to file
func SaveConfig(cfg *Config, path string) error {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		path = filepath.Join(home, ".config", "shellpin", "config.yaml")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// NewLogger returns the logger for the given debug setting: stdout with
// a prefix when debugging, discard otherwise
func NewLogger(debug bool) *log.Logger {
	if debug {
		return log.New(os.Stdout, "[DEBUG] ", log.LstdFlags)
	}
	return log.New(io.Discard, "", 0)
}

func defaultStoreRoot() string {
	if path := os.Getenv("SHELLPIN_ROOT"); path != "" {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "shellpin")
	}

	return filepath.Join(home, ".shellpin")
}
