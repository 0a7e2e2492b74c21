// Package config loads the optional YAML configuration file. Every field
// has a default; a missing file is not an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"passvault/pkg/breach"
)

// DefaultDirName is the vault directory under the user's home.
const DefaultDirName = ".passvault"

// FileName is the configuration file looked up inside the vault directory.
const FileName = "config.yaml"

// EnvVaultDir overrides the vault directory when set.
const EnvVaultDir = "PASSVAULT_DIR"

// BreachConfig tunes the breach oracle client.
type BreachConfig struct {
	Endpoint       string `yaml:"endpoint"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	ChunkSize      int    `yaml:"chunk_size"`
}

// Config holds runtime settings. Later sources override earlier ones:
// defaults, then the YAML file, then the environment.
type Config struct {
	VaultDir   string       `yaml:"vault_dir"`
	AuditLimit int          `yaml:"audit_limit"`
	Breach     BreachConfig `yaml:"breach"`
}

// loadDefaults populates c with the built-in defaults.
func (c *Config) loadDefaults() {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	c.VaultDir = filepath.Join(home, DefaultDirName)
	c.AuditLimit = 50
	c.Breach = BreachConfig{
		Endpoint:       breach.DefaultEndpoint,
		TimeoutSeconds: int(breach.DefaultTimeout.Seconds()),
		ChunkSize:      breach.DefaultChunkSize,
	}
}

// Load builds the configuration: defaults, overlaid by the YAML file in the
// vault directory when one exists, overlaid by the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.loadDefaults()

	if dir := os.Getenv(EnvVaultDir); dir != "" {
		cfg.VaultDir = dir
	}

	path := filepath.Join(cfg.VaultDir, FileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	// The environment wins even when the file sets a directory.
	if dir := os.Getenv(EnvVaultDir); dir != "" {
		cfg.VaultDir = dir
	}

	return cfg, nil
}

// BreachOptions translates the breach section into client options, skipping
// zero values so client defaults apply.
func (c *Config) BreachOptions() []breach.Option {
	var opts []breach.Option
	if c.Breach.Endpoint != "" {
		opts = append(opts, breach.WithEndpoint(c.Breach.Endpoint))
	}
	if c.Breach.TimeoutSeconds > 0 {
		opts = append(opts, breach.WithTimeout(time.Duration(c.Breach.TimeoutSeconds)*time.Second))
	}
	if c.Breach.ChunkSize > 0 {
		opts = append(opts, breach.WithChunkSize(c.Breach.ChunkSize))
	}
	return opts
}
