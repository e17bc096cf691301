// Package config loads shacheck settings from defaults and an optional YAML
// file. Command-line flags are applied on top by the cli package.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"shacheck/internal/logging"
)

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Config holds every tunable setting.
type Config struct {
	// Oracles names the cross-check oracles used by `check`.
	Oracles []string `yaml:"oracles"`
	// OpenSSLPath is the openssl binary; empty means look it up on PATH.
	OpenSSLPath string `yaml:"openssl_path"`
	LogLevel    string `yaml:"log_level"`
	// Jobs bounds how many files `hash` processes concurrently.
	Jobs   int    `yaml:"jobs"`
	Output string `yaml:"output"`
	// CheckpointDir enables resumable hashing of files when set.
	CheckpointDir string `yaml:"checkpoint_dir"`
	// CheckpointInterval is the number of bytes hashed between checkpoints.
	CheckpointInterval int64 `yaml:"checkpoint_interval"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Oracles:  []string{"stdlib", "openssl"},
		LogLevel: "warn",
		Jobs:     4,
		Output:   OutputText,

		CheckpointInterval: 64 << 20,
	}
}

// Load returns Default overlaid with the YAML file at path. An empty path
// returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field ranges and enumerations.
func (c Config) Validate() error {
	if c.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1, got %d", c.Jobs)
	}
	if c.CheckpointInterval < 1 {
		return fmt.Errorf("checkpoint_interval must be positive, got %d", c.CheckpointInterval)
	}
	switch strings.ToLower(c.Output) {
	case OutputText, OutputJSON:
	default:
		return fmt.Errorf("output must be %q or %q, got %q", OutputText, OutputJSON, c.Output)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}
