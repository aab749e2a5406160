// Package config holds the engine configuration.
//
// Configuration is optional: a zero Config after setDefaults behaves like
// Default(). When present it lives in termcore.yaml:
//
//	equality_limit: 128
//	check_fixpoint: true
//	log_level: debug
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level termcore.yaml configuration.
type Config struct {
	// EqualityLimit is the recursion budget handed to the equality oracle
	// by convenience entry points. Must be positive.
	EqualityLimit int `yaml:"equality_limit,omitempty"`

	// CheckFixpoint makes the reducer re-reduce every result and report a
	// mismatch as an internal defect. Intended for tests and debugging.
	CheckFixpoint bool `yaml:"check_fixpoint,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// LoadConfig reads and parses a termcore.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses termcore.yaml content from bytes.
// The path argument is used only for error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.setDefaults()
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FindConfig searches for termcore.yaml starting from dir and walking up
// to parent directories.
// Returns the path to the config file, or empty string and nil error if not found.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return "", nil
		}
		dir = parent
	}
}

// validate checks the configuration for semantic errors.
func (c *Config) validate(path string) error {
	if c.EqualityLimit < 0 {
		return fmt.Errorf("%s: equality_limit must be positive, got %d", path, c.EqualityLimit)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%s: unknown log_level %q", path, c.LogLevel)
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.EqualityLimit == 0 {
		c.EqualityLimit = DefaultEqualityLimit
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}
