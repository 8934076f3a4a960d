// Package config handles pverify.toml verifier configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the verifier configuration loaded from pverify.toml.
type Config struct {
	Verification Verification `toml:"verification"`
	Filters      Filters      `toml:"filters"`
	Report       Report       `toml:"report"`

	// Dir is the directory containing the config file (set at load time).
	Dir string `toml:"-"`
}

// Verification configures the resolution and scheduling policy.
type Verification struct {
	ExternalClassPrefixes         []string `toml:"external-class-prefixes"`
	TreatMissingDependencyAsError bool     `toml:"treat-missing-dependency-as-error"`
	Workers                       int      `toml:"workers"`

	// DependencyDirs are directories of plugin archives searched when a
	// declared dependency is not bundled with the host.
	DependencyDirs []string `toml:"dependency-dirs"`
}

// Filters configures the problem filter chains.
type Filters struct {
	// IgnoreFile points at a YAML ignore-rules file.
	IgnoreFile string `toml:"ignore-file"`

	// AllowExperimental suppresses problems about experimental APIs.
	AllowExperimental bool `toml:"allow-experimental"`
}

// Report configures result output.
type Report struct {
	// Database is a SQLite file verdicts are appended to. Empty disables
	// the sink.
	Database string `toml:"database"`
}

// Load parses a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	c.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}

	c.applyDefaults()
	return &c, nil
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Verification.Workers <= 0 {
		c.Verification.Workers = 1
	}
}

// ResolvePath resolves a possibly relative path against the config
// directory.
func (c *Config) ResolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) || c.Dir == "" {
		return path
	}
	return filepath.Join(c.Dir, path)
}
