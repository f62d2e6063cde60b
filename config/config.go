// SPDX-FileCopyrightText: 2023-present Datadog, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package config loads the optional kelsi defaults file. Command line flags
// always take precedence over file values.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"

	"github.com/DataDog/kelsi/ioutil/atomic"
)

// EnvConfigPath overrides the default configuration file location.
const EnvConfigPath = "KELSI_CONFIG"

// Config holds the tool defaults.
type Config struct {
	// Parallel is the default worker count. 0 runs tasks serially, a
	// negative value uses the CPU count.
	Parallel int `yaml:"parallel"`
	// Skip existing destination files instead of failing.
	Skip bool `yaml:"skip"`
	// Overwrite existing destination files instead of failing.
	Overwrite bool `yaml:"overwrite"`
	// Hidden includes dot files when walking source directories.
	Hidden bool `yaml:"hidden"`
	// Logging destination settings.
	Logging Logging `yaml:"logging"`
}

// Logging holds the log output settings.
type Logging struct {
	// Level is one of debug, info, error.
	Level string `yaml:"level"`
	// File is an optional rotating log file path.
	File string `yaml:"file"`
	// RotationSize is the size in megabytes a log file may reach before rotation.
	RotationSize int `yaml:"rotation_size"`
	// MaxBackups is the number of rotated log files kept around.
	MaxBackups int `yaml:"max_backups"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Parallel: 0,
		Logging: Logging{
			Level:        "info",
			RotationSize: 10,
			MaxBackups:   3,
		},
	}
}

// Path returns the configuration file location, honoring the KELSI_CONFIG
// environment variable.
func Path() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "kelsi", "config.yaml")
}

// Load reads the configuration file at the given path. A missing file is not
// an error and yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("unable to read configuration file %q: %w", path, err)
	}

	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("unable to decode configuration file %q: %w", path, err)
	}

	return cfg, nil
}

// WriteDefault writes the default configuration to the given path
// atomically, creating parent directories on demand.
func WriteDefault(path string) error {
	// Check arguments
	if path == "" {
		return errors.New("configuration path must not be blank")
	}

	raw, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("unable to encode default configuration: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("unable to create configuration directory: %w", err)
	}

	if err := atomic.WriteFile(path, bytes.NewReader(raw), 0o600); err != nil {
		return fmt.Errorf("unable to write configuration file %q: %w", path, err)
	}

	return nil
}
