// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the CLI configuration. The client library itself
// owns no persisted state; this file only saves typing host and settle
// flags on every invocation.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the phdlink CLI configuration.
type Config struct {
	// Host is the daemon host. Default: localhost
	Host string `yaml:"host"`

	// Port is the daemon event server port. Default: 4400
	Port int `yaml:"port"`

	// Settle holds the default settle tolerances for guide and dither
	// commands.
	Settle SettleConfig `yaml:"settle"`

	// DitherAmount is the default dither amount in pixels. Default: 3
	DitherAmount float64 `yaml:"dither_amount"`

	// Log configures structured logging.
	Log LogConfig `yaml:"log"`
}

// SettleConfig mirrors the daemon's settle parameters.
type SettleConfig struct {
	Pixels  float64 `yaml:"pixels"`
	Time    float64 `yaml:"time"`
	Timeout float64 `yaml:"timeout"`
}

// LogConfig configures logging for the CLI.
type LogConfig struct {
	// Level is the minimum log level (trace, debug, info, warn, error).
	Level string `yaml:"level"`

	// Format is the output format (json, text).
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Host: "localhost",
		Port: 4400,
		Settle: SettleConfig{
			Pixels:  1.5,
			Time:    10,
			Timeout: 60,
		},
		DitherAmount: 3,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultPath returns the default config file location under the XDG
// config directory.
func DefaultPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the configuration from path, layered over Default. A
// missing file is not an error; the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Host == "" {
		return fmt.Errorf("host must not be empty")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.Settle.Pixels <= 0 {
		return fmt.Errorf("settle.pixels must be positive")
	}
	if c.Settle.Time < 0 || c.Settle.Timeout < 0 {
		return fmt.Errorf("settle times must not be negative")
	}
	if c.DitherAmount <= 0 {
		return fmt.Errorf("dither_amount must be positive")
	}
	return nil
}
