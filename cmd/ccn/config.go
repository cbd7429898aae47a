// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/ccn/internal/errors"
	"github.com/kraklabs/ccn/pkg/analyzer"
	"github.com/kraklabs/ccn/pkg/lang"
)

const (
	defaultConfigFile = ".ccn.yaml"
	configVersion     = "1"
)

// Config represents the .ccn.yaml configuration file.
type Config struct {
	Version string        `yaml:"version"`
	Scan    ScanConfig    `yaml:"scan"`
	Metrics MetricsConfig `yaml:"metrics,omitempty"`
}

// ScanConfig contains scan settings.
type ScanConfig struct {
	CCNThreshold int      `yaml:"ccn_threshold"`
	Workers      int      `yaml:"workers"`
	MaxFileSize  int64    `yaml:"max_file_size"`       // bytes
	Sort         string   `yaml:"sort,omitempty"`      // ccn, nloc, params, name, location
	Languages    []string `yaml:"languages,omitempty"` // empty = all
	Exclude      []string `yaml:"exclude"`             // glob patterns, added to the defaults
}

// MetricsConfig contains the Prometheus endpoint settings.
type MetricsConfig struct {
	Addr string `yaml:"addr,omitempty"` // e.g. ":9090", empty = disabled
}

// DefaultConfig returns the configuration used when no .ccn.yaml exists.
func DefaultConfig() *Config {
	defaults := analyzer.DefaultConfig()
	return &Config{
		Version: configVersion,
		Scan: ScanConfig{
			CCNThreshold: defaults.CCNThreshold,
			Workers:      defaults.Workers,
			MaxFileSize:  defaults.MaxFileSizeBytes,
			Exclude:      []string{},
		},
		Metrics: MetricsConfig{
			Addr: getEnv("CCN_METRICS_ADDR", ""),
		},
	}
}

// LoadConfig loads configuration from configPath, CCN_CONFIG_PATH or the
// nearest .ccn.yaml in the current or a parent directory. Without any of
// them the defaults are used. Environment variables override the result.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = os.Getenv("CCN_CONFIG_PATH")
	}
	if configPath == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, errors.NewInternalError(
				"Cannot access working directory",
				"Failed to determine current directory path",
				"Check system permissions and try again",
				err,
			)
		}
		found, ok := findConfigFile(cwd)
		if !ok {
			cfg := DefaultConfig()
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		configPath = found
	}

	data, err := os.ReadFile(configPath) //nolint:gosec // G304: path comes from the user or discovery
	if err != nil {
		return nil, errors.NewConfigError(
			"Cannot read configuration file",
			fmt.Sprintf("Failed to read %s", configPath),
			"Check the path given with --config or CCN_CONFIG_PATH, or run 'ccn init'",
			err,
		)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigError(
			"Invalid configuration format",
			"YAML parsing failed - the config file contains syntax errors",
			fmt.Sprintf("Edit %s to fix syntax errors, or run 'ccn init --force' to recreate", configPath),
			err,
		)
	}

	if cfg.Version != configVersion {
		return nil, errors.NewConfigError(
			"Unsupported configuration version",
			fmt.Sprintf("Config version '%s' is not supported (expected '%s')", cfg.Version, configVersion),
			"Run 'ccn init --force' to regenerate the configuration file",
			nil,
		)
	}

	cfg.applyEnvOverrides()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Scan.CCNThreshold < 1 {
		return errors.NewConfigError(
			"Invalid CCN threshold",
			fmt.Sprintf("ccn_threshold must be at least 1, got %d", c.Scan.CCNThreshold),
			"Set scan.ccn_threshold in .ccn.yaml or CCN_THRESHOLD",
			nil,
		)
	}
	if _, ok := analyzer.ParseSortKey(c.Scan.Sort); !ok {
		return errors.NewConfigError(
			"Invalid sort key",
			fmt.Sprintf("Unknown sort key '%s'", c.Scan.Sort),
			"Use one of: ccn, nloc, params, name, location",
			nil,
		)
	}
	for _, name := range c.Scan.Languages {
		if _, ok := lang.ForName(name); !ok {
			return errors.NewConfigError(
				"Unknown language",
				fmt.Sprintf("Language '%s' is not supported", name),
				"Run 'ccn languages' to list supported languages",
				nil,
			)
		}
	}
	return nil
}

// SaveConfig writes the configuration to configPath as YAML.
func SaveConfig(cfg *Config, configPath string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.NewInternalError(
			"Cannot encode configuration",
			"YAML marshaling failed unexpectedly",
			"This is a bug. Please report it with your configuration details",
			err,
		)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return errors.NewPermissionError(
			"Cannot write configuration file",
			fmt.Sprintf("Permission denied writing to %s", configPath),
			"Check file permissions and ensure sufficient disk space",
			err,
		)
	}
	return nil
}

// ConfigPath returns the path to the config file in the given directory.
func ConfigPath(dir string) string {
	return filepath.Join(dir, defaultConfigFile)
}

// findConfigFile searches for .ccn.yaml in dir and its parents.
func findConfigFile(dir string) (string, bool) {
	for {
		configPath := ConfigPath(dir)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// applyEnvOverrides applies environment variable overrides. Values that do
// not parse are ignored.
//
// Supported environment variables:
//   - CCN_THRESHOLD: CCN threshold
//   - CCN_WORKERS: number of parallel workers
//   - CCN_LANGUAGES: comma-separated language names
//   - CCN_METRICS_ADDR: Prometheus listen address
func (c *Config) applyEnvOverrides() {
	if n, ok := getEnvInt("CCN_THRESHOLD"); ok {
		c.Scan.CCNThreshold = n
	}
	if n, ok := getEnvInt("CCN_WORKERS"); ok {
		c.Scan.Workers = n
	}
	if langs := os.Getenv("CCN_LANGUAGES"); langs != "" {
		c.Scan.Languages = splitList(langs)
	}
	if addr := os.Getenv("CCN_METRICS_ADDR"); addr != "" {
		c.Metrics.Addr = addr
	}
}

// analyzerConfig converts the file configuration. User excludes are added to
// the default ones.
func (c *Config) analyzerConfig() analyzer.Config {
	cfg := analyzer.DefaultConfig()
	cfg.CCNThreshold = c.Scan.CCNThreshold
	if c.Scan.Workers > 0 {
		cfg.Workers = c.Scan.Workers
	}
	cfg.MaxFileSizeBytes = c.Scan.MaxFileSize
	cfg.Languages = c.Scan.Languages
	cfg.ExcludeGlobs = append(cfg.ExcludeGlobs, c.Scan.Exclude...)
	return cfg
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string) (int, bool) {
	value := os.Getenv(key)
	if value == "" {
		return 0, false
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return n, true
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
