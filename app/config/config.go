// Copyright 2024 qbee.io
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
//
// SPDX-License-Identifier: Apache-2.0

// Package config loads user-audit configuration from a TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/BurntSushi/toml"

	"go.qbee.io/useraudit/app/log"
	"go.qbee.io/useraudit/app/probe"
	"go.qbee.io/useraudit/app/report"
	"go.qbee.io/useraudit/app/rules"
)

// DefaultPath is the configuration file used when none is provided.
const DefaultPath = "/etc/user-audit/config.toml"

// Config is the complete user-audit configuration.
type Config struct {
	Probe  probe.Settings `toml:"probe"`
	Rules  rules.Tokens   `toml:"rules"`
	Output OutputConfig   `toml:"output"`
}

// OutputConfig defines presentation of results.
type OutputConfig struct {
	// Format of structured output (json or yaml).
	Format string `toml:"format"`

	// Color enables colored console output on terminals.
	Color bool `toml:"color"`

	// Workers is the number of users audited in parallel.
	Workers int `toml:"workers"`
}

// DefaultConfig returns configuration used when no configuration file exists.
func DefaultConfig() *Config {
	return &Config{
		Probe: probe.DefaultSettings(),
		Rules: rules.DefaultTokens(),
		Output: OutputConfig{
			Format:  report.FormatJSON,
			Color:   true,
			Workers: 1,
		},
	}
}

// Load reads configuration from path on top of the defaults.
// When allowMissing is set, a missing file results in the default configuration.
func Load(path string, allowMissing bool) (*Config, error) {
	config := DefaultConfig()

	metadata, err := toml.DecodeFile(path, config)
	if err != nil {
		if allowMissing && errors.Is(err, fs.ErrNotExist) {
			log.Debugf("configuration file %s not found, using defaults", path)
			return DefaultConfig(), nil
		}

		return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
	}

	for _, key := range metadata.Undecoded() {
		log.Warnf("unknown configuration key %s in %s", key, path)
	}

	if err = config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return config, nil
}

// Validate checks that configured values are usable.
func (config *Config) Validate() error {
	if err := report.ValidateFormat(config.Output.Format); err != nil {
		return err
	}

	if config.Output.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", config.Output.Workers)
	}

	if config.Probe.CommandTimeout < time.Millisecond {
		return fmt.Errorf("command timeout too short: %s", config.Probe.CommandTimeout)
	}

	if config.Probe.MaxWalkFiles < 1 || config.Probe.MaxFileBytes < 1 || config.Probe.MaxLogBytes < 1 {
		return errors.New("file limits must be positive")
	}

	if config.Probe.LoginLimit < 0 {
		return fmt.Errorf("login limit can't be negative, got %d", config.Probe.LoginLimit)
	}

	if config.Probe.JournalLines < 1 || config.Probe.AuthLogTail < 1 {
		return errors.New("authentication log limits must be positive")
	}

	return nil
}
