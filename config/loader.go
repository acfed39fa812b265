// Copyright (C) 2025 beam-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFromFile loads configuration from a file (YAML or JSON).
// The file format is determined by the file extension (.yaml, .yml, or
// .json). Environment variables override file settings.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf(
			"unsupported config file format: %s (use .yaml, .yml, or .json)",
			ext)
	}

	if err := cfg.LoadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadEnv loads configuration from environment variables.
// Environment variables take precedence over file-based configuration.
// Format: BEAMQ_<SECTION>_<FIELD> (e.g. BEAMQ_STORE_BACKEND).
func (c *Config) LoadEnv() error {
	if v := os.Getenv("BEAMQ_STORE_BACKEND"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("BEAMQ_STORE_BUFFER_SIZE"); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			c.Store.BufferSize = size
		}
	}
	if v := os.Getenv("BEAMQ_STORE_BLOCK_SIZE"); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			c.Store.BlockSize = size
		}
	}
	if v := os.Getenv("BEAMQ_STORE_SESSION_BLOCK_SIZE"); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			c.Store.SessionBlockSize = size
		}
	}
	if v := os.Getenv("BEAMQ_STORE_ASYNC"); v != "" {
		c.Store.Async = v == "true" || v == "1"
	}

	if v := os.Getenv("BEAMQ_POSTGRES_HOST"); v != "" {
		c.Store.Postgres.Host = v
	}
	if v := os.Getenv("BEAMQ_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Store.Postgres.Port = port
		}
	}
	if v := os.Getenv("BEAMQ_POSTGRES_USER"); v != "" {
		c.Store.Postgres.User = v
	}
	if v := os.Getenv("BEAMQ_POSTGRES_PASSWORD"); v != "" {
		c.Store.Postgres.Password = v
	}
	if v := os.Getenv("BEAMQ_POSTGRES_DATABASE"); v != "" {
		c.Store.Postgres.Database = v
	}

	if v := os.Getenv("BEAMQ_REDIS_ADDRESS"); v != "" {
		c.Store.Redis.Address = v
	}
	if v := os.Getenv("BEAMQ_REDIS_PASSWORD"); v != "" {
		c.Store.Redis.Password = v
	}

	if v := os.Getenv("BEAMQ_LOGGING_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("BEAMQ_LOGGING_BACKEND"); v != "" {
		c.Logging.Backend = v
	}

	if v := os.Getenv("BEAMQ_METRICS_ENABLED"); v != "" {
		c.Metrics.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("BEAMQ_METRICS_ADDRESS"); v != "" {
		c.Metrics.Address = v
	}
	return nil
}
