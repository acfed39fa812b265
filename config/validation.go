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
	"fmt"
)

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "memory", "postgres", "redis":
	default:
		return fmt.Errorf(
			"store.backend must be memory, postgres or redis, got %q",
			c.Store.Backend)
	}
	if c.Store.BufferSize < 0 {
		return fmt.Errorf("store.buffer_size cannot be negative")
	}
	if c.Store.BlockSize < 0 {
		return fmt.Errorf("store.block_size cannot be negative")
	}
	if c.Store.SessionBlockSize < 0 {
		return fmt.Errorf("store.session_block_size cannot be negative")
	}

	if c.Store.Backend == "postgres" {
		if c.Store.Postgres.Host == "" {
			return fmt.Errorf("postgres.host is required")
		}
		if c.Store.Postgres.Database == "" {
			return fmt.Errorf("postgres.database is required")
		}
	}
	if c.Store.Backend == "redis" && c.Store.Redis.Address == "" {
		return fmt.Errorf("redis.address is required")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf(
			"logging.level must be debug, info, warn or error, got %q",
			c.Logging.Level)
	}
	switch c.Logging.Backend {
	case "structured", "zap":
	default:
		return fmt.Errorf(
			"logging.backend must be structured or zap, got %q",
			c.Logging.Backend)
	}

	if c.Metrics.Enabled && c.Metrics.Address == "" {
		return fmt.Errorf("metrics.address is required when metrics are enabled")
	}
	return nil
}
