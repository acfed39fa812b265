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
	"time"
)

// Config is the complete configuration of a query node.
type Config struct {
	Store   StoreConfig   `json:"store" yaml:"store"`
	Logging LoggingConfig `json:"logging" yaml:"logging"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
}

// StoreConfig selects and tunes the data store stack.
type StoreConfig struct {
	// Backend selects the innermost store: "memory", "postgres" or
	// "redis".
	Backend string `json:"backend" yaml:"backend"`

	// BufferSize is the BufferedDataStore threshold; 0 disables the
	// buffering layer.
	BufferSize int `json:"buffer_size" yaml:"buffer_size"`

	// BlockSize is the CachedDataStore block size; 0 disables the block
	// cache layer.
	BlockSize int `json:"block_size" yaml:"block_size"`

	// SessionBlockSize is the SessionCachedDataStore window size; 0
	// disables the session cache layer.
	SessionBlockSize int `json:"session_block_size" yaml:"session_block_size"`

	// Async applies writes to the backend asynchronously.
	Async bool `json:"async" yaml:"async"`

	Postgres PostgresConfig `json:"postgres" yaml:"postgres"`
	Redis    RedisConfig    `json:"redis" yaml:"redis"`
}

// PostgresConfig contains PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	User     string `json:"user" yaml:"user"`
	Password string `json:"password" yaml:"password"`
	Database string `json:"database" yaml:"database"`
	SSLMode  string `json:"ssl_mode" yaml:"ssl_mode"`
	Table    string `json:"table" yaml:"table"`
}

// RedisConfig contains Redis connection settings.
type RedisConfig struct {
	Address   string `json:"address" yaml:"address"`
	Password  string `json:"password" yaml:"password"`
	DB        int    `json:"db" yaml:"db"`
	KeyPrefix string `json:"key_prefix" yaml:"key_prefix"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is "debug", "info", "warn" or "error".
	Level string `json:"level" yaml:"level"`

	// Backend is "structured" or "zap".
	Backend string `json:"backend" yaml:"backend"`
}

// MetricsConfig contains metrics settings.
type MetricsConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Address the metrics endpoint listens on.
	Address string `json:"address" yaml:"address"`
}

// queueTimeout bounds graceful shutdown of the stack.
const queueTimeout = 10 * time.Second

// DefaultConfig returns the default configuration: an in-memory store
// with buffering and a session cache, structured logging at info.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Backend:          "memory",
			BufferSize:       256,
			BlockSize:        1024,
			SessionBlockSize: 256,
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "postgres",
				Database: "beamq",
				SSLMode:  "disable",
				Table:    "beamq_records",
			},
			Redis: RedisConfig{
				Address:   "localhost:6379",
				KeyPrefix: "beamq",
			},
		},
		Logging: LoggingConfig{
			Level:   "info",
			Backend: "structured",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Address: ":9090",
		},
	}
}

// ShutdownTimeout returns how long shutdown may take before being
// abandoned.
func (c *Config) ShutdownTimeout() time.Duration {
	return queueTimeout
}
