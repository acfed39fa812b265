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

package main

import (
	"fmt"
	"net/http"

	"github.com/beam-project/beamq/config"
	"github.com/beam-project/beamq/observability/logging"
	"github.com/beam-project/beamq/observability/metrics"
	"github.com/beam-project/beamq/pkg/types"
	"github.com/beam-project/beamq/store"
)

// buildLogger creates the logger the configuration asks for.
func buildLogger(cfg *config.Config) (logging.Logger, error) {
	level := logging.Level(cfg.Logging.Level)
	if cfg.Logging.Backend == "zap" {
		return logging.NewZapLogger(level)
	}
	return logging.NewStructuredLogger(level), nil
}

// buildStack assembles the configured data store stack over the native
// Value payload keyed by string indexes.
func buildStack(cfg *config.Config,
	m *metrics.StoreMetrics) (store.DataStore[types.Value, string], error) {
	options := store.ValueOptions()

	var inner store.DataStore[types.Value, string]
	switch cfg.Store.Backend {
	case "postgres":
		pg := cfg.Store.Postgres
		backend, err := store.NewPostgresDataStore[types.Value, string](
			&store.PostgresConfig{
				Host:         pg.Host,
				Port:         pg.Port,
				User:         pg.User,
				Password:     pg.Password,
				Database:     pg.Database,
				SSLMode:      pg.SSLMode,
				TableName:    pg.Table,
				MaxOpenConns: 25,
				MaxIdleConns: 5,
				AutoMigrate:  true,
			}, options, store.JSONCodec[types.Value]())
		if err != nil {
			return nil, err
		}
		inner = backend
	case "redis":
		rd := cfg.Store.Redis
		redisConfig := store.DefaultRedisConfig()
		redisConfig.Address = rd.Address
		redisConfig.Password = rd.Password
		redisConfig.DB = rd.DB
		if rd.KeyPrefix != "" {
			redisConfig.KeyPrefix = rd.KeyPrefix
		}
		backend, err := store.NewRedisDataStore[types.Value, string](
			redisConfig, options, store.JSONCodec[types.Value]())
		if err != nil {
			return nil, err
		}
		inner = backend
	case "memory":
		inner = store.NewLocalDataStore[types.Value, string](options)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	if m != nil {
		inner = store.Instrument(inner, cfg.Store.Backend, m)
	}
	if cfg.Store.BlockSize > 0 {
		inner = store.NewCachedDataStore(inner, cfg.Store.BlockSize, options)
	}
	if cfg.Store.SessionBlockSize > 0 {
		inner = store.NewSessionCachedDataStore(
			inner, cfg.Store.SessionBlockSize, options)
	}
	if cfg.Store.BufferSize > 0 {
		inner = store.NewBufferedDataStore(
			inner, cfg.Store.BufferSize, options)
	}
	if cfg.Store.Async {
		inner = store.NewAsyncDataStore(inner, options)
	}
	return inner, nil
}

// serveMetrics exposes the metrics endpoint when enabled.
func serveMetrics(cfg *config.Config, m *metrics.StoreMetrics) {
	if !cfg.Metrics.Enabled {
		return
	}
	go http.ListenAndServe(cfg.Metrics.Address, m.Handler())
}
