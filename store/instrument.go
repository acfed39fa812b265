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

package store

import (
	"context"
	"time"

	"github.com/beam-project/beamq/observability/metrics"
	"github.com/beam-project/beamq/queries"
)

// InstrumentedDataStore wraps a DataStore with prometheus
// instrumentation.
type InstrumentedDataStore[T any, I comparable] struct {
	inner   DataStore[T, I]
	name    string
	metrics *metrics.StoreMetrics
}

// Instrument wraps a store, recording its activity under the given
// store name.
func Instrument[T any, I comparable](inner DataStore[T, I], name string,
	m *metrics.StoreMetrics) *InstrumentedDataStore[T, I] {
	return &InstrumentedDataStore[T, I]{inner: inner, name: name, metrics: m}
}

// Load records latency and errors around the inner load.
func (s *InstrumentedDataStore[T, I]) Load(ctx context.Context,
	query queries.Query[I]) ([]queries.SequencedValue[T], error) {
	started := time.Now()
	matches, err := s.inner.Load(ctx, query)
	s.metrics.LoadLatency.WithLabelValues(s.name).
		Observe(time.Since(started).Seconds())
	s.metrics.Loads.WithLabelValues(s.name).Inc()
	if err != nil {
		s.metrics.LoadErrors.WithLabelValues(s.name).Inc()
	}
	return matches, err
}

// Store records latency and errors around the inner write.
func (s *InstrumentedDataStore[T, I]) Store(
	ctx context.Context, value queries.IndexedValue[T, I]) error {
	started := time.Now()
	err := s.inner.Store(ctx, value)
	s.metrics.StoreLatency.WithLabelValues(s.name).
		Observe(time.Since(started).Seconds())
	s.metrics.Stores.WithLabelValues(s.name).Inc()
	if err != nil {
		s.metrics.StoreErrors.WithLabelValues(s.name).Inc()
	}
	return err
}

// StoreAll records latency and errors around the inner batch write.
func (s *InstrumentedDataStore[T, I]) StoreAll(
	ctx context.Context, values []queries.IndexedValue[T, I]) error {
	started := time.Now()
	err := s.inner.StoreAll(ctx, values)
	s.metrics.StoreLatency.WithLabelValues(s.name).
		Observe(time.Since(started).Seconds())
	s.metrics.Stores.WithLabelValues(s.name).Add(float64(len(values)))
	if err != nil {
		s.metrics.StoreErrors.WithLabelValues(s.name).Inc()
	}
	return err
}

// Close closes the inner store.
func (s *InstrumentedDataStore[T, I]) Close(ctx context.Context) error {
	return s.inner.Close(ctx)
}
