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
	"sort"
	"sync"
	"time"

	"github.com/beam-project/beamq/pkg/types"
	"github.com/beam-project/beamq/queries"
	"github.com/beam-project/beamq/routines"
)

// SessionCachedDataStore keeps a rolling window of each index's most
// recent writes, optimized for read-the-tail workloads. Queries that the
// window can answer authoritatively are served from memory; everything
// else delegates to the inner store.
type SessionCachedDataStore[T any, I comparable] struct {
	inner     DataStore[T, I]
	options   Options[T]
	blockSize int

	mu      sync.Mutex
	entries map[I]*sessionEntry[T, I]
	state   *routines.OpenState
}

// NewSessionCachedDataStore wraps inner with a tail cache holding about
// blockSize records per index.
func NewSessionCachedDataStore[T any, I comparable](inner DataStore[T, I],
	blockSize int, options Options[T]) *SessionCachedDataStore[T, I] {
	if blockSize < 0 {
		blockSize = 0
	}
	return &SessionCachedDataStore[T, I]{
		inner:     inner,
		options:   options,
		blockSize: blockSize,
		entries:   make(map[I]*sessionEntry[T, I]),
		state:     routines.NewOpenState(),
	}
}

func (s *SessionCachedDataStore[T, I]) entry(index I) *sessionEntry[T, I] {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[index]
	if !ok {
		entry = &sessionEntry[T, I]{
			inner:     s.inner,
			options:   s.options,
			index:     index,
			blockSize: s.blockSize,
		}
		s.entries[index] = entry
	}
	return entry
}

// Load answers from the tail cache when it covers the query, otherwise
// from the inner store.
func (s *SessionCachedDataStore[T, I]) Load(ctx context.Context,
	query queries.Query[I]) ([]queries.SequencedValue[T], error) {
	if err := s.state.EnsureOpen(); err != nil {
		return nil, err
	}
	return s.entry(query.Index).load(ctx, query)
}

// Store appends to the inner store and the tail cache.
func (s *SessionCachedDataStore[T, I]) Store(
	ctx context.Context, value queries.IndexedValue[T, I]) error {
	if err := s.state.EnsureOpen(); err != nil {
		return err
	}
	if err := s.inner.Store(ctx, value); err != nil {
		return err
	}
	return s.entry(value.Index).store(ctx, value)
}

// StoreAll appends a batch to the inner store and the tail cache.
func (s *SessionCachedDataStore[T, I]) StoreAll(
	ctx context.Context, values []queries.IndexedValue[T, I]) error {
	if err := s.state.EnsureOpen(); err != nil {
		return err
	}
	if err := s.inner.StoreAll(ctx, values); err != nil {
		return err
	}
	for _, value := range values {
		if err := s.entry(value.Index).store(ctx, value); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the inner store.
func (s *SessionCachedDataStore[T, I]) Close(ctx context.Context) error {
	if s.state.SetClosing() {
		return nil
	}
	s.state.Close()
	return s.inner.Close(ctx)
}

// sessionCache is one generation of an index's tail window. The
// watermark (timestamp, sequence) is the floor below which the cache
// does not claim to represent the data.
type sessionCache[T any, I comparable] struct {
	data      *LocalDataStore[T, I]
	timestamp time.Time
	sequence  queries.Sequence
	size      int
}

// sessionEntry is the tail cache of a single index.
type sessionEntry[T any, I comparable] struct {
	inner     DataStore[T, I]
	options   Options[T]
	index     I
	blockSize int

	mu          sync.Mutex
	initialized bool
	cache       *sessionCache[T, I]
}

// initCache lazily seeds the cache with a probe for the index's latest
// record, establishing the initial watermark.
func (e *sessionEntry[T, I]) initCache(ctx context.Context) (
	*sessionCache[T, I], error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.initialized {
		return e.cache, nil
	}
	probe, err := e.inner.Load(ctx, queries.Query[I]{
		Index:         e.index,
		Range:         queries.RangeTotal,
		SnapshotLimit: queries.NewSnapshotLimit(queries.LimitTail, 1),
	})
	if err != nil {
		return nil, err
	}
	cache := &sessionCache[T, I]{
		data:      NewLocalDataStore[T, I](e.options),
		timestamp: types.NegInfTime,
		sequence:  queries.SequenceFirst,
	}
	if len(probe) > 0 {
		latest := probe[len(probe)-1]
		cache.timestamp = e.options.timestampOf(latest)
		cache.sequence = latest.Sequence
	}
	e.cache = cache
	e.initialized = true
	return cache, nil
}

// load serves the query from the cache when the query's window is known
// to lie entirely above the watermark.
func (e *sessionEntry[T, I]) load(ctx context.Context,
	query queries.Query[I]) ([]queries.SequencedValue[T], error) {
	if e.blockSize == 0 {
		return e.inner.Load(ctx, query)
	}
	cache, err := e.initCache(ctx)
	if err != nil {
		return nil, err
	}

	start := query.Range.Start()
	if start.IsSequence() {
		if start.Sequence() > cache.sequence {
			return cache.data.Load(ctx, query)
		}
	} else if start.Timestamp().After(cache.timestamp) {
		return cache.data.Load(ctx, query)
	}

	if query.SnapshotLimit.Type() == queries.LimitTail {
		e.mu.Lock()
		size := cache.size
		e.mu.Unlock()
		if query.SnapshotLimit.Size() <= size {
			end := query.Range.End()
			endAbove := end.IsSequence() && end.Sequence() > cache.sequence ||
				!end.IsSequence() && end.Timestamp().After(cache.timestamp)
			if endAbove {
				result, err := cache.data.Load(ctx, query)
				if err != nil {
					return nil, err
				}
				if len(result) >= query.SnapshotLimit.Size() {
					return result, nil
				}
			}
		}
	}
	return e.inner.Load(ctx, query)
}

// store appends to the cache, trimming the lower half and advancing the
// watermark once the window exceeds twice the block size.
func (e *sessionEntry[T, I]) store(ctx context.Context,
	value queries.IndexedValue[T, I]) error {
	if e.blockSize == 0 {
		return nil
	}
	cache, err := e.initCache(ctx)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if cache.size > 2*e.blockSize {
		data, err := cache.data.LoadAll(ctx)
		if err != nil {
			return err
		}
		sortIndexedBySequence(data)
		reference := data[e.blockSize-1].Sequenced()
		kept := data[e.blockSize:]
		replacement := &sessionCache[T, I]{
			data:      NewLocalDataStore[T, I](e.options),
			timestamp: e.options.timestampOf(reference),
			sequence:  reference.Sequence,
		}
		if err := replacement.data.StoreAll(ctx, kept); err != nil {
			return err
		}
		replacement.size = len(kept)
		e.cache = replacement
		cache = replacement
	}
	if err := cache.data.Store(ctx, value); err != nil {
		return err
	}
	cache.size++
	return nil
}

// sortIndexedBySequence orders a single index's records ascending.
func sortIndexedBySequence[T any, I comparable](
	values []queries.IndexedValue[T, I]) {
	sort.Slice(values, func(i, j int) bool {
		return values[i].Sequence < values[j].Sequence
	})
}
