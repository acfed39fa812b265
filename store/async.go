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
	"sync"

	"github.com/beam-project/beamq/pkg/errors"
	"github.com/beam-project/beamq/queries"
	"github.com/beam-project/beamq/resilience"
	"github.com/beam-project/beamq/routines"
)

// AsyncDataStore applies writes to an inner store asynchronously. A
// reserve buffer holds writes not yet visible in the inner store so
// reads see them immediately.
type AsyncDataStore[T any, I comparable] struct {
	inner   DataStore[T, I]
	options Options[T]
	retry   *resilience.RetryConfig

	mu      sync.Mutex
	reserve *LocalDataStore[T, I]
	flushed *LocalDataStore[T, I]

	state *routines.OpenState
	tasks *routines.TaskQueue

	writeErr error
}

// NewAsyncDataStore wraps inner with an asynchronous write queue.
func NewAsyncDataStore[T any, I comparable](inner DataStore[T, I],
	options Options[T]) *AsyncDataStore[T, I] {
	reserve := NewLocalDataStore[T, I](options)
	return &AsyncDataStore[T, I]{
		inner:   inner,
		options: options,
		retry:   resilience.DefaultRetryConfig(),
		reserve: reserve,
		flushed: reserve,
		state:   routines.NewOpenState(),
		tasks:   routines.NewTaskQueue(0),
	}
}

// Load merges the inner store with the reserve buffer so queued writes
// are visible immediately.
func (s *AsyncDataStore[T, I]) Load(ctx context.Context,
	query queries.Query[I]) ([]queries.SequencedValue[T], error) {
	s.mu.Lock()
	reserve := s.flushed
	s.mu.Unlock()

	var first, second DataStore[T, I]
	if query.SnapshotLimit.Type() == queries.LimitHead {
		first, second = s.inner, reserve
	} else {
		first, second = reserve, s.inner
	}

	matches, err := first.Load(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(matches) >= query.SnapshotLimit.Size() {
		return matches, nil
	}
	additional, err := second.Load(ctx, query)
	if err != nil {
		return nil, err
	}
	return applyLimit(
		mergeBySequence(additional, matches), query.SnapshotLimit), nil
}

// Store records the write in the reserve buffer and queues its
// application to the inner store.
func (s *AsyncDataStore[T, I]) Store(
	ctx context.Context, value queries.IndexedValue[T, I]) error {
	if err := s.state.EnsureOpen(); err != nil {
		return err
	}
	s.mu.Lock()
	err := s.reserve.Store(ctx, value)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.tasks.Push(func() {
		s.flush(context.Background())
	})
}

// StoreAll records a batch in the reserve buffer and queues it.
func (s *AsyncDataStore[T, I]) StoreAll(
	ctx context.Context, values []queries.IndexedValue[T, I]) error {
	if err := s.state.EnsureOpen(); err != nil {
		return err
	}
	s.mu.Lock()
	err := s.reserve.StoreAll(ctx, values)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.tasks.Push(func() {
		s.flush(context.Background())
	})
}

// flush drains the reserve buffer into the inner store.
func (s *AsyncDataStore[T, I]) flush(ctx context.Context) {
	fresh := NewLocalDataStore[T, I](s.options)
	s.mu.Lock()
	pending := s.reserve
	s.reserve = fresh
	s.mu.Unlock()

	values, err := pending.LoadAll(ctx)
	if err == nil && len(values) > 0 {
		err = resilience.Retry(ctx, s.retry, func(ctx context.Context) error {
			return s.inner.StoreAll(ctx, values)
		})
	}
	if err != nil {
		s.mu.Lock()
		s.writeErr = err
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	s.flushed = s.reserve
	s.mu.Unlock()
}

// Close flushes pending writes and closes the inner store.
func (s *AsyncDataStore[T, I]) Close(ctx context.Context) error {
	if s.state.SetClosing() {
		return nil
	}
	s.tasks.Push(func() {
		s.flush(ctx)
	})
	s.tasks.Close()
	s.state.Close()

	err := s.inner.Close(ctx)
	s.mu.Lock()
	writeErr := s.writeErr
	s.mu.Unlock()
	if err == nil && writeErr != nil {
		return errors.ErrDataStore.Wrap(writeErr)
	}
	return err
}
