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

// BufferedDataStore buffers writes to an inner store. Writes accumulate
// in an in-memory buffer; when the buffer reaches its threshold it is
// swapped out and pushed to the inner store on a background task queue.
// Reads merge the inner store with buffered-but-unflushed records, so a
// load issued immediately after a store sees the record.
type BufferedDataStore[T any, I comparable] struct {
	inner      DataStore[T, I]
	options    Options[T]
	bufferSize int
	retry      *resilience.RetryConfig

	mu      sync.Mutex // protects the buffer/flushed slots
	count   int
	buffer  *LocalDataStore[T, I]
	flushed *LocalDataStore[T, I]

	state *routines.OpenState
	tasks *routines.TaskQueue

	writeErr  error
	writeErrs chan error
}

// NewBufferedDataStore wraps inner with a write buffer holding up to
// bufferSize records.
func NewBufferedDataStore[T any, I comparable](inner DataStore[T, I],
	bufferSize int, options Options[T]) *BufferedDataStore[T, I] {
	if bufferSize < 1 {
		bufferSize = 1
	}
	buffer := NewLocalDataStore[T, I](options)
	s := &BufferedDataStore[T, I]{
		inner:      inner,
		options:    options,
		bufferSize: bufferSize,
		retry:      resilience.DefaultRetryConfig(),
		buffer:     buffer,
		flushed:    buffer,
		state:      routines.NewOpenState(),
		tasks:      routines.NewTaskQueue(0),
	}
	return s
}

// Load answers the query from the inner store and the flushed buffer.
// The snapshot limit's tag selects which side is consulted first; the
// other side is only read when the first comes up short.
func (s *BufferedDataStore[T, I]) Load(ctx context.Context,
	query queries.Query[I]) ([]queries.SequencedValue[T], error) {
	s.mu.Lock()
	buffer := s.flushed
	s.mu.Unlock()

	var first, second DataStore[T, I]
	if query.SnapshotLimit.Type() == queries.LimitHead {
		first, second = s.inner, buffer
	} else {
		first, second = buffer, s.inner
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
	merged := mergeBySequence(additional, matches)
	return applyLimit(merged, query.SnapshotLimit), nil
}

// Store appends the record to the buffer, scheduling a flush when the
// buffer reaches its threshold.
func (s *BufferedDataStore[T, I]) Store(
	ctx context.Context, value queries.IndexedValue[T, I]) error {
	if err := s.state.EnsureOpen(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.buffer.Store(ctx, value); err != nil {
		return err
	}
	s.count++
	return s.testFlush()
}

// StoreAll appends a batch to the buffer.
func (s *BufferedDataStore[T, I]) StoreAll(
	ctx context.Context, values []queries.IndexedValue[T, I]) error {
	if err := s.state.EnsureOpen(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.buffer.StoreAll(ctx, values); err != nil {
		return err
	}
	s.count += len(values)
	return s.testFlush()
}

// testFlush assumes the slot lock is held.
func (s *BufferedDataStore[T, I]) testFlush() error {
	if s.count < s.bufferSize {
		return nil
	}
	s.count = 0
	return s.tasks.Push(func() {
		s.flush(context.Background())
	})
}

// flush swaps the buffer for a fresh one, pushes the old buffer's
// contents to the inner store and publishes the swap to readers.
func (s *BufferedDataStore[T, I]) flush(ctx context.Context) {
	fresh := NewLocalDataStore[T, I](s.options)
	s.mu.Lock()
	pending := s.buffer
	s.buffer = fresh
	s.mu.Unlock()

	values, err := pending.LoadAll(ctx)
	if err == nil && len(values) > 0 {
		err = resilience.Retry(ctx, s.retry, func(ctx context.Context) error {
			return s.inner.StoreAll(ctx, values)
		})
	}
	if err != nil {
		s.reportWriteError(err)
		return
	}

	s.mu.Lock()
	s.flushed = s.buffer
	s.mu.Unlock()
}

// WriteStatus returns a channel reporting asynchronous write failures.
// A failed flush is surfaced here after its bounded retries run out.
func (s *BufferedDataStore[T, I]) WriteStatus() <-chan error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErrs == nil {
		s.writeErrs = make(chan error, 16)
	}
	return s.writeErrs
}

func (s *BufferedDataStore[T, I]) reportWriteError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
	if s.writeErrs != nil {
		select {
		case s.writeErrs <- err:
		default:
		}
	}
}

// Close flushes pending writes synchronously, closes the task queue and
// then closes the inner store.
func (s *BufferedDataStore[T, I]) Close(ctx context.Context) error {
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
