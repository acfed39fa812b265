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

	"github.com/beam-project/beamq/pkg/errors"
	"github.com/beam-project/beamq/queries"
)

// LocalDataStore is the canonical in-memory store. For each index it
// keeps a sequence-ascending vector of records under one mutex.
type LocalDataStore[T any, I comparable] struct {
	options Options[T]
	mu      sync.Mutex
	entries map[I][]queries.SequencedValue[T]
	closed  bool
}

// NewLocalDataStore creates an empty LocalDataStore.
func NewLocalDataStore[T any, I comparable](
	options Options[T]) *LocalDataStore[T, I] {
	return &LocalDataStore[T, I]{
		options: options,
		entries: make(map[I][]queries.SequencedValue[T]),
	}
}

// Store appends a record to its index. The sequence must be strictly
// greater than the index's last stored sequence.
func (s *LocalDataStore[T, I]) Store(
	ctx context.Context, value queries.IndexedValue[T, I]) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.ErrNotConnected
	}
	return s.append(value)
}

// StoreAll atomically appends a batch of records. No record is stored
// unless every record passes the ordering check.
func (s *LocalDataStore[T, I]) StoreAll(
	ctx context.Context, values []queries.IndexedValue[T, I]) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.ErrNotConnected
	}

	last := make(map[I]queries.Sequence)
	for _, value := range values {
		floor, ok := last[value.Index]
		if !ok {
			floor = s.lastSequence(value.Index)
		}
		if value.Sequence == queries.SequenceFirst ||
			value.Sequence <= floor {
			return s.orderError(value)
		}
		last[value.Index] = value.Sequence
	}
	for _, value := range values {
		if err := s.append(value); err != nil {
			return err
		}
	}
	return nil
}

func (s *LocalDataStore[T, I]) orderError(
	value queries.IndexedValue[T, I]) error {
	return errors.ErrSequenceOrder.
		WithDetail("index", value.Index).
		WithDetail("sequence", value.Sequence.String())
}

// lastSequence returns the highest stored sequence for an index, or
// SequenceFirst when the index is empty.
func (s *LocalDataStore[T, I]) lastSequence(index I) queries.Sequence {
	entry := s.entries[index]
	if len(entry) == 0 {
		return queries.SequenceFirst
	}
	return entry[len(entry)-1].Sequence
}

// append assumes the lock is held.
func (s *LocalDataStore[T, I]) append(value queries.IndexedValue[T, I]) error {
	if value.Sequence == queries.SequenceFirst ||
		value.Sequence <= s.lastSequence(value.Index) {
		return s.orderError(value)
	}
	s.entries[value.Index] = append(s.entries[value.Index], value.Sequenced())
	return nil
}

// Load answers a query from the index's vector: the range is resolved to
// sequences, the filter applied, and the snapshot limit enforced. The
// result is ordered by ascending sequence regardless of the limit's tag.
func (s *LocalDataStore[T, I]) Load(ctx context.Context,
	query queries.Query[I]) ([]queries.SequencedValue[T], error) {
	filter, err := s.options.CompileFilter(query.Filter)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errors.ErrNotConnected
	}

	if query.Range.IsEmpty() || query.SnapshotLimit.IsNone() {
		return nil, nil
	}
	entry := s.entries[query.Index]
	start, end, empty := s.resolveRange(entry, query.Range)
	if empty || start > end {
		return nil, nil
	}

	lo := sort.Search(len(entry), func(i int) bool {
		return entry[i].Sequence >= start
	})
	hi := sort.Search(len(entry), func(i int) bool {
		return entry[i].Sequence > end
	})

	var matches []queries.SequencedValue[T]
	if query.SnapshotLimit.Type() == queries.LimitTail &&
		!query.SnapshotLimit.IsUnlimited() {
		// Scan backwards so a tail limit stops early, then restore
		// ascending order.
		for i := hi - 1; i >= lo; i-- {
			if filter(entry[i].Value) {
				matches = append(matches, entry[i])
				if len(matches) == query.SnapshotLimit.Size() {
					break
				}
			}
		}
		for i, j := 0, len(matches)-1; i < j; i, j = i+1, j-1 {
			matches[i], matches[j] = matches[j], matches[i]
		}
		return matches, nil
	}

	for i := lo; i < hi; i++ {
		if filter(entry[i].Value) {
			matches = append(matches, entry[i])
			if !query.SnapshotLimit.IsUnlimited() &&
				len(matches) == query.SnapshotLimit.Size() {
				break
			}
		}
	}
	return matches, nil
}

// resolveRange maps the query range onto sequence bounds over the
// index's vector. Timestamp endpoints resolve by binary search on the
// record timestamps; an endpoint falling outside the data collapses the
// range to empty.
func (s *LocalDataStore[T, I]) resolveRange(
	entry []queries.SequencedValue[T], r queries.Range) (
	start, end queries.Sequence, empty bool) {
	startPoint, endPoint := r.Start(), r.End()
	if startPoint.IsSequence() {
		start = startPoint.Sequence()
	} else {
		i := sort.Search(len(entry), func(i int) bool {
			return !s.options.timestampOf(entry[i]).
				Before(startPoint.Timestamp())
		})
		if i == len(entry) {
			return 0, 0, true
		}
		start = entry[i].Sequence
	}
	if endPoint.IsSequence() {
		end = endPoint.Sequence()
	} else {
		i := sort.Search(len(entry), func(i int) bool {
			return s.options.timestampOf(entry[i]).
				After(endPoint.Timestamp())
		})
		if i == 0 {
			return 0, 0, true
		}
		end = entry[i-1].Sequence
	}
	return start, end, false
}

// LoadAll returns every stored record across all indexes. Records of one
// index stay in ascending sequence order.
func (s *LocalDataStore[T, I]) LoadAll(ctx context.Context) (
	[]queries.IndexedValue[T, I], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errors.ErrNotConnected
	}

	var all []queries.IndexedValue[T, I]
	for index, entry := range s.entries {
		for _, value := range entry {
			all = append(all, queries.IndexedValue[T, I]{
				Value:    value.Value,
				Index:    index,
				Sequence: value.Sequence,
			})
		}
	}
	return all, nil
}

// Close marks the store closed; subsequent operations fail.
func (s *LocalDataStore[T, I]) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
