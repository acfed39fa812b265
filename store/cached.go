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
	"sync/atomic"

	"github.com/beam-project/beamq/pkg/errors"
	"github.com/beam-project/beamq/queries"
	"github.com/beam-project/beamq/routines"
)

// CachedDataStore caches an inner store in fixed-size blocks of sequence
// ordinals, one block list per index. The cache is transparent: every
// query returns exactly what the inner store would return.
type CachedDataStore[T any, I comparable] struct {
	inner     DataStore[T, I]
	options   Options[T]
	blockSize uint64

	mu      sync.Mutex
	entries map[I]*cachedEntry[T, I]
	state   *routines.OpenState
}

// NewCachedDataStore wraps inner with a block cache of blockSize
// ordinals per block.
func NewCachedDataStore[T any, I comparable](inner DataStore[T, I],
	blockSize int, options Options[T]) *CachedDataStore[T, I] {
	if blockSize < 1 {
		blockSize = 1
	}
	return &CachedDataStore[T, I]{
		inner:     inner,
		options:   options,
		blockSize: uint64(blockSize),
		entries:   make(map[I]*cachedEntry[T, I]),
		state:     routines.NewOpenState(),
	}
}

// entry finds or creates the cache entry for an index with test-and-set
// insertion.
func (s *CachedDataStore[T, I]) entry(index I) *cachedEntry[T, I] {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[index]
	if !ok {
		entry = &cachedEntry[T, I]{
			inner:     s.inner,
			options:   s.options,
			index:     index,
			blockSize: s.blockSize,
		}
		s.entries[index] = entry
	}
	return entry
}

// Load answers the query through the index's block cache.
func (s *CachedDataStore[T, I]) Load(ctx context.Context,
	query queries.Query[I]) ([]queries.SequencedValue[T], error) {
	if err := s.state.EnsureOpen(); err != nil {
		return nil, err
	}
	return s.entry(query.Index).load(ctx, query)
}

// Store passes the write through to the inner store, then caches it.
func (s *CachedDataStore[T, I]) Store(
	ctx context.Context, value queries.IndexedValue[T, I]) error {
	if err := s.state.EnsureOpen(); err != nil {
		return err
	}
	if err := s.inner.Store(ctx, value); err != nil {
		return err
	}
	return s.entry(value.Index).store(ctx, value)
}

// StoreAll passes the batch through to the inner store, then caches it.
func (s *CachedDataStore[T, I]) StoreAll(
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
func (s *CachedDataStore[T, I]) Close(ctx context.Context) error {
	if s.state.SetClosing() {
		return nil
	}
	s.state.Close()
	return s.inner.Close(ctx)
}

// cacheBlock is one block of blockSize ordinals, backed by a local
// store. Initialization follows a call-once discipline: a lock-free fast
// check and a mutex-protected slow path that may be retried on failure.
type cacheBlock[T any, I comparable] struct {
	start queries.Sequence
	data  *LocalDataStore[T, I]
	mu    sync.Mutex
	ready atomic.Bool
}

func (b *cacheBlock[T, I]) initialize(load func() error) error {
	if b.ready.Load() {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ready.Load() {
		return nil
	}
	if err := load(); err != nil {
		return err
	}
	b.ready.Store(true)
	return nil
}

// cachedEntry caches the blocks of a single index.
type cachedEntry[T any, I comparable] struct {
	inner     DataStore[T, I]
	options   Options[T]
	index     I
	blockSize uint64

	mu     sync.Mutex
	blocks []*cacheBlock[T, I]
}

// normalize aligns a sequence down to its block's first ordinal.
func (e *cachedEntry[T, I]) normalize(s queries.Sequence) queries.Sequence {
	return s - queries.Sequence(uint64(s)%e.blockSize)
}

// findBlock returns the initialized block starting at the ordinal, or
// nil when the block is missing or still initializing.
func (e *cachedEntry[T, I]) findBlock(
	start queries.Sequence) *cacheBlock[T, I] {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := sort.Search(len(e.blocks), func(i int) bool {
		return e.blocks[i].start >= start
	})
	if i == len(e.blocks) || e.blocks[i].start != start {
		return nil
	}
	if !e.blocks[i].ready.Load() {
		return nil
	}
	return e.blocks[i]
}

// loadBlock finds or creates the block starting at the ordinal and
// ensures it is initialized from the inner store.
func (e *cachedEntry[T, I]) loadBlock(ctx context.Context,
	start queries.Sequence) (*cacheBlock[T, I], error) {
	e.mu.Lock()
	i := sort.Search(len(e.blocks), func(i int) bool {
		return e.blocks[i].start >= start
	})
	var block *cacheBlock[T, I]
	if i < len(e.blocks) && e.blocks[i].start == start {
		block = e.blocks[i]
	} else {
		block = &cacheBlock[T, I]{
			start: start,
			data:  NewLocalDataStore[T, I](e.options),
		}
		e.blocks = append(e.blocks, nil)
		copy(e.blocks[i+1:], e.blocks[i:])
		e.blocks[i] = block
	}
	e.mu.Unlock()

	err := block.initialize(func() error {
		end := start + queries.Sequence(e.blockSize) - 1
		blockRange, err := queries.NewSequenceRange(start, end)
		if err != nil {
			return err
		}
		matches, err := e.inner.Load(ctx, queries.Query[I]{
			Index:         e.index,
			Range:         blockRange,
			SnapshotLimit: queries.SnapshotLimitUnlimited,
		})
		if err != nil {
			return err
		}
		for _, match := range matches {
			if err := block.data.Store(ctx, queries.IndexedValue[T, I]{
				Value:    match.Value,
				Index:    e.index,
				Sequence: match.Sequence,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return block, nil
}

// store caches a freshly written record. A missing block is initialized
// from the inner store, which already contains the record.
func (e *cachedEntry[T, I]) store(ctx context.Context,
	value queries.IndexedValue[T, I]) error {
	start := e.normalize(value.Sequence)
	if block := e.findBlock(start); block != nil {
		err := block.data.Store(ctx, value)
		if errors.Is(err, errors.ErrSequenceOrder) {
			// A concurrent initialization already pulled the record
			// from the inner store.
			return nil
		}
		return err
	}
	_, err := e.loadBlock(ctx, start)
	return err
}

// toSequence resolves timestamp endpoints with bounded probes against
// the inner store. An empty probe collapses the range to empty.
func (e *cachedEntry[T, I]) toSequence(ctx context.Context,
	r queries.Range) (start, end queries.Sequence, empty bool, err error) {
	startPoint, endPoint := r.Start(), r.End()
	if startPoint.IsSequence() {
		start = startPoint.Sequence()
	} else {
		probeRange, rangeErr := queries.NewRange(
			startPoint, queries.SequencePoint(queries.SequenceLast))
		if rangeErr != nil {
			return 0, 0, false, rangeErr
		}
		matches, probeErr := e.inner.Load(ctx, queries.Query[I]{
			Index:         e.index,
			Range:         probeRange,
			SnapshotLimit: queries.NewSnapshotLimit(queries.LimitHead, 1),
		})
		if probeErr != nil {
			return 0, 0, false, probeErr
		}
		if len(matches) == 0 {
			return 0, 0, true, nil
		}
		start = matches[0].Sequence
	}
	if endPoint.IsSequence() {
		end = endPoint.Sequence()
	} else {
		probeRange, rangeErr := queries.NewRange(
			queries.SequencePoint(queries.SequenceFirst), endPoint)
		if rangeErr != nil {
			return 0, 0, false, rangeErr
		}
		matches, probeErr := e.inner.Load(ctx, queries.Query[I]{
			Index:         e.index,
			Range:         probeRange,
			SnapshotLimit: queries.NewSnapshotLimit(queries.LimitTail, 1),
		})
		if probeErr != nil {
			return 0, 0, false, probeErr
		}
		if len(matches) == 0 {
			return 0, 0, true, nil
		}
		end = matches[0].Sequence
	}
	return start, end, false, nil
}

// load answers a query by walking blocks in the tag's direction.
func (e *cachedEntry[T, I]) load(ctx context.Context,
	query queries.Query[I]) ([]queries.SequencedValue[T], error) {
	if query.Range.IsEmpty() || query.SnapshotLimit.IsNone() {
		return nil, nil
	}
	start, end, empty, err := e.toSequence(ctx, query.Range)
	if err != nil || empty || start > end {
		return nil, err
	}
	resolved, err := queries.NewSequenceRange(start, end)
	if err != nil {
		return nil, err
	}
	sequenced := query
	sequenced.Range = resolved

	if query.SnapshotLimit.Type() == queries.LimitHead {
		return e.loadHead(ctx, sequenced,
			e.normalize(start), e.normalize(end))
	}
	return e.loadTail(ctx, sequenced, e.normalize(start), e.normalize(end))
}

// loadHead walks blocks in ascending order, shrinking the remaining
// limit as matches accumulate. A cache miss serves the remainder of the
// range from the inner store and initializes the missed block.
func (e *cachedEntry[T, I]) loadHead(ctx context.Context,
	query queries.Query[I], start, end queries.Sequence) (
	[]queries.SequencedValue[T], error) {
	var matches []queries.SequencedValue[T]
	subsetStart := query.Range.Start().Sequence()
	remaining := query.SnapshotLimit.Size()

	for ordinal := start; ; ordinal += queries.Sequence(e.blockSize) {
		subset := query
		if !query.SnapshotLimit.IsUnlimited() {
			subset.SnapshotLimit = queries.NewSnapshotLimit(
				queries.LimitHead, remaining)
		}
		subsetRange, err := queries.NewSequenceRange(
			subsetStart, query.Range.End().Sequence())
		if err != nil {
			return nil, err
		}
		subset.Range = subsetRange

		if block := e.findBlock(ordinal); block != nil {
			subsetMatches, err := block.data.Load(ctx, subset)
			if err != nil {
				return nil, err
			}
			remaining -= len(subsetMatches)
			matches = append(matches, subsetMatches...)
			if remaining <= 0 && !query.SnapshotLimit.IsUnlimited() {
				break
			}
			if ordinal == end {
				break
			}
			subsetStart = ordinal + queries.Sequence(e.blockSize)
		} else {
			subsetMatches, err := e.inner.Load(ctx, subset)
			if err != nil {
				return nil, err
			}
			matches = append(matches, subsetMatches...)
			if _, err := e.loadBlock(ctx, ordinal); err != nil {
				return nil, err
			}
			break
		}
	}
	return matches, nil
}

// loadTail walks blocks in descending order, concatenating partitions in
// reverse at the end so the result ascends by sequence.
func (e *cachedEntry[T, I]) loadTail(ctx context.Context,
	query queries.Query[I], start, end queries.Sequence) (
	[]queries.SequencedValue[T], error) {
	var partitions [][]queries.SequencedValue[T]
	subsetEnd := query.Range.End().Sequence()
	remaining := query.SnapshotLimit.Size()

	for ordinal := end; ; ordinal -= queries.Sequence(e.blockSize) {
		subset := query
		if !query.SnapshotLimit.IsUnlimited() {
			subset.SnapshotLimit = queries.NewSnapshotLimit(
				queries.LimitTail, remaining)
		}
		subsetRange, err := queries.NewSequenceRange(
			query.Range.Start().Sequence(), subsetEnd)
		if err != nil {
			return nil, err
		}
		subset.Range = subsetRange

		if block := e.findBlock(ordinal); block != nil {
			partition, err := block.data.Load(ctx, subset)
			if err != nil {
				return nil, err
			}
			partitions = append(partitions, partition)
			remaining -= len(partition)
			if remaining <= 0 && !query.SnapshotLimit.IsUnlimited() {
				break
			}
			if ordinal == start {
				break
			}
			subsetEnd = ordinal.Prev()
		} else {
			partition, err := e.inner.Load(ctx, subset)
			if err != nil {
				return nil, err
			}
			partitions = append(partitions, partition)
			if _, err := e.loadBlock(ctx, ordinal); err != nil {
				return nil, err
			}
			break
		}
	}

	if len(partitions) == 0 {
		return nil, nil
	}
	var matches []queries.SequencedValue[T]
	for i := len(partitions) - 1; i >= 0; i-- {
		matches = append(matches, partitions[i]...)
	}
	return matches, nil
}
