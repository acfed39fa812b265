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

	"github.com/beam-project/beamq/eval"
	"github.com/beam-project/beamq/pkg/types"
	"github.com/beam-project/beamq/queries"
)

// DataStore persists sequenced, indexed records and answers queries over
// them. Implementations preserve three invariants: sequences are strictly
// increasing per index, loads never return records outside the resolved
// range, and loads honor the snapshot limit exactly.
type DataStore[T any, I comparable] interface {
	// Load returns the records matching the query, ordered by ascending
	// sequence. An empty result is not an error.
	Load(ctx context.Context, query queries.Query[I]) (
		[]queries.SequencedValue[T], error)

	// Store persists a single record. The caller assigns the sequence.
	Store(ctx context.Context, value queries.IndexedValue[T, I]) error

	// StoreAll atomically persists a batch of records.
	StoreAll(ctx context.Context, values []queries.IndexedValue[T, I]) error

	// Close releases the store. Wrappers cascade the close to their
	// inner store after flushing pending writes.
	Close(ctx context.Context) error
}

// Options adapts a payload type for querying.
type Options[T any] struct {
	// Value converts a payload into the native value bound to filter
	// parameter 0. When nil, filters always match.
	Value func(payload T) types.Value

	// Timestamp extracts a payload's event time, used to resolve
	// timestamp range endpoints. When nil, the encoded sequence
	// timestamp is used instead.
	Timestamp func(payload T) time.Time

	// Accessors compiles member access expressions in filters.
	Accessors *eval.AccessorRegistry
}

// ValueOptions adapts stores whose payload is the native Value type.
func ValueOptions() Options[types.Value] {
	return Options[types.Value]{
		Value: func(payload types.Value) types.Value { return payload },
		Timestamp: func(payload types.Value) time.Time {
			return payload.AsTimestamp()
		},
	}
}

// CompileFilter compiles a query's filter into a payload predicate.
func (o Options[T]) CompileFilter(expression queries.Expression) (
	func(T) bool, error) {
	if expression == nil || o.Value == nil {
		return func(T) bool { return true }, nil
	}
	translator := eval.NewTranslator(eval.WithAccessors(o.Accessors))
	filter, err := eval.NewFilterWith(translator, expression)
	if err != nil {
		return nil, err
	}
	toValue := o.Value
	return func(payload T) bool {
		return filter(toValue(payload))
	}, nil
}

// timestampOf extracts a record's event time, falling back to the
// sequence encoding.
func (o Options[T]) timestampOf(value queries.SequencedValue[T]) time.Time {
	if o.Timestamp != nil {
		return o.Timestamp(value.Value)
	}
	return queries.DecodeTimestamp(value.Sequence)
}

// applyLimit truncates matches per the shared snapshot limit rule: head
// keeps the lowest sequences, tail the highest. The input and output are
// ordered by ascending sequence.
func applyLimit[T any](matches []queries.SequencedValue[T],
	limit queries.SnapshotLimit) []queries.SequencedValue[T] {
	if limit.IsNone() {
		return nil
	}
	if limit.IsUnlimited() || len(matches) <= limit.Size() {
		return matches
	}
	if limit.Type() == queries.LimitHead {
		return matches[:limit.Size()]
	}
	return matches[len(matches)-limit.Size():]
}

// mergeBySequence merges two sequence-ascending slices into one, keeping
// a single copy when a sequence appears in both. Overlapping entries are
// expected to carry equal payloads; either copy may survive.
func mergeBySequence[T any](a, b []queries.SequencedValue[T]) (
	[]queries.SequencedValue[T]) {
	merged := make([]queries.SequencedValue[T], 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Sequence < b[j].Sequence:
			merged = append(merged, a[i])
			i++
		case a[i].Sequence > b[j].Sequence:
			merged = append(merged, b[j])
			j++
		default:
			merged = append(merged, a[i])
			i++
			j++
		}
	}
	merged = append(merged, a[i:]...)
	merged = append(merged, b[j:]...)
	return merged
}
