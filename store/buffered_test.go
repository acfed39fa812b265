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
	"testing"

	"github.com/beam-project/beamq/pkg/errors"
	"github.com/beam-project/beamq/pkg/types"
	"github.com/beam-project/beamq/queries"
)

func TestBufferedDataStore_ImmediateVisibility(t *testing.T) {
	inner := NewLocalDataStore[types.Value, string](ValueOptions())
	buffered := NewBufferedDataStore[types.Value, string](
		inner, 3, ValueOptions())

	for i := 1; i <= 5; i++ {
		err := buffered.Store(context.Background(), queries.NewIndexedValue(
			types.ID(uint64(i)), "B", queries.Sequence(i)))
		if err != nil {
			t.Fatalf("Store(%d) error = %v", i, err)
		}
	}

	// All five records are visible immediately, including those still
	// sitting in the buffer.
	got := sequencesOf(loadQuery(t, buffered, queries.NewQuery("B")))
	if !equalSequences(got, 1, 2, 3, 4, 5) {
		t.Errorf("load = %v, want 1..5", got)
	}
	if err := buffered.Close(context.Background()); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func TestBufferedDataStore_HeadAndTailLimits(t *testing.T) {
	inner := NewLocalDataStore[types.Value, string](ValueOptions())
	buffered := NewBufferedDataStore[types.Value, string](
		inner, 2, ValueOptions())

	for i := 1; i <= 6; i++ {
		if err := buffered.Store(context.Background(),
			queries.NewIndexedValue(
				types.ID(uint64(i)), "B", queries.Sequence(i))); err != nil {
			t.Fatalf("Store(%d) error = %v", i, err)
		}
	}

	head := queries.NewQuery("B")
	head.SnapshotLimit = queries.NewSnapshotLimit(queries.LimitHead, 3)
	if got := sequencesOf(loadQuery(t, buffered, head)); !equalSequences(got, 1, 2, 3) {
		t.Errorf("head load = %v, want [1 2 3]", got)
	}

	tail := queries.NewQuery("B")
	tail.SnapshotLimit = queries.NewSnapshotLimit(queries.LimitTail, 3)
	if got := sequencesOf(loadQuery(t, buffered, tail)); !equalSequences(got, 4, 5, 6) {
		t.Errorf("tail load = %v, want [4 5 6]", got)
	}
	buffered.Close(context.Background())
}

func TestBufferedDataStore_CloseFlushes(t *testing.T) {
	inner := NewLocalDataStore[types.Value, string](ValueOptions())
	buffered := NewBufferedDataStore[types.Value, string](
		inner, 100, ValueOptions())

	for i := 1; i <= 5; i++ {
		if err := buffered.Store(context.Background(),
			queries.NewIndexedValue(
				types.ID(uint64(i)), "B", queries.Sequence(i))); err != nil {
			t.Fatalf("Store(%d) error = %v", i, err)
		}
	}
	if err := buffered.Close(context.Background()); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Everything reached the (now closed) inner store before it closed;
	// clearing its closed flag lets the test load the inner store's data
	// directly.
	if !inner.closed {
		t.Error("inner store should be closed")
	}
	inner.closed = false
	got := sequencesOf(loadQuery(t, inner, queries.NewQuery("B")))
	if !equalSequences(got, 1, 2, 3, 4, 5) {
		t.Errorf("inner contents after close = %v, want 1..5", got)
	}
}

func TestBufferedDataStore_StoreAfterClose(t *testing.T) {
	inner := NewLocalDataStore[types.Value, string](ValueOptions())
	buffered := NewBufferedDataStore[types.Value, string](
		inner, 2, ValueOptions())
	buffered.Close(context.Background())

	err := buffered.Store(context.Background(),
		queries.NewIndexedValue(types.ID(1), "B", 1))
	if !errors.IsNotConnected(err) {
		t.Errorf("Store() after close error = %v, want not connected", err)
	}
}

func TestBufferedDataStore_Transparency(t *testing.T) {
	// The same writes against a plain local store and a buffered stack
	// must produce identical loads for identical queries.
	reference := NewLocalDataStore[types.Value, string](ValueOptions())
	inner := NewLocalDataStore[types.Value, string](ValueOptions())
	buffered := NewBufferedDataStore[types.Value, string](
		inner, 3, ValueOptions())

	for i := 1; i <= 10; i++ {
		value := queries.NewIndexedValue(
			types.ID(uint64(i)), "B", queries.Sequence(i))
		if err := reference.Store(context.Background(), value); err != nil {
			t.Fatalf("reference Store() error = %v", err)
		}
		if err := buffered.Store(context.Background(), value); err != nil {
			t.Fatalf("buffered Store() error = %v", err)
		}
	}

	tests := []queries.Query[string]{
		queries.NewQuery("B"),
		func() queries.Query[string] {
			q := queries.NewQuery("B")
			q.Range = rangeOf(t, 3, 8)
			q.SnapshotLimit = queries.NewSnapshotLimit(queries.LimitHead, 4)
			return q
		}(),
		func() queries.Query[string] {
			q := queries.NewQuery("B")
			q.Range = rangeOf(t, 2, 9)
			q.SnapshotLimit = queries.NewSnapshotLimit(queries.LimitTail, 3)
			return q
		}(),
	}
	for _, query := range tests {
		want := sequencesOf(loadQuery(t, reference, query))
		got := sequencesOf(loadQuery(t, buffered, query))
		if !equalSequences(got, want...) {
			t.Errorf("query %v: buffered = %v, reference = %v",
				query, got, want)
		}
	}
	buffered.Close(context.Background())
}
