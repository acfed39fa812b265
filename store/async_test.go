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

func TestAsyncDataStore_ImmediateVisibility(t *testing.T) {
	inner := NewLocalDataStore[types.Value, string](ValueOptions())
	async := NewAsyncDataStore[types.Value, string](inner, ValueOptions())

	for i := 1; i <= 5; i++ {
		if err := async.Store(context.Background(),
			queries.NewIndexedValue(
				types.ID(uint64(i)), "A", queries.Sequence(i))); err != nil {
			t.Fatalf("Store(%d) error = %v", i, err)
		}
	}

	got := sequencesOf(loadQuery(t, async, queries.NewQuery("A")))
	if !equalSequences(got, 1, 2, 3, 4, 5) {
		t.Errorf("load = %v, want 1..5", got)
	}
	async.Close(context.Background())
}

func TestAsyncDataStore_CloseFlushes(t *testing.T) {
	inner := NewLocalDataStore[types.Value, string](ValueOptions())
	async := NewAsyncDataStore[types.Value, string](inner, ValueOptions())

	for i := 1; i <= 5; i++ {
		if err := async.Store(context.Background(),
			queries.NewIndexedValue(
				types.ID(uint64(i)), "A", queries.Sequence(i))); err != nil {
			t.Fatalf("Store(%d) error = %v", i, err)
		}
	}
	if err := async.Close(context.Background()); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	inner.closed = false
	got := sequencesOf(loadQuery(t, inner, queries.NewQuery("A")))
	if !equalSequences(got, 1, 2, 3, 4, 5) {
		t.Errorf("inner contents after close = %v, want 1..5", got)
	}
}

func TestAsyncDataStore_StoreAfterClose(t *testing.T) {
	inner := NewLocalDataStore[types.Value, string](ValueOptions())
	async := NewAsyncDataStore[types.Value, string](inner, ValueOptions())
	async.Close(context.Background())

	err := async.Store(context.Background(),
		queries.NewIndexedValue(types.ID(1), "A", 1))
	if !errors.IsNotConnected(err) {
		t.Errorf("Store() after close error = %v, want not connected", err)
	}
}

func TestAsyncDataStore_Transparency(t *testing.T) {
	reference := NewLocalDataStore[types.Value, string](ValueOptions())
	inner := NewLocalDataStore[types.Value, string](ValueOptions())
	async := NewAsyncDataStore[types.Value, string](inner, ValueOptions())

	for i := 1; i <= 8; i++ {
		value := queries.NewIndexedValue(
			types.ID(uint64(i)), "A", queries.Sequence(i))
		if err := reference.Store(context.Background(), value); err != nil {
			t.Fatalf("reference Store() error = %v", err)
		}
		if err := async.Store(context.Background(), value); err != nil {
			t.Fatalf("async Store() error = %v", err)
		}
	}

	for _, limit := range []queries.SnapshotLimit{
		queries.SnapshotLimitUnlimited,
		queries.NewSnapshotLimit(queries.LimitHead, 3),
		queries.NewSnapshotLimit(queries.LimitTail, 3),
	} {
		query := queries.NewQuery("A")
		query.SnapshotLimit = limit
		want := sequencesOf(loadQuery(t, reference, query))
		got := sequencesOf(loadQuery(t, async, query))
		if !equalSequences(got, want...) {
			t.Errorf("limit %v: async = %v, reference = %v", limit, got, want)
		}
	}
	async.Close(context.Background())
}
