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
	"time"

	"github.com/beam-project/beamq/pkg/errors"
	"github.com/beam-project/beamq/pkg/types"
	"github.com/beam-project/beamq/queries"
)

func seedLocal(t *testing.T, index string,
	sequences ...queries.Sequence) *LocalDataStore[types.Value, string] {
	t.Helper()
	local := NewLocalDataStore[types.Value, string](ValueOptions())
	for _, sequence := range sequences {
		err := local.Store(context.Background(), queries.NewIndexedValue(
			types.ID(uint64(sequence)), index, sequence))
		if err != nil {
			t.Fatalf("Store(%v) error = %v", sequence, err)
		}
	}
	return local
}

func sequencesOf(values []queries.SequencedValue[types.Value]) []queries.Sequence {
	result := make([]queries.Sequence, len(values))
	for i, value := range values {
		result[i] = value.Sequence
	}
	return result
}

func equalSequences(a []queries.Sequence, b ...queries.Sequence) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func loadQuery(t *testing.T, s DataStore[types.Value, string],
	query queries.Query[string]) []queries.SequencedValue[types.Value] {
	t.Helper()
	matches, err := s.Load(context.Background(), query)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return matches
}

func rangeOf(t *testing.T, start, end queries.Sequence) queries.Range {
	t.Helper()
	r, err := queries.NewSequenceRange(start, end)
	if err != nil {
		t.Fatalf("NewSequenceRange() error = %v", err)
	}
	return r
}

func TestLocalDataStore_StoreLoad(t *testing.T) {
	local := seedLocal(t, "A", 1, 2, 3, 4, 5)

	// TOTAL / UNLIMITED returns everything.
	all := loadQuery(t, local, queries.NewQuery("A"))
	if !equalSequences(sequencesOf(all), 1, 2, 3, 4, 5) {
		t.Errorf("total load = %v, want 1..5", sequencesOf(all))
	}

	// Range [2,4] HEAD 2 returns the two lowest in range.
	head := queries.NewQuery("A")
	head.Range = rangeOf(t, 2, 4)
	head.SnapshotLimit = queries.NewSnapshotLimit(queries.LimitHead, 2)
	if got := sequencesOf(loadQuery(t, local, head)); !equalSequences(got, 2, 3) {
		t.Errorf("head load = %v, want [2 3]", got)
	}

	// Range [1,5] TAIL 2 returns the two highest, ascending.
	tail := queries.NewQuery("A")
	tail.Range = rangeOf(t, 1, 5)
	tail.SnapshotLimit = queries.NewSnapshotLimit(queries.LimitTail, 2)
	if got := sequencesOf(loadQuery(t, local, tail)); !equalSequences(got, 4, 5) {
		t.Errorf("tail load = %v, want [4 5]", got)
	}
}

func TestLocalDataStore_RejectsOutOfOrder(t *testing.T) {
	local := seedLocal(t, "A", 5)

	err := local.Store(context.Background(),
		queries.NewIndexedValue(types.ID(5), "A", 5))
	if !errors.Is(err, errors.ErrSequenceOrder) {
		t.Errorf("duplicate Store() error = %v, want sequence order", err)
	}
	err = local.Store(context.Background(),
		queries.NewIndexedValue(types.ID(3), "A", 3))
	if !errors.Is(err, errors.ErrSequenceOrder) {
		t.Errorf("regressing Store() error = %v, want sequence order", err)
	}
}

func TestLocalDataStore_StoreAllAtomic(t *testing.T) {
	local := seedLocal(t, "A", 1)

	err := local.StoreAll(context.Background(),
		[]queries.IndexedValue[types.Value, string]{
			queries.NewIndexedValue(types.ID(2), "A", 2),
			queries.NewIndexedValue(types.ID(2), "A", 2),
		})
	if !errors.Is(err, errors.ErrSequenceOrder) {
		t.Fatalf("StoreAll() error = %v, want sequence order", err)
	}

	// Nothing from the failed batch may be visible.
	all := loadQuery(t, local, queries.NewQuery("A"))
	if !equalSequences(sequencesOf(all), 1) {
		t.Errorf("store contents = %v, want [1]", sequencesOf(all))
	}
}

func TestLocalDataStore_Filter(t *testing.T) {
	local := seedLocal(t, "A", 1, 2, 3, 4, 5)

	parameter, err := queries.NewParameter(0, types.TypeID)
	if err != nil {
		t.Fatalf("NewParameter() error = %v", err)
	}
	filter, err := queries.Greater(parameter, queries.Constant(types.ID(3)))
	if err != nil {
		t.Fatalf("Greater() error = %v", err)
	}
	query := queries.NewQuery("A")
	query.Filter = filter

	if got := sequencesOf(loadQuery(t, local, query)); !equalSequences(got, 4, 5) {
		t.Errorf("filtered load = %v, want [4 5]", got)
	}
}

func TestLocalDataStore_EmptyRange(t *testing.T) {
	local := seedLocal(t, "A", 1, 2, 3)

	query := queries.NewQuery("A")
	query.Range = queries.RangeEmpty
	if got := loadQuery(t, local, query); len(got) != 0 {
		t.Errorf("empty range load = %v, want none", sequencesOf(got))
	}

	query = queries.NewQuery("A")
	query.SnapshotLimit = queries.SnapshotLimitNone
	if got := loadQuery(t, local, query); len(got) != 0 {
		t.Errorf("none limit load = %v, want none", sequencesOf(got))
	}
}

func TestLocalDataStore_UnknownIndex(t *testing.T) {
	local := seedLocal(t, "A", 1)

	if got := loadQuery(t, local, queries.NewQuery("B")); len(got) != 0 {
		t.Errorf("unknown index load = %v, want none", sequencesOf(got))
	}
}

func TestLocalDataStore_TimestampEndpoints(t *testing.T) {
	options := Options[types.Value]{
		Value: func(v types.Value) types.Value { return v },
		Timestamp: func(v types.Value) time.Time {
			return v.AsTimestamp()
		},
	}
	local := NewLocalDataStore[types.Value, string](options)
	base := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
	for i := 1; i <= 5; i++ {
		err := local.Store(context.Background(), queries.NewIndexedValue(
			types.Timestamp(base.Add(time.Duration(i)*time.Minute)),
			"A", queries.Sequence(i)))
		if err != nil {
			t.Fatalf("Store() error = %v", err)
		}
	}

	query := queries.NewQuery("A")
	r, err := queries.NewRange(
		queries.TimestampPoint(base.Add(2*time.Minute)),
		queries.TimestampPoint(base.Add(4*time.Minute)))
	if err != nil {
		t.Fatalf("NewRange() error = %v", err)
	}
	query.Range = r

	if got := sequencesOf(loadQuery(t, local, query)); !equalSequences(got, 2, 3, 4) {
		t.Errorf("timestamp range load = %v, want [2 3 4]", got)
	}
}

func TestLocalDataStore_LoadAll(t *testing.T) {
	local := seedLocal(t, "A", 1, 2)
	err := local.Store(context.Background(),
		queries.NewIndexedValue(types.ID(7), "B", 7))
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	all, err := local.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("LoadAll() returned %d records, want 3", len(all))
	}
}

func TestLocalDataStore_ClosedOperations(t *testing.T) {
	local := seedLocal(t, "A", 1)
	local.Close(context.Background())

	if _, err := local.Load(context.Background(),
		queries.NewQuery("A")); !errors.IsNotConnected(err) {
		t.Errorf("Load() after close error = %v, want not connected", err)
	}
	err := local.Store(context.Background(),
		queries.NewIndexedValue(types.ID(2), "A", 2))
	if !errors.IsNotConnected(err) {
		t.Errorf("Store() after close error = %v, want not connected", err)
	}
}
