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

package queries

import (
	"encoding/json"
	"testing"

	"github.com/beam-project/beamq/pkg/types"
)

func TestCurrentQuery(t *testing.T) {
	query := CurrentQuery("eurusd")

	if !query.Range.Equal(RangeHistorical) {
		t.Errorf("Range = %v, want historical", query.Range)
	}
	want := NewSnapshotLimit(LimitTail, 1)
	if !query.SnapshotLimit.Equal(want) {
		t.Errorf("SnapshotLimit = %v, want tail/1", query.SnapshotLimit)
	}
}

func TestRealTimeQuery(t *testing.T) {
	query := RealTimeQuery("eurusd")

	if !query.Range.Equal(RangeRealTime) {
		t.Errorf("Range = %v, want real time", query.Range)
	}
	if !query.SnapshotLimit.Equal(SnapshotLimitUnlimited) {
		t.Errorf("SnapshotLimit = %v, want unlimited", query.SnapshotLimit)
	}
}

func TestQuery_JSONRoundTrip(t *testing.T) {
	filter, err := Greater(
		mustParameter(t, 0, types.TypeID), Constant(types.ID(10)))
	if err != nil {
		t.Fatalf("Greater() error = %v", err)
	}
	query := NewQuery("eurusd")
	query.Range = mustRange(t, SequencePoint(5), SequencePoint(50))
	query.SnapshotLimit = NewSnapshotLimit(LimitTail, 7)
	query.Filter = filter
	query.InterruptionPolicy = RecoverData

	data, err := json.Marshal(query)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var got Query[string]
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal(%s) error = %v", data, err)
	}

	if got.Index != "eurusd" {
		t.Errorf("Index = %q, want eurusd", got.Index)
	}
	if !got.Range.Equal(query.Range) {
		t.Errorf("Range = %v, want %v", got.Range, query.Range)
	}
	if !got.SnapshotLimit.Equal(query.SnapshotLimit) {
		t.Errorf("SnapshotLimit = %v, want %v",
			got.SnapshotLimit, query.SnapshotLimit)
	}
	if !EqualExpressions(got.Filter, query.Filter) {
		t.Errorf("Filter = %v, want %v", got.Filter, query.Filter)
	}
	if got.InterruptionPolicy != RecoverData {
		t.Errorf("InterruptionPolicy = %v, want recover_data",
			got.InterruptionPolicy)
	}
}

func TestQuery_JSONRoundTrip_NoFilter(t *testing.T) {
	query := NewQuery("eurusd")

	data, err := json.Marshal(query)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var got Query[string]
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.Filter != nil {
		t.Errorf("Filter = %v, want nil", got.Filter)
	}
}

func TestSequencedValue_JSONRoundTrip(t *testing.T) {
	value := NewSequencedValue(types.String("tick"), 42)

	data, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var got SequencedValue[types.Value]
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.Sequence != 42 || !got.Value.Equal(types.String("tick")) {
		t.Errorf("round trip = %v, want %v", got, value)
	}
}
