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
	"fmt"

	"github.com/beam-project/beamq/pkg/errors"
)

// InterruptionPolicy selects what happens when a live subscription sees
// an ordering gap.
type InterruptionPolicy uint8

const (
	// BreakQuery breaks the listener's queue with a query interruption
	// error.
	BreakQuery InterruptionPolicy = iota
	// RecoverData re-issues a load for the gap, then resumes live
	// delivery.
	RecoverData
	// IgnoreContinue drops the out-of-order update and continues.
	IgnoreContinue
)

// String returns the stable wire tag for the policy.
func (p InterruptionPolicy) String() string {
	switch p {
	case RecoverData:
		return "recover_data"
	case IgnoreContinue:
		return "ignore_continue"
	}
	return "break_query"
}

// Query describes a predicate over the records of a single index,
// together with the window and limit bounding the historical snapshot.
//
// A nil Filter matches every record.
type Query[I comparable] struct {
	Index              I
	Range              Range
	SnapshotLimit      SnapshotLimit
	Filter             Expression
	InterruptionPolicy InterruptionPolicy
}

// NewQuery creates a query matching every record of an index.
func NewQuery[I comparable](index I) Query[I] {
	return Query[I]{
		Index:         index,
		Range:         RangeTotal,
		SnapshotLimit: SnapshotLimitUnlimited,
	}
}

// CurrentQuery creates a query for the latest known value of an index.
func CurrentQuery[I comparable](index I) Query[I] {
	return Query[I]{
		Index:         index,
		Range:         RangeHistorical,
		SnapshotLimit: NewSnapshotLimit(LimitTail, 1),
	}
}

// RealTimeQuery creates a query tailing live updates of an index.
func RealTimeQuery[I comparable](index I) Query[I] {
	return Query[I]{
		Index:         index,
		Range:         RangeRealTime,
		SnapshotLimit: SnapshotLimitUnlimited,
	}
}

// queryJSON is the wire representation of a Query.
type queryJSON struct {
	Index              json.RawMessage `json:"index"`
	Range              Range           `json:"range"`
	SnapshotLimit      SnapshotLimit   `json:"snapshot_limit"`
	Filter             json.RawMessage `json:"filter,omitempty"`
	InterruptionPolicy string          `json:"interruption_policy"`
}

// MarshalJSON serializes the query; the filter uses the polymorphic
// expression registry.
func (q Query[I]) MarshalJSON() ([]byte, error) {
	index, err := json.Marshal(q.Index)
	if err != nil {
		return nil, errors.ErrSerialization.Wrap(err)
	}
	var filter json.RawMessage
	if q.Filter != nil {
		filter, err = MarshalExpression(q.Filter)
		if err != nil {
			return nil, err
		}
	}
	return json.Marshal(queryJSON{
		Index:              index,
		Range:              q.Range,
		SnapshotLimit:      q.SnapshotLimit,
		Filter:             filter,
		InterruptionPolicy: q.InterruptionPolicy.String(),
	})
}

// UnmarshalJSON deserializes and re-validates a query.
func (q *Query[I]) UnmarshalJSON(data []byte) error {
	var wire queryJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return errors.ErrSerialization.Wrap(err)
	}
	var index I
	if err := json.Unmarshal(wire.Index, &index); err != nil {
		return errors.ErrSerialization.Wrap(err)
	}
	var filter Expression
	if len(wire.Filter) > 0 {
		decoded, err := UnmarshalExpression(wire.Filter)
		if err != nil {
			return err
		}
		filter = decoded
	}
	policy, err := parseInterruptionPolicy(wire.InterruptionPolicy)
	if err != nil {
		return err
	}
	*q = Query[I]{
		Index:              index,
		Range:              wire.Range,
		SnapshotLimit:      wire.SnapshotLimit,
		Filter:             filter,
		InterruptionPolicy: policy,
	}
	return nil
}

func parseInterruptionPolicy(tag string) (InterruptionPolicy, error) {
	switch tag {
	case "break_query", "":
		return BreakQuery, nil
	case "recover_data":
		return RecoverData, nil
	case "ignore_continue":
		return IgnoreContinue, nil
	}
	return 0, errors.ErrSerialization.WithDetail("policy", tag).
		WithMessage("unknown interruption policy")
}

// String renders the query.
func (q Query[I]) String() string {
	filter := "none"
	if q.Filter != nil {
		filter = q.Filter.String()
	}
	return fmt.Sprintf("query(%v, %s, %s, %s)",
		q.Index, q.Range, q.SnapshotLimit, filter)
}
