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

	"github.com/beam-project/beamq/pkg/errors"
)

// SequencedValue pairs a payload with the Sequence that orders it within
// its index.
type SequencedValue[T any] struct {
	Value    T
	Sequence Sequence
}

// sequencedValueJSON is the wire representation of a SequencedValue.
type sequencedValueJSON struct {
	Value    json.RawMessage `json:"value"`
	Sequence Sequence        `json:"sequence"`
}

// MarshalJSON serializes the pair.
func (v SequencedValue[T]) MarshalJSON() ([]byte, error) {
	payload, err := json.Marshal(v.Value)
	if err != nil {
		return nil, errors.ErrSerialization.Wrap(err)
	}
	return json.Marshal(sequencedValueJSON{
		Value: payload, Sequence: v.Sequence})
}

// UnmarshalJSON deserializes the pair.
func (v *SequencedValue[T]) UnmarshalJSON(data []byte) error {
	var wire sequencedValueJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return errors.ErrSerialization.Wrap(err)
	}
	var payload T
	if err := json.Unmarshal(wire.Value, &payload); err != nil {
		return errors.ErrSerialization.Wrap(err)
	}
	v.Value = payload
	v.Sequence = wire.Sequence
	return nil
}

// NewSequencedValue creates a SequencedValue.
func NewSequencedValue[T any](value T, sequence Sequence) SequencedValue[T] {
	return SequencedValue[T]{Value: value, Sequence: sequence}
}

// CompareSequenced orders two sequenced values by sequence only.
func CompareSequenced[T any](a, b SequencedValue[T]) int {
	switch {
	case a.Sequence < b.Sequence:
		return -1
	case a.Sequence > b.Sequence:
		return 1
	}
	return 0
}

// IndexedValue carries a payload together with the index that partitions
// it and its store-assigned Sequence.
type IndexedValue[T any, I comparable] struct {
	Value    T
	Index    I
	Sequence Sequence
}

// NewIndexedValue creates an IndexedValue.
func NewIndexedValue[T any, I comparable](
	value T, index I, sequence Sequence) IndexedValue[T, I] {
	return IndexedValue[T, I]{Value: value, Index: index, Sequence: sequence}
}

// Sequenced strips the index, leaving the payload and its sequence.
func (v IndexedValue[T, I]) Sequenced() SequencedValue[T] {
	return SequencedValue[T]{Value: v.Value, Sequence: v.Sequence}
}
