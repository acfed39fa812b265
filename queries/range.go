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
	"time"

	"github.com/beam-project/beamq/pkg/errors"
	"github.com/beam-project/beamq/pkg/types"
)

// RangePoint is one endpoint of a Range, either a Sequence or a
// timestamp. Timestamp endpoints are resolved to sequences at query time.
type RangePoint struct {
	sequence   Sequence
	timestamp  time.Time
	isSequence bool
}

// SequencePoint creates a sequence endpoint.
func SequencePoint(s Sequence) RangePoint {
	return RangePoint{sequence: s, isSequence: true}
}

// TimestampPoint creates a timestamp endpoint.
func TimestampPoint(t time.Time) RangePoint {
	return RangePoint{timestamp: t}
}

// IsSequence reports whether the endpoint is a sequence.
func (p RangePoint) IsSequence() bool {
	return p.isSequence
}

// Sequence returns the sequence endpoint; it is only meaningful when
// IsSequence reports true.
func (p RangePoint) Sequence() Sequence {
	return p.sequence
}

// Timestamp returns the timestamp endpoint; it is only meaningful when
// IsSequence reports false.
func (p RangePoint) Timestamp() time.Time {
	return p.timestamp
}

// Equal reports whether two endpoints are identical.
func (p RangePoint) Equal(other RangePoint) bool {
	if p.isSequence != other.isSequence {
		return false
	}
	if p.isSequence {
		return p.sequence == other.sequence
	}
	return p.timestamp.Equal(other.timestamp)
}

// String renders the endpoint.
func (p RangePoint) String() string {
	if p.isSequence {
		return p.sequence.String()
	}
	return types.FormatTimestamp(p.timestamp)
}

// rangePointJSON is the wire representation of a RangePoint.
type rangePointJSON struct {
	Sequence  *Sequence `json:"sequence,omitempty"`
	Timestamp *string   `json:"timestamp,omitempty"`
}

// MarshalJSON serializes the endpoint as a tagged object.
func (p RangePoint) MarshalJSON() ([]byte, error) {
	if p.isSequence {
		return json.Marshal(rangePointJSON{Sequence: &p.sequence})
	}
	ts := types.FormatTimestamp(p.timestamp)
	return json.Marshal(rangePointJSON{Timestamp: &ts})
}

// UnmarshalJSON deserializes a tagged endpoint.
func (p *RangePoint) UnmarshalJSON(data []byte) error {
	var wire rangePointJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return errors.ErrSerialization.Wrap(err)
	}
	switch {
	case wire.Sequence != nil:
		*p = SequencePoint(*wire.Sequence)
	case wire.Timestamp != nil:
		t, err := types.ParseTimestamp(*wire.Timestamp)
		if err != nil {
			return err
		}
		*p = TimestampPoint(t)
	default:
		return errors.ErrSerialization.WithMessage("empty range point")
	}
	return nil
}

// Range selects a contiguous window of records between two endpoints.
// Both endpoints are inclusive.
type Range struct {
	start RangePoint
	end   RangePoint
}

// Distinguished ranges.
var (
	// RangeEmpty matches no records.
	RangeEmpty = Range{
		SequencePoint(SequenceFirst), SequencePoint(SequenceFirst)}

	// RangeTotal matches every record.
	RangeTotal = Range{
		SequencePoint(SequenceFirst), SequencePoint(SequenceLast)}

	// RangeHistorical matches every historical record.
	RangeHistorical = Range{
		SequencePoint(SequenceFirst), SequencePoint(SequencePresent)}

	// RangeRealTime matches records produced after the query is issued.
	RangeRealTime = Range{
		SequencePoint(SequencePresent), SequencePoint(SequenceLast)}
)

// NewRange creates a Range. When both endpoints are sequences the start
// must not exceed the end.
func NewRange(start, end RangePoint) (Range, error) {
	if start.IsSequence() && end.IsSequence() &&
		start.Sequence() > end.Sequence() {
		return Range{}, errors.ErrInvalidInput.
			WithDetail("start", start.String()).
			WithDetail("end", end.String()).
			WithMessage("range start exceeds end")
	}
	return Range{start: start, end: end}, nil
}

// NewSequenceRange creates a Range between two sequence endpoints.
func NewSequenceRange(start, end Sequence) (Range, error) {
	return NewRange(SequencePoint(start), SequencePoint(end))
}

// Start returns the starting endpoint.
func (r Range) Start() RangePoint {
	return r.start
}

// End returns the ending endpoint.
func (r Range) End() RangePoint {
	return r.end
}

// IsEmpty reports whether the range can never match a record.
func (r Range) IsEmpty() bool {
	return r == RangeEmpty
}

// Equal reports whether two ranges are identical.
func (r Range) Equal(other Range) bool {
	return r.start.Equal(other.start) && r.end.Equal(other.end)
}

// String renders the range.
func (r Range) String() string {
	return fmt.Sprintf("[%s, %s]", r.start, r.end)
}

// rangeJSON is the wire representation of a Range.
type rangeJSON struct {
	Start RangePoint `json:"start"`
	End   RangePoint `json:"end"`
}

// MarshalJSON serializes the range.
func (r Range) MarshalJSON() ([]byte, error) {
	return json.Marshal(rangeJSON{Start: r.start, End: r.end})
}

// UnmarshalJSON deserializes and re-validates a range.
func (r *Range) UnmarshalJSON(data []byte) error {
	var wire rangeJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return errors.ErrSerialization.Wrap(err)
	}
	validated, err := NewRange(wire.Start, wire.End)
	if err != nil {
		return errors.ErrSerialization.Wrap(err)
	}
	*r = validated
	return nil
}
