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
	"math"

	"github.com/beam-project/beamq/pkg/errors"
)

// SnapshotLimitType selects which side of a result set a limit retains.
type SnapshotLimitType uint8

const (
	// LimitHead retains the lowest-sequence matches.
	LimitHead SnapshotLimitType = iota
	// LimitTail retains the highest-sequence matches.
	LimitTail
)

// String returns the stable wire tag for the limit type.
func (t SnapshotLimitType) String() string {
	if t == LimitTail {
		return "tail"
	}
	return "head"
}

// SnapshotLimit bounds the number of historical records a query returns.
type SnapshotLimit struct {
	limitType SnapshotLimitType
	size      int
}

// Distinguished limits.
var (
	// SnapshotLimitNone matches no historical records.
	SnapshotLimitNone = SnapshotLimit{LimitHead, 0}

	// SnapshotLimitUnlimited matches every historical record.
	SnapshotLimitUnlimited = SnapshotLimit{LimitHead, math.MaxInt32}
)

// NewSnapshotLimit creates a SnapshotLimit. Negative sizes normalize to
// zero, and a zero size coerces the type to head.
func NewSnapshotLimit(limitType SnapshotLimitType, size int) SnapshotLimit {
	if size <= 0 {
		return SnapshotLimit{LimitHead, 0}
	}
	return SnapshotLimit{limitType, size}
}

// Type returns which side of the result set the limit retains.
func (l SnapshotLimit) Type() SnapshotLimitType {
	return l.limitType
}

// Size returns the maximum number of records retained.
func (l SnapshotLimit) Size() int {
	return l.size
}

// IsNone reports whether the limit matches no records.
func (l SnapshotLimit) IsNone() bool {
	return l.size == 0
}

// IsUnlimited reports whether the limit matches every record.
func (l SnapshotLimit) IsUnlimited() bool {
	return l.size == math.MaxInt32
}

// Equal reports whether two limits behave identically. The type is
// irrelevant when the size is zero or unlimited.
func (l SnapshotLimit) Equal(other SnapshotLimit) bool {
	if l.size != other.size {
		return false
	}
	if l.size == 0 || l.size == math.MaxInt32 {
		return true
	}
	return l.limitType == other.limitType
}

// String renders the limit.
func (l SnapshotLimit) String() string {
	return fmt.Sprintf("%s/%d", l.limitType, l.size)
}

// snapshotLimitJSON is the wire representation of a SnapshotLimit.
type snapshotLimitJSON struct {
	Type string `json:"type"`
	Size int    `json:"size"`
}

// MarshalJSON serializes the limit.
func (l SnapshotLimit) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshotLimitJSON{
		Type: l.limitType.String(), Size: l.size})
}

// UnmarshalJSON deserializes and re-normalizes a limit.
func (l *SnapshotLimit) UnmarshalJSON(data []byte) error {
	var wire snapshotLimitJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return errors.ErrSerialization.Wrap(err)
	}
	var limitType SnapshotLimitType
	switch wire.Type {
	case "head":
		limitType = LimitHead
	case "tail":
		limitType = LimitTail
	default:
		return errors.ErrSerialization.WithDetail("type", wire.Type).
			WithMessage("unknown snapshot limit type")
	}
	*l = NewSnapshotLimit(limitType, wire.Size)
	return nil
}
