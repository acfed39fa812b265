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
	"encoding/binary"
	"math"
	"strconv"
	"time"

	"github.com/beam-project/beamq/pkg/errors"
)

// Sequence is a monotonically increasing ordinal identifying a record
// within an index. Once assigned it behaves as an opaque 64-bit key.
type Sequence uint64

const (
	// SequenceFirst is the lowest sequence. It is a sentinel and is never
	// assigned to a record.
	SequenceFirst Sequence = 0

	// SequencePresent separates historical records from live records. Its
	// ordinal is interior to the sequence space and shared by publishers
	// and subscribers.
	SequencePresent Sequence = 1 << 62

	// SequenceLast is the highest sequence.
	SequenceLast Sequence = math.MaxUint64
)

// sequenceCounterBits is the width of the per-millisecond counter packed
// into the low bits of an encoded sequence.
const sequenceCounterBits = 20

// sequenceCounterMask extracts the counter from an encoded sequence.
const sequenceCounterMask = (1 << sequenceCounterBits) - 1

// EncodeTimestamp packs a millisecond timestamp into the high bits of a
// sequence and a per-millisecond counter into the low bits. Sequences
// produced this way are monotonic per index as long as the counter resets
// whenever the timestamp increases.
func EncodeTimestamp(t time.Time, counter uint32) Sequence {
	ms := uint64(t.UnixMilli())
	return Sequence(ms<<sequenceCounterBits | uint64(counter)&sequenceCounterMask)
}

// DecodeTimestamp recovers the millisecond timestamp packed into an
// encoded sequence.
func DecodeTimestamp(s Sequence) time.Time {
	return time.UnixMilli(int64(s >> sequenceCounterBits)).UTC()
}

// Next returns the following sequence, saturating at SequenceLast.
func (s Sequence) Next() Sequence {
	if s == SequenceLast {
		return SequenceLast
	}
	return s + 1
}

// Prev returns the preceding sequence, saturating at SequenceFirst.
func (s Sequence) Prev() Sequence {
	if s == SequenceFirst {
		return SequenceFirst
	}
	return s - 1
}

// String renders the ordinal.
func (s Sequence) String() string {
	return strconv.FormatUint(uint64(s), 10)
}

// MarshalBinary encodes the sequence as a 64-bit big-endian ordinal.
func (s Sequence) MarshalBinary() ([]byte, error) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(s))
	return buf[:], nil
}

// UnmarshalBinary decodes a 64-bit big-endian ordinal.
func (s *Sequence) UnmarshalBinary(data []byte) error {
	if len(data) != 8 {
		return errors.ErrSerialization.WithMessage("sequence must be 8 bytes")
	}
	*s = Sequence(binary.BigEndian.Uint64(data))
	return nil
}
