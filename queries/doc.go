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

// Package queries defines the coordinate system and the typed expression
// language used to query time-ordered, indexed records.
//
// # Coordinates
//
// A Sequence is a 64-bit ordinal totally ordering the records of one
// index. A Range selects a contiguous window between two endpoints, each
// independently a Sequence or a timestamp; timestamp endpoints resolve to
// sequences at query time. A SnapshotLimit bounds how many historical
// records a query returns and from which side.
//
// # Queries
//
// A Query combines an index, a Range, a SnapshotLimit, a boolean filter
// Expression and an InterruptionPolicy. Builders cover the two common
// shapes:
//
//	queries.CurrentQuery("eurusd")  // latest known value
//	queries.RealTimeQuery("eurusd") // tail live updates
//
// # Expressions
//
// Expressions form an immutable, typed tree validated eagerly at
// construction. Convenience builders produce well-typed nodes:
//
//	filter, err := queries.Greater(price, queries.ConstantInt(100))
//
// Every variant serializes through a registry of stable string tags, and
// deserialization re-validates all typing constraints.
//
// # Sequencing
//
// A Sequencer assigns strictly monotonic sequences to writes by packing
// the write's millisecond timestamp and a per-millisecond counter.
package queries
