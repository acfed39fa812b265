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

// Package types defines the native value system shared by expressions,
// evaluators and data stores.
//
// The system is a closed sum over eight native types:
//
//   - bool
//   - char (a single byte)
//   - int (32-bit signed)
//   - double (64-bit float)
//   - id (64-bit unsigned)
//   - string
//   - timestamp
//   - duration
//
// A Value pairs a TypeIndex tag with its payload and serializes as a JSON
// tagged union:
//
//	{"type": "int", "value": 123}
//
// Timestamps serialize as ISO-8601 extended strings with the sentinels
// "+infinity", "-infinity" and "not-a-date-time"; durations serialize as
// HH:MM:SS.ffffff with signed infinities.
package types
