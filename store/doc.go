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

// Package store implements the layered data store stack.
//
// LocalDataStore is the canonical in-memory reference: per index it
// keeps a sequence-ascending vector under one mutex. The wrappers layer
// on top of any DataStore and preserve its query semantics:
//
//   - BufferedDataStore batches writes and flushes them asynchronously
//   - CachedDataStore caches fixed-size blocks of sequence ordinals
//   - SessionCachedDataStore keeps a rolling tail window per index
//   - AsyncDataStore applies writes through a background task queue
//
// PostgresDataStore and RedisDataStore persist records externally;
// the Postgres backend pushes simple filters down as SQL conditions via
// TranslateSQL. Instrument wraps any store with prometheus metrics.
//
// Every implementation upholds the same contract: sequences strictly
// increase per index, loads stay within the resolved range, snapshot
// limits are exact, and results ascend by sequence regardless of the
// limit's tag.
package store
