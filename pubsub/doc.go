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

// Package pubsub delivers live query results to subscribed listeners.
//
// A Registry maps each index to its set of listeners; publishing a value
// pushes it to every listener whose filter matches and drops listeners
// whose queues broke. A Publisher layers the historical splice on top:
// when a listener registers, live updates buffer while the historical
// query loads, then the snapshot is delivered followed by the buffered
// updates with duplicate suppression.
//
// An out-of-order live update is handled per the listener query's
// InterruptionPolicy: BreakQuery breaks the queue with a query
// interruption error, RecoverData re-issues a load for the gap before
// resuming, IgnoreContinue drops the update.
package pubsub
