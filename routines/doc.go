// Copyright (C) 2025 beam-project
// SPDX-License-Identifier: LGPL-3.0-or-later

// Package routines provides the small concurrency primitives shared by
// the data store stack: a single-consumer task queue and the
// OPEN -> CLOSING -> CLOSED state machine governing shutdown.
package routines
