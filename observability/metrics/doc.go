// Copyright (C) 2025 beam-project
// SPDX-License-Identifier: LGPL-3.0-or-later

// Package metrics exposes prometheus instrumentation for the data store
// stack and the subscription layer: load/write counters and latencies
// per store, published and suppressed value counts, broken queues and
// recovery loads.
package metrics
