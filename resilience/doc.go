// Copyright (C) 2025 beam-project
// SPDX-License-Identifier: LGPL-3.0-or-later

// Package resilience implements the bounded retry policy applied to data
// store writes. Buffered and asynchronous stores retry failed inner
// writes a fixed number of times with backoff before surfacing the
// failure.
package resilience
