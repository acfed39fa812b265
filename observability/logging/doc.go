// Copyright (C) 2025 beam-project
// SPDX-License-Identifier: LGPL-3.0-or-later

// Package logging provides structured logging for the query subsystem.
//
// The Logger interface carries leveled, field-structured messages. Two
// backends are provided: StructuredLogger, a dependency-free JSON
// logger, and ZapLogger, the production backend built on go.uber.org/zap.
// Nop discards everything and is the default for a publisher constructed
// without WithLogger.
package logging
