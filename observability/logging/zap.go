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

package logging

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger adapts a zap logger to the Logger interface. It is the
// production backend; StructuredLogger remains the dependency-free
// fallback.
type ZapLogger struct {
	logger *zap.Logger
	level  zap.AtomicLevel
}

// NewZapLogger creates a production zap logger at the given level.
func NewZapLogger(level Level) (*ZapLogger, error) {
	atomic := zap.NewAtomicLevelAt(zapLevel(level))
	config := zap.NewProductionConfig()
	config.Level = atomic
	logger, err := config.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &ZapLogger{logger: logger, level: atomic}, nil
}

// NewZapLoggerWith adapts an existing zap logger.
func NewZapLoggerWith(logger *zap.Logger) *ZapLogger {
	return &ZapLogger{
		logger: logger,
		level:  zap.NewAtomicLevelAt(zapcore.InfoLevel),
	}
}

func zapLevel(level Level) zapcore.Level {
	switch level {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func zapFields(fields []Field) []zap.Field {
	converted := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		converted = append(converted, zap.Any(f.Key, f.Value))
	}
	return converted
}

// Debug logs a debug message.
func (l *ZapLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.logger.Debug(msg, zapFields(fields)...)
}

// Info logs an informational message.
func (l *ZapLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.logger.Info(msg, zapFields(fields)...)
}

// Warn logs a warning message.
func (l *ZapLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.logger.Warn(msg, zapFields(fields)...)
}

// Error logs an error message.
func (l *ZapLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.logger.Error(msg, zapFields(fields)...)
}

// With creates a child logger with persistent fields.
func (l *ZapLogger) With(fields ...Field) Logger {
	return &ZapLogger{
		logger: l.logger.With(zapFields(fields)...),
		level:  l.level,
	}
}

// SetLevel sets the minimum log level.
func (l *ZapLogger) SetLevel(level Level) {
	l.level.SetLevel(zapLevel(level))
}

// Sync flushes buffered log entries.
func (l *ZapLogger) Sync() error {
	return l.logger.Sync()
}
