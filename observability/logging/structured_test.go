// Copyright (C) 2025 beam-project
// SPDX-License-Identifier: LGPL-3.0-or-later

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestStructuredLogger_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLoggerWithOutput(LevelInfo, &buf)

	logger.Info(context.Background(), "load complete",
		String("index", "eurusd"), Int("count", 5))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["message"] != "load complete" {
		t.Errorf("message = %v, want load complete", entry["message"])
	}
	if entry["index"] != "eurusd" {
		t.Errorf("index = %v, want eurusd", entry["index"])
	}
	if entry["count"] != float64(5) {
		t.Errorf("count = %v, want 5", entry["count"])
	}
}

func TestStructuredLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLoggerWithOutput(LevelWarn, &buf)

	logger.Info(context.Background(), "suppressed")
	logger.Warn(context.Background(), "emitted")

	output := buf.String()
	if strings.Contains(output, "suppressed") {
		t.Error("info message should have been suppressed at warn level")
	}
	if !strings.Contains(output, "emitted") {
		t.Error("warn message should have been emitted")
	}
}

func TestStructuredLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLoggerWithOutput(LevelInfo, &buf)

	child := logger.With(String("store", "buffered"))
	child.Info(context.Background(), "flush")

	if !strings.Contains(buf.String(), `"store":"buffered"`) {
		t.Errorf("output = %s, want persistent field", buf.String())
	}
}

func TestNop_DiscardsEverything(t *testing.T) {
	logger := Nop()

	logger.Info(context.Background(), "nothing happens")
	logger.With(String("k", "v")).Error(context.Background(), "still nothing")
}
