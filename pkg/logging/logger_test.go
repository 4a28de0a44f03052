package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()

	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestStructuredLogger_EntryShape(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger("yield-api", "1.2.3", InfoLevel)
	logger.SetOutput(&buf)

	ctx := WithRequestID(context.Background(), "req-42")
	logger.Info(ctx, "[TEST] hello", Fields{"crop": "Rice", "count": 3})

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}

	entry := entries[0]
	tests := []struct {
		key  string
		want interface{}
	}{
		{"message", "[TEST] hello"},
		{"level", "INFO"},
		{"service", "yield-api"},
		{"version", "1.2.3"},
		{"request_id", "req-42"},
		{"crop", "Rice"},
		{"count", float64(3)},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if entry[tt.key] != tt.want {
				t.Errorf("%s = %v, want %v", tt.key, entry[tt.key], tt.want)
			}
		})
	}

	if _, ok := entry["timestamp"]; !ok {
		t.Error("timestamp missing")
	}
}

func TestStructuredLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger("svc", "1.0.0", WarnLevel)
	logger.SetOutput(&buf)

	logger.Debug(context.Background(), "debug", nil)
	logger.Info(context.Background(), "info", nil)
	logger.Warn(context.Background(), "warn", nil)

	entries := decodeLines(t, &buf)
	if len(entries) != 1 || entries[0]["message"] != "warn" {
		t.Fatalf("expected only the warn entry, got %v", entries)
	}

	logger.SetLevel(DebugLevel)
	logger.Debug(context.Background(), "debug again", nil)
	if got := len(decodeLines(t, &buf)); got != 2 {
		t.Errorf("after SetLevel(Debug) got %d entries, want 2", got)
	}
}

func TestStructuredLogger_ErrorIncludesCause(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger("svc", "1.0.0", InfoLevel)
	logger.SetOutput(&buf)

	logger.Error(context.Background(), "[FAIL] boom", Fields{}, errors.New("predictor down"))

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0]["error"] != "predictor down" {
		t.Errorf("error = %v, want %q", entries[0]["error"], "predictor down")
	}
	if _, ok := entries[0]["caller"]; !ok {
		t.Error("caller missing on error entry")
	}
}

func TestContextLogger_MergeFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger("svc", "1.0.0", InfoLevel)
	logger.SetOutput(&buf)

	scoped := logger.WithFields(Fields{"component": "batch", "row": 1})
	scoped.Info(context.Background(), "row scored", Fields{"row": 2})

	entries := decodeLines(t, &buf)
	if entries[0]["component"] != "batch" {
		t.Errorf("component = %v, want batch", entries[0]["component"])
	}
	if entries[0]["row"] != float64(2) {
		t.Errorf("row = %v, want provided field to win", entries[0]["row"])
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"error", ErrorLevel},
		{"", InfoLevel},
		{"verbose", InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
