package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []LogEntry {
	t.Helper()
	var entries []LogEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry LogEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("Failed to unmarshal %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		wantErr  bool
	}{
		{"DEBUG", DebugLevel, false},
		{"debug", DebugLevel, false},
		{" Info ", InfoLevel, false},
		{"", InfoLevel, false},
		{"warning", WarnLevel, false},
		{"WARN", WarnLevel, false},
		{"error", ErrorLevel, false},
		{"verbose", InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrUnknownLevel) {
				t.Errorf("error %v does not match ErrUnknownLevel", err)
			}
			if got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDomainFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, DebugLevel)

	logger.Info("search",
		Start("A"),
		Goal("E"),
		Expanded(7),
		Cost(10.5),
		Found(true),
		GridSize(4, 5),
		Edge("A", "B"),
		Kind("UnknownNode"),
	)

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	f := entries[0].Fields
	if f["start"] != "A" || f["goal"] != "E" {
		t.Errorf("start/goal = %v/%v", f["start"], f["goal"])
	}
	if f["expanded"] != float64(7) || f["cost"] != 10.5 || f["found"] != true {
		t.Errorf("search fields = %v", f)
	}
	if grid, ok := f["grid"].([]any); !ok || len(grid) != 2 || grid[0] != float64(4) {
		t.Errorf("grid = %v, want [4 5]", f["grid"])
	}
	if edge, ok := f["edge"].([]any); !ok || edge[0] != "A" || edge[1] != "B" {
		t.Errorf("edge = %v, want [A B]", f["edge"])
	}
	if f["kind"] != "UnknownNode" {
		t.Errorf("kind = %v", f["kind"])
	}
}

func TestJSONLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, WarnLevel)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 log entries, got %d", len(entries))
	}
	if entries[0].Level != "WARN" || entries[1].Level != "ERROR" {
		t.Errorf("levels = %s, %s; want WARN, ERROR", entries[0].Level, entries[1].Level)
	}
}

func TestJSONLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	child := logger.With(Component("astar"), String("request_id", "r-1"))
	child.Info("test message", String("request_id", "r-2"), NodeID("A"))

	entries := decodeLines(t, &buf)
	f := entries[0].Fields
	if f["component"] != "astar" {
		t.Errorf("component field = %v, want astar", f["component"])
	}
	if f["request_id"] != "r-2" {
		t.Errorf("call-site field should override preset, got %v", f["request_id"])
	}
	if f["node_id"] != "A" {
		t.Errorf("node_id = %v, want A", f["node_id"])
	}
}

func TestJSONLogger_SetLevelSharedWithChildren(t *testing.T) {
	var buf bytes.Buffer
	parent := NewJSONLogger(&buf, InfoLevel)
	child := parent.With(Component("service"))

	child.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatal("debug output at InfoLevel")
	}

	parent.SetLevel(DebugLevel)
	if child.GetLevel() != DebugLevel {
		t.Errorf("child level = %v, want DEBUG after parent SetLevel", child.GetLevel())
	}
	child.Debug("visible")
	if buf.Len() == 0 {
		t.Error("expected child debug output after parent SetLevel")
	}
}

func TestJSONLogger_NoFieldsOmitted(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	logger.Info("message without fields")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if _, exists := entry["fields"]; exists {
		t.Error("Expected fields key to be omitted when empty")
	}
}

func TestTimedOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, DebugLevel)

	op := StartTimer(logger, "find path", Start("A"))
	op.End(Expanded(3))
	op.EndError(errors.New("boom"))

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Fields["expanded"] != float64(3) || entries[0].Fields["start"] != "A" {
		t.Errorf("End fields = %v", entries[0].Fields)
	}
	if _, ok := entries[0].Fields["latency"]; !ok {
		t.Error("End missing latency")
	}
	if entries[1].Level != "ERROR" || entries[1].Fields["error"] != "boom" {
		t.Errorf("EndError entry = %+v", entries[1])
	}
}

func TestJSONLogger_UTCTimestamps(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	logger.out.now = func() time.Time { return fixed }

	logger.Info("tick")

	entries := decodeLines(t, &buf)
	if entries[0].Time != "2024-03-01T11:00:00Z" {
		t.Errorf("Time = %s, want UTC", entries[0].Time)
	}
}

func BenchmarkJSONLogger_Info(b *testing.B) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message", Start("A"), Expanded(42))
	}
}

func BenchmarkJSONLogger_InfoFiltered(b *testing.B) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, ErrorLevel)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message", Start("A"), Expanded(42))
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	base := NewJSONLogger(&buf, InfoLevel)

	if got := FromContext(context.Background(), base); got != Logger(base) {
		t.Error("FromContext without id should return the base logger")
	}

	ctx := WithRequestID(context.Background(), "req-42")
	if RequestIDFrom(ctx) != "req-42" {
		t.Fatalf("RequestIDFrom = %q", RequestIDFrom(ctx))
	}
	FromContext(ctx, base).Info("handled")

	entries := decodeLines(t, &buf)
	if entries[0].Fields["request_id"] != "req-42" {
		t.Errorf("request_id = %v, want req-42", entries[0].Fields["request_id"])
	}
}
