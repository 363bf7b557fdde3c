package logger_adapter

import (
	"auction-normalizer-service/internal/core/port"
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("log line is not JSON: %q", line)
		}
		out = append(out, rec)
	}
	return out
}

func TestSlogAdapter_FieldsAndLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(SlogConfig{Writer: &buf, Level: slog.LevelInfo, IsJSON: true})

	runLogger := logger.WithFields(port.Fields{"run_id": "r-1"})
	runLogger.Debug("hidden", nil)
	runLogger.Info("Record written", port.Fields{"raw_id": 7})
	runLogger.Error("Upsert failed", errors.New("boom"), nil)

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("expected 2 records above debug, got %d", len(lines))
	}
	if lines[0]["run_id"] != "r-1" || lines[0]["raw_id"] != float64(7) {
		t.Errorf("fields missing from %v", lines[0])
	}
	if lines[1]["error"] != "boom" || lines[1]["level"] != "ERROR" {
		t.Errorf("unexpected error record %v", lines[1])
	}
}

func TestMultiloggerAdapter(t *testing.T) {
	var a, b bytes.Buffer
	multi, err := NewMultiloggerAdapter(
		NewSlogAdapter(SlogConfig{Writer: &a, IsJSON: true}),
		nil,
		NewSlogAdapter(SlogConfig{Writer: &b, IsJSON: true}),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	multi.WithFields(port.Fields{"component": "test"}).Warn("fan out", nil)

	for name, buf := range map[string]*bytes.Buffer{"first": &a, "second": &b} {
		lines := decodeLines(t, buf)
		if len(lines) != 1 || lines[0]["component"] != "test" {
			t.Errorf("%s logger got %v", name, lines)
		}
	}

	if _, err := NewMultiloggerAdapter(nil); err == nil {
		t.Error("expected error without loggers")
	}
}

func TestMultiloggerAdapter_SingleSinkIsUnwrapped(t *testing.T) {
	var buf bytes.Buffer
	stdout := NewSlogAdapter(SlogConfig{Writer: &buf, IsJSON: true})

	got, err := NewMultiloggerAdapter(stdout, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := got.(fanout); ok {
		t.Fatal("expected the only enabled logger to be returned directly")
	}

	got.Info("single sink", nil)
	if lines := decodeLines(t, &buf); len(lines) != 1 {
		t.Errorf("expected 1 record, got %d", len(lines))
	}
}
