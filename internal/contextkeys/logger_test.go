package contextkeys

import (
	"auction-normalizer-service/internal/core/port"
	"context"
	"reflect"
	"testing"
)

type recordingLogger struct {
	fields  port.Fields
	entries *[]port.Fields
}

func (r recordingLogger) log(fields port.Fields) {
	merged := port.Fields{}
	for k, v := range r.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	*r.entries = append(*r.entries, merged)
}

func (r recordingLogger) Info(msg string, fields port.Fields)             { r.log(fields) }
func (r recordingLogger) Warn(msg string, fields port.Fields)             { r.log(fields) }
func (r recordingLogger) Error(msg string, err error, fields port.Fields) { r.log(fields) }
func (r recordingLogger) Debug(msg string, fields port.Fields)            { r.log(fields) }

func (r recordingLogger) WithFields(fields port.Fields) port.LoggerPort {
	next := port.Fields{}
	for k, v := range r.fields {
		next[k] = v
	}
	for k, v := range fields {
		next[k] = v
	}
	return recordingLogger{fields: next, entries: r.entries}
}

func TestLoggerFromContext_DefaultsToDiscard(t *testing.T) {
	logger := LoggerFromContext(context.Background())
	if _, ok := logger.(discard); !ok {
		t.Fatalf("expected discard logger, got %T", logger)
	}
	logger.WithFields(port.Fields{"k": "v"}).Info("dropped", nil)
}

func TestWithLoggerFields(t *testing.T) {
	var entries []port.Fields
	ctx := ContextWithLogger(context.Background(), recordingLogger{entries: &entries})

	ctx, runLogger := WithLoggerFields(ctx, port.Fields{"run_id": "r-1"})
	recCtx, _ := WithLoggerFields(ctx, port.Fields{"raw_id": int64(7)})

	runLogger.Info("run", nil)
	LoggerFromContext(recCtx).Warn("record", port.Fields{"reason": "parse_failed"})

	want := []port.Fields{
		{"run_id": "r-1"},
		{"run_id": "r-1", "raw_id": int64(7), "reason": "parse_failed"},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("unexpected entries %v", entries)
	}
}
