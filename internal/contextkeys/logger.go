package contextkeys

import (
	"auction-normalizer-service/internal/core/port"
	"context"
)

type loggerKeyType struct{}

var loggerKey = loggerKeyType{}

// ContextWithLogger stores the logger in ctx.
func ContextWithLogger(ctx context.Context, logger port.LoggerPort) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFromContext returns the logger stored in ctx. A context without one
// gets a logger that drops every record.
func LoggerFromContext(ctx context.Context) port.LoggerPort {
	if logger, ok := ctx.Value(loggerKey).(port.LoggerPort); ok {
		return logger
	}
	return discard{}
}

// WithLoggerFields scopes the context logger with fields and returns both the
// derived context and the scoped logger, so nested calls log the same fields.
func WithLoggerFields(ctx context.Context, fields port.Fields) (context.Context, port.LoggerPort) {
	logger := LoggerFromContext(ctx).WithFields(fields)
	return ContextWithLogger(ctx, logger), logger
}

type discard struct{}

func (discard) Info(string, port.Fields)                 {}
func (discard) Warn(string, port.Fields)                 {}
func (discard) Error(string, error, port.Fields)         {}
func (discard) Debug(string, port.Fields)                {}
func (d discard) WithFields(port.Fields) port.LoggerPort { return d }
