package logger_adapter

import (
	"auction-normalizer-service/internal/core/port"
	"fmt"
)

// NewMultiloggerAdapter combines the stdout logger with the optional sinks.
// Disabled sinks are passed as nil and dropped; a single remaining logger is
// returned as is.
func NewMultiloggerAdapter(loggers ...port.LoggerPort) (port.LoggerPort, error) {
	sinks := make(fanout, 0, len(loggers))
	for _, l := range loggers {
		if l != nil {
			sinks = append(sinks, l)
		}
	}
	switch len(sinks) {
	case 0:
		return nil, fmt.Errorf("multilogger: at least one logger is required")
	case 1:
		return sinks[0], nil
	}
	return sinks, nil
}

// fanout writes every record to each sink in order.
type fanout []port.LoggerPort

func (f fanout) Info(msg string, fields port.Fields) {
	f.each(func(l port.LoggerPort) { l.Info(msg, fields) })
}

func (f fanout) Warn(msg string, fields port.Fields) {
	f.each(func(l port.LoggerPort) { l.Warn(msg, fields) })
}

func (f fanout) Error(msg string, err error, fields port.Fields) {
	f.each(func(l port.LoggerPort) { l.Error(msg, err, fields) })
}

func (f fanout) Debug(msg string, fields port.Fields) {
	f.each(func(l port.LoggerPort) { l.Debug(msg, fields) })
}

func (f fanout) WithFields(fields port.Fields) port.LoggerPort {
	enriched := make(fanout, len(f))
	for i, l := range f {
		enriched[i] = l.WithFields(fields)
	}
	return enriched
}

func (f fanout) each(write func(port.LoggerPort)) {
	for _, l := range f {
		write(l)
	}
}
