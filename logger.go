package tinydb

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with tinydb-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithLabel adds a label field to the logger.
func (l *Logger) WithLabel(label string) *Logger {
	return &Logger{
		Logger: l.Logger.With("label", label),
	}
}

// LogAdd logs an add operation.
func (l *Logger) LogAdd(label string, records int, err error) {
	if err != nil {
		l.Error("add failed",
			"label", label,
			"records", records,
			"error", err,
		)
	} else {
		l.Debug("add completed",
			"label", label,
			"records", records,
		)
	}
}

// LogRemove logs a remove operation.
func (l *Logger) LogRemove(label string, records int, err error) {
	if err != nil {
		l.Error("remove failed",
			"label", label,
			"records", records,
			"error", err,
		)
	} else {
		l.Debug("remove completed",
			"label", label,
			"records", records,
		)
	}
}

// LogDump logs a snapshot write.
func (l *Logger) LogDump(ctx context.Context, label, path string, records, bytes int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "dump failed",
			"label", label,
			"path", path,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "snapshot saved",
			"label", label,
			"path", path,
			"records", records,
			"bytes", bytes,
		)
	}
}

// LogLoad logs a snapshot read.
func (l *Logger) LogLoad(ctx context.Context, label, path string, records, bytes int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"label", label,
			"path", path,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "snapshot loaded",
			"label", label,
			"path", path,
			"records", records,
			"bytes", bytes,
		)
	}
}
