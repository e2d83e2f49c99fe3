package sparsegrid

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with sparsegrid-specific context.
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
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithDim adds a dimension field to the logger.
func (l *Logger) WithDim(d int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dim", d),
	}
}

// WithLevel adds a resolution level field to the logger.
func (l *Logger) WithLevel(eta int) *Logger {
	return &Logger{
		Logger: l.Logger.With("level", eta),
	}
}

// WithFamily adds a design family field to the logger.
func (l *Logger) WithFamily(family string) *Logger {
	return &Logger{
		Logger: l.Logger.With("family", family),
	}
}

// LogGenerate logs a grid generation operation.
func (l *Logger) LogGenerate(ctx context.Context, dim, level, partitions, points int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "generation failed",
			"dim", dim,
			"level", level,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "generation completed",
			"dim", dim,
			"level", level,
			"partitions", partitions,
			"points", points,
		)
	}
}

// LogSnapshot logs a snapshot save operation.
func (l *Logger) LogSnapshot(ctx context.Context, codec string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"codec", codec,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot saved",
			"codec", codec,
		)
	}
}

// LogLoad logs a snapshot load operation.
func (l *Logger) LogLoad(ctx context.Context, points int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot load failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot loaded",
			"points", points,
		)
	}
}
