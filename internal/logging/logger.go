// Package logging provides the structured logger used by pipelines and the CLI.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with fixvec-specific helpers and consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, a text handler writing to stderr at info level is used.
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

// NewJSONLogger creates a Logger that writes JSON records to w at the given minimum level.
func NewJSONLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that writes human-readable records to w.
func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000),
	}))
}

// ParseLevel maps "debug", "info", "warn" or "error" (any case) to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, err
	}

	return level, nil
}

// WithMethod adds a downsampling method field.
func (l *Logger) WithMethod(method string) *Logger {
	return &Logger{
		Logger: l.Logger.With("method", method),
	}
}

// WithBackend adds a compression backend field.
func (l *Logger) WithBackend(backend string) *Logger {
	return &Logger{
		Logger: l.Logger.With("backend", backend),
	}
}

// LogDownsample logs one index selection.
func (l *Logger) LogDownsample(ctx context.Context, method string, in, nOut, selected int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "downsample failed",
			"method", method,
			"input", in,
			"n_out", nOut,
			"error", err,
		)

		return
	}

	l.DebugContext(ctx, "downsample completed",
		"method", method,
		"input", in,
		"n_out", nOut,
		"selected", selected,
		"elapsed", elapsed,
	)
}

// LogCompress logs the compression of one axis vector.
func (l *Logger) LogCompress(ctx context.Context, axis, backend string, rawBytes, packedBytes int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "compress failed",
			"axis", axis,
			"backend", backend,
			"error", err,
		)

		return
	}

	ratio := 0.0
	if packedBytes > 0 {
		ratio = float64(rawBytes) / float64(packedBytes)
	}

	l.DebugContext(ctx, "compress completed",
		"axis", axis,
		"backend", backend,
		"raw_bytes", rawBytes,
		"packed_bytes", packedBytes,
		"ratio", ratio,
	)
}
