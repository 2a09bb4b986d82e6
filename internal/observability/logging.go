// Package observability provides logging, metrics, and tracing for seeder runs.
package observability

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// LogContextKey is a type for context keys used by the logging package.
type LogContextKey string

// RunID is the context key carrying the identifier of the current seeder run.
const RunID LogContextKey = "run_id"

// NewLogger builds the process logger. It is created once in main and passed
// down explicitly.
func NewLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel maps a LOG_LEVEL value onto a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRunID returns a new context with the given run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RunID, id)
}

// ExtractRunID retrieves the run identifier from the context.
func ExtractRunID(ctx context.Context) string {
	if id, ok := ctx.Value(RunID).(string); ok {
		return id
	}
	return ""
}

// StageLogger logs the start, end and failure of one seeding stage.
type StageLogger struct {
	stage  string
	logger *slog.Logger
}

// NewStageLogger creates a StageLogger for the named stage.
func NewStageLogger(logger *slog.Logger, stage string) *StageLogger {
	return &StageLogger{stage: stage, logger: logger}
}

// Start logs the human-readable message announcing the stage.
func (l *StageLogger) Start(ctx context.Context, msg string) {
	l.logger.InfoContext(ctx, msg,
		slog.String("stage", l.stage),
		slog.String("run_id", ExtractRunID(ctx)),
	)
}

// Step logs progress inside a stage at debug level.
func (l *StageLogger) Step(ctx context.Context, msg string, attrs ...any) {
	attrs = append(attrs,
		slog.String("stage", l.stage),
		slog.String("run_id", ExtractRunID(ctx)),
	)
	l.logger.DebugContext(ctx, msg, attrs...)
}

// Error logs a stage failure with its cause.
func (l *StageLogger) Error(ctx context.Context, msg string, err error) {
	l.logger.ErrorContext(ctx, msg,
		slog.String("stage", l.stage),
		slog.String("run_id", ExtractRunID(ctx)),
		slog.String("error", err.Error()),
	)
}
