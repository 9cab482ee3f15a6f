package seismic

import (
	"context"
	"log/slog"
	"os"

	"github.com/rs/xid"
)

// Logger wraps slog.Logger with seismic-specific context.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler. If handler is nil,
// uses a default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.Level(1000)}))}
}

// WithSegment adds a segment id field to the logger.
func (l *Logger) WithSegment(segmentID uint64) *Logger {
	return &Logger{Logger: l.Logger.With("segment_id", segmentID)}
}

// WithField adds a sparse field name field to the logger.
func (l *Logger) WithField(field string) *Logger {
	return &Logger{Logger: l.Logger.With("field", field)}
}

// WithOp tags the logger with a correlation id for one long-running
// operation (a merge, a query), so every log line it emits can be grepped
// together (SPEC_FULL.md §10: xid-tagged log correlation).
func (l *Logger) WithOp(op string) (*Logger, string) {
	id := xid.New().String()
	return &Logger{Logger: l.Logger.With("op", op, "op_id", id)}, id
}

// LogInsert logs a forward-index insert.
func (l *Logger) LogInsert(ctx context.Context, segmentID uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "insert failed", "segment_id", segmentID, "error", err)
	} else {
		l.DebugContext(ctx, "insert completed", "segment_id", segmentID)
	}
}

// LogQuery logs a query against one field.
func (l *Logger) LogQuery(ctx context.Context, field string, k, resultsFound int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "query failed", "field", field, "k", k, "error", err)
	} else {
		l.DebugContext(ctx, "query completed", "field", field, "k", k, "results", resultsFound)
	}
}

// LogMerge logs a segment merge.
func (l *Logger) LogMerge(ctx context.Context, segmentIDs []uint64, termsMerged int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "merge failed", "inputs", segmentIDs, "error", err)
	} else {
		l.InfoContext(ctx, "merge completed", "inputs", segmentIDs, "terms_merged", termsMerged)
	}
}

// LogEviction logs a cache eviction triggered by budget pressure.
func (l *Logger) LogEviction(ctx context.Context, cacheKey string, bytesFreed int64) {
	l.DebugContext(ctx, "cache eviction", "cache_key", cacheKey, "bytes_freed", bytesFreed)
}

// LogSegmentDelete logs a segment removal and its cache purge.
func (l *Logger) LogSegmentDelete(ctx context.Context, segmentID uint64, bytesReleased int64) {
	l.InfoContext(ctx, "segment deleted", "segment_id", segmentID, "bytes_released", bytesReleased)
}
