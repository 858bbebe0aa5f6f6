package blockcache

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with blockcache-specific context.
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
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
// It is the default for new caches.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithShard adds a shard field to the logger.
func (l *Logger) WithShard(shard int) *Logger {
	return &Logger{
		Logger: l.Logger.With("shard", shard),
	}
}

// WithBlockSize adds a block_size field to the logger.
func (l *Logger) WithBlockSize(size int) *Logger {
	return &Logger{
		Logger: l.Logger.With("block_size", size),
	}
}

// LogLoad logs a block load on a cache miss.
func (l *Logger) LogLoad(ctx context.Context, block int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "block load failed",
			"block", block,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "block loaded",
			"block", block,
		)
	}
}

// LogEviction logs the eviction of the oldest block.
// A failed write-back means the block's modifications were lost.
func (l *Logger) LogEviction(ctx context.Context, block int64, dirty bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "eviction write-back failed, block dropped",
			"block", block,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "block evicted",
			"block", block,
			"dirty", dirty,
		)
	}
}

// LogFlush logs a flush of dirty blocks.
func (l *Logger) LogFlush(ctx context.Context, blocks int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "flush failed",
			"written", blocks,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "flush completed",
			"written", blocks,
		)
	}
}

// LogClose logs the shutdown of a cache.
func (l *Logger) LogClose(ctx context.Context, dropped int, err error) {
	if err != nil {
		l.WarnContext(ctx, "cache closed with write-back failures",
			"dropped", dropped,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "cache closed",
			"dropped", dropped,
		)
	}
}
