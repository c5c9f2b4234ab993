// Package log provides structured logging for go-vive.
// It wraps slog with sensible defaults for long-running pipeline processes.
package log

import (
	"log/slog"
	"os"
	"sync"
)

var (
	logger *slog.Logger
	once   sync.Once
)

// Init initializes the global logger with the specified level.
// Valid levels: "debug", "info", "warn", "error". Debug builds also
// record source positions, which the poll loop makes noisy otherwise.
func Init(level string) {
	once.Do(func() {
		lvl := parseLevel(level)
		opts := &slog.HandlerOptions{
			Level:     lvl,
			AddSource: lvl == slog.LevelDebug,
		}
		logger = slog.New(newHandler(opts))
		slog.SetDefault(logger)
	})
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newHandler picks the output format. VIVE_LOG_FORMAT ("json" or
// "text") wins; otherwise production gets JSON for log shippers and
// everything else gets text for interactive use.
func newHandler(opts *slog.HandlerOptions) slog.Handler {
	format := os.Getenv("VIVE_LOG_FORMAT")
	if format == "" && os.Getenv("VIVE_ENV") == "production" {
		format = "json"
	}
	if format == "json" {
		return slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.NewTextHandler(os.Stdout, opts)
}

// L returns the global logger instance.
func L() *slog.Logger {
	if logger == nil {
		Init("info")
	}
	return logger
}

// Debug logs at debug level.
func Debug(msg string, args ...any) {
	L().Debug(msg, args...)
}

// Info logs at info level.
func Info(msg string, args ...any) {
	L().Info(msg, args...)
}

// Warn logs at warn level.
func Warn(msg string, args ...any) {
	L().Warn(msg, args...)
}

// Error logs at error level.
func Error(msg string, args ...any) {
	L().Error(msg, args...)
}

// With returns a logger with the given attributes.
func With(args ...any) *slog.Logger {
	return L().With(args...)
}
