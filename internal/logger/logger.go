// Package logger provides leveled console logging for pharmscrape.
//
// Progress lines go out at Info, per-page failures at Warn. Quiet mode keeps
// the failures visible while hiding progress.
package logger

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	current *slog.Logger
	mu      sync.RWMutex
)

func init() {
	current = build(Options{})
}

// Options configures the logger.
type Options struct {
	Debug  bool      // Enable debug level logging
	Quiet  bool      // Only show warnings and errors
	JSON   bool      // Emit JSON records instead of text
	Output io.Writer // Destination (default: stderr)
}

// Level returns the minimum level implied by the options.
func (o Options) Level() slog.Level {
	switch {
	case o.Quiet:
		return slog.LevelWarn
	case o.Debug:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// Init replaces the package logger according to opts.
func Init(opts Options) {
	l := build(opts)

	mu.Lock()
	current = l
	mu.Unlock()
}

// SetLogger installs an externally configured logger.
func SetLogger(l *slog.Logger) {
	if l == nil {
		return
	}
	mu.Lock()
	current = l
	mu.Unlock()
}

// L returns the active logger.
func L() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

func build(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: opts.Level()}
	if opts.JSON {
		return slog.New(slog.NewJSONHandler(out, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(out, handlerOpts))
}

// Debug logs a debug message.
func Debug(msg string, args ...any) { L().Debug(msg, args...) }

// Info logs an info message.
func Info(msg string, args ...any) { L().Info(msg, args...) }

// Warn logs a warning message.
func Warn(msg string, args ...any) { L().Warn(msg, args...) }

// Error logs an error message.
func Error(msg string, args ...any) { L().Error(msg, args...) }

// With returns the active logger with the given attributes attached.
func With(args ...any) *slog.Logger { return L().With(args...) }
