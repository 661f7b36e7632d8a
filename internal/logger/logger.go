package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// Logger is the logging contract passed to every component.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	With(args ...any) Logger
	WithGroup(name string) Logger
}

// New returns a text or JSON logger writing to stderr.
func New(format string, level string) (Logger, error) {
	switch strings.ToLower(format) {
	case FormatJSON:
		return NewJSONLogger(level)
	case FormatText, "":
		return NewTextLogger(level)
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

// NewTextLogger creates a human readable logger with the specified level.
func NewTextLogger(level string) (Logger, error) {
	return newLogger(os.Stderr, level, false)
}

// NewJSONLogger creates a JSON logger with the specified level.
func NewJSONLogger(level string) (Logger, error) {
	return newLogger(os.Stderr, level, true)
}

// NewNoOpLogger creates a logger that discards all log messages.
func NewNoOpLogger() Logger {
	return &slogLogger{logger: slog.New(slog.DiscardHandler)}
}

func newLogger(w io.Writer, level string, json bool) (Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{
		Level:       lvl,
		AddSource:   lvl == slog.LevelDebug,
		ReplaceAttr: replace,
	}

	var handler slog.Handler
	if json {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return &slogLogger{logger: slog.New(handler)}, nil
}

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case LevelDebug:
		return slog.LevelDebug, nil
	case LevelInfo:
		return slog.LevelInfo, nil
	case LevelWarn:
		return slog.LevelWarn, nil
	case LevelError:
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}
