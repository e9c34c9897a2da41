// Package logging provides JSON-lines structured logging for lookout.
//
// The terminal belongs to the picker and stdout carries the selected entry,
// so logs go to a file:
//
//	{"ts":"2026-01-15T10:30:00Z","level":"INFO","msg":"channel opened","channel":"files"}
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Config configures the structured logger.
type Config struct {
	// Output is the writer for log output (default: io.Discard)
	Output io.Writer

	// Level is the minimum log level (default: LevelInfo)
	Level slog.Level
}

// New creates a JSON-lines logger. The time key is written as "ts".
func New(cfg *Config) *slog.Logger {
	if cfg == nil {
		cfg = &Config{}
	}
	output := cfg.Output
	if output == nil {
		output = io.Discard
	}

	opts := &slog.HandlerOptions{
		Level: cfg.Level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				a.Key = "ts"
			}
			return a
		},
	}
	return slog.New(slog.NewJSONHandler(output, opts))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return New(&Config{Output: io.Discard})
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

// OpenFile creates a logger appending to path at the given level. The
// returned closer must be called on exit.
func OpenFile(path, level string) (*slog.Logger, io.Closer, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return New(&Config{Output: f, Level: lvl}), f, nil
}
