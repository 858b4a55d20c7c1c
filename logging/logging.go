// Package logging configures the application logger. Two output formats
// are supported: a colored console format for interactive use and JSON
// for log collectors.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// Options control how the logger is built.
type Options struct {
	// Level is the minimum level, one of "debug", "info", "warn", "error".
	// Unknown values fall back to "info".
	Level string
	// Format is "console" or "json". Unknown values fall back to "console".
	Format string
	// Output is where log lines are written.
	Output io.Writer
}

// New builds a *slog.Logger from opts.
func New(opts Options) *slog.Logger {
	level := parseLevel(opts.Level)

	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "json":
		handler = slog.NewJSONHandler(opts.Output, &slog.HandlerOptions{
			Level: level,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.LevelKey {
					if lv, ok := a.Value.Any().(slog.Level); ok {
						a.Value = slog.StringValue(strings.ToLower(lv.String()))
					}
				}
				return a
			},
		})
	default:
		handler = newConsoleHandler(opts.Output, level)
	}

	return slog.New(handler)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
