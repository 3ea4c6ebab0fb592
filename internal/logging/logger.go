// Package logging builds the process logger from configuration.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"smartthingies/config"
)

// New returns a logger writing to the configured stream. Every record carries
// the component name.
func New(cfg config.LogConfig, component string) *slog.Logger {
	output := io.Writer(os.Stderr)
	if strings.ToLower(cfg.Output) == "stdout" {
		output = os.Stdout
	}
	return NewWithWriter(cfg, component, output)
}

func NewWithWriter(cfg config.LogConfig, component string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler).With("component", component)
}

// ParseLevel maps debug|info|warn|error to a level. Anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
