package logging

import (
	"log/slog"
	"os"
	"strings"
)

// NewJSONLogger returns a slog.Logger writing JSON lines to stdout,
// tagged with the service name. Unknown level strings fall back to info.
func NewJSONLogger(service, level string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: levelFrom(level),
	})
	return slog.New(handler).With(slog.String("service", service))
}

func levelFrom(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
