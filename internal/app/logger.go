package app

import (
	"io"
	"log/slog"
	"strings"

	"github.com/heartmarshall/macrotrack-backend/internal/config"
)

// NewLogger builds the process logger and installs it as the slog default.
// Format "json" writes JSON lines; anything else writes text with source
// locations. Unknown levels fall back to info. Every record carries the
// application name and version.
func NewLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	json := strings.EqualFold(strings.TrimSpace(cfg.Format), "json")
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: !json,
	}

	var handler slog.Handler
	if json {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler).With(
		slog.String("app", "macrotrack"),
		slog.String("version", Version),
	)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}
