package app

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/macrotrack-backend/internal/config"
)

// Tests here replace the slog default, so they do not run in parallel.

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(config.LogConfig{Level: "info", Format: "json"}, &buf)

	logger.Info("meal created", slog.String("meal_id", "m1"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "meal created", entry["msg"])
	assert.Equal(t, "macrotrack", entry["app"])
	assert.Equal(t, "m1", entry["meal_id"])
	assert.NotContains(t, entry, slog.SourceKey)
}

func TestNewLogger_TextWithSource(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(config.LogConfig{Level: "debug", Format: "text"}, &buf)

	slog.Debug("from default")

	out := buf.String()
	assert.Contains(t, out, "msg=\"from default\"")
	assert.Contains(t, out, "source=")
	assert.Contains(t, out, "app=macrotrack")
}

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		level   string
		enabled slog.Level
		dropped slog.Level
	}{
		{"debug", slog.LevelDebug, slog.LevelDebug - 1},
		{"INFO", slog.LevelInfo, slog.LevelDebug},
		{" warn ", slog.LevelWarn, slog.LevelInfo},
		{"error", slog.LevelError, slog.LevelWarn},
		{"verbose", slog.LevelInfo, slog.LevelDebug},
		{"", slog.LevelInfo, slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.level), func(t *testing.T) {
			logger := NewLogger(config.LogConfig{Level: tt.level, Format: "json"}, &bytes.Buffer{})
			ctx := context.Background()
			assert.True(t, logger.Enabled(ctx, tt.enabled))
			assert.False(t, logger.Enabled(ctx, tt.dropped))
		})
	}
}
