package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"Warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelError},
		{"", slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.name, slog.LevelError))
		})
	}
}

func TestNewLogger_Formats(t *testing.T) {
	var text bytes.Buffer
	NewLogger(Config{Level: slog.LevelInfo, Format: "text", Output: &text}).
		Info("hello", slog.String("service", "playback"))
	assert.Contains(t, text.String(), "msg=hello")
	assert.Contains(t, text.String(), "service=playback")

	var js bytes.Buffer
	NewLogger(Config{Level: slog.LevelInfo, Format: "json", Output: &js}).
		Info("hello", slog.String("service", "playback"))
	assert.Contains(t, js.String(), `"msg":"hello"`)
	assert.Contains(t, js.String(), `"service":"playback"`)
}

func TestNewLogger_Level(t *testing.T) {
	var out bytes.Buffer
	log := NewLogger(Config{Level: slog.LevelWarn, Output: &out})

	log.Info("quiet")
	assert.Empty(t, out.String())

	log.Warn("loud")
	assert.Contains(t, out.String(), "loud")
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv(LevelEnv, "debug")
	assert.Equal(t, slog.LevelDebug, DefaultConfig().Level)

	t.Setenv(LevelEnv, "")
	cfg := DefaultConfig()
	assert.Equal(t, slog.LevelInfo, cfg.Level)
	assert.Equal(t, "text", cfg.Format)
}
