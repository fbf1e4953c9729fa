package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/phrazzld/tactics-srs/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  slog.Level
		ok    bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"warn", slog.LevelWarn, true},
		{" error ", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
	}

	for _, tc := range tests {
		got, ok := ParseLevel(tc.input)
		assert.Equal(t, tc.want, got, tc.input)
		assert.Equal(t, tc.ok, ok, tc.input)
	}
}

func TestSetupWithWriterJSON(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	buf := &TestLogBuffer{}
	l, err := SetupWithWriter(config.ServerConfig{LogLevel: "warn", LogFormat: "json"}, buf)
	require.NoError(t, err)
	require.NotNil(t, l)

	l.Info("hidden")
	slog.Warn("shown", "puzzle_id", "abc12")

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "shown", entries[0]["msg"])
	AssertLogField(t, buf, "puzzle_id", "abc12")
}

func TestSetupWithWriterText(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	buf := &TestLogBuffer{}
	l, err := SetupWithWriter(config.ServerConfig{LogLevel: "debug", LogFormat: "text"}, buf)
	require.NoError(t, err)

	l.Debug("recompute finished", "upserted", 3)
	AssertLogContains(t, buf, "msg=\"recompute finished\"")
	AssertLogContains(t, buf, "upserted=3")
}

func TestSetupRejectsUnknownFormat(t *testing.T) {
	_, err := SetupWithWriter(config.ServerConfig{LogLevel: "info", LogFormat: "xml"}, &TestLogBuffer{})
	require.Error(t, err)
}

func TestContextLogger(t *testing.T) {
	t.Parallel()

	l, buf := GetTestLogger(t)
	fallback, _ := GetTestLogger(t)

	assert.Same(t, fallback, FromContextOrDefault(context.Background(), fallback))
	assert.NotNil(t, FromContext(context.Background()))

	ctx := WithLogger(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))
	assert.Same(t, l, FromContextOrDefault(ctx, fallback))

	FromContext(ctx).Info("from context")
	AssertLogContains(t, buf, "from context")
}
