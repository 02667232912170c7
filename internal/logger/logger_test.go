package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/botpanel/internal/config"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	testCases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range testCases {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNewJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := New(&buf, "warn", true)
	log.Info("dropped")
	log.Warn("kept", "component", "test")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var record map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &record))
	assert.Equal(t, "kept", record["msg"])
	assert.Equal(t, "test", record["component"])
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{name: "short", input: "abc", maxLen: 10, want: "abc"},
		{name: "exact", input: "abcde", maxLen: 5, want: "abcde"},
		{name: "cut", input: "abcdefgh", maxLen: 6, want: "abc..."},
		{name: "tiny limit", input: "abcdefgh", maxLen: 2, want: "..."},
		{name: "multibyte fits", input: "ЖЖЖЖЖЖ", maxLen: 6, want: "ЖЖЖЖЖЖ"},
		{name: "multibyte cut", input: "ЖЖЖЖЖЖЖЖ", maxLen: 6, want: "ЖЖЖ..."},
		{name: "mixed cut", input: "añ日本語テキスト", maxLen: 7, want: "añ日本..."},
		{name: "emoji", input: "🙂🙂🙂🙂🙂", maxLen: 4, want: "🙂..."},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Truncate(tc.input, tc.maxLen)
			assert.Equal(t, tc.want, got)
			assert.True(t, utf8.ValidString(got))
			assert.LessOrEqual(t, utf8.RuneCountInString(got), max(tc.maxLen, 3))
		})
	}
}

func TestNewLoggerWritesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "panel.log")
	log := NewLogger(config.LoggerConfig{Level: "info", File: path, MaxSizeMB: 1})
	log.Info("written to file", "component", "test")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
	assert.Contains(t, string(data), "component=test")
}
