package observability

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestLoggerWritesEventAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, "info")

	logger.Info("user_registered", map[string]any{"username": "alice"})

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "info", lines[0]["level"])
	assert.Equal(t, "user_registered", lines[0]["message"])
	assert.Equal(t, "alice", lines[0]["username"])
	assert.Contains(t, lines[0], "time")
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, "warn")

	logger.Info("dropped", nil)
	logger.Warn("kept_warn", nil)
	logger.Error("kept_error", map[string]any{"error": "boom"})

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "kept_warn", lines[0]["message"])
	assert.Equal(t, "kept_error", lines[1]["message"])
	assert.Equal(t, "boom", lines[1]["error"])
}

func TestLoggerWithCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, "debug").With(map[string]any{"component": "auth"})

	logger.Info("login_failed", map[string]any{"username": "bob"})

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "auth", lines[0]["component"])
	assert.Equal(t, "bob", lines[0]["username"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
	assert.Equal(t, zerolog.DebugLevel, ParseLevel(" DEBUG "))
	assert.Equal(t, zerolog.Disabled, ParseLevel("disabled"))
}

func TestNopLoggerWritesNothing(t *testing.T) {
	logger := NewNopLogger()
	assert.NotPanics(t, func() {
		logger.Error("ignored", map[string]any{"k": "v"})
	})
}
