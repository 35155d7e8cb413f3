package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"Error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestSetLevelAppliesToDerivedLoggers(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "INFO", Format: "json"}, WithOutput(&buf))
	child := log.With("component", "test")

	child.DebugContext(context.Background(), "hidden")
	assert.Zero(t, buf.Len())

	log.SetLevel("DEBUG")
	assert.Equal(t, slog.LevelDebug, child.Level())

	child.DebugContextf(context.Background(), "shown %d", 1)
	require.NotZero(t, buf.Len())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown 1", entry["msg"])
	assert.Equal(t, "test", entry["component"])
}

func TestTimeFormatUnix(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "INFO", TimeFormat: "Unix"}, WithOutput(&buf))
	log.Info("tick")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	_, isNumber := entry["time"].(float64)
	assert.True(t, isNumber)
}

func TestAddSource(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "INFO", AddSource: true}, WithOutput(&buf))
	log.Info("where")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	source, ok := entry["source"].(map[string]any)
	require.True(t, ok, "source attribute missing: %s", buf.String())
	assert.Contains(t, source["file"], "logger_test.go")
}
