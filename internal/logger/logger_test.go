// ABOUTME: Tests for logger construction and level parsing
// ABOUTME: Verifies output lands in the config directory and honors the level

package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"WARN":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"chatty":  zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestNew_WritesJSONToConfigDir(t *testing.T) {
	dir := t.TempDir()
	l, err := New("info", "json", dir)
	require.NoError(t, err)

	l.Named("session").Info("signed in")
	l.Debug("hidden")
	require.NoError(t, Sync(l))

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "signed in", entry["msg"])
	assert.Equal(t, "session", entry["logger"])
	assert.Equal(t, "info", entry["level"])
}

func TestNew_EmptyDirIsNop(t *testing.T) {
	l, err := New("debug", "text", "")
	require.NoError(t, err)
	l.Info("nowhere")
	assert.NoError(t, Sync(nil))
}
