package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFileMode(t *testing.T) {
	var m FileMode
	require.NoError(t, m.Set("rotate"))
	assert.Equal(t, FileModeRotate, m)
	require.NoError(t, m.Set(""))
	assert.Equal(t, FileModeTruncate, m)
	assert.Error(t, m.Set("bogus"))
}

func TestNewWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "nibs.log")
	for _, mode := range []FileMode{FileModeTruncate, FileModeAppend} {
		l, err := New(Config{Level: zap.InfoLevel, Path: path, Mode: mode})
		require.NoError(t, err)
		l.Debug("hidden")
		l.Info("encoded", zap.Int("bytes", 4))
		require.NoError(t, l.Sync())
	}
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 2)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &rec))
	assert.Equal(t, "encoded", rec["msg"])
	assert.Equal(t, float64(4), rec["bytes"])
}
