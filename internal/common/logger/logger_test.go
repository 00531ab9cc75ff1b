package logger

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readLines(t *testing.T, path string) []map[string]interface{} {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(string(raw)), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestNew_JSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triage.log")
	zl := New("debug", "json", path)

	log := Component(NewZapAdapter(zl), "diagnosis-engine")
	log.Debug("ticket diagnosed", map[string]interface{}{"ticketId": "t-1", "severity": 4})
	log.WithError(errors.New("boom")).Warn("search index failed", nil)
	require.NoError(t, zl.Sync())

	entries := readLines(t, path)
	require.Len(t, entries, 2)
	assert.Equal(t, "ticket diagnosed", entries[0]["msg"])
	assert.Equal(t, "diagnosis-engine", entries[0]["component"])
	assert.Equal(t, "t-1", entries[0]["ticketId"])
	assert.Contains(t, entries[0], "timestamp")
	assert.Equal(t, "boom", entries[1]["error"])
}

func TestNew_UnknownLevelDefaultsToInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triage.log")
	zl := New("verbose", "json", path)

	log := NewZapAdapter(zl)
	log.Debug("hidden", nil)
	log.Info("shown", nil)
	require.NoError(t, zl.Sync())

	entries := readLines(t, path)
	require.Len(t, entries, 1)
	assert.Equal(t, "shown", entries[0]["msg"])
}

func TestComponent_NilLoggerIsSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		Component(nil, "x").Info("ignored", map[string]interface{}{"k": "v"})
	})
}
