package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		mu.Lock()
		defaultLogger = nil
		mu.Unlock()
	})
	return &buf
}

func lines(buf *bytes.Buffer) []map[string]interface{} {
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(line), &m); err == nil {
			out = append(out, m)
		}
	}
	return out
}

func TestLevelFiltering(t *testing.T) {
	buf := captureLogs(t)
	SetLevel(WARN)

	Debug("hidden")
	Infof("hidden %d", 1)
	Warnf("shown %d", 2)
	Error("also shown")

	entries := lines(buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "warn", entries[0]["level"])
	assert.Equal(t, "shown 2", entries[0]["message"])
	assert.Equal(t, "error", entries[1]["level"])
}

func TestRequestFields(t *testing.T) {
	buf := captureLogs(t)
	SetLevel(DEBUG)

	Request(http.MethodPost, "/", http.StatusOK, 12*time.Millisecond, "req-1")

	entries := lines(buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "POST", entries[0]["method"])
	assert.Equal(t, float64(200), entries[0]["status"])
	assert.Equal(t, "req-1", entries[0]["request_id"])
	assert.Contains(t, entries[0], "caller")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel(" Warning "))
	assert.Equal(t, ERROR, ParseLevel("ERROR"))
	assert.Equal(t, INFO, ParseLevel(""))
}
