package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(t *testing.T) (*DialogueLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LogLevelDebug, Format: "json", Output: &buf})
	return logger, &buf
}

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestDialogueLogger_ArgsBecomeAttrs(t *testing.T) {
	logger, buf := newBufferLogger(t)
	logger.WithComponent("planner").Info("planner.transition", "from", "COLLECTING", "to", "SEARCHING")

	entry := decodeEntry(t, buf)
	assert.Equal(t, "planner.transition", entry["msg"])
	assert.Equal(t, "planner", entry["component"])
	assert.Equal(t, "COLLECTING", entry["from"])
	assert.Equal(t, "SEARCHING", entry["to"])
}

func TestDialogueLogger_LogToolCall(t *testing.T) {
	logger, buf := newBufferLogger(t)
	logger.LogToolCall("venue_search", 40*time.Millisecond, true, nil)

	entry := decodeEntry(t, buf)
	assert.Equal(t, "Tool execution completed", entry["msg"])
	assert.Equal(t, "venue_search", entry["tool_name"])
	assert.Equal(t, true, entry["success"])
}

func TestDialogueLogger_LogToolCallFailure(t *testing.T) {
	logger, buf := newBufferLogger(t)
	logger.LogToolCall("free_busy", time.Millisecond, false, errors.New("503 backend"))

	entry := decodeEntry(t, buf)
	assert.Equal(t, "Tool execution failed", entry["msg"])
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "503 backend", entry["error"])
}

func TestDialogueLogger_LogModelCall(t *testing.T) {
	logger, buf := newBufferLogger(t)
	logger.LogModelCall("gpt-4o", 120*time.Millisecond, true, nil)

	entry := decodeEntry(t, buf)
	assert.Equal(t, "Model call completed", entry["msg"])
	assert.Equal(t, "gpt-4o", entry["model"])
	assert.Equal(t, true, entry["success"])
}

func TestDialogueLogger_LogTransition(t *testing.T) {
	logger, buf := newBufferLogger(t)
	logger.WithSession("s1").LogTransition("AWAITING_CONFIRMATION", "BOOKING", 4)

	entry := decodeEntry(t, buf)
	assert.Equal(t, "Planner transition", entry["msg"])
	assert.Equal(t, "s1", entry["session_id"])
	assert.Equal(t, "AWAITING_CONFIRMATION", entry["from"])
	assert.Equal(t, "BOOKING", entry["to"])
	assert.Equal(t, float64(4), entry["turn"])
}
