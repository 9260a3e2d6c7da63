package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LogLevelDebug.String())
	assert.Equal(t, "INFO", LogLevelInfo.String())
	assert.Equal(t, "WARN", LogLevelWarn.String())
	assert.Equal(t, "ERROR", LogLevelError.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestSlogAdapter_WritesStructuredRecords(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(slog.New(slog.NewJSONHandler(&buf, nil)))

	adapter.Info("query routed", "agents", "finance")

	out := buf.String()
	assert.Contains(t, out, "query routed")
	assert.Contains(t, out, `"agents":"finance"`)
}

func TestGraphRAGLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelError, Format: "json", Output: &buf})

	l.Info("hidden")
	assert.Empty(t, buf.String())

	l.Error("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestGraphRAGLogger_ContextualHelpers(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "json", Output: &buf}).
		WithComponent("agent").
		WithInvocation("inv-1").
		WithContext("topic", "finance")

	l.Info("classified")

	out := buf.String()
	assert.Contains(t, out, `"component":"agent"`)
	assert.Contains(t, out, `"invocation_id":"inv-1"`)
	assert.Contains(t, out, `"topic":"finance"`)
}

func TestGraphRAGLogger_DomainHelpers(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "json", Output: &buf})

	l.LogClassification("Bullish", 0.93, 5*time.Millisecond)
	assert.Contains(t, buf.String(), "Query classified")
	assert.Contains(t, buf.String(), `"label":"Bullish"`)
	buf.Reset()

	l.LogGraphQuery("finance", 3, time.Millisecond, nil)
	assert.Contains(t, buf.String(), "Graph context fetched")
	buf.Reset()

	l.LogGraphQuery("finance", 0, time.Millisecond, fmt.Errorf("down"))
	assert.Contains(t, buf.String(), "Graph context fetch failed")
	buf.Reset()

	l.LogLLMCall("qwen2.5", time.Second, true, nil)
	assert.Contains(t, buf.String(), "LLM call completed")
	buf.Reset()

	l.LogLLMCall("qwen2.5", time.Second, false, fmt.Errorf("timeout"))
	assert.Contains(t, buf.String(), "LLM call failed")
}

// Variadic args must land as structured fields, never be folded into the
// message text.
func TestGraphRAGLogger_KeyValueArgs(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "json", Output: &buf})

	l.Info("query routed", "query_id", "q-1", "agents", "finance")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "query routed", record["msg"])
	assert.Equal(t, "q-1", record["query_id"])
	assert.Equal(t, "finance", record["agents"])
	assert.NotContains(t, record["msg"], "EXTRA")
}

func TestGraphRAGLogger_ImplementsDomainLogger(t *testing.T) {
	var l Logger = NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "json", Output: &bytes.Buffer{}})
	_, ok := l.(DomainLogger)
	assert.True(t, ok)
}

func TestNoOpLogger(t *testing.T) {
	var l Logger = NoOpLogger{}
	l.Debug("a")
	l.Info("b")
	l.Warn("c")
	l.Error("d")
}
