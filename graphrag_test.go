package graphrag

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyhost2/Strong-gradient/config"
	"github.com/garyhost2/Strong-gradient/graph"
	"github.com/garyhost2/Strong-gradient/internal/testutil"
	"github.com/garyhost2/Strong-gradient/logging"
	"github.com/garyhost2/Strong-gradient/model"
)

func newTestSystem(t *testing.T) *GraphRAG {
	t.Helper()

	provider := testutil.NewStaticContextProvider(
		graph.ContextItem{"n": map[string]any{"name": "chia", "score": 0.9}},
	)

	g, err := New(context.Background(), config.Default(),
		WithClassifier(testutil.NewFixedClassifier("Bullish", 0.93)),
		WithContextProvider(provider),
		WithBackends(
			model.Backend{Name: "Primary", Gen: model.NewMockGenerator("primary")},
			model.Backend{Name: "Secondary", Gen: model.NewMockGenerator("secondary")},
		),
		WithLogger(logging.NoOpLogger{}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close(context.Background()) })
	return g
}

func TestAnswer_EndToEnd(t *testing.T) {
	g := newTestSystem(t)

	answer, err := g.Answer(context.Background(), "Show me a DeFi protocol's TVL")
	require.NoError(t, err)

	idxPrimary := strings.Index(answer, "**Primary**:")
	idxSecondary := strings.Index(answer, "**Secondary**:")
	require.GreaterOrEqual(t, idxPrimary, 0)
	assert.Greater(t, idxSecondary, idxPrimary)
}

func TestAnswer_UnmatchedQueryUsesGeneralAgent(t *testing.T) {
	g := newTestSystem(t)

	answer, err := g.Answer(context.Background(), "what time is it?")
	require.NoError(t, err)
	assert.NotEmpty(t, answer)
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.MaxTokens = 0

	_, err := New(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestSectionLabel(t *testing.T) {
	assert.Equal(t, "Qwen 2.5 Analysis", sectionLabel("qwen2.5"))
	assert.Equal(t, "DeepSeek R1 Insights", sectionLabel("deepseek-r1"))
	assert.Equal(t, "llama3 Analysis", sectionLabel("llama3"))
}

func TestClose_Idempotent(t *testing.T) {
	g := newTestSystem(t)
	assert.NoError(t, g.Close(context.Background()))
	assert.NoError(t, g.Close(context.Background()))
}
