package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyhost2/Strong-gradient/agent"
	"github.com/garyhost2/Strong-gradient/classify"
	"github.com/garyhost2/Strong-gradient/graph"
	"github.com/garyhost2/Strong-gradient/internal/testutil"
	"github.com/garyhost2/Strong-gradient/model"
	"github.com/garyhost2/Strong-gradient/router"
)

func items(names ...string) []graph.ContextItem {
	out := make([]graph.ContextItem, len(names))
	for i, n := range names {
		out[i] = graph.ContextItem{"n": map[string]any{"name": n}}
	}
	return out
}

type agentSpec struct {
	name    string
	topic   string
	items   []graph.ContextItem
	backend model.Generator
}

func buildAgent(t *testing.T, spec agentSpec) *agent.Agent {
	t.Helper()
	gen := spec.backend
	if gen == nil {
		gen = model.NewMockGenerator(spec.name)
	}
	a, err := agent.New(spec.name,
		testutil.NewFixedClassifier("Neutral", 0.8),
		testutil.NewStaticContextProvider(spec.items...),
		[]model.Backend{{Name: spec.name + "-backend", Gen: gen}},
		agent.Config{Topic: spec.topic})
	require.NoError(t, err)
	return a
}

func buildOrchestrator(t *testing.T, agents router.Agents) *Orchestrator {
	t.Helper()
	rtr, err := router.NewDefault(agents)
	require.NoError(t, err)
	o, err := New(rtr)
	require.NoError(t, err)
	return o
}

func defaultAgents(t *testing.T) router.Agents {
	t.Helper()
	return router.Agents{
		Finance:          buildAgent(t, agentSpec{name: "finance", topic: "finance", items: items("aave")}),
		Web3Development:  buildAgent(t, agentSpec{name: "web3_development", topic: "web3", items: items("geth")}),
		Sustainability:   buildAgent(t, agentSpec{name: "sustainability", topic: "sustainability", items: items("chia")}),
		GeneralKnowledge: buildAgent(t, agentSpec{name: "general_knowledge", topic: "general", items: items("misc")}),
	}
}

func TestAnswer_RoutesToFinance(t *testing.T) {
	o := buildOrchestrator(t, defaultAgents(t))

	answer, err := o.Answer(context.Background(), "Show me a DeFi protocol's TVL")
	require.NoError(t, err)
	assert.Contains(t, answer, "**finance-backend**:")
	assert.NotContains(t, answer, "general_knowledge-backend")
}

func TestAnswer_FallsBackToGeneral(t *testing.T) {
	o := buildOrchestrator(t, defaultAgents(t))

	answer, err := o.Answer(context.Background(), "tell me something interesting")
	require.NoError(t, err)
	assert.Contains(t, answer, "**general_knowledge-backend**:")
}

func TestAnswer_AgentFallbackFillsOwnSlotOnly(t *testing.T) {
	agents := defaultAgents(t)
	// Finance agent's only backend fails; its slot carries the apology while
	// the query still succeeds.
	failing := model.NewMockGenerator("down")
	failing.FailWith(fmt.Errorf("unreachable"))
	agents.Finance = buildAgent(t, agentSpec{name: "finance", topic: "finance", items: items("aave"), backend: failing})
	o := buildOrchestrator(t, agents)

	answer, err := o.Answer(context.Background(), "protocol rankings")
	require.NoError(t, err)
	assert.Equal(t, "An error occurred while generating the analysis. Please try again later.", answer)
}

func TestAnswer_ClassifierErrorAborts(t *testing.T) {
	agents := defaultAgents(t)

	classifier := testutil.NewFixedClassifier("x", 0)
	classifier.Err = &classify.InferenceError{Model: "cryptobert", Cause: fmt.Errorf("broken")}
	broken, err := agent.New("finance", classifier,
		testutil.NewStaticContextProvider(items("aave")...),
		[]model.Backend{{Name: "A", Gen: model.NewMockGenerator("a")}},
		agent.Config{Topic: "finance"})
	require.NoError(t, err)
	agents.Finance = broken
	o := buildOrchestrator(t, agents)

	_, err = o.Answer(context.Background(), "protocol rankings")
	require.Error(t, err)

	var infErr *classify.InferenceError
	assert.True(t, errors.As(err, &infErr))
}

// multiRouter selects a fixed agent sequence regardless of query text.
type multiRouter struct {
	agents []*agent.Agent
}

func (r *multiRouter) Route(string) []*agent.Agent { return r.agents }

func TestAnswer_JoinsInSelectionOrder(t *testing.T) {
	// Two selected agents, the first one slower than the second: completion
	// order must not leak into the answer.
	slowGen := &testutil.SlowGenerator{Delay: 50 * time.Millisecond, Inner: model.NewMockGenerator("slow")}
	first := buildAgent(t, agentSpec{name: "first", topic: "alpha", items: items("a"), backend: slowGen})
	second := buildAgent(t, agentSpec{name: "second", topic: "beta", items: items("b")})

	o, err := New(&multiRouter{agents: []*agent.Agent{first, second}})
	require.NoError(t, err)

	answer, err := o.Answer(context.Background(), "anything")
	require.NoError(t, err)

	idxFirst := strings.Index(answer, "**first-backend**:")
	idxSecond := strings.Index(answer, "**second-backend**:")
	require.GreaterOrEqual(t, idxFirst, 0)
	require.Greater(t, idxSecond, idxFirst)
	assert.Contains(t, answer, "\n\n**second-backend**:")
}

func TestAnswer_SiblingSurvivesFailedAgent(t *testing.T) {
	// One agent degrades to its apology; the sibling's slot is unaffected.
	failing := model.NewMockGenerator("down")
	failing.FailWith(fmt.Errorf("unreachable"))
	broken := buildAgent(t, agentSpec{name: "broken", topic: "alpha", items: items("a"), backend: failing})
	healthy := buildAgent(t, agentSpec{name: "healthy", topic: "beta", items: items("b")})

	o, err := New(&multiRouter{agents: []*agent.Agent{broken, healthy}})
	require.NoError(t, err)

	answer, err := o.Answer(context.Background(), "anything")
	require.NoError(t, err)
	assert.Contains(t, answer, "An error occurred while generating the analysis.")
	assert.Contains(t, answer, "**healthy-backend**:")
}

func TestAnswer_SustainabilityScenario(t *testing.T) {
	agents := defaultAgents(t)
	o := buildOrchestrator(t, agents)

	answer, err := o.Answer(context.Background(), "What are the top blockchain projects for sustainability?")
	require.NoError(t, err)
	assert.Contains(t, answer, "**sustainability-backend**:")
}

func TestNew_RequiresRouter(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}
