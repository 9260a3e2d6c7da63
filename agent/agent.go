// Package agent implements the per-topic query pipeline: classify the query,
// fetch graph context for the agent's fixed topic, build a prompt and fan out
// to every configured generative backend, then merge the sections in declared
// order.
package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/garyhost2/Strong-gradient/classify"
	"github.com/garyhost2/Strong-gradient/graph"
	"github.com/garyhost2/Strong-gradient/logging"
	"github.com/garyhost2/Strong-gradient/model"
)

const (
	// DefaultContextLimit bounds the graph read per invocation.
	DefaultContextLimit = 5
	// DefaultGenerationTimeout bounds each backend call so a hung backend
	// cannot block the join indefinitely.
	DefaultGenerationTimeout = 2 * time.Minute

	noContextFallbackFormat = "No relevant information found for '%s'."
	generationFallback      = "An error occurred while generating the analysis. Please try again later."
)

// Config carries the per-topic configuration record of one Agent.
type Config struct {
	// Topic is the fixed topic this agent fetches context for.
	Topic string
	// ContextLimit caps the number of context records per query.
	ContextLimit int
	// Sampling options sent identically to every backend.
	Sampling model.Options
	// GenerationTimeout bounds every individual backend call. A timeout
	// surfaces as a GenerationError and drops only that backend's section.
	GenerationTimeout time.Duration
	// Logger defaults to NoOp.
	Logger logging.Logger
}

// Agent answers queries for one fixed topic. It is immutable after
// construction and therefore reentrant: one instance serves any number of
// concurrent invocations, and no state persists between them.
type Agent struct {
	name       string
	cfg        Config
	classifier classify.Classifier
	contexts   graph.ContextProvider
	backends   []model.Backend
}

// New constructs an Agent. The backend order given here is the section order
// of every merged answer the agent produces.
func New(name string, classifier classify.Classifier, contexts graph.ContextProvider, backends []model.Backend, cfg Config) (*Agent, error) {
	if name == "" {
		return nil, errors.New("agent name must not be empty")
	}
	if cfg.Topic == "" {
		return nil, errors.New("agent topic must not be empty")
	}
	if classifier == nil {
		return nil, errors.New("classifier must not be nil")
	}
	if contexts == nil {
		return nil, errors.New("context provider must not be nil")
	}
	if len(backends) == 0 {
		return nil, errors.New("at least one backend is required")
	}
	if cfg.ContextLimit <= 0 {
		cfg.ContextLimit = DefaultContextLimit
	}
	if cfg.Sampling == (model.Options{}) {
		cfg.Sampling = model.DefaultOptions()
	}
	if cfg.GenerationTimeout == 0 {
		cfg.GenerationTimeout = DefaultGenerationTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NoOpLogger{}
	}

	bs := make([]model.Backend, len(backends))
	copy(bs, backends)

	return &Agent{
		name:       name,
		cfg:        cfg,
		classifier: classifier,
		contexts:   contexts,
		backends:   bs,
	}, nil
}

// Name returns the agent's routing name.
func (a *Agent) Name() string { return a.name }

// Topic returns the agent's fixed topic.
func (a *Agent) Topic() string { return a.cfg.Topic }

// HandleQuery runs the full pipeline for one query and returns the merged
// answer text.
//
// Classifier failures propagate: substituting a generic label would risk
// answering under the wrong topic. A graph outage degrades to the no-context
// fallback with the true cause logged. Backend failures drop only their own
// section; when every backend fails a generic apology is returned and the
// causes are logged here, at detection time.
func (a *Agent) HandleQuery(ctx context.Context, query string) (string, error) {
	invocationID := uuid.NewString()
	log := a.cfg.Logger

	classifyStart := time.Now()
	classification, err := a.classifier.Classify(ctx, query)
	if err != nil {
		return "", fmt.Errorf("agent %s: %w", a.name, err)
	}
	if dl, ok := log.(logging.DomainLogger); ok {
		dl.LogClassification(classification.Label, classification.Score, time.Since(classifyStart))
	} else {
		log.Debug("query classified",
			"agent", a.name, "invocation_id", invocationID,
			"label", classification.Label, "score", classification.Score)
	}

	items, err := a.fetchContext(ctx, invocationID)
	if err != nil {
		return "", fmt.Errorf("agent %s: %w", a.name, err)
	}
	if len(items) == 0 {
		log.Info("no context found, skipping generation",
			"agent", a.name, "invocation_id", invocationID, "topic", a.cfg.Topic)
		return fmt.Sprintf(noContextFallbackFormat, classification.Label), nil
	}

	prompt := BuildPrompt(classification, items)
	results := a.fanOut(ctx, invocationID, prompt)

	merged, ok := mergeSections(a.backends, results)
	if !ok {
		for i, res := range results {
			log.Error("backend failed",
				"agent", a.name, "invocation_id", invocationID,
				"backend", a.backends[i].Name, "error", res.err.Error())
		}
		return generationFallback, nil
	}
	return merged, nil
}

// fetchContext reads context for the agent's topic, degrading a store outage
// to an empty result. Any other error is a caller bug and propagates.
func (a *Agent) fetchContext(ctx context.Context, invocationID string) ([]graph.ContextItem, error) {
	items, err := a.contexts.FetchContext(ctx, a.cfg.Topic, a.cfg.ContextLimit)
	if err != nil {
		var unavailable *graph.UnavailableError
		if errors.As(err, &unavailable) {
			a.cfg.Logger.Error("graph store unavailable, degrading to empty context",
				"agent", a.name, "invocation_id", invocationID,
				"topic", a.cfg.Topic, "error", err.Error())
			return nil, nil
		}
		return nil, err
	}
	return items, nil
}

// generation is the settled outcome of one backend call.
type generation struct {
	text string
	err  error
}

// fanOut invokes every backend concurrently with the identical prompt and
// sampling options, bounding each call with the configured timeout. Results
// land in declared backend order regardless of completion order.
func (a *Agent) fanOut(ctx context.Context, invocationID, prompt string) []generation {
	results := make([]generation, len(a.backends))

	var wg sync.WaitGroup
	for i, backend := range a.backends {
		wg.Add(1)
		go func(slot int, b model.Backend) {
			defer wg.Done()

			callCtx := ctx
			if a.cfg.GenerationTimeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(ctx, a.cfg.GenerationTimeout)
				defer cancel()
			}

			start := time.Now()
			text, err := b.Gen.Generate(callCtx, prompt, a.cfg.Sampling)
			if err != nil {
				var genErr *model.GenerationError
				if !errors.As(err, &genErr) {
					err = &model.GenerationError{Backend: b.Name, Cause: err}
				}
			}
			if dl, ok := a.cfg.Logger.(logging.DomainLogger); ok {
				dl.LogLLMCall(b.Name, time.Since(start), err == nil, err)
			} else {
				a.cfg.Logger.Debug("backend call settled",
					"agent", a.name, "invocation_id", invocationID,
					"backend", b.Name, "duration", time.Since(start), "success", err == nil)
			}

			results[slot] = generation{text: text, err: err}
		}(i, backend)
	}
	wg.Wait()

	return results
}

// mergeSections concatenates the successful sections in declared backend
// order, a blank line between sections. ok is false when no backend
// succeeded.
func mergeSections(backends []model.Backend, results []generation) (string, bool) {
	var merged string
	found := false
	for i, res := range results {
		if res.err != nil {
			continue
		}
		section := fmt.Sprintf("**%s**:\n%s", backends[i].Name, res.text)
		if found {
			merged += "\n\n"
		}
		merged += section
		found = true
	}
	return merged, found
}
