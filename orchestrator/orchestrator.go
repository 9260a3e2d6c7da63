// Package orchestrator is the top-level driver of the query pipeline: it
// routes a query, invokes every selected agent concurrently, and joins the
// answers strictly in selection order.
package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/garyhost2/Strong-gradient/agent"
	"github.com/garyhost2/Strong-gradient/logging"
)

// Router selects the agents that should answer a query, in priority order.
// The returned slice is never empty. *router.Router satisfies this.
type Router interface {
	Route(query string) []*agent.Agent
}

// Orchestrator answers queries by fanning out to routed agents. It is
// immutable after construction and safe for concurrent use.
type Orchestrator struct {
	router Router
	logger logging.Logger
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithLogger overrides the default NoOp logger.
func WithLogger(logger logging.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// New constructs an Orchestrator over a routing table.
func New(rtr Router, opts ...Option) (*Orchestrator, error) {
	if rtr == nil {
		return nil, errors.New("router must not be nil")
	}
	o := &Orchestrator{router: rtr, logger: logging.NoOpLogger{}}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Answer routes the query, runs every selected agent concurrently and joins
// the per-agent answers in selection order with blank-line separators.
//
// An agent that degrades to its own fallback text fills only its own slot.
// A classifier failure anywhere aborts the whole query: the first such error
// is returned after all agents settle.
func (o *Orchestrator) Answer(ctx context.Context, query string) (string, error) {
	queryID := uuid.NewString()
	start := time.Now()

	selected := o.router.Route(query)
	names := make([]string, len(selected))
	for i, a := range selected {
		names[i] = a.Name()
	}
	o.logger.Info("query routed", "query_id", queryID, "agents", strings.Join(names, ","))

	answers := make([]string, len(selected))
	errs := make([]error, len(selected))

	var wg sync.WaitGroup
	for i, a := range selected {
		wg.Add(1)
		go func(slot int, a *agent.Agent) {
			defer wg.Done()
			answers[slot], errs[slot] = a.HandleQuery(ctx, query)
		}(i, a)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			o.logger.Error("agent failed", "query_id", queryID, "agent", names[i], "error", err.Error())
			return "", err
		}
	}

	final := strings.Join(answers, "\n\n")
	o.logger.Info("query answered", "query_id", queryID, "duration", time.Since(start))
	return final, nil
}
