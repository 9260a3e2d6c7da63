package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/garyhost2/Strong-gradient/classify"
	"github.com/garyhost2/Strong-gradient/graph"
	"github.com/garyhost2/Strong-gradient/model"
)

// FixedClassifier returns the same classification for every query, or a fixed
// error. It records the queries it receives.
type FixedClassifier struct {
	Result classify.Classification
	Err    error

	mu      sync.Mutex
	queries []string
}

// NewFixedClassifier builds a classifier that always answers with label/score.
func NewFixedClassifier(label string, score float64) *FixedClassifier {
	return &FixedClassifier{Result: classify.Classification{Label: label, Score: score}}
}

// Classify implements classify.Classifier.
func (c *FixedClassifier) Classify(_ context.Context, query string) (classify.Classification, error) {
	c.mu.Lock()
	c.queries = append(c.queries, query)
	c.mu.Unlock()
	if c.Err != nil {
		return classify.Classification{}, c.Err
	}
	return c.Result, nil
}

// Queries returns a copy of every query received so far.
func (c *FixedClassifier) Queries() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.queries))
	copy(out, c.queries)
	return out
}

// ContextRequest captures the arguments of one FetchContext call.
type ContextRequest struct {
	Topic string
	Limit int
}

// StaticContextProvider serves canned context items, or a fixed error, and
// records every request.
type StaticContextProvider struct {
	Items []graph.ContextItem
	Err   error

	mu       sync.Mutex
	requests []ContextRequest
}

// NewStaticContextProvider builds a provider serving the given items.
func NewStaticContextProvider(items ...graph.ContextItem) *StaticContextProvider {
	return &StaticContextProvider{Items: items}
}

// FetchContext implements graph.ContextProvider.
func (p *StaticContextProvider) FetchContext(_ context.Context, topic string, limit int) ([]graph.ContextItem, error) {
	p.mu.Lock()
	p.requests = append(p.requests, ContextRequest{Topic: topic, Limit: limit})
	p.mu.Unlock()
	if p.Err != nil {
		return nil, p.Err
	}
	if limit < len(p.Items) {
		return p.Items[:limit], nil
	}
	return p.Items, nil
}

// Requests returns a copy of every request received so far.
func (p *StaticContextProvider) Requests() []ContextRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ContextRequest, len(p.requests))
	copy(out, p.requests)
	return out
}

// SlowGenerator delays before delegating, to make completion order diverge
// from declared order in tests.
type SlowGenerator struct {
	Delay time.Duration
	Inner model.Generator
}

// Generate implements model.Generator.
func (g *SlowGenerator) Generate(ctx context.Context, prompt string, opts model.Options) (string, error) {
	select {
	case <-time.After(g.Delay):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return g.Inner.Generate(ctx, prompt, opts)
}
