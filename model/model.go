package model

import (
	"context"
	"fmt"
	"sync"
)

// Options carries the sampling parameters sent with every generation call.
// They are fixed per deployment: every backend of an agent receives identical
// options for a given query.
type Options struct {
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// DefaultOptions mirrors the deployment defaults of the original system.
func DefaultOptions() Options {
	return Options{Temperature: 0.7, MaxTokens: 1024}
}

// Generator is the minimal interface required to drive text generation.
// A single attempt per call: implementations never retry internally, and all
// failures (unreachable backend, API error, deadline) surface as a
// *GenerationError.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}

// Backend pairs a display name with a Generator. The name labels the
// backend's section in merged answers.
type Backend struct {
	Name string
	Gen  Generator
}

// GenerationError indicates one backend call failed. It degrades only the
// affected backend's section of the merged answer.
type GenerationError struct {
	Backend string
	Cause   error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed on backend %q: %v", e.Backend, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *GenerationError) Unwrap() error { return e.Cause }

// MockGenerator is a lightweight in-memory Generator useful for tests &
// examples. It records every prompt it receives and replays canned responses.
type MockGenerator struct {
	name      string
	mu        sync.Mutex
	responses map[string]string
	err       error
	prompts   []string
}

// NewMockGenerator constructs a MockGenerator identified by name.
func NewMockGenerator(name string) *MockGenerator {
	return &MockGenerator{name: name, responses: make(map[string]string)}
}

// AddResponse registers a deterministic canned completion for a prompt.
func (m *MockGenerator) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// FailWith makes every subsequent call fail with the given cause.
func (m *MockGenerator) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Prompts returns a copy of every prompt received so far.
func (m *MockGenerator) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// CallCount returns how many times Generate has been invoked.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// Generate implements Generator.
func (m *MockGenerator) Generate(ctx context.Context, prompt string, _ Options) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	err := m.err
	response, ok := m.responses[prompt]
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", &GenerationError{Backend: m.name, Cause: err}
	}
	if err != nil {
		return "", &GenerationError{Backend: m.name, Cause: err}
	}
	if !ok {
		response = fmt.Sprintf("Mock response to: %s", prompt)
	}
	return response, nil
}
