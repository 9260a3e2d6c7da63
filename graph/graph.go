// Package graph exposes read-only access to the knowledge graph the query
// orchestrator draws context from. The core treats the store as "topic in,
// ordered row-set out"; the records themselves stay opaque.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
)

// ContextItem is one opaque record retrieved from the graph store for a
// topic. The orchestrator never interprets the schema beyond rendering the
// record into prompt text.
type ContextItem map[string]any

// Render produces a deterministic textual form of the item for prompt
// assembly. Identical items always render identically (JSON object keys are
// emitted in sorted order).
func (i ContextItem) Render() string {
	b, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", map[string]any(i))
	}
	return string(b)
}

// ContextProvider fetches up to limit context records covering a topic. The
// returned slice may be empty; truncation happens at the store layer.
// Implementations must be safe for concurrent use, since multiple agent
// invocations may be in flight at once.
type ContextProvider interface {
	FetchContext(ctx context.Context, topic string, limit int) ([]ContextItem, error)
}

// UnavailableError indicates the graph store could not serve the read. Agents
// degrade it to "no context" rather than failing the query, logging the true
// cause.
type UnavailableError struct {
	Cause error
}

// Error implements the error interface.
func (e *UnavailableError) Error() string {
	return fmt.Sprintf("graph store unavailable: %v", e.Cause)
}

// Unwrap returns the underlying cause.
func (e *UnavailableError) Unwrap() error { return e.Cause }
