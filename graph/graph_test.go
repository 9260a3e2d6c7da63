package graph

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextItem_RenderIsDeterministic(t *testing.T) {
	item := ContextItem{
		"node":  map[string]any{"name": "Aave", "tvl": 12.5},
		"topic": map[string]any{"name": "finance"},
	}

	first := item.Render()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, item.Render())
	}
	assert.Contains(t, first, `"Aave"`)
	assert.Contains(t, first, `"finance"`)
}

func TestContextItem_RenderSortsKeys(t *testing.T) {
	a := ContextItem{"b": 1, "a": 2, "c": 3}
	b := ContextItem{"c": 3, "a": 2, "b": 1}
	assert.Equal(t, a.Render(), b.Render())
}

func TestUnavailableError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := &UnavailableError{Cause: cause}

	assert.Contains(t, err.Error(), "graph store unavailable")
	assert.ErrorIs(t, err, cause)

	var unavailable *UnavailableError
	assert.True(t, errors.As(fmt.Errorf("fetch: %w", err), &unavailable))
}

func TestNeo4jProvider_FetchContextRejectsNonPositiveLimit(t *testing.T) {
	p := NewNeo4jProvider(nil)

	for _, limit := range []int{0, -1, -5} {
		_, err := p.FetchContext(context.Background(), "finance", limit)
		require.Error(t, err)

		var unavailable *UnavailableError
		assert.False(t, errors.As(err, &unavailable), "limit validation is a caller bug, not an outage")
	}
}

func TestNeo4jProvider_FetchRelatedRejectsUnsafeLabel(t *testing.T) {
	p := NewNeo4jProvider(nil)

	for _, label := range []string{"", "Bad Label", "x) DETACH DELETE (n", "1Numeric"} {
		_, err := p.FetchRelated(context.Background(), label, "id-1")
		require.Error(t, err, "label %q must be rejected", label)
	}
}

func TestRecordToItem_FlattensNodeProps(t *testing.T) {
	record := &neo4j.Record{
		Keys: []string{"n", "t"},
		Values: []any{
			neo4j.Node{Props: map[string]any{"name": "Aave", "tvl": 12.5}},
			neo4j.Node{Props: map[string]any{"name": "finance"}},
		},
	}

	item := recordToItem(record)
	require.Contains(t, item, "n")
	require.Contains(t, item, "t")
	assert.Equal(t, map[string]any{"name": "Aave", "tvl": 12.5}, item["n"])
	assert.Equal(t, map[string]any{"name": "finance"}, item["t"])
}
