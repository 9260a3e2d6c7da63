package graph

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/garyhost2/Strong-gradient/logging"
)

// topicContextQuery matches nodes covering a topic. LIMIT is parameterized so
// truncation happens inside the store.
const topicContextQuery = `
	MATCH (n)-[:COVERS_TOPIC]->(t:Topic {name: $topic})
	RETURN n, t LIMIT $limit
`

// labelPattern restricts entity labels to safe identifiers, since Cypher
// cannot parameterize labels.
var labelPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// RelatedEntity summarizes the relationships of one node, grouped by
// relationship type.
type RelatedEntity struct {
	Relationship string           `json:"relationship"`
	Relations    []map[string]any `json:"relations"`
}

// Neo4jProvider implements ContextProvider on top of a shared Neo4j driver.
// The driver pools connections internally and is safe for concurrent
// sessions, so one provider serves all agent invocations.
type Neo4jProvider struct {
	driver   neo4j.DriverWithContext
	database string
	logger   logging.Logger
}

// Neo4jOption customizes a Neo4jProvider.
type Neo4jOption func(*Neo4jProvider)

// WithDatabase selects a database other than the server default.
func WithDatabase(name string) Neo4jOption {
	return func(p *Neo4jProvider) { p.database = name }
}

// WithLogger overrides the default NoOp logger.
func WithLogger(logger logging.Logger) Neo4jOption {
	return func(p *Neo4jProvider) { p.logger = logger }
}

// NewNeo4jProvider wraps an existing driver. The caller keeps ownership of
// the driver's lifecycle.
func NewNeo4jProvider(driver neo4j.DriverWithContext, opts ...Neo4jOption) *Neo4jProvider {
	p := &Neo4jProvider{driver: driver, logger: logging.NoOpLogger{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Connect creates a pooled Neo4j driver with basic auth and verifies
// connectivity before returning it.
func Connect(ctx context.Context, uri, user, password string) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verify neo4j connectivity: %w", err)
	}
	return driver, nil
}

// FetchContext implements ContextProvider. Driver failures surface as
// *UnavailableError; an empty result is not an error.
func (p *Neo4jProvider) FetchContext(ctx context.Context, topic string, limit int) ([]ContextItem, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("context limit must be positive, got %d", limit)
	}

	start := time.Now()
	session := p.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead, DatabaseName: p.database})
	defer session.Close(ctx)

	result, err := session.Run(ctx, topicContextQuery, map[string]any{
		"topic": topic,
		"limit": limit,
	})
	if err != nil {
		p.logQuery(topic, 0, time.Since(start), err)
		return nil, &UnavailableError{Cause: err}
	}

	var items []ContextItem
	for result.Next(ctx) {
		items = append(items, recordToItem(result.Record()))
	}
	if err := result.Err(); err != nil {
		p.logQuery(topic, len(items), time.Since(start), err)
		return nil, &UnavailableError{Cause: err}
	}

	p.logQuery(topic, len(items), time.Since(start), nil)
	return items, nil
}

// logQuery emits the graph read record through the richer helper when the
// configured logger supports it.
func (p *Neo4jProvider) logQuery(topic string, rows int, dur time.Duration, err error) {
	if dl, ok := p.logger.(logging.DomainLogger); ok {
		dl.LogGraphQuery(topic, rows, dur, err)
		return
	}
	if err != nil {
		p.logger.Error("graph context fetch failed", "topic", topic, "rows", rows, "duration", dur, "error", err.Error())
		return
	}
	p.logger.Debug("fetched graph context", "topic", topic, "rows", rows, "duration", dur)
}

// FetchRelated returns relationship summaries for one entity node. The label
// is interpolated into the query and therefore validated against a strict
// identifier pattern.
func (p *Neo4jProvider) FetchRelated(ctx context.Context, label, entityID string) ([]RelatedEntity, error) {
	if !labelPattern.MatchString(label) {
		return nil, fmt.Errorf("invalid entity label %q", label)
	}

	query := fmt.Sprintf(`
		MATCH (n:%s {id: $entityID})-[r]-()
		RETURN type(r) AS relationship, collect(properties(r)) AS relations
	`, label)

	session := p.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead, DatabaseName: p.database})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, map[string]any{"entityID": entityID})
	if err != nil {
		return nil, &UnavailableError{Cause: err}
	}

	var related []RelatedEntity
	for result.Next(ctx) {
		record := result.Record()
		entry := RelatedEntity{}
		if rel, ok := record.Get("relationship"); ok {
			if s, ok := rel.(string); ok {
				entry.Relationship = s
			}
		}
		if raw, ok := record.Get("relations"); ok {
			if list, ok := raw.([]any); ok {
				for _, item := range list {
					if props, ok := item.(map[string]any); ok {
						entry.Relations = append(entry.Relations, props)
					}
				}
			}
		}
		related = append(related, entry)
	}
	if err := result.Err(); err != nil {
		return nil, &UnavailableError{Cause: err}
	}
	return related, nil
}

// recordToItem flattens one result record into an opaque ContextItem keyed by
// the query's return aliases.
func recordToItem(record *neo4j.Record) ContextItem {
	item := ContextItem{}
	for _, key := range record.Keys {
		value, ok := record.Get(key)
		if !ok {
			continue
		}
		if node, ok := value.(neo4j.Node); ok {
			item[key] = node.Props
			continue
		}
		item[key] = value
	}
	return item
}
