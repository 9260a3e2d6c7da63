// Package router maps raw query text to one or more agents through an
// ordered keyword predicate table. Dispatch is a deterministic, total
// function: the general-knowledge fallback guarantees every query resolves to
// at least one agent.
package router

import (
	"errors"
	"strings"

	"github.com/garyhost2/Strong-gradient/agent"
)

// Rule matches a query when any of its keywords appears in the lower-cased
// query text. Rules are evaluated in table order; the first match wins.
type Rule struct {
	Keywords []string
	Agent    *agent.Agent
}

// Router holds the fixed topic routing table. It is immutable after
// construction and safe for concurrent use.
type Router struct {
	rules    []Rule
	fallback *agent.Agent
}

// New builds a Router from an ordered rule table and a fallback agent. The
// fallback is mandatory: it is what makes Route total.
func New(rules []Rule, fallback *agent.Agent) (*Router, error) {
	if fallback == nil {
		return nil, errors.New("fallback agent must not be nil")
	}
	for _, r := range rules {
		if r.Agent == nil {
			return nil, errors.New("rule agent must not be nil")
		}
		if len(r.Keywords) == 0 {
			return nil, errors.New("rule must have at least one keyword")
		}
	}
	rs := make([]Rule, len(rules))
	copy(rs, rules)
	return &Router{rules: rs, fallback: fallback}, nil
}

// Route returns the agents selected for the query, in priority order. The
// result is never empty: unmatched queries resolve to the fallback agent.
func (r *Router) Route(query string) []*agent.Agent {
	lowered := strings.ToLower(query)
	for _, rule := range r.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lowered, kw) {
				return []*agent.Agent{rule.Agent}
			}
		}
	}
	return []*agent.Agent{r.fallback}
}

// Agents describes the per-topic agents of the default routing table.
type Agents struct {
	Finance          *agent.Agent
	Web3Development  *agent.Agent
	Sustainability   *agent.Agent
	GeneralKnowledge *agent.Agent
}

// NewDefault builds the default priority table: finance (protocol, tvl),
// web3-development (github, repository), sustainability (sustainability,
// green), then the general-knowledge fallback.
func NewDefault(agents Agents) (*Router, error) {
	if agents.Finance == nil || agents.Web3Development == nil || agents.Sustainability == nil || agents.GeneralKnowledge == nil {
		return nil, errors.New("all four topic agents are required")
	}
	return New([]Rule{
		{Keywords: []string{"protocol", "tvl"}, Agent: agents.Finance},
		{Keywords: []string{"github", "repository"}, Agent: agents.Web3Development},
		{Keywords: []string{"sustainability", "green"}, Agent: agents.Sustainability},
	}, agents.GeneralKnowledge)
}
