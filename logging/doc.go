// Package logging provides structured logging for the query pipeline on top
// of slog.
//
// Components depend on the minimal Logger interface (Debug, Info, Warn,
// Error with slog-style key/value args), so any structured logger can be
// plugged in:
//
//   - SlogAdapter wraps an existing *slog.Logger
//   - NoOpLogger discards everything (testing, silent setups)
//   - GraphRAGLogger is the richer built-in implementation
//
// GraphRAGLogger adds contextual cloning (WithComponent, WithInvocation,
// WithContext) and domain helpers, LogClassification, LogGraphQuery and
// LogLLMCall, exposed through the DomainLogger interface. Agents and the
// graph provider upgrade to DomainLogger when the injected logger supports
// it, so wiring a GraphRAGLogger yields the richer records with no further
// configuration.
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	system, err := graphrag.New(ctx, cfg, graphrag.WithLogger(logger))
//
// All implementations treat variadic args as alternating key/value pairs,
// matching slog semantics.
package logging
