// Package testutil provides shared test doubles for the classifier, graph
// context provider and generative backends, so package tests can exercise the
// pipeline without external services.
package testutil
