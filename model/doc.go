// Package model defines the provider-agnostic abstraction for the generative
// text backends the orchestrator fans out to.
//
// Core goals:
//   - Keep the generation contract minimal: prompt + sampling options in, text out
//   - Normalize all failures behind *GenerationError so a failing backend only
//     drops its own section from a merged answer
//   - Facilitate lightweight mocking for tests (MockGenerator)
//
// Providers (Ollama, OpenAI, Anthropic) implement the Generator interface from
// this package so agents remain decoupled from vendor SDKs.
package model
