// Package ollama implements model.Generator against a local Ollama server
// using the official Ollama Go SDK. This is the backend pair the system ships
// with (qwen2.5 and deepseek-r1 in the default deployment).
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/garyhost2/Strong-gradient/model"
)

const (
	defaultHost    = "http://localhost:11434"
	defaultTimeout = 5 * time.Minute
)

// Options configure the Ollama generator adapter.
type Options struct {
	// Host is the base URL of the Ollama server.
	Host string
	// HTTPClient overrides the internally constructed client.
	HTTPClient *http.Client
	// Timeout bounds the HTTP client when one is constructed internally.
	Timeout time.Duration
}

// Generator wraps the Ollama generate API behind the generic model.Generator
// interface. One Generator targets one named model; the shared api.Client is
// safe for concurrent requests.
type Generator struct {
	modelName string
	client    *api.Client
}

// NewGenerator creates a generator for the given Ollama model name.
func NewGenerator(modelName string, optFns ...func(o *Options)) (*Generator, error) {
	opts := Options{Host: defaultHost, Timeout: defaultTimeout}
	for _, fn := range optFns {
		fn(&opts)
	}

	parsed, err := url.Parse(opts.Host)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama host %q: %w", opts.Host, err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	return &Generator{
		modelName: modelName,
		client:    api.NewClient(parsed, httpClient),
	}, nil
}

// NewGeneratorFromClient creates a generator from an existing Ollama client.
func NewGeneratorFromClient(modelName string, client *api.Client) *Generator {
	return &Generator{modelName: modelName, client: client}
}

// Generate implements model.Generator. A single attempt per call; the server
// streams chunks which are accumulated into the full completion.
func (g *Generator) Generate(ctx context.Context, prompt string, opts model.Options) (string, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:  g.modelName,
		Prompt: prompt,
		Stream: &stream,
		Options: map[string]any{
			"temperature": opts.Temperature,
			"num_predict": opts.MaxTokens,
		},
	}

	var sb strings.Builder
	err := g.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		sb.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", &model.GenerationError{Backend: g.modelName, Cause: fmt.Errorf("ollama generate request failed: %w", err)}
	}
	if sb.Len() == 0 {
		return "", &model.GenerationError{Backend: g.modelName, Cause: fmt.Errorf("empty response")}
	}
	return sb.String(), nil
}
