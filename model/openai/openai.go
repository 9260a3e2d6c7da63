// Package openai provides an implementation of model.Generator using the
// OpenAI Chat Completions API. It adapts the single-shot prompt contract onto
// the SDK's message format.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/garyhost2/Strong-gradient/model"
)

// Options configure the OpenAI generator adapter.
type Options struct {
	Model string
}

// Generator wraps the OpenAI Chat Completions API behind the generic
// model.Generator interface.
type Generator struct {
	client *openai.Client
	opts   Options
}

// NewGenerator creates a new OpenAI generator using the official client,
// which reads credentials from the environment.
func NewGenerator(optFns ...func(o *Options)) *Generator {
	client := openai.NewClient()
	return NewGeneratorFromClient(&client, optFns...)
}

// NewGeneratorFromClient creates a new OpenAI generator from an existing client.
func NewGeneratorFromClient(client *openai.Client, optFns ...func(o *Options)) *Generator {
	opts := Options{Model: openai.ChatModelGPT4oMini}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Generator{client: client, opts: opts}
}

// Generate implements model.Generator via a non-streaming completion.
func (g *Generator) Generate(ctx context.Context, prompt string, opts model.Options) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages:            []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
		Model:               g.opts.Model,
		Temperature:         openai.Float(opts.Temperature),
		MaxCompletionTokens: openai.Int(int64(opts.MaxTokens)),
	}

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", &model.GenerationError{Backend: g.opts.Model, Cause: fmt.Errorf("openai api error: %w", err)}
	}
	if len(resp.Choices) == 0 {
		return "", &model.GenerationError{Backend: g.opts.Model, Cause: fmt.Errorf("no choices returned")}
	}
	text := resp.Choices[0].Message.Content
	if text == "" {
		return "", &model.GenerationError{Backend: g.opts.Model, Cause: fmt.Errorf("empty completion")}
	}
	return text, nil
}
