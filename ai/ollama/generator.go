// Package ollama provides an ai.Generator backed by a local Ollama server.
package ollama

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/quizpipe/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// Generator implements ai.Generator using Ollama's native chat API.
type Generator struct {
	client llms.Model
	model  string
	logger *slog.Logger
}

var _ ai.Generator = (*Generator)(nil)

// NewGenerator creates a generator for the configured Ollama model.
func NewGenerator(config *ai.Config) (ai.Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	opts := []ollama.Option{ollama.WithModel(config.Model)}
	if config.Host != "" {
		opts = append(opts, ollama.WithServerURL(config.Host))
	}

	client, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}

	return newGeneratorWithClient(client, config.Model), nil
}

func newGeneratorWithClient(client llms.Model, model string) *Generator {
	return &Generator{
		client: client,
		model:  model,
		logger: slog.Default().With("component", "ollama-generator", "model", model),
	}
}

// Generate sends the system prompt, the user message and, if present, extra
// as a second user message.
func (g *Generator) Generate(ctx context.Context, systemPrompt, userMessage, extra string) (string, error) {
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userMessage),
	}
	if extra != "" {
		content = append(content, llms.TextParts(llms.ChatMessageTypeHuman, extra))
	}

	response, err := g.client.GenerateContent(ctx, content)
	if err != nil {
		g.logger.Error("failed to generate content", "err", err)
		return "", err
	}
	if len(response.Choices) < 1 {
		return "", ai.ErrEmptyResponse
	}

	g.logger.Debug("generated content", "chars", len(response.Choices[0].Content))
	return response.Choices[0].Content, nil
}

// Name returns "Ollama".
func (g *Generator) Name() string {
	return "Ollama"
}
