// Package gemini provides an ai.Generator backed by the Gemini API.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/quizpipe/ai"
	"google.golang.org/genai"
)

// DefaultDataLabel prefixes extra context in the combined prompt.
const DefaultDataLabel = "데이터: "

// contentModel is the subset of *genai.Models the generator uses.
type contentModel interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator implements ai.Generator with a single combined prompt, since
// the Gemini text API takes one content block rather than chat roles.
type Generator struct {
	models    contentModel
	model     string
	dataLabel string
	logger    *slog.Logger
}

var _ ai.Generator = (*Generator)(nil)

// Option configures a Generator.
type Option func(*Generator) error

// WithDataLabel sets the prefix placed before extra context.
func WithDataLabel(label string) Option {
	return func(g *Generator) error {
		g.dataLabel = label
		return nil
	}
}

// NewGenerator creates a Gemini generator. The client is created once and
// reused for every call.
func NewGenerator(ctx context.Context, config *ai.Config, opts ...Option) (ai.Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.Host != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: config.Host}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	return newGenerator(client.Models, config.Model, opts...)
}

func newGenerator(models contentModel, model string, opts ...Option) (*Generator, error) {
	g := &Generator{
		models:    models,
		model:     model,
		dataLabel: DefaultDataLabel,
		logger:    slog.Default().With("component", "gemini-generator", "model", model),
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Generate joins the system prompt, user message and labelled extra context
// with blank lines and sends them as one prompt.
func (g *Generator) Generate(ctx context.Context, systemPrompt, userMessage, extra string) (string, error) {
	result, err := g.models.GenerateContent(ctx, g.model, genai.Text(g.prompt(systemPrompt, userMessage, extra)), nil)
	if err != nil {
		g.logger.Error("failed to generate content", "err", err)
		return "", fmt.Errorf("generate content: %w", err)
	}

	if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
		var text strings.Builder
		for _, part := range result.Candidates[0].Content.Parts {
			if part != nil && part.Text != "" {
				text.WriteString(part.Text)
			}
		}
		return text.String(), nil
	}

	return "", ai.ErrEmptyResponse
}

func (g *Generator) prompt(systemPrompt, userMessage, extra string) string {
	combined := systemPrompt
	if userMessage != "" {
		combined += "\n\n" + userMessage
	}
	if extra != "" {
		combined += "\n\n" + g.dataLabel + extra
	}
	return combined
}

// Name returns "GenAI".
func (g *Generator) Name() string {
	return "GenAI"
}
