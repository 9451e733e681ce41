package whisper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/quizpipe/ai"
	"github.com/poiesic/quizpipe/core"
	openai "github.com/sashabaranov/go-openai"
)

// APIConfig configures the OpenAI transcription client.
type APIConfig struct {
	// APIKey authenticates the request.
	APIKey string

	// BaseURL overrides the API endpoint, for compatible servers.
	BaseURL string

	// Model is the transcription model. Default: "whisper-1"
	Model string

	// Language is an ISO-639-1 hint. Empty lets the service detect it.
	Language string

	// Prompt lists domain keywords that bias recognition.
	Prompt string
}

// API transcribes audio with the OpenAI audio transcription endpoint.
type API struct {
	client *openai.Client
	cfg    APIConfig
	logger *slog.Logger
}

var _ ai.Transcriber = (*API)(nil)

// NewAPI creates an OpenAI transcription client.
func NewAPI(cfg APIConfig, logger *slog.Logger) (*API, error) {
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: %w for OpenAI transcription", core.ErrInvalidConfiguration, ai.ErrAPIKeyRequired)
	}
	if cfg.Model == "" {
		cfg.Model = openai.Whisper1
	}
	if logger == nil {
		logger = slog.Default()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &API{
		client: openai.NewClientWithConfig(clientConfig),
		cfg:    cfg,
		logger: logger.With("component", "whisper-api"),
	}, nil
}

// Transcribe uploads the audio file and returns the recognised text.
func (a *API) Transcribe(ctx context.Context, audioPath string) (string, error) {
	a.logger.Info("uploading audio for transcription", "audio", audioPath, "model", a.cfg.Model)

	resp, err := a.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    a.cfg.Model,
		FilePath: audioPath,
		Language: a.cfg.Language,
		Prompt:   a.cfg.Prompt,
	})
	if err != nil {
		return "", fmt.Errorf("openai transcription: %w", err)
	}

	return strings.TrimSpace(resp.Text), nil
}

// Name returns "OpenAI Whisper".
func (a *API) Name() string {
	return "OpenAI Whisper"
}
