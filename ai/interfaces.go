package ai

import "context"

// Generator produces free-form text from a system prompt, a user message
// and optional extra context. An empty extra means no extra context.
// Implementations are used sequentially and need not be safe for
// concurrent use.
type Generator interface {
	// Generate returns the model's reply. Errors are returned as-is; callers
	// decide whether a failed call degrades into stored text.
	Generate(ctx context.Context, systemPrompt, userMessage, extra string) (string, error)

	// Name returns a human-readable provider name such as "Ollama".
	Name() string
}

// Transcriber converts an audio file into text.
type Transcriber interface {
	// Transcribe returns the recognised text of the audio file at audioPath.
	Transcribe(ctx context.Context, audioPath string) (string, error)

	// Name returns a human-readable backend name.
	Name() string
}
