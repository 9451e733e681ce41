package mock

import (
	"context"
	"path/filepath"

	"github.com/poiesic/quizpipe/ai"
)

// MockTranscriber is a test double for ai.Transcriber.
type MockTranscriber struct {
	// TranscribeFunc is called by Transcribe if set.
	TranscribeFunc func(ctx context.Context, audioPath string) (string, error)

	callCount int
}

var _ ai.Transcriber = (*MockTranscriber)(nil)

// NewMockTranscriber creates a mock transcriber with default behavior.
func NewMockTranscriber() *MockTranscriber {
	return &MockTranscriber{}
}

// Transcribe returns a fixed sentence naming the audio file.
func (m *MockTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	m.callCount++

	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, audioPath)
	}

	return "Transcript of " + filepath.Base(audioPath) + ".", nil
}

// Name returns "Mock".
func (m *MockTranscriber) Name() string {
	return "Mock"
}

// CallCount returns the number of times Transcribe was called.
func (m *MockTranscriber) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockTranscriber) Reset() {
	m.callCount = 0
	m.TranscribeFunc = nil
}
