package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/poiesic/quizpipe/ai"
)

// GenerateCall records the arguments of one Generate call.
type GenerateCall struct {
	SystemPrompt string
	UserMessage  string
	Extra        string
}

// MockGenerator is a test double for ai.Generator.
// It allows custom behavior injection via function fields.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	// If nil, echoes the prompt and message.
	GenerateFunc func(ctx context.Context, call GenerateCall) (string, error)

	// ProviderName is returned by Name. Default: "Mock"
	ProviderName string

	mu    sync.Mutex
	calls []GenerateCall
}

var _ ai.Generator = (*MockGenerator)(nil)

// NewMockGenerator creates a mock generator with default echo behavior.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{ProviderName: "Mock"}
}

// Generate records the call and returns the scripted reply.
func (m *MockGenerator) Generate(ctx context.Context, systemPrompt, userMessage, extra string) (string, error) {
	call := GenerateCall{SystemPrompt: systemPrompt, UserMessage: userMessage, Extra: extra}

	m.mu.Lock()
	m.calls = append(m.calls, call)
	fn := m.GenerateFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, call)
	}

	return fmt.Sprintf("[%s] %s", systemPrompt, userMessage), nil
}

// Name returns ProviderName.
func (m *MockGenerator) Name() string {
	return m.ProviderName
}

// CallCount returns the number of times Generate was called.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls returns a copy of the recorded calls in order.
func (m *MockGenerator) Calls() []GenerateCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]GenerateCall(nil), m.calls...)
}

// Reset clears the recorded calls and custom functions.
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.GenerateFunc = nil
}
