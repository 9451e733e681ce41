// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ai

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/poiesic/quizpipe/core"
)

// Supported generation providers. The values match the provider names
// accepted in configuration files.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
	ProviderGemini = "genai"
)

// Providers lists every supported provider name.
var Providers = []string{ProviderOllama, ProviderOpenAI, ProviderGemini}

// Config holds configuration for a generation provider.
type Config struct {
	// Provider selects the backend: "ollama", "openai" or "genai".
	Provider string

	// Host is the base URL of the provider API. Empty uses the provider's
	// default endpoint.
	// Example: "http://localhost:11434" for a local Ollama server
	Host string

	// Model is the model identifier.
	// Example: "gemma3:12b", "gpt-4o-mini", "gemini-2.0-flash"
	Model string

	// APIKey authenticates against hosted providers. Ollama ignores it.
	APIKey string

	// MaxAttempts is the number of tries per generation call. Default: 1
	MaxAttempts int

	// RetryDelay is the base delay for exponential backoff between tries.
	RetryDelay time.Duration

	// RequestsPerMinute caps the call rate. Zero disables throttling.
	RequestsPerMinute int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithProvider sets the provider name.
func WithProvider(provider string) ConfigOption {
	return func(c *Config) {
		c.Provider = provider
	}
}

// WithHost sets the provider host URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithModel sets the model identifier.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithRetries sets the attempt count and base backoff delay.
func WithRetries(maxAttempts int, delay time.Duration) ConfigOption {
	return func(c *Config) {
		c.MaxAttempts = maxAttempts
		c.RetryDelay = delay
	}
}

// WithRequestsPerMinute sets the call rate limit.
func WithRequestsPerMinute(rpm int) ConfigOption {
	return func(c *Config) {
		c.RequestsPerMinute = rpm
	}
}

// DefaultConfig returns a Config for a local Ollama server.
func DefaultConfig() *Config {
	return &Config{
		Provider:    ProviderOllama,
		Host:        "http://localhost:11434",
		Model:       "gemma3:12b",
		MaxAttempts: 1,
		RetryDelay:  time.Second,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithProvider(ProviderOpenAI),
//	    WithModel("gpt-4o-mini"),
//	    WithAPIKey(os.Getenv("OPENAI_API_KEY")),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// OpenAI-compatible hosts get the /v1 suffix most servers (vLLM, LocalAI,
// Ollama's compatibility layer) expect.
func (c *Config) Normalize() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	c.Host = strings.TrimSpace(c.Host)

	switch c.Provider {
	case ProviderOpenAI:
		if c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
			c.Host = strings.TrimSuffix(c.Host, "/") + "/v1"
		}
	case ProviderOllama:
		c.Host = strings.TrimSuffix(c.Host, "/")
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if !slices.Contains(Providers, c.Provider) {
		return fmt.Errorf("%w: ai config: unknown provider %q (want one of %s)",
			core.ErrInvalidConfiguration, c.Provider, strings.Join(Providers, ", "))
	}
	if c.Model == "" {
		return fmt.Errorf("%w: ai config: Model is required", core.ErrInvalidConfiguration)
	}
	if c.Provider == ProviderGemini && c.APIKey == "" {
		return fmt.Errorf("%w: ai config: %w for %s", core.ErrInvalidConfiguration, ErrAPIKeyRequired, c.Provider)
	}
	if c.Provider == ProviderOpenAI && c.Host == "" && c.APIKey == "" {
		return fmt.Errorf("%w: ai config: %w for the hosted OpenAI API", core.ErrInvalidConfiguration, ErrAPIKeyRequired)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("%w: ai config: MaxAttempts must be at least 1", core.ErrInvalidConfiguration)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("%w: ai config: RetryDelay must not be negative", core.ErrInvalidConfiguration)
	}
	if c.RequestsPerMinute < 0 {
		return fmt.Errorf("%w: ai config: RequestsPerMinute must not be negative", core.ErrInvalidConfiguration)
	}
	return nil
}
