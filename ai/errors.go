package ai

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrGeneratorRequired is returned when middleware wraps a nil generator.
	ErrGeneratorRequired = errors.New("generator is required")

	// ErrEmptyResponse is returned when a provider answers with no content.
	ErrEmptyResponse = errors.New("model returned no content")

	// ErrAPIKeyRequired is returned when a hosted provider has no API key.
	ErrAPIKeyRequired = errors.New("api key is required")
)
