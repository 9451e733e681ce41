// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Generator and
// ai.Transcriber for use in unit tests. The mocks allow tests to run without
// external model services and give controlled, deterministic replies.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	gen := mock.NewMockGenerator()
//	reply, err := gen.Generate(ctx, "system", "user", "")
//
//	// Custom behavior injection
//	gen.GenerateFunc = func(ctx context.Context, call mock.GenerateCall) (string, error) {
//	    return `{"questions": []}`, nil
//	}
//
//	// Check calls
//	count := gen.CallCount()
//	last := gen.Calls()[count-1]
//
// # Default Behavior
//
//   - MockGenerator: Echoes the system prompt and user message
//   - MockTranscriber: Returns a fixed sentence naming the audio file
package mock
