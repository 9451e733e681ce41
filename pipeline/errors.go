package pipeline

import "errors"

var (
	// ErrGeneratorRequired is returned when an Orchestrator is created without a generator.
	ErrGeneratorRequired = errors.New("generator is required")

	// ErrTranscriptDirRequired is returned when no transcript directory is configured.
	ErrTranscriptDirRequired = errors.New("transcript directory is required")

	// ErrResultDirRequired is returned when no result directory is configured.
	ErrResultDirRequired = errors.New("result directory is required")
)
