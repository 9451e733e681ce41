package core

import "errors"

var (
	// ErrInvalidConfiguration indicates settings the pipeline cannot start with,
	// such as a chunk overlap that is not smaller than the chunk size.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrMissingInput indicates that no transcripts were found to process.
	ErrMissingInput = errors.New("no input found")

	// ErrGenerationFailure indicates that a text generation call failed.
	ErrGenerationFailure = errors.New("generation failed")

	// ErrParseFailure indicates that no structured payload could be decoded
	// from generated text.
	ErrParseFailure = errors.New("structured payload not found")

	// ErrIOFailure indicates that an artifact could not be read or written.
	ErrIOFailure = errors.New("artifact i/o failed")

	// ErrInvalidTranscript indicates a Transcript failed validation.
	ErrInvalidTranscript = errors.New("invalid transcript")

	// ErrInvalidChunkResult indicates a ChunkResult failed validation.
	ErrInvalidChunkResult = errors.New("invalid chunk result")

	// ErrEmptyFileName indicates the FileName field is empty.
	ErrEmptyFileName = errors.New("file name cannot be empty")

	// ErrInvalidChunkNumber indicates a chunk number outside 1..total.
	ErrInvalidChunkNumber = errors.New("chunk number out of range")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")
)
