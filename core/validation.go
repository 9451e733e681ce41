package core

import (
	"fmt"
	"time"
)

// ValidateTranscript checks a transcript read from disk before it is split.
// Empty text is valid: it simply yields no chunks. The timestamp is
// informational and never rejected.
func ValidateTranscript(transcript *Transcript) error {
	if transcript == nil {
		return fmt.Errorf("%w: transcript is nil", ErrInvalidTranscript)
	}

	if transcript.FileName == "" {
		return fmt.Errorf("%w: %w", ErrInvalidTranscript, ErrEmptyFileName)
	}

	return nil
}

// ValidateChunkResult checks a result before it is persisted.
func ValidateChunkResult(result *ChunkResult) error {
	if result == nil {
		return fmt.Errorf("%w: result is nil", ErrInvalidChunkResult)
	}

	info := result.ChunkInfo
	if info.OriginalFile == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunkResult, ErrEmptyFileName)
	}

	if info.ChunkNumber < 1 || info.ChunkNumber > info.TotalChunks {
		return fmt.Errorf("%w: %w: %d of %d", ErrInvalidChunkResult, ErrInvalidChunkNumber,
			info.ChunkNumber, info.TotalChunks)
	}

	if !IsValidTimestamp(info.ProcessedTime) {
		return fmt.Errorf("%w: %w", ErrInvalidChunkResult, ErrInvalidTimestamp)
	}

	return nil
}

// IsValidTimestamp reports whether ts is not in the future.
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
