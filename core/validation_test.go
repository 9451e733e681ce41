package core

import (
	"errors"
	"testing"
	"time"
)

func TestValidateTranscript(t *testing.T) {
	validTime := time.Now().Add(-1 * time.Hour)
	futureTime := time.Now().Add(1 * time.Hour)

	tests := []struct {
		name       string
		transcript *Transcript
		wantErr    error
	}{
		{
			name:       "valid transcript",
			transcript: &Transcript{FileName: "a.m4a", Text: "Hello.", Timestamp: validTime},
			wantErr:    nil,
		},
		{
			name:       "empty text is valid",
			transcript: &Transcript{FileName: "a.m4a", Timestamp: validTime},
			wantErr:    nil,
		},
		{
			name:       "zero timestamp is valid",
			transcript: &Transcript{FileName: "a.m4a", Text: "Hello."},
			wantErr:    nil,
		},
		{
			name:       "nil transcript",
			transcript: nil,
			wantErr:    ErrInvalidTranscript,
		},
		{
			name:       "missing file name",
			transcript: &Transcript{Text: "Hello.", Timestamp: validTime},
			wantErr:    ErrEmptyFileName,
		},
		{
			name:       "future timestamp is informational",
			transcript: &Transcript{FileName: "a.m4a", Text: "Hello.", Timestamp: futureTime},
			wantErr:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTranscript(tt.transcript)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateTranscript() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateTranscript() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateChunkResult(t *testing.T) {
	now := time.Now().Add(-1 * time.Second)

	tests := []struct {
		name    string
		result  *ChunkResult
		wantErr error
	}{
		{
			name: "valid result",
			result: &ChunkResult{ChunkInfo: ChunkInfo{
				OriginalFile: "a.m4a", ChunkNumber: 1, TotalChunks: 3, ProcessedTime: now,
			}},
		},
		{
			name:    "nil result",
			result:  nil,
			wantErr: ErrInvalidChunkResult,
		},
		{
			name: "missing original file",
			result: &ChunkResult{ChunkInfo: ChunkInfo{
				ChunkNumber: 1, TotalChunks: 1, ProcessedTime: now,
			}},
			wantErr: ErrEmptyFileName,
		},
		{
			name: "chunk number is zero",
			result: &ChunkResult{ChunkInfo: ChunkInfo{
				OriginalFile: "a.m4a", ChunkNumber: 0, TotalChunks: 1, ProcessedTime: now,
			}},
			wantErr: ErrInvalidChunkNumber,
		},
		{
			name: "chunk number beyond total",
			result: &ChunkResult{ChunkInfo: ChunkInfo{
				OriginalFile: "a.m4a", ChunkNumber: 4, TotalChunks: 3, ProcessedTime: now,
			}},
			wantErr: ErrInvalidChunkNumber,
		},
		{
			name: "future processed time",
			result: &ChunkResult{ChunkInfo: ChunkInfo{
				OriginalFile: "a.m4a", ChunkNumber: 1, TotalChunks: 1, ProcessedTime: time.Now().Add(time.Hour),
			}},
			wantErr: ErrInvalidTimestamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChunkResult(tt.result)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateChunkResult() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateChunkResult() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsValidTimestamp(t *testing.T) {
	if !IsValidTimestamp(time.Now().Add(-time.Minute)) {
		t.Error("past timestamp should be valid")
	}
	if IsValidTimestamp(time.Now().Add(time.Hour)) {
		t.Error("future timestamp should be invalid")
	}
}
