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

package core

import (
	"encoding/binary"
	"encoding/json"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Transcript is the output of the transcription stage: the text recognised
// from one audio file. It is immutable once written.
type Transcript struct {
	FileName  string    `json:"file_name"` // Audio file the text was recognised from
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"` // When the transcription was produced
}

// SourceName returns the identity of a transcript file: its base name without
// the .json extension. "lecture.m4a.json" yields "lecture.m4a".
func SourceName(transcriptPath string) string {
	return strings.TrimSuffix(filepath.Base(transcriptPath), filepath.Ext(transcriptPath))
}

// Chunk is a bounded slice of a transcript's text. Index is 0-based within
// the parent transcript.
type Chunk struct {
	Index int
	Text  string
}

// Question is one quiz record produced by the question generation step.
// Its shape is owned by the prompt, so it is kept as raw JSON.
type Question = json.RawMessage

// ChunkInfo identifies the chunk a result was produced for.
type ChunkInfo struct {
	OriginalFile  string    `json:"original_file"`
	ChunkNumber   int       `json:"chunk_number"` // 1-based
	TotalChunks   int       `json:"total_chunks"`
	ProcessedTime time.Time `json:"processed_time"`
}

// ChunkResult is the persisted artifact for one processed chunk. It is
// written exactly once and never modified afterwards.
type ChunkResult struct {
	ChunkInfo       ChunkInfo  `json:"chunk_info"`
	TermAnalysis    string     `json:"term_analysis"`
	ConceptAnalysis string     `json:"concept_analysis"`
	Questions       []Question `json:"questions"`
}

// Outcome records what happened to one work item during a run.
type Outcome int

const (
	// OutcomeSkipped means the artifact already existed.
	OutcomeSkipped Outcome = iota + 1
	// OutcomeDone means the artifact was produced in this run.
	OutcomeDone
	// OutcomeFailed means producing or persisting the artifact failed.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeDone:
		return "done"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// JournalEntry is the most recent recorded outcome for one chunk.
// The journal is informational only; artifact existence decides whether a
// chunk still needs work.
type JournalEntry struct {
	RunID      string
	Source     string
	ChunkIndex int
	Artifact   string
	Outcome    Outcome
	Error      string
	RecordedAt time.Time
}

// RunSummary aggregates the outcome counts of one pipeline run.
type RunSummary struct {
	RunID       string
	StartedAt   time.Time
	FinishedAt  time.Time
	Transcripts int
	Done        int
	Skipped     int
	Failed      int
}
