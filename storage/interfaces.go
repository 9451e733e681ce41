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
package storage

import (
	"context"

	"github.com/poiesic/quizpipe/core"
)

// Journal records per-chunk outcomes and per-run summaries.
type Journal interface {
	// RecordChunk stores the latest outcome for (entry.Source, entry.ChunkIndex),
	// replacing any earlier entry for the same chunk.
	RecordChunk(ctx context.Context, entry *core.JournalEntry) error

	// ChunkEntries returns the recorded entries for a source ordered by chunk index.
	// Returns an empty slice when nothing has been recorded.
	ChunkEntries(ctx context.Context, source string) ([]*core.JournalEntry, error)

	// SaveRun stores a run summary keyed by its RunID.
	SaveRun(ctx context.Context, summary *core.RunSummary) error

	// Runs returns all recorded run summaries, most recent first.
	Runs(ctx context.Context) ([]*core.RunSummary, error)

	// Close releases the journal's resources.
	Close() error
}

// NopJournal discards everything written to it.
type NopJournal struct{}

var _ Journal = NopJournal{}

func (NopJournal) RecordChunk(context.Context, *core.JournalEntry) error { return nil }

func (NopJournal) ChunkEntries(context.Context, string) ([]*core.JournalEntry, error) {
	return []*core.JournalEntry{}, nil
}

func (NopJournal) SaveRun(context.Context, *core.RunSummary) error { return nil }

func (NopJournal) Runs(context.Context) ([]*core.RunSummary, error) {
	return []*core.RunSummary{}, nil
}

func (NopJournal) Close() error { return nil }
