package storage

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/quizpipe/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalJournalEntry(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name  string
		entry *core.JournalEntry
	}{
		{
			name: "done entry",
			entry: &core.JournalEntry{
				RunID:      "run-1",
				Source:     "lecture.m4a",
				ChunkIndex: 3,
				Artifact:   "lecture.m4a_chunk_004.json",
				Outcome:    core.OutcomeDone,
				RecordedAt: now,
			},
		},
		{
			name: "failed entry with unicode error",
			entry: &core.JournalEntry{
				RunID:      "run-2",
				Source:     "강의.mp3",
				ChunkIndex: 0,
				Artifact:   "강의.mp3_chunk_001.json",
				Outcome:    core.OutcomeFailed,
				Error:      "Error generating response with Ollama: 연결 실패",
				RecordedAt: now,
			},
		},
		{
			name:  "zero values",
			entry: &core.JournalEntry{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalJournalEntry(tt.entry)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalJournalEntry(data)
			require.NoError(t, err)
			assert.Equal(t, tt.entry.RunID, decoded.RunID)
			assert.Equal(t, tt.entry.Source, decoded.Source)
			assert.Equal(t, tt.entry.ChunkIndex, decoded.ChunkIndex)
			assert.Equal(t, tt.entry.Artifact, decoded.Artifact)
			assert.Equal(t, tt.entry.Outcome, decoded.Outcome)
			assert.Equal(t, tt.entry.Error, decoded.Error)
			assert.True(t, tt.entry.RecordedAt.Equal(decoded.RecordedAt))
		})
	}
}

func TestUnmarshalJournalEntry_Truncated(t *testing.T) {
	data := MarshalJournalEntry(&core.JournalEntry{
		RunID:      "run-1",
		Source:     "a.mp3",
		Artifact:   "a.mp3_chunk_001.json",
		Outcome:    core.OutcomeDone,
		RecordedAt: time.Now(),
	})

	_, err := UnmarshalJournalEntry(data[:len(data)/2])
	assert.ErrorIs(t, err, ErrSerializationFailed)

	_, err = UnmarshalJournalEntry(nil)
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalRunSummary(t *testing.T) {
	start := time.Now().UTC().Truncate(time.Microsecond)
	summary := &core.RunSummary{
		RunID:       "6f1c8f0e-7c2d-4a55-9d0e-0d7f5c1e2b3a",
		StartedAt:   start,
		FinishedAt:  start.Add(90 * time.Second),
		Transcripts: 2,
		Done:        7,
		Skipped:     3,
		Failed:      1,
	}

	decoded, err := UnmarshalRunSummary(MarshalRunSummary(summary))
	require.NoError(t, err)
	assert.Equal(t, summary.RunID, decoded.RunID)
	assert.True(t, summary.StartedAt.Equal(decoded.StartedAt))
	assert.True(t, summary.FinishedAt.Equal(decoded.FinishedAt))
	assert.Equal(t, 2, decoded.Transcripts)
	assert.Equal(t, 7, decoded.Done)
	assert.Equal(t, 3, decoded.Skipped)
	assert.Equal(t, 1, decoded.Failed)
}

func TestUnmarshalRunSummary_Truncated(t *testing.T) {
	data := MarshalRunSummary(&core.RunSummary{RunID: "r", Done: 300})
	_, err := UnmarshalRunSummary(data[:len(data)-1])
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestNopJournal(t *testing.T) {
	ctx := context.Background()
	var j Journal = NopJournal{}

	require.NoError(t, j.RecordChunk(ctx, &core.JournalEntry{Source: "a"}))
	require.NoError(t, j.SaveRun(ctx, &core.RunSummary{RunID: "r"}))

	entries, err := j.ChunkEntries(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, entries)

	runs, err := j.Runs(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs)

	assert.NoError(t, j.Close())
}
