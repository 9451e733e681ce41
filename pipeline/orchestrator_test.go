package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/quizpipe/ai/mock"
	"github.com/poiesic/quizpipe/core"
	"github.com/poiesic/quizpipe/generation"
	"github.com/poiesic/quizpipe/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const questionsReply = "```json\n{\"questions\": [{\"question\": \"무엇?\", \"answer\": \"<그것>\"}]}\n```"

var testPrompts = generation.Prompts{
	TermAnalysis:       "terms",
	ConceptAnalysis:    "concepts",
	QuestionGeneration: "questions",
}

type fixture struct {
	transcripts string
	results     string
	gen         *mock.MockGenerator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		transcripts: filepath.Join(root, "text"),
		results:     filepath.Join(root, "result"),
		gen:         mock.NewMockGenerator(),
	}
	require.NoError(t, os.MkdirAll(f.transcripts, 0755))
	f.gen.GenerateFunc = func(ctx context.Context, call mock.GenerateCall) (string, error) {
		switch call.SystemPrompt {
		case "terms":
			return "term notes", nil
		case "concepts":
			return "concept notes", nil
		default:
			return questionsReply, nil
		}
	}
	return f
}

func (f *fixture) writeTranscript(t *testing.T, name, text string) string {
	t.Helper()
	data, err := json.Marshal(map[string]string{
		"file_name": strings.TrimSuffix(name, ".json"),
		"text":      text,
		"timestamp": "2025-01-02T03:04:05.123456",
	})
	require.NoError(t, err)
	path := filepath.Join(f.transcripts, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func (f *fixture) orchestrator(t *testing.T, size, overlap int, opts ...Option) *Orchestrator {
	t.Helper()
	o, err := NewOrchestrator(Config{
		TranscriptDir: f.transcripts,
		ResultDir:     f.results,
		ChunkSize:     size,
		Overlap:       overlap,
		Prompts:       testPrompts,
	}, f.gen, opts...)
	require.NoError(t, err)
	return o
}

func (f *fixture) readResult(t *testing.T, name string) *core.ChunkResult {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.results, name))
	require.NoError(t, err)
	result, err := core.DecodeChunkResult(data)
	require.NoError(t, err)
	return result
}

func TestRun_HelloWorldScenario(t *testing.T) {
	f := newFixture(t)
	f.writeTranscript(t, "lecture.m4a.json", "Hello world. This is a test! Done?")

	report, err := f.orchestrator(t, 20, 5).Run(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, report.RunID)
	require.Len(t, report.Transcripts, 1)
	assert.Equal(t, 3, report.Transcripts[0].Chunks)
	assert.Equal(t, 3, report.Chunks.Done)
	assert.Equal(t, 9, f.gen.CallCount())

	for i, want := range []string{"Hello world.", "orld. This is a test", "test! Done?"} {
		name := []string{"lecture.m4a_chunk_001.json", "lecture.m4a_chunk_002.json", "lecture.m4a_chunk_003.json"}[i]
		result := f.readResult(t, name)
		assert.Equal(t, "lecture.m4a", result.ChunkInfo.OriginalFile)
		assert.Equal(t, i+1, result.ChunkInfo.ChunkNumber)
		assert.Equal(t, 3, result.ChunkInfo.TotalChunks)
		assert.False(t, result.ChunkInfo.ProcessedTime.IsZero())
		assert.Equal(t, "term notes", result.TermAnalysis)
		assert.Equal(t, "concept notes", result.ConceptAnalysis)
		require.Len(t, result.Questions, 1)
		assert.JSONEq(t, `{"question": "무엇?", "answer": "<그것>"}`, string(result.Questions[0]))

		call := f.gen.Calls()[i*3]
		assert.Equal(t, generation.DefaultSourceLabel+want, call.UserMessage)
	}
}

func TestRun_ThreadsStepOutputs(t *testing.T) {
	f := newFixture(t)
	f.writeTranscript(t, "a.json", "Short text.")

	_, err := f.orchestrator(t, 100, 10).Run(context.Background())
	require.NoError(t, err)

	calls := f.gen.Calls()
	require.Len(t, calls, 3)
	assert.Empty(t, calls[0].Extra)
	assert.Equal(t, generation.DefaultTermSeedLabel+"term notes", calls[1].Extra)
	assert.Equal(t, generation.DefaultConceptSeedLabel+"concept notes", calls[2].Extra)
}

func TestRun_ArtifactFormatting(t *testing.T) {
	f := newFixture(t)
	f.writeTranscript(t, "a.json", "Short text.")

	_, err := f.orchestrator(t, 100, 10).Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(f.results, "a_chunk_001.json"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("{\n    \"chunk_info\": {\n        \"original_file\"")))
	assert.Contains(t, string(data), "무엇?")
	assert.Contains(t, string(data), "<그것>")
}

func TestRun_NonJSONQuestionsStillPersist(t *testing.T) {
	f := newFixture(t)
	f.gen.GenerateFunc = func(ctx context.Context, call mock.GenerateCall) (string, error) {
		if call.SystemPrompt == "questions" {
			return "Sorry, I cannot produce questions for this text.", nil
		}
		return "notes", nil
	}
	f.writeTranscript(t, "a.json", "Some text.")

	report, err := f.orchestrator(t, 100, 10).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Chunks.Done)

	data, err := os.ReadFile(filepath.Join(f.results, "a_chunk_001.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"questions": []`)

	result := f.readResult(t, "a_chunk_001.json")
	assert.Equal(t, "notes", result.TermAnalysis)
	assert.Empty(t, result.Questions)
}

func TestRun_GenerationFailureFoldedIntoArtifact(t *testing.T) {
	f := newFixture(t)
	f.gen.GenerateFunc = func(ctx context.Context, call mock.GenerateCall) (string, error) {
		if call.SystemPrompt == "terms" {
			return "", errors.New("connection refused")
		}
		return "notes", nil
	}
	f.writeTranscript(t, "a.json", "Some text.")

	report, err := f.orchestrator(t, 100, 10).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Chunks.Done)

	result := f.readResult(t, "a_chunk_001.json")
	assert.Equal(t, "Error generating response with Mock: connection refused", result.TermAnalysis)
	assert.Equal(t, generation.DefaultTermSeedLabel+result.TermAnalysis, f.gen.Calls()[1].Extra)
}

func TestRun_ResumesAfterPartialRun(t *testing.T) {
	f := newFixture(t)
	f.writeTranscript(t, "long.json", strings.Repeat("abcdefghij", 5))
	o := f.orchestrator(t, 10, 0)

	report, err := o.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 5, report.Chunks.Done)

	kept := map[string][]byte{}
	for i, name := range []string{
		"long_chunk_001.json", "long_chunk_002.json", "long_chunk_003.json",
		"long_chunk_004.json", "long_chunk_005.json",
	} {
		path := filepath.Join(f.results, name)
		if i < 2 {
			data, err := os.ReadFile(path)
			require.NoError(t, err)
			kept[path] = data
			continue
		}
		require.NoError(t, os.Remove(path))
	}
	f.gen.Reset()
	f.gen.GenerateFunc = func(ctx context.Context, call mock.GenerateCall) (string, error) {
		return `{"questions": []}`, nil
	}

	report, err = o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Chunks.Done)
	assert.Equal(t, 2, report.Chunks.Skipped)
	assert.Equal(t, 0, report.Chunks.Failed)
	assert.Equal(t, 9, f.gen.CallCount())

	for path, want := range kept {
		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, want, got, path)
	}
}

func TestRun_Idempotent(t *testing.T) {
	f := newFixture(t)
	f.writeTranscript(t, "a.json", "One. Two. Three.")
	o := f.orchestrator(t, 7, 0)

	_, err := o.Run(context.Background())
	require.NoError(t, err)
	calls := f.gen.CallCount()

	report, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Chunks.Done)
	assert.Equal(t, report.Chunks.Total(), report.Chunks.Skipped)
	assert.Equal(t, calls, f.gen.CallCount())
}

func TestRun_NoTranscripts(t *testing.T) {
	f := newFixture(t)

	report, err := f.orchestrator(t, 100, 10).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Transcripts)
	assert.Equal(t, 0, f.gen.CallCount())

	entries, err := os.ReadDir(f.results)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_MissingTranscriptDir(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.RemoveAll(f.transcripts))

	report, err := f.orchestrator(t, 100, 10).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Transcripts)
}

func TestRun_BadTranscriptIsolated(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(f.transcripts, "a_broken.json"), []byte("{not json"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(f.transcripts, "b_nameless.json"), []byte(`{"text": "x"}`), 0644))
	f.writeTranscript(t, "c_good.json", "Fine text.")
	require.NoError(t, os.WriteFile(filepath.Join(f.transcripts, "notes.txt"), []byte("ignored"), 0644))

	report, err := f.orchestrator(t, 100, 10).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Transcripts, 3)

	failed := report.FailedTranscripts()
	require.Len(t, failed, 2)
	assert.ErrorIs(t, failed[0].Err, core.ErrInvalidTranscript)
	assert.ErrorIs(t, failed[1].Err, core.ErrEmptyFileName)

	assert.Equal(t, 1, report.Chunks.Done)
	assert.FileExists(t, filepath.Join(f.results, "c_good_chunk_001.json"))
	assert.Equal(t, 3, report.Summary().Failed+report.Summary().Done)
}

func TestRun_ZonelessLocalTimestamp(t *testing.T) {
	f := newFixture(t)
	stamp := time.Now().Add(-time.Minute).Format("2006-01-02T15:04:05.000000")
	data, err := json.Marshal(map[string]string{
		"file_name": "lec.m4a",
		"text":      "Hello world.",
		"timestamp": stamp,
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(f.transcripts, "lec.m4a.json"), data, 0644))

	report, err := f.orchestrator(t, 100, 10).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.FailedTranscripts())
	assert.Equal(t, 1, report.Chunks.Done)
	assert.FileExists(t, filepath.Join(f.results, "lec.m4a_chunk_001.json"))
}

func TestRun_EmptyText(t *testing.T) {
	f := newFixture(t)
	f.writeTranscript(t, "silent.json", "")

	report, err := f.orchestrator(t, 100, 10).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Transcripts, 1)
	assert.Equal(t, 0, report.Transcripts[0].Chunks)
	assert.False(t, report.Transcripts[0].Failed())
	assert.Equal(t, 0, f.gen.CallCount())
}

func TestRun_Cancelled(t *testing.T) {
	f := newFixture(t)
	f.writeTranscript(t, "a.json", "One. Two. Three.")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := f.orchestrator(t, 7, 0).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Equal(t, 0, f.gen.CallCount())
}

func TestRun_CancelledMidChunkLeavesNoArtifact(t *testing.T) {
	f := newFixture(t)
	f.writeTranscript(t, "a.json", "One. Two. Three.")
	ctx, cancel := context.WithCancel(context.Background())
	f.gen.GenerateFunc = func(ctx context.Context, call mock.GenerateCall) (string, error) {
		if call.SystemPrompt == "concepts" {
			cancel()
		}
		return "notes", nil
	}
	o := f.orchestrator(t, 7, 0)

	_, err := o.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, filepath.Join(f.results, "a_chunk_001.json"))

	f.gen.GenerateFunc = nil
	report, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Chunks.Done)
}

func TestRun_RecordsJournal(t *testing.T) {
	f := newFixture(t)
	f.writeTranscript(t, "lecture.m4a.json", "Hello world. This is a test! Done?")
	j, err := badger.NewMemoryJournal()
	require.NoError(t, err)
	defer j.Close()
	o := f.orchestrator(t, 20, 5, WithJournal(j))

	first, err := o.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(f.results, "lecture.m4a_chunk_002.json")))
	second, err := o.Run(context.Background())
	require.NoError(t, err)

	ctx := context.Background()
	entries, err := j.ChunkEntries(ctx, "lecture.m4a")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, core.OutcomeSkipped, entries[0].Outcome)
	assert.Equal(t, core.OutcomeDone, entries[1].Outcome)
	assert.Equal(t, "lecture.m4a_chunk_002.json", entries[1].Artifact)
	assert.Equal(t, 1, entries[1].ChunkIndex)
	assert.Equal(t, second.RunID, entries[1].RunID)

	runs, err := j.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.RunID, runs[0].RunID)
	assert.Equal(t, 1, runs[0].Done)
	assert.Equal(t, 2, runs[0].Skipped)
	assert.Equal(t, first.RunID, runs[1].RunID)
	assert.Equal(t, 3, runs[1].Done)
}

func TestProcessTranscript(t *testing.T) {
	f := newFixture(t)
	path := f.writeTranscript(t, "single.json", "Only one chunk.")
	f.writeTranscript(t, "other.json", "Not processed.")

	report, err := f.orchestrator(t, 100, 10).ProcessTranscript(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, report.Transcripts, 1)
	assert.Equal(t, "single", report.Transcripts[0].Source)
	assert.Equal(t, 1, report.Chunks.Done)
	assert.FileExists(t, filepath.Join(f.results, "single_chunk_001.json"))
	assert.NoFileExists(t, filepath.Join(f.results, "other_chunk_001.json"))
}

func TestRun_Progress(t *testing.T) {
	f := newFixture(t)
	f.writeTranscript(t, "a.json", "One. Two. Three.")
	var buf bytes.Buffer

	_, err := f.orchestrator(t, 7, 0, WithProgress(&buf)).Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "a: 3/3")
}

func TestNewOrchestrator_Validation(t *testing.T) {
	dir := t.TempDir()
	gen := mock.NewMockGenerator()
	valid := Config{TranscriptDir: dir, ResultDir: dir, ChunkSize: 10, Overlap: 2, Prompts: testPrompts}

	_, err := NewOrchestrator(valid, nil)
	assert.ErrorIs(t, err, ErrGeneratorRequired)

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"overlap equals size", func(c *Config) { c.Overlap = 10 }},
		{"negative overlap", func(c *Config) { c.Overlap = -1 }},
		{"zero size", func(c *Config) { c.ChunkSize = 0 }},
		{"missing prompt", func(c *Config) { c.Prompts.ConceptAnalysis = "" }},
		{"missing transcript dir", func(c *Config) { c.TranscriptDir = "" }},
		{"missing result dir", func(c *Config) { c.ResultDir = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			_, err := NewOrchestrator(cfg, gen)
			assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
		})
	}
}

func TestIsTranscript(t *testing.T) {
	assert.True(t, IsTranscript("text/a.mp3.json"))
	assert.False(t, IsTranscript("a.txt"))
	assert.False(t, IsTranscript(".a.json"))
	assert.False(t, IsTranscript(".a.json.123.tmp"))
}
