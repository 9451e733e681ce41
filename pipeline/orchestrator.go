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

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/quizpipe/ai"
	"github.com/poiesic/quizpipe/artifact"
	"github.com/poiesic/quizpipe/chunking"
	"github.com/poiesic/quizpipe/core"
	"github.com/poiesic/quizpipe/generation"
	"github.com/poiesic/quizpipe/stage"
	"github.com/poiesic/quizpipe/storage"
)

const transcriptExt = ".json"

// Config holds the settings an Orchestrator is built from.
type Config struct {
	TranscriptDir string
	ResultDir     string
	ChunkSize     int
	Overlap       int
	Prompts       generation.Prompts
}

// Validate checks the configuration. Errors wrap core.ErrInvalidConfiguration.
func (c Config) Validate() error {
	if c.TranscriptDir == "" {
		return fmt.Errorf("%w: %w", core.ErrInvalidConfiguration, ErrTranscriptDirRequired)
	}
	if c.ResultDir == "" {
		return fmt.Errorf("%w: %w", core.ErrInvalidConfiguration, ErrResultDirRequired)
	}
	if err := chunking.Validate(c.ChunkSize, c.Overlap); err != nil {
		return err
	}
	return c.Prompts.WithDefaults().Validate()
}

// Orchestrator drives transcripts through chunking and generation.
type Orchestrator struct {
	cfg      Config
	chain    *generation.Chain
	results  *artifact.DirStore
	journal  storage.Journal
	progress io.Writer
	logger   *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// WithJournal records chunk outcomes and run summaries in j.
// Default is storage.NopJournal.
func WithJournal(j storage.Journal) Option {
	return func(o *Orchestrator) error {
		if j == nil {
			j = storage.NopJournal{}
		}
		o.journal = j
		return nil
	}
}

// WithProgress prints per-transcript chunk progress to w.
func WithProgress(w io.Writer) Option {
	return func(o *Orchestrator) error {
		o.progress = w
		return nil
	}
}

// NewOrchestrator validates cfg, creates the result directory and returns
// an orchestrator that generates with gen.
func NewOrchestrator(cfg Config, gen ai.Generator, opts ...Option) (*Orchestrator, error) {
	if gen == nil {
		return nil, ErrGeneratorRequired
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &Orchestrator{
		cfg:     cfg,
		journal: storage.NopJournal{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	o.logger = o.logger.With("component", "pipeline")

	chain, err := generation.NewChain(gen, cfg.Prompts, o.logger)
	if err != nil {
		return nil, err
	}
	o.chain = chain

	results, err := artifact.NewDirStore(cfg.ResultDir)
	if err != nil {
		return nil, err
	}
	o.results = results

	return o, nil
}

// Results returns the store chunk artifacts are written to.
func (o *Orchestrator) Results() *artifact.DirStore {
	return o.results
}

// Run processes every transcript in the transcript directory in name order.
// An empty or missing directory is logged and ends the run with a nil error.
// Per-transcript and per-chunk failures are reported, not returned; the
// only error returned is ctx's once it is done.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	report := newReport(uuid.NewString())
	logger := o.logger.With("run_id", report.RunID)

	paths, err := o.Discover()
	if err != nil {
		if !errors.Is(err, core.ErrMissingInput) {
			return nil, err
		}
		logger.Warn("nothing to process", "dir", o.cfg.TranscriptDir, "error", err)
	}

	var runErr error
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		tr, err := o.processTranscript(ctx, report.RunID, path)
		report.add(tr)
		if err != nil {
			runErr = err
			break
		}
	}
	report.FinishedAt = time.Now()

	o.saveRun(ctx, report)
	logger.Info("run finished",
		"transcripts", len(report.Transcripts),
		"done", report.Chunks.Done,
		"skipped", report.Chunks.Skipped,
		"failed", report.Chunks.Failed,
		"failed_transcripts", len(report.FailedTranscripts()),
		"elapsed", report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))

	return report, runErr
}

// ProcessTranscript processes a single transcript file as its own run.
func (o *Orchestrator) ProcessTranscript(ctx context.Context, path string) (*Report, error) {
	report := newReport(uuid.NewString())
	tr, err := o.processTranscript(ctx, report.RunID, path)
	report.add(tr)
	report.FinishedAt = time.Now()
	o.saveRun(ctx, report)
	return report, err
}

// Discover lists the transcript files in the transcript directory, sorted
// by name. It returns core.ErrMissingInput when there are none.
func (o *Orchestrator) Discover() ([]string, error) {
	entries, err := os.ReadDir(o.cfg.TranscriptDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s does not exist", core.ErrMissingInput, o.cfg.TranscriptDir)
		}
		return nil, fmt.Errorf("%w: %w", core.ErrIOFailure, err)
	}

	var paths []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !IsTranscript(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(o.cfg.TranscriptDir, e.Name()))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no %s files in %s", core.ErrMissingInput, transcriptExt, o.cfg.TranscriptDir)
	}
	return paths, nil
}

// IsTranscript reports whether name looks like a transcript file.
// Hidden files, including in-flight atomic writes, are excluded.
func IsTranscript(name string) bool {
	base := filepath.Base(name)
	return strings.HasSuffix(base, transcriptExt) && !strings.HasPrefix(base, ".")
}

func (o *Orchestrator) processTranscript(ctx context.Context, runID, path string) (*TranscriptReport, error) {
	source := core.SourceName(path)
	tr := &TranscriptReport{Path: path, Source: source}
	logger := o.logger.With("run_id", runID, "transcript", filepath.Base(path))

	transcript, err := o.loadTranscript(path)
	if err != nil {
		logger.Error("transcript failed", "error", err)
		tr.Err = err
		return tr, nil
	}

	chunks, err := chunking.Chunks(transcript.Text, o.cfg.ChunkSize, o.cfg.Overlap)
	if err != nil {
		tr.Err = err
		return tr, nil
	}
	tr.Chunks = len(chunks)
	logger.Info("transcript split", "chunks", len(chunks))

	items := make([]stage.Item[core.Chunk], len(chunks))
	indexes := make(map[string]int, len(chunks))
	for i, c := range chunks {
		key := artifact.NameFor(source, c.Index, len(chunks))
		items[i] = stage.Item[core.Chunk]{Key: key, Value: c}
		indexes[key] = c.Index
	}

	opts := []stage.Option{
		stage.WithName(source),
		stage.WithLogger(o.logger),
		stage.WithObserver(&journalObserver{
			journal: o.journal,
			runID:   runID,
			source:  source,
			indexes: indexes,
			logger:  logger,
		}),
	}
	if o.progress != nil {
		opts = append(opts, stage.WithProgress(o.progress, 1))
	}

	runner, err := stage.NewRunner(o.results, o.generate(transcript.FileName, len(chunks)), opts...)
	if err != nil {
		tr.Err = err
		return tr, nil
	}

	tr.Stage, err = runner.Run(ctx, items)
	if err != nil {
		return tr, err
	}

	logger.Info("transcript complete",
		"done", tr.Stage.Done,
		"skipped", tr.Stage.Skipped,
		"failed", tr.Stage.Failed)
	return tr, nil
}

func (o *Orchestrator) loadTranscript(path string) (*core.Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrIOFailure, err)
	}
	transcript, err := core.DecodeTranscript(data)
	if err != nil {
		return nil, err
	}
	if err := core.ValidateTranscript(transcript); err != nil {
		return nil, err
	}
	return transcript, nil
}

// generate returns the handler that produces the artifact bytes for one
// chunk of a transcript recognised from originalFile.
func (o *Orchestrator) generate(originalFile string, total int) stage.Handler[core.Chunk] {
	return func(ctx context.Context, item stage.Item[core.Chunk]) ([]byte, error) {
		out, err := o.chain.Run(ctx, item.Value.Text)
		if err != nil {
			return nil, err
		}

		result := &core.ChunkResult{
			ChunkInfo: core.ChunkInfo{
				OriginalFile:  originalFile,
				ChunkNumber:   item.Value.Index + 1,
				TotalChunks:   total,
				ProcessedTime: time.Now(),
			},
			TermAnalysis:    out.TermAnalysis,
			ConceptAnalysis: out.ConceptAnalysis,
			Questions:       out.Questions,
		}
		if err := core.ValidateChunkResult(result); err != nil {
			return nil, err
		}
		return core.EncodeJSON(result)
	}
}

func (o *Orchestrator) saveRun(ctx context.Context, report *Report) {
	// Journal writes must outlive a cancelled run.
	ctx = context.WithoutCancel(ctx)
	if err := o.journal.SaveRun(ctx, report.Summary()); err != nil {
		o.logger.Warn("failed to record run", "run_id", report.RunID, "error", err)
	}
}

// journalObserver records each chunk outcome in the journal.
type journalObserver struct {
	journal storage.Journal
	runID   string
	source  string
	indexes map[string]int
	logger  *slog.Logger
}

var _ stage.Observer = (*journalObserver)(nil)

func (j *journalObserver) ItemFinished(ctx context.Context, res stage.Result) {
	entry := &core.JournalEntry{
		RunID:      j.runID,
		Source:     j.source,
		ChunkIndex: j.indexes[res.Key],
		Artifact:   res.Key,
		Outcome:    res.Outcome,
		RecordedAt: time.Now().UTC(),
	}
	if res.Err != nil {
		entry.Error = res.Err.Error()
	}
	if err := j.journal.RecordChunk(context.WithoutCancel(ctx), entry); err != nil {
		j.logger.Warn("failed to record chunk", "artifact", res.Key, "error", err)
	}
}
