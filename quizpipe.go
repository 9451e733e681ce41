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

package quizpipe

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/poiesic/quizpipe/acquire"
	"github.com/poiesic/quizpipe/ai"
	"github.com/poiesic/quizpipe/ai/gemini"
	"github.com/poiesic/quizpipe/ai/ollama"
	"github.com/poiesic/quizpipe/ai/openai"
	"github.com/poiesic/quizpipe/ai/whisper"
	"github.com/poiesic/quizpipe/artifact"
	"github.com/poiesic/quizpipe/config"
	"github.com/poiesic/quizpipe/executor"
	"github.com/poiesic/quizpipe/export"
	"github.com/poiesic/quizpipe/pipeline"
	"github.com/poiesic/quizpipe/storage"
	"github.com/poiesic/quizpipe/storage/badger"
)

// Workspace wires the configured providers, directories and journal together.
// Providers are built on first use so commands that don't need them (such as
// download) work without credentials.
type Workspace struct {
	cfg     *config.Config
	journal storage.Journal
	opts    workspaceOptions
	logger  *slog.Logger

	mu          sync.Mutex
	generator   ai.Generator
	transcriber ai.Transcriber
}

// Option configures a Workspace.
type Option func(*workspaceOptions)

type workspaceOptions struct {
	logger      *slog.Logger
	generator   ai.Generator
	transcriber ai.Transcriber
	exec        executor.Executor
	getenv      func(string) string
	progress    io.Writer
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *workspaceOptions) {
		o.logger = logger
	}
}

// WithGenerator uses g instead of building one from the llm section.
func WithGenerator(g ai.Generator) Option {
	return func(o *workspaceOptions) {
		o.generator = g
	}
}

// WithTranscriber uses t instead of building one from the whisper section.
func WithTranscriber(t ai.Transcriber) Option {
	return func(o *workspaceOptions) {
		o.transcriber = t
	}
}

// WithExecutor sets the executor used for yt-dlp, whisper.cpp and ffmpeg.
func WithExecutor(e executor.Executor) Option {
	return func(o *workspaceOptions) {
		o.exec = e
	}
}

// WithGetenv sets the environment lookup used for API keys.
// Default is os.Getenv.
func WithGetenv(getenv func(string) string) Option {
	return func(o *workspaceOptions) {
		o.getenv = getenv
	}
}

// WithProgress prints stage progress to w.
func WithProgress(w io.Writer) Option {
	return func(o *workspaceOptions) {
		o.progress = w
	}
}

// Open validates cfg and opens the run journal.
func Open(cfg *config.Config, opts ...Option) (*Workspace, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := workspaceOptions{
		logger: slog.Default(),
		exec:   executor.New(),
		getenv: os.Getenv,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	var journal storage.Journal = storage.NopJournal{}
	if cfg.Journal.Path != "" {
		j, err := badger.NewJournal(cfg.Journal.Path, o.logger)
		if err != nil {
			return nil, err
		}
		journal = j
	}

	return &Workspace{
		cfg:         cfg,
		journal:     journal,
		opts:        o,
		logger:      o.logger,
		generator:   o.generator,
		transcriber: o.transcriber,
	}, nil
}

// Close releases the journal.
func (w *Workspace) Close() error {
	if err := w.journal.Close(); err != nil {
		w.logger.Error("error closing journal", "err", err)
		return err
	}
	return nil
}

// Config returns the validated configuration.
func (w *Workspace) Config() *config.Config {
	return w.cfg
}

// Journal returns the run journal.
func (w *Workspace) Journal() storage.Journal {
	return w.journal
}

// Generator returns the configured generator, building it on first use.
func (w *Workspace) Generator(ctx context.Context) (ai.Generator, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.generator != nil {
		return w.generator, nil
	}
	g, err := NewGenerator(ctx, w.cfg.AIConfig(w.opts.getenv))
	if err != nil {
		return nil, err
	}
	w.generator = g
	return g, nil
}

// Transcriber returns the configured transcriber, building it on first use.
func (w *Workspace) Transcriber() (ai.Transcriber, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.transcriber != nil {
		return w.transcriber, nil
	}
	t, err := NewTranscriber(w.cfg.Whisper, w.opts.exec, w.opts.getenv, w.logger)
	if err != nil {
		return nil, err
	}
	w.transcriber = t
	return t, nil
}

// NewOrchestrator creates the chunk generation pipeline.
func (w *Workspace) NewOrchestrator(ctx context.Context) (*pipeline.Orchestrator, error) {
	gen, err := w.Generator(ctx)
	if err != nil {
		return nil, err
	}
	opts := []pipeline.Option{pipeline.WithLogger(w.logger), pipeline.WithJournal(w.journal)}
	if w.opts.progress != nil {
		opts = append(opts, pipeline.WithProgress(w.opts.progress))
	}
	return pipeline.NewOrchestrator(pipeline.Config{
		TranscriptDir: w.cfg.Folders.TextOutput,
		ResultDir:     w.cfg.Folders.ResultFolder,
		ChunkSize:     w.cfg.SplitText.ChunkSize,
		Overlap:       w.cfg.SplitText.Overlap,
		Prompts:       w.cfg.GenerationPrompts(),
	}, gen, opts...)
}

// NewTranscriptionStage creates the audio to transcript stage.
func (w *Workspace) NewTranscriptionStage() (*acquire.TranscriptionStage, error) {
	t, err := w.Transcriber()
	if err != nil {
		return nil, err
	}
	return acquire.NewTranscriptionStage(t, acquire.TranscriptionConfig{
		SourceDir:     w.cfg.Folders.SourceFile,
		TranscriptDir: w.cfg.Folders.TextOutput,
		Extensions:    w.cfg.Audio.Extensions,
	}, w.acquireOptions()...)
}

// NewDownloader creates the audio downloader. Release must be called when done.
func (w *Workspace) NewDownloader() (*acquire.Downloader, error) {
	d := w.cfg.Downloader
	return acquire.NewDownloader(w.opts.exec, acquire.DownloaderConfig{
		BinaryPath:   d.BinaryPath,
		OutputDir:    w.cfg.Folders.SourceFile,
		AudioFormat:  d.AudioFormat,
		AudioQuality: d.AudioQuality,
		Workers:      d.Workers,
	}, w.acquireOptions()...)
}

// NewExporter creates the study sheet exporter.
func (w *Workspace) NewExporter() (*export.Exporter, error) {
	results, err := w.Results()
	if err != nil {
		return nil, err
	}
	return export.NewExporter(results, w.cfg.Folders.ExportFolder, w.logger)
}

// Results opens the chunk result directory.
func (w *Workspace) Results() (*artifact.DirStore, error) {
	return artifact.NewDirStore(w.cfg.Folders.ResultFolder)
}

func (w *Workspace) acquireOptions() []acquire.Option {
	opts := []acquire.Option{acquire.WithLogger(w.logger)}
	if w.opts.progress != nil {
		opts = append(opts, acquire.WithProgress(w.opts.progress))
	}
	return opts
}

// NewGenerator builds the generator for cfg.Provider and wraps it with the
// configured retry and rate limit.
func NewGenerator(ctx context.Context, cfg *ai.Config) (ai.Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		gen ai.Generator
		err error
	)
	switch cfg.Provider {
	case ai.ProviderOllama:
		gen, err = ollama.NewGenerator(cfg)
	case ai.ProviderOpenAI:
		gen, err = openai.NewGenerator(cfg)
	case ai.ProviderGemini:
		gen, err = gemini.NewGenerator(ctx, cfg)
	default:
		err = fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	// Throttle each attempt, so retries count against the limit too.
	if gen, err = ai.WithRateLimit(gen, cfg.RequestsPerMinute); err != nil {
		return nil, err
	}
	return ai.WithRetry(gen, cfg.MaxAttempts, cfg.RetryDelay)
}

// NewTranscriber builds the transcriber for the whisper backend. The openai
// backend reads OPENAI_API_KEY through getenv. The local backend takes
// model_path, falling back to model.
func NewTranscriber(cfg config.WhisperConfig, exec executor.Executor, getenv func(string) string, logger *slog.Logger) (ai.Transcriber, error) {
	if cfg.Backend == config.WhisperOpenAI {
		// The API detects the language itself when none is given.
		language := cfg.Language
		if language == "auto" {
			language = ""
		}
		api, err := whisper.NewAPI(whisper.APIConfig{
			APIKey:   getenv("OPENAI_API_KEY"),
			BaseURL:  cfg.BaseURL,
			Model:    cfg.Model,
			Language: language,
			Prompt:   cfg.Prompt,
		}, logger)
		if err != nil {
			return nil, err
		}
		return api, nil
	}

	modelPath := cfg.ModelPath
	if modelPath == "" {
		modelPath = cfg.Model
	}
	local, err := whisper.NewLocal(exec, whisper.LocalConfig{
		BinaryPath: cfg.BinaryPath,
		ModelPath:  modelPath,
		Language:   cfg.Language,
		Threads:    cfg.Threads,
		Prompt:     cfg.Prompt,
		FFmpegPath: cfg.FFmpegPath,
	}, logger)
	if err != nil {
		return nil, err
	}
	return local, nil
}
