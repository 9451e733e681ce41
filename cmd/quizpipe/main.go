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

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/poiesic/quizpipe"
	"github.com/poiesic/quizpipe/artifact"
	"github.com/poiesic/quizpipe/chunking"
	"github.com/poiesic/quizpipe/config"
	"github.com/poiesic/quizpipe/core"
	"github.com/poiesic/quizpipe/pipeline"
	"github.com/poiesic/quizpipe/watch"
	"github.com/urfave/cli/v2"
)

// logLevel is shared by the default handler so the config file can lower or
// raise it after the flags are parsed.
var logLevel = new(slog.LevelVar)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "quizpipe",
		Usage: "Turn lecture recordings into study questions",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
				Value:   "config.yaml",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error); overrides logging.level",
				Value:   "info",
			},
		},
		Before: before,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Download, transcribe and generate questions in one pass",
				Action: runCommand,
			},
			{
				Name:      "download",
				Usage:     "Download audio for the configured URLs and any given as arguments",
				ArgsUsage: "[url...]",
				Action:    downloadCommand,
			},
			{
				Name:   "transcribe",
				Usage:  "Transcribe audio files that have no transcript yet",
				Action: transcribeCommand,
			},
			{
				Name:      "process",
				Usage:     "Generate chunk results for every transcript, or only the given ones",
				ArgsUsage: "[transcript.json...]",
				Action:    processCommand,
			},
			{
				Name:      "split",
				Usage:     "Preview how a transcript would be chunked",
				ArgsUsage: "<transcript.json>",
				Action:    splitCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Maximum chunk size in characters (default from config)",
					},
					&cli.IntFlag{
						Name:  "overlap",
						Usage: "Characters shared by consecutive chunks (default from config)",
					},
				},
			},
			{
				Name:   "status",
				Usage:  "Show recent runs and per-transcript progress",
				Action: statusCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "runs",
						Usage: "Number of recent runs to show",
						Value: 10,
					},
				},
			},
			{
				Name:      "export",
				Usage:     "Write a .docx study sheet for every source, or only the given ones",
				ArgsUsage: "[source...]",
				Action:    exportCommand,
			},
			{
				Name:   "watch",
				Usage:  "Process existing transcripts, then every new one that appears",
				Action: watchCommand,
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "settle",
						Usage: "How long a file must stay unchanged before it is processed",
						Value: watch.DefaultSettle,
					},
				},
			},
		},
	}
}

func before(c *cli.Context) error {
	// A missing .env is normal; keys may already be in the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return setupLogger(c)
}

func setupLogger(c *cli.Context) error {
	level, err := parseLevel(c.String("log-level"))
	if err != nil {
		return err
	}
	logLevel.Set(level)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	return nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", s)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !c.IsSet("log-level") {
		level, err := parseLevel(cfg.Logging.Level)
		if err != nil {
			return nil, err
		}
		logLevel.Set(level)
	}
	return cfg, nil
}

func openWorkspace(c *cli.Context) (*quizpipe.Workspace, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	return quizpipe.Open(cfg, quizpipe.WithProgress(os.Stderr))
}

func runCommand(c *cli.Context) error {
	ws, err := openWorkspace(c)
	if err != nil {
		return err
	}
	defer ws.Close()

	if len(ws.Config().URLs) > 0 {
		if err := download(c.Context, ws, nil); err != nil {
			return err
		}
	}
	if err := transcribe(c.Context, ws); err != nil {
		return err
	}
	return process(c.Context, ws, nil)
}

func downloadCommand(c *cli.Context) error {
	ws, err := openWorkspace(c)
	if err != nil {
		return err
	}
	defer ws.Close()

	return download(c.Context, ws, c.Args().Slice())
}

func download(ctx context.Context, ws *quizpipe.Workspace, extra []string) error {
	urls := append(append([]string(nil), ws.Config().URLs...), extra...)
	if len(urls) == 0 {
		slog.Warn("no URLs to download")
		return nil
	}

	d, err := ws.NewDownloader()
	if err != nil {
		return err
	}
	defer d.Release()

	succeeded, failed, err := d.Download(ctx, urls)
	printDownload(os.Stdout, succeeded, failed)
	return err
}

func transcribeCommand(c *cli.Context) error {
	ws, err := openWorkspace(c)
	if err != nil {
		return err
	}
	defer ws.Close()

	return transcribe(c.Context, ws)
}

func transcribe(ctx context.Context, ws *quizpipe.Workspace) error {
	st, err := ws.NewTranscriptionStage()
	if err != nil {
		return err
	}
	report, err := st.Run(ctx)
	if report != nil {
		printStage(os.Stdout, "Transcription", report)
	}
	return err
}

func processCommand(c *cli.Context) error {
	ws, err := openWorkspace(c)
	if err != nil {
		return err
	}
	defer ws.Close()

	return process(c.Context, ws, c.Args().Slice())
}

func process(ctx context.Context, ws *quizpipe.Workspace, paths []string) error {
	orch, err := ws.NewOrchestrator(ctx)
	if err != nil {
		return err
	}

	if len(paths) == 0 {
		report, err := orch.Run(ctx)
		if report != nil {
			printRun(os.Stdout, report)
		}
		return err
	}

	for _, path := range paths {
		report, err := orch.ProcessTranscript(ctx, path)
		if report != nil {
			printRun(os.Stdout, report)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func splitCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("split takes exactly one transcript file")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	size, overlap := cfg.SplitText.ChunkSize, cfg.SplitText.Overlap
	if c.IsSet("chunk-size") {
		size = c.Int("chunk-size")
	}
	if c.IsSet("overlap") {
		overlap = c.Int("overlap")
	}

	data, err := os.ReadFile(c.Args().First())
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrIOFailure, err)
	}
	transcript, err := core.DecodeTranscript(data)
	if err != nil {
		return err
	}

	spans, err := chunking.Spans(transcript.Text, size, overlap)
	if err != nil {
		return err
	}
	printSpans(os.Stdout, transcript.Text, spans)
	return nil
}

func statusCommand(c *cli.Context) error {
	ws, err := openWorkspace(c)
	if err != nil {
		return err
	}
	defer ws.Close()

	runs, err := ws.Journal().Runs(c.Context)
	if err != nil {
		return err
	}
	if n := c.Int("runs"); n >= 0 && len(runs) > n {
		runs = runs[:n]
	}
	printRuns(os.Stdout, runs)

	sources, err := transcriptSources(ws.Config().Folders.TextOutput)
	if err != nil {
		return err
	}
	results, err := ws.Results()
	if err != nil {
		return err
	}
	artifacts, err := results.List(".json")
	if err != nil {
		return err
	}

	rows := make([]sourceStatus, 0, len(sources))
	for _, source := range sources {
		entries, err := ws.Journal().ChunkEntries(c.Context, source)
		if err != nil {
			return err
		}
		row := sourceStatus{Source: source}
		prefix := artifact.ChunkPrefix(source)
		for _, name := range artifacts {
			if strings.HasPrefix(name, prefix) {
				row.Artifacts++
			}
		}
		for _, e := range entries {
			if e.Outcome == core.OutcomeFailed {
				row.Failed++
			}
		}
		rows = append(rows, row)
	}
	printSources(os.Stdout, rows)
	return nil
}

// transcriptSources returns the source names of the transcripts in dir. A
// missing directory has none.
func transcriptSources(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrIOFailure, err)
	}

	var sources []string
	for _, entry := range entries {
		if entry.Type().IsRegular() && pipeline.IsTranscript(entry.Name()) {
			sources = append(sources, core.SourceName(entry.Name()))
		}
	}
	return sources, nil
}

func exportCommand(c *cli.Context) error {
	ws, err := openWorkspace(c)
	if err != nil {
		return err
	}
	defer ws.Close()

	exp, err := ws.NewExporter()
	if err != nil {
		return err
	}

	if c.NArg() == 0 {
		paths, err := exp.ExportAll(c.Context)
		printExports(os.Stdout, paths)
		return err
	}

	var paths []string
	var errs []error
	for _, source := range c.Args().Slice() {
		path, err := exp.Export(c.Context, source)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", source, err))
			continue
		}
		paths = append(paths, path)
	}
	printExports(os.Stdout, paths)
	return errors.Join(errs...)
}

func watchCommand(c *cli.Context) error {
	ws, err := openWorkspace(c)
	if err != nil {
		return err
	}
	defer ws.Close()

	orch, err := ws.NewOrchestrator(c.Context)
	if err != nil {
		return err
	}

	report, err := orch.Run(c.Context)
	if report != nil {
		printRun(os.Stdout, report)
	}
	if err != nil {
		return err
	}

	dir := ws.Config().Folders.TextOutput
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: %w", core.ErrIOFailure, err)
	}

	w, err := watch.New(dir, pipeline.IsTranscript, func(ctx context.Context, path string) error {
		report, err := orch.ProcessTranscript(ctx, path)
		if report != nil {
			printRun(os.Stdout, report)
		}
		return err
	}, watch.WithSettle(c.Duration("settle")))
	if err != nil {
		return err
	}
	defer w.Stop()

	fmt.Fprintf(os.Stderr, "Watching %s (Ctrl+C to stop)\n", filepath.Clean(dir))
	if err := w.Start(c.Context); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
