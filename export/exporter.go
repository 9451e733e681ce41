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

// Package export renders the chunk results of a transcript as a .docx study sheet.
package export

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"github.com/poiesic/quizpipe/artifact"
	"github.com/poiesic/quizpipe/core"
)

var reChunkName = regexp.MustCompile(`^(.+)_chunk_\d+\.json$`)

// Exporter reads chunk results from a result store and writes study sheets.
type Exporter struct {
	results   *artifact.DirStore
	outputDir string
	logger    *slog.Logger
}

// NewExporter creates an exporter writing into outputDir, creating it if needed.
func NewExporter(results *artifact.DirStore, outputDir string, logger *slog.Logger) (*Exporter, error) {
	if results == nil {
		return nil, fmt.Errorf("%w: result store is required", core.ErrInvalidConfiguration)
	}
	if outputDir == "" {
		return nil, fmt.Errorf("%w: export directory is required", core.ErrInvalidConfiguration)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrIOFailure, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		results:   results,
		outputDir: outputDir,
		logger:    logger.With("component", "export"),
	}, nil
}

// Sources lists the source names that have at least one chunk result, sorted.
func (e *Exporter) Sources() ([]string, error) {
	names, err := e.results.List(artifact.ChunkSuffix)
	if err != nil {
		return nil, err
	}
	var sources []string
	for _, name := range names {
		m := reChunkName.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		if !slices.Contains(sources, m[1]) {
			sources = append(sources, m[1])
		}
	}
	slices.Sort(sources)
	return sources, nil
}

// Results loads the chunk results of sourceName ordered by chunk number.
// Unreadable artifacts are logged and left out.
func (e *Exporter) Results(sourceName string) ([]*core.ChunkResult, error) {
	names, err := e.results.List(artifact.ChunkSuffix)
	if err != nil {
		return nil, err
	}

	want := artifact.SanitizeName(sourceName)
	var results []*core.ChunkResult
	for _, name := range names {
		if m := reChunkName.FindStringSubmatch(name); m == nil || m[1] != want {
			continue
		}
		data, err := e.results.Get(name)
		if err != nil {
			e.logger.Warn("skipping unreadable result", "artifact", name, "error", err)
			continue
		}
		result, err := core.DecodeChunkResult(data)
		if err != nil {
			e.logger.Warn("skipping malformed result", "artifact", name, "error", err)
			continue
		}
		results = append(results, result)
	}

	slices.SortStableFunc(results, func(a, b *core.ChunkResult) int {
		return cmp.Compare(a.ChunkInfo.ChunkNumber, b.ChunkInfo.ChunkNumber)
	})
	return results, nil
}

// Export writes <sourceName>.docx into the output directory and returns its path.
// It returns core.ErrMissingInput when the source has no chunk results.
func (e *Exporter) Export(ctx context.Context, sourceName string) (string, error) {
	results, err := e.Results(sourceName)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", fmt.Errorf("%w: no chunk results for %s", core.ErrMissingInput, sourceName)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s, err := newSheet(results[0].ChunkInfo.OriginalFile)
	if err != nil {
		return "", err
	}

	n := 0
	for _, r := range results {
		info := r.ChunkInfo
		s.heading(fmt.Sprintf("Part %d / %d", info.ChunkNumber, info.TotalChunks), 14)
		if !info.ProcessedTime.IsZero() {
			s.note(info.ProcessedTime.Format("2006-01-02 15:04"))
		}
		if r.ConceptAnalysis != "" {
			s.markdown(r.ConceptAnalysis)
		}
		for _, q := range r.Questions {
			n++
			rq := renderQuestion(q)
			s.line(fmt.Sprintf("**Q%d.** %s", n, rq.Prompt))
			for _, opt := range rq.Options {
				s.line("    " + opt)
			}
			for _, f := range rq.Fields {
				s.labelled(f[0], f[1])
			}
		}
	}

	// Save beside the destination, then rename so readers never see a partial file.
	dest := filepath.Join(e.outputDir, artifact.SanitizeName(sourceName)+".docx")
	tmp := filepath.Join(e.outputDir, "."+filepath.Base(dest)+".tmp")
	if err := s.saveTo(tmp); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("%w: %w", core.ErrIOFailure, err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("%w: %w", core.ErrIOFailure, err)
	}

	e.logger.Info("study sheet written", "source", sourceName, "path", dest, "parts", len(results), "questions", n)
	return dest, nil
}

// ExportAll exports every source with results. Failures are logged and
// returned together after the remaining sources are exported.
func (e *Exporter) ExportAll(ctx context.Context) ([]string, error) {
	sources, err := e.Sources()
	if err != nil {
		return nil, err
	}

	var paths []string
	var errs []error
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		path, err := e.Export(ctx, src)
		if err != nil {
			e.logger.Error("export failed", "source", src, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", src, err))
			continue
		}
		paths = append(paths, path)
	}
	return paths, errors.Join(errs...)
}
