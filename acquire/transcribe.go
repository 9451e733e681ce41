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

package acquire

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/quizpipe/ai"
	"github.com/poiesic/quizpipe/artifact"
	"github.com/poiesic/quizpipe/core"
	"github.com/poiesic/quizpipe/stage"
)

// DefaultExtensions are the audio file extensions picked up when none are configured.
var DefaultExtensions = []string{"mp3", "wav", "m4a", "flac", "aac", "ogg", "wma"}

// TranscriptionConfig holds the directories and audio types of a TranscriptionStage.
type TranscriptionConfig struct {
	SourceDir     string
	TranscriptDir string
	// Extensions without the leading dot, matched case-insensitively.
	Extensions []string
}

// TranscriptionStage writes one transcript per audio file.
type TranscriptionStage struct {
	transcriber ai.Transcriber
	cfg         TranscriptionConfig
	transcripts *artifact.DirStore
	runner      *stage.Runner[string]
	logger      *slog.Logger
}

// NewTranscriptionStage creates the transcript directory and returns a stage
// that transcribes with t.
func NewTranscriptionStage(t ai.Transcriber, cfg TranscriptionConfig, opts ...Option) (*TranscriptionStage, error) {
	if t == nil {
		return nil, ErrTranscriberRequired
	}
	if cfg.SourceDir == "" {
		return nil, fmt.Errorf("%w: source directory is required", core.ErrInvalidConfiguration)
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = DefaultExtensions
	}
	o := buildOptions(opts)

	transcripts, err := artifact.NewDirStore(cfg.TranscriptDir)
	if err != nil {
		return nil, err
	}

	s := &TranscriptionStage{
		transcriber: t,
		cfg:         cfg,
		transcripts: transcripts,
		logger:      o.logger.With("component", "transcription", "transcriber", t.Name()),
	}

	stageOpts := []stage.Option{stage.WithName("transcribe"), stage.WithLogger(o.logger)}
	if o.progress != nil {
		stageOpts = append(stageOpts, stage.WithProgress(o.progress, 1))
	}
	s.runner, err = stage.NewRunner(transcripts, s.transcribe, stageOpts...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Discover lists the audio files in the source directory, sorted by name.
// It returns core.ErrMissingInput when there are none.
func (s *TranscriptionStage) Discover() ([]string, error) {
	entries, err := os.ReadDir(s.cfg.SourceDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s does not exist", core.ErrMissingInput, s.cfg.SourceDir)
		}
		return nil, fmt.Errorf("%w: %w", core.ErrIOFailure, err)
	}

	var paths []string
	for _, e := range entries {
		if e.Type().IsRegular() && s.isAudio(e.Name()) {
			paths = append(paths, filepath.Join(s.cfg.SourceDir, e.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no audio files in %s", core.ErrMissingInput, s.cfg.SourceDir)
	}
	return paths, nil
}

// Run transcribes every audio file that has no transcript yet. Having no
// audio at all is logged and yields an empty report.
func (s *TranscriptionStage) Run(ctx context.Context) (*stage.Report, error) {
	paths, err := s.Discover()
	if err != nil {
		if !errors.Is(err, core.ErrMissingInput) {
			return nil, err
		}
		s.logger.Warn("nothing to transcribe", "error", err)
		return &stage.Report{StartedAt: time.Now(), FinishedAt: time.Now()}, nil
	}

	items := make([]stage.Item[string], len(paths))
	for i, p := range paths {
		items[i] = stage.Item[string]{Key: artifact.TranscriptName(p), Value: p}
	}
	return s.runner.Run(ctx, items)
}

func (s *TranscriptionStage) transcribe(ctx context.Context, item stage.Item[string]) ([]byte, error) {
	text, err := s.transcriber.Transcribe(ctx, item.Value)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("transcribed", "file", filepath.Base(item.Value), "runes", len([]rune(text)))

	return core.EncodeJSON(&core.Transcript{
		FileName:  filepath.Base(item.Value),
		Text:      text,
		Timestamp: time.Now(),
	})
}

func (s *TranscriptionStage) isAudio(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	for _, want := range s.cfg.Extensions {
		if strings.EqualFold(ext, strings.TrimPrefix(want, ".")) {
			return true
		}
	}
	return false
}
