package whisper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/poiesic/quizpipe/ai"
	"github.com/poiesic/quizpipe/core"
	"github.com/poiesic/quizpipe/executor"
)

// ErrExecutorRequired is returned when Local is created without an executor.
var ErrExecutorRequired = errors.New("executor is required")

// LocalConfig configures the whisper.cpp transcriber.
type LocalConfig struct {
	// BinaryPath is the whisper.cpp CLI. Default: "whisper-cli"
	BinaryPath string

	// ModelPath is the ggml model file passed with -m.
	ModelPath string

	// Language forces the spoken language, which prevents hallucinated
	// translations. Default: "auto"
	Language string

	// Threads is the number of decoding threads. Default: 4
	Threads int

	// Prompt lists domain keywords that bias recognition.
	Prompt string

	// FFmpegPath converts non-WAV input to 16 kHz mono WAV. Empty disables
	// conversion.
	FFmpegPath string
}

func (c *LocalConfig) validate() error {
	if c.BinaryPath == "" {
		c.BinaryPath = "whisper-cli"
	}
	if c.Language == "" {
		c.Language = "auto"
	}
	if c.Threads <= 0 {
		c.Threads = 4
	}
	if c.ModelPath == "" {
		return fmt.Errorf("%w: whisper model path is required", core.ErrInvalidConfiguration)
	}
	return nil
}

// Local transcribes audio with the whisper.cpp command-line tool.
type Local struct {
	exec   executor.Executor
	cfg    LocalConfig
	logger *slog.Logger
}

var _ ai.Transcriber = (*Local)(nil)

// NewLocal creates a whisper.cpp transcriber.
func NewLocal(exec executor.Executor, cfg LocalConfig, logger *slog.Logger) (*Local, error) {
	if exec == nil {
		return nil, ErrExecutorRequired
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Local{
		exec:   exec,
		cfg:    cfg,
		logger: logger.With("component", "whisper-local"),
	}, nil
}

// Transcribe runs whisper.cpp with plain-text output in a scratch directory
// and returns the recognised text.
func (l *Local) Transcribe(ctx context.Context, audioPath string) (string, error) {
	workDir, err := os.MkdirTemp("", "quizpipe-whisper-*")
	if err != nil {
		return "", fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	input := audioPath
	if l.cfg.FFmpegPath != "" && !strings.EqualFold(filepath.Ext(audioPath), ".wav") {
		input, err = l.toWAV(ctx, audioPath, workDir)
		if err != nil {
			return "", err
		}
	}

	outputPrefix := filepath.Join(workDir, "transcript")

	// -otxt: plain text output
	// -l: force language
	// --output-file: output prefix, whisper appends .txt
	args := []string{
		"-m", l.cfg.ModelPath,
		"-f", input,
		"-otxt",
		"-l", l.cfg.Language,
		"-t", strconv.Itoa(l.cfg.Threads),
		"--output-file", outputPrefix,
	}
	if l.cfg.Prompt != "" {
		args = append(args, "--prompt", l.cfg.Prompt)
	}

	l.logger.Info("starting transcription", "audio", audioPath, "threads", l.cfg.Threads)
	if _, err := l.exec.Execute(ctx, l.cfg.BinaryPath, args...); err != nil {
		return "", fmt.Errorf("whisper transcribe: %w", err)
	}

	data, err := os.ReadFile(outputPrefix + ".txt")
	if err != nil {
		return "", fmt.Errorf("read whisper output: %w", err)
	}

	text := strings.TrimSpace(string(data))
	l.logger.Info("transcription completed", "audio", audioPath, "chars", len(text))
	return text, nil
}

// toWAV converts audio to 16kHz mono PCM, the format whisper.cpp expects.
func (l *Local) toWAV(ctx context.Context, audioPath, workDir string) (string, error) {
	wavPath := filepath.Join(workDir, "audio.wav")
	args := []string{
		"-i", audioPath,
		"-vn",
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-y",
		wavPath,
	}
	if _, err := l.exec.Execute(ctx, l.cfg.FFmpegPath, args...); err != nil {
		return "", fmt.Errorf("ffmpeg convert audio: %w", err)
	}
	return wavPath, nil
}

// Name returns "whisper.cpp".
func (l *Local) Name() string {
	return "whisper.cpp"
}
