package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/quizpipe/chunking"
	"github.com/poiesic/quizpipe/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// writeConfig writes a config rooted in a temp dir and returns its path and
// the transcript directory.
func writeConfig(t *testing.T, extra string) (string, string) {
	root := t.TempDir()
	textDir := filepath.Join(root, "text")
	content := fmt.Sprintf(`
llm:
  provider: ollama
  model_name: gemma3:12b
folders:
  text_output: %s
  source_file: %s
  result_folder: %s
  export_folder: %s
split_text:
  chunk_size: 20
  overlap: 5
prompts:
  term_analysis: terms
  concept_analysis: concepts
  question_generation: questions
%s`, textDir, filepath.Join(root, "audio"), filepath.Join(root, "result"), filepath.Join(root, "export"), extra)

	path := filepath.Join(root, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path, textDir
}

func writeTranscript(t *testing.T, dir, name, text string) string {
	require.NoError(t, os.MkdirAll(dir, 0755))
	data, err := core.EncodeJSON(&core.Transcript{FileName: name, Text: text, Timestamp: time.Now()})
	require.NoError(t, err)
	path := filepath.Join(dir, name+".json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestNewApp(t *testing.T) {
	app := newApp()

	var names []string
	for _, cmd := range app.Commands {
		names = append(names, cmd.Name)
	}
	assert.Equal(t, []string{"run", "download", "transcribe", "process", "split", "status", "export", "watch"}, names)

	t.Run("config has a default", func(t *testing.T) {
		var configFlag *cli.StringFlag
		for _, flag := range app.Flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == "config" {
				configFlag = f
			}
		}
		require.NotNil(t, configFlag)
		assert.Equal(t, "config.yaml", configFlag.Value)
		assert.Equal(t, []string{"c"}, configFlag.Aliases)
	})
}

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"Warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := parseLevel(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := parseLevel("verbose")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestSetupLogger(t *testing.T) {
	t.Run("invalid log level", func(t *testing.T) {
		err := newApp().Run([]string{"quizpipe", "--log-level", "verbose", "status"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("flag sets level", func(t *testing.T) {
		cfgPath, _ := writeConfig(t, "")
		require.NoError(t, newApp().Run([]string{"quizpipe", "-c", cfgPath, "-l", "warn", "status"}))
		assert.Equal(t, slog.LevelWarn, logLevel.Level())
	})

	t.Run("config sets level when flag is absent", func(t *testing.T) {
		cfgPath, _ := writeConfig(t, "logging:\n  level: debug\n")
		require.NoError(t, newApp().Run([]string{"quizpipe", "-c", cfgPath, "status"}))
		assert.Equal(t, slog.LevelDebug, logLevel.Level())
	})

	t.Run("flag wins over config", func(t *testing.T) {
		cfgPath, _ := writeConfig(t, "logging:\n  level: debug\n")
		require.NoError(t, newApp().Run([]string{"quizpipe", "-c", cfgPath, "-l", "error", "status"}))
		assert.Equal(t, slog.LevelError, logLevel.Level())
	})
}

func TestConfigErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		err := newApp().Run([]string{"quizpipe", "-c", filepath.Join(t.TempDir(), "nope.yaml"), "status"})
		require.Error(t, err)
	})

	t.Run("invalid config", func(t *testing.T) {
		cfgPath, _ := writeConfig(t, "whisper:\n  backend: cloud\n")
		err := newApp().Run([]string{"quizpipe", "-c", cfgPath, "status"})
		assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
	})
}

func TestSplitCommand(t *testing.T) {
	cfgPath, textDir := writeConfig(t, "")
	path := writeTranscript(t, textDir, "lecture.mp3", "Hello world. This is a test! Done?")

	t.Run("uses config sizing", func(t *testing.T) {
		require.NoError(t, newApp().Run([]string{"quizpipe", "-c", cfgPath, "split", path}))
	})

	t.Run("flags override config", func(t *testing.T) {
		err := newApp().Run([]string{"quizpipe", "-c", cfgPath, "split", "--chunk-size", "10", "--overlap", "10", path})
		assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
	})

	t.Run("needs one file", func(t *testing.T) {
		err := newApp().Run([]string{"quizpipe", "-c", cfgPath, "split"})
		require.Error(t, err)
	})

	t.Run("unreadable transcript", func(t *testing.T) {
		err := newApp().Run([]string{"quizpipe", "-c", cfgPath, "split", filepath.Join(textDir, "missing.json")})
		assert.ErrorIs(t, err, core.ErrIOFailure)
	})
}

func TestStatusCommand(t *testing.T) {
	cfgPath, textDir := writeConfig(t, fmt.Sprintf("journal:\n  path: %s\n", filepath.Join(t.TempDir(), "journal")))
	writeTranscript(t, textDir, "lecture.mp3", "Hello world.")

	require.NoError(t, newApp().Run([]string{"quizpipe", "-c", cfgPath, "status", "--runs", "3"}))
}

func TestTranscriptSources(t *testing.T) {
	dir := t.TempDir()
	writeTranscript(t, dir, "b.m4a", "b")
	writeTranscript(t, dir, "a.mp3", "a")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.json"), []byte("{}"), 0644))

	sources, err := transcriptSources(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.mp3", "b.m4a"}, sources)

	sources, err = transcriptSources(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, sources)
}

func TestPrintSpans(t *testing.T) {
	text := "Hello world. This is a test! Done?"
	spans, err := chunking.Spans(text, 20, 5)
	require.NoError(t, err)

	var buf bytes.Buffer
	printSpans(&buf, text, spans)
	out := buf.String()
	assert.Contains(t, out, fmt.Sprintf("%d chunks", len(spans)))
	assert.Contains(t, out, "Hello world.")
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "a b c", preview([]rune("a\n b\t\tc ")))

	long := []rune(string(bytes.Repeat([]byte("가"), previewRunes+10)))
	got := []rune(preview(long))
	assert.Len(t, got, previewRunes+1)
	assert.Equal(t, '…', got[len(got)-1])
}
