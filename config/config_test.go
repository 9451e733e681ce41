package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/quizpipe/ai"
	"github.com/poiesic/quizpipe/core"
	"github.com/poiesic/quizpipe/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		LLM: LLMConfig{Provider: "ollama", ModelName: "gemma3:12b"},
		Prompts: PromptsConfig{
			TermAnalysis:       "terms",
			ConceptAnalysis:    "concepts",
			QuestionGeneration: "questions",
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid config", mutate: func(c *Config) {}},
		{name: "provider is case insensitive", mutate: func(c *Config) { c.LLM.Provider = " GenAI " }},
		{name: "unknown provider", mutate: func(c *Config) { c.LLM.Provider = "claude" }, wantErr: true},
		{name: "missing model", mutate: func(c *Config) { c.LLM.ModelName = "" }, wantErr: true},
		{name: "overlap equals size", mutate: func(c *Config) { c.SplitText = SplitTextConfig{ChunkSize: 50, Overlap: 50} }, wantErr: true},
		{name: "negative overlap", mutate: func(c *Config) { c.SplitText = SplitTextConfig{ChunkSize: 50, Overlap: -1} }, wantErr: true},
		{name: "explicit zero overlap", mutate: func(c *Config) { c.SplitText = SplitTextConfig{ChunkSize: 50} }},
		{name: "missing prompt", mutate: func(c *Config) { c.Prompts.QuestionGeneration = "" }, wantErr: true},
		{name: "unknown whisper backend", mutate: func(c *Config) { c.Whisper.Backend = "cloud" }, wantErr: true},
		{name: "unknown log level", mutate: func(c *Config) { c.Logging.Level = "verbose" }, wantErr: true},
		{name: "negative rate", mutate: func(c *Config) { c.LLM.RequestsPerMinute = -5 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_Defaults(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.Provider = ""
	cfg.Audio.Extensions = []string{"*.mp3", "m4a"}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ai.ProviderOllama, cfg.LLM.Provider)
	assert.Equal(t, 1, cfg.LLM.MaxAttempts)
	assert.Equal(t, time.Second, cfg.LLM.RetryDelay)
	assert.Equal(t, FoldersConfig{
		TextOutput:   "text",
		SourceFile:   "source_file",
		ResultFolder: "result",
		ExportFolder: "export",
	}, cfg.Folders)
	assert.Equal(t, SplitTextConfig{ChunkSize: 1500, Overlap: 50}, cfg.SplitText)
	assert.Equal(t, WhisperLocal, cfg.Whisper.Backend)
	assert.Equal(t, "whisper-cli", cfg.Whisper.BinaryPath)
	assert.Equal(t, 4, cfg.Whisper.Threads)
	assert.Equal(t, []string{"mp3", "m4a"}, cfg.Audio.Extensions)
	assert.Equal(t, "yt-dlp", cfg.Downloader.BinaryPath)
	assert.Equal(t, 1, cfg.Downloader.Workers)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Journal.Path)
}

func TestLoad(t *testing.T) {
	content := `
llm:
  provider: openai
  model_name: gpt-4o-mini
  host: http://localhost:8000
  max_attempts: 3
  retry_delay: 250ms
  requests_per_minute: 30

folders:
  text_output: out/text
  result_folder: out/result

urls:
  - https://youtu.be/one
  - https://youtu.be/two

split_text:
  chunk_size: 1000
  overlap: 100

whisper:
  backend: openai
  model: whisper-1
  language: ko

journal:
  path: .quizpipe/journal

prompts:
  용어분석_에이전트: "용어를 분석하세요"
  concept_analysis: "개념을 분석하세요"
  문제출제_에이전트: "문제를 출제하세요"
  source_label: "Source: "
  unknown_key: ignored
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ai.ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, 3, cfg.LLM.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.LLM.RetryDelay)
	assert.Equal(t, 30, cfg.LLM.RequestsPerMinute)
	assert.Equal(t, "out/text", cfg.Folders.TextOutput)
	assert.Equal(t, "source_file", cfg.Folders.SourceFile)
	assert.Equal(t, []string{"https://youtu.be/one", "https://youtu.be/two"}, cfg.URLs)
	assert.Equal(t, SplitTextConfig{ChunkSize: 1000, Overlap: 100}, cfg.SplitText)
	assert.Equal(t, WhisperOpenAI, cfg.Whisper.Backend)
	assert.Equal(t, ".quizpipe/journal", cfg.Journal.Path)

	prompts := cfg.GenerationPrompts()
	assert.Equal(t, "용어를 분석하세요", prompts.TermAnalysis)
	assert.Equal(t, "개념을 분석하세요", prompts.ConceptAnalysis)
	assert.Equal(t, "문제를 출제하세요", prompts.QuestionGeneration)
	assert.Equal(t, "Source: ", prompts.SourceLabel)
	assert.Equal(t, generation.DefaultTermSeedLabel, prompts.TermSeedLabel)
}

func TestLoad_ExampleFile(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "config.example.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ai.ProviderOllama, cfg.LLM.Provider)
	assert.Equal(t, 2*time.Second, cfg.LLM.RetryDelay)
	assert.Equal(t, "models/ggml-large-v3.bin", cfg.Whisper.ModelPath)
	assert.Equal(t, "192K", cfg.Downloader.AudioQuality)

	prompts := cfg.GenerationPrompts()
	assert.Contains(t, prompts.QuestionGeneration, `{"questions": [...]}`)
	assert.Equal(t, generation.DefaultSourceLabel, prompts.SourceLabel)
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [unclosed"), 0644))
	_, err = Load(path)
	assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
}

func TestAIConfig(t *testing.T) {
	env := map[string]string{"OPENAI_API_KEY": "sk-openai", "GOOGLE_API_KEY": "g-key"}
	getenv := func(k string) string { return env[k] }

	cfg := validConfig()
	cfg.LLM = LLMConfig{Provider: "genai", ModelName: "gemini-2.0-flash", MaxAttempts: 2, RequestsPerMinute: 15}
	require.NoError(t, cfg.Validate())

	aiCfg := cfg.AIConfig(getenv)
	require.NoError(t, aiCfg.Validate())
	assert.Equal(t, ai.ProviderGemini, aiCfg.Provider)
	assert.Equal(t, "g-key", aiCfg.APIKey)
	assert.Equal(t, 2, aiCfg.MaxAttempts)
	assert.Equal(t, 15, aiCfg.RequestsPerMinute)

	cfg.LLM.Provider = "openai"
	aiCfg = cfg.AIConfig(getenv)
	assert.Equal(t, "sk-openai", aiCfg.APIKey)
	assert.Empty(t, aiCfg.Host)

	cfg.LLM = LLMConfig{Provider: "ollama", ModelName: "llama3", MaxAttempts: 1}
	aiCfg = cfg.AIConfig(getenv)
	assert.Equal(t, ai.DefaultConfig().Host, aiCfg.Host)
	assert.Empty(t, aiCfg.APIKey)
}
