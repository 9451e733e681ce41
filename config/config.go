// Package config loads the quizpipe YAML configuration file.
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/poiesic/quizpipe/ai"
	"github.com/poiesic/quizpipe/chunking"
	"github.com/poiesic/quizpipe/core"
	"github.com/poiesic/quizpipe/generation"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LLM        LLMConfig        `yaml:"llm"`
	Folders    FoldersConfig    `yaml:"folders"`
	URLs       []string         `yaml:"urls"`
	SplitText  SplitTextConfig  `yaml:"split_text"`
	Whisper    WhisperConfig    `yaml:"whisper"`
	Audio      AudioConfig      `yaml:"audio"`
	Downloader DownloaderConfig `yaml:"downloader"`
	Journal    JournalConfig    `yaml:"journal"`
	Logging    LoggingConfig    `yaml:"logging"`
	Prompts    PromptsConfig    `yaml:"prompts"`
}

type LLMConfig struct {
	Provider          string        `yaml:"provider"`
	ModelName         string        `yaml:"model_name"`
	Host              string        `yaml:"host"`
	MaxAttempts       int           `yaml:"max_attempts"`
	RetryDelay        time.Duration `yaml:"retry_delay"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
}

type FoldersConfig struct {
	TextOutput   string `yaml:"text_output"`
	SourceFile   string `yaml:"source_file"`
	ResultFolder string `yaml:"result_folder"`
	ExportFolder string `yaml:"export_folder"`
}

type SplitTextConfig struct {
	ChunkSize int `yaml:"chunk_size"`
	Overlap   int `yaml:"overlap"`
}

type WhisperConfig struct {
	// Backend is "local" (whisper.cpp) or "openai".
	Backend    string `yaml:"backend"`
	Model      string `yaml:"model"`
	ModelPath  string `yaml:"model_path"`
	BinaryPath string `yaml:"binary_path"`
	FFmpegPath string `yaml:"ffmpeg_path"`
	BaseURL    string `yaml:"base_url"`
	Language   string `yaml:"language"`
	Threads    int    `yaml:"threads"`
	Prompt     string `yaml:"prompt"`
}

type AudioConfig struct {
	Extensions []string `yaml:"extensions"`
}

type DownloaderConfig struct {
	BinaryPath   string `yaml:"binary_path"`
	AudioFormat  string `yaml:"audio_format"`
	AudioQuality string `yaml:"audio_quality"`
	Workers      int    `yaml:"workers"`
}

type JournalConfig struct {
	// Path of the journal database directory. Empty disables the journal.
	Path string `yaml:"path"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Whisper backends.
const (
	WhisperLocal  = "local"
	WhisperOpenAI = "openai"
)

var logLevels = []string{"debug", "info", "warn", "error"}

// Load reads and parses the configuration file at path. The result is not
// validated; call Validate before use.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config file: %w", core.ErrInvalidConfiguration, err)
	}
	return &cfg, nil
}

// Validate fills in defaults and checks the configuration.
// Errors wrap core.ErrInvalidConfiguration.
func (c *Config) Validate() error {
	c.applyDefaults()

	if !slices.Contains(ai.Providers, c.LLM.Provider) {
		return invalid("llm.provider %q is not one of %s", c.LLM.Provider, strings.Join(ai.Providers, ", "))
	}
	if c.LLM.ModelName == "" {
		return invalid("llm.model_name is required")
	}
	if c.LLM.MaxAttempts < 1 {
		return invalid("llm.max_attempts must be at least 1")
	}
	if c.LLM.RetryDelay < 0 || c.LLM.RequestsPerMinute < 0 {
		return invalid("llm.retry_delay and llm.requests_per_minute must not be negative")
	}
	if err := chunking.Validate(c.SplitText.ChunkSize, c.SplitText.Overlap); err != nil {
		return fmt.Errorf("split_text: %w", err)
	}
	if c.Whisper.Backend != WhisperLocal && c.Whisper.Backend != WhisperOpenAI {
		return invalid("whisper.backend %q is not one of %s, %s", c.Whisper.Backend, WhisperLocal, WhisperOpenAI)
	}
	if !slices.Contains(logLevels, c.Logging.Level) {
		return invalid("logging.level %q is not one of %s", c.Logging.Level, strings.Join(logLevels, ", "))
	}
	if err := c.GenerationPrompts().Validate(); err != nil {
		return fmt.Errorf("prompts: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" {
		c.LLM.Provider = ai.ProviderOllama
	}
	if c.LLM.MaxAttempts == 0 {
		c.LLM.MaxAttempts = 1
	}
	if c.LLM.RetryDelay == 0 {
		c.LLM.RetryDelay = time.Second
	}

	if c.Folders.TextOutput == "" {
		c.Folders.TextOutput = "text"
	}
	if c.Folders.SourceFile == "" {
		c.Folders.SourceFile = "source_file"
	}
	if c.Folders.ResultFolder == "" {
		c.Folders.ResultFolder = "result"
	}
	if c.Folders.ExportFolder == "" {
		c.Folders.ExportFolder = "export"
	}

	// An explicit overlap of 0 is only meaningful next to an explicit size.
	if c.SplitText.ChunkSize == 0 {
		c.SplitText.ChunkSize = 1500
		if c.SplitText.Overlap == 0 {
			c.SplitText.Overlap = 50
		}
	}

	c.Whisper.Backend = strings.ToLower(c.Whisper.Backend)
	if c.Whisper.Backend == "" {
		c.Whisper.Backend = WhisperLocal
	}
	if c.Whisper.BinaryPath == "" {
		c.Whisper.BinaryPath = "whisper-cli"
	}
	if c.Whisper.Language == "" {
		c.Whisper.Language = "auto"
	}
	if c.Whisper.Threads == 0 {
		c.Whisper.Threads = 4
	}

	if len(c.Audio.Extensions) == 0 {
		c.Audio.Extensions = []string{"mp3", "wav", "m4a", "flac", "aac", "ogg", "wma"}
	}
	for i, ext := range c.Audio.Extensions {
		c.Audio.Extensions[i] = strings.TrimPrefix(ext, "*.")
	}

	if c.Downloader.BinaryPath == "" {
		c.Downloader.BinaryPath = "yt-dlp"
	}
	if c.Downloader.AudioFormat == "" {
		c.Downloader.AudioFormat = "m4a"
	}
	if c.Downloader.AudioQuality == "" {
		c.Downloader.AudioQuality = "192K"
	}
	if c.Downloader.Workers == 0 {
		c.Downloader.Workers = 1
	}

	c.Logging.Level = strings.ToLower(c.Logging.Level)
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// GenerationPrompts returns the prompts section as generation prompts.
func (c *Config) GenerationPrompts() generation.Prompts {
	return generation.Prompts{
		TermAnalysis:       c.Prompts.TermAnalysis,
		ConceptAnalysis:    c.Prompts.ConceptAnalysis,
		QuestionGeneration: c.Prompts.QuestionGeneration,
		SourceLabel:        c.Prompts.SourceLabel,
		TermSeedLabel:      c.Prompts.TermSeedLabel,
		ConceptSeedLabel:   c.Prompts.ConceptSeedLabel,
	}.WithDefaults()
}

// AIConfig builds the provider configuration. API keys are looked up with
// getenv: OPENAI_API_KEY for openai, GOOGLE_API_KEY for genai.
func (c *Config) AIConfig(getenv func(string) string) *ai.Config {
	opts := []ai.ConfigOption{
		ai.WithProvider(c.LLM.Provider),
		ai.WithModel(c.LLM.ModelName),
		ai.WithRetries(c.LLM.MaxAttempts, c.LLM.RetryDelay),
		ai.WithRequestsPerMinute(c.LLM.RequestsPerMinute),
	}
	switch c.LLM.Provider {
	case ai.ProviderOpenAI:
		opts = append(opts, ai.WithHost(c.LLM.Host), ai.WithAPIKey(getenv("OPENAI_API_KEY")))
	case ai.ProviderGemini:
		opts = append(opts, ai.WithHost(c.LLM.Host), ai.WithAPIKey(getenv("GOOGLE_API_KEY")))
	default:
		if c.LLM.Host != "" {
			opts = append(opts, ai.WithHost(c.LLM.Host))
		}
	}
	return ai.NewConfig(opts...)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", core.ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}
