package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Supported transcription providers.
const (
	ProviderGemini     = "gemini"
	ProviderOpenAI     = "openai"
	ProviderElevenLabs = "elevenlabs"
)

type Config struct {
	Port string `env:"PORT" envDefault:"3000"`

	Provider         string `env:"TRANSCRIBE_PROVIDER" envDefault:"gemini"`
	GoogleAPIKey     string `env:"GOOGLE_API_KEY"`
	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	ElevenLabsAPIKey string `env:"ELEVENLABS_API_KEY"`

	GeminiBaseURL string `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com"`
	GeminiModel   string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	OpenAIModel   string `env:"OPENAI_MODEL" envDefault:"whisper-1"`

	ElevenLabsBaseURL string `env:"ELEVENLABS_BASE_URL" envDefault:"https://api.elevenlabs.io"`
	ElevenLabsModel   string `env:"ELEVENLABS_MODEL" envDefault:"scribe_v1"`

	Prompt            string        `env:"TRANSCRIBE_PROMPT" envDefault:"Transcribe the following audio."`
	TranscribeTimeout time.Duration `env:"TRANSCRIBE_TIMEOUT" envDefault:"30s"`

	StaticDir string `env:"STATIC_DIR" envDefault:"web"`

	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"60s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"90s"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Overrides holds CLI flag values that take priority over env vars.
type Overrides struct {
	EnvFile   string
	Port      string
	LogLevel  string
	StaticDir string
	Provider  string
}

// Load reads configuration from .env file, environment variables, and CLI overrides.
// Priority: CLI flags > environment variables > .env file > struct defaults.
func Load(overrides Overrides) (*Config, error) {
	envFile := overrides.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := LoadEnvFile(envFile); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Apply CLI overrides (non-empty values win)
	if overrides.Port != "" {
		cfg.Port = overrides.Port
	}
	if overrides.LogLevel != "" {
		cfg.LogLevel = overrides.LogLevel
	}
	if overrides.StaticDir != "" {
		cfg.StaticDir = overrides.StaticDir
	}
	if overrides.Provider != "" {
		cfg.Provider = overrides.Provider
	}

	switch cfg.Provider {
	case ProviderGemini, ProviderOpenAI, ProviderElevenLabs:
	default:
		return nil, fmt.Errorf("unknown TRANSCRIBE_PROVIDER %q: must be %q, %q or %q",
			cfg.Provider, ProviderGemini, ProviderOpenAI, ProviderElevenLabs)
	}

	return cfg, nil
}

// HTTPAddr is the listen address derived from Port.
func (c *Config) HTTPAddr() string {
	return ":" + c.Port
}

// APIKey returns the key for the active provider. An empty key is not an
// error at startup; the relay reports it on first use.
func (c *Config) APIKey() string {
	switch c.Provider {
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderElevenLabs:
		return c.ElevenLabsAPIKey
	}
	return c.GoogleAPIKey
}

// ProviderEndpoint returns the base URL and model for the active provider.
func (c *Config) ProviderEndpoint() (baseURL, model string) {
	switch c.Provider {
	case ProviderOpenAI:
		return c.OpenAIBaseURL, c.OpenAIModel
	case ProviderElevenLabs:
		return c.ElevenLabsBaseURL, c.ElevenLabsModel
	}
	return c.GeminiBaseURL, c.GeminiModel
}

// MissingKeyMessage is the client-facing error returned when APIKey is empty.
func (c *Config) MissingKeyMessage() string {
	switch c.Provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY is missing in backend/.env."
	case ProviderElevenLabs:
		return "ELEVENLABS_API_KEY is missing in backend/.env."
	}
	return "GOOGLE_API_KEY is missing in backend/.env."
}
