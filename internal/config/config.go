package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Provider names accepted in LLM_PROVIDER.
const (
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// Story model used when STORY_MODEL is unset, per provider.
var defaultStoryModels = map[string]string{
	ProviderOpenAI:    "gpt-4.1-mini",
	ProviderGemini:    "gemini-2.5-flash",
	ProviderAnthropic: "claude-3-5-haiku-latest",
}

type Config struct {
	Port        string `env:"PORT" envDefault:"8787"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevelRaw string `env:"LOG_LEVEL" envDefault:"info"`
	LogLevel    slog.Level

	LLMProvider     string `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	GeminiAPIKey    string `env:"GEMINI_API_KEY"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`

	StoryModel string `env:"STORY_MODEL"`
	ImageModel string `env:"IMAGE_MODEL" envDefault:"dall-e-3"`
	ImageSize  string `env:"IMAGE_SIZE" envDefault:"1024x1024"`

	CORSAllowedOrigin string `env:"CORS_ALLOWED_ORIGIN" envDefault:"*"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	switch cfg.LLMProvider {
	case ProviderOpenAI, ProviderGemini, ProviderAnthropic:
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER %q (supported: %s, %s, %s)",
			cfg.LLMProvider, ProviderOpenAI, ProviderGemini, ProviderAnthropic)
	}

	if strings.TrimSpace(cfg.StoryModel) == "" {
		cfg.StoryModel = defaultStoryModels[cfg.LLMProvider]
	}

	cfg.LogLevel = parseLogLevel(cfg.LogLevelRaw)
	return &cfg, nil
}

// TextAPIKey returns the key for the configured text provider.
func (c *Config) TextAPIKey() string {
	switch c.LLMProvider {
	case ProviderGemini:
		return c.GeminiAPIKey
	case ProviderAnthropic:
		return c.AnthropicAPIKey
	default:
		return c.OpenAIAPIKey
	}
}

// TextAPIKeyName is the environment variable holding TextAPIKey.
func (c *Config) TextAPIKeyName() string {
	switch c.LLMProvider {
	case ProviderGemini:
		return "GEMINI_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
