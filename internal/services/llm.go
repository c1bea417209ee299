package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/storyloom/internal/config"
)

// TextGenerator turns a prompt into a JSON document produced by a language
// model. The returned string is the raw model output.
type TextGenerator interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// ImageGenerator turns a prompt into an image URL. Inline payloads are
// returned as data: URLs.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// ErrNotConfigured is matched by errors from a backend whose API key is
// missing.
var ErrNotConfigured = errors.New("backend not configured")

// NotConfiguredError names the missing API key.
type NotConfiguredError struct {
	KeyName string
}

func (e *NotConfiguredError) Error() string {
	return fmt.Sprintf("missing %s configuration", e.KeyName)
}

func (e *NotConfiguredError) Is(target error) bool {
	return target == ErrNotConfigured
}

// unconfigured stands in for a backend without credentials so the server can
// still start. Every call fails with a NotConfiguredError.
type unconfigured struct {
	keyName string
}

func (u unconfigured) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	return "", &NotConfiguredError{KeyName: u.keyName}
}

func (u unconfigured) GenerateImage(ctx context.Context, prompt string) (string, error) {
	return "", &NotConfiguredError{KeyName: u.keyName}
}

// NewTextGenerator builds the text backend selected by LLM_PROVIDER.
func NewTextGenerator(ctx context.Context, cfg *config.Config, logger *slog.Logger) (TextGenerator, error) {
	key := cfg.TextAPIKey()
	if key == "" {
		logger.Warn("text backend API key missing, generation requests will fail",
			"provider", cfg.LLMProvider, "key", cfg.TextAPIKeyName())
		return unconfigured{keyName: cfg.TextAPIKeyName()}, nil
	}

	switch cfg.LLMProvider {
	case config.ProviderGemini:
		gemini, err := NewGeminiService(ctx, key, cfg.StoryModel, logger)
		if err != nil {
			return nil, err
		}
		return gemini, nil
	case config.ProviderAnthropic:
		return NewAnthropicService(key, cfg.StoryModel, logger), nil
	default:
		return NewOpenAIService(key, cfg.StoryModel, cfg.ImageModel, cfg.ImageSize, logger), nil
	}
}

// NewImageGenerator builds the image backend. Images always come from
// OpenAI.
func NewImageGenerator(cfg *config.Config, logger *slog.Logger) ImageGenerator {
	if cfg.OpenAIAPIKey == "" {
		logger.Warn("image backend API key missing, image requests will fail", "key", "OPENAI_API_KEY")
		return unconfigured{keyName: "OPENAI_API_KEY"}
	}
	return NewOpenAIService(cfg.OpenAIAPIKey, cfg.StoryModel, cfg.ImageModel, cfg.ImageSize, logger)
}
