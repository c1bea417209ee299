package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/jwebster45206/storyloom/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTextGenerator(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name string
		cfg  config.Config
		want any
	}{
		{
			name: "openai",
			cfg:  config.Config{LLMProvider: config.ProviderOpenAI, OpenAIAPIKey: "k"},
			want: &OpenAIService{},
		},
		{
			name: "anthropic",
			cfg:  config.Config{LLMProvider: config.ProviderAnthropic, AnthropicAPIKey: "k"},
			want: &AnthropicService{},
		},
		{
			name: "missing key",
			cfg:  config.Config{LLMProvider: config.ProviderGemini},
			want: unconfigured{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, err := NewTextGenerator(context.Background(), &tt.cfg, log)
			require.NoError(t, err)
			assert.IsType(t, tt.want, gen)
		})
	}
}

func TestUnconfigured(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	gen, err := NewTextGenerator(context.Background(), &config.Config{LLMProvider: config.ProviderOpenAI}, log)
	require.NoError(t, err)

	_, err = gen.GenerateJSON(context.Background(), "prompt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotConfigured))

	var nc *NotConfiguredError
	require.True(t, errors.As(err, &nc))
	assert.Equal(t, "OPENAI_API_KEY", nc.KeyName)

	img := NewImageGenerator(&config.Config{}, log)
	_, err = img.GenerateImage(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
