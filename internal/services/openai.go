package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sashabaranov/go-openai"
)

const DefaultOpenAITemperature = 0.8

// OpenAIService generates story JSON with chat completions and
// illustrations with the images API.
type OpenAIService struct {
	client     *openai.Client
	storyModel string
	imageModel string
	imageSize  string
	logger     *slog.Logger
}

func NewOpenAIService(apiKey, storyModel, imageModel, imageSize string, logger *slog.Logger) *OpenAIService {
	return newOpenAIService(openai.DefaultConfig(apiKey), storyModel, imageModel, imageSize, logger)
}

func newOpenAIService(cfg openai.ClientConfig, storyModel, imageModel, imageSize string, logger *slog.Logger) *OpenAIService {
	return &OpenAIService{
		client:     openai.NewClientWithConfig(cfg),
		storyModel: storyModel,
		imageModel: imageModel,
		imageSize:  imageSize,
		logger:     logger,
	}
}

// GenerateJSON asks for a JSON object response.
func (s *OpenAIService) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.storyModel,
		Temperature: DefaultOpenAITemperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai chat completion returned no choices")
	}

	s.logger.Debug("openai chat completion",
		"model", resp.Model,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)

	return resp.Choices[0].Message.Content, nil
}

// GenerateImage creates one illustration and returns its URL.
func (s *OpenAIService) GenerateImage(ctx context.Context, prompt string) (string, error) {
	resp, err := s.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          s.imageModel,
		Size:           s.imageSize,
		N:              1,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		return "", fmt.Errorf("openai create image: %w", err)
	}
	if len(resp.Data) == 0 {
		return "", nil
	}

	img := resp.Data[0]
	if img.URL != "" {
		return img.URL, nil
	}
	if img.B64JSON != "" {
		return "data:image/png;base64," + img.B64JSON, nil
	}
	return "", nil
}
