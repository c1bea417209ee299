package services

import (
	"context"
	"sync"
)

// MockTextGenerator is a TextGenerator for tests.
type MockTextGenerator struct {
	GenerateJSONFunc func(ctx context.Context, prompt string) (string, error)

	// Track calls for testing
	GenerateJSONCalls []string

	mu sync.Mutex
}

func NewMockTextGenerator() *MockTextGenerator {
	return &MockTextGenerator{
		GenerateJSONCalls: make([]string, 0),
	}
}

func (m *MockTextGenerator) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.GenerateJSONCalls = append(m.GenerateJSONCalls, prompt)
	fn := m.GenerateJSONFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, prompt)
	}

	// Default behavior - a valid two-option page
	return `{"text":"Mock page","options":[{"id":"a","summary":"First","textHint":"First hint"},{"id":"b","summary":"Second","textHint":"Second hint"}]}`, nil
}

// Calls returns a copy of the prompts received so far.
func (m *MockTextGenerator) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.GenerateJSONCalls...)
}

// MockImageGenerator is an ImageGenerator for tests.
type MockImageGenerator struct {
	GenerateImageFunc func(ctx context.Context, prompt string) (string, error)

	GenerateImageCalls []string

	mu sync.Mutex
}

func NewMockImageGenerator() *MockImageGenerator {
	return &MockImageGenerator{
		GenerateImageCalls: make([]string, 0),
	}
}

func (m *MockImageGenerator) GenerateImage(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.GenerateImageCalls = append(m.GenerateImageCalls, prompt)
	fn := m.GenerateImageFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, prompt)
	}
	return "https://images.mock/scene.png", nil
}

func (m *MockImageGenerator) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.GenerateImageCalls...)
}
