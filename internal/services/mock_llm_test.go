package services

import (
	"context"
	"errors"
	"testing"
)

func TestMockTextGenerator(t *testing.T) {
	mock := NewMockTextGenerator()

	out, err := mock.GenerateJSON(context.Background(), "hello")
	if err != nil {
		t.Fatalf("GenerateJSON failed: %v", err)
	}
	if out == "" {
		t.Error("Expected default JSON output")
	}

	mock.GenerateJSONFunc = func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("boom")
	}
	if _, err := mock.GenerateJSON(context.Background(), "again"); err == nil {
		t.Error("Expected custom error")
	}

	calls := mock.Calls()
	if len(calls) != 2 || calls[0] != "hello" || calls[1] != "again" {
		t.Errorf("Unexpected calls: %v", calls)
	}
}

func TestMockImageGenerator(t *testing.T) {
	mock := NewMockImageGenerator()

	url, err := mock.GenerateImage(context.Background(), "a dragon")
	if err != nil {
		t.Fatalf("GenerateImage failed: %v", err)
	}
	if url != "https://images.mock/scene.png" {
		t.Errorf("Unexpected url %s", url)
	}
	if len(mock.Calls()) != 1 {
		t.Errorf("Expected 1 call, got %d", len(mock.Calls()))
	}
}
