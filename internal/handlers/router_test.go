package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jwebster45206/storyloom/internal/services"
	"github.com/jwebster45206/storyloom/pkg/gateway"
	"github.com/jwebster45206/storyloom/pkg/story"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The gateway client and the router must agree on paths and payloads.
func TestRouter_WithGatewayClient(t *testing.T) {
	text := services.NewMockTextGenerator()
	images := services.NewMockImageGenerator()
	server := httptest.NewServer(NewRouter(RouterConfig{
		Text:              text,
		Images:            images,
		Provider:          "openai",
		CORSAllowedOrigin: "*",
		Logger:            testLogger(),
	}))
	defer server.Close()

	client := gateway.New(server.URL)
	ctx := context.Background()

	require.NoError(t, client.Health(ctx))

	page, err := client.GenerateStoryPage(ctx, story.StoryGenerationRequest{State: story.NewState(story.StoryState{})})
	require.NoError(t, err)
	assert.Equal(t, "Mock page", page.Text)

	img, err := client.GenerateImage(ctx, story.ImageGenerationRequest{Description: "x", State: story.NewState(story.StoryState{})})
	require.NoError(t, err)
	assert.Equal(t, "https://images.mock/scene.png", img.ImageURL)

	pdf, err := client.ExportPDF(ctx, story.NewState(story.StoryState{}))
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)

	_, err = client.FetchSuggestions(ctx, story.SuggestionRequest{})
	var apiErr *gateway.APIError
	require.ErrorAs(t, err, &apiErr, "default mock reply has no suggestions")
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	h := NewRouter(RouterConfig{
		Text:              services.NewMockTextGenerator(),
		Images:            services.NewMockImageGenerator(),
		CORSAllowedOrigin: "*",
		Logger:            testLogger(),
	})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/generate/story", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
