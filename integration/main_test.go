//go:build integration
// +build integration

package integration

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/jwebster45206/storyloom/pkg/engine"
	"github.com/jwebster45206/storyloom/pkg/gateway"
	"github.com/jwebster45206/storyloom/pkg/story"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests drive a running API with real backends:
//
//	go run ./cmd/api &
//	go test -tags integration ./integration/...

func TestMain(m *testing.M) {
	fmt.Printf("Running Storyloom Integration Tests\n")
	fmt.Printf("   API Base URL: %s\n", apiBaseURL())
	os.Exit(m.Run())
}

func apiBaseURL() string {
	if v := os.Getenv("API_BASE_URL"); v != "" {
		return v
	}
	return "http://localhost:8787"
}

func newClient() *gateway.Client {
	timeoutSeconds := getIntEnv("TEST_TIMEOUT_SECONDS", 300)
	return gateway.New(apiBaseURL(), gateway.WithHTTPClient(&http.Client{
		Timeout: time.Duration(timeoutSeconds) * time.Second,
	}))
}

func TestSuggestions(t *testing.T) {
	resp, err := newClient().FetchSuggestions(context.Background(), story.SuggestionRequest{
		Locale:     story.LocaleEnglish,
		AgeBracket: story.AgeKids,
		Genre:      "fantasy",
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(resp.Suggestions), story.MinSuggestions)
	assert.LessOrEqual(t, len(resp.Suggestions), story.MaxSuggestions)
}

func TestTwoTurns(t *testing.T) {
	client := newClient()
	ctx := context.Background()
	require.NoError(t, client.Health(ctx))

	eng := engine.New(client, engine.WithState(story.StoryState{
		Locale:     story.LocaleEnglish,
		AgeBracket: story.AgeTeens,
		Genre:      "mystery",
		Theme:      "a lighthouse that keeps moving",
	}))

	require.NoError(t, eng.GenerateInitialPage(ctx))
	first := eng.CurrentPage()
	require.NotNil(t, first)
	assert.NotEmpty(t, first.Text)
	assert.NotEmpty(t, first.ImageURL)
	require.NotEmpty(t, first.Options)
	t.Logf("page 1: %d options, lore setting %q", len(first.Options), eng.State().Lore.Setting)

	require.NoError(t, eng.ChooseOption(ctx, first.Options[0].ID))
	assert.Len(t, eng.State().Pages, 2)
	assert.Empty(t, eng.Err())

	exported, err := eng.ExportState()
	require.NoError(t, err)
	pdf, err := client.ExportPDF(ctx, eng.State())
	require.NoError(t, err)
	t.Logf("export: %d bytes of JSON, %d bytes of PDF", len(exported), len(pdf))
}

func getIntEnv(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}
