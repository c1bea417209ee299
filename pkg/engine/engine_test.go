package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jwebster45206/storyloom/pkg/gateway"
	"github.com/jwebster45206/storyloom/pkg/story"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockGateway is a Gateway for tests with optional function overrides and
// call tracking.
type mockGateway struct {
	GenerateStoryPageFunc func(ctx context.Context, req story.StoryGenerationRequest) (*story.StoryGenerationResponse, error)
	GenerateImageFunc     func(ctx context.Context, req story.ImageGenerationRequest) (*story.ImageGenerationResponse, error)

	StoryCalls []story.StoryGenerationRequest
	ImageCalls []story.ImageGenerationRequest

	mu sync.Mutex
}

func (m *mockGateway) GenerateStoryPage(ctx context.Context, req story.StoryGenerationRequest) (*story.StoryGenerationResponse, error) {
	m.mu.Lock()
	m.StoryCalls = append(m.StoryCalls, req)
	fn := m.GenerateStoryPageFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return &story.StoryGenerationResponse{
		Text: "The lantern flickered.",
		Options: []story.OptionDraft{
			{ID: "left", Summary: "Take the left tunnel", TextHint: "A damp tunnel"},
			{ID: "right", Summary: "Take the right tunnel", TextHint: "A warm tunnel"},
		},
	}, nil
}

func (m *mockGateway) GenerateImage(ctx context.Context, req story.ImageGenerationRequest) (*story.ImageGenerationResponse, error) {
	m.mu.Lock()
	m.ImageCalls = append(m.ImageCalls, req)
	n := len(m.ImageCalls)
	fn := m.GenerateImageFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return &story.ImageGenerationResponse{ImageURL: fmt.Sprintf("https://img.test/%d.png", n)}, nil
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func fixedClock() time.Time {
	return time.UnixMilli(1700000000000)
}

func newTestEngine(gw Gateway, opts ...Option) *Engine {
	opts = append([]Option{WithIDGenerator(sequentialIDs()), WithClock(fixedClock)}, opts...)
	return New(gw, opts...)
}

func TestGenerateInitialPage_Success(t *testing.T) {
	gw := &mockGateway{}
	var phases []Phase
	e := newTestEngine(gw, WithObserver(func(s Snapshot) {
		phases = append(phases, s.Phase)
	}))

	require.NoError(t, e.GenerateInitialPage(context.Background()))

	s := e.State()
	require.Len(t, s.Pages, 1)
	page := s.Pages[0]
	assert.Equal(t, "id-1", page.ID)
	assert.Equal(t, "The lantern flickered.", page.Text)
	assert.Equal(t, int64(1700000000000), page.CreatedAt)
	assert.Equal(t, "https://img.test/1.png", page.ImageURL)
	require.Len(t, page.Options, 2)
	assert.Equal(t, "left", page.Options[0].ID)
	assert.Equal(t, "https://img.test/2.png", page.Options[0].ImageURL)
	assert.Equal(t, "https://img.test/3.png", page.Options[1].ImageURL)

	assert.Equal(t, PhaseIdle, e.Phase())
	assert.Empty(t, e.Err())
	assert.Contains(t, phases, PhaseGeneratingPage)
	assert.Contains(t, phases, PhaseGeneratingOptions)
	assert.Equal(t, PhaseIdle, phases[len(phases)-1])

	require.Len(t, gw.StoryCalls, 1)
	assert.Empty(t, gw.StoryCalls[0].ContinueFromOptionID)

	require.Len(t, gw.ImageCalls, 3)
	assert.Equal(t, "The lantern flickered.", gw.ImageCalls[0].Description)
	assert.Len(t, gw.ImageCalls[0].State.Pages, 1, "page image request sees the appended page")
	assert.Empty(t, gw.ImageCalls[0].OptionID)
	assert.Equal(t, "A damp tunnel\nFocus on key visual elements mentioned.", gw.ImageCalls[1].Description)
	assert.Equal(t, "left", gw.ImageCalls[1].OptionID)
	assert.Equal(t, "right", gw.ImageCalls[2].OptionID)
}

func TestGenerateInitialPage_NoOpWhenStarted(t *testing.T) {
	gw := &mockGateway{}
	e := newTestEngine(gw)

	require.NoError(t, e.GenerateInitialPage(context.Background()))
	require.NoError(t, e.GenerateInitialPage(context.Background()))

	assert.Len(t, gw.StoryCalls, 1)
	assert.Len(t, e.State().Pages, 1)
}

func TestTurn_StoryFailure(t *testing.T) {
	gw := &mockGateway{
		GenerateStoryPageFunc: func(ctx context.Context, req story.StoryGenerationRequest) (*story.StoryGenerationResponse, error) {
			return nil, &gateway.APIError{StatusCode: 500, Body: "Server missing OPENAI_API_KEY configuration."}
		},
	}
	e := newTestEngine(gw)

	err := e.GenerateInitialPage(context.Background())
	require.Error(t, err)

	var apiErr *gateway.APIError
	assert.True(t, errors.As(err, &apiErr))
	assert.Empty(t, e.State().Pages)
	assert.Contains(t, e.Err(), "API error 500")
	assert.Equal(t, PhaseIdle, e.Phase())
	assert.Empty(t, gw.ImageCalls)
}

func TestTurn_PageImageFailureKeepsPage(t *testing.T) {
	gw := &mockGateway{
		GenerateImageFunc: func(ctx context.Context, req story.ImageGenerationRequest) (*story.ImageGenerationResponse, error) {
			return nil, errors.New("image backend down")
		},
	}
	e := newTestEngine(gw)

	err := e.GenerateInitialPage(context.Background())
	require.Error(t, err)

	s := e.State()
	require.Len(t, s.Pages, 1)
	assert.Empty(t, s.Pages[0].ImageURL)
	for _, opt := range s.Pages[0].Options {
		assert.Empty(t, opt.ImageURL)
	}
	assert.Contains(t, e.Err(), "image backend down")
	assert.Equal(t, PhaseIdle, e.Phase())
	assert.Len(t, gw.ImageCalls, 1, "option images are not requested after a page image failure")
}

func TestTurn_OneOptionImageFails(t *testing.T) {
	gw := &mockGateway{}
	gw.GenerateImageFunc = func(ctx context.Context, req story.ImageGenerationRequest) (*story.ImageGenerationResponse, error) {
		if req.OptionID == "right" {
			return nil, errors.New("rate limited")
		}
		return &story.ImageGenerationResponse{ImageURL: "https://img.test/" + req.OptionID}, nil
	}
	e := newTestEngine(gw)

	require.NoError(t, e.GenerateInitialPage(context.Background()))

	page := e.CurrentPage()
	require.NotNil(t, page)
	assert.Equal(t, "https://img.test/", page.ImageURL)
	require.Len(t, page.Options, 2)
	assert.Equal(t, "https://img.test/left", page.Options[0].ImageURL)
	assert.Empty(t, page.Options[1].ImageURL)
	assert.Equal(t, "right", page.Options[1].ID, "failed options are kept")
	assert.Empty(t, e.Err())
}

func TestTurn_OptionIDs(t *testing.T) {
	gw := &mockGateway{
		GenerateStoryPageFunc: func(ctx context.Context, req story.StoryGenerationRequest) (*story.StoryGenerationResponse, error) {
			return &story.StoryGenerationResponse{
				Text: "Two doors.",
				Options: []story.OptionDraft{
					{Summary: "First"},
					{ID: "door", Summary: "Second"},
					{ID: "door", Summary: "Third"},
				},
			}, nil
		},
	}
	e := newTestEngine(gw)

	require.NoError(t, e.GenerateInitialPage(context.Background()))

	opts := e.CurrentPage().Options
	require.Len(t, opts, 3)
	ids := map[string]bool{}
	for _, o := range opts {
		assert.NotEmpty(t, o.ID)
		assert.False(t, ids[o.ID], "duplicate option id %s", o.ID)
		ids[o.ID] = true
	}
	assert.Equal(t, "door", opts[1].ID)
}

func TestTurn_LoreUpdate(t *testing.T) {
	setting := "the sunken library"
	gw := &mockGateway{
		GenerateStoryPageFunc: func(ctx context.Context, req story.StoryGenerationRequest) (*story.StoryGenerationResponse, error) {
			return &story.StoryGenerationResponse{
				Text:       "Water everywhere.",
				LoreUpdate: &story.LoreUpdate{Setting: &setting},
			}, nil
		},
	}
	initial := story.NewState(story.StoryState{})
	initial.Lore.Rules = []string{"no fire"}
	e := newTestEngine(gw, WithState(initial))

	require.NoError(t, e.GenerateInitialPage(context.Background()))

	lore := e.State().Lore
	assert.Equal(t, "the sunken library", lore.Setting)
	assert.Equal(t, []string{"no fire"}, lore.Rules)
	assert.Equal(t, "the sunken library", gw.ImageCalls[0].State.Lore.Setting, "page image sees the updated lore")
}

func TestChooseOption_SendsContinuation(t *testing.T) {
	gw := &mockGateway{}
	e := newTestEngine(gw)

	require.NoError(t, e.GenerateInitialPage(context.Background()))
	require.NoError(t, e.ChooseOption(context.Background(), "right"))

	require.Len(t, gw.StoryCalls, 2)
	assert.Equal(t, "right", gw.StoryCalls[1].ContinueFromOptionID)
	assert.Len(t, gw.StoryCalls[1].State.Pages, 1)

	s := e.State()
	require.Len(t, s.Pages, 2)
	assert.NotEqual(t, s.Pages[0].ID, s.Pages[1].ID)
	assert.Equal(t, s.Pages[1].ID, e.CurrentPage().ID)
}

func TestUpdateStoryMeta(t *testing.T) {
	e := newTestEngine(&mockGateway{})

	genre := "scifi"
	age := story.AgeKids
	e.UpdateStoryMeta(story.StoryMeta{Genre: &genre, AgeBracket: &age})

	s := e.State()
	assert.Equal(t, "scifi", s.Genre)
	assert.Equal(t, story.InferStyleGuide(story.AgeKids, "scifi"), s.StyleGuide)
}

func TestResetStory(t *testing.T) {
	setting := "a castle"
	gw := &mockGateway{
		GenerateStoryPageFunc: func(ctx context.Context, req story.StoryGenerationRequest) (*story.StoryGenerationResponse, error) {
			return &story.StoryGenerationResponse{Text: "Hello.", LoreUpdate: &story.LoreUpdate{Setting: &setting, Rules: []string{"r"}}}, nil
		},
	}
	e := newTestEngine(gw)
	theme := "dragons"
	locale := story.LocaleEnglish
	e.UpdateStoryMeta(story.StoryMeta{Theme: &theme, Locale: &locale})
	require.NoError(t, e.GenerateInitialPage(context.Background()))

	e.ResetStory()

	s := e.State()
	assert.Empty(t, s.Pages)
	assert.Equal(t, story.EmptyLore(), s.Lore)
	assert.Equal(t, "dragons", s.Theme)
	assert.Equal(t, story.LocaleEnglish, s.Locale)
	assert.Nil(t, e.CurrentPage())
}

func TestExportImport_RoundTrip(t *testing.T) {
	e := newTestEngine(&mockGateway{})
	require.NoError(t, e.GenerateInitialPage(context.Background()))

	exported, err := e.ExportState()
	require.NoError(t, err)
	assert.True(t, strings.Contains(exported, "\n  \"locale\""), "export is indented")

	other := newTestEngine(&mockGateway{})
	require.NoError(t, other.ImportState(exported))
	assert.Equal(t, e.State(), other.State())

	again, err := other.ExportState()
	require.NoError(t, err)
	assert.Equal(t, exported, again)
}

func TestExportImport_RoundTripVerbatim(t *testing.T) {
	empty := ""
	kids := story.AgeBracket("Kids")
	odd := story.Locale("fr-FR")

	tests := []struct {
		name string
		meta *story.StoryMeta
	}{
		{name: "default state without pages"},
		{name: "empty genre", meta: &story.StoryMeta{Genre: &empty}},
		{name: "unlisted age bracket", meta: &story.StoryMeta{AgeBracket: &kids}},
		{name: "unlisted locale", meta: &story.StoryMeta{Locale: &odd}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(&mockGateway{})
			if tt.meta != nil {
				e.UpdateStoryMeta(*tt.meta)
			}

			exported, err := e.ExportState()
			require.NoError(t, err)

			other := newTestEngine(&mockGateway{})
			require.NoError(t, other.ImportState(exported))
			assert.Equal(t, e.State(), other.State())
			assert.Empty(t, other.Err())
		})
	}
}

func TestImportState_Invalid(t *testing.T) {
	e := newTestEngine(&mockGateway{})
	require.NoError(t, e.GenerateInitialPage(context.Background()))
	before := e.State()

	tests := []string{
		"not json",
		"null",
		`[]`,
		`{"pages":"nope"}`,
	}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			err := e.ImportState(input)
			assert.ErrorIs(t, err, ErrInvalidImport)
			assert.NotEmpty(t, e.Err())
			assert.Equal(t, before, e.State())
		})
	}
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "idle", PhaseIdle.String())
	assert.Equal(t, "generating_page", PhaseGeneratingPage.String())
	assert.Equal(t, "generating_options", PhaseGeneratingOptions.String())
}
