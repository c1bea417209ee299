package story

import (
	"errors"
	"fmt"
	"strings"
)

// Request and response bodies exchanged between the gateway client and the
// generation server.

// StoryGenerationRequest asks for the next page.
type StoryGenerationRequest struct {
	State                StoryState `json:"state"`
	ContinueFromOptionID string     `json:"continueFromOptionId,omitempty"`
}

// OptionDraft is an option as returned by the model, before the engine
// assigns ids or images.
type OptionDraft struct {
	ID       string `json:"id"`
	Summary  string `json:"summary"`
	TextHint string `json:"textHint"`
}

// LoreUpdate carries ledger fields the model chose to change. A nil field
// means "not supplied". Lists are encoded without omitempty so that an
// explicit empty list survives a round trip as "supplied, now empty".
type LoreUpdate struct {
	Setting         *string  `json:"setting,omitempty"`
	Rules           []string `json:"rules"`
	Objects         []string `json:"objects"`
	ContinuityNotes []string `json:"continuity_notes"`
}

// StoryGenerationResponse is a freshly generated page.
type StoryGenerationResponse struct {
	Text       string        `json:"text"`
	Options    []OptionDraft `json:"options"`
	LoreUpdate *LoreUpdate   `json:"loreUpdate,omitempty"`
}

// ImageGenerationRequest asks for one illustration.
type ImageGenerationRequest struct {
	Description string     `json:"description"`
	State       StoryState `json:"state"`
	OptionID    string     `json:"optionId,omitempty"`
}

// ImageGenerationResponse carries the generated illustration location.
type ImageGenerationResponse struct {
	ImageURL string `json:"imageUrl"`
}

// SuggestionRequest asks for story starter ideas.
type SuggestionRequest struct {
	Locale     Locale     `json:"locale"`
	AgeBracket AgeBracket `json:"ageBracket"`
	Genre      string     `json:"genre"`
	Theme      string     `json:"theme,omitempty"`
}

// StorySuggestion is one starter idea.
type StorySuggestion struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Synopsis string `json:"synopsis"`
	Theme    string `json:"theme"`
}

// SuggestionResponse lists starter ideas.
type SuggestionResponse struct {
	Suggestions []StorySuggestion `json:"suggestions"`
}

const (
	MinSuggestions = 3
	MaxSuggestions = 6
)

var ErrEmptyPageText = errors.New("page text is empty")

// Validate checks the parts of a page response the engine relies on.
func (r *StoryGenerationResponse) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return ErrEmptyPageText
	}
	return nil
}

// Validate checks that an illustration location was returned.
func (r *ImageGenerationResponse) Validate() error {
	if strings.TrimSpace(r.ImageURL) == "" {
		return errors.New("image url is empty")
	}
	return nil
}

// Validate checks the suggestion count bounds.
func (r *SuggestionResponse) Validate() error {
	if n := len(r.Suggestions); n < MinSuggestions || n > MaxSuggestions {
		return fmt.Errorf("expected %d-%d suggestions, got %d", MinSuggestions, MaxSuggestions, n)
	}
	return nil
}
