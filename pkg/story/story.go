package story

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Locale is the language the story is written in.
type Locale string

const (
	LocaleSpanish Locale = "es-ES"
	LocaleEnglish Locale = "en-US"
)

// AgeBracket is the target audience tier. It controls tone, length
// and content filtering.
type AgeBracket string

const (
	AgeKids   AgeBracket = "kids"
	AgeTeens  AgeBracket = "teens"
	AgeAdults AgeBracket = "adults"
)

// CharacterRole is the narrative role of a recurring character.
type CharacterRole string

const (
	RoleProtagonist CharacterRole = "protagonist"
	RoleAntagonist  CharacterRole = "antagonist"
	RoleSupporting  CharacterRole = "supporting"
)

// CharacterDescriptor describes a recurring character so that text and
// illustrations stay consistent between pages.
type CharacterDescriptor struct {
	Name       string        `json:"name"`
	Traits     []string      `json:"traits"`
	VisualCues []string      `json:"visual_cues"`
	Role       CharacterRole `json:"role"`
}

// StyleGuide is the derived visual direction for illustrations.
type StyleGuide struct {
	ImageStyle string   `json:"imageStyle"`
	Palette    []string `json:"palette"`
	Lighting   string   `json:"lighting"`
}

// Lore is the continuity ledger carried across turns.
type Lore struct {
	Setting         string   `json:"setting"`
	Rules           []string `json:"rules"`
	Objects         []string `json:"objects"`
	ContinuityNotes []string `json:"continuity_notes"`
}

// StoryPageOption is one branch offered at the end of a page.
type StoryPageOption struct {
	ID       string `json:"id"`
	Summary  string `json:"summary"`
	TextHint string `json:"textHint"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// StoryPage is a single generated page. Text never changes after the page
// is appended; ImageURL and option images are filled in as they arrive.
type StoryPage struct {
	ID        string            `json:"id"`
	Text      string            `json:"text"`
	ImageURL  string            `json:"imageUrl"`
	CreatedAt int64             `json:"createdAt"` // unix millis
	Options   []StoryPageOption `json:"options"`
}

// StoryState is the root aggregate of a story session. It is also the
// export/import format.
type StoryState struct {
	Locale     Locale                `json:"locale"`
	AgeBracket AgeBracket            `json:"ageBracket"`
	Genre      string                `json:"genre"`
	Theme      string                `json:"theme"`
	Characters []CharacterDescriptor `json:"characters"`
	StyleGuide StyleGuide            `json:"styleGuide"`
	Lore       Lore                  `json:"lore"`
	Pages      []StoryPage           `json:"pages"`
}

// CurrentPage returns the last page, or nil when the story has not started.
func (s *StoryState) CurrentPage() *StoryPage {
	if len(s.Pages) == 0 {
		return nil
	}
	return &s.Pages[len(s.Pages)-1]
}

// Clone returns a deep copy of the state.
func (s StoryState) Clone() StoryState {
	out := s
	out.Characters = cloneCharacters(s.Characters)
	out.StyleGuide.Palette = cloneStrings(s.StyleGuide.Palette)
	out.Lore = s.Lore.Clone()
	if s.Pages != nil {
		out.Pages = make([]StoryPage, len(s.Pages))
		for i, p := range s.Pages {
			out.Pages[i] = p.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the page.
func (p StoryPage) Clone() StoryPage {
	out := p
	if p.Options != nil {
		out.Options = make([]StoryPageOption, len(p.Options))
		copy(out.Options, p.Options)
	}
	return out
}

// Clone returns a deep copy of the ledger.
func (l Lore) Clone() Lore {
	return Lore{
		Setting:         l.Setting,
		Rules:           cloneStrings(l.Rules),
		Objects:         cloneStrings(l.Objects),
		ContinuityNotes: cloneStrings(l.ContinuityNotes),
	}
}

func cloneCharacters(in []CharacterDescriptor) []CharacterDescriptor {
	if in == nil {
		return nil
	}
	out := make([]CharacterDescriptor, len(in))
	for i, c := range in {
		out[i] = CharacterDescriptor{
			Name:       c.Name,
			Traits:     cloneStrings(c.Traits),
			VisualCues: cloneStrings(c.VisualCues),
			Role:       c.Role,
		}
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// Valid reports whether the bracket is one of the known tiers.
func (a AgeBracket) Valid() bool {
	switch a {
	case AgeKids, AgeTeens, AgeAdults:
		return true
	}
	return false
}

// ParseAgeBracket accepts a bracket name in any case.
func ParseAgeBracket(s string) (AgeBracket, error) {
	a := AgeBracket(strings.ToLower(strings.TrimSpace(s)))
	if !a.Valid() {
		return "", fmt.Errorf("unknown age bracket %q", s)
	}
	return a, nil
}

// ParseLocale canonicalises a BCP 47 tag ("es-es", "en_US") to one of the
// supported locales.
func ParseLocale(s string) (Locale, error) {
	tag, err := language.Parse(strings.ReplaceAll(strings.TrimSpace(s), "_", "-"))
	if err != nil {
		return "", fmt.Errorf("invalid locale %q: %w", s, err)
	}
	switch Locale(tag.String()) {
	case LocaleSpanish:
		return LocaleSpanish, nil
	case LocaleEnglish:
		return LocaleEnglish, nil
	}
	return "", fmt.Errorf("unsupported locale %q", s)
}

// IsSpanish reports whether text should be produced in Spanish.
func (l Locale) IsSpanish() bool {
	return l == LocaleSpanish
}
