package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jwebster45206/storyloom/pkg/story"
)

type onboardingStep int

const (
	stepLocale onboardingStep = iota
	stepAge
	stepGenre
	stepTheme
	stepCharacters
	stepDone
)

type choice struct {
	value string
	label string
}

var (
	localeChoices = []choice{
		{string(story.LocaleSpanish), "Español"},
		{string(story.LocaleEnglish), "English"},
	}
	ageChoices = []choice{
		{string(story.AgeKids), "Kids (6-9)"},
		{string(story.AgeTeens), "Teens (13-17)"},
		{string(story.AgeAdults), "Adults"},
	}
	genreChoices = []choice{
		{"fantasy", "Fantasy"},
		{"scifi", "Science fiction"},
		{"mystery", "Mystery"},
		{"romance", "Romance"},
		{"adventure", "Adventure"},
		{"infantil", "Picture book"},
	}
)

// onboarding collects the story setup before the first page.
type onboarding struct {
	step     onboardingStep
	selected int

	locale     story.Locale
	ageBracket story.AgeBracket
	genre      string
	theme      string
	characters []story.CharacterDescriptor

	suggestions        []story.StorySuggestion
	suggestionsLoading bool
	suggestionsErr     error

	input textinput.Model
	err   string
}

func newOnboarding() onboarding {
	ti := textinput.New()
	ti.CharLimit = 200
	ti.Width = 50
	return onboarding{
		step:       stepLocale,
		locale:     story.DefaultLocale,
		ageBracket: story.DefaultAgeBracket,
		genre:      story.DefaultGenre,
		input:      ti,
	}
}

// meta is the story setup gathered so far.
func (o onboarding) meta() story.StoryMeta {
	return story.StoryMeta{
		Locale:     &o.locale,
		AgeBracket: &o.ageBracket,
		Genre:      &o.genre,
		Theme:      &o.theme,
		Characters: o.characters,
	}
}

func (o onboarding) suggestionRequest() story.SuggestionRequest {
	return story.SuggestionRequest{
		Locale:     o.locale,
		AgeBracket: o.ageBracket,
		Genre:      o.genre,
	}
}

// listLen is the number of selectable rows on the current step.
func (o onboarding) listLen() int {
	switch o.step {
	case stepLocale:
		return len(localeChoices)
	case stepAge:
		return len(ageChoices)
	case stepGenre:
		return len(genreChoices)
	case stepTheme:
		return len(o.suggestions)
	default:
		return 0
	}
}

// update handles a key press. enteredTheme reports that the suggestions for
// the theme step should now be fetched.
func (o onboarding) update(msg tea.KeyMsg) (next onboarding, enteredTheme bool, cmd tea.Cmd) {
	o.err = ""
	switch msg.Type {
	case tea.KeyUp:
		if o.selected > 0 {
			o.selected--
		}
		return o, false, nil
	case tea.KeyDown:
		if o.selected < o.listLen()-1 {
			o.selected++
		}
		return o, false, nil
	case tea.KeyEnter:
		return o.advance()
	}

	if o.step == stepTheme || o.step == stepCharacters {
		o.input, cmd = o.input.Update(msg)
	}
	return o, false, cmd
}

func (o onboarding) advance() (onboarding, bool, tea.Cmd) {
	switch o.step {
	case stepLocale:
		o.locale = story.Locale(localeChoices[o.selected].value)
		o.step, o.selected = stepAge, 1
	case stepAge:
		o.ageBracket = story.AgeBracket(ageChoices[o.selected].value)
		o.step, o.selected = stepGenre, 0
	case stepGenre:
		o.genre = genreChoices[o.selected].value
		o.step, o.selected = stepTheme, 0
		o.suggestions = nil
		o.suggestionsLoading = true
		o.input.Placeholder = "Type a theme or pick a suggestion"
		o.input.SetValue("")
		cmd := o.input.Focus()
		return o, true, cmd
	case stepTheme:
		if typed := strings.TrimSpace(o.input.Value()); typed != "" {
			o.theme = typed
		} else if o.selected < len(o.suggestions) {
			o.theme = o.suggestions[o.selected].Theme
		}
		o.step = stepCharacters
		o.input.Placeholder = "Name | traits, ... | visual cues, ... | role"
		o.input.SetValue("")
	case stepCharacters:
		line := strings.TrimSpace(o.input.Value())
		if line == "" {
			o.step = stepDone
			o.input.Blur()
			return o, false, nil
		}
		c, err := parseCharacter(line)
		if err != nil {
			o.err = err.Error()
			return o, false, nil
		}
		o.characters = append(o.characters, c)
		o.input.SetValue("")
	}
	return o, false, nil
}

// parseCharacter reads "Name | trait, trait | cue, cue | role". Everything
// after the name is optional and the role defaults to protagonist.
func parseCharacter(line string) (story.CharacterDescriptor, error) {
	parts := strings.Split(line, "|")
	c := story.CharacterDescriptor{
		Name:       strings.TrimSpace(parts[0]),
		Traits:     []string{},
		VisualCues: []string{},
		Role:       story.RoleProtagonist,
	}
	if c.Name == "" {
		return c, fmt.Errorf("character name is required")
	}
	if len(parts) > 1 {
		c.Traits = splitList(parts[1])
	}
	if len(parts) > 2 {
		c.VisualCues = splitList(parts[2])
	}
	if len(parts) > 3 {
		switch role := story.CharacterRole(strings.ToLower(strings.TrimSpace(parts[3]))); role {
		case story.RoleProtagonist, story.RoleAntagonist, story.RoleSupporting:
			c.Role = role
		case "":
		default:
			return c, fmt.Errorf("unknown role %q", role)
		}
	}
	return c, nil
}

func splitList(s string) []string {
	out := []string{}
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (o onboarding) view() string {
	var b strings.Builder
	b.WriteString(modalTitleStyle.Render("Historias Interactivas"))
	b.WriteString("\n")
	b.WriteString(promptStyle.Render(fmt.Sprintf("Step %d of %d", int(o.step)+1, int(stepDone))))
	b.WriteString("\n\n")

	switch o.step {
	case stepLocale:
		b.WriteString("Preferred language\n\n")
		b.WriteString(renderChoices(localeChoices, o.selected))
	case stepAge:
		b.WriteString("Reader age\n\n")
		b.WriteString(renderChoices(ageChoices, o.selected))
	case stepGenre:
		b.WriteString("Genre\n\n")
		b.WriteString(renderChoices(genreChoices, o.selected))
	case stepTheme:
		b.WriteString("Theme\n\n")
		switch {
		case o.suggestionsLoading:
			b.WriteString(loadingStyle.Render("Fetching ideas..."))
			b.WriteString("\n")
		case o.suggestionsErr != nil:
			b.WriteString(errorStyle.Render("No suggestions: " + o.suggestionsErr.Error()))
			b.WriteString("\n")
		default:
			for i, s := range o.suggestions {
				line := fmt.Sprintf("%s: %s", s.Title, s.Synopsis)
				if i == o.selected {
					b.WriteString(modalSelectedItemStyle.Render("▶ " + line))
				} else {
					b.WriteString(modalItemStyle.Render("  " + line))
				}
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
		b.WriteString(o.input.View())
	case stepCharacters:
		b.WriteString("Characters (empty line to start the story)\n\n")
		for _, c := range o.characters {
			b.WriteString(fmt.Sprintf("• %s (%s)\n", c.Name, c.Role))
		}
		b.WriteString("\n")
		b.WriteString(o.input.View())
	}

	if o.err != "" {
		b.WriteString("\n\n")
		b.WriteString(errorStyle.Render(o.err))
	}

	b.WriteString("\n\n")
	b.WriteString(promptStyle.Render("↑/↓ to navigate, Enter to continue, Ctrl+C to exit"))
	return b.String()
}

func renderChoices(choices []choice, selected int) string {
	var b strings.Builder
	for i, c := range choices {
		if i == selected {
			b.WriteString(modalSelectedItemStyle.Render("▶ " + c.label))
		} else {
			b.WriteString(modalItemStyle.Render("  " + c.label))
		}
		b.WriteString("\n")
	}
	return b.String()
}
