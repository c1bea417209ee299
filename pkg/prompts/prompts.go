// Package prompts renders the instructions sent to the generative backend.
// Every function here is pure: the same state always yields the same prompt.
package prompts

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/storyloom/pkg/story"
)

// AppName is the product name the model is told it is writing for.
const AppName = "Historias Interactivas"

var ageGuidance = map[story.AgeBracket]string{
	story.AgeKids:   "Use simple vocabulary and short sentences appropriate for children aged 6-9.",
	story.AgeTeens:  "Use engaging YA tone with moderate complexity suitable for teenagers 13-17.",
	story.AgeAdults: "Use rich, evocative language for adult readers with moderate sophistication.",
}

var paragraphGuidance = map[story.AgeBracket]string{
	story.AgeKids:   "Write 1-2 short paragraphs (3-4 sentences total).",
	story.AgeTeens:  "Write 3-4 paragraphs with 4-5 sentences each.",
	story.AgeAdults: "Write 4-5 paragraphs with vivid detail (approx 16-22 sentences).",
}

// StoryResponseShape is the JSON contract the model is asked to follow.
const StoryResponseShape = "Return JSON with keys: text (string), options (array of 2 objects with id, summary (<=2 sentences), " +
	"textHint (1-3 paragraphs outline for the continuation)), and optional loreUpdate (object with fields setting, rules, " +
	"objects, continuity_notes when new details are introduced)."

// OptionImageFocus is appended to an option's hint to build its illustration
// description.
const OptionImageFocus = "Focus on key visual elements mentioned."

// BuildStoryPrompt renders the continuation prompt for the next page.
func BuildStoryPrompt(s story.StoryState, continueFromOptionID string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("You are the narrative engine for the interactive web app %q.\n", AppName))
	sb.WriteString(fmt.Sprintf("Maintain strict continuity with the existing lore: setting=%s, rules=%s, objects=%s, notes=%s.\n",
		orDefault(s.Lore.Setting, "TBD"),
		joinOr(s.Lore.Rules, "; ", "none yet"),
		joinOr(s.Lore.Objects, "; ", "none yet"),
		joinOr(s.Lore.ContinuityNotes, "; ", "none yet"),
	))
	sb.WriteString(fmt.Sprintf("Genre: %s. Theme: %s.\n", s.Genre, s.Theme))
	sb.WriteString(fmt.Sprintf("Locale: %s.\n", localeLabel(s.Locale)))
	sb.WriteString("Characters: " + characterRoster(s.Characters) + "\n")
	sb.WriteString(ageGuidance[s.AgeBracket] + "\n")
	sb.WriteString(paragraphGuidance[s.AgeBracket] + "\n")
	sb.WriteString("Close with a cliffhanger hook that invites a decision.\n")
	sb.WriteString(StoryResponseShape + "\n")
	sb.WriteString("Ensure summaries and hints are consistent with existing lore and characters.\n")
	sb.WriteString("Continue the story")
	if continueFromOptionID != "" {
		sb.WriteString(" following the outcome " + continueFromOptionID)
	}
	sb.WriteString(".")

	return sb.String()
}

// BuildImagePrompt renders the illustration prompt for a scene.
func BuildImagePrompt(description string, s story.StoryState) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Create a single illustration for the interactive story %q.\n", AppName))
	sb.WriteString(fmt.Sprintf("Narrative consistency is mandatory. Depict exactly the scene: %s.\n", description))
	sb.WriteString(fmt.Sprintf("Genre: %s. Age group: %s. Language of text: %s.\n", s.Genre, s.AgeBracket, languageName(s.Locale)))
	sb.WriteString(fmt.Sprintf("Style: %s. Color palette focus: %s.\n", s.StyleGuide.ImageStyle, strings.Join(s.StyleGuide.Palette, ", ")))
	sb.WriteString(fmt.Sprintf("Lighting: %s.\n", s.StyleGuide.Lighting))
	sb.WriteString("Recurring characters and props must match prior depictions: " + castRendering(s.Characters) + ".\n")
	sb.WriteString("Maintain consistent art direction across pages.")

	return sb.String()
}

// BuildSuggestionPrompt renders the starter-ideas prompt.
func BuildSuggestionPrompt(req story.SuggestionRequest) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Generate between %d and %d interactive story starter suggestions as JSON.\n", story.MinSuggestions, story.MaxSuggestions))
	sb.WriteString(fmt.Sprintf("Language: %s.\n", languageName(req.Locale)))
	sb.WriteString(fmt.Sprintf("Genre emphasis: %s.\n", req.Genre))
	sb.WriteString(fmt.Sprintf("Audience: %s.\n", req.AgeBracket))
	sb.WriteString(fmt.Sprintf("Optional theme hint: %s.\n", orDefault(req.Theme, "user will decide")))
	sb.WriteString("Each suggestion must include: id (slug), title, synopsis (2 sentences), and theme (short hook).\n")
	sb.WriteString(`Output a JSON object with key "suggestions" as an array.`)

	return sb.String()
}

// OptionImageDescription builds the scene description used to illustrate an
// option.
func OptionImageDescription(opt story.StoryPageOption) string {
	return opt.TextHint + "\n" + OptionImageFocus
}

func characterRoster(chars []story.CharacterDescriptor) string {
	if len(chars) == 0 {
		return "Introduce compelling characters matching the genre."
	}
	parts := make([]string, 0, len(chars))
	for _, c := range chars {
		parts = append(parts, fmt.Sprintf("%s (%s). Traits: %s. Visual cues: %s",
			c.Name, c.Role, strings.Join(c.Traits, ", "), strings.Join(c.VisualCues, ", ")))
	}
	return strings.Join(parts, " | ")
}

func castRendering(chars []story.CharacterDescriptor) string {
	if len(chars) == 0 {
		return "introduce consistent original characters and reuse them going forward"
	}
	parts := make([]string, 0, len(chars))
	for _, c := range chars {
		parts = append(parts, fmt.Sprintf("%s: %s; visual cues: %s; role: %s",
			c.Name, strings.Join(c.Traits, ", "), strings.Join(c.VisualCues, ", "), c.Role))
	}
	return strings.Join(parts, " | ")
}

func localeLabel(l story.Locale) string {
	if l.IsSpanish() {
		return "Spanish (Spain)"
	}
	return "English (US)"
}

func languageName(l story.Locale) string {
	if l.IsSpanish() {
		return "Spanish"
	}
	return "English"
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func joinOr(items []string, sep, fallback string) string {
	return orDefault(strings.Join(items, sep), fallback)
}
