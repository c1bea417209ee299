package story

import "strings"

var paletteByGenre = map[string][]string{
	"fantasy": {"#8D5A97", "#FFD166", "#F2E9E4", "#2F3061"},
	"scifi":   {"#0B132B", "#1C2541", "#3A506B", "#5BC0BE"},
	"mystery": {"#0B090A", "#161A1D", "#660708", "#BA181B"},
	"romance": {"#FFE5EC", "#FFC2D1", "#FF8FAB", "#FB6F92"},
	"kids":    {"#FFB703", "#FB8500", "#8ECAE6", "#219EBC"},
}

var defaultPalette = []string{"#264653", "#2a9d8f", "#e9c46a", "#f4a261"}

var lightingByAge = map[AgeBracket]string{
	AgeKids:   "soft daylight with gentle highlights",
	AgeTeens:  "cinematic twilight with vibrant accents",
	AgeAdults: "dramatic chiaroscuro with focused rim lighting",
}

var imageStyleByGenre = map[string]string{
	"fantasy":  "Painterly illustration with whimsical details",
	"scifi":    "Futuristic concept art with crisp neon highlights",
	"mystery":  "Noir graphic novel style with moody atmosphere",
	"romance":  "Soft watercolor illustration with warm glow",
	"infantil": "Playful storybook illustration with bold shapes",
}

var defaultStyleByAge = map[AgeBracket]string{
	AgeKids:   "Cheerful storybook illustration with clean outlines",
	AgeTeens:  "Dynamic digital art with expressive lighting",
	AgeAdults: "Elegant digital painting with cinematic depth",
}

// InferStyleGuide derives the illustration style for an audience and genre.
// Genre lookup is case-insensitive; unknown genres fall back to
// age-dependent defaults. The result never shares memory with the tables.
func InferStyleGuide(age AgeBracket, genre string) StyleGuide {
	g := strings.ToLower(genre)

	palette, ok := paletteByGenre[g]
	if !ok {
		if age == AgeKids {
			palette = paletteByGenre["kids"]
		} else {
			palette = defaultPalette
		}
	}

	style, ok := imageStyleByGenre[g]
	if !ok {
		style, ok = defaultStyleByAge[age]
		if !ok {
			style = defaultStyleByAge[AgeAdults]
		}
	}

	return StyleGuide{
		ImageStyle: style,
		Palette:    cloneStrings(palette),
		Lighting:   lightingByAge[age],
	}
}
