// Package textfilter gates generated text by audience.
package textfilter

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"github.com/jwebster45206/storyloom/pkg/story"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrUnsafeForKids is returned when text for the kids bracket mentions a
// forbidden topic.
var ErrUnsafeForKids = errors.New("generated content is not suitable for children, please try again")

// forbiddenForKids matches anywhere in a word, so "bloody" and "deathly" are
// rejected too.
var forbiddenForKids = regexp.MustCompile(`violence|gore|blood|death|murder|weapon`)

// Mild language softened for kids and teens. Keys are matched on word
// boundaries, with an optional plural "s".
var softReplacements = map[string]string{
	"damn":     "dang",
	"hell":     "heck",
	"crap":     "crud",
	"bastard":  "jerk",
	"bitch":    "jerk",
	"ass":      "butt",
	"asshole":  "jerk",
	"shit":     "shoot",
	"bullshit": "baloney",
	"goddamn":  "gosh-dang",
	"jackass":  "jerk",
	"dumbass":  "dummy",
}

// Filter checks and softens generated text for an age bracket. It is safe
// for concurrent use.
type Filter struct {
	regexes map[string]*regexp.Regexp
}

// New builds a filter with precompiled word patterns.
func New() *Filter {
	f := &Filter{
		regexes: make(map[string]*regexp.Regexp, len(softReplacements)),
	}
	for word := range softReplacements {
		f.regexes[word] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `(s?)\b`)
	}
	return f
}

// CheckChildSafe returns ErrUnsafeForKids when the bracket is kids and the
// text contains a forbidden topic. Other brackets always pass.
func (f *Filter) CheckChildSafe(age story.AgeBracket, text string) error {
	if age != story.AgeKids {
		return nil
	}
	// Casers are stateful, so each call gets its own.
	if forbiddenForKids.MatchString(cases.Fold().String(text)) {
		return ErrUnsafeForKids
	}
	return nil
}

// ShouldSoften reports whether mild language is replaced for the bracket.
func ShouldSoften(age story.AgeBracket) bool {
	return age == story.AgeKids || age == story.AgeTeens
}

// Soften replaces mild language with family-friendly alternatives when the
// bracket calls for it, preserving the case pattern of each match.
func (f *Filter) Soften(age story.AgeBracket, text string) string {
	if !ShouldSoften(age) {
		return text
	}
	result := text
	for word, replacement := range softReplacements {
		re := f.regexes[word]
		result = re.ReplaceAllStringFunc(result, func(match string) string {
			base, plural := match, ""
			if len(match) > len(word) {
				base, plural = match[:len(word)], match[len(word):]
			}
			return preserveCase(base, replacement) + plural
		})
	}
	return result
}

// preserveCase applies the case pattern of original to replacement.
func preserveCase(original, replacement string) string {
	if original == "" {
		return replacement
	}
	if strings.ToUpper(original) == original {
		return strings.ToUpper(replacement)
	}
	if strings.ToLower(original) == original {
		return strings.ToLower(replacement)
	}

	titleCaser := cases.Title(language.English)
	if titleCaser.String(strings.ToLower(original)) == original {
		return titleCaser.String(replacement)
	}

	result := make([]rune, 0, len(replacement))
	originalRunes := []rune(original)
	for i, r := range replacement {
		if i < len(originalRunes) && unicode.IsUpper(originalRunes[i]) {
			result = append(result, unicode.ToUpper(r))
		} else {
			result = append(result, unicode.ToLower(r))
		}
	}
	return string(result)
}
