package textfilter

import (
	"testing"

	"github.com/jwebster45206/storyloom/pkg/story"
)

func TestFilter_CheckChildSafe(t *testing.T) {
	filter := New()

	tests := []struct {
		name    string
		age     story.AgeBracket
		input   string
		wantErr bool
	}{
		{
			name:    "clean kids text",
			age:     story.AgeKids,
			input:   "Luna found a shiny pebble by the river.",
			wantErr: false,
		},
		{
			name:    "forbidden word for kids",
			age:     story.AgeKids,
			input:   "There was blood on the floor.",
			wantErr: true,
		},
		{
			name:    "case insensitive",
			age:     story.AgeKids,
			input:   "A MURDER of crows flew by.",
			wantErr: true,
		},
		{
			name:    "substring inside a longer word",
			age:     story.AgeKids,
			input:   "The deathly quiet forest",
			wantErr: true,
		},
		{
			name:    "teens are not checked",
			age:     story.AgeTeens,
			input:   "The weapon gleamed.",
			wantErr: false,
		},
		{
			name:    "adults are not checked",
			age:     story.AgeAdults,
			input:   "Violence erupted in the streets.",
			wantErr: false,
		},
		{
			name:    "empty string",
			age:     story.AgeKids,
			input:   "",
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := filter.CheckChildSafe(tt.age, tt.input)
			if tt.wantErr && err != ErrUnsafeForKids {
				t.Errorf("CheckChildSafe() = %v, want ErrUnsafeForKids", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("CheckChildSafe() unexpected error: %v", err)
			}
		})
	}
}

func TestFilter_Soften(t *testing.T) {
	filter := New()

	tests := []struct {
		name     string
		age      story.AgeBracket
		input    string
		expected string
	}{
		{
			name:     "simple replacement",
			age:      story.AgeTeens,
			input:    "What the hell is going on?",
			expected: "What the heck is going on?",
		},
		{
			name:     "uppercase preserved",
			age:      story.AgeKids,
			input:    "DAMN that dragon!",
			expected: "DANG that dragon!",
		},
		{
			name:     "title case preserved",
			age:      story.AgeTeens,
			input:    "Hell no, said the knight.",
			expected: "Heck no, said the knight.",
		},
		{
			name:     "plural keeps its suffix",
			age:      story.AgeTeens,
			input:    "Those bastards stole the map.",
			expected: "Those jerks stole the map.",
		},
		{
			name:     "word boundaries respected",
			age:      story.AgeTeens,
			input:    "She loved classical music.",
			expected: "She loved classical music.",
		},
		{
			name:     "adults are untouched",
			age:      story.AgeAdults,
			input:    "What the hell?",
			expected: "What the hell?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := filter.Soften(tt.age, tt.input)
			if result != tt.expected {
				t.Errorf("Soften() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestShouldSoften(t *testing.T) {
	if !ShouldSoften(story.AgeKids) || !ShouldSoften(story.AgeTeens) {
		t.Error("kids and teens text should be softened")
	}
	if ShouldSoften(story.AgeAdults) {
		t.Error("adult text should not be softened")
	}
}
