package story

const (
	DefaultLocale     = LocaleSpanish
	DefaultAgeBracket = AgeTeens
	DefaultGenre      = "fantasy"
)

// NewState builds a fresh story from optional overrides. Zero-valued fields
// take the defaults, and the style guide is always derived from the
// resulting age bracket and genre.
func NewState(overrides StoryState) StoryState {
	s := overrides.Clone()

	if s.Locale == "" {
		s.Locale = DefaultLocale
	}
	if s.AgeBracket == "" {
		s.AgeBracket = DefaultAgeBracket
	}
	if s.Genre == "" {
		s.Genre = DefaultGenre
	}
	if s.Characters == nil {
		s.Characters = []CharacterDescriptor{}
	}
	s.Lore = normalizeLore(s.Lore)
	if s.Pages == nil {
		s.Pages = []StoryPage{}
	}
	s.StyleGuide = InferStyleGuide(s.AgeBracket, s.Genre)

	return s
}

// EmptyLore returns a ledger with every field present and empty.
func EmptyLore() Lore {
	return Lore{
		Rules:           []string{},
		Objects:         []string{},
		ContinuityNotes: []string{},
	}
}

func normalizeLore(l Lore) Lore {
	if l.Rules == nil {
		l.Rules = []string{}
	}
	if l.Objects == nil {
		l.Objects = []string{}
	}
	if l.ContinuityNotes == nil {
		l.ContinuityNotes = []string{}
	}
	return l
}

// StoryMeta is a partial update of the story's descriptive fields. Nil
// fields are left untouched.
type StoryMeta struct {
	Locale     *Locale
	AgeBracket *AgeBracket
	Genre      *string
	Theme      *string
	Characters []CharacterDescriptor
}

// ApplyMeta shallow-merges meta into s. When the genre or age bracket is
// supplied the style guide is recomputed from the merged values.
func (s *StoryState) ApplyMeta(meta StoryMeta) {
	if meta.Locale != nil {
		s.Locale = *meta.Locale
	}
	if meta.AgeBracket != nil {
		s.AgeBracket = *meta.AgeBracket
	}
	if meta.Genre != nil {
		s.Genre = *meta.Genre
	}
	if meta.Theme != nil {
		s.Theme = *meta.Theme
	}
	if meta.Characters != nil {
		s.Characters = cloneCharacters(meta.Characters)
	}
	if meta.Genre != nil || meta.AgeBracket != nil {
		s.StyleGuide = InferStyleGuide(s.AgeBracket, s.Genre)
	}
}

// ApplyLoreUpdate replaces each ledger field the update supplies and keeps
// the rest. Lists are replaced wholesale, not merged.
func (s *StoryState) ApplyLoreUpdate(u *LoreUpdate) {
	if u == nil {
		return
	}
	if u.Setting != nil {
		s.Lore.Setting = *u.Setting
	}
	if u.Rules != nil {
		s.Lore.Rules = cloneStrings(u.Rules)
	}
	if u.Objects != nil {
		s.Lore.Objects = cloneStrings(u.Objects)
	}
	if u.ContinuityNotes != nil {
		s.Lore.ContinuityNotes = cloneStrings(u.ContinuityNotes)
	}
}
