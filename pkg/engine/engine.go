// Package engine owns a story's state and drives its turns: request a page,
// append it, illustrate it, then illustrate each option.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/storyloom/pkg/story"
)

// Gateway is the generation backend as seen by the engine.
// *gateway.Client satisfies it.
type Gateway interface {
	GenerateStoryPage(ctx context.Context, req story.StoryGenerationRequest) (*story.StoryGenerationResponse, error)
	GenerateImage(ctx context.Context, req story.ImageGenerationRequest) (*story.ImageGenerationResponse, error)
}

// Phase is the engine's turn progress.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseGeneratingPage
	PhaseGeneratingOptions
)

func (p Phase) String() string {
	switch p {
	case PhaseGeneratingPage:
		return "generating_page"
	case PhaseGeneratingOptions:
		return "generating_options"
	default:
		return "idle"
	}
}

// ErrInvalidImport is wrapped when ImportState is given something that is
// not an exported story.
var ErrInvalidImport = errors.New("invalid story import")

// Snapshot is what observers receive after every visible change.
type Snapshot struct {
	State story.StoryState
	Phase Phase
	Err   string
}

// Observer is called after each state change, outside the engine lock.
type Observer func(Snapshot)

// Engine is the single owner of a StoryState. Reads are safe from any
// goroutine. Running two turns at once is not prevented; callers should
// wait for Phase() to return to idle.
type Engine struct {
	gateway Gateway
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string

	mu        sync.RWMutex
	state     story.StoryState
	phase     Phase
	err       string
	observers []Observer
}

type Option func(*Engine)

func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observers = append(e.observers, o)
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithIDGenerator sets the source of page and option ids.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) {
		e.newID = newID
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithState starts the engine from an existing story instead of the
// defaults.
func WithState(s story.StoryState) Option {
	return func(e *Engine) {
		e.state = story.NewState(s)
	}
}

// New creates an engine with a default story.
func New(gw Gateway, opts ...Option) *Engine {
	e := &Engine{
		gateway: gw,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
		newID:   uuid.NewString,
		state:   story.NewState(story.StoryState{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns a copy of the current story.
func (e *Engine) State() story.StoryState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Clone()
}

// CurrentPage returns a copy of the last page, or nil before the first turn.
func (e *Engine) CurrentPage() *story.StoryPage {
	e.mu.RLock()
	defer e.mu.RUnlock()
	p := e.state.CurrentPage()
	if p == nil {
		return nil
	}
	c := p.Clone()
	return &c
}

func (e *Engine) Phase() Phase {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.phase
}

// Err returns the last turn or import failure, or "" when there is none.
func (e *Engine) Err() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.err
}

func (e *Engine) IsGeneratingPage() bool {
	return e.Phase() == PhaseGeneratingPage
}

func (e *Engine) IsGeneratingOptions() bool {
	return e.Phase() == PhaseGeneratingOptions
}

// GenerateInitialPage runs the first turn. It does nothing once the story
// has a page.
func (e *Engine) GenerateInitialPage(ctx context.Context) error {
	e.mu.RLock()
	started := len(e.state.Pages) > 0
	e.mu.RUnlock()
	if started {
		return nil
	}
	return e.runTurn(ctx, "")
}

// ChooseOption continues the story from the given option of the current
// page.
func (e *Engine) ChooseOption(ctx context.Context, optionID string) error {
	return e.runTurn(ctx, optionID)
}

// UpdateStoryMeta merges descriptive fields into the story.
func (e *Engine) UpdateStoryMeta(meta story.StoryMeta) {
	e.update(func(s *story.StoryState) {
		s.ApplyMeta(meta)
	})
}

// ResetStory starts over with the same locale, audience, genre, theme and
// cast. Pages, lore and any error are cleared.
func (e *Engine) ResetStory() {
	e.mu.Lock()
	prev := e.state
	e.state = story.NewState(story.StoryState{
		Locale:     prev.Locale,
		AgeBracket: prev.AgeBracket,
		Genre:      prev.Genre,
		Theme:      prev.Theme,
		Characters: prev.Characters,
	})
	e.err = ""
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
}

// ExportState returns the story as indented JSON.
func (e *Engine) ExportState() (string, error) {
	e.mu.RLock()
	data, err := json.MarshalIndent(e.state, "", "  ")
	e.mu.RUnlock()
	if err != nil {
		return "", fmt.Errorf("failed to marshal story: %w", err)
	}
	return string(data), nil
}

// ImportState replaces the story with a previously exported one. On failure
// the current story is kept and the error is recorded.
func (e *Engine) ImportState(data string) error {
	imported, err := decodeState(data)
	if err != nil {
		e.mu.Lock()
		e.err = err.Error()
		snap := e.snapshotLocked()
		e.mu.Unlock()
		e.notify(snap)
		return err
	}

	e.mu.Lock()
	e.state = imported
	e.err = ""
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
	return nil
}

// decodeState parses an exported story verbatim. Only a JSON object is
// accepted; field values are not normalised.
func decodeState(data string) (story.StoryState, error) {
	if !strings.HasPrefix(strings.TrimSpace(data), "{") {
		return story.StoryState{}, fmt.Errorf("%w: expected a JSON object", ErrInvalidImport)
	}
	var s story.StoryState
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return story.StoryState{}, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	return s, nil
}

// update applies fn under the lock and notifies observers.
func (e *Engine) update(fn func(s *story.StoryState)) {
	e.mu.Lock()
	fn(&e.state)
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
}

func (e *Engine) setPhase(p Phase) {
	e.mu.Lock()
	e.phase = p
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
}

func (e *Engine) snapshotLocked() Snapshot {
	return Snapshot{State: e.state.Clone(), Phase: e.phase, Err: e.err}
}

func (e *Engine) notify(snap Snapshot) {
	for _, o := range e.observers {
		o(snap)
	}
}
