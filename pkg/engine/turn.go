package engine

import (
	"context"
	"fmt"

	"github.com/jwebster45206/storyloom/pkg/prompts"
	"github.com/jwebster45206/storyloom/pkg/story"
)

// turn carries values between the steps of one generatePage run.
type turn struct {
	continueFrom string
	response     *story.StoryGenerationResponse
	pageID       string
}

// step is one stage of a turn. A returned error aborts the turn.
type step struct {
	name string
	run  func(ctx context.Context, e *Engine, t *turn) error
}

var turnSteps = []step{
	{name: "generate story page", run: requestPage},
	{name: "append page", run: appendPage},
	{name: "apply lore update", run: applyLore},
	{name: "generate page image", run: illustratePage},
	{name: "generate option images", run: illustrateOptions},
}

func (e *Engine) runTurn(ctx context.Context, continueFrom string) error {
	e.mu.Lock()
	e.err = ""
	e.phase = PhaseGeneratingPage
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)

	defer e.setPhase(PhaseIdle)

	t := &turn{continueFrom: continueFrom}
	for _, s := range turnSteps {
		if err := s.run(ctx, e, t); err != nil {
			err = fmt.Errorf("failed to %s: %w", s.name, err)
			e.logger.Error("story turn failed", "step", s.name, "error", err)
			e.mu.Lock()
			e.err = err.Error()
			e.mu.Unlock()
			return err
		}
	}
	return nil
}

func requestPage(ctx context.Context, e *Engine, t *turn) error {
	req := story.StoryGenerationRequest{
		State:                e.State(),
		ContinueFromOptionID: t.continueFrom,
	}
	resp, err := e.gateway.GenerateStoryPage(ctx, req)
	if err != nil {
		return err
	}
	t.response = resp
	return nil
}

func appendPage(_ context.Context, e *Engine, t *turn) error {
	page := story.StoryPage{
		ID:        e.newID(),
		Text:      t.response.Text,
		CreatedAt: e.now().UnixMilli(),
		Options:   e.resolveOptions(t.response.Options),
	}
	t.pageID = page.ID

	e.update(func(s *story.StoryState) {
		s.Pages = append(s.Pages, page)
	})
	return nil
}

// resolveOptions fills in missing option ids and replaces duplicates so ids
// are unique within the page.
func (e *Engine) resolveOptions(drafts []story.OptionDraft) []story.StoryPageOption {
	seen := make(map[string]bool, len(drafts))
	options := make([]story.StoryPageOption, 0, len(drafts))
	for _, d := range drafts {
		id := d.ID
		for id == "" || seen[id] {
			id = e.newID()
		}
		seen[id] = true
		options = append(options, story.StoryPageOption{
			ID:       id,
			Summary:  d.Summary,
			TextHint: d.TextHint,
		})
	}
	return options
}

func applyLore(_ context.Context, e *Engine, t *turn) error {
	if t.response.LoreUpdate == nil {
		return nil
	}
	e.update(func(s *story.StoryState) {
		s.ApplyLoreUpdate(t.response.LoreUpdate)
	})
	return nil
}

func illustratePage(ctx context.Context, e *Engine, t *turn) error {
	resp, err := e.gateway.GenerateImage(ctx, story.ImageGenerationRequest{
		Description: t.response.Text,
		State:       e.State(),
	})
	if err != nil {
		return err
	}
	e.update(func(s *story.StoryState) {
		if p := findPage(s, t.pageID); p != nil {
			p.ImageURL = resp.ImageURL
		}
	})
	return nil
}

// illustrateOptions requests one image per option, in order. A failed option
// keeps no image and does not fail the turn.
func illustrateOptions(ctx context.Context, e *Engine, t *turn) error {
	e.setPhase(PhaseGeneratingOptions)

	e.mu.RLock()
	var options []story.StoryPageOption
	if p := findPage(&e.state, t.pageID); p != nil {
		options = p.Clone().Options
	}
	e.mu.RUnlock()

	for i, opt := range options {
		resp, err := e.gateway.GenerateImage(ctx, story.ImageGenerationRequest{
			Description: prompts.OptionImageDescription(opt),
			State:       e.State(),
			OptionID:    opt.ID,
		})
		if err != nil {
			e.logger.Warn("option image failed", "option_id", opt.ID, "error", err)
			continue
		}
		options[i].ImageURL = resp.ImageURL
	}

	e.update(func(s *story.StoryState) {
		if p := findPage(s, t.pageID); p != nil {
			p.Options = options
		}
	})
	return nil
}

func findPage(s *story.StoryState, id string) *story.StoryPage {
	for i := len(s.Pages) - 1; i >= 0; i-- {
		if s.Pages[i].ID == id {
			return &s.Pages[i]
		}
	}
	return nil
}
