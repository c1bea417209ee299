package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jwebster45206/storyloom/internal/services"
	"github.com/jwebster45206/storyloom/pkg/prompts"
	"github.com/jwebster45206/storyloom/pkg/story"
	"github.com/jwebster45206/storyloom/pkg/textfilter"
)

// StoryHandler serves POST /api/generate/story.
type StoryHandler struct {
	text   services.TextGenerator
	filter *textfilter.Filter
	logger *slog.Logger
}

func NewStoryHandler(text services.TextGenerator, filter *textfilter.Filter, logger *slog.Logger) *StoryHandler {
	return &StoryHandler{
		text:   text,
		filter: filter,
		logger: logger,
	}
}

func (h *StoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req story.StoryGenerationRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	age := req.State.AgeBracket
	h.logger.Info("Generating story page",
		"pages", len(req.State.Pages),
		"age_bracket", age,
		"genre", req.State.Genre,
		"continue_from", req.ContinueFromOptionID)

	raw, err := h.text.GenerateJSON(r.Context(), prompts.BuildStoryPrompt(req.State, req.ContinueFromOptionID))
	if err != nil {
		writeFailure(w, err, "Failed to generate story.", h.logger)
		return
	}

	var resp story.StoryGenerationResponse
	if err := parseModelJSON(raw, &resp); err != nil {
		writeFailure(w, err, "Failed to generate story.", h.logger)
		return
	}

	if err := h.filter.CheckChildSafe(age, resp.Text); err != nil {
		writeFailure(w, err, "Failed to generate story.", h.logger)
		return
	}

	resp.Text = h.filter.Soften(age, resp.Text)
	for i := range resp.Options {
		resp.Options[i].Summary = h.filter.Soften(age, resp.Options[i].Summary)
		resp.Options[i].TextHint = h.filter.Soften(age, resp.Options[i].TextHint)
	}

	writeJSON(w, resp, h.logger)
}
