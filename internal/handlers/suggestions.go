package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/storyloom/internal/services"
	"github.com/jwebster45206/storyloom/pkg/prompts"
	"github.com/jwebster45206/storyloom/pkg/story"
)

// SuggestionsHandler serves POST /api/generate/suggestions.
type SuggestionsHandler struct {
	text   services.TextGenerator
	logger *slog.Logger
}

func NewSuggestionsHandler(text services.TextGenerator, logger *slog.Logger) *SuggestionsHandler {
	return &SuggestionsHandler{
		text:   text,
		logger: logger,
	}
}

func (h *SuggestionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req story.SuggestionRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	raw, err := h.text.GenerateJSON(r.Context(), prompts.BuildSuggestionPrompt(req))
	if err != nil {
		writeFailure(w, err, "Failed to generate suggestions.", h.logger)
		return
	}

	var resp story.SuggestionResponse
	if err := parseModelJSON(raw, &resp); err != nil {
		writeFailure(w, err, "Failed to generate suggestions.", h.logger)
		return
	}

	if len(resp.Suggestions) > story.MaxSuggestions {
		resp.Suggestions = resp.Suggestions[:story.MaxSuggestions]
	}
	if len(resp.Suggestions) < story.MinSuggestions {
		err := fmt.Errorf("model returned %d suggestions", len(resp.Suggestions))
		writeFailure(w, err, "Not enough story suggestions were generated. Please try again.", h.logger)
		return
	}

	writeJSON(w, resp, h.logger)
}
