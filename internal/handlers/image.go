package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/storyloom/internal/services"
	"github.com/jwebster45206/storyloom/pkg/prompts"
	"github.com/jwebster45206/storyloom/pkg/story"
)

// ImageHandler serves POST /api/generate/image.
type ImageHandler struct {
	images services.ImageGenerator
	logger *slog.Logger
}

func NewImageHandler(images services.ImageGenerator, logger *slog.Logger) *ImageHandler {
	return &ImageHandler{
		images: images,
		logger: logger,
	}
}

func (h *ImageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req story.ImageGenerationRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	h.logger.Info("Generating image", "option_id", req.OptionID, "genre", req.State.Genre)

	url, err := h.images.GenerateImage(r.Context(), prompts.BuildImagePrompt(req.Description, req.State))
	if err != nil {
		writeFailure(w, err, "Failed to generate image.", h.logger)
		return
	}
	if url == "" {
		writeFailure(w, errors.New("image backend returned no url"), "Image generation returned no image.", h.logger)
		return
	}

	writeJSON(w, story.ImageGenerationResponse{ImageURL: url}, h.logger)
}
