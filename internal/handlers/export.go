package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jwebster45206/storyloom/pkg/export"
	"github.com/jwebster45206/storyloom/pkg/story"
)

// ExportPDFHandler serves POST /api/export/pdf. The body is an exported
// story state.
type ExportPDFHandler struct {
	logger *slog.Logger
}

func NewExportPDFHandler(logger *slog.Logger) *ExportPDFHandler {
	return &ExportPDFHandler{logger: logger}
}

func (h *ExportPDFHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var s story.StoryState
	if !decodeBody(w, r, &s, h.logger) {
		return
	}
	s = story.NewState(s)

	var buf bytes.Buffer
	if err := export.WritePDF(&buf, s); err != nil {
		h.logger.Error("PDF export failed", "error", err)
		http.Error(w, "Failed to export story.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(s)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Error("Error writing PDF response", "error", err)
	}
}
