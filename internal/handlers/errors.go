package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/storyloom/internal/logger"
	"github.com/jwebster45206/storyloom/internal/services"
	"github.com/jwebster45206/storyloom/pkg/textfilter"
)

// MaxBodyBytes caps request bodies. A story state with many pages and
// inline images can get large.
const MaxBodyBytes = 4 << 20

// ErrUnparseableOutput is returned when the model reply is not the JSON
// document it was asked for.
var ErrUnparseableOutput = errors.New("model output is not valid JSON")

const unparseableMessage = "The story service returned an unexpected response. Please try again."

// decodeBody reads a JSON request body. On failure it has already written a
// 400 response.
func decodeBody(w http.ResponseWriter, r *http.Request, v any, logger *slog.Logger) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		logger.Warn("Invalid request body", "error", err, "path", r.URL.Path)
		http.Error(w, "Invalid request body. Expected JSON.", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Error encoding response", "error", err)
	}
}

// writeFailure maps a generation error to a 500 with a plain-text message.
func writeFailure(w http.ResponseWriter, err error, fallback string, log *slog.Logger) {
	logger.WithError(log, err).Error("Generation failed")
	http.Error(w, failureMessage(err, fallback), http.StatusInternalServerError)
}

func failureMessage(err error, fallback string) string {
	var nc *services.NotConfiguredError
	switch {
	case errors.As(err, &nc):
		return fmt.Sprintf("Server missing %s configuration.", nc.KeyName)
	case errors.Is(err, ErrUnparseableOutput):
		return unparseableMessage
	case errors.Is(err, textfilter.ErrUnsafeForKids):
		return textfilter.ErrUnsafeForKids.Error()
	default:
		return fallback
	}
}

// parseModelJSON decodes a model reply, tolerating a surrounding Markdown
// code fence.
func parseModelJSON(raw string, v any) error {
	cleaned := stripCodeFence(raw)
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return fmt.Errorf("%w: %v", ErrUnparseableOutput, err)
	}
	return nil
}

func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the language tag line, e.g. ```json
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
