package handlers

import (
	"log/slog"
	"net/http"
	"time"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Provider  string    `json:"provider"`
}

type HealthHandler struct {
	provider string
	logger   *slog.Logger
}

func NewHealthHandler(provider string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		provider: provider,
		logger:   logger,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Health check requested",
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr)

	writeJSON(w, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Service:   "storyloom",
		Provider:  h.provider,
	}, h.logger)
}
