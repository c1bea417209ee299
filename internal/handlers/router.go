package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jwebster45206/storyloom/internal/middleware"
	"github.com/jwebster45206/storyloom/internal/services"
	"github.com/jwebster45206/storyloom/pkg/textfilter"
)

// RouterConfig carries what NewRouter needs to wire the endpoints.
type RouterConfig struct {
	Text              services.TextGenerator
	Images            services.ImageGenerator
	Provider          string
	CORSAllowedOrigin string
	Logger            *slog.Logger
}

// NewRouter mounts every endpoint behind the shared middleware.
func NewRouter(rc RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(rc.Logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(rc.CORSAllowedOrigin))

	r.Method(http.MethodGet, "/health", NewHealthHandler(rc.Provider, rc.Logger))

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/generate/story", NewStoryHandler(rc.Text, textfilter.New(), rc.Logger))
		r.Method(http.MethodPost, "/generate/image", NewImageHandler(rc.Images, rc.Logger))
		r.Method(http.MethodPost, "/generate/suggestions", NewSuggestionsHandler(rc.Text, rc.Logger))
		r.Method(http.MethodPost, "/export/pdf", NewExportPDFHandler(rc.Logger))
	})

	return r
}
