package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	h := chimw.RequestID(Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusTeapot)
	})))

	req := httptest.NewRequest(http.MethodPost, "/api/generate/story", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	out := buf.String()
	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "path=/api/generate/story")
	assert.Contains(t, out, "status=418")
	assert.Contains(t, out, "request_id=")
}

func TestCORS(t *testing.T) {
	called := false
	h := CORS("https://app.example")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	preflight := httptest.NewRequest(http.MethodOptions, "/api/generate/image", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, preflight)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "https://app.example", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.False(t, called)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/generate/image", nil))
	assert.True(t, called)
	assert.Equal(t, "Origin", rr.Header().Get("Vary"))
}
