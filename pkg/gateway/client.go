// Package gateway is the HTTP client for the generation server. It is the
// only code that talks to the backend on behalf of the story engine.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jwebster45206/storyloom/pkg/story"
)

// Endpoint paths served by cmd/api.
const (
	StoryPath       = "/api/generate/story"
	ImagePath       = "/api/generate/image"
	SuggestionsPath = "/api/generate/suggestions"
	ExportPDFPath   = "/api/export/pdf"
	HealthPath      = "/health"
)

// ErrMalformedResponse is wrapped when a 2xx body does not decode into the
// expected response or fails its validation.
var ErrMalformedResponse = errors.New("malformed response")

// APIError is returned for any non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Body)
}

// Client calls the generation server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client, e.g. to set a timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GenerateStoryPage requests the next page for the given state.
func (c *Client) GenerateStoryPage(ctx context.Context, req story.StoryGenerationRequest) (*story.StoryGenerationResponse, error) {
	var resp story.StoryGenerationResponse
	if err := c.postJSON(ctx, StoryPath, req, &resp); err != nil {
		return nil, err
	}
	if err := resp.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &resp, nil
}

// GenerateImage requests one illustration.
func (c *Client) GenerateImage(ctx context.Context, req story.ImageGenerationRequest) (*story.ImageGenerationResponse, error) {
	var resp story.ImageGenerationResponse
	if err := c.postJSON(ctx, ImagePath, req, &resp); err != nil {
		return nil, err
	}
	if err := resp.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &resp, nil
}

// FetchSuggestions requests story starter ideas.
func (c *Client) FetchSuggestions(ctx context.Context, req story.SuggestionRequest) (*story.SuggestionResponse, error) {
	var resp story.SuggestionResponse
	if err := c.postJSON(ctx, SuggestionsPath, req, &resp); err != nil {
		return nil, err
	}
	if err := resp.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &resp, nil
}

// ExportPDF asks the server to render the story as a PDF document.
func (c *Client) ExportPDF(ctx context.Context, s story.StoryState) ([]byte, error) {
	body, err := c.post(ctx, ExportPDFPath, s)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(body, []byte("%PDF")) {
		return nil, fmt.Errorf("%w: not a PDF document", ErrMalformedResponse)
	}
	return body, nil
}

// Health reports whether the server answers its health check.
func (c *Client) Health(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+HealthPath, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	_, err = c.do(httpReq)
	return err
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := c.post(ctx, path, payload)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	return c.do(httpReq)
}

func (c *Client) do(httpReq *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}
