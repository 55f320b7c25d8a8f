package neurostore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/neurostuff/curate/internal/study"
)

const (
	// BaseURL is the default neurostore API base URL.
	BaseURL = "https://neurostore.org/api"

	// DefaultTimeout is the default HTTP request timeout. Ingestion can be
	// slow for large uploads.
	DefaultTimeout = 2 * time.Minute

	// RateLimit is the default requests per second.
	RateLimit = 5.0
)

// Client is a rate-limited HTTP client for the neurostore API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	token      string
	baseURL    string
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithToken sets the bearer token used for write operations.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		if url != "" {
			c.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithRateLimit sets the request rate limit.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new neurostore client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
		logger:     slog.Default(),
	}

	if token := os.Getenv("NEUROSTORE_TOKEN"); token != "" {
		c.token = token
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// do performs a rate-limited request and decodes a JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.logger.Debug("neurostore request", slog.String("method", method), slog.String("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading body: %v", ErrNetworkError, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrAuthError, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	case resp.StatusCode >= 400:
		return &APIError{
			StatusCode: resp.StatusCode,
			Path:       path,
			Message:    errorMessage(respBody, resp.StatusCode),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

// errorMessage extracts a message from an error body, falling back to the
// HTTP status.
func errorMessage(body []byte, status int) string {
	var payload struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Detail != "" {
			return payload.Detail
		}
	}
	return fmt.Sprintf("HTTP %d", status)
}

// IngestBaseStudies sends base studies for ingestion and returns the
// ingested records with their ids and versions.
func (c *Client) IngestBaseStudies(ctx context.Context, studies []study.BaseStudy) ([]study.BaseStudy, error) {
	if len(studies) == 0 {
		return nil, nil
	}
	if c.token == "" {
		return nil, fmt.Errorf("%w: a token is required to ingest studies", ErrAuthError)
	}

	var resp []apiBaseStudy
	if err := c.do(ctx, http.MethodPost, "/base-studies/", studies, &resp); err != nil {
		return nil, fmt.Errorf("ingesting %d base studies: %w", len(studies), err)
	}

	result := make([]study.BaseStudy, 0, len(resp))
	for _, b := range resp {
		result = append(result, b.toBaseStudy())
	}
	c.logger.Info("ingested base studies", slog.Int("sent", len(studies)), slog.Int("received", len(result)))
	return result, nil
}

// GetStudyset fetches a studyset with its study ids.
func (c *Client) GetStudyset(ctx context.Context, id string) (*Studyset, error) {
	var s Studyset
	if err := c.do(ctx, http.MethodGet, "/studysets/"+id+"?nested=false", nil, &s); err != nil {
		return nil, fmt.Errorf("getting studyset %s: %w", id, err)
	}
	return &s, nil
}

// UpdateStudyset replaces the studies of a studyset with the given entries.
func (c *Client) UpdateStudyset(ctx context.Context, id string, entries []study.StudysetEntry) (*Studyset, error) {
	if c.token == "" {
		return nil, fmt.Errorf("%w: a token is required to update a studyset", ErrAuthError)
	}
	if entries == nil {
		entries = []study.StudysetEntry{}
	}

	body := struct {
		Studies []study.StudysetEntry `json:"studies"`
	}{Studies: entries}

	var s Studyset
	if err := c.do(ctx, http.MethodPut, "/studysets/"+id, body, &s); err != nil {
		return nil, fmt.Errorf("updating studyset %s: %w", id, err)
	}
	c.logger.Info("updated studyset", slog.String("studyset", id), slog.Int("studies", len(entries)))
	return &s, nil
}
