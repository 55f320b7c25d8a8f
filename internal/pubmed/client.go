package pubmed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// BaseURL is the NCBI E-utilities base URL.
	BaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// RateLimit is 3 requests per second without an API key per NCBI policy.
	RateLimit = 3.0

	// RateLimitWithKey is 10 requests per second with an API key.
	RateLimitWithKey = 10.0

	// MaxBatchSize bounds the number of PMIDs sent in one efetch call.
	MaxBatchSize = 200

	// DefaultTool identifies this client to NCBI.
	DefaultTool = "curate"
)

// Client is a rate-limited HTTP client for NCBI E-utilities.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	apiKey     string
	email      string
	tool       string
	baseURL    string
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAPIKey sets the NCBI API key, which also raises the rate limit.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithEmail sets the contact email NCBI asks clients to send.
func WithEmail(email string) ClientOption {
	return func(c *Client) {
		c.email = email
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new E-utilities client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    BaseURL,
		tool:       DefaultTool,
		logger:     slog.Default(),
	}

	// Check for API key in environment
	if key := os.Getenv("NCBI_API_KEY"); key != "" {
		c.apiKey = key
	}

	for _, opt := range opts {
		opt(c)
	}

	limit := RateLimit
	if c.apiKey != "" {
		limit = RateLimitWithKey
	}
	c.limiter = rate.NewLimiter(rate.Limit(limit), 1)

	return c
}

// get performs a rate-limited GET against an E-utilities endpoint.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	params.Set("tool", c.tool)
	if c.email != "" {
		params.Set("email", c.email)
	}
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}

	reqURL := c.baseURL + "/" + endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	c.logger.Debug("pubmed request", slog.String("endpoint", endpoint), slog.String("db", params.Get("db")))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Endpoint:   endpoint,
			Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrNetworkError, err)
	}
	return body, nil
}

// FetchArticles fetches full records for the given PMIDs. PMIDs with no
// record are absent from the result; the order follows the response.
func (c *Client) FetchArticles(ctx context.Context, pmids []string) ([]Article, error) {
	var all []Article
	for start := 0; start < len(pmids); start += MaxBatchSize {
		end := start + MaxBatchSize
		if end > len(pmids) {
			end = len(pmids)
		}

		params := url.Values{}
		params.Set("db", "pubmed")
		params.Set("retmode", "xml")
		params.Set("id", strings.Join(pmids[start:end], ","))

		body, err := c.get(ctx, "efetch.fcgi", params)
		if err != nil {
			return nil, err
		}
		articles, err := parseArticles(body)
		if err != nil {
			return nil, err
		}
		all = append(all, articles...)
	}
	return all, nil
}

// GetArticle fetches a single article by PMID.
func (c *Client) GetArticle(ctx context.Context, pmid string) (*Article, error) {
	articles, err := c.FetchArticles(ctx, []string{pmid})
	if err != nil {
		return nil, err
	}
	for i := range articles {
		if articles[i].PMID == pmid {
			return &articles[i], nil
		}
	}
	return nil, fmt.Errorf("%w: pmid %s", ErrNotFound, pmid)
}

// SearchDOI resolves a DOI to a PMID.
func (c *Client) SearchDOI(ctx context.Context, doi string) (string, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("retmode", "json")
	params.Set("term", doi+"[doi]")

	body, err := c.get(ctx, "esearch.fcgi", params)
	if err != nil {
		return "", err
	}

	var resp struct {
		Result struct {
			Count  string   `json:"count"`
			IDList []string `json:"idlist"`
		} `json:"esearchresult"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: parsing esearch response: %v", ErrInvalidResponse, err)
	}
	if len(resp.Result.IDList) == 0 {
		return "", fmt.Errorf("%w: doi %s", ErrNotFound, doi)
	}
	return resp.Result.IDList[0], nil
}

// LookupArticle resolves an article by PMID, or by DOI when the PMID is
// empty.
func (c *Client) LookupArticle(ctx context.Context, pmid, doi string) (*Article, error) {
	if pmid == "" {
		if doi == "" {
			return nil, fmt.Errorf("%w: no pmid or doi", ErrNotFound)
		}
		found, err := c.SearchDOI(ctx, doi)
		if err != nil {
			return nil, err
		}
		pmid = found
	}
	return c.GetArticle(ctx, pmid)
}
