package search

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/devflow/pkg/cache"
	"github.com/matzehuels/devflow/pkg/integrations"

	dferrors "github.com/matzehuels/devflow/pkg/errors"
)

// DefaultEndpoint is the Custom Search JSON API endpoint.
const DefaultEndpoint = "https://www.googleapis.com/customsearch/v1"

// Result count bounds accepted by the API.
const (
	MinResults = 1
	MaxResults = 10
)

// ErrMissingCredentials is the cause of the CONFIGURATION error returned by
// [NewClient] when the API key or engine id is empty.
var ErrMissingCredentials = errors.New("google search credentials not configured")

// Searcher runs a web search and returns at most num results.
type Searcher interface {
	Search(ctx context.Context, query string, num int) (*Response, error)
}

// Result is a single search hit.
type Result struct {
	Title   string         `json:"title"`
	Link    string         `json:"link"`
	Snippet string         `json:"snippet"`
	Pagemap map[string]any `json:"pagemap,omitempty"`
}

// Text returns title and snippet joined by a space, the text evidence is
// mined from.
func (r Result) Text() string {
	return r.Title + " " + r.Snippet
}

// Response is the outcome of one query.
type Response struct {
	Query        string   `json:"query"`
	TotalResults int64    `json:"total_results"`
	Results      []Result `json:"results"`
}

// Config holds Custom Search credentials.
type Config struct {
	APIKey   string
	EngineID string
	Endpoint string        // Defaults to DefaultEndpoint
	Timeout  time.Duration // Per-request timeout; zero keeps the client default
}

// Client queries Google Custom Search.
type Client struct {
	http     *integrations.Client
	apiKey   string
	engineID string
	endpoint string
}

// NewClient validates cfg and builds a client.
func NewClient(cfg Config, opts ...integrations.Option) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" || strings.TrimSpace(cfg.EngineID) == "" {
		return nil, dferrors.Wrap(dferrors.ErrCodeConfiguration, ErrMissingCredentials,
			"set GOOGLE_SEARCH_API_KEY and GOOGLE_SEARCH_ENGINE_ID (environment, .env file or config)")
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	var base []integrations.Option
	if cfg.Timeout > 0 {
		base = append(base, integrations.WithTimeout(cfg.Timeout))
	}
	return &Client{
		http:     integrations.NewClient(cache.NewNullCache(), "search", 0, nil, append(base, opts...)...),
		apiKey:   cfg.APIKey,
		engineID: cfg.EngineID,
		endpoint: endpoint,
	}, nil
}

// ClampResults bounds n to [MinResults, MaxResults].
func ClampResults(n int) int {
	return min(max(n, MinResults), MaxResults)
}

// Search runs query and returns up to num results (clamped to 1..10).
func (c *Client) Search(ctx context.Context, query string, num int) (*Response, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.engineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(ClampResults(num)))

	var raw apiResponse
	if err := c.http.Get(ctx, c.endpoint+"?"+params.Encode(), &raw); err != nil {
		return nil, fmt.Errorf("google search %q: %w", query, err)
	}

	resp := &Response{Query: query, Results: make([]Result, 0, len(raw.Items))}
	if n, err := strconv.ParseInt(raw.SearchInformation.TotalResults, 10, 64); err == nil {
		resp.TotalResults = n
	}
	for _, item := range raw.Items {
		resp.Results = append(resp.Results, Result(item))
	}
	return resp, nil
}

type apiResponse struct {
	SearchInformation struct {
		TotalResults string `json:"totalResults"`
	} `json:"searchInformation"`
	Items []apiItem `json:"items"`
}

type apiItem struct {
	Title   string         `json:"title"`
	Link    string         `json:"link"`
	Snippet string         `json:"snippet"`
	Pagemap map[string]any `json:"pagemap"`
}

var _ Searcher = (*Client)(nil)
