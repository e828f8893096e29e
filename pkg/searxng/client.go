// Package searxng provides a client for the SearxNG metasearch JSON API.
package searxng

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Client defines the SearxNG operations.
type Client interface {
	// Search runs a metasearch query and returns the decoded response.
	Search(ctx context.Context, query string) (*SearchResponse, error)
}

// SearchResponse is the SearxNG JSON response.
type SearchResponse struct {
	Query           string   `json:"query"`
	NumberOfResults int      `json:"number_of_results"`
	Results         []Result `json:"results"`
}

// Result is a single SearxNG hit.
type Result struct {
	Title   string   `json:"title"`
	URL     string   `json:"url"`
	Content string   `json:"content"`
	Engine  string   `json:"engine"`
	Engines []string `json:"engines,omitempty"`
	Score   float64  `json:"score,omitempty"`
}

// StatusError is returned for non-200 responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("searxng: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Option configures the SearxNG client.
type Option func(*httpClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithEngines sets the comma-separated engine list.
func WithEngines(engines string) Option {
	return func(c *httpClient) {
		c.engines = engines
	}
}

// WithSafeSearch sets the safesearch level (0, 1 or 2).
func WithSafeSearch(level int) Option {
	return func(c *httpClient) {
		c.safeSearch = level
	}
}

// WithLanguage sets the search language.
func WithLanguage(lang string) Option {
	return func(c *httpClient) {
		c.language = lang
	}
}

type httpClient struct {
	baseURL    string
	engines    string
	safeSearch int
	language   string
	http       *http.Client
}

// NewClient creates a SearxNG client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) Client {
	c := &httpClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		engines:    "google,bing,duckduckgo",
		safeSearch: 1,
		language:   "en",
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, query string) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	if c.engines != "" {
		params.Set("engines", c.engines)
	}
	params.Set("safesearch", strconv.Itoa(c.safeSearch))
	if c.language != "" {
		params.Set("language", c.language)
	}

	reqURL := c.baseURL + "/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "searxng: create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "searxng: request failed")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, eris.Wrap(err, "searxng: read response body")
	}

	if resp.StatusCode != http.StatusOK {
		snippet := string(body)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: snippet}
	}

	var result SearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "searxng: unmarshal response")
	}

	return &result, nil
}
