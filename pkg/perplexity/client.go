// Package perplexity is a minimal client for Perplexity's Sonar chat API.
package perplexity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// DefaultModel is used when neither the request nor the client names one.
const DefaultModel = "sonar"

// Client sends one completion per call. It never retries.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Request is a Sonar chat completion request.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	// SearchDomainFilter limits Sonar's own web search to these domains.
	SearchDomainFilter []string `json:"search_domain_filter,omitempty"`
}

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// UserMessage builds a single user turn.
func UserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// Response is a decoded completion.
type Response struct {
	ID        string   `json:"id"`
	Model     string   `json:"model"`
	Choices   []Choice `json:"choices"`
	Citations []string `json:"citations,omitempty"`
	Usage     struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Choice is one returned message.
type Choice struct {
	Index        int     `json:"index"`
	FinishReason string  `json:"finish_reason"`
	Message      Message `json:"message"`
}

// Content returns the first choice's text.
func (r *Response) Content() (string, bool) {
	if r == nil || len(r.Choices) == 0 {
		return "", false
	}
	return r.Choices[0].Message.Content, true
}

// APIError is a non-2xx reply. Message is filled when the body carries a
// JSON error object.
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("perplexity: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("perplexity: status %d: %s", e.StatusCode, e.Body)
}

// Transient reports whether the status is worth retrying by the caller.
func (e *APIError) Transient() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

func newAPIError(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status, Body: strings.TrimSpace(string(body))}
	var payload struct {
		Error json.RawMessage `json:"error"`
	}
	if json.Unmarshal(body, &payload) != nil || len(payload.Error) == 0 {
		return e
	}
	var obj struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(payload.Error, &obj) == nil && obj.Message != "" {
		e.Message = obj.Message
		return e
	}
	var s string
	if json.Unmarshal(payload.Error, &s) == nil {
		e.Message = s
	}
	return e
}

// Option configures the client.
type Option func(*client)

// WithBaseURL points the client at another host (tests, proxies).
func WithBaseURL(u string) Option {
	return func(c *client) { c.endpoint = strings.TrimRight(u, "/") + "/chat/completions" }
}

// WithModel sets the model for requests that leave it empty.
func WithModel(model string) Option {
	return func(c *client) { c.model = model }
}

// WithHTTPClient replaces the transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) { c.http = hc }
}

type client struct {
	key      string
	endpoint string
	model    string
	http     *http.Client
}

// NewClient creates a client for apiKey.
func NewClient(apiKey string, opts ...Option) Client {
	c := &client{
		key:      apiKey,
		endpoint: "https://api.perplexity.ai/chat/completions",
		model:    DefaultModel,
		http:     &http.Client{Timeout: 2 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *client) Complete(ctx context.Context, req Request) (*Response, error) {
	if req.Model == "" {
		req.Model = c.model
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "perplexity: encode request")
	}

	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrap(err, "perplexity: build request")
	}
	hreq.Header.Set("Authorization", "Bearer "+c.key)
	hreq.Header.Set("Content-Type", "application/json")
	hreq.Header.Set("Accept", "application/json")

	hresp, err := c.http.Do(hreq)
	if err != nil {
		return nil, eris.Wrap(err, "perplexity: do request")
	}
	defer hresp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(hresp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "perplexity: read body")
	}
	if hresp.StatusCode < 200 || hresp.StatusCode > 299 {
		return nil, newAPIError(hresp.StatusCode, body)
	}

	out := &Response{}
	if err := json.Unmarshal(body, out); err != nil {
		return nil, eris.Wrap(err, "perplexity: decode response")
	}
	return out, nil
}
