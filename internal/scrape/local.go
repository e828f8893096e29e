package scrape

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/net/html"
)

// DefaultUserAgent identifies the enricher to the sites it reads.
const DefaultUserAgent = "Mozilla/5.0 (compatible; ContactEnrichmentBot/1.0)"

const defaultMaxBody = 2 << 20

// LocalScraper fetches HTML via net/http, detects blocks, and reduces the
// page to body text.
type LocalScraper struct {
	client    *http.Client
	userAgent string
	maxBody   int64
}

// LocalOption configures a LocalScraper.
type LocalOption func(*LocalScraper)

// WithTimeout bounds each fetch.
func WithTimeout(d time.Duration) LocalOption {
	return func(l *LocalScraper) {
		if d > 0 {
			l.client.Timeout = d
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) LocalOption {
	return func(l *LocalScraper) {
		if ua != "" {
			l.userAgent = ua
		}
	}
}

// WithHTTPClient replaces the HTTP client. Its timeout is kept unless a
// later WithTimeout overrides it.
func WithHTTPClient(hc *http.Client) LocalOption {
	return func(l *LocalScraper) {
		l.client = hc
	}
}

// WithMaxBody caps how many bytes of a response are read.
func WithMaxBody(n int64) LocalOption {
	return func(l *LocalScraper) {
		if n > 0 {
			l.maxBody = n
		}
	}
}

// NewLocalScraper creates a LocalScraper with a 5s timeout.
func NewLocalScraper(opts ...LocalOption) *LocalScraper {
	l := &LocalScraper{
		client: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		},
		userAgent: DefaultUserAgent,
		maxBody:   defaultMaxBody,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *LocalScraper) Name() string           { return "local_http" }
func (l *LocalScraper) Supports(_ string) bool { return true }

// Scrape fetches a URL, detects blocks, and reduces the HTML to text.
func (l *LocalScraper) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "local_http: create request")
	}
	req.Header.Set("User-Agent", l.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "local_http: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBody))
	if err != nil {
		return nil, eris.Wrap(err, "local_http: read body")
	}

	if blocked, blockType := DetectBlock(resp, body); blocked {
		return nil, eris.Errorf("local_http: blocked (%s)", blockType)
	}

	if resp.StatusCode >= 400 {
		return nil, eris.Errorf("local_http: status %d", resp.StatusCode)
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "local_http: parse html")
	}

	return &Result{
		Page: Page{
			URL:        targetURL,
			Title:      pageTitle(doc),
			Text:       reduce(doc),
			StatusCode: resp.StatusCode,
		},
		Source: "local_http",
	}, nil
}
