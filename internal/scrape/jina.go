package scrape

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/contact-enricher/internal/resilience"
	"github.com/sells-group/contact-enricher/pkg/jina"
)

// JinaScraper reads pages through the Jina Reader API. It is the fallback
// for pages the local scraper cannot fetch.
type JinaScraper struct {
	client  jina.Client
	breaker *resilience.Breaker
	timeout time.Duration
}

// NewJinaScraper wraps client with a breaker that opens for 60s after 3
// consecutive failures.
func NewJinaScraper(client jina.Client, timeout time.Duration) *JinaScraper {
	return &JinaScraper{
		client: client,
		breaker: resilience.NewBreaker("jina_reader", resilience.BreakerConfig{
			Threshold: 3,
			Cooldown:  60 * time.Second,
		}),
		timeout: timeout,
	}
}

func (j *JinaScraper) Name() string { return "jina" }

// Supports returns true unless the breaker is open.
func (j *JinaScraper) Supports(_ string) bool {
	return j.breaker.State() != resilience.StateOpen
}

// Scrape fetches a URL via Jina Reader and validates the response.
func (j *JinaScraper) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	return resilience.DoVal(ctx, j.breaker, func(ctx context.Context) (*Result, error) {
		var opts []jina.ReadOption
		if j.timeout > 0 {
			opts = append(opts, jina.WithReadTimeout(j.timeout))
		}
		resp, err := j.client.Read(ctx, targetURL, opts...)
		if err != nil {
			return nil, err
		}
		if needsFallback(resp) {
			return nil, eris.Errorf("jina: unusable content for %s", targetURL)
		}

		u := resp.Data.URL
		if u == "" {
			u = targetURL
		}
		return &Result{
			Page: Page{
				URL:        u,
				Title:      resp.Data.Title,
				Text:       strings.Join(strings.Fields(resp.Data.Content), " "),
				StatusCode: 200,
			},
			Source: "jina",
		}, nil
	})
}

var challengeSignatures = []string{
	"checking your browser",
	"enable javascript",
	"please enable cookies",
	"access denied",
	"403 forbidden",
	"just a moment",
	"attention required",
	"authwall",
	"sign in to view",
}

// needsFallback reports whether a Jina response is empty, an error, or a
// short challenge page.
func needsFallback(resp *jina.ReadResponse) bool {
	if resp == nil {
		return true
	}
	if resp.Code != 0 && resp.Code != 200 {
		return true
	}

	content := strings.TrimSpace(resp.Data.Content)
	if content == "" {
		return true
	}

	if len(content) < 1000 {
		lower := strings.ToLower(content)
		for _, sig := range challengeSignatures {
			if strings.Contains(lower, sig) {
				return true
			}
		}
	}
	return false
}
