package pipeline

import (
	"context"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/contact-enricher/internal/model"
	"github.com/sells-group/contact-enricher/internal/scrape"
)

// DefaultMaxChars caps extracted page text and ranking candidate text.
const DefaultMaxChars = 2000

// PageScraper fetches one URL. *scrape.Chain satisfies it.
type PageScraper interface {
	Scrape(ctx context.Context, url string) (*scrape.Result, error)
}

// Extractor pulls full page text for evidence on allow-listed hosts. It
// keeps no state between calls; a failure affects only that URL.
type Extractor struct {
	allow     *scrape.AllowList
	scraper   PageScraper
	maxChars  int
	onFailure func(url string, err error)
}

// NewExtractor creates an Extractor. A nil allow list means the default
// profile domains; maxChars <= 0 means DefaultMaxChars.
func NewExtractor(allow *scrape.AllowList, scraper PageScraper, maxChars int) *Extractor {
	if allow == nil {
		allow = scrape.NewAllowList(scrape.DefaultAllowedDomains)
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Extractor{
		allow:    allow,
		scraper:  scraper,
		maxChars: maxChars,
	}
}

// Domains lists the allow-listed hosts.
func (e *Extractor) Domains() []string {
	return e.allow.Domains()
}

// OnFailure registers a hook called for every failed extraction.
func (e *Extractor) OnFailure(fn func(url string, err error)) *Extractor {
	e.onFailure = fn
	return e
}

// Allows reports whether rawURL is eligible for extraction.
func (e *Extractor) Allows(rawURL string) bool {
	return e != nil && e.allow.Allows(rawURL)
}

// Extract returns the reduced text of rawURL, or "" on any failure.
func (e *Extractor) Extract(ctx context.Context, rawURL string) string {
	text, err := e.fetch(ctx, rawURL)
	if err != nil {
		zap.L().Warn("pipeline: extraction failed", zap.String("url", rawURL), zap.Error(err))
		if e.onFailure != nil {
			e.onFailure(rawURL, err)
		}
		return ""
	}
	return text
}

func (e *Extractor) fetch(ctx context.Context, rawURL string) (string, error) {
	if e.scraper == nil {
		return "", eris.Wrap(ErrExtractionFailed, "no scraper configured")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", eris.Wrapf(ErrExtractionFailed, "parse url: %v", err)
	}

	res, err := e.scraper.Scrape(ctx, rawURL)
	if err != nil {
		return "", eris.Wrapf(ErrExtractionFailed, "%s: %v", u.Hostname(), err)
	}
	if res == nil {
		return "", eris.Wrap(ErrExtractionFailed, "empty scrape result")
	}
	return truncate(strings.TrimSpace(res.Page.Text), e.maxChars), nil
}

// Apply walks results in order and attaches FullContent to every
// allow-listed item. Failed extractions keep the item with an empty
// FullContent; other items pass through unchanged.
func (e *Extractor) Apply(ctx context.Context, results []model.SearchResult) []model.SearchResult {
	out := make([]model.SearchResult, len(results))
	for i, r := range results {
		if e.Allows(r.URL) {
			text := e.Extract(ctx, r.URL)
			r.FullContent = &text
		}
		out[i] = r
	}
	return out
}
