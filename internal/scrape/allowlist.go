package scrape

import (
	"net/url"
	"strings"
)

// DefaultAllowedDomains are the profile sites worth fetching in full.
var DefaultAllowedDomains = []string{"linkedin.com", "github.com", "crunchbase.com", "about.me"}

// AllowList matches URLs whose host is one of a set of domains or a
// subdomain of one.
type AllowList struct {
	domains []string
}

// NewAllowList normalizes domains (lowercase, no leading "www." or dot).
func NewAllowList(domains []string) *AllowList {
	a := &AllowList{}
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		d = strings.TrimPrefix(strings.TrimPrefix(d, "."), "www.")
		if d != "" {
			a.domains = append(a.domains, d)
		}
	}
	return a
}

// Domains returns the normalized domain list.
func (a *AllowList) Domains() []string {
	return append([]string(nil), a.domains...)
}

// Allows reports whether rawURL is an http(s) URL on an allowed host.
// Unparseable URLs are never allowed.
func (a *AllowList) Allows(rawURL string) bool {
	if a == nil {
		return false
	}
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" {
		return false
	}
	for _, d := range a.domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
