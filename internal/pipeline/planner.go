package pipeline

import (
	"strings"

	"github.com/sells-group/contact-enricher/internal/model"
)

// DefaultMaxQueries bounds the number of searches per contact.
const DefaultMaxQueries = 3

// PlanQueries derives search queries from the known fields of c, in priority
// order, keeping at most limit of them (DefaultMaxQueries when limit <= 0).
func PlanQueries(c model.ContactInfo, limit int) []string {
	if limit <= 0 {
		limit = DefaultMaxQueries
	}

	name := strings.TrimSpace(c.Name)
	email := strings.TrimSpace(c.Email)
	company := strings.TrimSpace(c.Company)
	title := strings.TrimSpace(c.Title)

	var queries []string
	if name != "" && company != "" {
		queries = append(queries, quote(name)+" "+quote(company))
	}
	if email != "" {
		queries = append(queries, quote(email))
	}
	if name != "" {
		queries = append(queries,
			quote(name)+" LinkedIn profile",
			quote(name)+" GitHub",
		)
	}
	if company != "" && title != "" {
		queries = append(queries, quote(company)+" "+quote(title))
	}

	if len(queries) > limit {
		queries = queries[:limit]
	}
	return queries
}

func quote(s string) string {
	return `"` + s + `"`
}
