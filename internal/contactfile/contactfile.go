// Package contactfile reads bulk contact lists from CSV and XLSX files.
package contactfile

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/contact-enricher/internal/model"
)

// Read parses path by extension (.csv or .xlsx).
func Read(path string) ([]model.ContactInfo, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(path)
	case ".xlsx":
		return ReadXLSX(path, "")
	default:
		return nil, eris.Errorf("contactfile: unsupported file type %q", filepath.Ext(path))
	}
}

type setter func(c *model.ContactInfo, v string)

func social(c *model.ContactInfo) *model.SocialProfiles {
	if c.SocialProfiles == nil {
		c.SocialProfiles = &model.SocialProfiles{}
	}
	return c.SocialProfiles
}

var columns = map[string]setter{
	"name":         func(c *model.ContactInfo, v string) { c.Name = v },
	"email":        func(c *model.ContactInfo, v string) { c.Email = v },
	"title":        func(c *model.ContactInfo, v string) { c.Title = v },
	"company":      func(c *model.ContactInfo, v string) { c.Company = v },
	"industry":     func(c *model.ContactInfo, v string) { c.Industry = v },
	"location":     func(c *model.ContactInfo, v string) { c.Location = v },
	"bio":          func(c *model.ContactInfo, v string) { c.Bio = v },
	"phone":        func(c *model.ContactInfo, v string) { c.Phone = v },
	"skills":       func(c *model.ContactInfo, v string) { c.Skills = splitSkills(v) },
	"linkedin":     func(c *model.ContactInfo, v string) { social(c).LinkedIn = v },
	"github":       func(c *model.ContactInfo, v string) { social(c).GitHub = v },
	"twitter":      func(c *model.ContactInfo, v string) { social(c).Twitter = v },
	"personalblog": func(c *model.ContactInfo, v string) { social(c).PersonalBlog = v },
}

// normalizeHeader lowercases a header and drops spaces, underscores, and
// hyphens so "Personal Blog" and "personal_blog" match the same column.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(h)
}

func splitSkills(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ";") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// mapper turns rows into contacts using a header row.
type mapper struct {
	set []setter // indexed by column; nil for unknown columns
}

func newMapper(header []string) (*mapper, error) {
	m := &mapper{set: make([]setter, len(header))}
	known := 0
	for i, h := range header {
		if fn, ok := columns[normalizeHeader(h)]; ok {
			m.set[i] = fn
			known++
		}
	}
	if known == 0 {
		return nil, eris.New("contactfile: header has no recognized contact columns")
	}
	return m, nil
}

// contact maps one row. It returns false for rows with no values in known
// columns.
func (m *mapper) contact(row []string) (model.ContactInfo, bool) {
	var c model.ContactInfo
	filled := false
	for i, v := range row {
		if i >= len(m.set) || m.set[i] == nil {
			continue
		}
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		m.set[i](&c, v)
		filled = true
	}
	return c, filled
}

func mapRows(rows [][]string) ([]model.ContactInfo, error) {
	if len(rows) == 0 {
		return nil, eris.New("contactfile: file is empty")
	}
	m, err := newMapper(rows[0])
	if err != nil {
		return nil, err
	}
	out := []model.ContactInfo{}
	for _, row := range rows[1:] {
		if c, ok := m.contact(row); ok {
			out = append(out, c)
		}
	}
	return out, nil
}
