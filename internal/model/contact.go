package model

import "strings"

// Canonical contact field keys, in the order reported by enrichment summaries.
const (
	FieldName           = "name"
	FieldTitle          = "title"
	FieldCompany        = "company"
	FieldIndustry       = "industry"
	FieldLocation       = "location"
	FieldBio            = "bio"
	FieldSkills         = "skills"
	FieldSocialProfiles = "socialProfiles"
	FieldEmail          = "email"
	FieldPhone          = "phone"
)

// CanonicalFields is the fixed field list used to compute fieldsNotFound.
var CanonicalFields = []string{
	FieldName,
	FieldTitle,
	FieldCompany,
	FieldIndustry,
	FieldLocation,
	FieldBio,
	FieldSkills,
	FieldSocialProfiles,
	FieldEmail,
	FieldPhone,
}

// ContactInfo is a partial contact record. All fields are optional.
type ContactInfo struct {
	Name           string          `json:"name,omitempty"`
	Email          string          `json:"email,omitempty"`
	Title          string          `json:"title,omitempty"`
	Company        string          `json:"company,omitempty"`
	Industry       string          `json:"industry,omitempty"`
	Location       string          `json:"location,omitempty"`
	Bio            string          `json:"bio,omitempty"`
	Skills         []string        `json:"skills,omitempty"`
	SocialProfiles *SocialProfiles `json:"socialProfiles,omitempty"`
	Phone          string          `json:"phone,omitempty"`
}

// SocialProfiles holds profile URLs or handles.
type SocialProfiles struct {
	LinkedIn     string `json:"linkedin,omitempty"`
	GitHub       string `json:"github,omitempty"`
	Twitter      string `json:"twitter,omitempty"`
	PersonalBlog string `json:"personalBlog,omitempty"`
}

// IsEmpty reports whether no profile is set.
func (s *SocialProfiles) IsEmpty() bool {
	if s == nil {
		return true
	}
	return blank(s.LinkedIn) && blank(s.GitHub) && blank(s.Twitter) && blank(s.PersonalBlog)
}

// HasIdentifyingInfo reports whether the contact carries enough to search
// for: a name, an email, or a company plus title pair.
func (c ContactInfo) HasIdentifyingInfo() bool {
	if !blank(c.Name) || !blank(c.Email) {
		return true
	}
	return !blank(c.Company) && !blank(c.Title)
}

// PresentFields returns the keys of fields holding non-empty values, in
// canonical order.
func (c ContactInfo) PresentFields() []string {
	present := map[string]bool{
		FieldName:           !blank(c.Name),
		FieldTitle:          !blank(c.Title),
		FieldCompany:        !blank(c.Company),
		FieldIndustry:       !blank(c.Industry),
		FieldLocation:       !blank(c.Location),
		FieldBio:            !blank(c.Bio),
		FieldSkills:         hasSkill(c.Skills),
		FieldSocialProfiles: !c.SocialProfiles.IsEmpty(),
		FieldEmail:          !blank(c.Email),
		FieldPhone:          !blank(c.Phone),
	}

	var out []string
	for _, f := range CanonicalFields {
		if present[f] {
			out = append(out, f)
		}
	}
	return out
}

// SemanticQuery joins the present identity fields (name, company, title,
// industry, location) with spaces.
func (c ContactInfo) SemanticQuery() string {
	var parts []string
	for _, v := range []string{c.Name, c.Company, c.Title, c.Industry, c.Location} {
		if !blank(v) {
			parts = append(parts, v)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func hasSkill(skills []string) bool {
	for _, s := range skills {
		if !blank(s) {
			return true
		}
	}
	return false
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
