package domain

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Member is a donor known to a church.
type Member struct {
	ID         string
	ChurchID   string
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	ExternalID string
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// FullName joins first and last name.
func (m Member) FullName() string {
	return joinName(m.FirstName, m.LastName)
}

// MemberFilter narrows member listings.
type MemberFilter struct {
	Query  string
	Limit  int
	Offset int
}

// MemberImportResult summarizes a bulk import or sync.
type MemberImportResult struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

var titleCaser = cases.Title(language.English)

// NormalizeName collapses whitespace and title-cases names typed entirely in
// one case ("JOHN SMITH", "john smith"). Mixed-case input such as "McDonald"
// is kept as typed.
func NormalizeName(raw string) string {
	name := strings.Join(strings.Fields(raw), " ")
	if name == "" {
		return ""
	}
	hasUpper, hasLower := false, false
	for _, r := range name {
		if unicode.IsUpper(r) {
			hasUpper = true
		}
		if unicode.IsLower(r) {
			hasLower = true
		}
	}
	if hasUpper && hasLower {
		return name
	}
	return titleCaser.String(strings.ToLower(name))
}

// Validate normalizes member fields in place.
func (m *Member) Validate() error {
	m.FirstName = NormalizeName(m.FirstName)
	m.LastName = NormalizeName(m.LastName)
	if m.FirstName == "" && m.LastName == "" {
		return Invalid("name", "is required")
	}
	if strings.TrimSpace(m.Email) != "" {
		email, err := NormalizeEmail(m.Email)
		if err != nil {
			return err
		}
		m.Email = email
	} else {
		m.Email = ""
	}
	m.Phone = strings.TrimSpace(m.Phone)
	m.Notes = strings.TrimSpace(m.Notes)
	m.ExternalID = strings.TrimSpace(m.ExternalID)
	return nil
}

func joinName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}
