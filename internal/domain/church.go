package domain

import (
	"net/mail"
	"strings"
	"time"
)

// ChurchStatus enumerates tenant lifecycle states.
type ChurchStatus string

const (
	ChurchStatusActive    ChurchStatus = "ACTIVE"
	ChurchStatusSuspended ChurchStatus = "SUSPENDED"
	ChurchStatusDeleted   ChurchStatus = "DELETED"
)

// Valid reports whether s is a known status.
func (s ChurchStatus) Valid() bool {
	switch s {
	case ChurchStatusActive, ChurchStatusSuspended, ChurchStatusDeleted:
		return true
	}
	return false
}

// Church is a tenant of the platform.
type Church struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Address   string
	LogoKey   string
	Status    ChurchStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ChurchSummary is the global-admin listing row.
type ChurchSummary struct {
	Church
	Subscription        Subscription
	UserCount           int
	FinalizedBatches    int
	LastFinalizedAt     *time.Time
	TotalFinalizedCents int64
}

// ServiceOption is a named worship service a count can be attributed to.
type ServiceOption struct {
	ID        string
	ChurchID  string
	Name      string
	IsDefault bool
	CreatedAt time.Time
}

// ReportRecipient receives the count report when a batch is finalized.
type ReportRecipient struct {
	ID        string
	ChurchID  string
	FirstName string
	LastName  string
	Email     string
	CreatedAt time.Time
}

// NormalizeEmail lower-cases and trims an address and validates its syntax.
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", Invalid("email", "is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", Invalid("email", "is not a valid address")
	}
	return email, nil
}

// RequireText trims value and fails when it is empty or longer than max runes.
func RequireText(field, value string, max int) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", Invalid(field, "is required")
	}
	if max > 0 && len([]rune(v)) > max {
		return "", Invalid(field, "is too long")
	}
	return v, nil
}
