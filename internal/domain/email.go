package domain

import "time"

// TemplateType enumerates the transactional emails the platform sends.
type TemplateType string

const (
	TemplateWelcome              TemplateType = "WELCOME_EMAIL"
	TemplatePasswordReset        TemplateType = "PASSWORD_RESET"
	TemplateDonationConfirmation TemplateType = "DONATION_CONFIRMATION"
	TemplateCountReport          TemplateType = "COUNT_REPORT"
)

// TemplateTypes lists every template type in display order.
var TemplateTypes = []TemplateType{
	TemplateWelcome,
	TemplatePasswordReset,
	TemplateDonationConfirmation,
	TemplateCountReport,
}

// Valid reports whether t is a known template type.
func (t TemplateType) Valid() bool {
	for _, known := range TemplateTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ChurchEditable reports whether churches may override the template. Account
// emails stay under system control.
func (t TemplateType) ChurchEditable() bool {
	return t == TemplateDonationConfirmation || t == TemplateCountReport
}

// EmailTemplate is a subject/body pair; ChurchID nil means system scope.
type EmailTemplate struct {
	ID        string
	ChurchID  *string
	Type      TemplateType
	Subject   string
	BodyHTML  string
	BodyText  string
	UpdatedAt time.Time
}

// OutboxStatus tracks delivery of a queued email.
type OutboxStatus string

const (
	OutboxQueued  OutboxStatus = "QUEUED"
	OutboxSending OutboxStatus = "SENDING"
	OutboxSent    OutboxStatus = "SENT"
	OutboxFailed  OutboxStatus = "FAILED"
)

// MaxDeliveryAttempts bounds retries before a message is marked FAILED.
const MaxDeliveryAttempts = 5

// OutboxMessage is a rendered email awaiting delivery.
type OutboxMessage struct {
	ID            string
	ChurchID      *string
	Kind          TemplateType
	Recipient     string
	RecipientName string
	Subject       string
	BodyHTML      string
	BodyText      string
	Status        OutboxStatus
	Attempts      int
	LastError     string
	RelatedID     *string
	CreatedAt     time.Time
	SentAt        *time.Time
}
