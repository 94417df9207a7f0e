package handlers

import (
	"time"

	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
	"github.com/jmspivey7/PlateSync-sub002/internal/storage"
)

type churchDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	LogoURL   string    `json:"logo_url,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toChurchDTO(c *domain.Church, files *storage.FileStore) churchDTO {
	out := churchDTO{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		Status:    string(c.Status),
		CreatedAt: c.CreatedAt,
	}
	if c.LogoKey != "" && files != nil {
		out.LogoURL = files.URL(c.LogoKey)
	}
	return out
}

type userDTO struct {
	ID          string     `json:"id"`
	ChurchID    string     `json:"church_id,omitempty"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toUserDTO(u *domain.User) userDTO {
	return userDTO{
		ID:          u.ID,
		ChurchID:    u.ChurchID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        string(u.Role),
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

type memberDTO struct {
	ID         string    `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	ExternalID string    `json:"external_id,omitempty"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toMemberDTO(m *domain.Member) memberDTO {
	return memberDTO{
		ID:         m.ID,
		FirstName:  m.FirstName,
		LastName:   m.LastName,
		Email:      m.Email,
		Phone:      m.Phone,
		ExternalID: m.ExternalID,
		Notes:      m.Notes,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

type attestationDTO struct {
	UserID *string    `json:"user_id,omitempty"`
	Name   string     `json:"name"`
	At     *time.Time `json:"at,omitempty"`
}

type batchDTO struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	ServiceOptionID *string        `json:"service_option_id"`
	ServiceName     string         `json:"service_name"`
	CountDate       string         `json:"count_date"`
	Status          string         `json:"status"`
	TotalCents      int64          `json:"total_cents"`
	CashCents       int64          `json:"cash_cents"`
	CheckCents      int64          `json:"check_cents"`
	Total           string         `json:"total"`
	DonationCount   int            `json:"donation_count"`
	Notes           string         `json:"notes"`
	Primary         attestationDTO `json:"primary_attestation"`
	Secondary       attestationDTO `json:"secondary_attestation"`
	FinalizedBy     *string        `json:"finalized_by,omitempty"`
	FinalizedAt     *time.Time     `json:"finalized_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func toBatchDTO(b *domain.Batch) batchDTO {
	return batchDTO{
		ID:              b.ID,
		Name:            b.Name,
		ServiceOptionID: b.ServiceOptionID,
		ServiceName:     b.ServiceName,
		CountDate:       b.CountDate.Format(dateLayout),
		Status:          string(b.Status),
		TotalCents:      b.TotalCents,
		CashCents:       b.CashCents,
		CheckCents:      b.CheckCents,
		Total:           domain.DecimalCents(b.TotalCents),
		DonationCount:   b.DonationCount,
		Notes:           b.Notes,
		Primary:         attestationDTO{UserID: b.Primary.UserID, Name: b.Primary.Name, At: b.Primary.At},
		Secondary:       attestationDTO{UserID: b.Secondary.UserID, Name: b.Secondary.Name, At: b.Secondary.At},
		FinalizedBy:     b.FinalizedBy,
		FinalizedAt:     b.FinalizedAt,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func toBatchDTOs(items []domain.Batch) []batchDTO {
	out := make([]batchDTO, 0, len(items))
	for i := range items {
		out = append(out, toBatchDTO(&items[i]))
	}
	return out
}

type donationDTO struct {
	ID                 string    `json:"id"`
	BatchID            string    `json:"batch_id"`
	MemberID           *string   `json:"member_id"`
	MemberName         string    `json:"member_name"`
	Type               string    `json:"type"`
	AmountCents        int64     `json:"amount_cents"`
	Amount             string    `json:"amount"`
	CheckNumber        string    `json:"check_number,omitempty"`
	Notes              string    `json:"notes"`
	NotificationStatus string    `json:"notification_status"`
	CreatedAt          time.Time `json:"created_at"`
}

func toDonationDTO(d *domain.Donation) donationDTO {
	name := d.MemberName
	if d.Anonymous() {
		name = "Anonymous"
	}
	return donationDTO{
		ID:                 d.ID,
		BatchID:            d.BatchID,
		MemberID:           d.MemberID,
		MemberName:         name,
		Type:               string(d.Type),
		AmountCents:        d.AmountCents,
		Amount:             domain.DecimalCents(d.AmountCents),
		CheckNumber:        d.CheckNumber,
		Notes:              d.Notes,
		NotificationStatus: string(d.NotificationStatus),
		CreatedAt:          d.CreatedAt,
	}
}

func toDonationDTOs(items []domain.Donation) []donationDTO {
	out := make([]donationDTO, 0, len(items))
	for i := range items {
		out = append(out, toDonationDTO(&items[i]))
	}
	return out
}

type subscriptionDTO struct {
	Plan             string     `json:"plan"`
	Status           string     `json:"status"`
	Usable           bool       `json:"usable"`
	TrialEndsAt      *time.Time `json:"trial_ends_at,omitempty"`
	TrialDaysLeft    int        `json:"trial_days_left"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
	StripeCustomerID string     `json:"stripe_customer_id,omitempty"`
}

func toSubscriptionDTO(s *domain.Subscription, now time.Time) subscriptionDTO {
	return subscriptionDTO{
		Plan:             string(s.Plan),
		Status:           string(s.Status),
		Usable:           s.Usable(now),
		TrialEndsAt:      s.TrialEndsAt,
		TrialDaysLeft:    s.TrialDaysLeft(now),
		CurrentPeriodEnd: s.CurrentPeriodEnd,
		StripeCustomerID: s.StripeCustomerID,
	}
}

type templateDTO struct {
	Type       string    `json:"type"`
	Subject    string    `json:"subject"`
	BodyHTML   string    `json:"body_html"`
	BodyText   string    `json:"body_text"`
	Customized bool      `json:"customized"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

func toTemplateDTO(t domain.EmailTemplate, customized bool) templateDTO {
	return templateDTO{
		Type:       string(t.Type),
		Subject:    t.Subject,
		BodyHTML:   t.BodyHTML,
		BodyText:   t.BodyText,
		Customized: customized,
		UpdatedAt:  t.UpdatedAt,
	}
}
