package domain

import (
	"strings"
	"time"
)

// DonationType distinguishes cash from check gifts.
type DonationType string

const (
	DonationCash  DonationType = "CASH"
	DonationCheck DonationType = "CHECK"
)

// NotificationStatus tracks the donor confirmation email for a donation.
type NotificationStatus string

const (
	NotificationPending     NotificationStatus = "PENDING"
	NotificationQueued      NotificationStatus = "QUEUED"
	NotificationSent        NotificationStatus = "SENT"
	NotificationFailed      NotificationStatus = "FAILED"
	NotificationNotRequired NotificationStatus = "NOT_REQUIRED"
)

// Donation is a single gift recorded in a batch.
type Donation struct {
	ID                 string
	ChurchID           string
	BatchID            string
	MemberID           *string
	MemberName         string
	MemberEmail        string
	Type               DonationType
	AmountCents        int64
	CheckNumber        string
	Notes              string
	NotificationStatus NotificationStatus
	CreatedBy          *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Validate checks the donation's own fields; batch state is checked separately.
func (d *Donation) Validate() error {
	d.Type = DonationType(strings.ToUpper(strings.TrimSpace(string(d.Type))))
	switch d.Type {
	case DonationCash:
		d.CheckNumber = ""
	case DonationCheck:
		d.CheckNumber = strings.TrimSpace(d.CheckNumber)
		if d.CheckNumber == "" {
			return Invalid("check_number", "is required for checks")
		}
	default:
		return Invalid("donation_type", "must be CASH or CHECK")
	}
	if d.AmountCents <= 0 {
		return Invalid("amount", "must be positive")
	}
	if d.MemberID != nil && strings.TrimSpace(*d.MemberID) == "" {
		d.MemberID = nil
	}
	d.Notes = strings.TrimSpace(d.Notes)
	return nil
}

// Anonymous reports whether the donation is not linked to a member.
func (d Donation) Anonymous() bool {
	return d.MemberID == nil
}
