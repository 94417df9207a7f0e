package domain

import (
	"strings"
	"time"
)

// BatchStatus enumerates the lifecycle of a count.
//
//	OPEN -> CLOSED -> FINALIZED
//	CLOSED -> OPEN (reopen clears attestation)
//
// FINALIZED is terminal.
type BatchStatus string

const (
	BatchStatusOpen      BatchStatus = "OPEN"
	BatchStatusClosed    BatchStatus = "CLOSED"
	BatchStatusFinalized BatchStatus = "FINALIZED"
)

// Valid reports whether s is a known status.
func (s BatchStatus) Valid() bool {
	switch s {
	case BatchStatusOpen, BatchStatusClosed, BatchStatusFinalized:
		return true
	}
	return false
}

// Attestation records one person's sign-off on a count.
type Attestation struct {
	UserID *string
	Name   string
	At     *time.Time
}

// Present reports whether a non-blank attestor name is recorded.
func (a Attestation) Present() bool {
	return strings.TrimSpace(a.Name) != ""
}

// Batch is a collection of donations gathered at one collection event.
type Batch struct {
	ID              string
	ChurchID        string
	Name            string
	ServiceOptionID *string
	ServiceName     string
	CountDate       time.Time
	Status          BatchStatus
	TotalCents      int64
	CashCents       int64
	CheckCents      int64
	DonationCount   int
	Notes           string
	Primary         Attestation
	Secondary       Attestation
	FinalizedBy     *string
	FinalizedAt     *time.Time
	CreatedBy       *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// BatchFilter narrows batch listings.
type BatchFilter struct {
	Status BatchStatus
	Limit  int
	Offset int
}

// BatchTotals is the recomputed aggregate of a batch's donations.
type BatchTotals struct {
	TotalCents    int64
	CashCents     int64
	CheckCents    int64
	DonationCount int
}

// SameAttestor compares attestor names ignoring case and surrounding or repeated whitespace.
func SameAttestor(a, b string) bool {
	return normalizeAttestor(a) == normalizeAttestor(b)
}

func normalizeAttestor(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// CanEditDonations fails unless donations may be added, changed or removed.
func (b *Batch) CanEditDonations() error {
	switch b.Status {
	case BatchStatusOpen:
		return nil
	case BatchStatusFinalized:
		return ErrBatchFinalized
	default:
		return ErrBatchNotOpen
	}
}

// CanModify fails when the batch details may no longer change.
func (b *Batch) CanModify() error {
	if b.Status == BatchStatusFinalized {
		return ErrBatchFinalized
	}
	return nil
}

// Close stops donation entry.
func (b *Batch) Close() error {
	switch b.Status {
	case BatchStatusOpen:
		b.Status = BatchStatusClosed
		return nil
	case BatchStatusFinalized:
		return ErrBatchFinalized
	default:
		return ErrInvalidTransition
	}
}

// Reopen returns a closed batch to OPEN and discards attestation.
func (b *Batch) Reopen() error {
	switch b.Status {
	case BatchStatusClosed:
		b.Status = BatchStatusOpen
		b.Primary = Attestation{}
		b.Secondary = Attestation{}
		return nil
	case BatchStatusFinalized:
		return ErrBatchFinalized
	default:
		return ErrInvalidTransition
	}
}

// AttestPrimary records the first sign-off and closes the batch. A previous
// secondary attestation is discarded because it attested different totals.
func (b *Batch) AttestPrimary(userID, name string, at time.Time) error {
	if b.Status == BatchStatusFinalized {
		return ErrBatchFinalized
	}
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return Invalid("attestor_name", "is required")
	}
	b.Status = BatchStatusClosed
	b.Primary = Attestation{UserID: optionalID(userID), Name: name, At: &at}
	b.Secondary = Attestation{}
	return nil
}

// AttestSecondary records the second sign-off by a different person.
func (b *Batch) AttestSecondary(userID, name string, at time.Time) error {
	switch b.Status {
	case BatchStatusFinalized:
		return ErrBatchFinalized
	case BatchStatusOpen:
		return ErrAttestationIncomplete
	}
	if !b.Primary.Present() {
		return ErrAttestationIncomplete
	}
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return Invalid("attestor_name", "is required")
	}
	if SameAttestor(b.Primary.Name, name) {
		return ErrAttestorsNotDistinct
	}
	b.Secondary = Attestation{UserID: optionalID(userID), Name: name, At: &at}
	return nil
}

// ReadyToFinalize reports why the batch cannot be finalized, or nil.
func (b *Batch) ReadyToFinalize() error {
	if b.Status == BatchStatusFinalized {
		return ErrBatchFinalized
	}
	if !b.Primary.Present() || !b.Secondary.Present() {
		return ErrAttestationIncomplete
	}
	if SameAttestor(b.Primary.Name, b.Secondary.Name) {
		return ErrAttestorsNotDistinct
	}
	if b.DonationCount == 0 {
		return ErrEmptyBatch
	}
	return nil
}

// Finalize moves the batch to its terminal state.
func (b *Batch) Finalize(userID string, at time.Time) error {
	if err := b.ReadyToFinalize(); err != nil {
		return err
	}
	b.Status = BatchStatusFinalized
	b.FinalizedBy = optionalID(userID)
	b.FinalizedAt = &at
	return nil
}

// DefaultBatchName builds a name from the service and count date.
func DefaultBatchName(serviceName string, countDate time.Time) string {
	date := countDate.Format("Jan 2, 2006")
	if s := strings.TrimSpace(serviceName); s != "" {
		return s + " - " + date
	}
	return "Count - " + date
}

func optionalID(id string) *string {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	return &id
}
