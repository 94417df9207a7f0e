package domain

import (
	"context"
	"time"
)

// ChurchRepository persists tenants and their registration bundle.
type ChurchRepository interface {
	Register(ctx context.Context, reg Registration, passwordHash string) (*Church, *User, error)
	GetByID(ctx context.Context, id string) (*Church, error)
	Update(ctx context.Context, church *Church) error
	SetLogo(ctx context.Context, churchID, key string) error
	SetStatus(ctx context.Context, churchID string, status ChurchStatus) error
	ListSummaries(ctx context.Context, query string, limit, offset int) ([]ChurchSummary, error)
}

// UserRepository defines access methods for church users.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, churchID, id string) (*User, error)
	ListByChurch(ctx context.Context, churchID string) ([]User, error)
	Create(ctx context.Context, user *User) error
	UpdateRole(ctx context.Context, churchID, id string, role UserRole) error
	SetActive(ctx context.Context, churchID, id string, active bool) error
	RecordLogin(ctx context.Context, id, country string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// GlobalAdminRepository loads operator accounts.
type GlobalAdminRepository interface {
	GetByEmail(ctx context.Context, email string) (*GlobalAdmin, error)
}

// PasswordResetRepository stores one-time reset tokens by hash.
type PasswordResetRepository interface {
	Create(ctx context.Context, reset PasswordReset) error
	Consume(ctx context.Context, tokenHash string, now time.Time) (string, error)
}

// MemberRepository handles donor persistence.
type MemberRepository interface {
	List(ctx context.Context, churchID string, filter MemberFilter) ([]Member, int, error)
	Get(ctx context.Context, churchID, id string) (*Member, error)
	Create(ctx context.Context, member *Member) error
	Update(ctx context.Context, member *Member) error
	Delete(ctx context.Context, churchID, id string) error
	UpsertExternal(ctx context.Context, member *Member) (bool, error)
	DonationHistory(ctx context.Context, churchID, memberID string, limit int) ([]Donation, error)
}

// ServiceOptionRepository handles the church's worship service list.
type ServiceOptionRepository interface {
	List(ctx context.Context, churchID string) ([]ServiceOption, error)
	Get(ctx context.Context, churchID, id string) (*ServiceOption, error)
	Create(ctx context.Context, option *ServiceOption) error
	Delete(ctx context.Context, churchID, id string) error
}

// ReportRecipientRepository handles count report recipients.
type ReportRecipientRepository interface {
	List(ctx context.Context, churchID string) ([]ReportRecipient, error)
	Create(ctx context.Context, recipient *ReportRecipient) error
	Delete(ctx context.Context, churchID, id string) error
}

// BatchRepository persists counts. Every state-changing method is guarded on
// the expected status and reports ErrConflict when the guard does not match.
type BatchRepository interface {
	Create(ctx context.Context, batch *Batch) error
	Get(ctx context.Context, churchID, id string) (*Batch, error)
	List(ctx context.Context, churchID string, filter BatchFilter) ([]Batch, error)
	UpdateDetails(ctx context.Context, batch *Batch) error
	Delete(ctx context.Context, churchID, id string) error
	SetStatus(ctx context.Context, churchID, id string, from, to BatchStatus, clearAttestation bool) error
	SaveAttestation(ctx context.Context, batch, prior *Batch) error
	Finalize(ctx context.Context, churchID, id, userID string) (*Batch, error)
	RecomputeTotals(ctx context.Context, churchID, id string) (BatchTotals, error)
	Dashboard(ctx context.Context, churchID string, now time.Time) (*DashboardSummary, error)
}

// DonationRepository persists gifts. Mutations only succeed while the owning
// batch is OPEN; otherwise ErrBatchNotOpen is returned.
type DonationRepository interface {
	Create(ctx context.Context, donation *Donation) error
	Get(ctx context.Context, churchID, id string) (*Donation, error)
	Update(ctx context.Context, donation *Donation) error
	Delete(ctx context.Context, churchID, id string) error
	ListByBatch(ctx context.Context, churchID, batchID string) ([]Donation, error)
	SetNotificationStatus(ctx context.Context, churchID string, ids []string, status NotificationStatus) error
}

// TemplateRepository stores church and system email templates.
type TemplateRepository interface {
	Get(ctx context.Context, churchID *string, kind TemplateType) (*EmailTemplate, error)
	List(ctx context.Context, churchID *string) ([]EmailTemplate, error)
	Upsert(ctx context.Context, tpl *EmailTemplate) error
	Delete(ctx context.Context, churchID string, kind TemplateType) error
}

// SubscriptionRepository stores billing state.
type SubscriptionRepository interface {
	Get(ctx context.Context, churchID string) (*Subscription, error)
	GetByStripeCustomer(ctx context.Context, customerID string) (*Subscription, error)
	Apply(ctx context.Context, change SubscriptionChange) error
	ExpireTrials(ctx context.Context, now time.Time) (int64, error)
}

// OutboxRepository queues and tracks outgoing email.
type OutboxRepository interface {
	Enqueue(ctx context.Context, msg *OutboxMessage) error
	Claim(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id, reason string) (bool, error)
	ReclaimStale(ctx context.Context, olderThan time.Duration) (int64, error)
}
