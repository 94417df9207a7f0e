package repo

import (
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
	"github.com/jmspivey7/PlateSync-sub002/internal/infra"
)

// notFound maps pgx.ErrNoRows and unparseable ids to domain.ErrNotFound.
func notFound(err error) error {
	if infra.IsNoRows(err) || infra.IsInvalidTextRepresentation(err) {
		return domain.ErrNotFound
	}
	return err
}

// writeErr maps constraint violations raised by inserts and updates.
func writeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case infra.IsUniqueViolation(err):
		return domain.ErrDuplicate
	case infra.IsForeignKeyViolation(err), infra.IsInvalidTextRepresentation(err):
		return domain.ErrNotFound
	}
	return err
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func scanBatch(row pgx.Row) (*domain.Batch, error) {
	var b domain.Batch
	if err := row.Scan(
		&b.ID, &b.ChurchID, &b.Name, &b.ServiceOptionID, &b.ServiceName,
		&b.CountDate, &b.Status, &b.TotalCents, &b.CashCents, &b.CheckCents, &b.DonationCount, &b.Notes,
		&b.Primary.UserID, &b.Primary.Name, &b.Primary.At,
		&b.Secondary.UserID, &b.Secondary.Name, &b.Secondary.At,
		&b.FinalizedBy, &b.FinalizedAt, &b.CreatedBy, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func scanDonation(row pgx.Row) (*domain.Donation, error) {
	var d domain.Donation
	if err := row.Scan(
		&d.ID, &d.ChurchID, &d.BatchID, &d.MemberID,
		&d.MemberName, &d.MemberEmail,
		&d.Type, &d.AmountCents, &d.CheckNumber, &d.Notes, &d.NotificationStatus,
		&d.CreatedBy, &d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID, &u.ChurchID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Role, &u.IsActive,
		&u.LastLoginAt, &u.LastLoginCountry, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func scanChurch(row pgx.Row) (*domain.Church, error) {
	var c domain.Church
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.LogoKey, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func scanMember(row pgx.Row, extra ...any) (*domain.Member, error) {
	var m domain.Member
	dest := []any{&m.ID, &m.ChurchID, &m.FirstName, &m.LastName, &m.Email, &m.Phone, &m.ExternalID, &m.Notes, &m.CreatedAt, &m.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func scanTemplate(row pgx.Row) (*domain.EmailTemplate, error) {
	var t domain.EmailTemplate
	if err := row.Scan(&t.ID, &t.ChurchID, &t.Type, &t.Subject, &t.BodyHTML, &t.BodyText, &t.UpdatedAt); err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func scanSubscription(row pgx.Row) (*domain.Subscription, error) {
	var s domain.Subscription
	if err := row.Scan(
		&s.ChurchID, &s.Plan, &s.Status, &s.TrialEndsAt, &s.CurrentPeriodEnd,
		&s.StripeCustomerID, &s.StripeSubscriptionID, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}
