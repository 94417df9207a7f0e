package repo

import (
	"context"

	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
	"github.com/jmspivey7/PlateSync-sub002/internal/infra"
	"github.com/jmspivey7/PlateSync-sub002/internal/sqlinline"
)

// ChurchRepositoryPG implements domain.ChurchRepository backed by PostgreSQL.
type ChurchRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewChurchRepository creates a new ChurchRepositoryPG.
func NewChurchRepository(sql infra.SQLExecutor) *ChurchRepositoryPG {
	return &ChurchRepositoryPG{sql: sql}
}

// Register creates the church, its account owner, a trial subscription and the
// default service option in a single statement.
func (r *ChurchRepositoryPG) Register(ctx context.Context, reg domain.Registration, passwordHash string) (*domain.Church, *domain.User, error) {
	var c domain.Church
	u := domain.User{
		Email:        reg.Email,
		PasswordHash: passwordHash,
		FirstName:    reg.FirstName,
		LastName:     reg.LastName,
		Role:         domain.RoleAccountOwner,
		IsActive:     true,
	}
	row := r.sql.QueryRow(ctx, sqlinline.QRegisterChurch,
		reg.ChurchName, reg.Email, passwordHash, reg.FirstName, reg.LastName, reg.TrialEnds)
	if err := row.Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.LogoKey, &c.Status, &c.CreatedAt, &c.UpdatedAt,
		&u.ID, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, nil, writeErr(err)
	}
	u.ChurchID = c.ID
	return &c, &u, nil
}

// GetByID fetches a church.
func (r *ChurchRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Church, error) {
	return scanChurch(r.sql.QueryRow(ctx, sqlinline.QSelectChurch, id))
}

// Update saves the church profile.
func (r *ChurchRepositoryPG) Update(ctx context.Context, church *domain.Church) error {
	row := r.sql.QueryRow(ctx, sqlinline.QUpdateChurch, church.ID, church.Name, church.Email, church.Phone, church.Address)
	return notFound(row.Scan(&church.UpdatedAt))
}

// SetLogo stores the storage key of the uploaded logo.
func (r *ChurchRepositoryPG) SetLogo(ctx context.Context, churchID, key string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QSetChurchLogo, churchID, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetStatus suspends, reactivates or soft-deletes a church.
func (r *ChurchRepositoryPG) SetStatus(ctx context.Context, churchID string, status domain.ChurchStatus) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QSetChurchStatus, churchID, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListSummaries returns churches with subscription and usage figures for operators.
func (r *ChurchRepositoryPG) ListSummaries(ctx context.Context, query string, limit, offset int) ([]domain.ChurchSummary, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListChurchSummaries, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.ChurchSummary
	for rows.Next() {
		var s domain.ChurchSummary
		if err := rows.Scan(
			&s.ID, &s.Name, &s.Email, &s.Phone, &s.Address, &s.LogoKey, &s.Status, &s.CreatedAt, &s.UpdatedAt,
			&s.Subscription.Plan, &s.Subscription.Status, &s.Subscription.TrialEndsAt, &s.Subscription.CurrentPeriodEnd,
			&s.Subscription.StripeCustomerID, &s.Subscription.StripeSubscriptionID,
			&s.UserCount, &s.FinalizedBatches, &s.LastFinalizedAt, &s.TotalFinalizedCents,
		); err != nil {
			return nil, err
		}
		s.Subscription.ChurchID = s.ID
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
