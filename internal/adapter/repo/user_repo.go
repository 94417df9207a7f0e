package repo

import (
	"context"
	"time"

	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
	"github.com/jmspivey7/PlateSync-sub002/internal/infra"
	"github.com/jmspivey7/PlateSync-sub002/internal/sqlinline"
)

// UserRepositoryPG implements domain.UserRepository backed by PostgreSQL.
type UserRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewUserRepository creates a new UserRepositoryPG.
func NewUserRepository(sql infra.SQLExecutor) *UserRepositoryPG {
	return &UserRepositoryPG{sql: sql}
}

// GetByEmail fetches a user by case-insensitive email.
func (r *UserRepositoryPG) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.sql.QueryRow(ctx, sqlinline.QSelectUserByEmail, email))
}

// GetByID fetches a user within a church.
func (r *UserRepositoryPG) GetByID(ctx context.Context, churchID, id string) (*domain.User, error) {
	return scanUser(r.sql.QueryRow(ctx, sqlinline.QSelectUserByID, churchID, id))
}

// ListByChurch returns the church's users, owner first.
func (r *UserRepositoryPG) ListByChurch(ctx context.Context, churchID string) ([]domain.User, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListUsers, churchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Create inserts a user; a taken email yields domain.ErrDuplicate.
func (r *UserRepositoryPG) Create(ctx context.Context, user *domain.User) error {
	row := r.sql.QueryRow(ctx, sqlinline.QInsertUser,
		user.ChurchID, user.Email, user.PasswordHash, user.FirstName, user.LastName, string(user.Role))
	return writeErr(row.Scan(&user.ID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt))
}

// UpdateRole changes a non-owner user's role.
func (r *UserRepositoryPG) UpdateRole(ctx context.Context, churchID, id string, role domain.UserRole) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QUpdateUserRole, churchID, id, string(role))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetActive enables or disables a non-owner user.
func (r *UserRepositoryPG) SetActive(ctx context.Context, churchID, id string, active bool) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QSetUserActive, churchID, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// RecordLogin stamps the login time and the resolved country code.
func (r *UserRepositoryPG) RecordLogin(ctx context.Context, id, country string) error {
	_, err := r.sql.Exec(ctx, sqlinline.QRecordLogin, id, country)
	return err
}

// UpdatePassword replaces the stored bcrypt hash.
func (r *UserRepositoryPG) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QUpdatePassword, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GlobalAdminRepositoryPG implements domain.GlobalAdminRepository.
type GlobalAdminRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewGlobalAdminRepository(sql infra.SQLExecutor) *GlobalAdminRepositoryPG {
	return &GlobalAdminRepositoryPG{sql: sql}
}

func (r *GlobalAdminRepositoryPG) GetByEmail(ctx context.Context, email string) (*domain.GlobalAdmin, error) {
	var a domain.GlobalAdmin
	row := r.sql.QueryRow(ctx, sqlinline.QSelectGlobalAdminByEmail, email)
	if err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.FirstName, &a.LastName, &a.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// Upsert creates an operator or resets an existing one's password.
func (r *GlobalAdminRepositoryPG) Upsert(ctx context.Context, admin *domain.GlobalAdmin) error {
	row := r.sql.QueryRow(ctx, sqlinline.QUpsertGlobalAdmin, admin.Email, admin.PasswordHash, admin.FirstName, admin.LastName)
	return row.Scan(&admin.ID)
}

// PasswordResetRepositoryPG implements domain.PasswordResetRepository.
type PasswordResetRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewPasswordResetRepository(sql infra.SQLExecutor) *PasswordResetRepositoryPG {
	return &PasswordResetRepositoryPG{sql: sql}
}

func (r *PasswordResetRepositoryPG) Create(ctx context.Context, reset domain.PasswordReset) error {
	_, err := r.sql.Exec(ctx, sqlinline.QInsertPasswordReset, reset.TokenHash, reset.UserID, reset.ExpiresAt)
	return err
}

// Consume marks an unexpired token used and returns its user ID. Unknown,
// expired and already used tokens all yield domain.ErrNotFound.
func (r *PasswordResetRepositoryPG) Consume(ctx context.Context, tokenHash string, now time.Time) (string, error) {
	var userID string
	if err := r.sql.QueryRow(ctx, sqlinline.QConsumePasswordReset, tokenHash, now).Scan(&userID); err != nil {
		return "", notFound(err)
	}
	return userID, nil
}
