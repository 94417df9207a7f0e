package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
)

// Actor is the church user managing other users.
type Actor struct {
	UserID   string
	ChurchID string
	Role     domain.UserRole
}

// NewUserInput describes a user added by an admin or owner.
type NewUserInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      domain.UserRole
}

// canAssign reports whether actor may grant role. Only owners create admins
// and nobody assigns ownership.
func canAssign(actor domain.UserRole, role domain.UserRole) bool {
	switch role {
	case domain.RoleUsher:
		return actor.AtLeast(domain.RoleAdmin)
	case domain.RoleAdmin:
		return actor == domain.RoleAccountOwner
	}
	return false
}

// ListUsers returns the church's users.
func (s *Service) ListUsers(ctx context.Context, actor Actor) ([]domain.User, error) {
	if !actor.Role.AtLeast(domain.RoleAdmin) {
		return nil, domain.ErrForbidden
	}
	return s.Users.ListByChurch(ctx, actor.ChurchID)
}

// CreateUser adds a user to the actor's church and emails a welcome with the login link.
func (s *Service) CreateUser(ctx context.Context, actor Actor, in NewUserInput) (*domain.User, error) {
	if !in.Role.Valid() || in.Role == domain.RoleAccountOwner {
		return nil, domain.Invalid("role", "must be ADMIN or USHER")
	}
	if !canAssign(actor.Role, in.Role) {
		return nil, domain.ErrForbidden
	}
	email, err := domain.NormalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	first, err := domain.RequireText("first_name", in.FirstName, maxNameLength)
	if err != nil {
		return nil, err
	}
	last, err := domain.RequireText("last_name", in.LastName, maxNameLength)
	if err != nil {
		return nil, err
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		ChurchID:     actor.ChurchID,
		Email:        email,
		PasswordHash: hash,
		FirstName:    first,
		LastName:     last,
		Role:         in.Role,
	}
	if err := s.Users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, fmt.Errorf("%w: email is already registered", domain.ErrDuplicate)
		}
		return nil, err
	}
	church, err := s.Churches.GetByID(ctx, actor.ChurchID)
	if err != nil {
		s.Logger.Error().Err(err).Str("church_id", actor.ChurchID).Msg("load church for welcome email failed")
		return user, nil
	}
	s.sendWelcome(ctx, church, user)
	return user, nil
}

// ChangeRole moves a non-owner user between ADMIN and USHER.
func (s *Service) ChangeRole(ctx context.Context, actor Actor, userID string, role domain.UserRole) error {
	if !role.Valid() || role == domain.RoleAccountOwner {
		return domain.Invalid("role", "must be ADMIN or USHER")
	}
	target, err := s.manageable(ctx, actor, userID)
	if err != nil {
		return err
	}
	if !canAssign(actor.Role, role) {
		return domain.ErrForbidden
	}
	return s.Users.UpdateRole(ctx, actor.ChurchID, target.ID, role)
}

// SetUserActive enables or disables a non-owner user.
func (s *Service) SetUserActive(ctx context.Context, actor Actor, userID string, active bool) error {
	target, err := s.manageable(ctx, actor, userID)
	if err != nil {
		return err
	}
	return s.Users.SetActive(ctx, actor.ChurchID, target.ID, active)
}

// manageable loads a user the actor may change: never the owner or the actor
// itself, and admins only manage ushers.
func (s *Service) manageable(ctx context.Context, actor Actor, userID string) (*domain.User, error) {
	if !actor.Role.AtLeast(domain.RoleAdmin) {
		return nil, domain.ErrForbidden
	}
	target, err := s.Users.GetByID(ctx, actor.ChurchID, userID)
	if err != nil {
		return nil, err
	}
	if target.ID == actor.UserID || target.Role == domain.RoleAccountOwner {
		return nil, domain.ErrForbidden
	}
	if actor.Role != domain.RoleAccountOwner && target.Role != domain.RoleUsher {
		return nil, domain.ErrForbidden
	}
	return target, nil
}
