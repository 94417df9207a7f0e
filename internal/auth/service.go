package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
	"github.com/jmspivey7/PlateSync-sub002/internal/middleware"
	"github.com/jmspivey7/PlateSync-sub002/internal/notify"
)

const (
	TokenTTL         = 24 * time.Hour
	ResetTokenTTL    = time.Hour
	DefaultTrialDays = 30

	maxNameLength = 80
)

// Mailer queues account emails.
type Mailer interface {
	Queue(ctx context.Context, churchID *string, kind domain.TemplateType, to notify.Recipient, vars notify.Vars, relatedID *string) (*domain.OutboxMessage, error)
}

// Service handles registration, sign-in and password recovery.
type Service struct {
	Churches  domain.ChurchRepository
	Users     domain.UserRepository
	Admins    domain.GlobalAdminRepository
	Resets    domain.PasswordResetRepository
	Mailer    Mailer
	Logger    zerolog.Logger
	JWTSecret string

	// AppURL is the public base URL used for login and reset links.
	AppURL    string
	TrialDays int
	Now       func() time.Time
}

// Session is the result of a successful church user sign-in.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
	Church    *domain.Church
}

// AdminSession is the result of a global admin sign-in.
type AdminSession struct {
	Token     string
	ExpiresAt time.Time
	Admin     *domain.GlobalAdmin
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// RegisterInput is the self-service sign-up form.
type RegisterInput struct {
	ChurchName string
	Email      string
	Password   string
	FirstName  string
	LastName   string
}

// Register creates a church on a trial with its account owner and signs the owner in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	churchName, err := domain.RequireText("church_name", in.ChurchName, 120)
	if err != nil {
		return nil, err
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
	trialDays := s.TrialDays
	if trialDays <= 0 {
		trialDays = DefaultTrialDays
	}
	reg := domain.Registration{
		ChurchName: churchName,
		Email:      email,
		FirstName:  first,
		LastName:   last,
		TrialEnds:  s.now().AddDate(0, 0, trialDays),
	}
	church, user, err := s.Churches.Register(ctx, reg, hash)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, fmt.Errorf("%w: email is already registered", domain.ErrDuplicate)
		}
		return nil, fmt.Errorf("register church: %w", err)
	}
	s.Logger.Info().Str("church_id", church.ID).Str("user_id", user.ID).Msg("church registered")
	s.sendWelcome(ctx, church, user)
	return s.issue(church, user)
}

// Login verifies credentials and records the sign-in with the caller's country.
func (s *Service) Login(ctx context.Context, email, password, country string) (*Session, error) {
	user, err := s.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			_ = CheckPassword(string(dummyHash), password)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrInvalidCredentials
	}
	church, err := s.Churches.GetByID(ctx, user.ChurchID)
	if err != nil {
		return nil, err
	}
	if church.Status == domain.ChurchStatusDeleted {
		return nil, domain.ErrInvalidCredentials
	}
	if err := s.Users.RecordLogin(ctx, user.ID, country); err != nil {
		s.Logger.Warn().Err(err).Str("user_id", user.ID).Msg("record login failed")
	}
	now := s.now()
	user.LastLoginAt = &now
	user.LastLoginCountry = country
	return s.issue(church, user)
}

// AdminLogin signs in a platform operator.
func (s *Service) AdminLogin(ctx context.Context, email, password string) (*AdminSession, error) {
	admin, err := s.Admins.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			_ = CheckPassword(string(dummyHash), password)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := CheckPassword(admin.PasswordHash, password); err != nil {
		return nil, err
	}
	claims := middleware.NewTokenClaims(admin.ID, "", domain.RoleGlobalAdmin, TokenTTL)
	token, err := middleware.SignJWT(s.JWTSecret, claims)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &AdminSession{Token: token, ExpiresAt: claims.ExpiresAt.Time, Admin: admin}, nil
}

// RequestPasswordReset queues a reset link. Unknown or inactive accounts are
// ignored so callers cannot probe which emails exist.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if !user.IsActive {
		return nil
	}
	token, hash, err := NewResetToken()
	if err != nil {
		return err
	}
	if err := s.Resets.Create(ctx, domain.PasswordReset{
		TokenHash: hash,
		UserID:    user.ID,
		ExpiresAt: s.now().Add(ResetTokenTTL),
	}); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	church, err := s.Churches.GetByID(ctx, user.ChurchID)
	if err != nil {
		return err
	}
	vars := notify.ChurchVars(church)
	vars["firstName"] = user.FirstName
	vars["resetLink"] = s.link("/reset-password", url.Values{"token": {token}})
	_, err = s.Mailer.Queue(ctx, &church.ID, domain.TemplatePasswordReset,
		notify.Recipient{Email: user.Email, Name: user.FullName()}, vars, &user.ID)
	return err
}

// ConfirmPasswordReset consumes a reset token and sets the new password.
func (s *Service) ConfirmPasswordReset(ctx context.Context, token, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Invalid("token", "is required")
	}
	userID, err := s.Resets.Consume(ctx, HashResetToken(token), s.now())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Invalid("token", "is invalid or expired")
		}
		return err
	}
	return s.Users.UpdatePassword(ctx, userID, hash)
}

// ChangePassword replaces a signed-in user's password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, churchID, userID, current, next string) error {
	user, err := s.Users.GetByID(ctx, churchID, userID)
	if err != nil {
		return err
	}
	if err := CheckPassword(user.PasswordHash, current); err != nil {
		return err
	}
	hash, err := HashPassword(next)
	if err != nil {
		return err
	}
	return s.Users.UpdatePassword(ctx, user.ID, hash)
}

func (s *Service) issue(church *domain.Church, user *domain.User) (*Session, error) {
	claims := middleware.NewTokenClaims(user.ID, church.ID, user.Role, TokenTTL)
	token, err := middleware.SignJWT(s.JWTSecret, claims)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Session{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: user, Church: church}, nil
}

func (s *Service) sendWelcome(ctx context.Context, church *domain.Church, user *domain.User) {
	vars := notify.ChurchVars(church)
	vars["firstName"] = user.FirstName
	vars["loginLink"] = s.link("/login", nil)
	if _, err := s.Mailer.Queue(ctx, &church.ID, domain.TemplateWelcome,
		notify.Recipient{Email: user.Email, Name: user.FullName()}, vars, &user.ID); err != nil {
		s.Logger.Error().Err(err).Str("user_id", user.ID).Msg("queue welcome email failed")
	}
}

func (s *Service) link(path string, q url.Values) string {
	u := strings.TrimRight(s.AppURL, "/") + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}
