package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
)

const tokenIssuer = "platesync"

// TokenClaims is the JWT payload. ChurchID is empty for global admins.
type TokenClaims struct {
	ChurchID string          `json:"church_id,omitempty"`
	Role     domain.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Principal is the authenticated caller attached to the request context.
type Principal struct {
	UserID   string
	ChurchID string
	Role     domain.UserRole
}

// IsGlobalAdmin reports whether the caller is a platform operator.
func (p Principal) IsGlobalAdmin() bool {
	return p.Role == domain.RoleGlobalAdmin
}

type principalKey struct{}

// NewTokenClaims builds claims for subject valid for ttl from now.
func NewTokenClaims(subject, churchID string, role domain.UserRole, ttl time.Duration) TokenClaims {
	now := time.Now()
	return TokenClaims{
		ChurchID: churchID,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}

// SignJWT signs claims with HS256.
func SignJWT(secret string, claims TokenClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// VerifyJWT parses token and checks signature, algorithm, issuer and expiry.
func VerifyJWT(secret, token string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}
	if claims.Role != domain.RoleGlobalAdmin && (claims.ChurchID == "" || !claims.Role.Valid()) {
		return nil, errors.New("invalid token scope")
	}
	return claims, nil
}

// AuthJWT requires a valid bearer token and stores the Principal in the context.
func AuthJWT(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				WriteError(w, http.StatusUnauthorized, "unauthorized", "missing authorization")
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid authorization")
				return
			}
			claims, err := VerifyJWT(secret, strings.TrimSpace(parts[1]))
			if err != nil {
				WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
				return
			}
			ctx := ContextWithPrincipal(r.Context(), Principal{
				UserID:   claims.Subject,
				ChurchID: claims.ChurchID,
				Role:     claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserLookup loads the stored account behind a church principal.
type UserLookup func(ctx context.Context, churchID, userID string) (*domain.User, error)

// CurrentUser re-reads the caller's account on every request. Deactivated or
// removed users get 401, and the stored role replaces the role in the token.
// Global admins pass through.
func CurrentUser(lookup UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				WriteError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
				return
			}
			if p.IsGlobalAdmin() {
				next.ServeHTTP(w, r)
				return
			}
			user, err := lookup(r.Context(), p.ChurchID, p.UserID)
			switch {
			case errors.Is(err, domain.ErrNotFound):
				WriteError(w, http.StatusUnauthorized, "unauthorized", "account not found")
				return
			case err != nil:
				WriteError(w, http.StatusInternalServerError, "internal", "internal error")
				return
			case !user.IsActive:
				WriteError(w, http.StatusUnauthorized, "account_inactive", "this account has been deactivated")
				return
			}
			p.Role = user.Role
			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), p)))
		})
	}
}

// RequireRole rejects church users below min. Global admins are rejected too;
// they use the admin routes.
func RequireRole(min domain.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				WriteError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
				return
			}
			if !p.Role.AtLeast(min) {
				WriteError(w, http.StatusForbidden, "forbidden", "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireGlobalAdmin only admits platform operators.
func RequireGlobalAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		if !p.IsGlobalAdmin() {
			WriteError(w, http.StatusForbidden, "forbidden", "global admin only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	if strings.TrimSpace(p.UserID) == "" {
		return ctx
	}
	return context.WithValue(ctx, principalKey{}, p)
}
