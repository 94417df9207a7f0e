package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
)

// ChurchAccess reports whether a church may use the application right now. It
// returns domain.ErrChurchSuspended or domain.ErrSubscriptionInactive to block.
type ChurchAccess func(ctx context.Context, churchID string) error

// RequireUsableChurch blocks suspended churches with 403 and lapsed
// subscriptions with 402. Global admins pass through.
func RequireUsableChurch(check ChurchAccess) func(http.Handler) http.Handler {
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
			switch err := check(r.Context(), p.ChurchID); {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, domain.ErrChurchSuspended):
				WriteError(w, http.StatusForbidden, "church_suspended", "this church account is suspended")
			case errors.Is(err, domain.ErrSubscriptionInactive):
				WriteError(w, http.StatusPaymentRequired, "subscription_inactive", "an active subscription is required")
			case errors.Is(err, domain.ErrNotFound):
				WriteError(w, http.StatusUnauthorized, "unauthorized", "church not found")
			default:
				WriteError(w, http.StatusInternalServerError, "internal", "internal error")
			}
		})
	}
}
