package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jmspivey7/PlateSync-sub002/internal/auth"
	"github.com/jmspivey7/PlateSync-sub002/internal/billing"
	"github.com/jmspivey7/PlateSync-sub002/internal/counts"
	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
	"github.com/jmspivey7/PlateSync-sub002/internal/infra/credentials"
	"github.com/jmspivey7/PlateSync-sub002/internal/middleware"
	"github.com/jmspivey7/PlateSync-sub002/internal/notify"
	"github.com/jmspivey7/PlateSync-sub002/internal/planningcenter"
	"github.com/jmspivey7/PlateSync-sub002/internal/storage"
)

const maxJSONBody = 1 << 20

// App carries the services every handler depends on.
type App struct {
	Logger zerolog.Logger

	Auth     *auth.Service
	Counts   *counts.Service
	Notify   *notify.Service
	Billing  *billing.Service
	Planning *planningcenter.Client

	Churches      domain.ChurchRepository
	Users         domain.UserRepository
	Members       domain.MemberRepository
	Services      domain.ServiceOptionRepository
	Recipients    domain.ReportRecipientRepository
	Batches       domain.BatchRepository
	Templates     domain.TemplateRepository
	Subscriptions domain.SubscriptionRepository

	Credentials *credentials.Store
	Files       *storage.FileStore

	// AppURL is the public base URL browser redirects return to.
	AppURL string

	// Ping reports database health; nil skips the check.
	Ping func(ctx context.Context) error
	Now  func() time.Time
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now().UTC()
	}
	return time.Now().UTC()
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	middleware.WriteError(w, code, errCode, message)
}

func (a *App) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return false
	}
	return true
}

// fail maps service errors onto the API error envelope.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error, msg string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		a.error(w, http.StatusBadRequest, "validation_failed", strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": "))
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "not found")
	case errors.Is(err, domain.ErrInvalidCredentials):
		a.error(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, http.StatusUnauthorized, "unauthorized", "authentication required")
	case errors.Is(err, domain.ErrForbidden):
		a.error(w, http.StatusForbidden, "forbidden", "insufficient role")
	case errors.Is(err, domain.ErrDuplicate):
		a.error(w, http.StatusConflict, "duplicate", "already exists")
	case errors.Is(err, domain.ErrChurchSuspended):
		a.error(w, http.StatusForbidden, "church_suspended", "this church account is suspended")
	case errors.Is(err, domain.ErrSubscriptionInactive):
		a.error(w, http.StatusPaymentRequired, "subscription_inactive", "an active subscription is required")
	case errors.Is(err, domain.ErrBatchFinalized):
		a.error(w, http.StatusConflict, "batch_finalized", err.Error())
	case errors.Is(err, domain.ErrBatchNotOpen):
		a.error(w, http.StatusConflict, "batch_not_open", err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		a.error(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, domain.ErrAttestationIncomplete):
		a.error(w, http.StatusConflict, "attestation_incomplete", err.Error())
	case errors.Is(err, domain.ErrAttestorsNotDistinct):
		a.error(w, http.StatusConflict, "attestors_not_distinct", err.Error())
	case errors.Is(err, domain.ErrEmptyBatch):
		a.error(w, http.StatusConflict, "empty_batch", err.Error())
	case errors.Is(err, domain.ErrConflict):
		a.error(w, http.StatusConflict, "conflict", "the record changed, reload and retry")
	case errors.Is(err, billing.ErrNotConfigured), errors.Is(err, planningcenter.ErrNotConfigured):
		a.error(w, http.StatusServiceUnavailable, "not_configured", err.Error())
	case errors.Is(err, planningcenter.ErrNotConnected):
		a.error(w, http.StatusConflict, "not_connected", err.Error())
	default:
		a.Logger.Error().Err(err).Str("path", r.URL.Path).Str("request_id", middleware.RequestIDFromContext(r.Context())).Msg(msg)
		a.error(w, http.StatusInternalServerError, "internal", msg)
	}
}

// pathID returns the UUID route parameter key. Malformed ids answer 404 and
// yield "".
func (a *App) pathID(w http.ResponseWriter, r *http.Request, key string) string {
	id, err := uuid.Parse(chi.URLParam(r, key))
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "not found")
		return ""
	}
	return id.String()
}

func (a *App) principal(r *http.Request) middleware.Principal {
	p, _ := middleware.PrincipalFromContext(r.Context())
	return p
}

func (a *App) actor(r *http.Request) counts.Actor {
	p := a.principal(r)
	return counts.Actor{UserID: p.UserID, ChurchID: p.ChurchID, Role: p.Role}
}

func (a *App) userActor(r *http.Request) auth.Actor {
	p := a.principal(r)
	return auth.Actor{UserID: p.UserID, ChurchID: p.ChurchID, Role: p.Role}
}

// ChurchAccess blocks suspended churches and lapsed subscriptions.
func (a *App) ChurchAccess(ctx context.Context, churchID string) error {
	if err := a.ChurchActive(ctx, churchID); err != nil {
		return err
	}
	sub, err := a.Subscriptions.Get(ctx, churchID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrSubscriptionInactive
		}
		return err
	}
	if !sub.Usable(a.now()) {
		return domain.ErrSubscriptionInactive
	}
	return nil
}

// CurrentUser loads the account behind a church token.
func (a *App) CurrentUser(ctx context.Context, churchID, userID string) (*domain.User, error) {
	return a.Users.GetByID(ctx, churchID, userID)
}

// ChurchActive only checks the tenant status. Billing routes use it so a
// lapsed church can still pay.
func (a *App) ChurchActive(ctx context.Context, churchID string) error {
	church, err := a.Churches.GetByID(ctx, churchID)
	if err != nil {
		return err
	}
	if church.Status != domain.ChurchStatusActive {
		return domain.ErrChurchSuspended
	}
	return nil
}

func queryInt(r *http.Request, key string, def, max int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	if max > 0 && n > max {
		return max
	}
	return n
}
