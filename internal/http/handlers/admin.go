package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
)

type churchStatusRequest struct {
	Status string `json:"status"`
}

type subscriptionOverrideRequest struct {
	Plan             *string    `json:"plan"`
	Status           *string    `json:"status"`
	TrialEndsAt      *time.Time `json:"trial_ends_at"`
	CurrentPeriodEnd *time.Time `json:"current_period_end"`
}

type sendGridKeyRequest struct {
	APIKey string `json:"api_key"`
}

type churchSummaryDTO struct {
	churchDTO
	Subscription        subscriptionDTO `json:"subscription"`
	UserCount           int             `json:"user_count"`
	FinalizedBatches    int             `json:"finalized_batches"`
	LastFinalizedAt     *time.Time      `json:"last_finalized_at,omitempty"`
	TotalFinalizedCents int64           `json:"total_finalized_cents"`
}

func (a *App) AdminChurchesList(w http.ResponseWriter, r *http.Request) {
	summaries, err := a.Churches.ListSummaries(r.Context(),
		strings.TrimSpace(r.URL.Query().Get("q")),
		queryInt(r, "limit", 50, 200),
		queryInt(r, "offset", 0, 0))
	if err != nil {
		a.fail(w, r, err, "failed to load churches")
		return
	}
	now := a.now()
	items := make([]churchSummaryDTO, 0, len(summaries))
	for i := range summaries {
		s := &summaries[i]
		items = append(items, churchSummaryDTO{
			churchDTO:           toChurchDTO(&s.Church, a.Files),
			Subscription:        toSubscriptionDTO(&s.Subscription, now),
			UserCount:           s.UserCount,
			FinalizedBatches:    s.FinalizedBatches,
			LastFinalizedAt:     s.LastFinalizedAt,
			TotalFinalizedCents: s.TotalFinalizedCents,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// AdminChurchGet returns one church with its users, subscription and recent counts.
func (a *App) AdminChurchGet(w http.ResponseWriter, r *http.Request) {
	id := a.pathID(w, r, "id")
	if id == "" {
		return
	}
	church, err := a.Churches.GetByID(r.Context(), id)
	if err != nil {
		a.fail(w, r, err, "failed to load church")
		return
	}
	resp := map[string]any{"church": toChurchDTO(church, a.Files)}
	if sub, err := a.Subscriptions.Get(r.Context(), id); err == nil {
		resp["subscription"] = toSubscriptionDTO(sub, a.now())
	}
	users, err := a.Auth.Users.ListByChurch(r.Context(), id)
	if err != nil {
		a.fail(w, r, err, "failed to load users")
		return
	}
	userItems := make([]userDTO, 0, len(users))
	for i := range users {
		userItems = append(userItems, toUserDTO(&users[i]))
	}
	resp["users"] = userItems
	batches, err := a.Batches.List(r.Context(), id, domain.BatchFilter{Limit: 10})
	if err != nil {
		a.fail(w, r, err, "failed to load batches")
		return
	}
	resp["recent_batches"] = toBatchDTOs(batches)
	a.json(w, http.StatusOK, resp)
}

func (a *App) AdminChurchSetStatus(w http.ResponseWriter, r *http.Request) {
	var req churchStatusRequest
	if !a.decode(w, r, &req) {
		return
	}
	status := domain.ChurchStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if !status.Valid() {
		a.error(w, http.StatusBadRequest, "bad_request", "status must be ACTIVE, SUSPENDED or DELETED")
		return
	}
	id := a.pathID(w, r, "id")
	if id == "" {
		return
	}
	if err := a.Churches.SetStatus(r.Context(), id, status); err != nil {
		a.fail(w, r, err, "failed to update church status")
		return
	}
	a.Logger.Info().Str("church_id", id).Str("status", string(status)).Str("admin_id", a.principal(r).UserID).Msg("church status changed")
	a.json(w, http.StatusOK, map[string]string{"id": id, "status": string(status)})
}

// AdminSubscriptionOverride lets operators grant time or fix billing state by hand.
func (a *App) AdminSubscriptionOverride(w http.ResponseWriter, r *http.Request) {
	var req subscriptionOverrideRequest
	if !a.decode(w, r, &req) {
		return
	}
	id := a.pathID(w, r, "id")
	if id == "" {
		return
	}
	change := domain.SubscriptionChange{
		ChurchID:         id,
		TrialEndsAt:      req.TrialEndsAt,
		CurrentPeriodEnd: req.CurrentPeriodEnd,
	}
	if req.Plan != nil {
		plan := domain.SubscriptionPlan(strings.ToUpper(strings.TrimSpace(*req.Plan)))
		if !plan.Valid() {
			a.error(w, http.StatusBadRequest, "bad_request", "unknown plan")
			return
		}
		change.Plan = &plan
	}
	if req.Status != nil {
		status := domain.SubscriptionStatus(strings.ToUpper(strings.TrimSpace(*req.Status)))
		if !status.Valid() {
			a.error(w, http.StatusBadRequest, "bad_request", "unknown subscription status")
			return
		}
		change.Status = &status
	}
	if err := a.Subscriptions.Apply(r.Context(), change); err != nil {
		a.fail(w, r, err, "failed to update subscription")
		return
	}
	sub, err := a.Subscriptions.Get(r.Context(), id)
	if err != nil {
		a.fail(w, r, err, "failed to load subscription")
		return
	}
	a.Logger.Info().Str("church_id", id).Str("admin_id", a.principal(r).UserID).Msg("subscription overridden")
	a.json(w, http.StatusOK, toSubscriptionDTO(sub, a.now()))
}

func (a *App) AdminSendGridKeyGet(w http.ResponseWriter, r *http.Request) {
	key, err := a.Credentials.SendGridAPIKey(r.Context())
	if err != nil {
		a.fail(w, r, err, "failed to load sendgrid key")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"configured": key != "",
		"hint":       maskSecret(key),
	})
}

func (a *App) AdminSendGridKeySet(w http.ResponseWriter, r *http.Request) {
	var req sendGridKeyRequest
	if !a.decode(w, r, &req) {
		return
	}
	key := strings.TrimSpace(req.APIKey)
	if key == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "api_key required")
		return
	}
	if err := a.Credentials.SetSendGridAPIKey(r.Context(), key); err != nil {
		a.fail(w, r, err, "failed to save sendgrid key")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"configured": true, "hint": maskSecret(key)})
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}
