package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/jmspivey7/PlateSync-sub002/internal/billing"
	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
)

const maxWebhookBody = 64 << 10

type checkoutRequest struct {
	Plan string `json:"plan"`
}

func (a *App) SubscriptionGet(w http.ResponseWriter, r *http.Request) {
	sub, err := a.Subscriptions.Get(r.Context(), a.principal(r).ChurchID)
	if err != nil {
		a.fail(w, r, err, "failed to load subscription")
		return
	}
	a.json(w, http.StatusOK, toSubscriptionDTO(sub, a.now()))
}

// BillingCheckout starts a Stripe Checkout session and returns its URL.
func (a *App) BillingCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if !a.decode(w, r, &req) {
		return
	}
	plan := domain.SubscriptionPlan(strings.ToUpper(strings.TrimSpace(req.Plan)))
	if plan != domain.PlanMonthly && plan != domain.PlanAnnual {
		a.error(w, http.StatusBadRequest, "bad_request", "plan must be MONTHLY or ANNUAL")
		return
	}
	p := a.principal(r)
	church, err := a.Churches.GetByID(r.Context(), p.ChurchID)
	if err != nil {
		a.fail(w, r, err, "failed to load church")
		return
	}
	user, err := a.Auth.Users.GetByID(r.Context(), p.ChurchID, p.UserID)
	if err != nil {
		a.fail(w, r, err, "failed to load user")
		return
	}
	checkoutURL, err := a.Billing.Checkout(r.Context(), church, user.Email, plan)
	if err != nil {
		a.fail(w, r, err, "failed to start checkout")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"url": checkoutURL})
}

// StripeWebhook is called by Stripe; authenticity comes from the signature header.
func (a *App) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "failed to read body")
		return
	}
	if err := a.Billing.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		if errors.Is(err, billing.ErrInvalidSignature) {
			a.error(w, http.StatusBadRequest, "invalid_signature", "invalid webhook signature")
			return
		}
		a.fail(w, r, err, "failed to process webhook")
		return
	}
	a.json(w, http.StatusOK, map[string]bool{"received": true})
}
