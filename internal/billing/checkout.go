// Package billing connects church subscriptions to Stripe Checkout and
// Stripe webhooks.
package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"

	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
)

// ErrNotConfigured is returned when Stripe keys or prices are missing.
var ErrNotConfigured = errors.New("billing: stripe is not configured")

// SessionCreator creates a Stripe Checkout Session.
type SessionCreator func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)

// Config holds the Stripe account settings.
type Config struct {
	SecretKey     string
	WebhookSecret string
	PriceMonthly  string
	PriceAnnual   string

	// AppURL receives the customer after checkout.
	AppURL string
}

// Service starts checkouts and applies Stripe subscription events.
type Service struct {
	Subscriptions domain.SubscriptionRepository
	Logger        zerolog.Logger

	webhookSecret string
	appURL        string
	prices        map[domain.SubscriptionPlan]string
	createSession SessionCreator
}

// NewService builds a Service backed by the Stripe API client. Checkout is
// disabled when cfg.SecretKey is empty.
func NewService(cfg Config, subs domain.SubscriptionRepository, logger zerolog.Logger) *Service {
	var create SessionCreator
	if strings.TrimSpace(cfg.SecretKey) != "" {
		sc := client.New(cfg.SecretKey, nil)
		create = sc.CheckoutSessions.New
	}
	return newService(cfg, subs, logger, create)
}

func newService(cfg Config, subs domain.SubscriptionRepository, logger zerolog.Logger, create SessionCreator) *Service {
	prices := map[domain.SubscriptionPlan]string{}
	if p := strings.TrimSpace(cfg.PriceMonthly); p != "" {
		prices[domain.PlanMonthly] = p
	}
	if p := strings.TrimSpace(cfg.PriceAnnual); p != "" {
		prices[domain.PlanAnnual] = p
	}
	return &Service{
		Subscriptions: subs,
		Logger:        logger,
		webhookSecret: strings.TrimSpace(cfg.WebhookSecret),
		appURL:        strings.TrimRight(cfg.AppURL, "/"),
		prices:        prices,
		createSession: create,
	}
}

// planForPrice maps a Stripe price id back to the plan it sells.
func (s *Service) planForPrice(priceID string) (domain.SubscriptionPlan, bool) {
	for plan, id := range s.prices {
		if id == priceID {
			return plan, true
		}
	}
	return "", false
}

// Checkout creates a subscription Checkout Session for the church and returns
// its hosted URL.
func (s *Service) Checkout(ctx context.Context, church *domain.Church, email string, plan domain.SubscriptionPlan) (string, error) {
	if plan != domain.PlanMonthly && plan != domain.PlanAnnual {
		return "", domain.Invalid("plan", "must be MONTHLY or ANNUAL")
	}
	price, ok := s.prices[plan]
	if !ok || s.createSession == nil {
		return "", ErrNotConfigured
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		ClientReferenceID: stripe.String(church.ID),
		SuccessURL:        stripe.String(s.appURL + "/settings/billing?checkout=success"),
		CancelURL:         stripe.String(s.appURL + "/settings/billing?checkout=canceled"),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(price), Quantity: stripe.Int64(1)},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{"church_id": church.ID, "plan": string(plan)},
		},
	}
	params.Context = ctx
	params.AddMetadata("church_id", church.ID)
	params.AddMetadata("plan", string(plan))

	current, err := s.Subscriptions.Get(ctx, church.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}
	if current != nil && current.StripeCustomerID != "" {
		params.Customer = stripe.String(current.StripeCustomerID)
	} else if email != "" {
		params.CustomerEmail = stripe.String(email)
	}

	sess, err := s.createSession(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	s.Logger.Info().Str("church_id", church.ID).Str("plan", string(plan)).Str("session_id", sess.ID).Msg("checkout session created")
	return sess.URL, nil
}
