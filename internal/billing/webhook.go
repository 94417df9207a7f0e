package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v79/webhook"
	"github.com/tidwall/gjson"

	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
	"github.com/jmspivey7/PlateSync-sub002/internal/metrics"
)

// ErrInvalidSignature is returned for payloads that fail Stripe verification.
var ErrInvalidSignature = errors.New("billing: invalid webhook signature")

const (
	eventCheckoutCompleted   = "checkout.session.completed"
	eventSubscriptionUpdated = "customer.subscription.updated"
	eventSubscriptionDeleted = "customer.subscription.deleted"
	eventPaymentFailed       = "invoice.payment_failed"
)

// HandleWebhook verifies a Stripe event and applies it to the church's
// subscription. Unhandled event types are acknowledged and ignored.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.webhookSecret == "" {
		return ErrNotConfigured
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		metrics.RecordWebhookEvent("unknown", "rejected")
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	eventType := string(event.Type)

	change, err := s.changeFor(ctx, eventType, gjson.ParseBytes(event.Data.Raw))
	if err != nil {
		metrics.RecordWebhookEvent(eventType, "error")
		return err
	}
	if change == nil {
		metrics.RecordWebhookEvent(eventType, "ignored")
		return nil
	}
	if err := s.Subscriptions.Apply(ctx, *change); err != nil {
		metrics.RecordWebhookEvent(eventType, "error")
		return fmt.Errorf("apply %s: %w", eventType, err)
	}
	metrics.RecordWebhookEvent(eventType, "applied")
	s.Logger.Info().Str("event_id", event.ID).Str("type", eventType).Str("church_id", change.ChurchID).Msg("subscription updated from stripe")
	return nil
}

// changeFor translates an event object into a subscription change. It returns
// nil for events that do not concern a known church.
func (s *Service) changeFor(ctx context.Context, eventType string, obj gjson.Result) (*domain.SubscriptionChange, error) {
	switch eventType {
	case eventCheckoutCompleted:
		churchID := obj.Get("client_reference_id").String()
		if churchID == "" {
			churchID = obj.Get("metadata.church_id").String()
		}
		if churchID == "" {
			return nil, nil
		}
		change := &domain.SubscriptionChange{
			ChurchID:             churchID,
			Status:               statusPtr(domain.SubscriptionActive),
			StripeCustomerID:     nonEmpty(obj.Get("customer").String()),
			StripeSubscriptionID: nonEmpty(obj.Get("subscription").String()),
		}
		if plan := domain.SubscriptionPlan(obj.Get("metadata.plan").String()); plan == domain.PlanMonthly || plan == domain.PlanAnnual {
			change.Plan = &plan
		}
		return change, nil

	case eventSubscriptionUpdated, eventSubscriptionDeleted:
		churchID, err := s.resolveChurch(ctx, obj.Get("metadata.church_id").String(), obj.Get("customer").String())
		if err != nil || churchID == "" {
			return nil, err
		}
		change := &domain.SubscriptionChange{
			ChurchID:             churchID,
			StripeCustomerID:     nonEmpty(obj.Get("customer").String()),
			StripeSubscriptionID: nonEmpty(obj.Get("id").String()),
		}
		if eventType == eventSubscriptionDeleted {
			change.Status = statusPtr(domain.SubscriptionCanceled)
			return change, nil
		}
		if status, ok := mapStripeStatus(obj.Get("status").String()); ok {
			change.Status = &status
		}
		if end := obj.Get("current_period_end").Int(); end > 0 {
			t := time.Unix(end, 0).UTC()
			change.CurrentPeriodEnd = &t
		}
		if plan, ok := s.planForPrice(obj.Get("items.data.0.price.id").String()); ok {
			change.Plan = &plan
		}
		return change, nil

	case eventPaymentFailed:
		churchID, err := s.resolveChurch(ctx, obj.Get("subscription_details.metadata.church_id").String(), obj.Get("customer").String())
		if err != nil || churchID == "" {
			return nil, err
		}
		return &domain.SubscriptionChange{ChurchID: churchID, Status: statusPtr(domain.SubscriptionPastDue)}, nil
	}
	return nil, nil
}

func (s *Service) resolveChurch(ctx context.Context, churchID, customerID string) (string, error) {
	if churchID != "" {
		return churchID, nil
	}
	if customerID == "" {
		return "", nil
	}
	sub, err := s.Subscriptions.GetByStripeCustomer(ctx, customerID)
	if errors.Is(err, domain.ErrNotFound) {
		s.Logger.Warn().Str("customer", customerID).Msg("stripe event for unknown customer")
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return sub.ChurchID, nil
}

// mapStripeStatus folds Stripe subscription states onto ours.
func mapStripeStatus(status string) (domain.SubscriptionStatus, bool) {
	switch status {
	case "active", "trialing":
		return domain.SubscriptionActive, true
	case "past_due", "unpaid", "incomplete":
		return domain.SubscriptionPastDue, true
	case "canceled", "incomplete_expired":
		return domain.SubscriptionCanceled, true
	}
	return "", false
}

func statusPtr(s domain.SubscriptionStatus) *domain.SubscriptionStatus { return &s }

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
