package domain

import (
	"math"
	"time"
)

// SubscriptionPlan enumerates billing plans.
type SubscriptionPlan string

const (
	PlanTrial   SubscriptionPlan = "TRIAL"
	PlanMonthly SubscriptionPlan = "MONTHLY"
	PlanAnnual  SubscriptionPlan = "ANNUAL"
)

// Valid reports whether p is a known plan.
func (p SubscriptionPlan) Valid() bool {
	switch p {
	case PlanTrial, PlanMonthly, PlanAnnual:
		return true
	}
	return false
}

// SubscriptionStatus enumerates billing states.
type SubscriptionStatus string

const (
	SubscriptionTrial    SubscriptionStatus = "TRIAL"
	SubscriptionActive   SubscriptionStatus = "ACTIVE"
	SubscriptionPastDue  SubscriptionStatus = "PAST_DUE"
	SubscriptionCanceled SubscriptionStatus = "CANCELED"
	SubscriptionExpired  SubscriptionStatus = "EXPIRED"
)

// Valid reports whether s is a known status.
func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubscriptionTrial, SubscriptionActive, SubscriptionPastDue, SubscriptionCanceled, SubscriptionExpired:
		return true
	}
	return false
}

// Subscription is the billing state of one church.
type Subscription struct {
	ChurchID             string
	Plan                 SubscriptionPlan
	Status               SubscriptionStatus
	TrialEndsAt          *time.Time
	CurrentPeriodEnd     *time.Time
	StripeCustomerID     string
	StripeSubscriptionID string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Usable reports whether the church may use the application at now. A past-due
// subscription stays usable while Stripe retries the payment.
func (s Subscription) Usable(now time.Time) bool {
	switch s.Status {
	case SubscriptionActive, SubscriptionPastDue:
		return true
	case SubscriptionTrial:
		return s.TrialEndsAt != nil && now.Before(*s.TrialEndsAt)
	}
	return false
}

// TrialDaysLeft returns the whole days remaining in the trial, rounded up, or 0.
func (s Subscription) TrialDaysLeft(now time.Time) int {
	if s.Status != SubscriptionTrial || s.TrialEndsAt == nil || !now.Before(*s.TrialEndsAt) {
		return 0
	}
	return int(math.Ceil(s.TrialEndsAt.Sub(now).Hours() / 24))
}

// SubscriptionChange is an externally driven update, e.g. from a Stripe webhook
// or an operator. Nil fields are left unchanged.
type SubscriptionChange struct {
	ChurchID             string
	Plan                 *SubscriptionPlan
	Status               *SubscriptionStatus
	TrialEndsAt          *time.Time
	CurrentPeriodEnd     *time.Time
	StripeCustomerID     *string
	StripeSubscriptionID *string
}
