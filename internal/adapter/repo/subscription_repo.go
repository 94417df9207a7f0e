package repo

import (
	"context"
	"time"

	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
	"github.com/jmspivey7/PlateSync-sub002/internal/infra"
	"github.com/jmspivey7/PlateSync-sub002/internal/sqlinline"
)

// SubscriptionRepositoryPG implements domain.SubscriptionRepository.
type SubscriptionRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewSubscriptionRepository(sql infra.SQLExecutor) *SubscriptionRepositoryPG {
	return &SubscriptionRepositoryPG{sql: sql}
}

func (r *SubscriptionRepositoryPG) Get(ctx context.Context, churchID string) (*domain.Subscription, error) {
	return scanSubscription(r.sql.QueryRow(ctx, sqlinline.QSelectSubscription, churchID))
}

func (r *SubscriptionRepositoryPG) GetByStripeCustomer(ctx context.Context, customerID string) (*domain.Subscription, error) {
	return scanSubscription(r.sql.QueryRow(ctx, sqlinline.QSelectSubscriptionByCustomer, customerID))
}

// Apply merges the non-nil fields of change into the stored subscription.
func (r *SubscriptionRepositoryPG) Apply(ctx context.Context, change domain.SubscriptionChange) error {
	var plan, status *string
	if change.Plan != nil {
		p := string(*change.Plan)
		plan = &p
	}
	if change.Status != nil {
		s := string(*change.Status)
		status = &s
	}
	_, err := r.sql.Exec(ctx, sqlinline.QApplySubscriptionChange,
		change.ChurchID, plan, status, change.TrialEndsAt, change.CurrentPeriodEnd,
		change.StripeCustomerID, change.StripeSubscriptionID)
	return writeErr(err)
}

// ExpireTrials moves every trial that ended by now to EXPIRED.
func (r *SubscriptionRepositoryPG) ExpireTrials(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.sql.Exec(ctx, sqlinline.QExpireTrials, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
