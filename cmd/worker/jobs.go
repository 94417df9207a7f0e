package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
	"github.com/jmspivey7/PlateSync-sub002/internal/metrics"
	"github.com/jmspivey7/PlateSync-sub002/internal/notify"
)

const (
	trialSweepSpec    = "@hourly"
	outboxReclaimSpec = "@every 5m"

	// Rows stuck in SENDING longer than this belong to a crashed worker.
	staleSendingAfter = 10 * time.Minute
)

type maintenance struct {
	subscriptions domain.SubscriptionRepository
	outbox        domain.OutboxRepository
	logger        zerolog.Logger
	now           func() time.Time
}

func (m *maintenance) register(ctx context.Context, c *cron.Cron) error {
	if _, err := c.AddFunc(trialSweepSpec, func() { m.run(ctx, "expire_trials", m.expireTrials) }); err != nil {
		return fmt.Errorf("schedule expire_trials: %w", err)
	}
	if _, err := c.AddFunc(outboxReclaimSpec, func() { m.run(ctx, "reclaim_outbox", m.reclaimOutbox) }); err != nil {
		return fmt.Errorf("schedule reclaim_outbox: %w", err)
	}
	return nil
}

func (m *maintenance) run(ctx context.Context, name string, fn func(context.Context) error) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	err := fn(ctx)
	metrics.RecordJobRun(name, time.Since(start), err == nil)
	if err != nil {
		m.logger.Error().Err(err).Str("job", name).Msg("worker: job failed")
	}
}

// expireTrials moves trials past their end date to EXPIRED.
func (m *maintenance) expireTrials(ctx context.Context) error {
	now := time.Now().UTC()
	if m.now != nil {
		now = m.now()
	}
	n, err := m.subscriptions.ExpireTrials(ctx, now)
	if err != nil {
		return err
	}
	if n > 0 {
		m.logger.Info().Int64("expired", n).Msg("worker: trials expired")
	}
	return nil
}

func (m *maintenance) reclaimOutbox(ctx context.Context) error {
	n, err := m.outbox.ReclaimStale(ctx, staleSendingAfter)
	if err != nil {
		return err
	}
	if n > 0 {
		m.logger.Warn().Int64("reclaimed", n).Msg("worker: stale outbox rows requeued")
	}
	return nil
}

type apiKeyStore interface {
	SendGridAPIKey(ctx context.Context) (string, error)
}

// keySource prefers the key an operator stored in the admin portal and falls
// back to SENDGRID_API_KEY.
func keySource(store apiKeyStore, fallback string, logger zerolog.Logger) notify.KeySource {
	fallback = strings.TrimSpace(fallback)
	return func(ctx context.Context) (string, error) {
		key, err := store.SendGridAPIKey(ctx)
		if err != nil {
			if fallback == "" {
				return "", err
			}
			logger.Warn().Err(err).Msg("worker: load sendgrid key from store failed, using SENDGRID_API_KEY")
			return fallback, nil
		}
		if key != "" {
			return key, nil
		}
		return fallback, nil
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	l zerolog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
