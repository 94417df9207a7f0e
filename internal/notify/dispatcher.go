package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
	"github.com/jmspivey7/PlateSync-sub002/internal/metrics"
)

// Sender delivers one message with the given API key.
type Sender interface {
	Send(ctx context.Context, apiKey string, msg domain.OutboxMessage) error
}

// KeySource returns the current SendGrid API key; empty means log-only delivery.
type KeySource func(ctx context.Context) (string, error)

// Dispatcher drains the email outbox.
type Dispatcher struct {
	Outbox    domain.OutboxRepository
	Sender    Sender
	Key       KeySource
	Logger    zerolog.Logger
	BatchSize int
}

// RunOnce claims and delivers one batch of messages and returns how many were claimed.
func (d *Dispatcher) RunOnce(ctx context.Context) (int, error) {
	msgs, err := d.Outbox.Claim(ctx, d.BatchSize)
	if err != nil {
		return 0, err
	}
	if len(msgs) == 0 {
		return 0, nil
	}
	key := ""
	if d.Key != nil {
		if key, err = d.Key(ctx); err != nil {
			// Requeue; log-only delivery is only for an unconfigured key.
			d.Logger.Error().Err(err).Int("claimed", len(msgs)).Msg("load sendgrid key failed")
			for _, msg := range msgs {
				d.fail(ctx, d.messageLogger(msg), msg, fmt.Errorf("load sendgrid key: %w", err))
			}
			return len(msgs), nil
		}
	}
	for _, msg := range msgs {
		d.deliver(ctx, strings.TrimSpace(key), msg)
	}
	return len(msgs), nil
}

func (d *Dispatcher) messageLogger(msg domain.OutboxMessage) zerolog.Logger {
	return d.Logger.With().Str("outbox_id", msg.ID).Str("kind", string(msg.Kind)).Int("attempt", msg.Attempts).Logger()
}

func (d *Dispatcher) deliver(ctx context.Context, key string, msg domain.OutboxMessage) {
	log := d.messageLogger(msg)

	var sendErr error
	if key == "" {
		log.Info().Str("to", msg.Recipient).Str("subject", msg.Subject).Msg("sendgrid not configured; email logged only")
	} else {
		sendErr = d.Sender.Send(ctx, key, msg)
	}

	if sendErr == nil {
		if err := d.Outbox.MarkSent(ctx, msg.ID); err != nil {
			log.Error().Err(err).Msg("mark sent failed")
			return
		}
		metrics.RecordEmailDelivery(string(msg.Kind), "sent")
		return
	}
	d.fail(ctx, log, msg, sendErr)
}

func (d *Dispatcher) fail(ctx context.Context, log zerolog.Logger, msg domain.OutboxMessage, sendErr error) {
	permanent, err := d.Outbox.MarkFailed(ctx, msg.ID, sendErr.Error())
	if err != nil {
		log.Error().Err(err).Msg("mark failed failed")
		return
	}
	if permanent {
		metrics.RecordEmailDelivery(string(msg.Kind), "failed")
		log.Error().Err(sendErr).Msg("email delivery failed permanently")
		return
	}
	metrics.RecordEmailDelivery(string(msg.Kind), "retry")
	log.Warn().Err(sendErr).Msg("email delivery failed; will retry")
}

// Run polls until ctx is cancelled. A full batch is followed immediately by
// another claim.
func (d *Dispatcher) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	for {
		n, err := d.RunOnce(ctx)
		if err != nil && ctx.Err() == nil {
			d.Logger.Error().Err(err).Msg("outbox claim failed")
		}
		if err == nil && n > 0 && n >= d.BatchSize {
			continue
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}
