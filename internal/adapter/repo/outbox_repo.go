package repo

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
	"github.com/jmspivey7/PlateSync-sub002/internal/infra"
	"github.com/jmspivey7/PlateSync-sub002/internal/sqlinline"
)

// OutboxRepositoryPG implements domain.OutboxRepository on the email_outbox table.
type OutboxRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewOutboxRepository(sql infra.SQLExecutor) *OutboxRepositoryPG {
	return &OutboxRepositoryPG{sql: sql}
}

// Enqueue stores a rendered message for the dispatcher.
func (r *OutboxRepositoryPG) Enqueue(ctx context.Context, msg *domain.OutboxMessage) error {
	row := r.sql.QueryRow(ctx, sqlinline.QEnqueueEmail,
		msg.ChurchID, string(msg.Kind), msg.Recipient, msg.RecipientName,
		msg.Subject, msg.BodyHTML, msg.BodyText, msg.RelatedID)
	return row.Scan(&msg.ID, &msg.Status, &msg.CreatedAt)
}

// Claim locks up to limit ready messages and marks them SENDING.
func (r *OutboxRepositoryPG) Claim(ctx context.Context, limit int) ([]domain.OutboxMessage, error) {
	if limit <= 0 {
		limit = 1
	}
	rows, err := r.sql.Query(ctx, sqlinline.QClaimEmails, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OutboxMessage
	for rows.Next() {
		var m domain.OutboxMessage
		if err := rows.Scan(
			&m.ID, &m.ChurchID, &m.Kind, &m.Recipient, &m.RecipientName, &m.Subject,
			&m.BodyHTML, &m.BodyText, &m.Status, &m.Attempts, &m.LastError, &m.RelatedID, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// MarkSent records delivery and mirrors it onto the related donation.
func (r *OutboxRepositoryPG) MarkSent(ctx context.Context, id string) error {
	_, err := r.sql.Exec(ctx, sqlinline.QMarkEmailSent, id)
	return err
}

// MarkFailed stores the failure and either requeues the message with backoff
// or, once attempts are exhausted, marks it FAILED. It reports whether the
// failure is permanent.
func (r *OutboxRepositoryPG) MarkFailed(ctx context.Context, id, reason string) (bool, error) {
	reason = truncateUTF8(strings.ToValidUTF8(reason, "\uFFFD"), maxFailureReason)
	var permanent bool
	if err := r.sql.QueryRow(ctx, sqlinline.QMarkEmailFailed, id, reason, domain.MaxDeliveryAttempts).Scan(&permanent); err != nil {
		return false, notFound(err)
	}
	return permanent, nil
}

// ReclaimStale requeues messages stuck in SENDING, e.g. after a worker crash.
func (r *OutboxRepositoryPG) ReclaimStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	tag, err := r.sql.Exec(ctx, sqlinline.QReclaimStaleEmails, int(olderThan/time.Second))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const maxFailureReason = 1000

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
