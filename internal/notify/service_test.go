package notify

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
)

type memTemplates struct {
	items map[string]domain.EmailTemplate
	err   error
}

func templateKey(churchID *string, kind domain.TemplateType) string {
	scope := "system"
	if churchID != nil {
		scope = *churchID
	}
	return scope + "/" + string(kind)
}

func (m *memTemplates) Get(_ context.Context, churchID *string, kind domain.TemplateType) (*domain.EmailTemplate, error) {
	if m.err != nil {
		return nil, m.err
	}
	tpl, ok := m.items[templateKey(churchID, kind)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &tpl, nil
}

func (m *memTemplates) List(context.Context, *string) ([]domain.EmailTemplate, error) { return nil, nil }

func (m *memTemplates) Upsert(_ context.Context, tpl *domain.EmailTemplate) error {
	m.items[templateKey(tpl.ChurchID, tpl.Type)] = *tpl
	return nil
}

func (m *memTemplates) Delete(context.Context, string, domain.TemplateType) error { return nil }

type memOutbox struct {
	queued []domain.OutboxMessage
	claim  []domain.OutboxMessage
	sent   []string
	failed map[string]string

	// attempts at or above this are reported permanent
	permanentAt int
}

func (m *memOutbox) Enqueue(_ context.Context, msg *domain.OutboxMessage) error {
	msg.ID = "msg-" + string(rune('a'+len(m.queued)))
	msg.Status = domain.OutboxQueued
	m.queued = append(m.queued, *msg)
	return nil
}

func (m *memOutbox) Claim(_ context.Context, limit int) ([]domain.OutboxMessage, error) {
	out := m.claim
	if len(out) > limit {
		out = out[:limit]
	}
	m.claim = m.claim[len(out):]
	return out, nil
}

func (m *memOutbox) MarkSent(_ context.Context, id string) error {
	m.sent = append(m.sent, id)
	return nil
}

func (m *memOutbox) MarkFailed(_ context.Context, id, reason string) (bool, error) {
	if m.failed == nil {
		m.failed = map[string]string{}
	}
	m.failed[id] = reason
	for _, msg := range m.queued {
		if msg.ID == id {
			return msg.Attempts >= m.permanentAt, nil
		}
	}
	return false, nil
}

func (m *memOutbox) ReclaimStale(context.Context, time.Duration) (int64, error) { return 0, nil }

func newTestService(tpls *memTemplates, outbox *memOutbox) *Service {
	return NewService(tpls, outbox, zerolog.New(io.Discard))
}

func TestResolveFallbackOrder(t *testing.T) {
	church := "c-1"
	tpls := &memTemplates{items: map[string]domain.EmailTemplate{}}
	svc := newTestService(tpls, &memOutbox{})
	ctx := context.Background()

	got, err := svc.Resolve(ctx, &church, domain.TemplateCountReport)
	require.NoError(t, err)
	def, _ := Default(domain.TemplateCountReport)
	assert.Equal(t, def.Subject, got.Subject, "built-in default when nothing stored")

	tpls.items[templateKey(nil, domain.TemplateCountReport)] = domain.EmailTemplate{Type: domain.TemplateCountReport, Subject: "system"}
	got, err = svc.Resolve(ctx, &church, domain.TemplateCountReport)
	require.NoError(t, err)
	assert.Equal(t, "system", got.Subject)

	tpls.items[templateKey(&church, domain.TemplateCountReport)] = domain.EmailTemplate{Type: domain.TemplateCountReport, Subject: "church"}
	got, err = svc.Resolve(ctx, &church, domain.TemplateCountReport)
	require.NoError(t, err)
	assert.Equal(t, "church", got.Subject)

	other := "c-2"
	got, err = svc.Resolve(ctx, &other, domain.TemplateCountReport)
	require.NoError(t, err)
	assert.Equal(t, "system", got.Subject, "other churches do not see the override")
}

func TestResolveIgnoresChurchOverrideForAccountEmails(t *testing.T) {
	church := "c-1"
	tpls := &memTemplates{items: map[string]domain.EmailTemplate{
		templateKey(&church, domain.TemplatePasswordReset): {Subject: "church"},
	}}
	svc := newTestService(tpls, &memOutbox{})

	got, err := svc.Resolve(context.Background(), &church, domain.TemplatePasswordReset)
	require.NoError(t, err)
	def, _ := Default(domain.TemplatePasswordReset)
	assert.Equal(t, def.Subject, got.Subject)
}

func TestResolvePropagatesStoreErrors(t *testing.T) {
	svc := newTestService(&memTemplates{err: errors.New("db down")}, &memOutbox{})
	_, err := svc.Resolve(context.Background(), nil, domain.TemplateWelcome)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestQueueRendersAndEnqueues(t *testing.T) {
	outbox := &memOutbox{}
	svc := newTestService(&memTemplates{items: map[string]domain.EmailTemplate{}}, outbox)
	church := "c-1"
	related := "d-1"

	msg, err := svc.Queue(context.Background(), &church, domain.TemplateDonationConfirmation,
		Recipient{Email: " jane@example.com ", Name: "Jane Doe"},
		Vars{"donorName": "Jane <Doe>", "churchName": "Grace", "amount": "$10.00"}, &related)
	require.NoError(t, err)
	require.Len(t, outbox.queued, 1)
	assert.Equal(t, "jane@example.com", msg.Recipient)
	assert.Equal(t, "Thank you for your gift to Grace", msg.Subject)
	assert.Contains(t, msg.BodyHTML, "Jane &lt;Doe&gt;")
	assert.Contains(t, msg.BodyText, "Jane <Doe>")
	assert.Equal(t, &related, msg.RelatedID)
}

func TestQueueRequiresRecipient(t *testing.T) {
	svc := newTestService(&memTemplates{items: map[string]domain.EmailTemplate{}}, &memOutbox{})
	_, err := svc.Queue(context.Background(), nil, domain.TemplateWelcome, Recipient{}, nil, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestValidateTemplate(t *testing.T) {
	tpl := &domain.EmailTemplate{Type: domain.TemplateCountReport, Subject: "  Report {{batchName}} ", BodyHTML: "<p>{{totalAmount}}</p>"}
	require.NoError(t, ValidateTemplate(tpl))
	assert.Equal(t, "Report {{batchName}}", tpl.Subject)

	bad := &domain.EmailTemplate{Type: domain.TemplateCountReport, Subject: "x", BodyHTML: "{{secret}}"}
	assert.ErrorIs(t, ValidateTemplate(bad), domain.ErrValidation)

	empty := &domain.EmailTemplate{Type: domain.TemplateCountReport, Subject: "x"}
	assert.ErrorIs(t, ValidateTemplate(empty), domain.ErrValidation)
}
