package counts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
	"github.com/jmspivey7/PlateSync-sub002/internal/notify"
)

const testChurch = "church-1"

type memBatches struct {
	items     map[string]*domain.Batch
	donations *memDonations
	seq       int
}

func (m *memBatches) Create(_ context.Context, b *domain.Batch) error {
	m.seq++
	b.ID = fmt.Sprintf("batch-%d", m.seq)
	cp := *b
	m.items[b.ID] = &cp
	return nil
}

func (m *memBatches) Get(_ context.Context, churchID, id string) (*domain.Batch, error) {
	b, ok := m.items[id]
	if !ok || b.ChurchID != churchID {
		return nil, domain.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memBatches) List(_ context.Context, churchID string, filter domain.BatchFilter) ([]domain.Batch, error) {
	var out []domain.Batch
	for _, b := range m.items {
		if b.ChurchID == churchID && (filter.Status == "" || b.Status == filter.Status) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memBatches) UpdateDetails(_ context.Context, b *domain.Batch) error {
	cur, ok := m.items[b.ID]
	if !ok || cur.Status == domain.BatchStatusFinalized {
		return domain.ErrConflict
	}
	cur.Name, cur.ServiceOptionID, cur.ServiceName, cur.CountDate, cur.Notes = b.Name, b.ServiceOptionID, b.ServiceName, b.CountDate, b.Notes
	return nil
}

func (m *memBatches) Delete(_ context.Context, churchID, id string) error {
	cur, ok := m.items[id]
	if !ok || cur.Status == domain.BatchStatusFinalized {
		return domain.ErrConflict
	}
	delete(m.items, id)
	return nil
}

func (m *memBatches) SetStatus(_ context.Context, _, id string, from, to domain.BatchStatus, clear bool) error {
	cur, ok := m.items[id]
	if !ok || cur.Status != from {
		return domain.ErrConflict
	}
	cur.Status = to
	if clear {
		cur.Primary, cur.Secondary = domain.Attestation{}, domain.Attestation{}
	}
	return nil
}

func (m *memBatches) SaveAttestation(_ context.Context, b, prior *domain.Batch) error {
	cur, ok := m.items[b.ID]
	if !ok || cur.Status != prior.Status || cur.Primary.Name != prior.Primary.Name || cur.Secondary.Name != prior.Secondary.Name {
		return domain.ErrConflict
	}
	cur.Status, cur.Primary, cur.Secondary = b.Status, b.Primary, b.Secondary
	return nil
}

func (m *memBatches) Finalize(ctx context.Context, churchID, id, userID string) (*domain.Batch, error) {
	cur, ok := m.items[id]
	if !ok || cur.Status != domain.BatchStatusClosed {
		return nil, domain.ErrConflict
	}
	totals, _ := m.RecomputeTotals(ctx, churchID, id)
	if totals.DonationCount == 0 || !cur.Primary.Present() || !cur.Secondary.Present() ||
		domain.SameAttestor(cur.Primary.Name, cur.Secondary.Name) {
		return nil, domain.ErrConflict
	}
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cur.Status = domain.BatchStatusFinalized
	cur.FinalizedBy = &userID
	cur.FinalizedAt = &at
	return m.Get(ctx, churchID, id)
}

func (m *memBatches) RecomputeTotals(_ context.Context, _, id string) (domain.BatchTotals, error) {
	var t domain.BatchTotals
	for _, d := range m.donations.items {
		if d.BatchID != id {
			continue
		}
		t.TotalCents += d.AmountCents
		t.DonationCount++
		if d.Type == domain.DonationCash {
			t.CashCents += d.AmountCents
		} else {
			t.CheckCents += d.AmountCents
		}
	}
	if cur, ok := m.items[id]; ok {
		cur.TotalCents, cur.CashCents, cur.CheckCents, cur.DonationCount = t.TotalCents, t.CashCents, t.CheckCents, t.DonationCount
	}
	return t, nil
}

func (m *memBatches) Dashboard(context.Context, string, time.Time) (*domain.DashboardSummary, error) {
	return &domain.DashboardSummary{}, nil
}

type memDonations struct {
	items   map[string]*domain.Donation
	batches *memBatches
	seq     int
}

func (m *memDonations) open(batchID string) bool {
	b, ok := m.batches.items[batchID]
	return ok && b.Status == domain.BatchStatusOpen
}

func (m *memDonations) Create(_ context.Context, d *domain.Donation) error {
	if !m.open(d.BatchID) {
		return domain.ErrBatchNotOpen
	}
	m.seq++
	d.ID = fmt.Sprintf("don-%02d", m.seq)
	d.NotificationStatus = domain.NotificationPending
	cp := *d
	m.items[d.ID] = &cp
	return nil
}

func (m *memDonations) Get(_ context.Context, churchID, id string) (*domain.Donation, error) {
	d, ok := m.items[id]
	if !ok || d.ChurchID != churchID {
		return nil, domain.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *memDonations) Update(_ context.Context, d *domain.Donation) error {
	if !m.open(d.BatchID) {
		return domain.ErrBatchNotOpen
	}
	cp := *d
	m.items[d.ID] = &cp
	return nil
}

func (m *memDonations) Delete(_ context.Context, _, id string) error {
	d, ok := m.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	if !m.open(d.BatchID) {
		return domain.ErrBatchNotOpen
	}
	delete(m.items, id)
	return nil
}

func (m *memDonations) ListByBatch(_ context.Context, _, batchID string) ([]domain.Donation, error) {
	var out []domain.Donation
	for _, d := range m.items {
		if d.BatchID == batchID {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memDonations) SetNotificationStatus(_ context.Context, _ string, ids []string, status domain.NotificationStatus) error {
	for _, id := range ids {
		if d, ok := m.items[id]; ok {
			d.NotificationStatus = status
		}
	}
	return nil
}

type memMembers struct {
	domain.MemberRepository
	items map[string]domain.Member
}

func (m *memMembers) Get(_ context.Context, churchID, id string) (*domain.Member, error) {
	mem, ok := m.items[id]
	if !ok || mem.ChurchID != churchID {
		return nil, domain.ErrNotFound
	}
	return &mem, nil
}

type memServices struct {
	domain.ServiceOptionRepository
	items map[string]domain.ServiceOption
}

func (m *memServices) Get(_ context.Context, churchID, id string) (*domain.ServiceOption, error) {
	opt, ok := m.items[id]
	if !ok || opt.ChurchID != churchID {
		return nil, domain.ErrNotFound
	}
	return &opt, nil
}

type memRecipients struct {
	domain.ReportRecipientRepository
	items []domain.ReportRecipient
}

func (m *memRecipients) List(context.Context, string) ([]domain.ReportRecipient, error) {
	return m.items, nil
}

type memChurches struct {
	domain.ChurchRepository
	church domain.Church
}

func (m *memChurches) GetByID(_ context.Context, id string) (*domain.Church, error) {
	if id != m.church.ID {
		return nil, domain.ErrNotFound
	}
	c := m.church
	return &c, nil
}

type queuedEmail struct {
	kind      domain.TemplateType
	to        string
	vars      notify.Vars
	relatedID string
}

type recordingNotifier struct {
	queued  []queuedEmail
	failFor map[string]bool
}

func (r *recordingNotifier) Queue(_ context.Context, _ *string, kind domain.TemplateType, to notify.Recipient, vars notify.Vars, relatedID *string) (*domain.OutboxMessage, error) {
	if r.failFor[to.Email] {
		return nil, errors.New("outbox unavailable")
	}
	e := queuedEmail{kind: kind, to: to.Email, vars: vars}
	if relatedID != nil {
		e.relatedID = *relatedID
	}
	r.queued = append(r.queued, e)
	return &domain.OutboxMessage{Kind: kind, Recipient: to.Email}, nil
}

type fixture struct {
	svc       *Service
	batches   *memBatches
	donations *memDonations
	notifier  *recordingNotifier
}

func newFixture() *fixture {
	batches := &memBatches{items: map[string]*domain.Batch{}}
	donations := &memDonations{items: map[string]*domain.Donation{}, batches: batches}
	batches.donations = donations
	notifier := &recordingNotifier{}
	svc := &Service{
		Batches:   batches,
		Donations: donations,
		Members: &memMembers{items: map[string]domain.Member{
			"m-1": {ID: "m-1", ChurchID: testChurch, FirstName: "Ruth", LastName: "Boaz", Email: "ruth@example.com"},
			"m-2": {ID: "m-2", ChurchID: testChurch, FirstName: "Amos", LastName: "Tekoa"},
			"m-x": {ID: "m-x", ChurchID: "church-2", FirstName: "Other"},
		}},
		Services: &memServices{items: map[string]domain.ServiceOption{
			"svc-1": {ID: "svc-1", ChurchID: testChurch, Name: "Sunday Service"},
		}},
		Recipients: &memRecipients{items: []domain.ReportRecipient{
			{ID: "r-1", ChurchID: testChurch, FirstName: "Tess", LastName: "Urer", Email: "treasurer@example.com"},
		}},
		Churches: &memChurches{church: domain.Church{ID: testChurch, Name: "Grace Chapel", Status: domain.ChurchStatusActive}},
		Notifier: notifier,
		Logger:   zerolog.New(io.Discard),
		Now:      func() time.Time { return time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC) },
	}
	return &fixture{svc: svc, batches: batches, donations: donations, notifier: notifier}
}

func usher() Actor { return Actor{UserID: "u-usher", ChurchID: testChurch, Role: domain.RoleUsher} }
func admin() Actor { return Actor{UserID: "u-admin", ChurchID: testChurch, Role: domain.RoleAdmin} }

func strPtr(s string) *string { return &s }
