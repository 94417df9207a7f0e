// Package counts implements the batch (count) workflow: donation entry,
// two-person attestation, finalization and the notifications that follow.
package counts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
	"github.com/jmspivey7/PlateSync-sub002/internal/metrics"
	"github.com/jmspivey7/PlateSync-sub002/internal/notify"
)

const maxBatchNameLength = 120

// Actor is the authenticated church user performing an operation.
type Actor struct {
	UserID   string
	ChurchID string
	Role     domain.UserRole
}

// Notifier queues rendered emails.
type Notifier interface {
	Queue(ctx context.Context, churchID *string, kind domain.TemplateType, to notify.Recipient, vars notify.Vars, relatedID *string) (*domain.OutboxMessage, error)
}

// Service coordinates batch repositories and notifications.
type Service struct {
	Batches    domain.BatchRepository
	Donations  domain.DonationRepository
	Members    domain.MemberRepository
	Services   domain.ServiceOptionRepository
	Recipients domain.ReportRecipientRepository
	Churches   domain.ChurchRepository
	Notifier   Notifier
	Logger     zerolog.Logger
	Now        func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// BatchInput carries the editable batch details.
type BatchInput struct {
	Name            string
	ServiceOptionID *string
	CountDate       time.Time
	Notes           string
}

// DonationInput carries the editable donation fields; amounts are in cents.
type DonationInput struct {
	MemberID    *string
	Type        domain.DonationType
	AmountCents int64
	CheckNumber string
	Notes       string
}

// CreateBatch opens a new count. A blank name becomes "<service> - <date>".
func (s *Service) CreateBatch(ctx context.Context, actor Actor, in BatchInput) (*domain.Batch, error) {
	b := &domain.Batch{
		ChurchID:  actor.ChurchID,
		Status:    domain.BatchStatusOpen,
		CreatedBy: optional(actor.UserID),
	}
	if err := s.applyDetails(ctx, b, in); err != nil {
		return nil, err
	}
	if err := s.Batches.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create batch: %w", err)
	}
	metrics.RecordBatchTransition(string(domain.BatchStatusOpen))
	return b, nil
}

func (s *Service) applyDetails(ctx context.Context, b *domain.Batch, in BatchInput) error {
	countDate := in.CountDate
	if countDate.IsZero() {
		countDate = s.now()
	}
	b.CountDate = time.Date(countDate.Year(), countDate.Month(), countDate.Day(), 0, 0, 0, 0, time.UTC)

	b.ServiceOptionID = nil
	b.ServiceName = ""
	if in.ServiceOptionID != nil && strings.TrimSpace(*in.ServiceOptionID) != "" {
		opt, err := s.Services.Get(ctx, b.ChurchID, strings.TrimSpace(*in.ServiceOptionID))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.Invalid("service_option_id", "does not exist")
			}
			return err
		}
		b.ServiceOptionID = &opt.ID
		b.ServiceName = opt.Name
	}

	name := strings.Join(strings.Fields(in.Name), " ")
	if name == "" {
		name = domain.DefaultBatchName(b.ServiceName, b.CountDate)
	}
	if len([]rune(name)) > maxBatchNameLength {
		return domain.Invalid("name", "is too long")
	}
	b.Name = name
	b.Notes = strings.TrimSpace(in.Notes)
	return nil
}

// GetBatch loads one batch of the church.
func (s *Service) GetBatch(ctx context.Context, churchID, id string) (*domain.Batch, error) {
	return s.Batches.Get(ctx, churchID, id)
}

// ListBatches lists the church's batches, optionally by status.
func (s *Service) ListBatches(ctx context.Context, churchID string, filter domain.BatchFilter) ([]domain.Batch, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.Invalid("status", "is not a batch status")
	}
	return s.Batches.List(ctx, churchID, filter)
}

// BatchDonations returns the donations of a batch in entry order.
func (s *Service) BatchDonations(ctx context.Context, churchID, batchID string) ([]domain.Donation, error) {
	if _, err := s.Batches.Get(ctx, churchID, batchID); err != nil {
		return nil, err
	}
	return s.Donations.ListByBatch(ctx, churchID, batchID)
}

// UpdateBatch edits the details of a batch that is not finalized.
func (s *Service) UpdateBatch(ctx context.Context, actor Actor, id string, in BatchInput) (*domain.Batch, error) {
	b, err := s.Batches.Get(ctx, actor.ChurchID, id)
	if err != nil {
		return nil, err
	}
	if err := b.CanModify(); err != nil {
		return nil, err
	}
	if err := s.applyDetails(ctx, b, in); err != nil {
		return nil, err
	}
	if err := s.Batches.UpdateDetails(ctx, b); err != nil {
		return nil, s.resolve(ctx, err, actor.ChurchID, id, (*domain.Batch).CanModify)
	}
	return s.Batches.Get(ctx, actor.ChurchID, id)
}

// DeleteBatch removes a batch that is not finalized. Admins and owners only.
func (s *Service) DeleteBatch(ctx context.Context, actor Actor, id string) error {
	if !actor.Role.AtLeast(domain.RoleAdmin) {
		return domain.ErrForbidden
	}
	b, err := s.Batches.Get(ctx, actor.ChurchID, id)
	if err != nil {
		return err
	}
	if err := b.CanModify(); err != nil {
		return err
	}
	if err := s.Batches.Delete(ctx, actor.ChurchID, id); err != nil {
		return s.resolve(ctx, err, actor.ChurchID, id, (*domain.Batch).CanModify)
	}
	return nil
}

// AddDonation records a gift in an OPEN batch and returns the refreshed batch.
func (s *Service) AddDonation(ctx context.Context, actor Actor, batchID string, in DonationInput) (*domain.Donation, *domain.Batch, error) {
	b, err := s.Batches.Get(ctx, actor.ChurchID, batchID)
	if err != nil {
		return nil, nil, err
	}
	if err := b.CanEditDonations(); err != nil {
		return nil, nil, err
	}
	d := &domain.Donation{
		ChurchID:  actor.ChurchID,
		BatchID:   b.ID,
		CreatedBy: optional(actor.UserID),
	}
	applyDonation(d, in)
	if err := s.checkDonation(ctx, d); err != nil {
		return nil, nil, err
	}
	if err := s.Donations.Create(ctx, d); err != nil {
		return nil, nil, s.resolve(ctx, err, actor.ChurchID, b.ID, (*domain.Batch).CanEditDonations)
	}
	b, err = s.refreshTotals(ctx, b)
	if err != nil {
		return nil, nil, err
	}
	return d, b, nil
}

// UpdateDonation edits a gift while its batch is OPEN.
func (s *Service) UpdateDonation(ctx context.Context, actor Actor, batchID, donationID string, in DonationInput) (*domain.Donation, *domain.Batch, error) {
	d, b, err := s.loadDonation(ctx, actor.ChurchID, batchID, donationID)
	if err != nil {
		return nil, nil, err
	}
	if err := b.CanEditDonations(); err != nil {
		return nil, nil, err
	}
	applyDonation(d, in)
	if err := s.checkDonation(ctx, d); err != nil {
		return nil, nil, err
	}
	if err := s.Donations.Update(ctx, d); err != nil {
		return nil, nil, s.resolve(ctx, err, actor.ChurchID, b.ID, (*domain.Batch).CanEditDonations)
	}
	b, err = s.refreshTotals(ctx, b)
	if err != nil {
		return nil, nil, err
	}
	return d, b, nil
}

// DeleteDonation removes a gift while its batch is OPEN.
func (s *Service) DeleteDonation(ctx context.Context, actor Actor, batchID, donationID string) (*domain.Batch, error) {
	_, b, err := s.loadDonation(ctx, actor.ChurchID, batchID, donationID)
	if err != nil {
		return nil, err
	}
	if err := b.CanEditDonations(); err != nil {
		return nil, err
	}
	if err := s.Donations.Delete(ctx, actor.ChurchID, donationID); err != nil {
		return nil, s.resolve(ctx, err, actor.ChurchID, b.ID, (*domain.Batch).CanEditDonations)
	}
	return s.refreshTotals(ctx, b)
}

// loadDonation returns the gift and its batch. A gift filed under another
// batch is not found.
func (s *Service) loadDonation(ctx context.Context, churchID, batchID, donationID string) (*domain.Donation, *domain.Batch, error) {
	d, err := s.Donations.Get(ctx, churchID, donationID)
	if err != nil {
		return nil, nil, err
	}
	if d.BatchID != batchID {
		return nil, nil, domain.ErrNotFound
	}
	b, err := s.Batches.Get(ctx, churchID, d.BatchID)
	if err != nil {
		return nil, nil, err
	}
	return d, b, nil
}

func applyDonation(d *domain.Donation, in DonationInput) {
	d.MemberID = in.MemberID
	d.Type = in.Type
	d.AmountCents = in.AmountCents
	d.CheckNumber = in.CheckNumber
	d.Notes = in.Notes
}

func (s *Service) checkDonation(ctx context.Context, d *domain.Donation) error {
	if err := d.Validate(); err != nil {
		return err
	}
	d.MemberName, d.MemberEmail = "", ""
	if d.MemberID == nil {
		return nil
	}
	m, err := s.Members.Get(ctx, d.ChurchID, strings.TrimSpace(*d.MemberID))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Invalid("member_id", "does not exist")
		}
		return err
	}
	d.MemberID = &m.ID
	d.MemberName = m.FullName()
	d.MemberEmail = m.Email
	return nil
}

func (s *Service) refreshTotals(ctx context.Context, b *domain.Batch) (*domain.Batch, error) {
	totals, err := s.Batches.RecomputeTotals(ctx, b.ChurchID, b.ID)
	if err != nil {
		return nil, fmt.Errorf("recompute totals: %w", err)
	}
	b.TotalCents = totals.TotalCents
	b.CashCents = totals.CashCents
	b.CheckCents = totals.CheckCents
	b.DonationCount = totals.DonationCount
	return b, nil
}

// CloseBatch stops donation entry.
func (s *Service) CloseBatch(ctx context.Context, actor Actor, id string) (*domain.Batch, error) {
	b, err := s.Batches.Get(ctx, actor.ChurchID, id)
	if err != nil {
		return nil, err
	}
	if err := b.Close(); err != nil {
		return nil, err
	}
	if err := s.Batches.SetStatus(ctx, actor.ChurchID, id, domain.BatchStatusOpen, domain.BatchStatusClosed, false); err != nil {
		return nil, s.resolve(ctx, err, actor.ChurchID, id, (*domain.Batch).Close)
	}
	metrics.RecordBatchTransition(string(domain.BatchStatusClosed))
	return s.Batches.Get(ctx, actor.ChurchID, id)
}

// ReopenBatch returns a CLOSED batch to OPEN and discards both attestations.
func (s *Service) ReopenBatch(ctx context.Context, actor Actor, id string) (*domain.Batch, error) {
	b, err := s.Batches.Get(ctx, actor.ChurchID, id)
	if err != nil {
		return nil, err
	}
	if err := b.Reopen(); err != nil {
		return nil, err
	}
	if err := s.Batches.SetStatus(ctx, actor.ChurchID, id, domain.BatchStatusClosed, domain.BatchStatusOpen, true); err != nil {
		return nil, s.resolve(ctx, err, actor.ChurchID, id, (*domain.Batch).Reopen)
	}
	metrics.RecordBatchTransition(string(domain.BatchStatusOpen))
	return s.Batches.Get(ctx, actor.ChurchID, id)
}

// AttestPrimary records the first sign-off and closes the batch.
func (s *Service) AttestPrimary(ctx context.Context, actor Actor, id, name string) (*domain.Batch, error) {
	b, err := s.Batches.Get(ctx, actor.ChurchID, id)
	if err != nil {
		return nil, err
	}
	prior := *b
	if err := b.AttestPrimary(actor.UserID, name, s.now()); err != nil {
		return nil, err
	}
	if err := s.Batches.SaveAttestation(ctx, b, &prior); err != nil {
		return nil, s.resolve(ctx, err, actor.ChurchID, id, (*domain.Batch).CanModify)
	}
	if prior.Status != b.Status {
		metrics.RecordBatchTransition(string(b.Status))
	}
	return b, nil
}

// AttestSecondary records the second sign-off by a different person.
func (s *Service) AttestSecondary(ctx context.Context, actor Actor, id, name string) (*domain.Batch, error) {
	b, err := s.Batches.Get(ctx, actor.ChurchID, id)
	if err != nil {
		return nil, err
	}
	prior := *b
	if err := b.AttestSecondary(actor.UserID, name, s.now()); err != nil {
		return nil, err
	}
	if err := s.Batches.SaveAttestation(ctx, b, &prior); err != nil {
		return nil, s.resolve(ctx, err, actor.ChurchID, id, (*domain.Batch).CanModify)
	}
	return b, nil
}

// FinalizeBatch locks the batch and queues donor and report emails. Email
// queueing failures are logged; ResendNotifications retries them.
func (s *Service) FinalizeBatch(ctx context.Context, actor Actor, id string) (*domain.Batch, error) {
	b, err := s.Batches.Get(ctx, actor.ChurchID, id)
	if err != nil {
		return nil, err
	}
	if err := b.ReadyToFinalize(); err != nil {
		return nil, err
	}
	finalized, err := s.Batches.Finalize(ctx, actor.ChurchID, id, actor.UserID)
	if err != nil {
		return nil, s.resolve(ctx, err, actor.ChurchID, id, (*domain.Batch).ReadyToFinalize)
	}
	metrics.RecordBatchTransition(string(domain.BatchStatusFinalized))
	s.Logger.Info().
		Str("church_id", actor.ChurchID).
		Str("batch_id", id).
		Int64("total_cents", finalized.TotalCents).
		Int("donations", finalized.DonationCount).
		Msg("batch finalized")

	if _, err := s.notifyFinalized(ctx, finalized, false, true); err != nil {
		s.Logger.Error().Err(err).Str("batch_id", id).Msg("queue finalization emails failed")
	}
	return finalized, nil
}

// ResendNotifications re-queues donor confirmations still PENDING or FAILED
// and, when includeReport is set, the count report. Admins and owners only.
func (s *Service) ResendNotifications(ctx context.Context, actor Actor, id string, includeReport bool) (int, error) {
	if !actor.Role.AtLeast(domain.RoleAdmin) {
		return 0, domain.ErrForbidden
	}
	b, err := s.Batches.Get(ctx, actor.ChurchID, id)
	if err != nil {
		return 0, err
	}
	if b.Status != domain.BatchStatusFinalized {
		return 0, domain.ErrInvalidTransition
	}
	return s.notifyFinalized(ctx, b, true, includeReport)
}

// notifyFinalized queues donor confirmations and the count report. Donations
// are marked QUEUED before their email is enqueued so the worker's SENT or
// FAILED always lands last.
func (s *Service) notifyFinalized(ctx context.Context, b *domain.Batch, retryOnly, includeReport bool) (int, error) {
	church, err := s.Churches.GetByID(ctx, b.ChurchID)
	if err != nil {
		return 0, err
	}
	donations, err := s.Donations.ListByBatch(ctx, b.ChurchID, b.ID)
	if err != nil {
		return 0, err
	}

	var send []domain.Donation
	var sendIDs, skipIDs []string
	for _, d := range donations {
		if retryOnly && d.NotificationStatus != domain.NotificationPending && d.NotificationStatus != domain.NotificationFailed {
			continue
		}
		if d.MemberEmail == "" {
			if d.NotificationStatus != domain.NotificationNotRequired {
				skipIDs = append(skipIDs, d.ID)
			}
			continue
		}
		send = append(send, d)
		sendIDs = append(sendIDs, d.ID)
	}
	if err := s.Donations.SetNotificationStatus(ctx, b.ChurchID, skipIDs, domain.NotificationNotRequired); err != nil {
		return 0, err
	}
	if err := s.Donations.SetNotificationStatus(ctx, b.ChurchID, sendIDs, domain.NotificationQueued); err != nil {
		return 0, err
	}

	churchID := b.ChurchID
	queued := 0
	var errs []error
	var failedIDs []string
	for _, d := range send {
		donationID := d.ID
		_, err := s.Notifier.Queue(ctx, &churchID, domain.TemplateDonationConfirmation,
			notify.Recipient{Email: d.MemberEmail, Name: d.MemberName},
			notify.DonationVars(church, b, d), &donationID)
		if err != nil {
			errs = append(errs, err)
			failedIDs = append(failedIDs, d.ID)
			continue
		}
		queued++
	}
	if err := s.Donations.SetNotificationStatus(ctx, b.ChurchID, failedIDs, domain.NotificationPending); err != nil {
		errs = append(errs, err)
	}

	if includeReport {
		recipients, err := s.Recipients.List(ctx, b.ChurchID)
		if err != nil {
			errs = append(errs, err)
		}
		batchID := b.ID
		vars := notify.BatchVars(church, b)
		for _, r := range recipients {
			_, err := s.Notifier.Queue(ctx, &churchID, domain.TemplateCountReport,
				notify.Recipient{Email: r.Email, Name: strings.TrimSpace(r.FirstName + " " + r.LastName)},
				vars, &batchID)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			queued++
		}
	}
	return queued, errors.Join(errs...)
}

// resolve turns a guard miss (domain.ErrConflict or ErrBatchNotOpen from the
// repository) into the specific reason by re-reading the batch.
func (s *Service) resolve(ctx context.Context, err error, churchID, id string, check func(*domain.Batch) error) error {
	if !errors.Is(err, domain.ErrConflict) && !errors.Is(err, domain.ErrBatchNotOpen) {
		return err
	}
	b, getErr := s.Batches.Get(ctx, churchID, id)
	if getErr != nil {
		return getErr
	}
	if reason := check(b); reason != nil {
		return reason
	}
	return domain.ErrConflict
}

func optional(id string) *string {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	return &id
}
