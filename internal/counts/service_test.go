package counts

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
)

func openBatchWithGifts(t *testing.T, f *fixture) *domain.Batch {
	t.Helper()
	ctx := context.Background()
	b, err := f.svc.CreateBatch(ctx, usher(), BatchInput{ServiceOptionID: strPtr("svc-1")})
	require.NoError(t, err)

	_, _, err = f.svc.AddDonation(ctx, usher(), b.ID, DonationInput{MemberID: strPtr("m-1"), Type: domain.DonationCheck, AmountCents: 10000, CheckNumber: "1001"})
	require.NoError(t, err)
	_, _, err = f.svc.AddDonation(ctx, usher(), b.ID, DonationInput{MemberID: strPtr("m-2"), Type: domain.DonationCash, AmountCents: 2500})
	require.NoError(t, err)
	_, b, err = f.svc.AddDonation(ctx, usher(), b.ID, DonationInput{Type: "cash", AmountCents: 1234})
	require.NoError(t, err)
	return b
}

func attestAndFinalize(t *testing.T, f *fixture, id string) *domain.Batch {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.AttestPrimary(ctx, usher(), id, "Mary Counter")
	require.NoError(t, err)
	_, err = f.svc.AttestSecondary(ctx, admin(), id, "Joe Verifier")
	require.NoError(t, err)
	b, err := f.svc.FinalizeBatch(ctx, admin(), id)
	require.NoError(t, err)
	return b
}

func TestCreateBatchDefaultsName(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	b, err := f.svc.CreateBatch(ctx, usher(), BatchInput{ServiceOptionID: strPtr("svc-1")})
	require.NoError(t, err)
	assert.Equal(t, "Sunday Service - Mar 1, 2026", b.Name)
	assert.Equal(t, domain.BatchStatusOpen, b.Status)
	require.NotNil(t, b.CreatedBy)
	assert.Equal(t, "u-usher", *b.CreatedBy)

	b, err = f.svc.CreateBatch(ctx, usher(), BatchInput{Name: "  Easter   offering ", CountDate: time.Date(2026, 4, 5, 18, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Equal(t, "Easter offering", b.Name)
	assert.Equal(t, time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC), b.CountDate)

	_, err = f.svc.CreateBatch(ctx, usher(), BatchInput{ServiceOptionID: strPtr("svc-unknown")})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAddDonationMaintainsTotals(t *testing.T) {
	f := newFixture()
	b := openBatchWithGifts(t, f)

	assert.Equal(t, int64(13734), b.TotalCents)
	assert.Equal(t, int64(3734), b.CashCents)
	assert.Equal(t, int64(10000), b.CheckCents)
	assert.Equal(t, 3, b.DonationCount)
	assert.Equal(t, b.CashCents+b.CheckCents, b.TotalCents)

	donations, err := f.svc.BatchDonations(context.Background(), testChurch, b.ID)
	require.NoError(t, err)
	require.Len(t, donations, 3)
	assert.Equal(t, "Ruth Boaz", donations[0].MemberName)
	assert.True(t, donations[2].Anonymous())
	assert.Equal(t, domain.DonationCash, donations[2].Type)
}

func TestAddDonationValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b, err := f.svc.CreateBatch(ctx, usher(), BatchInput{})
	require.NoError(t, err)

	cases := map[string]DonationInput{
		"check without number": {Type: domain.DonationCheck, AmountCents: 500},
		"zero amount":          {Type: domain.DonationCash},
		"unknown type":         {Type: "CARD", AmountCents: 500},
		"other church member":  {MemberID: strPtr("m-x"), Type: domain.DonationCash, AmountCents: 500},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := f.svc.AddDonation(ctx, usher(), b.ID, in)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
	assert.Empty(t, f.donations.items)
}

func TestDonationsLockedOutsideOpen(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b := openBatchWithGifts(t, f)

	_, err := f.svc.CloseBatch(ctx, usher(), b.ID)
	require.NoError(t, err)
	_, _, err = f.svc.AddDonation(ctx, usher(), b.ID, DonationInput{Type: domain.DonationCash, AmountCents: 100})
	assert.ErrorIs(t, err, domain.ErrBatchNotOpen)

	reopened, err := f.svc.ReopenBatch(ctx, usher(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BatchStatusOpen, reopened.Status)
	_, updated, err := f.svc.AddDonation(ctx, usher(), b.ID, DonationInput{Type: domain.DonationCash, AmountCents: 100})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.DonationCount)
}

func TestReopenClearsAttestation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b := openBatchWithGifts(t, f)

	closed, err := f.svc.AttestPrimary(ctx, usher(), b.ID, "Mary Counter")
	require.NoError(t, err)
	assert.Equal(t, domain.BatchStatusClosed, closed.Status)

	reopened, err := f.svc.ReopenBatch(ctx, usher(), b.ID)
	require.NoError(t, err)
	assert.False(t, reopened.Primary.Present())
	assert.False(t, reopened.Secondary.Present())

	_, err = f.svc.ReopenBatch(ctx, usher(), b.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestAttestationRequiresDistinctPeople(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b := openBatchWithGifts(t, f)

	_, err := f.svc.AttestSecondary(ctx, admin(), b.ID, "Joe Verifier")
	assert.ErrorIs(t, err, domain.ErrAttestationIncomplete)

	_, err = f.svc.AttestPrimary(ctx, usher(), b.ID, "Mary Counter")
	require.NoError(t, err)
	_, err = f.svc.AttestSecondary(ctx, admin(), b.ID, "  mary   COUNTER ")
	assert.ErrorIs(t, err, domain.ErrAttestorsNotDistinct)

	_, err = f.svc.FinalizeBatch(ctx, admin(), b.ID)
	assert.ErrorIs(t, err, domain.ErrAttestationIncomplete)
}

// interleavedBatches runs beforeSave once, just ahead of the next attestation
// write, to stand in for a concurrent request.
type interleavedBatches struct {
	*memBatches
	beforeSave func()
}

func (b *interleavedBatches) SaveAttestation(ctx context.Context, batch, prior *domain.Batch) error {
	if b.beforeSave != nil {
		b.beforeSave()
		b.beforeSave = nil
	}
	return b.memBatches.SaveAttestation(ctx, batch, prior)
}

func TestSecondaryAttestationKeepsConcurrentPrimary(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b := openBatchWithGifts(t, f)
	_, err := f.svc.AttestPrimary(ctx, usher(), b.ID, "Mary Counter")
	require.NoError(t, err)

	f.svc.Batches = &interleavedBatches{memBatches: f.batches, beforeSave: func() {
		f.batches.items[b.ID].Primary.Name = "Joe Verifier"
	}}
	_, err = f.svc.AttestSecondary(ctx, admin(), b.ID, "Joe Verifier")
	assert.ErrorIs(t, err, domain.ErrConflict)

	stored := f.batches.items[b.ID]
	assert.Equal(t, "Joe Verifier", stored.Primary.Name)
	assert.False(t, stored.Secondary.Present())
	_, err = f.svc.FinalizeBatch(ctx, admin(), b.ID)
	assert.ErrorIs(t, err, domain.ErrAttestationIncomplete)
}

func TestFinalizeRejectsEmptyBatch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b, err := f.svc.CreateBatch(ctx, usher(), BatchInput{})
	require.NoError(t, err)
	_, err = f.svc.AttestPrimary(ctx, usher(), b.ID, "Mary Counter")
	require.NoError(t, err)
	_, err = f.svc.AttestSecondary(ctx, admin(), b.ID, "Joe Verifier")
	require.NoError(t, err)

	_, err = f.svc.FinalizeBatch(ctx, admin(), b.ID)
	assert.ErrorIs(t, err, domain.ErrEmptyBatch)
}

func TestFinalizeQueuesNotifications(t *testing.T) {
	f := newFixture()
	b := openBatchWithGifts(t, f)

	final := attestAndFinalize(t, f, b.ID)
	assert.Equal(t, domain.BatchStatusFinalized, final.Status)
	assert.Equal(t, int64(13734), final.TotalCents)
	require.NotNil(t, final.FinalizedBy)
	assert.Equal(t, "u-admin", *final.FinalizedBy)

	require.Len(t, f.notifier.queued, 2)
	confirmation := f.notifier.queued[0]
	assert.Equal(t, domain.TemplateDonationConfirmation, confirmation.kind)
	assert.Equal(t, "ruth@example.com", confirmation.to)
	assert.Equal(t, "$100.00", confirmation.vars["amount"])
	report := f.notifier.queued[1]
	assert.Equal(t, domain.TemplateCountReport, report.kind)
	assert.Equal(t, "treasurer@example.com", report.to)
	assert.Equal(t, b.ID, report.relatedID)

	statuses := map[string]domain.NotificationStatus{}
	for id, d := range f.donations.items {
		statuses[id] = d.NotificationStatus
	}
	assert.Equal(t, domain.NotificationQueued, statuses[confirmation.relatedID])
	notRequired := 0
	for _, s := range statuses {
		if s == domain.NotificationNotRequired {
			notRequired++
		}
	}
	assert.Equal(t, 2, notRequired)
}

func TestFinalizedBatchIsImmutable(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b := openBatchWithGifts(t, f)
	attestAndFinalize(t, f, b.ID)

	var donationID string
	for id := range f.donations.items {
		donationID = id
		break
	}
	_, _, err := f.svc.UpdateDonation(ctx, usher(), b.ID, donationID, DonationInput{Type: domain.DonationCash, AmountCents: 1})
	assert.ErrorIs(t, err, domain.ErrBatchFinalized)
	_, err = f.svc.DeleteDonation(ctx, usher(), b.ID, donationID)
	assert.ErrorIs(t, err, domain.ErrBatchFinalized)
	_, err = f.svc.UpdateBatch(ctx, usher(), b.ID, BatchInput{Name: "renamed"})
	assert.ErrorIs(t, err, domain.ErrBatchFinalized)
	assert.ErrorIs(t, f.svc.DeleteBatch(ctx, admin(), b.ID), domain.ErrBatchFinalized)
	_, err = f.svc.ReopenBatch(ctx, admin(), b.ID)
	assert.ErrorIs(t, err, domain.ErrBatchFinalized)
	_, err = f.svc.FinalizeBatch(ctx, admin(), b.ID)
	assert.ErrorIs(t, err, domain.ErrBatchFinalized)
	_, err = f.svc.AttestPrimary(ctx, admin(), b.ID, "Someone Else")
	assert.ErrorIs(t, err, domain.ErrBatchFinalized)
}

func TestDonationEditsRequireOwningBatch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b := openBatchWithGifts(t, f)
	other, err := f.svc.CreateBatch(ctx, usher(), BatchInput{Name: "Evening"})
	require.NoError(t, err)

	var donationID string
	for id := range f.donations.items {
		donationID = id
		break
	}
	_, _, err = f.svc.UpdateDonation(ctx, usher(), other.ID, donationID, DonationInput{Type: domain.DonationCash, AmountCents: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.svc.DeleteDonation(ctx, usher(), other.ID, donationID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, ok := f.donations.items[donationID]
	assert.True(t, ok, "donation must survive a delete through the wrong batch")
	got, err := f.svc.GetBatch(ctx, testChurch, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.TotalCents, got.TotalCents)
}

func TestDeleteBatchRequiresAdmin(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b, err := f.svc.CreateBatch(ctx, usher(), BatchInput{})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.DeleteBatch(ctx, usher(), b.ID), domain.ErrForbidden)
	require.NoError(t, f.svc.DeleteBatch(ctx, admin(), b.ID))
	_, err = f.svc.GetBatch(ctx, testChurch, b.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResendRetriesFailedQueueing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b := openBatchWithGifts(t, f)
	f.notifier.failFor = map[string]bool{"ruth@example.com": true}

	attestAndFinalize(t, f, b.ID)
	require.Len(t, f.notifier.queued, 1, "only the report was queued")
	for _, d := range f.donations.items {
		if d.MemberEmail == "ruth@example.com" {
			assert.Equal(t, domain.NotificationPending, d.NotificationStatus)
		}
	}

	_, err := f.svc.ResendNotifications(ctx, usher(), b.ID, false)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	f.notifier.failFor = nil
	n, err := f.svc.ResendNotifications(ctx, admin(), b.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, domain.TemplateDonationConfirmation, f.notifier.queued[1].kind)

	n, err = f.svc.ResendNotifications(ctx, admin(), b.ID, false)
	require.NoError(t, err)
	assert.Zero(t, n, "queued donations are not sent twice")
}

func TestResendRequiresFinalizedBatch(t *testing.T) {
	f := newFixture()
	b := openBatchWithGifts(t, f)
	_, err := f.svc.ResendNotifications(context.Background(), admin(), b.ID, true)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestExportReport(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b := openBatchWithGifts(t, f)

	_, err := f.svc.ExportReport(ctx, testChurch, b.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	attestAndFinalize(t, f, b.ID)
	report, err := f.svc.ExportReport(ctx, testChurch, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "count-2026-03-01-batch-1.zip", report.Filename)

	zr, err := zip.NewReader(bytes.NewReader(report.Data), int64(len(report.Data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	assert.Equal(t, "donations.csv", zr.File[0].Name)
	assert.Equal(t, "summary.txt", zr.File[1].Name)

	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	records, err := csv.NewReader(rc).ReadAll()
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	require.Len(t, records, 4)
	assert.Equal(t, reportHeader, records[0])
	assert.Equal(t, []string{"Ruth Boaz", "ruth@example.com", "CHECK", "1001", "100.00"}, records[1][1:6])
	assert.Equal(t, "Anonymous", records[3][1])

	rc, err = zr.File[1].Open()
	require.NoError(t, err)
	summary, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Contains(t, string(summary), "Total: $137.34")
	assert.Contains(t, string(summary), "Verified by: Joe Verifier")
}
