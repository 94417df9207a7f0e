package repo

import (
	"context"

	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
	"github.com/jmspivey7/PlateSync-sub002/internal/infra"
	"github.com/jmspivey7/PlateSync-sub002/internal/sqlinline"
)

// DonationRepositoryPG implements domain.DonationRepository using PostgreSQL.
type DonationRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewDonationRepository creates a new donation repo.
func NewDonationRepository(sql infra.SQLExecutor) *DonationRepositoryPG {
	return &DonationRepositoryPG{sql: sql}
}

// Create inserts a donation into an OPEN batch.
func (r *DonationRepositoryPG) Create(ctx context.Context, donation *domain.Donation) error {
	row := r.sql.QueryRow(ctx, sqlinline.QInsertDonation,
		donation.ChurchID, donation.BatchID, deref(donation.MemberID), string(donation.Type),
		donation.AmountCents, donation.CheckNumber, donation.Notes, deref(donation.CreatedBy))
	err := row.Scan(&donation.ID, &donation.NotificationStatus, &donation.CreatedAt, &donation.UpdatedAt)
	if infra.IsNoRows(err) {
		return domain.ErrBatchNotOpen
	}
	return writeErr(err)
}

func (r *DonationRepositoryPG) Get(ctx context.Context, churchID, id string) (*domain.Donation, error) {
	return scanDonation(r.sql.QueryRow(ctx, sqlinline.QSelectDonation, churchID, id))
}

// Update saves a donation while its batch is OPEN.
func (r *DonationRepositoryPG) Update(ctx context.Context, donation *domain.Donation) error {
	row := r.sql.QueryRow(ctx, sqlinline.QUpdateDonation,
		donation.ChurchID, donation.ID, deref(donation.MemberID), string(donation.Type),
		donation.AmountCents, donation.CheckNumber, donation.Notes)
	err := row.Scan(&donation.UpdatedAt)
	if infra.IsNoRows(err) {
		return domain.ErrBatchNotOpen
	}
	return writeErr(err)
}

// Delete removes a donation while its batch is OPEN.
func (r *DonationRepositoryPG) Delete(ctx context.Context, churchID, id string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QDeleteDonation, churchID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBatchNotOpen
	}
	return nil
}

// ListByBatch returns donations in entry order.
func (r *DonationRepositoryPG) ListByBatch(ctx context.Context, churchID, batchID string) ([]domain.Donation, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListDonationsByBatch, churchID, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Donation
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// SetNotificationStatus updates the confirmation state of several donations.
func (r *DonationRepositoryPG) SetNotificationStatus(ctx context.Context, churchID string, ids []string, status domain.NotificationStatus) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.sql.Exec(ctx, sqlinline.QSetDonationNotificationStatus, churchID, ids, string(status))
	return err
}
