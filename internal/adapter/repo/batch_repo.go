package repo

import (
	"context"
	"time"

	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
	"github.com/jmspivey7/PlateSync-sub002/internal/infra"
	"github.com/jmspivey7/PlateSync-sub002/internal/sqlinline"
)

const dashboardTrendSize = 8

// BatchRepositoryPG implements domain.BatchRepository backed by PostgreSQL.
type BatchRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewBatchRepository creates a new BatchRepositoryPG.
func NewBatchRepository(sql infra.SQLExecutor) *BatchRepositoryPG {
	return &BatchRepositoryPG{sql: sql}
}

// Create inserts an OPEN batch.
func (r *BatchRepositoryPG) Create(ctx context.Context, batch *domain.Batch) error {
	row := r.sql.QueryRow(ctx, sqlinline.QInsertBatch,
		batch.ChurchID, batch.Name, deref(batch.ServiceOptionID), batch.CountDate, batch.Notes, deref(batch.CreatedBy))
	return writeErr(row.Scan(&batch.ID, &batch.Status, &batch.CreatedAt, &batch.UpdatedAt))
}

func (r *BatchRepositoryPG) Get(ctx context.Context, churchID, id string) (*domain.Batch, error) {
	return scanBatch(r.sql.QueryRow(ctx, sqlinline.QSelectBatch, churchID, id))
}

// List returns batches newest count date first.
func (r *BatchRepositoryPG) List(ctx context.Context, churchID string, filter domain.BatchFilter) ([]domain.Batch, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	rows, err := r.sql.Query(ctx, sqlinline.QListBatches, churchID, string(filter.Status), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateDetails saves name, service, date and notes of a non-finalized batch.
func (r *BatchRepositoryPG) UpdateDetails(ctx context.Context, batch *domain.Batch) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QUpdateBatchDetails,
		batch.ChurchID, batch.ID, batch.Name, deref(batch.ServiceOptionID), batch.CountDate, batch.Notes)
	if err != nil {
		return writeErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

// Delete removes a non-finalized batch and its donations.
func (r *BatchRepositoryPG) Delete(ctx context.Context, churchID, id string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QDeleteBatch, churchID, id)
	if err != nil {
		return writeErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

// SetStatus moves the batch from one status to another, optionally clearing
// both attestations.
func (r *BatchRepositoryPG) SetStatus(ctx context.Context, churchID, id string, from, to domain.BatchStatus, clearAttestation bool) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QSetBatchStatus, churchID, id, string(from), string(to), clearAttestation)
	if err != nil {
		return writeErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

// SaveAttestation writes the batch's status and both attestations if the
// stored status and attestor names still match prior.
func (r *BatchRepositoryPG) SaveAttestation(ctx context.Context, batch, prior *domain.Batch) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QSaveBatchAttestation,
		batch.ChurchID, batch.ID, string(prior.Status), string(batch.Status),
		batch.Primary.UserID, batch.Primary.Name, batch.Primary.At,
		batch.Secondary.UserID, batch.Secondary.Name, batch.Secondary.At,
		prior.Primary.Name, prior.Secondary.Name,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

// Finalize runs the guarded transition and returns the stored batch. When the
// guard matches nothing the caller gets domain.ErrConflict.
func (r *BatchRepositoryPG) Finalize(ctx context.Context, churchID, id, userID string) (*domain.Batch, error) {
	var finalizedID string
	if err := r.sql.QueryRow(ctx, sqlinline.QFinalizeBatch, churchID, id, userID).Scan(&finalizedID); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrConflict
		}
		return nil, err
	}
	return r.Get(ctx, churchID, finalizedID)
}

// RecomputeTotals refreshes the cached totals from the donation rows.
func (r *BatchRepositoryPG) RecomputeTotals(ctx context.Context, churchID, id string) (domain.BatchTotals, error) {
	var t domain.BatchTotals
	row := r.sql.QueryRow(ctx, sqlinline.QRecomputeBatchTotals, churchID, id)
	if err := row.Scan(&t.TotalCents, &t.CashCents, &t.CheckCents, &t.DonationCount); err != nil {
		if infra.IsNoRows(err) {
			return t, domain.ErrConflict
		}
		return t, err
	}
	return t, nil
}

// Dashboard aggregates open work, year-to-date totals and the recent trend.
func (r *BatchRepositoryPG) Dashboard(ctx context.Context, churchID string, now time.Time) (*domain.DashboardSummary, error) {
	var s domain.DashboardSummary
	row := r.sql.QueryRow(ctx, sqlinline.QDashboardCounts, churchID, now)
	if err := row.Scan(&s.OpenBatches, &s.ClosedBatches, &s.YearToDateCents, &s.YearCashCents, &s.YearCheckCents); err != nil {
		return nil, err
	}

	rows, err := r.sql.Query(ctx, sqlinline.QDashboardTrend, churchID, dashboardTrendSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var p domain.BatchTrendPoint
		if err := rows.Scan(&p.BatchID, &p.Name, &p.CountDate, &p.TotalCents); err != nil {
			return nil, err
		}
		s.Trend = append(s.Trend, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if len(s.Trend) > 0 {
		last, err := r.Get(ctx, churchID, s.Trend[0].BatchID)
		if err != nil {
			return nil, err
		}
		s.LastFinalized = last
	}
	// oldest first for charting
	for i, j := 0, len(s.Trend)-1; i < j; i, j = i+1, j-1 {
		s.Trend[i], s.Trend[j] = s.Trend[j], s.Trend[i]
	}
	return &s, nil
}
