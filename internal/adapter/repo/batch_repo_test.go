package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
	"github.com/jmspivey7/PlateSync-sub002/internal/sqlinline"
)

func batchRow(id string, status domain.BatchStatus, total int64) []any {
	now := time.Date(2026, 10, 4, 12, 0, 0, 0, time.UTC)
	return []any{
		id, "church-1", "Sunday - Oct 4, 2026", nil, "",
		now, status, total, total, int64(0), 1, "",
		"user-1", "Alice Smith", now,
		"user-2", "Bob Jones", now,
		"user-2", now, "user-1", now, now,
	}
}

func TestBatchFinalizeGuardMiss(t *testing.T) {
	sql := &stubSQL{t: t, rows: []pgx.Row{scriptedRow{err: pgx.ErrNoRows}}}
	repo := NewBatchRepository(sql)

	_, err := repo.Finalize(context.Background(), "church-1", "batch-1", "user-2")
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("Finalize error = %v, want ErrConflict", err)
	}
	if len(sql.calls) != 1 || sql.calls[0].query != sqlinline.QFinalizeBatch {
		t.Fatalf("unexpected calls: %#v", sql.calls)
	}
}

func TestBatchFinalizeReloads(t *testing.T) {
	sql := &stubSQL{t: t, rows: []pgx.Row{
		rowOf("batch-1"),
		rowOf(batchRow("batch-1", domain.BatchStatusFinalized, 5000)...),
	}}
	repo := NewBatchRepository(sql)

	b, err := repo.Finalize(context.Background(), "church-1", "batch-1", "user-2")
	if err != nil {
		t.Fatalf("Finalize error: %v", err)
	}
	if b.Status != domain.BatchStatusFinalized || b.TotalCents != 5000 {
		t.Fatalf("unexpected batch: %+v", b)
	}
	if b.ServiceOptionID != nil {
		t.Fatalf("ServiceOptionID = %v, want nil", *b.ServiceOptionID)
	}
	if b.Secondary.Name != "Bob Jones" || b.FinalizedAt == nil {
		t.Fatalf("attestation not scanned: %+v", b.Secondary)
	}
}

func TestBatchSetStatusConflict(t *testing.T) {
	sql := &stubSQL{t: t, tags: []pgconn.CommandTag{pgconn.NewCommandTag("UPDATE 0")}}
	repo := NewBatchRepository(sql)

	err := repo.SetStatus(context.Background(), "church-1", "batch-1", domain.BatchStatusClosed, domain.BatchStatusOpen, true)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("SetStatus error = %v, want ErrConflict", err)
	}
	args := sql.calls[0].args
	if args[2] != "CLOSED" || args[3] != "OPEN" || args[4] != true {
		t.Fatalf("unexpected args: %#v", args)
	}
}

func TestBatchSaveAttestationGuardsPriorNames(t *testing.T) {
	sql := &stubSQL{t: t, tags: []pgconn.CommandTag{pgconn.NewCommandTag("UPDATE 0")}}
	repo := NewBatchRepository(sql)

	prior := &domain.Batch{ID: "batch-1", ChurchID: "church-1", Status: domain.BatchStatusClosed,
		Primary: domain.Attestation{Name: "Mary Counter"}}
	next := *prior
	next.Secondary = domain.Attestation{Name: "Joe Verifier"}

	err := repo.SaveAttestation(context.Background(), &next, prior)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("SaveAttestation error = %v, want ErrConflict", err)
	}
	if sql.calls[0].query != sqlinline.QSaveBatchAttestation {
		t.Fatalf("unexpected query: %q", sql.calls[0].query)
	}
	args := sql.calls[0].args
	if args[2] != "CLOSED" || args[8] != "Joe Verifier" || args[10] != "Mary Counter" || args[11] != "" {
		t.Fatalf("unexpected args: %#v", args)
	}
}

func TestBatchCreatePassesOptionalIDsAsText(t *testing.T) {
	now := time.Now()
	sql := &stubSQL{t: t, rows: []pgx.Row{rowOf("batch-9", domain.BatchStatusOpen, now, now)}}
	repo := NewBatchRepository(sql)

	b := &domain.Batch{ChurchID: "church-1", Name: "Count", CountDate: now}
	if err := repo.Create(context.Background(), b); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if b.ID != "batch-9" || b.Status != domain.BatchStatusOpen {
		t.Fatalf("unexpected batch: %+v", b)
	}
	if sql.calls[0].args[2] != "" || sql.calls[0].args[5] != "" {
		t.Fatalf("optional ids should be empty strings: %#v", sql.calls[0].args)
	}
}

func TestBatchDashboardOrdersTrendOldestFirst(t *testing.T) {
	d1 := time.Date(2026, 9, 27, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 10, 4, 0, 0, 0, 0, time.UTC)
	sql := &stubSQL{
		t: t,
		rows: []pgx.Row{
			rowOf(2, 1, int64(90000), int64(60000), int64(30000)),
			rowOf(batchRow("b2", domain.BatchStatusFinalized, 5000)...),
		},
		sets: [][][]any{{
			{"b2", "Oct 4", d2, int64(5000)},
			{"b1", "Sep 27", d1, int64(4000)},
		}},
	}
	repo := NewBatchRepository(sql)

	s, err := repo.Dashboard(context.Background(), "church-1", d2)
	if err != nil {
		t.Fatalf("Dashboard error: %v", err)
	}
	if s.OpenBatches != 2 || s.ClosedBatches != 1 || s.YearToDateCents != 90000 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if len(s.Trend) != 2 || s.Trend[0].BatchID != "b1" || s.Trend[1].BatchID != "b2" {
		t.Fatalf("unexpected trend: %+v", s.Trend)
	}
	if s.LastFinalized == nil || s.LastFinalized.ID != "b2" {
		t.Fatalf("unexpected last finalized: %+v", s.LastFinalized)
	}
}

func TestBatchMalformedIDIsNotFound(t *testing.T) {
	badUUID := &pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`}

	sql := &stubSQL{t: t, rows: []pgx.Row{scriptedRow{err: badUUID}}}
	if _, err := NewBatchRepository(sql).Get(context.Background(), "church-1", "abc"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Get error = %v, want ErrNotFound", err)
	}

	sql = &stubSQL{t: t, execErr: badUUID}
	if err := NewBatchRepository(sql).Delete(context.Background(), "church-1", "abc"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Delete error = %v, want ErrNotFound", err)
	}
}
