package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
)

func TestDonationCreateRejectsClosedBatch(t *testing.T) {
	sql := &stubSQL{t: t, rows: []pgx.Row{scriptedRow{err: pgx.ErrNoRows}}}
	repo := NewDonationRepository(sql)

	d := &domain.Donation{ChurchID: "church-1", BatchID: "batch-1", Type: domain.DonationCash, AmountCents: 500}
	if err := repo.Create(context.Background(), d); !errors.Is(err, domain.ErrBatchNotOpen) {
		t.Fatalf("Create error = %v, want ErrBatchNotOpen", err)
	}
}

func TestDonationCreateMissingMember(t *testing.T) {
	fk := &pgconn.PgError{Code: "23503"}
	sql := &stubSQL{t: t, rows: []pgx.Row{scriptedRow{err: fk}}}
	repo := NewDonationRepository(sql)

	member := "missing"
	d := &domain.Donation{ChurchID: "church-1", BatchID: "batch-1", MemberID: &member, Type: domain.DonationCash, AmountCents: 500}
	if err := repo.Create(context.Background(), d); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Create error = %v, want ErrNotFound", err)
	}
	if sql.calls[0].args[2] != "missing" {
		t.Fatalf("member id not forwarded: %#v", sql.calls[0].args)
	}
}

func TestDonationDeleteOutsideOpenBatch(t *testing.T) {
	sql := &stubSQL{t: t, tags: []pgconn.CommandTag{pgconn.NewCommandTag("DELETE 0")}}
	repo := NewDonationRepository(sql)

	if err := repo.Delete(context.Background(), "church-1", "d-1"); !errors.Is(err, domain.ErrBatchNotOpen) {
		t.Fatalf("Delete error = %v, want ErrBatchNotOpen", err)
	}
}

func TestDonationSetNotificationStatusSkipsEmpty(t *testing.T) {
	sql := &stubSQL{t: t}
	repo := NewDonationRepository(sql)

	if err := repo.SetNotificationStatus(context.Background(), "church-1", nil, domain.NotificationQueued); err != nil {
		t.Fatalf("SetNotificationStatus error: %v", err)
	}
	if len(sql.calls) != 0 {
		t.Fatalf("expected no statements, got %d", len(sql.calls))
	}
}
