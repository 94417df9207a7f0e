package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
)

func TestUserCreateDuplicateEmail(t *testing.T) {
	sql := &stubSQL{t: t, rows: []pgx.Row{scriptedRow{err: &pgconn.PgError{Code: "23505"}}}}
	repo := NewUserRepository(sql)

	u := &domain.User{ChurchID: "c-1", Email: "a@example.com", Role: domain.RoleUsher}
	if err := repo.Create(context.Background(), u); !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("Create error = %v, want ErrDuplicate", err)
	}
}

func TestUserGetByEmailNotFound(t *testing.T) {
	repo := NewUserRepository(&stubSQL{t: t})
	if _, err := repo.GetByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetByEmail error = %v, want ErrNotFound", err)
	}
}

func TestChurchRegisterScansOwner(t *testing.T) {
	now := time.Now()
	sql := &stubSQL{t: t, rows: []pgx.Row{rowOf(
		"c-1", "Grace Church", "owner@example.com", "", "", "", domain.ChurchStatusActive, now, now,
		"u-1", now, now,
	)}}
	repo := NewChurchRepository(sql)

	church, owner, err := repo.Register(context.Background(), domain.Registration{
		ChurchName: "Grace Church",
		Email:      "owner@example.com",
		FirstName:  "Ann",
		LastName:   "Lee",
		TrialEnds:  now.Add(30 * 24 * time.Hour),
	}, "hash")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if church.ID != "c-1" || owner.ID != "u-1" || owner.ChurchID != "c-1" {
		t.Fatalf("unexpected result: %+v %+v", church, owner)
	}
	if owner.Role != domain.RoleAccountOwner || !owner.IsActive {
		t.Fatalf("owner role/active mismatch: %+v", owner)
	}
}

func TestPasswordResetConsumeUnknownToken(t *testing.T) {
	repo := NewPasswordResetRepository(&stubSQL{t: t})
	if _, err := repo.Consume(context.Background(), "hash", time.Now()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Consume error = %v, want ErrNotFound", err)
	}
}
