package infra

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsNoRows(t *testing.T) {
	if !IsNoRows(fmt.Errorf("wrapped: %w", pgx.ErrNoRows)) {
		t.Fatalf("IsNoRows should see through wrapping")
	}
	if IsNoRows(fmt.Errorf("other")) {
		t.Fatalf("IsNoRows matched unrelated error")
	}
}

func TestConstraintViolations(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	fk := &pgconn.PgError{Code: "23503"}

	if !IsUniqueViolation(unique) || IsUniqueViolation(fk) {
		t.Fatalf("IsUniqueViolation misclassified errors")
	}
	if !IsForeignKeyViolation(fk) || IsForeignKeyViolation(unique) {
		t.Fatalf("IsForeignKeyViolation misclassified errors")
	}
}

func TestIsInvalidTextRepresentation(t *testing.T) {
	if !IsInvalidTextRepresentation(fmt.Errorf("get batch: %w", &pgconn.PgError{Code: "22P02"})) {
		t.Fatalf("IsInvalidTextRepresentation should see through wrapping")
	}
	if IsInvalidTextRepresentation(&pgconn.PgError{Code: "23505"}) {
		t.Fatalf("IsInvalidTextRepresentation matched a unique violation")
	}
}
