package credentials

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type stubExecutor struct {
	token     string
	refresh   string
	expiresAt *time.Time
	props     []byte
	err       error
	row       struct {
		args []any
	}
	exec struct {
		query string
		args  []any
	}
}

func (s *stubExecutor) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.exec.query = query
	s.exec.args = args
	return pgconn.CommandTag{}, s.err
}

func (s *stubExecutor) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	s.row.args = args
	return stubRow{s: s}
}

func (s *stubExecutor) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

type stubRow struct {
	s *stubExecutor
}

func (r stubRow) Scan(dest ...any) error {
	if r.s.err != nil {
		return r.s.err
	}
	if len(dest) != 4 {
		return errors.New("unexpected dest count")
	}
	*dest[0].(*string) = r.s.token
	*dest[1].(*string) = r.s.refresh
	*dest[2].(**time.Time) = r.s.expiresAt
	*dest[3].(*[]byte) = r.s.props
	return nil
}

func TestSendGridAPIKey(t *testing.T) {
	exec := &stubExecutor{token: " SG.abc123 "}
	store := NewStore(exec)
	key, err := store.SendGridAPIKey(context.Background())
	if err != nil {
		t.Fatalf("SendGridAPIKey error: %v", err)
	}
	if key != "SG.abc123" {
		t.Fatalf("expected SG.abc123, got %q", key)
	}
	if exec.row.args[0] != ProviderSendGrid || exec.row.args[1] != ScopeSystem {
		t.Fatalf("unexpected lookup args %v", exec.row.args)
	}
}

func TestSendGridAPIKey_NoRows(t *testing.T) {
	store := NewStore(&stubExecutor{err: pgx.ErrNoRows})
	key, err := store.SendGridAPIKey(context.Background())
	if err != nil {
		t.Fatalf("SendGridAPIKey error: %v", err)
	}
	if key != "" {
		t.Fatalf("expected empty key, got %q", key)
	}
}

func TestSetSendGridAPIKey(t *testing.T) {
	exec := &stubExecutor{}
	store := NewStore(exec)
	if err := store.SetSendGridAPIKey(context.Background(), "secret"); err != nil {
		t.Fatalf("SetSendGridAPIKey error: %v", err)
	}
	if len(exec.exec.args) != 6 {
		t.Fatalf("expected 6 args, got %d", len(exec.exec.args))
	}
	if v, ok := exec.exec.args[2].(string); !ok || v != "secret" {
		t.Fatalf("expected secret argument, got %T %v", exec.exec.args[2], exec.exec.args[2])
	}
	if v, ok := exec.exec.args[5].([]byte); !ok || string(v) != "{}" {
		t.Fatalf("expected empty properties, got %v", exec.exec.args[5])
	}
}

func TestSetSendGridAPIKeyEmpty(t *testing.T) {
	store := NewStore(&stubExecutor{})
	if err := store.SetSendGridAPIKey(context.Background(), " "); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestTokenDecodesProperties(t *testing.T) {
	exp := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	store := NewStore(&stubExecutor{
		token:     "access",
		refresh:   "refresh",
		expiresAt: &exp,
		props:     []byte(`{"organization_id":"42"}`),
	})
	tok, err := store.Token(context.Background(), ProviderPlanningCenter, "church-1")
	if err != nil {
		t.Fatalf("Token error: %v", err)
	}
	if tok == nil || tok.RefreshToken != "refresh" || !tok.ExpiresAt.Equal(exp) {
		t.Fatalf("unexpected token %+v", tok)
	}
	if tok.Properties["organization_id"] != "42" {
		t.Fatalf("unexpected properties %v", tok.Properties)
	}
}

func TestSaveTokenRequiresScope(t *testing.T) {
	store := NewStore(&stubExecutor{})
	if err := store.SaveToken(context.Background(), ProviderPlanningCenter, "", Token{AccessToken: "x"}); err == nil {
		t.Fatal("expected error for empty scope")
	}
}

func TestDeleteToken(t *testing.T) {
	exec := &stubExecutor{}
	store := NewStore(exec)
	if err := store.DeleteToken(context.Background(), ProviderPlanningCenter, "church-1"); err != nil {
		t.Fatalf("DeleteToken error: %v", err)
	}
	if len(exec.exec.args) != 2 || exec.exec.args[1] != "church-1" {
		t.Fatalf("unexpected delete args %v", exec.exec.args)
	}
}
