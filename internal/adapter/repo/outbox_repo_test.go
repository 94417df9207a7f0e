package repo

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"

	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
)

func TestOutboxMarkFailedBoundsAttempts(t *testing.T) {
	sql := &stubSQL{t: t, rows: []pgx.Row{rowOf(true)}}
	repo := NewOutboxRepository(sql)

	permanent, err := repo.MarkFailed(context.Background(), "msg-1", strings.Repeat("x", 2000))
	if err != nil {
		t.Fatalf("MarkFailed error: %v", err)
	}
	if !permanent {
		t.Fatalf("expected permanent failure")
	}
	args := sql.calls[0].args
	if len(args[1].(string)) != 1000 {
		t.Fatalf("reason not truncated: %d", len(args[1].(string)))
	}
	if args[2] != domain.MaxDeliveryAttempts {
		t.Fatalf("max attempts arg = %v", args[2])
	}
}

func TestOutboxMarkFailedKeepsReasonValidUTF8(t *testing.T) {
	// 999 ASCII bytes then a 3-byte rune straddling the 1000-byte limit.
	reason := strings.Repeat("x", 999) + "€ and more"
	sql := &stubSQL{t: t, rows: []pgx.Row{rowOf(false)}}

	if _, err := NewOutboxRepository(sql).MarkFailed(context.Background(), "msg-1", reason); err != nil {
		t.Fatalf("MarkFailed error: %v", err)
	}
	got := sql.calls[0].args[1].(string)
	if !utf8.ValidString(got) {
		t.Fatalf("stored reason is not valid UTF-8")
	}
	if got != strings.Repeat("x", 999) {
		t.Fatalf("reason truncated to %d bytes, want 999", len(got))
	}
}

func TestTruncateUTF8(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"héllo", 2, "h"},
		{"héllo", 3, "hé"},
		{"日本語", 7, "日本"},
		{"", 0, ""},
	}
	for _, tc := range cases {
		if got := truncateUTF8(tc.in, tc.n); got != tc.want {
			t.Fatalf("truncateUTF8(%q, %d) = %q, want %q", tc.in, tc.n, got, tc.want)
		}
	}
}

func TestOutboxClaimScansMessages(t *testing.T) {
	now := time.Now()
	church := "church-1"
	sql := &stubSQL{t: t, sets: [][][]any{{
		{"m-1", church, domain.TemplateDonationConfirmation, "a@example.com", "A", "Thanks", "<p>hi</p>", "hi", domain.OutboxSending, 1, "", "d-1", now},
		{"m-2", nil, domain.TemplateWelcome, "b@example.com", "", "Welcome", "<p>w</p>", "", domain.OutboxSending, 2, "timeout", nil, now},
	}}}
	repo := NewOutboxRepository(sql)

	msgs, err := repo.Claim(context.Background(), 10)
	if err != nil {
		t.Fatalf("Claim error: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("claimed %d, want 2", len(msgs))
	}
	if msgs[0].RelatedID == nil || *msgs[0].RelatedID != "d-1" || msgs[0].ChurchID == nil {
		t.Fatalf("unexpected first message: %+v", msgs[0])
	}
	if msgs[1].ChurchID != nil || msgs[1].Attempts != 2 {
		t.Fatalf("unexpected second message: %+v", msgs[1])
	}
}

func TestOutboxReclaimStaleUsesSeconds(t *testing.T) {
	sql := &stubSQL{t: t}
	repo := NewOutboxRepository(sql)

	if _, err := repo.ReclaimStale(context.Background(), 10*time.Minute); err != nil {
		t.Fatalf("ReclaimStale error: %v", err)
	}
	if sql.calls[0].args[0] != 600 {
		t.Fatalf("seconds arg = %v, want 600", sql.calls[0].args[0])
	}
}
