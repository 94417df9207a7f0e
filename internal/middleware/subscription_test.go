package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
)

func TestRequireUsableChurch(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		role  domain.UserRole
		want  int
		calls int
	}{
		{name: "usable", role: domain.RoleUsher, want: http.StatusOK, calls: 1},
		{name: "suspended", role: domain.RoleUsher, err: domain.ErrChurchSuspended, want: http.StatusForbidden, calls: 1},
		{name: "lapsed", role: domain.RoleAdmin, err: domain.ErrSubscriptionInactive, want: http.StatusPaymentRequired, calls: 1},
		{name: "lookup failure", role: domain.RoleAdmin, err: errors.New("db down"), want: http.StatusInternalServerError, calls: 1},
		{name: "global admin bypass", role: domain.RoleGlobalAdmin, err: domain.ErrSubscriptionInactive, want: http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			calls := 0
			check := func(ctx context.Context, churchID string) error {
				calls++
				if churchID != "c-1" {
					t.Fatalf("churchID = %q", churchID)
				}
				return tc.err
			}
			handler := RequireUsableChurch(check)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			churchID := "c-1"
			if tc.role == domain.RoleGlobalAdmin {
				churchID = ""
			}
			req = req.WithContext(ContextWithPrincipal(req.Context(), Principal{UserID: "u-1", ChurchID: churchID, Role: tc.role}))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
			if calls != tc.calls {
				t.Fatalf("check calls = %d, want %d", calls, tc.calls)
			}
		})
	}
}
