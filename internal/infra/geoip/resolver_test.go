package geoip

import (
	"errors"
	"testing"
)

func TestOpenEmptyPath(t *testing.T) {
	r, err := Open("  ")
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if r.Available() {
		t.Fatal("expected nil resolver to be unavailable")
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close on nil resolver: %v", err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := Open("/nonexistent/GeoLite2-Country.mmdb"); err == nil {
		t.Fatal("expected error for missing database")
	}
}

func TestCountryCodeWithoutDatabase(t *testing.T) {
	var r *Resolver
	tests := []struct {
		ip      string
		wantErr error
	}{
		{ip: "127.0.0.1"},
		{ip: "10.1.2.3"},
		{ip: "fe80::1"},
		{ip: "8.8.8.8", wantErr: ErrUnavailable},
	}
	for _, tt := range tests {
		code, err := r.CountryCode(tt.ip)
		if !errors.Is(err, tt.wantErr) {
			t.Fatalf("CountryCode(%q) error = %v, want %v", tt.ip, err, tt.wantErr)
		}
		if code != "" {
			t.Fatalf("CountryCode(%q) = %q, want empty", tt.ip, code)
		}
	}
	if _, err := r.CountryCode("not-an-ip"); err == nil {
		t.Fatal("expected error for invalid ip")
	}
}
