package domain

import (
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "20", want: 2000},
		{in: "$1,250.5", want: 125050},
		{in: "0.01", want: 1},
		{in: ".75", want: 75},
		{in: " 99.99 ", want: 9999},
		{in: "0", wantErr: true},
		{in: "-5", wantErr: true},
		{in: "1.234", wantErr: true},
		{in: "12.", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range tests {
		got, err := ParseAmount(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("ParseAmount(%q) error = %v, want ErrValidation", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseAmount(%q) unexpected error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseAmount(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestFormatCents(t *testing.T) {
	tests := map[int64]string{
		0:         "$0.00",
		5:         "$0.05",
		123456:    "$1,234.56",
		100000000: "$1,000,000.00",
		-250:      "-$2.50",
	}
	for in, want := range tests {
		if got := FormatCents(in); got != want {
			t.Fatalf("FormatCents(%d) = %q, want %q", in, got, want)
		}
	}
	if got := DecimalCents(123405); got != "1234.05" {
		t.Fatalf("DecimalCents = %q", got)
	}
}
