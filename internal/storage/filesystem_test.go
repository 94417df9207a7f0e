package storage

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir(), "https://cdn.example.com/static/")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return s
}

func TestSanitizeKey(t *testing.T) {
	good := map[string]string{
		"logos/a.png":        "logos/a.png",
		"/logos//a.png":      "logos/a.png",
		"./logos/x/../a.png": "logos/a.png",
		`logos\a.png`:        "logos/a.png",
	}
	for in, want := range good {
		got, err := sanitizeKey(in)
		if err != nil || got != want {
			t.Fatalf("sanitizeKey(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	for _, in := range []string{"", " ", "..", "../etc/passwd", "logos/../../x"} {
		if _, err := sanitizeKey(in); err == nil {
			t.Fatalf("sanitizeKey(%q) expected error", in)
		}
	}
}

func TestWriteReadDelete(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	key, err := s.Write(ctx, "/logos/c1/a.png", []byte("data"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if key != "logos/c1/a.png" {
		t.Fatalf("key = %q", key)
	}
	got, err := s.Read(ctx, key)
	if err != nil || string(got) != "data" {
		t.Fatalf("Read = %q, %v", got, err)
	}
	if url := s.URL(key); url != "https://cdn.example.com/static/logos/c1/a.png" {
		t.Fatalf("URL = %q", url)
	}
	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Read after delete error = %v", err)
	}
	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
}

func TestSaveLogo(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	key, err := s.SaveLogo(ctx, "c1", "v1", pngHeader)
	if err != nil {
		t.Fatalf("SaveLogo: %v", err)
	}
	if !strings.HasPrefix(key, "logos/c1/") || !strings.HasSuffix(key, ".png") {
		t.Fatalf("key = %q", key)
	}
	if _, err := s.SaveLogo(ctx, "c1", "v2", []byte("plain text")); !errors.Is(err, ErrUnsupportedImage) {
		t.Fatalf("text upload error = %v", err)
	}
	big := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, MaxLogoBytes)...)
	if _, err := s.SaveLogo(ctx, "c1", "v3", big); !errors.Is(err, ErrUnsupportedImage) {
		t.Fatalf("oversized upload error = %v", err)
	}
}
