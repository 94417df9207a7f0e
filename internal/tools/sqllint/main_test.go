package main

import (
	"strings"
	"testing"
)

const okSource = "package q\n\nconst cols = `id, name`\n\n" +
	"const QOne = `--sql 11111111-2222-3333-4444-555555555555\nselect ` + cols + ` from t`\n"

func TestLintSourceAcceptsMarkedConcatenation(t *testing.T) {
	vs, err := lintSource("ok.go", []byte(okSource), map[string]string{})
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if len(vs) != 0 {
		t.Fatalf("unexpected violations: %+v", vs)
	}
}

func TestLintSourceFlagsMissingMarker(t *testing.T) {
	src := "package q\n\nconst QBad = `select 1`\n"
	vs, err := lintSource("bad.go", []byte(src), map[string]string{})
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if len(vs) != 1 || vs[0].name != "QBad" || vs[0].line != 3 {
		t.Fatalf("violations = %+v", vs)
	}
}

func TestLintSourceFlagsReusedMarker(t *testing.T) {
	seen := map[string]string{}
	if _, err := lintSource("a.go", []byte(okSource), seen); err != nil {
		t.Fatalf("lint: %v", err)
	}
	vs, err := lintSource("b.go", []byte(okSource), seen)
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if len(vs) != 1 || !strings.Contains(vs[0].message, "a.go") {
		t.Fatalf("violations = %+v", vs)
	}
}
