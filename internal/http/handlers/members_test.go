package handlers

import (
	"strings"
	"testing"
)

func TestParseMemberCSV(t *testing.T) {
	src := "\ufeffFirst Name,Last Name,Email,Phone\n" +
		"JOHN,SMITH,John@Example.com, 555-1234\n" +
		",,,\n" +
		"mary,jones,not-an-email,\n" +
		"Alice,McDonald,,\n"

	members, result, err := parseMemberCSV(strings.NewReader(src), "church-1")
	if err != nil {
		t.Fatalf("parseMemberCSV returned error: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
	if members[0].FirstName != "John" || members[0].LastName != "Smith" {
		t.Fatalf("names not normalized: %+v", members[0])
	}
	if members[0].Email != "john@example.com" || members[0].Phone != "555-1234" {
		t.Fatalf("contact not normalized: %+v", members[0])
	}
	if members[1].LastName != "McDonald" || members[1].ChurchID != "church-1" {
		t.Fatalf("unexpected second member: %+v", members[1])
	}
	if result.Skipped != 1 || len(result.Errors) != 1 || !strings.HasPrefix(result.Errors[0], "line 4:") {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestParseMemberCSVRequiresNameColumns(t *testing.T) {
	if _, _, err := parseMemberCSV(strings.NewReader("email,phone\na@b.co,1\n"), "c"); err == nil {
		t.Fatalf("expected header error")
	}
	if _, _, err := parseMemberCSV(strings.NewReader(""), "c"); err == nil {
		t.Fatalf("expected empty file error")
	}
}
