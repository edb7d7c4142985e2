package google

import (
	"testing"
)

func TestParseMirrorIDs(t *testing.T) {
	values := [][]interface{}{
		{"Date", "Source", "Amount", "Description", "Kind", "ID"},
		{"2024-01-10", "Security Deposit", "5000", "Security deposit from Asha", "security_deposit", "1"},
		{},
		{"2024-02-01", "Monthly Fee", "3000", "Monthly fee from Asha (2024-02)", "monthly_fee", 3.0},
	}
	ids, err := parseMirrorIDs(values)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 3 {
		t.Fatalf("unexpected ids %v", ids)
	}
}

func TestParseMirrorIDs_Empty(t *testing.T) {
	ids, err := parseMirrorIDs(nil)
	if err != nil || len(ids) != 0 {
		t.Fatalf("expected no ids, got %v (%v)", ids, err)
	}
}

func TestParseMirrorIDs_BadHeader(t *testing.T) {
	_, err := parseMirrorIDs([][]interface{}{{"Date", "Amount"}})
	if err == nil {
		t.Fatal("expected error for missing ID column")
	}
}

func TestParseMirrorIDs_BadID(t *testing.T) {
	_, err := parseMirrorIDs([][]interface{}{{"ID"}, {"abc"}})
	if err == nil {
		t.Fatal("expected error for non-numeric id")
	}
}
