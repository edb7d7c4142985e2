package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"5000", "5000", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"0", "0", true},
		{"1.005", "1.005", true}, // no rounding
		{"1234.5678", "1234.5678", true},
		{"99999999999.99", "99999999999.99", true},
		{" 2.50 ", "2.5", true},
		{"-1", "", false},
		{"+1", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
		{".", "", false},
		{"5.", "", false},
		{"1e5", "", false},
		{"1E5", "", false},
		{"1e20000000", "", false},
		{"1234567890123456789012345678901234567890", "", false},
		{"999999999999999999", "999999999999999999", true},
		{"0001234", "1234", true},
		{"1.12345678", "1.12345678", true},
		{"1.123456789", "", false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestParseMoneyOrZero(t *testing.T) {
	cases := []struct {
		in      string
		out     string
		wantErr bool
	}{
		{"", "0", false},
		{"abc", "0", false},
		{"500", "500", false},
		{"12,5", "12.5", false},
		{"-10", "0", true},
		{"e", "0", false},
		{"1e", "0", false},
		{"1e5", "0", true},
		{"1e20000000", "0", true},
		{"1234567890123456789012345678901234567890", "0", true},
		{"0.000000001", "0", true},
	}
	for _, tc := range cases {
		got, err := ParseMoneyOrZero(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidAmount) {
				t.Fatalf("%q expected ErrInvalidAmount, got %v", tc.in, err)
			}
			continue
		}
		if err != nil || got.String() != tc.out {
			t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Amount Money `json:"amount"`
	}{MustMoney("1234.50")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"amount":1234.5}` {
		t.Fatalf("unexpected json %s", b)
	}
}

func TestMoneyUnmarshalRejectsExponents(t *testing.T) {
	var v struct {
		Amount Money `json:"amount"`
	}
	if err := json.Unmarshal([]byte(`{"amount":1e20000000}`), &v); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if err := json.Unmarshal([]byte(`{"amount":"3000.50"}`), &v); err != nil || v.Amount.String() != "3000.5" {
		t.Fatalf("quoted amount: got %s (err=%v)", v.Amount, err)
	}
}

func TestSum(t *testing.T) {
	got := Sum(MustMoney("0.1"), MustMoney("0.2"), MustMoney("5000"))
	if !got.Equal(MustMoney("5000.3")) {
		t.Fatalf("expected 5000.3, got %s", got)
	}
	if !Sum().IsZero() {
		t.Fatalf("empty sum should be zero")
	}
}
