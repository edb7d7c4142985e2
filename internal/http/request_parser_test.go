package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pgledger/internal/core"
)

func newParser(t *testing.T, contentType, body string) *RequestBodyParser {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	p := NewRequestBodyParser(httptest.NewRecorder(), req)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return p
}

func TestRequestBodyParser_Form(t *testing.T) {
	p := newParser(t, "application/x-www-form-urlencoded", "name=+Asha+&amount=1500&note=a%00b")

	if p.IsJSON() {
		t.Error("form body reported as JSON")
	}
	if got := p.Get("name"); got != "Asha" {
		t.Errorf("Get(name) = %q, want Asha", got)
	}
	if got := p.Get("note"); got != "ab" {
		t.Errorf("control characters not stripped: %q", got)
	}
	if got := p.Get("missing"); got != "" {
		t.Errorf("Get(missing) = %q", got)
	}
}

func TestRequestBodyParser_JSONKeepsExactNumbers(t *testing.T) {
	p := newParser(t, "application/json", `{"customer_id": 7, "month": "2024-03", "amount": 99999999999.99}`)

	if !p.IsJSON() {
		t.Fatal("expected JSON body")
	}
	req := p.FeePaymentRequest()
	if req.CustomerID != "7" || req.Month != "2024-03" || req.Amount != "99999999999.99" {
		t.Errorf("FeePaymentRequest() = %+v", req)
	}
}

func TestRequestBodyParser_EmptyBody(t *testing.T) {
	p := newParser(t, "", "")
	if p.Get("name") != "" {
		t.Error("empty body should yield empty values")
	}
}

func TestRequestBodyParser_BadJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	p := NewRequestBodyParser(httptest.NewRecorder(), req)
	if err := p.Parse(); err == nil {
		t.Fatal("expected decode error")
	}
	// Parse is memoized.
	if err := p.Parse(); err == nil {
		t.Fatal("second Parse() should return the same error")
	}
}

func TestRequestBodyParser_OnboardingRequest(t *testing.T) {
	p := newParser(t, "", "name=Ravi&joining_date=2024-01-15&security_deposit=Yes&security_deposit_amount=5000&food=Veg&registration_fee=")
	got := p.OnboardingRequest()
	want := core.OnboardingRequest{
		Name:            "Ravi",
		JoiningDate:     "2024-01-15",
		SecurityDeposit: "Yes",
		DepositAmount:   "5000",
		Food:            "Veg",
	}
	if got != want {
		t.Errorf("OnboardingRequest() = %+v, want %+v", got, want)
	}
}

func TestRequestBodyParser_ManualIncomeAndExpense(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"valid", "date=2024-02-10&source=Laundry&amount=120.50&description=x", ""},
		{"bad date", "date=10/02/2024&source=Laundry&amount=1", "date"},
		{"bad amount", "date=2024-02-10&source=Laundry&amount=lots", "amount"},
		{"missing amount", "date=2024-02-10&source=Laundry", "amount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newParser(t, "", tt.body)
			_, incomeErr := p.ManualIncome()
			_, expenseErr := p.Expense()
			for _, err := range []error{incomeErr, expenseErr} {
				if tt.wantField == "" {
					if err != nil {
						t.Fatalf("unexpected error %v", err)
					}
					continue
				}
				var ve *core.ValidationError
				if !errors.As(err, &ve) || ve.Field != tt.wantField {
					t.Fatalf("error = %v, want validation on %s", err, tt.wantField)
				}
			}
		})
	}
}

func TestParseMonthQuery(t *testing.T) {
	m, err := parseMonthQuery(httptest.NewRequest(http.MethodGet, "/expense", nil))
	if m != nil || err != nil {
		t.Fatalf("no month: got %v, %v", m, err)
	}

	m, err = parseMonthQuery(httptest.NewRequest(http.MethodGet, "/expense?month=2024-03", nil))
	if err != nil || m == nil || m.String() != "2024-03" {
		t.Fatalf("month: got %v, %v", m, err)
	}

	if _, err = parseMonthQuery(httptest.NewRequest(http.MethodGet, "/expense?month=2024-13", nil)); !core.IsValidation(err) {
		t.Fatalf("bad month: got %v", err)
	}
}
