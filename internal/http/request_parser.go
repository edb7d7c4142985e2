package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"pgledger/internal/core"
)

const maxBodyBytes = 1 << 20

// RequestBodyParser reads a JSON or urlencoded body once and serves field lookups from it.
// JSON numbers are kept as their literal text so amounts reach decimal parsing unrounded.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{contentType: r.Header.Get("Content-Type")}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	}
	return p
}

func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true
	if p.err != nil {
		return p.err
	}

	body := bytes.TrimSpace(p.body)
	if len(body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if body[0] == '{' || strings.HasPrefix(p.contentType, "application/json") {
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		p.jsonData = make(map[string]any)
		if err := dec.Decode(&p.jsonData); err != nil {
			p.err = fmt.Errorf("decode JSON body: %w", err)
			return p.err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(body))
	if p.err != nil {
		p.err = fmt.Errorf("decode form body: %w", p.err)
	}
	return p.err
}

// Get returns the trimmed, sanitized value for key, or "".
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput trims whitespace and strips control characters other than tab and newlines.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

func (p *RequestBodyParser) OnboardingRequest() core.OnboardingRequest {
	return core.OnboardingRequest{
		Name:            p.Get("name"),
		JoiningDate:     p.Get("joining_date"),
		SecurityDeposit: p.Get("security_deposit"),
		DepositAmount:   p.Get("security_deposit_amount"),
		Food:            p.Get("food"),
		RegistrationFee: p.Get("registration_fee"),
	}
}

func (p *RequestBodyParser) FeePaymentRequest() core.FeePaymentRequest {
	return core.FeePaymentRequest{
		CustomerID: p.Get("customer_id"),
		Month:      p.Get("month"),
		Amount:     p.Get("amount"),
	}
}

// ManualIncome requires a date and a parseable amount; the service checks the rest.
func (p *RequestBodyParser) ManualIncome() (core.ManualIncome, error) {
	date, err := core.ParseDate(p.Get("date"))
	if err != nil {
		return core.ManualIncome{}, core.Invalid("date", err)
	}
	amount, err := core.ParseMoney(p.Get("amount"))
	if err != nil {
		return core.ManualIncome{}, core.Invalid("amount", err)
	}
	return core.ManualIncome{
		Date:        date,
		Source:      p.Get("source"),
		Amount:      amount,
		Description: p.Get("description"),
	}, nil
}

func (p *RequestBodyParser) Expense() (core.Expense, error) {
	date, err := core.ParseDate(p.Get("date"))
	if err != nil {
		return core.Expense{}, core.Invalid("date", err)
	}
	amount, err := core.ParseMoney(p.Get("amount"))
	if err != nil {
		return core.Expense{}, core.Invalid("amount", err)
	}
	return core.Expense{
		Date:     date,
		Category: p.Get("category"),
		Amount:   amount,
		Note:     p.Get("note"),
	}, nil
}

// parseMonthQuery reads an optional ?month=YYYY-MM. A missing value returns nil.
func parseMonthQuery(r *http.Request) (*core.Month, error) {
	v := strings.TrimSpace(r.URL.Query().Get("month"))
	if v == "" {
		return nil, nil
	}
	m, err := core.ParseMonth(v)
	if err != nil {
		return nil, core.Invalid("month", err)
	}
	return &m, nil
}
