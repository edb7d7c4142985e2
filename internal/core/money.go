// Package core provides money parsing and handling utilities.
//
// This file contains the Money type used for every amount in the ledger.
// Amounts are exact decimals: what the user submits is what gets posted.
package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an exact, non-negative decimal amount.
type Money struct {
	d decimal.Decimal
}

// Zero is the zero amount.
var Zero = Money{}

// NewMoney wraps a decimal value.
func NewMoney(d decimal.Decimal) Money {
	return Money{d: d}
}

// MustMoney parses s and panics on error. Intended for tests and constants.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Widest amount accepted, in digits before and after the decimal point.
const (
	MaxIntegerDigits  = 18
	MaxFractionDigits = 8
)

// ParseMoney converts a plain decimal string to Money without rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Signs, exponents, non-numeric input and amounts wider than
// MaxIntegerDigits.MaxFractionDigits are rejected with ErrInvalidAmount.
//
// Examples:
//
//	ParseMoney("5000")     -> 5000
//	ParseMoney("12,345")   -> 12.345
//	ParseMoney("-1")       -> ErrInvalidAmount
//	ParseMoney("1e5")      -> ErrInvalidAmount
func ParseMoney(s string) (Money, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if err := checkPlainDecimal(s); err != nil {
		return Money{}, err
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return Money{d: d}, nil
}

// ParseMoneyOrZero parses s, falling back to zero when s is empty or not a number.
// Anything that looks numeric but is not an acceptable amount (negative,
// exponent form, too wide) is reported so callers can reject it.
func ParseMoneyOrZero(s string) (Money, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if normalized == "" {
		return Zero, nil
	}
	m, err := ParseMoney(normalized)
	if err == nil {
		return m, nil
	}
	if !looksNumeric(normalized) {
		return Zero, nil
	}
	return Zero, err
}

// checkPlainDecimal accepts digits with at most one dot, within the amount bounds.
func checkPlainDecimal(s string) error {
	intPart, frac, hasDot := strings.Cut(s, ".")
	if intPart == "" && frac == "" {
		return ErrInvalidAmount
	}
	if hasDot && frac == "" {
		return ErrInvalidAmount
	}
	if !allDigits(intPart) || !allDigits(frac) {
		return ErrInvalidAmount
	}
	intPart = strings.TrimLeft(intPart, "0")
	if len(intPart) > MaxIntegerDigits {
		return fmt.Errorf("%w: more than %d integer digits", ErrInvalidAmount, MaxIntegerDigits)
	}
	if len(frac) > MaxFractionDigits {
		return fmt.Errorf("%w: more than %d decimal places", ErrInvalidAmount, MaxFractionDigits)
	}
	return nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// looksNumeric reports whether s is some number, signed or in exponent form.
func looksNumeric(s string) bool {
	s = strings.TrimLeft(s, "+-")
	mantissa, exp, hasExp := strings.Cut(strings.ToLower(s), "e")
	if hasExp {
		exp = strings.TrimLeft(exp, "+-")
		if exp == "" || !allDigits(exp) {
			return false
		}
	}
	intPart, frac, _ := strings.Cut(mantissa, ".")
	return intPart+frac != "" && allDigits(intPart) && allDigits(frac)
}

// Decimal returns the underlying decimal value.
func (m Money) Decimal() decimal.Decimal {
	return m.d
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.d.IsZero()
}

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m.d.IsPositive()
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{d: m.d.Add(o.d)}
}

// Equal compares amounts numerically, so 5000 equals 5000.00.
func (m Money) Equal(o Money) bool {
	return m.d.Equal(o.d)
}

// String returns the canonical decimal representation used for storage.
func (m Money) String() string {
	return m.d.String()
}

// MarshalJSON renders the amount as a bare JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.d.String()), nil
}

// UnmarshalJSON accepts both JSON numbers and quoted strings.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		*m = Zero
		return nil
	}
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Sum adds up a list of amounts.
func Sum(amounts ...Money) Money {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a.d)
	}
	return Money{d: total}
}
