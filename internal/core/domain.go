package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

type (
	Date struct {
		time.Time
	}

	// Month is a year-month token such as 2024-03.
	Month struct {
		Year  int
		Month time.Month
	}

	// DepositFlag is the resolved security deposit answer given at onboarding.
	DepositFlag bool

	Customer struct {
		ID              int64       `json:"id"`
		Name            string      `json:"name"`
		JoiningDate     Date        `json:"joining_date"`
		Deposit         DepositFlag `json:"security_deposit"`
		DepositAmount   Money       `json:"security_deposit_amount"`
		Food            string      `json:"food"`
		RegistrationFee Money       `json:"registration_fee"`
	}

	// OnboardingRequest carries the raw onboarding form values.
	OnboardingRequest struct {
		Name            string
		JoiningDate     string
		SecurityDeposit string
		DepositAmount   string
		Food            string
		RegistrationFee string
	}

	Expense struct {
		ID       int64  `json:"id"`
		Date     Date   `json:"date"`
		Category string `json:"category"`
		Amount   Money  `json:"amount"`
		Note     string `json:"note"`
	}

	// ManualIncome is a directly entered income record.
	ManualIncome struct {
		Date        Date
		Source      string
		Amount      Money
		Description string
	}

	FeePayment struct {
		ID         int64 `json:"id"`
		CustomerID int64 `json:"customer_id"`
		Month      Month `json:"month"`
		Amount     Money `json:"amount"`
		PaidDate   Date  `json:"paid_date"`
	}

	FeePaymentRequest struct {
		CustomerID string
		Month      string
		Amount     string
	}
)

const (
	DepositNo  DepositFlag = false
	DepositYes DepositFlag = true
)

// ParseDepositFlag resolves the onboarding answer. Only the literal "Yes" counts.
func ParseDepositFlag(s string) DepositFlag {
	return DepositFlag(strings.TrimSpace(s) == "Yes")
}

func (f DepositFlag) String() string {
	if f {
		return "Yes"
	}
	return "No"
}

func (f DepositFlag) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(f.String())), nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today is the current UTC date.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// MonthOf returns the month a date falls in.
func (d Date) MonthOf() Month {
	return Month{Year: d.Year(), Month: d.Time.Month()}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(d.String())), nil
}

// ParseMonth parses a YYYY-MM token.
func ParseMonth(s string) (Month, error) {
	s = strings.TrimSpace(s)
	if len(s) != len(monthLayout) {
		return Month{}, ErrInvalidMonth
	}
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return Month{}, ErrInvalidMonth
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// FirstDay is the paid date assigned to a fee for this month.
func (m Month) FirstDay() Date {
	return NewDate(m.Year, int(m.Month), 1)
}

func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

func (m Month) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(m.String())), nil
}

// Validate checks the customer as resolved by onboarding.
func (c Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return Invalid("name", ErrEmptyName)
	}
	if err := c.JoiningDate.Validate(); err != nil {
		return Invalid("joining_date", err)
	}
	if c.DepositAmount.Decimal().IsNegative() {
		return Invalid("security_deposit_amount", ErrInvalidAmount)
	}
	if !bool(c.Deposit) && !c.DepositAmount.IsZero() {
		return Invalid("security_deposit_amount", fmt.Errorf("%w: deposit amount without deposit", ErrInvalidAmount))
	}
	if c.RegistrationFee.Decimal().IsNegative() {
		return Invalid("registration_fee", ErrInvalidAmount)
	}
	return nil
}

// Resolve turns the raw form values into a Customer.
//
// The deposit amount only counts when the flag is "Yes"; otherwise it is forced to 0.
// Empty or non-numeric amounts fall back to 0, negative ones are rejected.
func (r OnboardingRequest) Resolve() (Customer, error) {
	c := Customer{
		Name:    strings.TrimSpace(r.Name),
		Deposit: ParseDepositFlag(r.SecurityDeposit),
		Food:    strings.TrimSpace(r.Food),
	}
	if c.Name == "" {
		return Customer{}, Invalid("name", ErrEmptyName)
	}

	joined, err := ParseDate(r.JoiningDate)
	if err != nil {
		return Customer{}, Invalid("joining_date", err)
	}
	c.JoiningDate = joined

	if c.Deposit {
		amount, err := ParseMoneyOrZero(r.DepositAmount)
		if err != nil {
			return Customer{}, Invalid("security_deposit_amount", err)
		}
		c.DepositAmount = amount
	}

	fee, err := ParseMoneyOrZero(r.RegistrationFee)
	if err != nil {
		return Customer{}, Invalid("registration_fee", err)
	}
	c.RegistrationFee = fee

	return c, c.Validate()
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return Invalid("date", err)
	}
	if e.Amount.Decimal().IsNegative() {
		return Invalid("amount", ErrInvalidAmount)
	}
	return nil
}

func (m ManualIncome) Validate() error {
	if err := m.Date.Validate(); err != nil {
		return Invalid("date", err)
	}
	if strings.TrimSpace(m.Source) == "" {
		return Invalid("source", ErrEmptySource)
	}
	if m.Amount.Decimal().IsNegative() {
		return Invalid("amount", ErrInvalidAmount)
	}
	return nil
}

// Parse validates a payment request and derives the paid date.
func (r FeePaymentRequest) Parse() (FeePayment, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.CustomerID), 10, 64)
	if err != nil || id <= 0 {
		return FeePayment{}, Invalid("customer_id", errors.New("must be a positive integer"))
	}
	month, err := ParseMonth(r.Month)
	if err != nil {
		return FeePayment{}, Invalid("month", err)
	}
	amount, err := ParseMoney(r.Amount)
	if err != nil {
		return FeePayment{}, Invalid("amount", err)
	}
	if !amount.IsPositive() {
		return FeePayment{}, Invalid("amount", fmt.Errorf("%w: must be greater than zero", ErrInvalidAmount))
	}
	return FeePayment{
		CustomerID: id,
		Month:      month,
		Amount:     amount,
		PaidDate:   month.FirstDay(),
	}, nil
}
