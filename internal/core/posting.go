package core

import (
	"fmt"
	"strings"
)

// PostingKind is the closed set of reasons an income posting can exist.
type PostingKind string

const (
	KindSecurityDeposit PostingKind = "security_deposit"
	KindRegistrationFee PostingKind = "registration_fee"
	KindMonthlyFee      PostingKind = "monthly_fee"
	KindManual          PostingKind = "manual"
)

// Source tags written to the ledger for derived postings.
const (
	SourceSecurityDeposit = "Security Deposit"
	SourceRegistrationFee = "Registration Fee"
	SourceMonthlyFee      = "Monthly Fee"
)

// IsValid returns true if the kind is one of the known kinds.
func (k PostingKind) IsValid() bool {
	switch k {
	case KindSecurityDeposit, KindRegistrationFee, KindMonthlyFee, KindManual:
		return true
	default:
		return false
	}
}

// Derived reports whether postings of this kind come from a triggering fact.
func (k PostingKind) Derived() bool {
	return k != KindManual
}

// SourceTag returns the fixed ledger tag for derived kinds.
func (k PostingKind) SourceTag() string {
	switch k {
	case KindSecurityDeposit:
		return SourceSecurityDeposit
	case KindRegistrationFee:
		return SourceRegistrationFee
	case KindMonthlyFee:
		return SourceMonthlyFee
	default:
		return ""
	}
}

// Origin identifies the triggering fact behind a derived posting.
// Ref is the customer id for onboarding kinds and the fee payment id for monthly fees.
type Origin struct {
	Kind PostingKind
	Ref  int64
}

func (o Origin) String() string {
	if !o.Kind.Derived() {
		return string(KindManual)
	}
	return fmt.Sprintf("%s:%d", o.Kind, o.Ref)
}

// Posting is one row of the income ledger.
type Posting struct {
	ID          int64  `json:"id"`
	Date        Date   `json:"date"`
	Source      string `json:"source"`
	Amount      Money  `json:"amount"`
	Description string `json:"description"`
	Origin      Origin `json:"-"`
}

// Validate enforces that derived postings carry a traceable origin and the fixed source tag.
func (p Posting) Validate() error {
	if err := p.Date.Validate(); err != nil {
		return Invalid("date", err)
	}
	if !p.Origin.Kind.IsValid() {
		return Invalid("kind", fmt.Errorf("unknown posting kind %q", p.Origin.Kind))
	}
	if p.Amount.Decimal().IsNegative() {
		return Invalid("amount", ErrInvalidAmount)
	}
	if p.Origin.Kind.Derived() {
		if p.Origin.Ref <= 0 {
			return ErrPostingUntraceable
		}
		if p.Source != p.Origin.Kind.SourceTag() {
			return Invalid("source", fmt.Errorf("%q postings must be tagged %q", p.Origin.Kind, p.Origin.Kind.SourceTag()))
		}
	} else if strings.TrimSpace(p.Source) == "" {
		return Invalid("source", ErrEmptySource)
	}
	return nil
}

// DepositPosting derives the security deposit posting for an onboarded customer.
func DepositPosting(c Customer) Posting {
	return Posting{
		Date:        c.JoiningDate,
		Source:      SourceSecurityDeposit,
		Amount:      c.DepositAmount,
		Description: "Security deposit from " + c.Name,
		Origin:      Origin{Kind: KindSecurityDeposit, Ref: c.ID},
	}
}

// RegistrationPosting derives the registration fee posting for an onboarded customer.
func RegistrationPosting(c Customer) Posting {
	return Posting{
		Date:        c.JoiningDate,
		Source:      SourceRegistrationFee,
		Amount:      c.RegistrationFee,
		Description: "Registration fee from " + c.Name,
		Origin:      Origin{Kind: KindRegistrationFee, Ref: c.ID},
	}
}

// MonthlyFeePosting derives the posting for a committed fee payment.
func MonthlyFeePosting(p FeePayment, customerName string) Posting {
	return Posting{
		Date:        p.PaidDate,
		Source:      SourceMonthlyFee,
		Amount:      p.Amount,
		Description: fmt.Sprintf("Monthly fee from %s (%s)", customerName, p.Month),
		Origin:      Origin{Kind: KindMonthlyFee, Ref: p.ID},
	}
}

// ManualPosting builds a posting for a directly entered income.
func ManualPosting(m ManualIncome) Posting {
	return Posting{
		Date:        m.Date,
		Source:      strings.TrimSpace(m.Source),
		Amount:      m.Amount,
		Description: m.Description,
		Origin:      Origin{Kind: KindManual},
	}
}
