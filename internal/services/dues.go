package services

import (
	"context"
	"fmt"

	"pgledger/internal/core"
)

// DuesReader is the read side needed to work out unpaid monthly fees.
type DuesReader interface {
	ListCustomers(ctx context.Context) ([]core.Customer, error)
	ListFeePayments(ctx context.Context) ([]core.FeePayment, error)
}

// FeeDue is a customer still in the Unpaid state for Month.
type FeeDue struct {
	Customer core.Customer `json:"customer"`
	Month    core.Month    `json:"month"`
}

// IsFeeDue reports whether a customer who joined on joined owes a fee for month.
// The joining month itself is due; months before it are not.
func IsFeeDue(joined core.Date, month core.Month) bool {
	if joined.IsZero() || month.IsZero() {
		return false
	}
	j := joined.MonthOf()
	return monthIndex(month) >= monthIndex(j)
}

func monthIndex(m core.Month) int {
	return m.Year*12 + int(m.Month) - 1
}

// OutstandingFees lists customers with no fee payment for month, in customer order.
func OutstandingFees(ctx context.Context, reader DuesReader, month core.Month) ([]FeeDue, error) {
	customers, err := reader.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	payments, err := reader.ListFeePayments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list fee payments: %w", err)
	}

	paid := make(map[int64]bool, len(payments))
	for _, p := range payments {
		if p.Month == month {
			paid[p.CustomerID] = true
		}
	}

	dues := make([]FeeDue, 0)
	for _, c := range customers {
		if paid[c.ID] || !IsFeeDue(c.JoiningDate, month) {
			continue
		}
		dues = append(dues, FeeDue{Customer: c, Month: month})
	}
	return dues, nil
}
