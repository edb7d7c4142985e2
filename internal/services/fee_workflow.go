package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"pgledger/internal/core"
	applog "pgledger/internal/log"
)

// FeeWorkflow moves a (customer, month) pair from Unpaid to Paid exactly once.
type FeeWorkflow struct {
	store  core.LedgerStore
	income *IncomeService
}

func NewFeeWorkflow(store core.LedgerStore, income *IncomeService) *FeeWorkflow {
	return &FeeWorkflow{store: store, income: income}
}

// RecordPayment stores the payment and its monthly fee posting in one transaction.
//
// A payment for a pair that is already Paid is reported as FeeAlreadyPaid with a nil
// error and leaves storage untouched. The uniqueness check is the insert itself, so
// concurrent duplicates resolve to one FeeRecorded and the rest FeeAlreadyPaid.
func (w *FeeWorkflow) RecordPayment(ctx context.Context, req core.FeePaymentRequest) (core.FeeOutcome, error) {
	payment, err := req.Parse()
	if err != nil {
		return core.FeeOutcome{}, err
	}

	var posting core.Posting
	err = w.store.InTx(ctx, func(tx core.LedgerTx) error {
		name, err := tx.CustomerName(ctx, payment.CustomerID)
		if err != nil {
			return err
		}

		id, outcome, err := tx.InsertFeePayment(ctx, payment)
		if err != nil {
			return err
		}
		if outcome == core.InsertConflict {
			return core.ErrAlreadyPaid
		}
		payment.ID = id

		posting, err = w.income.PostFromFeePayment(ctx, tx, payment, name)
		return err
	})

	switch {
	case errors.Is(err, core.ErrAlreadyPaid):
		slog.InfoContext(ctx, "Fee already paid",
			applog.FieldComponent, applog.ComponentFees,
			applog.FieldCustomerID, payment.CustomerID,
			applog.FieldMonth, payment.Month.String())
		return core.FeeOutcome{Status: core.FeeAlreadyPaid, Payment: payment}, nil
	case err != nil:
		return core.FeeOutcome{}, fmt.Errorf("record fee payment: %w", err)
	}

	slog.InfoContext(ctx, "Monthly fee recorded",
		applog.FieldComponent, applog.ComponentFees,
		"payment_id", payment.ID,
		applog.FieldCustomerID, payment.CustomerID,
		applog.FieldMonth, payment.Month.String(),
		applog.FieldAmount, payment.Amount.String())

	w.income.Announce(ctx, posting)
	return core.FeeOutcome{Status: core.FeeRecorded, Payment: payment, Posting: posting}, nil
}
