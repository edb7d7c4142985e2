package core

import "context"

// InsertOutcome tags the result of an insert guarded by a uniqueness constraint.
type InsertOutcome int

const (
	InsertCreated InsertOutcome = iota
	InsertConflict
)

func (o InsertOutcome) String() string {
	if o == InsertConflict {
		return "conflict"
	}
	return "created"
}

// FeeStatus is the state a (customer, month) pair ends up in after a payment request.
type FeeStatus int

const (
	FeeRecorded FeeStatus = iota
	FeeAlreadyPaid
)

// FeeOutcome is what the fee payment workflow reports back.
type FeeOutcome struct {
	Status  FeeStatus
	Payment FeePayment
	Posting Posting
}

// Ports for the ledger store.
type (
	// LedgerTx is the set of writes available inside one atomic unit.
	LedgerTx interface {
		InsertCustomer(ctx context.Context, c Customer) (int64, error)
		// CustomerName returns ErrCustomerNotFound when no row matches.
		CustomerName(ctx context.Context, id int64) (string, error)
		// InsertFeePayment relies on the (customer_id, month) constraint and never errors on a duplicate.
		InsertFeePayment(ctx context.Context, p FeePayment) (int64, InsertOutcome, error)
		InsertPosting(ctx context.Context, p Posting) (int64, error)
	}

	LedgerStore interface {
		// InTx runs fn in a transaction, committing only if fn returns nil.
		InTx(ctx context.Context, fn func(tx LedgerTx) error) error
		ClearIncome(ctx context.Context) (int64, error)
	}

	// EventPublisher announces committed ledger changes.
	EventPublisher interface {
		PublishPosting(ctx context.Context, p Posting) error
		PublishCleared(ctx context.Context, removed int64) error
	}
)
