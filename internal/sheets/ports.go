package sheets

import (
	"context"

	"pgledger/internal/core"
)

// Header is the first row of the mirrored income sheet.
var Header = []string{"Date", "Source", "Amount", "Description", "Kind", "ID"}

// Ports for outbound adapters.
type (
	// LedgerMirror keeps a spreadsheet copy of the income ledger.
	LedgerMirror interface {
		AppendPosting(ctx context.Context, p core.Posting) (rowRef string, err error)
		// Clear removes every mirrored posting and keeps the header.
		Clear(ctx context.Context) error
	}

	// MirrorReconciler can compare and rebuild the mirror from the ledger.
	MirrorReconciler interface {
		// MirroredIDs returns the posting ids currently present in the mirror, in row order.
		MirroredIDs(ctx context.Context) ([]int64, error)
		ReplaceAll(ctx context.Context, postings []core.Posting) error
	}
)

// PostingRow renders a posting in Header column order.
// The amount stays a string so the mirror never rounds it.
func PostingRow(p core.Posting) []any {
	return []any{
		p.Date.String(),
		p.Source,
		p.Amount.String(),
		p.Description,
		string(p.Origin.Kind),
		p.ID,
	}
}
