package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"pgledger/internal/amqp"
	"pgledger/internal/core"
	applog "pgledger/internal/log"
	"pgledger/internal/sheets"
)

// IncomeLister is the ledger read the worker needs to rebuild the mirror.
type IncomeLister interface {
	ListIncome(ctx context.Context) ([]core.Posting, error)
}

// MirrorWorker applies ledger events to the spreadsheet mirror.
type MirrorWorker struct {
	ledger     IncomeLister
	mirror     sheets.LedgerMirror
	reconciler sheets.MirrorReconciler

	// Events and reconciliation never interleave on the mirror
	mu sync.Mutex
}

// NewMirrorWorker builds a worker. reconciler may be nil, which disables Reconcile.
func NewMirrorWorker(ledger IncomeLister, mirror sheets.LedgerMirror, reconciler sheets.MirrorReconciler) *MirrorWorker {
	return &MirrorWorker{
		ledger:     ledger,
		mirror:     mirror,
		reconciler: reconciler,
	}
}

// HandleEvent processes a single ledger event from AMQP
func (w *MirrorWorker) HandleEvent(ctx context.Context, event *amqp.LedgerEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch event.Type {
	case amqp.EventIncomePosted:
		p, err := event.Posting.CorePosting()
		if err != nil {
			return fmt.Errorf("decode posting: %w", err)
		}
		ref, err := w.mirror.AppendPosting(ctx, p)
		if err != nil {
			return fmt.Errorf("append to mirror: %w", err)
		}
		slog.InfoContext(ctx, "Successfully mirrored posting",
			"id", p.ID,
			"origin", p.Origin.String(),
			"sheets_ref", ref,
			"amount", p.Amount.String())

	case amqp.EventIncomeCleared:
		if err := w.mirror.Clear(ctx); err != nil {
			return fmt.Errorf("clear mirror: %w", err)
		}
		removed := int64(0)
		if event.Removed != nil {
			removed = *event.Removed
		}
		slog.InfoContext(ctx, "Mirror cleared", "removed", removed)

	default:
		return fmt.Errorf("unknown event type %q", event.Type)
	}
	return nil
}

// Reconcile rebuilds the mirror when it no longer matches the ledger.
// This is a backup mechanism in case AMQP messages are lost or redelivered.
func (w *MirrorWorker) Reconcile(ctx context.Context) (bool, error) {
	if w.reconciler == nil {
		return false, nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	postings, err := w.ledger.ListIncome(ctx)
	if err != nil {
		return false, fmt.Errorf("list income: %w", err)
	}
	mirrored, err := w.reconciler.MirroredIDs(ctx)
	if err != nil {
		return false, fmt.Errorf("read mirror: %w", err)
	}

	if sameIDs(postings, mirrored) {
		slog.DebugContext(ctx, "Mirror is in sync", "rows", len(mirrored))
		return false, nil
	}

	slog.InfoContext(ctx, "Mirror out of sync, rebuilding",
		applog.FieldOperation, applog.OpReconcile,
		"ledger_rows", len(postings),
		"mirror_rows", len(mirrored))

	if err := w.reconciler.ReplaceAll(ctx, postings); err != nil {
		return false, fmt.Errorf("rebuild mirror: %w", err)
	}
	return true, nil
}

// RunReconciler reconciles once immediately and then every interval until ctx ends.
func (w *MirrorWorker) RunReconciler(ctx context.Context, interval time.Duration) error {
	if w.reconciler == nil || interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := w.Reconcile(ctx); err != nil {
			slog.ErrorContext(ctx, "Mirror reconciliation failed",
				applog.FieldOperation, applog.OpReconcile,
				applog.FieldError, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func sameIDs(postings []core.Posting, ids []int64) bool {
	if len(postings) != len(ids) {
		return false
	}
	for i, p := range postings {
		if p.ID != ids[i] {
			return false
		}
	}
	return true
}
