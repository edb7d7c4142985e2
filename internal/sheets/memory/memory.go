package memory

import (
	"context"
	"fmt"
	"sync"

	"pgledger/internal/core"
	ports "pgledger/internal/sheets"
)

// Mirror is an in-process LedgerMirror used when no spreadsheet is configured.
type Mirror struct {
	mu   sync.Mutex
	rows []core.Posting
}

// Ensure interface conformance
var (
	_ ports.LedgerMirror     = (*Mirror)(nil)
	_ ports.MirrorReconciler = (*Mirror)(nil)
)

func New() *Mirror {
	return &Mirror{}
}

// AppendPosting stores the posting and returns a synthetic row reference.
func (m *Mirror) AppendPosting(_ context.Context, p core.Posting) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, p)
	// Row 1 is the header
	return fmt.Sprintf("mem:%d", len(m.rows)+1), nil
}

func (m *Mirror) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = nil
	return nil
}

func (m *Mirror) MirroredIDs(_ context.Context) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, 0, len(m.rows))
	for _, p := range m.rows {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

func (m *Mirror) ReplaceAll(_ context.Context, postings []core.Posting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append([]core.Posting(nil), postings...)
	return nil
}

// Rows returns a copy of the mirrored rows in Header order.
func (m *Mirror) Rows() [][]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]any, 0, len(m.rows))
	for _, p := range m.rows {
		out = append(out, ports.PostingRow(p))
	}
	return out
}
