package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"pgledger/internal/core"
)

// Ledger event types.
const (
	EventIncomePosted  = "income.posted"
	EventIncomeCleared = "income.cleared"
)

// PostingPayload is the wire form of a committed income posting.
// Unlike core.Posting it carries the origin, so consumers can tell derived postings apart.
type PostingPayload struct {
	ID          int64      `json:"id"`
	Date        string     `json:"date"`
	Source      string     `json:"source"`
	Amount      core.Money `json:"amount"`
	Description string     `json:"description"`
	Kind        string     `json:"kind"`
	Ref         int64      `json:"ref,omitempty"`
}

// LedgerEvent is published after a ledger mutation has committed.
type LedgerEvent struct {
	Type      string          `json:"type"`
	Posting   *PostingPayload `json:"posting,omitempty"`
	Removed   *int64          `json:"removed,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewPostedEvent wraps a committed posting.
func NewPostedEvent(p core.Posting) *LedgerEvent {
	return &LedgerEvent{
		Type: EventIncomePosted,
		Posting: &PostingPayload{
			ID:          p.ID,
			Date:        p.Date.String(),
			Source:      p.Source,
			Amount:      p.Amount,
			Description: p.Description,
			Kind:        string(p.Origin.Kind),
			Ref:         p.Origin.Ref,
		},
		Timestamp: time.Now(),
	}
}

// NewClearedEvent reports a bulk clear of the income ledger.
func NewClearedEvent(removed int64) *LedgerEvent {
	return &LedgerEvent{
		Type:      EventIncomeCleared,
		Removed:   &removed,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes and checks an event.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	switch e.Type {
	case EventIncomePosted:
		if e.Posting == nil {
			return nil, fmt.Errorf("%s event without posting", e.Type)
		}
	case EventIncomeCleared:
	default:
		return nil, fmt.Errorf("unknown event type %q", e.Type)
	}
	return &e, nil
}

// CorePosting rebuilds the domain posting carried by a posted event.
func (p *PostingPayload) CorePosting() (core.Posting, error) {
	date, err := core.ParseDate(p.Date)
	if err != nil {
		return core.Posting{}, fmt.Errorf("parse posting date: %w", err)
	}
	return core.Posting{
		ID:          p.ID,
		Date:        date,
		Source:      p.Source,
		Amount:      p.Amount,
		Description: p.Description,
		Origin:      core.Origin{Kind: core.PostingKind(p.Kind), Ref: p.Ref},
	}, nil
}
