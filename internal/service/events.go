package service

import (
	"time"

	"github.com/LeJamon/goAMMd/internal/storage/relationaldb"
)

// EventType names a committed operation.
type EventType string

const (
	EventAmmCreated  EventType = "amm_created"
	EventPoolCreated EventType = "pool_created"
	EventDeposit     EventType = "deposit"
	EventWithdraw    EventType = "withdraw"
	EventSwap        EventType = "swap"
	EventFund        EventType = "fund"
)

// Event describes one committed operation. It is published after the
// ledger commit, so subscribers only ever see durable changes.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	AMM       string    `json:"amm_id,omitempty"`
	// Pool is the hex pool key.
	Pool    string `json:"pool,omitempty"`
	Account string `json:"account"`
	Asset   string `json:"asset,omitempty"`
	Side    string `json:"side,omitempty"`

	AmountA uint64 `json:"amount_a,omitempty"`
	AmountB uint64 `json:"amount_b,omitempty"`
	Shares  uint64 `json:"shares,omitempty"`
	Input   uint64 `json:"input,omitempty"`
	Output  uint64 `json:"output,omitempty"`
	Amount  uint64 `json:"amount,omitempty"`
}

// journalEntry maps e onto the journal's row shape. Swap amounts are
// reported per pool side.
func (e *Event) journalEntry() *relationaldb.Entry {
	entry := &relationaldb.Entry{
		CreatedAt: e.Timestamp,
		Kind:      string(e.Type),
		AMM:       e.AMM,
		Pool:      e.Pool,
		Account:   e.Account,
		Side:      e.Side,
		Asset:     e.Asset,
		AmountA:   e.AmountA,
		AmountB:   e.AmountB,
		Shares:    e.Shares,
	}
	switch e.Type {
	case EventSwap:
		if e.Side == "a" {
			entry.AmountA, entry.AmountB = e.Input, e.Output
		} else {
			entry.AmountA, entry.AmountB = e.Output, e.Input
		}
	case EventFund:
		entry.AmountA = e.Amount
	}
	return entry
}

// EventPublisher receives committed operations, typically to fan them out
// to stream subscribers. Publish must not block.
type EventPublisher interface {
	Publish(event *Event)
}

// NoOpPublisher is a publisher that does nothing (for testing or when
// streaming is disabled)
type NoOpPublisher struct{}

func (NoOpPublisher) Publish(*Event) {}

var _ EventPublisher = NoOpPublisher{}
