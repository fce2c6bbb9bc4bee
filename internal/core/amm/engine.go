// Package amm implements constant-product pool accounting: AMM and pool
// registration, liquidity deposits and withdrawals, and exact-input swaps.
//
// Every operation runs against a ledger.Ledger supplied by the caller, which
// is expected to give it exclusive, all-or-nothing access to the state it
// touches. The engine itself holds no state.
package amm

import (
	"log/slog"

	"github.com/LeJamon/goAMMd/internal/core/ledger"
)

// Engine executes AMM operations.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates an Engine logging to logger.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger.With("component", "amm")}
}

// reserves returns the pool authority's holdings of both pool assets.
func reserves(l ledger.Ledger, p *Pool) (a, b uint64, err error) {
	auth := p.Authority()
	if a, err = l.ReadBalance(auth, p.AMint); err != nil {
		return 0, 0, err
	}
	if b, err = l.ReadBalance(auth, p.BMint); err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

// clamp limits amount to what owner holds of asset.
func clamp(l ledger.Ledger, owner ledger.AccountID, asset ledger.Asset, amount uint64) (uint64, error) {
	bal, err := l.ReadBalance(owner, asset)
	if err != nil {
		return 0, err
	}
	return min(amount, bal), nil
}
