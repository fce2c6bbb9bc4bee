//go:generate mockgen -destination=mocks/mock_ledger.go -package=mocks github.com/LeJamon/goAMMd/internal/core/ledger Ledger

// Package ledger holds balances, asset supplies and records, and applies
// each operation atomically under exclusive access to the state it touches.
package ledger

import "github.com/LeJamon/goAMMd/internal/core/ledger/keylet"

// Ledger is the view of state an operation runs against. Writes are visible
// to later reads through the same Ledger and become durable only when the
// operation commits.
type Ledger interface {
	// ReadBalance returns owner's balance of asset, zero if it holds none.
	ReadBalance(owner AccountID, asset Asset) (uint64, error)

	// Supply returns the outstanding supply of asset.
	Supply(asset Asset) (uint64, error)

	Transfer(from, to AccountID, asset Asset, amount uint64) error
	Mint(asset Asset, to AccountID, amount uint64) error
	Burn(asset Asset, from AccountID, amount uint64) error

	// CreateRecord stores data under a fresh key, failing with
	// ErrAlreadyExists if the key is taken.
	CreateRecord(k keylet.Keylet, data []byte) error

	// Lookup returns the record stored under k or ErrNotFound.
	Lookup(k keylet.Keylet) ([]byte, error)

	// ReadSequence returns the sequence account's next signed request must
	// carry, zero before its first.
	ReadSequence(account AccountID) (uint64, error)
	SetSequence(account AccountID, seq uint64) error
}
