package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/LeJamon/goAMMd/internal/core/fixedpoint"
	"github.com/LeJamon/goAMMd/internal/core/ledger/keylet"
	"github.com/LeJamon/goAMMd/internal/storage/database"
)

// Action represents the type of modification to a ledger entry
type Action int

const (
	// ActionCache means the entry was read but not modified
	ActionCache Action = iota
	// ActionInsert means a new entry was created
	ActionInsert
	// ActionModify means an existing entry was modified
	ActionModify
)

// TrackedEntry represents a ledger entry being tracked for changes
type TrackedEntry struct {
	Key      keylet.Keylet
	Action   Action
	Original []byte // nil for inserts and absent entries
	Current  []byte
}

// Reader is the read side of the store a Sandbox stages changes over.
type Reader interface {
	Read(ctx context.Context, key []byte) ([]byte, error)
}

// Sandbox stages the changes of a single operation over a base store.
// Nothing reaches the base until Commit; discarding the Sandbox aborts.
//
// A Sandbox belongs to one operation and carries that operation's context.
// It is not safe for concurrent use.
type Sandbox struct {
	ctx   context.Context
	base  Reader
	items map[keylet.Keylet]*TrackedEntry
	order []keylet.Keylet
}

var _ Ledger = (*Sandbox)(nil)

// NewSandbox creates an empty Sandbox over base.
func NewSandbox(ctx context.Context, base Reader) *Sandbox {
	return &Sandbox{
		ctx:   ctx,
		base:  base,
		items: make(map[keylet.Keylet]*TrackedEntry),
	}
}

// read returns the current value of k and whether it exists.
func (s *Sandbox) read(k keylet.Keylet) ([]byte, bool, error) {
	if e, ok := s.items[k]; ok {
		return e.Current, e.Current != nil, nil
	}

	data, err := s.base.Read(s.ctx, k.StorageKey())
	if errors.Is(err, database.ErrKeyNotFound) {
		data, err = nil, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", k, err)
	}

	s.track(&TrackedEntry{Key: k, Action: ActionCache, Original: data, Current: data})
	return data, data != nil, nil
}

func (s *Sandbox) track(e *TrackedEntry) {
	s.items[e.Key] = e
	s.order = append(s.order, e.Key)
}

func (s *Sandbox) insert(k keylet.Keylet, data []byte) error {
	_, exists, err := s.read(k)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, k)
	}
	e := s.items[k]
	e.Action = ActionInsert
	e.Current = data
	return nil
}

// set writes k, creating it if absent.
func (s *Sandbox) set(k keylet.Keylet, data []byte) error {
	_, exists, err := s.read(k)
	if err != nil {
		return err
	}
	e := s.items[k]
	switch {
	case !exists:
		e.Action = ActionInsert
	case e.Action == ActionCache:
		e.Action = ActionModify
	}
	e.Current = data
	return nil
}

func (s *Sandbox) amount(k keylet.Keylet) (uint64, error) {
	data, exists, err := s.read(k)
	if err != nil || !exists {
		return 0, err
	}
	return decodeAmount(data)
}

func (s *Sandbox) ReadBalance(owner AccountID, asset Asset) (uint64, error) {
	return s.amount(keylet.Balance(owner, string(asset)))
}

func (s *Sandbox) Supply(asset Asset) (uint64, error) {
	return s.amount(keylet.Supply(string(asset)))
}

func (s *Sandbox) ReadSequence(account AccountID) (uint64, error) {
	return s.amount(keylet.Sequence(account))
}

func (s *Sandbox) SetSequence(account AccountID, seq uint64) error {
	return s.set(keylet.Sequence(account), encodeAmount(seq))
}

func (s *Sandbox) debit(owner AccountID, asset Asset, amount uint64) error {
	k := keylet.Balance(owner, string(asset))
	bal, err := s.amount(k)
	if err != nil {
		return err
	}
	if bal < amount {
		return fmt.Errorf("%w: %s holds %d %s, needs %d", ErrInsufficientBalance, owner, bal, asset, amount)
	}
	return s.set(k, encodeAmount(bal-amount))
}

func (s *Sandbox) credit(owner AccountID, asset Asset, amount uint64) error {
	k := keylet.Balance(owner, string(asset))
	bal, err := s.amount(k)
	if err != nil {
		return err
	}
	next, err := fixedpoint.Add(bal, amount)
	if err != nil {
		return fmt.Errorf("credit %s %s: %w", owner, asset, err)
	}
	return s.set(k, encodeAmount(next))
}

func (s *Sandbox) Transfer(from, to AccountID, asset Asset, amount uint64) error {
	if err := s.debit(from, asset, amount); err != nil {
		return fmt.Errorf("transfer: %w", err)
	}
	if err := s.credit(to, asset, amount); err != nil {
		return fmt.Errorf("transfer: %w", err)
	}
	return nil
}

func (s *Sandbox) Mint(asset Asset, to AccountID, amount uint64) error {
	k := keylet.Supply(string(asset))
	supply, err := s.amount(k)
	if err != nil {
		return err
	}
	next, err := fixedpoint.Add(supply, amount)
	if err != nil {
		return fmt.Errorf("mint %s: %w", asset, err)
	}
	if err := s.set(k, encodeAmount(next)); err != nil {
		return err
	}
	if err := s.credit(to, asset, amount); err != nil {
		return fmt.Errorf("mint: %w", err)
	}
	return nil
}

func (s *Sandbox) Burn(asset Asset, from AccountID, amount uint64) error {
	if err := s.debit(from, asset, amount); err != nil {
		return fmt.Errorf("burn: %w", err)
	}
	k := keylet.Supply(string(asset))
	supply, err := s.amount(k)
	if err != nil {
		return err
	}
	next, err := fixedpoint.Sub(supply, amount)
	if err != nil {
		return fmt.Errorf("%w: burn of %d exceeds %s supply %d", ErrCorruptEntry, amount, asset, supply)
	}
	return s.set(k, encodeAmount(next))
}

func (s *Sandbox) CreateRecord(k keylet.Keylet, data []byte) error {
	return s.insert(k, data)
}

func (s *Sandbox) Lookup(k keylet.Keylet) ([]byte, error) {
	data, exists, err := s.read(k)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, k)
	}
	return data, nil
}

// Changes returns the entries inserted or modified so far, in the order
// they were first touched.
func (s *Sandbox) Changes() []TrackedEntry {
	var out []TrackedEntry
	for _, k := range s.order {
		e := s.items[k]
		if e.Action != ActionCache {
			out = append(out, *e)
		}
	}
	return out
}

// Batch returns the changes as database batch operations.
func (s *Sandbox) Batch() []database.BatchOperation {
	changes := s.Changes()
	ops := make([]database.BatchOperation, 0, len(changes))
	for _, e := range changes {
		ops = append(ops, database.BatchOperation{
			Type:  database.BatchPut,
			Key:   e.Key.StorageKey(),
			Value: e.Current,
		})
	}
	return ops
}
