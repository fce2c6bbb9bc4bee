package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/LeJamon/goAMMd/internal/core/ledger/keylet"
	"github.com/LeJamon/goAMMd/internal/storage/database"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of records kept when ManagerConfig leaves
// it unset.
const DefaultCacheSize = 4096

// ManagerConfig holds configuration for the Manager
type ManagerConfig struct {
	// CacheSize is the number of immutable records (AMMs, pools) kept in
	// memory.
	CacheSize int
}

// CacheStats reports record cache effectiveness.
type CacheStats struct {
	Hits   uint64
	Misses uint64
	Size   int
}

// Manager applies operations to persistent state. Each operation runs in
// its own Sandbox while holding exclusive access to its lock scope, and its
// changes are committed as one atomic batch or not at all.
type Manager struct {
	db     database.DB
	locks  *lockTable
	cache  *lru.Cache[keylet.Keylet, []byte]
	logger *slog.Logger

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewManager creates a Manager over db.
func NewManager(db database.DB, cfg ManagerConfig, logger *slog.Logger) (*Manager, error) {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}
	cache, err := lru.New[keylet.Keylet, []byte](cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		db:     db,
		locks:  newLockTable(),
		cache:  cache,
		logger: logger.With("component", "ledger"),
	}, nil
}

// cacheable reports whether entries of type t are immutable once written.
func cacheable(t keylet.Type) bool {
	return t == keylet.TypeAMM || t == keylet.TypePool
}

// Read implements Reader, serving immutable records from the cache.
func (m *Manager) Read(ctx context.Context, key []byte) ([]byte, error) {
	k, ok := keylet.FromStorageKey(key)
	if ok && cacheable(k.Type) {
		if v, hit := m.cache.Get(k); hit {
			m.hits.Add(1)
			return v, nil
		}
		m.misses.Add(1)
	}

	v, err := m.db.Read(ctx, key)
	if err != nil {
		return nil, err
	}
	if ok && cacheable(k.Type) {
		m.cache.Add(k, v)
	}
	return v, nil
}

// Apply runs fn against a fresh Sandbox while holding every lock in scope.
// If fn succeeds the Sandbox is committed atomically; if it fails nothing
// is written and fn's error is returned unchanged.
func (m *Manager) Apply(ctx context.Context, scope []keylet.Keylet, fn func(Ledger) error) error {
	release, err := m.locks.acquire(ctx, scope)
	if err != nil {
		return fmt.Errorf("acquire ledger locks: %w", err)
	}
	defer release()

	sb := NewSandbox(ctx, m)
	if err := fn(sb); err != nil {
		return err
	}
	return m.commit(ctx, sb)
}

// View runs fn against a Sandbox that is never committed. It takes no
// locks, so reads of several entries may straddle a concurrent commit; use
// ViewScope when the entries must be read as of one state.
func (m *Manager) View(ctx context.Context, fn func(Ledger) error) error {
	return fn(NewSandbox(ctx, m))
}

// ViewScope runs fn against a Sandbox that is never committed while holding
// every lock in scope, so no Apply over the same scope commits between its
// reads.
func (m *Manager) ViewScope(ctx context.Context, scope []keylet.Keylet, fn func(Ledger) error) error {
	release, err := m.locks.acquire(ctx, scope)
	if err != nil {
		return fmt.Errorf("acquire ledger locks: %w", err)
	}
	defer release()
	return fn(NewSandbox(ctx, m))
}

func (m *Manager) commit(ctx context.Context, sb *Sandbox) error {
	ops := sb.Batch()
	if len(ops) == 0 {
		return nil
	}
	if err := m.db.Batch(ctx, ops); err != nil {
		return fmt.Errorf("commit ledger changes: %w", err)
	}

	for _, e := range sb.Changes() {
		if e.Action == ActionInsert && cacheable(e.Key.Type) {
			m.cache.Add(e.Key, e.Current)
		}
	}
	m.logger.Debug("committed", "entries", len(ops))
	return nil
}

// Records returns every stored record of type t keyed by keylet, in key
// order.
func (m *Manager) Records(ctx context.Context, t keylet.Type) ([]keylet.Keylet, [][]byte, error) {
	start, end := keylet.TypePrefix(t)
	it, err := m.db.Iterator(ctx, start, end)
	if err != nil {
		return nil, nil, err
	}
	defer it.Close()

	var keys []keylet.Keylet
	var values [][]byte
	for it.Next() {
		k, ok := keylet.FromStorageKey(it.Key())
		if !ok {
			return nil, nil, fmt.Errorf("%w: storage key of %d bytes", ErrCorruptEntry, len(it.Key()))
		}
		keys = append(keys, k)
		values = append(values, it.Value())
	}
	if err := it.Error(); err != nil && !errors.Is(err, database.ErrKeyNotFound) {
		return nil, nil, err
	}
	return keys, values, nil
}

// CacheStats returns record cache statistics.
func (m *Manager) CacheStats() CacheStats {
	return CacheStats{
		Hits:   m.hits.Load(),
		Misses: m.misses.Load(),
		Size:   m.cache.Len(),
	}
}

// Close closes the underlying store.
func (m *Manager) Close() error {
	return m.db.Close()
}
