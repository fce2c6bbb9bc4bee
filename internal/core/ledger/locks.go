package ledger

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/LeJamon/goAMMd/internal/core/ledger/keylet"
)

type lockEntry struct {
	ch   chan struct{}
	refs int
}

// lockTable grants exclusive access per keylet. Sets of keys are always
// acquired in key order so overlapping operations cannot deadlock.
type lockTable struct {
	mu      sync.Mutex
	entries map[keylet.Keylet]*lockEntry
}

func newLockTable() *lockTable {
	return &lockTable{entries: make(map[keylet.Keylet]*lockEntry)}
}

func (t *lockTable) ref(k keylet.Keylet) *lockEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[k]
	if !ok {
		e = &lockEntry{ch: make(chan struct{}, 1)}
		t.entries[k] = e
	}
	e.refs++
	return e
}

func (t *lockTable) unref(k keylet.Keylet) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e := t.entries[k]
	e.refs--
	if e.refs == 0 {
		delete(t.entries, k)
	}
}

// acquire locks every key in scope and returns the release func. It gives
// up with ctx.Err() if ctx ends first.
func (t *lockTable) acquire(ctx context.Context, scope []keylet.Keylet) (func(), error) {
	keys := normalizeScope(scope)
	held := make([]*lockEntry, 0, len(keys))

	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			<-held[i].ch
			t.unref(keys[i])
		}
	}

	for _, k := range keys {
		e := t.ref(k)
		select {
		case e.ch <- struct{}{}:
			held = append(held, e)
		case <-ctx.Done():
			t.unref(k)
			release()
			return nil, ctx.Err()
		}
	}
	return release, nil
}

func normalizeScope(scope []keylet.Keylet) []keylet.Keylet {
	keys := append([]keylet.Keylet(nil), scope...)
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Type != keys[j].Type {
			return keys[i].Type < keys[j].Type
		}
		return bytes.Compare(keys[i].Key[:], keys[j].Key[:]) < 0
	})
	out := keys[:0]
	for i, k := range keys {
		if i == 0 || k != keys[i-1] {
			out = append(out, k)
		}
	}
	return out
}
