// Package storage selects and opens the key-value backend holding ledger
// state.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/LeJamon/goAMMd/internal/storage/database"
	"github.com/LeJamon/goAMMd/internal/storage/database/bbolt"
	"github.com/LeJamon/goAMMd/internal/storage/database/leveldb"
	"github.com/LeJamon/goAMMd/internal/storage/database/memory"
	"github.com/LeJamon/goAMMd/internal/storage/database/pebble"
	"github.com/LeJamon/goAMMd/internal/storage/database/redis"
)

// Backend names accepted by Open.
const (
	BackendMemory  = "memory"
	BackendPebble  = "pebble"
	BackendBBolt   = "bbolt"
	BackendLevelDB = "leveldb"
	BackendRedis   = "redis"
)

// Backends lists every supported backend.
var Backends = []string{BackendMemory, BackendPebble, BackendBBolt, BackendLevelDB, BackendRedis}

// Options selects a backend and where it keeps its data.
type Options struct {
	Backend string
	// Path is the data directory for on-disk backends.
	Path string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Open opens the configured backend.
func Open(ctx context.Context, o Options) (database.DB, error) {
	switch o.Backend {
	case BackendMemory, "":
		return memory.NewDB(), nil
	case BackendRedis:
		return redis.Open(ctx, redis.Options{
			Addr:     o.RedisAddr,
			Password: o.RedisPassword,
			DB:       o.RedisDB,
		})
	}

	if o.Path == "" {
		return nil, fmt.Errorf("backend %s requires a data path", o.Backend)
	}
	if err := os.MkdirAll(o.Path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data path: %w", err)
	}

	switch o.Backend {
	case BackendPebble:
		return pebble.Open(filepath.Join(o.Path, "state"))
	case BackendBBolt:
		return bbolt.Open(filepath.Join(o.Path, "state.db"))
	case BackendLevelDB:
		return leveldb.Open(filepath.Join(o.Path, "state.ldb"))
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", o.Backend)
	}
}
