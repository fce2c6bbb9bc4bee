// Package redis stores entries in a Redis keyspace under a fixed prefix.
// Batches run as a single MULTI/EXEC transaction.
package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/LeJamon/goAMMd/internal/storage/database"
	"github.com/redis/go-redis/v9"
)

const scanCount = 512

type Options struct {
	Addr     string
	Password string
	DB       int
	// Prefix namespaces every key, default "ammd:".
	Prefix string
}

type DB struct {
	client *redis.Client
	prefix string
}

// Open connects to Redis and verifies the connection.
func Open(ctx context.Context, o Options) (*DB, error) {
	if o.Prefix == "" {
		o.Prefix = "ammd:"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     o.Addr,
		Password: o.Password,
		DB:       o.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis %s: %w", o.Addr, err)
	}
	return &DB{client: client, prefix: o.Prefix}, nil
}

func (r *DB) key(k []byte) string {
	return r.prefix + string(k)
}

func (r *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	if r.client == nil {
		return nil, database.ErrDBClosed
	}
	v, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, database.ErrKeyNotFound
	}
	return v, err
}

func (r *DB) Write(ctx context.Context, key, value []byte) error {
	if r.client == nil {
		return database.ErrDBClosed
	}
	return r.client.Set(ctx, r.key(key), value, 0).Err()
}

func (r *DB) Delete(ctx context.Context, key []byte) error {
	if r.client == nil {
		return database.ErrDBClosed
	}
	return r.client.Del(ctx, r.key(key)).Err()
}

func (r *DB) Batch(ctx context.Context, ops []database.BatchOperation) error {
	if r.client == nil {
		return database.ErrDBClosed
	}
	for _, op := range ops {
		if op.Type != database.BatchPut && op.Type != database.BatchDelete {
			return fmt.Errorf("%w: %d", database.ErrUnknownBatchOp, op.Type)
		}
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, op := range ops {
			if op.Type == database.BatchPut {
				pipe.Set(ctx, r.key(op.Key), op.Value, 0)
			} else {
				pipe.Del(ctx, r.key(op.Key))
			}
		}
		return nil
	})
	return err
}

// Iterator scans the keyspace once and serves a sorted snapshot of the
// matching entries.
func (r *DB) Iterator(ctx context.Context, start, end []byte) (database.Iterator, error) {
	if r.client == nil {
		return nil, database.ErrDBClosed
	}

	var keys []string
	var cursor uint64
	for {
		batch, next, err := r.client.Scan(ctx, cursor, r.prefix+"*", scanCount).Result()
		if err != nil {
			return nil, err
		}
		for _, k := range batch {
			raw := strings.TrimPrefix(k, r.prefix)
			if database.InRange([]byte(raw), start, end) {
				keys = append(keys, k)
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	sort.Strings(keys)

	it := &Iterator{pos: -1}
	if len(keys) == 0 {
		return it, nil
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			// deleted between SCAN and MGET
			continue
		}
		it.keys = append(it.keys, []byte(strings.TrimPrefix(keys[i], r.prefix)))
		it.values = append(it.values, []byte(s))
	}
	return it, nil
}

func (r *DB) Close() error {
	if r.client == nil {
		return nil
	}
	err := r.client.Close()
	r.client = nil
	return err
}

type Iterator struct {
	keys   [][]byte
	values [][]byte
	pos    int
}

func (it *Iterator) Next() bool {
	it.pos++
	return it.pos < len(it.keys)
}

func (it *Iterator) Key() []byte   { return it.keys[it.pos] }
func (it *Iterator) Value() []byte { return it.values[it.pos] }
func (it *Iterator) Error() error  { return nil }
func (it *Iterator) Close() error  { return nil }
