package bbolt

import (
	"context"
	"fmt"

	"github.com/LeJamon/goAMMd/internal/storage/database"
	"go.etcd.io/bbolt"
)

// DefaultBucket holds every entry of the store.
var DefaultBucket = []byte("ammd")

type DB struct {
	db     *bbolt.DB
	bucket []byte
}

// Open opens (creating if needed) the bbolt file at path.
func Open(path string) (*DB, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bbolt database %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(DefaultBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &DB{db: db, bucket: DefaultBucket}, nil
}

func (b *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	if b.db == nil {
		return nil, database.ErrDBClosed
	}

	var value []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(b.bucket).Get(key)
		if v == nil {
			return database.ErrKeyNotFound
		}
		// bbolt values are only valid inside the transaction
		value = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (b *DB) Write(ctx context.Context, key []byte, value []byte) error {
	return b.Batch(ctx, []database.BatchOperation{{Type: database.BatchPut, Key: key, Value: value}})
}

func (b *DB) Delete(ctx context.Context, key []byte) error {
	return b.Batch(ctx, []database.BatchOperation{{Type: database.BatchDelete, Key: key}})
}

func (b *DB) Batch(ctx context.Context, ops []database.BatchOperation) error {
	if b.db == nil {
		return database.ErrDBClosed
	}

	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(b.bucket)
		for _, op := range ops {
			var err error
			switch op.Type {
			case database.BatchPut:
				err = bucket.Put(op.Key, op.Value)
			case database.BatchDelete:
				err = bucket.Delete(op.Key)
			default:
				return fmt.Errorf("%w: %d", database.ErrUnknownBatchOp, op.Type)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *DB) Iterator(ctx context.Context, start, end []byte) (database.Iterator, error) {
	if b.db == nil {
		return nil, database.ErrDBClosed
	}

	tx, err := b.db.Begin(false)
	if err != nil {
		return nil, err
	}

	return &Iterator{
		tx:     tx,
		cursor: tx.Bucket(b.bucket).Cursor(),
		start:  start,
		end:    end,
	}, nil
}

func (b *DB) Close() error {
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}

// Iterator holds a read transaction open until Close.
type Iterator struct {
	tx         *bbolt.Tx
	cursor     *bbolt.Cursor
	start, end []byte
	started    bool
	key, value []byte
}

func (it *Iterator) Next() bool {
	var k, v []byte
	if !it.started {
		it.started = true
		if it.start == nil {
			k, v = it.cursor.First()
		} else {
			k, v = it.cursor.Seek(it.start)
		}
	} else {
		k, v = it.cursor.Next()
	}

	if k == nil || !database.InRange(k, nil, it.end) {
		it.key, it.value = nil, nil
		return false
	}
	it.key, it.value = k, v
	return true
}

func (it *Iterator) Key() []byte   { return append([]byte(nil), it.key...) }
func (it *Iterator) Value() []byte { return append([]byte(nil), it.value...) }
func (it *Iterator) Error() error  { return nil }

func (it *Iterator) Close() error {
	return it.tx.Rollback()
}
