// Package dbtest holds the behaviour every database backend must share.
package dbtest

import (
	"context"
	"testing"

	"github.com/LeJamon/goAMMd/internal/storage/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises db against the database.DB contract. db must be empty.
func Run(t *testing.T, db database.DB) {
	ctx := context.Background()

	t.Run("Read missing key", func(t *testing.T) {
		_, err := db.Read(ctx, []byte("missing"))
		assert.ErrorIs(t, err, database.ErrKeyNotFound)
	})

	t.Run("Write and read", func(t *testing.T) {
		require.NoError(t, db.Write(ctx, []byte("k1"), []byte("v1")))

		got, err := db.Read(ctx, []byte("k1"))
		require.NoError(t, err)
		assert.Equal(t, []byte("v1"), got)

		require.NoError(t, db.Write(ctx, []byte("k1"), []byte("v2")))
		got, err = db.Read(ctx, []byte("k1"))
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), got)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, db.Write(ctx, []byte("gone"), []byte("x")))
		require.NoError(t, db.Delete(ctx, []byte("gone")))

		_, err := db.Read(ctx, []byte("gone"))
		assert.ErrorIs(t, err, database.ErrKeyNotFound)
	})

	t.Run("Batch", func(t *testing.T) {
		ops := []database.BatchOperation{
			{Type: database.BatchPut, Key: []byte("batch1"), Value: []byte("value1")},
			{Type: database.BatchPut, Key: []byte("batch2"), Value: []byte("value2")},
			{Type: database.BatchDelete, Key: []byte("batch1")},
		}
		require.NoError(t, db.Batch(ctx, ops))

		_, err := db.Read(ctx, []byte("batch1"))
		assert.ErrorIs(t, err, database.ErrKeyNotFound)

		got, err := db.Read(ctx, []byte("batch2"))
		require.NoError(t, err)
		assert.Equal(t, []byte("value2"), got)
	})

	t.Run("Batch rejects unknown operation", func(t *testing.T) {
		err := db.Batch(ctx, []database.BatchOperation{
			{Type: database.BatchPut, Key: []byte("partial"), Value: []byte("x")},
			{Type: database.BatchOpType(99), Key: []byte("bad")},
		})
		assert.ErrorIs(t, err, database.ErrUnknownBatchOp)

		_, err = db.Read(ctx, []byte("partial"))
		assert.ErrorIs(t, err, database.ErrKeyNotFound, "failed batch must not apply")
	})

	t.Run("Iterator range", func(t *testing.T) {
		for _, k := range []string{"it/a", "it/b", "it/c", "iu/a"} {
			require.NoError(t, db.Write(ctx, []byte(k), []byte("val-"+k)))
		}

		it, err := db.Iterator(ctx, []byte("it/"), []byte("iu"))
		require.NoError(t, err)
		defer it.Close()

		var keys []string
		for it.Next() {
			keys = append(keys, string(it.Key()))
			assert.Equal(t, "val-"+string(it.Key()), string(it.Value()))
		}
		require.NoError(t, it.Error())
		assert.Equal(t, []string{"it/a", "it/b", "it/c"}, keys)
	})

	t.Run("Close", func(t *testing.T) {
		require.NoError(t, db.Close())
		_, err := db.Read(ctx, []byte("k1"))
		assert.ErrorIs(t, err, database.ErrDBClosed)
	})
}
