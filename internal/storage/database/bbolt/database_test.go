package bbolt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/LeJamon/goAMMd/internal/storage/database/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBBoltDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	db, err := Open(path)
	require.NoError(t, err)

	dbtest.Run(t, db)

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}
