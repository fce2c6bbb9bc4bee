package leveldb

import (
	"path/filepath"
	"testing"

	"github.com/LeJamon/goAMMd/internal/storage/database/dbtest"
	"github.com/stretchr/testify/require"
)

func TestLevelDB(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "state"))
	require.NoError(t, err)

	dbtest.Run(t, db)
}
