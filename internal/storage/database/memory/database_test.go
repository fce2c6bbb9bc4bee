package memory

import (
	"testing"

	"github.com/LeJamon/goAMMd/internal/storage/database/dbtest"
)

func TestMemoryDB(t *testing.T) {
	dbtest.Run(t, NewDB())
}
