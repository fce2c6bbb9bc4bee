package relationaldb

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(context.Background(), SQLiteConfig(filepath.Join(t.TempDir(), "journal.db")))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournalAppendRecent(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	entries := []*Entry{
		{Kind: "create_amm", AMM: "amm-1", Account: "A1"},
		{Kind: "deposit_liquidity", AMM: "amm-1", Pool: "p1", Account: "A1", AmountA: 10000, AmountB: 10000, Shares: 9000},
		{Kind: "swap_exact_input", AMM: "amm-1", Pool: "p1", Account: "B0", Side: "a", AmountA: 1000, AmountB: 906},
		{Kind: "deposit_liquidity", AMM: "amm-1", Pool: "p2", Account: "B0", AmountA: math.MaxUint64, AmountB: 1, Shares: 1},
	}
	for _, e := range entries {
		require.NoError(t, j.Append(ctx, e))
	}

	all, err := j.Recent(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "deposit_liquidity", all[0].Kind, "newest first")
	assert.Equal(t, uint64(math.MaxUint64), all[0].AmountA)

	p1, err := j.Recent(ctx, "p1", 10)
	require.NoError(t, err)
	require.Len(t, p1, 2)
	assert.Equal(t, "swap_exact_input", p1[0].Kind)
	assert.Equal(t, "a", p1[0].Side)
	assert.Equal(t, uint64(906), p1[0].AmountB)
	assert.Equal(t, uint64(9000), p1[1].Shares)
	assert.False(t, p1[1].CreatedAt.IsZero())

	limited, err := j.Recent(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	_, err = j.Recent(ctx, "", 0)
	assert.ErrorIs(t, err, ErrInvalidLimit)
}

func TestJournalInMemory(t *testing.T) {
	j, err := Open(context.Background(), NewConfig())
	require.NoError(t, err)
	defer j.Close()

	require.NoError(t, j.Append(context.Background(), &Entry{Kind: "create_amm", AMM: "x", Account: "A1"}))
	got, err := j.Recent(context.Background(), "", 5)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestJournalClosed(t *testing.T) {
	j := openTestJournal(t)
	require.NoError(t, j.Close())

	assert.ErrorIs(t, j.Append(context.Background(), &Entry{}), ErrDatabaseClosed)
	_, err := j.Recent(context.Background(), "", 1)
	assert.ErrorIs(t, err, ErrDatabaseClosed)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name       string
		config     Config
		wantDriver string
		wantErr    error
	}{
		{name: "sqlite3 alias", config: Config{Driver: "sqlite3", DSN: "x.db", DefaultTimeout: 1}, wantDriver: DriverSQLite},
		{name: "postgresql alias", config: Config{Driver: "postgresql", DSN: "postgres://localhost/ammd", DefaultTimeout: 1}, wantDriver: DriverPostgres},
		{name: "mysql", config: Config{Driver: "mysql", DSN: "user@/ammd", DefaultTimeout: 1}, wantDriver: DriverMySQL},
		{name: "unknown driver", config: Config{Driver: "oracle", DSN: "x", DefaultTimeout: 1}, wantErr: ErrInvalidDriver},
		{name: "missing dsn", config: Config{Driver: "sqlite", DefaultTimeout: 1}, wantErr: ErrMissingDSN},
		{name: "no timeout", config: Config{Driver: "mysql", DSN: "x"}, wantErr: ErrInvalidTimeout},
		{name: "idle above open", config: Config{Driver: "postgres", DSN: "x", MaxOpenConns: 2, MaxIdleConns: 5, DefaultTimeout: 1}, wantErr: ErrMaxIdleExceedsMaxOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.config
			err := c.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDriver, c.Driver)
		})
	}
}

func TestRebind(t *testing.T) {
	pg := &Journal{config: &Config{Driver: DriverPostgres}}
	assert.Equal(t, "a = $1 AND b = $2", pg.rebind("a = ? AND b = ?"))

	lite := &Journal{config: &Config{Driver: DriverSQLite}}
	assert.Equal(t, "a = ?", lite.rebind("a = ?"))
}
