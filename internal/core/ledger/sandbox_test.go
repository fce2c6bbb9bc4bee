package ledger

import (
	"context"
	"math"
	"testing"

	"github.com/LeJamon/goAMMd/internal/core/fixedpoint"
	"github.com/LeJamon/goAMMd/internal/core/ledger/keylet"
	"github.com/LeJamon/goAMMd/internal/storage/database/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = AccountID{0xA1}
	bob   = AccountID{0xB0}
)

func newTestSandbox(t *testing.T) (*Sandbox, *memory.DB) {
	t.Helper()
	db := memory.NewDB()
	return NewSandbox(context.Background(), db), db
}

func TestSandboxBalances(t *testing.T) {
	sb, _ := newTestSandbox(t)

	bal, err := sb.ReadBalance(alice, "USD")
	require.NoError(t, err)
	assert.Zero(t, bal, "unknown holding reads as zero")

	require.NoError(t, sb.Mint("USD", alice, 500))
	require.NoError(t, sb.Transfer(alice, bob, "USD", 200))

	bal, err = sb.ReadBalance(alice, "USD")
	require.NoError(t, err)
	assert.Equal(t, uint64(300), bal)

	bal, err = sb.ReadBalance(bob, "USD")
	require.NoError(t, err)
	assert.Equal(t, uint64(200), bal)

	supply, err := sb.Supply("USD")
	require.NoError(t, err)
	assert.Equal(t, uint64(500), supply)

	require.NoError(t, sb.Burn("USD", bob, 50))
	supply, err = sb.Supply("USD")
	require.NoError(t, err)
	assert.Equal(t, uint64(450), supply)
}

func TestSandboxInsufficientBalance(t *testing.T) {
	sb, _ := newTestSandbox(t)
	require.NoError(t, sb.Mint("USD", alice, 10))

	err := sb.Transfer(alice, bob, "USD", 11)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	err = sb.Burn("USD", alice, 11)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	bal, err := sb.ReadBalance(alice, "USD")
	require.NoError(t, err)
	assert.Equal(t, uint64(10), bal)
}

func TestSandboxCreditOverflow(t *testing.T) {
	sb, _ := newTestSandbox(t)
	require.NoError(t, sb.Mint("USD", alice, math.MaxUint64))

	err := sb.Mint("USD", bob, 1)
	assert.ErrorIs(t, err, fixedpoint.ErrOverflow)
}

func TestSandboxRecords(t *testing.T) {
	sb, _ := newTestSandbox(t)
	k := keylet.AMM("amm-1")

	_, err := sb.Lookup(k)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, sb.CreateRecord(k, []byte("record")))
	got, err := sb.Lookup(k)
	require.NoError(t, err)
	assert.Equal(t, []byte("record"), got)

	err = sb.CreateRecord(k, []byte("again"))
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestSandboxSequence(t *testing.T) {
	sb, _ := newTestSandbox(t)

	seq, err := sb.ReadSequence(alice)
	require.NoError(t, err)
	assert.Zero(t, seq)

	require.NoError(t, sb.SetSequence(alice, 7))
	seq, err = sb.ReadSequence(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), seq)

	seq, err = sb.ReadSequence(bob)
	require.NoError(t, err)
	assert.Zero(t, seq, "sequences are per account")

	bal, err := sb.ReadBalance(alice, "USD")
	require.NoError(t, err)
	assert.Zero(t, bal)
}

func TestSandboxDoesNotTouchBaseUntilCommitted(t *testing.T) {
	sb, db := newTestSandbox(t)
	ctx := context.Background()

	require.NoError(t, sb.Mint("USD", alice, 100))
	require.NoError(t, sb.CreateRecord(keylet.AMM("amm-1"), []byte("x")))

	_, err := db.Read(ctx, keylet.Balance(alice, "USD").StorageKey())
	assert.Error(t, err)

	ops := sb.Batch()
	assert.Len(t, ops, 3, "supply, balance and record")
	require.NoError(t, db.Batch(ctx, ops))

	fresh := NewSandbox(ctx, db)
	bal, err := fresh.ReadBalance(alice, "USD")
	require.NoError(t, err)
	assert.Equal(t, uint64(100), bal)
}

func TestSandboxChangesSkipReads(t *testing.T) {
	sb, _ := newTestSandbox(t)

	_, err := sb.ReadBalance(alice, "USD")
	require.NoError(t, err)
	assert.Empty(t, sb.Changes())

	require.NoError(t, sb.Mint("USD", alice, 1))
	changes := sb.Changes()
	require.Len(t, changes, 2)
	assert.Equal(t, keylet.Balance(alice, "USD"), changes[0].Key, "first touched first")
	assert.Equal(t, ActionInsert, changes[0].Action)
}
