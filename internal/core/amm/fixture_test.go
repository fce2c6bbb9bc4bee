package amm

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/LeJamon/goAMMd/internal/core/ledger"
	"github.com/LeJamon/goAMMd/internal/storage/database/memory"
	"github.com/stretchr/testify/require"
)

var (
	admin = ledger.AccountID{0xAD}
	alice = ledger.AccountID{0xA1}
	bob   = ledger.AccountID{0xB0}
)

const (
	usd ledger.Asset = "USD"
	eur ledger.Asset = "EUR"
)

type fixture struct {
	t      *testing.T
	ledger *ledger.Sandbox
	engine *Engine
	amm    *AMM
	pool   *Pool
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newFixture creates an AMM with the given fee and an empty USD/EUR pool.
func newFixture(t *testing.T, fee uint16) *fixture {
	t.Helper()
	f := &fixture{
		t:      t,
		ledger: ledger.NewSandbox(context.Background(), memory.NewDB()),
		engine: NewEngine(quietLogger()),
	}

	var err error
	f.amm, err = f.engine.CreateAmm(f.ledger, "amm-1", fee, admin)
	require.NoError(t, err)
	f.pool, err = f.engine.CreatePool(f.ledger, "amm-1", usd, eur)
	require.NoError(t, err)
	return f
}

func (f *fixture) fund(owner ledger.AccountID, asset ledger.Asset, amount uint64) {
	f.t.Helper()
	require.NoError(f.t, f.ledger.Mint(asset, owner, amount))
}

func (f *fixture) balance(owner ledger.AccountID, asset ledger.Asset) uint64 {
	f.t.Helper()
	bal, err := f.ledger.ReadBalance(owner, asset)
	require.NoError(f.t, err)
	return bal
}

func (f *fixture) shares(owner ledger.AccountID) uint64 {
	f.t.Helper()
	return f.balance(owner, f.pool.LiquidityMint())
}

func (f *fixture) state() *PoolState {
	f.t.Helper()
	s, err := ReadPoolState(f.ledger, f.pool)
	require.NoError(f.t, err)
	return s
}

// seed funds alice and deposits (a, b) as the first liquidity.
func (f *fixture) seed(a, b uint64) *DepositResult {
	f.t.Helper()
	f.fund(alice, usd, a)
	f.fund(alice, eur, b)
	res, err := f.engine.DepositLiquidity(f.ledger, f.pool, alice, a, b)
	require.NoError(f.t, err)
	return res
}
