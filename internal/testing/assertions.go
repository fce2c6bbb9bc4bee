package testing

import (
	"testing"

	"github.com/LeJamon/goAMMd/internal/core/fixedpoint"
	"github.com/LeJamon/goAMMd/internal/core/ledger"
	"github.com/LeJamon/goAMMd/internal/service"
	"github.com/stretchr/testify/require"
)

// RequireBalance asserts that acc holds exactly expected of asset.
func RequireBalance(t *testing.T, env *TestEnv, acc *Account, asset ledger.Asset, expected uint64) {
	t.Helper()
	actual := env.Balance(acc, asset)
	require.Equal(t, expected, actual,
		"Account %s %s balance mismatch: expected %d, got %d",
		acc.Name, asset, expected, actual)
}

// RequireShares asserts that acc holds exactly expected liquidity shares
// of the pool.
func RequireShares(t *testing.T, env *TestEnv, acc *Account, ref service.PoolRef, expected uint64) {
	t.Helper()
	actual := env.Shares(acc, ref)
	require.Equal(t, expected, actual,
		"Account %s share mismatch: expected %d, got %d",
		acc.Name, expected, actual)
}

// RequireReserves asserts the pool's reserves.
func RequireReserves(t *testing.T, env *TestEnv, ref service.PoolRef, reserveA, reserveB uint64) {
	t.Helper()
	st := env.State(ref)
	require.Equal(t, reserveA, st.ReserveA, "reserve A mismatch")
	require.Equal(t, reserveB, st.ReserveB, "reserve B mismatch")
}

// RequireInvariantHeld asserts that the pool's reserve product did not
// decrease from before.
func RequireInvariantHeld(t *testing.T, before, after *service.PoolInfo) {
	t.Helper()
	lhs := fixedpoint.Mul(after.ReserveA, after.ReserveB)
	rhs := fixedpoint.Mul(before.ReserveA, before.ReserveB)
	require.False(t, lhs.Lt(rhs),
		"reserve product decreased: %d*%d < %d*%d",
		after.ReserveA, after.ReserveB, before.ReserveA, before.ReserveB)
}
