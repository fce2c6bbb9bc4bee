package keylet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolKeyDependsOnMintOrder(t *testing.T) {
	amm := AMM("amm-1")
	ab := Pool(amm, "USD", "EUR")
	ba := Pool(amm, "EUR", "USD")

	assert.NotEqual(t, ab.Key, ba.Key)
	assert.Equal(t, ab, Pool(AMM("amm-1"), "USD", "EUR"), "derivation is deterministic")
	assert.NotEqual(t, ab.Key, Pool(AMM("amm-2"), "USD", "EUR").Key)
}

func TestIdentifiersDoNotCollideOnConcatenation(t *testing.T) {
	amm := AMM("x")
	assert.NotEqual(t, Pool(amm, "AB", "C").Key, Pool(amm, "A", "BC").Key)

	owner := [20]byte{1}
	assert.NotEqual(t, Balance(owner, "USD").Key, Supply("USD").Key)
	assert.NotEqual(t, Account(owner).Key, Sequence(owner).Key, "lock scope and sequence share an owner")
}

func TestPoolDerivedIdentities(t *testing.T) {
	pool := Pool(AMM("amm-1"), "USD", "EUR")

	auth := PoolAuthority(pool)
	assert.NotEqual(t, [20]byte{}, auth)
	assert.Equal(t, auth, PoolAuthority(pool))

	mint := LiquidityMint(pool)
	assert.True(t, strings.HasPrefix(mint, LiquidityAssetPrefix))
	assert.Len(t, mint, len(LiquidityAssetPrefix)+40)
}

func TestStorageKeyRoundTrip(t *testing.T) {
	k := AMM("amm-1")
	sk := k.StorageKey()
	require.Len(t, sk, 33)
	assert.Equal(t, byte(TypeAMM), sk[0])

	back, ok := FromStorageKey(sk)
	require.True(t, ok)
	assert.Equal(t, k, back)

	_, ok = FromStorageKey(sk[:10])
	assert.False(t, ok)
}

func TestTypePrefixBoundsStorageKeys(t *testing.T) {
	start, end := TypePrefix(TypePool)
	sk := Pool(AMM("a"), "x", "y").StorageKey()

	assert.True(t, string(sk) >= string(start))
	assert.True(t, string(sk) < string(end))

	other := AMM("a").StorageKey()
	assert.False(t, string(other) >= string(start) && string(other) < string(end))
}
