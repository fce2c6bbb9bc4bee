package keylet

import (
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"
)

// Type identifies the namespace a keylet belongs to. Its value is also the
// space tag mixed into the key hash and the prefix byte of the storage key.
type Type uint16

// Space identifiers for keylet generation
const (
	TypeAMM           Type = 'A' // AMM instance
	TypePool          Type = 'P' // Pool
	TypePoolAuthority Type = 'a' // Pool authority account
	TypeLiquidityMint Type = 'L' // Pool liquidity share mint
	TypeBalance       Type = 'b' // Balance of (owner, asset)
	TypeSupply        Type = 's' // Outstanding supply of an asset
	TypeAccount       Type = 'k' // Account lock scope
	TypeSequence      Type = 'q' // Next request sequence of an account
)

// LiquidityAssetPrefix prefixes the identifier of every liquidity share mint.
const LiquidityAssetPrefix = "lp:"

// Keylet represents an addressable location in the ledger state.
// It combines a type identifier with a 256-bit key.
type Keylet struct {
	Type Type
	Key  [32]byte
}

// String returns the hex form of the key.
func (k Keylet) String() string {
	return hex.EncodeToString(k.Key[:])
}

// StorageKey returns the key under which the entry is persisted: one prefix
// byte for the type followed by the 32-byte key, so that entries of a type
// are contiguous.
func (k Keylet) StorageKey() []byte {
	out := make([]byte, 0, 33)
	out = append(out, byte(k.Type))
	return append(out, k.Key[:]...)
}

// TypePrefix returns the storage key range [start, end) covering every
// entry of type t.
func TypePrefix(t Type) (start, end []byte) {
	return []byte{byte(t)}, []byte{byte(t) + 1}
}

// FromStorageKey reverses StorageKey.
func FromStorageKey(b []byte) (Keylet, bool) {
	if len(b) != 33 {
		return Keylet{}, false
	}
	k := Keylet{Type: Type(b[0])}
	copy(k.Key[:], b[1:])
	return k, true
}

// indexHash computes a keylet key by hashing the space and provided data.
func indexHash(space Type, data ...[]byte) [32]byte {
	h := sha512.New()
	var spaceBytes [2]byte
	binary.BigEndian.PutUint16(spaceBytes[:], uint16(space))
	h.Write(spaceBytes[:])
	for _, d := range data {
		h.Write(d)
	}
	var result [32]byte
	copy(result[:], h.Sum(nil)[:32])
	return result
}

// lengthPrefixed keeps variable-length identifiers from colliding when
// concatenated.
func lengthPrefixed(s string) []byte {
	out := make([]byte, 4, 4+len(s))
	binary.BigEndian.PutUint32(out, uint32(len(s)))
	return append(out, s...)
}

// AMM returns the keylet for an AMM instance record.
func AMM(id string) Keylet {
	return Keylet{
		Type: TypeAMM,
		Key:  indexHash(TypeAMM, lengthPrefixed(id)),
	}
}

// Pool returns the keylet for the pool of (aMint, bMint) under an AMM.
// The mint order is significant.
func Pool(amm Keylet, aMint, bMint string) Keylet {
	return Keylet{
		Type: TypePool,
		Key:  indexHash(TypePool, amm.Key[:], lengthPrefixed(aMint), lengthPrefixed(bMint)),
	}
}

// PoolAuthority returns the account that holds a pool's reserves and
// controls its liquidity mint.
func PoolAuthority(pool Keylet) [20]byte {
	h := indexHash(TypePoolAuthority, pool.Key[:])
	var id [20]byte
	copy(id[:], h[:20])
	return id
}

// LiquidityMint returns the asset identifier of a pool's share mint.
func LiquidityMint(pool Keylet) string {
	h := indexHash(TypeLiquidityMint, pool.Key[:])
	return LiquidityAssetPrefix + hex.EncodeToString(h[:20])
}

// Balance returns the keylet holding owner's balance of asset.
func Balance(owner [20]byte, asset string) Keylet {
	return Keylet{
		Type: TypeBalance,
		Key:  indexHash(TypeBalance, owner[:], lengthPrefixed(asset)),
	}
}

// Supply returns the keylet holding the outstanding supply of asset.
func Supply(asset string) Keylet {
	return Keylet{
		Type: TypeSupply,
		Key:  indexHash(TypeSupply, lengthPrefixed(asset)),
	}
}

// Account returns the keylet used to serialize mutations of an owner's
// balances.
func Account(owner [20]byte) Keylet {
	return Keylet{
		Type: TypeAccount,
		Key:  indexHash(TypeAccount, owner[:]),
	}
}

// Sequence returns the keylet holding the next signed request sequence of
// owner.
func Sequence(owner [20]byte) Keylet {
	return Keylet{
		Type: TypeSequence,
		Key:  indexHash(TypeSequence, owner[:]),
	}
}
