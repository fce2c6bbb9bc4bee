package amm

import (
	"fmt"
	"strings"

	"github.com/LeJamon/goAMMd/internal/core/ledger"
	"github.com/LeJamon/goAMMd/internal/core/ledger/keylet"
)

// AMM is a configuration scope that owns a fee and groups pools.
type AMM struct {
	ID    string           `codec:"id" json:"id"`
	Admin ledger.AccountID `codec:"admin" json:"admin"`
	// Fee is in basis points, 0 <= Fee < FeeDenominator.
	Fee uint16 `codec:"fee" json:"fee"`
}

// Keylet returns the key the AMM record is stored under.
func (a *AMM) Keylet() keylet.Keylet {
	return keylet.AMM(a.ID)
}

// Pool is the record of a two-asset reserve pair. Reserves are not stored
// here: they are the pool authority's balances.
type Pool struct {
	AMM   string       `codec:"amm" json:"amm"`
	AMint ledger.Asset `codec:"a_mint" json:"a_mint"`
	BMint ledger.Asset `codec:"b_mint" json:"b_mint"`
}

// Keylet returns the key the pool record is stored under.
func (p *Pool) Keylet() keylet.Keylet {
	return keylet.Pool(keylet.AMM(p.AMM), string(p.AMint), string(p.BMint))
}

// Authority returns the account holding the pool's reserves.
func (p *Pool) Authority() ledger.AccountID {
	return keylet.PoolAuthority(p.Keylet())
}

// LiquidityMint returns the asset of the pool's liquidity shares.
func (p *Pool) LiquidityMint() ledger.Asset {
	return ledger.Asset(keylet.LiquidityMint(p.Keylet()))
}

// Side names the asset a trader gives to a pool.
type Side int

const (
	SideA Side = iota
	SideB
)

func (s Side) String() string {
	switch s {
	case SideA:
		return "a"
	case SideB:
		return "b"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// ParseSide accepts "a" or "b" in any case.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(s) {
	case "a":
		return SideA, nil
	case "b":
		return SideB, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidSide, s)
	}
}

// assets returns the input and output asset for a trade giving side s.
func (p *Pool) assets(s Side) (in, out ledger.Asset, err error) {
	switch s {
	case SideA:
		return p.AMint, p.BMint, nil
	case SideB:
		return p.BMint, p.AMint, nil
	default:
		return "", "", fmt.Errorf("%w: %d", ErrInvalidSide, int(s))
	}
}

// PoolState is a snapshot of a pool's reserves and share supply.
type PoolState struct {
	ReserveA uint64 `json:"reserve_a"`
	ReserveB uint64 `json:"reserve_b"`
	// Supply counts circulating shares only.
	Supply uint64 `json:"supply"`
	// Locked is the share count never minted to anyone: MinimumLiquidity
	// once the pool holds reserves, zero before.
	Locked uint64 `json:"locked"`
}

// Empty reports whether the pool holds no reserves.
func (s *PoolState) Empty() bool {
	return s.ReserveA == 0 && s.ReserveB == 0
}

// DepositResult reports what a deposit moved.
type DepositResult struct {
	AmountA uint64 `json:"amount_a"`
	AmountB uint64 `json:"amount_b"`
	// Shares is what the depositor received, net of the locked minimum on
	// the first deposit.
	Shares  uint64 `json:"shares"`
	Initial bool   `json:"initial"`
}

// WithdrawResult reports what a withdrawal moved.
type WithdrawResult struct {
	Shares  uint64 `json:"shares"`
	AmountA uint64 `json:"amount_a"`
	AmountB uint64 `json:"amount_b"`
}

// SwapResult reports what a swap moved.
type SwapResult struct {
	Side   Side   `json:"-"`
	Input  uint64 `json:"input"`
	Taxed  uint64 `json:"taxed"`
	Output uint64 `json:"output"`
}
