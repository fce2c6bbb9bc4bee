package amm

import (
	"fmt"

	"github.com/LeJamon/goAMMd/internal/core/fixedpoint"
	"github.com/LeJamon/goAMMd/internal/core/ledger"
)

// QuoteDeposit computes a deposit of up to (amountA, amountB) into a pool
// holding (reserveA, reserveB). Amounts must already be limited to what the
// depositor holds.
//
// An empty pool takes both amounts as given. Otherwise the side with the
// smaller reserve is fixed at its requested amount and the other side is
// derived from the pool ratio, rounding down. On equal reserves A is fixed.
func QuoteDeposit(reserveA, reserveB, amountA, amountB uint64) (*DepositResult, error) {
	initial := reserveA == 0 && reserveB == 0

	if !initial {
		var err error
		if reserveA > reserveB {
			amountA, err = fixedpoint.MulDiv(amountB, reserveA, reserveB)
		} else {
			amountB, err = fixedpoint.MulDiv(amountA, reserveB, reserveA)
		}
		if err != nil {
			return nil, fmt.Errorf("derive deposit ratio: %w", err)
		}
	}

	minted, err := fixedpoint.SqrtProduct(amountA, amountB)
	if err != nil {
		return nil, err
	}

	if initial {
		if minted < MinimumLiquidity {
			return nil, fmt.Errorf("%w: %d shares, need at least %d", ErrDepositTooSmall, minted, MinimumLiquidity)
		}
		minted -= MinimumLiquidity
	}

	return &DepositResult{
		AmountA: amountA,
		AmountB: amountB,
		Shares:  minted,
		Initial: initial,
	}, nil
}

// DepositLiquidity adds liquidity to p from depositor and mints shares to
// depositor. Requested amounts above the depositor's holdings are reduced
// to the holdings.
func (e *Engine) DepositLiquidity(l ledger.Ledger, p *Pool, depositor ledger.AccountID, amountA, amountB uint64) (*DepositResult, error) {
	var err error
	if amountA, err = clamp(l, depositor, p.AMint, amountA); err != nil {
		return nil, err
	}
	if amountB, err = clamp(l, depositor, p.BMint, amountB); err != nil {
		return nil, err
	}

	reserveA, reserveB, err := reserves(l, p)
	if err != nil {
		return nil, err
	}

	res, err := QuoteDeposit(reserveA, reserveB, amountA, amountB)
	if err != nil {
		return nil, err
	}

	auth := p.Authority()
	if err := l.Transfer(depositor, auth, p.AMint, res.AmountA); err != nil {
		return nil, err
	}
	if err := l.Transfer(depositor, auth, p.BMint, res.AmountB); err != nil {
		return nil, err
	}
	if err := l.Mint(p.LiquidityMint(), depositor, res.Shares); err != nil {
		return nil, err
	}

	e.logger.Info("liquidity deposited",
		"pool", p.Keylet(),
		"depositor", depositor,
		"amount_a", res.AmountA,
		"amount_b", res.AmountB,
		"shares", res.Shares,
		"initial", res.Initial,
	)
	return res, nil
}

// QuoteWithdraw computes the reserves returned for burning shares out of a
// pool whose circulating share supply is supply. The locked minimum counts
// toward the denominator, so a withdrawal always leaves it backed.
func QuoteWithdraw(shares, reserveA, reserveB, supply uint64) (*WithdrawResult, error) {
	total, err := fixedpoint.Add(supply, MinimumLiquidity)
	if err != nil {
		return nil, err
	}
	a, err := fixedpoint.MulDiv(shares, reserveA, total)
	if err != nil {
		return nil, err
	}
	b, err := fixedpoint.MulDiv(shares, reserveB, total)
	if err != nil {
		return nil, err
	}
	return &WithdrawResult{Shares: shares, AmountA: a, AmountB: b}, nil
}

// WithdrawLiquidity burns shares held by depositor and returns the
// proportional reserves, rounded down, to depositor's holdings of each
// asset.
func (e *Engine) WithdrawLiquidity(l ledger.Ledger, p *Pool, depositor ledger.AccountID, shares uint64) (*WithdrawResult, error) {
	reserveA, reserveB, err := reserves(l, p)
	if err != nil {
		return nil, err
	}
	mint := p.LiquidityMint()
	supply, err := l.Supply(mint)
	if err != nil {
		return nil, err
	}

	res, err := QuoteWithdraw(shares, reserveA, reserveB, supply)
	if err != nil {
		return nil, err
	}

	auth := p.Authority()
	if err := l.Transfer(auth, depositor, p.AMint, res.AmountA); err != nil {
		return nil, err
	}
	if err := l.Transfer(auth, depositor, p.BMint, res.AmountB); err != nil {
		return nil, err
	}
	if err := l.Burn(mint, depositor, shares); err != nil {
		return nil, err
	}

	e.logger.Info("liquidity withdrawn",
		"pool", p.Keylet(),
		"depositor", depositor,
		"shares", shares,
		"amount_a", res.AmountA,
		"amount_b", res.AmountB,
	)
	return res, nil
}
