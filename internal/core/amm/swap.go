package amm

import (
	"fmt"

	"github.com/LeJamon/goAMMd/internal/core/fixedpoint"
	"github.com/LeJamon/goAMMd/internal/core/ledger"
)

// TaxedInput returns input less the fee, with the fee rounded down.
func TaxedInput(input uint64, feeBps uint16) (uint64, error) {
	if uint64(feeBps) >= FeeDenominator {
		return 0, fmt.Errorf("%w: %d bps", ErrInvalidFee, feeBps)
	}
	fee, err := fixedpoint.MulDiv(input, uint64(feeBps), FeeDenominator)
	if err != nil {
		return 0, err
	}
	return fixedpoint.Sub(input, fee)
}

// QuoteSwap computes the output of trading input into a pool with the given
// reserves: floor(taxed * reserveOut / (reserveIn + taxed)).
func QuoteSwap(feeBps uint16, input, reserveIn, reserveOut uint64) (*SwapResult, error) {
	if reserveIn == 0 || reserveOut == 0 {
		return nil, fmt.Errorf("pool has no liquidity: %w", ErrDivisionByZero)
	}
	taxed, err := TaxedInput(input, feeBps)
	if err != nil {
		return nil, err
	}
	denom, err := fixedpoint.Add(reserveIn, taxed)
	if err != nil {
		return nil, err
	}
	out, err := fixedpoint.MulDiv(taxed, reserveOut, denom)
	if err != nil {
		return nil, err
	}
	return &SwapResult{Input: input, Taxed: taxed, Output: out}, nil
}

// QuoteSwapInPool quotes a swap against the current state of p without
// changing anything. input is not limited to any holder's balance.
func QuoteSwapInPool(l ledger.Ledger, p *Pool, side Side, input uint64) (*SwapResult, error) {
	a, err := GetAmm(l, p.AMM)
	if err != nil {
		return nil, err
	}
	reserveIn, reserveOut, err := sideReserves(l, p, side)
	if err != nil {
		return nil, err
	}
	res, err := QuoteSwap(a.Fee, input, reserveIn, reserveOut)
	if err != nil {
		return nil, err
	}
	res.Side = side
	return res, nil
}

func sideReserves(l ledger.Ledger, p *Pool, side Side) (in, out uint64, err error) {
	a, b, err := reserves(l, p)
	if err != nil {
		return 0, 0, err
	}
	switch side {
	case SideA:
		return a, b, nil
	case SideB:
		return b, a, nil
	default:
		return 0, 0, fmt.Errorf("%w: %d", ErrInvalidSide, int(side))
	}
}

// SwapExactInput trades up to input of the side asset from trader into p
// for the other asset, using the fee of the pool's AMM. Input above the
// trader's holding is reduced to the holding. The trade fails with
// ErrOutputTooSmall, before anything moves, if it would pay less than
// minOutput, and with ErrInvariantViolated if the reserves after the
// transfers have a smaller product than before.
func (e *Engine) SwapExactInput(l ledger.Ledger, p *Pool, trader ledger.AccountID, side Side, input, minOutput uint64) (*SwapResult, error) {
	inAsset, outAsset, err := p.assets(side)
	if err != nil {
		return nil, err
	}
	a, err := GetAmm(l, p.AMM)
	if err != nil {
		return nil, err
	}

	if input, err = clamp(l, trader, inAsset, input); err != nil {
		return nil, err
	}

	reserveIn, reserveOut, err := sideReserves(l, p, side)
	if err != nil {
		return nil, err
	}

	res, err := QuoteSwap(a.Fee, input, reserveIn, reserveOut)
	if err != nil {
		return nil, err
	}
	res.Side = side
	if res.Output < minOutput {
		return nil, fmt.Errorf("%w: %d < %d", ErrOutputTooSmall, res.Output, minOutput)
	}

	invariant := fixedpoint.Mul(reserveIn, reserveOut)

	auth := p.Authority()
	if err := l.Transfer(trader, auth, inAsset, res.Input); err != nil {
		return nil, err
	}
	if err := l.Transfer(auth, trader, outAsset, res.Output); err != nil {
		return nil, err
	}

	// The asset system may have levied transfer fees, so the reserves are
	// read back rather than derived.
	afterIn, afterOut, err := sideReserves(l, p, side)
	if err != nil {
		return nil, err
	}
	if fixedpoint.Mul(afterIn, afterOut).Lt(invariant) {
		return nil, fmt.Errorf("%w: reserves %d*%d below %d*%d", ErrInvariantViolated, afterIn, afterOut, reserveIn, reserveOut)
	}

	e.logger.Info("traded",
		"pool", p.Keylet(),
		"trader", trader,
		"side", side,
		"input", res.Input,
		"taxed", res.Taxed,
		"output", res.Output,
	)
	return res, nil
}
