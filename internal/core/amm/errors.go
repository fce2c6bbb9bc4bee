package amm

import (
	"errors"

	"github.com/LeJamon/goAMMd/internal/core/fixedpoint"
	"github.com/LeJamon/goAMMd/internal/core/ledger"
)

var (
	ErrInvalidFee        = errors.New("invalid fee value")
	ErrDepositTooSmall   = errors.New("depositing too little liquidity")
	ErrOutputTooSmall    = errors.New("output is below the minimum expected")
	ErrInvariantViolated = errors.New("invariant does not hold")
	ErrInvalidSide       = errors.New("invalid swap side")

	// Re-exported so callers can match every engine failure from one
	// package.
	ErrAlreadyExists  = ledger.ErrAlreadyExists
	ErrNotFound       = ledger.ErrNotFound
	ErrOverflow       = fixedpoint.ErrOverflow
	ErrDivisionByZero = fixedpoint.ErrDivisionByZero
)
