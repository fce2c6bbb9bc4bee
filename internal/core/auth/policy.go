package auth

import (
	"errors"
	"fmt"

	"github.com/LeJamon/goAMMd/internal/core/ledger"
	"github.com/LeJamon/goAMMd/internal/core/ledger/keylet"
)

// ErrUnauthorized is returned when a caller may not perform an operation.
var ErrUnauthorized = errors.New("unauthorized")

// Operation names a state-changing entry point.
type Operation string

const (
	OpCreateAmm         Operation = "create_amm"
	OpCreatePool        Operation = "create_pool"
	OpDepositLiquidity  Operation = "deposit_liquidity"
	OpWithdrawLiquidity Operation = "withdraw_liquidity"
	OpSwapExactInput    Operation = "swap_exact_input"
	OpFund              Operation = "fund"
)

// Authorizer decides whether caller may perform op on target.
type Authorizer interface {
	Authorize(caller ledger.AccountID, op Operation, target keylet.Keylet) error
}

// Policy is the default Authorizer. AMM operations are open to any
// authenticated caller and only ever move the caller's own holdings.
// Funding is reserved to operators.
type Policy struct {
	operators map[ledger.AccountID]struct{}
}

var _ Authorizer = (*Policy)(nil)

// NewPolicy creates a Policy with the given operators.
func NewPolicy(operators []ledger.AccountID) *Policy {
	p := &Policy{operators: make(map[ledger.AccountID]struct{}, len(operators))}
	for _, op := range operators {
		p.operators[op] = struct{}{}
	}
	return p
}

// IsOperator reports whether id is an operator.
func (p *Policy) IsOperator(id ledger.AccountID) bool {
	_, ok := p.operators[id]
	return ok
}

func (p *Policy) Authorize(caller ledger.AccountID, op Operation, target keylet.Keylet) error {
	if caller.IsZero() {
		return fmt.Errorf("%w: anonymous caller", ErrUnauthorized)
	}
	switch op {
	case OpCreateAmm, OpCreatePool, OpDepositLiquidity, OpWithdrawLiquidity, OpSwapExactInput:
		return nil
	case OpFund:
		if p.IsOperator(caller) {
			return nil
		}
		return fmt.Errorf("%w: %s is not an operator", ErrUnauthorized, caller)
	default:
		return fmt.Errorf("%w: unknown operation %q", ErrUnauthorized, op)
	}
}
