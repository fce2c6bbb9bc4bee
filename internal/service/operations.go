package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/LeJamon/goAMMd/internal/core/amm"
	"github.com/LeJamon/goAMMd/internal/core/auth"
	"github.com/LeJamon/goAMMd/internal/core/ledger"
	"github.com/LeJamon/goAMMd/internal/core/ledger/keylet"
)

// CreateAmm registers AMM id with fee in basis points. A zero admin makes
// the caller the admin.
func (s *Service) CreateAmm(ctx context.Context, caller ledger.AccountID, id string, fee uint64, admin ledger.AccountID) (*amm.AMM, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: amm id is required", ErrInvalidParams)
	}
	if err := amm.ValidateFee(fee); err != nil {
		return nil, err
	}
	k := keylet.AMM(id)
	if err := s.authz.Authorize(caller, auth.OpCreateAmm, k); err != nil {
		return nil, err
	}
	if admin.IsZero() {
		admin = caller
	}

	var created *amm.AMM
	err := s.apply(ctx, caller, []keylet.Keylet{k}, func(l ledger.Ledger) error {
		var err error
		created, err = s.engine.CreateAmm(l, id, uint16(fee), admin)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, &Event{Type: EventAmmCreated, AMM: id, Account: caller.String()})
	return created, nil
}

// CreatePool registers the pool named by ref.
func (s *Service) CreatePool(ctx context.Context, caller ledger.AccountID, ref PoolRef) (*amm.Pool, error) {
	if err := ref.validate(); err != nil {
		return nil, err
	}
	k := ref.Keylet()
	if err := s.authz.Authorize(caller, auth.OpCreatePool, k); err != nil {
		return nil, err
	}

	var created *amm.Pool
	err := s.apply(ctx, caller, []keylet.Keylet{k}, func(l ledger.Ledger) error {
		var err error
		created, err = s.engine.CreatePool(l, ref.AMM, ref.AMint, ref.BMint)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, &Event{
		Type:    EventPoolCreated,
		AMM:     ref.AMM,
		Pool:    k.String(),
		Account: caller.String(),
	})
	return created, nil
}

// DepositLiquidity deposits up to amountA and amountB of the caller's
// holdings into the pool.
func (s *Service) DepositLiquidity(ctx context.Context, caller ledger.AccountID, ref PoolRef, amountA, amountB uint64) (*amm.DepositResult, error) {
	p, err := s.Pool(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(caller, auth.OpDepositLiquidity, p.Keylet()); err != nil {
		return nil, err
	}

	var res *amm.DepositResult
	err = s.apply(ctx, caller, lockScope(caller, p), func(l ledger.Ledger) error {
		var err error
		res, err = s.engine.DepositLiquidity(l, p, caller, amountA, amountB)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, &Event{
		Type:    EventDeposit,
		AMM:     p.AMM,
		Pool:    p.Keylet().String(),
		Account: caller.String(),
		AmountA: res.AmountA,
		AmountB: res.AmountB,
		Shares:  res.Shares,
	})
	return res, nil
}

// WithdrawLiquidity burns shares of the caller's liquidity in the pool.
func (s *Service) WithdrawLiquidity(ctx context.Context, caller ledger.AccountID, ref PoolRef, shares uint64) (*amm.WithdrawResult, error) {
	p, err := s.Pool(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(caller, auth.OpWithdrawLiquidity, p.Keylet()); err != nil {
		return nil, err
	}

	var res *amm.WithdrawResult
	err = s.apply(ctx, caller, lockScope(caller, p), func(l ledger.Ledger) error {
		var err error
		res, err = s.engine.WithdrawLiquidity(l, p, caller, shares)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, &Event{
		Type:    EventWithdraw,
		AMM:     p.AMM,
		Pool:    p.Keylet().String(),
		Account: caller.String(),
		AmountA: res.AmountA,
		AmountB: res.AmountB,
		Shares:  res.Shares,
	})
	return res, nil
}

// SwapExactInput trades input of the caller's side asset for the other
// asset, failing unless at least minOutput comes back.
func (s *Service) SwapExactInput(ctx context.Context, caller ledger.AccountID, ref PoolRef, side amm.Side, input, minOutput uint64) (*amm.SwapResult, error) {
	p, err := s.Pool(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(caller, auth.OpSwapExactInput, p.Keylet()); err != nil {
		return nil, err
	}

	var res *amm.SwapResult
	err = s.apply(ctx, caller, lockScope(caller, p), func(l ledger.Ledger) error {
		var err error
		res, err = s.engine.SwapExactInput(l, p, caller, side, input, minOutput)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, &Event{
		Type:    EventSwap,
		AMM:     p.AMM,
		Pool:    p.Keylet().String(),
		Account: caller.String(),
		Side:    side.String(),
		Input:   res.Input,
		Output:  res.Output,
	})
	return res, nil
}

// Fund mints amount of asset to the recipient. Liquidity shares can only be
// minted by deposits.
func (s *Service) Fund(ctx context.Context, caller, to ledger.AccountID, asset ledger.Asset, amount uint64) error {
	if asset == "" || to.IsZero() {
		return fmt.Errorf("%w: recipient and asset are required", ErrInvalidParams)
	}
	if strings.HasPrefix(string(asset), keylet.LiquidityAssetPrefix) {
		return fmt.Errorf("%w: cannot fund liquidity asset %s", ErrInvalidParams, asset)
	}
	if err := s.authz.Authorize(caller, auth.OpFund, keylet.Account(to)); err != nil {
		return err
	}

	scope := []keylet.Keylet{keylet.Account(to), keylet.Supply(string(asset))}
	err := s.apply(ctx, caller, scope, func(l ledger.Ledger) error {
		return l.Mint(asset, to, amount)
	})
	if err != nil {
		return err
	}

	s.logger.Info("account funded", "account", to, "asset", asset, "amount", amount)
	s.record(ctx, &Event{
		Type:    EventFund,
		Account: to.String(),
		Asset:   string(asset),
		Amount:  amount,
	})
	return nil
}
