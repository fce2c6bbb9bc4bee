package service

import (
	"context"
	"fmt"

	"github.com/LeJamon/goAMMd/internal/core/amm"
	"github.com/LeJamon/goAMMd/internal/core/fixedpoint"
	"github.com/LeJamon/goAMMd/internal/core/ledger"
	"github.com/LeJamon/goAMMd/internal/core/ledger/keylet"
	"github.com/LeJamon/goAMMd/internal/storage/relationaldb"
)

// DefaultHistoryLimit bounds History when the caller passes no limit.
const DefaultHistoryLimit = 50

// PoolInfo describes a pool and its current state.
type PoolInfo struct {
	amm.Pool
	Key           string           `json:"pool"`
	Authority     ledger.AccountID `json:"authority"`
	LiquidityMint ledger.Asset     `json:"liquidity_mint"`
	Fee           uint16           `json:"fee"`
	amm.PoolState
	// Price is ReserveB / ReserveA, empty while either reserve is zero.
	Price string `json:"price,omitempty"`
}

// Amm returns the AMM registered under id.
func (s *Service) Amm(ctx context.Context, id string) (*amm.AMM, error) {
	var a *amm.AMM
	err := s.ledger.View(ctx, func(l ledger.Ledger) error {
		var err error
		a, err = amm.GetAmm(l, id)
		return err
	})
	return a, err
}

// Pool returns the pool record named by ref.
func (s *Service) Pool(ctx context.Context, ref PoolRef) (*amm.Pool, error) {
	if err := ref.validate(); err != nil {
		return nil, err
	}
	var p *amm.Pool
	err := s.ledger.View(ctx, func(l ledger.Ledger) error {
		var err error
		p, err = amm.GetPoolByKey(l, ref.Keylet())
		return err
	})
	return p, err
}

// PoolState returns the pool named by ref with its reserves and supply.
func (s *Service) PoolState(ctx context.Context, ref PoolRef) (*PoolInfo, error) {
	if err := ref.validate(); err != nil {
		return nil, err
	}
	var info *PoolInfo
	err := s.ledger.ViewScope(ctx, poolScope(ref.Keylet()), func(l ledger.Ledger) error {
		p, err := amm.GetPoolByKey(l, ref.Keylet())
		if err != nil {
			return err
		}
		info, err = poolInfo(l, p)
		return err
	})
	return info, err
}

func poolInfo(l ledger.Ledger, p *amm.Pool) (*PoolInfo, error) {
	a, err := amm.GetAmm(l, p.AMM)
	if err != nil {
		return nil, err
	}
	st, err := amm.ReadPoolState(l, p)
	if err != nil {
		return nil, err
	}
	info := &PoolInfo{
		Pool:          *p,
		Key:           p.Keylet().String(),
		Authority:     p.Authority(),
		LiquidityMint: p.LiquidityMint(),
		Fee:           a.Fee,
		PoolState:     *st,
	}
	if st.ReserveA > 0 && st.ReserveB > 0 {
		price, err := fixedpoint.Ratio(st.ReserveB, st.ReserveA)
		if err != nil {
			return nil, err
		}
		info.Price = price.String()
	}
	return info, nil
}

// ListAmms returns every registered AMM in key order.
func (s *Service) ListAmms(ctx context.Context) ([]*amm.AMM, error) {
	_, values, err := s.ledger.Records(ctx, keylet.TypeAMM)
	if err != nil {
		return nil, err
	}
	out := make([]*amm.AMM, 0, len(values))
	for _, v := range values {
		var a amm.AMM
		if err := ledger.DecodeRecord(v, &a); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, nil
}

// ListPools returns every registered pool with its state, in key order.
// A non-empty ammID restricts the result to that AMM.
func (s *Service) ListPools(ctx context.Context, ammID string) ([]*PoolInfo, error) {
	_, values, err := s.ledger.Records(ctx, keylet.TypePool)
	if err != nil {
		return nil, err
	}
	out := make([]*PoolInfo, 0, len(values))
	for _, v := range values {
		p, err := amm.DecodePool(v)
		if err != nil {
			return nil, err
		}
		if ammID != "" && p.AMM != ammID {
			continue
		}
		err = s.ledger.ViewScope(ctx, poolScope(p.Keylet()), func(l ledger.Ledger) error {
			info, err := poolInfo(l, p)
			if err != nil {
				return err
			}
			out = append(out, info)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// poolScope locks the pool authority's holdings, which every operation
// changing the pool's reserves or share supply also locks.
func poolScope(pool keylet.Keylet) []keylet.Keylet {
	return []keylet.Keylet{keylet.Account(keylet.PoolAuthority(pool))}
}

// Balance returns account's holding of asset.
func (s *Service) Balance(ctx context.Context, account ledger.AccountID, asset ledger.Asset) (uint64, error) {
	var bal uint64
	err := s.ledger.View(ctx, func(l ledger.Ledger) error {
		var err error
		bal, err = l.ReadBalance(account, asset)
		return err
	})
	return bal, err
}

// Sequence returns the sequence account's next signed request must carry.
func (s *Service) Sequence(ctx context.Context, account ledger.AccountID) (uint64, error) {
	var seq uint64
	err := s.ledger.View(ctx, func(l ledger.Ledger) error {
		var err error
		seq, err = l.ReadSequence(account)
		return err
	})
	return seq, err
}

// Supply returns the outstanding supply of asset.
func (s *Service) Supply(ctx context.Context, asset ledger.Asset) (uint64, error) {
	var supply uint64
	err := s.ledger.View(ctx, func(l ledger.Ledger) error {
		var err error
		supply, err = l.Supply(asset)
		return err
	})
	return supply, err
}

// QuoteSwap computes what trading input on side would return right now.
func (s *Service) QuoteSwap(ctx context.Context, ref PoolRef, side amm.Side, input uint64) (*amm.SwapResult, error) {
	if err := ref.validate(); err != nil {
		return nil, err
	}
	var res *amm.SwapResult
	err := s.ledger.ViewScope(ctx, poolScope(ref.Keylet()), func(l ledger.Ledger) error {
		p, err := amm.GetPoolByKey(l, ref.Keylet())
		if err != nil {
			return err
		}
		res, err = amm.QuoteSwapInPool(l, p, side, input)
		return err
	})
	return res, err
}

// QuoteDeposit computes what depositing amountA and amountB would move,
// ignoring any holder's balance.
func (s *Service) QuoteDeposit(ctx context.Context, ref PoolRef, amountA, amountB uint64) (*amm.DepositResult, error) {
	info, err := s.PoolState(ctx, ref)
	if err != nil {
		return nil, err
	}
	return amm.QuoteDeposit(info.ReserveA, info.ReserveB, amountA, amountB)
}

// QuoteWithdraw computes what burning shares would return.
func (s *Service) QuoteWithdraw(ctx context.Context, ref PoolRef, shares uint64) (*amm.WithdrawResult, error) {
	info, err := s.PoolState(ctx, ref)
	if err != nil {
		return nil, err
	}
	return amm.QuoteWithdraw(shares, info.ReserveA, info.ReserveB, info.Supply)
}

// History returns recent journaled operations, newest first. A nil ref
// returns operations across all pools.
func (s *Service) History(ctx context.Context, ref *PoolRef, limit int) ([]relationaldb.Entry, error) {
	if s.journal == nil {
		return nil, ErrJournalDisabled
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	pool := ""
	if ref != nil {
		if err := ref.validate(); err != nil {
			return nil, err
		}
		pool = ref.Keylet().String()
	}
	entries, err := s.journal.Recent(ctx, pool, limit)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return entries, nil
}
