package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/goAMMd/internal/core/amm"
	"github.com/LeJamon/goAMMd/internal/core/ledger"
	"github.com/LeJamon/goAMMd/internal/rpc/rpc_types"
)

// PingMethod handles the ping RPC method
type PingMethod struct{ base }

func (m *PingMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	return map[string]interface{}{}, nil
}

// AmmInfoMethod handles the amm_info RPC method
type AmmInfoMethod struct{ base }

func (m *AmmInfoMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		AMM string `json:"amm_id"`
	}
	if err := decodeParams(params, &request); err != nil {
		return nil, err
	}
	if request.AMM == "" {
		return nil, rpc_types.RpcErrorInvalidParams("Missing field 'amm_id'")
	}

	a, err := m.Service.Amm(ctx.Context, request.AMM)
	if err != nil {
		return nil, rpc_types.FromError(err)
	}
	pools, err := m.Service.ListPools(ctx.Context, request.AMM)
	if err != nil {
		return nil, rpc_types.FromError(err)
	}
	return map[string]interface{}{
		"amm":   a,
		"pools": pools,
	}, nil
}

// ListAmmsMethod handles the list_amms RPC method
type ListAmmsMethod struct{ base }

func (m *ListAmmsMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	amms, err := m.Service.ListAmms(ctx.Context)
	if err != nil {
		return nil, rpc_types.FromError(err)
	}
	return map[string]interface{}{"amms": amms}, nil
}

// PoolInfoMethod handles the pool_info RPC method
type PoolInfoMethod struct{ base }

func (m *PoolInfoMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request rpc_types.PoolParams
	if err := decodeParams(params, &request); err != nil {
		return nil, err
	}

	info, err := m.Service.PoolState(ctx.Context, request.Ref())
	if err != nil {
		return nil, rpc_types.FromError(err)
	}
	return map[string]interface{}{"pool": info}, nil
}

// ListPoolsMethod handles the list_pools RPC method
type ListPoolsMethod struct{ base }

func (m *ListPoolsMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		AMM string `json:"amm_id,omitempty"`
	}
	if err := decodeParams(params, &request); err != nil {
		return nil, err
	}

	pools, err := m.Service.ListPools(ctx.Context, request.AMM)
	if err != nil {
		return nil, rpc_types.FromError(err)
	}
	return map[string]interface{}{"pools": pools}, nil
}

// BalanceMethod handles the balance RPC method
type BalanceMethod struct{ base }

func (m *BalanceMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		Account string `json:"account"`
		Asset   string `json:"asset"`
	}
	if err := decodeParams(params, &request); err != nil {
		return nil, err
	}
	if request.Asset == "" {
		return nil, rpc_types.RpcErrorInvalidParams("Missing field 'asset'")
	}
	account, err := ledger.ParseAccountID(request.Account)
	if err != nil {
		return nil, rpc_types.FromError(err)
	}

	bal, err := m.Service.Balance(ctx.Context, account, ledger.Asset(request.Asset))
	if err != nil {
		return nil, rpc_types.FromError(err)
	}
	supply, err := m.Service.Supply(ctx.Context, ledger.Asset(request.Asset))
	if err != nil {
		return nil, rpc_types.FromError(err)
	}
	return map[string]interface{}{
		"account": account,
		"asset":   request.Asset,
		"balance": bal,
		"supply":  supply,
	}, nil
}

// AccountInfoMethod handles the account_info RPC method
type AccountInfoMethod struct{ base }

func (m *AccountInfoMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		Account string `json:"account"`
	}
	if err := decodeParams(params, &request); err != nil {
		return nil, err
	}
	account, err := ledger.ParseAccountID(request.Account)
	if err != nil {
		return nil, rpc_types.FromError(err)
	}

	seq, err := m.Service.Sequence(ctx.Context, account)
	if err != nil {
		return nil, rpc_types.FromError(err)
	}
	return map[string]interface{}{
		"account":  account,
		"sequence": seq,
	}, nil
}

// QuoteSwapMethod handles the quote_swap RPC method
type QuoteSwapMethod struct{ base }

func (m *QuoteSwapMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		rpc_types.PoolParams
		Side  string `json:"side"`
		Input uint64 `json:"input"`
	}
	if err := decodeParams(params, &request); err != nil {
		return nil, err
	}
	side, err := amm.ParseSide(request.Side)
	if err != nil {
		return nil, rpc_types.FromError(err)
	}

	res, err := m.Service.QuoteSwap(ctx.Context, request.Ref(), side, request.Input)
	if err != nil {
		return nil, rpc_types.FromError(err)
	}
	return map[string]interface{}{
		"side":  side.String(),
		"quote": res,
	}, nil
}

// QuoteDepositMethod handles the quote_deposit RPC method
type QuoteDepositMethod struct{ base }

func (m *QuoteDepositMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		rpc_types.PoolParams
		AmountA uint64 `json:"amount_a"`
		AmountB uint64 `json:"amount_b"`
	}
	if err := decodeParams(params, &request); err != nil {
		return nil, err
	}

	res, err := m.Service.QuoteDeposit(ctx.Context, request.Ref(), request.AmountA, request.AmountB)
	if err != nil {
		return nil, rpc_types.FromError(err)
	}
	return map[string]interface{}{"quote": res}, nil
}

// QuoteWithdrawMethod handles the quote_withdraw RPC method
type QuoteWithdrawMethod struct{ base }

func (m *QuoteWithdrawMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		rpc_types.PoolParams
		Shares uint64 `json:"shares"`
	}
	if err := decodeParams(params, &request); err != nil {
		return nil, err
	}

	res, err := m.Service.QuoteWithdraw(ctx.Context, request.Ref(), request.Shares)
	if err != nil {
		return nil, rpc_types.FromError(err)
	}
	return map[string]interface{}{"quote": res}, nil
}

// HistoryMethod handles the history RPC method
type HistoryMethod struct{ base }

func (m *HistoryMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		rpc_types.PoolParams
		Limit int `json:"limit,omitempty"`
	}
	if err := decodeParams(params, &request); err != nil {
		return nil, err
	}

	// without a pool, history spans every pool
	ref := request.Ref()
	refp := &ref
	if request.AMM == "" && request.AMint == "" && request.BMint == "" {
		refp = nil
	}

	entries, err := m.Service.History(ctx.Context, refp, request.Limit)
	if err != nil {
		return nil, rpc_types.FromError(err)
	}
	return map[string]interface{}{"entries": entries}, nil
}
