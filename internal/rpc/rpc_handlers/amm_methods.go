package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/goAMMd/internal/core/amm"
	"github.com/LeJamon/goAMMd/internal/core/ledger"
	"github.com/LeJamon/goAMMd/internal/rpc/rpc_types"
	"github.com/LeJamon/goAMMd/internal/service"
)

// base carries the service every handler calls into.
type base struct {
	Service *service.Service
}

func (b *base) RequiredRole() rpc_types.Role {
	return rpc_types.RoleGuest
}

// signed is embedded by state-changing methods.
type signed struct {
	base
}

func (s *signed) RequiredRole() rpc_types.Role {
	return rpc_types.RoleUser
}

// decodeParams unmarshals params into request. Absent params leave the
// request zeroed.
func decodeParams(params json.RawMessage, request interface{}) *rpc_types.RpcError {
	if params == nil {
		return nil
	}
	if err := json.Unmarshal(params, request); err != nil {
		return rpc_types.RpcErrorInvalidParams("Invalid parameters: " + err.Error())
	}
	return nil
}

// CreateAmmMethod handles the create_amm RPC method
type CreateAmmMethod struct{ signed }

func (m *CreateAmmMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		AMM   string `json:"amm_id"`
		Fee   uint64 `json:"fee"`
		Admin string `json:"admin,omitempty"`
	}
	if err := decodeParams(params, &request); err != nil {
		return nil, err
	}

	var admin ledger.AccountID
	if request.Admin != "" {
		id, err := ledger.ParseAccountID(request.Admin)
		if err != nil {
			return nil, rpc_types.RpcErrorInvalidParams(err.Error())
		}
		admin = id
	}

	a, err := m.Service.CreateAmm(ctx.Context, ctx.Caller, request.AMM, request.Fee, admin)
	if err != nil {
		return nil, rpc_types.FromError(err)
	}
	return map[string]interface{}{"amm": a}, nil
}

// CreatePoolMethod handles the create_pool RPC method
type CreatePoolMethod struct{ signed }

func (m *CreatePoolMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request rpc_types.PoolParams
	if err := decodeParams(params, &request); err != nil {
		return nil, err
	}

	p, err := m.Service.CreatePool(ctx.Context, ctx.Caller, request.Ref())
	if err != nil {
		return nil, rpc_types.FromError(err)
	}
	return map[string]interface{}{
		"pool":           p.Keylet().String(),
		"amm_id":         p.AMM,
		"a_mint":         p.AMint,
		"b_mint":         p.BMint,
		"authority":      p.Authority(),
		"liquidity_mint": p.LiquidityMint(),
	}, nil
}

// DepositLiquidityMethod handles the deposit_liquidity RPC method
type DepositLiquidityMethod struct{ signed }

func (m *DepositLiquidityMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		rpc_types.PoolParams
		AmountA uint64 `json:"amount_a"`
		AmountB uint64 `json:"amount_b"`
	}
	if err := decodeParams(params, &request); err != nil {
		return nil, err
	}

	res, err := m.Service.DepositLiquidity(ctx.Context, ctx.Caller, request.Ref(), request.AmountA, request.AmountB)
	if err != nil {
		return nil, rpc_types.FromError(err)
	}
	return map[string]interface{}{"deposit": res}, nil
}

// WithdrawLiquidityMethod handles the withdraw_liquidity RPC method
type WithdrawLiquidityMethod struct{ signed }

func (m *WithdrawLiquidityMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		rpc_types.PoolParams
		Shares uint64 `json:"shares"`
	}
	if err := decodeParams(params, &request); err != nil {
		return nil, err
	}

	res, err := m.Service.WithdrawLiquidity(ctx.Context, ctx.Caller, request.Ref(), request.Shares)
	if err != nil {
		return nil, rpc_types.FromError(err)
	}
	return map[string]interface{}{"withdraw": res}, nil
}

// SwapExactInputMethod handles the swap_exact_input RPC method
type SwapExactInputMethod struct{ signed }

func (m *SwapExactInputMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		rpc_types.PoolParams
		Side      string `json:"side"`
		Input     uint64 `json:"input"`
		MinOutput uint64 `json:"min_output"`
	}
	if err := decodeParams(params, &request); err != nil {
		return nil, err
	}
	side, err := amm.ParseSide(request.Side)
	if err != nil {
		return nil, rpc_types.FromError(err)
	}

	res, err := m.Service.SwapExactInput(ctx.Context, ctx.Caller, request.Ref(), side, request.Input, request.MinOutput)
	if err != nil {
		return nil, rpc_types.FromError(err)
	}
	return map[string]interface{}{
		"side": side.String(),
		"swap": res,
	}, nil
}

// FundMethod handles the fund RPC method
type FundMethod struct{ signed }

func (m *FundMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		Destination string `json:"destination"`
		Asset       string `json:"asset"`
		Amount      uint64 `json:"amount"`
	}
	if err := decodeParams(params, &request); err != nil {
		return nil, err
	}
	to, err := ledger.ParseAccountID(request.Destination)
	if err != nil {
		return nil, rpc_types.FromError(err)
	}

	if err := m.Service.Fund(ctx.Context, ctx.Caller, to, ledger.Asset(request.Asset), request.Amount); err != nil {
		return nil, rpc_types.FromError(err)
	}
	bal, err := m.Service.Balance(ctx.Context, to, ledger.Asset(request.Asset))
	if err != nil {
		return nil, rpc_types.FromError(err)
	}
	return map[string]interface{}{
		"destination": to,
		"asset":       request.Asset,
		"balance":     bal,
	}, nil
}
