package rpc_handlers

import (
	"github.com/LeJamon/goAMMd/internal/rpc/rpc_types"
	"github.com/LeJamon/goAMMd/internal/service"
)

// RegisterAll registers every RPC method against svc.
func RegisterAll(r *rpc_types.MethodRegistry, svc *service.Service) {
	b := base{Service: svc}
	s := signed{base: b}

	// Server Methods
	r.Register("ping", &PingMethod{b})

	// AMM Methods (require a signed caller)
	r.Register("create_amm", &CreateAmmMethod{s})
	r.Register("create_pool", &CreatePoolMethod{s})
	r.Register("deposit_liquidity", &DepositLiquidityMethod{s})
	r.Register("withdraw_liquidity", &WithdrawLiquidityMethod{s})
	r.Register("swap_exact_input", &SwapExactInputMethod{s})
	r.Register("fund", &FundMethod{s})

	// Query Methods
	r.Register("amm_info", &AmmInfoMethod{b})
	r.Register("list_amms", &ListAmmsMethod{b})
	r.Register("pool_info", &PoolInfoMethod{b})
	r.Register("list_pools", &ListPoolsMethod{b})
	r.Register("balance", &BalanceMethod{b})
	r.Register("account_info", &AccountInfoMethod{b})
	r.Register("quote_swap", &QuoteSwapMethod{b})
	r.Register("quote_deposit", &QuoteDepositMethod{b})
	r.Register("quote_withdraw", &QuoteWithdrawMethod{b})
	r.Register("history", &HistoryMethod{b})
}
