// Package testing provides test infrastructure for exercising AMM
// operations end to end.
//
// # Overview
//
// The testing package provides:
//   - TestEnv: an in-memory ledger, journal and Service wired together
//   - Account: deterministic test accounts with signing keys
//   - Assertions: helpers for balance, share and failure checks
//
// # Basic Usage
//
//	func TestSwap(t *testing.T) {
//	    env := jtx.NewTestEnv(t)
//
//	    alice := jtx.NewAccount("alice")
//	    env.Fund(alice, "USD", 10_000)
//	    env.Fund(alice, "EUR", 10_000)
//
//	    pool := env.CreatePool(alice, "amm-1", 0, "USD", "EUR")
//	    env.Deposit(alice, pool, 10_000, 10_000)
//
//	    jtx.RequireBalance(t, env, alice, "USD", 0)
//	    jtx.RequireShares(t, env, alice, pool, 9_000)
//	}
//
// # Accounts
//
// NewAccount derives the signing key from the name, so the same name always
// produces the same account ID across runs.
//
// # Events
//
// Every committed operation is recorded by the environment's publisher and
// is available from Events, in commit order.
package testing
