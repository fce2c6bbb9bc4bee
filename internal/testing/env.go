package testing

import (
	"context"
	"sync"
	"testing"

	"github.com/LeJamon/goAMMd/internal/core/amm"
	"github.com/LeJamon/goAMMd/internal/core/auth"
	"github.com/LeJamon/goAMMd/internal/core/ledger"
	"github.com/LeJamon/goAMMd/internal/logging"
	"github.com/LeJamon/goAMMd/internal/service"
	"github.com/LeJamon/goAMMd/internal/storage/database/memory"
	"github.com/LeJamon/goAMMd/internal/storage/relationaldb"
	"github.com/stretchr/testify/require"
)

// TestEnv manages a Service over in-memory storage. Helper methods fail the
// test on error; call Service directly to inspect failures.
type TestEnv struct {
	t        *testing.T
	ctx      context.Context
	ledger   *ledger.Manager
	journal  *relationaldb.Journal
	service  *service.Service
	clock    *ManualClock
	recorder *EventRecorder

	// Operator may fund accounts.
	Operator *Account
}

// NewTestEnv creates a test environment with a journal and a single
// operator account.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	logger := logging.Discard()
	m, err := ledger.NewManager(memory.NewDB(), ledger.ManagerConfig{}, logger)
	require.NoError(t, err, "create ledger manager")

	journal, err := relationaldb.Open(context.Background(), relationaldb.NewConfig())
	require.NoError(t, err, "open journal")

	env := &TestEnv{
		t:        t,
		ctx:      context.Background(),
		ledger:   m,
		journal:  journal,
		clock:    NewManualClock(),
		recorder: &EventRecorder{},
		Operator: NewAccount("operator"),
	}
	env.service = service.New(m, service.Config{
		Authorizer: auth.NewPolicy([]ledger.AccountID{env.Operator.ID}),
		Journal:    journal,
		Publisher:  env.recorder,
		Logger:     logger,
		Now:        env.clock.Now,
	})

	t.Cleanup(func() {
		journal.Close()
		m.Close()
	})
	return env
}

// Service returns the environment's service.
func (e *TestEnv) Service() *service.Service { return e.service }

// Ledger returns the environment's ledger manager.
func (e *TestEnv) Ledger() *ledger.Manager { return e.ledger }

// Clock returns the clock stamping events.
func (e *TestEnv) Clock() *ManualClock { return e.clock }

// Context returns the context helpers run under.
func (e *TestEnv) Context() context.Context { return e.ctx }

// Events returns every event published so far.
func (e *TestEnv) Events() []*service.Event { return e.recorder.Events() }

// Fund mints amount of asset to acc.
func (e *TestEnv) Fund(acc *Account, asset ledger.Asset, amount uint64) {
	e.t.Helper()
	require.NoError(e.t, e.service.Fund(e.ctx, e.Operator.ID, acc.ID, asset, amount),
		"fund %s with %d %s", acc.Name, amount, asset)
}

// CreateAmm registers an AMM administered by owner.
func (e *TestEnv) CreateAmm(owner *Account, id string, fee uint16) *amm.AMM {
	e.t.Helper()
	a, err := e.service.CreateAmm(e.ctx, owner.ID, id, uint64(fee), ledger.AccountID{})
	require.NoError(e.t, err, "create amm %s", id)
	return a
}

// CreatePool registers AMM id with fee, then its (aMint, bMint) pool.
func (e *TestEnv) CreatePool(owner *Account, id string, fee uint16, aMint, bMint ledger.Asset) service.PoolRef {
	e.t.Helper()
	e.CreateAmm(owner, id, fee)
	return e.AddPool(owner, id, aMint, bMint)
}

// AddPool registers a pool under an existing AMM.
func (e *TestEnv) AddPool(owner *Account, id string, aMint, bMint ledger.Asset) service.PoolRef {
	e.t.Helper()
	ref := service.PoolRef{AMM: id, AMint: aMint, BMint: bMint}
	_, err := e.service.CreatePool(e.ctx, owner.ID, ref)
	require.NoError(e.t, err, "create pool %s/%s", aMint, bMint)
	return ref
}

// Deposit deposits liquidity on behalf of acc.
func (e *TestEnv) Deposit(acc *Account, ref service.PoolRef, amountA, amountB uint64) *amm.DepositResult {
	e.t.Helper()
	res, err := e.service.DepositLiquidity(e.ctx, acc.ID, ref, amountA, amountB)
	require.NoError(e.t, err, "%s deposit", acc.Name)
	return res
}

// Withdraw burns shares on behalf of acc.
func (e *TestEnv) Withdraw(acc *Account, ref service.PoolRef, shares uint64) *amm.WithdrawResult {
	e.t.Helper()
	res, err := e.service.WithdrawLiquidity(e.ctx, acc.ID, ref, shares)
	require.NoError(e.t, err, "%s withdraw", acc.Name)
	return res
}

// Swap trades on behalf of acc.
func (e *TestEnv) Swap(acc *Account, ref service.PoolRef, side amm.Side, input, minOutput uint64) *amm.SwapResult {
	e.t.Helper()
	res, err := e.service.SwapExactInput(e.ctx, acc.ID, ref, side, input, minOutput)
	require.NoError(e.t, err, "%s swap", acc.Name)
	return res
}

// Balance returns acc's holding of asset.
func (e *TestEnv) Balance(acc *Account, asset ledger.Asset) uint64 {
	e.t.Helper()
	bal, err := e.service.Balance(e.ctx, acc.ID, asset)
	require.NoError(e.t, err)
	return bal
}

// Shares returns acc's liquidity shares in the pool.
func (e *TestEnv) Shares(acc *Account, ref service.PoolRef) uint64 {
	e.t.Helper()
	info := e.State(ref)
	return e.Balance(acc, info.LiquidityMint)
}

// State returns the pool with its reserves and supply.
func (e *TestEnv) State(ref service.PoolRef) *service.PoolInfo {
	e.t.Helper()
	info, err := e.service.PoolState(e.ctx, ref)
	require.NoError(e.t, err)
	return info
}

// EventRecorder is a service.EventPublisher that keeps every event.
type EventRecorder struct {
	mu     sync.Mutex
	events []*service.Event
}

func (r *EventRecorder) Publish(ev *service.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of the recorded events.
func (r *EventRecorder) Events() []*service.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*service.Event(nil), r.events...)
}

var _ service.EventPublisher = (*EventRecorder)(nil)
