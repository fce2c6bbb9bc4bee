package amm

import (
	"testing"

	"github.com/LeJamon/goAMMd/internal/core/fixedpoint"
	"github.com/LeJamon/goAMMd/internal/core/ledger"
	"github.com/LeJamon/goAMMd/internal/core/ledger/mocks"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaxedInput(t *testing.T) {
	tests := []struct {
		input uint64
		fee   uint16
		want  uint64
	}{
		{input: 1000, fee: 30, want: 997},
		{input: 1000, fee: 0, want: 1000},
		{input: 33, fee: 30, want: 33},
		{input: 334, fee: 30, want: 333},
		{input: 1000, fee: 9999, want: 1},
	}
	for _, tt := range tests {
		got, err := TaxedInput(tt.input, tt.fee)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "input %d fee %d", tt.input, tt.fee)
	}
}

func TestQuoteSwap(t *testing.T) {
	res, err := QuoteSwap(30, 1000, 10000, 10000)
	require.NoError(t, err)
	assert.Equal(t, uint64(997), res.Taxed)
	assert.Equal(t, uint64(906), res.Output)

	_, err = QuoteSwap(30, 1000, 0, 10000)
	assert.ErrorIs(t, err, ErrDivisionByZero)

	_, err = QuoteSwap(30, 1000, 10000, 0)
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestSwapExactInput(t *testing.T) {
	f := newFixture(t, 30)
	f.seed(10000, 10000)
	f.fund(bob, usd, 1000)

	res, err := f.engine.SwapExactInput(f.ledger, f.pool, bob, SideA, 1000, 906)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), res.Input)
	assert.Equal(t, uint64(997), res.Taxed)
	assert.Equal(t, uint64(906), res.Output)

	assert.Zero(t, f.balance(bob, usd))
	assert.Equal(t, uint64(906), f.balance(bob, eur))

	s := f.state()
	assert.Equal(t, uint64(11000), s.ReserveA, "the fee stays in the pool")
	assert.Equal(t, uint64(9094), s.ReserveB)
}

func TestSwapOutputTooSmallMovesNothing(t *testing.T) {
	f := newFixture(t, 30)
	f.seed(10000, 10000)
	f.fund(bob, usd, 1000)

	_, err := f.engine.SwapExactInput(f.ledger, f.pool, bob, SideA, 1000, 907)
	assert.ErrorIs(t, err, ErrOutputTooSmall)

	assert.Equal(t, uint64(1000), f.balance(bob, usd))
	assert.Zero(t, f.balance(bob, eur))
	s := f.state()
	assert.Equal(t, uint64(10000), s.ReserveA)
	assert.Equal(t, uint64(10000), s.ReserveB)
}

func TestSwapMinimumOutputBoundary(t *testing.T) {
	tests := []struct {
		name     string
		reserveA uint64
		reserveB uint64
		fee      uint16
		side     Side
		input    uint64
	}{
		{name: "balanced", reserveA: 10000, reserveB: 10000, fee: 30, side: SideA, input: 1000},
		{name: "uneven with high fee", reserveA: 1_000_003, reserveB: 777_777, fee: 100, side: SideB, input: 12_345},
		{name: "single unit in", reserveA: 5000, reserveB: 2_000_000, fee: 0, side: SideA, input: 1},
		{name: "fee eats the trade", reserveA: 2_000_000, reserveB: 5000, fee: 9999, side: SideA, input: 50_000},
		{name: "large reserves", reserveA: 1 << 40, reserveB: 1 << 20, fee: 25, side: SideB, input: 1 << 30},
		{name: "input exceeds reserve", reserveA: 3000, reserveB: 3000, fee: 5, side: SideA, input: 1_000_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.fee)
			f.seed(tt.reserveA, tt.reserveB)

			in, out := usd, eur
			reserveIn, reserveOut := tt.reserveA, tt.reserveB
			if tt.side == SideB {
				in, out = eur, usd
				reserveIn, reserveOut = reserveOut, reserveIn
			}
			f.fund(bob, in, tt.input)

			quote, err := QuoteSwap(tt.fee, tt.input, reserveIn, reserveOut)
			require.NoError(t, err)

			_, err = f.engine.SwapExactInput(f.ledger, f.pool, bob, tt.side, tt.input, quote.Output+1)
			require.ErrorIs(t, err, ErrOutputTooSmall)
			assert.Equal(t, tt.input, f.balance(bob, in), "nothing moves on a rejected swap")
			assert.Zero(t, f.balance(bob, out))

			res, err := f.engine.SwapExactInput(f.ledger, f.pool, bob, tt.side, tt.input, quote.Output)
			require.NoError(t, err)
			assert.Equal(t, quote.Output, res.Output)
			assert.Equal(t, quote.Output, f.balance(bob, out))
		})
	}
}

func TestSwapSideB(t *testing.T) {
	f := newFixture(t, 30)
	f.seed(10000, 10000)
	f.fund(bob, eur, 1000)

	res, err := f.engine.SwapExactInput(f.ledger, f.pool, bob, SideB, 1000, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(906), res.Output)
	assert.Equal(t, uint64(906), f.balance(bob, usd))

	s := f.state()
	assert.Equal(t, uint64(9094), s.ReserveA)
	assert.Equal(t, uint64(11000), s.ReserveB)
}

func TestSwapClampsInputToHolding(t *testing.T) {
	f := newFixture(t, 0)
	f.seed(10000, 10000)
	f.fund(bob, usd, 100)

	res, err := f.engine.SwapExactInput(f.ledger, f.pool, bob, SideA, 1_000_000, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), res.Input)
	assert.Equal(t, uint64(100), res.Taxed)
	assert.Equal(t, uint64(99), res.Output)
}

func TestSwapEmptyPool(t *testing.T) {
	f := newFixture(t, 30)
	f.fund(bob, usd, 1000)

	_, err := f.engine.SwapExactInput(f.ledger, f.pool, bob, SideA, 1000, 0)
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestSwapInvalidSide(t *testing.T) {
	f := newFixture(t, 30)
	_, err := f.engine.SwapExactInput(f.ledger, f.pool, bob, Side(7), 1, 0)
	assert.ErrorIs(t, err, ErrInvalidSide)
}

func TestSwapInvariantNeverDecreases(t *testing.T) {
	for _, fee := range []uint16{0, 1, 30, 100, 9999} {
		f := newFixture(t, fee)
		f.seed(1_000_003, 777_777)
		f.fund(bob, usd, 10_000_000)
		f.fund(bob, eur, 10_000_000)

		inputs := []uint64{1, 2, 17, 999, 50_000, 123_456, 3, 1_000_000}
		for i, in := range inputs {
			side := SideA
			if i%2 == 1 {
				side = SideB
			}
			before := f.state()
			res, err := f.engine.SwapExactInput(f.ledger, f.pool, bob, side, in, 0)
			require.NoError(t, err)

			after := f.state()
			assert.False(t,
				fixedpoint.Mul(after.ReserveA, after.ReserveB).Lt(fixedpoint.Mul(before.ReserveA, before.ReserveB)),
				"fee %d swap %d", fee, i)

			reserveOut := before.ReserveB
			if side == SideB {
				reserveOut = before.ReserveA
			}
			assert.Less(t, res.Output, reserveOut, "a swap never drains the output reserve")
		}
	}
}

func TestSwapDetectsTransferShortfall(t *testing.T) {
	ctrl := gomock.NewController(t)
	l := mocks.NewMockLedger(ctrl)

	pool := &Pool{AMM: "amm-1", AMint: usd, BMint: eur}
	auth := pool.Authority()
	ammData, err := ledger.EncodeRecord(&AMM{ID: "amm-1", Admin: admin, Fee: 30})
	require.NoError(t, err)

	l.EXPECT().Lookup(gomock.Any()).Return(ammData, nil)
	l.EXPECT().ReadBalance(bob, usd).Return(uint64(1000), nil)
	gomock.InOrder(
		l.EXPECT().ReadBalance(auth, usd).Return(uint64(10000), nil),
		l.EXPECT().ReadBalance(auth, eur).Return(uint64(10000), nil),
		l.EXPECT().Transfer(bob, auth, usd, uint64(1000)).Return(nil),
		l.EXPECT().Transfer(auth, bob, eur, uint64(906)).Return(nil),
		// A transfer fee kept 10 of the input from reaching the pool.
		l.EXPECT().ReadBalance(auth, usd).Return(uint64(10990), nil),
		l.EXPECT().ReadBalance(auth, eur).Return(uint64(9094), nil),
	)

	_, err = NewEngine(quietLogger()).SwapExactInput(l, pool, bob, SideA, 1000, 0)
	assert.ErrorIs(t, err, ErrInvariantViolated)
}

func TestLedgerErrorsPropagate(t *testing.T) {
	ctrl := gomock.NewController(t)
	l := mocks.NewMockLedger(ctrl)

	pool := &Pool{AMM: "amm-1", AMint: usd, BMint: eur}
	auth := pool.Authority()

	l.EXPECT().ReadBalance(alice, usd).Return(uint64(5000), nil)
	l.EXPECT().ReadBalance(alice, eur).Return(uint64(5000), nil)
	l.EXPECT().ReadBalance(auth, usd).Return(uint64(0), nil)
	l.EXPECT().ReadBalance(auth, eur).Return(uint64(0), nil)
	l.EXPECT().Transfer(alice, auth, usd, uint64(5000)).Return(ledger.ErrInsufficientBalance)

	_, err := NewEngine(quietLogger()).DepositLiquidity(l, pool, alice, 5000, 5000)
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)
}
