package fixedpoint

import (
	"math"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddSub(t *testing.T) {
	sum, err := Add(2, 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), sum)

	_, err = Add(math.MaxUint64, 1)
	assert.ErrorIs(t, err, ErrOverflow)

	diff, err := Sub(10, 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), diff)

	_, err = Sub(4, 10)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestDiv(t *testing.T) {
	q, err := Div(10, 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), q)

	_, err = Div(10, 0)
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestMulIsExact(t *testing.T) {
	p := Mul(math.MaxUint64, math.MaxUint64)
	want, _ := uint256.FromDecimal("340282366920938463426481119284349108225")
	assert.Equal(t, want, p)
}

func TestMulDiv(t *testing.T) {
	tests := []struct {
		name    string
		a, b, c uint64
		want    uint64
		wantErr error
	}{
		{name: "simple", a: 906, b: 10000, c: 10000, want: 906},
		{name: "floors", a: 7, b: 3, c: 2, want: 10},
		{name: "wide intermediate", a: math.MaxUint64, b: math.MaxUint64, c: math.MaxUint64, want: math.MaxUint64},
		{name: "result too wide", a: math.MaxUint64, b: 2, c: 1, wantErr: ErrOverflow},
		{name: "zero divisor", a: 1, b: 1, c: 0, wantErr: ErrDivisionByZero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MulDiv(tt.a, tt.b, tt.c)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSqrtProduct(t *testing.T) {
	tests := []struct {
		a, b uint64
		want uint64
	}{
		{a: 1000, b: 1000, want: 1000},
		{a: 10000, b: 10000, want: 10000},
		{a: 2, b: 1, want: 1},
		{a: 0, b: 500, want: 0},
		{a: 999, b: 1001, want: 999},
		{a: math.MaxUint64, b: math.MaxUint64, want: math.MaxUint64},
	}

	for _, tt := range tests {
		got, err := SqrtProduct(tt.a, tt.b)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "sqrt(%d*%d)", tt.a, tt.b)
	}
}

func TestSqrtFloorProperty(t *testing.T) {
	for _, x := range []uint64{0, 1, 2, 3, 15, 16, 17, 1<<32 - 1, 1 << 40, math.MaxUint64} {
		r, err := Sqrt(uint256.NewInt(x))
		require.NoError(t, err)

		assert.True(t, Mul(r, r).Cmp(uint256.NewInt(x)) <= 0, "r^2 <= x for %d", x)
		next := new(uint256.Int).AddUint64(uint256.NewInt(r), 1)
		sq := new(uint256.Int).Mul(next, next)
		assert.True(t, sq.Cmp(uint256.NewInt(x)) > 0, "(r+1)^2 > x for %d", x)
	}
}

func TestRatio(t *testing.T) {
	r, err := Ratio(1, 3)
	require.NoError(t, err)
	assert.Equal(t, "0.333333333333333333", r.String())

	r, err = Ratio(5000, 2500)
	require.NoError(t, err)
	assert.Equal(t, "2", r.String())

	_, err = Ratio(1, 0)
	assert.ErrorIs(t, err, ErrDivisionByZero)
}
