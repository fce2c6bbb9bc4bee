// Package fixedpoint implements the exact integer arithmetic used for
// reserve and share accounting. Intermediates are 256-bit so that the
// product of any two 64-bit amounts is represented without loss.
package fixedpoint

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// RatioPrecision is the number of fractional digits used when a ratio is
// rendered for display.
const RatioPrecision = 18

// Add returns a+b.
func Add(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, fmt.Errorf("add %d + %d: %w", a, b, ErrOverflow)
	}
	return sum, nil
}

// Sub returns a-b. A negative result is reported as ErrOverflow.
func Sub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, fmt.Errorf("sub %d - %d: %w", a, b, ErrOverflow)
	}
	return a - b, nil
}

// Div returns floor(a/b).
func Div(a, b uint64) (uint64, error) {
	if b == 0 {
		return 0, ErrDivisionByZero
	}
	return a / b, nil
}

// Mul returns the exact product of a and b as a 256-bit value.
func Mul(a, b uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
}

// MulDiv returns floor(a*b/c) without intermediate loss.
func MulDiv(a, b, c uint64) (uint64, error) {
	if c == 0 {
		return 0, ErrDivisionByZero
	}
	q := new(uint256.Int).Div(Mul(a, b), uint256.NewInt(c))
	return ToUint64(q)
}

// Sqrt returns floor(sqrt(x)).
func Sqrt(x *uint256.Int) (uint64, error) {
	return ToUint64(new(uint256.Int).Sqrt(x))
}

// SqrtProduct returns floor(sqrt(a*b)), which always fits in 64 bits.
func SqrtProduct(a, b uint64) (uint64, error) {
	return Sqrt(Mul(a, b))
}

// ToUint64 narrows x, failing with ErrOverflow when it does not fit.
func ToUint64(x *uint256.Int) (uint64, error) {
	if !x.IsUint64() {
		return 0, fmt.Errorf("value %s exceeds 64 bits: %w", x.Dec(), ErrOverflow)
	}
	return x.Uint64(), nil
}

// Ratio renders a/b as a decimal for display. It must never feed back into
// accounting.
func Ratio(a, b uint64) (decimal.Decimal, error) {
	if b == 0 {
		return decimal.Zero, ErrDivisionByZero
	}
	return decimal.NewFromUint64(a).DivRound(decimal.NewFromUint64(b), RatioPrecision), nil
}
