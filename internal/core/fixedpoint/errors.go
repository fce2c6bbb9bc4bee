package fixedpoint

import "errors"

var (
	// ErrOverflow is returned when a result does not fit its target width,
	// including subtraction underflow.
	ErrOverflow = errors.New("arithmetic overflow")

	// ErrDivisionByZero is returned when a divisor is zero.
	ErrDivisionByZero = errors.New("division by zero")
)
