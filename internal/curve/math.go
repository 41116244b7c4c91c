package curve

import (
	"errors"
	"math/big"
	"math/bits"
)

// ErrAmountOverflow is returned when a fixed-point computation does not fit
// back into 64 bits. Reserve and fee math must fail rather than wrap.
var ErrAmountOverflow = errors.New("amount overflow")

// MulDiv returns floor(a*b/div), carrying the product through 128 bits so the
// multiply cannot overflow. Errors if the quotient does not fit in a uint64.
func MulDiv(a, b, div uint64) (uint64, error) {
	if div == 0 {
		return 0, ErrAmountOverflow
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= div {
		return 0, ErrAmountOverflow
	}
	q, _ := bits.Div64(hi, lo, div)
	return q, nil
}

// swapOutput computes floor(outputReserve*inputAmount/(inputReserve+inputAmount)).
// The denominator can exceed 64 bits, so the division runs over big integers;
// the result is always below outputReserve and narrows safely.
func swapOutput(inputAmount, inputReserve, outputReserve uint64) uint64 {
	num := new(big.Int).Mul(
		new(big.Int).SetUint64(outputReserve),
		new(big.Int).SetUint64(inputAmount),
	)
	den := new(big.Int).Add(
		new(big.Int).SetUint64(inputReserve),
		new(big.Int).SetUint64(inputAmount),
	)
	if den.Sign() == 0 {
		return 0
	}
	return new(big.Int).Quo(num, den).Uint64()
}
