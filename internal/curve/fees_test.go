package curve

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTradingFee(t *testing.T) {
	// rate 1_000 = 1%
	fee, err := TradingFee(1_000, 1_000_000_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000_000), fee)

	// rounds down
	fee, err = TradingFee(1_000, 99)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), fee)

	fee, err = TradingFee(0, math.MaxUint64)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), fee)
}

func TestTradingFeeMonotonicInAmount(t *testing.T) {
	var prev uint64
	for _, amount := range []uint64{0, 1, 99, 100, 101, 10_000, 1 << 32, 1 << 52, TotalSupply} {
		fee, err := TradingFee(1_000, amount)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, fee, prev, "fee must not decrease as amount grows")
		prev = fee
	}
}

func TestMulDivOverflow(t *testing.T) {
	// Quotient exceeds 64 bits: must abort, never truncate.
	_, err := MulDiv(math.MaxUint64, math.MaxUint64, FeeDivisor)
	assert.ErrorIs(t, err, ErrAmountOverflow)

	_, err = MulDiv(1, 1, 0)
	assert.ErrorIs(t, err, ErrAmountOverflow)

	// Widening keeps large-but-legit products exact.
	got, err := MulDiv(TotalSupply, 99_999, FeeDivisor)
	require.NoError(t, err)
	assert.Equal(t, uint64(999_990_000_000_000), got)
}
