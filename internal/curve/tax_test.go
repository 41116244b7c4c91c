package curve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseRate = 1_000 // 1%

func decayPolicy() DecayTax {
	// 20% at receipt, 10% after a week, 2% after a month, floor 1%.
	return DecayTax{
		InitialRate: 20_000,
		ReductionTiers: []ReductionTier{
			{DaysHeld: 0, TaxRate: 20_000},
			{DaysHeld: 7, TaxRate: 10_000},
			{DaysHeld: 30, TaxRate: 2_000},
		},
		MinRate:  1_000,
		Duration: Lifetime{},
	}
}

func TestEffectiveSellTaxRateDisabled(t *testing.T) {
	rate, err := EffectiveSellTaxRate(TaxDisabled{}, TotalSupply, 0, baseRate, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(baseRate), rate)
}

func TestEffectiveSellTaxRateFixed(t *testing.T) {
	rate, err := EffectiveSellTaxRate(FixedTax{Rate: 5_000, Duration: Lifetime{}}, TotalSupply, 0, baseRate, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(5_000), rate)
}

func TestEffectiveSellTaxRateHigherSellTax(t *testing.T) {
	policy := HigherSellTax{
		ThresholdPercent: 5_000, // 5% of supply
		HigherRate:       8_000,
		StandardRate:     2_000,
		Duration:         Lifetime{},
	}
	threshold := uint64(TotalSupply) / 20

	rate, err := EffectiveSellTaxRate(policy, TotalSupply, threshold, baseRate, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(8_000), rate, "balance at threshold pays the higher rate")

	rate, err = EffectiveSellTaxRate(policy, TotalSupply, threshold-1, baseRate, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(2_000), rate)
}

func TestEffectiveSellTaxRateDecayTiers(t *testing.T) {
	policy := decayPolicy()
	received := uint64(1_000_000)

	cases := []struct {
		name string
		days uint64
		want uint64
	}{
		{"at receipt", 0, 20_000},
		{"day 6 still initial tier", 6, 20_000},
		{"day 10 hits the 7-day tier", 10, 10_000},
		{"day 30 hits the 30-day tier", 30, 2_000},
		{"day 400 stays at the last tier", 400, 2_000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			now := received + tc.days*secondsPerDay
			rate, err := EffectiveSellTaxRate(policy, TotalSupply, 0, baseRate, now, received)
			require.NoError(t, err)
			assert.Equal(t, tc.want, rate)
		})
	}
}

func TestEffectiveSellTaxRateDecayFallbackAndClamp(t *testing.T) {
	received := uint64(1_000_000)

	// No tier satisfied yet: min rate applies.
	policy := decayPolicy()
	policy.ReductionTiers = []ReductionTier{{DaysHeld: 7, TaxRate: 10_000}}
	rate, err := EffectiveSellTaxRate(policy, TotalSupply, 0, baseRate, received+secondsPerDay, received)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000), rate)

	// Tier rates are clamped into [min, initial].
	policy = decayPolicy()
	policy.ReductionTiers = []ReductionTier{{DaysHeld: 0, TaxRate: 90_000}}
	rate, err = EffectiveSellTaxRate(policy, TotalSupply, 0, baseRate, received, received)
	require.NoError(t, err)
	assert.Equal(t, policy.InitialRate, rate)

	policy.ReductionTiers = []ReductionTier{{DaysHeld: 0, TaxRate: 10}}
	rate, err = EffectiveSellTaxRate(policy, TotalSupply, 0, baseRate, received, received)
	require.NoError(t, err)
	assert.Equal(t, policy.MinRate, rate)
}

func TestEffectiveSellTaxRateRejectsFutureAttestation(t *testing.T) {
	_, err := EffectiveSellTaxRate(decayPolicy(), TotalSupply, 0, baseRate, 100, 200)
	assert.ErrorIs(t, err, ErrFutureAttestation)
}
