package curve

import "errors"

// ErrFutureAttestation is returned when the attested last-received time lies
// after the current time; holding duration must never underflow.
var ErrFutureAttestation = errors.New("attested last-received time is in the future")

// TaxDuration controls how long a sell tax stays active after the pool's tax
// start time.
type TaxDuration interface{ isTaxDuration() }

// Lifetime keeps the tax active forever.
type Lifetime struct{}

// FixedDuration keeps the tax active for a number of days after tax start.
type FixedDuration struct {
	Days uint64
}

func (Lifetime) isTaxDuration()      {}
func (FixedDuration) isTaxDuration() {}

// TaxPolicy is the sell-side fee-rate modifier attached to a pool. Exactly one
// of the variants below; dispatch is by type switch, never by lookup.
type TaxPolicy interface{ isTaxPolicy() }

// TaxDisabled applies the base trading fee rate unchanged.
type TaxDisabled struct{}

// HigherSellTax charges HigherRate to sellers holding at least
// ThresholdPercent of total supply before the trade, StandardRate otherwise.
// ThresholdPercent uses the FeeDivisor fixed point, same as fee rates.
type HigherSellTax struct {
	ThresholdPercent uint64
	HigherRate       uint64
	StandardRate     uint64
	Duration         TaxDuration
}

// ReductionTier maps a holding duration in whole days to a tax rate.
type ReductionTier struct {
	DaysHeld uint64
	TaxRate  uint64
}

// DecayTax lowers the sell tax the longer the seller has held, stepping down
// through up to four reduction tiers.
type DecayTax struct {
	InitialRate    uint64
	ReductionTiers []ReductionTier
	MinRate        uint64
	Duration       TaxDuration
}

// FixedTax charges a constant rate regardless of context.
type FixedTax struct {
	Rate     uint64
	Duration TaxDuration
}

func (TaxDisabled) isTaxPolicy()   {}
func (HigherSellTax) isTaxPolicy() {}
func (DecayTax) isTaxPolicy()      {}
func (FixedTax) isTaxPolicy()      {}

// EffectiveSellTaxRate resolves the fee rate for a sell under the given
// policy. sellerBalance is the seller's pre-trade token balance and
// lastReceivedTime the attested timestamp of their last token receipt; both
// are ignored by variants that do not need them.
func EffectiveSellTaxRate(policy TaxPolicy, totalSupply, sellerBalance, baseFeeRate, now, lastReceivedTime uint64) (uint64, error) {
	switch p := policy.(type) {
	case HigherSellTax:
		threshold, err := MulDiv(totalSupply, p.ThresholdPercent, FeeDivisor)
		if err != nil {
			return 0, err
		}
		if sellerBalance >= threshold {
			return p.HigherRate, nil
		}
		return p.StandardRate, nil

	case DecayTax:
		if now < lastReceivedTime {
			return 0, ErrFutureAttestation
		}
		daysHeld := (now - lastReceivedTime) / secondsPerDay

		// Pick the tier with the largest days-held threshold the seller
		// has satisfied; fall back to the minimum rate past all tiers.
		rate := p.MinRate
		matched := false
		var bestDays uint64
		for _, tier := range p.ReductionTiers {
			if tier.DaysHeld > daysHeld {
				continue
			}
			if !matched || tier.DaysHeld >= bestDays {
				rate = tier.TaxRate
				bestDays = tier.DaysHeld
				matched = true
			}
		}
		return clampRate(rate, p.MinRate, p.InitialRate), nil

	case FixedTax:
		return p.Rate, nil

	default:
		return baseFeeRate, nil
	}
}

func clampRate(rate, lo, hi uint64) uint64 {
	if rate < lo {
		return lo
	}
	if rate > hi {
		return hi
	}
	return rate
}
