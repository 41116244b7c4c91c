package server

import (
	"fmt"

	"github.com/thrustlabs/thrust-engine/internal/curve"
)

// taxPolicyJSON is the wire form of a sell-tax policy: a type discriminator
// plus the fields that variant carries. duration_days null means lifetime.
type taxPolicyJSON struct {
	Type string `json:"type"`

	ThresholdPercent uint64 `json:"threshold_percent"`
	HigherRate       uint64 `json:"higher_rate"`
	StandardRate     uint64 `json:"standard_rate"`

	InitialRate uint64     `json:"initial_rate"`
	Tiers       []tierJSON `json:"tiers"`
	MinRate     uint64     `json:"min_rate"`

	Rate uint64 `json:"rate"`

	DurationDays *uint64 `json:"duration_days"`
}

type tierJSON struct {
	DaysHeld uint64 `json:"days_held"`
	Rate     uint64 `json:"rate"`
}

const maxReductionTiers = 4

func (t *taxPolicyJSON) duration() curve.TaxDuration {
	if t.DurationDays == nil {
		return curve.Lifetime{}
	}
	return curve.FixedDuration{Days: *t.DurationDays}
}

func (t *taxPolicyJSON) policy() (curve.TaxPolicy, error) {
	switch t.Type {
	case "disabled":
		return curve.TaxDisabled{}, nil
	case "higher_sell":
		return curve.HigherSellTax{
			ThresholdPercent: t.ThresholdPercent,
			HigherRate:       t.HigherRate,
			StandardRate:     t.StandardRate,
			Duration:         t.duration(),
		}, nil
	case "decay":
		if len(t.Tiers) == 0 || len(t.Tiers) > maxReductionTiers {
			return nil, fmt.Errorf("decay tax needs 1 to %d tiers", maxReductionTiers)
		}
		tiers := make([]curve.ReductionTier, 0, len(t.Tiers))
		for _, tier := range t.Tiers {
			tiers = append(tiers, curve.ReductionTier{DaysHeld: tier.DaysHeld, TaxRate: tier.Rate})
		}
		return curve.DecayTax{
			InitialRate:    t.InitialRate,
			ReductionTiers: tiers,
			MinRate:        t.MinRate,
			Duration:       t.duration(),
		}, nil
	case "fixed":
		return curve.FixedTax{Rate: t.Rate, Duration: t.duration()}, nil
	default:
		return nil, fmt.Errorf("unknown tax policy type %q", t.Type)
	}
}

// waitingRoomJSON is the wire form of the early-access gate.
type waitingRoomJSON struct {
	MinTrades          uint32 `json:"min_trades"`
	MaxParticipants    uint32 `json:"max_participants"`
	WalletLimitPercent uint8  `json:"wallet_limit_percent"`
	Closure            struct {
		Type  string `json:"type"`
		Value uint64 `json:"value"`
	} `json:"closure"`
}

func (w *waitingRoomJSON) room() (curve.WaitingRoom, error) {
	var closure curve.ClosureCondition
	switch w.Closure.Type {
	case "time":
		closure = curve.TimeBased{Deadline: int64(w.Closure.Value)}
	case "participants":
		closure = curve.ParticipantCount{Count: uint32(w.Closure.Value)}
	case "volume":
		closure = curve.BuyVolume{Volume: w.Closure.Value}
	default:
		return nil, fmt.Errorf("unknown closure condition type %q", w.Closure.Type)
	}
	return curve.WaitingRoomEnabled{
		MinTrades:          w.MinTrades,
		MaxParticipants:    w.MaxParticipants,
		WalletLimitPercent: w.WalletLimitPercent,
		Closure:            closure,
	}, nil
}
