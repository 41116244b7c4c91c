package curve

import "errors"

var (
	// ErrInsufficientTrades rejects a waiting-room buy from a trader below
	// the minimum trade-count requirement.
	ErrInsufficientTrades = errors.New("insufficient trades")

	// ErrExceedsWalletLimit rejects a waiting-room buy that would push the
	// buyer past the wallet limit or the room past its participant cap.
	ErrExceedsWalletLimit = errors.New("exceeds buy limit")
)

// ClosureCondition decides when a waiting room stops gating buys.
type ClosureCondition interface{ isClosureCondition() }

// TimeBased closes the room at a unix timestamp.
type TimeBased struct {
	Deadline int64
}

// ParticipantCount closes the room once this many participants have bought in.
type ParticipantCount struct {
	Count uint32
}

// BuyVolume closes the room once cumulative buy volume reaches this amount.
type BuyVolume struct {
	Volume uint64
}

func (TimeBased) isClosureCondition()        {}
func (ParticipantCount) isClosureCondition() {}
func (BuyVolume) isClosureCondition()        {}

// WaitingRoom is the optional early-access gate on a pool.
type WaitingRoom interface{ isWaitingRoom() }

// WaitingRoomDisabled is the no-op gate.
type WaitingRoomDisabled struct{}

// WaitingRoomEnabled gates buys until the closure condition is met, tracking
// live counters. Closed flips one way; a closed room admits everyone.
type WaitingRoomEnabled struct {
	MinTrades          uint32
	MaxParticipants    uint32
	WalletLimitPercent uint8
	Closure            ClosureCondition
	Participants       uint32
	TotalBuyVolume     uint64
	Closed             bool
}

func (WaitingRoomDisabled) isWaitingRoom() {}
func (WaitingRoomEnabled) isWaitingRoom()  {}

// admitBuy enforces the gate for one buy and maintains the room counters.
// priorTrades is the buyer's trade count before this buy, postBalance their
// token balance after it, and newParticipant whether they held no tokens of
// this pool before the buy. Returns the updated room.
func admitBuy(room WaitingRoom, now uint64, totalSupply, priorTrades, postBalance, quoteIn uint64, newParticipant bool) (WaitingRoom, error) {
	r, ok := room.(WaitingRoomEnabled)
	if !ok || r.Closed {
		return room, nil
	}

	if uint64(r.MinTrades) > priorTrades {
		return room, ErrInsufficientTrades
	}
	limit, err := MulDiv(totalSupply, uint64(r.WalletLimitPercent), 100)
	if err != nil {
		return room, err
	}
	if postBalance > limit {
		return room, ErrExceedsWalletLimit
	}
	if newParticipant && r.Participants >= r.MaxParticipants {
		return room, ErrExceedsWalletLimit
	}

	if newParticipant {
		r.Participants++
	}
	r.TotalBuyVolume += quoteIn

	switch c := r.Closure.(type) {
	case TimeBased:
		if c.Deadline >= 0 && now >= uint64(c.Deadline) {
			r.Closed = true
		}
	case ParticipantCount:
		if r.Participants >= c.Count {
			r.Closed = true
		}
	case BuyVolume:
		if r.TotalBuyVolume >= c.Volume {
			r.Closed = true
		}
	}
	return r, nil
}
