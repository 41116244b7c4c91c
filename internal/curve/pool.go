package curve

import (
	"errors"
	"math/big"
	"math/bits"

	"github.com/gagliardetto/solana-go"
)

// ErrInsufficientLiquidity is returned when a swap would drain more from a
// real reserve than it holds. Reserves never wrap.
var ErrInsufficientLiquidity = errors.New("insufficient pool liquidity")

// Pool is the per-token bonding-curve ledger. Pricing runs over the combined
// virtual+real reserves; only real reserves are redeemable.
type Pool struct {
	Owner solana.PublicKey
	Mint  solana.PublicKey

	// Konst is real base × total quote liquidity at creation, kept for
	// diagnostics only; trading does not re-enforce it exactly.
	Konst *big.Int

	StartTradeTime uint64

	VirtBase  uint64
	RealBase  uint64
	VirtQuote uint64
	RealQuote uint64

	Complete  bool
	Withdrawn bool

	Tax          TaxPolicy
	TaxStartTime uint64

	WaitingRoom WaitingRoom
}

// NewPool seeds a pool from the platform's ratios. realBase is deposited
// token supply; the remainder of totalSupply rides as virtual base.
func NewPool(owner, mint solana.PublicKey, totalSupply, realBase, virtQuote, startTradeTime, now uint64, tax TaxPolicy, room WaitingRoom) *Pool {
	if tax == nil {
		tax = TaxDisabled{}
	}
	if room == nil {
		room = WaitingRoomDisabled{}
	}
	p := &Pool{
		Owner:          owner,
		Mint:           mint,
		StartTradeTime: startTradeTime,
		VirtBase:       totalSupply - realBase,
		RealBase:       realBase,
		VirtQuote:      virtQuote,
		RealQuote:      0,
		Tax:            tax,
		TaxStartTime:   now,
		WaitingRoom:    room,
	}
	p.Konst = new(big.Int).Mul(
		new(big.Int).SetUint64(p.RealBase),
		new(big.Int).SetUint64(p.VirtQuote+p.RealQuote),
	)
	return p
}

// BaseReserves returns the combined base-side liquidity.
func (p *Pool) BaseReserves() uint64 { return p.RealBase + p.VirtBase }

// QuoteReserves returns the combined quote-side liquidity.
func (p *Pool) QuoteReserves() uint64 { return p.VirtQuote + p.RealQuote }

// SwapQuoteForBase applies a buy: quote in, base out. Input is clamped so
// real quote reserves never exceed the graduation threshold; the clamped
// amount is what lands in the pool. Returns tokens out.
func (p *Pool) SwapQuoteForBase(quoteIn uint64) (uint64, error) {
	amount := quoteIn
	sum, carry := bits.Add64(amount, p.RealQuote, 0)
	if carry != 0 || sum > RealQuoteThreshold {
		amount = RealQuoteThreshold - p.RealQuote
	}
	baseOut := swapOutput(amount, p.QuoteReserves(), p.BaseReserves())
	if baseOut > p.RealBase {
		return 0, ErrInsufficientLiquidity
	}
	p.RealBase -= baseOut
	p.RealQuote += amount
	return baseOut, nil
}

// SwapBaseForQuote applies a sell: base in, quote out. Fails rather than
// letting real quote reserves underflow.
func (p *Pool) SwapBaseForQuote(baseIn uint64) (uint64, error) {
	quoteOut := swapOutput(baseIn, p.BaseReserves(), p.QuoteReserves())
	if quoteOut > p.RealQuote {
		return 0, ErrInsufficientLiquidity
	}
	newBase, carry := bits.Add64(p.RealBase, baseIn, 0)
	if carry != 0 {
		return 0, ErrAmountOverflow
	}
	p.RealBase = newBase
	p.RealQuote -= quoteOut
	return quoteOut, nil
}

// TaxActive reports whether the pool's sell tax applies at the given time,
// honouring the policy's duration against the tax start timestamp.
func (p *Pool) TaxActive(now uint64) bool {
	var d TaxDuration
	switch t := p.Tax.(type) {
	case HigherSellTax:
		d = t.Duration
	case DecayTax:
		d = t.Duration
	case FixedTax:
		d = t.Duration
	default:
		return false
	}
	switch dur := d.(type) {
	case FixedDuration:
		if now < p.TaxStartTime {
			return true
		}
		return (now-p.TaxStartTime)/secondsPerDay <= dur.Days
	default:
		// Lifetime, or a policy built without a duration.
		return true
	}
}

// AdmitBuy runs the waiting-room gate for one buy, updating the room's
// counters and closure state on success.
func (p *Pool) AdmitBuy(now, totalSupply, priorTrades, postBalance, quoteIn uint64, newParticipant bool) error {
	room, err := admitBuy(p.WaitingRoom, now, totalSupply, priorTrades, postBalance, quoteIn, newParticipant)
	if err != nil {
		return err
	}
	p.WaitingRoom = room
	return nil
}

// Clone returns a copy safe to mutate without publishing. Konst is immutable
// after creation and shared.
func (p *Pool) Clone() *Pool {
	cp := *p
	return &cp
}
