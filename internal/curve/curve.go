// Package curve holds the bonding-curve ledger: reserve state, the
// constant-product pricing math, fee and sell-tax computation, and the
// waiting-room gate. Everything here is pure state-transition code; moving
// actual balances is the vault's job.
package curve

const (
	// FeeDivisor is the shared fixed-point divisor for all fee and
	// percentage rates: a rate of 1_000 means 1%.
	FeeDivisor = 100_000

	// TotalSupply is the default token supply for every launch,
	// 1 billion tokens at 6 decimals.
	TotalSupply = 1_000_000_000_000_000

	// GraduateFee is paid from pool reserves to the fee recipient the
	// instant a pool completes. 5 SOL.
	GraduateFee = 5_000_000_000

	// VirtQuoteReserve seeds the quote side of every new curve. 24 SOL.
	VirtQuoteReserve = 24_000_000_000

	// RealQuoteThreshold is the graduation threshold: once real quote
	// reserves reach it, the pool completes and trading freezes.
	// 95 + 5 SOL (GraduateFee), sized at a $200 SOL price.
	RealQuoteThreshold = 100_000_000_000

	secondsPerDay = 86_400
)
