package state

import "github.com/gagliardetto/solana-go"

// User is the per-trader record, created lazily on first trade and never
// destroyed.
type User struct {
	Address solana.PublicKey

	TradeCount      uint64
	VolumeNative    uint64
	VolumeReference uint64

	// Referrer binds permanently to the first non-default referrer seen
	// for this trader.
	Referrer solana.PublicKey

	// ReferredTrades counts trades that paid a rebate to the bound
	// referrer; capped by the platform's referral trade limit.
	ReferredTrades uint64
}

// BindReferrer stores the referrer on first sight of a non-default address.
// Subsequent calls are no-ops regardless of the address supplied.
func (u *User) BindReferrer(referrer solana.PublicKey) {
	if u.Referrer.IsZero() && !referrer.IsZero() {
		u.Referrer = referrer
	}
}
