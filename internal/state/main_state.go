// Package state owns the persisted record types outside the pool ledger —
// the platform singleton and per-trader accounts — and the keyed store that
// addresses every record deterministically from its identity.
package state

import (
	"github.com/gagliardetto/solana-go"

	"github.com/thrustlabs/thrust-engine/internal/curve"
)

// MainState is the platform configuration singleton. Created once, updated
// only by its owner.
type MainState struct {
	Initialized  bool
	Owner        solana.PublicKey
	FeeRecipient solana.PublicKey

	TotalSupply   uint64
	InitVirtBase  uint64
	InitRealBase  uint64
	InitVirtQuote uint64

	TradingFeeRate     uint64
	ReferralRewardRate uint64
	ReferralTradeLimit uint64

	// ReferencePrice is pushed externally and used only for volume
	// reporting in reference units, never for pricing.
	ReferencePrice uint64

	// SignerKey verifies the off-chain timing attestations consumed by
	// the sell-tax engine.
	SignerKey solana.PublicKey
}

// NewMainState builds the singleton with platform defaults: 80% of supply
// deposited per pool, 1% trading fee, 10%-of-fee referral reward for the
// first 100 referred trades. The owner starts as fee recipient.
func NewMainState(owner, signerKey solana.PublicKey) MainState {
	ms := MainState{
		Initialized:        true,
		Owner:              owner,
		FeeRecipient:       owner,
		TotalSupply:        curve.TotalSupply,
		InitVirtQuote:      curve.VirtQuoteReserve,
		TradingFeeRate:     1_000,
		ReferralRewardRate: 10_000,
		ReferralTradeLimit: 100,
		SignerKey:          signerKey,
	}
	ms.InitRealBase = ms.TotalSupply * 8 / 10
	ms.InitVirtBase = ms.TotalSupply - ms.InitRealBase
	return ms
}

// MainStateUpdate carries an owner-initiated configuration change. Nil
// pointer fields keep their current values.
type MainStateUpdate struct {
	Owner              solana.PublicKey
	FeeRecipient       solana.PublicKey
	TradingFeeRate     uint64
	ReferralRewardRate uint64
	ReferralTradeLimit uint64
	SignerKey          solana.PublicKey

	TotalSupply   *uint64
	InitVirtBase  *uint64
	InitRealBase  *uint64
	InitVirtQuote *uint64
}

// Apply folds the update into the state.
func (ms *MainState) Apply(upd MainStateUpdate) {
	ms.Owner = upd.Owner
	ms.FeeRecipient = upd.FeeRecipient
	ms.TradingFeeRate = upd.TradingFeeRate
	ms.ReferralRewardRate = upd.ReferralRewardRate
	ms.ReferralTradeLimit = upd.ReferralTradeLimit
	ms.SignerKey = upd.SignerKey
	if upd.TotalSupply != nil {
		ms.TotalSupply = *upd.TotalSupply
	}
	if upd.InitVirtBase != nil {
		ms.InitVirtBase = *upd.InitVirtBase
	}
	if upd.InitRealBase != nil {
		ms.InitRealBase = *upd.InitRealBase
	}
	if upd.InitVirtQuote != nil {
		ms.InitVirtQuote = *upd.InitVirtQuote
	}
}
