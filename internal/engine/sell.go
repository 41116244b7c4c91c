package engine

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/thrustlabs/thrust-engine/internal/attest"
	"github.com/thrustlabs/thrust-engine/internal/curve"
	"github.com/thrustlabs/thrust-engine/internal/events"
	"github.com/thrustlabs/thrust-engine/internal/state"
	"github.com/thrustlabs/thrust-engine/internal/vault"
)

// SellResult reports the settled amounts of a sell. QuoteOut is what reached
// the seller after the fee; GrossQuote is the pre-fee curve output and the
// basis for volume accounting.
type SellResult struct {
	QuoteOut       uint64
	GrossQuote     uint64
	Fee            uint64
	ReferralReward uint64
}

// Sell trades baseAmount tokens back into the mint's bonding curve. The
// attestation carries the seller's last token-receipt time and is verified
// against the platform signer before anything else; a bad signature aborts
// with no state touched. The sell window opens strictly after the trade start
// time, one tick later than buys.
func (e *Engine) Sell(ctx context.Context, seller solana.PublicKey, mint solana.PublicKey, baseAmount uint64, message, signature []byte, referrer solana.PublicKey) (SellResult, error) {
	ms, initialized := e.store.Main()

	lastReceived, err := attest.Verify(message, signature, ms.SignerKey)
	if err != nil {
		return SellResult{}, err
	}
	if !initialized {
		return SellResult{}, ErrUninitialized
	}

	poolAddr, err := state.PoolAddress(mint)
	if err != nil {
		return SellResult{}, fmt.Errorf("failed to derive pool address: %w", err)
	}
	reserveAddr, err := state.ReserveAddress(mint)
	if err != nil {
		return SellResult{}, fmt.Errorf("failed to derive reserve address: %w", err)
	}
	userAddr, err := state.UserAddress(seller)
	if err != nil {
		return SellResult{}, fmt.Errorf("failed to derive user address: %w", err)
	}

	unlock := e.store.Lock(poolAddr)
	defer unlock()

	pool, ok := e.store.Pool(poolAddr)
	if !ok {
		return SellResult{}, ErrPoolNotFound
	}

	now := e.unix()
	if now <= pool.StartTradeTime {
		return SellResult{}, ErrTradeNotStarted
	}
	if pool.Complete {
		return SellResult{}, ErrBondingCurveComplete
	}

	sellerBalance := e.vault.TokenBalance(mint, seller)

	gross, err := pool.SwapBaseForQuote(baseAmount)
	if err != nil {
		return SellResult{}, err
	}

	rate := ms.TradingFeeRate
	if pool.TaxActive(now) {
		rate, err = curve.EffectiveSellTaxRate(pool.Tax, ms.TotalSupply, sellerBalance, ms.TradingFeeRate, now, lastReceived)
		if err != nil {
			return SellResult{}, err
		}
	}
	fee, err := curve.TradingFee(rate, gross)
	if err != nil {
		return SellResult{}, err
	}
	// Tax rates arrive unvalidated with the pool's policy; one above the
	// divisor would make the fee exceed the proceeds and wrap the payout.
	if fee > gross {
		return SellResult{}, curve.ErrAmountOverflow
	}
	net := gross - fee

	unlockUser := e.store.Lock(userAddr)
	defer unlockUser()
	user := e.store.User(userAddr, seller)

	user.BindReferrer(referrer)
	var reward uint64
	if !user.Referrer.IsZero() && user.Referrer.Equals(referrer) && user.ReferredTrades <= ms.ReferralTradeLimit {
		reward, err = curve.TradingFee(ms.ReferralRewardRate, fee)
		if err != nil {
			return SellResult{}, err
		}
		user.ReferredTrades++
	}

	user.TradeCount++
	user.VolumeNative += gross
	refVolume, err := curve.MulDiv(gross, ms.ReferencePrice, nativeUnitScale)
	if err != nil {
		return SellResult{}, err
	}
	user.VolumeReference += refVolume

	batch := []vault.Instruction{
		vault.NativeTransfer(reserveAddr, ms.FeeRecipient, fee-reward),
		vault.NativeTransfer(reserveAddr, user.Referrer, reward),
		vault.TokenTransfer(mint, seller, reserveAddr, baseAmount),
		vault.NativeTransfer(reserveAddr, seller, net),
	}
	if err := e.vault.Apply(batch); err != nil {
		return SellResult{}, err
	}

	e.store.PutPool(poolAddr, pool)
	e.store.PutUser(userAddr, user)

	e.publish(ctx, events.TradeEvent{
		BaseEvent:     events.BaseEvent{EventType: events.PoolTraded, EventTime: e.now()},
		User:          seller,
		Mint:          mint,
		QuoteAmount:   net,
		TokenAmount:   baseAmount,
		BaseReserves:  pool.BaseReserves(),
		QuoteReserves: pool.QuoteReserves(),
		IsBuy:         false,
	})

	e.logger.Debug("Sell settled",
		zap.String("mint", mint.String()),
		zap.String("seller", seller.String()),
		zap.Uint64("base_in", baseAmount),
		zap.Uint64("quote_out", net),
		zap.Uint64("fee", fee),
		zap.Uint64("fee_rate", rate),
		zap.Uint64("referral_reward", reward))

	return SellResult{
		QuoteOut:       net,
		GrossQuote:     gross,
		Fee:            fee,
		ReferralReward: reward,
	}, nil
}
