package engine

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/thrustlabs/thrust-engine/internal/curve"
	"github.com/thrustlabs/thrust-engine/internal/events"
	"github.com/thrustlabs/thrust-engine/internal/state"
	"github.com/thrustlabs/thrust-engine/internal/vault"
)

// BuyResult reports the settled amounts of a buy. QuoteIn is what the buyer
// actually paid, which can be less than requested when the input was clamped
// at the graduation threshold.
type BuyResult struct {
	BaseOut        uint64
	QuoteIn        uint64
	Fee            uint64
	ReferralReward uint64
	Completed      bool
}

// Buy spends quoteAmount of native currency on the mint's bonding curve.
// The fee is charged on the applied input: when the buy is clamped so real
// quote reserves land exactly at the graduation threshold, the fee is
// recomputed from the clamped amount and the remainder is never drawn from
// the buyer. A buy that fills the curve flips it complete and settles the
// graduation fee in the same commit.
func (e *Engine) Buy(ctx context.Context, buyer solana.PublicKey, mint solana.PublicKey, quoteAmount uint64, referrer solana.PublicKey) (BuyResult, error) {
	ms, ok := e.store.Main()
	if !ok {
		return BuyResult{}, ErrUninitialized
	}

	poolAddr, err := state.PoolAddress(mint)
	if err != nil {
		return BuyResult{}, fmt.Errorf("failed to derive pool address: %w", err)
	}
	reserveAddr, err := state.ReserveAddress(mint)
	if err != nil {
		return BuyResult{}, fmt.Errorf("failed to derive reserve address: %w", err)
	}
	userAddr, err := state.UserAddress(buyer)
	if err != nil {
		return BuyResult{}, fmt.Errorf("failed to derive user address: %w", err)
	}

	unlock := e.store.Lock(poolAddr)
	defer unlock()

	pool, ok := e.store.Pool(poolAddr)
	if !ok {
		return BuyResult{}, ErrPoolNotFound
	}

	now := e.unix()
	if now < pool.StartTradeTime {
		return BuyResult{}, ErrTradeNotStarted
	}
	if pool.Complete {
		return BuyResult{}, ErrBondingCurveComplete
	}

	fee, err := curve.TradingFee(ms.TradingFeeRate, quoteAmount)
	if err != nil {
		return BuyResult{}, err
	}
	// A rate above the divisor would make the fee exceed the payment and
	// wrap the net input. Abort instead.
	if fee > quoteAmount {
		return BuyResult{}, curve.ErrAmountOverflow
	}
	net := quoteAmount - fee
	if capacity := curve.RealQuoteThreshold - pool.RealQuote; net > capacity {
		net = capacity
		fee, err = curve.TradingFee(ms.TradingFeeRate, net)
		if err != nil {
			return BuyResult{}, err
		}
	}

	baseOut, err := pool.SwapQuoteForBase(net)
	if err != nil {
		return BuyResult{}, err
	}

	tokenBal := e.vault.TokenBalance(mint, buyer)

	unlockUser := e.store.Lock(userAddr)
	defer unlockUser()
	user := e.store.User(userAddr, buyer)

	if err := pool.AdmitBuy(now, ms.TotalSupply, user.TradeCount, tokenBal+baseOut, net, tokenBal == 0); err != nil {
		return BuyResult{}, err
	}

	user.BindReferrer(referrer)
	var reward uint64
	if !user.Referrer.IsZero() && user.Referrer.Equals(referrer) && user.ReferredTrades <= ms.ReferralTradeLimit {
		reward, err = curve.TradingFee(ms.ReferralRewardRate, fee)
		if err != nil {
			return BuyResult{}, err
		}
		user.ReferredTrades++
	}

	user.TradeCount++
	user.VolumeNative += net
	refVolume, err := curve.MulDiv(net, ms.ReferencePrice, nativeUnitScale)
	if err != nil {
		return BuyResult{}, err
	}
	user.VolumeReference += refVolume

	batch := []vault.Instruction{
		vault.NativeTransfer(buyer, user.Referrer, reward),
		vault.NativeTransfer(buyer, ms.FeeRecipient, fee-reward),
		vault.NativeTransfer(buyer, reserveAddr, net),
		vault.TokenTransfer(mint, reserveAddr, buyer, baseOut),
	}

	completed := pool.RealQuote >= curve.RealQuoteThreshold
	if completed {
		pool.Complete = true
		batch = append(batch, vault.NativeTransfer(reserveAddr, ms.FeeRecipient, curve.GraduateFee))
	}

	if err := e.vault.Apply(batch); err != nil {
		return BuyResult{}, err
	}

	e.store.PutPool(poolAddr, pool)
	e.store.PutUser(userAddr, user)

	e.publish(ctx, events.TradeEvent{
		BaseEvent:     events.BaseEvent{EventType: events.PoolTraded, EventTime: e.now()},
		User:          buyer,
		Mint:          mint,
		QuoteAmount:   net + fee,
		TokenAmount:   baseOut,
		BaseReserves:  pool.BaseReserves(),
		QuoteReserves: pool.QuoteReserves(),
		IsBuy:         true,
	})
	if completed {
		e.publish(ctx, events.CompleteEvent{
			BaseEvent: events.BaseEvent{EventType: events.PoolCompleted, EventTime: e.now()},
			User:      buyer,
			Mint:      mint,
		})
		e.logger.Info("Bonding curve completed",
			zap.String("mint", mint.String()),
			zap.Uint64("real_quote", pool.RealQuote))
	}

	e.logger.Debug("Buy settled",
		zap.String("mint", mint.String()),
		zap.String("buyer", buyer.String()),
		zap.Uint64("quote_in", net+fee),
		zap.Uint64("base_out", baseOut),
		zap.Uint64("fee", fee),
		zap.Uint64("referral_reward", reward))

	return BuyResult{
		BaseOut:        baseOut,
		QuoteIn:        net + fee,
		Fee:            fee,
		ReferralReward: reward,
		Completed:      completed,
	}, nil
}
