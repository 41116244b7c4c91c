// Package engine sequences the launch-and-trading operations: platform
// administration, pool creation, buys, sells, and post-graduation withdrawal.
// Each operation runs as one atomic unit against its pool and user records —
// either every effect commits or none do.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/thrustlabs/thrust-engine/internal/events"
	"github.com/thrustlabs/thrust-engine/internal/state"
	"github.com/thrustlabs/thrust-engine/internal/vault"
)

const nativeUnitScale = 1_000_000_000

// Engine is the trading orchestrator.
type Engine struct {
	store  *state.Store
	vault  *vault.Vault
	bus    *events.Bus
	logger *zap.Logger
	now    func() time.Time

	adminMu sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine's time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an engine over the given store, vault and event bus.
func New(st *state.Store, v *vault.Vault, bus *events.Bus, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:  st,
		vault:  v,
		bus:    bus,
		logger: logger.Named("engine"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) unix() uint64 {
	return uint64(e.now().Unix())
}

// InitMainState creates the platform singleton with default parameters. The
// caller becomes owner and fee recipient. Fails if already initialized.
func (e *Engine) InitMainState(ctx context.Context, owner, signerKey solana.PublicKey) error {
	e.adminMu.Lock()
	defer e.adminMu.Unlock()

	if _, ok := e.store.Main(); ok {
		return ErrAlreadyInitialized
	}
	ms := state.NewMainState(owner, signerKey)
	e.store.SetMain(ms)

	e.logger.Info("Platform state initialized",
		zap.String("owner", owner.String()),
		zap.Uint64("trading_fee_rate", ms.TradingFeeRate),
		zap.Uint64("referral_reward_rate", ms.ReferralRewardRate),
		zap.Uint64("init_real_base", ms.InitRealBase))
	return nil
}

// UpdateMainState applies an owner-initiated configuration change.
func (e *Engine) UpdateMainState(ctx context.Context, caller solana.PublicKey, upd state.MainStateUpdate) error {
	e.adminMu.Lock()
	defer e.adminMu.Unlock()

	ms, ok := e.store.Main()
	if !ok {
		return ErrUninitialized
	}
	if !caller.Equals(ms.Owner) {
		return ErrUnauthorised
	}
	ms.Apply(upd)
	e.store.SetMain(ms)

	e.logger.Info("Platform state updated",
		zap.String("owner", ms.Owner.String()),
		zap.String("fee_recipient", ms.FeeRecipient.String()),
		zap.Uint64("trading_fee_rate", ms.TradingFeeRate),
		zap.Uint64("referral_trade_limit", ms.ReferralTradeLimit))
	return nil
}

// UpdateReferencePrice pushes the externally sourced price used for
// reference-unit volume reporting. Owner only.
func (e *Engine) UpdateReferencePrice(ctx context.Context, caller solana.PublicKey, price uint64) error {
	e.adminMu.Lock()
	defer e.adminMu.Unlock()

	ms, ok := e.store.Main()
	if !ok {
		return ErrUninitialized
	}
	if !caller.Equals(ms.Owner) {
		return ErrUnauthorised
	}
	ms.ReferencePrice = price
	e.store.SetMain(ms)

	e.logger.Info("Reference price updated", zap.Uint64("price", price))
	return nil
}
