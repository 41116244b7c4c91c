package engine

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/thrustlabs/thrust-engine/internal/state"
	"github.com/thrustlabs/thrust-engine/internal/vault"
)

// Withdraw drains a graduated pool: all remaining base tokens and the
// reserve's entire native balance move to the platform owner. One-time,
// owner-only, and only after the bonding curve has completed.
func (e *Engine) Withdraw(ctx context.Context, caller solana.PublicKey, mint solana.PublicKey) error {
	ms, ok := e.store.Main()
	if !ok {
		return ErrUninitialized
	}
	if !caller.Equals(ms.Owner) {
		return ErrUnauthorised
	}

	poolAddr, err := state.PoolAddress(mint)
	if err != nil {
		return fmt.Errorf("failed to derive pool address: %w", err)
	}
	reserveAddr, err := state.ReserveAddress(mint)
	if err != nil {
		return fmt.Errorf("failed to derive reserve address: %w", err)
	}

	unlock := e.store.Lock(poolAddr)
	defer unlock()

	pool, ok := e.store.Pool(poolAddr)
	if !ok {
		return ErrPoolNotFound
	}
	if !pool.Complete {
		return ErrBondingCurveIncomplete
	}
	if pool.Withdrawn {
		return ErrAlreadyWithdrawn
	}

	baseTokens := e.vault.TokenBalance(mint, reserveAddr)
	nativeFunds := e.vault.Balance(reserveAddr)

	batch := []vault.Instruction{
		vault.TokenTransfer(mint, reserveAddr, caller, baseTokens),
		vault.NativeTransfer(reserveAddr, caller, nativeFunds),
	}
	if err := e.vault.Apply(batch); err != nil {
		return err
	}

	pool.Withdrawn = true
	e.store.PutPool(poolAddr, pool)

	e.logger.Info("Pool withdrawn",
		zap.String("mint", mint.String()),
		zap.String("owner", caller.String()),
		zap.Uint64("base_tokens", baseTokens),
		zap.Uint64("native_funds", nativeFunds))
	return nil
}
