package engine

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/thrustlabs/thrust-engine/internal/curve"
	"github.com/thrustlabs/thrust-engine/internal/events"
	"github.com/thrustlabs/thrust-engine/internal/state"
)

// CreatePoolInput describes a token launch. Mint creation and metadata
// publishing happen outside the engine; the metadata fields here are carried
// through for observability only.
type CreatePoolInput struct {
	Mint   solana.PublicKey
	Name   string
	Symbol string
	URI    string

	TradeStartTime uint64
	Tax            curve.TaxPolicy
	WaitingRoom    curve.WaitingRoom

	// Referrer optionally binds to the creator's account, same one-time
	// rule as on trades.
	Referrer solana.PublicKey
}

// CreatePool seeds a bonding-curve pool for a new token: the full supply is
// minted to the pool's reserve account, with the platform's deposit ratio
// split between real and virtual base reserves.
func (e *Engine) CreatePool(ctx context.Context, creator solana.PublicKey, in CreatePoolInput) (solana.PublicKey, error) {
	ms, ok := e.store.Main()
	if !ok {
		return solana.PublicKey{}, ErrUninitialized
	}
	if in.Mint.IsZero() || in.Mint.Equals(solana.SolMint) {
		return solana.PublicKey{}, ErrUnsupportedAsset
	}

	poolAddr, err := state.PoolAddress(in.Mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive pool address: %w", err)
	}
	reserveAddr, err := state.ReserveAddress(in.Mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive reserve address: %w", err)
	}
	userAddr, err := state.UserAddress(creator)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive user address: %w", err)
	}

	unlock := e.store.Lock(poolAddr)
	defer unlock()

	if _, exists := e.store.Pool(poolAddr); exists {
		return solana.PublicKey{}, ErrPoolExists
	}

	now := e.unix()
	pool := curve.NewPool(creator, in.Mint, ms.TotalSupply, ms.InitRealBase, ms.InitVirtQuote,
		in.TradeStartTime, now, in.Tax, in.WaitingRoom)

	// Whole supply lands in the reserve; only the real-base share is
	// tradable, the rest backs the virtual curve until withdrawal.
	e.vault.MintTokens(in.Mint, reserveAddr, ms.TotalSupply)

	unlockUser := e.store.Lock(userAddr)
	user := e.store.User(userAddr, creator)
	user.BindReferrer(in.Referrer)
	e.store.PutUser(userAddr, user)
	unlockUser()

	e.store.PutPool(poolAddr, pool)

	e.publish(ctx, events.CreateEvent{
		BaseEvent:     events.BaseEvent{EventType: events.PoolCreated, EventTime: e.now()},
		Creator:       creator,
		Mint:          in.Mint,
		BaseReserves:  pool.BaseReserves(),
		QuoteReserves: pool.QuoteReserves(),
	})

	e.logger.Info("Pool created",
		zap.String("mint", in.Mint.String()),
		zap.String("creator", creator.String()),
		zap.String("symbol", in.Symbol),
		zap.Uint64("real_base", pool.RealBase),
		zap.Uint64("virt_base", pool.VirtBase),
		zap.Uint64("virt_quote", pool.VirtQuote),
		zap.Uint64("trade_start", in.TradeStartTime))
	return poolAddr, nil
}

func (e *Engine) publish(ctx context.Context, event events.Event) {
	if e.bus == nil {
		return
	}
	// Observer failures never unwind a committed operation.
	_ = e.bus.Publish(ctx, event)
}
