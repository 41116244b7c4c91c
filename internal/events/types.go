// internal/events/types.go
package events

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// EventType represents the type of event.
type EventType string

const (
	// Pool lifecycle events
	PoolCreated   EventType = "pool.created"
	PoolTraded    EventType = "pool.trade"
	PoolCompleted EventType = "pool.completed"
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	EventType EventType
	EventTime time.Time
}

// Type returns the event type.
func (e BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

// CreateEvent is emitted when a pool is created, with its seeded combined
// reserves.
type CreateEvent struct {
	BaseEvent
	Creator       solana.PublicKey
	Mint          solana.PublicKey
	BaseReserves  uint64
	QuoteReserves uint64
}

// TradeEvent is emitted after every buy or sell, carrying the post-trade
// combined reserve snapshot.
type TradeEvent struct {
	BaseEvent
	User          solana.PublicKey
	Mint          solana.PublicKey
	QuoteAmount   uint64
	TokenAmount   uint64
	BaseReserves  uint64
	QuoteReserves uint64
	IsBuy         bool
}

// CompleteEvent is emitted the instant a buy pushes a pool to graduation.
type CompleteEvent struct {
	BaseEvent
	User solana.PublicKey
	Mint solana.PublicKey
}
