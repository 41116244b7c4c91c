package engine

import "errors"

// Operation precondition failures. Every one of these is detected before any
// state mutation; the operation aborts whole.
var (
	ErrUninitialized          = errors.New("platform uninitialized")
	ErrAlreadyInitialized     = errors.New("platform already initialized")
	ErrAlreadyWithdrawn       = errors.New("pool already withdrawn")
	ErrUnauthorised           = errors.New("unauthorised")
	ErrTradeNotStarted        = errors.New("trade not started yet")
	ErrUnsupportedAsset       = errors.New("unsupported asset")
	ErrBondingCurveIncomplete = errors.New("bonding curve incomplete")
	ErrBondingCurveComplete   = errors.New("bonding curve complete")
	ErrPoolNotFound           = errors.New("pool not found")
	ErrPoolExists             = errors.New("pool already exists")
)
