// Package vault is the value-transfer collaborator: a balance book for the
// native currency and launched tokens. The engine hands it one instruction
// batch per operation; the batch applies all-or-nothing.
package vault

import (
	"errors"
	"sync"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// ErrInsufficientFunds signals a debit that a balance cannot cover. No part
// of the batch is applied.
var ErrInsufficientFunds = errors.New("insufficient fund")

// Instruction moves amount from one account to another, in native currency
// or in the tokens of Mint when Token is set.
type Instruction struct {
	Token  bool
	Mint   solana.PublicKey
	From   solana.PublicKey
	To     solana.PublicKey
	Amount uint64
}

// NativeTransfer builds a native-currency instruction.
func NativeTransfer(from, to solana.PublicKey, amount uint64) Instruction {
	return Instruction{From: from, To: to, Amount: amount}
}

// TokenTransfer builds a token instruction.
func TokenTransfer(mint, from, to solana.PublicKey, amount uint64) Instruction {
	return Instruction{Token: true, Mint: mint, From: from, To: to, Amount: amount}
}

type tokenKey struct {
	mint   solana.PublicKey
	holder solana.PublicKey
}

// Vault is the in-memory balance book.
type Vault struct {
	mu     sync.Mutex
	native map[solana.PublicKey]uint64
	tokens map[tokenKey]uint64
	logger *zap.Logger
}

// New returns an empty vault.
func New(logger *zap.Logger) *Vault {
	return &Vault{
		native: make(map[solana.PublicKey]uint64),
		tokens: make(map[tokenKey]uint64),
		logger: logger.Named("vault"),
	}
}

// Deposit credits native currency to an account.
func (v *Vault) Deposit(addr solana.PublicKey, amount uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.native[addr] += amount
}

// MintTokens credits freshly minted tokens to an account.
func (v *Vault) MintTokens(mint, to solana.PublicKey, amount uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tokens[tokenKey{mint, to}] += amount
}

// Balance returns an account's native balance.
func (v *Vault) Balance(addr solana.PublicKey) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.native[addr]
}

// TokenBalance returns a holder's balance in a mint's tokens.
func (v *Vault) TokenBalance(mint, holder solana.PublicKey) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.tokens[tokenKey{mint, holder}]
}

// Apply executes the batch atomically: every instruction is staged against a
// scratch view and nothing commits unless all of them clear.
func (v *Vault) Apply(batch []Instruction) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	stagedNative := make(map[solana.PublicKey]uint64)
	stagedTokens := make(map[tokenKey]uint64)

	nativeAt := func(addr solana.PublicKey) uint64 {
		if b, ok := stagedNative[addr]; ok {
			return b
		}
		return v.native[addr]
	}
	tokensAt := func(k tokenKey) uint64 {
		if b, ok := stagedTokens[k]; ok {
			return b
		}
		return v.tokens[k]
	}

	for _, ins := range batch {
		if ins.Amount == 0 {
			continue
		}
		if ins.Token {
			from := tokenKey{ins.Mint, ins.From}
			to := tokenKey{ins.Mint, ins.To}
			bal := tokensAt(from)
			if bal < ins.Amount {
				v.logger.Debug("token debit exceeds balance",
					zap.String("mint", ins.Mint.String()),
					zap.String("from", ins.From.String()),
					zap.Uint64("amount", ins.Amount),
					zap.Uint64("balance", bal))
				return ErrInsufficientFunds
			}
			stagedTokens[from] = bal - ins.Amount
			stagedTokens[to] = tokensAt(to) + ins.Amount
		} else {
			bal := nativeAt(ins.From)
			if bal < ins.Amount {
				v.logger.Debug("native debit exceeds balance",
					zap.String("from", ins.From.String()),
					zap.Uint64("amount", ins.Amount),
					zap.Uint64("balance", bal))
				return ErrInsufficientFunds
			}
			stagedNative[ins.From] = bal - ins.Amount
			stagedNative[ins.To] = nativeAt(ins.To) + ins.Amount
		}
	}

	for addr, bal := range stagedNative {
		v.native[addr] = bal
	}
	for k, bal := range stagedTokens {
		v.tokens[k] = bal
	}
	return nil
}
