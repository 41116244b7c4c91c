package vault

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestApplyMovesBalances(t *testing.T) {
	v := New(zap.NewNop())
	a := solana.NewWallet().PublicKey()
	b := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	v.Deposit(a, 100)
	v.MintTokens(mint, a, 50)

	err := v.Apply([]Instruction{
		NativeTransfer(a, b, 40),
		TokenTransfer(mint, a, b, 20),
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(60), v.Balance(a))
	assert.Equal(t, uint64(40), v.Balance(b))
	assert.Equal(t, uint64(30), v.TokenBalance(mint, a))
	assert.Equal(t, uint64(20), v.TokenBalance(mint, b))
}

func TestApplyIsAllOrNothing(t *testing.T) {
	v := New(zap.NewNop())
	a := solana.NewWallet().PublicKey()
	b := solana.NewWallet().PublicKey()

	v.Deposit(a, 100)

	// First leg clears, second cannot: neither may commit.
	err := v.Apply([]Instruction{
		NativeTransfer(a, b, 60),
		NativeTransfer(a, b, 60),
	})
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, uint64(100), v.Balance(a))
	assert.Equal(t, uint64(0), v.Balance(b))
}

func TestApplySeesEarlierLegsInBatch(t *testing.T) {
	v := New(zap.NewNop())
	a := solana.NewWallet().PublicKey()
	b := solana.NewWallet().PublicKey()
	c := solana.NewWallet().PublicKey()

	v.Deposit(a, 10)

	// b can forward funds it receives earlier in the same batch.
	err := v.Apply([]Instruction{
		NativeTransfer(a, b, 10),
		NativeTransfer(b, c, 10),
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(10), v.Balance(c))
	assert.Equal(t, uint64(0), v.Balance(b))
}

func TestApplySkipsZeroAmounts(t *testing.T) {
	v := New(zap.NewNop())
	a := solana.NewWallet().PublicKey()
	b := solana.NewWallet().PublicKey()

	err := v.Apply([]Instruction{NativeTransfer(a, b, 0)})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), v.Balance(b))
}
