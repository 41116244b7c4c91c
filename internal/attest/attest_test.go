package attest

import (
	"crypto/sha256"
	"encoding/binary"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedAttestation(t *testing.T, lastReceived uint64) ([]byte, []byte, solana.PublicKey) {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	message := make([]byte, 8)
	binary.LittleEndian.PutUint64(message, lastReceived)

	digest := sha256.Sum256(message)
	sig, err := crypto.Sign(digest[:], key)
	require.NoError(t, err)

	signer, err := SignerAddress(crypto.FromECDSAPub(&key.PublicKey))
	require.NoError(t, err)

	return message, sig, signer
}

func TestVerifyRoundTrip(t *testing.T) {
	message, sig, signer := signedAttestation(t, 1_700_000_000)

	got, err := Verify(message, sig, signer)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_700_000_000), got)
}

func TestVerifyRejectsTamperedMessage(t *testing.T) {
	message, sig, signer := signedAttestation(t, 1_700_000_000)
	message[0] ^= 0xff

	_, err := Verify(message, sig, signer)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyRejectsWrongSigner(t *testing.T) {
	message, sig, _ := signedAttestation(t, 1_700_000_000)
	_, _, other := signedAttestation(t, 42)

	_, err := Verify(message, sig, other)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyRejectsMalformedSignature(t *testing.T) {
	message, sig, signer := signedAttestation(t, 1)

	_, err := Verify(message, sig[:64], signer)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyRejectsShortMessage(t *testing.T) {
	// Signature over a short message recovers fine; the payload check
	// still has to fail.
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	message := []byte("abc")
	digest := sha256.Sum256(message)
	sig, err := crypto.Sign(digest[:], key)
	require.NoError(t, err)

	signer, err := SignerAddress(crypto.FromECDSAPub(&key.PublicKey))
	require.NoError(t, err)

	_, err = Verify(message, sig, signer)
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestVerifyRejectsMissingSignerKey(t *testing.T) {
	message, sig, _ := signedAttestation(t, 1)

	_, err := Verify(message, sig, solana.PublicKey{})
	assert.ErrorIs(t, err, ErrInvalidPubkey)
}

func TestSignerAddressLengths(t *testing.T) {
	_, err := SignerAddress(make([]byte, 33))
	assert.ErrorIs(t, err, ErrInvalidPubkey)

	a64, err := SignerAddress(make([]byte, 64))
	require.NoError(t, err)
	full := append([]byte{0x04}, make([]byte, 64)...)
	a65, err := SignerAddress(full)
	require.NoError(t, err)
	assert.Equal(t, a64, a65)
}
