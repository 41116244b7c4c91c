// Package attest verifies the off-chain timing attestations that gate sells:
// a recoverable secp256k1 signature over a message whose first eight bytes
// are the little-endian unix time the seller last received tokens.
package attest

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gagliardetto/solana-go"
)

var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrInvalidMessage   = errors.New("invalid message")
	ErrInvalidPubkey    = errors.New("invalid public key")
)

// SignatureLen is the recoverable signature size: 64 bytes R||S plus one
// recovery byte.
const SignatureLen = 65

// Verify recovers the signer of message from signature and checks it against
// the expected key. The recovered 64-byte secp256k1 public key is SHA-256
// hashed into the 32-byte address form the platform stores. Returns the
// attested last-received time from the message prefix.
func Verify(message, signature []byte, expected solana.PublicKey) (uint64, error) {
	if expected.IsZero() {
		return 0, ErrInvalidPubkey
	}
	if len(signature) != SignatureLen {
		return 0, ErrInvalidSignature
	}

	digest := sha256.Sum256(message)
	pub, err := crypto.Ecrecover(digest[:], signature)
	if err != nil {
		return 0, ErrInvalidSignature
	}

	// Drop the uncompressed-point prefix byte; the address is the hash of
	// the raw 64-byte key.
	addr := sha256.Sum256(pub[1:])
	if !solana.PublicKeyFromBytes(addr[:]).Equals(expected) {
		return 0, ErrInvalidSignature
	}

	if len(message) < 8 {
		return 0, ErrInvalidMessage
	}
	return binary.LittleEndian.Uint64(message[:8]), nil
}

// SignerAddress converts a 64-byte secp256k1 public key (or 65-byte
// uncompressed form) to the 32-byte address stored in platform config.
func SignerAddress(pub []byte) (solana.PublicKey, error) {
	switch len(pub) {
	case 64:
	case 65:
		pub = pub[1:]
	default:
		return solana.PublicKey{}, ErrInvalidPubkey
	}
	addr := sha256.Sum256(pub)
	return solana.PublicKeyFromBytes(addr[:]), nil
}
