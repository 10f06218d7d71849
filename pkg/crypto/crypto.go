// Package crypto owns principal identity and signature primitives.
//
// Ownership boundary:
// - private key generation
// - identity derivation (sha3-256 over the hex encoded uncompressed public key)
// - recoverable secp256k1 signatures over sha3-256 digests
//
// All values cross the package boundary as lowercase hex strings.
package crypto

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/sha3"
)

const (
	PrivateKeyLength = 32
	SignatureLength  = 65

	// compact signatures from ecdsa.SignCompact prefix the recovery code with 27
	// (+4 for compressed keys, never used here).
	compactRecoveryBase = 27
)

var (
	ErrDecode            = errors.New("crypto: decode failed")
	ErrInvalidPrivateKey = fmt.Errorf("%w: invalid private key", ErrDecode)
	ErrInvalidSignature  = fmt.Errorf("%w: invalid signature", ErrDecode)
)

// Crypto is the signing capability every principal needs.
type Crypto interface {
	GeneratePrivateKey() (string, error)
	GenerateID(prvKey string) (string, error)
	GenerateSignature(msg string, prvKey string) (string, error)
	RecoverID(msg string, signature string) (string, error)
}

// Secp256k1 implements Crypto over the secp256k1 curve with RFC6979 nonces.
type Secp256k1 struct{}

var _ Crypto = Secp256k1{}

func (Secp256k1) GeneratePrivateKey() (string, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return "", fmt.Errorf("crypto: generate private key: %w", err)
	}
	if key.Key.IsZero() {
		return "", fmt.Errorf("crypto: generate private key: zero scalar")
	}
	return hex.EncodeToString(key.Serialize()), nil
}

func (Secp256k1) GenerateID(prvKey string) (string, error) {
	key, err := parsePrivateKey(prvKey)
	if err != nil {
		return "", err
	}
	return idFromPublicKey(key.PubKey()), nil
}

func (Secp256k1) GenerateSignature(msg string, prvKey string) (string, error) {
	key, err := parsePrivateKey(prvKey)
	if err != nil {
		return "", err
	}
	digest := sha3.Sum256([]byte(msg))
	compact := ecdsa.SignCompact(key, digest[:], false)

	// compact layout is v||r||s; the wire layout is r||s||v with v in {0,1}.
	sig := make([]byte, SignatureLength)
	copy(sig, compact[1:])
	sig[64] = compact[0] - compactRecoveryBase
	return hex.EncodeToString(sig), nil
}

func (Secp256k1) RecoverID(msg string, signature string) (string, error) {
	sig, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if len(sig) != SignatureLength {
		return "", fmt.Errorf("%w: length=%d", ErrInvalidSignature, len(sig))
	}
	v := sig[64]
	if v >= compactRecoveryBase {
		v -= compactRecoveryBase
	}
	if v > 3 {
		return "", fmt.Errorf("%w: recovery id=%d", ErrInvalidSignature, sig[64])
	}

	compact := make([]byte, SignatureLength)
	compact[0] = compactRecoveryBase + v
	copy(compact[1:], sig[:64])

	digest := sha3.Sum256([]byte(msg))
	pub, _, err := ecdsa.RecoverCompact(compact, digest[:])
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return idFromPublicKey(pub), nil
}

// GenerateHash returns the hex sha3-256 digest of msg.
func GenerateHash(msg string) string {
	digest := sha3.Sum256([]byte(msg))
	return hex.EncodeToString(digest[:])
}

var defaultCrypto Crypto = Secp256k1{}

func GeneratePrivateKey() (string, error) {
	return defaultCrypto.GeneratePrivateKey()
}

func GenerateID(prvKey string) (string, error) {
	return defaultCrypto.GenerateID(prvKey)
}

func GenerateSignature(msg string, prvKey string) (string, error) {
	return defaultCrypto.GenerateSignature(msg, prvKey)
}

func RecoverID(msg string, signature string) (string, error) {
	return defaultCrypto.RecoverID(msg, signature)
}

func parsePrivateKey(prvKey string) (*secp256k1.PrivateKey, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(prvKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	if len(raw) != PrivateKeyLength {
		return nil, fmt.Errorf("%w: length=%d", ErrInvalidPrivateKey, len(raw))
	}
	var scalar secp256k1.ModNScalar
	if overflow := scalar.SetByteSlice(raw); overflow {
		return nil, fmt.Errorf("%w: scalar out of range", ErrInvalidPrivateKey)
	}
	if scalar.IsZero() {
		return nil, fmt.Errorf("%w: zero scalar", ErrInvalidPrivateKey)
	}
	return secp256k1.NewPrivateKey(&scalar), nil
}

func idFromPublicKey(pub *secp256k1.PublicKey) string {
	return GenerateHash(hex.EncodeToString(pub.SerializeUncompressed()))
}
