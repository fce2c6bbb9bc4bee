// Package auth authenticates callers by secp256k1 signature and decides
// which operations they may perform.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/LeJamon/goAMMd/internal/core/ledger"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/decred/dcrd/crypto/ripemd160"
)

var (
	ErrInvalidPrivateKey = errors.New("invalid private key")
	ErrInvalidPublicKey  = errors.New("invalid public key")
	ErrInvalidSignature  = errors.New("invalid signature")
)

// KeyPair is a principal's signing key.
type KeyPair struct {
	priv *btcec.PrivateKey
}

// GenerateKeyPair creates a random key pair.
func GenerateKeyPair() (*KeyPair, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, err
	}
	return &KeyPair{priv: priv}, nil
}

// ParsePrivateKey decodes a 32-byte hex private key.
func ParsePrivateKey(s string) (*KeyPair, error) {
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != btcec.PrivKeyBytesLen {
		return nil, ErrInvalidPrivateKey
	}
	priv, _ := btcec.PrivKeyFromBytes(b)
	return &KeyPair{priv: priv}, nil
}

// PrivateKeyHex returns the hex private key.
func (k *KeyPair) PrivateKeyHex() string {
	return hex.EncodeToString(k.priv.Serialize())
}

// PublicKey returns the 33-byte compressed public key.
func (k *KeyPair) PublicKey() []byte {
	return k.priv.PubKey().SerializeCompressed()
}

// AccountID returns the account controlled by this key.
func (k *KeyPair) AccountID() ledger.AccountID {
	return AccountIDFromPublicKey(k.PublicKey())
}

// Sign returns the DER signature of SHA-256(payload).
func (k *KeyPair) Sign(payload []byte) []byte {
	digest := sha256.Sum256(payload)
	return ecdsa.Sign(k.priv, digest[:]).Serialize()
}

// AccountIDFromPublicKey computes RIPEMD160(SHA256(publicKey)).
func AccountIDFromPublicKey(publicKey []byte) ledger.AccountID {
	sha := sha256.Sum256(publicKey)
	h := ripemd160.New()
	h.Write(sha[:])

	var id ledger.AccountID
	copy(id[:], h.Sum(nil))
	return id
}

// Verify checks a DER signature of SHA-256(payload) and returns the account
// of the signing key.
func Verify(publicKey, payload, signature []byte) (ledger.AccountID, error) {
	pub, err := btcec.ParsePubKey(publicKey)
	if err != nil {
		return ledger.AccountID{}, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	sig, err := ecdsa.ParseDERSignature(signature)
	if err != nil {
		return ledger.AccountID{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	digest := sha256.Sum256(payload)
	if !sig.Verify(digest[:], pub) {
		return ledger.AccountID{}, ErrInvalidSignature
	}
	return AccountIDFromPublicKey(publicKey), nil
}
