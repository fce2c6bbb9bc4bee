package testing

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"

	"github.com/LeJamon/goAMMd/internal/core/auth"
	"github.com/LeJamon/goAMMd/internal/core/ledger"
)

// Account represents a test account with a signing key.
type Account struct {
	// Name is a human-readable identifier for the account (used for debugging).
	Name string

	// Key signs requests on behalf of the account.
	Key *auth.KeyPair

	// ID is the 20-byte account ID derived from the public key.
	ID ledger.AccountID
}

// NewAccount creates a test account with a deterministic key derived from
// the name. Using the same name will always produce the same account.
func NewAccount(name string) *Account {
	hash := sha512.Sum512([]byte(name))
	key, err := auth.ParsePrivateKey(hex.EncodeToString(hash[:32]))
	if err != nil {
		panic(fmt.Sprintf("derive key for %q: %v", name, err))
	}
	return &Account{
		Name: name,
		Key:  key,
		ID:   key.AccountID(),
	}
}

// String returns a string representation of the account.
func (a *Account) String() string {
	return fmt.Sprintf("%s (%s)", a.Name, a.ID)
}
