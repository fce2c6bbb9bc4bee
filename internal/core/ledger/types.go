package ledger

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// AccountID identifies an owner of balances: a principal or a pool
// authority.
type AccountID [20]byte

// String returns the upper-case hex form.
func (a AccountID) String() string {
	return strings.ToUpper(hex.EncodeToString(a[:]))
}

// IsZero reports whether a is the zero account.
func (a AccountID) IsZero() bool {
	return a == AccountID{}
}

func (a AccountID) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *AccountID) UnmarshalText(b []byte) error {
	id, err := ParseAccountID(string(b))
	if err != nil {
		return err
	}
	*a = id
	return nil
}

// ParseAccountID parses the 40-character hex form.
func ParseAccountID(s string) (AccountID, error) {
	var id AccountID
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("%w %q: %v", ErrInvalidAccountID, s, err)
	}
	if len(b) != len(id) {
		return id, fmt.Errorf("%w %q: want %d bytes, got %d", ErrInvalidAccountID, s, len(id), len(b))
	}
	copy(id[:], b)
	return id, nil
}

// Asset identifies a fungible asset (a mint).
type Asset string
