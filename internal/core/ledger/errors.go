package ledger

import "errors"

var (
	// ErrInsufficientBalance is returned when a debit exceeds the holder's
	// balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrNotFound is returned by Lookup for a missing record.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyExists is returned by CreateRecord when the key is taken.
	ErrAlreadyExists = errors.New("record already exists")

	// ErrCorruptEntry is returned when a stored value cannot be decoded.
	ErrCorruptEntry = errors.New("corrupt ledger entry")

	ErrInvalidAccountID = errors.New("invalid account id")
)
