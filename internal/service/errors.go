package service

import "errors"

var (
	// ErrInvalidParams is returned for requests that are malformed before
	// any state is read.
	ErrInvalidParams = errors.New("invalid params")

	// ErrBadSequence is returned when a sequenced request does not carry the
	// caller's next sequence, including every replay of a committed one.
	ErrBadSequence = errors.New("bad sequence")

	// ErrJournalDisabled is returned by History when no journal is
	// configured.
	ErrJournalDisabled = errors.New("journal is disabled")
)
