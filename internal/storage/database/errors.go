package database

import "errors"

var (
	// ErrDBClosed is returned when trying to operate on a closed database
	ErrDBClosed = errors.New("database is closed")

	// ErrKeyNotFound is returned when a key doesn't exist in the database
	ErrKeyNotFound = errors.New("key not found")

	// ErrUnknownBatchOp is returned for a batch operation type no backend
	// understands
	ErrUnknownBatchOp = errors.New("unknown batch operation type")
)
