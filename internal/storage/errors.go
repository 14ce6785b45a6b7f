package storage

import "errors"

// Storage errors shared by all price cache backends.
var (
	// ErrNotFound is returned when no price history is cached for a symbol.
	ErrNotFound = errors.New("price history not found")

	// ErrDuplicateKey is returned when an append would rewrite a row that
	// already exists for a (symbol, date) pair.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
