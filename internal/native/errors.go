package native

import "errors"

var (
	// ErrPoolNotFound is returned for a pool id the ledger does not list.
	ErrPoolNotFound = errors.New("native pool not found")
	// ErrInvalidLedger wraps decoding and validation failures of a ledger file.
	ErrInvalidLedger = errors.New("invalid native pool ledger")
)
