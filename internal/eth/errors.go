package eth

import "errors"

var (
	// ErrNoContract is returned when a call returns no data, which is what a
	// call to an address without code looks like.
	ErrNoContract = errors.New("no contract code at address")
	// ErrBlockNotFound is returned when the node does not know the block.
	ErrBlockNotFound = errors.New("block not found")
	// ErrValueOutOfRange is returned when an on-chain value does not fit the
	// type it is read into.
	ErrValueOutOfRange = errors.New("on-chain value out of range")
	// ErrTooFewCoins is returned for a stableswap pool listing fewer than two coins.
	ErrTooFewCoins = errors.New("stableswap pool lists fewer than two coins")
)
