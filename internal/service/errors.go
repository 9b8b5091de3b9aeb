package service

import "errors"

var (
	// ErrChainUnavailable is returned when a contract pool is requested from a
	// service built without a chain reader.
	ErrChainUnavailable = errors.New("chain reads are not configured")
	// ErrLedgerUnavailable is the native-pool counterpart of ErrChainUnavailable.
	ErrLedgerUnavailable = errors.New("native pool ledger is not configured")
	// ErrRouterNativeAsset is returned when a router quote is asked for a
	// native denom, which no router path can hold.
	ErrRouterNativeAsset = errors.New("router quotes need contract assets")
)
