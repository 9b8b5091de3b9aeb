package pool

import "errors"

var (
	// ErrNotLpToken is returned when an asset is neither a native pool share
	// denom nor a token issued by a recognized pool contract.
	ErrNotLpToken = errors.New("asset is not a pool share token")
	// ErrUnsupportedOperation is returned for operations the pool's curve has
	// no math for, such as an imbalanced withdrawal from a constant-product pool.
	ErrUnsupportedOperation = errors.New("operation not supported by pool curve")
	// ErrUnsupportedPool is returned for pools of an unsupported curve kind.
	ErrUnsupportedPool = errors.New("unsupported pool curve")
	// ErrUnknownVariant is returned when a Variant's tag does not match its payload.
	ErrUnknownVariant = errors.New("unknown pool variant")
	// ErrMissingAmp is returned when a stableswap snapshot carries no
	// amplification parameters.
	ErrMissingAmp = errors.New("stableswap snapshot without amplification parameters")
)
