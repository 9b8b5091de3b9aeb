package amm

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

// Input validity.
var (
	ErrInvalidZeroAmount                = errors.New("invalid zero amount")
	ErrInvalidProvideLPsWithSingleToken = errors.New("cannot provide liquidity with a single token into an empty reserve")
	ErrInvalidInAsset                   = errors.New("offer asset is not a pool member")
	ErrInvalidOutAsset                  = errors.New("ask asset is not a pool member")
	ErrInvalidAmount                    = errors.New("invalid amount")
	ErrEmptyAssetIdentity               = errors.New("empty asset identity")
	ErrMissingPrecision                 = errors.New("missing asset precision")
	ErrInvalidPoolSize                  = errors.New("invalid number of pool assets")
	ErrSameAsset                        = errors.New("offer and ask assets are the same")
	ErrInsufficientShares               = errors.New("insufficient shares to burn")
	ErrWithdrawExceedsReserve           = errors.New("requested withdrawal exceeds pool reserve")
)

// Numeric.
var (
	ErrArithmeticOverflow      = errors.New("arithmetic overflow")
	ErrDivideByZero            = errors.New("divide by zero")
	ErrLiquidityAmountTooSmall = errors.New("liquidity amount too small")
)

// Schedule.
var ErrInvalidSchedule = errors.New("invalid amplification schedule")

// ErrMinOutNotReceived matches every *MinOutError with errors.Is.
var ErrMinOutNotReceived = errors.New("minimum output not received")

// MinOutError reports a simulated result that is worse than the caller's bound.
type MinOutError struct {
	Wanted uint256.Int
	Got    uint256.Int
}

func (e *MinOutError) Error() string {
	return fmt.Sprintf("minimum output not received: wanted %s, got %s", e.Wanted.Dec(), e.Got.Dec())
}

func (e *MinOutError) Is(target error) bool {
	return target == ErrMinOutNotReceived
}
