// Package uniswapv2 prices swaps against a constant-product pair the way the
// UniswapV2 library contract does, with a configurable fee.
package uniswapv2

import "github.com/holiman/uint256"

const (
	// DefaultFeeBps is the 0.3% fee of a canonical pair.
	DefaultFeeBps = 30
	// MinimumLiquidity is the share amount a pair locks out of its first mint.
	MinimumLiquidity = 1_000
)

const feeDenominator = 10_000

var feeDen = uint256.NewInt(feeDenominator)

// GetAmountOut returns floor(in*(1-fee)*rOut / (rIn + in*(1-fee))).
// dst, t1 and t2 are caller-owned temporaries so hot loops do not allocate;
// the result is written to dst.
func GetAmountOut(dst, t1, t2 *uint256.Int, amountIn, reserveIn, reserveOut *uint256.Int, feeBps uint64) (*uint256.Int, error) {
	if feeBps >= feeDenominator {
		return nil, ErrInvalidFee
	}
	if amountIn.IsZero() {
		return nil, ErrInsufficientInputAmount
	}
	if reserveIn.IsZero() || reserveOut.IsZero() {
		return nil, ErrInsufficientLiquidity
	}

	// t1 = amountIn * (10000 - fee)
	t1.SetUint64(feeDenominator - feeBps)
	if _, overflow := t1.MulOverflow(amountIn, t1); overflow {
		return nil, ErrOverflow
	}
	// t2 = reserveIn * 10000 + t1 (denominator)
	if _, overflow := t2.MulOverflow(reserveIn, feeDen); overflow {
		return nil, ErrOverflow
	}
	if _, overflow := t2.AddOverflow(t2, t1); overflow {
		return nil, ErrOverflow
	}
	// dst = t1 * reserveOut / t2, 512-bit intermediate
	if _, overflow := dst.MulDivOverflow(t1, reserveOut, t2); overflow {
		return nil, ErrOverflow
	}
	return dst, nil
}

// GetAmountIn returns the smallest input that buys amountOut, rounded up by
// one unit like the router does.
func GetAmountIn(amountOut, reserveIn, reserveOut *uint256.Int, feeBps uint64) (*uint256.Int, error) {
	if feeBps >= feeDenominator {
		return nil, ErrInvalidFee
	}
	if amountOut.IsZero() {
		return nil, ErrInsufficientOutputAmount
	}
	if reserveIn.IsZero() || !reserveOut.Gt(amountOut) {
		return nil, ErrInsufficientLiquidity
	}

	num, overflow := new(uint256.Int).MulOverflow(reserveIn, amountOut)
	if overflow {
		return nil, ErrOverflow
	}
	if _, overflow = num.MulOverflow(num, feeDen); overflow {
		return nil, ErrOverflow
	}
	den := new(uint256.Int).Sub(reserveOut, amountOut)
	if _, overflow = den.MulOverflow(den, uint256.NewInt(feeDenominator-feeBps)); overflow {
		return nil, ErrOverflow
	}
	num.Div(num, den)
	if _, overflow = num.AddOverflow(num, uint256.NewInt(1)); overflow {
		return nil, ErrOverflow
	}
	return num, nil
}

// Quote returns the amount of B that matches amountA at the pair's current
// ratio, with no fee.
func Quote(amountA, reserveA, reserveB *uint256.Int) (*uint256.Int, error) {
	if amountA.IsZero() {
		return nil, ErrInsufficientInputAmount
	}
	if reserveA.IsZero() || reserveB.IsZero() {
		return nil, ErrInsufficientLiquidity
	}
	z, overflow := new(uint256.Int).MulDivOverflow(amountA, reserveB, reserveA)
	if overflow {
		return nil, ErrOverflow
	}
	return z, nil
}
