package uniswapv2

import "errors"

var (
	ErrInsufficientInputAmount  = errors.New("uniswapv2: insufficient input amount")
	ErrInsufficientOutputAmount = errors.New("uniswapv2: insufficient output amount")
	ErrInsufficientLiquidity    = errors.New("uniswapv2: insufficient liquidity")
	ErrInvalidFee               = errors.New("uniswapv2: fee must be below 10000 bps")
	ErrOverflow                 = errors.New("uniswapv2: arithmetic overflow")
)
