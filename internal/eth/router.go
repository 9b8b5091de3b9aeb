package eth

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// RouterQuote asks a UniswapV2 router what amountIn buys along path and
// returns the final amount.
func (c *Client) RouterQuote(ctx context.Context, router common.Address, amountIn *uint256.Int, path []common.Address) (uint256.Int, error) {
	values, err := c.call(ctx, router, nil, "getAmountsOut", amountIn.ToBig(), path)
	if err != nil {
		return uint256.Int{}, err
	}
	amounts, ok := values[0].([]*big.Int)
	if !ok || len(amounts) != len(path) {
		return uint256.Int{}, fmt.Errorf("getAmountsOut: unexpected output %v", values[0])
	}
	return toUint256(amounts[len(amounts)-1])
}
