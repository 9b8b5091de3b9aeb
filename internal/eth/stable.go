package eth

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// maxCoins bounds the coins(i) probe of a stableswap pool.
const maxCoins = 8

// StableFeeDenominator is the denominator of a stableswap pool's fee().
const StableFeeDenominator = 10_000_000_000

// StableState is a stableswap pool read at Block. The amplification values
// are raw, still scaled by the pool's A precision.
type StableState struct {
	Block        uint64
	Time         uint64
	Coins        []common.Address
	Balances     []uint256.Int
	TotalSupply  uint256.Int
	InitialA     uint64
	FutureA      uint64
	InitialATime uint64
	FutureATime  uint64
	Fee          uint64
}

// StableState reads a stableswap pool and the supply of its share token.
func (c *Client) StableState(ctx context.Context, pool, lpToken common.Address) (StableState, error) {
	bn, err := c.BlockNumber(ctx)
	if err != nil {
		return StableState{}, err
	}
	blockNum := new(big.Int).SetUint64(bn)

	st := StableState{Block: bn}
	if st.Time, err = c.blockTime(ctx, hexutil.EncodeUint64(bn)); err != nil {
		return StableState{}, err
	}

	for i := int64(0); i < maxCoins; i++ {
		coin, err := c.callAddress(ctx, pool, blockNum, "coins", big.NewInt(i))
		if err != nil {
			// coins(i) reverts past the last coin
			if isRevert(err) && i >= 2 {
				break
			}
			return StableState{}, fmt.Errorf("coin %d of %s: %w", i, pool.Hex(), err)
		}
		if coin == (common.Address{}) {
			break
		}
		balance, err := c.callUint256(ctx, pool, blockNum, "balances", big.NewInt(i))
		if err != nil {
			return StableState{}, err
		}
		st.Coins = append(st.Coins, coin)
		st.Balances = append(st.Balances, balance)
	}
	if len(st.Coins) < 2 {
		return StableState{}, fmt.Errorf("%w: %s", ErrTooFewCoins, pool.Hex())
	}

	if st.TotalSupply, err = c.callUint256(ctx, lpToken, blockNum, "totalSupply"); err != nil {
		return StableState{}, err
	}
	for _, f := range []struct {
		method string
		dst    *uint64
	}{
		{"initial_A", &st.InitialA},
		{"future_A", &st.FutureA},
		{"initial_A_time", &st.InitialATime},
		{"future_A_time", &st.FutureATime},
		{"fee", &st.Fee},
	} {
		if *f.dst, err = c.callUint64(ctx, pool, blockNum, f.method); err != nil {
			return StableState{}, err
		}
	}
	return st, nil
}
