package eth

import (
	"context"
	"math/big"

	"github.com/apollodao/cw-dex-sub000/pkg/pool"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// contract UniswapV2Pair is IUniswapV2Pair, UniswapV2ERC20 {
//     uint public totalSupply;                 // slot 0, from UniswapV2ERC20
//     ...
//     address public factory;                  // slot 5
//     address public token0;                   // slot 6
//     address public token1;                   // slot 7
//
//     uint112 private reserve0;           // uses single storage slot, accessible via getReserves
//     uint112 private reserve1;           // uses single storage slot, accessible via getReserves
//     uint32  private blockTimestampLast; // uses single storage slot, accessible via getReserves
const (
	slotTotalSupply = 0
	slotFactory     = 5
	slotToken0      = 6
	slotToken1      = 7
	slotReserves    = 8
)

// PairState is a constant-product pair read at Block.
type PairState struct {
	Block       uint64
	Factory     common.Address
	Token0      common.Address
	Token1      common.Address
	Reserve0    uint256.Int
	Reserve1    uint256.Int
	TotalSupply uint256.Int
}

// PairState reads a pair's members, reserves and share supply straight from
// storage at the latest block.
func (c *Client) PairState(ctx context.Context, pair common.Address) (PairState, error) {
	bn, err := c.BlockNumber(ctx)
	if err != nil {
		return PairState{}, err
	}
	blockNum := new(big.Int).SetUint64(bn)

	factory, token0, token1, err := c.loadPairShape(ctx, pair, blockNum)
	if err != nil {
		return PairState{}, err
	}

	// reserves (uint112 | uint112 | uint32) are packed into a single 32-byte slot
	br, err := c.readSlot(ctx, pair, blockNum, slotReserves)
	if err != nil {
		return PairState{}, err
	}
	reserve0, reserve1 := parseReserves(br)

	bs, err := c.readSlot(ctx, pair, blockNum, slotTotalSupply)
	if err != nil {
		return PairState{}, err
	}

	return PairState{
		Block:       bn,
		Factory:     factory,
		Token0:      token0,
		Token1:      token1,
		Reserve0:    reserve0,
		Reserve1:    reserve1,
		TotalSupply: *new(uint256.Int).SetBytes(bs),
	}, nil
}

// loadPairShape reads factory, token0 and token1 from pair storage.
func (c *Client) loadPairShape(ctx context.Context, pair common.Address, blockNum *big.Int) (common.Address, common.Address, common.Address, error) {
	var addrs [3]common.Address
	for i, slot := range []uint64{slotFactory, slotToken0, slotToken1} {
		b, err := c.readSlot(ctx, pair, blockNum, slot)
		if err != nil {
			return common.Address{}, common.Address{}, common.Address{}, err
		}
		addrs[i] = common.BytesToAddress(b)
	}
	return addrs[0], addrs[1], addrs[2], nil
}

// parseReserves unpacks two uint112 reserves from the 32-byte storage word
// used by Uniswap V2 pairs. The layout is:
//
//	[ 32 bits timestamp | 112 bits reserve1 | 112 bits reserve0 ]
//
// from the most significant end of the big-endian word.
func parseReserves(b []byte) (reserve0, reserve1 uint256.Int) {
	v := new(uint256.Int).SetBytes(b)
	one := uint256.NewInt(1)
	mask112 := new(uint256.Int).Sub(new(uint256.Int).Lsh(one, 112), one)

	reserve0.And(v, mask112)
	reserve1.And(new(uint256.Int).Rsh(v, 112), mask112)
	return
}

// InspectLPToken classifies the contract that issued token. A pair is its own
// share token and carries a factory and two distinct members in storage. A
// stableswap share token names its pool through minter(), and that pool must
// list at least one coin. Anything else is ShapeUnknown.
func (c *Client) InspectLPToken(ctx context.Context, token common.Address) (pool.ContractInfo, error) {
	bn, err := c.BlockNumber(ctx)
	if err != nil {
		return pool.ContractInfo{}, err
	}
	blockNum := new(big.Int).SetUint64(bn)

	factory, token0, token1, err := c.loadPairShape(ctx, token, blockNum)
	if err != nil {
		return pool.ContractInfo{}, err
	}
	zero := common.Address{}
	if factory != zero && token0 != zero && token1 != zero && token0 != token1 {
		return pool.ContractInfo{Shape: pool.ShapePair, Pool: token}, nil
	}

	minter, err := c.callAddress(ctx, token, blockNum, "minter")
	if err != nil {
		if isRevert(err) {
			return pool.ContractInfo{Shape: pool.ShapeUnknown}, nil
		}
		return pool.ContractInfo{}, err
	}
	if minter == zero {
		return pool.ContractInfo{Shape: pool.ShapeUnknown}, nil
	}
	coin0, err := c.callAddress(ctx, minter, blockNum, "coins", big.NewInt(0))
	if err != nil {
		if isRevert(err) {
			return pool.ContractInfo{Shape: pool.ShapeUnknown}, nil
		}
		return pool.ContractInfo{}, err
	}
	if coin0 == zero {
		return pool.ContractInfo{Shape: pool.ShapeUnknown}, nil
	}
	return pool.ContractInfo{Shape: pool.ShapeStable, Pool: minter}, nil
}
