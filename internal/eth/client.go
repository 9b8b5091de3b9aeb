// Package eth reads pool state from an Ethereum JSON-RPC node: pair storage
// slots, stableswap pool getters, token metadata and router quotes. Every
// multi-read snapshot is pinned to a single block.
package eth

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/holiman/uint256"
)

// Client wraps an ethclient.Client with the pool reads used by the service.
type Client struct {
	rpc *rpc.Client
	ec  *ethclient.Client
}

func Dial(ctx context.Context, url string) (*Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	rc, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, err
	}
	return NewClient(rc), nil
}

// NewClient wraps an established RPC connection.
func NewClient(rc *rpc.Client) *Client {
	return &Client{rpc: rc, ec: ethclient.NewClient(rc)}
}

func (c *Client) Close() {
	c.ec.Close()
}

func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	bn, err := c.ec.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("block number: %w", err)
	}
	return bn, nil
}

type blockHead struct {
	Timestamp hexutil.Uint64 `json:"timestamp"`
}

// BlockTime returns the timestamp of the latest block.
func (c *Client) BlockTime(ctx context.Context) (uint64, error) {
	return c.blockTime(ctx, "latest")
}

func (c *Client) blockTime(ctx context.Context, tag string) (uint64, error) {
	var head *blockHead
	if err := c.rpc.CallContext(ctx, &head, "eth_getBlockByNumber", tag, false); err != nil {
		return 0, fmt.Errorf("get block %s: %w", tag, err)
	}
	if head == nil {
		return 0, fmt.Errorf("%w: %s", ErrBlockNotFound, tag)
	}
	return uint64(head.Timestamp), nil
}

func (c *Client) readSlot(ctx context.Context, addr common.Address, blockNum *big.Int, slot uint64) ([]byte, error) {
	key := common.BigToHash(new(big.Int).SetUint64(slot))
	b, err := c.ec.StorageAt(ctx, addr, key, blockNum)
	if err != nil {
		return nil, fmt.Errorf("storageAt slot %d (contract %s, block %s): %w",
			slot, addr.Hex(), blockNum.String(), err)
	}
	return b, nil
}

// call invokes a view method of poolABI on to and returns its decoded outputs.
func (c *Client) call(ctx context.Context, to common.Address, blockNum *big.Int, method string, args ...any) ([]any, error) {
	input, err := poolABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	out, err := c.ec.CallContract(ctx, ethereum.CallMsg{To: &to, Data: input}, blockNum)
	if err != nil {
		return nil, fmt.Errorf("call %s on %s: %w", method, to.Hex(), err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s on %s", ErrNoContract, method, to.Hex())
	}
	values, err := poolABI.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return values, nil
}

func (c *Client) callAddress(ctx context.Context, to common.Address, blockNum *big.Int, method string, args ...any) (common.Address, error) {
	values, err := c.call(ctx, to, blockNum, method, args...)
	if err != nil {
		return common.Address{}, err
	}
	addr, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%s: unexpected output type %T", method, values[0])
	}
	return addr, nil
}

func (c *Client) callUint256(ctx context.Context, to common.Address, blockNum *big.Int, method string, args ...any) (uint256.Int, error) {
	values, err := c.call(ctx, to, blockNum, method, args...)
	if err != nil {
		return uint256.Int{}, err
	}
	v, ok := values[0].(*big.Int)
	if !ok {
		return uint256.Int{}, fmt.Errorf("%s: unexpected output type %T", method, values[0])
	}
	return toUint256(v)
}

func (c *Client) callUint64(ctx context.Context, to common.Address, blockNum *big.Int, method string) (uint64, error) {
	v, err := c.callUint256(ctx, to, blockNum, method)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, fmt.Errorf("%w: %s = %s", ErrValueOutOfRange, method, v.Dec())
	}
	return v.Uint64(), nil
}

// Decimals returns an ERC20 token's decimals.
func (c *Client) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	values, err := c.call(ctx, token, nil, "decimals")
	if err != nil {
		return 0, err
	}
	d, ok := values[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("decimals: unexpected output type %T", values[0])
	}
	return d, nil
}

// isRevert reports whether err is the node rejecting the call itself, as
// opposed to a transport failure.
func isRevert(err error) bool {
	var rpcErr rpc.Error
	return errors.As(err, &rpcErr) || errors.Is(err, ErrNoContract)
}

func toUint256(v *big.Int) (uint256.Int, error) {
	if v.Sign() < 0 {
		return uint256.Int{}, fmt.Errorf("%w: negative %s", ErrValueOutOfRange, v)
	}
	z, overflow := uint256.FromBig(v)
	if overflow {
		return uint256.Int{}, fmt.Errorf("%w: %s", ErrValueOutOfRange, v)
	}
	return *z, nil
}
