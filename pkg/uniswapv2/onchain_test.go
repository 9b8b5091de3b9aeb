package uniswapv2

import (
	"context"
	"math/big"
	"os"
	"strings"
	"testing"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/holiman/uint256"
)

const routerGetAmountOutABI = `[{"name":"getAmountOut","type":"function","stateMutability":"pure",
"inputs":[{"name":"amountIn","type":"uint256"},{"name":"reserveIn","type":"uint256"},{"name":"reserveOut","type":"uint256"}],
"outputs":[{"name":"amountOut","type":"uint256"}]}]`

// TestGetAmountOut_Onchain compares our math implementation to Uniswap V2 Router02's
// getAmountOut via an on-chain eth_call. Skips if ETH_RPC_URL is not set.
func TestGetAmountOut_Onchain(t *testing.T) {
	rpcURL := os.Getenv("ETH_RPC_URL")
	if rpcURL == "" {
		t.Skip("ETH_RPC_URL not set; skipping on-chain comparison test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		t.Fatalf("dial eth rpc: %v", err)
	}
	contractABI, err := gethabi.JSON(strings.NewReader(routerGetAmountOutABI))
	if err != nil {
		t.Fatalf("parse abi: %v", err)
	}

	// Uniswap V2 Router02 mainnet address
	router := common.HexToAddress("0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D")

	cases := []struct {
		name       string
		amountIn   uint64
		reserveIn  uint64
		reserveOut uint64
	}{
		{"small_balanced", 1_000, 1_000_000, 1_000_000},
		{"skewed_reserves", 50_000_000_000_000, 5_000_000_000_000_000, 100_000_000_000_000_000},
		{"large_values", 1_000_000_000_000_000, 50_000_000_000_000_000, 75_000_000_000_000_000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in, rIn, rOut := uint256.NewInt(tc.amountIn), uint256.NewInt(tc.reserveIn), uint256.NewInt(tc.reserveOut)
			var dst, t1, t2 uint256.Int
			local, err := GetAmountOut(&dst, &t1, &t2, in, rIn, rOut, DefaultFeeBps)
			if err != nil {
				t.Fatalf("local: %v", err)
			}

			input, err := contractABI.Pack("getAmountOut", in.ToBig(), rIn.ToBig(), rOut.ToBig())
			if err != nil {
				t.Fatalf("abi pack: %v", err)
			}
			out, err := client.CallContract(ctx, ethereum.CallMsg{To: &router, Data: input}, nil)
			if err != nil {
				t.Fatalf("eth_call getAmountOut: %v", err)
			}
			values, err := contractABI.Unpack("getAmountOut", out)
			if err != nil {
				t.Fatalf("abi unpack: %v", err)
			}
			if len(values) != 1 {
				t.Fatalf("unexpected outputs: %d", len(values))
			}
			onchain, ok := values[0].(*big.Int)
			if !ok {
				t.Fatalf("unexpected output type: %T", values[0])
			}

			if local.ToBig().Cmp(onchain) != 0 {
				t.Fatalf("mismatch: local=%s onchain=%s (in=%d rIn=%d rOut=%d)", local, onchain, tc.amountIn, tc.reserveIn, tc.reserveOut)
			}
		})
	}
}
