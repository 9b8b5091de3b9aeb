// Package pool puts native and contract AMM pools behind one capability
// interface. Every backend prices with the shared engines in pkg/amm; the
// mutating operations simulate first and refuse to produce instructions when
// the caller's bound is not met.
package pool

import (
	"context"

	"github.com/apollodao/cw-dex-sub000/pkg/amm"
	"github.com/holiman/uint256"
)

// Pool is the operation set every backend supports.
type Pool interface {
	Identity() Identity
	LPToken() amm.AssetIdentity
	// Liquidity returns the reserves and share supply the pool was
	// snapshotted with.
	Liquidity() amm.PoolReserves

	SimulateProvideLiquidity(deposits []amm.Asset) (amm.Asset, error)
	SimulateWithdrawLiquidity(shares *uint256.Int) ([]amm.Asset, error)
	SimulateWithdrawImbalanced(withdrawals []amm.Asset, provided *uint256.Int) (amm.Asset, error)
	SimulateSwap(ctx context.Context, offer amm.Asset, ask amm.AssetIdentity) (amm.Asset, error)

	ProvideLiquidity(deposits []amm.Asset, minShares *uint256.Int) ([]Instruction, error)
	WithdrawLiquidity(shares *uint256.Int, minOut []amm.Asset) ([]Instruction, error)
	WithdrawImbalanced(withdrawals []amm.Asset, maxBurn *uint256.Int) ([]Instruction, error)
	Swap(ctx context.Context, offer amm.Asset, ask amm.AssetIdentity, minOut *uint256.Int) ([]Instruction, error)
}

// Quoter prices a swap through the backend's own quote mechanism, typically
// a router contract. Constant-product pools without a Quoter price locally.
type Quoter interface {
	QuoteSwap(ctx context.Context, offer amm.Asset, ask amm.AssetIdentity) (uint256.Int, error)
}

// Action names the call an Instruction asks the environment to make.
type Action string

const (
	ActionApprove            Action = "approve"
	ActionProvideLiquidity   Action = "provide_liquidity"
	ActionWithdrawLiquidity  Action = "withdraw_liquidity"
	ActionWithdrawImbalanced Action = "withdraw_imbalanced"
	ActionSwap               Action = "swap"
)

// Instruction describes one outbound call. Send lists the assets transferred
// to Pool with the call, Expect the simulated result and MinOut the bound the
// pool enforces when the call executes. Approvals carry the approved asset in
// Send and the spender in Pool.
type Instruction struct {
	Action Action      `json:"action"`
	Pool   string      `json:"pool"`
	Send   []amm.Asset `json:"send,omitempty"`
	Expect []amm.Asset `json:"expect,omitempty"`
	MinOut []amm.Asset `json:"min_out,omitempty"`
}
