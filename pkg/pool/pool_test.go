package pool

import (
	"context"
	"errors"
	"testing"

	"github.com/apollodao/cw-dex-sub000/pkg/amm"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

var (
	usdc   = amm.NativeAsset("uusdc")
	usdt   = amm.NativeAsset("uusdt")
	tokenA = amm.ContractAsset(common.HexToAddress("0x00000000000000000000000000000000000000aa"))
	tokenB = amm.ContractAsset(common.HexToAddress("0x00000000000000000000000000000000000000bb"))
	pair   = common.HexToAddress("0x0000000000000000000000000000000000000abc")
)

func u(v uint64) *uint256.Int {
	return uint256.NewInt(v)
}

func snapshot(a, b amm.AssetIdentity, r0, r1, shares uint64) Snapshot {
	return Snapshot{
		Reserves: amm.PoolReserves{
			Assets:      []amm.Asset{amm.NewAsset(a, r0), amm.NewAsset(b, r1)},
			TotalShares: *u(shares),
		},
		FeeBps: 30,
	}
}

func nativeCP(t *testing.T) *NativePool {
	t.Helper()
	p, err := NewNativePool(1, []amm.AssetIdentity{usdc, usdt}, CurveConstantProduct, snapshot(usdc, usdt, 1_000_000, 1_000_000, 1_000_000))
	require.NoError(t, err)
	return p
}

func nativeStable(t *testing.T) *NativePool {
	t.Helper()
	snap := snapshot(usdc, usdt, 1_000_000, 1_000_000, 2_000_000)
	snap.Precisions = amm.PrecisionTable{usdc: 6, usdt: 6}
	snap.LPPrecision = 6
	amp := amm.FixedAmp(100)
	snap.Amp = &amp
	p, err := NewNativePool(2, []amm.AssetIdentity{usdc, usdt}, CurveStableSwap, snap)
	require.NoError(t, err)
	return p
}

func TestMutatingOperationsCheckMinOutFirst(t *testing.T) {
	ctx := context.Background()
	p := nativeCP(t)

	tests := []struct {
		name string
		run  func() ([]Instruction, error)
	}{
		{"provide", func() ([]Instruction, error) {
			return p.ProvideLiquidity([]amm.Asset{amm.NewAsset(usdc, 1), amm.NewAsset(usdt, 1)}, u(2))
		}},
		{"withdraw", func() ([]Instruction, error) {
			return p.WithdrawLiquidity(u(250_000), []amm.Asset{amm.NewAsset(usdt, 250_001)})
		}},
		{"swap", func() ([]Instruction, error) {
			return p.Swap(ctx, amm.NewAsset(usdc, 10_000), usdt, u(9_872))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ins, err := tt.run()
			require.ErrorIs(t, err, amm.ErrMinOutNotReceived)
			require.Nil(t, ins)
		})
	}

	_, err := p.ProvideLiquidity([]amm.Asset{amm.NewAsset(usdc, 1), amm.NewAsset(usdt, 1)}, u(2))
	var minOut *amm.MinOutError
	require.True(t, errors.As(err, &minOut))
	require.Equal(t, uint64(2), minOut.Wanted.Uint64())
	require.Equal(t, uint64(1), minOut.Got.Uint64())
}

func TestNativeConstantProduct(t *testing.T) {
	ctx := context.Background()
	req := require.New(t)
	p := nativeCP(t)

	req.Equal(amm.NativeAsset("gamm/pool/1"), p.LPToken())
	req.Equal("1", p.Identity().Address)

	ins, err := p.ProvideLiquidity([]amm.Asset{amm.NewAsset(usdc, 500_000), amm.NewAsset(usdt, 500_000)}, u(500_000))
	req.NoError(err)
	req.Len(ins, 1)
	req.Equal(ActionProvideLiquidity, ins[0].Action)
	req.Equal([]amm.Asset{amm.NewAsset(p.LPToken(), 500_000)}, ins[0].Expect)

	out, err := p.SimulateSwap(ctx, amm.NewAsset(usdc, 10_000), usdt)
	req.NoError(err)
	req.Equal(amm.NewAsset(usdt, 9_871), out)

	ins, err = p.Swap(ctx, amm.NewAsset(usdc, 10_000), usdt, u(9_871))
	req.NoError(err)
	req.Len(ins, 1)
	req.Equal([]amm.Asset{amm.NewAsset(usdt, 9_871)}, ins[0].MinOut)

	ins, err = p.WithdrawLiquidity(u(250_000), []amm.Asset{amm.NewAsset(usdc, 250_000)})
	req.NoError(err)
	req.Equal([]amm.Asset{amm.NewAsset(usdc, 250_000), amm.NewAsset(usdt, 250_000)}, ins[0].Expect)

	_, err = p.SimulateWithdrawImbalanced([]amm.Asset{amm.NewAsset(usdc, 1)}, u(10))
	req.ErrorIs(err, ErrUnsupportedOperation)
	_, err = p.WithdrawImbalanced([]amm.Asset{amm.NewAsset(usdc, 1)}, u(10))
	req.ErrorIs(err, ErrUnsupportedOperation)
	_, err = p.VirtualPrice()
	req.ErrorIs(err, ErrUnsupportedOperation)
}

func TestSwapValidation(t *testing.T) {
	ctx := context.Background()
	req := require.New(t)
	p := nativeCP(t)

	_, err := p.SimulateSwap(ctx, amm.NewAsset(usdc, 1), usdc)
	req.ErrorIs(err, amm.ErrSameAsset)
	_, err = p.SimulateSwap(ctx, amm.NewAsset(usdc, 0), usdt)
	req.ErrorIs(err, amm.ErrInvalidZeroAmount)
	_, err = p.SimulateSwap(ctx, amm.NewAsset(tokenA, 1), usdt)
	req.ErrorIs(err, amm.ErrInvalidInAsset)
	_, err = p.SimulateSwap(ctx, amm.NewAsset(usdc, 1), tokenA)
	req.ErrorIs(err, amm.ErrInvalidOutAsset)

	empty, err := NewNativePool(3, []amm.AssetIdentity{usdc, usdt}, CurveConstantProduct, snapshot(usdc, usdt, 0, 0, 0))
	req.NoError(err)
	_, err = empty.SimulateSwap(ctx, amm.NewAsset(usdc, 1), usdt)
	req.ErrorIs(err, amm.ErrDivideByZero)
}

func TestNativeStableSwap(t *testing.T) {
	ctx := context.Background()
	req := require.New(t)
	p := nativeStable(t)

	shares, err := p.SimulateProvideLiquidity([]amm.Asset{amm.NewAsset(usdc, 100_000), amm.NewAsset(usdt, 100_000)})
	req.NoError(err)
	req.Equal(amm.NewAsset(amm.NativeAsset("gamm/pool/2"), 200_000), shares)

	out, err := p.SimulateSwap(ctx, amm.NewAsset(usdc, 10_000), usdt)
	req.NoError(err)
	req.Equal(uint64(9_970), out.Amount.Uint64())

	burn, err := p.SimulateWithdrawImbalanced([]amm.Asset{amm.NewAsset(usdc, 100_000)}, u(2_000_000))
	req.NoError(err)
	req.Equal(uint64(100_164), burn.Amount.Uint64())

	ins, err := p.WithdrawImbalanced([]amm.Asset{amm.NewAsset(usdc, 100_000)}, u(100_164))
	req.NoError(err)
	req.Len(ins, 1)
	req.Equal(ActionWithdrawImbalanced, ins[0].Action)
	req.Equal([]amm.Asset{amm.NewAsset(p.LPToken(), 100_164)}, ins[0].Send)

	_, err = p.WithdrawImbalanced([]amm.Asset{amm.NewAsset(usdc, 100_000)}, u(100_163))
	var minOut *amm.MinOutError
	req.ErrorAs(err, &minOut)
	req.Equal(uint64(100_163), minOut.Wanted.Uint64())
	req.Equal(uint64(100_164), minOut.Got.Uint64())

	ins, err = p.WithdrawImbalanced([]amm.Asset{amm.NewAsset(usdc, 100_000)}, nil)
	req.NoError(err)
	req.Equal([]amm.Asset{amm.NewAsset(p.LPToken(), 100_164)}, ins[0].Send)

	price, err := p.VirtualPrice()
	req.NoError(err)
	req.Equal("1000000000000000000", price.Dec())
}

func TestStableSwapFollowsAmpRamp(t *testing.T) {
	ctx := context.Background()
	req := require.New(t)
	p := nativeStable(t)

	// unbalanced so that the amplification matters
	p.Snapshot.Reserves.Assets[1] = amm.NewAsset(usdt, 3_000_000)
	p.Snapshot.Amp = &amm.AmplificationParams{InitAmp: 1, InitAmpTime: 100, NextAmp: 1_000, NextAmpTime: 200}

	p.Snapshot.Now = 100
	early, err := p.SimulateSwap(ctx, amm.NewAsset(usdc, 10_000), usdt)
	req.NoError(err)
	p.Snapshot.Now = 200
	late, err := p.SimulateSwap(ctx, amm.NewAsset(usdc, 10_000), usdt)
	req.NoError(err)
	req.True(late.Amount.Lt(&early.Amount), "early %s late %s", early.Amount.Dec(), late.Amount.Dec())

	p.Snapshot.Amp = &amm.AmplificationParams{InitAmp: 1, InitAmpTime: 200, NextAmp: 2, NextAmpTime: 100}
	_, err = p.SimulateSwap(ctx, amm.NewAsset(usdc, 10_000), usdt)
	req.ErrorIs(err, amm.ErrInvalidSchedule)

	p.Snapshot.Amp = nil
	_, err = p.SimulateSwap(ctx, amm.NewAsset(usdc, 10_000), usdt)
	req.ErrorIs(err, ErrMissingAmp)
}

type fakeQuoter struct {
	out uint256.Int
	err error
}

func (f *fakeQuoter) QuoteSwap(context.Context, amm.Asset, amm.AssetIdentity) (uint256.Int, error) {
	return f.out, f.err
}

func TestPairPoolApprovalsAndQuoter(t *testing.T) {
	ctx := context.Background()
	req := require.New(t)
	p, err := NewPairPool(pair, []amm.AssetIdentity{tokenA, tokenB}, snapshot(tokenA, tokenB, 1_000_000, 1_000_000, 1_000_000))
	req.NoError(err)
	req.Equal(amm.ContractAsset(pair), p.LPToken())

	ins, err := p.ProvideLiquidity([]amm.Asset{amm.NewAsset(tokenA, 1_000), amm.NewAsset(tokenB, 1_000)}, nil)
	req.NoError(err)
	req.Len(ins, 3)
	req.Equal(ActionApprove, ins[0].Action)
	req.Equal([]amm.Asset{amm.NewAsset(tokenA, 1_000)}, ins[0].Send)
	req.Equal(ActionApprove, ins[1].Action)
	req.Equal(ActionProvideLiquidity, ins[2].Action)
	req.Equal(pair.Hex(), ins[2].Pool)

	// one-sided deposits mint nothing on a constant-product curve
	_, err = p.ProvideLiquidity([]amm.Asset{amm.NewAsset(tokenA, 1_000)}, nil)
	req.ErrorIs(err, amm.ErrLiquidityAmountTooSmall)

	p.SetQuoter(&fakeQuoter{out: *u(42)})
	out, err := p.SimulateSwap(ctx, amm.NewAsset(tokenA, 1_000), tokenB)
	req.NoError(err)
	req.Equal(amm.NewAsset(tokenB, 42), out)

	routerDown := errors.New("router down")
	p.SetQuoter(&fakeQuoter{err: routerDown})
	_, err = p.Swap(ctx, amm.NewAsset(tokenA, 1_000), tokenB, nil)
	req.ErrorIs(err, routerDown)

	_, err = NewPairPool(pair, []amm.AssetIdentity{tokenA}, Snapshot{})
	req.ErrorIs(err, amm.ErrInvalidPoolSize)
}

func TestEmptyPairLocksFirstShares(t *testing.T) {
	req := require.New(t)
	snap := snapshot(tokenA, tokenB, 0, 0, 0)
	snap.LockedShares = 1_000
	p, err := NewPairPool(pair, []amm.AssetIdentity{tokenA, tokenB}, snap)
	req.NoError(err)

	shares, err := p.SimulateProvideLiquidity([]amm.Asset{amm.NewAsset(tokenA, 4_000), amm.NewAsset(tokenB, 9_000)})
	req.NoError(err)
	req.Equal(uint64(6_000-1_000), shares.Amount.Uint64())

	_, err = p.SimulateProvideLiquidity([]amm.Asset{amm.NewAsset(tokenA, 1_000), amm.NewAsset(tokenB, 1_000)})
	req.ErrorIs(err, amm.ErrLiquidityAmountTooSmall)

	// a pool with supply mints proportionally, without a lock
	live := snapshot(tokenA, tokenB, 1_000_000, 1_000_000, 1_000_000)
	live.LockedShares = 1_000
	p, err = NewPairPool(pair, []amm.AssetIdentity{tokenA, tokenB}, live)
	req.NoError(err)
	shares, err = p.SimulateProvideLiquidity([]amm.Asset{amm.NewAsset(tokenA, 5_000), amm.NewAsset(tokenB, 5_000)})
	req.NoError(err)
	req.Equal(uint64(5_000), shares.Amount.Uint64())
}

func TestSwapFeeRate(t *testing.T) {
	ctx := context.Background()
	req := require.New(t)

	snap := snapshot(usdc, usdt, 1_000_000, 1_000_000, 2_000_000)
	req.Equal(amm.BpsRate(30), snap.SwapFee())
	snap.FeeRate = &amm.Rate{Num: 1_500_000, Den: 10_000_000_000}
	req.Equal(amm.Rate{Num: 1_500_000, Den: 10_000_000_000}, snap.SwapFee())

	// constant-product quotes only take basis points
	p, err := NewPairPool(pair, []amm.AssetIdentity{usdc, usdt}, snap)
	req.NoError(err)
	_, err = p.SimulateSwap(ctx, amm.NewAsset(usdc, 10_000), usdt)
	req.ErrorIs(err, ErrUnsupportedOperation)
}

func TestNewPoolValidation(t *testing.T) {
	req := require.New(t)

	_, err := NewNativePool(1, nil, CurveUnsupported, Snapshot{})
	req.ErrorIs(err, ErrUnsupportedPool)

	_, err = NewStablePool(pair, pair, []amm.AssetIdentity{tokenA, tokenB}, Snapshot{})
	req.ErrorIs(err, ErrMissingAmp)
}
