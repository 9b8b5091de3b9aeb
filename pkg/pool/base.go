package pool

import (
	"context"
	"errors"
	"fmt"

	"github.com/apollodao/cw-dex-sub000/pkg/amm"
	"github.com/apollodao/cw-dex-sub000/pkg/uniswapv2"
	"github.com/holiman/uint256"
)

// Base implements Pool for every backend. Backends embed it and add only
// their own identity data.
type Base struct {
	PoolIdentity Identity `json:"identity"`
	Snapshot     Snapshot `json:"snapshot"`

	quoter Quoter
}

// SetQuoter installs the delegated swap quote of a constant-product pool.
func (b *Base) SetQuoter(q Quoter) {
	b.quoter = q
}

func (b *Base) Identity() Identity {
	return b.PoolIdentity
}

func (b *Base) LPToken() amm.AssetIdentity {
	return b.PoolIdentity.LPToken
}

func (b *Base) Liquidity() amm.PoolReserves {
	return b.Snapshot.Reserves
}

type curve interface {
	SimulateProvide(deposits []amm.Asset) (uint256.Int, error)
	SimulateWithdraw(shares *uint256.Int) ([]amm.Asset, error)
}

func (b *Base) curve() (curve, error) {
	switch b.PoolIdentity.Curve {
	case CurveConstantProduct:
		cp, err := amm.NewConstantProduct(b.Snapshot.Reserves)
		if err != nil {
			return nil, err
		}
		return cp, nil
	case CurveStableSwap:
		return b.stableSwap()
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPool, b.PoolIdentity.Curve)
	}
}

func (b *Base) stableSwap() (*amm.StableSwap, error) {
	if b.PoolIdentity.Curve != CurveStableSwap {
		return nil, fmt.Errorf("%w on %s pool", ErrUnsupportedOperation, b.PoolIdentity.Curve)
	}
	snap := &b.Snapshot
	if snap.Amp == nil {
		return nil, ErrMissingAmp
	}
	amp, err := snap.Amp.CurrentAmp(snap.Now)
	if err != nil {
		return nil, err
	}
	return amm.NewStableSwap(snap.Reserves, snap.Precisions, amm.StableSwapConfig{
		Amp:              amp,
		AmpDivisor:       snap.AmpDivisor,
		Fee:              snap.SwapFee(),
		LPPrecision:      snap.LPPrecision,
		MinimumLiquidity: snap.MinimumLiquidity,
	})
}

func (b *Base) SimulateProvideLiquidity(deposits []amm.Asset) (amm.Asset, error) {
	c, err := b.curve()
	if err != nil {
		return amm.Asset{}, err
	}
	shares, err := c.SimulateProvide(deposits)
	if err != nil {
		return amm.Asset{}, err
	}
	if b.PoolIdentity.Curve == CurveConstantProduct && b.Snapshot.Reserves.TotalShares.IsZero() {
		if shares, err = lockShares(shares, b.Snapshot.LockedShares); err != nil {
			return amm.Asset{}, err
		}
	}
	return amm.Asset{ID: b.LPToken(), Amount: shares}, nil
}

// lockShares deducts the shares an empty pool keeps from its first deposit.
func lockShares(shares uint256.Int, locked uint64) (uint256.Int, error) {
	if locked == 0 {
		return shares, nil
	}
	lock := uint256.NewInt(locked)
	if !shares.Gt(lock) {
		return uint256.Int{}, fmt.Errorf("%w: %s does not exceed locked %d", amm.ErrLiquidityAmountTooSmall, shares.Dec(), locked)
	}
	return *new(uint256.Int).Sub(&shares, lock), nil
}

func (b *Base) SimulateWithdrawLiquidity(shares *uint256.Int) ([]amm.Asset, error) {
	c, err := b.curve()
	if err != nil {
		return nil, err
	}
	return c.SimulateWithdraw(shares)
}

// SimulateWithdrawImbalanced returns the shares burned to receive exactly
// withdrawals. Only stableswap pools support it.
func (b *Base) SimulateWithdrawImbalanced(withdrawals []amm.Asset, provided *uint256.Int) (amm.Asset, error) {
	s, err := b.stableSwap()
	if err != nil {
		return amm.Asset{}, err
	}
	burn, err := s.SimulateWithdrawImbalanced(withdrawals, provided)
	if err != nil {
		return amm.Asset{}, err
	}
	return amm.Asset{ID: b.LPToken(), Amount: burn}, nil
}

func (b *Base) SimulateSwap(ctx context.Context, offer amm.Asset, ask amm.AssetIdentity) (amm.Asset, error) {
	if offer.ID == ask {
		return amm.Asset{}, amm.ErrSameAsset
	}
	if offer.Amount.IsZero() {
		return amm.Asset{}, amm.ErrInvalidZeroAmount
	}
	reserves := b.Snapshot.Reserves
	i, ok := reserves.Index(offer.ID)
	if !ok {
		return amm.Asset{}, fmt.Errorf("%w: %s", amm.ErrInvalidInAsset, offer.ID)
	}
	j, ok := reserves.Index(ask)
	if !ok {
		return amm.Asset{}, fmt.Errorf("%w: %s", amm.ErrInvalidOutAsset, ask)
	}

	var (
		out uint256.Int
		err error
	)
	switch b.PoolIdentity.Curve {
	case CurveConstantProduct:
		fee := b.Snapshot.SwapFee()
		switch {
		case b.quoter != nil:
			out, err = b.quoter.QuoteSwap(ctx, offer, ask)
		case fee.Den != amm.BpsDenominator:
			err = fmt.Errorf("%w: constant-product fee %d/%d is not in basis points", ErrUnsupportedOperation, fee.Num, fee.Den)
		default:
			out, err = localQuote(&offer.Amount, &reserves.Assets[i].Amount, &reserves.Assets[j].Amount, fee.Num)
		}
	case CurveStableSwap:
		var s *amm.StableSwap
		if s, err = b.stableSwap(); err == nil {
			out, err = s.SimulateSwap(offer, ask)
		}
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedPool, b.PoolIdentity.Curve)
	}
	if err != nil {
		return amm.Asset{}, err
	}
	return amm.Asset{ID: ask, Amount: out}, nil
}

// localQuote prices a constant-product swap with the pair library formula.
func localQuote(amountIn, reserveIn, reserveOut *uint256.Int, feeBps uint64) (uint256.Int, error) {
	var dst, t1, t2 uint256.Int
	out, err := uniswapv2.GetAmountOut(&dst, &t1, &t2, amountIn, reserveIn, reserveOut, feeBps)
	switch {
	case err == nil:
		return *out, nil
	case errors.Is(err, uniswapv2.ErrOverflow):
		return uint256.Int{}, fmt.Errorf("%w: %w", amm.ErrArithmeticOverflow, err)
	case errors.Is(err, uniswapv2.ErrInsufficientLiquidity):
		return uint256.Int{}, fmt.Errorf("%w: %w", amm.ErrDivideByZero, err)
	default:
		return uint256.Int{}, fmt.Errorf("%w: %w", amm.ErrInvalidAmount, err)
	}
}

// VirtualPrice is the stableswap invariant per share, at 18 decimals.
func (b *Base) VirtualPrice() (uint256.Int, error) {
	s, err := b.stableSwap()
	if err != nil {
		return uint256.Int{}, err
	}
	return s.VirtualPrice()
}

func (b *Base) ProvideLiquidity(deposits []amm.Asset, minShares *uint256.Int) ([]Instruction, error) {
	got, err := b.SimulateProvideLiquidity(deposits)
	if err != nil {
		return nil, err
	}
	minShares = orZero(minShares)
	if err := amm.CheckMinOut(&got.Amount, minShares); err != nil {
		return nil, err
	}
	send := nonZero(deposits)
	return append(b.approvals(send), Instruction{
		Action: ActionProvideLiquidity,
		Pool:   b.PoolIdentity.Address,
		Send:   send,
		Expect: []amm.Asset{got},
		MinOut: []amm.Asset{{ID: b.LPToken(), Amount: *minShares}},
	}), nil
}

func (b *Base) WithdrawLiquidity(shares *uint256.Int, minOut []amm.Asset) ([]Instruction, error) {
	got, err := b.SimulateWithdrawLiquidity(shares)
	if err != nil {
		return nil, err
	}
	if err := amm.CheckMinOutAssets(got, minOut); err != nil {
		return nil, err
	}
	send := []amm.Asset{{ID: b.LPToken(), Amount: *shares}}
	return append(b.approvals(send), Instruction{
		Action: ActionWithdrawLiquidity,
		Pool:   b.PoolIdentity.Address,
		Send:   send,
		Expect: got,
		MinOut: minOut,
	}), nil
}

// WithdrawImbalanced fails with a *amm.MinOutError when the required burn
// exceeds maxBurn. The instruction sends maxBurn; the pool refunds the rest.
// A nil maxBurn sends exactly the simulated burn.
func (b *Base) WithdrawImbalanced(withdrawals []amm.Asset, maxBurn *uint256.Int) ([]Instruction, error) {
	burn, err := b.SimulateWithdrawImbalanced(withdrawals, &b.Snapshot.Reserves.TotalShares)
	if err != nil {
		return nil, err
	}
	if maxBurn == nil {
		maxBurn = &burn.Amount
	}
	if err := amm.CheckMaxBurn(&burn.Amount, maxBurn); err != nil {
		return nil, err
	}
	send := []amm.Asset{{ID: b.LPToken(), Amount: *maxBurn}}
	return append(b.approvals(send), Instruction{
		Action: ActionWithdrawImbalanced,
		Pool:   b.PoolIdentity.Address,
		Send:   send,
		Expect: nonZero(withdrawals),
	}), nil
}

func (b *Base) Swap(ctx context.Context, offer amm.Asset, ask amm.AssetIdentity, minOut *uint256.Int) ([]Instruction, error) {
	got, err := b.SimulateSwap(ctx, offer, ask)
	if err != nil {
		return nil, err
	}
	minOut = orZero(minOut)
	if err := amm.CheckMinOut(&got.Amount, minOut); err != nil {
		return nil, err
	}
	send := []amm.Asset{offer}
	return append(b.approvals(send), Instruction{
		Action: ActionSwap,
		Pool:   b.PoolIdentity.Address,
		Send:   send,
		Expect: []amm.Asset{got},
		MinOut: []amm.Asset{{ID: ask, Amount: *minOut}},
	}), nil
}

// approvals lets the pool pull every contract-issued asset in send. Native
// assets travel with the call itself.
func (b *Base) approvals(send []amm.Asset) []Instruction {
	var out []Instruction
	for _, a := range send {
		if a.ID.IsNative() {
			continue
		}
		out = append(out, Instruction{
			Action: ActionApprove,
			Pool:   b.PoolIdentity.Address,
			Send:   []amm.Asset{a},
		})
	}
	return out
}

func nonZero(assets []amm.Asset) []amm.Asset {
	out := make([]amm.Asset, 0, len(assets))
	for _, a := range assets {
		if !a.Amount.IsZero() {
			out = append(out, a)
		}
	}
	return out
}

func orZero(x *uint256.Int) *uint256.Int {
	if x == nil {
		return new(uint256.Int)
	}
	return x
}
