package service

import (
	"context"
	"errors"

	"github.com/apollodao/cw-dex-sub000/pkg/amm"
	"github.com/apollodao/cw-dex-sub000/pkg/pool"
	"github.com/holiman/uint256"
)

// PoolInfo describes a loaded pool. VirtualPrice is nil for curves that do
// not define one.
type PoolInfo struct {
	Variant      pool.Variant
	VirtualPrice *uint256.Int
}

// Info loads lp and reports its pool.
func (s *PoolService) Info(ctx context.Context, lp amm.AssetIdentity) (PoolInfo, error) {
	v, err := s.Load(ctx, lp)
	if err != nil {
		return PoolInfo{}, err
	}
	info := PoolInfo{Variant: v}
	price, err := v.VirtualPrice()
	switch {
	case err == nil:
		info.VirtualPrice = &price
	case errors.Is(err, pool.ErrUnsupportedOperation):
	default:
		return PoolInfo{}, err
	}
	return info, nil
}

func (s *PoolService) open(ctx context.Context, lp amm.AssetIdentity) (pool.Variant, error) {
	return s.Load(ctx, lp)
}

// SimulateProvide returns the shares minted for deposits into lp's pool.
func (s *PoolService) SimulateProvide(ctx context.Context, lp amm.AssetIdentity, deposits []amm.Asset) (amm.Asset, error) {
	p, err := s.open(ctx, lp)
	if err != nil {
		return amm.Asset{}, err
	}
	out, err := p.SimulateProvideLiquidity(deposits)
	if err != nil {
		return amm.Asset{}, err
	}
	s.logger.Debug("provide simulated", "lp", lp.String(), "deposits", len(deposits), "shares", out.Amount.Dec())
	return out, nil
}

// SimulateWithdraw returns the assets released by burning shares.
func (s *PoolService) SimulateWithdraw(ctx context.Context, lp amm.AssetIdentity, shares *uint256.Int) ([]amm.Asset, error) {
	p, err := s.open(ctx, lp)
	if err != nil {
		return nil, err
	}
	out, err := p.SimulateWithdrawLiquidity(shares)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("withdraw simulated", "lp", lp.String(), "shares", shares.Dec(), "assets", len(out))
	return out, nil
}

// SimulateWithdrawImbalanced returns the shares burned to take out exactly
// withdrawals. A nil provided means the pool's whole share supply.
func (s *PoolService) SimulateWithdrawImbalanced(ctx context.Context, lp amm.AssetIdentity, withdrawals []amm.Asset, provided *uint256.Int) (amm.Asset, error) {
	p, err := s.open(ctx, lp)
	if err != nil {
		return amm.Asset{}, err
	}
	if provided == nil {
		snap, err := p.Snapshot()
		if err != nil {
			return amm.Asset{}, err
		}
		provided = &snap.Reserves.TotalShares
	}
	out, err := p.SimulateWithdrawImbalanced(withdrawals, provided)
	if err != nil {
		return amm.Asset{}, err
	}
	s.logger.Debug("imbalanced withdraw simulated", "lp", lp.String(), "burn", out.Amount.Dec())
	return out, nil
}

// SimulateSwap returns what offer buys of ask.
func (s *PoolService) SimulateSwap(ctx context.Context, lp amm.AssetIdentity, offer amm.Asset, ask amm.AssetIdentity) (amm.Asset, error) {
	p, err := s.open(ctx, lp)
	if err != nil {
		return amm.Asset{}, err
	}
	out, err := p.SimulateSwap(ctx, offer, ask)
	if err != nil {
		return amm.Asset{}, err
	}
	s.logger.Debug("swap simulated", "lp", lp.String(), "offer", offer.String(), "out", out.String())
	return out, nil
}

// Provide builds the instructions that deposit into lp's pool.
func (s *PoolService) Provide(ctx context.Context, lp amm.AssetIdentity, deposits []amm.Asset, minShares *uint256.Int) ([]pool.Instruction, error) {
	p, err := s.open(ctx, lp)
	if err != nil {
		return nil, err
	}
	return p.ProvideLiquidity(deposits, minShares)
}

// Withdraw builds the instructions that burn shares of lp.
func (s *PoolService) Withdraw(ctx context.Context, lp amm.AssetIdentity, shares *uint256.Int, minOut []amm.Asset) ([]pool.Instruction, error) {
	p, err := s.open(ctx, lp)
	if err != nil {
		return nil, err
	}
	return p.WithdrawLiquidity(shares, minOut)
}

// WithdrawImbalanced builds the instructions that take out exactly
// withdrawals while burning at most maxBurn shares.
func (s *PoolService) WithdrawImbalanced(ctx context.Context, lp amm.AssetIdentity, withdrawals []amm.Asset, maxBurn *uint256.Int) ([]pool.Instruction, error) {
	p, err := s.open(ctx, lp)
	if err != nil {
		return nil, err
	}
	return p.WithdrawImbalanced(withdrawals, maxBurn)
}

// Swap builds the instructions that trade offer for ask.
func (s *PoolService) Swap(ctx context.Context, lp amm.AssetIdentity, offer amm.Asset, ask amm.AssetIdentity, minOut *uint256.Int) ([]pool.Instruction, error) {
	p, err := s.open(ctx, lp)
	if err != nil {
		return nil, err
	}
	return p.Swap(ctx, offer, ask, minOut)
}
