package amm

import (
	"fmt"

	"github.com/holiman/uint256"
)

// ConstantProduct is the share math of a two-asset x*y=k pool.
type ConstantProduct struct {
	reserves PoolReserves
}

func NewConstantProduct(reserves PoolReserves) (*ConstantProduct, error) {
	if len(reserves.Assets) != 2 {
		return nil, fmt.Errorf("%w: constant product needs 2, got %d", ErrInvalidPoolSize, len(reserves.Assets))
	}
	return &ConstantProduct{reserves: reserves}, nil
}

// SimulateProvide returns the shares minted for the deposits. An empty pool
// mints sqrt(d0*d1); otherwise the limiting side decides.
func (c *ConstantProduct) SimulateProvide(deposits []Asset) (uint256.Int, error) {
	amounts, err := c.reserves.Align(deposits)
	if err != nil {
		return uint256.Int{}, err
	}
	d0, d1 := &amounts[0], &amounts[1]
	if d0.IsZero() && d1.IsZero() {
		return uint256.Int{}, ErrInvalidZeroAmount
	}

	supply := &c.reserves.TotalShares
	if supply.IsZero() {
		if d0.IsZero() || d1.IsZero() {
			return uint256.Int{}, ErrInvalidZeroAmount
		}
		k, err := mul(d0, d1)
		if err != nil {
			return uint256.Int{}, err
		}
		return narrow(new(uint256.Int).Sqrt(k))
	}

	r0, r1 := &c.reserves.Assets[0].Amount, &c.reserves.Assets[1].Amount
	share0, err := mulDiv(d0, supply, r0)
	if err != nil {
		return uint256.Int{}, fmt.Errorf("share of %s: %w", c.reserves.Assets[0].ID, err)
	}
	share1, err := mulDiv(d1, supply, r1)
	if err != nil {
		return uint256.Int{}, fmt.Errorf("share of %s: %w", c.reserves.Assets[1].ID, err)
	}
	shares := minInt(share0, share1)
	if shares.IsZero() {
		return uint256.Int{}, ErrLiquidityAmountTooSmall
	}
	return narrow(shares)
}

// SimulateWithdraw returns the assets paid out for burning shares.
func (c *ConstantProduct) SimulateWithdraw(shares *uint256.Int) ([]Asset, error) {
	return proportionalWithdraw(c.reserves, shares)
}

// proportionalWithdraw pays reserve_i * shares / supply of every member,
// floored. A pool without supply pays nothing.
func proportionalWithdraw(reserves PoolReserves, shares *uint256.Int) ([]Asset, error) {
	if shares.IsZero() {
		return nil, ErrInvalidZeroAmount
	}
	supply := &reserves.TotalShares
	if shares.Gt(supply) && !supply.IsZero() {
		return nil, fmt.Errorf("%w: burning %s of %s", ErrInsufficientShares, shares.Dec(), supply.Dec())
	}

	out := make([]Asset, len(reserves.Assets))
	for i, a := range reserves.Assets {
		out[i].ID = a.ID
		if supply.IsZero() {
			continue
		}
		amount, err := mulDiv(&a.Amount, shares, supply)
		if err != nil {
			return nil, err
		}
		out[i].Amount = *amount
	}
	return out, nil
}
