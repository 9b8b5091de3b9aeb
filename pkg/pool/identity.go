package pool

import (
	"fmt"

	"github.com/apollodao/cw-dex-sub000/pkg/amm"
)

// CurveKind tags the invariant a pool prices with.
type CurveKind uint8

const (
	CurveUnsupported CurveKind = iota
	CurveConstantProduct
	CurveStableSwap
)

var curveNames = map[CurveKind]string{
	CurveUnsupported:     "unsupported",
	CurveConstantProduct: "constant_product",
	CurveStableSwap:      "stable_swap",
}

func (c CurveKind) String() string {
	if name, ok := curveNames[c]; ok {
		return name
	}
	return fmt.Sprintf("curve(%d)", uint8(c))
}

func (c CurveKind) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *CurveKind) UnmarshalText(b []byte) error {
	for kind, name := range curveNames {
		if name == string(b) {
			*c = kind
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedPool, b)
}

// Identity is the stable handle of a resolved pool. Address is the pool
// contract for contract pools and the numeric pool id for native pools.
type Identity struct {
	Address string              `json:"address"`
	Members []amm.AssetIdentity `json:"members"`
	LPToken amm.AssetIdentity   `json:"lp_token"`
	Curve   CurveKind           `json:"curve"`
}

// Snapshot is the environment state one simulation runs against. It is read
// fresh for every request and never updated in place.
type Snapshot struct {
	Reserves amm.PoolReserves `json:"reserves"`

	// FeeBps is the swap fee. Stableswap pools also charge it, scaled, on the
	// imbalance of deposits and withdrawals.
	FeeBps uint64 `json:"fee_bps"`
	// FeeRate replaces FeeBps for pools quoting fees finer than a basis point.
	FeeRate *amm.Rate `json:"fee_rate,omitempty"`

	// LockedShares are burned out of the first deposit into an empty
	// constant-product pool.
	LockedShares uint64 `json:"locked_shares,omitempty"`

	// Stableswap only.
	Precisions       amm.PrecisionTable       `json:"precisions,omitempty"`
	LPPrecision      uint8                    `json:"lp_precision,omitempty"`
	Amp              *amm.AmplificationParams `json:"amp,omitempty"`
	AmpDivisor       uint64                   `json:"amp_divisor,omitempty"`
	Now              uint64                   `json:"now,omitempty"`
	MinimumLiquidity uint64                   `json:"minimum_liquidity,omitempty"`
}

// SwapFee returns the fee rate the pool charges.
func (s Snapshot) SwapFee() amm.Rate {
	if s.FeeRate != nil {
		return *s.FeeRate
	}
	return amm.BpsRate(s.FeeBps)
}
