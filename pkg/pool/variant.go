package pool

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/apollodao/cw-dex-sub000/pkg/amm"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Kind tags the backend a Variant holds.
type Kind string

const (
	// KindNative is a pool of the chain's native pool module, with share
	// denoms of the form gamm/pool/<id>.
	KindNative Kind = "native"
	// KindPair is a two-asset constant-product pair contract whose own token
	// is the share token.
	KindPair Kind = "pair"
	// KindStable is a stableswap pool contract with a separate share token.
	KindStable Kind = "stable"
)

// NativePool is a pool of the native pool module. Both curves exist there.
type NativePool struct {
	Base
	PoolID uint64 `json:"pool_id"`
}

// PairPool is a constant-product pair contract.
type PairPool struct {
	Base
	Contract common.Address `json:"contract"`
}

// StablePool is a stableswap pool contract.
type StablePool struct {
	Base
	Contract common.Address `json:"contract"`
}

func NewNativePool(id uint64, members []amm.AssetIdentity, curve CurveKind, snap Snapshot) (*NativePool, error) {
	if curve != CurveConstantProduct && curve != CurveStableSwap {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPool, curve)
	}
	return &NativePool{
		Base: Base{
			PoolIdentity: Identity{
				Address: strconv.FormatUint(id, 10),
				Members: members,
				LPToken: NativeShareDenom(id),
				Curve:   curve,
			},
			Snapshot: snap,
		},
		PoolID: id,
	}, nil
}

func NewPairPool(contract common.Address, members []amm.AssetIdentity, snap Snapshot) (*PairPool, error) {
	if len(members) != 2 {
		return nil, fmt.Errorf("%w: pair has %d members", amm.ErrInvalidPoolSize, len(members))
	}
	return &PairPool{
		Base: Base{
			PoolIdentity: Identity{
				Address: contract.Hex(),
				Members: members,
				LPToken: amm.ContractAsset(contract),
				Curve:   CurveConstantProduct,
			},
			Snapshot: snap,
		},
		Contract: contract,
	}, nil
}

func NewStablePool(contract, lpToken common.Address, members []amm.AssetIdentity, snap Snapshot) (*StablePool, error) {
	if len(members) < 2 {
		return nil, fmt.Errorf("%w: stable pool has %d members", amm.ErrInvalidPoolSize, len(members))
	}
	if snap.Amp == nil {
		return nil, ErrMissingAmp
	}
	return &StablePool{
		Base: Base{
			PoolIdentity: Identity{
				Address: contract.Hex(),
				Members: members,
				LPToken: amm.ContractAsset(lpToken),
				Curve:   CurveStableSwap,
			},
			Snapshot: snap,
		},
		Contract: contract,
	}, nil
}

// Variant is the closed set of backends, tagged by Kind. Exactly the field
// matching Kind is set. It serializes as {"kind": ..., "<kind>": {...}}.
type Variant struct {
	Kind   Kind        `json:"kind"`
	Native *NativePool `json:"native,omitempty"`
	Pair   *PairPool   `json:"pair,omitempty"`
	Stable *StablePool `json:"stable,omitempty"`
}

func NativeVariant(p *NativePool) Variant {
	return Variant{Kind: KindNative, Native: p}
}

func PairVariant(p *PairPool) Variant {
	return Variant{Kind: KindPair, Pair: p}
}

func StableVariant(p *StablePool) Variant {
	return Variant{Kind: KindStable, Stable: p}
}

// Pool returns the backend selected by the tag as a Pool. Operations called
// on the Variant itself dispatch without going through the interface.
func (v Variant) Pool() (Pool, error) {
	switch {
	case v.Kind == KindNative && v.Native != nil:
		return v.Native, nil
	case v.Kind == KindPair && v.Pair != nil:
		return v.Pair, nil
	case v.Kind == KindStable && v.Stable != nil:
		return v.Stable, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, v.Kind)
	}
}

// base returns the shared half of the selected backend.
func (v Variant) base() (*Base, error) {
	switch {
	case v.Kind == KindNative && v.Native != nil:
		return &v.Native.Base, nil
	case v.Kind == KindPair && v.Pair != nil:
		return &v.Pair.Base, nil
	case v.Kind == KindStable && v.Stable != nil:
		return &v.Stable.Base, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, v.Kind)
	}
}

// Snapshot returns the state the selected backend simulates against.
func (v Variant) Snapshot() (Snapshot, error) {
	b, err := v.base()
	if err != nil {
		return Snapshot{}, err
	}
	return b.Snapshot, nil
}

// SetQuoter installs q on the selected backend. Only constant-product curves
// consult it.
func (v Variant) SetQuoter(q Quoter) error {
	b, err := v.base()
	if err != nil {
		return err
	}
	b.SetQuoter(q)
	return nil
}

// VirtualPrice forwards to the selected backend.
func (v Variant) VirtualPrice() (uint256.Int, error) {
	b, err := v.base()
	if err != nil {
		return uint256.Int{}, err
	}
	return b.VirtualPrice()
}

// Identity forwards to the selected backend.
func (v Variant) Identity() (Identity, error) {
	b, err := v.base()
	if err != nil {
		return Identity{}, err
	}
	return b.Identity(), nil
}

func (v Variant) SimulateProvideLiquidity(deposits []amm.Asset) (amm.Asset, error) {
	b, err := v.base()
	if err != nil {
		return amm.Asset{}, err
	}
	return b.SimulateProvideLiquidity(deposits)
}

func (v Variant) SimulateWithdrawLiquidity(shares *uint256.Int) ([]amm.Asset, error) {
	b, err := v.base()
	if err != nil {
		return nil, err
	}
	return b.SimulateWithdrawLiquidity(shares)
}

func (v Variant) SimulateWithdrawImbalanced(withdrawals []amm.Asset, provided *uint256.Int) (amm.Asset, error) {
	b, err := v.base()
	if err != nil {
		return amm.Asset{}, err
	}
	return b.SimulateWithdrawImbalanced(withdrawals, provided)
}

func (v Variant) SimulateSwap(ctx context.Context, offer amm.Asset, ask amm.AssetIdentity) (amm.Asset, error) {
	b, err := v.base()
	if err != nil {
		return amm.Asset{}, err
	}
	return b.SimulateSwap(ctx, offer, ask)
}

func (v Variant) ProvideLiquidity(deposits []amm.Asset, minShares *uint256.Int) ([]Instruction, error) {
	b, err := v.base()
	if err != nil {
		return nil, err
	}
	return b.ProvideLiquidity(deposits, minShares)
}

func (v Variant) WithdrawLiquidity(shares *uint256.Int, minOut []amm.Asset) ([]Instruction, error) {
	b, err := v.base()
	if err != nil {
		return nil, err
	}
	return b.WithdrawLiquidity(shares, minOut)
}

func (v Variant) WithdrawImbalanced(withdrawals []amm.Asset, maxBurn *uint256.Int) ([]Instruction, error) {
	b, err := v.base()
	if err != nil {
		return nil, err
	}
	return b.WithdrawImbalanced(withdrawals, maxBurn)
}

func (v Variant) Swap(ctx context.Context, offer amm.Asset, ask amm.AssetIdentity, minOut *uint256.Int) ([]Instruction, error) {
	b, err := v.base()
	if err != nil {
		return nil, err
	}
	return b.Swap(ctx, offer, ask, minOut)
}

func (v *Variant) UnmarshalJSON(b []byte) error {
	type plain Variant
	var raw plain
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	set := 0
	for _, ok := range []bool{raw.Native != nil, raw.Pair != nil, raw.Stable != nil} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("%w: %d payloads set", ErrUnknownVariant, set)
	}
	if _, err := Variant(raw).base(); err != nil {
		return err
	}
	*v = Variant(raw)
	return nil
}
