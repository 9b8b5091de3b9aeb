// Package amm implements the pool invariant math shared by every backend:
// precision normalization, the amplification ramp, constant-product share math
// and the stableswap invariant.
//
// Everything here is a pure function of its inputs. Reserves, precisions and the
// current time are supplied by the caller as snapshots.
package amm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// AssetIdentity names a token. Exactly one of Denom (native ledger) or
// Contract (contract-issued token) is set.
type AssetIdentity struct {
	Denom    string
	Contract common.Address
}

func NativeAsset(denom string) AssetIdentity {
	return AssetIdentity{Denom: denom}
}

func ContractAsset(addr common.Address) AssetIdentity {
	return AssetIdentity{Contract: addr}
}

// ParseAssetIdentity accepts a hex contract address or a native denom.
func ParseAssetIdentity(s string) (AssetIdentity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return AssetIdentity{}, ErrEmptyAssetIdentity
	}
	if common.IsHexAddress(s) {
		return ContractAsset(common.HexToAddress(s)), nil
	}
	return NativeAsset(s), nil
}

func (a AssetIdentity) IsNative() bool {
	return a.Denom != ""
}

func (a AssetIdentity) IsZero() bool {
	return a.Denom == "" && a.Contract == (common.Address{})
}

func (a AssetIdentity) String() string {
	if a.IsNative() {
		return a.Denom
	}
	return a.Contract.Hex()
}

func (a AssetIdentity) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *AssetIdentity) UnmarshalText(b []byte) error {
	id, err := ParseAssetIdentity(string(b))
	if err != nil {
		return err
	}
	*a = id
	return nil
}

// Asset is an amount of a single token.
type Asset struct {
	ID     AssetIdentity
	Amount uint256.Int
}

func NewAsset(id AssetIdentity, amount uint64) Asset {
	return Asset{ID: id, Amount: *uint256.NewInt(amount)}
}

func (a Asset) String() string {
	return a.Amount.Dec() + a.ID.String()
}

type assetJSON struct {
	ID     AssetIdentity `json:"id"`
	Amount string        `json:"amount"`
}

func (a Asset) MarshalJSON() ([]byte, error) {
	return json.Marshal(assetJSON{ID: a.ID, Amount: a.Amount.Dec()})
}

func (a *Asset) UnmarshalJSON(b []byte) error {
	var raw assetJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	amount, err := ParseAmount(raw.Amount)
	if err != nil {
		return fmt.Errorf("asset %s: %w", raw.ID, err)
	}
	a.ID = raw.ID
	a.Amount = amount
	return nil
}

// ParseAsset reads "<asset>:<amount>". The amount follows the last colon so
// that denoms may contain one.
func ParseAsset(s string) (Asset, error) {
	s = strings.TrimSpace(s)
	i := strings.LastIndex(s, ":")
	if i <= 0 {
		return Asset{}, fmt.Errorf("%w: want <asset>:<amount>, got %q", ErrInvalidAmount, s)
	}
	id, err := ParseAssetIdentity(s[:i])
	if err != nil {
		return Asset{}, err
	}
	amount, err := ParseAmount(s[i+1:])
	if err != nil {
		return Asset{}, err
	}
	return Asset{ID: id, Amount: amount}, nil
}

// ParseAssets reads a comma separated list of ParseAsset terms. An empty
// string yields no assets.
func ParseAssets(s string) ([]Asset, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]Asset, 0, len(parts))
	for _, p := range parts {
		a, err := ParseAsset(p)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// ParseAmount parses a base-10 amount. Amounts wider than 128 bits are
// rejected with ErrArithmeticOverflow.
func ParseAmount(s string) (uint256.Int, error) {
	v, err := uint256.FromDecimal(strings.TrimSpace(s))
	if err != nil {
		return uint256.Int{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if v.BitLen() > AmountBits {
		return uint256.Int{}, ErrArithmeticOverflow
	}
	return *v, nil
}

// PoolReserves is a snapshot of a pool's members and LP supply.
type PoolReserves struct {
	Assets      []Asset
	TotalShares uint256.Int
}

type poolReservesJSON struct {
	Assets      []Asset `json:"assets"`
	TotalShares string  `json:"total_shares"`
}

func (r PoolReserves) MarshalJSON() ([]byte, error) {
	return json.Marshal(poolReservesJSON{Assets: r.Assets, TotalShares: r.TotalShares.Dec()})
}

func (r *PoolReserves) UnmarshalJSON(b []byte) error {
	var raw poolReservesJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	shares := uint256.Int{}
	if raw.TotalShares != "" {
		var err error
		if shares, err = ParseAmount(raw.TotalShares); err != nil {
			return fmt.Errorf("total_shares: %w", err)
		}
	}
	r.Assets = raw.Assets
	r.TotalShares = shares
	return nil
}

// Index returns the position of id among the reserves.
func (r PoolReserves) Index(id AssetIdentity) (int, bool) {
	for i := range r.Assets {
		if r.Assets[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

// Amounts returns the reserve amounts in pool order.
func (r PoolReserves) Amounts() []uint256.Int {
	out := make([]uint256.Int, len(r.Assets))
	for i := range r.Assets {
		out[i] = r.Assets[i].Amount
	}
	return out
}

// Align orders deposits by pool membership. Members missing from assets get a
// zero amount; an asset that is not a member fails with ErrInvalidInAsset.
// Repeated entries for the same member are summed.
func (r PoolReserves) Align(assets []Asset) ([]uint256.Int, error) {
	return r.align(assets, ErrInvalidInAsset)
}

func (r PoolReserves) align(assets []Asset, notMember error) ([]uint256.Int, error) {
	out := make([]uint256.Int, len(r.Assets))
	for _, a := range assets {
		i, ok := r.Index(a.ID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", notMember, a.ID)
		}
		if _, overflow := out[i].AddOverflow(&out[i], &a.Amount); overflow {
			return nil, ErrArithmeticOverflow
		}
	}
	return out, nil
}

// PrecisionTable maps each asset to its decimal precision.
type PrecisionTable map[AssetIdentity]uint8

// Lookup returns the precision of every reserve asset, in pool order, and the
// greatest of them.
func (p PrecisionTable) Lookup(r PoolReserves) ([]uint8, uint8, error) {
	out := make([]uint8, len(r.Assets))
	var greatest uint8
	for i, a := range r.Assets {
		prec, ok := p[a.ID]
		if !ok {
			return nil, 0, fmt.Errorf("%w: %s", ErrMissingPrecision, a.ID)
		}
		out[i] = prec
		greatest = max(greatest, prec)
	}
	return out, greatest, nil
}
