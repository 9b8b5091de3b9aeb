package pool

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/apollodao/cw-dex-sub000/pkg/amm"
	"github.com/ethereum/go-ethereum/common"
)

// NativeSharePrefix starts the share denom of every native pool.
const NativeSharePrefix = "gamm/pool/"

// NativeShareDenom returns the share token of native pool id.
func NativeShareDenom(id uint64) amm.AssetIdentity {
	return amm.NativeAsset(NativeSharePrefix + strconv.FormatUint(id, 10))
}

// ParseNativePoolID extracts the pool id from a native share denom.
func ParseNativePoolID(denom string) (uint64, bool) {
	rest, ok := strings.CutPrefix(denom, NativeSharePrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(rest, 10, 64)
	// the module never issues zero-padded ids
	if err != nil || strconv.FormatUint(id, 10) != rest {
		return 0, false
	}
	return id, true
}

// ContractShape is what an LP token's issuing contract looks like.
type ContractShape uint8

const (
	ShapeUnknown ContractShape = iota
	// ShapePair is a constant-product pair: the token is the pair itself and
	// its storage holds a factory and two member tokens.
	ShapePair
	// ShapeStable is a share token minted by a stableswap pool contract.
	ShapeStable
)

// ContractInfo is the outcome of inspecting an LP token contract. Pool is the
// contract that prices the token's pool.
type ContractInfo struct {
	Shape ContractShape
	Pool  common.Address
}

// Inspector reads the contract that issued a token.
type Inspector interface {
	InspectLPToken(ctx context.Context, token common.Address) (ContractInfo, error)
}

// Ref is a resolved LP token: the backend kind and where its pool lives.
type Ref struct {
	Kind    Kind
	LPToken amm.AssetIdentity
	// PoolID is set for native pools.
	PoolID uint64
	// Contract is set for contract pools.
	Contract common.Address
}

// Resolver maps LP tokens to backends. It checks that a token looks like a
// pool share; it does not check that the pool is listed in any registry.
type Resolver struct {
	inspector Inspector
}

func NewResolver(inspector Inspector) *Resolver {
	return &Resolver{inspector: inspector}
}

// Resolve returns the backend of lp or ErrNotLpToken.
func (r *Resolver) Resolve(ctx context.Context, lp amm.AssetIdentity) (Ref, error) {
	if lp.IsNative() {
		id, ok := ParseNativePoolID(lp.Denom)
		if !ok {
			return Ref{}, fmt.Errorf("%w: %s", ErrNotLpToken, lp)
		}
		return Ref{Kind: KindNative, LPToken: lp, PoolID: id}, nil
	}
	if lp.IsZero() || r.inspector == nil {
		return Ref{}, fmt.Errorf("%w: %s", ErrNotLpToken, lp)
	}

	info, err := r.inspector.InspectLPToken(ctx, lp.Contract)
	if err != nil {
		return Ref{}, fmt.Errorf("inspect %s: %w", lp, err)
	}
	switch info.Shape {
	case ShapePair:
		return Ref{Kind: KindPair, LPToken: lp, Contract: info.Pool}, nil
	case ShapeStable:
		return Ref{Kind: KindStable, LPToken: lp, Contract: info.Pool}, nil
	default:
		return Ref{}, fmt.Errorf("%w: %s", ErrNotLpToken, lp)
	}
}
