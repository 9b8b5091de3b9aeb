package pool

import (
	"context"
	"errors"
	"testing"

	"github.com/apollodao/cw-dex-sub000/pkg/amm"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

type fakeInspector struct {
	contracts map[common.Address]ContractInfo
	err       error
}

func (f *fakeInspector) InspectLPToken(_ context.Context, token common.Address) (ContractInfo, error) {
	if f.err != nil {
		return ContractInfo{}, f.err
	}
	return f.contracts[token], nil
}

func TestParseNativePoolID(t *testing.T) {
	t.Parallel()

	cases := []struct {
		denom string
		id    uint64
		ok    bool
	}{
		{"gamm/pool/1", 1, true},
		{"gamm/pool/678", 678, true},
		{"gamm/pool/", 0, false},
		{"gamm/pool/007", 0, false},
		{"gamm/pool/-1", 0, false},
		{"gamm/pool/1/extra", 0, false},
		{"uosmo", 0, false},
		{"ibc/27394FB092D2ECCD56123C74F36E4C1F926001CEADA9CA97EA622B25F41E5EB2", 0, false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.denom, func(t *testing.T) {
			t.Parallel()
			id, ok := ParseNativePoolID(tc.denom)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.id, id)
		})
	}
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	req := require.New(t)

	stablePool := common.HexToAddress("0x00000000000000000000000000000000000000cc")
	stableLP := common.HexToAddress("0x00000000000000000000000000000000000000dd")
	r := NewResolver(&fakeInspector{contracts: map[common.Address]ContractInfo{
		pair:     {Shape: ShapePair, Pool: pair},
		stableLP: {Shape: ShapeStable, Pool: stablePool},
	}})

	ref, err := r.Resolve(ctx, amm.NativeAsset("gamm/pool/12"))
	req.NoError(err)
	req.Equal(Ref{Kind: KindNative, LPToken: amm.NativeAsset("gamm/pool/12"), PoolID: 12}, ref)

	ref, err = r.Resolve(ctx, amm.ContractAsset(pair))
	req.NoError(err)
	req.Equal(KindPair, ref.Kind)
	req.Equal(pair, ref.Contract)

	ref, err = r.Resolve(ctx, amm.ContractAsset(stableLP))
	req.NoError(err)
	req.Equal(KindStable, ref.Kind)
	req.Equal(stablePool, ref.Contract)

	for _, lp := range []amm.AssetIdentity{usdc, tokenA, {}} {
		_, err = r.Resolve(ctx, lp)
		req.ErrorIs(err, ErrNotLpToken, "lp %s", lp)
	}

	rpcDown := errors.New("rpc down")
	_, err = NewResolver(&fakeInspector{err: rpcDown}).Resolve(ctx, amm.ContractAsset(pair))
	req.ErrorIs(err, rpcDown)
	req.NotErrorIs(err, ErrNotLpToken)
}
