package amm

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestConstantProductSimulateProvide(t *testing.T) {
	tests := []struct {
		name     string
		pool     PoolReserves
		d0, d1   uint64
		want     uint64
		expected error
	}{
		{"fresh pool", reserves(0, 0, 0), 1_000_000, 1_000_000, 1_000_000, nil},
		{"fresh pool floors sqrt", reserves(0, 0, 0), 2, 1, 1, nil},
		{"fresh pool rejects single side", reserves(0, 0, 0), 1_000_000, 0, 0, ErrInvalidZeroAmount},
		{"nothing deposited", reserves(1_000, 1_000, 1_000), 0, 0, 0, ErrInvalidZeroAmount},
		{"balanced deposit", reserves(1_000_000, 1_000_000, 1_000_000), 500_000, 500_000, 500_000, nil},
		{"limited by second side", reserves(1_000_000, 1_000_000, 1_000_000), 500_000, 250_000, 250_000, nil},
		{"limited by first side", reserves(1_000_000, 4_000_000, 2_000_000), 100_000, 4_000_000, 200_000, nil},
		{"dust deposit", reserves(1_000_000, 1_000_000, 1_000_000), 1, 1, 1, nil},
		{"rounds to zero", reserves(1_000_000, 1_000_000, 1_000), 999, 999, 0, ErrLiquidityAmountTooSmall},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cp, err := NewConstantProduct(tt.pool)
			require.NoError(t, err)

			got, err := cp.SimulateProvide([]Asset{NewAsset(usdc, tt.d0), NewAsset(usdt, tt.d1)})
			require.ErrorIs(t, err, tt.expected)
			if tt.expected == nil {
				require.Equal(t, tt.want, got.Uint64())
			}
		})
	}
}

func TestConstantProductFullWidthSqrt(t *testing.T) {
	req := require.New(t)

	// 2^100 * 2^100 only fits in 256 bits
	d := dec(t, "1267650600228229401496703205376")
	cp, err := NewConstantProduct(reserves(0, 0, 0))
	req.NoError(err)

	got, err := cp.SimulateProvide([]Asset{{ID: usdc, Amount: *d}, {ID: usdt, Amount: *d}})
	req.NoError(err)
	req.Equal(d.Dec(), got.Dec())
}

func TestConstantProductRejectsNonMember(t *testing.T) {
	req := require.New(t)
	cp, err := NewConstantProduct(reserves(1, 1, 1))
	req.NoError(err)

	_, err = cp.SimulateProvide([]Asset{NewAsset(dai, 1)})
	req.ErrorIs(err, ErrInvalidInAsset)

	_, err = NewConstantProduct(PoolReserves{Assets: []Asset{NewAsset(usdc, 1)}})
	req.ErrorIs(err, ErrInvalidPoolSize)
}

func TestConstantProductSimulateWithdraw(t *testing.T) {
	req := require.New(t)
	cp, err := NewConstantProduct(reserves(1_000_000, 2_000_000, 1_000_000))
	req.NoError(err)

	got, err := cp.SimulateWithdraw(u(250_000))
	req.NoError(err)
	req.Equal([]Asset{NewAsset(usdc, 250_000), NewAsset(usdt, 500_000)}, got)

	got, err = cp.SimulateWithdraw(u(3))
	req.NoError(err)
	req.Equal([]Asset{NewAsset(usdc, 3), NewAsset(usdt, 6)}, got)

	_, err = cp.SimulateWithdraw(u(1_000_001))
	req.ErrorIs(err, ErrInsufficientShares)

	_, err = cp.SimulateWithdraw(u(0))
	req.ErrorIs(err, ErrInvalidZeroAmount)

	empty, err := NewConstantProduct(reserves(0, 0, 0))
	req.NoError(err)
	got, err = empty.SimulateWithdraw(u(10))
	req.NoError(err)
	req.True(got[0].Amount.IsZero())
	req.True(got[1].Amount.IsZero())
}

func TestConstantProductRoundTrip(t *testing.T) {
	pools := []PoolReserves{
		reserves(0, 0, 0),
		reserves(1_000_000, 1_000_000, 1_000_000),
		reserves(3_333_333, 7_777_777, 5_091_750),
		reserves(10, 1_000_000_000, 100_000),
	}
	deposits := [][2]uint64{
		{1_000_000, 1_000_000},
		{123_457, 987_653},
		{7, 11},
		{50_000_000, 3},
	}
	for _, pool := range pools {
		for _, d := range deposits {
			cp, err := NewConstantProduct(pool)
			require.NoError(t, err)
			in := []Asset{NewAsset(usdc, d[0]), NewAsset(usdt, d[1])}
			shares, err := cp.SimulateProvide(in)
			if err != nil {
				require.ErrorIs(t, err, ErrLiquidityAmountTooSmall)
				continue
			}

			after := PoolReserves{
				Assets: []Asset{
					NewAsset(usdc, pool.Assets[0].Amount.Uint64()+d[0]),
					NewAsset(usdt, pool.Assets[1].Amount.Uint64()+d[1]),
				},
				TotalShares: *new(uint256.Int).Add(&pool.TotalShares, &shares),
			}
			cp, err = NewConstantProduct(after)
			require.NoError(t, err)
			out, err := cp.SimulateWithdraw(&shares)
			require.NoError(t, err)
			require.LessOrEqual(t, out[0].Amount.Uint64(), d[0])
			require.LessOrEqual(t, out[1].Amount.Uint64(), d[1])
		}
	}
}
