package amm

import (
	"testing"

	"github.com/holiman/uint256"
)

func BenchmarkComputeD(b *testing.B) {
	xp := []uint256.Int{
		*uint256.NewInt(13_451_234_567_890),
		*uint256.NewInt(98_765_432_109_876),
		*uint256.NewInt(55_000_000_000_000),
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ComputeD(2_000, xp); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkStableSwapSimulateSwap(b *testing.B) {
	s, err := NewStableSwap(reserves(13_451_234_567_890, 98_765_432_109_876, 100_000_000_000_000), sixDecimals, StableSwapConfig{Amp: 100, Fee: BpsRate(4), LPPrecision: 6})
	if err != nil {
		b.Fatal(err)
	}
	offer := NewAsset(usdc, 1_000_000)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.SimulateSwap(offer, usdt); err != nil {
			b.Fatal(err)
		}
	}
}
