package amm

import "github.com/holiman/uint256"

// Normalize rescales amount from one decimal precision to another. Scaling
// down floors toward zero, so a normalized amount is never overstated.
func Normalize(amount *uint256.Int, from, to uint8) (*uint256.Int, error) {
	if to >= from {
		factor, err := pow10(to - from)
		if err != nil {
			return nil, err
		}
		return mul(amount, factor)
	}
	factor, err := pow10(from - to)
	if err != nil {
		return nil, err
	}
	return div(amount, factor)
}

// normalizeAll brings every amount to the target precision.
func normalizeAll(amounts []uint256.Int, precisions []uint8, to uint8) ([]uint256.Int, error) {
	out := make([]uint256.Int, len(amounts))
	for i := range amounts {
		v, err := Normalize(&amounts[i], precisions[i], to)
		if err != nil {
			return nil, err
		}
		out[i] = *v
	}
	return out, nil
}
