package amm

import (
	"fmt"

	"github.com/holiman/uint256"
)

// CheckMinOut fails with a *MinOutError when got is below wanted.
func CheckMinOut(got, wanted *uint256.Int) error {
	if got.Lt(wanted) {
		return &MinOutError{Wanted: *wanted, Got: *got}
	}
	return nil
}

// CheckMinOutAssets applies CheckMinOut to every bound in minOut. Assets
// without a bound are unconstrained; a bound on a non-member fails with
// ErrInvalidOutAsset.
func CheckMinOutAssets(got []Asset, minOut []Asset) error {
	for _, bound := range minOut {
		found := false
		for i := range got {
			if got[i].ID != bound.ID {
				continue
			}
			found = true
			if err := CheckMinOut(&got[i].Amount, &bound.Amount); err != nil {
				return fmt.Errorf("%s: %w", bound.ID, err)
			}
		}
		if !found {
			return fmt.Errorf("%w: %s", ErrInvalidOutAsset, bound.ID)
		}
	}
	return nil
}

// CheckMaxBurn fails with a *MinOutError when burning costs more than the
// caller allows. Wanted carries the caller's cap, Got the required burn.
func CheckMaxBurn(burn, maxBurn *uint256.Int) error {
	if burn.Gt(maxBurn) {
		return &MinOutError{Wanted: *maxBurn, Got: *burn}
	}
	return nil
}
