package amm

import (
	"fmt"

	"github.com/holiman/uint256"
)

// AmplificationParams describes a linear ramp of the amplification coefficient
// from InitAmp at InitAmpTime to NextAmp at NextAmpTime. Times are unix seconds.
type AmplificationParams struct {
	InitAmp     uint64 `json:"init_amp"`
	InitAmpTime uint64 `json:"init_amp_time"`
	NextAmp     uint64 `json:"next_amp"`
	NextAmpTime uint64 `json:"next_amp_time"`
}

// FixedAmp returns a schedule that is not ramping.
func FixedAmp(amp uint64) AmplificationParams {
	return AmplificationParams{InitAmp: amp, NextAmp: amp}
}

func (p AmplificationParams) Validate() error {
	if p.NextAmpTime < p.InitAmpTime {
		return fmt.Errorf("%w: next_amp_time %d before init_amp_time %d", ErrInvalidSchedule, p.NextAmpTime, p.InitAmpTime)
	}
	return nil
}

// CurrentAmp returns the effective amplification at now.
func (p AmplificationParams) CurrentAmp(now uint64) (uint64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if now >= p.NextAmpTime {
		return p.NextAmp, nil
	}
	if p.NextAmpTime == p.InitAmpTime {
		return 0, fmt.Errorf("%w: zero-length ramp ending at %d queried at %d", ErrInvalidSchedule, p.NextAmpTime, now)
	}
	if now <= p.InitAmpTime {
		return p.InitAmp, nil
	}

	elapsed := uint256.NewInt(now - p.InitAmpTime)
	span := uint256.NewInt(p.NextAmpTime - p.InitAmpTime)
	base := uint256.NewInt(p.InitAmp)
	if p.NextAmp >= p.InitAmp {
		step, err := mulDiv(uint256.NewInt(p.NextAmp-p.InitAmp), elapsed, span)
		if err != nil {
			return 0, err
		}
		return new(uint256.Int).Add(base, step).Uint64(), nil
	}
	step, err := mulDiv(uint256.NewInt(p.InitAmp-p.NextAmp), elapsed, span)
	if err != nil {
		return 0, err
	}
	return new(uint256.Int).Sub(base, step).Uint64(), nil
}
