package amm

import (
	"fmt"

	"github.com/holiman/uint256"
)

const (
	// Iterations caps the Newton solvers. Not converging within the cap is
	// accepted as close enough.
	Iterations = 32

	// BpsDenominator is the denominator of a fee given in basis points.
	BpsDenominator = 10_000

	// DefaultMinimumLiquidity is the floor an initial stableswap deposit must
	// exceed, in LP token units.
	DefaultMinimumLiquidity = 1_000
)

var one = uint256.NewInt(1)

// Rate is the fraction Num/Den.
type Rate struct {
	Num uint64 `json:"num"`
	Den uint64 `json:"den"`
}

// BpsRate returns a rate of bps basis points.
func BpsRate(bps uint64) Rate {
	return Rate{Num: bps, Den: BpsDenominator}
}

// StableSwapConfig is the per-pool configuration of the stableswap invariant.
type StableSwapConfig struct {
	// Amp is the effective amplification, see AmplificationParams.CurrentAmp.
	Amp uint64
	// AmpDivisor scales Amp down: the invariant runs with A = Amp/AmpDivisor
	// at full precision. Zero means 1. Pools that report A*n^(n-1) times a
	// fixed precision set it to that factor.
	AmpDivisor uint64
	// Fee is the pool's swap fee. A zero denominator means basis points.
	Fee Rate
	// LPPrecision is the decimal precision of the pool's LP token.
	LPPrecision uint8
	// MinimumLiquidity is the initial deposit floor. Zero means
	// DefaultMinimumLiquidity.
	MinimumLiquidity uint64
}

// StableSwap is the share and swap math of an N-asset stableswap pool.
// Balances are normalized to the pool's greatest precision before the
// invariant is evaluated, and results are projected back with floor rounding.
type StableSwap struct {
	reserves   PoolReserves
	precisions []uint8
	greatest   uint8
	cfg        StableSwapConfig
}

func NewStableSwap(reserves PoolReserves, precisions PrecisionTable, cfg StableSwapConfig) (*StableSwap, error) {
	if len(reserves.Assets) < 2 {
		return nil, fmt.Errorf("%w: stableswap needs at least 2, got %d", ErrInvalidPoolSize, len(reserves.Assets))
	}
	if cfg.Amp == 0 {
		return nil, fmt.Errorf("%w: zero amplification", ErrInvalidSchedule)
	}
	if cfg.AmpDivisor == 0 {
		cfg.AmpDivisor = 1
	}
	if cfg.Fee.Den == 0 {
		cfg.Fee.Den = BpsDenominator
	}
	if cfg.Fee.Num >= cfg.Fee.Den {
		return nil, fmt.Errorf("%w: fee %d/%d", ErrInvalidAmount, cfg.Fee.Num, cfg.Fee.Den)
	}
	if cfg.MinimumLiquidity == 0 {
		cfg.MinimumLiquidity = DefaultMinimumLiquidity
	}
	prec, greatest, err := precisions.Lookup(reserves)
	if err != nil {
		return nil, err
	}
	return &StableSwap{
		reserves:   reserves,
		precisions: prec,
		greatest:   greatest,
		cfg:        cfg,
	}, nil
}

// GreatestPrecision is the precision the invariant is evaluated at.
func (s *StableSwap) GreatestPrecision() uint8 {
	return s.greatest
}

// ComputeD solves the stableswap invariant
//
//	A*n^n*sum(x) + D = A*D*n^n + D^(n+1) / (n^n * prod(x))
//
// for D by Newton's method. Iteration stops once successive values are within
// one unit, or after Iterations rounds. Any zero balance yields D = 0.
func ComputeD(amp uint64, xp []uint256.Int) (*uint256.Int, error) {
	ann, err := annOf(amp, 1, uint64(len(xp)))
	if err != nil {
		return nil, err
	}
	return computeD(ann, xp)
}

func computeD(ann annRatio, xp []uint256.Int) (*uint256.Int, error) {
	n := uint64(len(xp))
	if n < 2 {
		return nil, ErrInvalidPoolSize
	}

	sum := new(uint256.Int)
	for i := range xp {
		if xp[i].IsZero() {
			return new(uint256.Int), nil
		}
		var err error
		if sum, err = add(sum, &xp[i]); err != nil {
			return nil, err
		}
	}

	annSum, err := mulDiv(ann.num, sum, ann.den)
	if err != nil {
		return nil, err
	}
	annLessOne := new(uint256.Int).Sub(ann.num, ann.den)
	nInt := uint256.NewInt(n)

	d := new(uint256.Int).Set(sum)
	for round := 0; round < Iterations; round++ {
		dp := new(uint256.Int).Set(d)
		for i := range xp {
			denom, err := mul(&xp[i], nInt)
			if err != nil {
				return nil, err
			}
			if dp, err = mulDiv(dp, d, denom); err != nil {
				return nil, err
			}
		}
		prev := d

		// d = (ann*sum + dp*n) * d / ((ann-1)*d + (n+1)*dp), with ann = num/den
		dpn, err := mulUint64(dp, n)
		if err != nil {
			return nil, err
		}
		numer, err := add(annSum, dpn)
		if err != nil {
			return nil, err
		}
		left, err := mulDiv(annLessOne, d, ann.den)
		if err != nil {
			return nil, err
		}
		right, err := mulUint64(dp, n+1)
		if err != nil {
			return nil, err
		}
		denom, err := add(left, right)
		if err != nil {
			return nil, err
		}
		if d, err = mulDiv(numer, d, denom); err != nil {
			return nil, err
		}

		if !absDiff(d, prev).Gt(one) {
			break
		}
	}
	return d, nil
}

// ComputeY returns the balance of asset j that keeps the invariant d when
// every other balance is taken from xp, with xp[i] replaced by x.
func ComputeY(amp uint64, xp []uint256.Int, i, j int, x *uint256.Int, d *uint256.Int) (*uint256.Int, error) {
	ann, err := annOf(amp, 1, uint64(len(xp)))
	if err != nil {
		return nil, err
	}
	return computeY(ann, xp, i, j, x, d)
}

func computeY(ann annRatio, xp []uint256.Int, i, j int, x *uint256.Int, d *uint256.Int) (*uint256.Int, error) {
	n := uint64(len(xp))
	if i == j || i < 0 || j < 0 || i >= len(xp) || j >= len(xp) {
		return nil, ErrSameAsset
	}
	var err error
	nInt := uint256.NewInt(n)

	c := new(uint256.Int).Set(d)
	sum := new(uint256.Int)
	for k := range xp {
		if k == j {
			continue
		}
		xk := &xp[k]
		if k == i {
			xk = x
		}
		if xk.IsZero() {
			return nil, ErrDivideByZero
		}
		if sum, err = add(sum, xk); err != nil {
			return nil, err
		}
		denom, err := mul(xk, nInt)
		if err != nil {
			return nil, err
		}
		if c, err = mulDiv(c, d, denom); err != nil {
			return nil, err
		}
	}
	annN, err := mul(ann.num, nInt)
	if err != nil {
		return nil, err
	}
	dScaled, err := mul(d, ann.den)
	if err != nil {
		return nil, err
	}
	if c, err = mulDiv(c, dScaled, annN); err != nil {
		return nil, err
	}
	dOverAnn, err := mulDiv(d, ann.den, ann.num)
	if err != nil {
		return nil, err
	}
	b, err := add(sum, dOverAnn)
	if err != nil {
		return nil, err
	}

	// y = (y*y + c) / (2*y + b - d)
	y := new(uint256.Int).Set(d)
	for round := 0; round < Iterations; round++ {
		prev := y
		yy, err := mul(y, y)
		if err != nil {
			return nil, err
		}
		numer, err := add(yy, c)
		if err != nil {
			return nil, err
		}
		twoY, err := mulUint64(y, 2)
		if err != nil {
			return nil, err
		}
		denom, err := add(twoY, b)
		if err != nil {
			return nil, err
		}
		if denom, err = sub(denom, d); err != nil {
			return nil, err
		}
		if y, err = div(numer, denom); err != nil {
			return nil, err
		}
		if !absDiff(y, prev).Gt(one) {
			break
		}
	}
	return y, nil
}

// annRatio is A*n^n held as the fraction num/den.
type annRatio struct {
	num, den *uint256.Int
}

// annOf returns (amp/divisor) * n^n. The result must be at least one.
func annOf(amp, divisor, n uint64) (annRatio, error) {
	if amp == 0 {
		return annRatio{}, fmt.Errorf("%w: zero amplification", ErrInvalidSchedule)
	}
	num := uint256.NewInt(amp)
	var err error
	for k := uint64(0); k < n; k++ {
		if num, err = mulUint64(num, n); err != nil {
			return annRatio{}, err
		}
	}
	den := uint256.NewInt(divisor)
	if num.Lt(den) {
		return annRatio{}, fmt.Errorf("%w: amplification %d/%d below one", ErrInvalidSchedule, amp, divisor)
	}
	return annRatio{num: num, den: den}, nil
}

func (s *StableSwap) ann() (annRatio, error) {
	return annOf(s.cfg.Amp, s.cfg.AmpDivisor, uint64(len(s.reserves.Assets)))
}

func (s *StableSwap) computeD(xp []uint256.Int) (*uint256.Int, error) {
	ann, err := s.ann()
	if err != nil {
		return nil, err
	}
	return computeD(ann, xp)
}

// normalized returns the reserve balances at the greatest precision.
func (s *StableSwap) normalized() ([]uint256.Int, error) {
	return normalizeAll(s.reserves.Amounts(), s.precisions, s.greatest)
}

// D returns the invariant of the current reserves.
func (s *StableSwap) D() (*uint256.Int, error) {
	xp, err := s.normalized()
	if err != nil {
		return nil, err
	}
	return s.computeD(xp)
}

// SimulateProvide returns the shares minted for the deposits. The first
// deposit mints sqrt(prod(deposits)) scaled to the LP token precision;
// later deposits mint in proportion to the fee-adjusted growth of D.
func (s *StableSwap) SimulateProvide(deposits []Asset) (uint256.Int, error) {
	amounts, err := s.reserves.Align(deposits)
	if err != nil {
		return uint256.Int{}, err
	}
	allZero := true
	for i := range amounts {
		if !amounts[i].IsZero() {
			allZero = false
		}
	}
	if allZero {
		return uint256.Int{}, ErrInvalidZeroAmount
	}
	for i := range amounts {
		if amounts[i].IsZero() && s.reserves.Assets[i].Amount.IsZero() {
			return uint256.Int{}, fmt.Errorf("%w: %s", ErrInvalidProvideLPsWithSingleToken, s.reserves.Assets[i].ID)
		}
	}

	deposits256, err := normalizeAll(amounts, s.precisions, s.greatest)
	if err != nil {
		return uint256.Int{}, err
	}
	if s.reserves.TotalShares.IsZero() {
		return s.initialShares(deposits256)
	}

	old, err := s.normalized()
	if err != nil {
		return uint256.Int{}, err
	}
	next := make([]uint256.Int, len(old))
	for i := range old {
		v, err := add(&old[i], &deposits256[i])
		if err != nil {
			return uint256.Int{}, err
		}
		next[i] = *v
	}

	d0, err := s.computeD(old)
	if err != nil {
		return uint256.Int{}, err
	}
	if d0.IsZero() {
		return uint256.Int{}, fmt.Errorf("%w: pool invariant is zero", ErrDivideByZero)
	}
	d1, err := s.computeD(next)
	if err != nil {
		return uint256.Int{}, err
	}
	if !d1.Gt(d0) {
		return uint256.Int{}, ErrLiquidityAmountTooSmall
	}

	charged, err := s.chargeDeviationFee(old, next, d0, d1)
	if err != nil {
		return uint256.Int{}, err
	}
	d2, err := s.computeD(charged)
	if err != nil {
		return uint256.Int{}, err
	}
	if !d2.Gt(d0) {
		return uint256.Int{}, ErrLiquidityAmountTooSmall
	}

	growth := new(uint256.Int).Sub(d2, d0)
	shares, err := mulDiv(&s.reserves.TotalShares, growth, d0)
	if err != nil {
		return uint256.Int{}, err
	}
	if shares.IsZero() {
		return uint256.Int{}, ErrLiquidityAmountTooSmall
	}
	return narrow(shares)
}

func (s *StableSwap) initialShares(deposits []uint256.Int) (uint256.Int, error) {
	product := uint256.NewInt(1)
	for i := range deposits {
		var err error
		if product, err = mul(product, &deposits[i]); err != nil {
			return uint256.Int{}, err
		}
	}
	root := new(uint256.Int).Sqrt(product)
	shares, err := Normalize(root, s.greatest, s.cfg.LPPrecision)
	if err != nil {
		return uint256.Int{}, err
	}
	if !shares.Gt(uint256.NewInt(s.cfg.MinimumLiquidity)) {
		return uint256.Int{}, fmt.Errorf("%w: %s does not exceed minimum %d", ErrLiquidityAmountTooSmall, shares.Dec(), s.cfg.MinimumLiquidity)
	}
	return narrow(shares)
}

// SimulateWithdraw returns the assets paid out for burning shares in a
// balanced withdrawal.
func (s *StableSwap) SimulateWithdraw(shares *uint256.Int) ([]Asset, error) {
	return proportionalWithdraw(s.reserves, shares)
}

// SimulateWithdrawImbalanced returns the shares that must be burned to receive
// exactly the requested assets. The fee charged on the deviation from the
// ideal balances always shrinks the post-withdrawal balances, and the result
// is rounded up by one unit. A burn above provided fails with
// ErrInsufficientShares.
func (s *StableSwap) SimulateWithdrawImbalanced(withdrawals []Asset, provided *uint256.Int) (uint256.Int, error) {
	amounts, err := s.reserves.align(withdrawals, ErrInvalidOutAsset)
	if err != nil {
		return uint256.Int{}, err
	}
	allZero := true
	for i := range amounts {
		if amounts[i].Gt(&s.reserves.Assets[i].Amount) {
			return uint256.Int{}, fmt.Errorf("%w: %s", ErrWithdrawExceedsReserve, s.reserves.Assets[i].ID)
		}
		if !amounts[i].IsZero() {
			allZero = false
		}
	}
	if allZero {
		return uint256.Int{}, ErrInvalidZeroAmount
	}
	supply := &s.reserves.TotalShares
	if supply.IsZero() {
		return uint256.Int{}, fmt.Errorf("%w: pool has no shares", ErrInsufficientShares)
	}

	old, err := s.normalized()
	if err != nil {
		return uint256.Int{}, err
	}
	out, err := normalizeAll(amounts, s.precisions, s.greatest)
	if err != nil {
		return uint256.Int{}, err
	}
	next := make([]uint256.Int, len(old))
	for i := range old {
		v, err := sub(&old[i], &out[i])
		if err != nil {
			return uint256.Int{}, err
		}
		next[i] = *v
	}

	d0, err := s.computeD(old)
	if err != nil {
		return uint256.Int{}, err
	}
	if d0.IsZero() {
		return uint256.Int{}, fmt.Errorf("%w: pool invariant is zero", ErrDivideByZero)
	}
	d1, err := s.computeD(next)
	if err != nil {
		return uint256.Int{}, err
	}
	charged, err := s.chargeDeviationFee(old, next, d0, d1)
	if err != nil {
		return uint256.Int{}, err
	}
	d2, err := s.computeD(charged)
	if err != nil {
		return uint256.Int{}, err
	}
	// d2 can land a unit above d0 for dust withdrawals; the burn is then just
	// the rounding unit.
	loss := new(uint256.Int)
	if d0.Gt(d2) {
		loss.Sub(d0, d2)
	}
	burn, err := mulDiv(supply, loss, d0)
	if err != nil {
		return uint256.Int{}, err
	}
	if burn, err = add(burn, one); err != nil {
		return uint256.Int{}, err
	}
	if burn.Gt(provided) {
		return uint256.Int{}, fmt.Errorf("%w: need %s, have %s", ErrInsufficientShares, burn.Dec(), provided.Dec())
	}
	return narrow(burn)
}

// chargeDeviationFee subtracts from every post-operation balance a fee
// proportional to its distance from the ideal balance d1*old/d0. The fee rate
// is fee*n/(4*(n-1)).
func (s *StableSwap) chargeDeviationFee(old, next []uint256.Int, d0, d1 *uint256.Int) ([]uint256.Int, error) {
	n := uint64(len(old))
	rateNum, err := mulUint64(uint256.NewInt(s.cfg.Fee.Num), n)
	if err != nil {
		return nil, err
	}
	rateDen, err := mulUint64(uint256.NewInt(s.cfg.Fee.Den), 4*(n-1))
	if err != nil {
		return nil, err
	}

	charged := make([]uint256.Int, len(next))
	for i := range next {
		ideal, err := mulDiv(d1, &old[i], d0)
		if err != nil {
			return nil, err
		}
		diff := absDiff(ideal, &next[i])
		fee, err := mulDiv(diff, rateNum, rateDen)
		if err != nil {
			return nil, err
		}
		v, err := sub(&next[i], fee)
		if err != nil {
			return nil, fmt.Errorf("%w: fee exceeds remaining %s", ErrWithdrawExceedsReserve, s.reserves.Assets[i].ID)
		}
		charged[i] = *v
	}
	return charged, nil
}

// SimulateSwap returns the amount of ask received for offer, after the swap
// fee. The fee is taken from the output.
func (s *StableSwap) SimulateSwap(offer Asset, ask AssetIdentity) (uint256.Int, error) {
	if offer.ID == ask {
		return uint256.Int{}, ErrSameAsset
	}
	if offer.Amount.IsZero() {
		return uint256.Int{}, ErrInvalidZeroAmount
	}
	i, ok := s.reserves.Index(offer.ID)
	if !ok {
		return uint256.Int{}, fmt.Errorf("%w: %s", ErrInvalidInAsset, offer.ID)
	}
	j, ok := s.reserves.Index(ask)
	if !ok {
		return uint256.Int{}, fmt.Errorf("%w: %s", ErrInvalidOutAsset, ask)
	}

	xp, err := s.normalized()
	if err != nil {
		return uint256.Int{}, err
	}
	d, err := s.computeD(xp)
	if err != nil {
		return uint256.Int{}, err
	}
	if d.IsZero() {
		return uint256.Int{}, fmt.Errorf("%w: pool invariant is zero", ErrDivideByZero)
	}
	dx, err := Normalize(&offer.Amount, s.precisions[i], s.greatest)
	if err != nil {
		return uint256.Int{}, err
	}
	x, err := add(&xp[i], dx)
	if err != nil {
		return uint256.Int{}, err
	}
	ann, err := s.ann()
	if err != nil {
		return uint256.Int{}, err
	}
	y, err := computeY(ann, xp, i, j, x, d)
	if err != nil {
		return uint256.Int{}, err
	}

	// one unit is kept by the pool against rounding in y
	dy, err := sub(&xp[j], y)
	if err != nil || !dy.Gt(one) {
		return uint256.Int{}, ErrLiquidityAmountTooSmall
	}
	dy.Sub(dy, one)
	fee, err := mulDiv(dy, uint256.NewInt(s.cfg.Fee.Num), uint256.NewInt(s.cfg.Fee.Den))
	if err != nil {
		return uint256.Int{}, err
	}
	dy.Sub(dy, fee)

	out, err := Normalize(dy, s.greatest, s.precisions[j])
	if err != nil {
		return uint256.Int{}, err
	}
	return narrow(out)
}

// VirtualPrice returns D per share, scaled to 18 decimals.
func (s *StableSwap) VirtualPrice() (uint256.Int, error) {
	if s.reserves.TotalShares.IsZero() {
		return uint256.Int{}, nil
	}
	d, err := s.D()
	if err != nil {
		return uint256.Int{}, err
	}
	dLP, err := Normalize(d, s.greatest, s.cfg.LPPrecision)
	if err != nil {
		return uint256.Int{}, err
	}
	scale, err := pow10(18)
	if err != nil {
		return uint256.Int{}, err
	}
	price, err := mulDiv(dLP, scale, &s.reserves.TotalShares)
	if err != nil {
		return uint256.Int{}, err
	}
	return *price, nil
}
