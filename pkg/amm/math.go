package amm

import "github.com/holiman/uint256"

// AmountBits is the width of a pool amount. Intermediates are 256 bits wide and
// only final results are narrowed back.
const AmountBits = 128

// Overflow-checked helpers. Each returns a fresh value and never wraps.

func add(x, y *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).AddOverflow(x, y)
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	return z, nil
}

func sub(x, y *uint256.Int) (*uint256.Int, error) {
	z, underflow := new(uint256.Int).SubOverflow(x, y)
	if underflow {
		return nil, ErrArithmeticOverflow
	}
	return z, nil
}

func mul(x, y *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	return z, nil
}

func div(x, y *uint256.Int) (*uint256.Int, error) {
	if y.IsZero() {
		return nil, ErrDivideByZero
	}
	return new(uint256.Int).Div(x, y), nil
}

// mulDiv computes floor(x*y/d) with a 512-bit intermediate product.
func mulDiv(x, y, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, ErrDivideByZero
	}
	z, overflow := new(uint256.Int).MulDivOverflow(x, y, d)
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	return z, nil
}

func mulUint64(x *uint256.Int, y uint64) (*uint256.Int, error) {
	return mul(x, uint256.NewInt(y))
}

// absDiff returns |x - y|.
func absDiff(x, y *uint256.Int) *uint256.Int {
	if x.Lt(y) {
		return new(uint256.Int).Sub(y, x)
	}
	return new(uint256.Int).Sub(x, y)
}

// narrow checks that a result fits a pool amount.
func narrow(x *uint256.Int) (uint256.Int, error) {
	if x.BitLen() > AmountBits {
		return uint256.Int{}, ErrArithmeticOverflow
	}
	return *x, nil
}

// pow10 returns 10^exp or ErrArithmeticOverflow past 10^77.
func pow10(exp uint8) (*uint256.Int, error) {
	z := uint256.NewInt(1)
	ten := uint256.NewInt(10)
	for i := uint8(0); i < exp; i++ {
		if _, overflow := z.MulOverflow(z, ten); overflow {
			return nil, ErrArithmeticOverflow
		}
	}
	return z, nil
}

func minInt(x, y *uint256.Int) *uint256.Int {
	if x.Lt(y) {
		return x
	}
	return y
}
