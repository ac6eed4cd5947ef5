package number

import "github.com/blinksh/bc/internal/bcerr"

// Pow returns a^b at the given scale. b must be an integer; a negative
// exponent inverts the base first (1/a^|b|).
func Pow(ix Interrupter, a, b Number, scale int) (Number, *bcerr.Error) {
	if !b.IsInt() {
		return Number{}, bcerr.ErrNonInteger
	}
	e, ok := b.Abs().ToUint64()
	if !ok {
		return Number{}, bcerr.ErrOverflow
	}
	if e == 0 {
		return One, nil
	}
	if e == 1 {
		if b.Sign() {
			return Div(ix, One, a, scale)
		}
		return a, nil
	}

	cap := powScaleCap(a.rdx, e, scale)
	result := One
	base := a
	for e > 0 {
		if err := checkInterrupt(ix); err != nil {
			return Number{}, err
		}
		if e&1 == 1 {
			var err *bcerr.Error
			result, err = Mul(ix, result, base, cap)
			if err != nil {
				return Number{}, err
			}
		}
		e >>= 1
		if e > 0 {
			var err *bcerr.Error
			base, err = Mul(ix, base, base, cap)
			if err != nil {
				return Number{}, err
			}
		}
	}
	if b.Sign() {
		return Div(ix, One, result, scale)
	}
	if result.rdx > cap {
		result = result.Truncate(result.rdx - cap)
	}
	return result, nil
}

// powScaleCap implements "the result scale is capped at
// min(rdx_a*e, max(scale, rdx_a))" for e > 0.
func powScaleCap(rdxA int, e uint64, scale int) int {
	cap := rdxA * int(e)
	m := scale
	if rdxA > m {
		m = rdxA
	}
	if cap > m {
		cap = m
	}
	return cap
}
