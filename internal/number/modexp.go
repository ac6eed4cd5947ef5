package number

import "github.com/blinksh/bc/internal/bcerr"

// ModExp computes a^b mod c for an integer, non-negative exponent b,
// reducing modulo c after every squaring so the intermediate values never
// grow to the size of the full a^b. Backs DC's MODEXP opcode, supplemented
// from the historical bc_num_modexp (original_source/src/num.c).
func ModExp(ix Interrupter, a, b, c Number) (Number, *bcerr.Error) {
	if !b.IsInt() {
		return Number{}, bcerr.ErrNonInteger
	}
	if b.Sign() {
		return Number{}, bcerr.New(bcerr.Math, "negative exponent in modexp")
	}
	if c.IsZero() {
		return Number{}, bcerr.ErrDivideByZero
	}
	e, ok := b.ToUint64()
	if !ok {
		return Number{}, bcerr.ErrOverflow
	}

	base, err := Mod(ix, a, c, 0)
	if err != nil {
		return Number{}, err
	}
	result := One
	for e > 0 {
		if err := checkInterrupt(ix); err != nil {
			return Number{}, err
		}
		if e&1 == 1 {
			p, err := Mul(ix, result, base, 0)
			if err != nil {
				return Number{}, err
			}
			result, err = Mod(ix, p, c, 0)
			if err != nil {
				return Number{}, err
			}
		}
		e >>= 1
		if e > 0 {
			p, err := Mul(ix, base, base, 0)
			if err != nil {
				return Number{}, err
			}
			base, err = Mod(ix, p, c, 0)
			if err != nil {
				return Number{}, err
			}
		}
	}
	return result, nil
}
