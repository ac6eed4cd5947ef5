package number

import "github.com/blinksh/bc/internal/bcerr"

// Cmp returns -1, 0 or 1 as a < b, a == b or a > b. It polls ix between
// digit comparisons so a compare of two huge numbers stays interruptible.
func Cmp(ix Interrupter, a, b Number) (int, *bcerr.Error) {
	if a.IsZero() && b.IsZero() {
		return 0, nil
	}
	if a.neg != b.neg {
		if a.neg {
			return -1, nil
		}
		return 1, nil
	}
	c, err := cmpMagnitude(ix, a, b)
	if err != nil {
		return 0, err
	}
	if a.neg {
		c = -c
	}
	return c, nil
}

// cmpMagnitude compares |a| and |b|, ignoring sign.
func cmpMagnitude(ix Interrupter, a, b Number) (int, *bcerr.Error) {
	ai, bi := a.intDigits(), b.intDigits()
	if ai != bi {
		if ai < bi {
			return -1, nil
		}
		return 1, nil
	}
	hi := a.rdx
	if b.rdx > hi {
		hi = b.rdx
	}
	top := ai + hi
	for i := top - 1; i >= 0; i-- {
		if err := checkInterrupt(ix); err != nil {
			return 0, err
		}
		da := digitAtScaled(a, hi, i)
		db := digitAtScaled(b, hi, i)
		if da != db {
			if da < db {
				return -1, nil
			}
			return 1, nil
		}
	}
	return 0, nil
}

// digitAtScaled returns the digit of n at absolute position i once n's
// fractional part has been conceptually padded out to `scale` digits, so
// that two numbers with differing rdx can be compared digit-by-digit.
func digitAtScaled(n Number, scale, i int) byte {
	shift := scale - n.rdx
	j := i - shift
	return n.digitAt(j)
}

// IsIntValue reports whether n is exactly equal to an integer (it has no
// fractional digits).
func (n Number) IsIntValue() bool {
	return n.rdx == 0
}
