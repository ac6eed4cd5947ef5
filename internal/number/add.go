package number

import "github.com/blinksh/bc/internal/bcerr"

// Add returns a+b. Addition dispatches on matching signs: equal signs add
// magnitudes and keep the sign; differing signs subtract magnitudes and
// take the sign of the larger magnitude.
func Add(ix Interrupter, a, b Number) (Number, *bcerr.Error) {
	if a.neg == b.neg {
		r, err := magAdd(ix, a, b)
		if err != nil {
			return Number{}, err
		}
		r.neg = a.neg
		return r.trim(), nil
	}
	c, err := cmpMagnitude(ix, a, b)
	if err != nil {
		return Number{}, err
	}
	switch {
	case c == 0:
		return Zero, nil
	case c > 0:
		r, err := magSub(ix, a, b)
		if err != nil {
			return Number{}, err
		}
		r.neg = a.neg
		return r.trim(), nil
	default:
		r, err := magSub(ix, b, a)
		if err != nil {
			return Number{}, err
		}
		r.neg = b.neg
		return r.trim(), nil
	}
}

// Sub returns a-b. Implemented, per spec, by flipping b's sign and
// re-dispatching through Add.
func Sub(ix Interrupter, a, b Number) (Number, *bcerr.Error) {
	return Add(ix, a, b.Neg())
}

// magAdd adds |a| and |b|, ignoring sign.
func magAdd(ix Interrupter, a, b Number) (Number, *bcerr.Error) {
	rdx := a.rdx
	if b.rdx > rdx {
		rdx = b.rdx
	}
	intLen := a.intDigits()
	if bi := b.intDigits(); bi > intLen {
		intLen = bi
	}
	total := intLen + rdx
	digits := make([]byte, total+1)
	var carry byte
	for i := 0; i < total; i++ {
		if err := checkInterrupt(ix); err != nil {
			return Number{}, err
		}
		da := digitAtScaled(a, rdx, i)
		db := digitAtScaled(b, rdx, i)
		sum := da + db + carry
		if sum >= 10 {
			sum -= 10
			carry = 1
		} else {
			carry = 0
		}
		digits[i] = sum
	}
	digits[total] = carry
	return Number{digits: digits, rdx: rdx}, nil
}

// magSub subtracts |b| from |a|, assuming |a| >= |b|.
func magSub(ix Interrupter, a, b Number) (Number, *bcerr.Error) {
	rdx := a.rdx
	if b.rdx > rdx {
		rdx = b.rdx
	}
	intLen := a.intDigits()
	if bi := b.intDigits(); bi > intLen {
		intLen = bi
	}
	total := intLen + rdx
	digits := make([]byte, total)
	var borrow int8
	for i := 0; i < total; i++ {
		if err := checkInterrupt(ix); err != nil {
			return Number{}, err
		}
		da := int8(digitAtScaled(a, rdx, i))
		db := int8(digitAtScaled(b, rdx, i))
		d := da - db - borrow
		if d < 0 {
			d += 10
			borrow = 1
		} else {
			borrow = 0
		}
		digits[i] = byte(d)
	}
	return Number{digits: digits, rdx: rdx}, nil
}
