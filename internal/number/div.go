package number

import "github.com/blinksh/bc/internal/bcerr"

// Div returns a/b rounded down to `scale` fractional digits. The dividend
// is conceptually scaled by extending it with `scale` trailing zeros and
// the divisor's radix is aligned against it (spec §4.A); concretely this
// means shifting whichever of the two raw digit arrays is needed so a
// plain integer long division produces the right number of digits.
func Div(ix Interrupter, a, b Number, scale int) (Number, *bcerr.Error) {
	if b.IsZero() {
		return Zero, bcerr.ErrDivideByZero
	}
	if a.IsZero() {
		return Zero, nil
	}
	shift := scale + b.rdx - a.rdx
	var num, den []byte
	if shift >= 0 {
		num = shiftRaw(a.digits, shift)
		den = b.digits
	} else {
		num = a.digits
		den = shiftRaw(b.digits, -shift)
	}
	q, _, err := longDivRaw(ix, num, den)
	if err != nil {
		return Number{}, err
	}
	digits := padHigh(q, scale)
	r := Number{digits: digits, rdx: scale, neg: a.neg != b.neg}
	return r.trim(), nil
}

// Mod returns a - (a/b)*b, computed at scale max(scale+rdx_b, rdx_a), with
// the result's sign forced to follow the dividend.
func Mod(ix Interrupter, a, b Number, scale int) (Number, *bcerr.Error) {
	if b.IsZero() {
		return Zero, bcerr.ErrDivideByZero
	}
	ms := maxInt(scale+b.rdx, a.rdx)
	q, err := Div(ix, a, b, ms)
	if err != nil {
		return Number{}, err
	}
	prod, err := Mul(ix, q, b, ms)
	if err != nil {
		return Number{}, err
	}
	r, err := Sub(ix, a, prod)
	if err != nil {
		return Number{}, err
	}
	r.neg = !r.IsZero() && a.neg
	return r.trim(), nil
}

// DivMod computes quotient and remainder in one pass, backing DC's DIVMOD
// opcode ("pops two, pushes quotient then remainder").
func DivMod(ix Interrupter, a, b Number, scale int) (q, r Number, err *bcerr.Error) {
	q, err = Div(ix, a, b, scale)
	if err != nil {
		return Number{}, Number{}, err
	}
	r, err = Mod(ix, a, b, scale)
	if err != nil {
		return Number{}, Number{}, err
	}
	return q, r, nil
}

// longDivRaw performs unsigned integer long division over little-endian
// digit arrays, one output digit per numerator digit, by trial subtraction:
// at each position the quotient digit is the largest d in 0..9 such that
// subtracting the divisor d times from the running remainder window stays
// non-negative.
func longDivRaw(ix Interrupter, num, den []byte) (quotient, remainder []byte, err *bcerr.Error) {
	den = normalizeTrim(den)
	if len(den) == 0 {
		return nil, nil, bcerr.ErrDivideByZero
	}
	num = normalizeTrim(num)
	if len(num) == 0 {
		return nil, nil, nil
	}
	quotientMSDFirst := make([]byte, 0, len(num))
	window := []byte{}
	for i := len(num) - 1; i >= 0; i-- {
		if err := checkInterrupt(ix); err != nil {
			return nil, nil, err
		}
		window = shiftRaw(window, 1)
		if len(window) == 0 {
			window = []byte{num[i]}
		} else {
			window[0] = num[i]
		}
		var q byte
		for q < 9 && cmpRaw(window, den) >= 0 {
			window = subRaw(window, den)
			q++
		}
		quotientMSDFirst = append(quotientMSDFirst, q)
	}
	quotient = make([]byte, len(quotientMSDFirst))
	for i, d := range quotientMSDFirst {
		quotient[len(quotientMSDFirst)-1-i] = d
	}
	return normalizeTrim(quotient), normalizeTrim(window), nil
}

// padHigh extends a digit array with high-order (trailing, in our
// little-endian layout) zero digits until it has at least n digits, which
// is required whenever a result's rdx would otherwise exceed its length.
func padHigh(a []byte, n int) []byte {
	if len(a) >= n {
		cp := make([]byte, len(a))
		copy(cp, a)
		return cp
	}
	out := make([]byte, n)
	copy(out, a)
	return out
}
