package number

import (
	"strings"

	"github.com/blinksh/bc/internal/bcerr"
)

// literalFracPrecision bounds how many decimal digits a non-terminating
// base conversion (e.g. base 3's 0.1) is expanded to. Bases that are
// products of 2s and 5s (any divisor of 10) terminate exactly well before
// this; it exists only so those that don't still produce something finite.
const literalFracPrecision = 300

// Parse converts source text (as read by the lexer: digits 0-9A-F and at
// most one '.', with an optional leading '-') into a Number, interpreting
// it in the given input base. Base 10 is scanned directly into the digit
// array; other bases fold digits via n = n*base + d for the integer part
// and frac = (sum d_i * base^(k-i)) / base^k for the fraction, per spec.
func Parse(text string, ibase int) (Number, *bcerr.Error) {
	s := text
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	if s == "" {
		return Number{}, bcerr.ErrBadString
	}
	intPart, fracPart, ok := splitOnDot(s)
	if !ok {
		return Number{}, bcerr.ErrBadString
	}
	if ibase == 10 {
		return parseBase10(intPart, fracPart, neg)
	}
	return parseOtherBase(intPart, fracPart, ibase, neg)
}

func splitOnDot(s string) (intPart, fracPart string, ok bool) {
	i := strings.IndexByte(s, '.')
	if i < 0 {
		return s, "", true
	}
	if strings.IndexByte(s[i+1:], '.') >= 0 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}

func parseBase10(intPart, fracPart string, neg bool) (Number, *bcerr.Error) {
	combined := intPart + fracPart
	if combined == "" {
		return Number{}, bcerr.ErrBadString
	}
	digits := make([]byte, len(combined))
	for i := 0; i < len(combined); i++ {
		d, ok := digitValue(combined[len(combined)-1-i])
		if !ok || d > 9 {
			return Number{}, bcerr.ErrBadString
		}
		digits[i] = d
	}
	n := Number{digits: digits, rdx: len(fracPart), neg: neg}
	return n.trim(), nil
}

func parseOtherBase(intPart, fracPart string, ibase int, neg bool) (Number, *bcerr.Error) {
	if ibase < 2 || ibase > 36 {
		return Number{}, bcerr.New(bcerr.Exec, "bad ibase %d", ibase)
	}
	baseNum := FromUint64(uint64(ibase))
	n := Zero
	for i := 0; i < len(intPart); i++ {
		d, ok := digitValue(intPart[i])
		if !ok || int(d) >= ibase {
			return Number{}, bcerr.ErrBadString
		}
		prod, err := Mul(nil, n, baseNum, 0)
		if err != nil {
			return Number{}, err
		}
		n, err = Add(nil, prod, FromUint64(uint64(d)))
		if err != nil {
			return Number{}, err
		}
	}
	if len(fracPart) > 0 {
		fracInt := Zero
		for i := 0; i < len(fracPart); i++ {
			d, ok := digitValue(fracPart[i])
			if !ok || int(d) >= ibase {
				return Number{}, bcerr.ErrBadString
			}
			prod, err := Mul(nil, fracInt, baseNum, 0)
			if err != nil {
				return Number{}, err
			}
			fracInt, err = Add(nil, prod, FromUint64(uint64(d)))
			if err != nil {
				return Number{}, err
			}
		}
		denom, err := Pow(nil, baseNum, FromUint64(uint64(len(fracPart))), 0)
		if err != nil {
			return Number{}, err
		}
		fracVal, err := Div(nil, fracInt, denom, literalFracPrecision)
		if err != nil {
			return Number{}, err
		}
		n, err = Add(nil, n, fracVal)
		if err != nil {
			return Number{}, err
		}
	}
	n.neg = neg && !n.IsZero()
	return n.trim(), nil
}

// digitValue maps an ASCII digit or A-Z letter to its numeric value.
func digitValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'A' && c <= 'Z':
		return c - 'A' + 10, true
	case c >= 'a' && c <= 'z':
		return c - 'a' + 10, true
	default:
		return 0, false
	}
}
