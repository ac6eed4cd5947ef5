// Package number implements the arbitrary-precision decimal kernel: a
// digit-array Number and the arithmetic, comparison, shift and
// base-conversion operations the bytecode VM drives it with.
//
// This is deliberately not a wrapper around math/big: the spec calls for a
// hand-rolled digit array supporting Karatsuba multiplication, long
// division and Newton's-method square root, grounded on the historical
// bc/dc kernel (_examples/original_source/src/num.c). The package is laid
// out the way robpike.io/ivy/value lays out its numeric kinds: one small
// file per operation, value-receiver methods. Errors are *bcerr.Error
// values built with bcerr.New.
package number

import "github.com/blinksh/bc/internal/bcerr"

// Number is a signed, arbitrary-precision decimal. digits holds one decimal
// digit (0-9) per byte, least-significant digit at index 0. rdx is the
// count of digits, from the low end, that lie to the right of the decimal
// point. A zero-length Number is canonical zero and its sign is always
// false.
type Number struct {
	digits []byte
	rdx    int
	neg    bool
}

// Interrupter is polled by long-running loops (comparison, add, Karatsuba,
// division, sqrt iteration, pow). It is satisfied by *config.Config.
type Interrupter interface {
	Interrupted() bool
}

// Zero is the canonical zero value; its zero value already satisfies the
// invariants, so this exists only for readability at call sites.
var Zero = Number{}

// One is the canonical integer 1.
var One = Number{digits: []byte{1}}

// trim drops high-end zero digits down to the point required to keep
// rdx <= len(digits), and canonicalizes zero's sign.
func (n Number) trim() Number {
	for len(n.digits) > n.rdx && n.digits[len(n.digits)-1] == 0 {
		n.digits = n.digits[:len(n.digits)-1]
	}
	if len(n.digits) == 0 {
		n.neg = false
		n.rdx = 0
	}
	return n
}

// clone returns a deep copy so callers can mutate the digit slice freely.
func (n Number) clone() Number {
	d := make([]byte, len(n.digits))
	copy(d, n.digits)
	return Number{digits: d, rdx: n.rdx, neg: n.neg}
}

// Len returns the number of meaningful digits (the BC_DIM sense, not string length).
func (n Number) Len() int { return len(n.digits) }

// Scale returns rdx, the number of fractional digits.
func (n Number) Scale() int { return n.rdx }

// Sign reports whether n is negative. Zero is never negative.
func (n Number) Sign() bool { return n.neg }

// IsZero reports whether n is canonical zero.
func (n Number) IsZero() bool { return len(n.digits) == 0 }

// IsInt reports whether n has no fractional digits.
func (n Number) IsInt() bool { return n.rdx == 0 }

// Neg returns -n.
func (n Number) Neg() Number {
	if n.IsZero() {
		return n
	}
	r := n.clone()
	r.neg = !r.neg
	return r
}

// Abs returns |n|.
func (n Number) Abs() Number {
	r := n.clone()
	r.neg = false
	return r
}

// digitAt returns the digit at position i (0 = least significant),
// treating positions beyond the stored digits as 0.
func (n Number) digitAt(i int) byte {
	if i < 0 || i >= len(n.digits) {
		return 0
	}
	return n.digits[i]
}

// intDigits returns the count of digits to the left of the point.
func (n Number) intDigits() int {
	id := len(n.digits) - n.rdx
	if id < 0 {
		id = 0
	}
	return id
}

// checkInterrupt is called between iterations of every long-running loop
// in this package. ix may be nil, in which case it is never interrupted.
func checkInterrupt(ix Interrupter) *bcerr.Error {
	if ix != nil && ix.Interrupted() {
		return bcerr.Interrupted
	}
	return nil
}
