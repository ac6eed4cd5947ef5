package number

import "github.com/blinksh/bc/internal/bcerr"

const sqrtMaxIterations = 1000

// Sqrt computes sqrt(a) to `scale` fractional digits via Newton's method,
// x <- (x + a/x)/2, at working precision scale+2. It starts from a
// digit-length-based initial guess and bumps working precision if the
// same (cmp, stability) pair repeats, guarding against oscillation near
// the terminating precision.
func Sqrt(ix Interrupter, a Number, scale int) (Number, *bcerr.Error) {
	if a.Sign() {
		return Number{}, bcerr.ErrNegativeSqrt
	}
	if a.IsZero() {
		return Zero, nil
	}
	c, err := Cmp(ix, a, One)
	if err != nil {
		return Number{}, err
	}
	if c == 0 {
		return One.Extend(scale), nil
	}

	working := scale + 2
	x := initialGuess(a)

	type signature struct {
		cmp int
		msd int
	}
	var lastSig signature
	oscillation := 0

	for iter := 0; iter < sqrtMaxIterations; iter++ {
		if err := checkInterrupt(ix); err != nil {
			return Number{}, err
		}
		q, err := Div(ix, a, x, working)
		if err != nil {
			return Number{}, err
		}
		sum, err := Add(ix, x, q)
		if err != nil {
			return Number{}, err
		}
		next, err := Div(ix, sum, FromUint64(2), working)
		if err != nil {
			return Number{}, err
		}
		diff, err := Sub(ix, next, x)
		if err != nil {
			return Number{}, err
		}
		diff = diff.Abs()

		var msd int
		if diff.IsZero() {
			msd = -(scale + 1000)
		} else {
			msd = len(diff.digits) - 1 - diff.rdx
		}
		cmpv, err := Cmp(ix, next, x)
		if err != nil {
			return Number{}, err
		}
		sig := signature{cmpv, msd}
		if sig == lastSig {
			oscillation++
			if oscillation > 4 {
				working += 2
				oscillation = 0
			}
		} else {
			oscillation = 0
		}
		lastSig = sig
		x = next
		if msd <= -(scale + 1) {
			break
		}
	}

	if x.rdx > scale {
		x = x.Truncate(x.rdx - scale)
	} else if x.rdx < scale {
		x = x.Extend(scale)
	}
	return x.trim(), nil
}

// initialGuess picks a first Newton iterate with roughly half as many
// integer digits as a, scaled by 2 or 6 depending on parity — cheap and
// good enough that a handful of iterations converge.
func initialGuess(a Number) Number {
	intLen := a.intDigits()
	if intLen == 0 {
		return One
	}
	half := intLen / 2
	if intLen%2 == 1 {
		return FromUint64(2).ShiftLeft(half)
	}
	if half == 0 {
		return FromUint64(6)
	}
	return FromUint64(6).ShiftLeft(half - 1)
}
