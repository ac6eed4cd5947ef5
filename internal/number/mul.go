package number

import "github.com/blinksh/bc/internal/bcerr"

// karatsubaThreshold (K in the spec) is the digit-length below which plain
// schoolbook multiplication beats Karatsuba's overhead. 64 sits inside the
// spec's suggested 32..128 range; Open Question (a) leaves the exact value
// implementation-defined.
const karatsubaThreshold = 64

// Mul returns a*b truncated/extended to the target scale: the raw product
// of the two digit arrays (ignoring their decimal points, i.e. treating
// both as plain integers — which is what "align to a common integer radix"
// amounts to once the arrays are stored least-significant-digit-first) has
// rdx = a.rdx + b.rdx; it is then adjusted to min(a.rdx+b.rdx,
// max(scale, a.rdx, b.rdx)).
func Mul(ix Interrupter, a, b Number, scale int) (Number, *bcerr.Error) {
	if a.IsZero() || b.IsZero() {
		return Zero, nil
	}
	raw, err := mulRaw(ix, a.digits, b.digits)
	if err != nil {
		return Number{}, err
	}
	r := Number{digits: raw, rdx: a.rdx + b.rdx, neg: a.neg != b.neg}
	target := a.rdx + b.rdx
	if cap := maxInt(scale, maxInt(a.rdx, b.rdx)); cap < target {
		target = cap
	}
	if r.rdx > target {
		r = r.Truncate(r.rdx - target)
	} else if r.rdx < target {
		r = r.Extend(target)
	}
	return r.trim(), nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// mulRaw multiplies two little-endian, unsigned digit arrays, dispatching
// to Karatsuba above the threshold.
func mulRaw(ix Interrupter, a, b []byte) ([]byte, *bcerr.Error) {
	if len(a) < karatsubaThreshold && len(b) < karatsubaThreshold {
		return mulSchoolbook(ix, a, b)
	}
	return mulKaratsuba(ix, a, b)
}

// mulSchoolbook is grade-school O(n*m) multiplication on digit arrays.
func mulSchoolbook(ix Interrupter, a, b []byte) ([]byte, *bcerr.Error) {
	if len(a) == 0 || len(b) == 0 {
		return nil, nil
	}
	acc := make([]int, len(a)+len(b))
	for i, da := range a {
		if err := checkInterrupt(ix); err != nil {
			return nil, err
		}
		if da == 0 {
			continue
		}
		for j, db := range b {
			acc[i+j] += int(da) * int(db)
		}
	}
	return normalizeCarries(acc), nil
}

// mulKaratsuba splits each operand at ceil(max(len(a),len(b))/2) into
// (hi,lo) pairs and combines z2=hi*hi, z0=lo*lo, z1=(hi+lo)(hi+lo)-z2-z0.
func mulKaratsuba(ix Interrupter, a, b []byte) ([]byte, *bcerr.Error) {
	if err := checkInterrupt(ix); err != nil {
		return nil, err
	}
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	half := (n + 1) / 2

	loA, hiA := splitAt(a, half)
	loB, hiB := splitAt(b, half)

	z2, err := mulRaw(ix, hiA, hiB)
	if err != nil {
		return nil, err
	}
	z0, err := mulRaw(ix, loA, loB)
	if err != nil {
		return nil, err
	}
	sumA := addRaw(hiA, loA)
	sumB := addRaw(hiB, loB)
	cross, err := mulRaw(ix, sumA, sumB)
	if err != nil {
		return nil, err
	}
	z1 := subRaw(subRaw(cross, z2), z0)

	result := addRaw(addRaw(shiftRaw(z2, 2*half), shiftRaw(z1, half)), z0)
	return result, nil
}

// splitAt splits a little-endian digit array into (lo, hi) at digit
// position k: lo holds positions [0,k), hi holds positions [k,len).
func splitAt(a []byte, k int) (lo, hi []byte) {
	if k >= len(a) {
		return append([]byte(nil), a...), nil
	}
	lo = append([]byte(nil), a[:k]...)
	hi = append([]byte(nil), a[k:]...)
	return lo, hi
}

// shiftRaw multiplies an unsigned digit array by 10^k by prepending k zero
// (low-order) digits.
func shiftRaw(a []byte, k int) []byte {
	if len(a) == 0 || k == 0 {
		return a
	}
	out := make([]byte, len(a)+k)
	copy(out[k:], a)
	return out
}

// addRaw adds two unsigned little-endian digit arrays.
func addRaw(a, b []byte) []byte {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]byte, n+1)
	var carry byte
	for i := 0; i < n; i++ {
		var da, db byte
		if i < len(a) {
			da = a[i]
		}
		if i < len(b) {
			db = b[i]
		}
		s := da + db + carry
		if s >= 10 {
			s -= 10
			carry = 1
		} else {
			carry = 0
		}
		out[i] = s
	}
	out[n] = carry
	return normalizeTrim(out)
}

// subRaw subtracts b from a, assuming a >= b as unsigned integers.
func subRaw(a, b []byte) []byte {
	out := make([]byte, len(a))
	var borrow int8
	for i := range a {
		var db byte
		if i < len(b) {
			db = b[i]
		}
		d := int8(a[i]) - int8(db) - borrow
		if d < 0 {
			d += 10
			borrow = 1
		} else {
			borrow = 0
		}
		out[i] = byte(d)
	}
	return normalizeTrim(out)
}

// normalizeCarries folds a per-position accumulator (values that may
// exceed 9) down into a clean digit array, propagating carries upward.
func normalizeCarries(acc []int) []byte {
	out := make([]byte, len(acc))
	carry := 0
	for i := range acc {
		v := acc[i] + carry
		out[i] = byte(v % 10)
		carry = v / 10
	}
	for carry > 0 {
		out = append(out, byte(carry%10))
		carry /= 10
	}
	return normalizeTrim(out)
}

// normalizeTrim drops high-order zero digits from an unsigned digit array.
func normalizeTrim(a []byte) []byte {
	n := len(a)
	for n > 0 && a[n-1] == 0 {
		n--
	}
	return a[:n]
}

// cmpRaw compares two unsigned little-endian digit arrays.
func cmpRaw(a, b []byte) int {
	a, b = normalizeTrim(a), normalizeTrim(b)
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	for i := len(a) - 1; i >= 0; i-- {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}
