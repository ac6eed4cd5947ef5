package number

import (
	"strconv"
	"strings"

	"github.com/blinksh/bc/internal/bcerr"
)

// DefaultLineLength is the column width numeric output wraps at by
// emitting "\\\n" (Open Question (c): a configuration constant, not part
// of the language contract).
const DefaultLineLength = 70

// IntPart returns n with its fractional digits dropped.
func (n Number) IntPart() Number {
	if n.rdx == 0 {
		return n
	}
	r := n.clone()
	r.digits = r.digits[n.rdx:]
	r.rdx = 0
	return r.trim()
}

// FracPart returns n's fractional digits as a value in [0,1).
func (n Number) FracPart() Number {
	if n.rdx == 0 {
		return Zero
	}
	r := n.clone()
	if len(r.digits) > r.rdx {
		r.digits = r.digits[:r.rdx]
	}
	return r.trim()
}

// Format renders n in the given output base, wrapping at lineLen-1 columns
// with a trailing "\\\n" the way bc's terminal output does.
func Format(ix Interrupter, n Number, obase, lineLen int) (string, *bcerr.Error) {
	if lineLen <= 0 {
		lineLen = DefaultLineLength
	}
	var raw string
	var err *bcerr.Error
	switch {
	case obase == 10:
		raw = formatBase10(n)
	case obase <= 16:
		raw, err = formatPositional(ix, n, obase)
	default:
		raw, err = formatBlocks(ix, n, obase)
	}
	if err != nil {
		return "", err
	}
	return wrapLine(raw, lineLen), nil
}

func formatBase10(n Number) string {
	if n.IsZero() {
		return "0"
	}
	var sb strings.Builder
	if n.neg {
		sb.WriteByte('-')
	}
	intLen := n.intDigits()
	for i := intLen - 1; i >= 0; i-- {
		sb.WriteByte('0' + n.digitAt(n.rdx+i))
	}
	if n.rdx > 0 {
		sb.WriteByte('.')
		for i := n.rdx - 1; i >= 0; i-- {
			sb.WriteByte('0' + n.digitAt(i))
		}
	}
	return sb.String()
}

// intDigitsInBase converts n's integer part to `base` via repeated
// divmod, emitting digit values most-significant first.
func intDigitsInBase(ix Interrupter, intPart Number, base int) ([]byte, *bcerr.Error) {
	if intPart.IsZero() {
		return []byte{0}, nil
	}
	baseNum := FromUint64(uint64(base))
	var stack []byte
	cur := intPart.Abs()
	for !cur.IsZero() {
		if err := checkInterrupt(ix); err != nil {
			return nil, err
		}
		q, err := Div(ix, cur, baseNum, 0)
		if err != nil {
			return nil, err
		}
		r, err := Mod(ix, cur, baseNum, 0)
		if err != nil {
			return nil, err
		}
		d, _ := r.ToUint64()
		stack = append(stack, byte(d))
		cur = q
	}
	out := make([]byte, len(stack))
	for i, d := range stack {
		out[len(stack)-1-i] = d
	}
	return out, nil
}

// fracDigitsInBase converts n's fractional part to `base` by repeatedly
// multiplying by base and peeling off the integer part, stopping once the
// remainder hits zero or `limit` digits have been produced.
func fracDigitsInBase(ix Interrupter, frac Number, base, limit int) ([]byte, *bcerr.Error) {
	baseNum := FromUint64(uint64(base))
	var out []byte
	cur := frac
	for i := 0; i < limit && !cur.IsZero(); i++ {
		if err := checkInterrupt(ix); err != nil {
			return nil, err
		}
		prod, err := Mul(ix, cur, baseNum, cur.rdx+4)
		if err != nil {
			return nil, err
		}
		digitPart := prod.IntPart()
		d, _ := digitPart.ToUint64()
		out = append(out, byte(d))
		cur = prod.FracPart()
	}
	return out, nil
}

func baseDigitChar(d byte) byte {
	if d < 10 {
		return '0' + d
	}
	return 'A' + (d - 10)
}

// formatPositional renders n in any base 2..16 using ASCII digits and the
// letters A-F for 10-15.
func formatPositional(ix Interrupter, n Number, obase int) (string, *bcerr.Error) {
	if n.IsZero() {
		return "0", nil
	}
	intDigits, err := intDigitsInBase(ix, n.IntPart(), obase)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if n.neg {
		sb.WriteByte('-')
	}
	for _, d := range intDigits {
		sb.WriteByte(baseDigitChar(d))
	}
	if n.rdx > 0 {
		fracDigits, err := fracDigitsInBase(ix, n.FracPart(), obase, n.rdx+16)
		if err != nil {
			return "", err
		}
		if len(fracDigits) > 0 {
			sb.WriteByte('.')
			for _, d := range fracDigits {
				sb.WriteByte(baseDigitChar(d))
			}
		}
	}
	return sb.String(), nil
}

// formatBlocks renders n in a base > 16 as space-separated zero-padded
// decimal blocks, one per digit, with a leading '.' marking the
// fractional point.
func formatBlocks(ix Interrupter, n Number, obase int) (string, *bcerr.Error) {
	width := len(strconv.Itoa(obase - 1))
	if n.IsZero() {
		return strings.Repeat("0", width), nil
	}
	intDigits, err := intDigitsInBase(ix, n.IntPart(), obase)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if n.neg {
		sb.WriteByte('-')
	}
	for i, d := range intDigits {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(pad(int(d), width))
	}
	if n.rdx > 0 {
		fracDigits, err := fracDigitsInBase(ix, n.FracPart(), obase, n.rdx+16)
		if err != nil {
			return "", err
		}
		if len(fracDigits) > 0 {
			sb.WriteString(" . ")
			for i, d := range fracDigits {
				if i > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(pad(int(d), width))
			}
		}
	}
	return sb.String(), nil
}

func pad(v, width int) string {
	s := strconv.Itoa(v)
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

// wrapLine inserts "\\\n" every lineLen-1 columns, matching bc's terminal
// line-wrap behavior for long numeric output.
func wrapLine(s string, lineLen int) string {
	if lineLen <= 1 {
		return s
	}
	limit := lineLen - 1
	var sb strings.Builder
	col := 0
	for i := 0; i < len(s); i++ {
		if col >= limit {
			sb.WriteString("\\\n")
			col = 0
		}
		sb.WriteByte(s[i])
		col++
	}
	return sb.String()
}
