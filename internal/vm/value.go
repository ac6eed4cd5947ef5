package vm

import "github.com/blinksh/bc/internal/number"

// Kind discriminates what a stack Value currently holds.
type Kind int

const (
	KindNumber Kind = iota
	KindString
)

// Value is one bytecode-VM stack slot. Most bc/dc data is a Number, but DC
// pushes bracketed [...] text for two different purposes: a literal string
// to print, and a quoted procedure body for 'x' to invoke — so a String
// value also carries the function index that compiling that literal
// produced (internal/dcparser compiles every [...] into its own anonymous
// Function as soon as it is parsed).
type Value struct {
	Kind    Kind
	Num     number.Number
	Str     string
	FuncIdx int
}

func NumberValue(n number.Number) Value { return Value{Kind: KindNumber, Num: n} }

func StringValue(s string, funcIdx int) Value {
	return Value{Kind: KindString, Str: s, FuncIdx: funcIdx}
}
