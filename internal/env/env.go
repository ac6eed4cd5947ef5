// Package env holds the tables a compiled program and the VM share:
// functions indexed by number, interned variable names, a constants pool
// and strings pool built at compile time, and the mutable scalar/array/
// register storage the running program reads and writes.
//
// This plays the role robpike.io/ivy/exec.Context plays for ivy (it binds
// names to values and holds the function table), reshaped around bc/dc's
// name-indexed function/variable tables (original_source's BcEntry/BcAuto)
// instead of ivy's unary/binary operator maps.
package env

import (
	"github.com/blinksh/bc/internal/bytecode"
	"github.com/blinksh/bc/internal/number"
)

// Reserved function indices, matching BC_PROGRAM_DEF_SIZE's reserved slots
// in the historical implementation (spec's §3 data-model supplement).
const (
	MainFunc = 0 // the top-level statement stream
	ReadFunc = 1 // the body compiled for each interactive read() call
)

// defaultTableSize seeds new array backing maps (BC_PROGRAM_DEF_SIZE's
// analogue for a single array's initial bucket count).
const defaultTableSize = 16

// Environment is the runtime state shared across one bc or dc program: the
// compiled functions, the constants/strings pools the bytecode indexes
// into, and every scalar, array and register a program can touch.
type Environment struct {
	Functions []*bytecode.Function
	funcIndex map[string]int

	Constants []number.Number
	Strings   []string
	// Procs holds DC's [...] literals that were compiled as anonymous
	// procedures: each pairs the literal source text with the Function
	// index it compiled to, so a stack value can be printed as text or,
	// via CallInd, invoked as code.
	Procs []Proc

	VarNames []string
	varIndex map[string]int

	// Scalars and Arrays are stacks per name rather than single slots: a
	// bc function's `auto x` pushes a fresh binding that shadows any
	// global or caller-local `x`, and Return pops it back off, the same
	// technique original bc uses for its BcAuto entries (and the one
	// already used below for DC registers).
	Scalars map[string][]number.Number
	Arrays  map[string][]map[string]number.Number
	// Registers holds DC's register stacks: each register name owns its
	// own stack of values (DC 's' and 'S' push onto it, 'l' peeks its top,
	// 'L' pops it).
	Registers map[string][]number.Number
	// ProcRegisters parallels Registers for DC registers holding a
	// compiled [...] procedure instead of a number (the common
	// `[...]sa ... >a` conditional-execute idiom): a register only ever
	// holds one kind at a time in practice, so this is a separate table
	// rather than a tagged union inside Registers.
	ProcRegisters map[string][]int
}

// New returns an Environment with the reserved main/read function slots
// already populated.
func New() *Environment {
	e := &Environment{
		funcIndex: map[string]int{},
		varIndex:  map[string]int{},
		Scalars:   map[string][]number.Number{},
		Arrays:    map[string][]map[string]number.Number{},
		Registers:     map[string][]number.Number{},
		ProcRegisters: map[string][]int{},
	}
	e.AddFunc("main")
	e.AddFunc("read")
	return e
}

// AddFunc returns the index of the named function, creating an empty one
// if this is the first reference (idempotent, the way a forward call to a
// not-yet-defined bc function must still resolve to a stable slot).
func (e *Environment) AddFunc(name string) int {
	if idx, ok := e.funcIndex[name]; ok {
		return idx
	}
	idx := len(e.Functions)
	e.Functions = append(e.Functions, bytecode.NewFunction(name))
	e.funcIndex[name] = idx
	return idx
}

// NewAnonFunc appends a fresh, unnamed Function and returns its index,
// bypassing the name table: used for each interactively compiled REPL line
// and for DC's compiled-on-the-fly command strings, neither of which are
// ever looked up by name.
func (e *Environment) NewAnonFunc() int {
	idx := len(e.Functions)
	e.Functions = append(e.Functions, bytecode.NewFunction(""))
	return idx
}

// FuncIndex reports the index of an already-declared function.
func (e *Environment) FuncIndex(name string) (int, bool) {
	idx, ok := e.funcIndex[name]
	return idx, ok
}

// AddConstant interns a literal Number and returns its constants-pool index.
func (e *Environment) AddConstant(n number.Number) int {
	e.Constants = append(e.Constants, n)
	return len(e.Constants) - 1
}

// AddString interns a literal string (a print/dc-string argument) and
// returns its strings-pool index.
func (e *Environment) AddString(s string) int {
	e.Strings = append(e.Strings, s)
	return len(e.Strings) - 1
}

// Proc pairs a DC [...] literal's raw text with the Function it compiled
// to, so a stack value built from it can serve either as printable text or
// as an executable procedure.
type Proc struct {
	Text    string
	FuncIdx int
}

// AddProc interns a compiled [...] literal and returns its Procs index.
func (e *Environment) AddProc(text string, funcIdx int) int {
	e.Procs = append(e.Procs, Proc{Text: text, FuncIdx: funcIdx})
	return len(e.Procs) - 1
}

// InternVar returns the stable index for a variable name, assigning one on
// first use.
func (e *Environment) InternVar(name string) int {
	if idx, ok := e.varIndex[name]; ok {
		return idx
	}
	idx := len(e.VarNames)
	e.VarNames = append(e.VarNames, name)
	e.varIndex[name] = idx
	return idx
}

// VarName resolves an interned variable index back to its name.
func (e *Environment) VarName(idx int) string {
	return e.VarNames[idx]
}

// GetScalar returns a variable's innermost binding, or Number's zero value
// if it has never been assigned (bc auto-vivifies every scalar to 0).
func (e *Environment) GetScalar(name string) number.Number {
	stack := e.Scalars[name]
	if len(stack) == 0 {
		return number.Zero
	}
	return stack[len(stack)-1]
}

// SetScalar assigns the innermost binding of name, creating a global
// (depth-0) binding if none exists yet.
func (e *Environment) SetScalar(name string, v number.Number) {
	stack := e.Scalars[name]
	if len(stack) == 0 {
		e.Scalars[name] = []number.Number{v}
		return
	}
	stack[len(stack)-1] = v
}

// PushAutoScalar introduces a new innermost binding for name, initialized
// to 0, shadowing any existing global or caller-local value of the same
// name for the lifetime of the current call (the `auto x` declaration).
func (e *Environment) PushAutoScalar(name string) {
	e.Scalars[name] = append(e.Scalars[name], number.Zero)
}

// PopAutoScalar removes the innermost binding of name, restoring whatever
// was shadowed (called once per `auto x` on function return).
func (e *Environment) PopAutoScalar(name string) {
	stack := e.Scalars[name]
	if len(stack) > 0 {
		e.Scalars[name] = stack[:len(stack)-1]
	}
}

// GetArrayElem returns array[name][index] in the innermost binding of
// name, defaulting to 0 for an unassigned slot.
func (e *Environment) GetArrayElem(name, index string) number.Number {
	stack := e.Arrays[name]
	if len(stack) == 0 {
		return number.Zero
	}
	return stack[len(stack)-1][index]
}

func (e *Environment) SetArrayElem(name, index string, v number.Number) {
	stack := e.Arrays[name]
	if len(stack) == 0 {
		stack = []map[string]number.Number{make(map[string]number.Number, defaultTableSize)}
		e.Arrays[name] = stack
	}
	stack[len(stack)-1][index] = v
}

// PushAutoArray introduces a new innermost binding for an `auto a[]`
// parameter.
func (e *Environment) PushAutoArray(name string) {
	e.Arrays[name] = append(e.Arrays[name], make(map[string]number.Number, defaultTableSize))
}

func (e *Environment) PopAutoArray(name string) {
	stack := e.Arrays[name]
	if len(stack) > 0 {
		e.Arrays[name] = stack[:len(stack)-1]
	}
}

// PushRegister pushes a value onto a DC register's stack (the 's'/'S'
// commands).
func (e *Environment) PushRegister(name string, v number.Number) {
	e.Registers[name] = append(e.Registers[name], v)
}

// PopRegister pops and returns a DC register's top value ('L', the
// pop-on-read form of load used for balanced save/restore).
func (e *Environment) PopRegister(name string) (number.Number, bool) {
	stack := e.Registers[name]
	if len(stack) == 0 {
		return number.Zero, false
	}
	v := stack[len(stack)-1]
	e.Registers[name] = stack[:len(stack)-1]
	return v, true
}

// TopRegister peeks a DC register's top value without popping it ('l').
func (e *Environment) TopRegister(name string) (number.Number, bool) {
	stack := e.Registers[name]
	if len(stack) == 0 {
		return number.Zero, false
	}
	return stack[len(stack)-1], true
}

// PushProcRegister pushes a compiled [...] procedure's Function index onto
// a register's procedure stack (the 's'/'S' side of storing a macro body).
func (e *Environment) PushProcRegister(name string, funcIdx int) {
	e.ProcRegisters[name] = append(e.ProcRegisters[name], funcIdx)
}

// PopProcRegister pops a register's top procedure.
func (e *Environment) PopProcRegister(name string) (int, bool) {
	stack := e.ProcRegisters[name]
	if len(stack) == 0 {
		return 0, false
	}
	idx := stack[len(stack)-1]
	e.ProcRegisters[name] = stack[:len(stack)-1]
	return idx, true
}

// TopProcRegister peeks a register's top procedure without popping it,
// used by the conditional-execute commands ('<r', '>r', '=r' and their
// negated forms) to find the macro to run.
func (e *Environment) TopProcRegister(name string) (int, bool) {
	stack := e.ProcRegisters[name]
	if len(stack) == 0 {
		return 0, false
	}
	return stack[len(stack)-1], true
}
