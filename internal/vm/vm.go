// Package vm runs compiled BC and DC bytecode. One VM instance owns the
// data stack and call-frame stack; the functions, variables and registers
// it reads and writes live in the *env.Environment passed in, so a REPL can
// keep compiling more code into the same Environment across statements
// without losing state (mirroring how robpike.io/ivy's exec.Context
// persists across each Run call).
package vm

import (
	"fmt"
	"io"

	"github.com/blinksh/bc/internal/bcerr"
	"github.com/blinksh/bc/internal/bytecode"
	"github.com/blinksh/bc/internal/config"
	"github.com/blinksh/bc/internal/env"
	"github.com/blinksh/bc/internal/number"
)

// maxCallDepth bounds recursive bc function calls.
const maxCallDepth = 10000

type frame struct {
	fn *bytecode.Function
	ip int
}

// VM executes the bytecode of one bc or dc program.
type VM struct {
	Env    *env.Environment
	Config *config.Config
	Out    io.Writer

	// ReadLine supplies the next line of input for DC's '?' / BC's read()
	// builtin (the ReadOne opcode), which parses that line as a single
	// number in the current ibase; the line is not compiled or executed.
	// nil means interactive input is unavailable (e.g. when running a
	// script with input exhausted).
	ReadLine func() (string, bool)

	// Compile turns source text into a callable function index. It is
	// injected rather than imported directly to avoid vm importing the
	// parser packages (which import vm to build calls). No opcode calls it:
	// ReadOne does not compile the line it reads.
	Compile func(src string, env *env.Environment) (int, *bcerr.Error)

	stack  []Value
	frames []frame
}

// New returns a VM ready to execute functions in e.
func New(e *env.Environment, cfg *config.Config, out io.Writer) *VM {
	return &VM{Env: e, Config: cfg, Out: out}
}

func (m *VM) push(v Value) { m.stack = append(m.stack, v) }

func (m *VM) pop() (Value, *bcerr.Error) {
	if len(m.stack) == 0 {
		return Value{}, bcerr.New(bcerr.Exec, "stack empty")
	}
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v, nil
}

func (m *VM) popNumber() (number.Number, *bcerr.Error) {
	v, err := m.pop()
	if err != nil {
		return number.Number{}, err
	}
	if v.Kind != KindNumber {
		return number.Number{}, bcerr.New(bcerr.Exec, "expected a number")
	}
	return v.Num, nil
}

// Exec runs the function at fnIdx to completion (including any nested
// calls it makes) and returns once its own frame has returned.
func (m *VM) Exec(fnIdx int) *bcerr.Error {
	fn := m.Env.Functions[fnIdx]
	baseDepth := len(m.frames)
	m.pushFrame(fn, nil)
	for len(m.frames) > baseDepth {
		if err := m.step(); err != nil {
			m.frames = m.frames[:baseDepth]
			return err
		}
	}
	return nil
}

// Call invokes fnIdx with its parameters' worth of arguments already on
// the stack (deepest-first), binding them to the callee's parameters.
// Used both by the Call opcode and indirectly by CallInd/condCallReg/
// PopExec. argc is the number of arguments the call site actually
// compiled, checked against len(fn.Params) (spec §7 "mismatched-params");
// pass -1 to skip the check (dc's indirect/macro calls have no declared
// parameter list to compare against).
func (m *VM) call(fnIdx int, argc int) *bcerr.Error {
	if len(m.frames) >= maxCallDepth {
		return bcerr.New(bcerr.Exec, "nesting depth too deep")
	}
	fn := m.Env.Functions[fnIdx]
	if argc >= 0 && argc != len(fn.Params) {
		return bcerr.New(bcerr.Exec, "mismatched-params")
	}
	args := make([]number.Number, len(fn.Params))
	for i := len(fn.Params) - 1; i >= 0; i-- {
		v, err := m.popNumber()
		if err != nil {
			return err
		}
		args[i] = v
	}
	m.pushFrame(fn, args)
	base := len(m.frames) - 1
	for len(m.frames) > base {
		if err := m.step(); err != nil {
			m.frames = m.frames[:base]
			if err.Msg == "quit" && err.Levels > 1 {
				return bcerr.NewQuit(err.Levels - 1)
			}
			if err.Msg == "quit" && err.Levels == 1 {
				// This frame is the nth one unwound: NQUIT's count is
				// spent, so resume normal execution one level up instead
				// of continuing to propagate.
				return nil
			}
			return err
		}
	}
	return nil
}

func (m *VM) pushFrame(fn *bytecode.Function, args []number.Number) {
	for i, p := range fn.Params {
		if p.Array {
			m.Env.PushAutoArray(p.Name)
		} else {
			m.Env.PushAutoScalar(p.Name)
			if args != nil {
				m.Env.SetScalar(p.Name, args[i])
			}
		}
	}
	for _, a := range fn.Autos {
		if a.Array {
			m.Env.PushAutoArray(a.Name)
		} else {
			m.Env.PushAutoScalar(a.Name)
		}
	}
	m.frames = append(m.frames, frame{fn: fn, ip: 0})
}

func (m *VM) popFrameLocals() {
	fn := m.frames[len(m.frames)-1].fn
	for i := len(fn.Autos) - 1; i >= 0; i-- {
		a := fn.Autos[i]
		if a.Array {
			m.Env.PopAutoArray(a.Name)
		} else {
			m.Env.PopAutoScalar(a.Name)
		}
	}
	for i := len(fn.Params) - 1; i >= 0; i-- {
		p := fn.Params[i]
		if p.Array {
			m.Env.PopAutoArray(p.Name)
		} else {
			m.Env.PopAutoScalar(p.Name)
		}
	}
	m.frames = m.frames[:len(m.frames)-1]
}

// step executes exactly one instruction from the top frame, popping the
// frame (and pushing an implicit zero return value, matching bc's "falling
// off the end of a function returns 0") if it has run out of code.
func (m *VM) step() *bcerr.Error {
	if m.Config.Interrupted() {
		return bcerr.Interrupted
	}
	fr := &m.frames[len(m.frames)-1]
	if fr.ip >= len(fr.fn.Code) {
		m.popFrameLocals()
		m.push(NumberValue(number.Zero))
		return nil
	}
	op := bytecode.Op(fr.fn.Code[fr.ip])
	fr.ip++
	var operand int
	if op.HasOperand() {
		operand, fr.ip = bytecode.ReadOperand(fr.fn.Code, fr.ip)
	}
	return m.dispatch(op, operand)
}

func (m *VM) dispatch(op bytecode.Op, operand int) *bcerr.Error {
	switch op {
	case bytecode.Nop:
		// no-op

	case bytecode.PushConst:
		m.push(NumberValue(m.Env.Constants[operand]))
	case bytecode.PushStr:
		m.push(StringValue(m.Env.Strings[operand], -1))
	case bytecode.PushProc:
		proc := m.Env.Procs[operand]
		m.push(StringValue(proc.Text, proc.FuncIdx))
	case bytecode.Pop:
		if _, err := m.pop(); err != nil {
			return err
		}
	case bytecode.Dup:
		if len(m.stack) == 0 {
			return bcerr.New(bcerr.Exec, "stack empty")
		}
		m.push(m.stack[len(m.stack)-1])
	case bytecode.Swap:
		n := len(m.stack)
		if n < 2 {
			return bcerr.New(bcerr.Exec, "stack empty")
		}
		m.stack[n-1], m.stack[n-2] = m.stack[n-2], m.stack[n-1]
	case bytecode.ClearAll:
		m.stack = m.stack[:0]

	case bytecode.LoadVar:
		m.push(NumberValue(m.Env.GetScalar(m.Env.VarName(operand))))
	case bytecode.StoreVar:
		v, err := m.popNumber()
		if err != nil {
			return err
		}
		m.Env.SetScalar(m.Env.VarName(operand), v)
	case bytecode.LoadArray:
		idx, err := m.popNumber()
		if err != nil {
			return err
		}
		key, err := formatKey(idx)
		if err != nil {
			return err
		}
		m.push(NumberValue(m.Env.GetArrayElem(m.Env.VarName(operand), key)))
	case bytecode.StoreArray:
		val, err := m.popNumber()
		if err != nil {
			return err
		}
		idx, err := m.popNumber()
		if err != nil {
			return err
		}
		key, err := formatKey(idx)
		if err != nil {
			return err
		}
		m.Env.SetArrayElem(m.Env.VarName(operand), key, val)

	case bytecode.LoadReg:
		name := m.Env.VarName(operand)
		if fi, ok := m.Env.TopProcRegister(name); ok {
			m.push(StringValue("", fi))
		} else {
			v, _ := m.Env.TopRegister(name)
			m.push(NumberValue(v))
		}
	case bytecode.StoreReg:
		v, err := m.pop()
		if err != nil {
			return err
		}
		if serr := m.storeIntoRegister(m.Env.VarName(operand), v); serr != nil {
			return serr
		}
	case bytecode.LoadRegPop:
		name := m.Env.VarName(operand)
		if fi, ok := m.Env.PopProcRegister(name); ok {
			m.push(StringValue("", fi))
		} else {
			v, _ := m.Env.PopRegister(name)
			m.push(NumberValue(v))
		}
	case bytecode.StoreRegTop:
		if len(m.stack) == 0 {
			return bcerr.New(bcerr.Exec, "stack empty")
		}
		if serr := m.storeIntoRegister(m.Env.VarName(operand), m.stack[len(m.stack)-1]); serr != nil {
			return serr
		}

	case bytecode.LoadIbase:
		m.push(NumberValue(number.FromInt64(int64(m.Config.Ibase()))))
	case bytecode.StoreIbase:
		v, err := m.popNumber()
		if err != nil {
			return err
		}
		n, ok := v.ToUint64()
		if !ok {
			n = 0
		}
		m.Config.SetIbase(int(n))
	case bytecode.LoadObase:
		m.push(NumberValue(number.FromInt64(int64(m.Config.Obase()))))
	case bytecode.StoreObase:
		v, err := m.popNumber()
		if err != nil {
			return err
		}
		n, ok := v.ToUint64()
		if !ok || n > uint64(^uint32(0)>>1) {
			return bcerr.New(bcerr.Exec, "bad-obase")
		}
		if serr := m.Config.SetObase(int(n)); serr != nil {
			return serr
		}
	case bytecode.LoadScale:
		m.push(NumberValue(number.FromInt64(int64(m.Config.Scale()))))
	case bytecode.StoreScale:
		v, err := m.popNumber()
		if err != nil {
			return err
		}
		n, ok := v.ToUint64()
		if !ok {
			return bcerr.New(bcerr.Exec, "bad-scale")
		}
		if serr := m.Config.SetScale(int(n)); serr != nil {
			return serr
		}
	case bytecode.LoadLast:
		m.push(NumberValue(m.Env.GetScalar(".")))

	case bytecode.Add, bytecode.Sub, bytecode.Mul, bytecode.Div, bytecode.Mod, bytecode.DivMod, bytecode.Pow:
		return m.binaryArith(op)
	case bytecode.ModExp:
		c, err := m.popNumber()
		if err != nil {
			return err
		}
		b, err := m.popNumber()
		if err != nil {
			return err
		}
		a, err := m.popNumber()
		if err != nil {
			return err
		}
		r, nerr := number.ModExp(m.Config, a, b, c)
		if nerr != nil {
			return nerr
		}
		m.push(NumberValue(r))
	case bytecode.Neg:
		a, err := m.popNumber()
		if err != nil {
			return err
		}
		m.push(NumberValue(a.Neg()))
	case bytecode.Sqrt:
		a, err := m.popNumber()
		if err != nil {
			return err
		}
		r, nerr := number.Sqrt(m.Config, a, m.Config.Scale())
		if nerr != nil {
			return nerr
		}
		m.push(NumberValue(r))

	case bytecode.PreIncVar, bytecode.PreDecVar, bytecode.PostIncVar, bytecode.PostDecVar:
		return m.incDecVar(op, operand)

	case bytecode.CmpEq, bytecode.CmpNe, bytecode.CmpLt, bytecode.CmpLe, bytecode.CmpGt, bytecode.CmpGe:
		return m.compare(op)
	case bytecode.LNot:
		a, err := m.popNumber()
		if err != nil {
			return err
		}
		m.push(NumberValue(boolNumber(a.IsZero())))
	case bytecode.LAnd:
		b, err := m.popNumber()
		if err != nil {
			return err
		}
		a, err := m.popNumber()
		if err != nil {
			return err
		}
		m.push(NumberValue(boolNumber(!a.IsZero() && !b.IsZero())))
	case bytecode.LOr:
		b, err := m.popNumber()
		if err != nil {
			return err
		}
		a, err := m.popNumber()
		if err != nil {
			return err
		}
		m.push(NumberValue(boolNumber(!a.IsZero() || !b.IsZero())))

	case bytecode.Jmp:
		fr := &m.frames[len(m.frames)-1]
		fr.ip = fr.fn.LabelTarget(operand)
	case bytecode.JmpIfZero:
		v, err := m.popNumber()
		if err != nil {
			return err
		}
		if v.IsZero() {
			fr := &m.frames[len(m.frames)-1]
			fr.ip = fr.fn.LabelTarget(operand)
		}
	case bytecode.JmpIfNotZero:
		v, err := m.popNumber()
		if err != nil {
			return err
		}
		if !v.IsZero() {
			fr := &m.frames[len(m.frames)-1]
			fr.ip = fr.fn.LabelTarget(operand)
		}
	case bytecode.Call:
		fnIdx, argc := bytecode.UnpackCall(operand)
		return m.call(fnIdx, argc)
	case bytecode.CallInd:
		v, err := m.pop()
		if err != nil {
			return err
		}
		if v.Kind != KindString || v.FuncIdx < 0 {
			return bcerr.New(bcerr.Exec, "not an executable string")
		}
		return m.call(v.FuncIdx, -1)
	case bytecode.CallRegIfLt, bytecode.CallRegIfGt, bytecode.CallRegIfEq,
		bytecode.CallRegIfGe, bytecode.CallRegIfLe, bytecode.CallRegIfNe:
		return m.condCallReg(op, operand)

	case bytecode.Return:
		v, err := m.popNumber()
		if err != nil {
			v = number.Zero
		}
		m.popFrameLocals()
		m.push(NumberValue(v))

	case bytecode.Length:
		v, err := m.popNumber()
		if err != nil {
			return err
		}
		m.push(NumberValue(number.FromInt64(int64(v.Len()))))
	case bytecode.ScaleOf:
		v, err := m.popNumber()
		if err != nil {
			return err
		}
		m.push(NumberValue(number.FromInt64(int64(v.Scale()))))
	case bytecode.ReadOne:
		return m.readOne()
	case bytecode.Quit:
		if operand == 1 {
			// dc 'Q': pop n, unwind n call frames (spec §4.C NQUIT).
			nv, err := m.popNumber()
			if err != nil {
				return err
			}
			n, ok := nv.ToUint64()
			if !ok || n == 0 {
				n = 1
			}
			return bcerr.NewQuit(int(n))
		}
		return bcerr.NewQuit(0)
	case bytecode.Halt:
		return bcerr.New(bcerr.Exec, "halt")
	case bytecode.Limits:
		m.printLimits()
	case bytecode.StackLen:
		m.push(NumberValue(number.FromInt64(int64(len(m.stack)))))
	case bytecode.Asciify:
		v, err := m.popNumber()
		if err != nil {
			return err
		}
		n, _ := v.ToUint64()
		m.push(StringValue(string(rune(n%256)), -1))
	case bytecode.PopExec:
		v, err := m.pop()
		if err != nil {
			return err
		}
		if v.Kind == KindString && v.FuncIdx >= 0 {
			return m.call(v.FuncIdx, -1)
		}

	case bytecode.Print:
		v, err := m.pop()
		if err != nil {
			return err
		}
		if perr := m.printValue(v, true); perr != nil {
			return perr
		}
	case bytecode.PrintPop:
		v, err := m.pop()
		if err != nil {
			return err
		}
		if perr := m.printValue(v, false); perr != nil {
			return perr
		}
	case bytecode.PrintBytes:
		v, err := m.pop()
		if err != nil {
			return err
		}
		m.printBytes(v)
	case bytecode.PrintPeek:
		if len(m.stack) == 0 {
			return bcerr.New(bcerr.Exec, "stack empty")
		}
		if perr := m.printValue(m.stack[len(m.stack)-1], true); perr != nil {
			return perr
		}
	case bytecode.PrintAll:
		for i := len(m.stack) - 1; i >= 0; i-- {
			if perr := m.printValue(m.stack[i], true); perr != nil {
				return perr
			}
		}

	default:
		return bcerr.New(bcerr.Exec, "unimplemented opcode %s", op)
	}
	return nil
}

func boolNumber(b bool) number.Number {
	if b {
		return number.One
	}
	return number.Zero
}

func formatKey(n number.Number) (string, *bcerr.Error) {
	return number.Format(nil, n.Abs().IntPart(), 10, 0)
}

func (m *VM) binaryArith(op bytecode.Op) *bcerr.Error {
	b, err := m.popNumber()
	if err != nil {
		return err
	}
	a, err := m.popNumber()
	if err != nil {
		return err
	}
	scale := m.Config.Scale()
	switch op {
	case bytecode.Add:
		r, nerr := number.Add(m.Config, a, b)
		if nerr != nil {
			return nerr
		}
		m.push(NumberValue(r))
	case bytecode.Sub:
		r, nerr := number.Sub(m.Config, a, b)
		if nerr != nil {
			return nerr
		}
		m.push(NumberValue(r))
	case bytecode.Mul:
		r, nerr := number.Mul(m.Config, a, b, scale)
		if nerr != nil {
			return nerr
		}
		m.push(NumberValue(r))
	case bytecode.Div:
		r, nerr := number.Div(m.Config, a, b, scale)
		if nerr != nil {
			return nerr
		}
		m.push(NumberValue(r))
	case bytecode.Mod:
		r, nerr := number.Mod(m.Config, a, b, scale)
		if nerr != nil {
			return nerr
		}
		m.push(NumberValue(r))
	case bytecode.DivMod:
		q, r, nerr := number.DivMod(m.Config, a, b, scale)
		if nerr != nil {
			return nerr
		}
		m.push(NumberValue(q))
		m.push(NumberValue(r))
	case bytecode.Pow:
		r, nerr := number.Pow(m.Config, a, b, scale)
		if nerr != nil {
			return nerr
		}
		m.push(NumberValue(r))
	}
	return nil
}

func (m *VM) compare(op bytecode.Op) *bcerr.Error {
	b, err := m.popNumber()
	if err != nil {
		return err
	}
	a, err := m.popNumber()
	if err != nil {
		return err
	}
	c, nerr := number.Cmp(m.Config, a, b)
	if nerr != nil {
		return nerr
	}
	var result bool
	switch op {
	case bytecode.CmpEq:
		result = c == 0
	case bytecode.CmpNe:
		result = c != 0
	case bytecode.CmpLt:
		result = c < 0
	case bytecode.CmpLe:
		result = c <= 0
	case bytecode.CmpGt:
		result = c > 0
	case bytecode.CmpGe:
		result = c >= 0
	}
	m.push(NumberValue(boolNumber(result)))
	return nil
}

// incDecVar implements bc's ++x/x++/--x/x-- on a scalar named by operand.
func (m *VM) incDecVar(op bytecode.Op, operand int) *bcerr.Error {
	name := m.Env.VarName(operand)
	old := m.Env.GetScalar(name)
	var delta number.Number
	if op == bytecode.PreIncVar || op == bytecode.PostIncVar {
		delta = number.One
	} else {
		delta = number.One.Neg()
	}
	updated, nerr := number.Add(m.Config, old, delta)
	if nerr != nil {
		return nerr
	}
	m.Env.SetScalar(name, updated)
	if op == bytecode.PreIncVar || op == bytecode.PreDecVar {
		m.push(NumberValue(updated))
	} else {
		m.push(NumberValue(old))
	}
	return nil
}

// storeIntoRegister routes a popped value to the numeric or procedure
// register table depending on its Kind, since a single DC register stack
// (env.Registers / env.ProcRegisters) only ever holds one or the other.
func (m *VM) storeIntoRegister(name string, v Value) *bcerr.Error {
	switch {
	case v.Kind == KindString && v.FuncIdx >= 0:
		m.Env.PushProcRegister(name, v.FuncIdx)
	case v.Kind == KindNumber:
		m.Env.PushRegister(name, v.Num)
	default:
		return bcerr.New(bcerr.Exec, "cannot store a non-executable string in a register")
	}
	return nil
}

// condCallReg implements DC's conditional-execute commands. dc's `x y opr`
// pops y (top, the first value popped) then x (second popped), and calls
// register[operand]'s procedure if y op x holds: "2 3 >a" pushes 2 then 3,
// so the first-popped value (3) is compared greater-than the second-popped
// value (2), and the register runs. A register holding no procedure is
// silently skipped, matching dc.
func (m *VM) condCallReg(op bytecode.Op, operand int) *bcerr.Error {
	top, err := m.popNumber()
	if err != nil {
		return err
	}
	second, err := m.popNumber()
	if err != nil {
		return err
	}
	c, nerr := number.Cmp(m.Config, top, second)
	if nerr != nil {
		return nerr
	}
	var hold bool
	switch op {
	case bytecode.CallRegIfLt:
		hold = c < 0
	case bytecode.CallRegIfGt:
		hold = c > 0
	case bytecode.CallRegIfEq:
		hold = c == 0
	case bytecode.CallRegIfGe:
		hold = c >= 0
	case bytecode.CallRegIfLe:
		hold = c <= 0
	case bytecode.CallRegIfNe:
		hold = c != 0
	}
	if !hold {
		return nil
	}
	fi, ok := m.Env.TopProcRegister(m.Env.VarName(operand))
	if !ok {
		return nil
	}
	return m.call(fi, -1)
}

func (m *VM) readOne() *bcerr.Error {
	if m.ReadLine == nil {
		return bcerr.New(bcerr.Exec, "read: no input available")
	}
	line, ok := m.ReadLine()
	if !ok {
		m.push(NumberValue(number.Zero))
		return nil
	}
	n, nerr := number.Parse(line, m.Config.Ibase())
	if nerr != nil {
		return nerr
	}
	m.push(NumberValue(n))
	return nil
}

func (m *VM) printLimits() {
	fmt.Fprintf(m.Out, "BASE_MAX     = %d\n", config.BaseMax)
	fmt.Fprintf(m.Out, "DIM_MAX      = %d\n", config.DimMax)
	fmt.Fprintf(m.Out, "SCALE_MAX    = %d\n", config.ScaleMax)
	fmt.Fprintf(m.Out, "STRING_MAX   = %d\n", config.StringMax)
	fmt.Fprintf(m.Out, "Number of vars = unbounded\n")
}

func (m *VM) printValue(v Value, newline bool) *bcerr.Error {
	switch v.Kind {
	case KindString:
		fmt.Fprint(m.Out, v.Str)
	default:
		s, nerr := number.Format(m.Config, v.Num, m.Config.Obase(), config.LineLen)
		if nerr != nil {
			return nerr
		}
		fmt.Fprint(m.Out, s)
		m.Env.SetScalar(".", v.Num)
	}
	if newline {
		fmt.Fprintln(m.Out)
	}
	return nil
}

// printBytes implements dc 'P': a string prints verbatim with no trailing
// newline; a number prints as the big-endian bytes of its truncated
// absolute integer value (at least one byte, for zero), the way dc reads
// a number back out as raw text with '?'. Magnitude is bounded to 64 bits,
// matching this VM's other byte-oriented conversions (Asciify, register
// indices).
func (m *VM) printBytes(v Value) {
	if v.Kind == KindString {
		fmt.Fprint(m.Out, v.Str)
		return
	}
	n, _ := v.Num.Abs().IntPart().ToUint64()
	buf := []byte{byte(n)}
	for n >>= 8; n > 0; n >>= 8 {
		buf = append([]byte{byte(n)}, buf...)
	}
	m.Out.Write(buf)
}
