package bytecode

import "encoding/binary"

// Local names a single scalar or array binding a Function introduces on
// entry: a parameter (bound from the caller's arguments) or an `auto`
// declaration (bound to 0 / an empty array). Both are popped in the same
// way on return, which is why Return doesn't need to tell them apart.
type Local struct {
	Name  string
	Array bool
}

// Function is one compiled BC function or DC string-as-procedure: a flat
// byte stream of opcodes plus varint operands, and a label table that jump
// operands index into. Labels are resolved to byte offsets as they are
// placed during compilation, so a jump's operand is a small stable index
// rather than a byte offset patched into the stream after the fact.
type Function struct {
	Name       string
	Params     []Local
	Autos      []Local
	Code       []byte
	Labels     []int // label index -> byte offset into Code
	SourceLine []int // Code offset -> source line, parallel sparse table for error messages
}

// NewFunction returns an empty function ready for code to be emitted into.
func NewFunction(name string) *Function {
	return &Function{Name: name}
}

// Emit appends a zero-operand instruction.
func (f *Function) Emit(op Op) int {
	pos := len(f.Code)
	f.Code = append(f.Code, byte(op))
	return pos
}

// EmitOperand appends an instruction followed by a uvarint operand (a
// constant/string/variable/function table index).
func (f *Function) EmitOperand(op Op, operand int) int {
	pos := len(f.Code)
	f.Code = append(f.Code, byte(op))
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], uint64(operand))
	f.Code = append(f.Code, buf[:n]...)
	return pos
}

// callArgcBits is how many low bits of a Call operand hold the argument
// count the call site compiled, leaving the rest for the function table
// index; Call has no room for a second varint operand (every other
// operand is a single table/label index), so the two are packed into one
// the way a compact instruction encoding would.
const callArgcBits = 16

// PackCall combines a function index and the argument count the call
// site compiled into Call's single operand (spec §4.C: "CALL (followed
// by argument count and function index)").
func PackCall(fnIdx, argc int) int {
	return fnIdx<<callArgcBits | (argc & (1<<callArgcBits - 1))
}

// UnpackCall reverses PackCall.
func UnpackCall(operand int) (fnIdx, argc int) {
	return operand >> callArgcBits, operand & (1<<callArgcBits - 1)
}

// NewLabel reserves a label index whose target is not yet known; the
// compiler emits a jump referencing it before calling PlaceLabel once the
// jump's destination is reached.
func (f *Function) NewLabel() int {
	f.Labels = append(f.Labels, -1)
	return len(f.Labels) - 1
}

// PlaceLabel records the current end of the code stream as label id's
// target, the way a backpatched assembler resolves a forward jump once it
// reaches the label.
func (f *Function) PlaceLabel(id int) {
	f.Labels[id] = len(f.Code)
}

// EmitJump appends a jump instruction whose operand is a label index. It
// returns nothing: for a forward jump the caller keeps the label it passed
// and PlaceLabels it later (for a backward jump, the label is already
// placed).
func (f *Function) EmitJump(op Op, label int) {
	f.EmitOperand(op, label)
}

// ReadOperand decodes the uvarint operand starting at ip, returning the
// value and the index of the byte following it.
func ReadOperand(code []byte, ip int) (int, int) {
	v, n := binary.Uvarint(code[ip:])
	return int(v), ip + n
}

// LabelTarget resolves a label index to its byte offset.
func (f *Function) LabelTarget(label int) int {
	return f.Labels[label]
}
