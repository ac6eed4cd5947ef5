package vm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/blinksh/bc/internal/bytecode"
	"github.com/blinksh/bc/internal/config"
	"github.com/blinksh/bc/internal/env"
	"github.com/blinksh/bc/internal/number"
)

func mustNumber(t *testing.T, s string) number.Number {
	t.Helper()
	n, err := number.Parse(s, 10)
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func TestVMAddAndPrint(t *testing.T) {
	e := env.New()
	cfg := config.New()
	main := e.Functions[env.MainFunc]

	c2 := e.AddConstant(mustNumber(t, "2"))
	c3 := e.AddConstant(mustNumber(t, "3"))
	main.EmitOperand(bytecode.PushConst, c2)
	main.EmitOperand(bytecode.PushConst, c3)
	main.Emit(bytecode.Add)
	main.Emit(bytecode.Print)

	var out bytes.Buffer
	m := New(e, cfg, &out)
	if err := m.Exec(env.MainFunc); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out.String()); got != "5" {
		t.Errorf("output = %q, want 5", got)
	}
}

func TestVMVariableRoundTrip(t *testing.T) {
	e := env.New()
	cfg := config.New()
	main := e.Functions[env.MainFunc]

	x := e.InternVar("x")
	c := e.AddConstant(mustNumber(t, "42"))
	main.EmitOperand(bytecode.PushConst, c)
	main.EmitOperand(bytecode.StoreVar, x)
	main.EmitOperand(bytecode.LoadVar, x)
	main.Emit(bytecode.Print)

	var out bytes.Buffer
	m := New(e, cfg, &out)
	if err := m.Exec(env.MainFunc); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out.String()); got != "42" {
		t.Errorf("output = %q, want 42", got)
	}
}

// TestVMRecursiveCall compiles f(n) = n<=1 ? 1 : n*f(n-1), calls f(5), and
// checks the factorial result, exercising Call/Return and auto-parameter
// shadowing across recursive invocations.
func TestVMRecursiveCall(t *testing.T) {
	e := env.New()
	cfg := config.New()

	fIdx := e.AddFunc("f")
	f := e.Functions[fIdx]
	n := e.InternVar("n")
	f.Params = []bytecode.Local{{Name: "n"}}

	one := e.AddConstant(mustNumber(t, "1"))

	baseCaseLabel := f.NewLabel()
	endLabel := f.NewLabel()

	f.EmitOperand(bytecode.LoadVar, n)
	f.EmitOperand(bytecode.PushConst, one)
	f.Emit(bytecode.CmpGt) // n > 1 ?
	f.EmitJump(bytecode.JmpIfZero, baseCaseLabel)

	// n > 1: return n * f(n-1)
	f.EmitOperand(bytecode.LoadVar, n)
	f.EmitOperand(bytecode.LoadVar, n)
	f.EmitOperand(bytecode.PushConst, one)
	f.Emit(bytecode.Sub)
	f.EmitOperand(bytecode.Call, bytecode.PackCall(fIdx, 1))
	f.Emit(bytecode.Mul)
	f.Emit(bytecode.Return)
	f.EmitJump(bytecode.Jmp, endLabel)

	f.PlaceLabel(baseCaseLabel)
	// n <= 1: return 1
	f.EmitOperand(bytecode.PushConst, one)
	f.Emit(bytecode.Return)

	f.PlaceLabel(endLabel)

	main := e.Functions[env.MainFunc]
	c5 := e.AddConstant(mustNumber(t, "5"))
	main.EmitOperand(bytecode.PushConst, c5)
	main.EmitOperand(bytecode.Call, bytecode.PackCall(fIdx, 1))
	main.Emit(bytecode.Print)

	var out bytes.Buffer
	m := New(e, cfg, &out)
	if err := m.Exec(env.MainFunc); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out.String()); got != "120" {
		t.Errorf("f(5) = %q, want 120", got)
	}
}

func TestVMDivideByZeroPropagates(t *testing.T) {
	e := env.New()
	cfg := config.New()
	main := e.Functions[env.MainFunc]

	one := e.AddConstant(mustNumber(t, "1"))
	zero := e.AddConstant(mustNumber(t, "0"))
	main.EmitOperand(bytecode.PushConst, one)
	main.EmitOperand(bytecode.PushConst, zero)
	main.Emit(bytecode.Div)

	var out bytes.Buffer
	m := New(e, cfg, &out)
	if err := m.Exec(env.MainFunc); err == nil {
		t.Fatal("expected divide-by-zero error")
	}
}
