package parser

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/blinksh/bc/internal/config"
	"github.com/blinksh/bc/internal/env"
	"github.com/blinksh/bc/internal/lexer"
	"github.com/blinksh/bc/internal/vm"
)

// compileAndRun compiles src line by line (the way internal/repl drives a
// session) against a fresh Environment/VM, compiling each top-level line into
// its own fresh anonymous function and running it before the next line is
// compiled, so statements and `define`s earlier in src are visible to later
// ones, and returns everything printed.
func compileAndRun(t *testing.T, cfg *config.Config, src string) string {
	t.Helper()
	e := env.New()
	var out bytes.Buffer
	m := vm.New(e, cfg, &out)

	lex := lexer.NewBC(cfg, "<test>", bufio.NewReader(strings.NewReader(src)))
	for {
		fnIdx := e.NewAnonFunc()
		fn := e.Functions[fnIdx]
		p := New(cfg, e, "<test>", lex, fn)
		more, err := p.CompileLine()
		if err != nil {
			t.Fatalf("compile error: %s", err)
		}
		if len(fn.Code) > 0 {
			if rerr := m.Exec(fnIdx); rerr != nil {
				t.Fatalf("exec error: %s", rerr)
			}
		}
		if !more {
			break
		}
	}
	return strings.TrimSpace(out.String())
}

func TestScalePrecision(t *testing.T) {
	cfg := config.New()
	got := compileAndRun(t, cfg, "scale = 20\n1/3\n")
	want := ".33333333333333333333"
	if got != want {
		t.Errorf("1/3 at scale 20 = %q, want %q", got, want)
	}
}

func TestBaseConversion(t *testing.T) {
	cfg := config.New()
	got := compileAndRun(t, cfg, "obase = 16\n255\n")
	if got != "FF" {
		t.Errorf("255 in base 16 = %q, want FF", got)
	}

	cfg2 := config.New()
	got2 := compileAndRun(t, cfg2, "obase = 10\nibase = 16\nFF\n")
	if got2 != "255" {
		t.Errorf("FF (ibase 16) in base 10 = %q, want 255", got2)
	}
}

func TestSquareRoot(t *testing.T) {
	cfg := config.New()
	got := compileAndRun(t, cfg, "scale = 50\nsqrt(2)\n")
	if !strings.HasPrefix(got, "1.41421356") {
		t.Errorf("sqrt(2) to scale 50 = %q, want prefix 1.41421356", got)
	}
	if len(got) < 52 {
		t.Errorf("sqrt(2) to scale 50 too short: %q", got)
	}
}

func TestRecursiveFunction(t *testing.T) {
	cfg := config.New()
	src := "define f(n){ if(n<2) return n; return f(n-1)+f(n-2); }\nf(10)\n"
	got := compileAndRun(t, cfg, src)
	if got != "55" {
		t.Errorf("f(10) = %q, want 55", got)
	}
}

func TestArithmeticAndAssignment(t *testing.T) {
	cfg := config.New()
	got := compileAndRun(t, cfg, "x = 3 + 4 * 2\nx\n")
	if got != "11" {
		t.Errorf("3+4*2 = %q, want 11", got)
	}
}

func TestForLoopAccumulates(t *testing.T) {
	cfg := config.New()
	src := "s = 0\nfor (i = 1; i <= 5; i++) s += i\ns\n"
	got := compileAndRun(t, cfg, src)
	if got != "15" {
		t.Errorf("sum 1..5 = %q, want 15", got)
	}
}

func TestArrayCompoundAssign(t *testing.T) {
	cfg := config.New()
	src := "a[2] = 10\na[2] += 5\na[2]\n"
	got := compileAndRun(t, cfg, src)
	if got != "15" {
		t.Errorf("a[2] after += = %q, want 15", got)
	}
}

func TestPostIncrement(t *testing.T) {
	cfg := config.New()
	got := compileAndRun(t, cfg, "x = 5\nx++\nx\n")
	want := "5\n6"
	if got != want {
		t.Errorf("x++ then x = %q, want %q", got, want)
	}
}

func TestPowerRightAssociativeAndUnaryMinus(t *testing.T) {
	cfg := config.New()
	got := compileAndRun(t, cfg, "-2^2\n")
	if got != "-4" {
		t.Errorf("-2^2 = %q, want -4", got)
	}
}
