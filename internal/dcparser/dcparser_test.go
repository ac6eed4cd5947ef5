package dcparser

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

func compileAndRun(t *testing.T, src string) string {
	t.Helper()
	cfg := config.New()
	e := env.New()
	var out bytes.Buffer
	m := vm.New(e, cfg, &out)

	lex := lexer.NewDC(cfg, "<test>", bufio.NewReader(strings.NewReader(src)))
	p := New(cfg, e)
	for {
		fnIdx := e.NewAnonFunc()
		fn := e.Functions[fnIdx]
		more, err := p.CompileLine(lex, fn)
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

func TestBasicArithmetic(t *testing.T) {
	got := compileAndRun(t, "3 4 + p\n")
	if got != "7" {
		t.Errorf("3 4 + p = %q, want 7", got)
	}
}

func TestStackOps(t *testing.T) {
	got := compileAndRun(t, "5 d * p\n")
	if got != "25" {
		t.Errorf("5 d * p = %q, want 25", got)
	}
}

func TestRegisterStoreLoad(t *testing.T) {
	got := compileAndRun(t, "7 sa la p\n")
	if got != "7" {
		t.Errorf("7 sa la p = %q, want 7", got)
	}
}

// TestConditionalExecuteHolds is spec §8 scenario 6: [1p]sa 2 3 >a prints 1.
func TestConditionalExecuteHolds(t *testing.T) {
	got := compileAndRun(t, "[1p]sa 2 3 >a\n")
	if got != "1" {
		t.Errorf("[1p]sa 2 3 >a = %q, want 1", got)
	}
}

// TestConditionalExecuteFails is the same scenario with operands swapped:
// the condition (2 < 3 when read back as a>b) no longer holds, so the
// register's procedure never runs and nothing is printed.
func TestConditionalExecuteFails(t *testing.T) {
	got := compileAndRun(t, "[1p]sa 3 2 >a\n")
	if got != "" {
		t.Errorf("[1p]sa 3 2 >a = %q, want no output", got)
	}
}

func TestArrayStoreLoad(t *testing.T) {
	got := compileAndRun(t, "10 2:r 2;r p\n")
	if got != "10" {
		t.Errorf("10 2:r 2;r p = %q, want 10", got)
	}
}
