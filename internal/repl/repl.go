// Package repl drives one bc or dc source stream to completion: it owns
// the shared lexer/Environment/VM triple and alternates compiling one
// top-level line with executing it, the way §2 of the spec describes BC
// and DC both doing ("the parser compiles one top-level statement ... and
// hands it to the VM before requesting the next token"). This plays the
// role run.Run plays for ivy (_examples/robpike-ivy/run/run.go): factored
// out of main so cmd/bc and cmd/dc can both call it, and so it can run
// over a script file or an interactive terminal without any other change.
package repl

import (
	"fmt"
	"io"

	"github.com/blinksh/bc/internal/bcerr"
	"github.com/blinksh/bc/internal/bytecode"
	"github.com/blinksh/bc/internal/config"
	"github.com/blinksh/bc/internal/env"
	"github.com/blinksh/bc/internal/lexer"
	"github.com/blinksh/bc/internal/vm"
)

// LineCompiler compiles the next top-level line of source from lex into fn
// and reports whether more input remains. BC and DC each supply their own
// (internal/parser.Parser and internal/dcparser.Parser have incompatible
// construction needs — BC rebuilds a Parser per line to get one token of
// lookahead primed, DC does not — so Driver only depends on this closure,
// not on either concrete type).
type LineCompiler func(lex *lexer.Lexer, e *env.Environment, fn *bytecode.Function) (more bool, err *bcerr.Error)

// Driver runs one source stream (a script file or an interactive
// terminal) against a shared Environment and VM until EOF or a fatal
// error.
type Driver struct {
	Cfg     *config.Config
	Env     *env.Environment
	VM      *vm.VM
	Lex     *lexer.Lexer
	Compile LineCompiler

	Out    io.Writer
	ErrOut io.Writer
	Prompt string
	// Interactive suppresses the non-interactive exit-1-on-error contract
	// (spec §7: interactive mode reports and keeps reading; non-interactive
	// mode exits after the current file).
	Interactive bool

	toolName string
	warnSeen int
}

// New returns a Driver ready to run. toolName labels diagnostics ("bc" or
// "dc" error: ...), per spec §7's `<tool> error: <message>` format.
func New(toolName string, cfg *config.Config, e *env.Environment, m *vm.VM, lex *lexer.Lexer, compile LineCompiler, out, errOut io.Writer, prompt string, interactive bool) *Driver {
	return &Driver{
		Cfg: cfg, Env: e, VM: m, Lex: lex, Compile: compile,
		Out: out, ErrOut: errOut, Prompt: prompt, Interactive: interactive,
		toolName: toolName,
	}
}

// Run compiles and executes lines until the source is exhausted or a
// fatal error ends a non-interactive run. It reports whether the whole
// stream completed without error; in Interactive mode errors are reported
// but do not make it return false (the process's eventual exit code is 0
// iff every Run call across every input source returns true).
func (d *Driver) Run() (success bool) {
	success = true
	for {
		if d.Interactive {
			fmt.Fprint(d.Out, d.Prompt)
		}

		fnIdx := d.Env.NewAnonFunc()
		fn := d.Env.Functions[fnIdx]

		more, err := d.Compile(d.Lex, d.Env, fn)
		d.flushWarnings()

		if err != nil {
			d.reportError(err)
			if !d.Interactive {
				success = false
			}
			if !more {
				return success
			}
			continue
		}

		if len(fn.Code) > 0 {
			if rerr := d.VM.Exec(fnIdx); rerr != nil {
				if isQuit(rerr) {
					return success
				}
				d.reportError(rerr)
				if !d.Interactive {
					success = false
				}
			}
		}

		if !more {
			return success
		}
	}
}

// reportError prints spec §7's `<tool> error: <message>` diagnostic,
// appending `:<line>` when a source line is known. It uses err.Msg rather
// than err.Error() since the latter already prepends its own "<kind>
// error:" prefix.
func (d *Driver) reportError(err *bcerr.Error) {
	if err.Line > 0 {
		fmt.Fprintf(d.ErrOut, "%s error: %s :%d\n", d.toolName, err.Msg, err.Line)
	} else {
		fmt.Fprintf(d.ErrOut, "%s error: %s\n", d.toolName, err.Msg)
	}
}

// isQuit reports whether err came from the `quit`/`halt`/dc 'q' opcodes:
// these end the run cleanly rather than being reported as failures (bc's
// `quit` statement and dc's `q` command are normal ways to stop, not
// errors).
func isQuit(err *bcerr.Error) bool {
	return err != nil && (err.Msg == "quit" || err.Msg == "halt")
}

func (d *Driver) flushWarnings() {
	all := d.Lex.Warnings()
	for _, w := range all[d.warnSeen:] {
		fmt.Fprintf(d.ErrOut, "%s warning: %s\n", d.toolName, w)
	}
	d.warnSeen = len(all)
}
