// Package dcparser compiles DC's reverse-Polish command language into the
// same bytecode.Function target the bc compiler (internal/parser) emits
// for. DC needs no precedence climbing or lookahead worth the name: almost
// every token maps to one opcode as it is read, the way original_source's
// dc/parse.c (src/dc/parse.c) drives its one-pass command dispatch. The one
// piece of real recursion is a '[' ... ']' literal, which is lexed and
// compiled as its own anonymous Function so it can later be invoked with
// CallInd or DC's conditional-execute commands.
package dcparser

import (
	"bufio"
	"strings"

	"github.com/blinksh/bc/internal/bcerr"
	"github.com/blinksh/bc/internal/bytecode"
	"github.com/blinksh/bc/internal/config"
	"github.com/blinksh/bc/internal/env"
	"github.com/blinksh/bc/internal/lexer"
	"github.com/blinksh/bc/internal/number"
	"github.com/blinksh/bc/internal/token"
)

// Parser holds the shared config/environment a DC compile needs; unlike
// the bc Parser it carries no per-call token buffer, since nothing in DC's
// grammar requires lookahead beyond "the token right after a
// register-taking command is that register's name", which is read
// synchronously when needed.
type Parser struct {
	cfg *config.Config
	env *env.Environment
}

// New returns a Parser sharing cfg and e with the rest of the program.
func New(cfg *config.Config, e *env.Environment) *Parser {
	return &Parser{cfg: cfg, env: e}
}

// CompileLine compiles one line of DC source (up to and including its
// terminating newline) from lex into fn, leaving the lexer's token channel
// positioned to resume with the next line. It reports false once the
// stream is exhausted.
func (p *Parser) CompileLine(lex *lexer.Lexer, fn *bytecode.Function) (more bool, err *bcerr.Error) {
	return p.compileUntil(lex, fn, true)
}

// CompileSource lexes and compiles a standalone DC program into a fresh
// anonymous Function, and returns its index. Its signature matches
// vm.VM.Compile; DC's '?' does not use it (ReadOne parses the line it reads
// as a single number).
func CompileSource(cfg *config.Config, src string, e *env.Environment) (int, *bcerr.Error) {
	p := New(cfg, e)
	return p.compileBracket(src)
}

func (p *Parser) compileUntil(lex *lexer.Lexer, fn *bytecode.Function, stopAtNewline bool) (more bool, err *bcerr.Error) {
	for {
		tok, ok := <-lex.Tokens
		if !ok {
			return false, nil
		}
		switch tok.Type {
		case token.Error:
			return false, bcerr.New(bcerr.Lex, "%s", tok.Text).WithLine(tok.Line)
		case token.Newline:
			if stopAtNewline {
				return true, nil
			}
		default:
			if cerr := p.compileOne(lex, tok, fn); cerr != nil {
				return false, cerr
			}
		}
	}
}

// compileAll drains lex to its end, used for a bracket literal's body: it
// is read out of its own private lexer over just that literal's text, so
// there is no later line to resume.
func (p *Parser) compileAll(lex *lexer.Lexer, fn *bytecode.Function) *bcerr.Error {
	_, err := p.compileUntil(lex, fn, false)
	return err
}

func (p *Parser) compileOne(lex *lexer.Lexer, tok token.Token, fn *bytecode.Function) *bcerr.Error {
	switch tok.Type {
	case token.Number:
		text := tok.Text
		neg := strings.HasPrefix(text, "_")
		if neg {
			text = text[1:]
		}
		n, nerr := number.Parse(text, p.cfg.Ibase())
		if nerr != nil {
			return nerr
		}
		if neg {
			n = n.Neg()
		}
		fn.EmitOperand(bytecode.PushConst, p.env.AddConstant(n))
		return nil

	case token.DCString:
		inner := tok.Text[1 : len(tok.Text)-1]
		subIdx, err := p.compileBracket(inner)
		if err != nil {
			return err
		}
		fn.EmitOperand(bytecode.PushProc, p.env.AddProc(tok.Text, subIdx))
		return nil

	case token.DCCommand:
		return p.compileCommand(lex, tok, fn)

	default:
		return bcerr.New(bcerr.Parse, "unexpected %s in dc program", tok).WithLine(tok.Line)
	}
}

// compileBracket compiles a [...] literal's inner text (brackets already
// stripped) as its own program, over a private lexer instance, and returns
// the Function index it compiled to.
func (p *Parser) compileBracket(src string) (int, *bcerr.Error) {
	fnIdx := p.env.NewAnonFunc()
	sub := p.env.Functions[fnIdx]
	r := bufio.NewReader(strings.NewReader(src))
	lex := lexer.NewDC(p.cfg, "", r)
	if err := p.compileAll(lex, sub); err != nil {
		return 0, err
	}
	return fnIdx, nil
}

var registerCmds = map[string]bool{
	"s": true, "S": true, "l": true, "L": true,
	":": true, ";": true,
	"<": true, ">": true, "=": true,
	"!<": true, "!>": true, "!=": true,
}

func (p *Parser) compileCommand(lex *lexer.Lexer, tok token.Token, fn *bytecode.Function) *bcerr.Error {
	cmd := tok.Text
	var regName string
	if registerCmds[cmd] {
		regTok, ok := <-lex.Tokens
		if !ok || regTok.Type != token.DCRegister {
			return bcerr.New(bcerr.Parse, "%q expects a register name", cmd).WithLine(tok.Line)
		}
		regName = regTok.Text
	}

	switch cmd {
	case "+":
		fn.Emit(bytecode.Add)
	case "-":
		fn.Emit(bytecode.Sub)
	case "*":
		fn.Emit(bytecode.Mul)
	case "/":
		fn.Emit(bytecode.Div)
	case "%":
		fn.Emit(bytecode.Mod)
	case "~":
		fn.Emit(bytecode.DivMod)
	case "^":
		fn.Emit(bytecode.Pow)
	case "|":
		fn.Emit(bytecode.ModExp)
	case "v":
		fn.Emit(bytecode.Sqrt)

	case "d":
		fn.Emit(bytecode.Dup)
	case "r":
		fn.Emit(bytecode.Swap)
	case "c":
		fn.Emit(bytecode.ClearAll)

	case "p":
		fn.Emit(bytecode.PrintPeek)
	case "n":
		fn.Emit(bytecode.PrintPop)
	case "P":
		fn.Emit(bytecode.PrintBytes)
	case "f":
		fn.Emit(bytecode.PrintAll)

	case "x":
		fn.Emit(bytecode.CallInd)

	case "Z":
		fn.Emit(bytecode.Length)
	case "X":
		fn.Emit(bytecode.ScaleOf)
	case "z":
		fn.Emit(bytecode.StackLen)
	case "a":
		fn.Emit(bytecode.Asciify)

	case "i":
		fn.Emit(bytecode.StoreIbase)
	case "I":
		fn.Emit(bytecode.LoadIbase)
	case "o":
		fn.Emit(bytecode.StoreObase)
	case "O":
		fn.Emit(bytecode.LoadObase)
	case "k":
		fn.Emit(bytecode.StoreScale)
	case "K":
		fn.Emit(bytecode.LoadScale)

	case "q":
		fn.EmitOperand(bytecode.Quit, 0)
	case "Q":
		// dc 'Q': pop n at runtime and unwind n call frames (NQUIT),
		// rather than exiting unconditionally like 'q'.
		fn.EmitOperand(bytecode.Quit, 1)
	case "?":
		fn.Emit(bytecode.ReadOne)

	case "s":
		fn.EmitOperand(bytecode.StoreReg, p.env.InternVar(regName))
	case "S":
		fn.EmitOperand(bytecode.StoreRegTop, p.env.InternVar(regName))
	case "l":
		fn.EmitOperand(bytecode.LoadReg, p.env.InternVar(regName))
	case "L":
		fn.EmitOperand(bytecode.LoadRegPop, p.env.InternVar(regName))

	case ":":
		// "value index :r": the index is on top, but StoreArray expects
		// [index, value] with value on top, so swap before storing.
		fn.Emit(bytecode.Swap)
		fn.EmitOperand(bytecode.StoreArray, p.env.InternVar(regName))
	case ";":
		fn.EmitOperand(bytecode.LoadArray, p.env.InternVar(regName))

	case "<":
		fn.EmitOperand(bytecode.CallRegIfLt, p.env.InternVar(regName))
	case ">":
		fn.EmitOperand(bytecode.CallRegIfGt, p.env.InternVar(regName))
	case "=":
		fn.EmitOperand(bytecode.CallRegIfEq, p.env.InternVar(regName))
	case "!<":
		fn.EmitOperand(bytecode.CallRegIfGe, p.env.InternVar(regName))
	case "!>":
		fn.EmitOperand(bytecode.CallRegIfLe, p.env.InternVar(regName))
	case "!=":
		fn.EmitOperand(bytecode.CallRegIfNe, p.env.InternVar(regName))

	default:
		return bcerr.New(bcerr.Parse, "unsupported dc command %q", cmd).WithLine(tok.Line)
	}
	return nil
}
