// Package parser compiles BC source directly into bytecode.Function code,
// without building an intermediate tree: the same role robpike.io/ivy's
// parse.Parser plays, reshaped so each grammar rule emits instructions as it
// recognizes them rather than returning a value.Expr for a later Eval pass.
//
// Token buffering (next/peek, curTok/peekTok, Loc/errorf) follows
// parse.Parser (_examples/robpike-ivy/parse/parse.go) closely. Unlike ivy,
// errorf returns a *bcerr.Error instead of panicking: this module propagates
// errors as values all the way up (internal/bcerr's stated design). No
// layer of this module, the REPL included, recovers from a panic.
package parser

import (
	"strconv"
	"strings"

	"github.com/blinksh/bc/internal/bcerr"
	"github.com/blinksh/bc/internal/bytecode"
	"github.com/blinksh/bc/internal/config"
	"github.com/blinksh/bc/internal/env"
	"github.com/blinksh/bc/internal/lexer"
	"github.com/blinksh/bc/internal/token"
)

// loopCtx records the jump targets `break` and `continue` resolve to inside
// one enclosing while/for loop.
type loopCtx struct {
	breakLabel    int
	continueLabel int
}

// Parser holds the state needed to compile one bc token stream: the lexer
// feeding it, the Environment it interns names and constants into, and the
// Function currently receiving emitted instructions (the top-level line, or
// a function body while a `define` is being compiled).
type Parser struct {
	lex *lexer.Lexer
	cfg *config.Config
	env *env.Environment

	fn        *bytecode.Function
	loopStack []loopCtx
	fnDepth   int // >0 while compiling a define body; gates auto-print to main only

	fileName string
	lineNum  int
	peekTok  token.Token
	havePeek bool
	curTok   token.Token
	// lineEnded is set when CompileLine stops at a newline: the token after
	// it is read by the next CompileLine call, not before, so a Parser built
	// afresh for the next line still sees that line's first token.
	lineEnded bool

	err *bcerr.Error
}

// New returns a Parser ready to compile tokens from lex into fn.
func New(cfg *config.Config, e *env.Environment, fileName string, lex *lexer.Lexer, fn *bytecode.Function) *Parser {
	p := &Parser{lex: lex, cfg: cfg, env: e, fn: fn, fileName: fileName}
	p.next()
	return p
}

// next and peek buffer one token of lookahead. The lexer closes Tokens
// instead of emitting an explicit EOF token, so a receive past the last
// real token yields the zero Token{} — whose Type is token.EOF by
// construction — which is exactly the sentinel CompileLine checks for.
func (p *Parser) next() token.Token {
	var tok token.Token
	if p.havePeek {
		tok = p.peekTok
		p.havePeek = false
	} else {
		tok = <-p.lex.Tokens
	}
	p.curTok = tok
	if tok.Type != token.Newline {
		p.lineNum = tok.Line
	}
	return tok
}

func (p *Parser) peek() token.Token {
	if p.havePeek {
		return p.peekTok
	}
	p.peekTok = <-p.lex.Tokens
	p.havePeek = true
	return p.peekTok
}

// Loc returns the current input location in the form name:line, for error
// messages raised above errorf's own call site.
func (p *Parser) Loc() string {
	return p.fileName + ":" + strconv.Itoa(p.lineNum)
}

// errorf flushes the remainder of the current line (so a later CompileLine call
// starts clean) and returns the *bcerr.Error describing the failure. It
// never panics: every caller threads this return value back up instead.
func (p *Parser) errorf(format string, args ...interface{}) *bcerr.Error {
	for p.curTok.Type != token.Newline && p.curTok.Type != token.EOF {
		p.next()
	}
	return bcerr.New(bcerr.Parse, format, args...).WithLine(p.lineNum)
}

// CompileLine compiles one top-level line of bc source (which may hold
// several ';'-separated statements, or a full `define` block spanning
// several physical lines) into fn, stopping at the line's closing newline or
// at EOF. It returns false once the token stream is exhausted.
func (p *Parser) CompileLine() (more bool, err *bcerr.Error) {
	if p.lineEnded {
		p.lineEnded = false
		p.next()
	}
	for {
		switch p.curTok.Type {
		case token.EOF:
			return false, nil
		case token.Error:
			return false, p.errorf("%s", p.curTok.Text)
		case token.Newline:
			p.lineEnded = true
			return true, nil
		default:
			if err := p.parseStatement(); err != nil {
				return false, err
			}
		}
	}
}

// Warnings surfaces any POSIX-mode warnings the underlying lexer collected.
func (p *Parser) Warnings() []string {
	return p.lex.Warnings()
}

// CompileSource compiles a standalone string of bc source into a fresh
// anonymous function and returns its index. Its signature matches
// vm.VM.Compile; no opcode of the VM calls that hook.
func CompileSource(cfg *config.Config, src string, e *env.Environment) (int, *bcerr.Error) {
	fnIdx := e.NewAnonFunc()
	fn := e.Functions[fnIdx]
	lex := lexer.NewBC(cfg, "<read>", strings.NewReader(src))
	p := New(cfg, e, "<read>", lex, fn)
	for {
		more, err := p.CompileLine()
		if err != nil {
			return 0, err
		}
		if !more {
			break
		}
	}
	return fnIdx, nil
}
