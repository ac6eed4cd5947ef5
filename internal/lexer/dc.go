package lexer

import (
	"io"

	"github.com/blinksh/bc/internal/config"
	"github.com/blinksh/bc/internal/token"
)

// registerCommands lists the one-character DC commands that consume the
// following byte as a register name rather than treating it as the next
// command, per the classical dc register-addressing convention (s, l, :, ;,
// the uppercase S and L, and the conditional-execute commands <, > and =).
var registerCommands = map[byte]bool{
	's': true, 'S': true, 'l': true, 'L': true,
	':': true, ';': true,
	'<': true, '>': true, '=': true,
}

// NewDC returns a Lexer that scans DC's reverse-Polish, one-character-per-
// command syntax: numeric literals (leading '_' for a negative literal,
// since '-' is the subtraction command), '[' ... ']' bracketed strings used
// both as print literals and as anonymous procedure bodies, '#' comments,
// and register-consuming commands.
func NewDC(cfg *config.Config, name string, r io.ByteReader) *Lexer {
	return newLexer(cfg, name, r, dcLexAny)
}

func dcLexAny(l *Lexer) stateFn {
	switch r := l.next(); {
	case r == eof:
		return nil
	case r == '\n':
		l.emit(token.Newline)
		return dcLexAny
	case isSpace(r):
		l.ignore()
		return dcLexAny
	case r == '#':
		return dcLexComment
	case r == '[':
		return dcLexString
	case r == '_':
		l.backup()
		return dcLexNumber
	case r == '.' || (r >= '0' && r <= '9'):
		l.backup()
		return dcLexNumber
	case r == '!' && isCondByte(l.peek()):
		l.next() // consume the <, > or = following '!' (negated conditional-execute)
		l.emit(token.DCCommand)
		return dcLexRegisterName
	case registerCommands[byte(r)]:
		l.emit(token.DCCommand)
		return dcLexRegisterName
	default:
		l.emit(token.DCCommand)
		return dcLexAny
	}
}

func isCondByte(r rune) bool {
	return r == '<' || r == '>' || r == '='
}

func dcLexComment(l *Lexer) stateFn {
	for {
		r := l.next()
		if r == eof || r == '\n' {
			break
		}
	}
	l.ignore()
	return dcLexAny
}

// dcLexString scans a bracketed string, tracking nesting depth since DC
// strings may contain balanced '[' ']' pairs (used for nested quoted
// procedure bodies passed to 'x').
func dcLexString(l *Lexer) stateFn {
	depth := 1
	for {
		switch l.next() {
		case eof:
			return l.errorf("unterminated [ string")
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				l.emit(token.DCString)
				return dcLexAny
			}
		}
	}
}

// dcLexNumber scans a DC numeric literal. '_' is the negative-literal
// prefix (dc has no unary-minus operator, so a bare '-' is always the
// subtraction command); it is part of the Number token's text so the
// parser can strip it when it builds the Number. A command letter may
// follow the digits directly ("1p" is the number 1 and the command p).
func dcLexNumber(l *Lexer) stateFn {
	l.accept("_")
	l.acceptRun("0123456789ABCDEF")
	if l.accept(".") {
		l.acceptRun("0123456789ABCDEF")
	}
	l.emit(token.Number)
	return dcLexAny
}

// dcLexRegisterName consumes exactly one byte as the register name for the
// command just emitted (s, S, l, L, :, ;, <, >, =, !<, !>, !=).
func dcLexRegisterName(l *Lexer) stateFn {
	if l.next() == eof {
		return l.errorf("missing register name")
	}
	l.emit(token.DCRegister)
	return dcLexAny
}
