package lexer

import (
	"io"
	"unicode"

	"github.com/blinksh/bc/internal/config"
	"github.com/blinksh/bc/internal/token"
)

// NewBC returns a Lexer that scans BC's C-like infix syntax: keywords,
// identifiers, numeric literals (with backslash-newline splicing inside a
// literal per spec §4.B), double-quoted strings, /* */ and # comments, and
// the compound-assignment/relational/logical operator set.
func NewBC(cfg *config.Config, name string, r io.ByteReader) *Lexer {
	return newLexer(cfg, name, r, bcLexAny)
}

func bcLexAny(l *Lexer) stateFn {
	switch r := l.next(); {
	case r == eof:
		return nil
	case r == '\n':
		l.emit(token.Newline)
		return bcLexAny
	case isSpace(r):
		l.ignore()
		return bcLexAny
	case r == '\\' && l.peek() == '\n':
		// Backslash-newline inside whitespace: just a continuation, drop both.
		l.next()
		l.ignore()
		return bcLexAny
	case r == '#':
		l.warnPosix("# comments are a non-POSIX extension")
		return bcLexLineComment
	case r == '/' && l.peek() == '*':
		l.next()
		return bcLexBlockComment
	case r == '"':
		return bcLexString
	case r == '.' || (r >= '0' && r <= '9') || (r >= 'A' && r <= 'F'):
		l.backup()
		return bcLexNumber
	case isIdentStart(r):
		l.backup()
		return bcLexIdentifier
	case r == '+':
		switch l.peek() {
		case '+':
			l.next()
			l.emit(token.Inc)
		case '=':
			l.next()
			l.emit(token.PlusEq)
		default:
			l.emit(token.Plus)
		}
		return bcLexAny
	case r == '-':
		switch l.peek() {
		case '-':
			l.next()
			l.emit(token.Dec)
		case '=':
			l.next()
			l.emit(token.MinusEq)
		default:
			l.emit(token.Minus)
		}
		return bcLexAny
	case r == '*':
		return bcLexCompound(l, token.Star, token.StarEq)
	case r == '/':
		return bcLexCompound(l, token.Slash, token.SlashEq)
	case r == '%':
		return bcLexCompound(l, token.Percent, token.PercentEq)
	case r == '^':
		return bcLexCompound(l, token.Caret, token.CaretEq)
	case r == '=':
		if l.peek() == '=' {
			l.next()
			l.emit(token.Eq)
		} else {
			l.emit(token.Assign)
		}
		return bcLexAny
	case r == '!':
		switch l.peek() {
		case '=':
			l.next()
			l.emit(token.Ne)
		default:
			l.emit(token.Not)
		}
		return bcLexAny
	case r == '<':
		if l.peek() == '=' {
			l.next()
			l.emit(token.Le)
		} else {
			l.emit(token.Lt)
		}
		return bcLexAny
	case r == '>':
		if l.peek() == '=' {
			l.next()
			l.emit(token.Ge)
		} else {
			l.emit(token.Gt)
		}
		return bcLexAny
	case r == '&':
		if l.peek() == '&' {
			l.next()
			l.emit(token.AndAnd)
			l.warnPosix("&& is a non-POSIX extension")
			return bcLexAny
		}
		return l.errorf("unrecognized character: %#U", r)
	case r == '|':
		if l.peek() == '|' {
			l.next()
			l.emit(token.OrOr)
			l.warnPosix("|| is a non-POSIX extension")
			return bcLexAny
		}
		return l.errorf("unrecognized character: %#U", r)
	case r == '(':
		l.emit(token.LParen)
		return bcLexAny
	case r == ')':
		l.emit(token.RParen)
		return bcLexAny
	case r == '{':
		l.emit(token.LBrace)
		return bcLexAny
	case r == '}':
		l.emit(token.RBrace)
		return bcLexAny
	case r == '[':
		l.emit(token.LBracket)
		return bcLexAny
	case r == ']':
		l.emit(token.RBracket)
		return bcLexAny
	case r == ',':
		l.emit(token.Comma)
		return bcLexAny
	case r == ';':
		l.emit(token.Semicolon)
		return bcLexAny
	default:
		return l.errorf("unrecognized character: %#U", r)
	}
}

// bcLexCompound emits withEq if the operator is immediately followed by
// '=' (forming a compound assignment), otherwise emits plain.
func bcLexCompound(l *Lexer, plain, withEq token.Type) stateFn {
	if l.peek() == '=' {
		l.next()
		l.emit(withEq)
	} else {
		l.emit(plain)
	}
	return bcLexAny
}

func bcLexLineComment(l *Lexer) stateFn {
	for {
		r := l.next()
		if r == eof || r == '\n' {
			break
		}
	}
	l.ignore()
	if l.input != "" {
		l.emitSyntheticNewline()
	}
	return bcLexAny
}

// emitSyntheticNewline re-surfaces the newline a # comment consumed so the
// parser still sees a statement terminator, mirroring lexComment's
// "re-emit a synthetic Newline" trick in scan.go.
func (l *Lexer) emitSyntheticNewline() {
	l.Tokens <- token.Token{Type: token.Newline, Text: "\n", Line: l.line}
	l.line++
}

func bcLexBlockComment(l *Lexer) stateFn {
	for {
		r := l.next()
		if r == eof {
			return l.errorf("unterminated /* comment")
		}
		if r == '*' && l.peek() == '/' {
			l.next()
			break
		}
	}
	l.ignore()
	return bcLexAny
}

func bcLexString(l *Lexer) stateFn {
Loop:
	for {
		switch l.next() {
		case '\\':
			if r := l.next(); r == eof {
				return l.errorf("unterminated string")
			}
		case eof:
			return l.errorf("unterminated string")
		case '"':
			break Loop
		}
	}
	l.emit(token.String)
	return bcLexAny
}

func bcLexNumber(l *Lexer) stateFn {
	if !l.scanNumber() {
		return l.errorf("bad number syntax: %q", l.input[l.start:l.pos])
	}
	l.emit(token.Number)
	return bcLexAny
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLower(r)
}

func bcLexIdentifier(l *Lexer) stateFn {
	for {
		r := l.next()
		if r == '_' || unicode.IsLower(r) || unicode.IsDigit(r) {
			continue
		}
		l.backup()
		break
	}
	word := l.input[l.start:l.pos]
	if kw, ok := token.Keywords[word]; ok {
		if token.NonPosixKeywords[word] {
			l.warnPosix("%s is a non-POSIX extension", word)
		}
		l.emit(kw)
	} else {
		l.emit(token.Identifier)
	}
	return bcLexAny
}
