// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lexer implements the BC and DC scanners. Both share one
// state-function/channel engine, the same way robpike.io/ivy/scan runs a
// single Scanner; BC and DC each supply their own initial stateFn and
// character tables because their token languages differ (BC is
// C-like infix, DC is one-character-per-command).
package lexer

import (
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/blinksh/bc/internal/config"
	"github.com/blinksh/bc/internal/token"
)

const eof = -1

// stateFn represents the state of the lexer as a function that returns the
// next state, exactly as in scan.go's stateFn.
type stateFn func(*Lexer) stateFn

// Lexer holds the state shared by the BC and DC scanners.
type Lexer struct {
	Tokens chan token.Token

	cfg  *config.Config
	name string
	r    io.ByteReader
	done bool

	buf   []byte
	input string

	state stateFn
	pos   token.Pos
	start token.Pos
	width token.Pos
	line  int

	warnings []string
}

// newLexer builds the engine common to BC and DC; the caller supplies the
// initial stateFn and kicks off the run goroutine.
func newLexer(cfg *config.Config, name string, r io.ByteReader, initial stateFn) *Lexer {
	l := &Lexer{
		Tokens: make(chan token.Token),
		cfg:    cfg,
		name:   name,
		r:      r,
		line:   1,
	}
	go l.run(initial)
	return l
}

func (l *Lexer) run(initial stateFn) {
	for l.state = initial; l.state != nil; {
		l.state = l.state(l)
	}
	close(l.Tokens)
}

// Warnings returns the POSIX-mode warnings accumulated so far (spec §4.B:
// each fires once per occurrence, not once per run).
func (l *Lexer) Warnings() []string {
	return l.warnings
}

func (l *Lexer) loadLine() {
	l.buf = l.buf[:0]
	for {
		c, err := l.r.ReadByte()
		if err != nil {
			l.done = true
			break
		}
		l.buf = append(l.buf, c)
		if c == '\n' {
			break
		}
	}
	l.input = l.input[l.start:l.pos] + string(l.buf)
	l.pos -= l.start
	l.start = 0
}

func (l *Lexer) next() rune {
	if !l.done && int(l.pos) == len(l.input) {
		l.loadLine()
	}
	if int(l.pos) >= len(l.input) {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.width = token.Pos(w)
	l.pos += l.width
	return r
}

func (l *Lexer) peek() rune {
	r := l.next()
	l.backup()
	return r
}

func (l *Lexer) backup() {
	l.pos -= l.width
}

func (l *Lexer) emit(t token.Type) {
	s := l.input[l.start:l.pos]
	if l.cfg.Debug("tokens") {
		fmt.Printf("emit %s\n", token.Token{Type: t, Text: s, Line: l.line})
	}
	l.Tokens <- token.Token{Type: t, Text: s, Line: l.line}
	if t == token.Newline {
		l.line++
	}
	l.start = l.pos
}

func (l *Lexer) ignore() {
	if l.input[l.start:l.pos] == "\n" {
		l.line++
	}
	l.start = l.pos
}

func (l *Lexer) accept(valid string) bool {
	if strings.IndexRune(valid, l.next()) >= 0 {
		return true
	}
	l.backup()
	return false
}

func (l *Lexer) acceptRun(valid string) {
	for strings.IndexRune(valid, l.next()) >= 0 {
	}
	l.backup()
}

// errorf surfaces an Error token and halts the state machine. Unlike
// scan.go's errorf (which returns to lexAny and keeps scanning after a bad
// token), a lex error here is always fatal: bc/dc compile one statement or
// function at a time, and there is nothing useful to resynchronize on.
func (l *Lexer) errorf(format string, args ...interface{}) stateFn {
	l.Tokens <- token.Token{Type: token.Error, Text: fmt.Sprintf(format, args...), Line: l.line}
	return nil
}

// warnPosix records a non-fatal POSIX-mode warning without interrupting the
// token stream (spec §4.B: warn once per occurrence, keep lexing).
func (l *Lexer) warnPosix(format string, args ...interface{}) {
	if l.cfg.PosixStrict() {
		l.warnings = append(l.warnings, fmt.Sprintf(format, args...))
	}
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t'
}

func isEndOfLine(r rune) bool {
	return r == '\r' || r == '\n'
}

func isDigitOrLetter(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'A' && r <= 'F')
}

func isAlphaNumericLower(r rune) bool {
	return r == '_' || unicode.IsLower(r) || unicode.IsDigit(r)
}

// scanNumber scans a bc numeric literal: digits 0-9 and A-F (valid in any
// ibase up to 16), at most one '.'. The caller has already decided this is
// the start of a number. It reports false when the literal runs straight
// into a lowercase letter, a digit or '_'.
func (l *Lexer) scanNumber() bool {
	l.acceptRun("0123456789ABCDEF")
	if l.accept(".") {
		l.acceptRun("0123456789ABCDEF")
	}
	if isAlphaNumericLower(l.peek()) {
		return false
	}
	return true
}
