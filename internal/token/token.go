// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package token defines the token stream shared by the BC and DC lexers,
// the same way robpike.io/ivy/scan defines a single Type enumeration used
// by its one scanner. BC and DC each only ever produce a subset of these.
package token

import "fmt"

// Pos is a 0-based byte offset into the current line.
type Pos int

// Type identifies the kind of a Token.
type Type int

const (
	EOF Type = iota
	Error
	Newline

	Identifier
	Number
	String

	Plus
	Minus
	Star
	Slash
	Percent
	Caret

	PlusEq
	MinusEq
	StarEq
	SlashEq
	PercentEq
	CaretEq
	Assign

	Eq
	Le
	Ge
	Ne
	Lt
	Gt

	Not
	AndAnd
	OrOr

	Inc
	Dec

	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Comma
	Semicolon

	KwIf
	KwElse
	KwWhile
	KwFor
	KwBreak
	KwContinue
	KwReturn
	KwPrint
	KwAuto
	KwDefine
	KwHalt
	KwQuit
	KwLimits
	KwRead
	KwLength
	KwScale
	KwSqrt
	KwIbase
	KwObase
	KwLast

	// DC-only single-character commands that do not fit the BC operator
	// set above; the DC lexer maps raw bytes to these directly.
	DCCommand
	DCRegister // a register name consumed by a register-taking DC command
	DCString   // DC's [ ... ] bracketed string literal
)

var names = map[Type]string{
	EOF:        "EOF",
	Error:      "error",
	Newline:    "newline",
	Identifier: "identifier",
	Number:     "number",
	String:     "string",
	Plus:       "+", Minus: "-", Star: "*", Slash: "/", Percent: "%", Caret: "^",
	PlusEq: "+=", MinusEq: "-=", StarEq: "*=", SlashEq: "/=", PercentEq: "%=", CaretEq: "^=",
	Assign: "=",
	Eq:     "==", Le: "<=", Ge: ">=", Ne: "!=", Lt: "<", Gt: ">",
	Not: "!", AndAnd: "&&", OrOr: "||",
	Inc: "++", Dec: "--",
	LParen: "(", RParen: ")", LBrace: "{", RBrace: "}", LBracket: "[", RBracket: "]",
	Comma: ",", Semicolon: ";",
	KwIf: "if", KwElse: "else", KwWhile: "while", KwFor: "for",
	KwBreak: "break", KwContinue: "continue", KwReturn: "return", KwPrint: "print",
	KwAuto: "auto", KwDefine: "define", KwHalt: "halt", KwQuit: "quit", KwLimits: "limits",
	KwRead: "read", KwLength: "length", KwScale: "scale", KwSqrt: "sqrt",
	KwIbase: "ibase", KwObase: "obase", KwLast: "last",
	DCCommand: "dc-command", DCRegister: "dc-register", DCString: "dc-string",
}

func (t Type) String() string {
	if s, ok := names[t]; ok {
		return s
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Keywords maps a BC identifier spelling to its keyword Type, mirroring
// scan.operatorWord's "check a fixed table before falling back to a user
// identifier" approach.
var Keywords = map[string]Type{
	"if": KwIf, "else": KwElse, "while": KwWhile, "for": KwFor,
	"break": KwBreak, "continue": KwContinue, "return": KwReturn, "print": KwPrint,
	"auto": KwAuto, "define": KwDefine, "halt": KwHalt, "quit": KwQuit, "limits": KwLimits,
	"read": KwRead, "length": KwLength, "scale": KwScale, "sqrt": KwSqrt,
	"ibase": KwIbase, "obase": KwObase, "last": KwLast,
}

// NonPosixKeywords names keywords this implementation adds beyond strict
// POSIX bc; using them triggers a POSIX warning (spec §4.B).
var NonPosixKeywords = map[string]bool{
	"read": true, "halt": true, "limits": true,
}

// Token is one lexical item: its Type, the literal text it came from (used
// for identifiers, numbers, strings and DC register names), and the
// 1-based source line it started on.
type Token struct {
	Type Type
	Text string
	Line int
}

func (t Token) String() string {
	if len(t.Text) > 20 {
		return fmt.Sprintf("%s %.20q...", t.Type, t.Text)
	}
	return fmt.Sprintf("%s %q", t.Type, t.Text)
}
