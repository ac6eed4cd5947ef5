package lexer

import (
	"strings"
	"testing"

	"github.com/blinksh/bc/internal/config"
	"github.com/blinksh/bc/internal/token"
)

func collect(l *Lexer) []token.Token {
	var toks []token.Token
	for tok := range l.Tokens {
		toks = append(toks, tok)
	}
	return toks
}

func typesOf(toks []token.Token) []token.Type {
	types := make([]token.Type, len(toks))
	for i, t := range toks {
		types[i] = t.Type
	}
	return types
}

func TestBCLexExpression(t *testing.T) {
	l := NewBC(config.New(), "test", strings.NewReader("x = 1.5 + y++ * -2\n"))
	toks := collect(l)
	want := []token.Type{
		token.Identifier, token.Assign, token.Number, token.Plus,
		token.Identifier, token.Inc, token.Star, token.Minus, token.Number,
		token.Newline,
	}
	got := typesOf(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestBCLexKeywordsAndCompoundAssign(t *testing.T) {
	l := NewBC(config.New(), "test", strings.NewReader("define f(x) { auto y; y += 2; return y }\n"))
	toks := collect(l)
	found := map[token.Type]bool{}
	for _, tok := range toks {
		found[tok.Type] = true
	}
	for _, want := range []token.Type{token.KwDefine, token.KwAuto, token.PlusEq, token.KwReturn, token.LBrace, token.RBrace} {
		if !found[want] {
			t.Errorf("missing token type %s in %v", want, toks)
		}
	}
}

func TestBCLexLineComment(t *testing.T) {
	l := NewBC(config.New(), "test", strings.NewReader("1 + 2 # a comment\n3\n"))
	toks := collect(l)
	// The comment should collapse to a single Newline between "2" and "3".
	var nums []string
	newlines := 0
	for _, tok := range toks {
		if tok.Type == token.Number {
			nums = append(nums, tok.Text)
		}
		if tok.Type == token.Newline {
			newlines++
		}
	}
	if len(nums) != 3 {
		t.Fatalf("got numbers %v, want 3", nums)
	}
	if newlines != 2 {
		t.Fatalf("got %d newlines, want 2", newlines)
	}
}

func TestBCLexPosixWarning(t *testing.T) {
	cfg := config.New()
	cfg.SetPosixStrict(true)
	l := NewBC(cfg, "test", strings.NewReader("halt\n"))
	collect(l)
	if len(l.Warnings()) == 0 {
		t.Error("expected a POSIX warning for the non-standard 'halt' keyword")
	}
}

func TestDCLexBasic(t *testing.T) {
	l := NewDC(config.New(), "test", strings.NewReader("2 3 + p\n"))
	toks := collect(l)
	want := []token.Type{
		token.Number, token.Number, token.DCCommand, token.DCCommand, token.Newline,
	}
	got := typesOf(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens %v, want %d %v", len(got), got, len(want), want)
	}
}

func TestDCLexRegisterAndString(t *testing.T) {
	l := NewDC(config.New(), "test", strings.NewReader("[hello]sa la p\n"))
	toks := collect(l)
	var sawString, sawStore, sawReg bool
	for _, tok := range toks {
		switch tok.Type {
		case token.DCString:
			sawString = true
			if tok.Text != "[hello]" {
				t.Errorf("string text = %q, want [hello]", tok.Text)
			}
		case token.DCCommand:
			if tok.Text == "s" {
				sawStore = true
			}
		case token.DCRegister:
			if tok.Text == "a" {
				sawReg = true
			}
		}
	}
	if !sawString || !sawStore || !sawReg {
		t.Errorf("missing expected tokens in %v", toks)
	}
}

func TestDCLexNegativeNumber(t *testing.T) {
	l := NewDC(config.New(), "test", strings.NewReader("_3 2 -\n"))
	toks := collect(l)
	if toks[0].Type != token.Number || toks[0].Text != "_3" {
		t.Errorf("first token = %v, want Number _3", toks[0])
	}
}

func TestDCLexNestedString(t *testing.T) {
	l := NewDC(config.New(), "test", strings.NewReader("[a[b]c]\n"))
	toks := collect(l)
	if toks[0].Type != token.DCString || toks[0].Text != "[a[b]c]" {
		t.Errorf("got %v, want nested DCString [a[b]c]", toks[0])
	}
}
