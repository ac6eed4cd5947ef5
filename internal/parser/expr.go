package parser

import (
	"github.com/blinksh/bc/internal/bcerr"
	"github.com/blinksh/bc/internal/bytecode"
	"github.com/blinksh/bc/internal/number"
	"github.com/blinksh/bc/internal/token"
)

// binaryPrec gives each left-associative binary operator's precedence for
// the precedence-climbing loop below; '^' is handled separately since it is
// right-associative and binds tighter than unary minus (POSIX bc's
// "%right '^'" sitting above "%nonassoc UMINUS" in its yacc grammar).
var binaryPrec = map[token.Type]int{
	token.OrOr:     1,
	token.AndAnd:   2,
	token.Eq:       3,
	token.Ne:       3,
	token.Lt:       3,
	token.Le:       3,
	token.Gt:       3,
	token.Ge:       3,
	token.Plus:     4,
	token.Minus:    4,
	token.Star:     5,
	token.Slash:    5,
	token.Percent:  5,
}

var binaryOp = map[token.Type]bytecode.Op{
	token.OrOr:   bytecode.LOr,
	token.AndAnd: bytecode.LAnd,
	token.Eq:     bytecode.CmpEq,
	token.Ne:     bytecode.CmpNe,
	token.Lt:     bytecode.CmpLt,
	token.Le:     bytecode.CmpLe,
	token.Gt:     bytecode.CmpGt,
	token.Ge:     bytecode.CmpGe,
	token.Plus:   bytecode.Add,
	token.Minus:  bytecode.Sub,
	token.Star:   bytecode.Mul,
	token.Slash:  bytecode.Div,
	token.Percent: bytecode.Mod,
}

func isAssignOp(tt token.Type) bool {
	switch tt {
	case token.Assign, token.PlusEq, token.MinusEq, token.StarEq, token.SlashEq, token.PercentEq, token.CaretEq:
		return true
	}
	return false
}

var compoundOp = map[token.Type]bytecode.Op{
	token.PlusEq:    bytecode.Add,
	token.MinusEq:   bytecode.Sub,
	token.StarEq:    bytecode.Mul,
	token.SlashEq:   bytecode.Div,
	token.PercentEq: bytecode.Mod,
	token.CaretEq:   bytecode.Pow,
}

// lvalRef names where a scalar assignment target's Load/Store pair lives:
// a plain variable, or one of the ibase/obase/scale pseudo-variables which
// carry no operand.
type lvalRef struct {
	loadOp, storeOp       bytecode.Op
	operand               int
	hasOperand            bool
}

func (p *Parser) resolveLval(tt token.Type, name string) lvalRef {
	switch tt {
	case token.KwIbase:
		return lvalRef{bytecode.LoadIbase, bytecode.StoreIbase, 0, false}
	case token.KwObase:
		return lvalRef{bytecode.LoadObase, bytecode.StoreObase, 0, false}
	case token.KwScale:
		return lvalRef{bytecode.LoadScale, bytecode.StoreScale, 0, false}
	default:
		return lvalRef{bytecode.LoadVar, bytecode.StoreVar, p.env.InternVar(name), true}
	}
}

func (p *Parser) emitLoad(r lvalRef) {
	if r.hasOperand {
		p.fn.EmitOperand(r.loadOp, r.operand)
	} else {
		p.fn.Emit(r.loadOp)
	}
}

func (p *Parser) emitStore(r lvalRef) {
	if r.hasOperand {
		p.fn.EmitOperand(r.storeOp, r.operand)
	} else {
		p.fn.Emit(r.storeOp)
	}
}

// parseAssignment is the expression entry point: it special-cases the two
// lvalue forms bc allows on an assignment's left ("name", "name[index]", or
// one of ibase/obase/scale) via a single token of lookahead, and otherwise
// falls through to plain precedence-climbing. It reports whether what it
// parsed was itself an assignment, which callers use to decide whether a
// bare expression statement should auto-print (bc's REPL convention) or be
// discarded.
func (p *Parser) parseAssignment() (isAssign bool, err *bcerr.Error) {
	switch p.curTok.Type {
	case token.Identifier:
		name := p.curTok.Text
		if la := p.peek(); isAssignOp(la.Type) {
			p.next() // consume identifier
			op := p.curTok.Type
			p.next() // consume operator, curTok now starts the RHS
			return true, p.compileScalarAssign(token.Identifier, name, op)
		} else if la.Type == token.LBracket {
			p.next() // consume identifier, curTok = '['
			p.next() // consume '[', curTok = start of index expr
			if _, err := p.parseAssignment(); err != nil {
				return false, err
			}
			if p.curTok.Type != token.RBracket {
				return false, p.errorf("expected ']', got %s", p.curTok)
			}
			p.next() // consume ']'
			if isAssignOp(p.curTok.Type) {
				op := p.curTok.Type
				p.next()
				return true, p.compileArrayAssign(name, op)
			}
			// Not an assignment after all: the index is already on the
			// stack, so finish the load ourselves and continue parsing any
			// trailing operators.
			p.fn.EmitOperand(bytecode.LoadArray, p.env.InternVar(name))
			return false, p.parseBinaryLoop(0)
		}
	case token.KwIbase, token.KwObase, token.KwScale:
		kw := p.curTok.Type
		if la := p.peek(); isAssignOp(la.Type) {
			p.next() // consume keyword
			op := p.curTok.Type
			p.next()
			return true, p.compileScalarAssign(kw, "", op)
		}
	}
	if err := p.parseUnary(); err != nil {
		return false, err
	}
	return false, p.parseBinaryLoop(0)
}

func (p *Parser) compileScalarAssign(kwTok token.Type, name string, op token.Type) *bcerr.Error {
	ref := p.resolveLval(kwTok, name)
	if op != token.Assign {
		p.emitLoad(ref)
	}
	if _, err := p.parseAssignment(); err != nil {
		return err
	}
	if op != token.Assign {
		p.fn.Emit(compoundOp[op])
	}
	p.fn.Emit(bytecode.Dup)
	p.emitStore(ref)
	return nil
}

// compileArrayAssign assumes the index expression's bytecode has already
// been emitted once (leaving its value on the stack) and is responsible for
// duplicating it as needed, since re-parsing the index would duplicate any
// side effects it has.
func (p *Parser) compileArrayAssign(name string, op token.Type) *bcerr.Error {
	varIdx := p.env.InternVar(name)
	if op == token.Assign {
		p.fn.Emit(bytecode.Dup) // [idx, idx]
		if _, err := p.parseAssignment(); err != nil {
			return err
		}
		// [idx, idx, rhs]
		p.fn.EmitOperand(bytecode.StoreArray, varIdx) // pops rhs, idx -> [idx]
		p.fn.EmitOperand(bytecode.LoadArray, varIdx)  // pops idx -> [stored]
		return nil
	}
	p.fn.Emit(bytecode.Dup) // [idx, idx]
	p.fn.Emit(bytecode.Dup) // [idx, idx, idx]
	p.fn.EmitOperand(bytecode.LoadArray, varIdx) // pops one idx -> [idx, idx, old]
	if _, err := p.parseAssignment(); err != nil {
		return err
	}
	// [idx, idx, old, rhs]
	p.fn.Emit(compoundOp[op]) // [idx, idx, new]
	p.fn.EmitOperand(bytecode.StoreArray, varIdx) // pops new, idx -> [idx]
	p.fn.EmitOperand(bytecode.LoadArray, varIdx)  // pops idx -> [new]
	return nil
}

// parseBinaryLoop implements precedence climbing over the left-associative
// operator table, given that a first operand has already been parsed (by
// parseUnary or by the assignment special case above).
func (p *Parser) parseBinaryLoop(minPrec int) *bcerr.Error {
	for {
		prec, ok := binaryPrec[p.curTok.Type]
		if !ok || prec < minPrec {
			return nil
		}
		opTok := p.curTok.Type
		p.next()
		rhsMinPrec := prec + 1
		if err := p.parseUnary(); err != nil {
			return err
		}
		if err := p.parseBinaryLoop(rhsMinPrec); err != nil {
			return err
		}
		p.fn.Emit(binaryOp[opTok])
	}
}

// parseUnary handles the prefix operators (!, unary -, ++, --); a bare
// unary plus is accepted and discarded. Everything else falls through to
// parsePower, which binds '^' tighter than any of these.
func (p *Parser) parseUnary() *bcerr.Error {
	switch p.curTok.Type {
	case token.Not:
		p.next()
		if err := p.parseUnary(); err != nil {
			return err
		}
		p.fn.Emit(bytecode.LNot)
		return nil
	case token.Minus:
		p.next()
		if err := p.parseUnary(); err != nil {
			return err
		}
		p.fn.Emit(bytecode.Neg)
		return nil
	case token.Plus:
		p.next()
		return p.parseUnary()
	case token.Inc, token.Dec:
		incOp, decOp := bytecode.PreIncVar, bytecode.PreDecVar
		isInc := p.curTok.Type == token.Inc
		p.next()
		if p.curTok.Type != token.Identifier {
			return p.errorf("%s requires a variable", map[bool]string{true: "++", false: "--"}[isInc])
		}
		varIdx := p.env.InternVar(p.curTok.Text)
		p.next()
		if isInc {
			p.fn.EmitOperand(incOp, varIdx)
		} else {
			p.fn.EmitOperand(decOp, varIdx)
		}
		return nil
	default:
		return p.parsePower()
	}
}

// parsePower handles right-associative '^'; its right operand is parsed via
// parseUnary so "2^-3" (a leading minus on the exponent) is accepted.
func (p *Parser) parsePower() *bcerr.Error {
	if err := p.parsePostfix(); err != nil {
		return err
	}
	if p.curTok.Type == token.Caret {
		p.next()
		if err := p.parseUnary(); err != nil {
			return err
		}
		p.fn.Emit(bytecode.Pow)
	}
	return nil
}

// parsePostfix parses one primary and, if it was a bare scalar variable
// reference, applies a trailing ++/-- or, absent one, emits the deferred
// load (see parsePrimary's Identifier case for why the load is deferred).
func (p *Parser) parsePostfix() *bcerr.Error {
	varRef, err := p.parsePrimary()
	if err != nil {
		return err
	}
	if varRef == nil {
		return nil
	}
	switch p.curTok.Type {
	case token.Inc:
		p.next()
		p.fn.EmitOperand(bytecode.PostIncVar, *varRef)
	case token.Dec:
		p.next()
		p.fn.EmitOperand(bytecode.PostDecVar, *varRef)
	default:
		p.fn.EmitOperand(bytecode.LoadVar, *varRef)
	}
	return nil
}

// parsePrimary parses one atom. For a bare identifier that turns out to be
// a plain scalar reference, it returns the interned variable index WITHOUT
// emitting a load yet, letting parsePostfix decide whether a load or a
// postfix inc/dec opcode is the right one (postfix inc/dec otherwise reads
// and writes the variable on its own, so an eager load would double-push).
// Every other form (literals, calls, array loads, builtins, parens) emits
// immediately and returns a nil reference.
func (p *Parser) parsePrimary() (varRef *int, err *bcerr.Error) {
	switch p.curTok.Type {
	case token.Number:
		n, nerr := number.Parse(p.curTok.Text, p.cfg.Ibase())
		if nerr != nil {
			return nil, nerr.WithLine(p.lineNum)
		}
		idx := p.env.AddConstant(n)
		p.fn.EmitOperand(bytecode.PushConst, idx)
		p.next()
		return nil, nil

	case token.String:
		idx := p.env.AddString(p.curTok.Text)
		p.fn.EmitOperand(bytecode.PushStr, idx)
		p.next()
		return nil, nil

	case token.LParen:
		p.next()
		if _, err := p.parseAssignment(); err != nil {
			return nil, err
		}
		if p.curTok.Type != token.RParen {
			return nil, p.errorf("expected ')', got %s", p.curTok)
		}
		p.next()
		return nil, nil

	case token.KwSqrt:
		p.next()
		if err := p.parseBuiltinArg(); err != nil {
			return nil, err
		}
		p.fn.Emit(bytecode.Sqrt)
		return nil, nil

	case token.KwLength:
		p.next()
		if err := p.parseBuiltinArg(); err != nil {
			return nil, err
		}
		p.fn.Emit(bytecode.Length)
		return nil, nil

	case token.KwRead:
		p.next()
		if p.curTok.Type != token.LParen {
			return nil, p.errorf("expected '(' after read")
		}
		p.next()
		if p.curTok.Type != token.RParen {
			return nil, p.errorf("read() takes no arguments")
		}
		p.next()
		p.fn.Emit(bytecode.ReadOne)
		return nil, nil

	case token.KwIbase:
		p.next()
		p.fn.Emit(bytecode.LoadIbase)
		return nil, nil

	case token.KwObase:
		p.next()
		p.fn.Emit(bytecode.LoadObase)
		return nil, nil

	case token.KwScale:
		p.next()
		if p.curTok.Type == token.LParen {
			if err := p.parseBuiltinArg(); err != nil {
				return nil, err
			}
			p.fn.Emit(bytecode.ScaleOf)
		} else {
			p.fn.Emit(bytecode.LoadScale)
		}
		return nil, nil

	case token.KwLast:
		p.next()
		p.fn.Emit(bytecode.LoadLast)
		return nil, nil

	case token.Identifier:
		name := p.curTok.Text
		p.next()
		switch p.curTok.Type {
		case token.LParen:
			p.next()
			fnIdx := p.env.AddFunc(name)
			argc := 0
			if p.curTok.Type != token.RParen {
				for {
					if _, err := p.parseAssignment(); err != nil {
						return nil, err
					}
					argc++
					if p.curTok.Type == token.Comma {
						p.next()
						continue
					}
					break
				}
			}
			if p.curTok.Type != token.RParen {
				return nil, p.errorf("expected ')', got %s", p.curTok)
			}
			p.next()
			p.fn.EmitOperand(bytecode.Call, bytecode.PackCall(fnIdx, argc))
			return nil, nil
		case token.LBracket:
			p.next()
			if _, err := p.parseAssignment(); err != nil {
				return nil, err
			}
			if p.curTok.Type != token.RBracket {
				return nil, p.errorf("expected ']', got %s", p.curTok)
			}
			p.next()
			p.fn.EmitOperand(bytecode.LoadArray, p.env.InternVar(name))
			return nil, nil
		default:
			varIdx := p.env.InternVar(name)
			return &varIdx, nil
		}

	default:
		return nil, p.errorf("unexpected %s in expression", p.curTok)
	}
}

// parseBuiltinArg parses the "(" expr ")" argument shared by sqrt/length/
// scale(expr).
func (p *Parser) parseBuiltinArg() *bcerr.Error {
	if p.curTok.Type != token.LParen {
		return p.errorf("expected '(', got %s", p.curTok)
	}
	p.next()
	if _, err := p.parseAssignment(); err != nil {
		return err
	}
	if p.curTok.Type != token.RParen {
		return p.errorf("expected ')', got %s", p.curTok)
	}
	p.next()
	return nil
}
