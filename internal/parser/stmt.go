package parser

import (
	"github.com/blinksh/bc/internal/bcerr"
	"github.com/blinksh/bc/internal/bytecode"
	"github.com/blinksh/bc/internal/number"
	"github.com/blinksh/bc/internal/token"
)

// parseStatement compiles one bc statement into p.fn, per original_source's
// bc/parse.c statement grammar (if/while/for/break/continue/return/auto/
// define/print/quit/halt/limits, a brace block, or a bare expression).
func (p *Parser) parseStatement() *bcerr.Error {
	switch p.curTok.Type {
	case token.Newline, token.Semicolon:
		p.next()
		return nil
	case token.LBrace:
		return p.parseBlock()
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwFor:
		return p.parseFor()
	case token.KwBreak:
		p.next()
		return p.emitLoopJump(true)
	case token.KwContinue:
		p.next()
		return p.emitLoopJump(false)
	case token.KwReturn:
		return p.parseReturn()
	case token.KwAuto:
		return p.parseAuto()
	case token.KwDefine:
		return p.parseDefine()
	case token.KwPrint:
		return p.parsePrint()
	case token.KwHalt:
		p.next()
		p.fn.Emit(bytecode.Halt)
		return p.expectStatementEnd()
	case token.KwQuit:
		p.next()
		p.fn.EmitOperand(bytecode.Quit, 0)
		return p.expectStatementEnd()
	case token.KwLimits:
		p.next()
		p.fn.Emit(bytecode.Limits)
		return p.expectStatementEnd()
	default:
		isAssign, err := p.parseAssignment()
		if err != nil {
			return err
		}
		// A bare, non-assignment expression statement auto-prints, the way
		// an interactive bc (and dc) both echo a computed value the user
		// didn't explicitly store anywhere — but only at the top level of
		// main (spec §4.C): a bare expression inside a function body just
		// discards its value, the way a statement's result normally would.
		if isAssign || p.fnDepth > 0 {
			p.fn.Emit(bytecode.Pop)
		} else {
			p.fn.Emit(bytecode.Print)
		}
		return p.expectStatementEnd()
	}
}

// expectStatementEnd consumes a trailing ';'; a newline, '}' or EOF is
// left for the caller (parseBlock / CompileLine) to see, so CompileLine
// stops at the newline that ends a top-level line.
func (p *Parser) expectStatementEnd() *bcerr.Error {
	switch p.curTok.Type {
	case token.Semicolon:
		p.next()
	case token.Newline, token.RBrace, token.EOF:
	default:
		return p.errorf("unexpected %s, expected ';' or newline", p.curTok)
	}
	return nil
}

func (p *Parser) parseBlock() *bcerr.Error {
	p.next() // consume '{'
	for p.curTok.Type != token.RBrace {
		if p.curTok.Type == token.EOF {
			return p.errorf("unexpected end of input, expected '}'")
		}
		if err := p.parseStatement(); err != nil {
			return err
		}
	}
	p.next() // consume '}'
	return nil
}

// parseCondition compiles "( expr )" as used by if/while/for, leaving the
// condition's value on the stack.
func (p *Parser) parseCondition() *bcerr.Error {
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

func (p *Parser) parseIf() *bcerr.Error {
	p.next() // consume 'if'
	if err := p.parseCondition(); err != nil {
		return err
	}
	elseLabel := p.fn.NewLabel()
	p.fn.EmitJump(bytecode.JmpIfZero, elseLabel)
	if err := p.parseStatement(); err != nil {
		return err
	}
	if p.curTok.Type == token.KwElse {
		p.next()
		endLabel := p.fn.NewLabel()
		p.fn.EmitJump(bytecode.Jmp, endLabel)
		p.fn.PlaceLabel(elseLabel)
		if err := p.parseStatement(); err != nil {
			return err
		}
		p.fn.PlaceLabel(endLabel)
	} else {
		p.fn.PlaceLabel(elseLabel)
	}
	return nil
}

func (p *Parser) parseWhile() *bcerr.Error {
	p.next() // consume 'while'
	startLabel := p.fn.NewLabel()
	endLabel := p.fn.NewLabel()
	p.fn.PlaceLabel(startLabel)
	if err := p.parseCondition(); err != nil {
		return err
	}
	p.fn.EmitJump(bytecode.JmpIfZero, endLabel)

	p.loopStack = append(p.loopStack, loopCtx{breakLabel: endLabel, continueLabel: startLabel})
	err := p.parseStatement()
	p.loopStack = p.loopStack[:len(p.loopStack)-1]
	if err != nil {
		return err
	}

	p.fn.EmitJump(bytecode.Jmp, startLabel)
	p.fn.PlaceLabel(endLabel)
	return nil
}

// parseFor compiles C's three-clause for(init; cond; post) body. post's
// tokens appear in the source before body's, but must be emitted after it;
// since this is a one-pass, non-rewindable token stream, post is compiled
// into a scratch Function as soon as its tokens are seen, then its Code
// (guaranteed label/jump-free, since it is just a discarded expression) is
// spliced in after body is compiled.
func (p *Parser) parseFor() *bcerr.Error {
	p.next() // consume 'for'
	if p.curTok.Type != token.LParen {
		return p.errorf("expected '(', got %s", p.curTok)
	}
	p.next()

	if p.curTok.Type != token.Semicolon {
		if _, err := p.parseAssignment(); err != nil {
			return err
		}
		p.fn.Emit(bytecode.Pop)
	}
	if p.curTok.Type != token.Semicolon {
		return p.errorf("expected ';', got %s", p.curTok)
	}
	p.next()

	startLabel := p.fn.NewLabel()
	endLabel := p.fn.NewLabel()
	continueLabel := p.fn.NewLabel()
	p.fn.PlaceLabel(startLabel)

	if p.curTok.Type != token.Semicolon {
		if _, err := p.parseAssignment(); err != nil {
			return err
		}
		p.fn.EmitJump(bytecode.JmpIfZero, endLabel)
	}
	if p.curTok.Type != token.Semicolon {
		return p.errorf("expected ';', got %s", p.curTok)
	}
	p.next()

	post := bytecode.NewFunction("")
	if p.curTok.Type != token.RParen {
		saved := p.fn
		p.fn = post
		if _, err := p.parseAssignment(); err != nil {
			p.fn = saved
			return err
		}
		p.fn.Emit(bytecode.Pop)
		p.fn = saved
	}
	if p.curTok.Type != token.RParen {
		return p.errorf("expected ')', got %s", p.curTok)
	}
	p.next()

	p.loopStack = append(p.loopStack, loopCtx{breakLabel: endLabel, continueLabel: continueLabel})
	err := p.parseStatement()
	p.loopStack = p.loopStack[:len(p.loopStack)-1]
	if err != nil {
		return err
	}

	p.fn.PlaceLabel(continueLabel)
	p.fn.Code = append(p.fn.Code, post.Code...)
	p.fn.EmitJump(bytecode.Jmp, startLabel)
	p.fn.PlaceLabel(endLabel)
	return nil
}

func (p *Parser) emitLoopJump(isBreak bool) *bcerr.Error {
	if len(p.loopStack) == 0 {
		if isBreak {
			return p.errorf("break outside of a loop")
		}
		return p.errorf("continue outside of a loop")
	}
	top := p.loopStack[len(p.loopStack)-1]
	if isBreak {
		p.fn.EmitJump(bytecode.Jmp, top.breakLabel)
	} else {
		p.fn.EmitJump(bytecode.Jmp, top.continueLabel)
	}
	return p.expectStatementEnd()
}

func (p *Parser) parseReturn() *bcerr.Error {
	p.next() // consume 'return'
	switch p.curTok.Type {
	case token.Semicolon, token.Newline, token.RBrace, token.EOF:
		p.fn.EmitOperand(bytecode.PushConst, p.env.AddConstant(number.Zero))
	case token.LParen:
		p.next()
		if p.curTok.Type == token.RParen {
			p.fn.EmitOperand(bytecode.PushConst, p.env.AddConstant(number.Zero))
		} else if _, err := p.parseAssignment(); err != nil {
			return err
		}
		if p.curTok.Type != token.RParen {
			return p.errorf("expected ')', got %s", p.curTok)
		}
		p.next()
	default:
		if _, err := p.parseAssignment(); err != nil {
			return err
		}
	}
	p.fn.Emit(bytecode.Return)
	return p.expectStatementEnd()
}

func (p *Parser) parseAuto() *bcerr.Error {
	p.next() // consume 'auto'
	for {
		if p.curTok.Type != token.Identifier {
			return p.errorf("expected identifier after auto, got %s", p.curTok)
		}
		name := p.curTok.Text
		p.next()
		isArray := false
		if p.curTok.Type == token.LBracket {
			p.next()
			if p.curTok.Type != token.RBracket {
				return p.errorf("expected ']', got %s", p.curTok)
			}
			p.next()
			isArray = true
		}
		p.fn.Autos = append(p.fn.Autos, bytecode.Local{Name: name, Array: isArray})
		if p.curTok.Type == token.Comma {
			p.next()
			continue
		}
		break
	}
	return p.expectStatementEnd()
}

func (p *Parser) parseDefine() *bcerr.Error {
	p.next() // consume 'define'
	if p.curTok.Type != token.Identifier {
		return p.errorf("expected function name after define, got %s", p.curTok)
	}
	name := p.curTok.Text
	p.next()
	if p.curTok.Type != token.LParen {
		return p.errorf("expected '(', got %s", p.curTok)
	}
	p.next()

	fnIdx := p.env.AddFunc(name)
	fn := p.env.Functions[fnIdx]
	fn.Params, fn.Autos, fn.Code, fn.Labels = nil, nil, nil, nil // bc allows redefining a function

	if p.curTok.Type != token.RParen {
		for {
			if p.curTok.Type != token.Identifier {
				return p.errorf("expected parameter name, got %s", p.curTok)
			}
			pname := p.curTok.Text
			p.next()
			isArray := false
			if p.curTok.Type == token.LBracket {
				p.next()
				if p.curTok.Type != token.RBracket {
					return p.errorf("expected ']', got %s", p.curTok)
				}
				p.next()
				isArray = true
			}
			fn.Params = append(fn.Params, bytecode.Local{Name: pname, Array: isArray})
			if p.curTok.Type == token.Comma {
				p.next()
				continue
			}
			break
		}
	}
	if p.curTok.Type != token.RParen {
		return p.errorf("expected ')', got %s", p.curTok)
	}
	p.next()
	if p.curTok.Type != token.LBrace {
		return p.errorf("expected '{' to begin function body, got %s", p.curTok)
	}

	savedFn, savedLoops := p.fn, p.loopStack
	p.fn, p.loopStack = fn, nil
	p.fnDepth++
	err := p.parseBlock()
	p.fnDepth--
	p.fn, p.loopStack = savedFn, savedLoops
	return err
}

func (p *Parser) parsePrint() *bcerr.Error {
	p.next() // consume 'print'
	for {
		if _, err := p.parseAssignment(); err != nil {
			return err
		}
		p.fn.Emit(bytecode.Print)
		if p.curTok.Type == token.Comma {
			p.next()
			continue
		}
		break
	}
	return p.expectStatementEnd()
}
