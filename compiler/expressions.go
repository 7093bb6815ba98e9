package compiler

import (
	"nilan/token"
	"nilan/value"
)

func (c *Compiler) expression() {
	c.parsePrecedence(PrecAssignment)
}

// parsePrecedence advances past the current token, dispatches its prefix
// rule with canAssign := p <= PrecAssignment, then keeps folding in infix
// rules while the current token binds at least as tightly as p.
func (c *Compiler) parsePrecedence(p Precedence) {
	c.advance()
	prefixRule := c.rule(c.prev.TokenType).prefix
	if prefixRule == nil {
		c.errorAtPrev("expected an expression")
		return
	}
	canAssign := p <= PrecAssignment
	prefixRule(c, canAssign)

	for p <= c.rule(c.current.TokenType).precedence {
		c.advance()
		infixRule := c.rule(c.prev.TokenType).infix
		infixRule(c, canAssign)
	}

	if canAssign && c.match(token.ASSIGN) {
		c.errorAtPrev("invalid assignment target")
	}
}

func (c *Compiler) number(canAssign bool) {
	n, _ := c.prev.Literal.(float64)
	c.emitConstant(value.Number(n))
}

func (c *Compiler) string(canAssign bool) {
	s, _ := c.prev.Literal.(string)
	c.emitConstant(c.internString(s))
}

func (c *Compiler) literal(canAssign bool) {
	switch c.prev.TokenType {
	case token.FALSE:
		c.emitOp(value.OpFalse)
	case token.TRUE:
		c.emitOp(value.OpTrue)
	case token.NIL:
		c.emitOp(value.OpNil)
	}
}

func (c *Compiler) grouping(canAssign bool) {
	c.expression()
	c.consume(token.RPA, "expected ')' after expression")
}

func (c *Compiler) unary(canAssign bool) {
	opType := c.prev.TokenType
	c.parsePrecedence(PrecUnary)
	switch opType {
	case token.SUB:
		c.emitOp(value.OpNegate)
	case token.BANG:
		c.emitOp(value.OpNot)
	}
}

func (c *Compiler) binary(canAssign bool) {
	opType := c.prev.TokenType
	rule := c.rule(opType)
	c.parsePrecedence(rule.precedence + 1)

	switch opType {
	case token.ADD:
		c.emitOp(value.OpAdd)
	case token.SUB:
		c.emitOp(value.OpSubtract)
	case token.MULT:
		c.emitOp(value.OpMultiply)
	case token.DIV:
		c.emitOp(value.OpDivide)
	case token.EQUAL_EQUAL:
		c.emitOp(value.OpEqual)
	case token.NOT_EQUAL:
		c.emitOp(value.OpEqual)
		c.emitOp(value.OpNot)
	case token.LESS:
		c.emitOp(value.OpLess)
	case token.LESS_EQUAL:
		c.emitOp(value.OpGreater)
		c.emitOp(value.OpNot)
	case token.LARGER:
		c.emitOp(value.OpGreater)
	case token.LARGER_EQUAL:
		c.emitOp(value.OpLess)
		c.emitOp(value.OpNot)
	}
}

func (c *Compiler) instanceofExpr(canAssign bool) {
	c.parsePrecedence(PrecComparison + 1)
	c.emitOp(value.OpInstanceof)
}

func (c *Compiler) and_(canAssign bool) {
	endJump := c.emitJump(value.OpJumpIfFalse)
	c.emitOp(value.OpPop)
	c.parsePrecedence(PrecAnd)
	c.patchJump(endJump)
}

func (c *Compiler) or_(canAssign bool) {
	elseJump := c.emitJump(value.OpJumpIfFalse)
	endJump := c.emitJump(value.OpJump)
	c.patchJump(elseJump)
	c.emitOp(value.OpPop)
	c.parsePrecedence(PrecOr)
	c.patchJump(endJump)
}

func (c *Compiler) ternary(canAssign bool) {
	thenJump := c.emitJump(value.OpJumpIfFalse)
	c.emitOp(value.OpPop)
	c.parsePrecedence(PrecAssignment)
	elseJump := c.emitJump(value.OpJump)
	c.patchJump(thenJump)
	c.emitOp(value.OpPop)
	c.consume(token.COLON, "expected ':' in ternary expression")
	c.parsePrecedence(PrecAssignment)
	c.patchJump(elseJump)
}

func (c *Compiler) argumentList() byte {
	argCount := 0
	if !c.check(token.RPA) {
		for {
			c.expression()
			if argCount == 255 {
				c.errorAtPrev("can't have more than 255 arguments")
			}
			argCount++
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPA, "expected ')' after arguments")
	return byte(argCount)
}

func (c *Compiler) call(canAssign bool) {
	argCount := c.argumentList()
	c.emitOpByte(value.OpCall, argCount)
}

func (c *Compiler) dot(canAssign bool) {
	c.consume(token.IDENTIFIER, "expected property name after '.'")
	name := c.identifierConstant(c.prev)

	switch {
	case canAssign && c.match(token.ASSIGN):
		c.expression()
		c.emitOpByte(value.OpSetProperty, name)
	case canAssign && c.matchCompoundAssign():
		op := c.compoundOp(c.prev.TokenType)
		c.emitOp(value.OpDup)
		c.emitOpByte(value.OpGetProperty, name)
		c.expression()
		c.emitOp(op)
		c.emitOpByte(value.OpSetProperty, name)
	case canAssign && c.matchIncDec():
		// postfix a.x++/a.x--: dup the receiver so both the get and the
		// set below have their own instance to consume, set the field to
		// the new value, then undo the arithmetic once more so the
		// original value is what's left as the expression's result.
		op := c.incDecOp(c.prev.TokenType)
		c.emitOp(value.OpDup)
		c.emitOpByte(value.OpGetProperty, name)
		c.emitConstant(value.Number(1))
		c.emitOp(op)
		c.emitOpByte(value.OpSetProperty, name)
		c.emitConstant(value.Number(1))
		c.emitOp(inverseIncDecOp(op))
	case c.match(token.LPA):
		argCount := c.argumentList()
		c.emitOpByte(value.OpInvoke, name)
		c.emitByte(argCount)
	default:
		c.emitOpByte(value.OpGetProperty, name)
	}
}

func (c *Compiler) this_(canAssign bool) {
	if c.class == nil {
		c.errorAtPrev("'this' can only be used inside a method")
		return
	}
	c.variable(false)
}

func (c *Compiler) super_(canAssign bool) {
	if c.class == nil {
		c.errorAtPrev("'super' can only be used inside a method")
	} else if !c.class.hasSuperclass {
		c.errorAtPrev("'super' can only be used in a class that inherits from another class")
	}
	c.consume(token.DOT, "expected '.' after 'super'")
	c.consume(token.IDENTIFIER, "expected superclass method name")
	name := c.identifierConstant(c.prev)

	c.namedVariable(syntheticToken("this"), false)
	if c.match(token.LPA) {
		argCount := c.argumentList()
		c.namedVariable(syntheticToken("super"), false)
		c.emitOpByte(value.OpSuperInvoke, name)
		c.emitByte(argCount)
	} else {
		c.namedVariable(syntheticToken("super"), false)
		c.emitOpByte(value.OpGetSuper, name)
	}
}

func syntheticToken(lexeme string) token.Token {
	return token.Token{TokenType: token.IDENTIFIER, Lexeme: lexeme}
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.prev, canAssign)
}

func (c *Compiler) matchCompoundAssign() bool {
	switch c.current.TokenType {
	case token.PLUS_EQUAL, token.MINUS_EQUAL, token.STAR_EQUAL, token.SLASH_EQUAL:
		c.advance()
		return true
	}
	return false
}

func (c *Compiler) compoundOp(tt token.TokenType) value.OpCode {
	switch tt {
	case token.PLUS_EQUAL:
		return value.OpAdd
	case token.MINUS_EQUAL:
		return value.OpSubtract
	case token.STAR_EQUAL:
		return value.OpMultiply
	case token.SLASH_EQUAL:
		return value.OpDivide
	}
	return value.OpAdd
}

// namedVariable resolves name against locals, then upvalues, then falls
// through to global-by-name, and compiles a get, a plain/compound
// assignment, or nothing further depending on what follows.
func (c *Compiler) namedVariable(name token.Token, canAssign bool) {
	var getOp, setOp value.OpCode
	arg := c.resolveLocal(c.fc, name)
	if arg != -1 {
		getOp, setOp = value.OpGetLocal, value.OpSetLocal
	} else if arg = c.resolveUpvalue(c.fc, name); arg != -1 {
		getOp, setOp = value.OpGetUpvalue, value.OpSetUpvalue
	} else {
		arg = int(c.identifierConstant(name))
		getOp, setOp = value.OpGetGlobal, value.OpSetGlobal
	}

	switch {
	case canAssign && c.match(token.ASSIGN):
		c.expression()
		c.emitOpByte(setOp, byte(arg))
	case canAssign && c.matchCompoundAssign():
		op := c.compoundOp(c.prev.TokenType)
		c.emitOpByte(getOp, byte(arg))
		c.expression()
		c.emitOp(op)
		c.emitOpByte(setOp, byte(arg))
	case canAssign && c.matchIncDec():
		// postfix ++/--: (get, get, const-1, op, set, pop), so the value
		// from the first get remains as the expression's result.
		op := c.incDecOp(c.prev.TokenType)
		c.emitOpByte(getOp, byte(arg))
		c.emitOpByte(getOp, byte(arg))
		c.emitConstant(value.Number(1))
		c.emitOp(op)
		c.emitOpByte(setOp, byte(arg))
		c.emitOp(value.OpPop)
	default:
		c.emitOpByte(getOp, byte(arg))
	}
}

func (c *Compiler) matchIncDec() bool {
	switch c.current.TokenType {
	case token.INCREMENT, token.DECREMENT:
		c.advance()
		return true
	}
	return false
}

func (c *Compiler) incDecOp(tt token.TokenType) value.OpCode {
	if tt == token.INCREMENT {
		return value.OpAdd
	}
	return value.OpSubtract
}

// inverseIncDecOp returns the opposite arithmetic op, used to recover a
// postfix property increment/decrement's pre-update value from its
// already-stored new value without needing a second receiver on the stack.
func inverseIncDecOp(op value.OpCode) value.OpCode {
	if op == value.OpAdd {
		return value.OpSubtract
	}
	return value.OpAdd
}

// prefixIncDec compiles `++x` / `--x`, where x is a local/upvalue/global
// name or a `.`-chain ending in a property (`++a.b.c`), per the `unary`
// grammar rule's ("++"|"--") unary alternative. A plain name updates in
// place: (get, const-1, op, set). A property chain evaluates every
// receiver but the last with plain gets, then updates the final field the
// same way `a.x++` does, leaving the new value as the result.
func (c *Compiler) prefixIncDec(canAssign bool) {
	opType := c.prev.TokenType
	c.consume(token.IDENTIFIER, "expected a variable name after '++'/'--'")
	name := c.prev

	if !c.check(token.DOT) {
		c.localIncDec(name, opType)
		return
	}

	c.namedVariable(name, false)
	for {
		c.consume(token.DOT, "expected '.' after property target")
		c.consume(token.IDENTIFIER, "expected property name")
		propName := c.prev
		if c.check(token.DOT) {
			c.emitOpByte(value.OpGetProperty, c.identifierConstant(propName))
			continue
		}
		c.propertyIncDec(propName, opType)
		return
	}
}

// localIncDec compiles the (get, const-1, op, set) pattern for a bare
// local/upvalue/global target, leaving the updated value as the result.
func (c *Compiler) localIncDec(name token.Token, opType token.TokenType) {
	var getOp, setOp value.OpCode
	arg := c.resolveLocal(c.fc, name)
	if arg != -1 {
		getOp, setOp = value.OpGetLocal, value.OpSetLocal
	} else if arg = c.resolveUpvalue(c.fc, name); arg != -1 {
		getOp, setOp = value.OpGetUpvalue, value.OpSetUpvalue
	} else {
		arg = int(c.identifierConstant(name))
		getOp, setOp = value.OpGetGlobal, value.OpSetGlobal
	}

	c.emitOpByte(getOp, byte(arg))
	c.emitConstant(value.Number(1))
	c.emitOp(c.incDecOp(opType))
	c.emitOpByte(setOp, byte(arg))
}

// propertyIncDec compiles the final segment of a `++a.b.c` chain, with the
// receiver already on the stack. It dups the receiver so the get and the
// set each consume their own copy, leaving the new value as the result.
func (c *Compiler) propertyIncDec(propName token.Token, opType token.TokenType) {
	name := c.identifierConstant(propName)
	c.emitOp(value.OpDup)
	c.emitOpByte(value.OpGetProperty, name)
	c.emitConstant(value.Number(1))
	c.emitOp(c.incDecOp(opType))
	c.emitOpByte(value.OpSetProperty, name)
}
