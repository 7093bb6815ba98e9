package compiler

import (
	"nilan/token"
	"nilan/value"
)

func (c *Compiler) declaration() {
	switch {
	case c.match(token.CLASS):
		c.classDeclaration()
	case c.match(token.FUNC):
		c.funDeclaration()
	case c.match(token.VAR):
		c.varDeclaration()
	default:
		c.statement()
	}
	if c.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) varDeclaration() {
	global := c.parseVariable("expected a variable name")
	if c.match(token.ASSIGN) {
		c.expression()
	} else {
		c.emitOp(value.OpNil)
	}
	c.consume(token.SEMICOLON, "expected ';' after variable declaration")
	c.defineVariable(global)
}

func (c *Compiler) funDeclaration() {
	global := c.parseVariable("expected a function name")
	c.markInitialized()
	c.function(TypeFunction)
	c.defineVariable(global)
}

func (c *Compiler) statement() {
	switch {
	case c.match(token.PRINT):
		c.printStatement()
	case c.match(token.IF):
		c.ifStatement()
	case c.match(token.WHILE):
		c.whileStatement()
	case c.match(token.FOR):
		c.forStatement()
	case c.match(token.RETURN):
		c.returnStatement()
	case c.match(token.BREAK):
		c.breakStatement()
	case c.match(token.CONTINUE):
		c.continueStatement()
	case c.match(token.SWITCH):
		c.switchStatement()
	case c.match(token.LCUR):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(token.SEMICOLON, "expected ';' after value")
	c.emitOp(value.OpPrint)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(token.SEMICOLON, "expected ';' after expression")
	// The last statement of a top-level script returns its value instead of
	// popping it, so the host can read it through vm.LastValue (OQ-3).
	if c.fc.typ == TypeScript && c.fc.scopeDepth == 0 && c.check(token.EOF) {
		c.emitOp(value.OpReturn)
		return
	}
	c.emitOp(value.OpPop)
}

func (c *Compiler) block() {
	for !c.check(token.RCUR) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RCUR, "expected '}' after block")
}

func (c *Compiler) ifStatement() {
	c.consume(token.LPA, "expected '(' after 'if'")
	c.expression()
	c.consume(token.RPA, "expected ')' after condition")

	thenJump := c.emitJump(value.OpJumpIfFalse)
	c.emitOp(value.OpPop)
	c.statement()

	elseJump := c.emitJump(value.OpJump)
	c.patchJump(thenJump)
	c.emitOp(value.OpPop)

	if c.match(token.ELSE) {
		c.statement()
	}
	c.patchJump(elseJump)
}

// pushLoop installs a new Loop on the function compiler's loop stack,
// returning it so the caller can record its start and patch break jumps.
func (c *Compiler) pushLoop(isLoop bool) *Loop {
	l := &Loop{enclosing: c.fc.currentLoop, scopeDepth: c.fc.scopeDepth, isLoop: isLoop}
	c.fc.currentLoop = l
	return l
}

func (c *Compiler) popLoop() {
	c.fc.currentLoop = c.fc.currentLoop.enclosing
}

func (c *Compiler) whileStatement() {
	loop := c.pushLoop(true)
	loop.start = len(c.currentChunk().Code)

	c.consume(token.LPA, "expected '(' after 'while'")
	c.expression()
	c.consume(token.RPA, "expected ')' after condition")

	exitJump := c.emitJump(value.OpJumpIfFalse)
	c.emitOp(value.OpPop)
	c.statement()
	c.emitLoop(loop.start)

	c.patchJump(exitJump)
	c.emitOp(value.OpPop)

	for _, j := range loop.breakJumps {
		c.patchJump(j)
	}
	c.popLoop()
}

func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(token.LPA, "expected '(' after 'for'")

	switch {
	case c.match(token.SEMICOLON):
		// no initialiser
	case c.match(token.VAR):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loop := c.pushLoop(true)
	loop.start = len(c.currentChunk().Code)

	exitJump := -1
	if !c.match(token.SEMICOLON) {
		c.expression()
		c.consume(token.SEMICOLON, "expected ';' after loop condition")
		exitJump = c.emitJump(value.OpJumpIfFalse)
		c.emitOp(value.OpPop)
	}

	if !c.check(token.RPA) {
		bodyJump := c.emitJump(value.OpJump)
		incrementStart := len(c.currentChunk().Code)
		c.expression()
		c.emitOp(value.OpPop)
		c.consume(token.RPA, "expected ')' after for clauses")

		c.emitLoop(loop.start)
		loop.start = incrementStart
		c.patchJump(bodyJump)
	} else {
		c.consume(token.RPA, "expected ')' after for clauses")
	}

	c.statement()
	c.emitLoop(loop.start)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(value.OpPop)
	}

	for _, j := range loop.breakJumps {
		c.patchJump(j)
	}
	c.popLoop()
	c.endScope()
}

// popLocalsTo emits the POP/CLOSE_UPVALUE sequence for every local declared
// deeper than depth, without actually removing them from the
// compiler's local list (used by break/continue, which jump out of a
// scope the compiler is still lexically inside of).
func (c *Compiler) popLocalsTo(depth int) {
	for i := len(c.fc.locals) - 1; i >= 0 && c.fc.locals[i].depth > depth; i-- {
		if c.fc.locals[i].isCaptured {
			c.emitOp(value.OpCloseUpvalue)
		} else {
			c.emitOp(value.OpPop)
		}
	}
}

func (c *Compiler) breakStatement() {
	if c.fc.currentLoop == nil {
		c.errorAtPrev("'break' outside of a loop or switch")
		c.consume(token.SEMICOLON, "expected ';' after 'break'")
		return
	}
	c.consume(token.SEMICOLON, "expected ';' after 'break'")
	c.popLocalsTo(c.fc.currentLoop.scopeDepth)
	jump := c.emitJump(value.OpJump)
	c.fc.currentLoop.breakJumps = append(c.fc.currentLoop.breakJumps, jump)
}

func (c *Compiler) continueStatement() {
	loop := c.fc.currentLoop
	for loop != nil && !loop.isLoop {
		loop = loop.enclosing
	}
	if loop == nil {
		c.errorAtPrev("'continue' outside of a loop")
		c.consume(token.SEMICOLON, "expected ';' after 'continue'")
		return
	}
	c.consume(token.SEMICOLON, "expected ';' after 'continue'")
	c.popLocalsTo(loop.scopeDepth)
	c.emitLoop(loop.start)
}

// switchStatement evaluates the subject once into a scoped temporary local,
// then chains case comparisons: each case emits a comparison against the
// temporary, a miss-jump to the next case, then its body followed by an
// unconditional jump to the switch end. Reuses Loop with isLoop=false so
// continue skips past it but break still resolves here.
func (c *Compiler) switchStatement() {
	c.consume(token.LPA, "expected '(' after 'switch'")
	c.beginScope()
	c.expression()
	c.addLocal(token.Token{Lexeme: ""})
	c.markInitialized()
	subjectSlot := len(c.fc.locals) - 1
	c.consume(token.RPA, "expected ')' after switch subject")
	c.consume(token.LCUR, "expected '{' before switch body")

	loop := c.pushLoop(false)

	var missJump = -1
	for c.match(token.CASE) || c.match(token.DEFAULT) {
		isDefault := c.prev.TokenType == token.DEFAULT
		if missJump != -1 {
			c.patchJump(missJump)
			c.emitOp(value.OpPop)
			missJump = -1
		}
		if isDefault {
			c.consume(token.COLON, "expected ':' after 'default'")
		} else {
			c.expression()
			c.consume(token.COLON, "expected ':' after case value")
			c.emitOpByte(value.OpGetLocal, byte(subjectSlot))
			c.emitOp(value.OpEqual)
			missJump = c.emitJump(value.OpJumpIfFalse)
			c.emitOp(value.OpPop)
		}

		for !c.check(token.CASE) && !c.check(token.DEFAULT) && !c.check(token.RCUR) {
			c.statement()
		}
		if !isDefault {
			endJump := c.emitJump(value.OpJump)
			loop.breakJumps = append(loop.breakJumps, endJump)
		}
	}
	if missJump != -1 {
		c.patchJump(missJump)
		c.emitOp(value.OpPop)
	}

	c.consume(token.RCUR, "expected '}' after switch body")
	for _, j := range loop.breakJumps {
		c.patchJump(j)
	}
	c.popLoop()
	c.endScope()
}

func (c *Compiler) returnStatement() {
	if c.fc.typ == TypeScript {
		c.errorAtPrev("can't return from top-level code")
	}
	if c.match(token.SEMICOLON) {
		c.emitReturn()
		return
	}
	if c.fc.typ == TypeInitializer {
		c.errorAtPrev("can't return a value from an initialiser")
	}
	c.expression()
	c.consume(token.SEMICOLON, "expected ';' after return value")
	c.emitOp(value.OpReturn)
}

// function compiles a function's parameter list and body under a fresh
// function compiler pushed onto the stack, then finalises it (emitting the
// enclosing OP_CLOSURE) before returning control to the caller.
func (c *Compiler) function(typ FunctionType) {
	parent := c.fc
	fn := &value.FunctionObj{Chunk: value.NewChunk()}
	if typ != TypeScript {
		fn.Name = c.internString(c.prev.Lexeme).AsObject().(*value.StringObj)
	}
	c.fc = &functionCompiler{enclosing: parent, function: fn, chunk: fn.Chunk, typ: typ}

	receiverName := ""
	if typ == TypeMethod || typ == TypeInitializer {
		receiverName = "this"
	}
	c.fc.locals = append(c.fc.locals, Local{name: token.Token{Lexeme: receiverName}, depth: 0})

	c.beginScope()
	c.consume(token.LPA, "expected '(' after function name")
	if !c.check(token.RPA) {
		for {
			fn.Arity++
			if fn.Arity > 255 {
				c.errorAtCurrent("can't have more than 255 parameters")
			}
			paramConst := c.parseVariable("expected a parameter name")
			c.defineVariable(paramConst)
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPA, "expected ')' after parameters")
	c.consume(token.LCUR, "expected '{' before function body")
	c.block()

	c.endFunction()
}
