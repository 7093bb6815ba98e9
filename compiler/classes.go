package compiler

import (
	"nilan/token"
	"nilan/value"
)

// classDeclaration compiles `class Name ("<" Super)? "{" method* "}"`.
// OP_CLASS allocates and globally (or locally) binds the class; if a
// superclass clause is present, "super" is bound as a synthetic local in a
// wrapping scope and OP_INHERIT sets the subclass's superclass pointer
// (chain traversal happens at dispatch time; see SPEC_FULL.md OQ-2 — no
// method-table copy happens here).
func (c *Compiler) classDeclaration() {
	c.consume(token.IDENTIFIER, "expected a class name")
	nameTok := c.prev
	nameConst := c.identifierConstant(nameTok)
	c.declareVariable(nameTok)

	c.emitOpByte(value.OpClass, nameConst)
	c.defineVariable(nameConst)

	cc := &classCompiler{enclosing: c.class}
	c.class = cc

	if c.match(token.LESS) {
		c.consume(token.IDENTIFIER, "expected a superclass name")
		if c.prev.Lexeme == nameTok.Lexeme {
			c.errorAtPrev("a class can't inherit from itself")
		}
		c.variable(false)

		c.beginScope()
		c.addLocal(syntheticToken("super"))
		c.markInitialized()

		c.namedVariable(nameTok, false)
		c.emitOp(value.OpInherit)
		cc.hasSuperclass = true
	}

	c.namedVariable(nameTok, false)
	c.consume(token.LCUR, "expected '{' before class body")
	for !c.check(token.RCUR) && !c.check(token.EOF) {
		c.method()
	}
	c.consume(token.RCUR, "expected '}' after class body")
	c.emitOp(value.OpPop)

	if cc.hasSuperclass {
		c.endScope()
	}
	c.class = cc.enclosing
}

func (c *Compiler) method() {
	c.consume(token.IDENTIFIER, "expected a method name")
	nameTok := c.prev
	nameConst := c.identifierConstant(nameTok)

	typ := TypeMethod
	if nameTok.Lexeme == "init" {
		typ = TypeInitializer
	}
	c.function(typ)
	c.emitOpByte(value.OpMethod, nameConst)
}
