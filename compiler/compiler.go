// Package compiler implements the single-pass Pratt parser that compiles
// Nilan source tokens directly to bytecode, with no intermediate AST. State
// is organised as a stack of function compilers (one per enclosing
// function) and a stack of class compilers (one per enclosing class
// declaration), mirroring spec.md §4.2.
package compiler

import (
	"nilan/token"
	"nilan/value"
)

// FunctionType tags what kind of function body is currently being
// compiled, which changes how slot 0 and implicit returns behave.
type FunctionType byte

const (
	TypeFunction FunctionType = iota
	TypeMethod
	TypeInitializer
	TypeScript
)

// Local is one entry of a function compiler's local-variable stack.
type Local struct {
	name       token.Token
	depth      int // -1 means declared but not yet initialised
	isCaptured bool
}

// upvalueRef records how a function compiler reaches a variable captured
// from an enclosing function: either straight off the enclosing function's
// locals (isLocal) or by forwarding the enclosing function's own upvalue.
type upvalueRef struct {
	index   byte
	isLocal bool
}

// Loop tracks one active loop (or loop-shaped switch) so that break and
// continue can be compiled as forward/backward jumps without knowing their
// target ahead of time. Reused for switch with isLoop=false so continue
// skips past it to the nearest real loop while break still resolves there.
type Loop struct {
	enclosing  *Loop
	start      int
	scopeDepth int
	breakJumps []int
	isLoop     bool
}

// functionCompiler is one frame of the compiler's own stack, one per
// enclosing function body, linked leaf-to-root via enclosing.
type functionCompiler struct {
	enclosing   *functionCompiler
	function    *value.FunctionObj
	chunk       *value.Chunk
	typ         FunctionType
	locals      []Local
	scopeDepth  int
	upvalues    []upvalueRef
	currentLoop *Loop
}

// classCompiler is one frame of the compiler's class-declaration stack.
type classCompiler struct {
	enclosing     *classCompiler
	hasSuperclass bool
}

// Compiler holds all state for one compilation: the token stream, the
// function-compiler stack, the class-compiler stack, and accumulated
// errors. A Compiler is single-use; call New per compilation.
type Compiler struct {
	tokens  []token.Token
	pos     int
	prev    token.Token
	current token.Token

	errors    []error
	panicMode bool

	fc    *functionCompiler
	class *classCompiler
	rules map[token.TokenType]parseRule

	interner *value.Interner
}

// New returns a Compiler ready to compile tokens as a top-level script. The
// interner is shared with the VM so that string constants produced during
// compilation are already canonical.
func New(tokens []token.Token, interner *value.Interner) *Compiler {
	c := &Compiler{
		tokens:   tokens,
		interner: interner,
	}
	c.rules = c.buildRules()
	c.fc = &functionCompiler{
		function: &value.FunctionObj{Chunk: value.NewChunk()},
		typ:      TypeScript,
	}
	c.fc.chunk = c.fc.function.Chunk
	// Slot 0 is reserved for the implicit receiver; the top-level script
	// has no receiver, so it is declared with an empty name.
	c.fc.locals = append(c.fc.locals, Local{name: token.Token{Lexeme: ""}, depth: 0})
	return c
}

// Compile parses the full token stream as a sequence of declarations and
// returns the compiled top-level function. If any syntax errors were
// recorded, the returned function is nil and the errors (possibly several,
// one per panic-mode recovery) are returned instead.
func Compile(tokens []token.Token, interner *value.Interner) (*value.FunctionObj, []error) {
	c := New(tokens, interner)
	c.advance()
	for !c.check(token.EOF) {
		c.declaration()
	}
	fn := c.endFunction()
	if len(c.errors) > 0 {
		return nil, c.errors
	}
	return fn, nil
}

// --- token stream -----------------------------------------------------

func (c *Compiler) advance() {
	c.prev = c.current
	for {
		if c.pos >= len(c.tokens) {
			c.current = token.Token{TokenType: token.EOF, Line: c.prev.Line}
			return
		}
		c.current = c.tokens[c.pos]
		c.pos++
		return
	}
}

func (c *Compiler) check(tt token.TokenType) bool {
	return c.current.TokenType == tt
}

func (c *Compiler) match(tt token.TokenType) bool {
	if !c.check(tt) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(tt token.TokenType, message string) {
	if c.current.TokenType == tt {
		c.advance()
		return
	}
	c.errorAtCurrent(message)
}

func (c *Compiler) errorAtCurrent(message string) {
	c.errorAt(c.current, message)
}

func (c *Compiler) errorAtPrev(message string) {
	c.errorAt(c.prev, message)
}

func (c *Compiler) errorAt(tok token.Token, message string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	lexeme := tok.Lexeme
	if tok.TokenType == token.EOF {
		lexeme = "end"
	}
	c.errors = append(c.errors, &SyntaxError{
		Line:    tok.Line,
		Column:  int32(tok.Column),
		Message: "at '" + lexeme + "': " + message,
	})
}

// synchronize skips tokens until a likely statement boundary, suppressing
// cascading diagnostics from a single malformed construct.
func (c *Compiler) synchronize() {
	c.panicMode = false
	for c.current.TokenType != token.EOF {
		if c.prev.TokenType == token.SEMICOLON {
			return
		}
		switch c.current.TokenType {
		case token.CLASS, token.FUNC, token.VAR, token.FOR, token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		c.advance()
	}
}

// --- chunk / emission ---------------------------------------------------

func (c *Compiler) currentChunk() *value.Chunk { return c.fc.chunk }

func (c *Compiler) emitByte(b byte) { c.currentChunk().Write(b, c.prev.Line) }
func (c *Compiler) emitOp(op value.OpCode) { c.currentChunk().WriteOp(op, c.prev.Line) }
func (c *Compiler) emitOpByte(op value.OpCode, operand byte) {
	c.emitOp(op)
	c.emitByte(operand)
}

func (c *Compiler) emitJump(op value.OpCode) int {
	c.emitOp(op)
	c.emitByte(0xff)
	c.emitByte(0xff)
	return len(c.currentChunk().Code) - 2
}

func (c *Compiler) patchJump(offset int) {
	c.currentChunk().PatchJump(offset)
}

func (c *Compiler) emitLoop(loopStart int) {
	c.currentChunk().EmitLoop(loopStart, c.prev.Line)
}

func (c *Compiler) emitReturn() {
	if c.fc.typ == TypeInitializer {
		c.emitOpByte(value.OpGetLocal, 0)
	} else {
		c.emitOp(value.OpNil)
	}
	c.emitOp(value.OpReturn)
}

func (c *Compiler) makeConstant(v value.Value) byte {
	idx := c.currentChunk().AddConstant(v)
	if idx > 255 {
		c.errorAtPrev("too many constants in one chunk")
		return 0
	}
	return byte(idx)
}

func (c *Compiler) emitConstant(v value.Value) {
	c.emitOpByte(value.OpConstant, c.makeConstant(v))
}

// internString returns the interned StringObj for s as a constant-pool
// friendly Value, used for string literals and every identifier used as a
// global/property/method name.
func (c *Compiler) internString(s string) value.Value {
	obj := c.interner.Intern(s, func(hash uint32) *value.StringObj {
		return &value.StringObj{Chars: s, Hash: hash}
	})
	return value.Obj(obj)
}

func (c *Compiler) identifierConstant(name token.Token) byte {
	return c.makeConstant(c.internString(name.Lexeme))
}

// endFunction finalises the current function compiler: emits the implicit
// trailing return and, if this isn't the top-level script, emits the
// enclosing OP_CLOSURE plus its upvalue descriptor pairs, then pops the
// function-compiler stack.
func (c *Compiler) endFunction() *value.FunctionObj {
	c.emitReturn()
	fn := c.fc.function
	fn.UpvalueCount = len(c.fc.upvalues)

	enclosing := c.fc.enclosing
	upvalues := c.fc.upvalues
	if enclosing == nil {
		return fn
	}

	c.fc = enclosing
	idx := c.makeConstant(value.Obj(fn))
	c.emitOpByte(value.OpClosure, idx)
	for _, uv := range upvalues {
		isLocal := byte(0)
		if uv.isLocal {
			isLocal = 1
		}
		c.emitByte(isLocal)
		c.emitByte(uv.index)
	}
	return fn
}

// --- scope ---------------------------------------------------------------

func (c *Compiler) beginScope() { c.fc.scopeDepth++ }

func (c *Compiler) endScope() {
	c.fc.scopeDepth--
	for len(c.fc.locals) > 0 && c.fc.locals[len(c.fc.locals)-1].depth > c.fc.scopeDepth {
		last := c.fc.locals[len(c.fc.locals)-1]
		if last.isCaptured {
			c.emitOp(value.OpCloseUpvalue)
		} else {
			c.emitOp(value.OpPop)
		}
		c.fc.locals = c.fc.locals[:len(c.fc.locals)-1]
	}
}

// --- variables -----------------------------------------------------------

func (c *Compiler) declareVariable(name token.Token) {
	if c.fc.scopeDepth == 0 {
		return
	}
	for i := len(c.fc.locals) - 1; i >= 0; i-- {
		local := c.fc.locals[i]
		if local.depth != -1 && local.depth < c.fc.scopeDepth {
			break
		}
		if local.name.Lexeme == name.Lexeme {
			c.errorAtPrev("a variable named '" + name.Lexeme + "' already exists in this scope")
		}
	}
	c.addLocal(name)
}

func (c *Compiler) addLocal(name token.Token) {
	c.fc.locals = append(c.fc.locals, Local{name: name, depth: -1})
}

func (c *Compiler) markInitialized() {
	if c.fc.scopeDepth == 0 {
		return
	}
	c.fc.locals[len(c.fc.locals)-1].depth = c.fc.scopeDepth
}

// parseVariable consumes an identifier, declares it if local, and returns
// the constant-pool index to use with DEFINE_GLOBAL (0 for locals, where
// the value is ignored by defineVariable).
func (c *Compiler) parseVariable(message string) byte {
	c.consume(token.IDENTIFIER, message)
	name := c.prev
	c.declareVariable(name)
	if c.fc.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(name)
}

func (c *Compiler) defineVariable(global byte) {
	if c.fc.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitOpByte(value.OpDefineGlobal, global)
}

func (c *Compiler) resolveLocal(fc *functionCompiler, name token.Token) int {
	for i := len(fc.locals) - 1; i >= 0; i-- {
		if fc.locals[i].name.Lexeme == name.Lexeme {
			if fc.locals[i].depth == -1 {
				c.errorAtPrev("can't read local variable '" + name.Lexeme + "' in its own initialiser")
			}
			return i
		}
	}
	return -1
}

func (c *Compiler) addUpvalue(fc *functionCompiler, index byte, isLocal bool) int {
	for i, uv := range fc.upvalues {
		if uv.index == index && uv.isLocal == isLocal {
			return i
		}
	}
	fc.upvalues = append(fc.upvalues, upvalueRef{index: index, isLocal: isLocal})
	return len(fc.upvalues) - 1
}

func (c *Compiler) resolveUpvalue(fc *functionCompiler, name token.Token) int {
	if fc.enclosing == nil {
		return -1
	}
	if local := c.resolveLocal(fc.enclosing, name); local != -1 {
		fc.enclosing.locals[local].isCaptured = true
		return c.addUpvalue(fc, byte(local), true)
	}
	if up := c.resolveUpvalue(fc.enclosing, name); up != -1 {
		return c.addUpvalue(fc, byte(up), false)
	}
	return -1
}
