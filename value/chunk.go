package value

import "fmt"

// OpCode is a single bytecode instruction tag. Operand sizes can be read off
// disassembleInstruction below; see spec.md §4.2 for stack effects.
type OpCode byte

const (
	OpConstant OpCode = iota
	OpNil
	OpTrue
	OpFalse
	OpPop
	OpDup
	OpGetLocal
	OpSetLocal
	OpGetGlobal
	OpSetGlobal
	OpDefineGlobal
	OpGetUpvalue
	OpSetUpvalue
	OpCloseUpvalue
	OpEqual
	OpGreater
	OpLess
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpNot
	OpNegate
	OpPrint
	OpJump
	OpJumpIfFalse
	OpLoop
	OpCall
	OpClosure
	OpClass
	OpMethod
	OpInherit
	OpGetProperty
	OpSetProperty
	OpInvoke
	OpSuperInvoke
	OpGetSuper
	OpInstanceof
	OpReturn
)

var opNames = map[OpCode]string{
	OpConstant:      "OP_CONSTANT",
	OpNil:           "OP_NIL",
	OpTrue:          "OP_TRUE",
	OpFalse:         "OP_FALSE",
	OpPop:           "OP_POP",
	OpDup:           "OP_DUP",
	OpGetLocal:      "OP_GET_LOCAL",
	OpSetLocal:      "OP_SET_LOCAL",
	OpGetGlobal:     "OP_GET_GLOBAL",
	OpSetGlobal:     "OP_SET_GLOBAL",
	OpDefineGlobal:  "OP_DEFINE_GLOBAL",
	OpGetUpvalue:    "OP_GET_UPVALUE",
	OpSetUpvalue:    "OP_SET_UPVALUE",
	OpCloseUpvalue:  "OP_CLOSE_UPVALUE",
	OpEqual:         "OP_EQUAL",
	OpGreater:       "OP_GREATER",
	OpLess:          "OP_LESS",
	OpAdd:           "OP_ADD",
	OpSubtract:      "OP_SUBTRACT",
	OpMultiply:      "OP_MULTIPLY",
	OpDivide:        "OP_DIVIDE",
	OpNot:           "OP_NOT",
	OpNegate:        "OP_NEGATE",
	OpPrint:         "OP_PRINT",
	OpJump:          "OP_JUMP",
	OpJumpIfFalse:   "OP_JUMP_IF_FALSE",
	OpLoop:          "OP_LOOP",
	OpCall:          "OP_CALL",
	OpClosure:       "OP_CLOSURE",
	OpClass:         "OP_CLASS",
	OpMethod:        "OP_METHOD",
	OpInherit:       "OP_INHERIT",
	OpGetProperty:   "OP_GET_PROPERTY",
	OpSetProperty:   "OP_SET_PROPERTY",
	OpInvoke:        "OP_INVOKE",
	OpSuperInvoke:   "OP_SUPER_INVOKE",
	OpGetSuper:      "OP_GET_SUPER",
	OpInstanceof:    "OP_INSTANCEOF",
	OpReturn:        "OP_RETURN",
}

func (op OpCode) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("OP_UNKNOWN(%d)", byte(op))
}

// Chunk is the bytecode body of one function: an append-only byte buffer of
// opcodes and inline operands, a parallel per-byte line-number table (read
// for runtime error reporting and by the disassembler; it trades memory for
// an O(1) line lookup the way the teacher's own code/line tables did), and a constant
// pool addressed by an 8-bit index. Owned by the FunctionObj it belongs to.
type Chunk struct {
	Code      []byte
	Lines     []int32
	Constants []Value
}

// NewChunk returns an empty Chunk.
func NewChunk() *Chunk {
	return &Chunk{}
}

// Write appends one byte (an opcode or a raw operand byte) and its source
// line to the chunk.
func (c *Chunk) Write(b byte, line int32) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// WriteOp appends an opcode.
func (c *Chunk) WriteOp(op OpCode, line int32) {
	c.Write(byte(op), line)
}

// AddConstant appends val to the constant pool and returns its index.
// Callers must ensure the pool never grows past 256 entries (the compiler
// reports a "too many constants" error rather than let this overflow).
func (c *Chunk) AddConstant(val Value) int {
	c.Constants = append(c.Constants, val)
	return len(c.Constants) - 1
}

// PatchJump backpatches the two-byte big-endian operand at offset (which
// immediately follows a JUMP/JUMP_IF_FALSE opcode byte) so that it encodes
// the distance from just after the operand to the current end of the chunk.
func (c *Chunk) PatchJump(offset int) {
	jump := len(c.Code) - offset - 2
	c.Code[offset] = byte((jump >> 8) & 0xff)
	c.Code[offset+1] = byte(jump & 0xff)
}

// EmitLoop writes an OP_LOOP and its backwards two-byte offset, jumping ip
// back to loopStart once executed.
func (c *Chunk) EmitLoop(loopStart int, line int32) {
	c.WriteOp(OpLoop, line)
	offset := len(c.Code) - loopStart + 2
	c.Write(byte((offset>>8)&0xff), line)
	c.Write(byte(offset&0xff), line)
}

// ReadShort decodes the big-endian two-byte operand at ip.
func (c *Chunk) ReadShort(ip int) uint16 {
	return uint16(c.Code[ip])<<8 | uint16(c.Code[ip+1])
}

// Disassemble renders the whole chunk in a human-readable form, used by the
// disassembleOnCompile diagnostics.
func (c *Chunk) Disassemble(name string) string {
	out := fmt.Sprintf("== %s ==\n", name)
	for offset := 0; offset < len(c.Code); {
		var line string
		line, offset = c.disassembleInstruction(offset)
		out += line
	}
	return out
}

func (c *Chunk) disassembleInstruction(offset int) (string, int) {
	prefix := fmt.Sprintf("%04d ", offset)
	if offset > 0 && c.Lines[offset] == c.Lines[offset-1] {
		prefix += "   | "
	} else {
		prefix += fmt.Sprintf("%4d ", c.Lines[offset])
	}

	op := OpCode(c.Code[offset])
	switch op {
	case OpGetLocal, OpSetLocal, OpGetUpvalue, OpSetUpvalue, OpCall:
		slot := c.Code[offset+1]
		return fmt.Sprintf("%s%-16s %4d\n", prefix, op, slot), offset + 2
	case OpConstant, OpGetGlobal, OpSetGlobal, OpDefineGlobal, OpClass, OpMethod, OpGetProperty, OpSetProperty, OpGetSuper:
		idx := c.Code[offset+1]
		return fmt.Sprintf("%s%-16s %4d '%s'\n", prefix, op, idx, c.Constants[idx].String()), offset + 2
	case OpInvoke, OpSuperInvoke:
		idx := c.Code[offset+1]
		argc := c.Code[offset+2]
		return fmt.Sprintf("%s%-16s (%d args) %4d '%s'\n", prefix, op, argc, idx, c.Constants[idx].String()), offset + 3
	case OpJump, OpJumpIfFalse:
		jump := c.ReadShort(offset + 1)
		return fmt.Sprintf("%s%-16s %4d -> %d\n", prefix, op, offset, offset+3+int(jump)), offset + 3
	case OpLoop:
		jump := c.ReadShort(offset + 1)
		return fmt.Sprintf("%s%-16s %4d -> %d\n", prefix, op, offset, offset+3-int(jump)), offset + 3
	case OpClosure:
		idx := c.Code[offset+1]
		fn := c.Constants[idx].AsObject().(*FunctionObj)
		line := fmt.Sprintf("%s%-16s %4d '%s'\n", prefix, op, idx, fn.String())
		next := offset + 2
		for i := 0; i < fn.UpvalueCount; i++ {
			isLocal := c.Code[next]
			index := c.Code[next+1]
			kind := "upvalue"
			if isLocal != 0 {
				kind = "local"
			}
			line += fmt.Sprintf("%04d      |                     %s %d\n", next, kind, index)
			next += 2
		}
		return line, next
	default:
		return fmt.Sprintf("%s%s\n", prefix, op), offset + 1
	}
}
