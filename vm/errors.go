package vm

import "fmt"

// RuntimeError is produced by the dispatch loop when execution fails after
// compilation succeeded: a type error on an operand, calling a
// non-callable, an arity mismatch, a stack overflow, an undefined global,
// or any of the other triggers listed in spec.md §7. Interpret prints it to
// stderr, resets the stack, and returns InterpretRuntimeError; the VM
// remains usable afterwards.
type RuntimeError struct {
	Line    int32
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("💥 RuntimeError: [line %d] %s", e.Line, e.Message)
}

// internalError signals an engine bug: an invariant the compiler/VM
// contract is supposed to guarantee did not hold (e.g. a frame popped past
// empty, or an opcode reached dispatch with no matching case).
type internalError struct {
	Message string
}

func (e *internalError) Error() string {
	return fmt.Sprintf("🤖 internal error: %s", e.Message)
}
