// Package vm implements the stack-based virtual machine that executes
// compiled Nilan bytecode: call frames, upvalue capture/closing, method
// dispatch, inheritance, and a mark-and-sweep collector over the object
// heap, per spec.md §4.3/§4.4.
package vm

import (
	"fmt"
	"io"
	"os"

	"nilan/compiler"
	"nilan/config"
	"nilan/value"

	"nilan/lexer"
)

// InterpretResult is the three-way outcome the embedding surface exposes
// for one call to Interpret, per spec.md §4.6.
type InterpretResult byte

const (
	InterpretOK InterpretResult = iota
	InterpretCompileError
	InterpretRuntimeError
)

// VM is the engine's single-threaded, cooperative runtime. It is not safe
// to call Interpret re-entrantly on the same instance (spec.md §5); a
// native callback may read/write globals and allocate but must not call
// Interpret itself.
type VM struct {
	cfg config.Config

	stack    []value.Value
	stackTop int

	frames     []callFrame
	frameCount int

	globals *value.Table
	strings *value.Interner
	objects value.Object
	openUps *value.UpvalueObj

	grayStack []value.Object

	bytesAllocated int
	nextGC         int
	gcStats        GCStats

	lastValue value.Value
	out       io.Writer
}

// New returns a VM configured per cfg, with output directed to the process
// stdout and every object sweep list, intern table, and globals table
// freshly empty.
func New(cfg config.Config) *VM {
	return &VM{
		cfg:     cfg,
		stack:   make([]value.Value, cfg.StackSize),
		frames:  make([]callFrame, cfg.FrameCount),
		globals: value.NewTable(),
		strings: value.NewInterner(),
		nextGC:  cfg.GCInitialThreshold,
		out:     os.Stdout,
	}
}

// SetOutput redirects PRINT statement output away from stdout, e.g. to a
// test buffer. Diagnostics still go to stderr, and the CLI writes its REPL
// prompt and echoed values itself.
func (vm *VM) SetOutput(w io.Writer) { vm.out = w }

// NewString returns an interned Value wrapping s, allocating a new
// StringObj only if s has not been interned before. Part of the embedding
// surface: native callbacks and the host use this to build a Nilan string.
func (vm *VM) NewString(s string) value.Value {
	obj := vm.strings.Intern(s, func(hash uint32) *value.StringObj {
		so := &value.StringObj{Chars: s, Hash: hash}
		vm.trackObject(so)
		return so
	})
	return value.Obj(obj)
}

func (vm *VM) trackObject(o value.Object) {
	value.SetNext(o, vm.objects)
	vm.objects = o
	vm.bytesAllocated++
	if vm.bytesAllocated > vm.nextGC {
		vm.collectGarbage()
	}
}

// GetGlobal reads a global by name. spec.md §4.6(c) only promises
// number/bool accessors at the embedding surface; this implementation
// returns the full tagged Value, letting the host narrow it itself.
func (vm *VM) GetGlobal(name string) (value.Value, bool) {
	return vm.globals.Get(name)
}

// SetGlobal writes a global by name, creating it if absent.
func (vm *VM) SetGlobal(name string, v value.Value) {
	vm.globals.Set(name, v)
}

// DefineNative registers a host callback under a global name, per
// spec.md §4.6(f).
func (vm *VM) DefineNative(name string, fn value.NativeFn) {
	obj := &value.NativeObj{Name: name, Fn: fn}
	vm.trackObject(obj)
	vm.globals.Set(name, value.Obj(obj))
}

// LastValue returns the value left over from the most recent Interpret
// call: the value of the script's last statement when that is a top-level
// expression statement (SPEC_FULL.md OQ-3), or Nil otherwise (for example
// a declarations-only program).
func (vm *VM) LastValue() value.Value { return vm.lastValue }

// Interpret compiles and runs source on this VM instance. Compile errors
// are printed with one diagnostic per recovered syntax error and the VM is
// never entered; a runtime error unwinds every frame, prints one
// diagnostic, and resets the stack, leaving the VM usable for a
// subsequent call.
func (vm *VM) Interpret(source string) InterpretResult {
	lex := lexer.New(source)
	tokens, err := lex.Scan()
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 %v\n", err)
		return InterpretCompileError
	}

	fn, errs := compiler.Compile(tokens, vm.strings)
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e)
		}
		return InterpretCompileError
	}

	if vm.cfg.DisassembleOnCompile {
		fmt.Fprint(os.Stderr, fn.Chunk.Disassemble(fn.String()))
	}

	closure := &value.ClosureObj{Function: fn, Upvalues: make([]*value.UpvalueObj, fn.UpvalueCount)}
	vm.trackObject(closure)
	vm.push(value.Obj(closure))
	if err := vm.callValue(value.Obj(closure), 0); err != nil {
		fmt.Fprintln(os.Stderr, err)
		vm.resetStack()
		return InterpretRuntimeError
	}

	if err := vm.run(); err != nil {
		if re, ok := err.(*RuntimeError); ok {
			fmt.Fprintln(os.Stderr, re)
		} else {
			fmt.Fprintf(os.Stderr, "🤖 %v\n", err)
		}
		vm.resetStack()
		return InterpretRuntimeError
	}
	return InterpretOK
}

func (vm *VM) resetStack() {
	vm.stackTop = 0
	vm.frameCount = 0
	vm.openUps = nil
}

func (vm *VM) push(v value.Value) {
	vm.stack[vm.stackTop] = v
	vm.stackTop++
}

func (vm *VM) pop() value.Value {
	vm.stackTop--
	return vm.stack[vm.stackTop]
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[vm.stackTop-1-distance]
}

func (vm *VM) currentFrame() *callFrame {
	return &vm.frames[vm.frameCount-1]
}

func (vm *VM) runtimeError(line int32, format string, args ...any) error {
	return &RuntimeError{Line: line, Message: fmt.Sprintf(format, args...)}
}
