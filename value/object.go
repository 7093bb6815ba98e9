package value

import "fmt"

// ObjType tags the heap object variants described in spec.md §3.
type ObjType byte

const (
	ObjStringType ObjType = iota
	ObjFunctionType
	ObjClosureType
	ObjUpvalueType
	ObjClassType
	ObjInstanceType
	ObjBoundMethodType
	ObjNativeType
)

// Header is embedded in every heap object variant. It carries the mark bit
// and sweep-list link the collector needs; the VM threads each object it
// allocates onto its all-objects list via SetNext. Objects the compiler
// allocates (function objects and the strings it interns) are not on that
// list.
type Header struct {
	marked bool
	next   Object
}

func (h *Header) isMarked() bool    { return h.marked }
func (h *Header) setMarked(m bool)  { h.marked = m }
func (h *Header) next_() Object     { return h.next }
func (h *Header) setNext(o Object)  { h.next = o }

// Object is implemented by every heap-allocated variant: string, function,
// closure, upvalue, class, instance, bound method, and native function.
type Object interface {
	objType() ObjType
	isMarked() bool
	setMarked(bool)
	next_() Object
	setNext(Object)
	String() string
}

// Next returns the object's link in the all-objects sweep list.
func Next(o Object) Object { return o.next_() }

// SetNext sets the object's link in the all-objects sweep list.
func SetNext(o Object, next Object) { o.setNext(next) }

// IsMarked reports whether the collector has marked o reachable this cycle.
func IsMarked(o Object) bool { return o.isMarked() }

// Mark flags o as reachable; Unmark clears the flag at the start of sweep.
func Mark(o Object)   { o.setMarked(true) }
func Unmark(o Object) { o.setMarked(false) }

// ObjectType exposes the variant tag for callers outside the package (the
// VM's dispatch and the collector's trace phase switch on it).
func ObjectType(o Object) ObjType { return o.objType() }

// StringObj is an interned, immutable byte sequence. At most one live
// instance exists per distinct byte sequence (see Interner).
type StringObj struct {
	Header
	Chars string
	Hash  uint32
}

func (s *StringObj) objType() ObjType { return ObjStringType }
func (s *StringObj) String() string   { return s.Chars }

// FunctionObj is immutable once compilation finishes: arity, the number of
// upvalues its closures must allocate, its owned chunk, and an optional
// name (nil for the implicit top-level script function).
type FunctionObj struct {
	Header
	Name         *StringObj
	Arity        int
	UpvalueCount int
	Chunk        *Chunk
}

func (f *FunctionObj) objType() ObjType { return ObjFunctionType }
func (f *FunctionObj) String() string {
	if f.Name == nil {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name.Chars)
}

// UpvalueObj is either open (Location points into a live VM stack slot) or
// closed (Location points at Closed, its own cell). NextOpen links it into
// the VM's intrusive open-upvalue list, ordered by descending stack
// address; it is unused once the upvalue is closed.
type UpvalueObj struct {
	Header
	Location *Value
	Closed   Value
	NextOpen *UpvalueObj
	// Slot is the stack index Location pointed into while open. Go gives
	// no ordering operators on pointers, so the VM's open-upvalue list
	// (ordered by descending stack address per spec.md §4.3) is threaded
	// by comparing Slot rather than Location itself.
	Slot int
}

func (u *UpvalueObj) objType() ObjType { return ObjUpvalueType }
func (u *UpvalueObj) String() string   { return "<upvalue>" }

// Close moves the current value at Location into the upvalue's own cell and
// redirects Location to point there, detaching it from the stack slot.
func (u *UpvalueObj) Close() {
	u.Closed = *u.Location
	u.Location = &u.Closed
}

// ClosureObj pairs a function with its bound upvalues. Upvalues has length
// equal to Function.UpvalueCount; each slot is filled once, in order, by
// OP_CLOSURE.
type ClosureObj struct {
	Header
	Function *FunctionObj
	Upvalues []*UpvalueObj
}

func (c *ClosureObj) objType() ObjType { return ObjClosureType }
func (c *ClosureObj) String() string   { return c.Function.String() }

// ClassObj holds a method table (name -> closure Value) and an optional,
// once-set-immutable superclass reference. Methods are resolved by walking
// the superclass chain at dispatch time (see OQ-2 in SPEC_FULL.md) rather
// than by copying entries at inheritance time.
type ClassObj struct {
	Header
	Name       *StringObj
	Methods    *Table
	Superclass *ClassObj
}

func (c *ClassObj) objType() ObjType { return ObjClassType }
func (c *ClassObj) String() string   { return fmt.Sprintf("<class %s>", c.Name.Chars) }

// InstanceObj holds a reference to its class and its own field table.
// Field lookup never traverses the class; method lookup never traverses
// fields (see GET_PROPERTY / SET_PROPERTY semantics in vm).
type InstanceObj struct {
	Header
	Class  *ClassObj
	Fields *Table
}

func (i *InstanceObj) objType() ObjType { return ObjInstanceType }
func (i *InstanceObj) String() string   { return fmt.Sprintf("<%s instance>", i.Class.Name.Chars) }

// BoundMethodObj stores the receiver explicitly, even when it is identical
// to the callee's implicit `this`, so that the receiver survives being
// passed around as a first-class value independent of any instance field.
type BoundMethodObj struct {
	Header
	Receiver Value
	Method   *ClosureObj
}

func (b *BoundMethodObj) objType() ObjType { return ObjBoundMethodType }
func (b *BoundMethodObj) String() string   { return b.Method.String() }

// NativeFn is a host callback. It receives the full argument slice (no
// arity check is performed by the engine) and a VM handle opaque to the
// callback's own package, matching the embedding ABI in spec.md §4.6/§9.
type NativeFn func(vm any, args []Value) (Value, error)

// NativeObj wraps an opaque host function pointer. The engine does not
// check its arity; the callback is responsible for validating len(args).
type NativeObj struct {
	Header
	Name string
	Fn   NativeFn
}

func (n *NativeObj) objType() ObjType { return ObjNativeType }
func (n *NativeObj) String() string   { return fmt.Sprintf("<native fn %s>", n.Name) }
