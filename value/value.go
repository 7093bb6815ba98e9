// Package value defines the tagged runtime value and the heterogeneous heap
// object variants that the Nilan virtual machine operates on.
package value

import (
	"strconv"
)

// Type tags the four variants a Value can hold.
type Type byte

const (
	TypeBool Type = iota
	TypeNil
	TypeNumber
	TypeObject
)

// Value is a tagged sum of bool, nil, 64-bit float, or a pointer to a heap
// Object. It is always passed by value (never by pointer) so that pushing
// and popping it on the VM's value stack never allocates.
type Value struct {
	typ     Type
	boolean bool
	number  float64
	obj     Object
}

// Bool wraps a boolean as a Value.
func Bool(b bool) Value { return Value{typ: TypeBool, boolean: b} }

// Nil returns the singular nil Value.
func Nil() Value { return Value{typ: TypeNil} }

// Number wraps a float64 as a Value.
func Number(n float64) Value { return Value{typ: TypeNumber, number: n} }

// Obj wraps a heap Object as a Value.
func Obj(o Object) Value { return Value{typ: TypeObject, obj: o} }

func (v Value) IsBool() bool   { return v.typ == TypeBool }
func (v Value) IsNil() bool    { return v.typ == TypeNil }
func (v Value) IsNumber() bool { return v.typ == TypeNumber }
func (v Value) IsObject() bool { return v.typ == TypeObject }

func (v Value) AsBool() bool     { return v.boolean }
func (v Value) AsNumber() float64 { return v.number }
func (v Value) AsObject() Object  { return v.obj }

// IsObjType reports whether v is a heap object of the given variant.
func (v Value) IsObjType(t ObjType) bool {
	return v.typ == TypeObject && v.obj != nil && v.obj.objType() == t
}

// IsFalsey implements the engine's truthiness rule: nil and the boolean
// false are falsey, everything else (including 0 and the empty string) is
// truthy.
func (v Value) IsFalsey() bool {
	return v.IsNil() || (v.IsBool() && !v.AsBool())
}

// Equals implements the structural/identity equality rule from the data
// model: primitives compare structurally, strings compare by content (but
// since all strings are interned, pointer identity already agrees with
// that), and every other object compares by identity.
func (v Value) Equals(other Value) bool {
	if v.typ != other.typ {
		return false
	}
	switch v.typ {
	case TypeBool:
		return v.boolean == other.boolean
	case TypeNil:
		return true
	case TypeNumber:
		return v.number == other.number
	case TypeObject:
		if vs, ok := v.obj.(*StringObj); ok {
			if os, ok := other.obj.(*StringObj); ok {
				return vs == os || vs.Chars == os.Chars
			}
			return false
		}
		return v.obj == other.obj
	}
	return false
}

// String renders v the way the engine's `print` statement and REPL do:
// trailing zeros are stripped from the default float formatting, and every
// object variant formats itself via Object.String.
func (v Value) String() string {
	switch v.typ {
	case TypeBool:
		return strconv.FormatBool(v.boolean)
	case TypeNil:
		return "nil"
	case TypeNumber:
		return formatNumber(v.number)
	case TypeObject:
		if v.obj == nil {
			return "nil"
		}
		return v.obj.String()
	}
	return "<invalid value>"
}

func formatNumber(n float64) string {
	s := strconv.FormatFloat(n, 'f', -1, 64)
	return s
}

// TypeName returns a short, human-readable name for v's runtime type, used
// in runtime type-error diagnostics.
func (v Value) TypeName() string {
	switch v.typ {
	case TypeBool:
		return "bool"
	case TypeNil:
		return "nil"
	case TypeNumber:
		return "number"
	case TypeObject:
		if v.obj == nil {
			return "nil"
		}
		return objTypeName(v.obj.objType())
	}
	return "unknown"
}

func objTypeName(t ObjType) string {
	switch t {
	case ObjStringType:
		return "string"
	case ObjFunctionType:
		return "function"
	case ObjClosureType:
		return "closure"
	case ObjUpvalueType:
		return "upvalue"
	case ObjClassType:
		return "class"
	case ObjInstanceType:
		return "instance"
	case ObjBoundMethodType:
		return "bound method"
	case ObjNativeType:
		return "native function"
	}
	return "object"
}
