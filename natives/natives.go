// Package natives implements the host-registered functions exposed to
// Nilan scripts: the tiny built-in library spec.md §1 calls out by name
// (clock, string length, string indexing) plus the host-side extras
// SPEC_FULL.md §B wires in (YAML, terminal detection). None of this lives
// in the core engine — spec.md treats the built-in library as an external
// collaborator, registered through the same embedding surface (§4.6) a
// Brainfuck-hosting program or any other embedder would use.
package natives

import (
	"fmt"
	"time"

	"nilan/value"
	"nilan/vm"
)

// Register installs every native this package provides as a global on v,
// under the names a Nilan script calls them by.
func Register(v *vm.VM) {
	v.DefineNative("clock", Clock)
	v.DefineNative("length", Length)
	v.DefineNative("index", Index)
	v.DefineNative("yamlDecode", YAMLDecode)
	v.DefineNative("yamlEncode", YAMLEncode)
	v.DefineNative("isTerminal", IsTerminal)
}

// Clock returns the number of seconds since the Unix epoch, mirroring
// stdlib.cpp's clockNative (CLOCKS_PER_SEC-scaled process clock in the
// original; wall-clock seconds here, since Go's process-clock equivalent,
// os.ProcessState, isn't available mid-execution).
func Clock(host any, args []value.Value) (value.Value, error) {
	return value.Number(float64(time.Now().UnixNano()) / 1e9), nil
}

// Length returns the number of bytes in its single string argument.
func Length(host any, args []value.Value) (value.Value, error) {
	if len(args) != 1 || !args[0].IsObjType(value.ObjStringType) {
		return value.Value{}, fmt.Errorf("length expects one string argument")
	}
	s := args[0].AsObject().(*value.StringObj)
	return value.Number(float64(len(s.Chars))), nil
}

// Index returns the single-byte substring at a zero-based offset into its
// string argument, as a new interned string, matching the original
// engine's string-indexing built-in (spec.md §1).
func Index(host any, args []value.Value) (value.Value, error) {
	if len(args) != 2 || !args[0].IsObjType(value.ObjStringType) || !args[1].IsNumber() {
		return value.Value{}, fmt.Errorf("index expects a string and a number")
	}
	s := args[0].AsObject().(*value.StringObj)
	i := int(args[1].AsNumber())
	if i < 0 || i >= len(s.Chars) {
		return value.Value{}, fmt.Errorf("index %d out of range for string of length %d", i, len(s.Chars))
	}
	v, ok := host.(*vm.VM)
	if !ok {
		return value.Value{}, fmt.Errorf("index requires a VM host")
	}
	return v.NewString(string(s.Chars[i])), nil
}
