package vm

import "nilan/value"

// NewClass allocates a class value for use by native callbacks that need a
// convention class of their own (e.g. a YAML-decoding native's result
// table), per spec.md §4.6's promise that native code allocates through the
// same allocator the VM itself uses.
func (vm *VM) NewClass(name string) *value.ClassObj {
	nameObj := vm.strings.Intern(name, func(hash uint32) *value.StringObj {
		so := &value.StringObj{Chars: name, Hash: hash}
		vm.trackObject(so)
		return so
	})
	class := &value.ClassObj{Name: nameObj, Methods: value.NewTable()}
	vm.trackObject(class)
	return class
}

// NewInstance allocates an instance of class with an empty field table.
func (vm *VM) NewInstance(class *value.ClassObj) *value.InstanceObj {
	inst := &value.InstanceObj{Class: class, Fields: value.NewTable()}
	vm.trackObject(inst)
	return inst
}
