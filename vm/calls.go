package vm

import "nilan/value"

// callValue dispatches CALL argc on the callee sitting at
// stack[top-argc-1], per spec.md §4.3 "Calling".
func (vm *VM) callValue(callee value.Value, argCount int) error {
	if callee.IsObject() {
		switch obj := callee.AsObject().(type) {
		case *value.BoundMethodObj:
			vm.stack[vm.stackTop-argCount-1] = obj.Receiver
			return vm.call(obj.Method, argCount)
		case *value.ClassObj:
			instance := &value.InstanceObj{Class: obj, Fields: value.NewTable()}
			vm.trackObject(instance)
			vm.stack[vm.stackTop-argCount-1] = value.Obj(instance)
			if initializer, ok := findMethod(obj, "init"); ok {
				return vm.call(initializer, argCount)
			}
			if argCount != 0 {
				return vm.runtimeError(vm.currentLine(), "expected 0 arguments but got %d", argCount)
			}
			return nil
		case *value.ClosureObj:
			return vm.call(obj, argCount)
		case *value.NativeObj:
			args := vm.stack[vm.stackTop-argCount : vm.stackTop]
			result, err := obj.Fn(vm, args)
			if err != nil {
				return vm.runtimeError(vm.currentLine(), "%v", err)
			}
			vm.stackTop -= argCount + 1
			vm.push(result)
			return nil
		}
	}
	return vm.runtimeError(vm.currentLine(), "can only call functions and classes")
}

// currentLine reports the line of the instruction about to execute in the
// active frame, or 0 before any frame has been opened.
func (vm *VM) currentLine() int32 {
	if vm.frameCount == 0 {
		return 0
	}
	return vm.currentFrame().line()
}

func (vm *VM) call(closure *value.ClosureObj, argCount int) error {
	if argCount != closure.Function.Arity {
		return vm.runtimeError(vm.currentLine(), "expected %d arguments but got %d", closure.Function.Arity, argCount)
	}
	if vm.frameCount == len(vm.frames) {
		return vm.runtimeError(vm.currentLine(), "stack overflow")
	}
	vm.frames[vm.frameCount] = callFrame{
		closure:   closure,
		ip:        0,
		slotsBase: vm.stackTop - argCount - 1,
	}
	vm.frameCount++
	return nil
}

// findMethod walks the superclass chain looking up name, implementing
// dynamic dispatch without ever copying a method table between classes
// (SPEC_FULL.md OQ-2).
func findMethod(class *value.ClassObj, name string) (*value.ClosureObj, bool) {
	for c := class; c != nil; c = c.Superclass {
		if v, ok := c.Methods.Get(name); ok {
			return v.AsObject().(*value.ClosureObj), true
		}
	}
	return nil, false
}

// getProperty implements GET_PROPERTY: probe fields first, then walk the
// method chain and wrap a hit as a BoundMethod on instance.
func (vm *VM) getProperty(instance *value.InstanceObj, name string) (value.Value, error) {
	if v, ok := instance.Fields.Get(name); ok {
		return v, nil
	}
	if method, ok := findMethod(instance.Class, name); ok {
		bound := &value.BoundMethodObj{Receiver: value.Obj(instance), Method: method}
		vm.trackObject(bound)
		return value.Obj(bound), nil
	}
	return value.Value{}, vm.runtimeError(vm.currentLine(), "undefined property '%s'", name)
}

// invoke fuses GET_PROPERTY+CALL: probe fields for a callable value first
// (permitting a field holding a closure), else walk the method chain
// directly without allocating an intermediate BoundMethod.
func (vm *VM) invoke(name string, argCount int) error {
	receiver := vm.peek(argCount)
	instance, ok := receiver.AsObject().(*value.InstanceObj)
	if !ok {
		return vm.runtimeError(vm.currentLine(), "only instances have methods")
	}
	if v, ok := instance.Fields.Get(name); ok {
		vm.stack[vm.stackTop-argCount-1] = v
		return vm.callValue(v, argCount)
	}
	method, ok := findMethod(instance.Class, name)
	if !ok {
		return vm.runtimeError(vm.currentLine(), "undefined property '%s'", name)
	}
	return vm.call(method, argCount)
}

func (vm *VM) superInvoke(superclass *value.ClassObj, name string, argCount int) error {
	method, ok := findMethod(superclass, name)
	if !ok {
		return vm.runtimeError(vm.currentLine(), "undefined property '%s'", name)
	}
	return vm.call(method, argCount)
}

// instanceofCheck walks target's class chain looking for class by
// identity, per spec.md §4.3/§8 (Testable property "Inheritance chain").
func instanceofCheck(target value.Value, class *value.ClassObj) bool {
	instance, ok := target.AsObject().(*value.InstanceObj)
	if !ok {
		return false
	}
	for c := instance.Class; c != nil; c = c.Superclass {
		if c == class {
			return true
		}
	}
	return false
}
