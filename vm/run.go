package vm

import (
	"fmt"

	"nilan/value"
)

// run is the tight dispatch loop: it reads the next opcode through the
// current frame's ip and executes it, switching frames whenever a call or
// return changes vm.frameCount, per spec.md §4.3 "Dispatch".
func (vm *VM) run() error {
	for {
		frame := vm.currentFrame()
		if vm.stackTop >= len(vm.stack) {
			return vm.runtimeError(frame.line(), "stack overflow")
		}
		op := value.OpCode(frame.readByte())

		switch op {
		case value.OpConstant:
			vm.push(frame.readConstant())

		case value.OpNil:
			vm.push(value.Nil())
		case value.OpTrue:
			vm.push(value.Bool(true))
		case value.OpFalse:
			vm.push(value.Bool(false))

		case value.OpPop:
			vm.pop()
		case value.OpDup:
			vm.push(vm.peek(0))

		case value.OpGetLocal:
			slot := frame.readByte()
			vm.push(vm.stack[frame.slotsBase+int(slot)])
		case value.OpSetLocal:
			slot := frame.readByte()
			vm.stack[frame.slotsBase+int(slot)] = vm.peek(0)

		case value.OpGetGlobal:
			name := frame.readConstant().AsObject().(*value.StringObj).Chars
			v, ok := vm.globals.Get(name)
			if !ok {
				return vm.runtimeError(frame.line(), "undefined variable '%s'", name)
			}
			vm.push(v)
		case value.OpSetGlobal:
			name := frame.readConstant().AsObject().(*value.StringObj).Chars
			if vm.globals.Set(name, vm.peek(0)) {
				vm.globals.Delete(name)
				return vm.runtimeError(frame.line(), "undefined variable '%s'", name)
			}
		case value.OpDefineGlobal:
			name := frame.readConstant().AsObject().(*value.StringObj).Chars
			vm.globals.Set(name, vm.peek(0))
			vm.pop()

		case value.OpGetUpvalue:
			slot := frame.readByte()
			vm.push(*frame.closure.Upvalues[slot].Location)
		case value.OpSetUpvalue:
			slot := frame.readByte()
			*frame.closure.Upvalues[slot].Location = vm.peek(0)
		case value.OpCloseUpvalue:
			vm.closeUpvalues(vm.stackTop - 1)
			vm.pop()

		case value.OpEqual:
			b := vm.pop()
			a := vm.pop()
			vm.push(value.Bool(a.Equals(b)))
		case value.OpGreater:
			if err := vm.numericBinary(frame, func(a, b float64) value.Value { return value.Bool(a > b) }); err != nil {
				return err
			}
		case value.OpLess:
			if err := vm.numericBinary(frame, func(a, b float64) value.Value { return value.Bool(a < b) }); err != nil {
				return err
			}

		case value.OpAdd:
			if err := vm.add(frame); err != nil {
				return err
			}
		case value.OpSubtract:
			if err := vm.numericBinary(frame, func(a, b float64) value.Value { return value.Number(a - b) }); err != nil {
				return err
			}
		case value.OpMultiply:
			if err := vm.numericBinary(frame, func(a, b float64) value.Value { return value.Number(a * b) }); err != nil {
				return err
			}
		case value.OpDivide:
			b := vm.peek(0)
			if b.IsNumber() && b.AsNumber() == 0 {
				return vm.runtimeError(frame.line(), "division by zero")
			}
			if err := vm.numericBinary(frame, func(a, b float64) value.Value { return value.Number(a / b) }); err != nil {
				return err
			}

		case value.OpNot:
			vm.push(value.Bool(vm.pop().IsFalsey()))
		case value.OpNegate:
			v := vm.peek(0)
			if !v.IsNumber() {
				return vm.runtimeError(frame.line(), "operand must be a number")
			}
			vm.pop()
			vm.push(value.Number(-v.AsNumber()))

		case value.OpPrint:
			fmt.Fprintln(vm.out, vm.pop().String())

		case value.OpJump:
			offset := frame.readShort()
			frame.ip += int(offset)
		case value.OpJumpIfFalse:
			offset := frame.readShort()
			if vm.peek(0).IsFalsey() {
				frame.ip += int(offset)
			}
		case value.OpLoop:
			offset := frame.readShort()
			frame.ip -= int(offset)

		case value.OpCall:
			argCount := int(frame.readByte())
			if err := vm.callValue(vm.peek(argCount), argCount); err != nil {
				return err
			}

		case value.OpClosure:
			fn := frame.readConstant().AsObject().(*value.FunctionObj)
			closure := &value.ClosureObj{Function: fn, Upvalues: make([]*value.UpvalueObj, fn.UpvalueCount)}
			vm.trackObject(closure)
			for i := 0; i < fn.UpvalueCount; i++ {
				isLocal := frame.readByte()
				index := frame.readByte()
				if isLocal != 0 {
					closure.Upvalues[i] = vm.captureUpvalue(frame.slotsBase + int(index))
				} else {
					closure.Upvalues[i] = frame.closure.Upvalues[index]
				}
			}
			vm.push(value.Obj(closure))

		case value.OpClass:
			name := frame.readConstant().AsObject().(*value.StringObj)
			class := &value.ClassObj{Name: name, Methods: value.NewTable()}
			vm.trackObject(class)
			vm.push(value.Obj(class))

		case value.OpMethod:
			name := frame.readConstant().AsObject().(*value.StringObj).Chars
			method := vm.pop().AsObject().(*value.ClosureObj)
			class := vm.peek(0).AsObject().(*value.ClassObj)
			class.Methods.Set(name, value.Obj(method))

		case value.OpInherit:
			superVal := vm.peek(1)
			superclass, ok := superVal.AsObject().(*value.ClassObj)
			if !ok {
				return vm.runtimeError(frame.line(), "superclass must be a class")
			}
			subclass := vm.pop().AsObject().(*value.ClassObj)
			subclass.Superclass = superclass

		case value.OpGetProperty:
			name := frame.readConstant().AsObject().(*value.StringObj).Chars
			instance, ok := vm.peek(0).AsObject().(*value.InstanceObj)
			if !ok {
				return vm.runtimeError(frame.line(), "only instances have properties")
			}
			v, err := vm.getProperty(instance, name)
			if err != nil {
				return err
			}
			vm.pop()
			vm.push(v)
		case value.OpSetProperty:
			name := frame.readConstant().AsObject().(*value.StringObj).Chars
			instance, ok := vm.peek(1).AsObject().(*value.InstanceObj)
			if !ok {
				return vm.runtimeError(frame.line(), "only instances have fields")
			}
			v := vm.pop()
			instance.Fields.Set(name, v)
			vm.pop()
			vm.push(v)

		case value.OpInvoke:
			name := frame.readConstant().AsObject().(*value.StringObj).Chars
			argCount := int(frame.readByte())
			if err := vm.invoke(name, argCount); err != nil {
				return err
			}
		case value.OpSuperInvoke:
			name := frame.readConstant().AsObject().(*value.StringObj).Chars
			argCount := int(frame.readByte())
			superclass := vm.pop().AsObject().(*value.ClassObj)
			if err := vm.superInvoke(superclass, name, argCount); err != nil {
				return err
			}
		case value.OpGetSuper:
			name := frame.readConstant().AsObject().(*value.StringObj).Chars
			superclass := vm.pop().AsObject().(*value.ClassObj)
			receiver := vm.pop()
			method, ok := findMethod(superclass, name)
			if !ok {
				return vm.runtimeError(frame.line(), "undefined property '%s'", name)
			}
			bound := &value.BoundMethodObj{Receiver: receiver, Method: method}
			vm.trackObject(bound)
			vm.push(value.Obj(bound))

		case value.OpInstanceof:
			rhs := vm.pop()
			lhs := vm.pop()
			class, ok := rhs.AsObject().(*value.ClassObj)
			if !ok {
				return vm.runtimeError(frame.line(), "right-hand side of 'instanceof' must be a class")
			}
			vm.push(value.Bool(instanceofCheck(lhs, class)))

		case value.OpReturn:
			result := vm.pop()
			vm.closeUpvalues(frame.slotsBase)
			vm.frameCount--
			if vm.frameCount == 0 {
				vm.stackTop = frame.slotsBase
				vm.push(result)
				vm.lastValue = result
				return nil
			}
			vm.stackTop = frame.slotsBase
			vm.push(result)

		default:
			return &internalError{Message: fmt.Sprintf("unknown opcode %v", op)}
		}
	}
}

func (vm *VM) numericBinary(frame *callFrame, op func(a, b float64) value.Value) error {
	b := vm.peek(0)
	a := vm.peek(1)
	if !a.IsNumber() || !b.IsNumber() {
		return vm.runtimeError(frame.line(), "operands must be numbers")
	}
	vm.pop()
	vm.pop()
	vm.push(op(a.AsNumber(), b.AsNumber()))
	return nil
}

func (vm *VM) add(frame *callFrame) error {
	b := vm.peek(0)
	a := vm.peek(1)
	switch {
	case a.IsObjType(value.ObjStringType) || b.IsObjType(value.ObjStringType):
		vm.pop()
		vm.pop()
		vm.push(vm.NewString(a.String() + b.String()))
	case a.IsNumber() && b.IsNumber():
		vm.pop()
		vm.pop()
		vm.push(value.Number(a.AsNumber() + b.AsNumber()))
	default:
		return vm.runtimeError(frame.line(), "operands must be two numbers or at least one string")
	}
	return nil
}
