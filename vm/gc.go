package vm

import "nilan/value"

// collectGarbage runs one stop-the-world mark-and-sweep cycle, per
// spec.md §4.4. It is invoked from trackObject whenever the live object
// count crosses nextGC, which is then grown by cfg.GCHeapGrowFactor.
func (vm *VM) collectGarbage() {
	vm.markRoots()
	vm.traceReferences()
	vm.strings.SweepUnmarked()
	swept := vm.sweep()
	vm.nextGC = int(float64(vm.bytesAllocated) * vm.cfg.GCHeapGrowFactor)
	if vm.nextGC < vm.cfg.GCInitialThreshold {
		vm.nextGC = vm.cfg.GCInitialThreshold
	}
	vm.gcStats.Collections++
	vm.gcStats.SweptObjects = swept
	vm.gcStats.LiveObjects = vm.bytesAllocated
}

func (vm *VM) markValue(v value.Value) {
	if v.IsObject() && v.AsObject() != nil {
		vm.markObject(v.AsObject())
	}
}

func (vm *VM) markObject(o value.Object) {
	if o == nil || value.IsMarked(o) {
		return
	}
	value.Mark(o)
	vm.grayStack = append(vm.grayStack, o)
}

func (vm *VM) markTable(t *value.Table) {
	t.Each(func(_ string, v value.Value) {
		vm.markValue(v)
	})
}

// markRoots marks every live value on the value stack, every frame's
// closure, every node of the open-upvalue list, and the globals table.
func (vm *VM) markRoots() {
	for i := 0; i < vm.stackTop; i++ {
		vm.markValue(vm.stack[i])
	}
	for i := 0; i < vm.frameCount; i++ {
		vm.markObject(vm.frames[i].closure)
	}
	for up := vm.openUps; up != nil; up = up.NextOpen {
		vm.markObject(up)
	}
	vm.markTable(vm.globals)
}

// traceReferences drains the gray worklist, marking each popped object's
// own references and pushing any newly-reached object in turn.
func (vm *VM) traceReferences() {
	for len(vm.grayStack) > 0 {
		o := vm.grayStack[len(vm.grayStack)-1]
		vm.grayStack = vm.grayStack[:len(vm.grayStack)-1]
		vm.blackenObject(o)
	}
}

func (vm *VM) blackenObject(o value.Object) {
	switch obj := o.(type) {
	case *value.BoundMethodObj:
		vm.markValue(obj.Receiver)
		vm.markObject(obj.Method)
	case *value.ClassObj:
		vm.markObject(obj.Name)
		vm.markTable(obj.Methods)
		if obj.Superclass != nil {
			vm.markObject(obj.Superclass)
		}
	case *value.ClosureObj:
		vm.markObject(obj.Function)
		for _, u := range obj.Upvalues {
			vm.markObject(u)
		}
	case *value.FunctionObj:
		if obj.Name != nil {
			vm.markObject(obj.Name)
		}
		for _, c := range obj.Chunk.Constants {
			vm.markValue(c)
		}
	case *value.InstanceObj:
		vm.markObject(obj.Class)
		vm.markTable(obj.Fields)
	case *value.UpvalueObj:
		vm.markValue(obj.Closed)
	case *value.StringObj, *value.NativeObj:
		// no outgoing references
	}
}

// sweep walks the intrusive all-objects list: marked nodes are kept (their
// mark bit cleared for the next cycle), unmarked nodes are unlinked and
// dropped, leaving them for the Go garbage collector to actually reclaim.
func (vm *VM) sweep() int {
	swept := 0
	var prev value.Object
	obj := vm.objects
	for obj != nil {
		next := value.Next(obj)
		if value.IsMarked(obj) {
			value.Unmark(obj)
			prev = obj
		} else {
			if prev != nil {
				value.SetNext(prev, next)
			} else {
				vm.objects = next
			}
			vm.bytesAllocated--
			swept++
		}
		obj = next
	}
	return swept
}
