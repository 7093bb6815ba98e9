package vm

import "nilan/value"

// captureUpvalue returns the open upvalue for absolute stack slot, reusing
// an existing node whose Location already matches it, and otherwise
// inserting a new one into the intrusive open list in descending-slot
// order (spec.md §4.3 "Upvalue capture").
func (vm *VM) captureUpvalue(slot int) *value.UpvalueObj {
	var prev *value.UpvalueObj
	cur := vm.openUps
	for cur != nil && cur.Slot > slot {
		prev = cur
		cur = cur.NextOpen
	}
	if cur != nil && cur.Slot == slot {
		return cur
	}

	created := &value.UpvalueObj{Location: &vm.stack[slot], Slot: slot, NextOpen: cur}
	vm.trackObject(created)
	if prev == nil {
		vm.openUps = created
	} else {
		prev.NextOpen = created
	}
	return created
}

// closeUpvalues walks the open list from the head, closing every upvalue
// whose slot is at or above last: each one's current stack value is copied
// into its own cell, Location is redirected there, and it is unlinked.
func (vm *VM) closeUpvalues(last int) {
	for vm.openUps != nil && vm.openUps.Slot >= last {
		up := vm.openUps
		up.Close()
		vm.openUps = up.NextOpen
		up.NextOpen = nil
	}
}
