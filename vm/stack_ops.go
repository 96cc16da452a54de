package vm

// execStack implements the stack-shuffling and return-stack-bridge
// opcodes.
func (vm *VM) execStack(op Opcode) *Fault {
	switch op {
	case DROP:
		_, f := vm.pop()
		return f

	case DUP:
		if f := vm.ds.checkDepth(1); f != nil {
			return f
		}
		return vm.push(vm.ds.T())

	case OVER:
		if f := vm.ds.checkDepth(2); f != nil {
			return f
		}
		return vm.push(vm.ds.S())

	case SWAP:
		if f := vm.ds.checkDepth(2); f != nil {
			return f
		}
		t := vm.ds.T()
		s := vm.ds.S()
		vm.ds.cells[vm.ds.depth-1] = s
		vm.ds.cells[vm.ds.depth-2] = t

	case MTR:
		t, f := vm.pop()
		if f != nil {
			return f
		}
		return vm.rpush(t)

	case RDROP:
		_, f := vm.rpop()
		return f

	case R:
		if vm.rs.depth == 0 {
			return newFault(ErrRUnder, "return stack underflow")
		}
		return vm.push(vm.rs.top())

	case PCOP:
		return vm.push(int32(vm.PC))

	case MTE:
		t, f := vm.pop()
		if f != nil {
			return f
		}
		return newFault(ErrorCode(t), "MTE")
	}
	return nil
}
