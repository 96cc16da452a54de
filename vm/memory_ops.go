package vm

// execMemory implements LB/SB/LH/SH/LW/SW: byte/halfword/word load and
// store at address T, with S holding the value for stores.
func (vm *VM) execMemory(op Opcode) *Fault {
	switch op {
	case LB:
		if f := vm.ds.checkDepth(1); f != nil {
			return f
		}
		addr := maskAddr(vm.ds.T())
		vm.ds.setT(int32(vm.LoadByte(addr)))

	case SB:
		if f := vm.ds.checkDepth(2); f != nil {
			return f
		}
		addr := maskAddr(vm.ds.T())
		val := vm.ds.S()
		vm.StoreByte(addr, val)
		vm.ds.pop()
		vm.ds.pop()

	case LH:
		if f := vm.ds.checkDepth(1); f != nil {
			return f
		}
		addr := maskAddr(vm.ds.T())
		v, f := vm.LoadHalf(addr)
		if f != nil {
			return f
		}
		vm.ds.setT(v)

	case SH:
		if f := vm.ds.checkDepth(2); f != nil {
			return f
		}
		addr := maskAddr(vm.ds.T())
		val := vm.ds.S()
		if f := vm.StoreHalf(addr, val); f != nil {
			return f
		}
		vm.ds.pop()
		vm.ds.pop()

	case LW:
		if f := vm.ds.checkDepth(1); f != nil {
			return f
		}
		addr := maskAddr(vm.ds.T())
		v, f := vm.LoadWord(addr)
		if f != nil {
			return f
		}
		vm.ds.setT(v)

	case SW:
		if f := vm.ds.checkDepth(2); f != nil {
			return f
		}
		addr := maskAddr(vm.ds.T())
		val := vm.ds.S()
		if f := vm.StoreWord(addr, val); f != nil {
			return f
		}
		vm.ds.pop()
		vm.ds.pop()
	}
	return nil
}
