package vm

// execRegPort implements the A/B address-register ports used for fast
// byte-stream reads and writes.
func (vm *VM) execRegPort(op Opcode) *Fault {
	switch op {
	case MTA:
		t, f := vm.pop()
		if f != nil {
			return f
		}
		vm.A = uint16(t)

	case MTB:
		t, f := vm.pop()
		if f != nil {
			return f
		}
		vm.B = uint16(t)

	case AOP:
		return vm.push(int32(vm.A))
	case BOP:
		return vm.push(int32(vm.B))

	case AINC:
		vm.A++
	case ADEC:
		vm.A--
	case BINC:
		vm.B++
	case BDEC:
		vm.B--

	case LBA:
		return vm.push(int32(vm.LoadByte(vm.A)))
	case LBB:
		return vm.push(int32(vm.LoadByte(vm.B)))

	case LBAI:
		v := vm.LoadByte(vm.A)
		vm.A++
		return vm.push(int32(v))
	case LBBI:
		v := vm.LoadByte(vm.B)
		vm.B++
		return vm.push(int32(v))

	case SBBI:
		t, f := vm.pop()
		if f != nil {
			return f
		}
		vm.StoreByte(vm.B, t)
		vm.B++
	}
	return nil
}
