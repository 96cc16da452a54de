package vm

// MaxCyclesPerStep is the dispatch ceiling for a single step-loop
// invocation.
const MaxCyclesPerStep = 65535

// maxErrorHandlerNesting bounds the MAX_CYCLES handler's self-re-entry to
// one level, so a handler that itself runs long can't recurse forever.
const maxErrorHandlerNesting = 1

// fetchOp reads the opcode byte at PC and advances PC. PC must stay
// inside the heap; otherwise BAD_PC_ADDR.
func (vm *VM) fetchOp() (Opcode, *Fault) {
	if vm.PC >= HeapMax {
		return 0, newFault(ErrBadPCAddr, "PC outside heap range")
	}
	op := Opcode(vm.RAM[vm.PC])
	vm.PC++
	return op, nil
}

func (vm *VM) fetchU8() int32 {
	v := int32(vm.RAM[vm.PC])
	vm.PC++
	return v
}

func (vm *VM) fetchU16() int32 {
	lo := uint32(vm.RAM[vm.PC])
	hi := uint32(vm.RAM[vm.PC+1])
	vm.PC += 2
	return int32(lo | hi<<8)
}

func (vm *VM) fetchI32() int32 {
	u := uint32(vm.RAM[vm.PC]) |
		uint32(vm.RAM[vm.PC+1])<<8 |
		uint32(vm.RAM[vm.PC+2])<<16 |
		uint32(vm.RAM[vm.PC+3])<<24
	vm.PC += 4
	return int32(u)
}

// runSteps executes until halt, outermost RET, the cycle ceiling, or a
// fatal unvectored fault. depth tracks MAX_CYCLES handler re-entry.
func (vm *VM) runSteps(budget int, depth int) *Fault {
	count := 0
	for {
		if vm.Halted {
			return nil
		}
		if vm.FatalError != nil {
			return vm.FatalError
		}
		if count >= budget {
			vm.raiseError(newFault(ErrMaxCycles, "max cycles exceeded"))
			if vm.FatalError != nil {
				return vm.FatalError
			}
			if depth >= maxErrorHandlerNesting {
				return nil
			}
			return vm.runSteps(MaxCyclesPerStep, depth+1)
		}

		stop, fault := vm.execOne()
		count++

		if fault != nil {
			vm.raiseError(fault)
			if vm.FatalError != nil {
				return vm.FatalError
			}
			continue
		}
		if stop {
			return nil
		}
	}
}

// execOne fetches, decodes, and executes exactly one instruction. stop is
// true when RET pops an empty return stack (outermost return) or HALT runs.
func (vm *VM) execOne() (stop bool, fault *Fault) {
	startPC := vm.PC
	op, f := vm.fetchOp()
	if f != nil {
		return false, f
	}
	if vm.Trace && vm.Tracer != nil {
		defer func() { vm.Tracer.Record(startPC, op, vm.ds.depth) }()
	}

	switch op {
	case NOP:
		// no-op

	case U8:
		return false, vm.push(vm.fetchU8())
	case U16:
		return false, vm.push(vm.fetchU16())
	case I32:
		return false, vm.push(vm.fetchI32())

	case JMP:
		offset := vm.fetchU16()
		vm.PC = uint16(int32(vm.PC) + offset)
	case JAL:
		offset := vm.fetchU16()
		ret := int32(vm.PC)
		vm.PC = uint16(int32(vm.PC) + offset)
		return false, vm.rpush(ret)
	case CALL:
		addr, f := vm.pop()
		if f != nil {
			return false, f
		}
		if f := vm.rpush(int32(vm.PC)); f != nil {
			return false, f
		}
		vm.PC = uint16(addr)
	case RET:
		if vm.rs.depth == 0 {
			return true, nil
		}
		addr, f := vm.rpop()
		if f != nil {
			return false, f
		}
		vm.PC = uint16(addr)
	case BZ:
		// base is the address of the offset byte itself; a taken branch
		// lands at base+offset, a fall-through lands at base+1 (where
		// fetchU8 already leaves PC).
		base := vm.PC
		offset := byte(vm.fetchU8())
		t, f := vm.pop()
		if f != nil {
			return false, f
		}
		if t == 0 {
			vm.PC = base + uint16(offset)
		}
	case BFOR:
		base := vm.PC
		offset := byte(vm.fetchU8())
		if vm.rs.depth == 0 {
			return false, newFault(ErrRUnder, "return stack underflow")
		}
		r := vm.rs.top() - 1
		vm.rs.cells[vm.rs.depth-1] = r
		if r >= 0 {
			vm.PC = base - uint16(offset)
		} else {
			if _, f := vm.rpop(); f != nil {
				return false, f
			}
		}
	case HALT:
		vm.Halted = true
		return true, nil
	case RESET:
		vm.Reset()

	case LB, SB, LH, SH, LW, SW:
		return false, vm.execMemory(op)

	case ADD, SUB, MUL, DIV, MOD, AND, OR, XOR, SLL, SRL, SRA,
		INV, INC, DEC, ZE, EQ, GT, LT, NE, TRUE, FALSE:
		return false, vm.execArith(op)

	case DROP, DUP, OVER, SWAP, MTR, RDROP, R, PCOP, MTE:
		return false, vm.execStack(op)

	case MTA, MTB, AOP, BOP, AINC, ADEC, BINC, BDEC, LBA, LBB, LBAI, LBBI, SBBI:
		return false, vm.execRegPort(op)

	case IOKEY, IOEMIT, IODOT, IOD, IODH, IORH, IODUMP, TRON, TROFF, IOLOAD, IOSAVE:
		return false, vm.execIO(op)

	case FOPEN, FREAD, FWRITE, FSEEK, FTELL, FTRUNC, FCLOSE:
		return false, newFault(ErrBadInstruction, op.String()+" is reserved")

	default:
		return false, newFault(ErrBadInstruction, "unknown opcode")
	}
	return false, nil
}

// push/pop/rpush/rpop are thin wrappers so opcode handlers in the other
// files share one error-raising convention.
func (vm *VM) push(v int32) *Fault  { return vm.ds.push(v) }
func (vm *VM) pop() (int32, *Fault) { return vm.ds.pop() }
func (vm *VM) rpush(v int32) *Fault { return vm.rs.push(v) }
func (vm *VM) rpop() (int32, *Fault) { return vm.rs.pop() }

// Push and Pop expose the data stack to a host driving this VM as a
// compile-time evaluator (the bootstrap compiler's constant pool), using
// the exact same bounds-checked path instruction dispatch uses.
func (vm *VM) Push(v int32) *Fault  { return vm.push(v) }
func (vm *VM) Pop() (int32, *Fault) { return vm.pop() }
