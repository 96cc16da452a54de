package vm

// raiseError is the single path by which a Fault becomes visible to
// Markab code: it records the code in ERR, clears both stacks and the
// input cursor, pushes the code onto the (now-empty) data stack, and
// transfers control to the handler named by IRQERR. A handler that is
// itself running when raiseError is entered again indicates the handler
// faulted, which is fatal rather than re-vectored.
func (vm *VM) raiseError(f *Fault) {
	if vm.FatalError != nil {
		return
	}
	if vm.cyclesInErrorHandler > 0 {
		vm.FatalError = f
		vm.Halted = true
		return
	}

	vm.ERR = int32(f.Code)
	vm.ds.reset()
	vm.rs.reset()
	vm.input = nil
	vm.inputPos = 0
	if vm.ioDepth > 0 {
		vm.ioFail = true
	}

	vec, _ := vm.LoadHalf(IRQERRAddr)
	if vec == 0 {
		vm.FatalError = f
		vm.Halted = true
		return
	}

	_ = vm.ds.push(int32(f.Code))
	vm.cyclesInErrorHandler++
	defer func() { vm.cyclesInErrorHandler-- }()
	vm.PC = uint16(vec)
}

// WarmBoot loads a ROM image into the heap and runs from address 0 until
// the image's own startup code returns to an empty return stack (its
// natural halt) or raises a fatal, unvectored fault.
func (vm *VM) WarmBoot(image []byte) *Fault {
	vm.entryMu.Lock()
	defer vm.entryMu.Unlock()

	if f := vm.LoadImage(image); f != nil {
		return f
	}
	vm.PC = HeapBase
	return vm.runSteps(MaxCyclesPerStep, 0)
}

// ReceiveLine feeds one line of Markab source text to the interpreter by
// installing it as the input buffer and jumping to IRQRX. A trailing
// newline is appended if the caller omitted one, matching how terminal
// input and IOLOAD-fed lines both arrive. While IRQRX is still zero (no
// handler registered yet) the line is only buffered and nothing runs.
func (vm *VM) ReceiveLine(line []byte) *Fault {
	vm.entryMu.Lock()
	defer vm.entryMu.Unlock()

	if vm.Halted || vm.FatalError != nil {
		return vm.FatalError
	}

	buf := line
	if len(buf) == 0 || buf[len(buf)-1] != '\n' {
		buf = append(append([]byte{}, line...), '\n')
	}
	vm.input = buf
	vm.inputPos = 0

	vec, _ := vm.LoadHalf(IRQRXAddr)
	if vec == 0 {
		return nil
	}
	vm.PC = uint16(vec)
	return vm.runSteps(MaxCyclesPerStep, 0)
}
