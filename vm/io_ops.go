package vm

import (
	"bytes"
	"fmt"
	"os"
)

// readMarkabString reads a length-prefixed byte string: one length byte
// followed by that many raw bytes.
func (vm *VM) readMarkabString(addr uint16) []byte {
	n := int(vm.LoadByte(addr))
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = vm.LoadByte(addr + 1 + uint16(i))
	}
	return out
}

// execIO implements the terminal, tracing, and file-load opcodes. All
// other file opcodes (FOPEN..FCLOSE) are reserved and handled directly in
// dispatch.go's execOne, never reaching here.
func (vm *VM) execIO(op Opcode) *Fault {
	switch op {
	case IOKEY:
		if vm.inputPos < len(vm.input) {
			b := vm.input[vm.inputPos]
			vm.inputPos++
			if f := vm.push(int32(b)); f != nil {
				return f
			}
			return vm.push(-1)
		}
		return vm.push(0)

	case IOEMIT:
		t, f := vm.pop()
		if f != nil {
			return f
		}
		b := byte(t)
		vm.output.WriteByte(b)
		if b == '\n' && vm.StdoutReady != nil {
			vm.StdoutReady(vm)
		}

	case IODOT:
		t, f := vm.pop()
		if f != nil {
			return f
		}
		vm.writeNumber(t)
		vm.output.WriteByte(' ')

	case IOD:
		vm.dumpStack(vm.DataStackSlice(), 10)
	case IODH:
		vm.dumpStack(vm.DataStackSlice(), 16)
	case IORH:
		vm.dumpStack(vm.ReturnStackSlice(), 16)

	case IODUMP:
		if f := vm.ds.checkDepth(2); f != nil {
			return f
		}
		addr := maskAddr(vm.ds.T())
		count := vm.ds.S()
		vm.ds.pop()
		vm.ds.pop()
		vm.hexDump(addr, count)

	case TRON:
		vm.Trace = true
	case TROFF:
		vm.Trace = false

	case IOLOAD:
		t, f := vm.pop()
		if f != nil {
			return f
		}
		path := string(vm.readMarkabString(maskAddr(t)))
		return vm.doIOLoad(path)

	case IOSAVE:
		t, f := vm.pop()
		if f != nil {
			return f
		}
		path := string(vm.readMarkabString(maskAddr(t)))
		if vm.IOPolicy == nil {
			return newFault(ErrFilePerms, "no file policy installed")
		}
		if _, err := vm.IOPolicy.CheckSave(path); err != nil {
			return newFault(ErrFilePerms, err.Error())
		}
		// Beyond the path-policy check, IOSAVE has no further effect: this
		// build has nothing resident worth persisting back to disk.
	}
	return nil
}

// writeNumber renders v in the current BASE (decimal or hex) to output.
func (vm *VM) writeNumber(v int32) {
	if vm.Base == 16 {
		fmt.Fprintf(&vm.output, "%x", uint32(v))
	} else {
		fmt.Fprintf(&vm.output, "%d", v)
	}
}

// dumpStack writes a space-separated rendering of cells, bottom-to-top,
// in the given base, terminated by a newline.
func (vm *VM) dumpStack(cells []int32, base int) {
	for i, c := range cells {
		if i > 0 {
			vm.output.WriteByte(' ')
		}
		if base == 16 {
			fmt.Fprintf(&vm.output, "%x", uint32(c))
		} else {
			fmt.Fprintf(&vm.output, "%d", c)
		}
	}
	vm.output.WriteByte('\n')
}

// hexDump writes count bytes starting at addr as space-separated hex
// pairs, terminated by a newline. count <= 0 writes nothing.
func (vm *VM) hexDump(addr uint16, count int32) {
	for i := int32(0); i < count; i++ {
		if i > 0 {
			vm.output.WriteByte(' ')
		}
		fmt.Fprintf(&vm.output, "%02x", vm.LoadByte(addr+uint16(i)))
	}
	vm.output.WriteByte('\n')
}

// doIOLoad resolves path against the installed policy, reads it, and
// feeds it to the interpreter one line at a time through ReceiveLine,
// exactly as if each line had arrived over the terminal. Nesting beyond
// one level is rejected outright.
func (vm *VM) doIOLoad(path string) *Fault {
	if vm.ioDepth >= 1 {
		return newFault(ErrIOLoadDepth, "IOLOAD does not nest")
	}
	if vm.IOPolicy == nil {
		return newFault(ErrFilePerms, "no file policy installed")
	}

	resolved, err := vm.IOPolicy.CheckLoad(path)
	if err != nil {
		return newFault(ErrFilePerms, err.Error())
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return newFault(ErrFileNotFound, err.Error())
	}

	vm.ioDepth++
	vm.ioFail = false
	defer func() { vm.ioDepth--; vm.ioFail = false }()

	lines := bytes.Split(data, []byte("\n"))
	for i, line := range lines {
		if i == len(lines)-1 && len(line) == 0 {
			break // trailing newline produced an empty final split element
		}
		if vm.Halted || vm.FatalError != nil {
			break
		}
		if f := vm.ReceiveLine(line); f != nil {
			return f
		}
		if vm.ioFail {
			return newFault(ErrIOLoadFail, "a loaded line raised an unhandled error")
		}
	}
	return nil
}
