package vm

// Word and halfword stores/loads require the address to leave room for
// their full width inside the 16-bit space.
const (
	maxWordAddr     = 65532
	maxHalfwordAddr = 65534
)

func maskAddr(addr int32) uint16 {
	return uint16(uint32(addr) & 0xFFFF)
}

// LoadByte reads one byte. Bytes never overrun the address space (every
// 16-bit address is valid for a 1-byte access), so this cannot fault.
func (vm *VM) LoadByte(addr uint16) byte {
	return vm.RAM[addr]
}

// StoreByte writes the low byte of v.
func (vm *VM) StoreByte(addr uint16, v int32) {
	vm.RAM[addr] = byte(v)
}

// LoadHalf reads a little-endian halfword, zero-extended to 32 bits.
func (vm *VM) LoadHalf(addr uint16) (int32, *Fault) {
	if addr > maxHalfwordAddr {
		return 0, newFault(ErrBadAddress, "halfword load out of range")
	}
	lo := uint32(vm.RAM[addr])
	hi := uint32(vm.RAM[addr+1])
	return int32(lo | hi<<8), nil
}

// StoreHalf writes the low 16 bits of v as a little-endian halfword.
func (vm *VM) StoreHalf(addr uint16, v int32) *Fault {
	if addr > maxHalfwordAddr {
		return newFault(ErrBadAddress, "halfword store out of range")
	}
	u := uint32(v)
	vm.RAM[addr] = byte(u)
	vm.RAM[addr+1] = byte(u >> 8)
	return nil
}

// LoadWord reads a little-endian word, sign-extended (the representation
// already is a signed int32, so this is just the raw bit pattern).
func (vm *VM) LoadWord(addr uint16) (int32, *Fault) {
	if addr > maxWordAddr {
		return 0, newFault(ErrBadAddress, "word load out of range")
	}
	u := uint32(vm.RAM[addr]) |
		uint32(vm.RAM[addr+1])<<8 |
		uint32(vm.RAM[addr+2])<<16 |
		uint32(vm.RAM[addr+3])<<24
	return int32(u), nil
}

// StoreWord writes v as a little-endian word.
func (vm *VM) StoreWord(addr uint16, v int32) *Fault {
	if addr > maxWordAddr {
		return newFault(ErrBadAddress, "word store out of range")
	}
	u := uint32(v)
	vm.RAM[addr] = byte(u)
	vm.RAM[addr+1] = byte(u >> 8)
	vm.RAM[addr+2] = byte(u >> 16)
	vm.RAM[addr+3] = byte(u >> 24)
	return nil
}

// LoadImage copies a ROM/dictionary image into RAM starting at HeapBase,
// the way a warm boot populates the heap.
func (vm *VM) LoadImage(image []byte) *Fault {
	if len(image) > HeapMax-HeapBase {
		return newFault(ErrBootOverflow, "ROM image does not fit before HeapMax")
	}
	copy(vm.RAM[HeapBase:], image)
	return nil
}
