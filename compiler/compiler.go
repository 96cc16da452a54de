// Package compiler implements the single-pass bootstrap assembler that
// turns a Forth-like token stream into a Markab ROM image. It drives an
// embedded VM instance purely as an arithmetic/memory engine: every
// literal push, byte store, and address computation goes through the
// same bounds-checked helpers the VM uses at run time, so there is no
// duplicated arithmetic between compile time and run time.
package compiler

import (
	"markab/iosafe"
	"markab/vm"
)

// Mode is the compiler's interpret/compile state.
type Mode int

const (
	ModeInterpret Mode = iota
	ModeCompile
)

// Prologue layout offsets, in bytes from the heap base. Each of the four
// initializers is a 7-byte U16-imm/U16-addr/SH triple; the boot jump is a
// 3-byte JMP; the hash-bucket array follows immediately after.
const (
	offVocInit   = 0
	offDPInit    = 7
	offIRQRXInit = 14
	offIRQERRInit = 21
	offBootJMP   = 28
	offHashArray = 31
	prologueEnd  = offHashArray + vm.HashBins*2 // 159
)

// Compiler holds all state for one compilation run: the position in the
// target heap, the active definition, number base, and the two
// name<->address mirrors that track the compiled dictionary without
// re-reading target RAM.
type Compiler struct {
	VM *vm.VM

	DP       uint16
	lastWord *entry
	base     int
	mode     Mode
	lastCall    uint16 // DP of the most recently emitted JAL
	hasLastCall bool
	nestIf      int
	nestFor     int

	pending        pendingOp
	ifPlaceholders []uint16
	forStarts      []uint16

	dict *dictionary

	// dpInitLiteralAddr etc. are the addresses of the four initializers'
	// patchable literal cells, recorded once during the prologue so magic
	// names can patch them later without recomputing offsets.
	dpInitLiteralAddr    uint16
	irqrxInitLiteralAddr uint16
	irqerrInitLiteralAddr uint16
	bootJMPOffsetAddr    uint16

	Symbols map[string]uint16

	// Policy gates compile-time load" file access. loadDepth mirrors the
	// VM's IOLOAD nesting guard for the same reason: one level only.
	Policy    *iosafe.Policy
	loadDepth int
}

// New creates a compiler targeting a fresh VM instance and emits the ROM
// boot prologue.
func New() *Compiler {
	c := &Compiler{
		VM:      vm.New(),
		base:    10,
		mode:    ModeInterpret,
		dict:    newDictionary(),
		Symbols: make(map[string]uint16),
	}
	c.emitPrologue()
	return c
}

// emitByte appends one byte at DP and advances DP.
func (c *Compiler) emitByte(b byte) {
	c.VM.StoreByte(c.DP, int32(b))
	c.DP++
}

// emitU16 appends a little-endian 16-bit value at DP.
func (c *Compiler) emitU16(v uint16) {
	_ = c.VM.StoreHalf(c.DP, int32(v))
	c.DP += 2
}

// patchU16 overwrites a little-endian 16-bit value already in RAM,
// without touching DP. Used for vector patching.
func (c *Compiler) patchU16(addr uint16, v uint16) {
	_ = c.VM.StoreHalf(addr, int32(v))
}

// emitPrologue writes the four fixed-address initializers, a placeholder
// boot JMP, and the empty hash-bucket array, then sets DP to the first
// free dictionary-heap byte.
func (c *Compiler) emitPrologue() {
	hashArrayAddr := uint16(offHashArray)

	// init 1: vocabulary head pointer -> address of the hash array itself.
	// This literal never needs patching; its target is known immediately.
	c.emitByte(byte(vm.U16))
	c.emitU16(hashArrayAddr)
	c.emitByte(byte(vm.U16))
	c.emitU16(vm.VocHeadAddr)
	c.emitByte(byte(vm.SH))

	// init 2: dictionary pointer -> patched with the final DP at end of compile.
	c.emitByte(byte(vm.U16))
	c.dpInitLiteralAddr = c.DP
	c.emitU16(0)
	c.emitByte(byte(vm.U16))
	c.emitU16(vm.DPAddr)
	c.emitByte(byte(vm.SH))

	// init 3: IRQRX vector -> patched when "outer" is CREATEd.
	c.emitByte(byte(vm.U16))
	c.irqrxInitLiteralAddr = c.DP
	c.emitU16(0)
	c.emitByte(byte(vm.U16))
	c.emitU16(vm.IRQRXAddr)
	c.emitByte(byte(vm.SH))

	// init 4: IRQERR vector -> patched when "irqerr" is CREATEd.
	c.emitByte(byte(vm.U16))
	c.irqerrInitLiteralAddr = c.DP
	c.emitU16(0)
	c.emitByte(byte(vm.U16))
	c.emitU16(vm.IRQERRAddr)
	c.emitByte(byte(vm.SH))

	// boot jump -> patched when "boot" is CREATEd, PC-relative from the
	// address right after this 16-bit offset field.
	c.emitByte(byte(vm.JMP))
	c.bootJMPOffsetAddr = c.DP
	c.emitU16(0)

	for i := 0; i < vm.HashBins*2; i++ {
		c.emitByte(0)
	}

	if c.DP != prologueEnd {
		panic("compiler: prologue length drifted from the fixed layout")
	}
}

// Finish patches the dictionary-pointer initializer with the final DP and
// returns the compiled ROM image (bytes [0, DP)).
func (c *Compiler) Finish() []byte {
	c.patchU16(c.dpInitLiteralAddr, c.DP)
	image := make([]byte, c.DP)
	for i := uint16(0); i < c.DP; i++ {
		image[i] = c.VM.LoadByte(i)
	}
	return image
}
