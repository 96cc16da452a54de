package compiler

import "markab/vm"

// emitLiteral appends the minimal-width literal encoding for v: U8 for
// 0..255, U16 for 256..65535, I32 otherwise (negative values included).
// Emitting a literal always clears any pending tail-call target, since a
// literal can never be rewritten into a tail JMP.
func (c *Compiler) emitLiteral(v int32) {
	c.hasLastCall = false
	switch {
	case v >= 0 && v <= 0xFF:
		c.emitByte(byte(vm.U8))
		c.emitByte(byte(v))
	case v >= 0 && v <= 0xFFFF:
		c.emitByte(byte(vm.U16))
		c.emitU16(uint16(v))
	default:
		c.emitByte(byte(vm.I32))
		u := uint32(v)
		c.emitByte(byte(u))
		c.emitByte(byte(u >> 8))
		c.emitByte(byte(u >> 16))
		c.emitByte(byte(u >> 24))
	}
}

// emitOpcode appends a single opcode byte (e.g. a T_OP word's payload, or
// a control-flow opcode emitted directly by the compiler).
func (c *Compiler) emitOpcode(op vm.Opcode) {
	c.hasLastCall = false
	c.emitByte(byte(op))
}

// emitCall appends a JAL to target's payload address using a PC-relative
// 16-bit signed offset, and records the JAL's own start address as the
// pending tail-call site. Closing the current definition with ";" may
// later rewrite this exact JAL into a JMP.
func (c *Compiler) emitCall(targetPayload uint16) {
	callSite := c.DP
	c.emitByte(byte(vm.JAL))
	after := c.DP + 2
	offset := int32(targetPayload) - int32(after)
	c.emitU16(uint16(offset))

	c.lastCall = callSite
	c.hasLastCall = true
}

// emitAddressOf appends a U16 literal holding target's absolute address
// (used by the tick/' operator to push "address of").
func (c *Compiler) emitAddressOf(target uint16) {
	c.hasLastCall = false
	c.emitByte(byte(vm.U16))
	c.emitU16(target)
}

// tailCallOptimize implements ";": if the most recently emitted
// instruction is the pending JAL recorded by emitCall, rewrite its
// opcode byte in place to JMP (same offset, same 3-byte footprint);
// otherwise append a plain RET. Either way, the pending tail-call marker
// is cleared, since control flow has now left this definition.
func (c *Compiler) tailCallOptimize() {
	if c.hasLastCall && c.lastCall == c.DP-3 {
		c.VM.StoreByte(c.lastCall, int32(vm.JMP))
	} else {
		c.emitByte(byte(vm.RET))
	}
	c.hasLastCall = false
}
