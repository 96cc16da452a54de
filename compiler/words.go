package compiler

import (
	"strconv"

	"markab/vm"
)

// pendingOp names a defining-word or tick that consumes the next token as
// a name rather than dispatching it normally.
type pendingOp int

const (
	pendingNone pendingOp = iota
	pendingVar
	pendingConst
	pendingOpcode
	pendingDef
	pendingTick
)

// magic names patch the fixed prologue cells when CREATEd.
const (
	magicBoot   = "boot"
	magicOuter  = "outer"
	magicIRQErr = "irqerr"
)

// CompileToken processes exactly one already-lexed token. pos is used
// only for error reporting.
func (c *Compiler) CompileToken(pos Position, tok string) *Error {
	if c.pending != pendingNone {
		return c.consumePendingName(pos, tok)
	}

	switch tok {
	case "hex":
		c.base = 16
		return nil
	case "decimal":
		c.base = 10
		return nil
	case "var":
		c.pending = pendingVar
		return nil
	case "const":
		c.pending = pendingConst
		return nil
	case "opcode":
		c.pending = pendingOpcode
		return nil
	case ":":
		c.pending = pendingDef
		return nil
	case ";", ";shdw":
		return c.closeDefinition(pos)
	case "immediate":
		return c.markImmediate(pos)
	case "if{":
		c.beginIf()
		return nil
	case "}if":
		return c.endIf(pos)
	case "for{":
		c.beginFor()
		return nil
	case "}for":
		return c.endFor(pos)
	case "'":
		c.pending = pendingTick
		return nil
	}

	if e, ok := c.dict.lookup(tok); ok {
		return c.compileReference(e)
	}

	return c.compileNumber(pos, tok)
}

func (c *Compiler) consumePendingName(pos Position, name string) *Error {
	op := c.pending
	c.pending = pendingNone

	switch op {
	case pendingVar:
		start := c.create(name)
		c.emitByte(byte(TypeVar))
		c.emitU16(0)
		c.finishEntry(name, TypeVar, start)

	case pendingConst:
		v, f := c.VM.Pop()
		if f != nil {
			return newError(pos, ErrSyntax, name, "const: embedded stack underflow: %s", f)
		}
		start := c.create(name)
		c.emitByte(byte(TypeConst))
		u := uint32(v)
		c.emitByte(byte(u))
		c.emitByte(byte(u >> 8))
		c.emitByte(byte(u >> 16))
		c.emitByte(byte(u >> 24))
		c.finishEntry(name, TypeConst, start)

	case pendingOpcode:
		opVal, f := c.VM.Pop()
		if f != nil {
			return newError(pos, ErrSyntax, name, "opcode: embedded stack underflow: %s", f)
		}
		start := c.create(name)
		c.emitByte(byte(TypeOp))
		c.emitByte(byte(opVal))
		c.emitByte(byte(vm.RET))
		c.finishEntry(name, TypeOp, start)

	case pendingDef:
		start := c.create(name)
		c.emitByte(byte(TypeObj))
		e := c.finishEntry(name, TypeObj, start)
		c.mode = ModeCompile
		c.applyMagicOnCreate(e)

	case pendingTick:
		e, ok := c.dict.lookup(name)
		if !ok {
			return newError(pos, ErrUnknownWord, name, "' refers to an undefined word")
		}
		c.emitAddressOf(e.PayloadPos)
	}
	return nil
}

// applyMagicOnCreate patches the prologue cells that only become known
// once the magic word bodies they name are CREATEd.
func (c *Compiler) applyMagicOnCreate(e *entry) {
	switch e.Name {
	case magicBoot:
		after := c.bootJMPOffsetAddr + 2
		offset := int32(e.PayloadPos) - int32(after)
		c.patchU16(c.bootJMPOffsetAddr, uint16(offset))
	case magicOuter:
		c.patchU16(c.irqrxInitLiteralAddr, e.PayloadPos)
	case magicIRQErr:
		c.patchU16(c.irqerrInitLiteralAddr, e.PayloadPos)
	}
}

// closeDefinition implements ";" / ";shdw": apply the tail-call rewrite
// or a closing RET, and return to INTERPRET mode once both block-nesting
// counters are balanced.
func (c *Compiler) closeDefinition(pos Position) *Error {
	if c.mode != ModeCompile {
		return newError(pos, ErrSyntax, ";", "';' outside a definition")
	}
	c.tailCallOptimize()
	if c.nestIf == 0 && c.nestFor == 0 {
		c.mode = ModeInterpret
	}
	return nil
}

// markImmediate mutates the most recently closed entry's type from OBJ to
// IMM. The source word must have already been defined with ":".
func (c *Compiler) markImmediate(pos Position) *Error {
	if c.lastWord == nil || c.lastWord.Type != TypeObj {
		return newError(pos, ErrRedefinedImmediate, "immediate", "immediate applies only to the most recent ':' word")
	}
	c.lastWord.Type = TypeImm
	c.VM.StoreByte(c.lastWord.Start+2+1+uint16(len(c.lastWord.Name)), int32(TypeImm))
	return nil
}

func (c *Compiler) beginIf() {
	c.emitOpcode(vm.BZ)
	c.ifPlaceholders = append(c.ifPlaceholders, c.DP)
	c.emitByte(0) // placeholder offset
	c.nestIf++
}

func (c *Compiler) endIf(pos Position) *Error {
	if len(c.ifPlaceholders) == 0 {
		return newError(pos, ErrUnbalancedIf, "}if", "'}if' with no matching 'if{'")
	}
	placeholder := c.ifPlaceholders[len(c.ifPlaceholders)-1]
	c.ifPlaceholders = c.ifPlaceholders[:len(c.ifPlaceholders)-1]

	dist := int(c.DP) - int(placeholder)
	if dist > 255 {
		return newError(pos, ErrOffsetTooFar, "}if", "if{/}if span of %d bytes exceeds 255", dist)
	}
	c.VM.StoreByte(placeholder, int32(dist))
	c.nestIf--
	c.hasLastCall = false
	return nil
}

func (c *Compiler) beginFor() {
	c.emitOpcode(vm.MTR)
	c.forStarts = append(c.forStarts, c.DP)
	c.nestFor++
}

func (c *Compiler) endFor(pos Position) *Error {
	if len(c.forStarts) == 0 {
		return newError(pos, ErrUnbalancedFor, "}for", "'}for' with no matching 'for{'")
	}
	loopStart := c.forStarts[len(c.forStarts)-1]
	c.forStarts = c.forStarts[:len(c.forStarts)-1]

	c.emitOpcode(vm.BFOR)
	dist := int(c.DP) - int(loopStart)
	if dist > 255 {
		return newError(pos, ErrOffsetTooFar, "}for", "for{/}for span of %d bytes exceeds 255", dist)
	}
	c.emitByte(byte(dist))
	c.nestFor--
	c.hasLastCall = false
	return nil
}

// compileReference emits the right bytecode for a dictionary reference,
// per its tagged type.
func (c *Compiler) compileReference(e *entry) *Error {
	switch e.Type {
	case TypeVar:
		c.hasLastCall = false
		c.emitByte(byte(vm.U16))
		c.emitU16(e.PayloadPos)
	case TypeConst:
		v, _ := c.VM.LoadWord(e.PayloadPos)
		c.emitLiteral(v)
	case TypeOp:
		op := vm.Opcode(c.VM.LoadByte(e.PayloadPos))
		c.emitOpcode(op)
	case TypeObj, TypeImm:
		c.emitCall(e.PayloadPos)
	}
	return nil
}

// compileNumber parses tok as an integer in the current base. In
// INTERPRET mode the value is pushed onto the embedded VM's data stack
// (the constant pool); in COMPILE mode it is emitted as a minimal-width
// literal.
func (c *Compiler) compileNumber(pos Position, tok string) *Error {
	v, err := strconv.ParseInt(tok, c.base, 64)
	if err != nil {
		return newError(pos, ErrUnknownWord, tok, "word not in dictionary and not a number")
	}
	n := int32(v)
	if c.mode == ModeCompile {
		c.emitLiteral(n)
		return nil
	}
	if f := c.VM.Push(n); f != nil {
		return newError(pos, ErrSyntax, tok, "interpreting literal: %s", f)
	}
	return nil
}
