package debugger

import (
	"fmt"
	"strconv"

	"markab/vm"
)

// cmdFeed sends one line of source to the interpreter via ReceiveLine,
// the same path the plain terminal host uses.
func (d *Debugger) cmdFeed(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: feed <text...>")
	}
	line := args[0]
	for _, a := range args[1:] {
		line += " " + a
	}
	if f := d.VM.ReceiveLine([]byte(line)); f != nil {
		d.Printf("fault: %s\n", f.Error())
	}
	if d.VM.FatalError != nil {
		d.Printf("halted: %s\n", d.VM.FatalError.Error())
	}
	return nil
}

// cmdTron enables tracing and installs a tracer buffer if none exists.
func (d *Debugger) cmdTron(args []string) error {
	d.VM.Trace = true
	if d.VM.Tracer == nil {
		d.VM.Tracer = vm.NewInstructionTrace(&d.Output)
		if d.Symbols != nil {
			d.VM.Tracer.LoadSymbols(d.Symbols)
		}
	}
	d.Println("tracing on")
	return nil
}

// cmdTroff disables tracing without discarding buffered entries.
func (d *Debugger) cmdTroff(args []string) error {
	d.VM.Trace = false
	d.Println("tracing off")
	return nil
}

// cmdTrace prints the buffered trace entries without clearing them.
func (d *Debugger) cmdTrace(args []string) error {
	if d.VM.Tracer == nil {
		d.Println("no tracer installed; run 'tron' first")
		return nil
	}
	for _, e := range d.VM.Tracer.Entries() {
		addr := fmt.Sprintf("0x%04x", e.PC)
		if d.Symbols != nil {
			addr = d.Symbols.FormatAddressCompact(e.PC)
		}
		d.Printf("%6d %-18s %-6s depth=%d\n", e.Sequence, addr, e.Op, e.Depth)
	}
	return nil
}

// cmdDump hex-dumps count bytes of RAM starting at addr.
func (d *Debugger) cmdDump(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: dump <addr> <count>")
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		return err
	}
	count, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid count %q: %w", args[1], err)
	}
	for i := 0; i < count; i++ {
		if i > 0 {
			d.Output.WriteByte(' ')
		}
		d.Printf("%02x", d.VM.LoadByte(addr+uint16(i)))
	}
	d.Output.WriteByte('\n')
	return nil
}

// cmdDataStack prints the live data stack, top-of-stack marked.
func (d *Debugger) cmdDataStack(args []string) error {
	cells := d.VM.DataStackSlice()
	d.Printf("data stack (%d):\n%s", len(cells), FormatStack(cells))
	return nil
}

// cmdReturnStack prints the live return stack, top-of-stack marked.
func (d *Debugger) cmdReturnStack(args []string) error {
	cells := d.VM.ReturnStackSlice()
	d.Printf("return stack (%d):\n%s", len(cells), FormatStack(cells))
	return nil
}

// cmdRegs prints the register file.
func (d *Debugger) cmdRegs(args []string) error {
	d.Printf("PC=0x%04x ERR=%d BASE=%d A=0x%04x B=0x%04x halted=%v trace=%v\n",
		d.VM.PC, d.VM.ERR, d.VM.Base, d.VM.A, d.VM.B, d.VM.Halted, d.VM.Trace)
	if d.VM.FatalError != nil {
		d.Printf("fatal: %s\n", d.VM.FatalError.Error())
	}
	return nil
}

// cmdReset resets both stacks and the input cursor, leaving RAM intact.
func (d *Debugger) cmdReset(args []string) error {
	d.VM.Reset()
	d.Println("stacks reset")
	return nil
}

// cmdHelp lists available console commands.
func (d *Debugger) cmdHelp(args []string) error {
	d.Println("commands:")
	d.Println("  feed <text>        send one line to the interpreter")
	d.Println("  tron / troff       enable/disable instruction tracing")
	d.Println("  trace              show the buffered trace")
	d.Println("  dump <addr> <n>    hex-dump n bytes from addr")
	d.Println("  stack / rstack     show data/return stack contents")
	d.Println("  regs               show PC, ERR, BASE, A, B, flags")
	d.Println("  reset              reset both stacks and input cursor")
	return nil
}
