package vm

import (
	"fmt"
	"io"
)

// TraceEntry is one recorded instruction step: the address it executed
// from, the opcode, and the data-stack depth right after it ran.
type TraceEntry struct {
	Sequence uint64
	PC       uint16
	Op       Opcode
	Depth    int
}

// InstructionTrace buffers executed-instruction entries for later
// inspection (by the debugger, or a dump at shutdown), bounded so a
// runaway program can't grow it without limit.
type InstructionTrace struct {
	Enabled bool
	Writer  io.Writer

	entries    []TraceEntry
	maxEntries int
	sequence   uint64
	symbols    *SymbolResolver
}

// NewInstructionTrace creates a trace sink with a default entry cap.
func NewInstructionTrace(w io.Writer) *InstructionTrace {
	return &InstructionTrace{
		Enabled:    true,
		Writer:     w,
		entries:    make([]TraceEntry, 0, 1000),
		maxEntries: 100000,
	}
}

// LoadSymbols attaches a resolver so Flush can annotate addresses.
func (t *InstructionTrace) LoadSymbols(r *SymbolResolver) { t.symbols = r }

// Record appends one executed-instruction entry, dropping it silently
// once maxEntries is reached rather than growing forever.
func (t *InstructionTrace) Record(pc uint16, op Opcode, depth int) {
	if !t.Enabled {
		return
	}
	if t.maxEntries > 0 && len(t.entries) >= t.maxEntries {
		return
	}
	t.entries = append(t.entries, TraceEntry{Sequence: t.sequence, PC: pc, Op: op, Depth: depth})
	t.sequence++
}

// Entries returns the recorded entries.
func (t *InstructionTrace) Entries() []TraceEntry { return t.entries }

// Reset clears recorded entries and the sequence counter.
func (t *InstructionTrace) Reset() {
	t.entries = t.entries[:0]
	t.sequence = 0
}

// Flush writes every recorded entry to Writer as one line each, then
// clears the buffer.
func (t *InstructionTrace) Flush() error {
	for _, e := range t.entries {
		addr := fmt.Sprintf("0x%04x", e.PC)
		if t.symbols != nil {
			addr = t.symbols.FormatAddressCompact(e.PC)
		}
		if _, err := fmt.Fprintf(t.Writer, "%6d %-18s %-6s depth=%d\n", e.Sequence, addr, e.Op, e.Depth); err != nil {
			return err
		}
	}
	t.Reset()
	return nil
}
