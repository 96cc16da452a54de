// Package debugger implements the live trace/dump view launched by
// --debug: a tcell/tview text UI showing the current instruction trace
// and stack contents as source lines are fed to the interpreter.
package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"markab/vm"
)

// Debugger wraps a running VM with the state a command-line debug
// console needs: command history, symbol resolution, and an output
// buffer the TUI drains after every command.
type Debugger struct {
	VM      *vm.VM
	Symbols *vm.SymbolResolver
	History *CommandHistory

	LastCommand string
	Output      strings.Builder
}

// NewDebugger wraps machine for interactive use. historySize bounds the
// command-history buffer (config.Config.Debugger.HistorySize).
func NewDebugger(machine *vm.VM, historySize int) *Debugger {
	return &Debugger{
		VM:      machine,
		History: NewCommandHistory(historySize),
	}
}

// LoadSymbols installs the symbol table used to annotate trace output.
func (d *Debugger) LoadSymbols(r *vm.SymbolResolver) {
	d.Symbols = r
	if d.VM.Tracer != nil {
		d.VM.Tracer.LoadSymbols(r)
	}
}

// ExecuteCommand processes one line of debugger console input. An empty
// line repeats the last command, matching a conventional debugger REPL.
func (d *Debugger) ExecuteCommand(cmdLine string) error {
	cmdLine = strings.TrimSpace(cmdLine)
	if cmdLine == "" {
		cmdLine = d.LastCommand
	}
	if cmdLine != "" {
		d.History.Add(cmdLine)
		d.LastCommand = cmdLine
	}

	parts := strings.Fields(cmdLine)
	if len(parts) == 0 {
		return nil
	}
	return d.handleCommand(strings.ToLower(parts[0]), parts[1:])
}

func (d *Debugger) handleCommand(cmd string, args []string) error {
	switch cmd {
	case "feed", "f":
		return d.cmdFeed(args)
	case "tron":
		return d.cmdTron(args)
	case "troff":
		return d.cmdTroff(args)
	case "trace", "t":
		return d.cmdTrace(args)
	case "dump", "d":
		return d.cmdDump(args)
	case "stack", "ds":
		return d.cmdDataStack(args)
	case "rstack", "rs":
		return d.cmdReturnStack(args)
	case "regs", "r":
		return d.cmdRegs(args)
	case "reset":
		return d.cmdReset(args)
	case "help", "h", "?":
		return d.cmdHelp(args)
	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
	}
}

// GetOutput returns and clears the output buffer.
func (d *Debugger) GetOutput() string {
	output := d.Output.String()
	d.Output.Reset()
	return output
}

// Printf writes formatted output to the output buffer.
func (d *Debugger) Printf(format string, args ...interface{}) {
	d.Output.WriteString(fmt.Sprintf(format, args...))
}

// Println writes a line to the output buffer.
func (d *Debugger) Println(args ...interface{}) {
	d.Output.WriteString(fmt.Sprintln(args...))
}

// FormatStack renders cells (bottom-to-top, as returned by
// VM.DataStackSlice/ReturnStackSlice) top-down with a "->" marker on the
// current top of stack, one cell per line. Shared by the command-line
// "stack"/"rstack" output and the TUI's stack panels so both render
// identically.
func FormatStack(cells []int32) string {
	if len(cells) == 0 {
		return "(empty)"
	}
	var sb strings.Builder
	for i := len(cells) - 1; i >= 0; i-- {
		marker := "  "
		if i == len(cells)-1 {
			marker = "->"
		}
		fmt.Fprintf(&sb, "%s [%2d] %d (0x%04x)\n", marker, i, cells[i], uint16(cells[i]))
	}
	return sb.String()
}

// parseAddr parses a decimal or 0x-prefixed hex address.
func parseAddr(s string) (uint16, error) {
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
		base = 16
	}
	v, err := strconv.ParseUint(s, base, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return uint16(v), nil
}
