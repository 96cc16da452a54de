package debugger

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// TUI is the text user interface for --debug: a register/stack/trace
// view driven from a single command line, refreshed after every line
// fed to the interpreter.
type TUI struct {
	Debugger *Debugger
	App      *tview.Application
	Pages    *tview.Pages

	MainLayout *tview.Flex
	RightPanel *tview.Flex

	RegisterView   *tview.TextView
	DataStackView  *tview.TextView
	ReturnStackView *tview.TextView
	TraceView      *tview.TextView
	OutputView     *tview.TextView
	CommandInput   *tview.InputField
}

// NewTUI builds the view tree around an already-constructed Debugger.
func NewTUI(d *Debugger) *TUI {
	t := &TUI{
		Debugger: d,
		App:      tview.NewApplication(),
	}
	t.initializeViews()
	t.buildLayout()
	t.setupKeyBindings()
	return t
}

func (t *TUI) initializeViews() {
	t.RegisterView = tview.NewTextView().SetDynamicColors(true)
	t.RegisterView.SetBorder(true).SetTitle(" Registers ")

	t.DataStackView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.DataStackView.SetBorder(true).SetTitle(" Data Stack ")

	t.ReturnStackView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.ReturnStackView.SetBorder(true).SetTitle(" Return Stack ")

	t.TraceView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.TraceView.SetBorder(true).SetTitle(" Trace ")

	t.OutputView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().SetLabel("> ").SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
}

func (t *TUI) buildLayout() {
	t.RightPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.RegisterView, 5, 0, false).
		AddItem(t.DataStackView, 0, 1, false).
		AddItem(t.ReturnStackView, 0, 1, false)

	mainContent := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(t.TraceView, 0, 2, false).
		AddItem(t.RightPanel, 0, 1, false)

	t.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(mainContent, 0, 4, false).
		AddItem(t.OutputView, 8, 0, false).
		AddItem(t.CommandInput, 3, 0, true)

	t.Pages = tview.NewPages().AddPage("main", t.MainLayout, true, true)
}

func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF1:
			t.executeCommand("help")
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		case tcell.KeyCtrlL:
			t.RefreshAll()
			return nil
		}
		return event
	})
}

func (t *TUI) handleCommand(key tcell.Key) {
	if key == tcell.KeyEnter {
		cmd := t.CommandInput.GetText()
		if cmd != "" {
			t.executeCommand(cmd)
			t.CommandInput.SetText("")
		}
	}
}

func (t *TUI) executeCommand(cmd string) {
	t.Debugger.Output.Reset()
	err := t.Debugger.ExecuteCommand(cmd)
	output := t.Debugger.GetOutput()

	if err != nil {
		t.WriteOutput(fmt.Sprintf("[red]Error:[white] %v\n", err))
	}
	if output != "" {
		t.WriteOutput(output)
	}
	t.RefreshAll()
}

// WriteOutput appends text to the output view and scrolls to the end.
func (t *TUI) WriteOutput(text string) {
	_, _ = t.OutputView.Write([]byte(text))
	t.OutputView.ScrollToEnd()
}

// RefreshAll redraws every panel from current VM state.
func (t *TUI) RefreshAll() {
	t.updateRegisterView()
	t.updateDataStackView()
	t.updateReturnStackView()
	t.updateTraceView()
	t.App.Draw()
}

func (t *TUI) updateRegisterView() {
	v := t.Debugger.VM
	lines := []string{
		fmt.Sprintf("PC:   0x%04x", v.PC),
		fmt.Sprintf("ERR:  %d", v.ERR),
		fmt.Sprintf("BASE: %d", v.Base),
		fmt.Sprintf("A:    0x%04x   B: 0x%04x", v.A, v.B),
	}
	status := "[green]running[white]"
	if v.Halted {
		status = "[red]halted[white]"
	}
	if v.FatalError != nil {
		status = fmt.Sprintf("[red]fatal: %s[white]", v.FatalError.Error())
	}
	trace := "off"
	if v.Trace {
		trace = "[yellow]on[white]"
	}
	lines = append(lines, fmt.Sprintf("status: %s  trace: %s", status, trace))
	t.RegisterView.SetText(strings.Join(lines, "\n"))
}

func (t *TUI) updateDataStackView() {
	t.DataStackView.SetText(FormatStack(t.Debugger.VM.DataStackSlice()))
}

func (t *TUI) updateReturnStackView() {
	t.ReturnStackView.SetText(FormatStack(t.Debugger.VM.ReturnStackSlice()))
}

func (t *TUI) updateTraceView() {
	tracer := t.Debugger.VM.Tracer
	if tracer == nil {
		t.TraceView.SetText("[yellow]tracing not started; type 'tron'[white]")
		return
	}
	entries := tracer.Entries()
	start := 0
	if len(entries) > 500 {
		start = len(entries) - 500
	}
	var lines []string
	for _, e := range entries[start:] {
		addr := fmt.Sprintf("0x%04x", e.PC)
		if t.Debugger.Symbols != nil {
			addr = t.Debugger.Symbols.FormatAddressCompact(e.PC)
		}
		lines = append(lines, fmt.Sprintf("%6d %-18s %-6s depth=%d", e.Sequence, addr, e.Op, e.Depth))
	}
	t.TraceView.SetText(strings.Join(lines, "\n"))
	t.TraceView.ScrollToEnd()
}

// Run starts the TUI application's event loop.
func (t *TUI) Run() error {
	t.RefreshAll()
	t.WriteOutput("[green]markab debugger[white]\n")
	t.WriteOutput("Press F1 for help, Ctrl-C to quit, Ctrl-L to refresh.\n")
	t.WriteOutput("Type 'help' for command list.\n\n")
	return t.App.SetRoot(t.Pages, true).SetFocus(t.CommandInput).Run()
}

// Stop halts the TUI application's event loop.
func (t *TUI) Stop() {
	t.App.Stop()
}
