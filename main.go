package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"markab/compiler"
	"markab/config"
	"markab/debugger"
	"markab/iosafe"
	"markab/rom"
	"markab/vm"
)

func main() {
	var (
		ircMode    = flag.Bool("irc", false, "Use the IRC bridge adapter instead of the terminal host loop")
		debugMode  = flag.Bool("debug", false, "Launch the tcell/tview trace/dump debugger instead of running directly")
		traceMode  = flag.Bool("trace", false, "Enable instruction tracing from startup")
		configPath = flag.String("config", "", "Path to a TOML configuration file (default: platform config dir)")
		maxCycles  = flag.Uint("max-cycles", 0, "Override config.Execution.MaxCyclesPerStep (0 keeps the config value)")
		fsRoot     = flag.String("fsroot", "", "Override config.FileIO.Root, the file-access containment directory")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "markab: %v\n", err)
		os.Exit(2)
	}
	if *maxCycles > 0 {
		cfg.Execution.MaxCyclesPerStep = *maxCycles
	}
	if *fsRoot != "" {
		cfg.FileIO.Root = *fsRoot
	}
	if *traceMode {
		cfg.Execution.EnableTrace = true
	}

	policy, err := cfg.Policy()
	if err != nil {
		fmt.Fprintf(os.Stderr, "markab: building file policy: %v\n", err)
		os.Exit(2)
	}

	romPath := cfg.Execution.DefaultROM
	if flag.NArg() > 0 {
		romPath = flag.Arg(0)
	}

	machine, symbols, err := bootMachine(romPath, policy)
	if err != nil {
		fmt.Fprintf(os.Stderr, "markab: %v\n", err)
		os.Exit(2)
	}

	if cfg.Execution.EnableTrace {
		machine.Trace = true
		machine.Tracer = vm.NewInstructionTrace(os.Stderr)
	}
	if machine.FatalError != nil {
		fmt.Fprintf(os.Stderr, "markab: boot fault: %s\n", machine.FatalError.Error())
		os.Exit(2)
	}

	var resolver *vm.SymbolResolver
	if len(symbols) > 0 {
		resolver = vm.NewSymbolResolver(symbols)
		machine.Symbols = resolver
		if machine.Tracer != nil {
			machine.Tracer.LoadSymbols(resolver)
		}
	}

	if *debugMode {
		dbg := debugger.NewDebugger(machine, cfg.Debugger.HistorySize)
		if resolver != nil {
			dbg.LoadSymbols(resolver)
		}
		tui := debugger.NewTUI(dbg)
		if err := tui.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "markab: debugger: %v\n", err)
			os.Exit(1)
		}
		return
	}

	reader, writer := selectHostIO(*ircMode, cfg)
	runTerminalLoop(machine, reader, writer)

	if machine.FatalError != nil {
		os.Exit(2)
	}
}

// loadConfig loads the named config file, or the platform default when
// path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

// bootMachine loads romPath (and its sibling .symbols file, if present)
// into a fresh VM and runs the boot prologue to completion. A ".mkb"
// source path is compiled on the fly instead of read as a raw image, so
// the CLI can run a bootstrap source directly without a separate build
// step.
func bootMachine(romPath string, policy *iosafe.Policy) (*vm.VM, map[string]uint16, error) {
	var image []byte
	symbols := map[string]uint16{}

	if strings.HasSuffix(romPath, ".mkb") {
		compiled, syms, err := compileSource(romPath, policy)
		if err != nil {
			return nil, nil, err
		}
		image, symbols = compiled, syms
	} else {
		var err error
		image, err = rom.Load(romPath)
		if err != nil {
			return nil, nil, err
		}
		symPath := rom.SymbolPath(romPath)
		if _, statErr := os.Stat(symPath); statErr == nil {
			symbols, err = rom.LoadSymbols(symPath)
			if err != nil {
				return nil, nil, fmt.Errorf("loading symbols: %w", err)
			}
		}
	}

	machine := vm.New()
	machine.IOPolicy = policy
	if f := machine.WarmBoot(image); f != nil {
		return nil, nil, fmt.Errorf("warm boot: %s", f.Error())
	}
	return machine, symbols, nil
}

// compileSource runs the bootstrap compiler over a ".mkb" source file and
// returns the resulting image plus its symbol table.
func compileSource(path string, policy *iosafe.Policy) ([]byte, map[string]uint16, error) {
	text, err := os.ReadFile(path) // #nosec G304 -- user-specified source path
	if err != nil {
		return nil, nil, fmt.Errorf("reading %q: %w", path, err)
	}

	c := compiler.New()
	c.SetPolicy(policy)
	if e := c.CompileSource(path, string(text)); e != nil {
		return nil, nil, fmt.Errorf("compiling %q: %w", path, e)
	}
	return c.Finish(), c.Symbols, nil
}

// selectHostIO picks the reader/writer pair the terminal loop feeds
// ReceiveLine from and drains output to. --irc swaps in the bridge
// adapter; the bridge itself is out of scope for this build.
func selectHostIO(ircMode bool, cfg *config.Config) (*bufio.Scanner, *bufio.Writer) {
	if ircMode {
		return newIRCBridge(cfg)
	}
	return bufio.NewScanner(os.Stdin), bufio.NewWriter(os.Stdout)
}

// runTerminalLoop feeds each line from reader to the VM's receive-line
// IRQ and drains output after every line, matching the way a terminal
// and a loaded file both deliver input one line at a time.
func runTerminalLoop(machine *vm.VM, reader *bufio.Scanner, writer *bufio.Writer) {
	defer writer.Flush()

	for reader.Scan() {
		if machine.Halted || machine.FatalError != nil {
			break
		}
		if f := machine.ReceiveLine(reader.Bytes()); f != nil {
			fmt.Fprintf(writer, "fault: %s\n", f.Error())
		}
		writer.Write(machine.DrainOutput())
		writer.Flush()
	}

	if machine.FatalError != nil {
		fmt.Fprintf(writer, "fatal: %s\n", machine.FatalError.Error())
		writer.Flush()
	}
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [rom-file] [flags]\n\n", filepath.Base(os.Args[0]))
		fmt.Fprintln(os.Stderr, "rom-file defaults to the configured Execution.DefaultROM (kernel.rom).")
		flag.PrintDefaults()
	}
}
