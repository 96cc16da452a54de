package vm

import (
	"bytes"
	"sync"

	"markab/iosafe"
)

// DataStackCap and ReturnStackCap are the fixed stack capacities.
const (
	DataStackCap   = 18
	ReturnStackCap = 17
)

// dataStack is a bounded stack of 32-bit signed cells. T and S (top and
// second-from-top) are exposed as accessors rather than separate storage:
// nothing observable distinguishes named registers from a slice-backed
// stack with T()/S() views, and a single backing array keeps
// push/pop/overflow-reset atomic.
type dataStack struct {
	cells [DataStackCap]int32
	depth int
}

func (s *dataStack) reset() { s.depth = 0 }

func (s *dataStack) push(v int32) *Fault {
	if s.depth >= DataStackCap {
		s.reset()
		return newFault(ErrDataOver, "data stack overflow")
	}
	s.cells[s.depth] = v
	s.depth++
	return nil
}

// checkDepth verifies at least n cells are present without popping.
func (s *dataStack) checkDepth(n int) *Fault {
	if s.depth < n {
		return newFault(ErrDataUnder, "data stack underflow")
	}
	return nil
}

func (s *dataStack) pop() (int32, *Fault) {
	if s.depth < 1 {
		return 0, newFault(ErrDataUnder, "data stack underflow")
	}
	s.depth--
	return s.cells[s.depth], nil
}

// T returns the top cell without popping. Caller must checkDepth(1) first.
func (s *dataStack) T() int32 { return s.cells[s.depth-1] }

// S returns the second cell without popping. Caller must checkDepth(2) first.
func (s *dataStack) S() int32 { return s.cells[s.depth-2] }

func (s *dataStack) setT(v int32) { s.cells[s.depth-1] = v }

// returnStack is a bounded stack of 32-bit cells with R at top.
type returnStack struct {
	cells [ReturnStackCap]int32
	depth int
}

func (s *returnStack) reset() { s.depth = 0 }

func (s *returnStack) push(v int32) *Fault {
	if s.depth >= ReturnStackCap {
		return newFault(ErrROver, "return stack overflow")
	}
	s.cells[s.depth] = v
	s.depth++
	return nil
}

func (s *returnStack) pop() (int32, *Fault) {
	if s.depth < 1 {
		return 0, newFault(ErrRUnder, "return stack underflow")
	}
	s.depth--
	return s.cells[s.depth], nil
}

func (s *returnStack) top() int32 { return s.cells[s.depth-1] }

// StdoutReadyFunc is invoked synchronously whenever IOEMIT writes a
// newline, so the host can drain the output buffer between step calls.
type StdoutReadyFunc func(vm *VM)

// VM is a single Markab virtual machine instance. All state lives here;
// there is no package-level mutable state, so independent VMs never
// interfere with each other.
type VM struct {
	RAM [RAMSize]byte

	// entryMu guards WarmBoot and ReceiveLine against accidental concurrent
	// host calls; it is not used to parallelize execution, which stays
	// single-threaded per call, mirroring the teacher's fdMu guarding its
	// file descriptor table rather than its instruction loop.
	entryMu sync.Mutex

	ds dataStack
	rs returnStack

	PC      uint16
	ERR     int32
	Base    int32
	A       uint16
	B       uint16
	Halted  bool
	Trace   bool
	ioDepth int
	ioFail  bool

	input    []byte
	inputPos int

	output bytes.Buffer

		// StdoutReady fires once per emitted '\n', after the byte has been
	// appended to output. May be nil.
	StdoutReady StdoutReadyFunc

	// Symbols is optional and used only for trace/dump annotation; never
	// consulted by instruction semantics.
	Symbols *SymbolResolver

	// IOPolicy gates IOLOAD/IOSAVE path access. Nil means no file access
	// is permitted at all.
	IOPolicy *iosafe.Policy

	// Tracer records one entry per executed instruction while Trace is
	// true. Nil disables recording even if Trace is set.
	Tracer *InstructionTrace

	// FatalError is set when an error IRQ fires with no handler installed,
	// or a handler itself raises while already in the handler at the
	// nesting ceiling. Once set, the VM will not execute further.
	FatalError *Fault

	cyclesInErrorHandler int
}

// New creates a zeroed VM with RAM cleared and no file access policy.
func New() *VM {
	return &VM{Base: 10}
}

// Reset clears stacks and the input buffer. Used by the RESET opcode and
// the debugger's reset command.
func (vm *VM) Reset() {
	vm.ds.reset()
	vm.rs.reset()
	vm.input = nil
	vm.inputPos = 0
}

// DataDepth reports current data-stack depth (for tests/debugger).
func (vm *VM) DataDepth() int { return vm.ds.depth }

// ReturnDepth reports current return-stack depth (for tests/debugger).
func (vm *VM) ReturnDepth() int { return vm.rs.depth }

// DataStackSlice returns a copy of the live data stack, bottom-to-top.
func (vm *VM) DataStackSlice() []int32 {
	out := make([]int32, vm.ds.depth)
	copy(out, vm.ds.cells[:vm.ds.depth])
	return out
}

// ReturnStackSlice returns a copy of the live return stack, bottom-to-top.
func (vm *VM) ReturnStackSlice() []int32 {
	out := make([]int32, vm.rs.depth)
	copy(out, vm.rs.cells[:vm.rs.depth])
	return out
}

// OutputBytes returns the buffered emitted output without clearing it.
func (vm *VM) OutputBytes() []byte { return vm.output.Bytes() }

// DrainOutput returns and clears buffered emitted output. The host calls
// this between step calls to keep one emitted line from bleeding into
// the next host-level read.
func (vm *VM) DrainOutput() []byte {
	b := vm.output.Bytes()
	out := make([]byte, len(b))
	copy(out, b)
	vm.output.Reset()
	return out
}
