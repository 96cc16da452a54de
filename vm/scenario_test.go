package vm

import "testing"

// TestScenarioArithmetic runs spec scenario 2 end to end: literal bytes
// for "3 5 + 2 *", expecting top of stack 16 at depth 1.
func TestScenarioArithmetic(t *testing.T) {
	v := New()
	image := []byte{byte(U8), 3, byte(U8), 5, byte(ADD), byte(U8), 2, byte(MUL), byte(RET)}
	if f := v.LoadImage(image); f != nil {
		t.Fatalf("load: %v", f)
	}
	v.PC = 0
	if f := v.runSteps(100, 0); f != nil {
		t.Fatalf("run: %v", f)
	}
	got := v.DataStackSlice()
	if len(got) != 1 || got[0] != 16 {
		t.Fatalf("expected stack [16], got %v", got)
	}
}

// TestScenarioBranchTaken runs spec scenario 3 end to end: a taken BZ
// skips the following U8 literal and lands on the one after it.
func TestScenarioBranchTaken(t *testing.T) {
	v := New()
	image := []byte{byte(U8), 0, byte(BZ), 3, byte(U8), 7, byte(U8), 9, byte(RET)}
	if f := v.LoadImage(image); f != nil {
		t.Fatalf("load: %v", f)
	}
	v.PC = 0
	if f := v.runSteps(100, 0); f != nil {
		t.Fatalf("run: %v", f)
	}
	got := v.DataStackSlice()
	if len(got) != 1 || got[0] != 9 {
		t.Fatalf("expected stack [9] (branch skipped U8 7), got %v", got)
	}
}

// TestScenarioCountedLoop runs spec scenario 4 end to end: MTR/R/BFOR
// executes the loop body n+1 times with R taking values n, n-1, ..., 0.
// The bytes are hand-assembled here; the compiler's own for{/}for offset
// is checked by compiler/compiler_test.go's TestForBlockEmitsMTRAndBFOR.
func TestScenarioCountedLoop(t *testing.T) {
	v := New()
	// 0:U8 1:2 2:MTR 3:R 4:BFOR 5:<offset> 6:RET
	// offset must send a taken branch back to address 3 (the loop body's
	// start, the R opcode): base is the address of the offset byte itself
	// (5), so offset = base - 3 = 2.
	image := []byte{byte(U8), 2, byte(MTR), byte(R), byte(BFOR), 2, byte(RET)}
	if f := v.LoadImage(image); f != nil {
		t.Fatalf("load: %v", f)
	}
	v.PC = 0
	if f := v.runSteps(100, 0); f != nil {
		t.Fatalf("run: %v", f)
	}
	got := v.DataStackSlice()
	want := []int32{2, 1, 0}
	if len(got) != len(want) {
		t.Fatalf("expected stack %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected stack %v, got %v", want, got)
		}
	}
	if v.ReturnDepth() != 0 {
		t.Fatalf("expected empty return stack after loop exit, got depth %d", v.ReturnDepth())
	}
}

// TestScenarioHelloWorld runs a length-prefixed byte-emission loop end to
// end (spec scenario 1's shape: MTA/LBAI/DEC/MTR/LBAI/IOEMIT/BFOR/RET
// walking a length-prefixed string), computing every address and branch
// offset from the actual layout rather than hardcoding them, so the test
// stays correct however the surrounding bytes are arranged.
func TestScenarioHelloWorld(t *testing.T) {
	msg := "Hello, world!\n"

	var image []byte
	emit := func(b ...byte) { image = append(image, b...) }

	emit(byte(U8), 0) // operand patched below once lenAddr is known
	lenOperandPos := len(image) - 1
	emit(byte(MTA))
	emit(byte(LBAI))
	emit(byte(DEC))
	emit(byte(MTR))
	loopBodyPos := len(image)
	emit(byte(LBAI))
	emit(byte(IOEMIT))
	emit(byte(BFOR), 0) // offset patched below
	offsetBytePos := len(image) - 1
	emit(byte(RET))
	lenAddr := len(image)
	emit(byte(len(msg)))
	emit([]byte(msg)...)

	image[lenOperandPos] = byte(lenAddr)
	// BFOR's base is the address of its own offset byte; a taken branch
	// lands at base-offset, which must be loopBodyPos.
	image[offsetBytePos] = byte(offsetBytePos - loopBodyPos)

	v := New()
	if f := v.LoadImage(image); f != nil {
		t.Fatalf("load: %v", f)
	}
	v.PC = 0
	if f := v.runSteps(1000, 0); f != nil {
		t.Fatalf("run: %v", f)
	}
	if got := string(v.DrainOutput()); got != msg {
		t.Fatalf("expected output %q, got %q", msg, got)
	}
	if v.DataDepth() != 0 {
		t.Fatalf("expected empty data stack, got depth %d", v.DataDepth())
	}
	if v.Halted {
		t.Fatalf("expected halted=false after a plain RET")
	}
}
