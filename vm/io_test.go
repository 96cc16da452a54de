package vm

import (
	"os"
	"path/filepath"
	"testing"

	"markab/iosafe"
)

func TestIOKEYReadsInputBuffer(t *testing.T) {
	v := New()
	v.input = []byte("ab")
	v.inputPos = 0

	if f := v.execIO(IOKEY); f != nil {
		t.Fatalf("iokey: %v", f)
	}
	cells := v.DataStackSlice()
	if cells[0] != 'a' || cells[1] != -1 {
		t.Fatalf("expected ['a', -1], got %v", cells)
	}
}

func TestIOKEYEmptyPushesZero(t *testing.T) {
	v := New()
	if f := v.execIO(IOKEY); f != nil {
		t.Fatalf("iokey: %v", f)
	}
	if got := v.DataStackSlice()[0]; got != 0 {
		t.Errorf("expected 0 on empty input, got %d", got)
	}
}

func TestIOEMITWritesByte(t *testing.T) {
	v := New()
	_ = v.push('x')
	if f := v.execIO(IOEMIT); f != nil {
		t.Fatalf("ioemit: %v", f)
	}
	if string(v.OutputBytes()) != "x" {
		t.Errorf("expected output x, got %q", v.OutputBytes())
	}
}

func TestIODOTWritesDecimalByDefault(t *testing.T) {
	v := New()
	_ = v.push(42)
	if f := v.execIO(IODOT); f != nil {
		t.Fatalf("iodot: %v", f)
	}
	if string(v.OutputBytes()) != "42 " {
		t.Errorf("expected '42 ', got %q", v.OutputBytes())
	}
}

func TestIODUMPConsumesAddrAndCount(t *testing.T) {
	v := New()
	v.StoreByte(0x10, 0xAA)
	v.StoreByte(0x11, 0xBB)
	_ = v.push(2)    // count (S)
	_ = v.push(0x10) // addr (T)
	if f := v.execIO(IODUMP); f != nil {
		t.Fatalf("iodump: %v", f)
	}
	if v.DataDepth() != 0 {
		t.Errorf("expected both operands consumed, got depth %d", v.DataDepth())
	}
	if string(v.OutputBytes()) != "aa bb\n" {
		t.Errorf("expected hex dump, got %q", v.OutputBytes())
	}
}

func TestTRONTROFFToggleTrace(t *testing.T) {
	v := New()
	_ = v.execIO(TRON)
	if !v.Trace {
		t.Error("expected Trace=true after TRON")
	}
	_ = v.execIO(TROFF)
	if v.Trace {
		t.Error("expected Trace=false after TROFF")
	}
}

func newPolicyVM(t *testing.T, dir string) *VM {
	t.Helper()
	policy, err := iosafe.NewPolicy(dir, []string{`.+\.mkb`}, []string{`self_hosted\.rom`})
	if err != nil {
		t.Fatalf("new policy: %v", err)
	}
	v := New()
	v.IOPolicy = policy
	return v
}

func pushMarkabString(v *VM, addr uint16, s string) {
	v.StoreByte(addr, int32(len(s)))
	for i := 0; i < len(s); i++ {
		v.StoreByte(addr+1+uint16(i), int32(s[i]))
	}
}

func TestDoIOLoadFeedsLinesThroughReceiveLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "boot.mkb")
	if err := os.WriteFile(path, []byte("one\ntwo\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	v := newPolicyVM(t, dir)
	// IRQRX handler just HALTs, so the first ReceiveLine returns cleanly and
	// the now-halted VM ends the load before the second line is fed.
	if f := v.LoadImage([]byte{byte(HALT)}); f != nil {
		t.Fatalf("load: %v", f)
	}
	if f := v.StoreHalf(IRQRXAddr, HeapBase); f != nil {
		t.Fatalf("store vector: %v", f)
	}
	v.Halted = false

	if f := v.doIOLoad("boot.mkb"); f != nil {
		t.Fatalf("doIOLoad: %v", f)
	}
}

func TestDoIOLoadRejectsNesting(t *testing.T) {
	dir := t.TempDir()
	v := newPolicyVM(t, dir)
	v.ioDepth = 1
	f := v.doIOLoad("anything.mkb")
	if f == nil || f.Code != ErrIOLoadDepth {
		t.Fatalf("expected IOLOAD_DEPTH, got %v", f)
	}
}

func TestDoIOLoadWithoutPolicyFaults(t *testing.T) {
	v := New()
	f := v.doIOLoad("anything.mkb")
	if f == nil || f.Code != ErrFilePerms {
		t.Fatalf("expected FILE_PERMS, got %v", f)
	}
}

func TestDoIOLoadMissingFileFaults(t *testing.T) {
	dir := t.TempDir()
	v := newPolicyVM(t, dir)
	f := v.doIOLoad("missing.mkb")
	if f == nil || f.Code != ErrFileNotFound {
		t.Fatalf("expected FILE_NOT_FOUND, got %v", f)
	}
}

func TestIOSAVEChecksPolicyOnly(t *testing.T) {
	dir := t.TempDir()
	v := newPolicyVM(t, dir)
	pushMarkabString(v, 0x100, "self_hosted.rom")
	_ = v.push(0x100)
	if f := v.execIO(IOSAVE); f != nil {
		t.Fatalf("iosave: %v", f)
	}
}

func TestIOSAVERejectsDisallowedName(t *testing.T) {
	dir := t.TempDir()
	v := newPolicyVM(t, dir)
	pushMarkabString(v, 0x100, "forbidden.rom")
	_ = v.push(0x100)
	f := v.execIO(IOSAVE)
	if f == nil || f.Code != ErrFilePerms {
		t.Fatalf("expected FILE_PERMS, got %v", f)
	}
}
