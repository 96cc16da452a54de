package vm

import "testing"

func TestArithBinaryOps(t *testing.T) {
	cases := []struct {
		op       Opcode
		s, t     int32
		expected int32
	}{
		{ADD, 2, 3, 5},
		{SUB, 5, 3, 2},
		{MUL, 4, 3, 12},
		{DIV, 10, 3, 3},
		{DIV, 10, 0, 0}, // division by zero yields 0, never faults
		{MOD, 10, 3, 1},
		{MOD, 10, 0, 0},
		{AND, 0xF0, 0x0F, 0},
		{OR, 0xF0, 0x0F, 0xFF},
		{XOR, 0xFF, 0x0F, 0xF0},
		{SLL, 1, 4, 16},
		{SRL, 16, 4, 1},
		{SRA, -8, 1, -4},
		{EQ, 3, 3, -1},
		{EQ, 3, 4, 0},
		{NE, 3, 4, -1},
		{GT, 5, 3, -1},
		{LT, 3, 5, -1},
	}
	for _, c := range cases {
		v := New()
		_ = v.push(c.s)
		_ = v.push(c.t)
		if f := v.execArith(c.op); f != nil {
			t.Fatalf("%s(%d,%d): %v", c.op, c.s, c.t, f)
		}
		got := v.DataStackSlice()[0]
		if got != c.expected {
			t.Errorf("%s(%d,%d) = %d, want %d", c.op, c.s, c.t, got, c.expected)
		}
	}
}

func TestArithUnaryOps(t *testing.T) {
	v := New()
	_ = v.push(5)
	if f := v.execArith(INC); f != nil {
		t.Fatalf("inc: %v", f)
	}
	if got := v.DataStackSlice()[0]; got != 6 {
		t.Errorf("inc: got %d, want 6", got)
	}

	if f := v.execArith(DEC); f != nil {
		t.Fatalf("dec: %v", f)
	}
	if got := v.DataStackSlice()[0]; got != 5 {
		t.Errorf("dec: got %d, want 5", got)
	}

	if f := v.execArith(ZE); f != nil {
		t.Fatalf("ze: %v", f)
	}
	if got := v.DataStackSlice()[0]; got != 0 {
		t.Errorf("ze(5): got %d, want 0", got)
	}

	v2 := New()
	_ = v2.push(0)
	if f := v2.execArith(ZE); f != nil {
		t.Fatalf("ze: %v", f)
	}
	if got := v2.DataStackSlice()[0]; got != -1 {
		t.Errorf("ze(0): got %d, want -1", got)
	}
}

func TestArithTrueFalse(t *testing.T) {
	v := New()
	_ = v.execArith(TRUE)
	_ = v.execArith(FALSE)
	cells := v.DataStackSlice()
	if cells[0] != -1 || cells[1] != 0 {
		t.Errorf("expected [-1 0], got %v", cells)
	}
}

func TestArithUnderflow(t *testing.T) {
	v := New()
	if f := v.execArith(ADD); f == nil || f.Code != ErrDataUnder {
		t.Fatalf("expected DATA_UNDER, got %v", f)
	}
}

func TestMemoryByteRoundTrip(t *testing.T) {
	v := New()
	_ = v.push(42)     // value
	_ = v.push(0x1234) // address
	if f := v.execMemory(SB); f != nil {
		t.Fatalf("sb: %v", f)
	}
	if v.DataDepth() != 0 {
		t.Fatalf("expected empty stack after sb, got depth %d", v.DataDepth())
	}

	_ = v.push(0x1234)
	if f := v.execMemory(LB); f != nil {
		t.Fatalf("lb: %v", f)
	}
	if got := v.DataStackSlice()[0]; got != 42 {
		t.Errorf("lb: got %d, want 42", got)
	}
}

func TestMemoryHalfwordBounds(t *testing.T) {
	v := New()
	_ = v.push(1)
	_ = v.push(65535) // one byte short of room for a halfword
	if f := v.execMemory(SH); f == nil || f.Code != ErrBadAddress {
		t.Fatalf("expected BAD_ADDRESS, got %v", f)
	}
}

func TestMemoryWordRoundTrip(t *testing.T) {
	v := New()
	_ = v.push(-123456)
	_ = v.push(100)
	if f := v.execMemory(SW); f != nil {
		t.Fatalf("sw: %v", f)
	}
	_ = v.push(100)
	if f := v.execMemory(LW); f != nil {
		t.Fatalf("lw: %v", f)
	}
	if got := v.DataStackSlice()[0]; got != -123456 {
		t.Errorf("lw: got %d, want -123456", got)
	}
}
