package vm

import "testing"

func TestRegPortAandB(t *testing.T) {
	v := New()
	_ = v.push(0x100)
	if f := v.execRegPort(MTA); f != nil {
		t.Fatalf("mta: %v", f)
	}
	if v.A != 0x100 {
		t.Errorf("expected A=0x100, got 0x%x", v.A)
	}
	if f := v.execRegPort(AOP); f != nil {
		t.Fatalf("aop: %v", f)
	}
	if got := v.DataStackSlice()[0]; got != 0x100 {
		t.Errorf("expected 0x100 pushed, got 0x%x", got)
	}

	_ = v.execRegPort(AINC)
	if v.A != 0x101 {
		t.Errorf("expected A incremented to 0x101, got 0x%x", v.A)
	}
	_ = v.execRegPort(ADEC)
	_ = v.execRegPort(ADEC)
	if v.A != 0x0ff {
		t.Errorf("expected A decremented to 0xff, got 0x%x", v.A)
	}
}

func TestRegPortBIndexedLoadStore(t *testing.T) {
	v := New()
	_ = v.push(0x200)
	_ = v.execRegPort(MTB)

	v.StoreByte(0x200, 0x42)
	if f := v.execRegPort(LBB); f != nil {
		t.Fatalf("lbb: %v", f)
	}
	if got := v.DataStackSlice()[0]; got != 0x42 {
		t.Errorf("expected 0x42, got 0x%x", got)
	}

	if f := v.execRegPort(LBBI); f != nil {
		t.Fatalf("lbbi: %v", f)
	}
	if v.B != 0x201 {
		t.Errorf("expected B incremented after lbbi, got 0x%x", v.B)
	}
}

func TestRegPortSBBIAdvancesB(t *testing.T) {
	v := New()
	_ = v.push(0x300)
	_ = v.execRegPort(MTB)
	_ = v.push(0x55)
	if f := v.execRegPort(SBBI); f != nil {
		t.Fatalf("sbbi: %v", f)
	}
	if v.B != 0x301 {
		t.Errorf("expected B incremented after sbbi, got 0x%x", v.B)
	}
	if got := v.LoadByte(0x300); got != 0x55 {
		t.Errorf("expected byte 0x55 stored at 0x300, got 0x%x", got)
	}
}
