package rom

import (
	"os"
	"path/filepath"
	"testing"

	"markab/vm"
)

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kernel.rom")
	image := []byte{1, 2, 3, 4, 5}

	if err := Save(path, image); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(got) != string(image) {
		t.Errorf("expected %v, got %v", image, got)
	}
}

func TestLoadRejectsOversizedImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.rom")
	big := make([]byte, vm.HeapMax-vm.HeapBase+1)
	if err := os.WriteFile(path, big, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for oversized ROM image")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path/kernel.rom"); err == nil {
		t.Fatal("expected error for missing ROM file")
	}
}

func TestSymbolPath(t *testing.T) {
	cases := map[string]string{
		"kernel.rom":        "kernel.symbols",
		"/a/b/kernel.rom":   "/a/b/kernel.symbols",
		"noext":             "noext.symbols",
	}
	for in, want := range cases {
		if got := SymbolPath(in); got != want {
			t.Errorf("SymbolPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSaveAndLoadSymbolsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kernel.symbols")
	body := []byte("159 boot\n200 outer\n")

	if err := SaveSymbols(path, body); err != nil {
		t.Fatalf("save symbols: %v", err)
	}
	symbols, err := LoadSymbols(path)
	if err != nil {
		t.Fatalf("load symbols: %v", err)
	}
	if symbols["boot"] != 159 || symbols["outer"] != 200 {
		t.Errorf("unexpected symbols: %v", symbols)
	}
}

func TestLoadSymbolsSkipsBlankLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kernel.symbols")
	body := []byte("159 boot\n\n   \n200 outer\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	symbols, err := LoadSymbols(path)
	if err != nil {
		t.Fatalf("load symbols: %v", err)
	}
	if len(symbols) != 2 {
		t.Errorf("expected 2 symbols, got %d: %v", len(symbols), symbols)
	}
}

func TestLoadSymbolsMalformedLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kernel.symbols")
	if err := os.WriteFile(path, []byte("notanumber\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadSymbols(path); err == nil {
		t.Fatal("expected error for malformed symbol line")
	}
}
