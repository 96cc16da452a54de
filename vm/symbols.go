package vm

import (
	"fmt"
	"sort"
)

// SymbolResolver maps compiled word names to their heap addresses, for
// trace output in the tracer and the debugger's trace views. It is
// never consulted by instruction semantics.
type SymbolResolver struct {
	symbols         map[string]uint16
	addressToSymbol map[uint16]string
	sortedAddresses []uint16
}

// NewSymbolResolver builds a resolver from a name->address table, such as
// the sidecar symbol file written alongside a compiled ROM image.
func NewSymbolResolver(symbols map[string]uint16) *SymbolResolver {
	if symbols == nil {
		symbols = make(map[string]uint16)
	}

	addressToSymbol := make(map[uint16]string, len(symbols))
	for name, addr := range symbols {
		addressToSymbol[addr] = name
	}

	sortedAddresses := make([]uint16, 0, len(addressToSymbol))
	for addr := range addressToSymbol {
		sortedAddresses = append(sortedAddresses, addr)
	}
	sort.Slice(sortedAddresses, func(i, j int) bool { return sortedAddresses[i] < sortedAddresses[j] })

	return &SymbolResolver{
		symbols:         symbols,
		addressToSymbol: addressToSymbol,
		sortedAddresses: sortedAddresses,
	}
}

// LookupAddress returns the exact symbol name at address, or "" if none.
func (sr *SymbolResolver) LookupAddress(address uint16) string {
	return sr.addressToSymbol[address]
}

// LookupSymbol returns the address bound to name.
func (sr *SymbolResolver) LookupSymbol(name string) (uint16, bool) {
	addr, ok := sr.symbols[name]
	return addr, ok
}

// ResolveAddress finds the nearest symbol at or before address and the
// offset from it. found is false only when no symbol precedes address.
func (sr *SymbolResolver) ResolveAddress(address uint16) (name string, offset uint16, found bool) {
	if name, ok := sr.addressToSymbol[address]; ok {
		return name, 0, true
	}
	if len(sr.sortedAddresses) == 0 {
		return "", 0, false
	}

	idx := sort.Search(len(sr.sortedAddresses), func(i int) bool {
		return sr.sortedAddresses[i] > address
	})
	if idx == 0 {
		return "", 0, false
	}

	nearest := sr.sortedAddresses[idx-1]
	return sr.addressToSymbol[nearest], address - nearest, true
}

// FormatAddress renders "name+offset (0xADDR)", or "0xADDR" with no symbol.
func (sr *SymbolResolver) FormatAddress(address uint16) string {
	name, offset, found := sr.ResolveAddress(address)
	if !found {
		return fmt.Sprintf("0x%04x", address)
	}
	if offset == 0 {
		return fmt.Sprintf("%s (0x%04x)", name, address)
	}
	return fmt.Sprintf("%s+%d (0x%04x)", name, offset, address)
}

// FormatAddressCompact renders "name+offset" without the raw address.
func (sr *SymbolResolver) FormatAddressCompact(address uint16) string {
	name, offset, found := sr.ResolveAddress(address)
	if !found {
		return fmt.Sprintf("0x%04x", address)
	}
	if offset == 0 {
		return name
	}
	return fmt.Sprintf("%s+%d", name, offset)
}

// HasSymbols reports whether any symbols were loaded.
func (sr *SymbolResolver) HasSymbols() bool { return len(sr.symbols) > 0 }
