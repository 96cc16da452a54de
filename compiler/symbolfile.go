package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// WriteSymbolFile renders the compiled symbol table as sorted
// "address name" lines, one per entry, for the disassembler/debugger's
// sibling .symbols file.
func (c *Compiler) WriteSymbolFile() []byte {
	names := make([]string, 0, len(c.Symbols))
	for name := range c.Symbols {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return c.Symbols[names[i]] < c.Symbols[names[j]] })

	var sb strings.Builder
	for _, name := range names {
		fmt.Fprintf(&sb, "%d %s\n", c.Symbols[name], name)
	}
	return []byte(sb.String())
}
