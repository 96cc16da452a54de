package compiler

import (
	"os"

	"markab/iosafe"
)

// CompileSource lexes and compiles one source file's text in full. name
// is used only for error positions.
func (c *Compiler) CompileSource(name, text string) *Error {
	for _, tok := range Lex(text) {
		tok.Pos.Source = name
		if tok.IsLoad {
			if e := c.compileLoad(tok.Pos, tok.Path); e != nil {
				return e
			}
			continue
		}
		if e := c.CompileToken(tok.Pos, tok.Text); e != nil {
			return e
		}
	}
	return nil
}

// compileLoad implements "( ) load" path"": a compile-time file include,
// subject to the same containment/allow-list policy and one-level
// nesting limit as the VM's runtime IOLOAD.
func (c *Compiler) compileLoad(pos Position, path string) *Error {
	if c.loadDepth >= 1 {
		return newError(pos, ErrNestedLoad, path, "load\" does not nest")
	}
	if c.Policy == nil {
		return newError(pos, ErrFileIO, path, "no file policy installed")
	}
	resolved, err := c.Policy.CheckLoad(path)
	if err != nil {
		return newError(pos, ErrFileIO, path, "%s", err)
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return newError(pos, ErrFileIO, path, "%s", err)
	}

	c.loadDepth++
	defer func() { c.loadDepth-- }()
	return c.CompileSource(path, string(data))
}

// SetPolicy installs the file-access policy used by compile-time load".
func (c *Compiler) SetPolicy(p *iosafe.Policy) { c.Policy = p }
