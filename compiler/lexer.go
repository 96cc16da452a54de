package compiler

import "strings"

// Token is one lexed unit: either a plain word/number, or a compile-time
// file-include directive (load" path").
type Token struct {
	Pos    Position
	Text   string
	IsLoad bool
	Path   string
}

// Lex splits source into tokens, stripping "( ... )" comments and
// recognizing the load" path" compile-time include form. This is a
// deliberately small lexer: the surface syntax's only structural
// features below the word level are parenthesized comments and one
// quoted-string form, so a hand-rolled scanner covers it without pulling
// in a parser-generator dependency.
func Lex(source string) []Token {
	var toks []Token
	line, col := 1, 1
	i := 0
	n := len(source)

	advance := func(ch byte) {
		if ch == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}

	for i < n {
		ch := source[i]
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' {
			advance(ch)
			i++
			continue
		}
		if ch == '(' {
			for i < n && source[i] != ')' {
				advance(source[i])
				i++
			}
			if i < n {
				advance(source[i])
				i++
			}
			continue
		}

		start := i
		startLine, startCol := line, col
		for i < n && !isSpace(source[i]) {
			advance(source[i])
			i++
		}
		word := source[start:i]
		pos := Position{Line: startLine, Column: startCol}

		if word == "load\"" {
			// Scan the quoted path, which may contain spaces, up to the
			// closing quote.
			end := strings.IndexByte(source[i:], '"')
			path := ""
			if end >= 0 {
				path = strings.TrimSpace(source[i : i+end])
				for j := 0; j <= end && i < n; j++ {
					advance(source[i])
					i++
				}
			}
			toks = append(toks, Token{Pos: pos, Text: word, IsLoad: true, Path: path})
			continue
		}

		toks = append(toks, Token{Pos: pos, Text: word})
	}
	return toks
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
