package semantic

import (
	"strings"
	"unicode"
)

// stopWords excludes language keywords and generic terms too common to
// carry concept signal, per spec.md §4.4's "closed stop-word list".
var stopWords = map[string]bool{
	"get": true, "set": true, "new": true, "make": true, "init": true,
	"data": true, "value": true, "item": true, "obj": true, "object": true,
	"func": true, "function": true, "method": true, "class": true,
	"self": true, "this": true, "the": true, "and": true, "for": true,
	"var": true, "let": true, "const": true, "type": true, "struct": true,
	"interface": true, "return": true, "err": true, "error": true,
	"ctx": true, "context": true, "req": true, "res": true, "resp": true,
	"tmp": true, "temp": true, "idx": true, "index": true, "str": true,
	"num": true, "list": true, "arr": true, "array": true, "map": true,
	"i": true, "j": true, "k": true, "n": true, "a": true, "b": true,
}

// tokenizeIdentifier splits an identifier on underscores and camelCase
// boundaries, lowercases every piece, and drops stop words and anything
// shorter than two characters.
func tokenizeIdentifier(name string) []string {
	var pieces []string
	var cur strings.Builder

	flush := func() {
		if cur.Len() > 0 {
			pieces = append(pieces, cur.String())
			cur.Reset()
		}
	}

	runes := []rune(name)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == '.':
			flush()
		case unicode.IsUpper(r):
			// New word starts at an uppercase rune unless it continues a
			// run of uppercase letters (an acronym like "HTTP").
			if i > 0 && !unicode.IsUpper(runes[i-1]) {
				flush()
			} else if i > 0 && i+1 < len(runes) && unicode.IsUpper(runes[i-1]) && unicode.IsLower(runes[i+1]) {
				flush()
			}
			cur.WriteRune(unicode.ToLower(r))
		default:
			cur.WriteRune(r)
		}
	}
	flush()

	out := make([]string, 0, len(pieces))
	for _, p := range pieces {
		if len(p) < 2 || stopWords[p] {
			continue
		}
		out = append(out, p)
	}
	return out
}

func tokenizeAll(names []string) []string {
	var tokens []string
	for _, n := range names {
		tokens = append(tokens, tokenizeIdentifier(n)...)
	}
	return tokens
}
