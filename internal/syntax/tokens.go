package syntax

import "regexp"

// tokenPattern is a deliberately simple tokenizer shared by all language
// extractors: it splits on identifier/number/operator boundaries so that
// body_tokens and signature_tokens are computed the same way regardless of
// which parser (Go AST, Tree-sitter, or regex fallback) produced the byte
// range. This keeps StubScore comparable across languages.
var tokenPattern = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*|[0-9]+(\.[0-9]+)?|[^\sA-Za-z0-9_]`)

// countTokens returns the number of lexical tokens in src.
func countTokens(src []byte) int {
	return len(tokenPattern.FindAll(src, -1))
}
