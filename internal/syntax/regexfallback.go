package syntax

import (
	"regexp"

	"github.com/codelens/codelens/pkg/codelens"
)

// Regex signatures are deliberately coarse: line-anchored patterns for the
// handful of function/class shapes common across Go, Python, and
// TypeScript. This path exists only for files the structural parser
// rejected (syntax errors, unsupported dialects), so spec.md requires it
// to under-report rather than guess at call graphs: every FunctionDef it
// produces has HasCallTargets=false and CallTargets=nil, the sentinel
// that tells the Structural Analyzer and call-graph patterns to skip the
// file for edge purposes while still counting it for size/stub metrics.
var (
	reGoFunc      = regexp.MustCompile(`(?m)^func\s+(?:\([^)]*\)\s+)?([A-Za-z_][A-Za-z0-9_]*)\s*\(([^)]*)\)`)
	rePyFunc      = regexp.MustCompile(`(?m)^(\s*)def\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(([^)]*)\)`)
	rePyClass     = regexp.MustCompile(`(?m)^class\s+([A-Za-z_][A-Za-z0-9_]*)`)
	reTSFunc      = regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:async\s+)?function\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(([^)]*)\)`)
	reTSClass     = regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:abstract\s+)?class\s+([A-Za-z_][A-Za-z0-9_]*)`)
	reGenericFunc = regexp.MustCompile(`(?m)^\s*(?:public|private|protected|static)?\s*(?:function|def|func)\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(([^)]*)\)`)
)

// parseRegexFallback builds a best-effort FileSyntax without a structural
// parser. It never trusts call targets and never attempts nesting depth or
// cyclomatic complexity -- those require a real AST.
func parseRegexFallback(f SourceFile) *codelens.FileSyntax {
	fs := &codelens.FileSyntax{
		Path:          f.RelPath,
		Language:      f.Language,
		MTime:         f.MTime,
		Lines:         countLines(f.Content),
		Tokens:        countTokens(f.Content),
		RegexFallback: true,
	}

	switch f.Language {
	case codelens.LangGo:
		regexFuncsGo(f.Content, fs)
	case codelens.LangPython:
		regexFuncsPython(f.Content, fs)
		for _, m := range rePyClass.FindAllSubmatch(f.Content, -1) {
			fs.Classes = append(fs.Classes, codelens.ClassDef{Name: string(m[1])})
		}
	case codelens.LangTypeScript:
		regexFuncsMatch(reTSFunc, f.Content, fs)
		for _, m := range reTSClass.FindAllSubmatch(f.Content, -1) {
			fs.Classes = append(fs.Classes, codelens.ClassDef{Name: string(m[1])})
		}
	default:
		regexFuncsMatch(reGenericFunc, f.Content, fs)
	}

	return fs
}

func regexFuncsGo(content []byte, fs *codelens.FileSyntax) {
	locs := reGoFunc.FindAllSubmatchIndex(content, -1)
	for i, loc := range locs {
		name := string(content[loc[2]:loc[3]])
		sigEnd := loc[1]
		bodyEnd := len(content)
		if i+1 < len(locs) {
			bodyEnd = locs[i+1][0]
		}
		fs.Functions = append(fs.Functions, regexFunctionDef(content, name, loc[0], sigEnd, bodyEnd))
	}
}

func regexFuncsPython(content []byte, fs *codelens.FileSyntax) {
	locs := rePyFunc.FindAllSubmatchIndex(content, -1)
	for i, loc := range locs {
		name := string(content[loc[4]:loc[5]])
		sigEnd := loc[1]
		bodyEnd := len(content)
		if i+1 < len(locs) {
			bodyEnd = locs[i+1][0]
		}
		fs.Functions = append(fs.Functions, regexFunctionDef(content, name, loc[0], sigEnd, bodyEnd))
	}
}

func regexFuncsMatch(re *regexp.Regexp, content []byte, fs *codelens.FileSyntax) {
	locs := re.FindAllSubmatchIndex(content, -1)
	for i, loc := range locs {
		name := string(content[loc[2]:loc[3]])
		sigEnd := loc[1]
		bodyEnd := len(content)
		if i+1 < len(locs) {
			bodyEnd = locs[i+1][0]
		}
		fs.Functions = append(fs.Functions, regexFunctionDef(content, name, loc[0], sigEnd, bodyEnd))
	}
}

func regexFunctionDef(content []byte, name string, start, sigEnd, bodyEnd int) codelens.FunctionDef {
	if bodyEnd > len(content) {
		bodyEnd = len(content)
	}
	if sigEnd > bodyEnd {
		sigEnd = bodyEnd
	}
	startLine := 1 + countLines(content[:start])
	endLine := startLine + countLines(content[start:bodyEnd])

	return codelens.FunctionDef{
		Name:            name,
		BodyTokens:      countTokens(content[sigEnd:bodyEnd]),
		SignatureTokens: countTokens(content[start:sigEnd]),
		StartLine:       startLine,
		EndLine:         endLine,
		CallTargets:     nil,
		HasCallTargets:  false,
	}
}
