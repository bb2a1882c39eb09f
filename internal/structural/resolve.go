// Package structural implements the Structural Analyzer: it turns per-file
// import declarations into a resolved DependencyGraph and computes the
// graph-theoretic signals (PageRank, blast radius, cycles, communities,
// depth, Fiedler value) that downstream fusion consumes. Grounded on the
// gonum wiring in panbanda-omen's pkg/analyzer/graph/graph.go, adapted from
// a tree-sitter-node graph to the FileSyntax import-list graph this pipeline
// already has in hand after the Syntax Extractor phase.
package structural

import (
	"path"
	"strings"

	"github.com/codelens/codelens/pkg/codelens"
)

// stdlibSkipSet holds module prefixes that are never resolved to an in-tree
// file: the Go standard library and the handful of ecosystem packages
// common enough that treating every project's use of them as a phantom
// import would be noise rather than signal.
var stdlibSkipSet = map[string]bool{
	"fmt": true, "os": true, "io": true, "strings": true, "strconv": true,
	"errors": true, "context": true, "time": true, "sync": true, "bytes": true,
	"net": true, "net/http": true, "encoding/json": true, "path": true,
	"path/filepath": true, "sort": true, "math": true, "regexp": true,
	"reflect": true, "runtime": true, "testing": true, "log": true, "bufio": true,
	"os/exec": true, "unicode": true, "container/list": true,
	// Python
	"os.path": true, "sys": true, "json": true, "re": true, "typing": true,
	"collections": true, "itertools": true, "functools": true, "unittest": true,
	"logging": true, "argparse": true, "pathlib": true, "dataclasses": true,
	"abc": true, "enum": true, "datetime": true, "asyncio": true,
	// Node/TS
	"react": true, "react-dom": true, "lodash": true, "express": true,
	"axios": true, "path-browserify": true,
}

// resolveImports maps each file's import declarations to in-tree file
// paths, building a DependencyGraph and stamping PhantomImportCount on
// files whose import could not be resolved. A dotted import path resolves
// if its final segment matches the stem of a known file path (mirroring
// the module-name-to-file heuristic every language in this pipeline needs,
// since only Go imports carry an unambiguous package path).
func resolveImports(files map[string]*codelens.FileSyntax) (*codelens.DependencyGraph, map[string]int) {
	g := &codelens.DependencyGraph{}
	stemIndex := buildStemIndex(files)
	phantomCounts := make(map[string]int, len(files))

	for filePath := range files {
		g.AddNode(filePath)
	}

	for filePath, fs := range files {
		for i := range fs.Imports {
			imp := &fs.Imports[i]
			if imp.Source == "" || stdlibSkipSet[imp.Source] {
				continue
			}
			target, ok := resolveOne(imp.Source, stemIndex)
			if (!ok || target == filePath) && isSkipped(imp.Source) {
				continue
			}
			if !ok || target == filePath {
				phantomCounts[filePath]++
				continue
			}
			imp.ResolvedPath = target
			g.AddEdge(filePath, target)
		}
	}

	return g, phantomCounts
}

func isSkipped(source string) bool {
	if source == "" {
		return true
	}
	if stdlibSkipSet[source] {
		return true
	}
	return !strings.HasPrefix(source, ".") && isBareThirdParty(source)
}

// isBareThirdParty treats an unrooted import with no matching in-tree stem
// as third-party rather than phantom only when it is on github.com/ or
// golang.org/, or is a scoped npm package ("@scope/..."); any other
// unresolved import counts as phantom.
func isBareThirdParty(source string) bool {
	return strings.Contains(source, "github.com/") || strings.Contains(source, "golang.org/") ||
		strings.HasPrefix(source, "@") // scoped npm packages
}

func buildStemIndex(files map[string]*codelens.FileSyntax) map[string][]string {
	idx := make(map[string][]string)
	for filePath := range files {
		stem := fileStem(filePath)
		idx[stem] = append(idx[stem], filePath)
		// Also index by directory name for package-style imports (Go, Python
		// packages whose __init__.py/package name is the directory).
		dir := path.Base(path.Dir(filePath))
		if dir != "." && dir != "" {
			idx[dir] = append(idx[dir], filePath)
		}
	}
	return idx
}

func fileStem(filePath string) string {
	base := path.Base(filePath)
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}
	return base
}

// resolveOne resolves a single import source string to a file path,
// preferring the last dotted/slashed segment as the lookup key.
func resolveOne(source string, stemIndex map[string][]string) (string, bool) {
	key := lastSegment(source)
	candidates, ok := stemIndex[key]
	if !ok || len(candidates) == 0 {
		return "", false
	}
	// Ambiguous resolution (multiple files share a stem) picks the
	// shortest path deterministically rather than guessing; a vague
	// match is still strictly better than silently dropping the edge.
	best := candidates[0]
	for _, c := range candidates[1:] {
		if len(c) < len(best) {
			best = c
		}
	}
	return best, true
}

func lastSegment(source string) string {
	s := strings.TrimSuffix(source, "/")
	if idx := strings.LastIndexAny(s, "./"); idx >= 0 && idx < len(s)-1 {
		return s[idx+1:]
	}
	return s
}
