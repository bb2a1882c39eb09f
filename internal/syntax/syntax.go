// Package syntax implements the Syntax Extractor: for each discovered file
// it tries a structural (Tree-sitter-equivalent) parser first, falling back
// to a regex-based extractor on failure, and produces a language-agnostic
// codelens.FileSyntax.
package syntax

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/codelens/codelens/pkg/codelens"
)

// SourceFile is one file handed in by the discovery walker: content is
// already read and UTF-8-cleaned (invalid bytes replaced), per spec.md §6.
type SourceFile struct {
	Path     string // absolute
	RelPath  string // relative to root, forward-slash separated
	Language codelens.Language
	Content  []byte
	MTime    int64
}

// Diagnostics summarizes the extraction pass for the caller's diagnostics
// report (spec.md §7 "Surfacing policy").
type Diagnostics struct {
	FilesAttempted int
	FilesParsed    int
	FilesDropped   int
	RegexFallbacks int
	FallbackRateWarning bool // >20% fell back while a structural parser was available
}

// Extractor parses files into FileSyntax, bounded by a worker pool.
type Extractor struct {
	workers int
	ts      *TreeSitterPool // nil if tree-sitter could not be initialized
	cache   *contentCache
	log     *zap.SugaredLogger
}

// New creates an Extractor. workers <= 0 means min(runtime.NumCPU(), 8).
// If Tree-sitter initialization fails, ts is left nil and all
// Python/TypeScript files fall back to the regex extractor.
func New(workers int, log *zap.SugaredLogger) *Extractor {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	ts, err := NewTreeSitterPool()
	if err != nil {
		log.Debugw("tree-sitter unavailable, regex fallback only for python/typescript", "error", err)
		ts = nil
	}
	return &Extractor{
		workers: boundedWorkers(workers),
		ts:      ts,
		cache:   newContentCache(),
		log:     log,
	}
}

// Close releases pooled Tree-sitter parsers.
func (e *Extractor) Close() {
	if e.ts != nil {
		e.ts.Close()
	}
}

func boundedWorkers(requested int) int {
	if requested > 0 {
		return requested
	}
	n := defaultNumCPU()
	if n > 8 {
		n = 8
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Extract parses every file in parallel, bounded by the worker pool, and
// returns the resulting FileSyntax map keyed by RelPath. Unreadable files
// are dropped silently (already excluded by the caller, since content is
// pre-read); files whose content is empty produce a zero-valued FileSyntax.
func (e *Extractor) Extract(ctx context.Context, files []SourceFile) (map[string]*codelens.FileSyntax, Diagnostics) {
	results := make(map[string]*codelens.FileSyntax, len(files))
	var mu sync.Mutex
	var fallbacks int64
	var parsed int64
	var dropped int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for _, f := range files {
		f := f
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			fs, ok := e.extractOne(f)
			if !ok {
				atomic.AddInt64(&dropped, 1)
				return nil
			}
			if fs.RegexFallback {
				atomic.AddInt64(&fallbacks, 1)
			}
			atomic.AddInt64(&parsed, 1)
			mu.Lock()
			results[f.RelPath] = fs
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // per-file errors are handled inside extractOne; this group never returns an error

	diag := Diagnostics{
		FilesAttempted: len(files),
		FilesParsed:    int(parsed),
		FilesDropped:   int(dropped),
		RegexFallbacks: int(fallbacks),
	}
	if e.ts != nil && parsed > 0 && float64(fallbacks)/float64(parsed) > 0.2 {
		diag.FallbackRateWarning = true
		e.log.Warnw("high regex-fallback rate", "fallback_pct", float64(fallbacks)/float64(parsed)*100)
	}
	return results, diag
}

// extractOne parses a single file, trying the structural parser first and
// falling back to regex on any failure.
func (e *Extractor) extractOne(f SourceFile) (*codelens.FileSyntax, bool) {
	if len(f.Content) == 0 {
		return &codelens.FileSyntax{Path: f.RelPath, Language: f.Language, MTime: f.MTime}, true
	}

	key := e.cache.key(f.Content)
	if cached, ok := e.cache.get(key); ok {
		return cached, true
	}

	var fs *codelens.FileSyntax
	var err error
	switch f.Language {
	case codelens.LangGo:
		fs, err = parseGo(f)
	case codelens.LangPython:
		if e.ts != nil {
			fs, err = parsePython(e.ts, f)
		} else {
			err = errNoStructuralParser
		}
	case codelens.LangTypeScript:
		if e.ts != nil {
			fs, err = parseTypeScript(e.ts, f)
		} else {
			err = errNoStructuralParser
		}
	default:
		err = errUnsupportedLanguage
	}

	if err != nil {
		e.log.Debugw("structural parse failed, falling back to regex", "path", f.RelPath, "error", err)
		fs = parseRegexFallback(f)
	}

	finalize(fs)
	e.cache.put(key, fs)
	return fs, true
}

// finalize computes the derived StubRatio/ImplGini fields once a FileSyntax's
// Functions list is complete.
func finalize(fs *codelens.FileSyntax) {
	if len(fs.Functions) == 0 {
		return
	}
	sum := 0.0
	sizes := make([]float64, len(fs.Functions))
	for i, fn := range fs.Functions {
		sum += codelens.StubScore(fn)
		sizes[i] = float64(fn.BodyTokens)
	}
	fs.StubRatio = sum / float64(len(fs.Functions))
	fs.ImplGini = gini(sizes)
}

// gini computes the Gini coefficient of a slice of non-negative values.
func gini(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	sorted := append([]float64(nil), xs...)
	insertionSort(sorted)
	var sumDiffs, sum float64
	for i, x := range sorted {
		sum += x
		sumDiffs += float64(2*(i+1)-n-1) * x
	}
	if sum == 0 {
		return 0
	}
	return sumDiffs / (float64(n) * sum)
}

func insertionSort(xs []float64) {
	for i := 1; i < len(xs); i++ {
		v := xs[i]
		j := i - 1
		for j >= 0 && xs[j] > v {
			xs[j+1] = xs[j]
			j--
		}
		xs[j+1] = v
	}
}
