package syntax

import (
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"
	tsts "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
	tspy "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// TreeSitterPool wraps one tree-sitter parser per supported non-Go language.
// Parsers are not goroutine-safe, so every call to Parse is serialized
// behind a mutex -- the same tradeoff the teacher's internal/parser
// accepts, favoring simplicity over per-language parser pools since
// parsing is not the pipeline's bottleneck.
type TreeSitterPool struct {
	mu         sync.Mutex
	python     *ts.Parser
	typescript *ts.Parser
}

// NewTreeSitterPool builds parsers for every supported structural
// language. It returns an error only if a grammar fails to load, in
// which case callers fall back to the regex extractor for every file.
func NewTreeSitterPool() (*TreeSitterPool, error) {
	p := &TreeSitterPool{
		python:     ts.NewParser(),
		typescript: ts.NewParser(),
	}
	if err := p.python.SetLanguage(ts.NewLanguage(tspy.Language())); err != nil {
		return nil, err
	}
	if err := p.typescript.SetLanguage(ts.NewLanguage(tsts.LanguageTypescript())); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *TreeSitterPool) parsePython(content []byte) *ts.Tree {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.python.Parse(content, nil)
}

func (p *TreeSitterPool) parseTypeScript(content []byte) *ts.Tree {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.typescript.Parse(content, nil)
}

// Close releases the underlying tree-sitter parser handles.
func (p *TreeSitterPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.python != nil {
		p.python.Close()
	}
	if p.typescript != nil {
		p.typescript.Close()
	}
}

// nodeText slices the original source by a tree-sitter node's byte range.
func nodeText(content []byte, n *ts.Node) string {
	start, end := n.StartByte(), n.EndByte()
	if int(end) > len(content) || start > end {
		return ""
	}
	return string(content[start:end])
}
