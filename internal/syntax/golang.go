package syntax

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"

	"github.com/fzipp/gocyclo"

	"github.com/codelens/codelens/pkg/codelens"
)

// parseGo extracts a FileSyntax from Go source using the standard library's
// go/parser (the idiomatic native AST for Go, the one language in this
// pipeline with no third-party structural parser to reach for) plus
// github.com/fzipp/gocyclo for per-function cyclomatic complexity, grounded
// on the teacher's analyzeFunctions (internal/analyzer/c1_codehealth.go).
func parseGo(f SourceFile) (*codelens.FileSyntax, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, f.RelPath, f.Content, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("go parse: %w", err)
	}

	var stats gocyclo.Stats
	stats = gocyclo.AnalyzeASTFile(file, fset, stats)
	complexityByLine := make(map[int]int, len(stats))
	for _, s := range stats {
		complexityByLine[s.Pos.Line] = s.Complexity
	}

	fs := &codelens.FileSyntax{
		Path:     f.RelPath,
		Language: codelens.LangGo,
		MTime:    f.MTime,
		Lines:    countLines(f.Content),
		Tokens:   countTokens(f.Content),
	}

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			fs.Functions = append(fs.Functions, goFunctionDef(d, fset, f.Content, complexityByLine))
			if d.Name.Name == "main" && d.Recv == nil && file.Name.Name == "main" {
				fs.HasMainGuard = true
			}
		case *ast.GenDecl:
			if d.Tok == token.TYPE {
				for _, spec := range d.Specs {
					ts, ok := spec.(*ast.TypeSpec)
					if !ok {
						continue
					}
					fs.Classes = append(fs.Classes, goTypeDef(ts))
				}
			}
		}
	}

	for _, imp := range file.Imports {
		path := strings.Trim(imp.Path.Value, `"`)
		names := []string{}
		if imp.Name != nil {
			names = append(names, imp.Name.Name)
		}
		fs.Imports = append(fs.Imports, codelens.ImportDecl{
			Source: path,
			Names:  names,
			// ResolvedPath is filled in later by the Structural Analyzer,
			// which has the whole-codebase view needed to match import
			// paths to in-tree files.
		})
	}

	return fs, nil
}

func goFunctionDef(d *ast.FuncDecl, fset *token.FileSet, content []byte, complexityByLine map[int]int) codelens.FunctionDef {
	name := d.Name.Name
	if d.Recv != nil && len(d.Recv.List) > 0 {
		name = fmt.Sprintf("%s.%s", goReceiverTypeName(d.Recv.List[0].Type), name)
	}

	start := fset.Position(d.Pos())
	end := fset.Position(d.End())

	var bodyTokens int
	if d.Body != nil {
		bodyStart := fset.Position(d.Body.Pos()).Offset
		bodyEnd := fset.Position(d.Body.End()).Offset
		if bodyStart >= 0 && bodyEnd <= len(content) && bodyStart <= bodyEnd {
			bodyTokens = countTokens(content[bodyStart:bodyEnd])
		}
	}

	sigStart := fset.Position(d.Pos()).Offset
	sigEnd := sigStart
	if d.Body != nil {
		sigEnd = fset.Position(d.Body.Pos()).Offset
	} else {
		sigEnd = fset.Position(d.End()).Offset
	}
	var sigTokens int
	if sigStart >= 0 && sigEnd <= len(content) && sigStart <= sigEnd {
		sigTokens = countTokens(content[sigStart:sigEnd])
	}

	var params []string
	if d.Type.Params != nil {
		for _, p := range d.Type.Params.List {
			for _, n := range p.Names {
				params = append(params, n.Name)
			}
		}
	}

	complexity := complexityByLine[start.Line]
	if complexity == 0 {
		complexity = 1
	}

	var callTargets []string
	if d.Body != nil {
		ast.Inspect(d.Body, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			if name := callExprName(call.Fun); name != "" {
				callTargets = append(callTargets, name)
			}
			return true
		})
	}

	return codelens.FunctionDef{
		Name:                  name,
		Params:                params,
		BodyTokens:            bodyTokens,
		SignatureTokens:       sigTokens,
		NestingDepth:          maxNestingDepth(d.Body),
		StartLine:             start.Line,
		EndLine:               end.Line,
		CallTargets:           callTargets,
		HasCallTargets:        true,
		CyclomaticComplexity:  complexity,
	}
}

func callExprName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.SelectorExpr:
		return e.Sel.Name
	default:
		return ""
	}
}

// maxNestingDepth counts the deepest nesting of if/for/switch/select/range
// constructs within a function body.
func maxNestingDepth(body *ast.BlockStmt) int {
	if body == nil {
		return 0
	}
	var walk func(n ast.Node, depth int) int
	walk = func(n ast.Node, depth int) int {
		max := depth
		ast.Inspect(n, func(child ast.Node) bool {
			if child == n {
				return true
			}
			switch child.(type) {
			case *ast.IfStmt, *ast.ForStmt, *ast.RangeStmt, *ast.SwitchStmt, *ast.TypeSwitchStmt, *ast.SelectStmt:
				d := walk(child, depth+1)
				if d > max {
					max = d
				}
				return false
			}
			return true
		})
		return max
	}
	return walk(body, 0)
}

func goTypeDef(ts *ast.TypeSpec) codelens.ClassDef {
	cd := codelens.ClassDef{Name: ts.Name.Name}
	switch t := ts.Type.(type) {
	case *ast.InterfaceType:
		cd.IsAbstract = true
		for _, m := range t.Methods.List {
			for _, n := range m.Names {
				cd.Methods = append(cd.Methods, n.Name)
			}
		}
	case *ast.StructType:
		for _, field := range t.Fields.List {
			for _, n := range field.Names {
				cd.Fields = append(cd.Fields, n.Name)
			}
			if len(field.Names) == 0 {
				// embedded field
				if ident, ok := field.Type.(*ast.Ident); ok {
					cd.Bases = append(cd.Bases, ident.Name)
				}
			}
		}
	}
	return cd
}

func goReceiverTypeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return goReceiverTypeName(t.X)
	case *ast.Ident:
		return t.Name
	default:
		return ""
	}
}

func countLines(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	n := 1
	for _, b := range content {
		if b == '\n' {
			n++
		}
	}
	return n
}
