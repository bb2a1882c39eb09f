package syntax

import (
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/codelens/codelens/pkg/codelens"
)

// parsePython walks a Python Tree-sitter AST to build a FileSyntax, grounded
// on the teacher's pyWalkFunctions (internal/analyzer/c1_code_quality/python.go):
// class_definition bodies recurse with a className prefix and
// decorated_definition unwraps to its inner function/class. Cyclomatic
// complexity is not computed for Python: CyclomaticComplexity is left 0.
func parsePython(pool *TreeSitterPool, f SourceFile) (*codelens.FileSyntax, error) {
	tree := pool.parsePython(f.Content)
	if tree == nil {
		return nil, errNoStructuralParser
	}
	defer tree.Close()

	root := tree.RootNode()
	fs := &codelens.FileSyntax{
		Path:     f.RelPath,
		Language: codelens.LangPython,
		MTime:    f.MTime,
		Lines:    countLines(f.Content),
		Tokens:   countTokens(f.Content),
	}

	pyWalk(root, f.Content, "", fs)
	pyCollectImports(root, f.Content, fs)

	if root.Kind() == "module" {
		for i := uint(0); i < root.ChildCount(); i++ {
			child := root.Child(i)
			if child != nil && isPyMainGuard(child, f.Content) {
				fs.HasMainGuard = true
			}
		}
	}

	return fs, nil
}

func pyWalk(node *ts.Node, content []byte, className string, fs *codelens.FileSyntax) {
	if node == nil {
		return
	}
	kind := node.Kind()

	switch kind {
	case "class_definition":
		nameNode := node.ChildByFieldName("name")
		clsName := nodeText(content, nameNode)
		bases := pyClassBases(node, content)
		methods, fields := pyClassMembers(node, content, clsName)
		fs.Classes = append(fs.Classes, codelens.ClassDef{
			Name:    clsName,
			Bases:   bases,
			Methods: methods,
			Fields:  fields,
		})
		if body := node.ChildByFieldName("body"); body != nil {
			for i := uint(0); i < body.ChildCount(); i++ {
				pyWalk(body.Child(i), content, clsName, fs)
			}
		}
		return
	case "decorated_definition":
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child == nil {
				continue
			}
			if child.Kind() == "function_definition" || child.Kind() == "class_definition" {
				pyWalk(child, content, className, fs)
			}
		}
		return
	case "function_definition":
		fs.Functions = append(fs.Functions, pyFunctionDef(node, content, className))
		if body := node.ChildByFieldName("body"); body != nil {
			for i := uint(0); i < body.ChildCount(); i++ {
				child := body.Child(i)
				if child == nil {
					continue
				}
				if k := child.Kind(); k == "function_definition" || k == "class_definition" || k == "decorated_definition" {
					pyWalk(child, content, className, fs)
				}
			}
		}
		return
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		pyWalk(node.Child(i), content, className, fs)
	}
}

func pyFunctionDef(node *ts.Node, content []byte, className string) codelens.FunctionDef {
	nameNode := node.ChildByFieldName("name")
	name := nodeText(content, nameNode)
	if className != "" {
		name = className + "." + name
	}

	paramsNode := node.ChildByFieldName("parameters")
	var params []string
	if paramsNode != nil {
		for i := uint(0); i < paramsNode.ChildCount(); i++ {
			child := paramsNode.Child(i)
			if child == nil {
				continue
			}
			switch child.Kind() {
			case "identifier", "typed_parameter", "default_parameter", "typed_default_parameter":
				params = append(params, nodeText(content, child))
			}
		}
	}

	var decorators []string
	parent := node.Parent()
	if parent != nil && parent.Kind() == "decorated_definition" {
		for i := uint(0); i < parent.ChildCount(); i++ {
			child := parent.Child(i)
			if child != nil && child.Kind() == "decorator" {
				decorators = append(decorators, nodeText(content, child))
			}
		}
	}

	start := node.StartPosition()
	end := node.EndPosition()

	bodyTokens := 0
	sigTokens := 0
	if body := node.ChildByFieldName("body"); body != nil {
		bodyTokens = countTokens([]byte(nodeText(content, body)))
		sigEnd := body.StartByte()
		sigStart := node.StartByte()
		if sigStart <= sigEnd && int(sigEnd) <= len(content) {
			sigTokens = countTokens(content[sigStart:sigEnd])
		}
	}

	return codelens.FunctionDef{
		Name:            name,
		Params:          params,
		BodyTokens:      bodyTokens,
		SignatureTokens: sigTokens,
		NestingDepth:    pyNestingDepth(node.ChildByFieldName("body")),
		StartLine:       int(start.Row) + 1,
		EndLine:         int(end.Row) + 1,
		CallTargets:     pyCallTargets(node, content),
		HasCallTargets:  true,
		Decorators:      decorators,
	}
}

func pyCallTargets(node *ts.Node, content []byte) []string {
	var targets []string
	var walk func(n *ts.Node)
	walk = func(n *ts.Node) {
		if n == nil {
			return
		}
		if n.Kind() == "call" {
			if fn := n.ChildByFieldName("function"); fn != nil {
				name := nodeText(content, fn)
				if fn.Kind() == "attribute" {
					if attr := fn.ChildByFieldName("attribute"); attr != nil {
						name = nodeText(content, attr)
					}
				}
				if name != "" {
					targets = append(targets, name)
				}
			}
		}
		if n.Kind() == "function_definition" && n != node {
			return
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	if body := node.ChildByFieldName("body"); body != nil {
		for i := uint(0); i < body.ChildCount(); i++ {
			walk(body.Child(i))
		}
	}
	return targets
}

func pyNestingDepth(body *ts.Node) int {
	if body == nil {
		return 0
	}
	var walk func(n *ts.Node, depth int) int
	walk = func(n *ts.Node, depth int) int {
		max := depth
		for i := uint(0); i < n.ChildCount(); i++ {
			child := n.Child(i)
			if child == nil {
				continue
			}
			switch child.Kind() {
			case "if_statement", "for_statement", "while_statement", "try_statement", "with_statement":
				if d := walk(child, depth+1); d > max {
					max = d
				}
			default:
				if d := walk(child, depth); d > max {
					max = d
				}
			}
		}
		return max
	}
	return walk(body, 0)
}

func pyClassBases(node *ts.Node, content []byte) []string {
	var bases []string
	argList := node.ChildByFieldName("superclasses")
	if argList == nil {
		return bases
	}
	for i := uint(0); i < argList.ChildCount(); i++ {
		child := argList.Child(i)
		if child != nil && child.Kind() == "identifier" {
			bases = append(bases, nodeText(content, child))
		}
	}
	return bases
}

func pyClassMembers(node *ts.Node, content []byte, className string) (methods, fields []string) {
	body := node.ChildByFieldName("body")
	if body == nil {
		return nil, nil
	}
	for i := uint(0); i < body.ChildCount(); i++ {
		child := body.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "function_definition":
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				methods = append(methods, nodeText(content, nameNode))
			}
		case "decorated_definition":
			for j := uint(0); j < child.ChildCount(); j++ {
				inner := child.Child(j)
				if inner != nil && inner.Kind() == "function_definition" {
					if nameNode := inner.ChildByFieldName("name"); nameNode != nil {
						methods = append(methods, nodeText(content, nameNode))
					}
				}
			}
		case "expression_statement":
			if assign := firstChildOfKind(child, "assignment"); assign != nil {
				if left := assign.ChildByFieldName("left"); left != nil && left.Kind() == "identifier" {
					fields = append(fields, nodeText(content, left))
				}
			}
		}
	}
	return methods, fields
}

func firstChildOfKind(n *ts.Node, kind string) *ts.Node {
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child != nil && child.Kind() == kind {
			return child
		}
	}
	return nil
}

func pyCollectImports(root *ts.Node, content []byte, fs *codelens.FileSyntax) {
	var walk func(n *ts.Node)
	walk = func(n *ts.Node) {
		if n == nil {
			return
		}
		switch n.Kind() {
		case "import_statement":
			for i := uint(0); i < n.ChildCount(); i++ {
				child := n.Child(i)
				if child != nil && (child.Kind() == "dotted_name" || child.Kind() == "aliased_import") {
					src := nodeText(content, child)
					fs.Imports = append(fs.Imports, codelens.ImportDecl{Source: src})
				}
			}
		case "import_from_statement":
			if mod := n.ChildByFieldName("module_name"); mod != nil {
				fs.Imports = append(fs.Imports, codelens.ImportDecl{Source: nodeText(content, mod)})
			}
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
}

func isPyMainGuard(node *ts.Node, content []byte) bool {
	if node.Kind() != "if_statement" {
		return false
	}
	cond := node.ChildByFieldName("condition")
	if cond == nil {
		return false
	}
	text := nodeText(content, cond)
	return text == `__name__ == "__main__"` || text == "__name__ == '__main__'"
}
