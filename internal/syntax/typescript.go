package syntax

import (
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/codelens/codelens/pkg/codelens"
)

// parseTypeScript walks a TypeScript Tree-sitter AST to build a FileSyntax.
// Grounded on the same walk-and-accumulate shape as parsePython, adapted to
// TypeScript's class_declaration/method_definition/function_declaration
// node kinds and its import_statement/call_expression shapes.
func parseTypeScript(pool *TreeSitterPool, f SourceFile) (*codelens.FileSyntax, error) {
	tree := pool.parseTypeScript(f.Content)
	if tree == nil {
		return nil, errNoStructuralParser
	}
	defer tree.Close()

	root := tree.RootNode()
	fs := &codelens.FileSyntax{
		Path:     f.RelPath,
		Language: codelens.LangTypeScript,
		MTime:    f.MTime,
		Lines:    countLines(f.Content),
		Tokens:   countTokens(f.Content),
	}

	tsWalk(root, f.Content, "", fs)
	tsCollectImports(root, f.Content, fs)

	return fs, nil
}

func tsWalk(node *ts.Node, content []byte, className string, fs *codelens.FileSyntax) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "class_declaration", "abstract_class_declaration":
		nameNode := node.ChildByFieldName("name")
		clsName := nodeText(content, nameNode)
		methods, fields := tsClassMembers(node, content)
		fs.Classes = append(fs.Classes, codelens.ClassDef{
			Name:       clsName,
			Bases:      tsClassBases(node, content),
			Methods:    methods,
			Fields:     fields,
			IsAbstract: node.Kind() == "abstract_class_declaration",
		})
		if body := node.ChildByFieldName("body"); body != nil {
			for i := uint(0); i < body.ChildCount(); i++ {
				tsWalk(body.Child(i), content, clsName, fs)
			}
		}
		return
	case "interface_declaration":
		nameNode := node.ChildByFieldName("name")
		fs.Classes = append(fs.Classes, codelens.ClassDef{
			Name:       nodeText(content, nameNode),
			IsAbstract: true,
		})
		return
	case "function_declaration", "method_definition":
		fs.Functions = append(fs.Functions, tsFunctionDef(node, content, className))
		return
	case "variable_declarator":
		if value := node.ChildByFieldName("value"); value != nil {
			if value.Kind() == "arrow_function" || value.Kind() == "function_expression" {
				name := nodeText(content, node.ChildByFieldName("name"))
				fs.Functions = append(fs.Functions, tsArrowFunctionDef(value, content, name))
			}
		}
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		tsWalk(node.Child(i), content, className, fs)
	}
}

func tsFunctionDef(node *ts.Node, content []byte, className string) codelens.FunctionDef {
	name := nodeText(content, node.ChildByFieldName("name"))
	if className != "" && node.Kind() == "method_definition" {
		name = className + "." + name
	}
	return buildTSFunctionDef(node, content, name)
}

func tsArrowFunctionDef(node *ts.Node, content []byte, name string) codelens.FunctionDef {
	return buildTSFunctionDef(node, content, name)
}

func buildTSFunctionDef(node *ts.Node, content []byte, name string) codelens.FunctionDef {
	paramsNode := node.ChildByFieldName("parameters")
	var params []string
	if paramsNode != nil {
		for i := uint(0); i < paramsNode.ChildCount(); i++ {
			child := paramsNode.Child(i)
			if child == nil {
				continue
			}
			switch child.Kind() {
			case "required_parameter", "optional_parameter", "identifier":
				params = append(params, nodeText(content, child))
			}
		}
	}

	start := node.StartPosition()
	end := node.EndPosition()

	bodyTokens, sigTokens := 0, 0
	if body := node.ChildByFieldName("body"); body != nil {
		bodyTokens = countTokens([]byte(nodeText(content, body)))
		sigStart, sigEnd := node.StartByte(), body.StartByte()
		if sigStart <= sigEnd && int(sigEnd) <= len(content) {
			sigTokens = countTokens(content[sigStart:sigEnd])
		}
	}

	return codelens.FunctionDef{
		Name:            name,
		Params:          params,
		BodyTokens:      bodyTokens,
		SignatureTokens: sigTokens,
		NestingDepth:    tsNestingDepth(node.ChildByFieldName("body")),
		StartLine:       int(start.Row) + 1,
		EndLine:         int(end.Row) + 1,
		CallTargets:     tsCallTargets(node, content),
		HasCallTargets:  true,
	}
}

func tsCallTargets(node *ts.Node, content []byte) []string {
	var targets []string
	var walk func(n *ts.Node)
	walk = func(n *ts.Node) {
		if n == nil {
			return
		}
		if n.Kind() == "call_expression" {
			if fn := n.ChildByFieldName("function"); fn != nil {
				name := nodeText(content, fn)
				if fn.Kind() == "member_expression" {
					if prop := fn.ChildByFieldName("property"); prop != nil {
						name = nodeText(content, prop)
					}
				}
				if name != "" {
					targets = append(targets, name)
				}
			}
		}
		switch n.Kind() {
		case "function_declaration", "method_definition", "arrow_function", "function_expression":
			if n != node {
				return
			}
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	if body := node.ChildByFieldName("body"); body != nil {
		walk(body)
	}
	return targets
}

func tsNestingDepth(body *ts.Node) int {
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
			case "if_statement", "for_statement", "for_in_statement", "while_statement", "switch_statement", "try_statement":
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

func tsClassBases(node *ts.Node, content []byte) []string {
	var bases []string
	heritage := node.ChildByFieldName("heritage")
	if heritage == nil {
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child != nil && (child.Kind() == "class_heritage") {
				heritage = child
				break
			}
		}
	}
	if heritage == nil {
		return bases
	}
	var walk func(n *ts.Node)
	walk = func(n *ts.Node) {
		if n.Kind() == "identifier" || n.Kind() == "type_identifier" {
			bases = append(bases, nodeText(content, n))
			return
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	walk(heritage)
	return bases
}

func tsClassMembers(node *ts.Node, content []byte) (methods, fields []string) {
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
		case "method_definition":
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				methods = append(methods, nodeText(content, nameNode))
			}
		case "public_field_definition", "property_declaration":
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				fields = append(fields, nodeText(content, nameNode))
			}
		}
	}
	return methods, fields
}

func tsCollectImports(root *ts.Node, content []byte, fs *codelens.FileSyntax) {
	var walk func(n *ts.Node)
	walk = func(n *ts.Node) {
		if n == nil {
			return
		}
		if n.Kind() == "import_statement" {
			if src := n.ChildByFieldName("source"); src != nil {
				text := nodeText(content, src)
				fs.Imports = append(fs.Imports, codelens.ImportDecl{Source: trimQuotes(text)})
			}
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
}

func trimQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') || (first == '`' && last == '`') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
