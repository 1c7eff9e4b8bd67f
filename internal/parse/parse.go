// Package parse locates class-definition calls in source files using tree-sitter.
package parse

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/qxtags/internal/ast"
	"github.com/phobologic/qxtags/internal/lang"
)

// ErrSyntax is returned for source text the grammar cannot parse cleanly.
var ErrSyntax = errors.New("syntax error")

// Definition is a top-level class-definition call such as
// qx.Class.define("app.Foo", { ... }).
type Definition struct {
	// Function is the regenerated callee, e.g. "qx.Class.define".
	Function string
	Name     *ast.String
	Body     *ast.Object
	Line     int
}

// Parser parses source text and runs the definition query over it.
// A Parser is not safe for concurrent use.
type Parser struct {
	parser *sitter.Parser
	query  *sitter.Query
}

// New creates a Parser for the named language.
func New(langName string) (*Parser, error) {
	l, ok := lang.Languages[langName]
	if !ok {
		return nil, fmt.Errorf("unsupported language %q", langName)
	}
	q, err := l.GetDefinitionQuery()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", langName, err)
	}
	return &Parser{parser: l.NewParser(), query: q}, nil
}

// Definitions parses source and returns its top-level class definitions in
// source order. Malformed source yields an error wrapping ErrSyntax.
func (p *Parser) Definitions(source []byte) ([]Definition, error) {
	if len(source) == 0 {
		return nil, nil
	}

	tree, err := p.parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		line := 0
		if n := firstError(root); n != nil {
			line = int(n.StartPoint().Row) + 1
		}
		return nil, fmt.Errorf("%w at line %d", ErrSyntax, line)
	}

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(p.query, root)

	var defs []Definition

	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}
		match = qc.FilterPredicates(match, source)

		var callNode, fnNode, nameNode, bodyNode *sitter.Node
		for _, c := range match.Captures {
			switch p.query.CaptureNameForId(c.Index) {
			case "define.call":
				callNode = c.Node
			case "define.function":
				fnNode = c.Node
			case "define.name":
				nameNode = c.Node
			case "define.body":
				bodyNode = c.Node
			}
		}

		if callNode == nil || fnNode == nil || nameNode == nil || bodyNode == nil {
			continue
		}

		name, ok := ast.Build(nameNode, source).(*ast.String)
		if !ok {
			continue
		}
		body, ok := ast.Build(bodyNode, source).(*ast.Object)
		if !ok {
			continue
		}

		defs = append(defs, Definition{
			Function: lang.NodeText(fnNode, source),
			Name:     name,
			Body:     body,
			Line:     int(callNode.StartPoint().Row) + 1,
		})
	}

	return defs, nil
}

// firstError returns the first ERROR or missing node in document order.
func firstError(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if !c.HasError() && !c.IsMissing() {
			continue
		}
		if e := firstError(c); e != nil {
			return e
		}
	}
	return nil
}
