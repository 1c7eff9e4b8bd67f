// Package ast is a small typed view over the JavaScript syntax tree.
//
// Each variant carries only the fields its syntactic kind guarantees. Nodes
// are built once from a tree-sitter tree by Build and never touch the
// tree-sitter tree afterwards, so they outlive it.
package ast

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/qxtags/internal/lang"
)

// Kind identifies a node variant.
type Kind int

const (
	KindExpr Kind = iota
	KindIdentifier
	KindString
	KindNumber
	KindObject
	KindArray
	KindFunction
	KindCall
)

// Node is implemented by every variant.
type Node interface {
	Kind() Kind
	// Line is the 1-based source line the node starts on.
	Line() int
	// Text regenerates the node's source text.
	Text() string
}

type base struct {
	line int
	text string
}

func (b base) Line() int    { return b.line }
func (b base) Text() string { return b.text }

// Identifier is a plain or property identifier.
type Identifier struct {
	base
	Name string
}

// String is a string literal; Value has quotes and escapes removed.
type String struct {
	base
	Value string
}

// Number is a numeric literal; Value is its canonical decimal form.
type Number struct {
	base
	Value string
}

// Object is an object literal.
type Object struct {
	base
	Entries []Entry
}

// Entry is a key/value pair of an object literal. Method shorthand
// (`foo() {}`) is represented with a Function value.
type Entry struct {
	Key   Node
	Value Node
	Line  int
}

// Name returns the member name a key denotes: identifiers verbatim,
// string and numeric literals by value, anything else by its source text.
func (e Entry) Name() string {
	switch k := e.Key.(type) {
	case *Identifier:
		return k.Name
	case *String:
		return k.Value
	case *Number:
		return k.Value
	}
	return e.Key.Text()
}

// Array is an array literal.
type Array struct {
	base
	Elements []Node
}

// Function is any function-valued expression.
type Function struct {
	base
	Params []Node
}

// Signature returns the parameter list as "(a, b)".
func (f *Function) Signature() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = lang.CollapseWhitespace(p.Text())
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Call is a call expression.
type Call struct {
	base
	Callee Node
	Args   []Node
}

// Expr is any expression without a dedicated variant.
type Expr struct {
	base
	Type string
}

func (*Identifier) Kind() Kind { return KindIdentifier }
func (*String) Kind() Kind     { return KindString }
func (*Number) Kind() Kind     { return KindNumber }
func (*Object) Kind() Kind     { return KindObject }
func (*Array) Kind() Kind      { return KindArray }
func (*Function) Kind() Kind   { return KindFunction }
func (*Call) Kind() Kind       { return KindCall }
func (*Expr) Kind() Kind       { return KindExpr }

// Build converts a tree-sitter node and its descendants into a Node.
func Build(n *sitter.Node, source []byte) Node {
	b := base{
		line: int(n.StartPoint().Row) + 1,
		text: lang.NodeText(n, source),
	}

	switch n.Type() {
	case "identifier", "property_identifier", "shorthand_property_identifier",
		"private_property_identifier":
		return &Identifier{base: b, Name: b.text}
	case "string":
		return &String{base: b, Value: unquote(b.text)}
	case "number":
		return &Number{base: b, Value: numberValue(b.text)}
	case "object":
		return &Object{base: b, Entries: buildEntries(n, source)}
	case "array":
		var elems []Node
		for _, c := range namedChildren(n) {
			elems = append(elems, Build(c, source))
		}
		return &Array{base: b, Elements: elems}
	case "function", "function_expression", "arrow_function", "generator_function",
		"method_definition":
		return &Function{base: b, Params: buildParams(n, source)}
	case "call_expression":
		call := &Call{base: b}
		if fn := n.ChildByFieldName("function"); fn != nil {
			call.Callee = Build(fn, source)
		}
		if args := n.ChildByFieldName("arguments"); args != nil {
			for _, c := range namedChildren(args) {
				call.Args = append(call.Args, Build(c, source))
			}
		}
		return call
	}
	return &Expr{base: b, Type: n.Type()}
}

func buildEntries(obj *sitter.Node, source []byte) []Entry {
	var entries []Entry
	for _, c := range namedChildren(obj) {
		line := int(c.StartPoint().Row) + 1
		switch c.Type() {
		case "pair":
			key, value := c.ChildByFieldName("key"), c.ChildByFieldName("value")
			if key == nil || value == nil {
				continue
			}
			entries = append(entries, Entry{Key: Build(key, source), Value: Build(value, source), Line: line})
		case "method_definition":
			name := c.ChildByFieldName("name")
			if name == nil {
				continue
			}
			entries = append(entries, Entry{Key: Build(name, source), Value: Build(c, source), Line: line})
		case "shorthand_property_identifier":
			id := Build(c, source)
			entries = append(entries, Entry{Key: id, Value: id, Line: line})
		}
	}
	return entries
}

func buildParams(fn *sitter.Node, source []byte) []Node {
	if p := fn.ChildByFieldName("parameter"); p != nil {
		return []Node{Build(p, source)}
	}
	params := fn.ChildByFieldName("parameters")
	if params == nil {
		return nil
	}
	var out []Node
	for _, c := range namedChildren(params) {
		out = append(out, Build(c, source))
	}
	return out
}

// namedChildren returns the named children of n, skipping comments.
func namedChildren(n *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == "comment" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// unquote strips the quotes from a string literal and decodes its escapes.
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	inner := s[1 : len(s)-1]
	if !strings.ContainsRune(inner, '\\') {
		return inner
	}

	var b strings.Builder
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		if c != '\\' || i+1 == len(inner) {
			b.WriteByte(c)
			continue
		}
		i++
		switch c = inner[i]; c {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			if i+1 < len(inner) && isDigit(inner[i+1]) {
				b.WriteByte(c)
			} else {
				b.WriteByte(0)
			}
		case '\n':
			// Line continuation.
		case '\r':
			if i+1 < len(inner) && inner[i+1] == '\n' {
				i++
			}
		case 'x':
			if r, n := hexRune(inner[i+1:], 2); n > 0 {
				b.WriteRune(r)
				i += n
			} else {
				b.WriteByte(c)
			}
		case 'u':
			r, n := unicodeEscape(inner[i+1:])
			if n > 0 {
				b.WriteRune(r)
				i += n
			} else {
				b.WriteByte(c)
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// hexRune decodes exactly width hex digits from the start of s.
func hexRune(s string, width int) (rune, int) {
	if len(s) < width {
		return 0, 0
	}
	v, err := strconv.ParseUint(s[:width], 16, 32)
	if err != nil {
		return 0, 0
	}
	return rune(v), width
}

// unicodeEscape decodes the part of a \u escape after the u: four hex digits
// or a braced code point.
func unicodeEscape(s string) (rune, int) {
	if !strings.HasPrefix(s, "{") {
		return hexRune(s, 4)
	}
	end := strings.IndexByte(s, '}')
	if end < 2 {
		return 0, 0
	}
	v, err := strconv.ParseUint(s[1:end], 16, 32)
	if err != nil || v > unicode.MaxRune {
		return 0, 0
	}
	return rune(v), end + 1
}

// numberValue renders a numeric literal the way JavaScript names it as a
// property key.
func numberValue(s string) string {
	if i, err := strconv.ParseInt(s, 0, 64); err == nil {
		if i > -maxSafeInteger && i < maxSafeInteger {
			return strconv.FormatInt(i, 10)
		}
		return formatNumber(float64(i))
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, "_", ""), 64)
	if err != nil {
		return s
	}
	return formatNumber(f)
}

const maxSafeInteger = 1 << 53

// formatNumber follows Number.prototype.toString: plain decimals in
// [1e-6, 1e21) and exponent form with an explicit sign outside it.
func formatNumber(f float64) string {
	abs := math.Abs(f)
	if abs == 0 || (abs >= 1e-6 && abs < 1e21) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	mant, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	digits := strings.TrimLeft(exp[1:], "0")
	return mant + "e" + exp[:1] + digits
}
