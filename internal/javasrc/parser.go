package javasrc

import (
	"context"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"github.com/toyz/mvpgen/internal/errors"
)

// Parser turns Java source text into File models using tree-sitter
type Parser struct {
	parser *sitter.Parser
}

// NewParser creates a new Java parser
func NewParser() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(java.GetLanguage())
	return &Parser{parser: p}
}

// Close releases resources held by the parser
func (p *Parser) Close() {
	p.parser.Close()
}

// Parse parses a compilation unit. Syntax errors inside method bodies do not
// fail the parse; they are reported through File.HasErrors and per-class
// HeaderError flags.
func (p *Parser) Parse(ctx context.Context, path string, src []byte) (*File, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, errors.WrapParseError(filepath.Base(path), err).
			WithLocation(errors.SourceLocation{File: path})
	}
	defer tree.Close()

	root := tree.RootNode()
	file := &File{
		Path:      path,
		Source:    src,
		HasErrors: root.HasError(),
	}

	w := &walker{src: src, file: file}
	w.verbatim(root)
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "package_declaration":
			w.packageDecl(child)
		case "import_declaration":
			w.importDecl(child)
		default:
			if c := w.typeDecl(child, nil); c != nil {
				file.Classes = append(file.Classes, c)
			}
		}
	}

	return file, nil
}

type walker struct {
	src  []byte
	file *File
}

func (w *walker) text(n *sitter.Node) string {
	return n.Content(w.src)
}

func (w *walker) span(n *sitter.Node) Span {
	return Span{Start: int(n.StartByte()), End: int(n.EndByte())}
}

var verbatimKinds = map[string]bool{
	"string_literal":    true,
	"text_block":        true,
	"character_literal": true,
	"line_comment":      true,
	"block_comment":     true,
}

// verbatim collects the spans whose text must never be reflowed
func (w *walker) verbatim(n *sitter.Node) {
	if verbatimKinds[n.Type()] {
		w.file.Verbatim = append(w.file.Verbatim, w.span(n))
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		w.verbatim(n.Child(i))
	}
}

func (w *walker) packageDecl(n *sitter.Node) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "scoped_identifier" || child.Type() == "identifier" {
			w.file.Package = w.text(child)
		}
	}
	sp := w.span(n)
	w.file.PackageSpan = &sp
}

func (w *walker) importDecl(n *sitter.Node) {
	imp := Import{Span: w.span(n)}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "static":
			imp.Static = true
		case "asterisk":
			imp.Wildcard = true
		case "scoped_identifier", "identifier":
			imp.Path = w.text(child)
		}
	}
	if imp.Path != "" {
		w.file.Imports = append(w.file.Imports, imp)
	}
}

var declKinds = map[string]DeclKind{
	"class_declaration":           KindClass,
	"interface_declaration":       KindInterface,
	"enum_declaration":            KindEnum,
	"record_declaration":          KindRecord,
	"annotation_type_declaration": KindAnnotation,
}

func (w *walker) typeDecl(n *sitter.Node, outer *Class) *Class {
	kind, ok := declKinds[n.Type()]
	if !ok {
		return nil
	}

	nameNode := n.ChildByFieldName("name")
	bodyNode := n.ChildByFieldName("body")
	if nameNode == nil || bodyNode == nil {
		return nil
	}

	c := &Class{
		Kind:      kind,
		Name:      w.text(nameNode),
		Outer:     outer,
		HeaderEnd: int(nameNode.EndByte()),
		Body:      w.span(bodyNode),
		StartLine: int(n.StartPoint().Row) + 1,
		EndLine:   int(n.EndPoint().Row) + 1,
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.StartByte() == bodyNode.StartByte() && child.Type() == bodyNode.Type() {
			break
		}
		if child.Type() == "ERROR" || child.IsMissing() || child.HasError() {
			c.HeaderError = true
		}
		switch child.Type() {
		case "modifiers":
			c.Modifiers, _ = w.modifiers(child)
		case "type_parameters", "formal_parameters":
			c.HeaderEnd = int(child.EndByte())
		case "superclass":
			if t := firstNamed(child); t != nil {
				ref := w.typeRef(t)
				c.Super = &ref
			}
			c.HeaderEnd = int(child.EndByte())
		case "super_interfaces", "extends_interfaces":
			c.Interfaces = w.typeList(child)
		}
	}

	w.layout(c, n, bodyNode)
	w.body(c, bodyNode)
	return c
}

// layout records the indentation used for members and the closing brace
func (w *walker) layout(c *Class, decl, body *sitter.Node) {
	declIndent := lineIndent(w.src, int(decl.StartByte()))
	closing := int(body.EndByte()) - 1

	lineStart := closing
	for lineStart > 0 && w.src[lineStart-1] != '\n' {
		lineStart--
	}
	prefix := string(w.src[lineStart:closing])
	if strings.TrimSpace(prefix) == "" && lineStart > int(body.StartByte()) {
		c.ClosingOwnLine = true
		c.ClosingIndent = prefix
	}

	c.MemberIndent = declIndent + "    "
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		if member.Type() == "line_comment" || member.Type() == "block_comment" {
			continue
		}
		if int(member.StartPoint().Row) == int(body.StartPoint().Row) {
			break
		}
		c.MemberIndent = lineIndent(w.src, int(member.StartByte()))
		break
	}
}

func (w *walker) body(c *Class, body *sitter.Node) {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		switch member.Type() {
		case "method_declaration":
			c.Methods = append(c.Methods, w.method(member))
		case "enum_body_declarations":
			w.body(c, member)
		default:
			if nested := w.typeDecl(member, c); nested != nil {
				c.Nested = append(c.Nested, nested)
			}
		}
	}
}

func (w *walker) method(n *sitter.Node) Method {
	m := Method{
		Line: int(n.StartPoint().Row) + 1,
		Span: w.span(n),
	}
	if name := n.ChildByFieldName("name"); name != nil {
		m.Name = w.text(name)
	}
	if ret := n.ChildByFieldName("type"); ret != nil {
		m.ReturnType = w.text(ret)
		if dims := n.ChildByFieldName("dimensions"); dims != nil {
			m.ReturnType += w.text(dims)
		}
	}
	m.HasBody = n.ChildByFieldName("body") != nil

	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "modifiers" {
			m.Modifiers, m.Annotations = w.modifiers(child)
		}
	}

	if params := n.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			child := params.NamedChild(i)
			switch child.Type() {
			case "formal_parameter":
				p := Param{}
				if t := child.ChildByFieldName("type"); t != nil {
					p.Type = w.text(t)
				}
				if name := child.ChildByFieldName("name"); name != nil {
					p.Name = w.text(name)
				}
				if dims := child.ChildByFieldName("dimensions"); dims != nil {
					p.Type += w.text(dims)
				}
				m.Params = append(m.Params, p)
			case "spread_parameter":
				m.Params = append(m.Params, w.spreadParam(child))
			}
		}
	}

	return m
}

func (w *walker) spreadParam(n *sitter.Node) Param {
	p := Param{Varargs: true}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "modifiers":
		case "variable_declarator":
			if name := child.ChildByFieldName("name"); name != nil {
				p.Name = w.text(name)
			} else {
				p.Name = w.text(child)
			}
		default:
			if p.Type == "" {
				p.Type = w.text(child)
			}
		}
	}
	return p
}

func (w *walker) modifiers(n *sitter.Node) (keywords []string, annotations []string) {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "marker_annotation", "annotation":
			if name := child.ChildByFieldName("name"); name != nil {
				annotations = append(annotations, w.text(name))
			} else {
				annotations = append(annotations, strings.TrimPrefix(w.text(child), "@"))
			}
		default:
			if !child.IsNamed() {
				keywords = append(keywords, w.text(child))
			}
		}
	}
	return keywords, annotations
}

func (w *walker) typeList(n *sitter.Node) []TypeRef {
	var refs []TypeRef
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "type_list" {
			for j := 0; j < int(child.NamedChildCount()); j++ {
				refs = append(refs, w.typeRef(child.NamedChild(j)))
			}
		}
	}
	return refs
}

func (w *walker) typeRef(n *sitter.Node) TypeRef {
	ref := TypeRef{Raw: w.text(n), Span: w.span(n)}
	name := n
	if n.Type() == "generic_type" {
		if inner := firstNamed(n); inner != nil {
			name = inner
		}
	}
	ref.Name = stripTypeArguments(w.text(name))
	return ref
}

func firstNamed(n *sitter.Node) *sitter.Node {
	if n.NamedChildCount() == 0 {
		return nil
	}
	return n.NamedChild(0)
}

// stripTypeArguments removes <...> groups and whitespace, so that
// "Outer<A>.Inner" becomes "Outer.Inner".
func stripTypeArguments(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '<':
			depth++
		case r == '>':
			depth--
		case depth > 0:
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func lineIndent(src []byte, offset int) string {
	start := offset
	for start > 0 && src[start-1] != '\n' {
		start--
	}
	end := start
	for end < len(src) && (src[end] == ' ' || src[end] == '\t') {
		end++
	}
	return string(src[start:end])
}
