package javasrc

import (
	"bytes"
	"sort"
	"strings"
)

// Span is a half-open byte range [Start, End) into the file source
type Span struct {
	Start int
	End   int
}

// DeclKind identifies the flavour of a type declaration
type DeclKind int

const (
	KindClass DeclKind = iota
	KindInterface
	KindEnum
	KindRecord
	KindAnnotation
)

// String returns the Java keyword for the declaration kind
func (k DeclKind) String() string {
	switch k {
	case KindInterface:
		return "interface"
	case KindEnum:
		return "enum"
	case KindRecord:
		return "record"
	case KindAnnotation:
		return "@interface"
	default:
		return "class"
	}
}

// TypeRef is a reference to a type as written in the source
type TypeRef struct {
	Name string // type name without type arguments, possibly qualified
	Raw  string // source text including type arguments
	Span Span
}

// SimpleName returns the last segment of the referenced name
func (r TypeRef) SimpleName() string {
	return SimpleName(r.Name)
}

// IsQualified reports whether the reference is written with a package prefix
func (r TypeRef) IsQualified() bool {
	return strings.Contains(r.Name, ".")
}

// Param is a formal method parameter
type Param struct {
	Type    string
	Name    string
	Varargs bool
}

// Method is a method declared in a class or interface body
type Method struct {
	Name        string
	ReturnType  string
	Params      []Param
	Modifiers   []string
	Annotations []string
	HasBody     bool
	Line        int
	Span        Span
}

// HasModifier reports whether the method carries the given keyword modifier
func (m Method) HasModifier(modifier string) bool {
	for _, mod := range m.Modifiers {
		if mod == modifier {
			return true
		}
	}
	return false
}

// IsAbstractContract reports whether an interface method must be implemented
// by a concrete class: no body, not static, not default.
func (m Method) IsAbstractContract() bool {
	return !m.HasBody && !m.HasModifier("static") && !m.HasModifier("default") && !m.HasModifier("private")
}

// Signature returns the erased signature used for override matching,
// e.g. "getLoginSuc(JavaBean)".
func (m Method) Signature() string {
	types := make([]string, len(m.Params))
	for i, p := range m.Params {
		t := EraseType(p.Type)
		if p.Varargs {
			t += "[]"
		}
		types[i] = t
	}
	return m.Name + "(" + strings.Join(types, ",") + ")"
}

// Class is a class, interface, enum or record declaration
type Class struct {
	Kind       DeclKind
	Name       string
	Outer      *Class
	Modifiers  []string
	Super      *TypeRef
	Interfaces []TypeRef
	// HeaderEnd is the offset right after the last header element before the
	// interfaces clause would appear (name, type parameters, or superclass).
	HeaderEnd    int
	Body         Span
	Methods      []Method
	Nested       []*Class
	MemberIndent string
	// ClosingIndent is the whitespace preceding the closing brace when it
	// sits on its own line, empty otherwise.
	ClosingIndent  string
	ClosingOwnLine bool
	StartLine      int
	EndLine        int
	HeaderError    bool
}

// DottedName returns the name including enclosing classes, e.g. "Outer.Inner"
func (c *Class) DottedName() string {
	if c.Outer == nil {
		return c.Name
	}
	return c.Outer.DottedName() + "." + c.Name
}

// HasSignature reports whether the class declares a method with the erased signature
func (c *Class) HasSignature(signature string) bool {
	for _, m := range c.Methods {
		if m.Signature() == signature {
			return true
		}
	}
	return false
}

// Import is a single import declaration
type Import struct {
	Path     string
	Static   bool
	Wildcard bool
	Span     Span
}

// File is a parsed Java compilation unit
type File struct {
	Path        string
	Source      []byte
	Package     string
	PackageSpan *Span
	Imports     []Import
	Classes     []*Class
	HasErrors   bool
	// Verbatim holds the spans of string, character and text-block literals
	// and of comments, ordered by offset
	Verbatim    []Span
}

// InVerbatim reports whether offset lies strictly inside a literal or comment
func (f *File) InVerbatim(offset int) bool {
	i := sort.Search(len(f.Verbatim), func(i int) bool { return f.Verbatim[i].End > offset })
	return i < len(f.Verbatim) && f.Verbatim[i].Start < offset
}

// AllClasses returns every declaration in the file, outer classes first
func (f *File) AllClasses() []*Class {
	var result []*Class
	queue := append([]*Class(nil), f.Classes...)
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		result = append(result, c)
		queue = append(queue, c.Nested...)
	}
	return result
}

// FindClass returns the declaration with the given simple or dotted name
func (f *File) FindClass(name string) *Class {
	for _, c := range f.AllClasses() {
		if c.Name == name || c.DottedName() == name {
			return c
		}
	}
	return nil
}

// ClassAtLine returns the innermost declaration whose line range contains line
func (f *File) ClassAtLine(line int) *Class {
	var best *Class
	for _, c := range f.AllClasses() {
		if line < c.StartLine || line > c.EndLine {
			continue
		}
		if best == nil || c.EndLine-c.StartLine < best.EndLine-best.StartLine {
			best = c
		}
	}
	return best
}

// PrimaryClass returns the top-level class named after the file, or the first one
func (f *File) PrimaryClass() *Class {
	if len(f.Classes) == 0 {
		return nil
	}
	base := strings.TrimSuffix(baseName(f.Path), ".java")
	for _, c := range f.Classes {
		if c.Name == base {
			return c
		}
	}
	return f.Classes[0]
}

// QualifiedName returns the package-qualified name of a declaration in this file
func (f *File) QualifiedName(c *Class) string {
	return Qualify(f.Package, c.DottedName())
}

// ExplicitImport returns the single-type import whose last segment is simple
func (f *File) ExplicitImport(simple string) (string, bool) {
	for _, imp := range f.Imports {
		if imp.Static || imp.Wildcard {
			continue
		}
		if SimpleName(imp.Path) == simple {
			return imp.Path, true
		}
	}
	return "", false
}

// WildcardImports returns the package prefixes of on-demand imports
func (f *File) WildcardImports() []string {
	var result []string
	for _, imp := range f.Imports {
		if imp.Wildcard && !imp.Static {
			result = append(result, imp.Path)
		}
	}
	return result
}

// HasImport reports whether the file already imports path, directly or on demand
func (f *File) HasImport(path string) bool {
	pkg := PackageOf(path)
	for _, imp := range f.Imports {
		if imp.Static {
			continue
		}
		if imp.Path == path || (imp.Wildcard && imp.Path == pkg) {
			return true
		}
	}
	return false
}

// SimpleName returns the last dotted segment of name
func SimpleName(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

// PackageOf returns everything before the last dotted segment of name
func PackageOf(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[:i]
	}
	return ""
}

// Qualify joins a package and a type name
func Qualify(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}

// EraseType strips type arguments, package qualifiers and whitespace from a
// type as written, keeping array dimensions.
func EraseType(t string) string {
	var b strings.Builder
	depth := 0
	for _, r := range t {
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
	erased := b.String()

	dims := ""
	for strings.HasSuffix(erased, "[]") {
		dims += "[]"
		erased = strings.TrimSuffix(erased, "[]")
	}
	if strings.HasSuffix(erased, "...") {
		dims += "[]"
		erased = strings.TrimSuffix(erased, "...")
	}
	return SimpleName(erased) + dims
}

func baseName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}

// LineTerminator returns "\r\n" when most lines of src end that way, and
// "\n" otherwise
func LineTerminator(src []byte) string {
	crlf := bytes.Count(src, []byte("\r\n"))
	if crlf > 0 && crlf*2 > bytes.Count(src, []byte("\n")) {
		return "\r\n"
	}
	return "\n"
}
