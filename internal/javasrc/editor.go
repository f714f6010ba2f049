package javasrc

import (
	"sort"
	"strings"
)

type insertion struct {
	offset int
	text   string
}

// Editor accumulates text insertions against a parsed file and applies them
// in one pass. Offsets always refer to the original source, so edits never
// invalidate each other.
type Editor struct {
	file       *File
	newline    string
	insertions []insertion
	imports    map[string]bool
	interfaces map[*Class]int
}

// NewEditor creates an editor for the given file
func NewEditor(file *File) *Editor {
	return &Editor{
		file:       file,
		newline:    LineTerminator(file.Source),
		imports:    make(map[string]bool),
		interfaces: make(map[*Class]int),
	}
}

// Changed reports whether any edit has been recorded
func (e *Editor) Changed() bool {
	return len(e.insertions) > 0
}

// insert records text at offset, written with the file's line terminator
func (e *Editor) insert(offset int, text string) {
	if e.newline != "\n" {
		text = strings.ReplaceAll(text, "\n", e.newline)
	}
	e.insertions = append(e.insertions, insertion{offset: offset, text: text})
}

// AddImport adds a single-type import unless the file already imports the
// type, the type lives in the file's own package, or it is in java.lang.
// It reports whether an import was added.
func (e *Editor) AddImport(path string) bool {
	pkg := PackageOf(path)
	if pkg == "" || pkg == e.file.Package || pkg == "java.lang" {
		return false
	}
	if e.file.HasImport(path) || e.imports[path] {
		return false
	}
	// a different type with the same simple name is already imported
	if existing, ok := e.file.ExplicitImport(SimpleName(path)); ok && existing != path {
		return false
	}
	e.imports[path] = true

	statement := "import " + path + ";"
	switch {
	case len(e.file.Imports) > 0:
		last := e.file.Imports[len(e.file.Imports)-1]
		e.insert(last.Span.End, "\n"+statement)
	case e.file.PackageSpan != nil:
		e.insert(e.file.PackageSpan.End, "\n\n"+statement)
	default:
		e.insert(0, statement+"\n\n")
	}
	return true
}

// AppendInterface appends name to the class's implements clause, creating
// the clause when the class has none. Interfaces get an extends clause.
func (e *Editor) AppendInterface(c *Class, name string) {
	pending := e.interfaces[c]
	e.interfaces[c] = pending + 1

	if len(c.Interfaces) > 0 {
		last := c.Interfaces[len(c.Interfaces)-1]
		e.insert(last.Span.End, ", "+name)
		return
	}
	if pending > 0 {
		e.insert(c.HeaderEnd, ", "+name)
		return
	}

	keyword := "implements"
	if c.Kind == KindInterface {
		keyword = "extends"
	}
	e.insert(c.HeaderEnd, " "+keyword+" "+name)
}

// AppendMember inserts member as the last member of the class body. The
// member text is written without indentation; each line is indented with the
// class's member indentation.
func (e *Editor) AppendMember(c *Class, member string) {
	indented := indentBlock(strings.Trim(member, "\n"), c.MemberIndent)
	closing := c.Body.End - 1

	if c.ClosingOwnLine {
		lineStart := closing - len(c.ClosingIndent)
		e.insert(lineStart, "\n"+indented+"\n")
		return
	}
	outerIndent := strings.TrimSuffix(c.MemberIndent, "    ")
	e.insert(closing, "\n"+indented+"\n"+outerIndent)
}

// Apply returns the edited source. The original file is left untouched.
func (e *Editor) Apply() []byte {
	if len(e.insertions) == 0 {
		return append([]byte(nil), e.file.Source...)
	}

	ordered := append([]insertion(nil), e.insertions...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].offset < ordered[j].offset
	})

	var b strings.Builder
	src := e.file.Source
	prev := 0
	for _, ins := range ordered {
		b.Write(src[prev:ins.offset])
		b.WriteString(ins.text)
		prev = ins.offset
	}
	b.Write(src[prev:])
	return []byte(b.String())
}

func indentBlock(block, indent string) string {
	lines := strings.Split(block, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ""
			continue
		}
		lines[i] = indent + line
	}
	return strings.Join(lines, "\n")
}
