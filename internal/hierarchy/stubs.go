package hierarchy

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/mvpgen/internal/errors"
)

//go:embed android.stubs
var builtinStubs string

// StubFile is the root of a supertype stub file
type StubFile struct {
	Entries []*StubEntry `parser:"@@*"`
}

// StubEntry declares one external type and its direct supertype, e.g.
//
//	class androidx.appcompat.app.AppCompatActivity extends androidx.fragment.app.FragmentActivity;
type StubEntry struct {
	Pos   lexer.Position
	Kind  string `parser:"@('class' | 'interface')"`
	Name  string `parser:"@QualifiedIdent"`
	Super string `parser:"('extends' @QualifiedIdent)? ';'"`
}

var stubParser = participle.MustBuild[StubFile](
	participle.Lexer(lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Comment", Pattern: `//[^\n]*`},
		{Name: "QualifiedIdent", Pattern: `[a-zA-Z_$][a-zA-Z0-9_$]*(\.[a-zA-Z_$][a-zA-Z0-9_$]*)*`},
		{Name: "Punct", Pattern: `;`},
		{Name: "Whitespace", Pattern: `\s+`},
	})),
	participle.Elide("Comment", "Whitespace"),
)

// ParseStubs parses stub declarations from text; filename is used for error positions
func ParseStubs(filename, text string) ([]*StubEntry, error) {
	file, err := stubParser.ParseString(filename, text)
	if err != nil {
		loc := errors.SourceLocation{File: filename}
		if perr, ok := err.(participle.Error); ok {
			loc.Line = perr.Position().Line
			loc.Column = perr.Position().Column
		}
		return nil, errors.WrapParseError(filepath.Base(filename), err).WithLocation(loc)
	}
	return file.Entries, nil
}

// Stubs maps external type names to their direct supertypes
type Stubs struct {
	byQualified map[string]*StubEntry
	bySimple    map[string][]*StubEntry
}

// NewStubs creates an empty stub set
func NewStubs() *Stubs {
	return &Stubs{
		byQualified: make(map[string]*StubEntry),
		bySimple:    make(map[string][]*StubEntry),
	}
}

// DefaultStubs returns the embedded Android SDK stub set
func DefaultStubs() *Stubs {
	s := NewStubs()
	entries, err := ParseStubs("android.stubs", builtinStubs)
	if err != nil {
		panic(fmt.Sprintf("embedded stubs are invalid: %v", err))
	}
	s.Add(entries...)
	return s
}

// LoadStubFiles returns the default stubs extended with the given stub files.
// Later declarations of the same type replace earlier ones.
func LoadStubFiles(paths ...string) (*Stubs, error) {
	s := DefaultStubs()
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.WrapFileSystemError("read stub file", path, err)
		}
		entries, err := ParseStubs(path, string(data))
		if err != nil {
			return nil, err
		}
		s.Add(entries...)
	}
	return s, nil
}

// Add registers stub entries
func (s *Stubs) Add(entries ...*StubEntry) {
	for _, e := range entries {
		if old, ok := s.byQualified[e.Name]; ok {
			s.removeSimple(old)
		}
		s.byQualified[e.Name] = e
		simple := simpleName(e.Name)
		s.bySimple[simple] = append(s.bySimple[simple], e)
	}
}

func (s *Stubs) removeSimple(e *StubEntry) {
	simple := simpleName(e.Name)
	list := s.bySimple[simple]
	for i, candidate := range list {
		if candidate == e {
			s.bySimple[simple] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// Lookup returns the stub for a fully qualified name
func (s *Stubs) Lookup(qualified string) (*StubEntry, bool) {
	e, ok := s.byQualified[qualified]
	return e, ok
}

// LookupSimple returns every stub whose simple name matches
func (s *Stubs) LookupSimple(simple string) []*StubEntry {
	return s.bySimple[simple]
}

// Len returns the number of registered stubs
func (s *Stubs) Len() int {
	return len(s.byQualified)
}

func simpleName(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[i+1:]
		}
	}
	return name
}
