package index

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/toyz/mvpgen/internal/hierarchy"
	"github.com/toyz/mvpgen/internal/javasrc"
	"github.com/toyz/mvpgen/internal/utils"
)

// Reader supplies file content; a workspace transaction satisfies it so
// staged files are visible to resolution.
type Reader interface {
	ReadFile(path string) ([]byte, error)
}

type diskReader struct{}

func (diskReader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Type is a resolved type: a project declaration, an SDK stub, or a name
// known only through an import.
type Type struct {
	Qualified string
	File      *javasrc.File
	Class     *javasrc.Class
	Stub      *hierarchy.StubEntry
}

// IsProject reports whether the type is declared in the project sources
func (t *Type) IsProject() bool {
	return t.Class != nil
}

var skipDirs = map[string]bool{
	".git":         true,
	".gradle":      true,
	".idea":        true,
	".mvpgen":      true,
	"build":        true,
	"node_modules": true,
}

// Index resolves Java type names over source roots and stubs. Files are
// parsed lazily and cached by content.
type Index struct {
	roots  []string
	stubs  *hierarchy.Stubs
	reader Reader
	parser *javasrc.Parser
	files  *utils.Cache[string, *javasrc.File]
	logger *zap.Logger

	bySimple map[string][]string
}

// New creates an index over the given source roots. A nil reader reads from disk.
func New(roots []string, stubs *hierarchy.Stubs, reader Reader, logger *zap.Logger) *Index {
	if reader == nil {
		reader = diskReader{}
	}
	if stubs == nil {
		stubs = hierarchy.DefaultStubs()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Index{
		roots:  roots,
		stubs:  stubs,
		reader: reader,
		parser: javasrc.NewParser(),
		files:  utils.NewCache[string, *javasrc.File](),
		logger: logger.Named("index"),
	}
}

// Close releases the parser
func (ix *Index) Close() {
	ix.parser.Close()
}

// ParseFile parses path through the reader, reusing the cached tree when the
// content is unchanged.
func (ix *Index) ParseFile(ctx context.Context, path string) (*javasrc.File, error) {
	path = filepath.Clean(path)
	src, err := ix.reader.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if f, ok := ix.files.GetValid(path, func(f *javasrc.File) bool { return bytes.Equal(f.Source, src) }); ok {
		return f, nil
	}
	f, err := ix.parser.Parse(ctx, path, src)
	if err != nil {
		return nil, err
	}
	ix.files.Set(path, f)
	return f, nil
}

// Scope returns a resolver bound to ctx that resolves unqualified names
// relative to file.
func (ix *Index) Scope(ctx context.Context, file *javasrc.File) *Scope {
	return &Scope{ctx: ctx, ix: ix, file: file, origin: make(map[string]*javasrc.File)}
}

// lookupQualified finds a project declaration or stub by fully qualified name.
// Nested names are tried by moving the package boundary leftwards.
func (ix *Index) lookupQualified(ctx context.Context, qualified string) (*Type, bool) {
	segments := strings.Split(qualified, ".")
	for i := len(segments) - 1; i >= 0; i-- {
		pkg := strings.Join(segments[:i], ".")
		dotted := strings.Join(segments[i:], ".")
		for _, root := range ix.roots {
			parts := make([]string, 0, i+2)
			parts = append(parts, root)
			parts = append(parts, segments[:i]...)
			path := filepath.Join(append(parts, segments[i]+".java")...)
			f, err := ix.ParseFile(ctx, path)
			if err != nil || f.Package != pkg {
				continue
			}
			if c := f.FindClass(dotted); c != nil && f.QualifiedName(c) == qualified {
				return &Type{Qualified: qualified, File: f, Class: c}, true
			}
		}
	}
	if stub, ok := ix.stubs.Lookup(qualified); ok {
		return &Type{Qualified: qualified, Stub: stub}, true
	}
	return nil, false
}

// scanSimple returns project files named <simple>.java, walking the roots once
func (ix *Index) scanSimple(simple string) []string {
	if ix.bySimple == nil {
		ix.bySimple = make(map[string][]string)
		for _, root := range ix.roots {
			err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return nil
				}
				if d.IsDir() {
					if path != root && skipDirs[d.Name()] {
						return filepath.SkipDir
					}
					return nil
				}
				if name, ok := strings.CutSuffix(d.Name(), ".java"); ok {
					ix.bySimple[name] = append(ix.bySimple[name], path)
				}
				return nil
			})
			if err != nil {
				ix.logger.Warn("source root scan failed", zap.String("root", root), zap.Error(err))
			}
		}
		ix.logger.Debug("source roots scanned", zap.Int("names", len(ix.bySimple)))
	}
	return ix.bySimple[simple]
}

func (ix *Index) resolve(ctx context.Context, from *javasrc.File, name string) (*Type, bool) {
	if name == "" {
		return nil, false
	}
	if from != nil {
		if c := from.FindClass(name); c != nil {
			return &Type{Qualified: from.QualifiedName(c), File: from, Class: c}, true
		}
	}

	if head, rest, dotted := strings.Cut(name, "."); dotted {
		if t, ok := ix.lookupQualified(ctx, name); ok {
			return t, true
		}
		// Outer.Inner written through an imported or same-package outer class
		outer, ok := ix.resolve(ctx, from, head)
		if !ok {
			return nil, false
		}
		if outer.Class == nil {
			return &Type{Qualified: outer.Qualified + "." + rest}, true
		}
		if c := outer.File.FindClass(outer.Class.DottedName() + "." + rest); c != nil {
			return &Type{Qualified: outer.File.QualifiedName(c), File: outer.File, Class: c}, true
		}
		return nil, false
	}

	if from != nil {
		if path, ok := from.ExplicitImport(name); ok {
			if t, ok := ix.lookupQualified(ctx, path); ok {
				return t, true
			}
			return &Type{Qualified: path}, true
		}
		if t, ok := ix.lookupQualified(ctx, javasrc.Qualify(from.Package, name)); ok {
			return t, true
		}
		for _, pkg := range from.WildcardImports() {
			if t, ok := ix.lookupQualified(ctx, pkg+"."+name); ok {
				return t, true
			}
		}
	}

	for _, path := range ix.scanSimple(name) {
		f, err := ix.ParseFile(ctx, path)
		if err != nil {
			continue
		}
		for _, c := range f.Classes {
			if c.Name == name {
				return &Type{Qualified: f.QualifiedName(c), File: f, Class: c}, true
			}
		}
	}

	if stubs := ix.stubs.LookupSimple(name); len(stubs) > 0 {
		return &Type{Qualified: stubs[0].Name, Stub: stubs[0]}, true
	}
	return nil, false
}

// Scope resolves names for one request. It implements the hierarchy walk
// used for role classification.
type Scope struct {
	ctx  context.Context
	ix   *Index
	file *javasrc.File
	// origin remembers the declaring file of supertype names that could not
	// be resolved, so later lookups use the right imports.
	origin map[string]*javasrc.File
}

// Resolve resolves name relative to the scope's file
func (s *Scope) Resolve(name string) (*Type, bool) {
	from := s.file
	if f, ok := s.origin[name]; ok {
		from = f
	}
	return s.ix.resolve(s.ctx, from, name)
}

// ResolveFrom resolves name relative to another file
func (s *Scope) ResolveFrom(from *javasrc.File, name string) (*Type, bool) {
	return s.ix.resolve(s.ctx, from, name)
}

// QualifiedName returns the fully qualified name for a name written in from,
// falling back to the file's package when it cannot be resolved.
func (s *Scope) QualifiedName(from *javasrc.File, name string) string {
	if t, ok := s.ix.resolve(s.ctx, from, name); ok {
		return t.Qualified
	}
	if strings.Contains(name, ".") || from == nil {
		return name
	}
	return javasrc.Qualify(from.Package, name)
}

// SuperOf returns the direct superclass of ref. Resolved supertypes come back
// fully qualified; unresolved ones keep the name as written.
func (s *Scope) SuperOf(ref javasrc.TypeRef) (javasrc.TypeRef, bool) {
	t, ok := s.Resolve(ref.Name)
	if !ok {
		return javasrc.TypeRef{}, false
	}

	switch {
	case t.Class != nil:
		if t.Class.Super == nil {
			return javasrc.TypeRef{}, false
		}
		super := *t.Class.Super
		if st, ok := s.ix.resolve(s.ctx, t.File, super.Name); ok {
			return javasrc.TypeRef{Name: st.Qualified, Raw: super.Raw, Span: super.Span}, true
		}
		s.origin[super.Name] = t.File
		return super, true
	case t.Stub != nil:
		if t.Stub.Super == "" {
			return javasrc.TypeRef{}, false
		}
		return javasrc.TypeRef{Name: t.Stub.Super, Raw: t.Stub.Super}, true
	default:
		return javasrc.TypeRef{}, false
	}
}

// ProjectAncestors returns the project-declared superclasses of class in
// file, nearest first. The walk stops at the first non-project type.
func (s *Scope) ProjectAncestors(file *javasrc.File, class *javasrc.Class) []*Type {
	var ancestors []*Type
	visited := map[string]bool{file.QualifiedName(class): true}
	for file != nil && class != nil && class.Super != nil {
		t, ok := s.ix.resolve(s.ctx, file, class.Super.Name)
		if !ok || t.Class == nil || visited[t.Qualified] {
			break
		}
		visited[t.Qualified] = true
		ancestors = append(ancestors, t)
		file, class = t.File, t.Class
	}
	return ancestors
}
