package host

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/toyz/mvpgen/internal/config"
	"github.com/toyz/mvpgen/internal/errors"
	"github.com/toyz/mvpgen/internal/javasrc"
)

// rootMarkers identify a project root, checked from the file's directory upwards
var rootMarkers = []string{config.FileName, "settings.gradle", "settings.gradle.kts", ".git"}

// Target selects the class to act on inside a file. Line is 1-based; zero
// means no caret.
type Target struct {
	Line      int
	ClassName string
}

// Context is everything a generation run needs to know about where it was invoked
type Context struct {
	Path        string
	ProjectRoot string
	SourceRoot  string
	File        *javasrc.File
	Class       *javasrc.Class
	Config      *config.Config
}

// Dir returns the directory containing the source file
func (c *Context) Dir() string {
	return filepath.Dir(c.Path)
}

// Enabled reports whether the action applies: a class is selected and
// isController accepts its superclass.
func (c *Context) Enabled(isController func(super javasrc.TypeRef) bool) bool {
	if c == nil || c.Class == nil || c.Class.Super == nil {
		return false
	}
	return isController(*c.Class.Super)
}

// Load parses the file at path, locates the project and source roots, loads
// the project configuration and selects the target class. A file without a
// matching class yields a Context with a nil Class.
func Load(ctx context.Context, path string, target Target) (*Context, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.WrapFileSystemError("resolve", path, err)
	}
	if !strings.HasSuffix(abs, ".java") {
		return nil, errors.ContextError("not a Java source file: " + path).
			WithSuggestion("pass the .java file of an Activity or Fragment")
	}

	src, err := os.ReadFile(abs)
	if err != nil {
		return nil, errors.WrapFileSystemError("read", abs, err)
	}

	parser := javasrc.NewParser()
	defer parser.Close()
	file, err := parser.Parse(ctx, abs, src)
	if err != nil {
		return nil, err
	}

	root := FindProjectRoot(filepath.Dir(abs))
	cfg, err := config.LoadForProject(root)
	if err != nil {
		return nil, err
	}

	class, err := SelectClass(file, target)
	if err != nil {
		return nil, err
	}

	return &Context{
		Path:        abs,
		ProjectRoot: root,
		SourceRoot:  SourceRoot(filepath.Dir(abs), file.Package),
		File:        file,
		Class:       class,
		Config:      cfg,
	}, nil
}

// SelectClass picks the class containing the caret line, else the named
// class, else the file's primary class.
func SelectClass(file *javasrc.File, target Target) (*javasrc.Class, error) {
	if target.Line > 0 {
		if c := file.ClassAtLine(target.Line); c != nil {
			return c, nil
		}
	}
	if target.ClassName != "" {
		if c := file.FindClass(target.ClassName); c != nil {
			return c, nil
		}
		var names []string
		for _, c := range file.AllClasses() {
			names = append(names, c.DottedName())
		}
		return nil, errors.ContextError("no class named " + target.ClassName + " in " + file.Path).
			WithContext("classes", names).
			WithSuggestion("declared classes: " + strings.Join(names, ", "))
	}
	return file.PrimaryClass(), nil
}

// FindProjectRoot returns the nearest ancestor of dir holding a root marker,
// or dir itself when none is found.
func FindProjectRoot(dir string) string {
	for current := dir; ; {
		for _, marker := range rootMarkers {
			if _, err := os.Stat(filepath.Join(current, marker)); err == nil {
				return current
			}
		}
		parent := filepath.Dir(current)
		if parent == current {
			return dir
		}
		current = parent
	}
}

// SourceRoot strips the package path from the end of dir. When dir does not
// end with the package path, dir itself is the root.
func SourceRoot(dir, pkg string) string {
	if pkg == "" {
		return dir
	}
	current := dir
	segments := strings.Split(pkg, ".")
	for i := len(segments) - 1; i >= 0; i-- {
		if filepath.Base(current) != segments[i] {
			return dir
		}
		current = filepath.Dir(current)
	}
	return current
}
