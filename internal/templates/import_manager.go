package templates

import (
	"sort"
	"strings"
)

// ImportManager collects the single-type imports a generated Java file needs
type ImportManager struct {
	pkg     string
	imports map[string]bool
}

// NewImportManager creates an import manager for a file in package pkg
func NewImportManager(pkg string) *ImportManager {
	return &ImportManager{
		pkg:     pkg,
		imports: make(map[string]bool),
	}
}

// AddImport adds qualified type names. Simple names, java.lang types and
// types of the file's own package need no import and are ignored.
func (im *ImportManager) AddImport(names ...string) {
	for _, name := range names {
		name = strings.TrimSpace(name)
		i := strings.LastIndex(name, ".")
		if i <= 0 {
			continue
		}
		pkg := name[:i]
		if pkg == im.pkg || pkg == "java.lang" {
			continue
		}
		im.imports[name] = true
	}
}

// Imports returns the collected imports in lexical order
func (im *ImportManager) Imports() []string {
	result := make([]string, 0, len(im.imports))
	for name := range im.imports {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}
