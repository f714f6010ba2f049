package mvp

import (
	"fmt"
	"strings"

	"github.com/toyz/mvpgen/internal/errors"
	"github.com/toyz/mvpgen/internal/index"
	"github.com/toyz/mvpgen/internal/javasrc"
)

// SyntaxEditor is the editing capability the mutator needs from a syntax tree
type SyntaxEditor interface {
	AddImport(path string) bool
	AppendInterface(c *javasrc.Class, name string)
	AppendMember(c *javasrc.Class, member string)
	Changed() bool
	Apply() []byte
}

// TypeResolver answers name-resolution queries for the mutator
type TypeResolver interface {
	ResolveFrom(from *javasrc.File, name string) (*index.Type, bool)
	QualifiedName(from *javasrc.File, name string) string
	ProjectAncestors(file *javasrc.File, class *javasrc.Class) []*index.Type
}

// MutationReport describes what the mutator did to the source class
type MutationReport struct {
	Skipped        bool
	Reason         string
	AddedInterface string
	AddedImports   []string
	AddedStubs     []string
}

// Changed reports whether any edit was made
func (r MutationReport) Changed() bool {
	return r.AddedInterface != "" || len(r.AddedImports) > 0 || len(r.AddedStubs) > 0
}

var primitives = map[string]bool{
	"boolean": true, "byte": true, "char": true, "short": true,
	"int": true, "long": true, "float": true, "double": true, "void": true,
}

// Mutate makes class implement the View contract and stubs every contract
// method neither the class nor its project ancestors declare. Edits are
// recorded in editor; running it again on the result changes nothing.
func Mutate(file *javasrc.File, class *javasrc.Class, view *Artifact, editor SyntaxEditor, resolver TypeResolver) (MutationReport, error) {
	var report MutationReport

	if view == nil || view.Class == nil {
		return report, errors.New(errors.GenerationErrorCode, "view contract is not available for mutation")
	}
	if class.Kind != javasrc.KindClass {
		return MutationReport{Skipped: true, Reason: fmt.Sprintf("%s is a %s and cannot carry an implements list", class.Name, class.Kind)}, nil
	}
	if class.HeaderError {
		return MutationReport{Skipped: true, Reason: fmt.Sprintf("declaration header of %s has syntax errors", class.Name)}, nil
	}

	addImport := func(path string) {
		if editor.AddImport(path) {
			report.AddedImports = append(report.AddedImports, path)
		}
	}

	present := false
	for _, iface := range class.Interfaces {
		if resolver.QualifiedName(file, iface.Name) == view.Qualified {
			present = true
			break
		}
	}
	if !present {
		name := view.Name
		if imported, ok := file.ExplicitImport(view.Name); ok && imported != view.Qualified {
			// the simple name already means another type here
			name = view.Qualified
		} else if view.File.Package != file.Package {
			addImport(view.Qualified)
		}
		editor.AppendInterface(class, name)
		report.AddedInterface = name
	}

	ancestors := resolver.ProjectAncestors(file, class)
	for _, m := range view.Class.Methods {
		if !m.IsAbstractContract() {
			continue
		}
		signature := m.Signature()
		if implemented(signature, class, ancestors) {
			continue
		}
		editor.AppendMember(class, stubMethod(m))
		report.AddedStubs = append(report.AddedStubs, signature)

		for _, t := range referencedTypes(m) {
			if path, ok := contractImport(view, t, resolver); ok && !file.HasImport(path) {
				if _, clash := file.ExplicitImport(t); !clash {
					addImport(path)
				}
			}
		}
	}

	return report, nil
}

func implemented(signature string, class *javasrc.Class, ancestors []*index.Type) bool {
	if class.HasSignature(signature) {
		return true
	}
	for _, a := range ancestors {
		if a.Class.HasSignature(signature) {
			return true
		}
	}
	return false
}

// contractImport returns the import needed for a simple type name used by the
// View contract, if the contract's file can tell where it lives.
func contractImport(view *Artifact, simple string, resolver TypeResolver) (string, bool) {
	if path, ok := view.File.ExplicitImport(simple); ok {
		return path, true
	}
	t, ok := resolver.ResolveFrom(view.File, simple)
	if !ok || (t.Class == nil && t.Stub == nil) {
		return "", false
	}
	if javasrc.PackageOf(t.Qualified) == "" {
		return "", false
	}
	return t.Qualified, true
}

// referencedTypes returns the unqualified type names a method signature
// mentions; qualified names need no import.
func referencedTypes(m javasrc.Method) []string {
	seen := make(map[string]bool)
	var names []string
	add := func(t string) {
		for _, token := range strings.FieldsFunc(t, func(r rune) bool {
			return strings.ContainsRune("<>,[]&? \t\n", r)
		}) {
			token = strings.TrimSuffix(token, "...")
			if token == "" || strings.Contains(token, ".") || primitives[token] ||
				token == "extends" || token == "super" || seen[token] {
				continue
			}
			seen[token] = true
			names = append(names, token)
		}
	}
	add(m.ReturnType)
	for _, p := range m.Params {
		add(p.Type)
	}
	return names
}

// stubMethod renders an override stub for a contract method
func stubMethod(m javasrc.Method) string {
	params := make([]string, len(m.Params))
	for i, p := range m.Params {
		name := p.Name
		if name == "" {
			name = fmt.Sprintf("arg%d", i)
		}
		if p.Varargs {
			params[i] = p.Type + "... " + name
		} else {
			params[i] = p.Type + " " + name
		}
	}

	ret := m.ReturnType
	if ret == "" {
		ret = "void"
	}
	var b strings.Builder
	b.WriteString("@Override\n")
	fmt.Fprintf(&b, "public %s %s(%s) {\n", ret, m.Name, strings.Join(params, ", "))
	if zero := zeroValue(ret); zero != "" {
		fmt.Fprintf(&b, "    return %s;\n", zero)
	}
	b.WriteString("}")
	return b.String()
}

func zeroValue(t string) string {
	switch t {
	case "void":
		return ""
	case "boolean":
		return "false"
	case "byte", "char", "short", "int", "long", "float", "double":
		return "0"
	default:
		return "null"
	}
}
