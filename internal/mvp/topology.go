package mvp

import (
	"path/filepath"
	"strings"

	"github.com/toyz/mvpgen/internal/errors"
)

// PackageResolver maps a directory to the Java package it holds
type PackageResolver interface {
	PackageOf(dir string) (string, bool)
}

// SourceRoots resolves packages from directory paths below any of its roots
type SourceRoots []string

// PackageOf implements PackageResolver
func (roots SourceRoots) PackageOf(dir string) (string, bool) {
	for _, root := range roots {
		rel, err := filepath.Rel(root, dir)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		if rel == "." {
			return "", true
		}
		return strings.ReplaceAll(filepath.ToSlash(rel), "/", "."), true
	}
	return "", false
}

// DirectoryService creates role directories; a workspace transaction satisfies it.
type DirectoryService interface {
	EnsureSubdirectory(parent, name string) (string, error)
}

// Topology is where a feature's artifacts live
type Topology struct {
	Root         string
	Package      string
	ViewDir      string
	PresenterDir string
	ModelDir     string
}

// DirFor returns the role directory holding artifacts of kind
func (t Topology) DirFor(kind ArtifactKind) string {
	switch kind.RoleDir() {
	case "view":
		return t.ViewDir
	case "presenter":
		return t.PresenterDir
	default:
		return t.ModelDir
	}
}

// PackageFor returns the package of the role directory holding kind
func (t Topology) PackageFor(kind ArtifactKind) string {
	if t.Package == "" {
		return kind.RoleDir()
	}
	return t.Package + "." + kind.RoleDir()
}

func hasSegment(pkg, segment string) bool {
	for _, s := range strings.Split(pkg, ".") {
		if s == segment {
			return true
		}
	}
	return false
}

// ResolveFeatureRoot ascends from dir while its package has a "view"
// segment. A directory with no known package is its own root.
func ResolveFeatureRoot(dir string, pkgs PackageResolver) string {
	for {
		pkg, ok := pkgs.PackageOf(dir)
		if !ok || !hasSegment(pkg, "view") {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}

// EnsureTopology finds or creates the view, presenter and model directories
// under root.
func EnsureTopology(dirs DirectoryService, root string, pkgs PackageResolver) (Topology, error) {
	pkg, _ := pkgs.PackageOf(root)
	topo := Topology{Root: root, Package: pkg}

	for _, target := range []struct {
		name string
		dir  *string
	}{
		{"view", &topo.ViewDir},
		{"presenter", &topo.PresenterDir},
		{"model", &topo.ModelDir},
	} {
		path, err := dirs.EnsureSubdirectory(root, target.name)
		if err != nil {
			return Topology{}, errors.WrapGenerateError("directory", target.name, err)
		}
		*target.dir = path
	}
	return topo, nil
}
