package mvp

import (
	"context"

	"github.com/toyz/mvpgen/internal/errors"
	"github.com/toyz/mvpgen/internal/javasrc"
)

// Artifact is a generated or pre-existing feature class
type Artifact struct {
	Kind      ArtifactKind
	Name      string
	Qualified string
	Path      string
	File      *javasrc.File
	Class     *javasrc.Class
	Created   bool
}

// FileService is the file side of a workspace transaction
type FileService interface {
	FindFile(dir, name string) (string, bool, error)
	CreateFile(dir, name string, content []byte) (string, error)
}

// SourceParser parses a file as the transaction sees it
type SourceParser interface {
	ParseFile(ctx context.Context, path string) (*javasrc.File, error)
}

// Registry looks up artifacts by canonical name, creating missing ones
type Registry struct {
	factory *Factory
	parser  SourceParser
}

// NewRegistry creates an artifact registry
func NewRegistry(factory *Factory, parser SourceParser) *Registry {
	return &Registry{factory: factory, parser: parser}
}

// LookupOrCreate returns the artifact of kind in dir. An existing
// <Canonical>.java is parsed and returned untouched; otherwise the rendered
// text is created. Existing files are never overwritten.
func (r *Registry) LookupOrCreate(ctx context.Context, files FileService, dir string, kind ArtifactKind, data ArtifactData) (*Artifact, error) {
	name := kind.CanonicalName(data.Feature)
	fileName := name + ".java"

	path, exists, err := files.FindFile(dir, fileName)
	if err != nil {
		return nil, errors.WrapGenerateError(kind.String(), name, err)
	}

	created := false
	if !exists {
		text, err := r.factory.Render(kind, data)
		if err != nil {
			return nil, errors.WrapGenerateError(kind.String(), name, err)
		}
		if path, err = files.CreateFile(dir, fileName, []byte(text)); err != nil {
			return nil, errors.WrapGenerateError(kind.String(), name, err)
		}
		created = true
	}

	file, err := r.parser.ParseFile(ctx, path)
	if err != nil {
		return nil, errors.WrapGenerateError(kind.String(), name, err)
	}
	class := file.FindClass(name)
	if class == nil {
		return nil, errors.Newf(errors.GenerationErrorCode, "%s exists but does not declare %s", path, name).
			WithContext("path", path).
			WithSuggestion("rename the existing file or the class it declares")
	}

	return &Artifact{
		Kind:      kind,
		Name:      name,
		Qualified: file.QualifiedName(class),
		Path:      path,
		File:      file,
		Class:     class,
		Created:   created,
	}, nil
}
