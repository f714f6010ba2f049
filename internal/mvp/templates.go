package mvp

import (
	"github.com/toyz/mvpgen/internal/config"
	"github.com/toyz/mvpgen/internal/javasrc"
	"github.com/toyz/mvpgen/internal/templates"
)

// ArtifactKind identifies one generated artifact of a feature
type ArtifactKind int

const (
	ViewContract ArtifactKind = iota
	PresenterImpl
	ModelContract
	PresenterConcrete
	ModelConcrete
)

// ContractKinds are generated for every feature, in creation order
var ContractKinds = []ArtifactKind{ViewContract, PresenterImpl, ModelContract}

// ConcreteKinds are generated only when concrete implementations are enabled
var ConcreteKinds = []ArtifactKind{PresenterConcrete, ModelConcrete}

// String returns the kind name
func (k ArtifactKind) String() string {
	switch k {
	case ViewContract:
		return "ViewContract"
	case PresenterImpl:
		return "PresenterImpl"
	case ModelContract:
		return "ModelContract"
	case PresenterConcrete:
		return "PresenterConcrete"
	default:
		return "ModelConcrete"
	}
}

// Suffix returns the suffix appended to the feature name
func (k ArtifactKind) Suffix() string {
	switch k {
	case ViewContract:
		return "View"
	case PresenterImpl:
		return "Presenter"
	case ModelContract:
		return "Model"
	case PresenterConcrete:
		return "PresenterImpl"
	default:
		return "ModelImpl"
	}
}

// RoleDir returns the sub-directory the kind lives in
func (k ArtifactKind) RoleDir() string {
	switch k {
	case ViewContract:
		return "view"
	case PresenterImpl, PresenterConcrete:
		return "presenter"
	default:
		return "model"
	}
}

// CanonicalName returns the class name of the artifact for feature
func (k ArtifactKind) CanonicalName(feature string) string {
	return feature + k.Suffix()
}

// ArtifactData is the input to every artifact template. Base type fields hold
// simple names; their qualified forms travel in Imports.
type ArtifactData struct {
	Package       string
	Imports       []string
	HeaderLines   []string
	Feature       string
	BaseView      string
	BasePresenter string
	BaseModel     string
	DataType      string
}

// RenderFunc renders one artifact kind
type RenderFunc func(data ArtifactData) (string, error)

// Factory renders artifact source text
type Factory struct {
	registry *templates.TemplateRegistry
	base     config.BaseConfig
	render   map[ArtifactKind]RenderFunc
}

// NewFactory creates a factory for the project's base types
func NewFactory(base config.BaseConfig) *Factory {
	f := &Factory{
		registry: templates.NewTemplateRegistry(),
		base:     base,
	}
	f.render = map[ArtifactKind]RenderFunc{
		ViewContract:      f.RenderViewContract,
		PresenterImpl:     f.RenderPresenter,
		ModelContract:     f.RenderModelContract,
		PresenterConcrete: f.RenderPresenterConcrete,
		ModelConcrete:     f.RenderModelConcrete,
	}
	return f
}

// RenderViewContract renders the View contract interface
func (f *Factory) RenderViewContract(data ArtifactData) (string, error) {
	return f.registry.Render(templates.ViewContract, data)
}

// RenderPresenter renders the Presenter class
func (f *Factory) RenderPresenter(data ArtifactData) (string, error) {
	return f.registry.Render(templates.PresenterImpl, data)
}

// RenderModelContract renders the Model class
func (f *Factory) RenderModelContract(data ArtifactData) (string, error) {
	return f.registry.Render(templates.ModelContract, data)
}

// RenderPresenterConcrete renders the concrete Presenter builder
func (f *Factory) RenderPresenterConcrete(data ArtifactData) (string, error) {
	return f.registry.Render(templates.PresenterConcrete, data)
}

// RenderModelConcrete renders the concrete Model builder
func (f *Factory) RenderModelConcrete(data ArtifactData) (string, error) {
	return f.registry.Render(templates.ModelConcrete, data)
}

// Render renders the artifact of kind
func (f *Factory) Render(kind ArtifactKind, data ArtifactData) (string, error) {
	return f.render[kind](data)
}

// Data builds the template input for kind, importing the qualified base
// types, the configured extra imports and the sibling artifacts it refers to.
func (f *Factory) Data(kind ArtifactKind, feature string, topo Topology, headerLines ...string) ArtifactData {
	pkg := topo.PackageFor(kind)
	imports := templates.NewImportManager(pkg)
	imports.AddImport(f.base.Imports...)

	sibling := func(k ArtifactKind) string {
		return javasrc.Qualify(topo.PackageFor(k), k.CanonicalName(feature))
	}
	switch kind {
	case ViewContract:
		imports.AddImport(f.base.View, f.base.DataType)
	case PresenterImpl:
		imports.AddImport(f.base.Presenter, sibling(ViewContract), sibling(ModelContract))
	case ModelContract:
		imports.AddImport(f.base.Model)
	case PresenterConcrete:
		imports.AddImport(f.base.Presenter, sibling(ViewContract), sibling(ModelConcrete))
	case ModelConcrete:
		imports.AddImport(sibling(ModelContract))
	}

	return ArtifactData{
		Package:       pkg,
		Imports:       imports.Imports(),
		HeaderLines:   headerLines,
		Feature:       feature,
		BaseView:      javasrc.SimpleName(f.base.View),
		BasePresenter: javasrc.SimpleName(f.base.Presenter),
		BaseModel:     javasrc.SimpleName(f.base.Model),
		DataType:      javasrc.SimpleName(f.base.DataType),
	}
}
