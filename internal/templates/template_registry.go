package templates

import (
	"strings"
	"text/template"

	"github.com/toyz/mvpgen/internal/errors"
)

// Template names
const (
	ViewContract      = "view-contract"
	PresenterImpl     = "presenter"
	ModelContract     = "model-contract"
	PresenterConcrete = "presenter-impl"
	ModelConcrete     = "model-impl"
)

// header renders the package declaration, imports and extra header lines
const header = `{{define "header"}}{{if .Package}}package {{.Package}};

{{end}}{{range .Imports}}import {{.}};
{{end}}{{if .Imports}}
{{end}}{{range .HeaderLines}}{{.}}
{{end}}{{end}}`

// TemplateRegistry holds the parsed Java artifact templates
type TemplateRegistry struct {
	templates map[string]*template.Template
}

// NewTemplateRegistry creates a new template registry with all templates
func NewTemplateRegistry() *TemplateRegistry {
	registry := &TemplateRegistry{
		templates: make(map[string]*template.Template),
	}

	registry.registerContractTemplates()
	registry.registerConcreteTemplates()

	return registry
}

func (tr *TemplateRegistry) register(name, body string) {
	tr.templates[name] = template.Must(template.New(name).Parse(header + `{{template "header" .}}` + body))
}

// registerContractTemplates registers the three artifacts every feature gets
func (tr *TemplateRegistry) registerContractTemplates() {
	tr.register(ViewContract, `public interface {{.Feature}}View extends {{.BaseView}} {

    //request succeeded
    void get{{.Feature}}Suc({{.DataType}} bean);

    //request failed
    void get{{.Feature}}Fail(String message);
}
`)

	tr.register(PresenterImpl, `public class {{.Feature}}Presenter extends {{.BasePresenter}}<{{.Feature}}View, {{.Feature}}Model> {

    public {{.Feature}}Presenter({{.Feature}}View view) {
        setVM(view, new {{.Feature}}Model());
    }
}
`)

	tr.register(ModelContract, `public class {{.Feature}}Model implements {{.BaseModel}} {
}
`)
}

// registerConcreteTemplates registers the optional concrete builders
func (tr *TemplateRegistry) registerConcreteTemplates() {
	tr.register(PresenterConcrete, `public class {{.Feature}}PresenterImpl extends {{.BasePresenter}}<{{.Feature}}View, {{.Feature}}ModelImpl> {

    public {{.Feature}}PresenterImpl({{.Feature}}View view) {
        setVM(view, new {{.Feature}}ModelImpl());
    }
}
`)

	tr.register(ModelConcrete, `public class {{.Feature}}ModelImpl extends {{.Feature}}Model {
}
`)
}

// Get retrieves a template by name
func (tr *TemplateRegistry) Get(name string) (*template.Template, bool) {
	tmpl, exists := tr.templates[name]
	return tmpl, exists
}

// Render executes the named template with data
func (tr *TemplateRegistry) Render(name string, data any) (string, error) {
	tmpl, exists := tr.Get(name)
	if !exists {
		return "", errors.Newf(errors.TemplateErrorCode, "template not found: %s", name)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", errors.WrapTemplateError(name, "execute", err)
	}
	return b.String(), nil
}
