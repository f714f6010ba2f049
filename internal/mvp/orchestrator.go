package mvp

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/toyz/mvpgen/internal/config"
	"github.com/toyz/mvpgen/internal/errors"
	"github.com/toyz/mvpgen/internal/format"
	"github.com/toyz/mvpgen/internal/hierarchy"
	"github.com/toyz/mvpgen/internal/host"
	"github.com/toyz/mvpgen/internal/index"
	"github.com/toyz/mvpgen/internal/javasrc"
	"github.com/toyz/mvpgen/internal/workspace"
)

// ErrNotApplicable is returned when the selected class is not an Activity or
// Fragment, or no class could be selected. Callers treat it as a no-op.
var ErrNotApplicable = errors.New(errors.ContextErrorCode, "generation is not applicable here")

// Request describes one invocation
type Request struct {
	Path       string
	Target     host.Target
	ConfigPath string // overrides <project>/.mvpgen.yaml when set
}

// Result is everything a run produced
type Result struct {
	Class     string
	Role      Role
	Chain     []javasrc.TypeRef
	Feature   string
	Topology  Topology
	Artifacts []*Artifact
	Mutation  MutationReport
	Journal   *workspace.Journal
	Changes   []workspace.Change
	DryRun    bool
	Warnings  []string
}

// Artifact returns the produced artifact of kind, or nil
func (r *Result) Artifact(kind ArtifactKind) *Artifact {
	for _, a := range r.Artifacts {
		if a.Kind == kind {
			return a
		}
	}
	return nil
}

// Generator runs the scaffold pipeline
type Generator struct {
	logger *zap.Logger
}

// NewGenerator creates a generator
func NewGenerator(logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{logger: logger}
}

// session is the per-request state shared by the pipeline steps
type session struct {
	host   *host.Context
	config *config.Config
	stubs  *hierarchy.Stubs
	roots  []string
}

func (g *Generator) open(ctx context.Context, req Request) (*session, error) {
	hc, err := host.Load(ctx, req.Path, req.Target)
	if err != nil {
		return nil, err
	}
	cfg := hc.Config
	if req.ConfigPath != "" {
		if cfg, err = config.Load(req.ConfigPath); err != nil {
			return nil, err
		}
		hc.Config = cfg
	}

	stubs, err := hierarchy.LoadStubFiles(cfg.StubPaths(hc.ProjectRoot)...)
	if err != nil {
		return nil, err
	}
	return &session{host: hc, config: cfg, stubs: stubs, roots: []string{hc.SourceRoot}}, nil
}

// Classify reports the role, ancestor chain and feature name of the selected
// class without touching the project.
func (g *Generator) Classify(ctx context.Context, req Request) (*Result, error) {
	s, err := g.open(ctx, req)
	if err != nil {
		return nil, err
	}
	ix := index.New(s.roots, s.stubs, nil, g.logger)
	defer ix.Close()

	return g.classify(s, ix.Scope(ctx, s.host.File)), nil
}

func (g *Generator) classify(s *session, h Hierarchy) *Result {
	result := &Result{Role: RoleNone}
	class := s.host.Class
	if class == nil {
		return result
	}
	result.Class = class.DottedName()
	if class.Super != nil {
		result.Chain = AncestorChain(h, *class.Super)
	}
	result.Role = ClassifyClass(h, class)
	if result.Role != RoleNone {
		result.Feature = DeriveFeatureName(class.Name, result.Role)
		if result.Feature == "" {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("class name %s is only a role token; generated names will have no feature prefix", class.Name))
		}
	}
	return result
}

// Run generates the feature's artifacts and rewrites the source class in one
// transaction. Any failure rolls everything back.
func (g *Generator) Run(ctx context.Context, req Request) (*Result, error) {
	return g.run(ctx, req, false)
}

// Plan performs the same work as Run and rolls it back, reporting the
// changes that would have been made.
func (g *Generator) Plan(ctx context.Context, req Request) (*Result, error) {
	return g.run(ctx, req, true)
}

func (g *Generator) run(ctx context.Context, req Request, dryRun bool) (*Result, error) {
	s, err := g.open(ctx, req)
	if err != nil {
		return nil, err
	}

	preflight := index.New(s.roots, s.stubs, nil, g.logger)
	scope := preflight.Scope(ctx, s.host.File)
	isController := func(super javasrc.TypeRef) bool { return Classify(scope, super) != RoleNone }
	if !s.host.Enabled(isController) {
		preflight.Close()
		return nil, g.notApplicable(s)
	}
	result := g.classify(s, scope)
	preflight.Close()
	result.DryRun = dryRun
	for _, w := range result.Warnings {
		g.logger.Warn(w)
	}

	ws := workspace.New(s.host.ProjectRoot, s.config.HistoryDir(s.host.ProjectRoot), g.logger)
	description := fmt.Sprintf("generate %s MVP for %s", result.Feature, result.Class)

	if dryRun {
		tx, err := ws.BeginDryRun(description)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()
		if err := g.generate(ctx, s, tx, result); err != nil {
			return nil, err
		}
		result.Changes = tx.Pending()
		return result, nil
	}

	journal, err := ws.RunInTransaction(ctx, description, func(tx *workspace.Tx) error {
		return g.generate(ctx, s, tx, result)
	})
	if err != nil {
		return nil, err
	}
	result.Journal = journal
	result.Changes = journal.Changes
	return result, nil
}

func (g *Generator) notApplicable(s *session) error {
	if s.host.Class == nil {
		return errors.Wrap(errors.ContextErrorCode, "no class found in "+s.host.Path, ErrNotApplicable)
	}
	return errors.Wrap(errors.ContextErrorCode,
		fmt.Sprintf("%s is not an Activity or Fragment", s.host.Class.DottedName()), ErrNotApplicable)
}

// generate runs every step that stages changes in tx
func (g *Generator) generate(ctx context.Context, s *session, tx *workspace.Tx, result *Result) error {
	ix := index.New(s.roots, s.stubs, tx, g.logger)
	defer ix.Close()

	file, err := ix.ParseFile(ctx, s.host.Path)
	if err != nil {
		return err
	}
	class := file.FindClass(s.host.Class.DottedName())
	if class == nil {
		return errors.ContextError("class " + result.Class + " disappeared while generating")
	}

	pkgs := SourceRoots(s.roots)
	root := ResolveFeatureRoot(s.host.Dir(), pkgs)
	topo, err := EnsureTopology(tx, root, pkgs)
	if err != nil {
		return err
	}
	result.Topology = topo

	factory := NewFactory(s.config.Base)
	registry := NewRegistry(factory, ix)
	kinds := ContractKinds
	if s.config.Generate.ConcreteImpls {
		kinds = append(append([]ArtifactKind(nil), ContractKinds...), ConcreteKinds...)
	}
	for _, kind := range kinds {
		artifact, err := registry.LookupOrCreate(ctx, tx, topo.DirFor(kind), kind, factory.Data(kind, result.Feature, topo))
		if err != nil {
			return err
		}
		g.logger.Debug("artifact ready",
			zap.String("kind", kind.String()),
			zap.String("path", artifact.Path),
			zap.Bool("created", artifact.Created))
		result.Artifacts = append(result.Artifacts, artifact)
	}

	editor := javasrc.NewEditor(file)
	report, err := Mutate(file, class, result.Artifact(ViewContract), editor, ix.Scope(ctx, file))
	if err != nil {
		return err
	}
	result.Mutation = report
	if report.Skipped {
		result.Warnings = append(result.Warnings, report.Reason)
		g.logger.Warn("source class left unchanged", zap.String("reason", report.Reason))
	}
	if editor.Changed() {
		if err := tx.WriteFile(s.host.Path, editor.Apply()); err != nil {
			return err
		}
	}

	if s.config.Format.Enabled {
		return Normalize(ctx, tx, format.New(s.config.Format.Command, g.logger))
	}
	return nil
}

// Normalize runs normalizer over every file tx touched
func Normalize(ctx context.Context, tx *workspace.Tx, normalizer format.Normalizer) error {
	for _, path := range tx.Touched() {
		content, err := tx.ReadFile(path)
		if err != nil {
			return err
		}
		out, err := normalizer.Normalize(ctx, path, content)
		if err != nil {
			return errors.WrapWithOperation("normalize", path, err)
		}
		if string(out) == string(content) {
			continue
		}
		if err := tx.WriteFile(path, out); err != nil {
			return err
		}
	}
	return nil
}
