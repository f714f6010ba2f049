package mvp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/mvpgen/internal/config"
	"github.com/toyz/mvpgen/internal/errors"
	"github.com/toyz/mvpgen/internal/workspace"
)

func newRegistryFixture(t *testing.T, files map[string]string) (*project, *workspace.Tx, *Registry, *Factory, Topology) {
	t.Helper()
	if files == nil {
		files = map[string]string{}
	}
	files["com/app/ui/LoginActivity.java"] = loginActivitySource
	p := newProject(t, files)
	tx, err := p.workspace().Begin("registry")
	require.NoError(t, err)
	t.Cleanup(tx.Rollback)

	topo, err := EnsureTopology(tx, p.source("com/app/ui"), SourceRoots{p.sourceRoot})
	require.NoError(t, err)

	factory := NewFactory(config.DefaultConfig().Base)
	return p, tx, NewRegistry(factory, p.index(t, tx)), factory, topo
}

func TestRegistryCreatesMissingArtifact(t *testing.T) {
	p, tx, registry, factory, topo := newRegistryFixture(t, nil)

	artifact, err := registry.LookupOrCreate(context.Background(), tx, topo.ViewDir, ViewContract, factory.Data(ViewContract, "Login", topo))
	require.NoError(t, err)

	assert.True(t, artifact.Created)
	assert.Equal(t, "LoginView", artifact.Name)
	assert.Equal(t, "com.app.ui.view.LoginView", artifact.Qualified)
	assert.Equal(t, p.source("com/app/ui/view/LoginView.java"), artifact.Path)
	require.NotNil(t, artifact.Class)
	assert.Len(t, artifact.Class.Methods, 2)
	assert.False(t, p.exists("com/app/ui/view/LoginView.java"), "nothing is written before commit")
}

func TestRegistryReusesExistingArtifact(t *testing.T) {
	existing := `package com.app.ui.view;

public interface LoginView extends BaseView {
    void showLoading();
}
`
	p, tx, registry, factory, topo := newRegistryFixture(t, map[string]string{
		"com/app/ui/view/LoginView.java": existing,
	})

	artifact, err := registry.LookupOrCreate(context.Background(), tx, topo.ViewDir, ViewContract, factory.Data(ViewContract, "Login", topo))
	require.NoError(t, err)

	assert.False(t, artifact.Created)
	require.Len(t, artifact.Class.Methods, 1)
	assert.Equal(t, "showLoading", artifact.Class.Methods[0].Name)
	assert.Empty(t, tx.Touched())
	assert.Equal(t, existing, p.read(t, "com/app/ui/view/LoginView.java"))
}

func TestRegistryRejectsFileWithoutCanonicalClass(t *testing.T) {
	_, tx, registry, factory, topo := newRegistryFixture(t, map[string]string{
		"com/app/ui/model/LoginModel.java": "package com.app.ui.model;\n\npublic class SomethingElse {\n}\n",
	})

	_, err := registry.LookupOrCreate(context.Background(), tx, topo.ModelDir, ModelContract, factory.Data(ModelContract, "Login", topo))
	require.Error(t, err)
	assert.Equal(t, errors.GenerationErrorCode, errors.CodeOf(err))
	assert.Contains(t, err.Error(), "does not declare LoginModel")
}
