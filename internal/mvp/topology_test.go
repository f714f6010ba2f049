package mvp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/mvpgen/internal/config"
	"github.com/toyz/mvpgen/internal/errors"
)

func TestSourceRootsPackageOf(t *testing.T) {
	roots := SourceRoots{filepath.Join("/p", "src")}

	pkg, ok := roots.PackageOf(filepath.Join("/p", "src", "com", "app", "ui"))
	assert.True(t, ok)
	assert.Equal(t, "com.app.ui", pkg)

	pkg, ok = roots.PackageOf(filepath.Join("/p", "src"))
	assert.True(t, ok)
	assert.Empty(t, pkg)

	_, ok = roots.PackageOf(filepath.Join("/elsewhere", "com"))
	assert.False(t, ok)
}

func TestResolveFeatureRoot(t *testing.T) {
	src := filepath.Join("/p", "src")
	roots := SourceRoots{src}

	tests := []struct {
		name string
		dir  string
		want string
	}{
		{"plain package", filepath.Join(src, "com", "app", "login"), filepath.Join(src, "com", "app", "login")},
		{"inside view", filepath.Join(src, "com", "app", "login", "view"), filepath.Join(src, "com", "app", "login")},
		{"below view", filepath.Join(src, "com", "app", "login", "view", "widgets"), filepath.Join(src, "com", "app", "login")},
		{"view-like name is not a view segment", filepath.Join(src, "com", "app", "preview"), filepath.Join(src, "com", "app", "preview")},
		{"unknown directory", filepath.Join("/tmp", "view"), filepath.Join("/tmp", "view")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveFeatureRoot(tt.dir, roots))
		})
	}
}

func TestEnsureTopologyCreatesRoleDirectories(t *testing.T) {
	p := newProject(t, map[string]string{"com/app/ui/LoginActivity.java": loginActivitySource})
	ws := p.workspace()
	tx, err := ws.Begin("topology")
	require.NoError(t, err)
	defer tx.Rollback()

	// an existing presenter directory is reused
	require.NoError(t, os.MkdirAll(p.source("com/app/ui/presenter"), 0755))

	topo, err := EnsureTopology(tx, p.source("com/app/ui"), SourceRoots{p.sourceRoot})
	require.NoError(t, err)
	assert.Equal(t, "com.app.ui", topo.Package)
	assert.Equal(t, p.source("com/app/ui/view"), topo.DirFor(ViewContract))
	assert.Equal(t, p.source("com/app/ui/presenter"), topo.DirFor(PresenterConcrete))
	assert.Equal(t, p.source("com/app/ui/model"), topo.DirFor(ModelConcrete))
	assert.Equal(t, "com.app.ui.presenter", topo.PackageFor(PresenterImpl))

	var created []string
	for _, c := range tx.Pending() {
		created = append(created, filepath.ToSlash(c.Path))
	}
	assert.Equal(t, []string{
		"app/src/main/java/com/app/ui/view",
		"app/src/main/java/com/app/ui/model",
	}, created)
}

func TestEnsureTopologyRejectsFileNamedLikeRole(t *testing.T) {
	p := newProject(t, map[string]string{"com/app/ui/model": "not a directory"})
	tx, err := p.workspace().Begin("topology")
	require.NoError(t, err)
	defer tx.Rollback()

	_, err = EnsureTopology(tx, p.source("com/app/ui"), SourceRoots{p.sourceRoot})
	require.Error(t, err)
	assert.Equal(t, errors.GenerationErrorCode, errors.CodeOf(err))
	assert.Contains(t, err.Error(), "model")
}

func TestTopologyWithoutPackage(t *testing.T) {
	topo := Topology{Root: "/src"}
	assert.Equal(t, "view", topo.PackageFor(ViewContract))
	assert.Equal(t, "model", topo.PackageFor(ModelConcrete))
}

func TestFactoryDataImports(t *testing.T) {
	base := config.DefaultConfig().Base
	base.View = "com.app.base.BaseView"
	base.DataType = "com.app.bean.JavaBean"
	base.Imports = []string{"androidx.annotation.Keep"}
	factory := NewFactory(base)
	topo := Topology{Package: "com.app.login"}

	view := factory.Data(ViewContract, "Login", topo)
	assert.Equal(t, "com.app.login.view", view.Package)
	assert.Equal(t, []string{"androidx.annotation.Keep", "com.app.base.BaseView", "com.app.bean.JavaBean"}, view.Imports)
	assert.Equal(t, "BaseView", view.BaseView)
	assert.Equal(t, "JavaBean", view.DataType)

	presenter := factory.Data(PresenterImpl, "Login", topo)
	assert.Equal(t, []string{
		"androidx.annotation.Keep",
		"com.app.login.model.LoginModel",
		"com.app.login.view.LoginView",
	}, presenter.Imports)

	concrete := factory.Data(PresenterConcrete, "Login", topo)
	assert.Contains(t, concrete.Imports, "com.app.login.model.LoginModelImpl")

	out, err := factory.Render(ViewContract, view)
	require.NoError(t, err)
	assert.Contains(t, out, "package com.app.login.view;")
	assert.Contains(t, out, "public interface LoginView extends BaseView {")
}

func TestArtifactKindNames(t *testing.T) {
	assert.Equal(t, "LoginView", ViewContract.CanonicalName("Login"))
	assert.Equal(t, "LoginPresenter", PresenterImpl.CanonicalName("Login"))
	assert.Equal(t, "LoginModel", ModelContract.CanonicalName("Login"))
	assert.Equal(t, "LoginPresenterImpl", PresenterConcrete.CanonicalName("Login"))
	assert.Equal(t, "LoginModelImpl", ModelConcrete.CanonicalName("Login"))
	assert.Equal(t, "presenter", PresenterConcrete.RoleDir())
	assert.Equal(t, "ModelContract", ModelContract.String())
}
