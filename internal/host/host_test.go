package host

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/mvpgen/internal/errors"
	"github.com/toyz/mvpgen/internal/javasrc"
)

const twoClasses = `package com.app.ui;

public class LoginActivity extends AppCompatActivity {
}

class Helper {
}
`

func writeProject(t *testing.T) (root, file string) {
	t.Helper()
	root = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "settings.gradle"), []byte("include ':app'\n"), 0644))
	dir := filepath.Join(root, "app", "src", "main", "java", "com", "app", "ui")
	require.NoError(t, os.MkdirAll(dir, 0755))
	file = filepath.Join(dir, "LoginActivity.java")
	require.NoError(t, os.WriteFile(file, []byte(twoClasses), 0644))
	return root, file
}

func TestLoadResolvesRootsAndClass(t *testing.T) {
	root, file := writeProject(t)

	hc, err := Load(context.Background(), file, Target{})
	require.NoError(t, err)

	assert.Equal(t, root, hc.ProjectRoot)
	assert.Equal(t, filepath.Join(root, "app", "src", "main", "java"), hc.SourceRoot)
	assert.Equal(t, filepath.Dir(file), hc.Dir())
	require.NotNil(t, hc.Class)
	assert.Equal(t, "LoginActivity", hc.Class.Name)
	assert.Equal(t, "BaseView", hc.Config.Base.View)

	assert.True(t, hc.Enabled(func(super javasrc.TypeRef) bool { return super.Name == "AppCompatActivity" }))
	assert.False(t, hc.Enabled(func(javasrc.TypeRef) bool { return false }))
}

func TestLoadSelectsClassByCaretThenName(t *testing.T) {
	_, file := writeProject(t)

	hc, err := Load(context.Background(), file, Target{Line: 7})
	require.NoError(t, err)
	assert.Equal(t, "Helper", hc.Class.Name)
	assert.False(t, hc.Enabled(func(javasrc.TypeRef) bool { return true }), "Helper has no superclass")

	hc, err = Load(context.Background(), file, Target{Line: 2, ClassName: "Helper"})
	require.NoError(t, err)
	assert.Equal(t, "Helper", hc.Class.Name, "caret outside any class falls back to the name")

	_, err = Load(context.Background(), file, Target{ClassName: "Nope"})
	require.Error(t, err)
	assert.Equal(t, errors.ContextErrorCode, errors.CodeOf(err))
}

func TestLoadRejectsNonJavaFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hi"), 0644))

	_, err := Load(context.Background(), path, Target{})
	require.Error(t, err)
	assert.Equal(t, errors.ContextErrorCode, errors.CodeOf(err))
}

func TestSourceRoot(t *testing.T) {
	assert.Equal(t, filepath.FromSlash("/p/src"), SourceRoot(filepath.FromSlash("/p/src/com/app"), "com.app"))
	assert.Equal(t, filepath.FromSlash("/p/odd"), SourceRoot(filepath.FromSlash("/p/odd"), "com.app"))
	assert.Equal(t, filepath.FromSlash("/p/src"), SourceRoot(filepath.FromSlash("/p/src"), ""))
}

func TestFindProjectRootFallsBackToDir(t *testing.T) {
	dir := t.TempDir()
	// t.TempDir lives outside any project, unless the machine has a marker above it
	got := FindProjectRoot(dir)
	for _, marker := range rootMarkers {
		if _, err := os.Stat(filepath.Join(got, marker)); err == nil {
			return
		}
	}
	assert.Equal(t, dir, got)
}
