package mvp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/toyz/mvpgen/internal/hierarchy"
	"github.com/toyz/mvpgen/internal/index"
	"github.com/toyz/mvpgen/internal/javasrc"
	"github.com/toyz/mvpgen/internal/workspace"
)

const loginActivitySource = `package com.app.ui;

import android.os.Bundle;
import androidx.appcompat.app.AppCompatActivity;

public class LoginActivity extends AppCompatActivity {

    @Override
    protected void onCreate(Bundle savedInstanceState) {
        super.onCreate(savedInstanceState);
    }
}
`

// project is a throwaway Android project laid out under a temp dir
type project struct {
	root       string
	sourceRoot string
}

func newProject(t *testing.T, files map[string]string) *project {
	t.Helper()
	root := t.TempDir()
	p := &project{root: root, sourceRoot: filepath.Join(root, "app", "src", "main", "java")}
	p.write(t, "settings.gradle", "include ':app'\n")
	for rel, content := range files {
		p.writeSource(t, rel, content)
	}
	return p
}

func (p *project) write(t *testing.T, rel, content string) string {
	t.Helper()
	path := filepath.Join(p.root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func (p *project) writeSource(t *testing.T, rel, content string) string {
	t.Helper()
	return p.write(t, filepath.ToSlash(filepath.Join("app", "src", "main", "java", rel)), content)
}

func (p *project) source(rel string) string {
	return filepath.Join(p.sourceRoot, filepath.FromSlash(rel))
}

func (p *project) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(p.source(rel))
	require.NoError(t, err)
	return string(data)
}

func (p *project) exists(rel string) bool {
	_, err := os.Stat(p.source(rel))
	return err == nil
}

func (p *project) workspace() *workspace.Workspace {
	return workspace.New(p.root, filepath.Join(p.root, workspace.StateDir, "history"), zap.NewNop())
}

func (p *project) index(t *testing.T, reader index.Reader) *index.Index {
	t.Helper()
	ix := index.New([]string{p.sourceRoot}, hierarchy.DefaultStubs(), reader, zap.NewNop())
	t.Cleanup(ix.Close)
	return ix
}

func (p *project) parse(t *testing.T, ix *index.Index, rel string) *javasrc.File {
	t.Helper()
	file, err := ix.ParseFile(context.Background(), p.source(rel))
	require.NoError(t, err)
	return file
}
