package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const loginActivity = `package com.app.ui;

import androidx.appcompat.app.AppCompatActivity;

public class LoginActivity extends AppCompatActivity {
}
`

func init() {
	color.NoColor = true
}

func setupProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	files["settings.gradle"] = "include ':app'\n"
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	t.Setenv("MVPGEN_LOG_LEVEL", "error")
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestCLIArgumentParsing(t *testing.T) {
	t.Run("help flag", func(t *testing.T) {
		code, out, _ := execute(t, "--help")
		assert.Equal(t, 0, code)
		assert.Contains(t, out, "Usage:")
		assert.Contains(t, out, "generate")
		assert.Contains(t, out, "undo")
	})

	t.Run("missing file argument", func(t *testing.T) {
		code, _, errOut := execute(t, "generate")
		assert.Equal(t, 1, code)
		assert.Contains(t, errOut, "accepts 1 arg(s)")
	})

	t.Run("not a java file", func(t *testing.T) {
		root := setupProject(t, map[string]string{"notes.txt": "hello"})
		code, _, errOut := execute(t, "generate", filepath.Join(root, "notes.txt"))
		assert.Equal(t, 1, code)
		assert.Contains(t, errOut, "Invocation Context Error")
		assert.Contains(t, errOut, "not a Java source file")
	})
}

func TestCLIGenerateUndoHistory(t *testing.T) {
	root := setupProject(t, map[string]string{
		"app/src/main/java/com/app/ui/LoginActivity.java": loginActivity,
	})
	source := filepath.Join(root, "app", "src", "main", "java", "com", "app", "ui", "LoginActivity.java")

	code, out, errOut := execute(t, "generate", "--dry-run", source)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Planned changes (dry run)")
	assert.NoFileExists(t, filepath.Join(filepath.Dir(source), "view", "LoginView.java"))

	code, out, errOut = execute(t, "generate", source)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "mvpgen: Login feature for LoginActivity (Activity)")
	assert.Contains(t, out, "create  app/src/main/java/com/app/ui/view/LoginView.java")
	assert.Contains(t, out, "getLoginSuc(JavaBean)")
	assert.FileExists(t, filepath.Join(filepath.Dir(source), "view", "LoginView.java"))

	code, out, _ = execute(t, "generate", source)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Everything is already in place")

	code, out, _ = execute(t, "history", "--project", root)
	require.Equal(t, 0, code)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "generate Login MVP for LoginActivity, 7 changes")

	code, out, errOut = execute(t, "undo", "--project", root)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Reverted generate Login MVP for LoginActivity")
	assert.NoDirExists(t, filepath.Join(filepath.Dir(source), "view"))

	code, out, _ = execute(t, "history", "--project", root)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "(undone)")

	code, _, errOut = execute(t, "undo", "--project", root)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "nothing to undo")
}

func TestCLINotApplicableIsNotAnError(t *testing.T) {
	root := setupProject(t, map[string]string{
		"src/com/app/Helper.java": "package com.app;\n\npublic class Helper {\n}\n",
	})
	code, _, errOut := execute(t, "generate", filepath.Join(root, "src", "com", "app", "Helper.java"))
	assert.Equal(t, 0, code)
	assert.Contains(t, errOut, "! Helper is not an Activity or Fragment")
	assert.NotContains(t, errOut, "ERROR")
}

func TestCLIClassify(t *testing.T) {
	root := setupProject(t, map[string]string{
		"src/com/app/ui/LoginActivity.java": loginActivity,
	})
	code, out, errOut := execute(t, "classify", filepath.Join(root, "src", "com", "app", "ui", "LoginActivity.java"))
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "class:   LoginActivity")
	assert.Contains(t, out, "role:    Activity")
	assert.Contains(t, out, "feature: Login")
	assert.Contains(t, out, "android.app.Activity")
}

func TestCLIInit(t *testing.T) {
	root := setupProject(t, map[string]string{
		"app/src/main/java/com/app/ui/LoginActivity.java": loginActivity,
	})
	path := filepath.Join(root, ".mvpgen.yaml")

	code, out, errOut := execute(t, "init", filepath.Join(root, "app", "src"))
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Wrote "+path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "history:")

	code, _, errOut = execute(t, "init", root)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "configuration already exists")
	assert.Contains(t, errOut, "--force")

	code, _, errOut = execute(t, "init", "--force", root)
	assert.Equal(t, 0, code, errOut)

	// the written defaults load cleanly
	code, _, errOut = execute(t, "classify", filepath.Join(root, "app", "src", "main", "java", "com", "app", "ui", "LoginActivity.java"))
	assert.Equal(t, 0, code, errOut)
}
