package hierarchy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/mvpgen/internal/errors"
)

func TestParseStubs(t *testing.T) {
	entries, err := ParseStubs("test.stubs", `
// comment lines are ignored
class com.lib.BaseCompatActivity extends androidx.appcompat.app.AppCompatActivity;
interface com.lib.Callback;
class Root;
`)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "class", entries[0].Kind)
	assert.Equal(t, "com.lib.BaseCompatActivity", entries[0].Name)
	assert.Equal(t, "androidx.appcompat.app.AppCompatActivity", entries[0].Super)
	assert.Equal(t, 3, entries[0].Pos.Line)

	assert.Equal(t, "interface", entries[1].Kind)
	assert.Empty(t, entries[1].Super)
	assert.Equal(t, "Root", entries[2].Name)
}

func TestParseStubsReportsPosition(t *testing.T) {
	_, err := ParseStubs("broken.stubs", "class a.B extends;\n")
	require.Error(t, err)
	assert.Equal(t, errors.SyntaxErrorCode, errors.CodeOf(err))

	var base *errors.BaseError
	require.ErrorAs(t, err, &base)
	assert.Equal(t, "broken.stubs", base.Location().File)
	assert.Equal(t, 1, base.Location().Line)
}

func TestDefaultStubsCoverAndroidControllers(t *testing.T) {
	stubs := DefaultStubs()
	assert.Greater(t, stubs.Len(), 10)

	compat, ok := stubs.Lookup("androidx.appcompat.app.AppCompatActivity")
	require.True(t, ok)
	assert.Equal(t, "androidx.fragment.app.FragmentActivity", compat.Super)

	// both androidx and support library declare AppCompatActivity
	assert.Len(t, stubs.LookupSimple("AppCompatActivity"), 2)

	root, ok := stubs.Lookup("android.app.Activity")
	require.True(t, ok)
	assert.Empty(t, root.Super)
}

func TestLoadStubFilesOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project.stubs")
	require.NoError(t, os.WriteFile(path, []byte(
		"class androidx.fragment.app.Fragment extends com.lib.LifecycleOwnerImpl;\n"+
			"class com.lib.LifecycleOwnerImpl;\n"), 0644))

	stubs, err := LoadStubFiles(path)
	require.NoError(t, err)

	fragment, ok := stubs.Lookup("androidx.fragment.app.Fragment")
	require.True(t, ok)
	assert.Equal(t, "com.lib.LifecycleOwnerImpl", fragment.Super)
	assert.Len(t, stubs.LookupSimple("Fragment"), 3)

	_, err = LoadStubFiles(filepath.Join(dir, "missing.stubs"))
	require.Error(t, err)
	assert.Equal(t, errors.FileSystemErrorCode, errors.CodeOf(err))
}
