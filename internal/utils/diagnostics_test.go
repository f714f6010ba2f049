package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newBufferedDiagnostics(t *testing.T, level DiagnosticLevel) (*DiagnosticSystem, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	var out, errOut bytes.Buffer
	return NewDiagnosticSystemWithWriters(level, &out, &errOut), &out, &errOut
}

func TestDiagnosticLevels(t *testing.T) {
	d, out, errOut := newBufferedDiagnostics(t, DiagnosticError)
	d.Info("hidden")
	d.Warn("hidden warning")
	d.Error("broken %s", "thing")

	assert.Empty(t, out.String())
	assert.Equal(t, "x broken thing\n", errOut.String())
}

func TestDiagnosticOutput(t *testing.T) {
	d, out, errOut := newBufferedDiagnostics(t, DiagnosticInfo)

	d.Section("mvpgen")
	d.Success("generated %s", "Login")
	d.Indent()
	d.Change("create", "view/LoginView.java")
	d.Change("mkdir", "view")
	d.List("item")
	d.Unindent()
	d.Unindent()
	d.Verbose("not shown")
	d.Warn("careful")
	d.Summary("Done", []string{"created", "modified"}, map[string]interface{}{"modified": 1, "created": 3})

	want := "mvpgen\n" +
		"✓ generated Login\n" +
		"  create  view/LoginView.java\n" +
		"  mkdir   view\n" +
		"  - item\n" +
		"\nDone\n" +
		"   created: 3\n" +
		"   modified: 1\n"
	assert.Equal(t, want, out.String())
	assert.Equal(t, "! careful\n", errOut.String())
}
