package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseErrorFormatting(t *testing.T) {
	cause := stderrors.New("permission denied")

	tests := []struct {
		name     string
		err      *BaseError
		expected string
	}{
		{
			name:     "message only",
			err:      New(GenerationErrorCode, "nothing to do"),
			expected: "nothing to do",
		},
		{
			name:     "with cause",
			err:      WrapFileSystemError("create directory", "/tmp/app/view", cause),
			expected: "failed to create directory '/tmp/app/view': permission denied",
		},
		{
			name: "with location",
			err: New(SyntaxErrorCode, "unexpected token").
				WithLocation(SourceLocation{File: "LoginActivity.java", Line: 12, Column: 4}),
			expected: "LoginActivity.java:12:4: unexpected token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestWrappersCarryCodeAndContext(t *testing.T) {
	cause := stderrors.New("boom")

	err := WrapTransactionError("abc", "commit", cause)
	assert.Equal(t, TransactionErrorCode, err.ErrorCode())
	assert.Equal(t, "abc", err.Context()["transaction"])
	assert.Equal(t, "commit", err.Context()["stage"])
	assert.True(t, stderrors.Is(err, cause))

	tmpl := WrapTemplateError("view", "execute", cause)
	assert.Equal(t, TemplateErrorCode, tmpl.ErrorCode())
	assert.Equal(t, "TemplateError", tmpl.ErrorCode().String())
}

func TestCodeOfWalksChain(t *testing.T) {
	inner := WrapConfigurationError(".mvpgen.yaml", "parse", stderrors.New("bad yaml"))
	outer := WrapWithOperation("load", "settings", inner)

	assert.Equal(t, ConfigurationErrorCode, CodeOf(outer))
	assert.Equal(t, ConfigurationErrorCode, CodeOf(inner))
	assert.Equal(t, UnknownErrorCode, CodeOf(stderrors.New("plain")))
	assert.Equal(t, UnknownErrorCode, CodeOf(nil))
}

func TestMultipleErrors(t *testing.T) {
	errs := NewMultipleErrors()
	require.NoError(t, errs.ErrorOrNil())

	first := stderrors.New("first")
	errs.Add(first)
	errs.Add(nil)
	errs.Add(stderrors.New("second"))

	require.Error(t, errs.ErrorOrNil())
	assert.Len(t, errs.Errors, 2)
	assert.Contains(t, errs.Error(), "multiple errors (2 total)")
	assert.True(t, stderrors.Is(errs, first))
}
