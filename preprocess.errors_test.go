package preprocess

import (
	"context"
	"errors"
	"testing"

	"github.com/itsatony/go-cuserr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectiveErrorConstructors(t *testing.T) {
	loc := Location{File: "main.c", Line: 7, Raw: "#endif"}

	tests := []struct {
		name           string
		err            error
		expectedKind   ErrorKind
		expectedReason string
	}{
		{"malformed", NewMalformedDirectiveError("bad", loc), ErrorKindMalformedDirective, ""},
		{"unbalanced", NewUnbalancedConditionalError(ReasonUnmatchedEndif, "stray", loc), ErrorKindUnbalancedConditional, ReasonUnmatchedEndif},
		{"undefined symbol", NewUndefinedSymbolError("FOO", loc), ErrorKindUndefinedSymbol, ""},
		{"expression", NewExpressionError("1 /", loc, errors.New("unexpected end")), ErrorKindExpression, ""},
		{"missing include", NewMissingIncludeError("x.h", loc), ErrorKindMissingInclude, ReasonFileNotFound},
		{"include depth", NewIncludeLimitError(ReasonIncludeDepth, "deep.h", loc), ErrorKindIncludeLimit, ReasonIncludeDepth},
		{"include cycle", NewIncludeLimitError(ReasonIncludeCycle, "a.h", loc), ErrorKindIncludeLimit, ReasonIncludeCycle},
		{"user", NewUserError("stop here", loc), ErrorKindUserError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.err)
			assert.Equal(t, tt.expectedKind, ErrorKindOf(tt.err))
			assert.True(t, IsKind(tt.err, tt.expectedKind))
			assert.Equal(t, tt.expectedReason, ErrorReasonOf(tt.err))

			var customErr *cuserr.CustomError
			require.True(t, errors.As(tt.err, &customErr))

			kind, ok := customErr.GetMetadata(MetaKeyKind)
			require.True(t, ok)
			assert.Equal(t, string(tt.expectedKind), kind)

			line, ok := customErr.GetMetadata(MetaKeyLine)
			require.True(t, ok)
			assert.Equal(t, "7", line)

			file, ok := customErr.GetMetadata(MetaKeyFile)
			require.True(t, ok)
			assert.Equal(t, "main.c", file)

			got, ok := ErrorLocationOf(tt.err)
			require.True(t, ok)
			assert.Equal(t, loc, got)
		})
	}
}

func TestDirectiveErrorMetadata(t *testing.T) {
	loc := Location{File: "a.c", Line: 3, Raw: "#if FOO"}

	var customErr *cuserr.CustomError
	require.True(t, errors.As(NewUndefinedSymbolError("FOO", loc), &customErr))
	symbol, ok := customErr.GetMetadata(MetaKeySymbol)
	require.True(t, ok)
	assert.Equal(t, "FOO", symbol)

	raw, ok := customErr.GetMetadata(MetaKeyRaw)
	require.True(t, ok)
	assert.Equal(t, "#if FOO", raw)

	require.True(t, errors.As(NewMissingIncludeError("x.h", loc), &customErr))
	target, ok := customErr.GetMetadata(MetaKeyTarget)
	require.True(t, ok)
	assert.Equal(t, "x.h", target)
}

func TestRunErrorConstructors(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name         string
		err          error
		expectedKind ErrorKind
		expectedMsg  string
	}{
		{"output exists", NewOutputExistsError("out.c"), ErrorKindOutputExists, ErrMsgOutputExists},
		{"input", NewInputError("in.c", cause), ErrorKindInput, ErrMsgReadInputFailed},
		{"output", NewOutputError(ErrMsgWriteOutputFailed, "out.c", cause), ErrorKindOutput, ErrMsgWriteOutputFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedKind, ErrorKindOf(tt.err))
			assert.Contains(t, tt.err.Error(), tt.expectedMsg)

			var customErr *cuserr.CustomError
			require.True(t, errors.As(tt.err, &customErr))
			path, ok := customErr.GetMetadata(MetaKeyPath)
			require.True(t, ok)
			assert.NotEmpty(t, path)

			_, hasLoc := ErrorLocationOf(tt.err)
			assert.False(t, hasLoc)
		})
	}

	assert.ErrorIs(t, NewInputError("in.c", cause), cause)
}

func TestDefineSetErrors(t *testing.T) {
	err := NewDefineSetNotFoundError("board")
	assert.ErrorIs(t, err, ErrDefineSetNotFound)

	var customErr *cuserr.CustomError
	require.True(t, errors.As(err, &customErr))
	name, ok := customErr.GetMetadata(MetaKeyName)
	require.True(t, ok)
	assert.Equal(t, "board", name)

	versionErr := NewDefineSetVersionNotFoundError("board", 3)
	assert.ErrorIs(t, versionErr, ErrDefineSetNotFound)
	assert.Contains(t, versionErr.Error(), "board v3")

	assert.Error(t, NewInvalidDefineSetNameError("../x"))
	assert.Empty(t, ErrorKindOf(NewInvalidDefineSetNameError("../x")))
}

func TestConvertError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, convertError(nil))
	})

	t.Run("context errors pass through", func(t *testing.T) {
		assert.Equal(t, context.Canceled, convertError(context.Canceled))
	})

	t.Run("public errors pass through", func(t *testing.T) {
		err := NewOutputExistsError("x")
		assert.Equal(t, err, convertError(err))
	})

	t.Run("plain errors pass through", func(t *testing.T) {
		err := errors.New("plain")
		assert.Equal(t, err, convertError(err))
		assert.Empty(t, ErrorKindOf(err))
	})
}

func TestDescribe(t *testing.T) {
	assert.Empty(t, Describe(nil))

	loc := Location{File: "main.c", Line: 2, Raw: "#else"}
	desc := Describe(NewUnbalancedConditionalError(ReasonElseWithoutIf, "else without if", loc))
	assert.Contains(t, desc, string(ErrorKindUnbalancedConditional))
	assert.Contains(t, desc, "#else")

	assert.Equal(t, "plain", Describe(errors.New("plain")))
}
