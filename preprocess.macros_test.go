package preprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefine(t *testing.T) {
	tests := []struct {
		input         string
		expectedName  string
		expectedValue string
		expectError   bool
	}{
		{"DEBUG", "DEBUG", DefaultDefineValue, false},
		{"LEVEL=3", "LEVEL", "3", false},
		{"OS = linux ", "OS", "linux", false},
		{"EMPTY=", "EMPTY", "", false},
		{"EXPR=A+1", "EXPR", "A+1", false},
		{"_x9=1", "_x9", "1", false},
		{"", "", "", true},
		{"9LIVES", "", "", true},
		{"BAD-NAME=1", "", "", true},
		{"__FILE__=x", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			name, value, err := ParseDefine(tt.input)
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedName, name)
			assert.Equal(t, tt.expectedValue, value)
		})
	}
}

func TestIsValidMacroName(t *testing.T) {
	assert.True(t, IsValidMacroName("CONFIG_A"))
	assert.True(t, IsValidMacroName("_"))
	assert.False(t, IsValidMacroName(""))
	assert.False(t, IsValidMacroName("1A"))
	assert.False(t, IsValidMacroName("A.B"))
	assert.False(t, IsValidMacroName(MacroNameFile))
	assert.False(t, IsValidMacroName(MacroNameLine))
}

func TestMacroKindRoundTrip(t *testing.T) {
	for _, kind := range []MacroKind{MacroKindInteger, MacroKindToken, MacroKindFunction} {
		parsed, ok := ParseMacroKind(kind.String())
		require.True(t, ok, kind.String())
		assert.Equal(t, kind, parsed)
	}

	_, ok := ParseMacroKind("float")
	assert.False(t, ok)
}
