package preprocess

import (
	"strings"

	"github.com/itsatony/go-preprocess/internal"
)

// MacroTable maps macro names to values. A table is threaded through a run
// and returned to the caller once the run completes.
type MacroTable = internal.MacroTable

// MacroValue is a tagged Integer or Token macro value.
type MacroValue = internal.MacroValue

// MacroKind tags the variant of a MacroValue.
type MacroKind = internal.MacroKind

// Macro kinds
const (
	MacroKindInteger  = internal.MacroKindInteger
	MacroKindToken    = internal.MacroKindToken
	MacroKindFunction = internal.MacroKindFunction
)

// Built-in macros maintained per line and never affected by #define or #undef
const (
	MacroNameFile = internal.MacroNameFile
	MacroNameLine = internal.MacroNameLine
)

// NewMacroTable creates an empty macro table.
func NewMacroTable() *MacroTable {
	return internal.NewMacroTable()
}

// IntegerMacro creates an integer macro value.
func IntegerMacro(n int64) MacroValue {
	return internal.IntegerMacro(n)
}

// TokenMacro creates a token macro value.
func TokenMacro(s string) MacroValue {
	return internal.TokenMacro(s)
}

// ParseMacroKind parses a macro kind name as produced by MacroKind.String.
func ParseMacroKind(name string) (MacroKind, bool) {
	return internal.ParseMacroKind(name)
}

// ParseDefine splits a command line style define "NAME" or "NAME=VALUE".
// A bare name defines the macro as 1, the way compilers treat -DNAME.
func ParseDefine(arg string) (name, value string, err error) {
	name, value, found := strings.Cut(arg, DefineSeparator)
	name = strings.TrimSpace(name)
	if !IsValidMacroName(name) {
		return "", "", NewInvalidMacroNameError(name)
	}
	if !found {
		value = DefaultDefineValue
	}
	return name, strings.TrimSpace(value), nil
}

// IsValidMacroName reports whether name is a C identifier that is not a
// built-in macro.
func IsValidMacroName(name string) bool {
	if name == "" || internal.IsBuiltinMacro(name) {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
