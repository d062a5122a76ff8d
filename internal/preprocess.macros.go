package internal

import (
	"sort"
	"strconv"
	"strings"
)

// MacroKind tags the variant of a MacroValue
type MacroKind int

// Macro kind constants
const (
	MacroKindInteger MacroKind = iota
	MacroKindToken
	MacroKindFunction
)

// Macro kind names
const (
	MacroKindNameInteger  = "integer"
	MacroKindNameToken    = "token"
	MacroKindNameFunction = "function"
)

// String returns the macro kind name
func (k MacroKind) String() string {
	switch k {
	case MacroKindToken:
		return MacroKindNameToken
	case MacroKindFunction:
		return MacroKindNameFunction
	default:
		return MacroKindNameInteger
	}
}

// ParseMacroKind is the inverse of MacroKind.String
func ParseMacroKind(name string) (MacroKind, bool) {
	switch name {
	case MacroKindNameInteger:
		return MacroKindInteger, true
	case MacroKindNameToken:
		return MacroKindToken, true
	case MacroKindNameFunction:
		return MacroKindFunction, true
	default:
		return MacroKindInteger, false
	}
}

// MacroValue is the tagged union stored in a MacroTable. Function-like macros
// keep their body as text and never take part in substitution.
type MacroValue struct {
	Kind MacroKind
	Int  int64
	Text string
}

// IntegerMacro creates an integer macro value
func IntegerMacro(n int64) MacroValue { return MacroValue{Kind: MacroKindInteger, Int: n} }

// TokenMacro creates an opaque token macro value
func TokenMacro(s string) MacroValue { return MacroValue{Kind: MacroKindToken, Text: s} }

// FunctionMacro creates a function-like macro value holding its body
func FunctionMacro(body string) MacroValue { return MacroValue{Kind: MacroKindFunction, Text: body} }

// String returns the replacement text of the value
func (v MacroValue) String() string {
	if v.Kind == MacroKindInteger {
		return strconv.FormatInt(v.Int, 10)
	}
	return v.Text
}

// Truthy reports the boolean coercion of the value
func (v MacroValue) Truthy() bool {
	return v.AsValue().Truthy()
}

// AsValue converts the macro value to an expression operand
func (v MacroValue) AsValue() Value {
	if v.Kind == MacroKindInteger {
		return IntegerVal(v.Int)
	}
	return TokenVal(v.Text)
}

// IsBuiltinMacro reports whether name is maintained by the interpreter
func IsBuiltinMacro(name string) bool {
	return name == MacroNameFile || name == MacroNameLine
}

// MacroTable maps macro names to values. It is owned by one run at a time
// and is not safe for concurrent use.
type MacroTable struct {
	entries map[string]MacroValue
	order   map[byte][]string // substitution candidates by first byte, nil when stale
}

// NewMacroTable creates an empty macro table
func NewMacroTable() *MacroTable {
	return &MacroTable{entries: make(map[string]MacroValue)}
}

// Define binds name from the raw text of a #define. A raw value naming an
// existing macro copies that macro's current value; otherwise raw is
// evaluated as a constant expression, falling back to an opaque token.
// Built-in names are ignored.
func (t *MacroTable) Define(name, raw string) MacroValue {
	raw = strings.TrimSpace(raw)

	var value MacroValue
	if existing, ok := t.entries[raw]; ok && raw != StringValueEmpty {
		value = existing
	} else if raw == StringValueEmpty {
		value = TokenMacro(StringValueEmpty)
	} else if n, ok := EvaluateConstant(raw); ok {
		value = IntegerMacro(n)
	} else {
		value = TokenMacro(raw)
	}

	if IsBuiltinMacro(name) {
		return value
	}
	t.store(name, value)
	return value
}

// DefineFunctionLike registers a function-like macro by name
func (t *MacroTable) DefineFunctionLike(name, body string) {
	if IsBuiltinMacro(name) {
		return
	}
	t.store(name, FunctionMacro(strings.TrimSpace(body)))
}

// Set binds name to value directly, including built-ins
func (t *MacroTable) Set(name string, value MacroValue) {
	t.store(name, value)
}

// SetBuiltins refreshes __FILE__ and __LINE__
func (t *MacroTable) SetBuiltins(file string, line int) {
	t.store(MacroNameFile, TokenMacro(file))
	t.store(MacroNameLine, IntegerMacro(int64(line)))
}

// Undef removes name; an absent name is not an error. Built-ins are ignored.
func (t *MacroTable) Undef(name string) bool {
	if IsBuiltinMacro(name) {
		return false
	}
	if _, ok := t.entries[name]; !ok {
		return false
	}
	delete(t.entries, name)
	t.order = nil
	return true
}

// Lookup returns the value bound to name
func (t *MacroTable) Lookup(name string) (MacroValue, bool) {
	v, ok := t.entries[name]
	return v, ok
}

// Has reports whether name is defined
func (t *MacroTable) Has(name string) bool {
	_, ok := t.entries[name]
	return ok
}

// Resolve implements SymbolTable
func (t *MacroTable) Resolve(name string) (Value, bool) {
	v, ok := t.entries[name]
	if !ok {
		return Value{}, false
	}
	return v.AsValue(), true
}

// IsDefined implements SymbolTable
func (t *MacroTable) IsDefined(name string) bool {
	return t.Has(name)
}

// Len returns the number of entries, built-ins included
func (t *MacroTable) Len() int {
	return len(t.entries)
}

// Names returns all defined names in sorted order
func (t *MacroTable) Names() []string {
	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns a copy of the entries
func (t *MacroTable) Snapshot() map[string]MacroValue {
	out := make(map[string]MacroValue, len(t.entries))
	for k, v := range t.entries {
		out[k] = v
	}
	return out
}

// Clone returns an independent copy of the table
func (t *MacroTable) Clone() *MacroTable {
	return &MacroTable{entries: t.Snapshot()}
}

// Substitute replaces macro names in text with their values in one
// left-to-right pass. At each position the longest matching name wins and
// replaced text is not rescanned. With wholeWord set a name only matches at
// identifier boundaries.
func (t *MacroTable) Substitute(text string, wholeWord bool) string {
	if len(t.entries) == 0 || text == StringValueEmpty {
		return text
	}
	order := t.substitutionOrder()

	var sb strings.Builder
	sb.Grow(len(text))

	i := 0
	for i < len(text) {
		ch := text[i]
		if wholeWord && i > 0 && isIdentPart(text[i-1]) {
			sb.WriteByte(ch)
			i++
			continue
		}

		matched := false
		for _, name := range order[ch] {
			if !strings.HasPrefix(text[i:], name) {
				continue
			}
			end := i + len(name)
			if wholeWord && end < len(text) && isIdentPart(text[end]) {
				continue
			}
			sb.WriteString(t.entries[name].String())
			i = end
			matched = true
			break
		}
		if !matched {
			sb.WriteByte(ch)
			i++
		}
	}
	return sb.String()
}

// substitutionOrder buckets substitutable names by first byte, longest
// first with ties broken lexicographically.
func (t *MacroTable) substitutionOrder() map[byte][]string {
	if t.order != nil {
		return t.order
	}
	order := make(map[byte][]string)
	for name, v := range t.entries {
		if name == StringValueEmpty || v.Kind == MacroKindFunction {
			continue
		}
		order[name[0]] = append(order[name[0]], name)
	}
	for _, names := range order {
		sort.Slice(names, func(i, j int) bool {
			if len(names[i]) != len(names[j]) {
				return len(names[i]) > len(names[j])
			}
			return names[i] < names[j]
		})
	}
	t.order = order
	return order
}

// store writes an entry and invalidates the substitution order on key or kind changes
func (t *MacroTable) store(name string, value MacroValue) {
	if t.entries == nil {
		t.entries = make(map[string]MacroValue)
	}
	old, exists := t.entries[name]
	t.entries[name] = value
	if !exists || (old.Kind == MacroKindFunction) != (value.Kind == MacroKindFunction) {
		t.order = nil
	}
}
