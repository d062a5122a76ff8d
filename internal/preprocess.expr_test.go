package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableWith(defs map[string]string) *MacroTable {
	table := NewMacroTable()
	for name, raw := range defs {
		table.Define(name, raw)
	}
	return table
}

func TestExprTokenizer_Tokenize(t *testing.T) {
	tokens, err := NewExprTokenizer(`defined(A) && B >= 0x1F | "x" || !C & 12UL`).Tokenize()
	require.NoError(t, err)

	types := make([]ExprTokenType, 0, len(tokens))
	for _, tok := range tokens {
		types = append(types, tok.Type)
	}
	assert.Equal(t, []ExprTokenType{
		ExprTokenTypeIdentifier, ExprTokenTypeLParen, ExprTokenTypeIdentifier, ExprTokenTypeRParen,
		ExprTokenTypeAnd, ExprTokenTypeIdentifier, ExprTokenTypeGte, ExprTokenTypeNumber,
		ExprTokenTypeOr, ExprTokenTypeString, ExprTokenTypeOr, ExprTokenTypeNot,
		ExprTokenTypeIdentifier, ExprTokenTypeAnd, ExprTokenTypeNumber, ExprTokenTypeEOF,
	}, types)

	assert.Equal(t, int64(31), tokens[7].Literal)
	assert.Equal(t, "x", tokens[9].Literal)
	assert.Equal(t, int64(12), tokens[14].Literal)
}

func TestExprTokenizer_Numbers(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"0", 0},
		{"42", 42},
		{"0x10", 16},
		{"0XfF", 255},
		{"017", 15},
		{"7u", 7},
		{"100L", 100},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, err := NewExprTokenizer(tt.input).Tokenize()
			require.NoError(t, err)
			require.Len(t, tokens, 2)
			assert.Equal(t, tt.expected, tokens[0].Literal)
		})
	}
}

func TestExprTokenizer_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{"bad char", "A $ B", ErrMsgExprUnexpectedChar},
		{"unterminated", `"abc`, ErrMsgExprUnterminatedStr},
		{"bad number", "0x", ErrMsgExprInvalidNumber},
		{"bad digit", "12ab", ErrMsgExprInvalidNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewExprTokenizer(tt.input).Tokenize()
			require.Error(t, err)
			var tokErr *ExprTokenError
			require.ErrorAs(t, err, &tokErr)
			assert.Equal(t, tt.msg, tokErr.Message)
		})
	}
}

func TestParseExpression_Structure(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"A && B || C", "((A AND B) OR C)"},
		{"A || B && C", "((A OR B) AND C)"},
		{"A == 1 && B", "((A EQ 1) AND B)"},
		{"1 + 2 * 3", "(1 PLUS (2 STAR 3))"},
		{"(1 + 2) * 3", "((1 PLUS 2) STAR 3)"},
		{"A < B == 1", "((A LT B) EQ 1)"},
		{"-A", "(MINUS A)"},
		{"!!A", "(NOT (NOT A))"},
		{"defined(A)", "defined(A)"},
		{"defined A", "defined(A)"},
		{"!defined(A)", "ndefined(A)"},
		{"! defined A", "ndefined(A)"},
		{`"abc" == X`, `("abc" EQ X)`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			node, err := ParseExpression(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, node.String())
		})
	}
}

func TestParseExpression_Errors(t *testing.T) {
	tests := []struct {
		input string
		msg   string
	}{
		{"", ErrMsgExprEmptyExpression},
		{"(A", ErrMsgExprExpectedRParen},
		{"A B", ErrMsgExprUnexpectedToken},
		{"A &&", ErrMsgExprUnexpectedEOF},
		{"defined(1)", ErrMsgExprExpectedName},
		{"defined(A", ErrMsgExprExpectedRParen},
		{")", ErrMsgExprUnexpectedToken},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParseExpression(tt.input)
			require.Error(t, err)
			var parseErr *ExprParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tt.msg, parseErr.Message)
		})
	}
}

func TestEvaluateCondition(t *testing.T) {
	table := tableWith(map[string]string{
		"ONE":   "1",
		"TWO":   "2",
		"ZERO":  "0",
		"NAME":  "linux",
		"EMPTY": "",
		"HEX":   "0x10",
	})

	tests := []struct {
		expr     string
		expected bool
	}{
		{"1", true},
		{"0", false},
		{"ONE", true},
		{"ZERO", false},
		{"NAME", true},
		{"EMPTY", false},
		{"defined(ONE)", true},
		{"defined(MISSING)", false},
		{"!defined(MISSING)", true},
		{"!defined MISSING && ONE", true},
		{"defined(ONE) && defined(TWO)", true},
		{"defined(ONE) && defined(MISSING)", false},
		{"defined(MISSING) || defined(TWO)", true},
		{"ONE == 1", true},
		{"TWO != 2", false},
		{"HEX == 16", true},
		{"TWO > ONE", true},
		{"TWO <= ONE", false},
		{"ONE + TWO * 2 == 5", true},
		{"(ONE + TWO) * 2 == 6", true},
		{"TWO / 2 == ONE", true},
		{"7 / 2 == 3", true},
		{"-7 / 2 == -3", true},
		{"ONE - TWO < 0", true},
		{"!ZERO", true},
		{"!NAME", false},
		{`NAME == "linux"`, true},
		{`NAME != "win"`, true},
		{"ONE == 1 && TWO == 2", true},
		{"ONE == 2 || TWO == 2", true},
		{"1 & 2", false},
		{"1 | 2", true},
		{"ONE && NAME", true},
		{"ZERO || NAME", true},
		{"ONE /* comment */ && ONE", true},
		{"ONE // trailing", true},
		{"ZERO /* a */ || /* b */ ONE", true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			result, err := EvaluateCondition(tt.expr, table)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestEvaluateCondition_NoShortCircuit(t *testing.T) {
	table := tableWith(map[string]string{"ZERO": "0"})

	_, err := EvaluateCondition("ZERO && MISSING", table)
	require.Error(t, err)
	de, ok := AsDirectiveError(err)
	require.True(t, ok)
	assert.Equal(t, ErrorKindUndefinedSymbol, de.Kind)
	assert.Equal(t, "MISSING", de.Symbol)
}

func TestEvaluateCondition_Errors(t *testing.T) {
	table := tableWith(map[string]string{"NAME": "linux", "ONE": "1"})

	tests := []struct {
		expr string
		kind ErrorKind
	}{
		{"UNKNOWN", ErrorKindUndefinedSymbol},
		{"ONE + UNKNOWN", ErrorKindUndefinedSymbol},
		{"NAME + 1", ErrorKindExpression},
		{"-NAME", ErrorKindExpression},
		{"ONE / 0", ErrorKindExpression},
		{"NAME < 1", ErrorKindExpression},
		{"(ONE", ErrorKindExpression},
		{"ONE $ 2", ErrorKindExpression},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := EvaluateCondition(tt.expr, table)
			require.Error(t, err)
			de, ok := AsDirectiveError(err)
			require.True(t, ok)
			assert.Equal(t, tt.kind, de.Kind)
		})
	}
}

func TestEvaluateConstant(t *testing.T) {
	tests := []struct {
		raw      string
		expected int64
		ok       bool
	}{
		{"1", 1, true},
		{"0x01", 1, true},
		{"2*2", 4, true},
		{"(1 + 2) * 3", 9, true},
		{"3 > 2", 1, true},
		{"3 < 2", 0, true},
		{"10 / 3", 3, true},
		{"-5", -5, true},
		{"foo", 0, false},
		{`"text"`, 0, false},
		{"1 / 0", 0, false},
		{"a b c", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			n, ok := EvaluateConstant(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, n)
		})
	}
}

func TestStripConditionComments(t *testing.T) {
	assert.Equal(t, "A &&   B", StripConditionComments("A && /* x */ B"))
	assert.Equal(t, "A", StripConditionComments("A // rest"))
	assert.Equal(t, "A", StripConditionComments("  A  "))
}
