package internal

import (
	"fmt"
	"strconv"
	"strings"
)

// ExprTokenType represents the type of an expression token
type ExprTokenType string

// Expression token type constants
const (
	ExprTokenTypeIdentifier ExprTokenType = "IDENT"
	ExprTokenTypeNumber     ExprTokenType = "NUMBER"
	ExprTokenTypeString     ExprTokenType = "STRING"
	ExprTokenTypeLParen     ExprTokenType = "LPAREN"
	ExprTokenTypeRParen     ExprTokenType = "RPAREN"

	// Operators. "&&" and "&" share ExprTokenTypeAnd, "||" and "|" share ExprTokenTypeOr.
	ExprTokenTypeAnd   ExprTokenType = "AND"
	ExprTokenTypeOr    ExprTokenType = "OR"
	ExprTokenTypeNot   ExprTokenType = "NOT"
	ExprTokenTypeEq    ExprTokenType = "EQ"
	ExprTokenTypeNeq   ExprTokenType = "NEQ"
	ExprTokenTypeLt    ExprTokenType = "LT"
	ExprTokenTypeGt    ExprTokenType = "GT"
	ExprTokenTypeLte   ExprTokenType = "LTE"
	ExprTokenTypeGte   ExprTokenType = "GTE"
	ExprTokenTypePlus  ExprTokenType = "PLUS"
	ExprTokenTypeMinus ExprTokenType = "MINUS"
	ExprTokenTypeStar  ExprTokenType = "STAR"
	ExprTokenTypeSlash ExprTokenType = "SLASH"

	ExprTokenTypeEOF ExprTokenType = "EOF"
)

// Expression operator strings
const (
	ExprOpLogicalAnd = "&&"
	ExprOpLogicalOr  = "||"
	ExprOpBitAnd     = "&"
	ExprOpBitOr      = "|"
	ExprOpNot        = "!"
	ExprOpEq         = "=="
	ExprOpNeq        = "!="
	ExprOpLt         = "<"
	ExprOpGt         = ">"
	ExprOpLte        = "<="
	ExprOpGte        = ">="
	ExprOpPlus       = "+"
	ExprOpMinus      = "-"
	ExprOpStar       = "*"
	ExprOpSlash      = "/"
)

// integerSuffixes are C literal suffixes skipped after a number
const integerSuffixes = "uUlL"

// ExprToken represents a token in an expression
type ExprToken struct {
	Type    ExprTokenType
	Value   string
	Pos     int
	Literal any // int64 for numbers, string for quoted literals
}

// String returns the string representation of the token
func (t ExprToken) String() string {
	if t.Value != "" {
		return fmt.Sprintf("%s(%s)", t.Type, t.Value)
	}
	return string(t.Type)
}

// ExprTokenizer tokenizes #if condition strings
type ExprTokenizer struct {
	input string
	pos   int
	len   int
}

// NewExprTokenizer creates a new expression tokenizer
func NewExprTokenizer(input string) *ExprTokenizer {
	return &ExprTokenizer{
		input: input,
		pos:   0,
		len:   len(input),
	}
}

// Tokenize converts the input string into a slice of tokens
func (t *ExprTokenizer) Tokenize() ([]ExprToken, error) {
	var tokens []ExprToken

	for {
		t.skipWhitespace()

		if t.pos >= t.len {
			tokens = append(tokens, ExprToken{Type: ExprTokenTypeEOF, Pos: t.pos})
			break
		}

		token, err := t.nextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}

	return tokens, nil
}

// nextToken reads the next token from the input
func (t *ExprTokenizer) nextToken() (ExprToken, error) {
	startPos := t.pos
	ch := t.peek()

	if ch == CharDoubleQuote || ch == CharSingleQuote {
		return t.readString()
	}

	if isDigit(ch) {
		return t.readNumber()
	}

	if isIdentStart(ch) {
		return t.readIdentifier(), nil
	}

	if t.pos+1 < t.len {
		twoChar := t.input[t.pos : t.pos+2]
		switch twoChar {
		case ExprOpLogicalAnd:
			t.pos += 2
			return ExprToken{Type: ExprTokenTypeAnd, Value: ExprOpLogicalAnd, Pos: startPos}, nil
		case ExprOpLogicalOr:
			t.pos += 2
			return ExprToken{Type: ExprTokenTypeOr, Value: ExprOpLogicalOr, Pos: startPos}, nil
		case ExprOpEq:
			t.pos += 2
			return ExprToken{Type: ExprTokenTypeEq, Value: ExprOpEq, Pos: startPos}, nil
		case ExprOpNeq:
			t.pos += 2
			return ExprToken{Type: ExprTokenTypeNeq, Value: ExprOpNeq, Pos: startPos}, nil
		case ExprOpLte:
			t.pos += 2
			return ExprToken{Type: ExprTokenTypeLte, Value: ExprOpLte, Pos: startPos}, nil
		case ExprOpGte:
			t.pos += 2
			return ExprToken{Type: ExprTokenTypeGte, Value: ExprOpGte, Pos: startPos}, nil
		}
	}

	t.pos++
	switch ch {
	case '(':
		return ExprToken{Type: ExprTokenTypeLParen, Value: "(", Pos: startPos}, nil
	case ')':
		return ExprToken{Type: ExprTokenTypeRParen, Value: ")", Pos: startPos}, nil
	case '&':
		return ExprToken{Type: ExprTokenTypeAnd, Value: ExprOpBitAnd, Pos: startPos}, nil
	case '|':
		return ExprToken{Type: ExprTokenTypeOr, Value: ExprOpBitOr, Pos: startPos}, nil
	case '!':
		return ExprToken{Type: ExprTokenTypeNot, Value: ExprOpNot, Pos: startPos}, nil
	case '<':
		return ExprToken{Type: ExprTokenTypeLt, Value: ExprOpLt, Pos: startPos}, nil
	case '>':
		return ExprToken{Type: ExprTokenTypeGt, Value: ExprOpGt, Pos: startPos}, nil
	case '+':
		return ExprToken{Type: ExprTokenTypePlus, Value: ExprOpPlus, Pos: startPos}, nil
	case '-':
		return ExprToken{Type: ExprTokenTypeMinus, Value: ExprOpMinus, Pos: startPos}, nil
	case '*':
		return ExprToken{Type: ExprTokenTypeStar, Value: ExprOpStar, Pos: startPos}, nil
	case '/':
		return ExprToken{Type: ExprTokenTypeSlash, Value: ExprOpSlash, Pos: startPos}, nil
	}

	return ExprToken{}, NewExprTokenError(ErrMsgExprUnexpectedChar, startPos, string(ch))
}

// readString reads a quoted literal; its value becomes a Token operand
func (t *ExprTokenizer) readString() (ExprToken, error) {
	startPos := t.pos
	quote := t.input[t.pos]
	t.pos++

	var sb strings.Builder
	for t.pos < t.len {
		ch := t.input[t.pos]
		if ch == quote {
			t.pos++
			value := sb.String()
			return ExprToken{
				Type:    ExprTokenTypeString,
				Value:   value,
				Pos:     startPos,
				Literal: value,
			}, nil
		}
		if ch == CharBackslash && t.pos+1 < t.len {
			t.pos++
			switch escaped := t.input[t.pos]; escaped {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '0':
				sb.WriteByte(0)
			default:
				sb.WriteByte(escaped)
			}
			t.pos++
			continue
		}
		sb.WriteByte(ch)
		t.pos++
	}

	return ExprToken{}, NewExprTokenError(ErrMsgExprUnterminatedStr, startPos, "")
}

// readNumber reads a decimal, hex or octal integer literal.
// Trailing u/U/l/L suffixes are accepted and ignored.
func (t *ExprTokenizer) readNumber() (ExprToken, error) {
	startPos := t.pos

	for t.pos < t.len && isIdentPart(t.input[t.pos]) {
		t.pos++
	}

	value := t.input[startPos:t.pos]
	digits := strings.TrimRight(value, integerSuffixes)

	literal, err := strconv.ParseInt(digits, 0, 64)
	if err != nil {
		return ExprToken{}, NewExprTokenError(ErrMsgExprInvalidNumber, startPos, value)
	}

	return ExprToken{
		Type:    ExprTokenTypeNumber,
		Value:   value,
		Pos:     startPos,
		Literal: literal,
	}, nil
}

// readIdentifier reads a C identifier
func (t *ExprTokenizer) readIdentifier() ExprToken {
	startPos := t.pos

	for t.pos < t.len && isIdentPart(t.input[t.pos]) {
		t.pos++
	}

	return ExprToken{Type: ExprTokenTypeIdentifier, Value: t.input[startPos:t.pos], Pos: startPos}
}

// peek returns the current character without advancing
func (t *ExprTokenizer) peek() byte {
	if t.pos >= t.len {
		return 0
	}
	return t.input[t.pos]
}

// skipWhitespace skips whitespace characters
func (t *ExprTokenizer) skipWhitespace() {
	for t.pos < t.len {
		switch t.input[t.pos] {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			t.pos++
		default:
			return
		}
	}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return ch == CharUnderscore || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

// ExprTokenError represents an error during expression tokenization
type ExprTokenError struct {
	Message string
	Pos     int
	Detail  string
}

// NewExprTokenError creates a new expression token error
func NewExprTokenError(message string, pos int, detail string) *ExprTokenError {
	return &ExprTokenError{
		Message: message,
		Pos:     pos,
		Detail:  detail,
	}
}

// Error implements the error interface
func (e *ExprTokenError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s at position %d: %s", e.Message, e.Pos, e.Detail)
	}
	return fmt.Sprintf("%s at position %d", e.Message, e.Pos)
}

// Expression tokenizer error messages
const (
	ErrMsgExprUnexpectedChar  = "unexpected character"
	ErrMsgExprUnterminatedStr = "unterminated string literal"
	ErrMsgExprInvalidNumber   = "invalid number format"
)
