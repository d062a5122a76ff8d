package internal

import "fmt"

// ExprParser parses condition tokens into an AST.
//
// Precedence, lowest first: the and/or tier (&& || & |, all equal),
// equality, relational, additive, multiplicative, unary, primary.
type ExprParser struct {
	tokens []ExprToken
	pos    int
}

// NewExprParser creates a new expression parser
func NewExprParser(tokens []ExprToken) *ExprParser {
	return &ExprParser{
		tokens: tokens,
		pos:    0,
	}
}

// Parse parses the expression and returns the root AST node
func (p *ExprParser) Parse() (ExprNode, error) {
	if len(p.tokens) == 0 || (len(p.tokens) == 1 && p.tokens[0].Type == ExprTokenTypeEOF) {
		return nil, NewExprParseError(ErrMsgExprEmptyExpression, 0, "")
	}

	node, err := p.parseLogical()
	if err != nil {
		return nil, err
	}

	if !p.isAtEnd() {
		return nil, NewExprParseError(ErrMsgExprUnexpectedToken, p.peek().Pos, p.peek().Value)
	}

	return node, nil
}

// parseLogical parses the single and/or tier, left-associative
func (p *ExprParser) parseLogical() (ExprNode, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}

	for p.matchAny(ExprTokenTypeAnd, ExprTokenTypeOr) {
		op := p.previous().Type
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = NewBinary(left, op, right)
	}

	return left, nil
}

// parseEquality parses equality expressions (==, !=)
func (p *ExprParser) parseEquality() (ExprNode, error) {
	return p.parseBinaryLevel(p.parseRelational, ExprTokenTypeEq, ExprTokenTypeNeq)
}

// parseRelational parses comparison expressions (<, >, <=, >=)
func (p *ExprParser) parseRelational() (ExprNode, error) {
	return p.parseBinaryLevel(p.parseAdditive, ExprTokenTypeLt, ExprTokenTypeGt, ExprTokenTypeLte, ExprTokenTypeGte)
}

func (p *ExprParser) parseAdditive() (ExprNode, error) {
	return p.parseBinaryLevel(p.parseMultiplicative, ExprTokenTypePlus, ExprTokenTypeMinus)
}

func (p *ExprParser) parseMultiplicative() (ExprNode, error) {
	return p.parseBinaryLevel(p.parseUnary, ExprTokenTypeStar, ExprTokenTypeSlash)
}

// parseBinaryLevel parses one left-associative precedence level
func (p *ExprParser) parseBinaryLevel(next func() (ExprNode, error), ops ...ExprTokenType) (ExprNode, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}

	for p.matchAny(ops...) {
		op := p.previous().Type
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = NewBinary(left, op, right)
	}

	return left, nil
}

// parseUnary parses unary expressions (!, -). A '!' directly in front of
// defined folds into the negated predicate.
func (p *ExprParser) parseUnary() (ExprNode, error) {
	if p.match(ExprTokenTypeNot) {
		if p.checkKeyword(ExprKeywordDefined) {
			p.advance()
			return p.finishDefined(true)
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return NewUnary(ExprTokenTypeNot, right), nil
	}

	if p.match(ExprTokenTypeMinus) {
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return NewUnary(ExprTokenTypeMinus, right), nil
	}

	return p.parsePrimary()
}

// finishDefined parses the operand of defined, with or without parentheses
func (p *ExprParser) finishDefined(negated bool) (ExprNode, error) {
	if p.match(ExprTokenTypeLParen) {
		if !p.match(ExprTokenTypeIdentifier) {
			return nil, NewExprParseError(ErrMsgExprExpectedName, p.currentPos(), p.peek().Value)
		}
		name := p.previous().Value
		if !p.match(ExprTokenTypeRParen) {
			return nil, NewExprParseError(ErrMsgExprExpectedRParen, p.currentPos(), "")
		}
		return NewDefined(name, negated), nil
	}

	if !p.match(ExprTokenTypeIdentifier) {
		return nil, NewExprParseError(ErrMsgExprExpectedName, p.currentPos(), p.peek().Value)
	}
	return NewDefined(p.previous().Value, negated), nil
}

// parsePrimary parses literals, identifiers, defined and parenthesized expressions
func (p *ExprParser) parsePrimary() (ExprNode, error) {
	if p.match(ExprTokenTypeNumber) {
		return NewLiteral(IntegerVal(p.previous().Literal.(int64))), nil
	}

	if p.match(ExprTokenTypeString) {
		return NewLiteral(TokenVal(p.previous().Literal.(string))), nil
	}

	if p.match(ExprTokenTypeIdentifier) {
		name := p.previous().Value
		if name == ExprKeywordDefined {
			return p.finishDefined(false)
		}
		return NewIdentifier(name), nil
	}

	if p.match(ExprTokenTypeLParen) {
		expr, err := p.parseLogical()
		if err != nil {
			return nil, err
		}

		if !p.match(ExprTokenTypeRParen) {
			return nil, NewExprParseError(ErrMsgExprExpectedRParen, p.currentPos(), "")
		}

		return expr, nil
	}

	if p.isAtEnd() {
		return nil, NewExprParseError(ErrMsgExprUnexpectedEOF, p.currentPos(), "")
	}

	return nil, NewExprParseError(ErrMsgExprUnexpectedToken, p.peek().Pos, p.peek().Value)
}

// Helper methods

// match checks if the current token matches and advances if so
func (p *ExprParser) match(tokenType ExprTokenType) bool {
	if p.check(tokenType) {
		p.advance()
		return true
	}
	return false
}

// matchAny checks if the current token matches any of the given types
func (p *ExprParser) matchAny(types ...ExprTokenType) bool {
	for _, t := range types {
		if p.match(t) {
			return true
		}
	}
	return false
}

// check returns true if the current token is of the given type
func (p *ExprParser) check(tokenType ExprTokenType) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Type == tokenType
}

// checkKeyword reports whether the current token is the given bare identifier
func (p *ExprParser) checkKeyword(keyword string) bool {
	return p.check(ExprTokenTypeIdentifier) && p.peek().Value == keyword
}

// advance moves to the next token and returns the previous one
func (p *ExprParser) advance() ExprToken {
	if !p.isAtEnd() {
		p.pos++
	}
	return p.previous()
}

// peek returns the current token
func (p *ExprParser) peek() ExprToken {
	if p.pos >= len(p.tokens) {
		return ExprToken{Type: ExprTokenTypeEOF, Pos: p.currentPos()}
	}
	return p.tokens[p.pos]
}

// previous returns the previous token
func (p *ExprParser) previous() ExprToken {
	if p.pos == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.pos-1]
}

// isAtEnd returns true if we've consumed all tokens
func (p *ExprParser) isAtEnd() bool {
	return p.pos >= len(p.tokens) || p.tokens[p.pos].Type == ExprTokenTypeEOF
}

// currentPos returns the current position for error reporting
func (p *ExprParser) currentPos() int {
	if p.pos >= len(p.tokens) {
		if len(p.tokens) > 0 {
			return p.tokens[len(p.tokens)-1].Pos
		}
		return 0
	}
	return p.tokens[p.pos].Pos
}

// ExprParseError represents an error during expression parsing
type ExprParseError struct {
	Message string
	Pos     int
	Detail  string
}

// NewExprParseError creates a new expression parse error
func NewExprParseError(message string, pos int, detail string) *ExprParseError {
	return &ExprParseError{
		Message: message,
		Pos:     pos,
		Detail:  detail,
	}
}

// Error implements the error interface
func (e *ExprParseError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s at position %d: %s", e.Message, e.Pos, e.Detail)
	}
	return fmt.Sprintf("%s at position %d", e.Message, e.Pos)
}

// Expression parser error messages
const (
	ErrMsgExprEmptyExpression = "empty expression"
	ErrMsgExprUnexpectedToken = "unexpected token"
	ErrMsgExprExpectedRParen  = "expected closing parenthesis"
	ErrMsgExprExpectedName    = "expected macro name after defined"
	ErrMsgExprUnexpectedEOF   = "unexpected end of expression"
)

// ParseExpression tokenizes and parses a condition string
func ParseExpression(expr string) (ExprNode, error) {
	tokenizer := NewExprTokenizer(expr)
	tokens, err := tokenizer.Tokenize()
	if err != nil {
		return nil, err
	}

	parser := NewExprParser(tokens)
	return parser.Parse()
}
