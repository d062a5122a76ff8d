package internal

import (
	"fmt"
	"regexp"
	"strings"
)

// SymbolTable is the view of the macro table the evaluator needs.
type SymbolTable interface {
	// Resolve returns the value bound to name
	Resolve(name string) (Value, bool)
	// IsDefined reports whether name is a key of the table
	IsDefined(name string) bool
}

// blockCommentPattern matches /* ... */ comments inside a condition
var blockCommentPattern = regexp.MustCompile(`/\*.*?\*/`)

// ExprEvaluator evaluates condition AST nodes against a symbol table
type ExprEvaluator struct {
	symbols SymbolTable
}

// NewExprEvaluator creates a new expression evaluator. A nil table has no bindings.
func NewExprEvaluator(symbols SymbolTable) *ExprEvaluator {
	return &ExprEvaluator{symbols: symbols}
}

// Evaluate evaluates an expression and returns the result
func (e *ExprEvaluator) Evaluate(node ExprNode) (Value, error) {
	if node == nil {
		return Value{}, NewExprEvalError(ErrMsgExprNilNode, "")
	}

	switch n := node.(type) {
	case *LiteralNode:
		return n.Value, nil

	case *IdentifierNode:
		return e.evaluateIdentifier(n)

	case *DefinedNode:
		defined := e.symbols != nil && e.symbols.IsDefined(n.Name)
		return BoolVal(defined != n.Negated), nil

	case *UnaryNode:
		return e.evaluateUnary(n)

	case *BinaryNode:
		return e.evaluateBinary(n)

	default:
		return Value{}, NewExprEvalError(ErrMsgExprUnknownNodeType, fmt.Sprintf("%T", node))
	}
}

// EvaluateBool evaluates an expression and coerces the result to a boolean
func (e *ExprEvaluator) EvaluateBool(node ExprNode) (bool, error) {
	result, err := e.Evaluate(node)
	if err != nil {
		return false, err
	}
	return result.Truthy(), nil
}

// evaluateIdentifier binds a name to its macro value
func (e *ExprEvaluator) evaluateIdentifier(node *IdentifierNode) (Value, error) {
	if e.symbols == nil {
		return Value{}, NewUndefinedSymbolError(node.Name)
	}
	val, found := e.symbols.Resolve(node.Name)
	if !found {
		return Value{}, NewUndefinedSymbolError(node.Name)
	}
	return val, nil
}

// evaluateUnary evaluates a unary operation
func (e *ExprEvaluator) evaluateUnary(node *UnaryNode) (Value, error) {
	right, err := e.Evaluate(node.Right)
	if err != nil {
		return Value{}, err
	}

	switch node.Op {
	case ExprTokenTypeNot:
		return BoolVal(!right.Truthy()), nil
	case ExprTokenTypeMinus:
		n, ok := right.numeric()
		if !ok {
			return Value{}, NewExprEvalError(ErrMsgExprTokenArithmetic, right.String())
		}
		return IntegerVal(-n), nil
	default:
		return Value{}, NewExprEvalError(ErrMsgExprUnknownOperator, string(node.Op))
	}
}

// evaluateBinary evaluates a binary operation. Both operands are always evaluated.
func (e *ExprEvaluator) evaluateBinary(node *BinaryNode) (Value, error) {
	left, err := e.Evaluate(node.Left)
	if err != nil {
		return Value{}, err
	}
	right, err := e.Evaluate(node.Right)
	if err != nil {
		return Value{}, err
	}

	switch node.Op {
	case ExprTokenTypeAnd, ExprTokenTypeOr:
		return combineLogical(node.Op, left, right), nil
	case ExprTokenTypeEq:
		return BoolVal(valuesEqual(left, right)), nil
	case ExprTokenTypeNeq:
		return BoolVal(!valuesEqual(left, right)), nil
	case ExprTokenTypeLt, ExprTokenTypeGt, ExprTokenTypeLte, ExprTokenTypeGte:
		return compareValues(node.Op, left, right)
	case ExprTokenTypePlus, ExprTokenTypeMinus, ExprTokenTypeStar, ExprTokenTypeSlash:
		return arithmetic(node.Op, left, right)
	default:
		return Value{}, NewExprEvalError(ErrMsgExprUnknownOperator, string(node.Op))
	}
}

// combineLogical implements the shared and/or tier. Two bools combine
// logically, numeric operands combine bitwise (so 1 & 2 is 0), anything
// involving a token falls back to truthiness.
func combineLogical(op ExprTokenType, left, right Value) Value {
	if left.Kind == ValueKindBool && right.Kind == ValueKindBool {
		if op == ExprTokenTypeAnd {
			return BoolVal(left.Bool && right.Bool)
		}
		return BoolVal(left.Bool || right.Bool)
	}

	l, lok := left.numeric()
	r, rok := right.numeric()
	if lok && rok {
		if op == ExprTokenTypeAnd {
			return IntegerVal(l & r)
		}
		return IntegerVal(l | r)
	}

	if op == ExprTokenTypeAnd {
		return BoolVal(left.Truthy() && right.Truthy())
	}
	return BoolVal(left.Truthy() || right.Truthy())
}

// valuesEqual compares numerically when both sides are numeric, textually otherwise
func valuesEqual(left, right Value) bool {
	l, lok := left.numeric()
	r, rok := right.numeric()
	if lok && rok {
		return l == r
	}
	if left.Kind == ValueKindToken && right.Kind == ValueKindToken {
		return left.Str == right.Str
	}
	return false
}

// compareValues orders two numeric or two token values
func compareValues(op ExprTokenType, left, right Value) (Value, error) {
	var cmp int

	l, lok := left.numeric()
	r, rok := right.numeric()
	switch {
	case lok && rok:
		switch {
		case l < r:
			cmp = -1
		case l > r:
			cmp = 1
		}
	case left.Kind == ValueKindToken && right.Kind == ValueKindToken:
		cmp = strings.Compare(left.Str, right.Str)
	default:
		return Value{}, NewExprEvalError(ErrMsgExprMixedCompare, fmt.Sprintf("%s %s %s", left.Kind, op, right.Kind))
	}

	switch op {
	case ExprTokenTypeLt:
		return BoolVal(cmp < 0), nil
	case ExprTokenTypeGt:
		return BoolVal(cmp > 0), nil
	case ExprTokenTypeLte:
		return BoolVal(cmp <= 0), nil
	default:
		return BoolVal(cmp >= 0), nil
	}
}

// arithmetic applies + - * / to integer operands with C truncating division
func arithmetic(op ExprTokenType, left, right Value) (Value, error) {
	l, lok := left.numeric()
	r, rok := right.numeric()
	if !lok || !rok {
		return Value{}, NewExprEvalError(ErrMsgExprTokenArithmetic, fmt.Sprintf("%s %s %s", left, op, right))
	}

	switch op {
	case ExprTokenTypePlus:
		return IntegerVal(l + r), nil
	case ExprTokenTypeMinus:
		return IntegerVal(l - r), nil
	case ExprTokenTypeStar:
		return IntegerVal(l * r), nil
	default:
		if r == 0 {
			return Value{}, NewExprEvalError(ErrMsgExprDivisionByZero, "")
		}
		return IntegerVal(l / r), nil
	}
}

// StripConditionComments removes block comments and a trailing line comment
func StripConditionComments(expr string) string {
	expr = blockCommentPattern.ReplaceAllString(expr, " ")
	if idx := strings.Index(expr, LineCommentStart); idx >= 0 {
		expr = expr[:idx]
	}
	return strings.TrimSpace(expr)
}

// EvaluateCondition evaluates an #if/#elif condition against the symbol table.
// Undefined identifiers surface as UndefinedSymbol; every other failure is an
// ExpressionError.
func EvaluateCondition(expr string, symbols SymbolTable) (bool, error) {
	cleaned := StripConditionComments(expr)

	node, err := ParseExpression(cleaned)
	if err != nil {
		return false, NewExpressionError(expr, err)
	}

	result, err := NewExprEvaluator(symbols).EvaluateBool(node)
	if err != nil {
		if _, ok := AsDirectiveError(err); ok {
			return false, err
		}
		return false, NewExpressionError(expr, err)
	}
	return result, nil
}

// EvaluateConstant evaluates raw as a constant integer expression without bindings.
// Comparison results map to 1/0. The second result is false when raw is not a
// constant expression.
func EvaluateConstant(raw string) (int64, bool) {
	node, err := ParseExpression(StripConditionComments(raw))
	if err != nil {
		return 0, false
	}

	result, err := NewExprEvaluator(nil).Evaluate(node)
	if err != nil {
		return 0, false
	}

	n, ok := result.numeric()
	return n, ok
}

// ExprEvalError represents an error during expression evaluation
type ExprEvalError struct {
	Message string
	Detail  string
}

// NewExprEvalError creates a new expression evaluation error
func NewExprEvalError(message string, detail string) *ExprEvalError {
	return &ExprEvalError{
		Message: message,
		Detail:  detail,
	}
}

// Error implements the error interface
func (e *ExprEvalError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// Expression evaluator error messages
const (
	ErrMsgExprNilNode         = "nil expression node"
	ErrMsgExprUnknownNodeType = "unknown expression node type"
	ErrMsgExprUnknownOperator = "unknown operator"
	ErrMsgExprTokenArithmetic = "arithmetic on non-integer operand"
	ErrMsgExprMixedCompare    = "cannot order integer against token"
	ErrMsgExprDivisionByZero  = "division by zero"
)
