package internal

import (
	"fmt"
	"strconv"
)

// ValueKind identifies the variant held by a Value
type ValueKind int

// Value kind constants
const (
	ValueKindInteger ValueKind = iota
	ValueKindToken
	ValueKindBool
)

// Value kind names for debugging
const (
	ValueKindNameInteger = "INTEGER"
	ValueKindNameToken   = "TOKEN"
	ValueKindNameBool    = "BOOL"
)

// String returns the string representation of the value kind
func (k ValueKind) String() string {
	switch k {
	case ValueKindToken:
		return ValueKindNameToken
	case ValueKindBool:
		return ValueKindNameBool
	default:
		return ValueKindNameInteger
	}
}

// Value is the closed operand type of condition expressions: Integer | Token | Bool.
type Value struct {
	Kind ValueKind
	Int  int64
	Str  string
	Bool bool
}

// IntegerVal creates an integer value
func IntegerVal(n int64) Value { return Value{Kind: ValueKindInteger, Int: n} }

// TokenVal creates an opaque token value
func TokenVal(s string) Value { return Value{Kind: ValueKindToken, Str: s} }

// BoolVal creates a boolean value
func BoolVal(b bool) Value { return Value{Kind: ValueKindBool, Bool: b} }

// Truthy applies the coercion rules: nonzero integer, non-empty token, true bool.
func (v Value) Truthy() bool {
	switch v.Kind {
	case ValueKindToken:
		return v.Str != StringValueEmpty
	case ValueKindBool:
		return v.Bool
	default:
		return v.Int != 0
	}
}

// numeric returns the value as an integer; bools count as 0/1, tokens do not convert.
func (v Value) numeric() (int64, bool) {
	switch v.Kind {
	case ValueKindInteger:
		return v.Int, true
	case ValueKindBool:
		if v.Bool {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// String returns the value's textual form
func (v Value) String() string {
	switch v.Kind {
	case ValueKindToken:
		return v.Str
	case ValueKindBool:
		return strconv.FormatBool(v.Bool)
	default:
		return strconv.FormatInt(v.Int, 10)
	}
}

// ExprNodeType identifies the type of expression AST node
type ExprNodeType int

// Expression node type constants
const (
	ExprNodeTypeLiteral ExprNodeType = iota
	ExprNodeTypeIdentifier
	ExprNodeTypeDefined
	ExprNodeTypeUnary
	ExprNodeTypeBinary
)

// Expression node type names for debugging
const (
	ExprNodeTypeNameLiteral    = "LITERAL"
	ExprNodeTypeNameIdentifier = "IDENTIFIER"
	ExprNodeTypeNameDefined    = "DEFINED"
	ExprNodeTypeNameUnary      = "UNARY"
	ExprNodeTypeNameBinary     = "BINARY"
)

// String returns the string representation of the node type
func (t ExprNodeType) String() string {
	switch t {
	case ExprNodeTypeIdentifier:
		return ExprNodeTypeNameIdentifier
	case ExprNodeTypeDefined:
		return ExprNodeTypeNameDefined
	case ExprNodeTypeUnary:
		return ExprNodeTypeNameUnary
	case ExprNodeTypeBinary:
		return ExprNodeTypeNameBinary
	default:
		return ExprNodeTypeNameLiteral
	}
}

// ExprNode is the interface for all expression AST nodes
type ExprNode interface {
	// Type returns the node type
	Type() ExprNodeType
	// String returns a string representation for debugging
	String() string
	exprNode()
}

// LiteralNode represents an integer or quoted token literal
type LiteralNode struct {
	Value Value
}

func (n *LiteralNode) Type() ExprNodeType { return ExprNodeTypeLiteral }
func (n *LiteralNode) exprNode()          {}

func (n *LiteralNode) String() string {
	if n.Value.Kind == ValueKindToken {
		return strconv.Quote(n.Value.Str)
	}
	return n.Value.String()
}

// IdentifierNode represents a macro reference
type IdentifierNode struct {
	Name string
}

func (n *IdentifierNode) Type() ExprNodeType { return ExprNodeTypeIdentifier }
func (n *IdentifierNode) exprNode()          {}

func (n *IdentifierNode) String() string {
	return n.Name
}

// DefinedNode is the defined(X) predicate; Negated makes it ndefined(X).
type DefinedNode struct {
	Name    string
	Negated bool
}

func (n *DefinedNode) Type() ExprNodeType { return ExprNodeTypeDefined }
func (n *DefinedNode) exprNode()          {}

func (n *DefinedNode) String() string {
	if n.Negated {
		return fmt.Sprintf("%s(%s)", ExprKeywordNotDefined, n.Name)
	}
	return fmt.Sprintf("%s(%s)", ExprKeywordDefined, n.Name)
}

// UnaryNode represents a unary operation (!x, -x)
type UnaryNode struct {
	Op    ExprTokenType
	Right ExprNode
}

func (n *UnaryNode) Type() ExprNodeType { return ExprNodeTypeUnary }
func (n *UnaryNode) exprNode()          {}

func (n *UnaryNode) String() string {
	return fmt.Sprintf("(%s %s)", n.Op, n.Right.String())
}

// BinaryNode represents a binary operation
type BinaryNode struct {
	Left  ExprNode
	Op    ExprTokenType
	Right ExprNode
}

func (n *BinaryNode) Type() ExprNodeType { return ExprNodeTypeBinary }
func (n *BinaryNode) exprNode()          {}

func (n *BinaryNode) String() string {
	return fmt.Sprintf("(%s %s %s)", n.Left.String(), n.Op, n.Right.String())
}

// NewLiteral creates a literal node
func NewLiteral(value Value) *LiteralNode {
	return &LiteralNode{Value: value}
}

// NewIdentifier creates an identifier node
func NewIdentifier(name string) *IdentifierNode {
	return &IdentifierNode{Name: name}
}

// NewDefined creates a defined/ndefined predicate node
func NewDefined(name string, negated bool) *DefinedNode {
	return &DefinedNode{Name: name, Negated: negated}
}

// NewUnary creates a unary operation node
func NewUnary(op ExprTokenType, right ExprNode) *UnaryNode {
	return &UnaryNode{Op: op, Right: right}
}

// NewBinary creates a binary operation node
func NewBinary(left ExprNode, op ExprTokenType, right ExprNode) *BinaryNode {
	return &BinaryNode{Left: left, Op: op, Right: right}
}
