package internal

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure the interpreter can raise.
// All kinds are fatal for the run in which they occur.
type ErrorKind string

// Error kind constants
const (
	ErrorKindMalformedDirective    ErrorKind = "MalformedDirective"
	ErrorKindUnbalancedConditional ErrorKind = "UnbalancedConditional"
	ErrorKindUndefinedSymbol       ErrorKind = "UndefinedSymbol"
	ErrorKindExpression            ErrorKind = "ExpressionError"
	ErrorKindMissingInclude        ErrorKind = "MissingInclude"
	ErrorKindUserError             ErrorKind = "UserError"
	ErrorKindIncludeLimit          ErrorKind = "IncludeLimit"
)

// Reasons refine a kind, mostly for the conditional stack
const (
	ReasonUnmatchedEndif      = "UnmatchedEndif"
	ReasonUnterminatedIfBlock = "UnterminatedIfBlock"
	ReasonElifWithoutIf       = "ElifWithoutIf"
	ReasonElseWithoutIf       = "ElseWithoutIf"
	ReasonElifAfterElse       = "ElifAfterElse"
	ReasonElseAfterElse       = "ElseAfterElse"
	ReasonIncludeDepth        = "IncludeDepthExceeded"
	ReasonIncludeCycle        = "IncludeCycle"
	ReasonRangeStartNotFound  = "RangeStartNotFound"
	ReasonFileNotFound        = "FileNotFound"
)

// Error message constants
const (
	ErrMsgUnmatchedEndif      = "#endif without leading #if"
	ErrMsgUnterminatedIfBlock = "unterminated #if block"
	ErrMsgElifWithoutIf       = "#elif without leading #if"
	ErrMsgElseWithoutIf       = "#else without leading #if"
	ErrMsgElifAfterElse       = "illegal #elif after #else in same #if block"
	ErrMsgElseAfterElse       = "illegal #else after #else in same #if block"
	ErrMsgUndefinedSymbol     = "use of undefined symbol"
	ErrMsgExpressionFailed    = "condition expression evaluation failed"
	ErrMsgMissingInclude      = "could not find #include'd file"
	ErrMsgRangeStartNotFound  = "include range start pattern not found"
	ErrMsgIncludeDepth        = "maximum include depth exceeded"
	ErrMsgIncludeCycle        = "include cycle detected"
	ErrMsgUserError           = "#error"
	ErrMsgMissingCondition    = "missing condition expression"
	ErrMsgMissingMacroName    = "missing macro name"
	ErrMsgMissingIncludeName  = "missing include target"
	ErrMsgBadRangeSpec        = "wrong syntax, need #include \"file\" fromto: from-regex@to-regex"
	ErrMsgBadRangePattern     = "invalid include range pattern"
	ErrMsgUnexpectedTrailing  = "unexpected text after include target"
	ErrMsgUnterminatedInclude = "unterminated include target"
	ErrMsgBadMacroParams      = "unterminated macro parameter list"
	ErrMsgSearchRoot          = "search root"
	ErrMsgIncludePaths        = "include paths"
	ErrMsgReadIncludeFailed   = "failed to read included file"
)

// Error format string constants
const (
	ErrFmtWithLocation = "%s: %s"
	ErrFmtWithDetail   = "%s: %s"
	ErrFmtWithCause    = "%s: %v"
	ErrFmtLocation     = "%s:%d"
	ErrFmtOpenedAtLine = "opened at line %d"
)

// SourceLocation identifies the physical line an error was raised on.
type SourceLocation struct {
	File string
	Line int
	Raw  string
}

// String returns "file:line", or the empty string for an unset location.
func (l SourceLocation) String() string {
	if l.File == StringValueEmpty && l.Line == 0 {
		return StringValueEmpty
	}
	return fmt.Sprintf(ErrFmtLocation, l.File, l.Line)
}

// IsZero reports whether no location has been attached yet.
func (l SourceLocation) IsZero() bool {
	return l.File == StringValueEmpty && l.Line == 0
}

// DirectiveError is the single error type the interpreter returns.
type DirectiveError struct {
	Kind     ErrorKind
	Reason   string
	Message  string
	Detail   string
	Symbol   string
	Target   string
	Location SourceLocation
	Cause    error
}

// NewDirectiveError creates a directive error of the given kind.
func NewDirectiveError(kind ErrorKind, reason, message string) *DirectiveError {
	return &DirectiveError{
		Kind:    kind,
		Reason:  reason,
		Message: message,
	}
}

// Error implements the error interface.
func (e *DirectiveError) Error() string {
	result := e.Message
	if e.Detail != StringValueEmpty {
		result = fmt.Sprintf(ErrFmtWithDetail, result, e.Detail)
	}
	if loc := e.Location.String(); loc != StringValueEmpty {
		result = fmt.Sprintf(ErrFmtWithLocation, loc, result)
	}
	if e.Cause != nil {
		result = fmt.Sprintf(ErrFmtWithCause, result, e.Cause)
	}
	return result
}

// Unwrap returns the underlying cause error.
func (e *DirectiveError) Unwrap() error {
	return e.Cause
}

// WithDetail sets a free-form detail and returns the error for chaining.
func (e *DirectiveError) WithDetail(detail string) *DirectiveError {
	e.Detail = detail
	return e
}

// WithCause sets the cause and returns the error for chaining.
func (e *DirectiveError) WithCause(cause error) *DirectiveError {
	e.Cause = cause
	return e
}

// NewMalformedDirectiveError creates an error for structurally broken directive syntax.
func NewMalformedDirectiveError(message, detail string) *DirectiveError {
	return NewDirectiveError(ErrorKindMalformedDirective, StringValueEmpty, message).WithDetail(detail)
}

// NewUnbalancedError creates a conditional nesting error.
func NewUnbalancedError(reason, message string) *DirectiveError {
	return NewDirectiveError(ErrorKindUnbalancedConditional, reason, message)
}

// NewUndefinedSymbolError creates an error for a reference to an unbound macro.
func NewUndefinedSymbolError(name string) *DirectiveError {
	err := NewDirectiveError(ErrorKindUndefinedSymbol, StringValueEmpty, ErrMsgUndefinedSymbol).WithDetail(name)
	err.Symbol = name
	return err
}

// NewExpressionError wraps a tokenizer, parser or evaluator failure.
func NewExpressionError(expr string, cause error) *DirectiveError {
	return NewDirectiveError(ErrorKindExpression, StringValueEmpty, ErrMsgExpressionFailed).
		WithDetail(expr).
		WithCause(cause)
}

// NewMissingIncludeError creates an error for an include target that cannot be located.
func NewMissingIncludeError(reason, message, target string) *DirectiveError {
	err := NewDirectiveError(ErrorKindMissingInclude, reason, message).WithDetail(target)
	err.Target = target
	return err
}

// NewIncludeLimitError creates an error for runaway include recursion.
func NewIncludeLimitError(reason, message, target string) *DirectiveError {
	err := NewDirectiveError(ErrorKindIncludeLimit, reason, message).WithDetail(target)
	err.Target = target
	return err
}

// NewUserError creates the error raised by a live #error directive.
func NewUserError(message string) *DirectiveError {
	return NewDirectiveError(ErrorKindUserError, StringValueEmpty, ErrMsgUserError).WithDetail(message)
}

// AsDirectiveError unwraps err into a *DirectiveError if possible.
func AsDirectiveError(err error) (*DirectiveError, bool) {
	var de *DirectiveError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// attachLocation fills the location of a directive error that does not carry
// one yet. Errors raised inside an included file keep their own location.
func attachLocation(err error, loc SourceLocation) error {
	if err == nil {
		return nil
	}
	if de, ok := AsDirectiveError(err); ok {
		if de.Location.IsZero() {
			de.Location = loc
		}
		return err
	}
	return err
}
