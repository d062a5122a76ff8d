package preprocess

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/itsatony/go-cuserr"
	"github.com/itsatony/go-preprocess/internal"
)

// ErrorKind classifies preprocessing failures. Every kind is fatal for the run.
type ErrorKind = internal.ErrorKind

// Error kinds
const (
	ErrorKindMalformedDirective    = internal.ErrorKindMalformedDirective
	ErrorKindUnbalancedConditional = internal.ErrorKindUnbalancedConditional
	ErrorKindUndefinedSymbol       = internal.ErrorKindUndefinedSymbol
	ErrorKindExpression            = internal.ErrorKindExpression
	ErrorKindMissingInclude        = internal.ErrorKindMissingInclude
	ErrorKindUserError             = internal.ErrorKindUserError
	ErrorKindIncludeLimit          = internal.ErrorKindIncludeLimit
	ErrorKindOutputExists          ErrorKind = "OutputExists"
	ErrorKindInput                 ErrorKind = "InputError"
	ErrorKindOutput                ErrorKind = "OutputError"
)

// Reasons refining an error kind
const (
	ReasonUnmatchedEndif      = internal.ReasonUnmatchedEndif
	ReasonUnterminatedIfBlock = internal.ReasonUnterminatedIfBlock
	ReasonElifWithoutIf       = internal.ReasonElifWithoutIf
	ReasonElseWithoutIf       = internal.ReasonElseWithoutIf
	ReasonElifAfterElse       = internal.ReasonElifAfterElse
	ReasonElseAfterElse       = internal.ReasonElseAfterElse
	ReasonIncludeDepth        = internal.ReasonIncludeDepth
	ReasonIncludeCycle        = internal.ReasonIncludeCycle
	ReasonRangeStartNotFound  = internal.ReasonRangeStartNotFound
	ReasonFileNotFound        = internal.ReasonFileNotFound
)

// Location identifies the source line an error was raised on.
type Location = internal.SourceLocation

// kindCodes maps each directive error kind to its cuserr code
var kindCodes = map[ErrorKind]string{
	ErrorKindMalformedDirective:    ErrCodeDirective,
	ErrorKindUnbalancedConditional: ErrCodeConditional,
	ErrorKindUndefinedSymbol:       ErrCodeSymbol,
	ErrorKindExpression:            ErrCodeExpression,
	ErrorKindMissingInclude:        ErrCodeInclude,
	ErrorKindUserError:             ErrCodeUser,
	ErrorKindIncludeLimit:          ErrCodeLimit,
}

// NewMalformedDirectiveError creates an error for a directive with broken syntax
func NewMalformedDirectiveError(msg string, loc Location) error {
	return fromDirectiveError(internal.NewMalformedDirectiveError(msg, loc.Raw), loc)
}

// NewUnbalancedConditionalError creates a conditional nesting error
func NewUnbalancedConditionalError(reason, msg string, loc Location) error {
	return fromDirectiveError(internal.NewUnbalancedError(reason, msg), loc)
}

// NewUndefinedSymbolError creates an error for a condition that references an unbound macro
func NewUndefinedSymbolError(name string, loc Location) error {
	return fromDirectiveError(internal.NewUndefinedSymbolError(name), loc)
}

// NewExpressionError creates an error for a condition that failed to parse or evaluate
func NewExpressionError(expr string, loc Location, cause error) error {
	return fromDirectiveError(internal.NewExpressionError(expr, cause), loc)
}

// NewMissingIncludeError creates an error for an include target that cannot be located
func NewMissingIncludeError(target string, loc Location) error {
	return fromDirectiveError(
		internal.NewMissingIncludeError(ReasonFileNotFound, internal.ErrMsgMissingInclude, target), loc)
}

// NewIncludeLimitError creates an error for include recursion that exceeded the depth limit or cycled
func NewIncludeLimitError(reason, target string, loc Location) error {
	msg := internal.ErrMsgIncludeDepth
	if reason == ReasonIncludeCycle {
		msg = internal.ErrMsgIncludeCycle
	}
	return fromDirectiveError(internal.NewIncludeLimitError(reason, msg, target), loc)
}

// NewUserError creates the error raised by a live #error directive
func NewUserError(message string, loc Location) error {
	return fromDirectiveError(internal.NewUserError(message), loc)
}

// NewOutputExistsError creates an error for an output path that exists while overwrite is off
func NewOutputExistsError(path string) error {
	return cuserr.NewValidationError(ErrCodeOutput, ErrMsgOutputExists).
		WithMetadata(MetaKeyKind, string(ErrorKindOutputExists)).
		WithMetadata(MetaKeyPath, path)
}

// NewInputError creates an error for an unreadable input file
func NewInputError(path string, cause error) error {
	return wrapOrValidation(cause, ErrCodeInput, ErrMsgReadInputFailed).
		WithMetadata(MetaKeyKind, string(ErrorKindInput)).
		WithMetadata(MetaKeyPath, path)
}

// NewOutputError creates an error for an output file that could not be written
func NewOutputError(msg, path string, cause error) error {
	return wrapOrValidation(cause, ErrCodeOutput, msg).
		WithMetadata(MetaKeyKind, string(ErrorKindOutput)).
		WithMetadata(MetaKeyPath, path)
}

// NewConfigError creates a configuration error
func NewConfigError(msg, path string, cause error) error {
	return wrapOrValidation(cause, ErrCodeConfig, msg).
		WithMetadata(MetaKeyPath, path)
}

// NewInvalidMacroNameError creates an error for a -D style define with an unusable name
func NewInvalidMacroNameError(name string) error {
	return cuserr.NewValidationError(ErrCodeConfig, ErrMsgInvalidMacroName).
		WithMetadata(MetaKeyName, name)
}

// ErrDefineSetNotFound is matched by errors.Is for every missing define set or version.
var ErrDefineSetNotFound = errors.New(ErrMsgDefineSetNotFound)

// NewDefineSetNotFoundError creates an error for a missing stored define set
func NewDefineSetNotFoundError(name string) error {
	return cuserr.WrapStdError(ErrDefineSetNotFound, ErrCodeStorage, ErrMsgDefineSetNotFound).
		WithMetadata(MetaKeyName, name)
}

// NewInvalidDefineSetNameError creates an error for an unusable define set name
func NewInvalidDefineSetNameError(name string) error {
	return cuserr.NewValidationError(ErrCodeStorage, ErrMsgInvalidDefineSetName).
		WithMetadata(MetaKeyName, name)
}

func wrapOrValidation(cause error, code, msg string) *cuserr.CustomError {
	if cause != nil {
		return cuserr.WrapStdError(cause, code, msg)
	}
	return cuserr.NewValidationError(code, msg)
}

// convertError turns an interpreter failure into a public error. Context
// cancellation and errors that are already public pass through unchanged.
func convertError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var custom *cuserr.CustomError
	if errors.As(err, &custom) {
		return err
	}
	if de, ok := internal.AsDirectiveError(err); ok {
		return fromDirectiveError(de, de.Location)
	}
	return err
}

// fromDirectiveError wraps a directive error so errors.As still finds the
// original while callers get cuserr metadata.
func fromDirectiveError(de *internal.DirectiveError, loc Location) error {
	if de.Location.IsZero() {
		de.Location = loc
	}
	code, ok := kindCodes[de.Kind]
	if !ok {
		code = ErrCodeDirective
	}

	err := cuserr.WrapStdError(de, code, de.Error()).
		WithMetadata(MetaKeyKind, string(de.Kind))
	if de.Reason != "" {
		err = err.WithMetadata(MetaKeyReason, de.Reason)
	}
	if !de.Location.IsZero() {
		err = err.
			WithMetadata(MetaKeyFile, de.Location.File).
			WithMetadata(MetaKeyLine, strconv.Itoa(de.Location.Line)).
			WithMetadata(MetaKeyRaw, de.Location.Raw)
	}
	if de.Symbol != "" {
		err = err.WithMetadata(MetaKeySymbol, de.Symbol)
	}
	if de.Target != "" {
		err = err.WithMetadata(MetaKeyTarget, de.Target)
	}
	if de.Detail != "" {
		err = err.WithMetadata(MetaKeyDetail, de.Detail)
	}
	return err
}

// ErrorKindOf returns the kind of a preprocessing error, or "" when err is
// not one.
func ErrorKindOf(err error) ErrorKind {
	if de, ok := internal.AsDirectiveError(err); ok {
		return de.Kind
	}
	var custom *cuserr.CustomError
	if errors.As(err, &custom) {
		if kind, ok := custom.GetMetadata(MetaKeyKind); ok {
			return ErrorKind(kind)
		}
	}
	return ""
}

// ErrorReasonOf returns the reason refining the kind of err, if any.
func ErrorReasonOf(err error) string {
	if de, ok := internal.AsDirectiveError(err); ok {
		return de.Reason
	}
	return ""
}

// ErrorLocationOf returns the source location attached to err.
func ErrorLocationOf(err error) (Location, bool) {
	if de, ok := internal.AsDirectiveError(err); ok && !de.Location.IsZero() {
		return de.Location, true
	}
	return Location{}, false
}

// IsKind reports whether err is a preprocessing error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && ErrorKindOf(err) == kind
}

// Describe renders err as a single diagnostic line, followed by the offending
// source line when one is known.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	if de, ok := internal.AsDirectiveError(err); ok {
		if de.Location.Raw != "" {
			return fmt.Sprintf(FmtDiagnosticWithRaw, de.Kind, de.Error(), de.Location.Raw)
		}
		return fmt.Sprintf(FmtDiagnostic, de.Kind, de.Error())
	}
	return err.Error()
}
