package internal

// Directive keywords recognized after the leading '#'
const (
	KeywordIf      = "if"
	KeywordElif    = "elif"
	KeywordIfdef   = "ifdef"
	KeywordIfndef  = "ifndef"
	KeywordElse    = "else"
	KeywordEndif   = "endif"
	KeywordError   = "error"
	KeywordDefine  = "define"
	KeywordUndef   = "undef"
	KeywordInclude = "include"
)

// Include range markers: "fromto" drops the matching to-line, "fromto_" keeps it
const (
	RangeMarkerExclusive = "fromto"
	RangeMarkerInclusive = "fromto_"
	RangeSeparator       = "@"
)

// Built-in macro names maintained by the interpreter
const (
	MacroNameFile = "__FILE__"
	MacroNameLine = "__LINE__"
)

// Expression keywords
const (
	ExprKeywordDefined    = "defined"
	ExprKeywordNotDefined = "ndefined" // internal form of !defined(X), never user-facing
)

// Character constants
const (
	CharHash        = '#'
	CharDoubleQuote = '"'
	CharSingleQuote = '\''
	CharBackslash   = '\\'
	CharNewline     = '\n'
	CharCarriageRet = '\r'
	CharUnderscore  = '_'
)

// String constants
const (
	StringValueEmpty = ""
	LineTerminator   = "\n"
	LineCommentStart = "//"
)

// Default configuration values
const (
	DefaultMaxIncludeDepth = 64
)

// Log message constants
const (
	LogMsgInterpreterCreated = "interpreter created"
	LogMsgRunStart           = "starting preprocessing run"
	LogMsgRunEnd             = "preprocessing run complete"
	LogMsgFileStart          = "processing file"
	LogMsgFileEnd            = "file processed"
	LogMsgDirective          = "directive"
	LogMsgBranchEvaluated    = "branch evaluated"
	LogMsgMacroDefined       = "macro defined"
	LogMsgMacroUndefined     = "macro undefined"
	LogMsgIncludeResolved    = "include resolved"
	LogMsgIncludeRange       = "include range extracted"
	LogMsgSystemInclude      = "system include left unresolved"
	LogMsgDirIndexBuilt      = "include search index built"
)

// Log field names
const (
	LogFieldFile       = "file"
	LogFieldLine       = "line"
	LogFieldDirective  = "directive"
	LogFieldExpression = "expression"
	LogFieldResult     = "result"
	LogFieldMacro      = "macro"
	LogFieldValue      = "value"
	LogFieldTarget     = "target"
	LogFieldResolved   = "resolved"
	LogFieldDepth      = "depth"
	LogFieldLineCount  = "line_count"
	LogFieldDirCount   = "dir_count"
	LogFieldStartLine  = "start_line"
)
