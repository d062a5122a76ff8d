package main

// CLI name
const CLIName = "go-preprocess"

// Command names
const (
	CmdNameRun     = "run"
	CmdNameBatch   = "batch"
	CmdNameEval    = "eval"
	CmdNameStore   = "store"
	CmdNameVersion = "version"
	CmdNameHelp    = "help"
)

// Store subcommand names
const (
	StoreCmdList   = "list"
	StoreCmdShow   = "show"
	StoreCmdDelete = "delete"
)

// Flag names - long form
const (
	FlagInput             = "input"
	FlagOutput            = "output"
	FlagRoot              = "root"
	FlagDefine            = "D"
	FlagIncludePath       = "I"
	FlagConfig            = "config"
	FlagKeepLines         = "keep-lines"
	FlagSubstitute        = "substitute"
	FlagIncludeSubstitute = "include-substitute"
	FlagNoEcho            = "no-echo"
	FlagForce             = "force"
	FlagMaxDepth          = "max-depth"
	FlagStore             = "store"
	FlagDSN               = "dsn"
	FlagLoad              = "load"
	FlagSave              = "save"
	FlagVerbose           = "verbose"
	FlagOut               = "out"
	FlagExt               = "ext"
	FlagFormat            = "format"
)

// Flag names - short form
const (
	FlagInputShort   = "i"
	FlagOutputShort  = "o"
	FlagRootShort    = "r"
	FlagConfigShort  = "c"
	FlagForceShort   = "f"
	FlagVerboseShort = "v"
	FlagFormatShort  = "F"
)

// Flag default values
const (
	FlagDefaultOutput = "-" // stdout
	FlagDefaultFormat = "text"
	FlagDefaultStore  = "filesystem"
)

// Output formats
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
)

// Exit codes
const (
	ExitCodeSuccess         = 0
	ExitCodeError           = 1
	ExitCodeUsageError      = 2
	ExitCodeValidationError = 3
	ExitCodeInputError      = 4
)

// Input source indicators
const (
	InputSourceStdin = "-"
	StdinName        = "<stdin>"
)

// Eval results
const (
	EvalResultTrue  = "true"
	EvalResultFalse = "false"
)

// File permissions
const FilePermissions = 0o644

// Separators
const (
	ExtSeparator    = ","
	DefineFlagUsage = "NAME[=VALUE]"
)

// Error messages - ALL must be constants
const (
	ErrMsgUnknownCommand      = "unknown command"
	ErrMsgUnknownStoreCommand = "unknown store command"
	ErrMsgInvalidFlags        = "invalid flags"
	ErrMsgMissingInput        = "input file required"
	ErrMsgMissingExpression   = "expression required"
	ErrMsgMissingSetName      = "define set name required"
	ErrMsgMissingDSN          = "store connection string required"
	ErrMsgMissingOutDir       = "output directory required"
	ErrMsgReadFileFailed      = "failed to read file"
	ErrMsgWriteOutputFailed   = "failed to write output"
	ErrMsgConfigFailed        = "failed to load config"
	ErrMsgEngineFailed        = "failed to create engine"
	ErrMsgProcessFailed       = "preprocessing failed"
	ErrMsgEvalFailed          = "expression evaluation failed"
	ErrMsgStoreOpenFailed     = "failed to open define store"
	ErrMsgStoreLoadFailed     = "failed to load define set"
	ErrMsgStoreSaveFailed     = "failed to save define set"
	ErrMsgStoreOpFailed       = "define store operation failed"
	ErrMsgLoggerFailed        = "failed to create logger"
	ErrMsgInvalidFormat       = "invalid output format"
	ErrMsgOutputExists        = "output exists, use --force to replace it"
)

// Output formats for messages
const (
	FmtErrorWithDetail = "%s: %s\n"
	FmtErrorWithCause  = "%s: %v\n"
	FmtNewline         = "\n"
	FmtWorkspaceFile   = "%s -> %s\n"
	FmtSavedDefineSet  = "saved %s v%d\n"
	FmtDefineSetHeader = "%s v%d\n"
	FmtStoredMacro     = "  %s %s = %s\n"
	FmtListItem        = "%s\n"
	FmtDeletedSet      = "deleted %s\n"
)

// Version information
const (
	VersionUnknown      = "unknown"
	VersionTextTemplate = "go-preprocess version %s\nCommit: %s\nBranch: %s\nBuilt: %s\nGo: %s"
)

// Help text templates
const (
	HelpMainUsage = `go-preprocess - C-style conditional compilation preprocessor

Usage:
  preprocess <command> [options]

Commands:
  run       Preprocess one file
  batch     Preprocess every matching file below the search root
  eval      Evaluate a condition against -D defines
  store     List, show or delete stored define sets
  version   Show version information
  help      Show help for a command

Run 'preprocess help <command>' for more information on a command.`

	HelpRunUsage = `Usage: preprocess run [options]

Preprocess one file.

Options:
  -i, --input <file>         Input file (use - for stdin)
  -o, --output <file>        Output file (default: stdout)
  -r, --root <dir>           Search root for #include resolution
  -I <dir>                   Additional include directory (repeatable)
  -D NAME[=VALUE]            Define a macro, VALUE defaults to 1 (repeatable)
  -c, --config <file>        YAML or HCL config file
  --keep-lines               Emit blank lines for suppressed lines
  --substitute               Substitute macro values into content lines
  --include-substitute       Substitute macro values into include targets
  --no-echo                  Do not echo #define and #include lines
  -f, --force                Replace an existing output file
  --max-depth <n>            Maximum include nesting depth
  --store <driver>           Define store driver: memory, filesystem, postgres
  --dsn <conn>               Define store connection string
  --load <name>              Seed the macro table from a stored define set
  --save <name>              Store the final macro table as a define set
  -v, --verbose              Enable debug logging to stderr

Examples:
  preprocess run -i main.c -o main.pp.c -r src -D CONFIG_A -D LEVEL=3
  cat main.c | preprocess run -i - -D DEBUG
  preprocess run -i main.c --dsn ./defines --save board-a`

	HelpBatchUsage = `Usage: preprocess batch [options]

Preprocess every matching file below the search root into an output directory,
threading one macro table through the files in sorted order.

Options:
  -r, --root <dir>           Search root (required)
  --out <dir>                Output directory (required)
  --ext <list>               Comma separated extensions (default: .c,.h)
  All define, config, store and logging options of 'run' are accepted.

Examples:
  preprocess batch -r src --out build/pp -D CONFIG_A`

	HelpEvalUsage = `Usage: preprocess eval [options] <expression>

Evaluate a conditional expression and print true or false.

Options:
  -D NAME[=VALUE]            Define a macro (repeatable)
  -c, --config <file>        YAML or HCL config file

Examples:
  preprocess eval -D A=2 'A > 1 && defined(A)'`

	HelpStoreUsage = `Usage: preprocess store <list|show|delete> [options] [name]

Manage stored define sets.

Options:
  --store <driver>           Define store driver (default: filesystem)
  --dsn <conn>               Define store connection string (required)

Examples:
  preprocess store list --dsn ./defines
  preprocess store show --dsn ./defines board-a
  preprocess store delete --dsn ./defines board-a`

	HelpVersionUsage = `Usage: preprocess version [options]

Show version information.

Options:
  -F, --format <fmt>         Output format: text, json (default: text)`

	HelpHelpUsage = `Usage: preprocess help [command]

Show help for a command.`
)
