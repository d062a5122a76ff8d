package preprocess

import (
	"os"
	"time"
)

// Error message constants - ALL error messages must be constants (NO MAGIC STRINGS)
const (
	// Run errors
	ErrMsgReadInputFailed   = "failed to read input file"
	ErrMsgWriteOutputFailed = "failed to write output file"
	ErrMsgOutputExists      = "output file already exists"
	ErrMsgOutputIsInput     = "output file must differ from input file"
	ErrMsgEmptyInputPath    = "input path cannot be empty"
	ErrMsgEmptyOutputPath   = "output path cannot be empty"
	ErrMsgNilWriter         = "output writer cannot be nil"
	ErrMsgInvalidMaxDepth   = "maximum include depth must be positive"
	ErrMsgSearchRootMissing = "search root does not exist"
	ErrMsgNoSearchRoot      = "workspace run requires a search root"
	ErrMsgWalkFailed        = "failed to walk search root"

	// Define errors
	ErrMsgInvalidMacroName = "invalid macro name"

	// Config errors
	ErrMsgConfigReadFailed   = "failed to read config file"
	ErrMsgConfigParseFailed  = "failed to parse config file"
	ErrMsgConfigFormat       = "unsupported config file format"
	ErrMsgConfigDefineFailed = "config define must be a string or number"

	// Storage errors
	ErrMsgDefineSetNotFound     = "define set not found"
	ErrMsgInvalidDefineSetName  = "invalid define set name"
	ErrMsgStoreClosed           = "define store is closed"
	ErrMsgStoreDriverNil        = "define store driver is nil"
	ErrMsgStoreDriverExists     = "define store driver already registered"
	ErrMsgStoreDriverUnknown    = "unknown define store driver"
	ErrMsgStoreNilDefineSet     = "define set cannot be nil"
	ErrMsgStoreDirCreateFailed  = "failed to create define store directory"
	ErrMsgStoreReadFailed       = "failed to read define set"
	ErrMsgStoreWriteFailed      = "failed to write define set"
	ErrMsgStoreDeleteFailed     = "failed to delete define set"
	ErrMsgStoreListFailed       = "failed to list define sets"
	ErrMsgStoreUnknownMacroKind = "unknown macro kind in define set"
)

// PostgreSQL store error messages
const (
	ErrMsgPostgresConnectionFailed = "failed to connect to PostgreSQL"
	ErrMsgPostgresQueryFailed      = "PostgreSQL query failed"
	ErrMsgPostgresTransactionFail  = "PostgreSQL transaction failed"
	ErrMsgPostgresMarshalFailed    = "failed to marshal data for PostgreSQL"
	ErrMsgPostgresUnmarshalFailed  = "failed to unmarshal PostgreSQL data"
	ErrMsgPostgresMigrationFailed  = "PostgreSQL migration failed"
	ErrMsgPostgresCloseAfterError  = "PostgreSQL close failed after error"
	ErrMsgPostgresEmptyConnString  = "PostgreSQL connection string is empty"
	ErrMsgPostgresAlreadyClosed    = "PostgreSQL store is already closed"
)

// Error code constants for categorization
const (
	ErrCodeDirective   = "PREPROCESS_DIRECTIVE"
	ErrCodeConditional = "PREPROCESS_CONDITIONAL"
	ErrCodeSymbol      = "PREPROCESS_SYMBOL"
	ErrCodeExpression  = "PREPROCESS_EXPRESSION"
	ErrCodeInclude     = "PREPROCESS_INCLUDE"
	ErrCodeUser        = "PREPROCESS_USER"
	ErrCodeLimit       = "PREPROCESS_LIMIT"
	ErrCodeOutput      = "PREPROCESS_OUTPUT"
	ErrCodeInput       = "PREPROCESS_INPUT"
	ErrCodeConfig      = "PREPROCESS_CONFIG"
	ErrCodeStorage     = "PREPROCESS_STORAGE"
)

// Metadata key constants
const (
	MetaKeyKind    = "kind"
	MetaKeyReason  = "reason"
	MetaKeyFile    = "file"
	MetaKeyLine    = "line"
	MetaKeyRaw     = "raw"
	MetaKeySymbol  = "symbol"
	MetaKeyTarget  = "target"
	MetaKeyDetail  = "detail"
	MetaKeyPath    = "path"
	MetaKeyName    = "name"
	MetaKeyDriver  = "driver"
	MetaKeyFormat  = "format"
	MetaKeyValue   = "value"
	MetaKeyVersion = "version"
)

// Storage driver names
const (
	StoreDriverNameMemory     = "memory"
	StoreDriverNameFilesystem = "filesystem"
	StoreDriverNamePostgres   = "postgres"
)

// PostgreSQL store configuration defaults
const (
	PostgresTablePrefix            = "preprocess_"
	PostgresDefaultMaxOpenConns    = 10
	PostgresDefaultMaxIdleConns    = 2
	PostgresDefaultConnMaxLifetime = 5 * time.Minute
	PostgresDefaultConnMaxIdleTime = 5 * time.Minute
	PostgresDefaultQueryTimeout    = 30 * time.Second
)

// Filesystem store constants
const (
	DefineSetFileExt       = ".yaml"
	DefineSetVersionPrefix = "v"
	StoreDirPerm     = os.FileMode(0o755)
	StoreFilePerm    = os.FileMode(0o644)
)

// Output file constants
const (
	OutputFilePerm      = os.FileMode(0o644)
	OutputWritablePerm  = os.FileMode(0o644)
	OutputTempPattern   = ".preprocess-*.tmp"
	DefaultOutputSuffix = ".pp"
)

// Default workspace extensions, processed in sorted path order
var DefaultWorkspaceExtensions = []string{".c", ".h"}

// Config file formats
const (
	ConfigFormatYAML = "yaml"
	ConfigFormatHCL  = "hcl"
	ConfigExtYAML    = ".yaml"
	ConfigExtYML     = ".yml"
	ConfigExtHCL     = ".hcl"
)

// Diagnostic formats
const (
	FmtDiagnostic        = "%s: %s"
	FmtDiagnosticWithRaw = "%s: %s\n\t%s"
)

// Define flag parsing
const (
	DefineSeparator    = "="
	DefaultDefineValue = "1"
)

// Log message constants
const (
	LogMsgEngineCreated     = "preprocess engine created"
	LogMsgProcessStart      = "processing input"
	LogMsgProcessDone       = "input processed"
	LogMsgProcessFailed     = "preprocessing failed"
	LogMsgOutputReplaced    = "replacing existing output file"
	LogMsgWorkspaceFile     = "workspace file processed"
	LogMsgWorkspaceDone     = "workspace run complete"
	LogMsgWorkspaceSkip     = "skipping output directory"
	LogMsgStoreOpened       = "define store opened"
	LogMsgStoreSaved        = "define set saved"
	LogMsgStoreDeleted      = "define set deleted"
	LogMsgStoreMigrated     = "define store migrations applied"
	LogMsgTempCleanupFailed = "failed to remove temporary output file"
)

// Log field names
const (
	LogFieldInput     = "input"
	LogFieldOutput    = "output"
	LogFieldRoot      = "root"
	LogFieldMacros    = "macros"
	LogFieldFiles     = "files"
	LogFieldDriver    = "driver"
	LogFieldName      = "name"
	LogFieldVersion   = "version"
	LogFieldError     = "error"
	LogFieldKeepLines = "keep_lines"
)
