package preprocess

import (
	"go.uber.org/zap"

	"github.com/itsatony/go-preprocess/internal"
)

// Option is a functional option for configuring the Engine.
type Option func(*engineConfig)

// engineConfig holds the internal configuration for an Engine.
type engineConfig struct {
	searchRoot        string
	includePaths      []string
	defines           map[string]string
	table             *MacroTable
	overwrite         bool
	keepLines         bool
	substitute        bool
	includeSubstitute bool
	echoDirectives    bool
	maxIncludeDepth   int
	logger            *zap.Logger
}

// defaultEngineConfig returns the default engine configuration.
func defaultEngineConfig() *engineConfig {
	return &engineConfig{
		defines:         make(map[string]string),
		echoDirectives:  true,
		maxIncludeDepth: internal.DefaultMaxIncludeDepth,
		logger:          nil,
	}
}

// interpreterConfig maps the engine configuration onto the interpreter.
func (c *engineConfig) interpreterConfig() internal.InterpreterConfig {
	return internal.InterpreterConfig{
		SearchRoot:        c.searchRoot,
		IncludePaths:      append([]string(nil), c.includePaths...),
		KeepLines:         c.keepLines,
		Substitute:        c.substitute,
		IncludeSubstitute: c.includeSubstitute,
		EchoDirectives:    c.echoDirectives,
		MaxIncludeDepth:   c.maxIncludeDepth,
	}
}

// WithSearchRoot sets the directory tree searched for #include targets.
// Default: the directory of the input file
func WithSearchRoot(root string) Option {
	return func(c *engineConfig) {
		c.searchRoot = root
	}
}

// WithIncludePaths records additional include directories. They are reported
// in missing-include diagnostics.
func WithIncludePaths(paths ...string) Option {
	return func(c *engineConfig) {
		c.includePaths = append(c.includePaths, paths...)
	}
}

// WithDefines seeds every run with the given macros. Raw values are
// interpreted like the value part of a #define line and applied in sorted
// name order, after WithMacroTable.
func WithDefines(defines map[string]string) Option {
	return func(c *engineConfig) {
		for name, value := range defines {
			c.defines[name] = value
		}
	}
}

// WithDefine seeds every run with a single macro.
func WithDefine(name, value string) Option {
	return func(c *engineConfig) {
		c.defines[name] = value
	}
}

// WithMacroTable seeds every run with a copy of table.
func WithMacroTable(table *MacroTable) Option {
	return func(c *engineConfig) {
		c.table = table
	}
}

// WithOverwrite allows ProcessFile to replace an existing output file.
// Default: false
func WithOverwrite(overwrite bool) Option {
	return func(c *engineConfig) {
		c.overwrite = overwrite
	}
}

// WithKeepLines writes a blank line for every suppressed input line so output
// line numbers match the input.
// Default: false
func WithKeepLines(keep bool) Option {
	return func(c *engineConfig) {
		c.keepLines = keep
	}
}

// WithSubstitute replaces macro names in emitted content lines with their values.
// Default: false
func WithSubstitute(substitute bool) Option {
	return func(c *engineConfig) {
		c.substitute = substitute
	}
}

// WithIncludeSubstitute replaces macro names inside #include targets before
// they are resolved.
// Default: false
func WithIncludeSubstitute(substitute bool) Option {
	return func(c *engineConfig) {
		c.includeSubstitute = substitute
	}
}

// WithEchoDirectives copies live #define and #include lines to the output.
// Default: true
func WithEchoDirectives(echo bool) Option {
	return func(c *engineConfig) {
		c.echoDirectives = echo
	}
}

// WithMaxIncludeDepth limits include nesting.
// Default: 64
func WithMaxIncludeDepth(depth int) Option {
	return func(c *engineConfig) {
		c.maxIncludeDepth = depth
	}
}

// WithLogger sets the logger for the engine.
// Default: nil (no logging)
func WithLogger(logger *zap.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}
