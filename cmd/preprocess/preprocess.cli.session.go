package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/itsatony/go-preprocess"
)

// stringList is a repeatable string flag.
type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ExtSeparator)
}

func (l *stringList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

// engineFlags are the flags shared by every command that builds an engine.
type engineFlags struct {
	root              string
	configPath        string
	defines           stringList
	includePaths      stringList
	keepLines         bool
	substitute        bool
	includeSubstitute bool
	noEcho            bool
	force             bool
	maxDepth          int
	storeDriver       string
	dsn               string
	load              string
	save              string
	verbose           bool
}

func (f *engineFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.root, FlagRoot, "", "")
	fs.StringVar(&f.root, FlagRootShort, "", "")
	fs.StringVar(&f.configPath, FlagConfig, "", "")
	fs.StringVar(&f.configPath, FlagConfigShort, "", "")
	fs.Var(&f.defines, FlagDefine, DefineFlagUsage)
	fs.Var(&f.includePaths, FlagIncludePath, "")
	fs.BoolVar(&f.keepLines, FlagKeepLines, false, "")
	fs.BoolVar(&f.substitute, FlagSubstitute, false, "")
	fs.BoolVar(&f.includeSubstitute, FlagIncludeSubstitute, false, "")
	fs.BoolVar(&f.noEcho, FlagNoEcho, false, "")
	fs.BoolVar(&f.force, FlagForce, false, "")
	fs.BoolVar(&f.force, FlagForceShort, false, "")
	fs.IntVar(&f.maxDepth, FlagMaxDepth, 0, "")
	fs.StringVar(&f.storeDriver, FlagStore, FlagDefaultStore, "")
	fs.StringVar(&f.dsn, FlagDSN, "", "")
	fs.StringVar(&f.load, FlagLoad, "", "")
	fs.StringVar(&f.save, FlagSave, "", "")
	fs.BoolVar(&f.verbose, FlagVerbose, false, "")
	fs.BoolVar(&f.verbose, FlagVerboseShort, false, "")
}

// usesStore reports whether the flags need a define store.
func (f *engineFlags) usesStore() bool {
	return f.load != "" || f.save != ""
}

// splitCompactFlags rewrites compiler style "-DNAME=1" and "-Iinc" into the
// two-argument form the flag package understands.
func splitCompactFlags(args []string) []string {
	out := make([]string, 0, len(args))
	for i, arg := range args {
		if arg == "--" {
			return append(out, args[i:]...)
		}
		for _, short := range []string{FlagDefine, FlagIncludePath} {
			prefix := "-" + short
			if strings.HasPrefix(arg, prefix) && len(arg) > len(prefix) && arg[len(prefix)] != '=' {
				out = append(out, prefix)
				arg = arg[len(prefix):]
				break
			}
		}
		out = append(out, arg)
	}
	return out
}

// cliError carries the message and exit code a failure is reported with.
type cliError struct {
	msg  string
	code int
	err  error
}

func (e *cliError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *cliError) Unwrap() error {
	return e.err
}

// reportError prints err to stderr and returns the exit code for it.
func reportError(stderr io.Writer, msg string, err error) int {
	var ce *cliError
	if errors.As(err, &ce) {
		fmt.Fprintf(stderr, FmtErrorWithDetail, ce.msg, preprocess.Describe(ce.err))
		return ce.code
	}
	fmt.Fprintf(stderr, FmtErrorWithDetail, msg, preprocess.Describe(err))
	return exitCodeFor(err)
}

// exitCodeFor maps a preprocessing failure onto an exit code.
func exitCodeFor(err error) int {
	switch kind := preprocess.ErrorKindOf(err); kind {
	case "":
		return ExitCodeError
	case preprocess.ErrorKindInput:
		return ExitCodeInputError
	case preprocess.ErrorKindOutput, preprocess.ErrorKindOutputExists:
		return ExitCodeError
	default:
		return ExitCodeValidationError
	}
}

// newLogger writes debug logs to stderr when verbose, warnings only otherwise.
func newLogger(verbose bool, stderr io.Writer) *zap.Logger {
	if verbose {
		core := zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.AddSync(stderr),
			zapcore.DebugLevel,
		)
		return zap.New(core, zap.Development())
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(stderr),
		zapcore.WarnLevel,
	)
	return zap.New(core)
}

// session is an engine together with the store and logger it was built with.
type session struct {
	engine *preprocess.Engine
	store  preprocess.DefineStore
	logger *zap.Logger
}

// newSession builds the engine for f. Config file values come first, flags
// override them, a loaded define set seeds the table and -D defines are
// applied on top of it.
func newSession(ctx context.Context, f *engineFlags, stderr io.Writer) (*session, error) {
	s := &session{logger: newLogger(f.verbose, stderr)}
	opts := []preprocess.Option{preprocess.WithLogger(s.logger)}

	if f.configPath != "" {
		cfg, err := preprocess.LoadConfig(f.configPath)
		if err != nil {
			return nil, &cliError{msg: ErrMsgConfigFailed, code: ExitCodeInputError, err: err}
		}
		opts = append(opts, cfg.Options()...)
	}

	if f.root != "" {
		opts = append(opts, preprocess.WithSearchRoot(f.root))
	}
	if len(f.includePaths) > 0 {
		opts = append(opts, preprocess.WithIncludePaths(f.includePaths...))
	}
	for _, def := range f.defines {
		name, value, err := preprocess.ParseDefine(def)
		if err != nil {
			return nil, &cliError{msg: ErrMsgInvalidFlags, code: ExitCodeUsageError, err: err}
		}
		opts = append(opts, preprocess.WithDefine(name, value))
	}
	if f.keepLines {
		opts = append(opts, preprocess.WithKeepLines(true))
	}
	if f.substitute {
		opts = append(opts, preprocess.WithSubstitute(true))
	}
	if f.includeSubstitute {
		opts = append(opts, preprocess.WithIncludeSubstitute(true))
	}
	if f.noEcho {
		opts = append(opts, preprocess.WithEchoDirectives(false))
	}
	if f.force {
		opts = append(opts, preprocess.WithOverwrite(true))
	}
	if f.maxDepth > 0 {
		opts = append(opts, preprocess.WithMaxIncludeDepth(f.maxDepth))
	}

	if f.usesStore() {
		store, err := openStore(f.storeDriver, f.dsn)
		if err != nil {
			return nil, err
		}
		s.store = store
	}
	if f.load != "" {
		set, err := s.store.Get(ctx, f.load)
		if err != nil {
			s.close()
			return nil, &cliError{msg: ErrMsgStoreLoadFailed, code: ExitCodeError, err: err}
		}
		table, err := set.ToMacroTable()
		if err != nil {
			s.close()
			return nil, &cliError{msg: ErrMsgStoreLoadFailed, code: ExitCodeError, err: err}
		}
		opts = append(opts, preprocess.WithMacroTable(table))
	}

	engine, err := preprocess.New(opts...)
	if err != nil {
		s.close()
		return nil, &cliError{msg: ErrMsgEngineFailed, code: ExitCodeUsageError, err: err}
	}
	s.engine = engine
	return s, nil
}

// openStore opens a define store. Only the memory driver works without a
// connection string.
func openStore(driver, dsn string) (preprocess.DefineStore, error) {
	if dsn == "" && driver != preprocess.StoreDriverNameMemory {
		return nil, &cliError{msg: ErrMsgStoreOpenFailed, code: ExitCodeUsageError, err: errors.New(ErrMsgMissingDSN)}
	}
	store, err := preprocess.OpenDefineStore(driver, dsn)
	if err != nil {
		return nil, &cliError{msg: ErrMsgStoreOpenFailed, code: ExitCodeError, err: err}
	}
	return store, nil
}

// saveTable stores table under name and reports the new version on stderr.
func (s *session) saveTable(ctx context.Context, name string, table *preprocess.MacroTable, stderr io.Writer) error {
	set := preprocess.NewStoredDefineSet(name, table)
	if err := s.store.Save(ctx, set); err != nil {
		return &cliError{msg: ErrMsgStoreSaveFailed, code: ExitCodeError, err: err}
	}
	fmt.Fprintf(stderr, FmtSavedDefineSet, set.Name, set.Version)
	return nil
}

func (s *session) close() {
	if s.store != nil {
		_ = s.store.Close()
	}
	_ = s.logger.Sync()
}
