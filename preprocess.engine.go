package preprocess

import (
	"bufio"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/itsatony/go-preprocess/internal"
)

// Engine is the main entry point for preprocessing. It holds the run
// configuration; every run gets its own macro table, conditional stacks and
// output, so an Engine is safe for concurrent use by independent runs.
type Engine struct {
	config *engineConfig
	logger *zap.Logger
}

// New creates a new preprocess Engine with the given options.
func New(opts ...Option) (*Engine, error) {
	config := defaultEngineConfig()
	for _, opt := range opts {
		opt(config)
	}

	if config.maxIncludeDepth <= 0 {
		return nil, NewConfigError(ErrMsgInvalidMaxDepth, "", nil)
	}
	if config.searchRoot != "" {
		info, err := os.Stat(config.searchRoot)
		if err != nil {
			return nil, NewConfigError(ErrMsgSearchRootMissing, config.searchRoot, err)
		}
		if !info.IsDir() {
			return nil, NewConfigError(ErrMsgSearchRootMissing, config.searchRoot, nil)
		}
	}
	for name := range config.defines {
		if !IsValidMacroName(name) {
			return nil, NewInvalidMacroNameError(name)
		}
	}

	logger := config.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Debug(LogMsgEngineCreated,
		zap.String(LogFieldRoot, config.searchRoot),
		zap.Int(LogFieldMacros, len(config.defines)),
		zap.Bool(LogFieldKeepLines, config.keepLines))

	return &Engine{
		config: config,
		logger: logger,
	}, nil
}

// MustNew creates a new Engine and panics if there's an error.
func MustNew(opts ...Option) *Engine {
	engine, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return engine
}

// SearchRoot returns the configured search root, or "" when includes are
// resolved relative to each input file.
func (e *Engine) SearchRoot() string {
	return e.config.searchRoot
}

// NewTable returns the macro table a run starts from: a copy of the
// WithMacroTable seed with the WithDefines macros applied in sorted order.
func (e *Engine) NewTable() *MacroTable {
	var table *MacroTable
	if e.config.table != nil {
		table = e.config.table.Clone()
	} else {
		table = NewMacroTable()
	}

	names := make([]string, 0, len(e.config.defines))
	for name := range e.config.defines {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		table.Define(name, e.config.defines[name])
	}
	return table
}

// Process preprocesses the file at inPath into w and returns the resulting
// macro table.
func (e *Engine) Process(ctx context.Context, inPath string, w io.Writer) (*MacroTable, error) {
	table := e.NewTable()
	if err := e.ProcessWithTable(ctx, inPath, w, table); err != nil {
		return nil, err
	}
	return table, nil
}

// ProcessWithTable preprocesses the file at inPath into w, reading and
// updating table in place. Chained runs share definitions this way.
func (e *Engine) ProcessWithTable(ctx context.Context, inPath string, w io.Writer, table *MacroTable) error {
	if inPath == "" {
		return NewInputError(inPath, errors.New(ErrMsgEmptyInputPath))
	}
	if w == nil {
		return NewOutputError(ErrMsgNilWriter, "", nil)
	}

	lines, err := internal.ReadLines(inPath)
	if err != nil {
		return NewInputError(inPath, err)
	}
	return e.run(ctx, inPath, lines, w, table)
}

// ProcessString preprocesses source as if it were the file name and returns
// the output together with the resulting macro table. Includes are resolved
// under the search root, or the directory of name when none is set.
func (e *Engine) ProcessString(ctx context.Context, name, source string) (string, *MacroTable, error) {
	var sb strings.Builder
	table := e.NewTable()
	if err := e.run(ctx, name, internal.SplitLines(source), &sb, table); err != nil {
		return "", nil, err
	}
	return sb.String(), table, nil
}

// ProcessFile preprocesses inPath into outPath and returns the resulting
// macro table.
func (e *Engine) ProcessFile(ctx context.Context, inPath, outPath string) (*MacroTable, error) {
	table := e.NewTable()
	if err := e.ProcessFileWithTable(ctx, inPath, outPath, table); err != nil {
		return nil, err
	}
	return table, nil
}

// ProcessFileWithTable preprocesses inPath into outPath using table. Output is
// staged in a temporary file next to outPath and renamed into place only when
// the run succeeds, so a failed run never leaves a partial file and never
// touches an existing destination.
func (e *Engine) ProcessFileWithTable(ctx context.Context, inPath, outPath string, table *MacroTable) error {
	if outPath == "" {
		return NewOutputError(ErrMsgEmptyOutputPath, outPath, nil)
	}
	if samePath(inPath, outPath) {
		return NewOutputError(ErrMsgOutputIsInput, outPath, nil)
	}

	exists := pathExists(outPath)
	if exists && !e.config.overwrite {
		return NewOutputExistsError(outPath)
	}

	dir := filepath.Dir(outPath)
	if err := os.MkdirAll(dir, StoreDirPerm); err != nil {
		return NewOutputError(ErrMsgWriteOutputFailed, outPath, err)
	}
	tmp, err := os.CreateTemp(dir, OutputTempPattern)
	if err != nil {
		return NewOutputError(ErrMsgWriteOutputFailed, outPath, err)
	}
	tmpPath := tmp.Name()

	runErr := e.ProcessWithTable(ctx, inPath, tmp, table)
	closeErr := tmp.Close()
	if runErr == nil && closeErr != nil {
		runErr = NewOutputError(ErrMsgWriteOutputFailed, outPath, closeErr)
	}
	if runErr == nil {
		runErr = e.commitOutput(tmpPath, outPath, exists)
	}
	if runErr != nil {
		if rmErr := os.Remove(tmpPath); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			e.logger.Warn(LogMsgTempCleanupFailed, zap.String(LogFieldOutput, tmpPath), zap.Error(rmErr))
		}
		return runErr
	}
	return nil
}

// Evaluate evaluates an #if condition against table. A nil table evaluates
// against the engine's seed macros.
func (e *Engine) Evaluate(expr string, table *MacroTable) (bool, error) {
	if table == nil {
		table = e.NewTable()
	}
	result, err := internal.EvaluateCondition(expr, table)
	if err != nil {
		return false, convertError(err)
	}
	return result, nil
}

// run drives one interpreter over already loaded lines.
func (e *Engine) run(ctx context.Context, name string, lines []string, w io.Writer, table *MacroTable) error {
	if table == nil {
		table = e.NewTable()
	}
	e.logger.Debug(LogMsgProcessStart, zap.String(LogFieldInput, name))

	bw := bufio.NewWriter(w)
	interp := internal.NewInterpreter(e.config.interpreterConfig(), bw, e.logger)
	if err := interp.RunLines(ctx, name, lines, table); err != nil {
		e.logger.Debug(LogMsgProcessFailed, zap.String(LogFieldInput, name), zap.Error(err))
		return convertError(err)
	}
	if err := bw.Flush(); err != nil {
		return NewOutputError(ErrMsgWriteOutputFailed, name, err)
	}

	e.logger.Debug(LogMsgProcessDone,
		zap.String(LogFieldInput, name),
		zap.Int(LogFieldMacros, table.Len()))
	return nil
}

// commitOutput moves a finished temporary file into place.
func (e *Engine) commitOutput(tmpPath, outPath string, replace bool) error {
	if err := os.Chmod(tmpPath, OutputFilePerm); err != nil {
		return NewOutputError(ErrMsgWriteOutputFailed, outPath, err)
	}
	if replace {
		e.logger.Debug(LogMsgOutputReplaced, zap.String(LogFieldOutput, outPath))
		// a read-only destination must be made writable before it can be replaced
		_ = os.Chmod(outPath, OutputWritablePerm)
		if err := os.Remove(outPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return NewOutputError(ErrMsgWriteOutputFailed, outPath, err)
		}
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		return NewOutputError(ErrMsgWriteOutputFailed, outPath, err)
	}
	return nil
}

func pathExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
