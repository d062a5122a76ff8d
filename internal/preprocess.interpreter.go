package internal

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// InterpreterConfig holds interpreter configuration options.
type InterpreterConfig struct {
	SearchRoot        string // empty means the directory of the top-level file
	IncludePaths      []string
	KeepLines         bool
	Substitute        bool
	IncludeSubstitute bool
	EchoDirectives    bool
	MaxIncludeDepth   int // 0 selects DefaultMaxIncludeDepth
}

// DefaultInterpreterConfig returns the default interpreter configuration.
func DefaultInterpreterConfig() InterpreterConfig {
	return InterpreterConfig{
		EchoDirectives:  true,
		MaxIncludeDepth: DefaultMaxIncludeDepth,
	}
}

// Interpreter runs the directive language over one top-level file and its
// includes. An Interpreter serves a single run and is not safe for
// concurrent use.
type Interpreter struct {
	config   InterpreterConfig
	emitter  *Emitter
	resolver *IncludeResolver
	logger   *zap.Logger
	active   map[string]bool // (path, range) keys on the current include chain
	depth    int
}

// NewInterpreter creates an interpreter writing to w.
func NewInterpreter(config InterpreterConfig, w io.Writer, logger *zap.Logger) *Interpreter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxIncludeDepth <= 0 {
		config.MaxIncludeDepth = DefaultMaxIncludeDepth
	}
	logger.Debug(LogMsgInterpreterCreated)

	return &Interpreter{
		config: config,
		emitter: NewEmitter(w, EmitterConfig{
			KeepLines:      config.KeepLines,
			Substitute:     config.Substitute,
			EchoDirectives: config.EchoDirectives,
		}),
		logger: logger,
		active: make(map[string]bool),
	}
}

// Run processes the file at path, mutating table in place. Definitions
// made anywhere in the include tree stay in the table.
func (in *Interpreter) Run(ctx context.Context, path string, table *MacroTable) error {
	lines, err := ReadLines(path)
	if err != nil {
		return err
	}
	return in.RunLines(ctx, path, lines, table)
}

// RunLines processes already loaded lines as if they were the file name.
func (in *Interpreter) RunLines(ctx context.Context, name string, lines []string, table *MacroTable) error {
	if in.resolver == nil {
		root := in.config.SearchRoot
		if root == StringValueEmpty {
			root = filepath.Dir(name)
		}
		in.resolver = NewIncludeResolver(root, in.config.IncludePaths, in.logger)
	}

	in.logger.Debug(LogMsgRunStart, zap.String(LogFieldFile, name), zap.Int(LogFieldLineCount, len(lines)))

	key := includeKey(name, nil)
	in.active[key] = true
	defer delete(in.active, key)

	if err := in.processLines(ctx, name, lines, 1, table); err != nil {
		return err
	}

	in.logger.Debug(LogMsgRunEnd, zap.String(LogFieldFile, name), zap.Int(LogFieldLineCount, in.emitter.Lines()))
	return nil
}

// processLines is the per-file line loop. firstLine is the file line number
// of lines[0]. Each call owns its own conditional stack.
func (in *Interpreter) processLines(ctx context.Context, file string, lines []string, firstLine int, table *MacroTable) error {
	in.logger.Debug(LogMsgFileStart,
		zap.String(LogFieldFile, file),
		zap.Int(LogFieldDepth, in.depth),
		zap.Int(LogFieldStartLine, firstLine))

	stack := NewCondStack()
	lineNo := firstLine - 1

	for idx, raw := range lines {
		if err := ctx.Err(); err != nil {
			return err
		}
		lineNo = firstLine + idx
		table.SetBuiltins(file, lineNo)

		line := StripUnsignedSuffix(raw)
		loc := SourceLocation{File: file, Line: lineNo, Raw: raw}

		d, err := RecognizeDirective(line)
		if err != nil && (d.Kind.IsConditional() || stack.Active()) {
			return attachLocation(err, loc)
		}

		if d == nil {
			if err := in.emitter.Content(line, stack.Active(), table); err != nil {
				return err
			}
			continue
		}

		if err == nil {
			if err := in.handleDirective(ctx, d, stack, table, loc); err != nil {
				return attachLocation(err, loc)
			}
			continue
		}

		// malformed non-conditional directive inside an inert region
		if err := in.emitter.Directive(line, false); err != nil {
			return err
		}
	}

	if err := stack.Close(); err != nil {
		return attachLocation(err, SourceLocation{File: file, Line: lineNo})
	}

	in.logger.Debug(LogMsgFileEnd, zap.String(LogFieldFile, file), zap.Int(LogFieldDepth, in.depth))
	return nil
}

// handleDirective applies one directive and emits its line
func (in *Interpreter) handleDirective(ctx context.Context, d *Directive, stack *CondStack, table *MacroTable, loc SourceLocation) error {
	live := stack.Active()
	in.logger.Debug(LogMsgDirective,
		zap.String(LogFieldDirective, d.Kind.String()),
		zap.String(LogFieldFile, loc.File),
		zap.Int(LogFieldLine, loc.Line))

	switch d.Kind {
	case KindIf:
		return in.emitAfter(d, stack.PushIf(loc.Line, in.condition(d.Expr, table)))
	case KindIfdef:
		return in.emitAfter(d, stack.PushIf(loc.Line, in.definedCheck(d.Name, table, false)))
	case KindIfndef:
		return in.emitAfter(d, stack.PushIf(loc.Line, in.definedCheck(d.Name, table, true)))
	case KindElif:
		return in.emitAfter(d, stack.Elif(in.condition(d.Expr, table)))
	case KindElse:
		return in.emitAfter(d, stack.Else())
	case KindEndif:
		return in.emitAfter(d, stack.Endif())

	case KindError:
		if live {
			return NewUserError(d.Message)
		}
		return in.emitter.Directive(d.Raw, false)

	case KindDefine:
		if live {
			in.define(d, table)
		}
		return in.emitter.Directive(d.Raw, true)

	case KindUndef:
		if live && table.Undef(d.Name) {
			in.logger.Debug(LogMsgMacroUndefined, zap.String(LogFieldMacro, d.Name))
		}
		return in.emitter.Directive(d.Raw, false)

	case KindSystemInclude:
		if live {
			in.logger.Warn(LogMsgSystemInclude,
				zap.String(LogFieldTarget, d.Target),
				zap.String(LogFieldFile, loc.File),
				zap.Int(LogFieldLine, loc.Line))
		}
		return in.emitter.Directive(d.Raw, true)

	case KindInclude, KindIncludeMacro:
		// the include line follows the included content
		if live {
			if err := in.include(ctx, d, table); err != nil {
				return err
			}
			table.SetBuiltins(loc.File, loc.Line)
		}
		return in.emitter.Directive(d.Raw, true)
	}
	return nil
}

// emitAfter writes a conditional directive line once its stack operation succeeded
func (in *Interpreter) emitAfter(d *Directive, err error) error {
	if err != nil {
		return err
	}
	return in.emitter.Directive(d.Raw, false)
}

// condition returns the lazy evaluator for an #if/#elif expression
func (in *Interpreter) condition(expr string, table *MacroTable) ConditionFunc {
	return func() (bool, error) {
		result, err := EvaluateCondition(expr, table)
		if err != nil {
			return false, err
		}
		in.logger.Debug(LogMsgBranchEvaluated,
			zap.String(LogFieldExpression, expr),
			zap.Bool(LogFieldResult, result))
		return result, nil
	}
}

// definedCheck returns the lazy evaluator for #ifdef/#ifndef
func (in *Interpreter) definedCheck(name string, table *MacroTable, negate bool) ConditionFunc {
	return func() (bool, error) {
		result := table.Has(name) != negate
		in.logger.Debug(LogMsgBranchEvaluated,
			zap.String(LogFieldMacro, name),
			zap.Bool(LogFieldResult, result))
		return result, nil
	}
}

func (in *Interpreter) define(d *Directive, table *MacroTable) {
	if d.FunctionLike {
		table.DefineFunctionLike(d.Name, d.Value)
		in.logger.Debug(LogMsgMacroDefined, zap.String(LogFieldMacro, d.Name), zap.String(LogFieldValue, d.Value))
		return
	}
	value := table.Define(d.Name, d.Value)
	in.logger.Debug(LogMsgMacroDefined, zap.String(LogFieldMacro, d.Name), zap.String(LogFieldValue, value.String()))
}

// include resolves the directive's target and recursively interprets it
func (in *Interpreter) include(ctx context.Context, d *Directive, table *MacroTable) error {
	target := d.Target
	if d.Kind == KindIncludeMacro {
		value, ok := table.Lookup(d.Name)
		if !ok {
			return NewUndefinedSymbolError(d.Name)
		}
		target = unquote(value.String())
	}
	if in.config.IncludeSubstitute {
		target = table.Substitute(target, false)
	}

	resolved, err := in.resolver.Locate(target)
	if err != nil {
		return err
	}

	key := includeKey(resolved, d.Range)
	if in.depth >= in.config.MaxIncludeDepth {
		return NewIncludeLimitError(ReasonIncludeDepth, ErrMsgIncludeDepth, resolved)
	}
	if in.active[key] {
		return NewIncludeLimitError(ReasonIncludeCycle, ErrMsgIncludeCycle, resolved)
	}

	lines, err := ReadLines(resolved)
	if err != nil {
		return NewMissingIncludeError(ReasonFileNotFound, ErrMsgReadIncludeFailed, resolved).WithCause(err)
	}
	lines, start, err := ExtractRange(lines, d.Range, resolved)
	if err != nil {
		return err
	}

	in.logger.Debug(LogMsgIncludeResolved,
		zap.String(LogFieldTarget, target),
		zap.String(LogFieldResolved, resolved),
		zap.Int(LogFieldDepth, in.depth+1))
	if d.Range != nil {
		in.logger.Debug(LogMsgIncludeRange,
			zap.String(LogFieldResolved, resolved),
			zap.Int(LogFieldStartLine, start+1),
			zap.Int(LogFieldLineCount, len(lines)))
	}

	in.active[key] = true
	in.depth++
	err = in.processLines(ctx, resolved, lines, start+1, table)
	in.depth--
	delete(in.active, key)
	return err
}

// includeKey identifies a (path, range) pair on the include chain
func includeKey(path string, rng *IncludeRange) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return abs + RangeSeparator + rng.Key()
}

// unquote strips one pair of surrounding double quotes
func unquote(s string) string {
	if len(s) >= 2 && s[0] == CharDoubleQuote && s[len(s)-1] == CharDoubleQuote {
		return s[1 : len(s)-1]
	}
	return strings.TrimSpace(s)
}
