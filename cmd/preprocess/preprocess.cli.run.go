package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/itsatony/go-preprocess"
)

// runConfig holds parsed run command configuration
type runConfig struct {
	inputPath  string
	outputPath string
	engine     engineFlags
}

func runPreprocess(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseRunFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFlags, err)
		return ExitCodeUsageError
	}

	ctx := context.Background()
	sess, err := newSession(ctx, &cfg.engine, stderr)
	if err != nil {
		return reportError(stderr, ErrMsgEngineFailed, err)
	}
	defer sess.close()

	table, err := processInput(ctx, sess.engine, cfg, stdin, stdout)
	if err != nil {
		return reportError(stderr, ErrMsgProcessFailed, err)
	}

	if cfg.engine.save != "" {
		if err := sess.saveTable(ctx, cfg.engine.save, table, stderr); err != nil {
			return reportError(stderr, ErrMsgStoreSaveFailed, err)
		}
	}
	return ExitCodeSuccess
}

// processInput runs the engine on a file or on stdin and writes the result.
func processInput(ctx context.Context, engine *preprocess.Engine, cfg *runConfig, stdin io.Reader, stdout io.Writer) (*preprocess.MacroTable, error) {
	switch {
	case cfg.inputPath == InputSourceStdin:
		source, err := readInput(cfg.inputPath, stdin)
		if err != nil {
			return nil, &cliError{msg: ErrMsgReadFileFailed, code: ExitCodeInputError, err: err}
		}
		out, table, err := engine.ProcessString(ctx, StdinName, string(source))
		if err != nil {
			return nil, err
		}
		if err := writeOutput(cfg.outputPath, []byte(out), cfg.engine.force, stdout); err != nil {
			return nil, &cliError{msg: ErrMsgWriteOutputFailed, code: ExitCodeError, err: err}
		}
		return table, nil

	case cfg.outputPath == FlagDefaultOutput:
		return engine.Process(ctx, cfg.inputPath, stdout)

	default:
		return engine.ProcessFile(ctx, cfg.inputPath, cfg.outputPath)
	}
}

func parseRunFlags(args []string) (*runConfig, error) {
	fs := flag.NewFlagSet(CmdNameRun, flag.ContinueOnError)
	fs.SetOutput(io.Discard) // Suppress default error messages

	cfg := &runConfig{}

	fs.StringVar(&cfg.inputPath, FlagInput, "", "")
	fs.StringVar(&cfg.inputPath, FlagInputShort, "", "")
	fs.StringVar(&cfg.outputPath, FlagOutput, FlagDefaultOutput, "")
	fs.StringVar(&cfg.outputPath, FlagOutputShort, FlagDefaultOutput, "")
	cfg.engine.register(fs)

	if err := fs.Parse(splitCompactFlags(args)); err != nil {
		return nil, err
	}

	// A single positional argument is taken as the input file.
	if cfg.inputPath == "" && fs.NArg() == 1 {
		cfg.inputPath = fs.Arg(0)
	}
	if cfg.inputPath == "" {
		return nil, errors.New(ErrMsgMissingInput)
	}

	return cfg, nil
}
