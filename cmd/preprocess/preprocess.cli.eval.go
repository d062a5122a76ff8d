package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

// evalConfig holds parsed eval command configuration
type evalConfig struct {
	expression string
	engine     engineFlags
}

func runEval(args []string, stdout, stderr io.Writer) int {
	cfg, err := parseEvalFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFlags, err)
		return ExitCodeUsageError
	}

	sess, err := newSession(context.Background(), &cfg.engine, stderr)
	if err != nil {
		return reportError(stderr, ErrMsgEngineFailed, err)
	}
	defer sess.close()

	ok, err := sess.engine.Evaluate(cfg.expression, nil)
	if err != nil {
		return reportError(stderr, ErrMsgEvalFailed, err)
	}

	if ok {
		fmt.Fprintln(stdout, EvalResultTrue)
	} else {
		fmt.Fprintln(stdout, EvalResultFalse)
	}
	return ExitCodeSuccess
}

func parseEvalFlags(args []string) (*evalConfig, error) {
	fs := flag.NewFlagSet(CmdNameEval, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	cfg := &evalConfig{}
	cfg.engine.register(fs)

	if err := fs.Parse(splitCompactFlags(args)); err != nil {
		return nil, err
	}

	cfg.expression = strings.TrimSpace(strings.Join(fs.Args(), " "))
	if cfg.expression == "" {
		return nil, errors.New(ErrMsgMissingExpression)
	}
	return cfg, nil
}
