package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/itsatony/go-preprocess"
)

// batchConfig holds parsed batch command configuration
type batchConfig struct {
	outDir     string
	extensions []string
	engine     engineFlags
}

func runBatch(args []string, stdout, stderr io.Writer) int {
	cfg, err := parseBatchFlags(args)
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

	result, err := sess.engine.ProcessWorkspace(ctx, cfg.outDir, cfg.extensions)
	if err != nil {
		return reportError(stderr, ErrMsgProcessFailed, err)
	}
	for _, file := range result.Files {
		fmt.Fprintf(stdout, FmtWorkspaceFile, file.Input, file.Output)
	}

	if cfg.engine.save != "" {
		if err := sess.saveTable(ctx, cfg.engine.save, result.Table, stderr); err != nil {
			return reportError(stderr, ErrMsgStoreSaveFailed, err)
		}
	}
	return ExitCodeSuccess
}

func parseBatchFlags(args []string) (*batchConfig, error) {
	fs := flag.NewFlagSet(CmdNameBatch, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	cfg := &batchConfig{}
	var extList string

	fs.StringVar(&cfg.outDir, FlagOut, "", "")
	fs.StringVar(&extList, FlagExt, "", "")
	cfg.engine.register(fs)

	if err := fs.Parse(splitCompactFlags(args)); err != nil {
		return nil, err
	}
	if cfg.outDir == "" {
		return nil, errors.New(ErrMsgMissingOutDir)
	}

	cfg.extensions = parseExtensions(extList)
	return cfg, nil
}

// parseExtensions splits a comma separated extension list, adding the
// leading dot where it is missing. An empty list keeps the engine default.
func parseExtensions(list string) []string {
	if strings.TrimSpace(list) == "" {
		return nil
	}
	var exts []string
	for _, ext := range strings.Split(list, ExtSeparator) {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	if len(exts) == 0 {
		return append([]string(nil), preprocess.DefaultWorkspaceExtensions...)
	}
	return exts
}
