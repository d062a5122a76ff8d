package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/itsatony/go-preprocess"
)

// storeConfig holds parsed store command configuration
type storeConfig struct {
	action string
	name   string
	driver string
	dsn    string
}

func runStore(args []string, stdout, stderr io.Writer) int {
	cfg, err := parseStoreFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFlags, err)
		return ExitCodeUsageError
	}

	store, err := openStore(cfg.driver, cfg.dsn)
	if err != nil {
		return reportError(stderr, ErrMsgStoreOpenFailed, err)
	}
	defer store.Close()

	ctx := context.Background()
	switch cfg.action {
	case StoreCmdList:
		err = listDefineSets(ctx, store, stdout)
	case StoreCmdShow:
		err = showDefineSet(ctx, store, cfg.name, stdout)
	case StoreCmdDelete:
		if err = store.Delete(ctx, cfg.name); err == nil {
			fmt.Fprintf(stdout, FmtDeletedSet, cfg.name)
		}
	}
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgStoreOpFailed, err)
		return ExitCodeError
	}
	return ExitCodeSuccess
}

func parseStoreFlags(args []string) (*storeConfig, error) {
	if len(args) == 0 {
		return nil, errors.New(ErrMsgUnknownStoreCommand)
	}

	cfg := &storeConfig{action: args[0]}
	switch cfg.action {
	case StoreCmdList, StoreCmdShow, StoreCmdDelete:
	default:
		return nil, errors.New(ErrMsgUnknownStoreCommand + ": " + cfg.action)
	}

	fs := flag.NewFlagSet(CmdNameStore, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.driver, FlagStore, FlagDefaultStore, "")
	fs.StringVar(&cfg.dsn, FlagDSN, "", "")

	if err := fs.Parse(args[1:]); err != nil {
		return nil, err
	}

	if cfg.action != StoreCmdList {
		if fs.NArg() != 1 {
			return nil, errors.New(ErrMsgMissingSetName)
		}
		cfg.name = fs.Arg(0)
	}
	return cfg, nil
}

func listDefineSets(ctx context.Context, store preprocess.DefineStore, stdout io.Writer) error {
	names, err := store.List(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintf(stdout, FmtListItem, name)
	}
	return nil
}

func showDefineSet(ctx context.Context, store preprocess.DefineStore, name string, stdout io.Writer) error {
	set, err := store.Get(ctx, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, FmtDefineSetHeader, set.Name, set.Version)
	for _, m := range set.Macros {
		value := m.Text
		if m.Kind == preprocess.MacroKindInteger.String() {
			value = strconv.FormatInt(m.Int, 10)
		}
		fmt.Fprintf(stdout, FmtStoredMacro, m.Kind, m.Name, value)
	}
	return nil
}
