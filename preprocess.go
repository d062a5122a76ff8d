// Package preprocess provides a C-style conditional compilation preprocessor
// for static analysis and call-tree tooling.
//
// It interprets #if/#ifdef/#ifndef/#elif/#else/#endif, #define/#undef,
// #error and #include directives and emits a filtered copy of the input with
// inactive branches removed:
//
//	#define LEVEL 2
//	#if LEVEL > 1 && !defined(LEGACY)
//	modern path
//	#else
//	legacy path
//	#endif
//
// # Basic Usage
//
// Create an engine and process a file:
//
//	engine := preprocess.MustNew(
//	    preprocess.WithSearchRoot("src"),
//	    preprocess.WithDefine("CONFIG_A", "1"),
//	)
//	table, err := engine.ProcessFile(ctx, "src/main.c", "build/main.c")
//	// table holds every macro defined during the run
//
// ProcessString and Process work on in-memory sources and arbitrary writers.
//
// # Includes
//
// Quoted includes are searched for in every directory below the search root;
// the lexicographically smallest match wins. A range form includes only the
// lines between two regular expressions:
//
//	#include "table.c" fromto: ^START@^END    // END line dropped
//	#include "table.c" fromto_: ^START@^END   // END line kept
//	#include HEADER                           // target taken from a macro
//
// Definitions made inside an included file stay visible to the includer.
//
// # Macro Values
//
// A #define value that names an existing macro copies its current value.
// Otherwise a constant arithmetic expression becomes an integer and anything
// else an opaque token. __FILE__ and __LINE__ are maintained automatically.
//
// # Error Handling
//
// Every failure is fatal for the run and carries the file, line and raw text
// of the offending line:
//
//	_, err := engine.ProcessFile(ctx, in, out)
//	if preprocess.IsKind(err, preprocess.ErrorKindUnbalancedConditional) {
//	    loc, _ := preprocess.ErrorLocationOf(err)
//	    fmt.Println(loc, preprocess.ErrorReasonOf(err))
//	}
//
// # Define Sets
//
// Macro tables can be persisted between runs through a DefineStore:
//
//	store, _ := preprocess.OpenDefineStore("filesystem", "/var/lib/preprocess")
//	_ = store.Save(ctx, preprocess.NewStoredDefineSet("board-a", table))
//
// # Configuration
//
// Engines are configured with functional options, or declaratively from a
// YAML or HCL file:
//
//	cfg, _ := preprocess.LoadConfig("preprocess.yaml")
//	engine, _ := preprocess.New(cfg.Options()...)
package preprocess
