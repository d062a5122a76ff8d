package main

import (
	"io"
	"os"

	"github.com/itsatony/go-preprocess"
)

// readInput reads content from a file or stdin
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == InputSourceStdin {
		return io.ReadAll(stdin)
	}

	return os.ReadFile(path)
}

// writeOutput writes content to a file or stdout. An existing file is only
// replaced when force is set.
func writeOutput(path string, data []byte, force bool, stdout io.Writer) error {
	if path == FlagDefaultOutput {
		_, err := stdout.Write(data)
		return err
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return preprocess.NewOutputExistsError(path)
		}
	}
	return os.WriteFile(path, data, FilePermissions)
}
