package preprocess

import (
	"context"
	"io/fs"
	"path/filepath"

	"go.uber.org/zap"
)

// WorkspaceFile pairs a processed input with the output written for it.
type WorkspaceFile struct {
	Input  string
	Output string
}

// WorkspaceResult is the outcome of a workspace run.
type WorkspaceResult struct {
	// Table holds the definitions accumulated over every processed file.
	Table *MacroTable
	// Files lists the processed files in processing order.
	Files []WorkspaceFile
}

// ProcessWorkspace preprocesses every file below the search root whose
// extension is in extensions (DefaultWorkspaceExtensions when empty) into
// outDir, mirroring relative paths. Files are processed in lexical path order
// and share one macro table, so a definition made by one file is visible to
// every later file. outDir is skipped when it lies inside the search root.
func (e *Engine) ProcessWorkspace(ctx context.Context, outDir string, extensions []string) (*WorkspaceResult, error) {
	root := e.config.searchRoot
	if root == "" {
		return nil, NewConfigError(ErrMsgNoSearchRoot, "", nil)
	}
	if outDir == "" {
		return nil, NewOutputError(ErrMsgEmptyOutputPath, outDir, nil)
	}
	if len(extensions) == 0 {
		extensions = DefaultWorkspaceExtensions
	}
	wanted := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		wanted[ext] = true
	}

	var inputs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && samePath(path, outDir) {
				e.logger.Debug(LogMsgWorkspaceSkip, zap.String(LogFieldOutput, path))
				return filepath.SkipDir
			}
			return nil
		}
		if wanted[filepath.Ext(path)] {
			inputs = append(inputs, path)
		}
		return nil
	})
	if err != nil {
		return nil, NewConfigError(ErrMsgWalkFailed, root, err)
	}

	result := &WorkspaceResult{Table: e.NewTable()}
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rel, err := filepath.Rel(root, in)
		if err != nil {
			return nil, NewConfigError(ErrMsgWalkFailed, in, err)
		}
		out := filepath.Join(outDir, rel)
		if err := e.ProcessFileWithTable(ctx, in, out, result.Table); err != nil {
			return nil, err
		}
		result.Files = append(result.Files, WorkspaceFile{Input: in, Output: out})
		e.logger.Debug(LogMsgWorkspaceFile, zap.String(LogFieldInput, in), zap.String(LogFieldOutput, out))
	}

	e.logger.Debug(LogMsgWorkspaceDone,
		zap.String(LogFieldRoot, root),
		zap.Int(LogFieldFiles, len(result.Files)),
		zap.Int(LogFieldMacros, result.Table.Len()))
	return result, nil
}
