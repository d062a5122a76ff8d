package internal

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// ErrFmtMissingIncludeDetail renders the searched locations of a failed lookup
const ErrFmtMissingIncludeDetail = "%q on %s %s, %s %v"

// IncludeResolver locates include targets below a search root. The directory
// index is built on first use and reused for the rest of the run.
type IncludeResolver struct {
	root         string
	includePaths []string
	logger       *zap.Logger
	dirs         []string
}

// NewIncludeResolver creates a resolver for root. includePaths only appear in diagnostics.
func NewIncludeResolver(root string, includePaths []string, logger *zap.Logger) *IncludeResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IncludeResolver{
		root:         root,
		includePaths: includePaths,
		logger:       logger,
	}
}

// Root returns the search root
func (r *IncludeResolver) Root() string {
	return r.root
}

// Locate finds target. Every directory under the root is probed for
// dir/target; the lexicographically smallest hit wins.
func (r *IncludeResolver) Locate(target string) (string, error) {
	if filepath.IsAbs(target) {
		if isRegularFile(target) {
			return filepath.Clean(target), nil
		}
		return StringValueEmpty, r.missing(target)
	}

	dirs, err := r.index()
	if err != nil {
		return StringValueEmpty, r.missing(target).WithCause(err)
	}

	var hits []string
	for _, dir := range dirs {
		candidate := filepath.Clean(filepath.Join(dir, target))
		if isRegularFile(candidate) {
			hits = append(hits, candidate)
		}
	}
	if len(hits) == 0 {
		return StringValueEmpty, r.missing(target)
	}
	sort.Strings(hits)
	return hits[0], nil
}

// index walks the search root once and caches every directory found
func (r *IncludeResolver) index() ([]string, error) {
	if r.dirs != nil {
		return r.dirs, nil
	}

	dirs := []string{}
	err := filepath.WalkDir(r.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == r.root {
				return err
			}
			return nil
		}
		if entry.IsDir() {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(dirs)

	r.dirs = dirs
	r.logger.Debug(LogMsgDirIndexBuilt,
		zap.String(LogFieldFile, r.root),
		zap.Int(LogFieldDirCount, len(dirs)))
	return dirs, nil
}

func (r *IncludeResolver) missing(target string) *DirectiveError {
	err := NewMissingIncludeError(ReasonFileNotFound, ErrMsgMissingInclude, target)
	return err.WithDetail(fmt.Sprintf(ErrFmtMissingIncludeDetail,
		target, ErrMsgSearchRoot, r.root, ErrMsgIncludePaths, r.includePaths))
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ReadLines reads a file and splits it into lines without terminators.
// A trailing carriage return is dropped from every line.
func ReadLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return SplitLines(string(data)), nil
}

// SplitLines splits text into lines. A final terminator does not produce an
// extra empty line.
func SplitLines(text string) []string {
	if text == StringValueEmpty {
		return nil
	}
	lines := strings.Split(text, LineTerminator)
	if lines[len(lines)-1] == StringValueEmpty {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, string(CharCarriageRet))
	}
	return lines
}

// ExtractRange returns the lines selected by rng and the zero-based index of
// the first selected line. The range opens at the first line matching From;
// the search for To starts on the following line. Without a To match the
// range runs to the end of the file.
func ExtractRange(lines []string, rng *IncludeRange, target string) ([]string, int, error) {
	if rng == nil {
		return lines, 0, nil
	}

	start := -1
	for i, line := range lines {
		if rng.From.MatchString(line) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, 0, NewMissingIncludeError(ReasonRangeStartNotFound, ErrMsgRangeStartNotFound, target).
			WithDetail(rng.FromText)
	}

	if rng.To == nil {
		return lines[start:], start, nil
	}
	for j := start + 1; j < len(lines); j++ {
		if rng.To.MatchString(lines[j]) {
			if rng.Inclusive {
				return lines[start : j+1], start, nil
			}
			return lines[start:j], start, nil
		}
	}
	return lines[start:], start, nil
}
