package internal

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree creates files below root from a path -> content map
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestIncludeResolver_Locate(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"top.h":         "top",
		"b/shared.h":    "b",
		"a/shared.h":    "a",
		"a/sub/deep.h":  "deep",
		"c/inc/local.h": "local",
	})

	resolver := NewIncludeResolver(root, []string{"inc"}, nil)

	tests := []struct {
		target   string
		expected string
	}{
		{"top.h", "top.h"},
		{"shared.h", "a/shared.h"},
		{"deep.h", "a/sub/deep.h"},
		{"sub/deep.h", "a/sub/deep.h"},
		{"inc/local.h", "c/inc/local.h"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			got, err := resolver.Locate(tt.target)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(root, filepath.FromSlash(tt.expected)), got)
		})
	}
}

func TestIncludeResolver_Absolute(t *testing.T) {
	root := t.TempDir()
	other := t.TempDir()
	writeTree(t, other, map[string]string{"abs.h": "x"})

	resolver := NewIncludeResolver(root, nil, nil)
	got, err := resolver.Locate(filepath.Join(other, "abs.h"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(other, "abs.h"), got)

	_, err = resolver.Locate(filepath.Join(other, "nope.h"))
	require.Error(t, err)
}

func TestIncludeResolver_Missing(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"dir/x.h": "x"})
	resolver := NewIncludeResolver(root, []string{"/opt/include"}, nil)

	_, err := resolver.Locate("missing.h")
	require.Error(t, err)

	de, ok := AsDirectiveError(err)
	require.True(t, ok)
	assert.Equal(t, ErrorKindMissingInclude, de.Kind)
	assert.Equal(t, ReasonFileNotFound, de.Reason)
	assert.Equal(t, "missing.h", de.Target)
	assert.Contains(t, de.Error(), root)
	assert.Contains(t, de.Error(), "/opt/include")
}

func TestIncludeResolver_IndexCached(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a/x.h": "x"})
	resolver := NewIncludeResolver(root, nil, nil)

	_, err := resolver.Locate("x.h")
	require.NoError(t, err)

	// directories created after the first lookup are not indexed
	writeTree(t, root, map[string]string{"z/late.h": "late"})
	_, err = resolver.Locate("late.h")
	require.Error(t, err)
}

func TestSplitLines(t *testing.T) {
	assert.Nil(t, SplitLines(""))
	assert.Equal(t, []string{"a", "b"}, SplitLines("a\nb\n"))
	assert.Equal(t, []string{"a", "b"}, SplitLines("a\r\nb"))
	assert.Equal(t, []string{"", ""}, SplitLines("\n\n"))
}

func TestReadLines(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"f.c": "one\r\ntwo\n"})

	lines, err := ReadLines(filepath.Join(root, "f.c"))
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, lines)

	_, err = ReadLines(filepath.Join(root, "missing.c"))
	require.Error(t, err)
}

func mustRange(from, to string, inclusive bool) *IncludeRange {
	rng := &IncludeRange{FromText: from, ToText: to, From: regexp.MustCompile(from), Inclusive: inclusive}
	if to != "" {
		rng.To = regexp.MustCompile(to)
	}
	return rng
}

func TestExtractRange(t *testing.T) {
	lines := strings.Split("head\nSTART a\nbody\nEND\ntail\nEND", "\n")

	tests := []struct {
		name     string
		rng      *IncludeRange
		expected []string
		start    int
	}{
		{"whole file", nil, lines, 0},
		{"exclusive", mustRange("^START", "^END", false), []string{"START a", "body"}, 1},
		{"inclusive", mustRange("^START", "^END", true), []string{"START a", "body", "END"}, 1},
		{"empty to", mustRange("^START", "", false), lines[1:], 1},
		{"no to match", mustRange("^START", "^NEVER", true), lines[1:], 1},
		{"to not on from line", mustRange("^START", "START", false), lines[1:], 1},
		{"from matches first", mustRange("END", "tail", true), []string{"END", "tail"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, start, err := ExtractRange(lines, tt.rng, "f.c")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.start, start)
		})
	}
}

func TestExtractRange_StartNotFound(t *testing.T) {
	_, _, err := ExtractRange([]string{"a", "b"}, mustRange("^X", "^Y", false), "f.c")
	require.Error(t, err)

	de, ok := AsDirectiveError(err)
	require.True(t, ok)
	assert.Equal(t, ErrorKindMissingInclude, de.Kind)
	assert.Equal(t, ReasonRangeStartNotFound, de.Reason)
}

func TestEmitter(t *testing.T) {
	table := NewMacroTable()
	table.Define("FOO", "1")

	tests := []struct {
		name     string
		cfg      EmitterConfig
		expected string
	}{
		{"plain", EmitterConfig{EchoDirectives: true}, "#define X 1\nFOO live\n"},
		{"substitute", EmitterConfig{Substitute: true, EchoDirectives: true}, "#define X 1\n1 live\n"},
		{"keep lines", EmitterConfig{KeepLines: true, EchoDirectives: true}, "#define X 1\nFOO live\n\n\n"},
		{"keep lines no echo", EmitterConfig{KeepLines: true}, "\nFOO live\n\n\n"},
		{"no echo", EmitterConfig{}, "FOO live\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sb strings.Builder
			e := NewEmitter(&sb, tt.cfg)

			require.NoError(t, e.Directive("#define X 1", true))
			require.NoError(t, e.Content("FOO live", true, table))
			require.NoError(t, e.Content("FOO dead", false, table))
			require.NoError(t, e.Directive("#endif", false))

			assert.Equal(t, tt.expected, sb.String())
			assert.Equal(t, strings.Count(tt.expected, "\n"), e.Lines())
		})
	}
}
