package preprocess

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testYAMLConfig = `search_root: src
include_paths: [inc, vendor]
keep_lines: true
substitute: true
echo_directives: false
max_include_depth: 8
overwrite: true
defines:
  CONFIG_A: 1
  OS: linux
  DEBUG: true
  RATIO: 0.5
  EMPTY:
`

	testHCLConfig = `search_root        = "src"
include_paths      = ["inc", "vendor"]
keep_lines         = true
substitute         = true
echo_directives    = false
max_include_depth  = 8
overwrite          = true

defines = {
  CONFIG_A = 1
  OS       = "linux"
  DEBUG    = true
  RATIO    = 0.5
}
`
)

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name   string
		format string
		data   string
	}{
		{"yaml", ConfigFormatYAML, testYAMLConfig},
		{"hcl", ConfigFormatHCL, testHCLConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(tt.data), "pp."+tt.name, tt.format)
			require.NoError(t, err)

			assert.Equal(t, "src", cfg.SearchRoot)
			assert.Equal(t, []string{"inc", "vendor"}, cfg.IncludePaths)
			assert.True(t, cfg.KeepLines)
			assert.True(t, cfg.Substitute)
			assert.False(t, cfg.IncludeSubstitute)
			require.NotNil(t, cfg.EchoDirectives)
			assert.False(t, *cfg.EchoDirectives)
			assert.Equal(t, 8, cfg.MaxIncludeDepth)
			assert.True(t, cfg.Overwrite)

			assert.Equal(t, "1", cfg.Defines["CONFIG_A"])
			assert.Equal(t, "linux", cfg.Defines["OS"])
			assert.Equal(t, "1", cfg.Defines["DEBUG"])
			assert.Equal(t, "0.5", cfg.Defines["RATIO"])
		})
	}
}

func TestParseConfig_Minimal(t *testing.T) {
	for _, format := range []string{ConfigFormatYAML, ConfigFormatHCL} {
		t.Run(format, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(""), "empty", format)
			require.NoError(t, err)
			assert.Empty(t, cfg.SearchRoot)
			assert.Nil(t, cfg.EchoDirectives)
			assert.Empty(t, cfg.Defines)
			assert.Zero(t, cfg.MaxIncludeDepth)
		})
	}
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name   string
		format string
		data   string
	}{
		{"unknown format", "toml", "a = 1"},
		{"yaml syntax", ConfigFormatYAML, "defines: [unclosed"},
		{"yaml nested define", ConfigFormatYAML, "defines:\n  A:\n    nested: 1\n"},
		{"hcl syntax", ConfigFormatHCL, "search_root = "},
		{"hcl unknown attribute", ConfigFormatHCL, "bogus = 1\n"},
		{"hcl defines not an object", ConfigFormatHCL, "defines = \"A\"\n"},
		{"hcl nested define", ConfigFormatHCL, "defines = {\n  A = [1, 2]\n}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.data), "pp", tt.format)
			require.Error(t, err)
		})
	}
}

func TestConfigFormatForPath(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"pp.yaml", ConfigFormatYAML},
		{"dir/pp.YML", ConfigFormatYAML},
		{"pp.hcl", ConfigFormatHCL},
		{"pp.json", ""},
		{"pp", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, ConfigFormatForPath(tt.path))
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testYAMLConfig), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "src"), cfg.SearchRoot)

	t.Run("absolute search root kept", func(t *testing.T) {
		abs := filepath.Join(dir, "abs.hcl")
		content := "search_root = \"" + filepath.ToSlash(filepath.Join(dir, "elsewhere")) + "\"\n"
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))

		cfg, err := LoadConfig(abs)
		require.NoError(t, err)
		assert.Equal(t, filepath.ToSlash(filepath.Join(dir, "elsewhere")), filepath.ToSlash(cfg.SearchRoot))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(dir, "absent.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgConfigReadFailed)
	})

	t.Run("unknown extension", func(t *testing.T) {
		other := filepath.Join(dir, "pp.ini")
		require.NoError(t, os.WriteFile(other, []byte("x=1"), 0o644))
		_, err := LoadConfig(other)
		require.Error(t, err)
	})
}

func TestConfig_Options(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"src/main.c":     "#include \"defs.h\"\n#if CONFIG_A\na\n#endif\n#ifdef HIDDEN\nh\n#endif\n",
		"src/inc/defs.h": "#define FROM_HEADER 1\n",
	})
	configPath := filepath.Join(root, "pp.hcl")
	require.NoError(t, os.WriteFile(configPath, []byte(
		"search_root = \"src\"\nkeep_lines = true\necho_directives = false\ndefines = {\n  CONFIG_A = 1\n}\n"), 0o644))

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"CONFIG_A"}, cfg.DefineNames())

	engine, err := New(cfg.Options()...)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "src"), engine.SearchRoot())

	table, err := engine.ProcessFile(context.Background(), filepath.Join(root, "src", "main.c"), filepath.Join(root, "out.c"))
	require.NoError(t, err)
	assert.True(t, table.Has("FROM_HEADER"))

	out, err := os.ReadFile(filepath.Join(root, "out.c"))
	require.NoError(t, err)
	assert.Equal(t, "\n\n\na\n\n\n\n\n", string(out))
}
