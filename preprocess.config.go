package preprocess

import (
	"math/big"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
	"gopkg.in/yaml.v3"
)

// Config is the declarative form of the engine options, loadable from a
// YAML or HCL file.
//
// YAML:
//
//	search_root: src
//	include_paths: [inc]
//	keep_lines: true
//	defines:
//	  CONFIG_A: 1
//	  OS: linux
//
// HCL:
//
//	search_root = "src"
//	keep_lines  = true
//	defines = {
//	  CONFIG_A = 1
//	  OS       = "linux"
//	}
type Config struct {
	SearchRoot        string
	IncludePaths      []string
	Defines           map[string]string
	KeepLines         bool
	Substitute        bool
	IncludeSubstitute bool
	EchoDirectives    *bool // nil keeps the default
	MaxIncludeDepth   int   // 0 keeps the default
	Overwrite         bool
}

// yamlConfig is the YAML decoding target.
type yamlConfig struct {
	SearchRoot        string         `yaml:"search_root"`
	IncludePaths      []string       `yaml:"include_paths"`
	Defines           map[string]any `yaml:"defines"`
	KeepLines         bool           `yaml:"keep_lines"`
	Substitute        bool           `yaml:"substitute"`
	IncludeSubstitute bool           `yaml:"include_substitute"`
	EchoDirectives    *bool          `yaml:"echo_directives"`
	MaxIncludeDepth   int            `yaml:"max_include_depth"`
	Overwrite         bool           `yaml:"overwrite"`
}

// hclConfig is the HCL decoding target. Defines stay an expression so that
// numbers and strings can be mixed in one object.
type hclConfig struct {
	SearchRoot        *string        `hcl:"search_root,optional"`
	IncludePaths      []string       `hcl:"include_paths,optional"`
	Defines           hcl.Expression `hcl:"defines,optional"`
	KeepLines         *bool          `hcl:"keep_lines,optional"`
	Substitute        *bool          `hcl:"substitute,optional"`
	IncludeSubstitute *bool          `hcl:"include_substitute,optional"`
	EchoDirectives    *bool          `hcl:"echo_directives,optional"`
	MaxIncludeDepth   *int           `hcl:"max_include_depth,optional"`
	Overwrite         *bool          `hcl:"overwrite,optional"`
}

// LoadConfig reads a config file, choosing the format from its extension.
// A relative search_root is resolved against the config file's directory.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewConfigError(ErrMsgConfigReadFailed, path, err)
	}

	cfg, err := ParseConfig(data, path, ConfigFormatForPath(path))
	if err != nil {
		return nil, err
	}
	if cfg.SearchRoot != "" && !filepath.IsAbs(cfg.SearchRoot) {
		cfg.SearchRoot = filepath.Join(filepath.Dir(path), cfg.SearchRoot)
	}
	return cfg, nil
}

// ConfigFormatForPath returns the config format implied by a file extension,
// or "" when the extension is not recognized.
func ConfigFormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ConfigExtYAML, ConfigExtYML:
		return ConfigFormatYAML
	case ConfigExtHCL:
		return ConfigFormatHCL
	default:
		return ""
	}
}

// ParseConfig parses config data in the given format. filename is used in
// diagnostics only.
func ParseConfig(data []byte, filename, format string) (*Config, error) {
	switch format {
	case ConfigFormatYAML:
		return parseYAMLConfig(data, filename)
	case ConfigFormatHCL:
		return parseHCLConfig(data, filename)
	default:
		return nil, NewConfigError(ErrMsgConfigFormat, filename, nil)
	}
}

func parseYAMLConfig(data []byte, filename string) (*Config, error) {
	var raw yamlConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, NewConfigError(ErrMsgConfigParseFailed, filename, err)
	}

	cfg := &Config{
		SearchRoot:        raw.SearchRoot,
		IncludePaths:      raw.IncludePaths,
		Defines:           make(map[string]string, len(raw.Defines)),
		KeepLines:         raw.KeepLines,
		Substitute:        raw.Substitute,
		IncludeSubstitute: raw.IncludeSubstitute,
		EchoDirectives:    raw.EchoDirectives,
		MaxIncludeDepth:   raw.MaxIncludeDepth,
		Overwrite:         raw.Overwrite,
	}
	for name, value := range raw.Defines {
		text, ok := defineText(value)
		if !ok {
			return nil, NewConfigError(ErrMsgConfigDefineFailed, filename, nil)
		}
		cfg.Defines[name] = text
	}
	return cfg, nil
}

// defineText renders a YAML scalar as #define value text.
func defineText(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", true
	case string:
		return v, true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), true
	case bool:
		return boolDefine(v), true
	default:
		return "", false
	}
}

func parseHCLConfig(data []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, NewConfigError(ErrMsgConfigParseFailed, filename, diags)
	}

	var raw hclConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return nil, NewConfigError(ErrMsgConfigParseFailed, filename, diags)
	}

	cfg := &Config{
		IncludePaths:   raw.IncludePaths,
		Defines:        make(map[string]string),
		EchoDirectives: raw.EchoDirectives,
	}
	if raw.SearchRoot != nil {
		cfg.SearchRoot = *raw.SearchRoot
	}
	if raw.KeepLines != nil {
		cfg.KeepLines = *raw.KeepLines
	}
	if raw.Substitute != nil {
		cfg.Substitute = *raw.Substitute
	}
	if raw.IncludeSubstitute != nil {
		cfg.IncludeSubstitute = *raw.IncludeSubstitute
	}
	if raw.MaxIncludeDepth != nil {
		cfg.MaxIncludeDepth = *raw.MaxIncludeDepth
	}
	if raw.Overwrite != nil {
		cfg.Overwrite = *raw.Overwrite
	}

	if raw.Defines != nil {
		value, diags := raw.Defines.Value(nil)
		if diags.HasErrors() {
			return nil, NewConfigError(ErrMsgConfigParseFailed, filename, diags)
		}
		if err := collectCtyDefines(value, cfg.Defines); err != nil {
			return nil, NewConfigError(ErrMsgConfigDefineFailed, filename, err)
		}
	}
	return cfg, nil
}

// collectCtyDefines copies an HCL object of scalars into defines.
func collectCtyDefines(value cty.Value, defines map[string]string) error {
	if value.IsNull() || !value.IsKnown() {
		return nil
	}
	ty := value.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return NewConfigError(ErrMsgConfigDefineFailed, ty.FriendlyName(), nil)
	}

	it := value.ElementIterator()
	for it.Next() {
		key, val := it.Element()
		text, err := ctyDefineText(val)
		if err != nil {
			return err
		}
		defines[key.AsString()] = text
	}
	return nil
}

func ctyDefineText(v cty.Value) (string, error) {
	if v.IsNull() {
		return "", nil
	}
	switch v.Type() {
	case cty.String:
		return v.AsString(), nil
	case cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if n, acc := bf.Int64(); acc == big.Exact {
				return strconv.FormatInt(n, 10), nil
			}
		}
		return bf.Text('g', -1), nil
	case cty.Bool:
		var b bool
		if err := gocty.FromCtyValue(v, &b); err != nil {
			return "", err
		}
		return boolDefine(b), nil
	default:
		return "", NewConfigError(ErrMsgConfigDefineFailed, v.Type().FriendlyName(), nil)
	}
}

func boolDefine(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// Options maps the config onto engine options.
func (c *Config) Options() []Option {
	opts := []Option{
		WithKeepLines(c.KeepLines),
		WithSubstitute(c.Substitute),
		WithIncludeSubstitute(c.IncludeSubstitute),
		WithOverwrite(c.Overwrite),
	}
	if c.SearchRoot != "" {
		opts = append(opts, WithSearchRoot(c.SearchRoot))
	}
	if len(c.IncludePaths) > 0 {
		opts = append(opts, WithIncludePaths(c.IncludePaths...))
	}
	if len(c.Defines) > 0 {
		opts = append(opts, WithDefines(c.Defines))
	}
	if c.EchoDirectives != nil {
		opts = append(opts, WithEchoDirectives(*c.EchoDirectives))
	}
	if c.MaxIncludeDepth > 0 {
		opts = append(opts, WithMaxIncludeDepth(c.MaxIncludeDepth))
	}
	return opts
}

// DefineNames returns the configured define names in sorted order.
func (c *Config) DefineNames() []string {
	names := make([]string, 0, len(c.Defines))
	for name := range c.Defines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
