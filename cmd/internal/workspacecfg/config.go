// Package workspacecfg loads and persists per-workspace annotation settings.
// The file lives at .bracepy/config.yaml under the workspace root; every CLI
// entry point reads it once at startup and converts it into an immutable
// annotate.Options value.
package workspacecfg

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/lexcodex/bracepy/annotate"
)

// IconPair is one marker icon override as written in the config file.
type IconPair struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// Config captures every annotation knob a workspace can set. Zero values mean
// "use the built-in default" so a missing or partial file stays valid.
type Config struct {
	ShowFunctionBraces    *bool               `yaml:"show_function_braces,omitempty"`
	ShowClassBraces       *bool               `yaml:"show_class_braces,omitempty"`
	ShowLoopBraces        *bool               `yaml:"show_loop_braces,omitempty"`
	ShowConditionalBraces *bool               `yaml:"show_conditional_braces,omitempty"`
	ShowExceptionBraces   *bool               `yaml:"show_exception_braces,omitempty"`
	Style                 string              `yaml:"style,omitempty"`
	Icons                 map[string]IconPair `yaml:"icons,omitempty"`
	IndexPath             string              `yaml:"index_path,omitempty"`
	LastUpdated           int64               `yaml:"last_updated,omitempty"`
}

// DefaultPath returns the config location for a workspace root.
func DefaultPath(workspace string) string {
	return filepath.Join(workspace, ".bracepy", "config.yaml")
}

// Load reads a workspace config from disk. A missing file is not an error; it
// yields the empty config so callers fall through to defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Config{}, fmt.Errorf("config path required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save persists the config for future sessions.
func Save(path string, cfg Config) error {
	if path == "" {
		return fmt.Errorf("config path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// iconKeys maps the yaml icon identifiers onto engine icon slots.
var iconKeys = map[string]annotate.IconKey{
	"function": {Kind: annotate.KindFunction},
	"class":    {Kind: annotate.KindClass},
	"loop":     {Kind: annotate.KindLoop},
	"if":       {Kind: annotate.KindConditional, Subkind: annotate.SubIf},
	"elif":     {Kind: annotate.KindConditional, Subkind: annotate.SubElif},
	"else":     {Kind: annotate.KindConditional, Subkind: annotate.SubElse},
	"try":      {Kind: annotate.KindException, Subkind: annotate.SubTry},
	"except":   {Kind: annotate.KindException, Subkind: annotate.SubExcept},
	"finally":  {Kind: annotate.KindException, Subkind: annotate.SubFinally},
	"try_else": {Kind: annotate.KindException, Subkind: annotate.SubElse},
}

// ToOptions builds the engine options this config describes, starting from the
// built-in defaults and applying only the fields the file actually set. The
// result is validated so a bad file fails at startup, not mid-annotation.
func (c Config) ToOptions() (annotate.Options, error) {
	opts := annotate.DefaultOptions()
	applyToggle(opts.Enabled, annotate.KindFunction, c.ShowFunctionBraces)
	applyToggle(opts.Enabled, annotate.KindClass, c.ShowClassBraces)
	applyToggle(opts.Enabled, annotate.KindLoop, c.ShowLoopBraces)
	applyToggle(opts.Enabled, annotate.KindConditional, c.ShowConditionalBraces)
	applyToggle(opts.Enabled, annotate.KindException, c.ShowExceptionBraces)
	if c.Style != "" {
		opts.StyleTag = c.Style
	}
	for name, pair := range c.Icons {
		key, ok := iconKeys[name]
		if !ok {
			return annotate.Options{}, fmt.Errorf("unknown icon %q", name)
		}
		icon := opts.Icons[key]
		if pair.Start != "" {
			icon.Start = pair.Start
		}
		if pair.End != "" {
			icon.End = pair.End
		}
		opts.Icons[key] = icon
	}
	if err := opts.Validate(); err != nil {
		return annotate.Options{}, err
	}
	return opts, nil
}

func applyToggle(enabled map[annotate.Kind]bool, kind annotate.Kind, v *bool) {
	if v != nil {
		enabled[kind] = *v
	}
}
