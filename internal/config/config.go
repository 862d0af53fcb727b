package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dshills/tedit/internal/config/loader"
)

// Config is a merged, validated configuration. It is immutable after Load.
type Config struct {
	merged  map[string]any
	sources []string
}

type loadOptions struct {
	fs        loader.FileSystem
	envPrefix string
	env       bool
}

// Option configures Load.
type Option func(*loadOptions)

// WithFileSystem reads the config file through fsys.
func WithFileSystem(fsys loader.FileSystem) Option {
	return func(o *loadOptions) {
		o.fs = fsys
	}
}

// WithEnvPrefix changes the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(o *loadOptions) {
		o.envPrefix = prefix
	}
}

// WithoutEnv ignores the environment.
func WithoutEnv() Option {
	return func(o *loadOptions) {
		o.env = false
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{merged: defaultConfig(), sources: []string{"defaults"}}
}

// Load merges defaults, the file at path and the environment, then
// validates the result. An empty path or a missing file is skipped.
func Load(path string, opts ...Option) (*Config, error) {
	o := loadOptions{fs: loader.DefaultFS(), envPrefix: loader.DefaultEnvPrefix, env: true}
	for _, opt := range opts {
		opt(&o)
	}

	c := Default()
	if path != "" {
		fl, err := loader.NewFileLoaderWithFS(o.fs, path)
		if err != nil {
			return nil, err
		}
		m, err := fl.Load()
		if err != nil {
			return nil, err
		}
		if m != nil {
			c.merged = loader.DeepMerge(c.merged, m)
			c.sources = append(c.sources, path)
		}
	}

	if o.env {
		m, err := loader.NewEnvLoader(o.envPrefix).Load()
		if err != nil {
			return nil, fmt.Errorf("loading environment: %w", err)
		}
		if len(m) > 0 {
			c.merged = loader.DeepMerge(c.merged, m)
			c.sources = append(c.sources, "env")
		}
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// DefaultPath returns $XDG_CONFIG_HOME/tedit/config.toml, falling back to
// ~/.config.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tedit", "config.toml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "tedit", "config.toml")
}

// Sources lists what contributed to the configuration, in merge order.
func (c *Config) Sources() []string {
	return append([]string(nil), c.sources...)
}

// Merged returns a copy of the merged settings map.
func (c *Config) Merged() map[string]any {
	return loader.Clone(c.merged)
}

func defaultConfig() map[string]any {
	return map[string]any{
		"editor": map[string]any{
			"historyDepth":    DefaultHistoryDepth,
			"deleteDirection": "forward",
			"tabWidth":        DefaultTabWidth,
			"wordChars":       "_",
		},
		"logging": map[string]any{
			"level": "info",
		},
		"modes": map[string]any{
			"files":   []any{},
			"default": "text",
		},
		"watch": map[string]any{
			"enabled":  true,
			"debounce": "100ms",
		},
	}
}

// Get returns the value at a dotted path.
func (c *Config) Get(path string) (any, bool) {
	return loader.GetPath(c.merged, path)
}

// GetString returns a string setting.
func (c *Config) GetString(path string) (string, error) {
	v, ok := c.Get(path)
	if !ok {
		return "", ErrSettingNotFound
	}
	s, ok := v.(string)
	if !ok {
		return "", &TypeError{Path: path, Expected: "string", Actual: typeName(v)}
	}
	return s, nil
}

// GetInt returns an integer setting. Whole floats are accepted.
func (c *Config) GetInt(path string) (int, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case uint64:
		return int(val), nil
	case float64:
		if val == float64(int(val)) {
			return int(val), nil
		}
	}
	return 0, &TypeError{Path: path, Expected: "int", Actual: typeName(v)}
}

// GetBool returns a boolean setting.
func (c *Config) GetBool(path string) (bool, error) {
	v, ok := c.Get(path)
	if !ok {
		return false, ErrSettingNotFound
	}
	b, ok := v.(bool)
	if !ok {
		return false, &TypeError{Path: path, Expected: "bool", Actual: typeName(v)}
	}
	return b, nil
}

// GetDuration returns a duration setting. Strings use time.ParseDuration;
// bare integers are milliseconds.
func (c *Config) GetDuration(path string) (time.Duration, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	switch val := v.(type) {
	case time.Duration:
		return val, nil
	case string:
		d, err := time.ParseDuration(val)
		if err != nil {
			return 0, &TypeError{Path: path, Expected: "duration", Actual: fmt.Sprintf("%q", val)}
		}
		return d, nil
	case int, int64:
		n, _ := c.GetInt(path)
		return time.Duration(n) * time.Millisecond, nil
	}
	return 0, &TypeError{Path: path, Expected: "duration", Actual: typeName(v)}
}

// GetStringSlice returns a list of strings.
func (c *Config) GetStringSlice(path string) ([]string, error) {
	v, ok := c.Get(path)
	if !ok {
		return nil, ErrSettingNotFound
	}
	switch val := v.(type) {
	case []string:
		return append([]string(nil), val...), nil
	case []any:
		out := make([]string, len(val))
		for i, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, &TypeError{Path: path, Expected: "[]string", Actual: "[]" + typeName(item)}
			}
			out[i] = s
		}
		return out, nil
	}
	return nil, &TypeError{Path: path, Expected: "[]string", Actual: typeName(v)}
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	switch v.(type) {
	case string:
		return "string"
	case int, int64, uint64:
		return "int"
	case float64:
		return "float64"
	case bool:
		return "bool"
	case time.Duration:
		return "duration"
	case []string, []any:
		return "list"
	case map[string]any:
		return "map"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// reader collects type errors while filling a section.
type reader struct {
	c    *Config
	errs []error
}

func (r *reader) note(err error) {
	if err != nil && !errors.Is(err, ErrSettingNotFound) {
		r.errs = append(r.errs, err)
	}
}

func (r *reader) stringOr(path, def string) string {
	v, err := r.c.GetString(path)
	if err != nil {
		r.note(err)
		return def
	}
	return v
}

func (r *reader) intOr(path string, def int) int {
	v, err := r.c.GetInt(path)
	if err != nil {
		r.note(err)
		return def
	}
	return v
}

func (r *reader) boolOr(path string, def bool) bool {
	v, err := r.c.GetBool(path)
	if err != nil {
		r.note(err)
		return def
	}
	return v
}

func (r *reader) durationOr(path string, def time.Duration) time.Duration {
	v, err := r.c.GetDuration(path)
	if err != nil {
		r.note(err)
		return def
	}
	return v
}

func (r *reader) stringsOr(path string, def []string) []string {
	v, err := r.c.GetStringSlice(path)
	if err != nil {
		r.note(err)
		return append([]string(nil), def...)
	}
	return v
}
