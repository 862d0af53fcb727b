package config

import (
	"errors"
	"time"

	"github.com/dshills/tedit/internal/engine"
	"github.com/dshills/tedit/internal/engine/buffer"
)

// Defaults for the editor section.
const (
	DefaultHistoryDepth = 1000
	DefaultTabWidth     = 4
	MaxTabWidth         = 16
)

// Section accessors return snapshots. A setting with the wrong type reads
// as its default; Validate reports it.

// EditorConfig holds buffer behavior settings.
type EditorConfig struct {
	// HistoryDepth bounds the undo stack of each document.
	HistoryDepth int

	// DeleteDirection is "forward" or "backward".
	DeleteDirection string

	TabWidth int

	// WordChars are the characters besides letters and digits that word
	// motions treat as part of a word.
	WordChars string
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	// Level is "debug", "info", "warn" or "error".
	Level string
}

// ModesConfig lists extra mode definition files.
type ModesConfig struct {
	Files []string

	// Default names the mode used when no file pattern matches.
	Default string
}

// WatchConfig controls reloading documents changed on disk.
type WatchConfig struct {
	Enabled  bool
	Debounce time.Duration
}

func (c *Config) editor(r *reader) EditorConfig {
	return EditorConfig{
		HistoryDepth:    r.intOr("editor.historyDepth", DefaultHistoryDepth),
		DeleteDirection: r.stringOr("editor.deleteDirection", "forward"),
		TabWidth:        r.intOr("editor.tabWidth", DefaultTabWidth),
		WordChars:       r.stringOr("editor.wordChars", "_"),
	}
}

func (c *Config) logging(r *reader) LoggingConfig {
	return LoggingConfig{
		Level: r.stringOr("logging.level", "info"),
	}
}

func (c *Config) modes(r *reader) ModesConfig {
	return ModesConfig{
		Files:   r.stringsOr("modes.files", nil),
		Default: r.stringOr("modes.default", "text"),
	}
}

func (c *Config) watch(r *reader) WatchConfig {
	return WatchConfig{
		Enabled:  r.boolOr("watch.enabled", true),
		Debounce: r.durationOr("watch.debounce", 100*time.Millisecond),
	}
}

// Editor returns the editor section.
func (c *Config) Editor() EditorConfig { return c.editor(&reader{c: c}) }

// Logging returns the logging section.
func (c *Config) Logging() LoggingConfig { return c.logging(&reader{c: c}) }

// Modes returns the modes section.
func (c *Config) Modes() ModesConfig { return c.modes(&reader{c: c}) }

// Watch returns the watch section.
func (c *Config) Watch() WatchConfig { return c.watch(&reader{c: c}) }

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	r := &reader{c: c}
	ed := c.editor(r)
	lg := c.logging(r)
	c.modes(r)
	w := c.watch(r)

	errs := r.errs
	invalid := func(path, msg string, v any) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: v})
	}

	if ed.HistoryDepth < 1 {
		invalid("editor.historyDepth", "must be at least 1", ed.HistoryDepth)
	}
	if _, ok := buffer.ParseDeleteDirection(ed.DeleteDirection); !ok {
		invalid("editor.deleteDirection", `must be "forward" or "backward"`, ed.DeleteDirection)
	}
	if ed.TabWidth < 1 || ed.TabWidth > MaxTabWidth {
		invalid("editor.tabWidth", "must be between 1 and 16", ed.TabWidth)
	}
	switch lg.Level {
	case "debug", "info", "warn", "error":
	default:
		invalid("logging.level", "unknown level", lg.Level)
	}
	if w.Debounce < 0 {
		invalid("watch.debounce", "must not be negative", w.Debounce)
	}
	return errors.Join(errs...)
}

// DocumentOptions translates the editor section into document options.
func (c *Config) DocumentOptions() []engine.Option {
	ed := c.Editor()
	dir, _ := buffer.ParseDeleteDirection(ed.DeleteDirection)
	return []engine.Option{
		engine.WithMaxUndoEntries(ed.HistoryDepth),
		engine.WithDeleteDirection(dir),
		engine.WithTabWidth(ed.TabWidth),
		engine.WithWordChars(ed.WordChars),
	}
}
