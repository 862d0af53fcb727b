package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/dshills/tedit/internal/config/loader"
	"github.com/dshills/tedit/internal/engine"
	"github.com/dshills/tedit/internal/engine/buffer"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	want := EditorConfig{HistoryDepth: 1000, DeleteDirection: "forward", TabWidth: 4, WordChars: "_"}
	if got := c.Editor(); got != want {
		t.Errorf("Editor() = %+v, want %+v", got, want)
	}
	if got := c.Logging().Level; got != "info" {
		t.Errorf("Logging().Level = %q, want info", got)
	}
	if got := c.Modes(); got.Default != "text" || len(got.Files) != 0 {
		t.Errorf("Modes() = %+v", got)
	}
	if got := c.Watch(); !got.Enabled || got.Debounce != 100*time.Millisecond {
		t.Errorf("Watch() = %+v", got)
	}
}

func TestLoad_TOMLOverridesDefaults(t *testing.T) {
	path := writeFile(t, "config.toml", `
[editor]
historyDepth = 50
deleteDirection = "backward"

[modes]
files = ["extra.toml"]
default = "source"
`)

	c, err := Load(path, WithoutEnv())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	ed := c.Editor()
	if ed.HistoryDepth != 50 || ed.DeleteDirection != "backward" || ed.TabWidth != 4 {
		t.Errorf("Editor() = %+v", ed)
	}
	if m := c.Modes(); !reflect.DeepEqual(m.Files, []string{"extra.toml"}) || m.Default != "source" {
		t.Errorf("Modes() = %+v", m)
	}
	if got := c.Sources(); !reflect.DeepEqual(got, []string{"defaults", path}) {
		t.Errorf("Sources() = %v", got)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
editor:
  tabWidth: 8
watch:
  enabled: false
  debounce: 2s
`)

	c, err := Load(path, WithoutEnv())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := c.Editor().TabWidth; got != 8 {
		t.Errorf("TabWidth = %d, want 8", got)
	}
	if w := c.Watch(); w.Enabled || w.Debounce != 2*time.Second {
		t.Errorf("Watch() = %+v", w)
	}
}

func TestLoad_Precedence(t *testing.T) {
	path := writeFile(t, "config.toml", `
[editor]
tabWidth = 2
historyDepth = 10

[logging]
level = "warn"
`)
	t.Setenv("TEDIT_TAB_WIDTH", "6")
	t.Setenv("TEDIT_EDITOR_WORD_CHARS", "-")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	ed := c.Editor()
	if ed.TabWidth != 6 {
		t.Errorf("TabWidth = %d, want 6 from env", ed.TabWidth)
	}
	if ed.HistoryDepth != 10 {
		t.Errorf("HistoryDepth = %d, want 10 from file", ed.HistoryDepth)
	}
	if ed.WordChars != "-" {
		t.Errorf("WordChars = %q, want - from env", ed.WordChars)
	}
	if ed.DeleteDirection != "forward" {
		t.Errorf("DeleteDirection = %q, want default", ed.DeleteDirection)
	}
	if c.Logging().Level != "warn" {
		t.Errorf("Level = %q, want warn", c.Logging().Level)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.toml"), WithoutEnv())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := c.Sources(); len(got) != 1 {
		t.Errorf("Sources() = %v, want defaults only", got)
	}
}

func TestLoad_FileSystemOption(t *testing.T) {
	c, err := Load("/virtual/config.toml", WithoutEnv(), WithFileSystem(memFS{
		"/virtual/config.toml": "[editor]\ntabWidth = 3\n",
	}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := c.Editor().TabWidth; got != 3 {
		t.Errorf("TabWidth = %d, want 3", got)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Run("parse", func(t *testing.T) {
		path := writeFile(t, "config.toml", "[editor\n")
		_, err := Load(path, WithoutEnv())
		var pe *loader.ParseError
		if !errors.As(err, &pe) {
			t.Errorf("error = %v, want *loader.ParseError", err)
		}
	})

	t.Run("format", func(t *testing.T) {
		_, err := Load("config.ini", WithoutEnv())
		if !errors.Is(err, loader.ErrUnsupportedFormat) {
			t.Errorf("error = %v, want ErrUnsupportedFormat", err)
		}
	})

	t.Run("validation", func(t *testing.T) {
		path := writeFile(t, "config.toml", `
[editor]
historyDepth = 0
deleteDirection = "sideways"
tabWidth = 40

[logging]
level = "loud"
`)
		_, err := Load(path, WithoutEnv())
		if !errors.Is(err, ErrValidationFailed) {
			t.Fatalf("error = %v, want ErrValidationFailed", err)
		}
		for _, p := range []string{"editor.historyDepth", "editor.deleteDirection", "editor.tabWidth", "logging.level"} {
			if !containsPath(err, p) {
				t.Errorf("error does not mention %s: %v", p, err)
			}
		}
	})

	t.Run("type", func(t *testing.T) {
		path := writeFile(t, "config.toml", "[editor]\ntabWidth = \"wide\"\n")
		_, err := Load(path, WithoutEnv())
		if !errors.Is(err, ErrTypeMismatch) {
			t.Errorf("error = %v, want ErrTypeMismatch", err)
		}
	})
}

func containsPath(err error, path string) bool {
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return false
	}
	for _, e := range joined.Unwrap() {
		var ve *ValidationError
		if errors.As(e, &ve) && ve.Path == path {
			return true
		}
	}
	return false
}

func TestGetters(t *testing.T) {
	c := Default()

	if _, err := c.GetString("editor.tabWidth"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("GetString(int) error = %v", err)
	}
	if _, err := c.GetInt("nope.nope"); err != ErrSettingNotFound {
		t.Errorf("GetInt(missing) error = %v", err)
	}
	if d, err := c.GetDuration("watch.debounce"); err != nil || d != 100*time.Millisecond {
		t.Errorf("GetDuration() = %v, %v", d, err)
	}
	if _, err := c.GetBool("logging.level"); err == nil {
		t.Error("GetBool(string) should fail")
	}

	m := c.Merged()
	m["editor"] = nil
	if c.Editor().TabWidth != 4 {
		t.Error("Merged() aliases the config")
	}
}

func TestDocumentOptions(t *testing.T) {
	path := writeFile(t, "config.toml", "[editor]\nhistoryDepth = 2\ndeleteDirection = \"backward\"\n")
	c, err := Load(path, WithoutEnv())
	if err != nil {
		t.Fatal(err)
	}

	doc := engine.New(append(c.DocumentOptions(), engine.WithContent("abc"))...)
	err = doc.Edit(func(b *buffer.Buffer) error {
		if _, err := b.RemoveChar(engine.Point{Line: 0, Column: 3}); err != nil {
			return err
		}
		if _, err := b.RemoveChar(engine.Point{Line: 0, Column: 2}); err != nil {
			return err
		}
		_, err := b.RemoveChar(engine.Point{Line: 0, Column: 1})
		return err
	})
	if err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	if got := doc.Text(); got != "" {
		t.Errorf("Text() = %q, want empty after backward deletes", got)
	}

	var undos int
	for {
		if _, err := doc.Undo(); err != nil {
			break
		}
		undos++
	}
	if undos != 2 {
		t.Errorf("undo count = %d, want history depth 2", undos)
	}
}

type memFS map[string]string

func (m memFS) ReadFile(path string) ([]byte, error) {
	s, ok := m[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return []byte(s), nil
}

func (m memFS) Stat(string) (os.FileInfo, error) {
	return nil, os.ErrNotExist
}
