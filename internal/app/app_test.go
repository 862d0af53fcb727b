package app

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/tedit/internal/config"
	"github.com/dshills/tedit/internal/engine/buffer"
	"github.com/dshills/tedit/internal/mode"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// newTestApp writes configTOML to a temp dir and starts an application
// from it, ignoring the environment.
func newTestApp(t *testing.T, configTOML string, opts Options) (*Application, string, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.toml", configTOML)
	cfg, err := config.Load(cfgPath, config.WithoutEnv())
	require.NoError(t, err)

	var logs bytes.Buffer
	opts.LogOutput = &logs
	app, err := NewWithConfig(cfg, opts)
	require.NoError(t, err)
	t.Cleanup(func() { app.Shutdown() })
	return app, dir, &logs
}

const quietConfig = `
[watch]
enabled = false
`

func TestApplication_OpenInfersMode(t *testing.T) {
	app, dir, _ := newTestApp(t, quietConfig, Options{})
	path := writeFile(t, dir, "week.todo", "2024-01-05 [Work] \"ship\"\n")

	doc, err := app.Open(path)
	require.NoError(t, err)
	assert.Equal(t, "todo", doc.Mode())
	require.NotNil(t, doc.EditMode())
	assert.Equal(t, "todo", doc.EditMode().Name)
	assert.NotEmpty(t, doc.Highlights())

	again, err := app.Open(filepath.Join(dir, ".", "week.todo"))
	require.NoError(t, err)
	assert.Same(t, doc, again)
	assert.Equal(t, 1, app.Documents().Count())

	got, err := app.Get(doc.ID())
	require.NoError(t, err)
	assert.Same(t, doc, got)

	plain, err := app.Open(writeFile(t, dir, "README", "hello"))
	require.NoError(t, err)
	assert.Equal(t, mode.DefaultMode, plain.Mode())
	assert.Equal(t, []*Document{doc, plain}, app.Documents().All())
}

func TestApplication_OpenMissingFile(t *testing.T) {
	app, dir, _ := newTestApp(t, quietConfig, Options{})

	_, err := app.Open(filepath.Join(dir, "nope.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "open", opErr.Op)
	assert.Zero(t, app.Documents().Count())
}

func TestApplication_ConfigReachesDocuments(t *testing.T) {
	app, dir, _ := newTestApp(t, `
[editor]
historyDepth = 1
tabWidth = 8

[watch]
enabled = false
`, Options{ReadOnly: true})

	doc, err := app.Open(writeFile(t, dir, "a.txt", "abc"))
	require.NoError(t, err)
	assert.True(t, doc.IsReadOnly())
	assert.Equal(t, 8, doc.Snapshot().TabWidth())

	scratch, err := app.NewScratch("")
	require.NoError(t, err)
	for _, r := range "xyz" {
		require.NoError(t, scratch.Edit(func(b *buffer.Buffer) error {
			_, err := b.InsertChar(b.Point(), r)
			return err
		}))
	}
	_, err = scratch.Undo()
	require.NoError(t, err)
	_, err = scratch.Undo()
	assert.Error(t, err, "history depth 1 keeps a single entry")
}

func TestApplication_ModeFiles(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "conf.toml", `
name = "conf"
files = ["*.conf"]

[[tokens]]
name = "key"
pattern = '\w+'
`)
	bad := writeFile(t, dir, "broken.toml", `
name = "broken"

[[tokens]]
name = "x"
pattern = "(("
`)

	app, _, logs := newTestApp(t, `
[modes]
files = ["`+filepath.ToSlash(good)+`", "`+filepath.ToSlash(bad)+`"]
default = "source"

[watch]
enabled = false
`, Options{})

	assert.Equal(t, []string{"conf", "ledger", "source", "text", "todo"}, app.Modes().Names())
	assert.Contains(t, logs.String(), "[WARN]")
	assert.Contains(t, logs.String(), "component=mode")

	doc, err := app.Open(writeFile(t, dir, "x.conf", "a b"))
	require.NoError(t, err)
	assert.Equal(t, "conf", doc.Mode())

	scratch, err := app.NewScratch("")
	require.NoError(t, err)
	assert.Equal(t, "source", scratch.Mode())

	_, err = app.NewScratch("cobol")
	assert.ErrorIs(t, err, mode.ErrUnknownMode)
}

func TestApplication_SetMode(t *testing.T) {
	app, _, _ := newTestApp(t, quietConfig, Options{})
	doc, err := app.NewScratch("text")
	require.NoError(t, err)
	require.NoError(t, doc.Edit(func(b *buffer.Buffer) error {
		_, err := b.InsertText(buffer.Point{}, "2024/01/05 shop")
		return err
	}))

	before := doc.Highlights()
	require.NoError(t, app.SetMode(doc.ID(), "ledger"))
	assert.Equal(t, "ledger", doc.Mode())
	after := doc.Highlights()
	require.NotEmpty(t, after)
	assert.Equal(t, "Date", doc.EditMode().KindName(after[0].Token.Kind))
	assert.NotEqual(t, len(before), len(after))

	assert.ErrorIs(t, app.SetMode(doc.ID(), "cobol"), mode.ErrUnknownMode)
}

func TestApplication_SaveAndClose(t *testing.T) {
	app, dir, _ := newTestApp(t, quietConfig, Options{})
	path := writeFile(t, dir, "note.txt", "one")
	doc, err := app.Open(path)
	require.NoError(t, err)

	require.NoError(t, doc.Edit(func(b *buffer.Buffer) error {
		_, err := b.InsertText(buffer.Point{Column: 3}, " two")
		return err
	}))

	err = app.Close(doc.ID(), false)
	assert.ErrorIs(t, err, ErrUnsavedChanges)

	require.NoError(t, app.Save(doc.ID()))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "one two", string(data))

	require.NoError(t, app.Close(doc.ID(), false))
	_, err = app.Get(doc.ID())
	assert.ErrorIs(t, err, ErrDocumentNotFound)
	assert.ErrorIs(t, app.Save(doc.ID()), ErrDocumentNotFound)
}

func TestApplication_ShutdownReportsUnsaved(t *testing.T) {
	app, _, _ := newTestApp(t, quietConfig, Options{})
	doc, err := app.NewScratch("text")
	require.NoError(t, err)
	require.NoError(t, doc.Edit(func(b *buffer.Buffer) error {
		_, err := b.InsertText(buffer.Point{}, "draft")
		return err
	}))

	err = app.Shutdown()
	assert.ErrorIs(t, err, ErrUnsavedChanges)
	assert.Zero(t, app.Documents().Count())
	assert.NoError(t, app.Shutdown())

	_, err = app.NewScratch("text")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestApplication_LogLevelOverride(t *testing.T) {
	app, _, logs := newTestApp(t, quietConfig, Options{LogLevel: "error"})
	assert.Equal(t, LogLevelError, app.Logger().Level())

	_, err := app.NewScratch("text")
	require.NoError(t, err)
	app.Logger().Info("hidden")
	assert.Empty(t, logs.String())
}

func TestApplication_ReloadsChangedFiles(t *testing.T) {
	if testing.Short() {
		t.Skip("uses the file system watcher")
	}

	app, dir, _ := newTestApp(t, `
[watch]
enabled = true
debounce = "10ms"
`, Options{})
	require.True(t, app.Watching())

	path := writeFile(t, dir, "live.ledger", "account Assets\n")
	doc, err := app.Open(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	require.NoError(t, os.WriteFile(path, []byte("account Expenses\n"), 0o644))
	require.Eventually(t, func() bool {
		return doc.Text() == "account Expenses\n"
	}, 3*time.Second, 10*time.Millisecond)
	assert.False(t, doc.Modified())

	hl := doc.Highlights()
	require.Len(t, hl, 4)
	assert.Equal(t, buffer.Point{Column: 16}, hl[2].Span.End)

	cancel()
	require.NoError(t, <-done)
}

func TestApplication_RunWithoutWatcher(t *testing.T) {
	app, _, _ := newTestApp(t, quietConfig, Options{})
	assert.False(t, app.Watching())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.NoError(t, app.Run(ctx))
}
