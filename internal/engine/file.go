package engine

import (
	"fmt"
	"os"
	"strings"

	"github.com/dshills/tedit/internal/engine/buffer"
)

// Open loads the file at path into a new Document whose save hook writes
// the content back to the same file.
func Open(path string, opts ...Option) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	d := New(append(opts, WithPath(path), WithContent(string(data)))...)
	d.buf.SetSaveHook(func(lines []string) error {
		return os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644)
	})
	return d, nil
}

// Save writes the content through the buffer's save hook.
func (d *Document) Save() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.Save()
}

// ReloadFile re-reads the backing file and replaces the content if it
// differs. It reports whether the content changed.
func (d *Document) ReloadFile() (bool, error) {
	path := d.Path()
	if path == "" {
		return false, ErrNoPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("reload %s: %w", path, err)
	}

	before := d.Revision()
	if err := d.Reload(strings.Split(string(data), "\n")); err != nil {
		return false, err
	}
	return d.Revision() != before, nil
}

// SetSaveHook replaces the function used by Save.
func (d *Document) SetSaveHook(fn buffer.SaveFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buf.SetSaveHook(fn)
}
