// Package watch reloads documents whose backing files change on disk.
//
// The parent directory of every tracked file is watched rather than the
// file itself, so editors that save by writing a temporary file and
// renaming it over the original are still noticed. Events for the same
// path are debounced before the document is reloaded.
package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultDebounce is the delay used when no option sets one.
const DefaultDebounce = 100 * time.Millisecond

// DefaultQueueSize bounds the debounced events waiting for Run.
const DefaultQueueSize = 100

// Document is a file-backed document that can re-read its file.
type Document interface {
	Path() string
	ReloadFile() (bool, error)
}

// Logger is the subset of the application logger the watcher uses.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}

// Result describes one reload attempt.
type Result struct {
	Path    string
	Op      Op
	Changed bool
	Err     error
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a changed file is reloaded.
// Zero reloads on every event.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.delay = d
	}
}

// WithQueueSize bounds the debounced events waiting to be handled. Events
// released while the queue is full are dropped and logged.
func WithQueueSize(n int) Option {
	return func(w *Watcher) {
		if n > 0 {
			w.queue = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.log = l
		}
	}
}

// WithSource replaces the fsnotify event source.
func WithSource(src Source) Option {
	return func(w *Watcher) {
		w.src = src
	}
}

// WithNotify calls fn after every reload attempt, from the Run goroutine.
func WithNotify(fn func(Result)) Option {
	return func(w *Watcher) {
		w.notify = fn
	}
}

// Watcher maps changed files to tracked documents and reloads them.
type Watcher struct {
	src    Source
	deb    *debouncer
	delay  time.Duration
	queue  int
	log    Logger
	notify func(Result)

	mu     sync.Mutex
	docs   map[string][]Document
	dirs   map[string]int
	closed bool

	reloads atomic.Int64
}

// New creates a Watcher. Without WithSource it starts an fsnotify watcher.
func New(opts ...Option) (*Watcher, error) {
	w := &Watcher{
		delay: DefaultDebounce,
		queue: DefaultQueueSize,
		log:   nopLogger{},
		docs:  make(map[string][]Document),
		dirs:  make(map[string]int),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.src == nil {
		src, err := NewFSSource(0)
		if err != nil {
			return nil, err
		}
		w.src = src
	}
	if w.delay > 0 {
		w.deb = newDebouncer(w.delay, w.queue, w.log)
	}
	return w, nil
}

// Track starts reloading doc when its file changes.
func (w *Watcher) Track(doc Document) error {
	path, err := absPath(doc)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	for _, d := range w.docs[path] {
		if d == doc {
			return nil
		}
	}

	dir := filepath.Dir(path)
	if w.dirs[dir] == 0 {
		if err := w.src.Add(dir); err != nil {
			return err
		}
		w.log.Debug("watching %s", dir)
	}
	w.dirs[dir]++
	w.docs[path] = append(w.docs[path], doc)
	return nil
}

// Untrack stops reloading doc.
func (w *Watcher) Untrack(doc Document) error {
	path, err := absPath(doc)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}

	docs := w.docs[path]
	idx := -1
	for i, d := range docs {
		if d == doc {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotTracked
	}
	docs = append(docs[:idx], docs[idx+1:]...)
	if len(docs) == 0 {
		delete(w.docs, path)
	} else {
		w.docs[path] = docs
	}

	dir := filepath.Dir(path)
	w.dirs[dir]--
	if w.dirs[dir] == 0 {
		delete(w.dirs, dir)
		if err := w.src.Remove(dir); err != nil {
			w.log.Warn("unwatch %s: %v", dir, err)
		}
	}
	return nil
}

// Tracked returns the tracked file paths, sorted.
func (w *Watcher) Tracked() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	paths := make([]string, 0, len(w.docs))
	for p := range w.docs {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Reloads returns the number of reload attempts so far.
func (w *Watcher) Reloads() int64 {
	return w.reloads.Load()
}

// Run handles events until ctx is done or the source closes. It returns
// nil when ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	var debounced <-chan Event
	if w.deb != nil {
		debounced = w.deb.out
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case e, ok := <-w.src.Events():
			if !ok {
				return ErrClosed
			}
			if e.Op == OpChmod || !w.isTracked(e.Path) {
				continue
			}
			if w.deb != nil {
				w.deb.add(e)
			} else {
				w.handle(e)
			}

		case e := <-debounced:
			w.handle(e)

		case err, ok := <-w.src.Errors():
			if !ok {
				return ErrClosed
			}
			w.log.Warn("watch error: %v", err)
		}
	}
}

// Flush releases debounced events immediately.
func (w *Watcher) Flush() {
	if w.deb != nil {
		w.deb.flush()
	}
}

// Pending returns the number of debounced events not yet handled.
func (w *Watcher) Pending() int {
	if w.deb == nil {
		return 0
	}
	return w.deb.pendingCount()
}

// Dropped returns the number of debounced events lost to a full queue.
func (w *Watcher) Dropped() int {
	if w.deb == nil {
		return 0
	}
	return w.deb.droppedCount()
}

// Close stops the event source. Run returns ErrClosed afterwards.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	if w.deb != nil {
		w.deb.close()
	}
	return w.src.Close()
}

func (w *Watcher) isTracked(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.docs[path]
	return ok
}

func (w *Watcher) handle(e Event) {
	w.mu.Lock()
	docs := append([]Document(nil), w.docs[e.Path]...)
	w.mu.Unlock()

	if e.Op.Has(OpRemove) || e.Op.Has(OpRename) {
		if _, err := os.Stat(e.Path); errors.Is(err, os.ErrNotExist) {
			w.log.Warn("%s was removed; keeping buffer contents", e.Path)
			return
		}
	}

	for _, doc := range docs {
		changed, err := doc.ReloadFile()
		w.reloads.Add(1)
		switch {
		case err != nil:
			w.log.Warn("reload %s: %v", e.Path, err)
		case changed:
			w.log.Info("reloaded %s (%s)", e.Path, e.Op)
		default:
			w.log.Debug("%s unchanged", e.Path)
		}
		if w.notify != nil {
			w.notify(Result{Path: e.Path, Op: e.Op, Changed: changed, Err: err})
		}
	}
}

func absPath(doc Document) (string, error) {
	if doc.Path() == "" {
		return "", ErrNoPath
	}
	return filepath.Abs(doc.Path())
}
