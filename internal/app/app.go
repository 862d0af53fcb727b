// Package app wires configuration, modes, documents and the file watcher
// into one editor session.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/tedit/internal/config"
	"github.com/dshills/tedit/internal/engine"
	"github.com/dshills/tedit/internal/mode"
	"github.com/dshills/tedit/internal/watch"
)

// Options configures the application.
type Options struct {
	// ConfigPath is the configuration file. Empty uses defaults and the
	// environment only.
	ConfigPath string

	// Files are opened on startup.
	Files []string

	// LogLevel overrides logging.level when set.
	LogLevel string

	// LogOutput receives log lines. Defaults to os.Stderr.
	LogOutput io.Writer

	// ReadOnly opens files in read-only mode. Scratch documents stay
	// writable.
	ReadOnly bool

	// NoWatch disables reloading files changed on disk.
	NoWatch bool
}

// Application owns the documents of one editor session.
type Application struct {
	opts    Options
	config  *config.Config
	logger  *Logger
	modes   *mode.Registry
	docs    *DocumentManager
	watcher *watch.Watcher

	mu     sync.Mutex
	closed bool
}

// New loads configuration, registers modes and opens opts.Files.
func New(opts Options) (*Application, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, &InitError{Component: "config", Err: err}
	}
	return NewWithConfig(cfg, opts)
}

// NewWithConfig is like New with an already loaded configuration.
func NewWithConfig(cfg *config.Config, opts Options) (*Application, error) {
	app := &Application{
		opts:   opts,
		config: cfg,
		docs:   NewDocumentManager(),
	}

	level := cfg.Logging().Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	logCfg := DefaultLoggerConfig()
	logCfg.Level = ParseLogLevel(level)
	if opts.LogOutput != nil {
		logCfg.Output = opts.LogOutput
	}
	app.logger = NewLogger(logCfg)
	app.logger.Debug("config sources: %v", cfg.Sources())

	app.initModes()
	if err := app.initWatcher(); err != nil {
		return nil, err
	}

	for _, path := range opts.Files {
		if _, err := app.Open(path); err != nil {
			app.Shutdown()
			return nil, err
		}
	}
	return app, nil
}

// initModes registers the builtin modes and the configured definition
// files. Broken definitions are logged and skipped.
func (app *Application) initModes() {
	modesCfg := app.config.Modes()
	log := app.logger.WithComponent("mode")
	app.modes = mode.NewRegistry(mode.WithLogger(log), mode.WithDefault(modesCfg.Default))

	if err := app.modes.RegisterBuiltins(); err != nil {
		log.Error("builtin modes: %v", err)
	}
	for _, path := range modesCfg.Files {
		if err := app.modes.LoadFile(path); err != nil {
			continue
		}
		log.Debug("loaded mode file %s", path)
	}
}

func (app *Application) initWatcher() error {
	w := app.config.Watch()
	if app.opts.NoWatch || !w.Enabled {
		return nil
	}
	watcher, err := watch.New(
		watch.WithDebounce(w.Debounce),
		watch.WithLogger(app.logger.WithComponent("watch")),
	)
	if err != nil {
		return &InitError{Component: "watcher", Err: err}
	}
	app.watcher = watcher
	return nil
}

// Config returns the loaded configuration.
func (app *Application) Config() *config.Config { return app.config }

// Logger returns the application logger.
func (app *Application) Logger() *Logger { return app.logger }

// Modes returns the mode registry.
func (app *Application) Modes() *mode.Registry { return app.modes }

// Documents returns the document manager.
func (app *Application) Documents() *DocumentManager { return app.docs }

// Watching reports whether files are reloaded when they change on disk.
func (app *Application) Watching() bool { return app.watcher != nil }

// Open opens the file at path, or returns the document already open for
// it. The mode is inferred from the file name.
func (app *Application) Open(path string) (*Document, error) {
	if err := app.checkOpen(); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &OperationError{Op: "open", Target: path, Err: err}
	}
	if doc, ok := app.docs.ByPath(abs); ok {
		return doc, nil
	}

	m := app.modes.Infer(abs)
	ed, err := engine.Open(abs, app.documentOptions(m, app.opts.ReadOnly)...)
	if err != nil {
		return nil, &OperationError{Op: "open", Target: path, Err: err}
	}
	doc := newDocument(ed, m)

	if app.watcher != nil {
		if err := app.watcher.Track(ed); err != nil {
			app.logger.WithField("path", abs).Warn("not watching: %v", err)
		}
	}
	app.docs.add(doc)
	app.logger.WithFields(map[string]any{"path": abs, "mode": modeName(m)}).Info("opened")
	return doc, nil
}

// NewScratch creates an unnamed document in the named mode. An empty name
// uses the default mode.
func (app *Application) NewScratch(modeName string) (*Document, error) {
	if err := app.checkOpen(); err != nil {
		return nil, err
	}
	if modeName == "" {
		modeName = app.config.Modes().Default
	}
	m, err := app.modes.Lookup(modeName)
	if err != nil {
		return nil, err
	}
	doc := newDocument(engine.New(app.documentOptions(m, false)...), m)
	app.docs.add(doc)
	return doc, nil
}

// Get returns the document with the given ID.
func (app *Application) Get(id uuid.UUID) (*Document, error) {
	doc, ok := app.docs.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	return doc, nil
}

// SetMode switches a document to the named mode.
func (app *Application) SetMode(id uuid.UUID, name string) error {
	doc, err := app.Get(id)
	if err != nil {
		return err
	}
	m, err := app.modes.Lookup(name)
	if err != nil {
		return err
	}
	doc.setMode(m)
	return nil
}

// Save writes a document to its file.
func (app *Application) Save(id uuid.UUID) error {
	doc, err := app.Get(id)
	if err != nil {
		return err
	}
	if err := doc.Save(); err != nil {
		return &OperationError{Op: "save", Target: doc.Name(), Err: err}
	}
	app.logger.WithField("path", doc.Path()).Debug("saved")
	return nil
}

// Close closes a document. Unsaved changes are refused unless force is set.
func (app *Application) Close(id uuid.UUID, force bool) error {
	doc, err := app.Get(id)
	if err != nil {
		return err
	}
	if doc.Modified() && !force {
		return &OperationError{Op: "close", Target: doc.Name(), Err: ErrUnsavedChanges}
	}
	app.docs.remove(id)
	app.release(doc)
	return nil
}

// Run reloads changed files until ctx is done. Without a watcher it just
// waits for ctx.
func (app *Application) Run(ctx context.Context) error {
	if app.watcher == nil {
		<-ctx.Done()
		return nil
	}
	err := app.watcher.Run(ctx)
	if errors.Is(err, watch.ErrClosed) {
		return nil
	}
	return err
}

// Shutdown closes every document and stops the watcher. Unsaved changes
// are reported but do not stop the shutdown.
func (app *Application) Shutdown() error {
	app.mu.Lock()
	if app.closed {
		app.mu.Unlock()
		return nil
	}
	app.closed = true
	app.mu.Unlock()

	var errs []error
	for _, doc := range app.docs.Modified() {
		errs = append(errs, &OperationError{Op: "shutdown", Target: doc.Name(), Err: ErrUnsavedChanges})
	}
	for _, doc := range app.docs.All() {
		app.docs.remove(doc.ID())
		app.release(doc)
	}
	if app.watcher != nil {
		if err := app.watcher.Close(); err != nil {
			errs = append(errs, &OperationError{Op: "shutdown", Target: "watcher", Err: err})
		}
	}
	return errors.Join(errs...)
}

func (app *Application) release(doc *Document) {
	doc.close()
	if app.watcher != nil && doc.Path() != "" {
		if err := app.watcher.Untrack(doc.Document); err != nil && !errors.Is(err, watch.ErrNotTracked) {
			app.logger.WithField("path", doc.Path()).Debug("untrack: %v", err)
		}
	}
}

func (app *Application) checkOpen() error {
	app.mu.Lock()
	defer app.mu.Unlock()
	if app.closed {
		return ErrClosed
	}
	return nil
}

func (app *Application) documentOptions(m *mode.Mode, readOnly bool) []engine.Option {
	opts := app.config.DocumentOptions()
	if m != nil {
		opts = append(opts, m.DocumentOptions()...)
	}
	if readOnly {
		opts = append(opts, engine.WithReadOnly())
	}
	return opts
}

func modeName(m *mode.Mode) string {
	if m == nil {
		return "none"
	}
	return m.Name
}
