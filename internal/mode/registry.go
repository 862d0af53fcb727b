package mode

import (
	"fmt"
	"sort"
	"sync"
)

// DefaultMode is used when no file pattern matches.
const DefaultMode = "text"

// Logger is the subset of the application logger the registry uses.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}

// Registry holds the modes known to an application. It is safe for
// concurrent use.
type Registry struct {
	mu       sync.RWMutex
	modes    map[string]*Mode
	order    []string
	fallback string
	log      Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger reports registration problems to l.
func WithLogger(l Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

// WithDefault sets the fallback mode for Infer.
func WithDefault(name string) RegistryOption {
	return func(r *Registry) {
		r.fallback = name
	}
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		modes:    make(map[string]*Mode),
		fallback: DefaultMode,
		log:      nopLogger{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register compiles def and adds it. On error the registry is unchanged.
func (r *Registry) Register(def Definition) error {
	m, err := def.Compile()
	if err != nil {
		r.log.Warn("mode %q not registered: %v", def.Name, err)
		return err
	}
	return r.Add(m)
}

// Add registers a compiled mode, replacing one with the same name in place.
func (r *Registry) Add(m *Mode) error {
	if m == nil || m.Name == "" || m.Lexer == nil {
		return fmt.Errorf("%w: incomplete mode", ErrInvalidMode)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.modes[m.Name]; !exists {
		r.order = append(r.order, m.Name)
	} else {
		r.log.Debug("mode %q replaced", m.Name)
	}
	r.modes[m.Name] = m
	return nil
}

// LoadFile reads a definition file and registers it.
func (r *Registry) LoadFile(path string) error {
	def, err := ReadDefinition(path)
	if err != nil {
		r.log.Warn("mode file %s: %v", path, err)
		return err
	}
	if err := r.Register(def); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Lookup returns the named mode.
func (r *Registry) Lookup(name string) (*Mode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMode, name)
	}
	return m, nil
}

// Infer returns the first registered mode whose file patterns match
// filename, or the fallback mode. It returns nil when neither exists.
func (r *Registry) Infer(filename string) *Mode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range r.order {
		if m := r.modes[name]; m.Matches(filename) {
			return m
		}
	}
	return r.modes[r.fallback]
}

// Names returns the registered mode names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := append([]string(nil), r.order...)
	sort.Strings(names)
	return names
}

// Len returns the number of registered modes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.modes)
}
