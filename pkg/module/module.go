package module

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/open-rsc/openrsc/pkg/vdom"
)

// DefaultExport is the name of the export treated as a module's component.
const DefaultExport = "Default"

// Export is a single named value exported by a module.
type Export struct {
	Name  string
	Value any
}

// Module is a loaded unit of code. Exports keep declaration order.
type Module struct {
	Path    string
	Exports []Export
}

// New creates a module from alternating name/value pairs.
//
//	module.New("/pages/Home.go", "Default", Home, "Title", "Home")
func New(path string, pairs ...any) *Module {
	m := &Module{Path: path}
	for i := 0; i+1 < len(pairs); i += 2 {
		name, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("module.New: export name at %d is %T, want string", i, pairs[i]))
		}
		m.Exports = append(m.Exports, Export{Name: name, Value: pairs[i+1]})
	}
	return m
}

// Lookup returns the value of the named export.
func (m *Module) Lookup(name string) (any, bool) {
	if m == nil {
		return nil, false
	}
	for _, e := range m.Exports {
		if e.Name == name {
			return e.Value, true
		}
	}
	return nil, false
}

// SelectComponent resolves the module's component: the Default export if it
// is a component, otherwise the first component-valued export in order.
// It returns nil when the module has no component export.
func SelectComponent(m *Module) *vdom.Component {
	if m == nil {
		return nil
	}
	if v, ok := m.Lookup(DefaultExport); ok {
		if c, ok := v.(*vdom.Component); ok && c != nil {
			return c
		}
	}
	for _, e := range m.Exports {
		if c, ok := e.Value.(*vdom.Component); ok && c != nil {
			return c
		}
	}
	return nil
}

// Loader resolves module paths (component tags) to loaded modules.
type Loader interface {
	Load(ctx context.Context, path string) (*Module, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, path string) (*Module, error)

// Load calls f(ctx, path).
func (f LoaderFunc) Load(ctx context.Context, path string) (*Module, error) {
	return f(ctx, path)
}

// ErrNotFound is returned by Registry.Load for unknown paths.
type ErrNotFound struct {
	Path string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("module %q not registered", e.Path)
}

// Registry is an in-memory Loader. Generated registration code and tests
// populate it; it is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]*Module
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]*Module)}
}

// Register adds or replaces a module under its Path.
func (r *Registry) Register(m *Module) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[m.Path] = m
}

// RegisterComponent registers a single-export module for a tagged
// component, keyed by its tag. Untagged components are ignored.
func (r *Registry) RegisterComponent(c *vdom.Component) bool {
	if c == nil || c.Tag() == "" {
		return false
	}
	r.Register(New(c.Tag(), DefaultExport, c))
	return true
}

// Load implements Loader.
func (r *Registry) Load(ctx context.Context, path string) (*Module, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	m, ok := r.modules[path]
	r.mu.RUnlock()
	if !ok {
		return nil, &ErrNotFound{Path: path}
	}
	return m, nil
}

// Paths returns the registered module paths, sorted.
func (r *Registry) Paths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	paths := make([]string, 0, len(r.modules))
	for p := range r.modules {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
