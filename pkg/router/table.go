package router

import (
	"context"
	"fmt"
	"sync"

	"github.com/open-rsc/openrsc/pkg/module"
)

// Wildcard is the route path matched only when no literal route matches.
const Wildcard = "*"

// LoadFunc loads the module for a route.
type LoadFunc func(ctx context.Context) (*module.Module, error)

// Route binds a literal path (or Wildcard) to a module loader.
type Route struct {
	Path string
	Load LoadFunc
}

// Static returns a LoadFunc that always yields m.
func Static(m *module.Module) LoadFunc {
	return func(context.Context) (*module.Module, error) { return m, nil }
}

// FromLoader returns a LoadFunc that loads path through l.
func FromLoader(l module.Loader, path string) LoadFunc {
	return func(ctx context.Context) (*module.Module, error) { return l.Load(ctx, path) }
}

// Table is an ordered set of routes. Lookups are safe for concurrent use;
// registered routes are never modified.
type Table struct {
	mu     sync.RWMutex
	routes []Route
	byPath map[string]int
}

// NewTable creates a table from routes. A later route with the same path
// replaces an earlier one.
func NewTable(routes ...Route) *Table {
	t := &Table{byPath: make(map[string]int)}
	for _, r := range routes {
		t.Add(r)
	}
	return t
}

// Add registers a route. It panics on an empty path or nil loader, which
// are programming errors.
func (t *Table) Add(r Route) {
	if r.Path == "" {
		panic("router: route path must not be empty")
	}
	if r.Load == nil {
		panic(fmt.Sprintf("router: route %q has no loader", r.Path))
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if i, ok := t.byPath[r.Path]; ok {
		t.routes[i] = r
		return
	}
	t.byPath[r.Path] = len(t.routes)
	t.routes = append(t.routes, r)
}

// Match resolves a request path. The query string, if any, is ignored.
// A literal route is preferred; the Wildcard route is the fallback.
func (t *Table) Match(path string) (Route, bool) {
	p, _ := SplitPathAndQuery(path)
	if p == "" {
		p = "/"
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	if i, ok := t.byPath[p]; ok && p != Wildcard {
		return t.routes[i], true
	}
	if i, ok := t.byPath[Wildcard]; ok {
		return t.routes[i], true
	}
	return Route{}, false
}

// Routes returns the registered routes in registration order.
func (t *Table) Routes() []Route {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Route(nil), t.routes...)
}
