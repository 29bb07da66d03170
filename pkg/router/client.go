package router

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"

	"github.com/open-rsc/openrsc/pkg/module"
	"github.com/open-rsc/openrsc/pkg/vdom"
)

// ErrStopped is returned by calls made after Run has returned.
var ErrStopped = errors.New("router: stopped")

// Config configures a client Router.
type Config struct {
	// Table is the route table, shared with the server.
	Table *Table

	// History is the session history. Defaults to a MemoryHistory at "/".
	History History

	// ServerRendered is the snapshot of the root's data-ssr-complete
	// attribute taken at construction.
	ServerRendered bool

	// NotFound builds the placeholder element. Defaults to a div containing
	// NotFoundText.
	NotFound func() *vdom.VNode

	// OnCommit is called on the loop goroutine when a load result becomes
	// the rendered element.
	OnCommit func(path string, node *vdom.VNode)

	// OnDiscard is called on the loop goroutine when a load result arrives
	// for a path that is no longer current.
	OnDiscard func(path string)

	// Logger receives load failures. Defaults to slog.Default().
	Logger *slog.Logger
}

// Router is the client-side navigation state machine. All state is owned by
// the goroutine running Run; every other method sends it a message and, if
// it needs an answer, waits for the reply.
type Router struct {
	table     *Table
	history   History
	notFound  func() *vdom.VNode
	onCommit  func(string, *vdom.VNode)
	onDiscard func(string)
	logger    *slog.Logger

	events chan any
	done   chan struct{}

	// Owned by the Run goroutine.
	currentPath    string
	rendered       *vdom.VNode
	initialPass    bool
	serverRendered bool
}

type navigateEvent struct {
	to    string
	reply chan<- Decision
}

type popStateEvent struct{}

type loadResult struct {
	path string
	node *vdom.VNode
}

type queryEvent struct {
	fn func()
}

// NewRouter creates a router. Call Run to start its loop.
func NewRouter(cfg Config) *Router {
	if cfg.Table == nil {
		cfg.Table = NewTable()
	}
	if cfg.History == nil {
		cfg.History = NewMemoryHistory("/")
	}
	if cfg.NotFound == nil {
		cfg.NotFound = func() *vdom.VNode { return vdom.Div(NotFoundText) }
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Router{
		table:          cfg.Table,
		history:        cfg.History,
		notFound:       cfg.NotFound,
		onCommit:       cfg.OnCommit,
		onDiscard:      cfg.OnDiscard,
		logger:         cfg.Logger,
		events:         make(chan any, 16),
		done:           make(chan struct{}),
		currentPath:    locationPath(cfg.History.Location()),
		initialPass:    true,
		serverRendered: cfg.ServerRendered,
	}
}

// Run owns the router state until ctx is done. A client-rendered page loads
// the current path immediately. A server-rendered page keeps the DOM the
// server produced and loads nothing until the path changes.
func (r *Router) Run(ctx context.Context) error {
	defer close(r.done)

	if !r.serverRendered {
		r.startLoad(ctx, r.currentPath)
	}
	r.initialPass = false

	for {
		select {
		case ev := <-r.events:
			r.handle(ctx, ev)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (r *Router) handle(ctx context.Context, ev any) {
	switch ev := ev.(type) {
	case navigateEvent:
		ev.reply <- r.navigate(ctx, ev.to)
	case popStateEvent:
		r.routeChanged(ctx, locationPath(r.history.Location()))
	case loadResult:
		r.commit(ev)
	case queryEvent:
		ev.fn()
	}
}

func (r *Router) navigate(ctx context.Context, to string) Decision {
	if SameLocation(to, r.history.Location()) {
		return NavigateNoop
	}
	if !r.serverRendered || r.initialPass {
		return NavigateFull
	}
	r.history.Push(to)
	r.routeChanged(ctx, locationPath(to))
	return NavigateIntercepted
}

func (r *Router) routeChanged(ctx context.Context, path string) {
	if path == r.currentPath {
		return
	}
	r.currentPath = path
	r.startLoad(ctx, path)
}

// startLoad resolves path off the loop and posts the result back keyed by
// the path it was issued for.
func (r *Router) startLoad(ctx context.Context, path string) {
	go func() {
		node := r.load(ctx, path)
		select {
		case r.events <- loadResult{path: path, node: node}:
		case <-ctx.Done():
		case <-r.done:
		}
	}()
}

func (r *Router) commit(res loadResult) {
	if res.path != r.currentPath {
		r.logger.Debug("discarding stale route load", "path", res.path, "current", r.currentPath)
		if r.onDiscard != nil {
			r.onDiscard(res.path)
		}
		return
	}
	r.rendered = res.node
	if r.onCommit != nil {
		r.onCommit(res.path, res.node)
	}
}

// load never fails: any problem resolving path renders the not-found element.
func (r *Router) load(ctx context.Context, path string) (node *vdom.VNode) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("route component panicked",
				"path", path,
				"panic", rec,
				"stack", string(debug.Stack()))
			node = r.notFound()
		}
	}()

	route, ok := r.table.Match(path)
	if !ok {
		return r.notFound()
	}
	mod, err := route.Load(ctx)
	if err != nil {
		r.logger.Warn("route load failed", "path", path, "error", err)
		return r.notFound()
	}
	comp := module.SelectComponent(mod)
	if comp == nil {
		return r.notFound()
	}
	node, err = comp.Render(ctx, nil)
	if err != nil {
		r.logger.Warn("route component failed", "path", path, "component", comp.Name(), "error", err)
		return r.notFound()
	}
	return node
}

// Navigate handles a navigation intent to a path with optional query.
func (r *Router) Navigate(to string) (Decision, error) {
	reply := make(chan Decision, 1)
	if err := r.send(navigateEvent{to: to, reply: reply}); err != nil {
		return NavigateFull, err
	}
	select {
	case d := <-reply:
		return d, nil
	case <-r.done:
		return NavigateFull, ErrStopped
	}
}

// PopState handles a browser back/forward event by re-reading the history
// location.
func (r *Router) PopState() error {
	return r.send(popStateEvent{})
}

// View returns the element to display, or nil when the server-rendered DOM
// should stay as it is.
func (r *Router) View() *vdom.VNode {
	var v *vdom.VNode
	_ = r.query(func() {
		if r.serverRendered && r.initialPass {
			return
		}
		v = r.rendered
	})
	return v
}

// CurrentPath returns the path the router considers current.
func (r *Router) CurrentPath() string {
	var p string
	_ = r.query(func() { p = r.currentPath })
	return p
}

func (r *Router) query(fn func()) error {
	ack := make(chan struct{})
	if err := r.send(queryEvent{fn: func() { fn(); close(ack) }}); err != nil {
		return err
	}
	select {
	case <-ack:
		return nil
	case <-r.done:
		return ErrStopped
	}
}

func (r *Router) send(ev any) error {
	select {
	case <-r.done:
		return ErrStopped
	default:
	}
	select {
	case r.events <- ev:
		return nil
	case <-r.done:
		return ErrStopped
	}
}

func locationPath(loc string) string {
	p, _ := SplitPathAndQuery(loc)
	if p == "" {
		return "/"
	}
	return p
}
