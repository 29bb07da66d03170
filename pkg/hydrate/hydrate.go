package hydrate

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/open-rsc/openrsc/internal/errors"
	"github.com/open-rsc/openrsc/pkg/module"
	"github.com/open-rsc/openrsc/pkg/vdom"
)

// Mounter attaches an interactive component instance to existing markup.
type Mounter interface {
	Mount(ctx context.Context, node Node, comp *vdom.Component, props vdom.Props) error
}

// MounterFunc adapts a function to the Mounter interface.
type MounterFunc func(ctx context.Context, node Node, comp *vdom.Component, props vdom.Props) error

// Mount calls f.
func (f MounterFunc) Mount(ctx context.Context, node Node, comp *vdom.Component, props vdom.Props) error {
	return f(ctx, node, comp, props)
}

// Failure describes a marker that could not be hydrated.
type Failure struct {
	Index int    // position of the marker in document order
	Path  string // component path, empty when the marker had none
	Err   error
}

// Report is the outcome of a hydration pass.
type Report struct {
	Markers  int
	Hydrated []string
	Failures []Failure
}

// OK reports whether every marker hydrated.
func (r *Report) OK() bool {
	return len(r.Failures) == 0
}

// Hydrator resumes client components inside a server-rendered page.
type Hydrator struct {
	loader  module.Loader
	mounter Mounter
	logger  *slog.Logger
	limit   int
}

// Option configures a Hydrator.
type Option func(*Hydrator)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(h *Hydrator) { h.logger = l }
}

// WithConcurrency bounds how many markers hydrate at once. Zero or less
// means no bound.
func WithConcurrency(n int) Option {
	return func(h *Hydrator) { h.limit = n }
}

// New creates a hydrator.
func New(loader module.Loader, mounter Mounter, opts ...Option) *Hydrator {
	h := &Hydrator{loader: loader, mounter: mounter, logger: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Hydrate mounts every marker in doc. Markers are independent: each one
// that fails is logged and reported without affecting the others. A
// document without a root container is left alone.
func (h *Hydrator) Hydrate(ctx context.Context, doc Document) *Report {
	report := &Report{}
	if doc == nil || doc.Root() == nil {
		h.logger.Debug("no root container, skipping hydration")
		return report
	}

	markers := doc.Markers()
	report.Markers = len(markers)

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	if h.limit > 0 {
		g.SetLimit(h.limit)
	}
	for i, marker := range markers {
		g.Go(func() error {
			path, err := h.hydrateMarker(ctx, marker)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				h.logger.Error("hydration failed", "marker", i, "path", path, "error", err)
				report.Failures = append(report.Failures, Failure{Index: i, Path: path, Err: err})
				return nil
			}
			report.Hydrated = append(report.Hydrated, path)
			return nil
		})
	}
	_ = g.Wait()

	h.logger.Debug("hydration complete",
		"markers", report.Markers,
		"hydrated", len(report.Hydrated),
		"failed", len(report.Failures))
	return report
}

func (h *Hydrator) hydrateMarker(ctx context.Context, marker Node) (path string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.New(errors.CodeComponentPanic).
				WithDetail(string(debug.Stack())).
				Wrap(fmt.Errorf("panic: %v", rec))
		}
	}()

	path, ok := marker.Attr(vdom.AttrComponentPath)
	if !ok || path == "" {
		return "", errors.New(errors.CodeMarkerMissingPath)
	}

	var props vdom.Props
	if encoded, ok := marker.Attr(vdom.AttrComponentProps); ok {
		props, err = vdom.DecodeProps(encoded)
		if err != nil {
			return path, errors.New(errors.CodeMarkerProps).Wrap(err)
		}
	}

	mod, err := h.loader.Load(ctx, path)
	if err != nil {
		return path, errors.New(errors.CodeModuleLoadFailed).WithDetailf("loading %s", path).Wrap(err)
	}
	comp := module.SelectComponent(mod)
	if comp == nil {
		return path, errors.New(errors.CodeNoComponent).WithDetailf("module %s", path)
	}

	if err := h.mounter.Mount(ctx, marker, comp, props); err != nil {
		return path, fmt.Errorf("mounting %s: %w", path, err)
	}
	return path, nil
}
