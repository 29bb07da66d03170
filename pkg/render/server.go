package render

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/open-rsc/openrsc/internal/errors"
	"github.com/open-rsc/openrsc/pkg/module"
	"github.com/open-rsc/openrsc/pkg/router"
	"github.com/open-rsc/openrsc/pkg/vdom"
)

// TracerName is the OpenTelemetry tracer used for render spans.
const TracerName = "github.com/open-rsc/openrsc/pkg/render"

// Result is the outcome of a server render. SSR is false when the path
// matched no route or the route's module had no component; HTML is empty
// in that case and callers must not mark the page as server-rendered.
type Result struct {
	HTML string
	SSR  bool
	Data any
}

// Server renders routes to HTML. It holds no per-request state and is safe
// for concurrent use.
type Server struct {
	table     *router.Table
	container func(*vdom.VNode) *vdom.VNode
	config    RendererConfig
	logger    *slog.Logger
	metrics   *Metrics
	tracer    trace.Tracer
}

// Option configures a Server.
type Option func(*Server)

// WithContainer sets the application's top-level composition. The default
// renders the root as is.
func WithContainer(fn func(root *vdom.VNode) *vdom.VNode) Option {
	return func(s *Server) { s.container = fn }
}

// WithRendererConfig sets the serializer configuration.
func WithRendererConfig(cfg RendererConfig) Option {
	return func(s *Server) { s.config = cfg }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMetrics enables Prometheus metrics.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithTracer sets the tracer. Defaults to the global provider's tracer.
func WithTracer(t trace.Tracer) Option {
	return func(s *Server) { s.tracer = t }
}

// NewServer creates a server renderer over a route table.
func NewServer(table *router.Table, opts ...Option) *Server {
	s := &Server{
		table:     table,
		container: func(root *vdom.VNode) *vdom.VNode { return vdom.Fragment(root) },
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(TracerName)
	}
	return s
}

// Render resolves path, invokes the route's component and serializes the
// tree with client components replaced by hydration markers. Route and
// component misses are not errors. Any other failure, including a panic
// in a component, is returned as an *errors.Error and no HTML is produced.
func (s *Server) Render(ctx context.Context, path string) (res Result, err error) {
	start := time.Now()
	boundaries := 0

	ctx, span := s.tracer.Start(ctx, "openrsc.render",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String("openrsc.path", path)),
	)
	defer span.End()

	defer func() {
		if rec := recover(); rec != nil {
			res = Result{}
			err = errors.New(errors.CodeComponentPanic).
				WithDetailf("panic: %v\n\n%s", rec, debug.Stack()).
				WithSuggestion(fmt.Sprintf("The route for %q panicked while rendering", path))
		}

		status := StatusOK
		switch {
		case err != nil:
			status = StatusError
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.logger.Error("render failed", "path", path, "error", err)
		case !res.SSR:
			status = StatusNotFound
			s.logger.Warn("no route or component", "path", path)
		default:
			s.logger.Debug("rendered", "path", path, "bytes", len(res.HTML), "boundaries", boundaries)
		}
		span.SetAttributes(
			attribute.Bool("openrsc.ssr", res.SSR),
			attribute.Int("openrsc.boundaries", boundaries),
		)
		s.metrics.observe(status, time.Since(start).Seconds(), boundaries)
	}()

	route, ok := s.table.Match(path)
	if !ok {
		return Result{}, nil
	}

	mod, err := route.Load(ctx)
	if err != nil {
		return Result{}, errors.New(errors.CodeRouteLoadFailed).
			WithDetailf("loading route %q for %q", route.Path, path).
			Wrap(err)
	}

	comp := module.SelectComponent(mod)
	if comp == nil {
		return Result{}, nil
	}
	span.SetAttributes(attribute.String("openrsc.component", comp.Name()))

	root, err := comp.Render(ctx, nil)
	if err != nil {
		return Result{}, errors.New(errors.CodeRenderFailed).
			WithDetailf("component %q for %q", comp.Name(), path).
			Wrap(err)
	}

	root, boundaries = ReplaceClientComponents(root)

	cfg := s.config
	cfg.Boundary = ReplaceClientComponents
	r := NewRenderer(cfg)
	html, err := r.RenderToString(ctx, s.container(root))
	boundaries += r.Boundaries()
	if err != nil {
		return Result{}, errors.New(errors.CodeRenderFailed).
			WithDetailf("serializing %q", path).
			Wrap(err)
	}

	return Result{HTML: html, SSR: true}, nil
}
