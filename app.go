package openrsc

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/open-rsc/openrsc/internal/dev"
	"github.com/open-rsc/openrsc/internal/errors"
	"github.com/open-rsc/openrsc/pkg/render"
	"github.com/open-rsc/openrsc/pkg/router"
)

// Well-known paths served by an App.
const (
	ReloadPath  = dev.ReloadPath
	MetricsPath = "/metrics"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// App serves server-rendered pages for a route table. It renders the
// requested path, splices the HTML into the page template and flags the
// root container when the page was server rendered.
//
//	table := router.NewTable(
//	    router.Route{Path: "/", Load: router.Static(home)},
//	    router.Route{Path: router.Wildcard, Load: router.Static(notFound)},
//	)
//	app, err := openrsc.New(table, openrsc.Config{Static: openrsc.StaticConfig{Dir: "public"}})
//	http.ListenAndServe(":3000", app)
type App struct {
	mux      chi.Router
	server   *render.Server
	template *Template
	static   *staticFiles
	reload   *dev.ReloadServer
	head     string
	config   Config
	logger   *slog.Logger
}

// New creates an App. It fails only when the template is unusable.
func New(table *router.Table, cfg Config) (*App, error) {
	cfg = cfg.withDefaults()

	tmpl, err := ParseTemplate(cfg.Template)
	if err != nil {
		return nil, err
	}

	opts := []render.Option{
		render.WithLogger(cfg.Logger),
		render.WithRendererConfig(cfg.rendererConfig()),
	}
	if cfg.Container != nil {
		opts = append(opts, render.WithContainer(cfg.Container))
	}
	if cfg.Registry != nil {
		opts = append(opts, render.WithMetrics(render.NewMetrics(cfg.Registry)))
	}

	a := &App{
		server:   render.NewServer(table, opts...),
		template: tmpl,
		static:   newStaticFiles(cfg.Static, cfg.DevMode),
		head:     cfg.Head,
		config:   cfg,
		logger:   cfg.Logger,
	}
	if cfg.DevMode {
		a.reload = dev.NewReloadServer(cfg.Logger)
		a.head += dev.ClientScript(cfg.ReloadURL)
	}
	a.mux = a.routes()
	return a, nil
}

func (a *App) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(a.requestID)

	if g, ok := a.config.Registry.(prometheus.Gatherer); ok {
		r.Method(http.MethodGet, MetricsPath, promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	}
	if a.reload != nil {
		r.Handle(ReloadPath, a.reload)
	}
	r.Get("/*", a.servePage)
	r.Head("/*", a.servePage)
	return r
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

// Server returns the underlying server renderer.
func (a *App) Server() *render.Server {
	return a.server
}

// Reload tells connected browsers to reload. It is a no-op outside dev mode.
func (a *App) Reload(files ...string) {
	if a.reload != nil {
		a.reload.NotifyReload(files...)
	}
}

// Close disconnects live reload clients.
func (a *App) Close() error {
	if a.reload != nil {
		a.reload.Close()
	}
	return nil
}

func (a *App) servePage(w http.ResponseWriter, r *http.Request) {
	if a.static.serve(w, r) {
		return
	}

	log := a.logger.With("request_id", RequestID(r.Context()), "path", r.URL.Path)

	res, err := a.server.Render(r.Context(), r.URL.Path)
	if err != nil {
		log.Error("render failed", "error", err)
		body := errors.Trace(err)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, body)
		return
	}

	page := a.template.Execute(a.head, res.HTML, res.SSR)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(page)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		io.WriteString(w, page)
	}
	log.Debug("page served", "ssr", res.SSR)
}

type requestIDKey struct{}

// RequestID returns the ID assigned to the request, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// requestID keeps an incoming X-Request-ID or assigns a new one.
func (a *App) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}
