package openrsc

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/open-rsc/openrsc/pkg/render"
	"github.com/open-rsc/openrsc/pkg/vdom"
)

// Config configures an App.
type Config struct {
	// Template is the HTML page the render output is spliced into. It must
	// contain the <!--app-html--> placeholder inside <div id="root">.
	// Default: DefaultTemplate.
	Template string

	// Head is inserted at the <!--app-head--> placeholder.
	Head string

	// Container wraps every page root, e.g. a layout shared by all routes.
	Container func(root *vdom.VNode) *vdom.VNode

	// Static configures static file serving.
	Static StaticConfig

	// DevMode pretty-prints HTML, disables static caching and serves the
	// live reload endpoint.
	DevMode bool

	// ReloadURL is the websocket URL the injected dev script connects to.
	// Empty means the App's own reload endpoint on the same origin.
	ReloadURL string

	// Registry receives render metrics and, when it is also a
	// prometheus.Gatherer, is exposed at MetricsPath. Nil disables metrics.
	Registry prometheus.Registerer

	// Logger is the structured logger for the application.
	// If nil, slog.Default() is used.
	Logger *slog.Logger
}

// StaticConfig configures static file serving.
type StaticConfig struct {
	// Dir is the directory containing static files (e.g., "public").
	// Files are only served when Dir is set.
	Dir string

	// Prefix is the URL path prefix for static files.
	// A file at public/app.js with Prefix "/assets/" is served at /assets/app.js.
	// Default: "/".
	Prefix string

	// CacheControl determines caching behavior for static files.
	CacheControl CacheControlStrategy

	// Headers are added to every static response.
	Headers map[string]string
}

// CacheControlStrategy determines caching behavior for static files.
type CacheControlStrategy int

const (
	// CacheControlNone sends no-store headers.
	CacheControlNone CacheControlStrategy = iota

	// CacheControlProduction caches fingerprinted files forever and
	// everything else for an hour.
	CacheControlProduction
)

// DefaultTemplate is the page used when Config.Template is empty.
const DefaultTemplate = `<!doctype html>
<html lang="en">
  <head>
    <meta charset="UTF-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1.0" />
    <!--app-head-->
  </head>
  <body>
    <div id="root"><!--app-html--></div>
  </body>
</html>
`

func (c Config) withDefaults() Config {
	if c.Template == "" {
		c.Template = DefaultTemplate
	}
	if c.Static.Prefix == "" {
		c.Static.Prefix = "/"
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.ReloadURL == "" {
		c.ReloadURL = ReloadPath
	}
	return c
}

func (c Config) rendererConfig() render.RendererConfig {
	return render.RendererConfig{Pretty: c.DevMode}
}
