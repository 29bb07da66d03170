// Package openrsc serves server-rendered pages whose client components
// resume in the browser.
//
// An App renders the requested path through a route table, splices the
// HTML into a page template at <!--app-html--> and, when the page was
// server rendered, marks the root container with data-ssr-complete so the
// client router can take over navigation. Render failures are returned as
// 500 text/plain responses carrying the formatted error.
//
// Client components are tagged at build time by the directive package and
// replaced by hydration markers during the render. See pkg/render and
// pkg/hydrate.
package openrsc
