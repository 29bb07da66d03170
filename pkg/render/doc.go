// Package render provides server-side rendering for openrsc.
//
// Renderer serializes element trees to HTML, handling escaping, void
// elements and boolean attributes. Component nodes are invoked with their
// props during serialization.
//
// Server ties rendering to routing:
//
//	srv := render.NewServer(table,
//	    render.WithMetrics(render.NewMetrics(prometheus.DefaultRegisterer)),
//	)
//	res, err := srv.Render(ctx, "/about")
//	if err != nil {
//	    // 500 with errors.Format(err)
//	}
//	if res.SSR {
//	    // mark the root container with data-ssr-complete
//	}
//
// The route's component is invoked once. Client components found in its
// tree, or in the output of nested server components, are wrapped in
// hydration markers by ReplaceClientComponents and still render their
// server output inside the marker.
//
// # Security
//
// All text content is escaped by default to prevent XSS attacks.
// Raw HTML can be inserted using KindRaw nodes, but should only be
// used with trusted content.
package render
