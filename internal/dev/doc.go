// Package dev implements the development loop: a file watcher that re-runs
// the directive tagger, and a websocket server that reloads browsers.
//
//	srv, err := dev.NewServer(dev.ServerOptions{Config: cfg})
//	if err != nil {
//	    return err
//	}
//	return srv.Start(ctx)
//
// The browser connects to /_openrsc/reload. Messages are JSON-encoded:
//
//	{"type": "reload", "files": ["..."]} // full page reload
//	{"type": "error", "error": "..."}    // show the error overlay
//	{"type": "clear"}                    // hide the overlay
//
// When dev.proxy names the running application, every other request is
// proxied to it and HTML responses get the reload script injected.
package dev
