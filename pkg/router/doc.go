// Package router matches paths to route modules and drives client-side
// navigation.
//
// # Route Table
//
// A Table holds literal routes plus an optional Wildcard fallback:
//
//	table := router.NewTable(
//	    router.Route{Path: "/", Load: router.Static(home)},
//	    router.Route{Path: router.Wildcard, Load: router.Static(notFound)},
//	)
//
// Parameterized segments are not supported; a path either equals a literal
// route or falls through to the wildcard.
//
// # Client Router
//
// Router is a single-owner loop. Navigation intents, back/forward events
// and load results are messages on its channel, so a load that resolves
// after the user has moved on is compared against the current path and
// dropped:
//
//	r := router.NewRouter(router.Config{
//	    Table:          table,
//	    History:        history,
//	    ServerRendered: root.HasAttr(vdom.AttrSSRComplete),
//	})
//	go r.Run(ctx)
//
//	if d, _ := r.Navigate("/about"); d == router.NavigateFull {
//	    // let the browser follow the link
//	}
package router
