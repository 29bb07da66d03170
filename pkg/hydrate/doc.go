// Package hydrate resumes client components in a server-rendered page.
//
// The server leaves a marker around every client component:
//
//	<div data-client-component="true" data-component-path="/widgets/counter.go">
//	  <button>0</button>
//	</div>
//
// A Hydrator finds the markers inside the root container, loads each
// marker's module through a module.Loader, selects its component and hands
// it to a Mounter together with the decoded props. Markers hydrate
// concurrently and fail independently; failures end up in the Report.
package hydrate
