// Package vdom provides the element tree used by openrsc.
//
// A tree is built from VNode values: elements, text, fragments, raw HTML and
// component invocations. Trees are produced fresh for every render and are
// never mutated in place once built.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Div(Class("card"), ID("main"),
//	    H1(Text("Title")),
//	    Counter.Element(Props{"start": 3}),
//	)
//
// # Components
//
// A Component is a named render function with a write-once tag. A tagged
// component is a client component: the server emits a hydration marker for
// each invocation instead of treating it as server-only output. Tags are
// normally set by the init functions the directive tagger generates:
//
//	func init() { vdom.Tag(Default, "/components/Counter.go") }
//
// # Markers
//
// ClientMarker wraps an invocation in a div carrying AttrClientComponent,
// AttrComponentPath and, when there is anything to transfer,
// AttrComponentProps (msgpack, base64url).
package vdom
