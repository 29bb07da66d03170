// Package directive implements the build-time client directive tagger.
//
// A Go source file opts its components into client execution by carrying
// the directive literal, conventionally as a comment above the package
// clause:
//
//	//"use client"
//	package widgets
//
//	var Default = vdom.Func("Counter", renderCounter)
//
// Transform removes the directive and appends a registration that tags the
// file's default export with its module ID:
//
//	// openrsc:registration (generated, do not edit)
//	func init() { vdom.Tag(Default, "/widgets/counter.go") }
//
// The default export is a package-level variable named Default, or failing
// that the first exported package-level variable. vdom.Tag ignores values
// that are not components, so tagging never fails at init time.
//
// Detection is textual: the literal inside an unrelated string or comment
// is also treated as a directive.
package directive
