// Package errors provides structured, actionable error messages for openrsc.
//
// Every failure that reaches a user (a tagging pass that cannot parse a
// file, a render that fails or panics, a hydration marker that cannot be
// resumed) is reported as an *Error carrying a registered code:
//
//	E040-E059  hydration
//	E100-E119  tagging (compile)
//	E120-E139  configuration
//	E200-E219  rendering (runtime)
//	E300-E319  publishing
//
// # Usage
//
//	err := errors.New(errors.CodeTransformParse).
//	    WithLocation("components/Counter.go", 15, 12).
//	    WithSuggestion("Place the directive on its own line above the package clause").
//	    Wrap(parseErr)
//
//	fmt.Print(err.Format())
//
// Format prints multi-line details verbatim, which is how recovered render
// panics show their stack trace.
package errors
