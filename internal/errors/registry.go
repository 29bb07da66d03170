package errors

import (
	"maps"
	"slices"
)

// Template defines a registered error type.
type Template struct {
	Category Category
	Message  string
	Detail   string
}

// Registered codes.
const (
	CodeMarkerMissingPath = "E040"
	CodeHydrationMismatch = "E041"
	CodeModuleLoadFailed  = "E042"
	CodeNoComponent       = "E043"
	CodeMarkerProps       = "E044"

	CodeTransformParse = "E100"
	CodeTransformWrite = "E101"
	CodeScanFailed     = "E102"

	CodeConfigInvalid  = "E120"
	CodeConfigNotFound = "E121"

	CodeRenderFailed    = "E200"
	CodeRouteLoadFailed = "E201"
	CodeComponentPanic  = "E202"

	CodePublishFailed = "E300"
)

var registry = map[string]Template{
	// Hydration (E040-E059)
	CodeMarkerMissingPath: {
		Category: CategoryHydration,
		Message:  "Hydration marker has no component path",
		Detail:   "A data-client-component element was found without a data-component-path attribute, so there is nothing to load.",
	},
	CodeHydrationMismatch: {
		Category: CategoryHydration,
		Message:  "Hydration mismatch",
		Detail:   "The client render of a component differs from the HTML the server produced inside its marker.",
	},
	CodeModuleLoadFailed: {
		Category: CategoryHydration,
		Message:  "Module load failed",
		Detail:   "The module referenced by a hydration marker could not be loaded.",
	},
	CodeNoComponent: {
		Category: CategoryHydration,
		Message:  "Module has no component",
		Detail:   "The module was loaded but exports neither Default nor any other component.",
	},
	CodeMarkerProps: {
		Category: CategoryHydration,
		Message:  "Hydration marker props are malformed",
		Detail:   "The data-component-props attribute is not valid base64url-encoded msgpack.",
	},

	// Tagging (E100-E119)
	CodeTransformParse: {
		Category: CategoryCompile,
		Message:  "Cannot parse module after removing directive",
		Detail:   "The source file did not parse as Go once the client directive was stripped.",
	},
	CodeTransformWrite: {
		Category: CategoryCompile,
		Message:  "Cannot write tagged module",
	},
	CodeScanFailed: {
		Category: CategoryCompile,
		Message:  "Source scan failed",
	},

	// Config (E120-E139)
	CodeConfigInvalid: {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},
	CodeConfigNotFound: {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "No openrsc.json or openrsc.yaml was found in the project root.",
	},

	// Rendering (E200-E219)
	CodeRenderFailed: {
		Category: CategoryRuntime,
		Message:  "Render failed",
	},
	CodeRouteLoadFailed: {
		Category: CategoryRuntime,
		Message:  "Route module failed to load",
	},
	CodeComponentPanic: {
		Category: CategoryRuntime,
		Message:  "Component panicked during render",
	},

	// Publishing (E300-E319)
	CodePublishFailed: {
		Category: CategoryCLI,
		Message:  "Publish failed",
	},
}

// GetAllCodes returns every registered code in ascending order.
func GetAllCodes() []string {
	return slices.Sorted(maps.Keys(registry))
}

// GetTemplate returns the template registered for code.
func GetTemplate(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
