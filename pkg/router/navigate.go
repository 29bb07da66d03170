package router

// Decision is the outcome of a navigation intent.
type Decision uint8

const (
	// NavigateNoop means the target is the current location; nothing happened.
	NavigateNoop Decision = iota

	// NavigateIntercepted means the router pushed history and is loading the
	// target itself. The host must suppress the default navigation.
	NavigateIntercepted

	// NavigateFull means the host should perform a full page navigation.
	NavigateFull
)

// String returns the string representation of the Decision.
func (d Decision) String() string {
	switch d {
	case NavigateNoop:
		return "noop"
	case NavigateIntercepted:
		return "intercepted"
	case NavigateFull:
		return "full"
	default:
		return "unknown"
	}
}

// NotFoundText is the content of the element shown when a path resolves to
// no route or no component.
const NotFoundText = "404 - Not Found"
