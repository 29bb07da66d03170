package router

import "strings"

// SplitPathAndQuery splits a path into path and query components.
// The query is returned without the leading "?". A fragment is dropped.
func SplitPathAndQuery(input string) (path, query string) {
	if i := strings.IndexByte(input, '#'); i >= 0 {
		input = input[:i]
	}
	if i := strings.IndexByte(input, '?'); i >= 0 {
		return input[:i], input[i+1:]
	}
	return input, ""
}

// TrimTrailingSlash removes a single trailing "/" from every path but the root.
func TrimTrailingSlash(path string) string {
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		return path[:len(path)-1]
	}
	return path
}

// SameLocation reports whether a and b name the same path and query,
// ignoring a trailing "/" on the path.
func SameLocation(a, b string) bool {
	ap, aq := SplitPathAndQuery(a)
	bp, bq := SplitPathAndQuery(b)
	if ap == "" {
		ap = "/"
	}
	if bp == "" {
		bp = "/"
	}
	return TrimTrailingSlash(ap) == TrimTrailingSlash(bp) && aq == bq
}
