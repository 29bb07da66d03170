package vdom

import (
	"bytes"
	"context"
	"fmt"

	"github.com/a-h/templ"
)

// Templ adapts a templ component into a server component. Its output is
// embedded verbatim as raw HTML, so it cannot contain client components.
func Templ(name string, tc templ.Component, opts ...Option) *Component {
	return Define(name, func(ctx context.Context, _ Props) (*VNode, error) {
		if tc == nil {
			return nil, nil
		}
		var buf bytes.Buffer
		if err := tc.Render(ctx, &buf); err != nil {
			return nil, fmt.Errorf("rendering templ component %q: %w", name, err)
		}
		return Raw(buf.String()), nil
	}, opts...)
}
