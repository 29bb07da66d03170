package router

import (
	"github.com/open-rsc/openrsc/pkg/vdom"
)

// AttrLink marks anchors whose activation is routed through Router.Navigate.
const AttrLink = "data-link"

// Link creates an anchor element with client-side navigation. Hosts that
// see a click on such an anchor call Router.Navigate and only let the
// browser follow the href when the decision is NavigateFull.
func Link(href string, children ...any) *vdom.VNode {
	return vdom.A(
		vdom.Href(href),
		DataLink(),
		children,
	)
}

// DataLink creates an anchor attribute that enables client-side navigation.
func DataLink() vdom.Attr {
	return vdom.Attr{Key: AttrLink, Value: "true"}
}

// IsLink reports whether the node is an anchor created by Link.
func IsLink(node *vdom.VNode) bool {
	return node != nil && node.Tag == "a" && node.AttrString(AttrLink) == "true"
}
