package render

import "github.com/open-rsc/openrsc/pkg/vdom"

// ReplaceClientComponents wraps every client component node in a hydration
// marker and returns the new root and the number of markers added.
//
// Nodes that contain no client component are returned as is, so a tree
// without client components comes back as the same pointer. Ancestors of a
// replaced node are shallow-cloned; sibling order never changes. The
// subtree of a client component node is not walked, and neither is an
// existing marker, so trees that pass through a server component's children
// are never wrapped twice.
func ReplaceClientComponents(node *vdom.VNode) (*vdom.VNode, int) {
	if node == nil {
		return nil, 0
	}
	if vdom.IsMarker(node) {
		return node, 0
	}
	if node.IsComponent() && node.Comp.IsClient() {
		return vdom.ClientMarker(node), 1
	}

	var out *vdom.VNode
	total := 0
	for i, child := range node.Children {
		replaced, n := ReplaceClientComponents(child)
		if n == 0 {
			continue
		}
		if out == nil {
			out = node.Clone()
		}
		out.Children[i] = replaced
		total += n
	}
	if out == nil {
		return node, 0
	}
	return out, total
}
