package vdom

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"reflect"
	"sort"

	"github.com/vmihailenco/msgpack/v5"
)

// Hydration marker wire format. These attributes are the only channel that
// carries a component's tag from the server render to the browser.
const (
	// AttrClientComponent flags a marker wrapper.
	AttrClientComponent = "data-client-component"

	// AttrComponentPath holds the component tag (module path).
	AttrComponentPath = "data-component-path"

	// AttrComponentProps holds the encoded serializable props.
	AttrComponentProps = "data-component-props"

	// AttrSSRComplete is set on the root container when the server rendered the page.
	AttrSSRComplete = "data-ssr-complete"

	// RootID is the id of the application's mount container.
	RootID = "root"

	// MarkerTag is the element used for marker wrappers.
	MarkerTag = "div"
)

// ClientMarker wraps a client component invocation in a hydration marker.
// The original node becomes the wrapper's only child, unmodified, so its
// server output is still rendered inline.
func ClientMarker(node *VNode) *VNode {
	wrapper := &VNode{
		Kind: KindElement,
		Tag:  MarkerTag,
		Props: Props{
			AttrClientComponent: true,
			AttrComponentPath:   node.Comp.Tag(),
		},
		Children: []*VNode{node},
	}
	if encoded, err := EncodeProps(node.Props); err == nil && encoded != "" {
		wrapper.Props[AttrComponentProps] = encoded
	}
	return wrapper
}

// IsMarker reports whether the node is a hydration marker wrapper.
func IsMarker(node *VNode) bool {
	return node != nil && node.Kind == KindElement && node.HasAttr(AttrClientComponent)
}

// CountMarkers returns the number of marker wrappers in the tree.
func CountMarkers(node *VNode) int {
	if node == nil {
		return 0
	}
	count := 0
	if IsMarker(node) {
		count = 1
	}
	for _, child := range node.Children {
		count += CountMarkers(child)
	}
	return count
}

// EncodeProps serializes the transferable subset of props for a marker.
// Children, nodes, components and functions are never transferred. An empty
// string means there was nothing to transfer.
func EncodeProps(props Props) (string, error) {
	transferable := make(map[string]any, len(props))
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if k == ChildrenProp || !isTransferable(props[k]) {
			continue
		}
		transferable[k] = props[k]
	}
	if len(transferable) == 0 {
		return "", nil
	}

	packed, err := msgpack.Marshal(transferable)
	if err != nil {
		return "", fmt.Errorf("encoding props: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(packed), nil
}

// DecodeProps reverses EncodeProps. Integers decode as int64/uint64.
func DecodeProps(encoded string) (Props, error) {
	if encoded == "" {
		return Props{}, nil
	}
	packed, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decoding props: %w", err)
	}

	dec := msgpack.GetDecoder()
	defer msgpack.PutDecoder(dec)
	dec.Reset(bytes.NewReader(packed))
	dec.UseLooseInterfaceDecoding(true)

	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding props: %w", err)
	}
	return Props(out), nil
}

func isTransferable(v any) bool {
	switch v.(type) {
	case nil:
		return true
	case *VNode, []*VNode, *Component:
		return false
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return false
	}
	return true
}
