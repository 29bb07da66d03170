package vdom

import "strings"

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement   VKind = iota // <div>, <button>, etc.
	KindText                   // Plain text node
	KindFragment               // Grouping without wrapper
	KindComponent              // Component invocation, rendered by the serializer
	KindRaw                    // Raw HTML (dangerous)
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	case KindComponent:
		return "Component"
	case KindRaw:
		return "Raw"
	default:
		return "Unknown"
	}
}

// VNode is a node of the element tree.
//
// Trees are built fresh for every render and treated as immutable once
// built: passes that need to change a tree clone the nodes they touch.
type VNode struct {
	Kind     VKind      // Node type
	Tag      string     // Element tag name (e.g., "div")
	Props    Props      // Attributes for elements, props for components
	Children []*VNode   // Child nodes
	Key      string     // Reconciliation key
	Text     string     // For KindText and KindRaw
	Comp     *Component // For KindComponent
}

// Props holds attributes or component props.
type Props map[string]any

// ChildrenProp is the prop under which a component node's children are
// handed to its render function.
const ChildrenProp = "children"

// Clone returns a shallow copy of the node. Props and Children get fresh
// backing storage so the copy can be modified without touching the original.
func (v *VNode) Clone() *VNode {
	if v == nil {
		return nil
	}
	c := *v
	if v.Props != nil {
		c.Props = make(Props, len(v.Props))
		for k, val := range v.Props {
			c.Props[k] = val
		}
	}
	if v.Children != nil {
		c.Children = append([]*VNode(nil), v.Children...)
	}
	return &c
}

// IsComponent reports whether the node is a component invocation.
func (v *VNode) IsComponent() bool {
	return v != nil && v.Kind == KindComponent && v.Comp != nil
}

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// HasAttr reports whether the element has the attribute set.
func (v *VNode) HasAttr(key string) bool {
	if v == nil || v.Props == nil {
		return false
	}
	_, ok := v.Props[key]
	return ok
}

// AttrString returns the attribute value as a string.
func (v *VNode) AttrString(key string) string {
	if v == nil || v.Props == nil {
		return ""
	}
	switch val := v.Props[key].(type) {
	case string:
		return val
	case nil:
		return ""
	default:
		return strings.TrimSpace(stringify(val))
	}
}
