package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"

	"github.com/open-rsc/openrsc/pkg/vdom"
)

// DefaultMaxComponentDepth bounds nested component invocations.
const DefaultMaxComponentDepth = 256

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// Pretty enables pretty-printed HTML output with indentation.
	// Should only be used in development as it increases output size.
	Pretty bool

	// Indent is the string used for each indentation level in pretty mode.
	// Defaults to two spaces if not specified.
	Indent string

	// MaxComponentDepth bounds nested component invocations.
	// Defaults to DefaultMaxComponentDepth.
	MaxComponentDepth int

	// Boundary, when set, is applied to the output of every server
	// component before it is serialized. The server renderer uses it to
	// mark client components nested inside server components.
	Boundary func(*vdom.VNode) (*vdom.VNode, int)
}

// Renderer serializes element trees to HTML. Component nodes are rendered
// by invoking the component with its props; a node's children reach the
// component as props["children"]. A Renderer is not safe for concurrent use.
type Renderer struct {
	config     RendererConfig
	boundaries int
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Indent == "" {
		config.Indent = "  "
	}
	if config.MaxComponentDepth <= 0 {
		config.MaxComponentDepth = DefaultMaxComponentDepth
	}
	return &Renderer{config: config}
}

// RenderToString renders a tree to an HTML string.
func (r *Renderer) RenderToString(ctx context.Context, node *vdom.VNode) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(ctx, &buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter streams a tree to the given writer.
func (r *Renderer) RenderToWriter(ctx context.Context, w io.Writer, node *vdom.VNode) error {
	return r.renderNode(ctx, w, node, renderState{})
}

// Boundaries returns how many markers the Boundary hook has added so far.
func (r *Renderer) Boundaries() int {
	return r.boundaries
}

type renderState struct {
	depth      int  // indentation depth
	components int  // nested component invocations
	inClient   bool // inside a client component's own output
}

// renderNode dispatches rendering based on node kind.
func (r *Renderer) renderNode(ctx context.Context, w io.Writer, node *vdom.VNode, st renderState) error {
	if node == nil {
		return nil
	}

	switch node.Kind {
	case vdom.KindElement:
		return r.renderElement(ctx, w, node, st)
	case vdom.KindText:
		_, err := io.WriteString(w, escapeHTML(node.Text))
		return err
	case vdom.KindFragment:
		return r.renderChildren(ctx, w, node.Children, st)
	case vdom.KindComponent:
		return r.renderComponent(ctx, w, node, st)
	case vdom.KindRaw:
		_, err := io.WriteString(w, node.Text)
		return err
	default:
		return fmt.Errorf("unknown node kind: %d", node.Kind)
	}
}

func (r *Renderer) renderChildren(ctx context.Context, w io.Writer, children []*vdom.VNode, st renderState) error {
	for _, child := range children {
		if err := r.renderNode(ctx, w, child, st); err != nil {
			return err
		}
	}
	return nil
}

// renderElement renders an HTML element with its attributes and children.
func (r *Renderer) renderElement(ctx context.Context, w io.Writer, node *vdom.VNode, st renderState) error {
	tag := node.Tag

	if r.config.Pretty && st.depth > 0 {
		r.writeIndent(w, st.depth)
	}

	if _, err := io.WriteString(w, "<"+tag); err != nil {
		return err
	}
	if err := r.renderAttributes(w, node); err != nil {
		return err
	}
	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}

	if isVoidElement(tag) {
		if r.config.Pretty {
			io.WriteString(w, "\n")
		}
		return nil
	}

	hasBlockChildren := len(node.Children) > 0 && !isInlineElement(tag)
	if r.config.Pretty && hasBlockChildren {
		io.WriteString(w, "\n")
	}

	child := st
	child.depth++
	if err := r.renderChildren(ctx, w, node.Children, child); err != nil {
		return err
	}

	if r.config.Pretty && hasBlockChildren {
		r.writeIndent(w, st.depth)
	}
	if _, err := fmt.Fprintf(w, "</%s>", tag); err != nil {
		return err
	}
	if r.config.Pretty {
		io.WriteString(w, "\n")
	}
	return nil
}

// renderComponent invokes the component and renders its output in place.
func (r *Renderer) renderComponent(ctx context.Context, w io.Writer, node *vdom.VNode, st renderState) error {
	if node.Comp == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if st.components >= r.config.MaxComponentDepth {
		return fmt.Errorf("component %q: nesting exceeds %d levels", node.Comp.Name(), r.config.MaxComponentDepth)
	}

	output, err := node.Comp.Render(ctx, componentProps(node))
	if err != nil {
		return fmt.Errorf("component %q: %w", node.Comp.Name(), err)
	}

	next := st
	next.components++
	if node.Comp.IsClient() {
		next.inClient = true
	} else if !st.inClient && r.config.Boundary != nil {
		var n int
		output, n = r.config.Boundary(output)
		r.boundaries += n
	}
	return r.renderNode(ctx, w, output, next)
}

// componentProps returns the props a component node is invoked with.
func componentProps(node *vdom.VNode) vdom.Props {
	if len(node.Children) == 0 {
		return node.Props
	}
	props := make(vdom.Props, len(node.Props)+1)
	for k, v := range node.Props {
		props[k] = v
	}
	props[vdom.ChildrenProp] = node.Children
	return props
}

// renderAttributes renders all attributes for an element in sorted order.
func (r *Renderer) renderAttributes(w io.Writer, node *vdom.VNode) error {
	if len(node.Props) == 0 {
		return nil
	}

	keys := make([]string, 0, len(node.Props))
	for key := range node.Props {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := node.Props[key]

		// Internal props, children and handlers are never rendered.
		if strings.HasPrefix(key, "_") || key == "key" || key == vdom.ChildrenProp || !renderable(value) {
			continue
		}

		switch key {
		case "className":
			key = "class"
		case "htmlFor":
			key = "for"
		}

		if isBooleanAttr(key) {
			if b, ok := value.(bool); ok {
				if b {
					if _, err := io.WriteString(w, " "+key); err != nil {
						return err
					}
				}
				continue
			}
		}

		strValue := attrToString(value)
		if strValue == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, ` %s="%s"`, key, escapeAttr(strValue)); err != nil {
			return err
		}
	}
	return nil
}

// renderable reports whether an attribute value has an HTML representation.
func renderable(value any) bool {
	switch value.(type) {
	case nil:
		return false
	case *vdom.VNode, []*vdom.VNode, *vdom.Component:
		return false
	}
	switch reflect.ValueOf(value).Kind() {
	case reflect.Func, reflect.Chan:
		return false
	}
	return true
}

// attrToString converts an attribute value to a string.
func attrToString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case int:
		return fmt.Sprintf("%d", v)
	case int64:
		return fmt.Sprintf("%d", v)
	case float64:
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// writeIndent writes indentation for pretty printing.
func (r *Renderer) writeIndent(w io.Writer, depth int) {
	for i := 0; i < depth; i++ {
		io.WriteString(w, r.config.Indent)
	}
}
