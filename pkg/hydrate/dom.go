package hydrate

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/open-rsc/openrsc/pkg/vdom"
)

// Node is an element of a parsed page.
type Node interface {
	// Attr returns the value of the named attribute.
	Attr(name string) (string, bool)

	// InnerHTML returns the serialized children of the node.
	InnerHTML() string
}

// Document is a page the hydrator resumes.
type Document interface {
	// Root returns the application's mount container, or nil.
	Root() Node

	// Markers returns the hydration markers inside the root, in document order.
	Markers() []Node
}

// HTMLDocument is a Document backed by golang.org/x/net/html.
type HTMLDocument struct {
	doc  *html.Node
	root *html.Node
}

// ParseDocument parses a full HTML page.
func ParseDocument(r io.Reader) (*HTMLDocument, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	return &HTMLDocument{doc: doc, root: findByID(doc, vdom.RootID)}, nil
}

// Root implements Document.
func (d *HTMLDocument) Root() Node {
	if d.root == nil {
		return nil
	}
	return &htmlNode{n: d.root}
}

// Markers implements Document.
func (d *HTMLDocument) Markers() []Node {
	if d.root == nil {
		return nil
	}
	var out []Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && hasAttr(c, vdom.AttrClientComponent) {
				out = append(out, &htmlNode{n: c})
			}
			walk(c)
		}
	}
	walk(d.root)
	return out
}

// ServerRendered reports whether the root carries the server-render-complete flag.
func (d *HTMLDocument) ServerRendered() bool {
	return d.root != nil && hasAttr(d.root, vdom.AttrSSRComplete)
}

type htmlNode struct {
	n *html.Node
}

func (h *htmlNode) Attr(name string) (string, bool) {
	for _, a := range h.n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func (h *htmlNode) InnerHTML() string {
	var buf bytes.Buffer
	for c := h.n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return buf.String()
		}
	}
	return buf.String()
}

// NormalizeHTML parses s as the content of a div and re-serializes it, so
// that two fragments differing only in escaping or attribute quoting
// compare equal.
func NormalizeHTML(s string) (string, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(s), ctx)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return true
		}
	}
	return false
}
