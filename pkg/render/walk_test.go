package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-rsc/openrsc/pkg/vdom"
)

func TestWalkNoClientIsNoop(t *testing.T) {
	server := vdom.Func("Server", func(vdom.Props) *vdom.VNode { return vdom.Div() })
	tree := vdom.Div(vdom.Header("h"), vdom.Ul(vdom.Li("a"), vdom.Li(server)))
	before := tree.Clone()

	out, n := ReplaceClientComponents(tree)
	assert.Zero(t, n)
	assert.Same(t, tree, out)
	assert.True(t, vdom.Equal(before, out))
}

func TestWalkWrapsEachClientNode(t *testing.T) {
	counter := vdom.Func("Counter", nil, vdom.WithTag("/src/widgets/Counter.tsx"))
	legacy := vdom.Func("Legacy", nil, vdom.WithSource(`"use client"`))

	untouched := vdom.P("static")
	c1 := counter.Element(vdom.Props{"start": 1})
	c2 := legacy.Element(nil)
	list := vdom.Ul(vdom.Li(c2))
	tree := vdom.Div(untouched, c1, list)

	out, n := ReplaceClientComponents(tree)
	require.Equal(t, 2, n)
	require.NotSame(t, tree, out)
	require.Len(t, out.Children, 3)

	assert.Same(t, untouched, out.Children[0], "siblings keep identity")

	m1 := out.Children[1]
	assert.True(t, vdom.IsMarker(m1))
	assert.Equal(t, "/src/widgets/Counter.tsx", m1.AttrString(vdom.AttrComponentPath))
	assert.Same(t, c1, m1.Children[0], "original node is nested unmodified")

	m2 := out.Children[2].Children[0].Children[0]
	assert.True(t, vdom.IsMarker(m2))
	assert.Same(t, c2, m2.Children[0])

	// The input tree is untouched.
	assert.Same(t, c1, tree.Children[1])
	assert.Same(t, c2, list.Children[0].Children[0])
}

func TestWalkDoesNotDescendIntoClientNodes(t *testing.T) {
	inner := vdom.Func("Inner", nil, vdom.WithTag("/inner.go"))
	outer := vdom.Func("Outer", nil, vdom.WithTag("/outer.go"))

	tree := outer.Element(nil, inner.Element(nil))
	out, n := ReplaceClientComponents(tree)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, vdom.CountMarkers(out))
}

func TestWalkComponentChildren(t *testing.T) {
	layout := vdom.Func("Layout", nil)
	counter := vdom.Func("Counter", nil, vdom.WithTag("/c.go"))

	tree := layout.Element(nil, counter.Element(nil))
	out, n := ReplaceClientComponents(tree)
	require.Equal(t, 1, n)
	assert.True(t, out.IsComponent())
	assert.True(t, vdom.IsMarker(out.Children[0]))
}

func TestWalkNil(t *testing.T) {
	out, n := ReplaceClientComponents(nil)
	assert.Nil(t, out)
	assert.Zero(t, n)
}

func TestWalkLeavesExistingMarkers(t *testing.T) {
	counter := vdom.Func("Counter", nil, vdom.WithTag("/c.go"))

	once, n := ReplaceClientComponents(vdom.Div(counter.Element(nil)))
	require.Equal(t, 1, n)

	twice, n := ReplaceClientComponents(once)
	assert.Zero(t, n)
	assert.Same(t, once, twice)
	assert.Equal(t, 1, vdom.CountMarkers(twice))
}
