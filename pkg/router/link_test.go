package router

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/open-rsc/openrsc/pkg/vdom"
)

func TestLink(t *testing.T) {
	node := Link("/about", "About us")

	assert.Equal(t, "a", node.Tag)
	assert.Equal(t, "/about", node.AttrString("href"))
	assert.True(t, IsLink(node))
	if assert.Len(t, node.Children, 1) {
		assert.Equal(t, "About us", node.Children[0].Text)
	}

	assert.False(t, IsLink(vdom.A(vdom.Href("/x"))))
	assert.False(t, IsLink(nil))
}

func TestMemoryHistory(t *testing.T) {
	h := NewMemoryHistory("")
	assert.Equal(t, "/", h.Location())

	h.Push("/a")
	h.Push("/b")
	assert.Equal(t, "/b", h.Location())
	assert.Equal(t, 2, h.Pushes())

	assert.True(t, h.Back())
	assert.Equal(t, "/a", h.Location())

	h.Push("/c")
	assert.Equal(t, 3, h.Len(), "forward entry /b should be dropped")
	assert.False(t, h.Forward())

	assert.True(t, h.Back())
	assert.True(t, h.Back())
	assert.False(t, h.Back())
	assert.Equal(t, "/", h.Location())
	assert.True(t, h.Forward())
	assert.Equal(t, "/a", h.Location())
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "noop", NavigateNoop.String())
	assert.Equal(t, "intercepted", NavigateIntercepted.String())
	assert.Equal(t, "full", NavigateFull.String())
	assert.Equal(t, "unknown", Decision(9).String())
}
