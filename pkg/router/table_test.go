package router

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-rsc/openrsc/pkg/module"
)

func TestTableMatch(t *testing.T) {
	home := module.New("/pages/Home.go")
	about := module.New("/pages/About.go")
	missing := module.New("/pages/Missing.go")

	table := NewTable(
		Route{Path: "/", Load: Static(home)},
		Route{Path: "/about", Load: Static(about)},
		Route{Path: Wildcard, Load: Static(missing)},
	)

	tests := []struct {
		path string
		want *module.Module
	}{
		{"/", home},
		{"", home},
		{"/about", about},
		{"/about?tab=team", about},
		{"/about#team", about},
		{"/about/", missing},
		{"/nope", missing},
		{"*", missing},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			r, ok := table.Match(tt.path)
			require.True(t, ok)
			m, err := r.Load(context.Background())
			require.NoError(t, err)
			assert.Same(t, tt.want, m)
		})
	}
}

func TestTableMatchWithoutWildcard(t *testing.T) {
	table := NewTable(Route{Path: "/", Load: Static(module.New("/h.go"))})
	_, ok := table.Match("/missing")
	assert.False(t, ok)
}

func TestTableReplaceAndOrder(t *testing.T) {
	first, second := module.New("/1.go"), module.New("/2.go")
	table := NewTable(
		Route{Path: "/a", Load: Static(first)},
		Route{Path: "/b", Load: Static(first)},
		Route{Path: "/a", Load: Static(second)},
	)

	routes := table.Routes()
	require.Len(t, routes, 2)
	assert.Equal(t, "/a", routes[0].Path)
	assert.Equal(t, "/b", routes[1].Path)

	r, _ := table.Match("/a")
	m, _ := r.Load(context.Background())
	assert.Same(t, second, m)
}

func TestTableAddPanics(t *testing.T) {
	table := NewTable()
	assert.Panics(t, func() { table.Add(Route{Path: "", Load: Static(nil)}) })
	assert.Panics(t, func() { table.Add(Route{Path: "/x"}) })
}

func TestFromLoader(t *testing.T) {
	reg := module.NewRegistry()
	reg.Register(module.New("/pages/Home.go"))

	m, err := FromLoader(reg, "/pages/Home.go")(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/pages/Home.go", m.Path)
}

func TestSameLocation(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"/a", "/a", true},
		{"/a/", "/a", true},
		{"/a?x=1", "/a/?x=1", true},
		{"/a?x=1", "/a?x=2", false},
		{"/a", "/b", false},
		{"/", "", true},
		{"/", "/", true},
		{"/a#top", "/a", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SameLocation(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}

func TestSplitPathAndQuery(t *testing.T) {
	p, q := SplitPathAndQuery("/search?q=go#results")
	assert.Equal(t, "/search", p)
	assert.Equal(t, "q=go", q)

	assert.Equal(t, "/", TrimTrailingSlash("/"))
	assert.Equal(t, "/docs", TrimTrailingSlash("/docs/"))
}
