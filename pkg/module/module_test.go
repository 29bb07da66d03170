package module

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-rsc/openrsc/pkg/vdom"
)

func comp(name string) *vdom.Component {
	return vdom.Func(name, func(vdom.Props) *vdom.VNode { return vdom.Div(name) })
}

func TestSelectComponent(t *testing.T) {
	a, b, def := comp("A"), comp("B"), comp("Default")

	tests := []struct {
		name string
		mod  *Module
		want *vdom.Component
	}{
		{"nil module", nil, nil},
		{"default wins", New("/m.go", "A", a, "Default", def), def},
		{"first component in order", New("/m.go", "Title", "x", "B", b, "A", a), b},
		{"non-component default skipped", New("/m.go", "Default", "text", "A", a), a},
		{"no component", New("/m.go", "Title", "x", "Count", 3), nil},
		{"empty", &Module{Path: "/m.go"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Same(t, tt.want, SelectComponent(tt.mod))
		})
	}
}

func TestNewPanicsOnBadName(t *testing.T) {
	assert.Panics(t, func() { New("/m.go", 1, comp("A")) })
}

func TestLookup(t *testing.T) {
	m := New("/m.go", "Title", "home")
	v, ok := m.Lookup("Title")
	assert.True(t, ok)
	assert.Equal(t, "home", v)

	_, ok = m.Lookup("Missing")
	assert.False(t, ok)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	c := comp("Counter")
	require.True(t, c.SetTag("/components/Counter.go"))

	assert.True(t, reg.RegisterComponent(c))
	assert.False(t, reg.RegisterComponent(comp("Untagged")))
	reg.Register(New("/pages/Home.go", "Default", comp("Home")))

	assert.Equal(t, []string{"/components/Counter.go", "/pages/Home.go"}, reg.Paths())

	m, err := reg.Load(context.Background(), "/components/Counter.go")
	require.NoError(t, err)
	assert.Same(t, c, SelectComponent(m))

	_, err = reg.Load(context.Background(), "/nope.go")
	var nf *ErrNotFound
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "/nope.go", nf.Path)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = reg.Load(ctx, "/pages/Home.go")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoaderFunc(t *testing.T) {
	var got string
	var l Loader = LoaderFunc(func(_ context.Context, path string) (*Module, error) {
		got = path
		return &Module{Path: path}, nil
	})
	m, err := l.Load(context.Background(), "/x.go")
	require.NoError(t, err)
	assert.Equal(t, "/x.go", m.Path)
	assert.Equal(t, "/x.go", got)
}
