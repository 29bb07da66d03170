package hydrate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rscerrors "github.com/open-rsc/openrsc/internal/errors"
	"github.com/open-rsc/openrsc/pkg/module"
	"github.com/open-rsc/openrsc/pkg/render"
	"github.com/open-rsc/openrsc/pkg/router"
	"github.com/open-rsc/openrsc/pkg/vdom"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func counter() *vdom.Component {
	return vdom.Func("Counter", func(p vdom.Props) *vdom.VNode {
		label, _ := p["label"].(string)
		return vdom.Button(vdom.Class("counter"), label)
	}, vdom.WithTag("/widgets/counter.go"))
}

func page(body string) string {
	return `<!doctype html><html><head></head><body><div id="root" data-ssr-complete="true">` +
		body + `</div></body></html>`
}

func parse(t *testing.T, src string) *HTMLDocument {
	t.Helper()
	doc, err := ParseDocument(strings.NewReader(src))
	require.NoError(t, err)
	return doc
}

func TestHydrateServerRenderedPage(t *testing.T) {
	c := counter()
	table := router.NewTable(router.Route{Path: "/", Load: router.Static(module.New("/pages/home.go",
		"Default", vdom.Func("Home", func(vdom.Props) *vdom.VNode {
			return vdom.Main(
				vdom.H1("Counter demo"),
				c.Element(vdom.Props{"label": "0"}),
				c.Element(vdom.Props{"label": "10"}),
			)
		})))})

	res, err := render.NewServer(table, render.WithLogger(quiet)).Render(context.Background(), "/")
	require.NoError(t, err)
	require.True(t, res.SSR)

	doc := parse(t, page(res.HTML))
	assert.True(t, doc.ServerRendered())
	require.Len(t, doc.Markers(), 2)

	reg := module.NewRegistry()
	require.True(t, reg.RegisterComponent(c))

	var mounted atomic.Int32
	var labels []string
	mounter := &VerifyMounter{OnMount: func(_ Node, comp *vdom.Component, props vdom.Props) {
		mounted.Add(1)
		assert.Same(t, c, comp)
		labels = append(labels, props["label"].(string))
	}}

	report := New(reg, mounter, WithLogger(quiet), WithConcurrency(1)).Hydrate(context.Background(), doc)
	assert.True(t, report.OK(), "%v", report.Failures)
	assert.Equal(t, 2, report.Markers)
	assert.Equal(t, []string{"/widgets/counter.go", "/widgets/counter.go"}, report.Hydrated)
	assert.EqualValues(t, 2, mounted.Load())
	assert.ElementsMatch(t, []string{"0", "10"}, labels)
}

func TestHydrateClientInsideLayoutChildren(t *testing.T) {
	c := counter()
	layout := vdom.Func("Layout", func(p vdom.Props) *vdom.VNode {
		return vdom.Section(p[vdom.ChildrenProp])
	})
	table := router.NewTable(router.Route{Path: "/", Load: router.Static(module.New("/pages/home.go",
		"Default", vdom.Func("Home", func(vdom.Props) *vdom.VNode {
			return layout.Element(nil, c.Element(vdom.Props{"label": "3"}))
		})))})

	res, err := render.NewServer(table, render.WithLogger(quiet)).Render(context.Background(), "/")
	require.NoError(t, err)

	doc := parse(t, page(res.HTML))
	require.Len(t, doc.Markers(), 1)

	reg := module.NewRegistry()
	require.True(t, reg.RegisterComponent(c))

	report := New(reg, &VerifyMounter{}, WithLogger(quiet)).Hydrate(context.Background(), doc)
	assert.True(t, report.OK(), "%v", report.Failures)
	assert.Equal(t, []string{"/widgets/counter.go"}, report.Hydrated)
}

func TestHydrateWithoutRoot(t *testing.T) {
	doc := parse(t, `<html><body><div data-client-component="true" data-component-path="/x.go"></div></body></html>`)
	assert.Nil(t, doc.Root())
	assert.Empty(t, doc.Markers())
	assert.False(t, doc.ServerRendered())

	called := false
	h := New(module.NewRegistry(), MounterFunc(func(context.Context, Node, *vdom.Component, vdom.Props) error {
		called = true
		return nil
	}), WithLogger(quiet))

	report := h.Hydrate(context.Background(), doc)
	assert.Zero(t, report.Markers)
	assert.True(t, report.OK())
	assert.False(t, called)

	assert.True(t, h.Hydrate(context.Background(), nil).OK())
}

func TestHydrateIsolatesFailures(t *testing.T) {
	c := counter()
	reg := module.NewRegistry()
	reg.RegisterComponent(c)
	reg.Register(module.New("/data.go", "Title", "x"))
	reg.Register(module.New("/boom.go", "Default", vdom.Func("Boom", func(vdom.Props) *vdom.VNode {
		var m map[string]int
		m["x"] = 1
		return nil
	}, vdom.WithTag("/boom.go"))))

	good, err := vdom.EncodeProps(vdom.Props{"label": "1"})
	require.NoError(t, err)

	doc := parse(t, page(
		`<div data-client-component="true"><span></span></div>` +
			`<div data-client-component="true" data-component-path="/missing.go"></div>` +
			`<div data-client-component="true" data-component-path="/data.go"></div>` +
			`<div data-client-component="true" data-component-path="/widgets/counter.go" data-component-props="!!"></div>` +
			`<div data-client-component="true" data-component-path="/widgets/counter.go" data-component-props="` + good + `"><button class="counter">1</button></div>` +
			`<div data-client-component="true" data-component-path="/widgets/counter.go"><button class="counter">stale</button></div>` +
			`<div data-client-component="true" data-component-path="/boom.go"></div>`,
	))

	report := New(reg, &VerifyMounter{}, WithLogger(quiet)).Hydrate(context.Background(), doc)
	assert.Equal(t, 7, report.Markers)
	assert.Equal(t, []string{"/widgets/counter.go"}, report.Hydrated)
	require.Len(t, report.Failures, 6)

	byIndex := map[int]Failure{}
	for _, f := range report.Failures {
		byIndex[f.Index] = f
	}

	assert.True(t, rscerrors.HasCode(byIndex[0].Err, rscerrors.CodeMarkerMissingPath))
	assert.Empty(t, byIndex[0].Path)

	assert.True(t, rscerrors.HasCode(byIndex[1].Err, rscerrors.CodeModuleLoadFailed))
	var nf *module.ErrNotFound
	assert.True(t, errors.As(byIndex[1].Err, &nf))

	assert.True(t, rscerrors.HasCode(byIndex[2].Err, rscerrors.CodeNoComponent))
	assert.True(t, rscerrors.HasCode(byIndex[3].Err, rscerrors.CodeMarkerProps))
	assert.True(t, rscerrors.HasCode(byIndex[5].Err, rscerrors.CodeHydrationMismatch))
	assert.Equal(t, "/boom.go", byIndex[6].Path)
	assert.True(t, rscerrors.HasCode(byIndex[6].Err, rscerrors.CodeComponentPanic))
}

func TestHydrateRecoversFromMounterPanic(t *testing.T) {
	reg := module.NewRegistry()
	reg.RegisterComponent(counter())

	doc := parse(t, page(
		`<div data-client-component="true" data-component-path="/widgets/counter.go"></div>` +
			`<div data-client-component="true" data-component-path="/widgets/counter.go"></div>`,
	))

	var calls atomic.Int32
	h := New(reg, MounterFunc(func(context.Context, Node, *vdom.Component, vdom.Props) error {
		if calls.Add(1) == 1 {
			panic("mount exploded")
		}
		return nil
	}), WithLogger(quiet))

	report := h.Hydrate(context.Background(), doc)
	assert.Len(t, report.Hydrated, 1)
	require.Len(t, report.Failures, 1)
	assert.True(t, rscerrors.HasCode(report.Failures[0].Err, rscerrors.CodeComponentPanic))
	assert.Contains(t, report.Failures[0].Err.Error(), "panic: mount exploded")
}

func TestNormalizeHTML(t *testing.T) {
	a, err := NormalizeHTML(`<p class='x'>a &amp; b</p>`)
	require.NoError(t, err)
	b, err := NormalizeHTML(`<p class="x">a &#38; b</p>`)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
