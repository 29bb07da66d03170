package hydrate

import (
	"context"
	"fmt"

	"github.com/open-rsc/openrsc/internal/errors"
	"github.com/open-rsc/openrsc/pkg/render"
	"github.com/open-rsc/openrsc/pkg/vdom"
)

// VerifyMounter checks that a component, rendered with the marker's props,
// reproduces the markup the server left inside the marker. It is the
// mounter used by tooling and tests where there is no live DOM to attach to.
type VerifyMounter struct {
	// Config is the serializer configuration used for the client render.
	Config render.RendererConfig

	// OnMount, when set, is called after a successful check.
	OnMount func(node Node, comp *vdom.Component, props vdom.Props)
}

// Mount implements Mounter.
func (m *VerifyMounter) Mount(ctx context.Context, node Node, comp *vdom.Component, props vdom.Props) error {
	got, err := render.NewRenderer(m.Config).RenderToString(ctx, comp.Element(props))
	if err != nil {
		return fmt.Errorf("client render of %q: %w", comp.Name(), err)
	}
	want, err := NormalizeHTML(node.InnerHTML())
	if err != nil {
		return err
	}
	got, err = NormalizeHTML(got)
	if err != nil {
		return err
	}
	if got != want {
		return errors.New(errors.CodeHydrationMismatch).
			WithDetailf("component %q\nserver: %s\nclient: %s", comp.Name(), want, got)
	}
	if m.OnMount != nil {
		m.OnMount(node, comp, props)
	}
	return nil
}
