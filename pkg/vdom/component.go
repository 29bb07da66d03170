package vdom

import (
	"context"
	"strings"
	"sync"
)

// ComponentKind says where a component executes.
type ComponentKind uint8

const (
	ServerComponent ComponentKind = iota // renders on the server only (default)
	ClientComponent                      // resumes in the browser
)

// String returns the string representation of the ComponentKind.
func (k ComponentKind) String() string {
	if k == ClientComponent {
		return "client"
	}
	return "server"
}

// Directive is the per-module marker that opts a component into client execution.
const Directive = "use client"

// DirectiveLiterals are the quoted spellings of Directive recognised in source text.
var DirectiveLiterals = []string{`"use client"`, `'use client'`}

// ContainsDirective reports whether src contains the client directive in
// either quoting style. A literal inside an unrelated string or comment is
// a known false positive.
func ContainsDirective(src string) bool {
	for _, lit := range DirectiveLiterals {
		if strings.Contains(src, lit) {
			return true
		}
	}
	return false
}

// RenderFunc produces a component's element tree. Components that need to
// wait on I/O do so inside the function and honor ctx.
type RenderFunc func(ctx context.Context, props Props) (*VNode, error)

// Component is a named render function plus the metadata that decides
// whether it runs on the server or in the browser.
//
// The tag (the defining module's path) is written at most once, normally by
// the init function the directive tagger generates, and never changes after.
type Component struct {
	name   string
	render RenderFunc
	source string

	mu  sync.RWMutex
	tag string
}

// Option configures a Component at definition time.
type Option func(*Component)

// WithSource attaches source text used as a fallback client signal when
// the component was never tagged.
func WithSource(src string) Option {
	return func(c *Component) { c.source = src }
}

// WithTag defines the component as already tagged with a module path.
func WithTag(path string) Option {
	return func(c *Component) { c.tag = path }
}

// Define creates a component from a render function.
func Define(name string, render RenderFunc, opts ...Option) *Component {
	c := &Component{name: name, render: render}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Func creates a component from a render function that cannot fail.
func Func(name string, render func(props Props) *VNode, opts ...Option) *Component {
	return Define(name, func(_ context.Context, props Props) (*VNode, error) {
		return render(props), nil
	}, opts...)
}

// Name returns the component's display name.
func (c *Component) Name() string { return c.name }

// Source returns the attached source text, if any.
func (c *Component) Source() string { return c.source }

// Tag returns the module path the component was tagged with, or "".
func (c *Component) Tag() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tag
}

// SetTag records the defining module path. It returns false without
// changing anything if the path is empty or a tag is already present.
func (c *Component) SetTag(path string) bool {
	if c == nil || path == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tag != "" {
		return false
	}
	c.tag = path
	return true
}

// Kind classifies the component. An explicit tag is authoritative; the
// source text check only applies to untagged components.
func (c *Component) Kind() ComponentKind {
	if c.IsClient() {
		return ClientComponent
	}
	return ServerComponent
}

// IsClient reports whether the component must be deferred to the browser.
func (c *Component) IsClient() bool {
	if c == nil {
		return false
	}
	if c.Tag() != "" {
		return true
	}
	return ContainsDirective(c.source)
}

// Render invokes the component.
func (c *Component) Render(ctx context.Context, props Props) (*VNode, error) {
	if c == nil || c.render == nil {
		return nil, nil
	}
	return c.render(ctx, props)
}

// Element creates an invocation node for the component. Children are
// accepted in the same forms as element constructors.
func (c *Component) Element(props Props, children ...any) *VNode {
	node := &VNode{Kind: KindComponent, Comp: c, Props: props}
	if len(children) > 0 {
		node.Children = collectChildren(children)
	}
	return node
}

// Tag is called by generated registration code. It tags v when v is a
// *Component and is a no-op for anything else, so registrations never fail
// at init time.
func Tag(v any, path string) bool {
	c, ok := v.(*Component)
	if !ok || c == nil {
		return false
	}
	return c.SetTag(path)
}
