package vdom

import "testing"

func TestCreateElement(t *testing.T) {
	t.Run("basic element", func(t *testing.T) {
		node := Div()
		if node.Kind != KindElement {
			t.Errorf("Kind = %v, want KindElement", node.Kind)
		}
		if node.Tag != "div" {
			t.Errorf("Tag = %v, want div", node.Tag)
		}
	})

	t.Run("with multiple attributes", func(t *testing.T) {
		node := Div(Class("card", "wide"), ID("main"))
		if node.Props["class"] != "card wide" {
			t.Errorf("class = %v, want card wide", node.Props["class"])
		}
		if node.Props["id"] != "main" {
			t.Errorf("id = %v, want main", node.Props["id"])
		}
	})

	t.Run("with props map", func(t *testing.T) {
		node := Div(Props{"role": "list"})
		if node.Props["role"] != "list" {
			t.Errorf("role = %v, want list", node.Props["role"])
		}
	})

	t.Run("with string shorthand", func(t *testing.T) {
		node := Div("Hello")
		if len(node.Children) != 1 {
			t.Fatalf("Children len = %v, want 1", len(node.Children))
		}
		if node.Children[0].Kind != KindText || node.Children[0].Text != "Hello" {
			t.Errorf("Child = %+v, want text Hello", node.Children[0])
		}
	})

	t.Run("with nil ignored", func(t *testing.T) {
		node := Div(nil, Class("test"), nil)
		if len(node.Children) != 0 {
			t.Errorf("Children len = %v, want 0", len(node.Children))
		}
	})

	t.Run("with key", func(t *testing.T) {
		node := Li(Key(7), "x")
		if node.Key != "7" {
			t.Errorf("Key = %q, want 7", node.Key)
		}
		if node.HasAttr("key") {
			t.Error("key should not be stored as a prop")
		}
	})

	t.Run("with component child", func(t *testing.T) {
		comp := Func("Badge", func(Props) *VNode { return Span("b") })
		node := Div(comp)
		if len(node.Children) != 1 || !node.Children[0].IsComponent() {
			t.Fatalf("expected one component child, got %+v", node.Children)
		}
		if node.Children[0].Comp != comp {
			t.Error("component child points at wrong component")
		}
	})

	t.Run("with slice children", func(t *testing.T) {
		items := Range([]string{"a", "b"}, func(s string, _ int) *VNode { return Li(s) })
		node := Ul(items, []any{Li("c"), nil})
		if len(node.Children) != 3 {
			t.Fatalf("Children len = %v, want 3", len(node.Children))
		}
	})
}

func TestVoidElements(t *testing.T) {
	for _, tag := range []string{"br", "hr", "img", "input", "meta", "link"} {
		if !IsVoidElement(tag) {
			t.Errorf("%s should be void", tag)
		}
	}
	for _, tag := range []string{"div", "span", "p", "script"} {
		if IsVoidElement(tag) {
			t.Errorf("%s should not be void", tag)
		}
	}
}

func TestCustomElement(t *testing.T) {
	node := CustomElement("my-widget", Data("x", "1"))
	if node.Tag != "my-widget" {
		t.Errorf("Tag = %v, want my-widget", node.Tag)
	}
	if node.Props["data-x"] != "1" {
		t.Errorf("data-x = %v, want 1", node.Props["data-x"])
	}
}

func TestClassDropsEmpty(t *testing.T) {
	if got := Class("a", "", " ", "b").Value; got != "a b" {
		t.Errorf("Class = %q, want %q", got, "a b")
	}
}

func TestAttrsSorted(t *testing.T) {
	attrs := Attrs(map[string]any{"id": "x", "class": "c"})
	if len(attrs) != 2 || attrs[0].Key != "class" || attrs[1].Key != "id" {
		t.Errorf("Attrs = %+v", attrs)
	}
}
