package vdom

import (
	"sort"
	"strings"
)

// ID sets the id attribute.
func ID(id string) Attr { return Attr{Key: "id", Value: id} }

// Class sets the class attribute. Empty names are dropped so conditional
// classes can be passed as "".
func Class(names ...string) Attr {
	kept := names[:0:0]
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			kept = append(kept, n)
		}
	}
	return Attr{Key: "class", Value: strings.Join(kept, " ")}
}

// Data sets data-<key>.
func Data(key, value string) Attr { return Attr{Key: "data-" + key, Value: value} }

// Flag sets an attribute to true. HTML boolean attributes such as disabled
// are written as the bare name; any other name, data-* included, is written
// as name="true".
func Flag(key string) Attr { return Attr{Key: key, Value: true} }

// TitleAttr sets the title attribute. Title is the element.
func TitleAttr(title string) Attr { return Attr{Key: "title", Value: title} }

// Href sets href.
func Href(url string) Attr { return Attr{Key: "href", Value: url} }

// Type sets type.
func Type(t string) Attr { return Attr{Key: "type", Value: t} }

// Disabled sets disabled.
func Disabled() Attr { return Flag("disabled") }

// Attrs converts a map into attributes in key order, for callers that build
// attribute sets dynamically.
func Attrs(m map[string]any) []Attr {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Attr, 0, len(keys))
	for _, k := range keys {
		out = append(out, Attr{Key: k, Value: m[k]})
	}
	return out
}
