package render

import (
	"strings"

	"github.com/open-rsc/openrsc/pkg/vdom"
)

func isVoidElement(tag string) bool {
	return vdom.IsVoidElement(tag)
}

// Phrasing content stays on one line when pretty printing.
var inlineElements = setOf(`
	a abbr b bdi bdo br cite code data dfn em i kbd mark q rb rp rt rtc
	ruby s samp small span strong sub sup time u var wbr`)

func isInlineElement(tag string) bool {
	return inlineElements[tag]
}

// HTML boolean attributes. A true value renders as the bare name and false
// omits the attribute. Other attributes render bools as "true"/"false",
// which is what data-* markers rely on.
var booleanAttrs = setOf(`
	allowfullscreen async autofocus autoplay checked controls default defer
	disabled formnovalidate hidden inert ismap itemscope loop multiple muted
	nomodule novalidate open playsinline readonly required reversed selected`)

func isBooleanAttr(name string) bool {
	return booleanAttrs[name]
}

func setOf(words string) map[string]bool {
	fields := strings.Fields(words)
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}
