package openrsc

import (
	"os"
	"regexp"
	"strings"

	"github.com/open-rsc/openrsc/internal/errors"
	"github.com/open-rsc/openrsc/pkg/vdom"
)

// Template placeholders.
const (
	HeadPlaceholder = "<!--app-head-->"
	HTMLPlaceholder = "<!--app-html-->"
)

// rootTag matches the opening tag of the root container by its id, with
// any other attributes around it.
var rootTag = regexp.MustCompile(`<div\b[^>]*?\sid\s*=\s*["']` + regexp.QuoteMeta(vdom.RootID) + `["'][^>]*>`)

const ssrFlag = " " + vdom.AttrSSRComplete + `="true"`

// Template is a parsed page template.
type Template struct {
	src string

	// rootEnd is the offset of the '>' closing the root's opening tag.
	rootEnd int
}

// ParseTemplate validates a page template. The template must contain the
// root container and the HTML placeholder; the head placeholder is optional.
func ParseTemplate(src string) (*Template, error) {
	loc := rootTag.FindStringIndex(src)
	if loc == nil {
		return nil, errors.New(errors.CodeConfigInvalid).
			WithDetailf(`template has no <div id="%s">`, vdom.RootID).
			WithSuggestion(`Add <div id="root"><!--app-html--></div> to the body.`)
	}
	if !strings.Contains(src, HTMLPlaceholder) {
		return nil, errors.New(errors.CodeConfigInvalid).
			WithDetailf("template has no %s placeholder", HTMLPlaceholder).
			WithSuggestion("Put " + HTMLPlaceholder + " inside the root container.")
	}
	end := loc[1] - 1
	if src[end-1] == '/' {
		end--
	}
	return &Template{src: src, rootEnd: end}, nil
}

// LoadTemplate reads and parses a template file.
func LoadTemplate(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.CodeConfigNotFound).WithDetailf("template %s", path).Wrap(err)
	}
	return ParseTemplate(string(data))
}

// Execute produces the page. The root container is flagged as
// server-rendered only when ssr is true, so the client router knows whether
// to take over navigation.
func (t *Template) Execute(head, html string, ssr bool) string {
	page := t.src
	if ssr {
		page = page[:t.rootEnd] + ssrFlag + page[t.rootEnd:]
	}
	page = strings.Replace(page, HeadPlaceholder, head, 1)
	return strings.Replace(page, HTMLPlaceholder, html, 1)
}
