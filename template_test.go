package openrsc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-rsc/openrsc/internal/errors"
)

func TestTemplateExecute(t *testing.T) {
	tmpl, err := ParseTemplate(`<head><!--app-head--></head><div id="root"><!--app-html--></div>`)
	require.NoError(t, err)

	assert.Equal(t,
		`<head><meta x></head><div id="root" data-ssr-complete="true"><p>hi</p></div>`,
		tmpl.Execute("<meta x>", "<p>hi</p>", true))
	assert.Equal(t,
		`<head></head><div id="root"></div>`,
		tmpl.Execute("", "", false))
}

func TestTemplateExecuteReplacesOnce(t *testing.T) {
	tmpl, err := ParseTemplate(`<div id="root"><!--app-html--></div>`)
	require.NoError(t, err)

	// Rendered HTML that itself contains placeholders or a root is left alone.
	out := tmpl.Execute("", `<div id="root"><!--app-html--></div>`, true)
	assert.Equal(t, `<div id="root" data-ssr-complete="true"><div id="root"><!--app-html--></div></div>`, out)
}

func TestTemplateRootWithAttributes(t *testing.T) {
	tmpl, err := ParseTemplate(`<div data-id="root"></div><div class="app" id='root' hidden><!--app-html--></div>`)
	require.NoError(t, err)

	assert.Equal(t,
		`<div data-id="root"></div><div class="app" id='root' hidden data-ssr-complete="true"><p>x</p></div>`,
		tmpl.Execute("", "<p>x</p>", true))
	assert.Equal(t,
		`<div data-id="root"></div><div class="app" id='root' hidden><p>x</p></div>`,
		tmpl.Execute("", "<p>x</p>", false))
}

func TestParseTemplateErrors(t *testing.T) {
	for _, src := range []string{
		`<div id="app"><!--app-html--></div>`,
		`<div id="rooted"><!--app-html--></div>`,
		`<div id="root"></div>`,
	} {
		_, err := ParseTemplate(src)
		assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid), src)
	}
}

func TestLoadTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.html")
	require.NoError(t, os.WriteFile(path, []byte(DefaultTemplate), 0o644))

	tmpl, err := LoadTemplate(path)
	require.NoError(t, err)
	assert.Contains(t, tmpl.Execute("", "x", false), `<div id="root">x</div>`)

	_, err = LoadTemplate(filepath.Join(t.TempDir(), "missing.html"))
	assert.True(t, errors.HasCode(err, errors.CodeConfigNotFound))
}
