package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-rsc/openrsc/internal/config"
	"github.com/open-rsc/openrsc/internal/errors"
)

const counterSrc = `//"use client"
package widgets

import "github.com/open-rsc/openrsc/pkg/vdom"

var Default = vdom.Func("Counter", func(p vdom.Props) *vdom.VNode {
	return vdom.Button("0")
})
`

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type memStore struct {
	mu   sync.Mutex
	keys []string
}

func (m *memStore) Put(_ context.Context, key string, _ []byte, _ string, _ map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = append(m.keys, key)
	return nil
}

func newProject(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	_, err := runInit(dir, false)
	require.NoError(t, err)

	widgets := filepath.Join(dir, "widgets")
	require.NoError(t, os.MkdirAll(widgets, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(widgets, "counter.go"), []byte(counterSrc), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(widgets, "page.go"), []byte("package widgets\n"), 0o644))

	cfg, err := loadConfig(dir)
	require.NoError(t, err)
	return cfg
}

func TestInitRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	_, err := runInit(dir, false)
	require.NoError(t, err)

	_, err = runInit(dir, false)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid))

	_, err = runInit(dir, true)
	assert.NoError(t, err)
}

func TestTagWritesManifest(t *testing.T) {
	cfg := newProject(t)

	result, err := runTag(context.Background(), cfg, quiet)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Files)
	assert.Equal(t, []string{"/widgets/counter.go"}, result.Manifest.ModuleIDs())
	assert.FileExists(t, cfg.ManifestPath())

	tagged, err := os.ReadFile(filepath.Join(cfg.RootDir(), "widgets", "counter.go"))
	require.NoError(t, err)
	assert.Contains(t, string(tagged), "/widgets/counter.go")

	again, err := runTag(context.Background(), cfg, quiet)
	require.NoError(t, err)
	assert.Empty(t, again.Changed, "tagging is idempotent")
	assert.Equal(t, result.Manifest.ModuleIDs(), again.Manifest.ModuleIDs())
}

func TestPublishAfterTag(t *testing.T) {
	cfg := newProject(t)
	cfg.Publish.Prefix = "v1"

	_, err := runTag(context.Background(), cfg, quiet)
	require.NoError(t, err)

	store := &memStore{}
	report, err := runPublish(context.Background(), cfg, store, quiet)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"v1/widgets/counter.go", "v1/openrsc.manifest.json"}, report.Keys)
	assert.Equal(t, "v1/openrsc.manifest.json", store.keys[len(store.keys)-1])
}

func TestPublishWithoutManifest(t *testing.T) {
	cfg := newProject(t)
	_, err := runPublish(context.Background(), cfg, &memStore{}, quiet)
	assert.Error(t, err)
}

func TestPublishRequiresBucket(t *testing.T) {
	cfg := newProject(t)
	cmd := newRootCmd()
	cmd.SetArgs([]string{"publish", "--root", cfg.RootDir()})
	cmd.SetOut(io.Discard)

	err := cmd.Execute()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid))
}

func TestVersionShort(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{"version", "--short"})
	cmd.SetOut(&out)

	require.NoError(t, cmd.Execute())
	assert.Equal(t, version, strings.TrimSpace(out.String()))
}
