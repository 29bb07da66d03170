package publish

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/open-rsc/openrsc/internal/errors"
	"github.com/open-rsc/openrsc/pkg/directive"
)

// ManifestKey is the object name of the published manifest, under the prefix.
const ManifestKey = "openrsc.manifest.json"

const moduleContentType = "text/x-go; charset=utf-8"

// Options configures a Publisher.
type Options struct {
	// Root is the project root module IDs are relative to.
	Root string

	// Output is the tagger's mirror directory. When set, module files are
	// read from there instead of from their source location.
	Output string

	// Prefix is prepended to every object key.
	Prefix string

	// Concurrency bounds parallel uploads. Default 4.
	Concurrency int

	Logger *slog.Logger
}

// Report summarizes a publish.
type Report struct {
	Keys  []string
	Bytes int64
}

// Publisher uploads tagged client modules and their manifest.
type Publisher struct {
	store ObjectStore
	opts  Options
}

// New creates a publisher.
func New(store ObjectStore, opts Options) *Publisher {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	opts.Prefix = strings.Trim(opts.Prefix, "/")
	return &Publisher{store: store, opts: opts}
}

// Key returns the object key for a module ID.
func (p *Publisher) Key(moduleID string) string {
	return path.Join(p.opts.Prefix, strings.TrimPrefix(moduleID, "/"))
}

// Publish uploads every registered module, then the manifest. The
// manifest goes last so readers never see entries whose module is missing.
func (p *Publisher) Publish(ctx context.Context, m *directive.Manifest) (*Report, error) {
	var (
		mu     sync.Mutex
		report = &Report{}
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)
	for _, reg := range m.Registrations {
		g.Go(func() error {
			body, err := os.ReadFile(p.sourceOf(reg))
			if err != nil {
				return errors.New(errors.CodePublishFailed).WithDetailf("reading %s", reg.ModuleID).Wrap(err)
			}
			sum := sha256.Sum256(body)
			key := p.Key(reg.ModuleID)
			meta := map[string]string{
				"module-id": reg.ModuleID,
				"export":    reg.Export,
				"package":   reg.Package,
				"sha256":    hex.EncodeToString(sum[:]),
			}
			if err := p.store.Put(ctx, key, body, moduleContentType, meta); err != nil {
				return errors.New(errors.CodePublishFailed).WithDetailf("uploading %s", key).Wrap(err)
			}
			p.opts.Logger.Info("published module", "module", reg.ModuleID, "key", key, "bytes", len(body))

			mu.Lock()
			report.Keys = append(report.Keys, key)
			report.Bytes += int64(len(body))
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return report, errors.New(errors.CodePublishFailed).Wrap(err)
	}
	key := path.Join(p.opts.Prefix, ManifestKey)
	if err := p.store.Put(ctx, key, data, "application/json", nil); err != nil {
		return report, errors.New(errors.CodePublishFailed).WithDetailf("uploading %s", key).Wrap(err)
	}
	report.Keys = append(report.Keys, key)
	report.Bytes += int64(len(data))
	return report, nil
}

func (p *Publisher) sourceOf(reg directive.Registration) string {
	if p.opts.Output == "" {
		return reg.File
	}
	rel, err := filepath.Rel(p.opts.Root, reg.File)
	if err != nil {
		return reg.File
	}
	return filepath.Join(p.opts.Output, rel)
}
