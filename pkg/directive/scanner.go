package directive

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/open-rsc/openrsc/internal/errors"
)

// Scanner runs Transform over source trees.
type Scanner struct {
	opts   Options
	output string
	logger *slog.Logger
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithOutput writes transformed files under dir, mirroring their path
// relative to the root, instead of rewriting them in place.
func WithOutput(dir string) ScannerOption {
	return func(s *Scanner) { s.output = dir }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) ScannerOption {
	return func(s *Scanner) { s.logger = l }
}

// NewScanner creates a scanner.
func NewScanner(opts Options, options ...ScannerOption) (*Scanner, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	s := &Scanner{opts: opts, logger: slog.Default()}
	for _, o := range options {
		o(s)
	}
	return s, nil
}

// ScanResult summarizes a scan.
type ScanResult struct {
	Manifest *Manifest
	Files    int
	Changed  []string
	Warnings []string
}

// Scan transforms every applicable file under dirs. Any failure stops the
// scan and is returned; files already written stay written.
func (s *Scanner) Scan(ctx context.Context, dirs ...string) (*ScanResult, error) {
	var files []string
	for _, dir := range dirs {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(s.opts.Root, dir)
		}
		found, err := s.collect(dir)
		if err != nil {
			return nil, errors.New(errors.CodeScanFailed).
				WithDetailf("walking %s", dir).
				Wrap(err)
		}
		files = append(files, found...)
	}

	var (
		mu     sync.Mutex
		result = &ScanResult{Manifest: &Manifest{Version: ManifestVersion}, Files: len(files)}
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := s.TransformFile(file)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			if res.Changed {
				result.Changed = append(result.Changed, file)
			}
			if res.Registration != nil {
				result.Manifest.Add(*res.Registration)
			}
			result.Warnings = append(result.Warnings, res.Warnings...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Manifest.sort()
	s.logger.Debug("directive scan complete",
		"files", result.Files,
		"changed", len(result.Changed),
		"registrations", len(result.Manifest.Registrations))
	return result, nil
}

// TransformFile transforms a single file and writes the output.
func (s *Scanner) TransformFile(path string) (Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Result{}, errors.New(errors.CodeScanFailed).WithDetailf("reading %s", path).Wrap(err)
	}
	res, err := Transform(src, path, s.opts)
	if err != nil {
		return res, err
	}
	for _, w := range res.Warnings {
		s.logger.Warn(w)
	}

	dest := path
	if s.output != "" {
		rel, err := filepath.Rel(s.opts.Root, path)
		if err != nil {
			return res, errors.New(errors.CodeTransformWrite).WithDetailf("%s is outside %s", path, s.opts.Root).Wrap(err)
		}
		dest = filepath.Join(s.output, rel)
	} else if !res.Changed {
		return res, nil
	}

	if err := writeAtomic(dest, res.Code); err != nil {
		return res, errors.New(errors.CodeTransformWrite).WithDetailf("writing %s", dest).Wrap(err)
	}
	if res.Changed {
		s.logger.Info("tagged client module", "file", path, "module", moduleIDOf(res))
	}
	return res, nil
}

func (s *Scanner) collect(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			if s.output != "" && sameDir(path, s.output) {
				return filepath.SkipDir
			}
			return nil
		}
		if s.opts.applies(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") ||
		name == "vendor" || name == "testdata" || name == "node_modules"
}

func sameDir(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	return err1 == nil && err2 == nil && aa == bb
}

func moduleIDOf(r Result) string {
	if r.Registration == nil {
		return ""
	}
	return r.Registration.ModuleID
}

func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".openrsc-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming into place: %w", err)
	}
	return nil
}
