package dev

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeType classifies a changed file.
type ChangeType int

const (
	// ChangeSource is a file the tagger considers.
	ChangeSource ChangeType = iota
	// ChangeTemplate is an HTML page template.
	ChangeTemplate
	// ChangeAsset is anything else.
	ChangeAsset
)

func (t ChangeType) String() string {
	switch t {
	case ChangeSource:
		return "source"
	case ChangeTemplate:
		return "template"
	default:
		return "asset"
	}
}

// Change is a detected file change.
type Change struct {
	Path    string
	Type    ChangeType
	Removed bool
}

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Paths are the directories to watch, recursively.
	Paths []string

	// Ignore lists names, path segments or globs to skip.
	Ignore []string

	// Extensions classify ChangeSource files. Default: .go.
	Extensions []string

	// Debounce is the quiet period before a batch is delivered.
	Debounce time.Duration

	Logger *slog.Logger
}

// DefaultIgnore contains default patterns to ignore.
var DefaultIgnore = []string{
	"*_test.go",
	".git",
	"node_modules",
	"vendor",
	"testdata",
	"*.tmp",
	"*.swp",
	"*~",
}

// Watcher delivers batches of file changes under a set of directories.
type Watcher struct {
	config   WatcherConfig
	onChange func([]Change)
	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
}

// NewWatcher creates a watcher.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.Debounce <= 0 {
		config.Debounce = 100 * time.Millisecond
	}
	if len(config.Ignore) == 0 {
		config.Ignore = DefaultIgnore
	}
	if len(config.Extensions) == 0 {
		config.Extensions = []string{".go"}
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Watcher{config: config}
}

// OnChange sets the callback that receives each debounced batch.
func (w *Watcher) OnChange(fn func([]Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start watches until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stopCh := w.stopCh
	w.mu.Unlock()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.markStopped()
		return err
	}
	defer fsw.Close()
	defer w.markStopped()

	for _, p := range w.config.Paths {
		w.addRecursive(fsw, p)
	}

	var (
		pending = make(map[string]Change)
		order   []string
		timer   *time.Timer
		timerC  <-chan time.Time
	)
	flush := func() {
		if len(order) == 0 {
			return
		}
		batch := make([]Change, 0, len(order))
		for _, p := range order {
			batch = append(batch, pending[p])
		}
		pending = make(map[string]Change)
		order = order[:0]

		w.mu.Lock()
		cb := w.onChange
		w.mu.Unlock()
		if cb != nil {
			cb(batch)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if w.shouldIgnore(event.Name) || event.Op == fsnotify.Chmod {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					w.addRecursive(fsw, event.Name)
					continue
				}
			}
			if _, seen := pending[event.Name]; !seen {
				order = append(order, event.Name)
			}
			pending[event.Name] = Change{
				Path:    event.Name,
				Type:    w.classify(event.Name),
				Removed: event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename),
			}
			if timer == nil {
				timer = time.NewTimer(w.config.Debounce)
			} else {
				timer.Reset(w.config.Debounce)
			}
			timerC = timer.C
		case <-timerC:
			timerC = nil
			flush()
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.config.Logger.Warn("watch error", "error", err)
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stopCh)
		w.running = false
	}
}

// IsRunning returns whether the watcher is running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) markStopped() {
	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
}

func (w *Watcher) addRecursive(fsw *fsnotify.Watcher, root string) {
	filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if p != root && w.shouldIgnore(p) {
			return filepath.SkipDir
		}
		if err := fsw.Add(p); err != nil {
			w.config.Logger.Warn("cannot watch directory", "dir", p, "error", err)
		}
		return nil
	})
}

func (w *Watcher) classify(p string) ChangeType {
	ext := strings.ToLower(filepath.Ext(p))
	for _, e := range w.config.Extensions {
		if ext == strings.ToLower(e) {
			return ChangeSource
		}
	}
	switch ext {
	case ".html", ".gohtml", ".tmpl":
		return ChangeTemplate
	}
	return ChangeAsset
}

// shouldIgnore matches a path against the ignore list. Plain names match
// any path segment, names containing a separator match a run of segments
// and globs match the base name (or the whole path when they contain a
// separator).
func (w *Watcher) shouldIgnore(fullPath string) bool {
	name := filepath.Base(fullPath)
	normalized := filepath.ToSlash(fullPath)

	for _, pattern := range w.config.Ignore {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if name == pattern {
			return true
		}

		hasSep := strings.ContainsAny(pattern, `/\`)
		if strings.ContainsAny(pattern, "*?[") {
			if hasSep {
				if ok, _ := path.Match(filepath.ToSlash(pattern), normalized); ok {
					return true
				}
			} else if ok, _ := filepath.Match(pattern, name); ok {
				return true
			}
			continue
		}

		if hasSep {
			if containsSegments(normalized, filepath.ToSlash(pattern)) {
				return true
			}
		} else if containsSegments(normalized, pattern) {
			return true
		}
	}
	return false
}

func containsSegments(p, pattern string) bool {
	parts := splitSegments(p)
	want := splitSegments(pattern)
	if len(want) == 0 || len(want) > len(parts) {
		return false
	}
	for i := 0; i <= len(parts)-len(want); i++ {
		match := true
		for j := range want {
			if parts[i+j] != want[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func splitSegments(p string) []string {
	var out []string
	for _, part := range strings.Split(p, "/") {
		if part != "" && part != "." {
			out = append(out, part)
		}
	}
	return out
}
