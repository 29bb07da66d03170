package dev

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitBatch(t *testing.T, ch <-chan []Change) []Change {
	t.Helper()
	select {
	case batch := <-ch:
		return batch
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for change")
		return nil
	}
}

func startWatcher(t *testing.T, cfg WatcherConfig) (*Watcher, <-chan []Change) {
	t.Helper()
	watcher := NewWatcher(cfg)
	changes := make(chan []Change, 10)
	watcher.OnChange(func(batch []Change) { changes <- batch })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go watcher.Start(ctx)

	deadline := time.Now().Add(time.Second)
	for !watcher.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	// fsnotify registers directories right after Start flips the flag.
	time.Sleep(50 * time.Millisecond)
	return watcher, changes
}

func TestWatcher_Modify(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "widget.go")
	if err := os.WriteFile(testFile, []byte("package main"), 0o644); err != nil {
		t.Fatal(err)
	}

	watcher, changes := startWatcher(t, WatcherConfig{Paths: []string{tmpDir}, Debounce: 30 * time.Millisecond})
	defer watcher.Stop()

	if err := os.WriteFile(testFile, []byte("package main\n\nfunc main() {}"), 0o644); err != nil {
		t.Fatal(err)
	}

	batch := waitBatch(t, changes)
	if len(batch) != 1 {
		t.Fatalf("batch = %v, want one coalesced change", batch)
	}
	if batch[0].Path != testFile || batch[0].Type != ChangeSource {
		t.Errorf("change = %+v", batch[0])
	}
}

func TestWatcher_NewDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	watcher, changes := startWatcher(t, WatcherConfig{Paths: []string{tmpDir}, Debounce: 30 * time.Millisecond})
	defer watcher.Stop()

	sub := filepath.Join(tmpDir, "widgets")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)

	file := filepath.Join(sub, "page.html")
	if err := os.WriteFile(file, []byte("<p></p>"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, c := range waitBatch(t, changes) {
		if c.Path == file {
			if c.Type != ChangeTemplate {
				t.Errorf("Type = %v, want template", c.Type)
			}
			return
		}
	}
	t.Error("no change reported for a file in a new directory")
}

func TestWatcher_Ignore(t *testing.T) {
	tmpDir := t.TempDir()

	watcher := NewWatcher(WatcherConfig{
		Paths:  []string{tmpDir},
		Ignore: []string{"*_test.go", "vendor", "build/out"},
	})

	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join(tmpDir, "foo_test.go"), true},
		{filepath.Join(tmpDir, "vendor", "lib.go"), true},
		{filepath.Join(tmpDir, "build", "out", "a.go"), true},
		{filepath.Join(tmpDir, "build", "a.go"), false},
		{filepath.Join(tmpDir, "main.go"), false},
		{filepath.Join(tmpDir, "vendored.go"), false},
	}
	for _, tt := range tests {
		if got := watcher.shouldIgnore(tt.path); got != tt.want {
			t.Errorf("shouldIgnore(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestWatcher_Classify(t *testing.T) {
	watcher := NewWatcher(WatcherConfig{Extensions: []string{".go", ".gox"}})

	tests := []struct {
		path string
		want ChangeType
	}{
		{"main.go", ChangeSource},
		{"widget.GOX", ChangeSource},
		{"template.html", ChangeTemplate},
		{"template.gohtml", ChangeTemplate},
		{"image.png", ChangeAsset},
		{"openrsc.manifest.json", ChangeAsset},
	}
	for _, tt := range tests {
		if got := watcher.classify(tt.path); got != tt.want {
			t.Errorf("classify(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestWatcher_IsRunning(t *testing.T) {
	watcher, _ := startWatcher(t, WatcherConfig{Paths: []string{t.TempDir()}})
	if !watcher.IsRunning() {
		t.Fatal("watcher not running after Start")
	}
	watcher.Stop()
	if watcher.IsRunning() {
		t.Error("watcher still running after Stop")
	}
}
