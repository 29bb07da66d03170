package openrsc

import (
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// staticFiles serves files from a directory under a URL prefix.
type staticFiles struct {
	fs     http.FileSystem
	prefix string
	config StaticConfig
}

func newStaticFiles(cfg StaticConfig, dev bool) *staticFiles {
	if cfg.Dir == "" {
		return nil
	}
	prefix := cfg.Prefix
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	if dev {
		cfg.CacheControl = CacheControlNone
	}
	return &staticFiles{fs: http.Dir(cfg.Dir), prefix: prefix, config: cfg}
}

// relPath maps a URL path to a file inside the static directory. Traversal,
// absolute paths, backslashes and NUL bytes are rejected.
func (s *staticFiles) relPath(urlPath string) (string, bool) {
	if !strings.HasPrefix(urlPath, s.prefix) {
		return "", false
	}
	rel := strings.TrimPrefix(urlPath, s.prefix)
	if rel == "" || strings.ContainsAny(rel, "\\\x00") {
		return "", false
	}
	if !fs.ValidPath(rel) {
		return "", false
	}
	return rel, true
}

// open returns the regular file for urlPath, if there is one.
func (s *staticFiles) open(urlPath string) (http.File, fs.FileInfo, string, bool) {
	rel, ok := s.relPath(urlPath)
	if !ok {
		return nil, nil, "", false
	}
	f, err := s.fs.Open(rel)
	if err != nil {
		return nil, nil, "", false
	}
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		f.Close()
		return nil, nil, "", false
	}
	return f, info, rel, true
}

// serve writes the file for r and reports whether there was one.
func (s *staticFiles) serve(w http.ResponseWriter, r *http.Request) bool {
	if s == nil || (r.Method != http.MethodGet && r.Method != http.MethodHead) {
		return false
	}
	f, info, rel, ok := s.open(r.URL.Path)
	if !ok {
		return false
	}
	defer f.Close()

	s.applyCacheHeaders(w, rel)
	for key, value := range s.config.Headers {
		w.Header().Set(key, value)
	}
	http.ServeContent(w, r, rel, info.ModTime(), f)
	return true
}

func (s *staticFiles) applyCacheHeaders(w http.ResponseWriter, rel string) {
	switch s.config.CacheControl {
	case CacheControlNone:
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	case CacheControlProduction:
		if isFingerprinted(rel) {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=3600, must-revalidate")
		}
	}
}

// isFingerprinted reports whether a file name carries a content hash, as in
// "app.a1b2c3d4.js".
func isFingerprinted(rel string) bool {
	parts := strings.Split(path.Base(rel), ".")
	if len(parts) < 3 {
		return false
	}
	hash := parts[len(parts)-2]
	if len(hash) < 8 {
		return false
	}
	for _, c := range hash {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return false
		}
	}
	return true
}
