package dev

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/open-rsc/openrsc/internal/config"
	"github.com/open-rsc/openrsc/internal/errors"
	"github.com/open-rsc/openrsc/pkg/directive"
)

// ServerOptions configures the development server.
type ServerOptions struct {
	// Config is the project configuration.
	Config *config.Config

	Logger *slog.Logger

	// OnTag is called after every tagging pass.
	OnTag func(result *directive.ScanResult, err error)

	// OnReload is called after browsers were told to reload.
	OnReload func(clients int)
}

// Server re-runs the directive tagger when sources change and tells
// connected browsers to reload. With dev.proxy set it also proxies pages
// to the running application and injects the reload script.
type Server struct {
	config  *config.Config
	options ServerOptions
	logger  *slog.Logger
	scanner *directive.Scanner
	watcher *Watcher
	reload  *ReloadServer
	proxy   *httputil.ReverseProxy

	mu         sync.Mutex
	running    bool
	httpServer *http.Server
	selfWrites map[string]struct{}
}

// NewServer creates a development server.
func NewServer(options ServerOptions) (*Server, error) {
	cfg := options.Config
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	scanOpts := []directive.ScannerOption{directive.WithLogger(logger)}
	if out := cfg.OutputPath(); out != "" {
		scanOpts = append(scanOpts, directive.WithOutput(out))
	}
	scanner, err := directive.NewScanner(directive.Options{
		Root:       cfg.RootDir(),
		Extensions: cfg.Extensions,
	}, scanOpts...)
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:     cfg,
		options:    options,
		logger:     logger,
		scanner:    scanner,
		reload:     NewReloadServer(logger),
		selfWrites: make(map[string]struct{}),
		watcher: NewWatcher(WatcherConfig{
			Paths:      cfg.WatchDirs(),
			Ignore:     append(append([]string{}, DefaultIgnore...), cfg.Dev.Ignore...),
			Extensions: cfg.Extensions,
			Debounce:   cfg.Dev.Debounce,
			Logger:     logger,
		}),
	}

	if cfg.Dev.Proxy != "" {
		target, err := url.Parse(cfg.Dev.Proxy)
		if err != nil {
			return nil, errors.New(errors.CodeConfigInvalid).WithDetailf("dev.proxy %q", cfg.Dev.Proxy).Wrap(err)
		}
		s.proxy = s.newProxy(target)
	}
	return s, nil
}

// Reload returns the reload server.
func (s *Server) Reload() *ReloadServer {
	return s.reload
}

// Handler returns the dev server's HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(ReloadPath, s.reload)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if s.proxy != nil {
			s.proxy.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintf(w, "openrsc dev server\nreload endpoint: %s\n", ReloadPath)
	})
	return mux
}

// Start tags the project once, then watches and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.httpServer = &http.Server{Addr: s.config.DevAddress(), Handler: s.Handler()}
	s.mu.Unlock()
	defer s.Stop()

	if _, err := s.Tag(ctx); err != nil {
		s.logger.Error("initial tagging failed", "error", err)
	}

	s.watcher.OnChange(func(changes []Change) { s.HandleChanges(ctx, changes) })
	go func() {
		if err := s.watcher.Start(ctx); err != nil && !stderrors.Is(err, context.Canceled) {
			s.logger.Error("watcher stopped", "error", err)
		}
	}()

	s.logger.Info("dev server running", "url", s.config.DevURL(), "proxy", s.config.Dev.Proxy)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Stop shuts the server down.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	s.watcher.Stop()
	s.reload.Close()
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(ctx)
	}
}

// Tag runs the tagger over the source directories and writes the manifest.
func (s *Server) Tag(ctx context.Context) (*directive.ScanResult, error) {
	start := time.Now()
	result, err := s.scanner.Scan(ctx, s.config.SourceDirs()...)
	if err == nil {
		err = result.Manifest.WriteFile(s.config.ManifestPath())
	}

	if err == nil {
		s.mu.Lock()
		if s.config.OutputPath() == "" {
			for _, f := range result.Changed {
				s.selfWrites[f] = struct{}{}
			}
		}
		s.selfWrites[s.config.ManifestPath()] = struct{}{}
		s.mu.Unlock()

		s.logger.Info("tagged",
			"files", result.Files,
			"changed", len(result.Changed),
			"modules", len(result.Manifest.Registrations),
			"took", time.Since(start).Round(time.Millisecond))
	}
	if s.options.OnTag != nil {
		s.options.OnTag(result, err)
	}
	return result, err
}

// HandleChanges reacts to a batch of file changes. Source changes re-run
// the tagger; a failure is shown in the browsers' error overlay instead of
// reloading. Writes made by the tagger itself are ignored.
func (s *Server) HandleChanges(ctx context.Context, changes []Change) {
	changes = s.filter(changes)
	if len(changes) == 0 {
		return
	}

	files := make([]string, 0, len(changes))
	retag := false
	for _, c := range changes {
		s.logger.Debug("changed", "file", c.Path, "type", c.Type, "removed", c.Removed)
		files = append(files, c.Path)
		if c.Type == ChangeSource {
			retag = true
		}
	}

	if retag {
		if _, err := s.Tag(ctx); err != nil {
			s.logger.Error("tagging failed", "error", err)
			s.reload.NotifyError(errors.Trace(err))
			return
		}
		s.reload.ClearError()
	}

	s.reload.NotifyReload(files...)
	if s.options.OnReload != nil {
		s.options.OnReload(s.reload.ClientCount())
	}
	s.logger.Info("reloaded browsers", "clients", s.reload.ClientCount())
}

func (s *Server) filter(changes []Change) []Change {
	out := changes[:0:0]
	output := s.config.OutputPath()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range changes {
		if _, ok := s.selfWrites[c.Path]; ok {
			delete(s.selfWrites, c.Path)
			continue
		}
		if output != "" && isWithinDir(c.Path, output) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (s *Server) newProxy(target *url.URL) *httputil.ReverseProxy {
	proxy := httputil.NewSingleHostReverseProxy(target)
	script := ClientScript(ReloadPath)

	proxy.ModifyResponse = func(resp *http.Response) error {
		if !strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
			return nil
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		resp.Body.Close()

		body = injectScript(body, script)
		resp.Body = io.NopCloser(bytes.NewReader(body))
		resp.ContentLength = int64(len(body))
		resp.Header.Set("Content-Length", strconv.Itoa(len(body)))
		return nil
	}

	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		s.logger.Warn("application not reachable", "target", target.String(), "error", err)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprintf(w, `<!doctype html>
<html>
<head><title>openrsc dev</title></head>
<body style="font-family: system-ui; padding: 40px">
<h1>Application not running</h1>
<p>Nothing answers at %s. The page reloads when sources change.</p>
%s
</body>
</html>`, target.String(), script)
	}
	return proxy
}

// injectScript places script before </body>, falling back to </html> and
// then to the end of the document.
func injectScript(body []byte, script string) []byte {
	for _, tag := range []string{"</body>", "</html>"} {
		if idx := bytes.LastIndex(body, []byte(tag)); idx != -1 {
			out := make([]byte, 0, len(body)+len(script))
			out = append(out, body[:idx]...)
			out = append(out, script...)
			return append(out, body[idx:]...)
		}
	}
	return append(body, script...)
}

func isWithinDir(path, dir string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	if absPath == absDir {
		return true
	}
	return strings.HasPrefix(absPath, strings.TrimSuffix(absDir, string(os.PathSeparator))+string(os.PathSeparator))
}
