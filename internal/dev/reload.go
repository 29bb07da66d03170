package dev

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// ReloadPath is where reload websockets are served.
const ReloadPath = "/_openrsc/reload"

// MessageType is the kind of a reload message.
type MessageType string

const (
	MessageReload MessageType = "reload"
	MessageError  MessageType = "error"
	MessageClear  MessageType = "clear"
)

// Message is sent to browsers over the reload websocket.
type Message struct {
	Type  MessageType `json:"type"`
	Error string      `json:"error,omitempty"`
	Files []string    `json:"files,omitempty"`
}

// ReloadServer tracks browser connections and broadcasts reload messages.
type ReloadServer struct {
	mu       sync.RWMutex
	clients  map[*websocket.Conn]struct{}
	writeMu  sync.Mutex
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewReloadServer creates a reload server.
func NewReloadServer(logger *slog.Logger) *ReloadServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReloadServer{
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Development only: the page and the dev server usually differ in port.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// ServeHTTP upgrades the request and holds the connection until the
// browser goes away.
func (s *ReloadServer) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		s.logger.Debug("reload upgrade failed", "error", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.drop(conn)
}

// NotifyReload asks every browser to reload the page.
func (s *ReloadServer) NotifyReload(files ...string) {
	s.broadcast(Message{Type: MessageReload, Files: files})
}

// NotifyError shows an error overlay in every browser.
func (s *ReloadServer) NotifyError(msg string) {
	s.broadcast(Message{Type: MessageError, Error: msg})
}

// ClearError removes the error overlay.
func (s *ReloadServer) ClearError() {
	s.broadcast(Message{Type: MessageClear})
}

// ClientCount returns the number of connected browsers.
func (s *ReloadServer) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Close disconnects every browser.
func (s *ReloadServer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		conn.Close()
		delete(s.clients, conn)
	}
}

func (s *ReloadServer) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	s.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(s.clients))
	for conn := range s.clients {
		clients = append(clients, conn)
	}
	s.mu.RUnlock()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	for _, conn := range clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			s.drop(conn)
		}
	}
}

func (s *ReloadServer) drop(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
	conn.Close()
}

// ClientScript returns the script tag that connects a page to a reload
// server. url may be absolute (ws://host/path) or a path on the page's origin.
func ClientScript(url string) string {
	return fmt.Sprintf(clientScript, url)
}

const clientScript = `<script>
(function() {
  var target = %q;
  var delay = 1000;
  function wsURL() {
    if (/^wss?:/.test(target)) return target;
    return (location.protocol === 'https:' ? 'wss:' : 'ws:') + '//' + location.host + target;
  }
  function clearOverlay() {
    var el = document.getElementById('openrsc-error');
    if (el) el.remove();
  }
  function showOverlay(text) {
    clearOverlay();
    var el = document.createElement('pre');
    el.id = 'openrsc-error';
    el.style.cssText = 'position:fixed;inset:0;margin:0;padding:24px;background:rgba(0,0,0,.9);color:#f55;font:14px monospace;white-space:pre-wrap;z-index:2147483647;overflow:auto';
    el.textContent = text;
    document.body.appendChild(el);
  }
  function connect() {
    var ws = new WebSocket(wsURL());
    ws.onopen = function() { delay = 1000; };
    ws.onmessage = function(e) {
      var msg;
      try { msg = JSON.parse(e.data); } catch (err) { return; }
      if (msg.type === 'reload') location.reload();
      else if (msg.type === 'error') showOverlay(msg.error);
      else if (msg.type === 'clear') clearOverlay();
    };
    ws.onclose = function() {
      setTimeout(connect, delay);
      delay = Math.min(delay * 2, 30000);
    };
  }
  connect();
})();
</script>`
