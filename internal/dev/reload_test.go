package dev

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialReload(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+ReloadPath, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	var msg Message
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestReloadServerBroadcast(t *testing.T) {
	reload := NewReloadServer(quiet)
	srv := httptest.NewServer(reload)
	defer srv.Close()

	a, b := dialReload(t, srv), dialReload(t, srv)
	require.Eventually(t, func() bool { return reload.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	reload.NotifyError("E100: boom")
	for _, conn := range []*websocket.Conn{a, b} {
		assert.Equal(t, Message{Type: MessageError, Error: "E100: boom"}, readMessage(t, conn))
	}

	reload.ClearError()
	reload.NotifyReload("a.go")
	assert.Equal(t, Message{Type: MessageClear}, readMessage(t, a))
	assert.Equal(t, Message{Type: MessageReload, Files: []string{"a.go"}}, readMessage(t, a))

	reload.Close()
	assert.Zero(t, reload.ClientCount())
}

func TestReloadServerDropsClosedClients(t *testing.T) {
	reload := NewReloadServer(quiet)
	srv := httptest.NewServer(reload)
	defer srv.Close()

	conn := dialReload(t, srv)
	require.Eventually(t, func() bool { return reload.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return reload.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestClientScript(t *testing.T) {
	script := ClientScript("ws://localhost:3456" + ReloadPath)
	assert.True(t, strings.HasPrefix(script, "<script>"))
	assert.True(t, strings.HasSuffix(script, "</script>"))
	assert.Contains(t, script, `"ws://localhost:3456/_openrsc/reload"`)
	assert.Contains(t, script, "location.reload()")
}
