package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, srv *httptest.Server, origin string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	return websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), &websocket.DialOptions{HTTPHeader: header})
}

func waitForClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return h.Count() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(nil, nil)
	defer hub.Shutdown(context.Background())

	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn, _, err := dial(t, srv, "")
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	waitForClients(t, hub, 1)
	hub.Broadcast(Message{Type: MessageReload, Target: "buttons"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	typ, data, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, websocket.MessageText, typ)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, MessageReload, msg.Type)
	assert.Equal(t, "buttons", msg.Target)
	assert.False(t, msg.Timestamp.IsZero())
}

func TestHubUnregistersClosedClients(t *testing.T) {
	hub := NewHub(nil, nil)
	defer hub.Shutdown(context.Background())

	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn, _, err := dial(t, srv, "")
	require.NoError(t, err)
	waitForClients(t, hub, 1)

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))
	waitForClients(t, hub, 0)
}

func TestHubOrigins(t *testing.T) {
	hub := NewHub([]string{"http://docs.example.test/"}, nil)
	defer hub.Shutdown(context.Background())

	srv := httptest.NewServer(hub)
	defer srv.Close()

	t.Run("configured origin", func(t *testing.T) {
		conn, _, err := dial(t, srv, "http://docs.example.test")
		require.NoError(t, err)
		conn.Close(websocket.StatusNormalClosure, "")
	})

	t.Run("same host", func(t *testing.T) {
		conn, _, err := dial(t, srv, srv.URL)
		require.NoError(t, err)
		conn.Close(websocket.StatusNormalClosure, "")
	})

	t.Run("foreign origin", func(t *testing.T) {
		_, resp, err := dial(t, srv, "http://evil.test")
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestHubShutdown(t *testing.T) {
	hub := NewHub(nil, nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn, _, err := dial(t, srv, "")
	require.NoError(t, err)
	waitForClients(t, hub, 1)

	require.NoError(t, hub.Shutdown(context.Background()))
	waitForClients(t, hub, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, _, err = conn.Read(ctx)
	assert.Error(t, err)

	_, resp, err := dial(t, srv, "")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	// Broadcasting after shutdown is a no-op.
	hub.Broadcast(Message{Type: MessageReload})
}
